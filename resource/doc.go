// Package resource limits the resources compression and container IO use.
//
// A Controller governs three budgets:
//
//   - Workers: concurrently running group compressions (weighted semaphore).
//   - Memory: bytes reserved for bitmaps in flight (weighted semaphore).
//   - IO: container write throughput (token bucket).
//
// Usage:
//
//	rc := resource.NewController(resource.Config{
//	    MaxWorkers:         4,
//	    MemoryLimitBytes:   256 << 20,
//	    IOLimitBytesPerSec: 64 << 20,
//	})
//
//	if err := rc.AcquireWorker(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseWorker()
//
// All methods are safe for concurrent use. A nil *Controller imposes no
// limits, so callers never need nil checks.
package resource
