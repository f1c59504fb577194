// Package fs abstracts the filesystem calls made when saving container files,
// so tests can inject write, sync, close and rename failures.
//
//   - [LocalFS]: the os-backed implementation, available as [Default]
//   - [FaultyFS]: wraps another FileSystem and fails on demand
//
// [WriteAtomic] writes a file through a temporary sibling and renames it into
// place, so a reader never observes a partially written container.
//
// The calls take no context.Context. Local filesystem syscalls cannot be
// interrupted; cancellation is checked by the writer callback instead.
package fs
