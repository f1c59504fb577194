package compress

import (
	"context"
	"log/slog"
	"runtime"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/cla/colgroup"
	"github.com/hupe1980/cla/core"
	"github.com/hupe1980/cla/estim"
	"github.com/hupe1980/cla/internal/queue"
	"github.com/hupe1980/cla/resource"
)

// Compressor turns candidate column sets into column groups.
// It holds no per-call state and is safe for concurrent use.
type Compressor struct {
	cfg     Config
	est     *estim.Estimator
	logger  *slog.Logger
	rc      *resource.Controller
	metrics MetricsObserver
}

// New creates a Compressor.
func New(cfg Config, opts ...Option) *Compressor {
	if cfg.Schemes == 0 {
		cfg.Schemes = AllSchemes
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = runtime.GOMAXPROCS(0)
	}
	c := &Compressor{
		cfg:     cfg,
		est:     estim.New(cfg.Estimator),
		logger:  slog.New(slog.DiscardHandler),
		metrics: noopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the compressor configuration.
func (c *Compressor) Config() Config { return c.cfg }

// Estimator returns the estimator used for every decision.
func (c *Compressor) Estimator() *estim.Estimator { return c.est }

type groupResult struct {
	group      colgroup.ColGroup
	pruned     []int
	iterations int
}

// CompressGroup encodes the columns cols of m.
//
// It returns a nil group when no non-empty subset of cols compresses; the
// caller then stores those columns uncompressed. When a strict subset
// compresses, the returned group covers only that subset and the dropped
// columns are likewise left to the caller.
func (c *Compressor) CompressGroup(m core.Matrix, ratios RatioTable, cols []int) (colgroup.ColGroup, error) {
	res, err := c.compressGroup(m, ratios, cols)
	if err != nil {
		return nil, err
	}
	return res.group, nil
}

func (c *Compressor) compressGroup(m core.Matrix, ratios RatioTable, cols []int) (groupResult, error) {
	if len(cols) == 0 {
		return groupResult{}, core.ErrEmptyColumns
	}
	start := time.Now()
	cur := slices.Clone(cols)
	var res groupResult
	var pq *queue.PriorityQueue

	for len(cur) > 0 {
		info, bm, err := c.est.EstimateColumns(cur, m)
		if err != nil {
			return groupResult{}, err
		}
		ratio, sc, size := c.ratio(info)
		if ratio > 1 {
			g, err := colgroup.Build(bm, sc)
			if err != nil {
				return groupResult{}, err
			}
			c.logger.Debug("group compressed",
				"columns", cur, "scheme", sc.String(), "ratio", ratio, "size", size, "pruned", len(res.pruned))
			c.metrics.RecordGroup(sc, len(cur), g.EstimateInMemorySize(), time.Since(start))
			res.group = g
			return res, nil
		}

		// built on first failure only; favorable sets never pay for it
		if pq == nil {
			pq = queue.NewMin(len(cur))
			for _, col := range cur {
				pq.PushItem(queue.Item{Col: col, Ratio: ratios.Ratio(col)})
			}
		}
		worst, ok := pq.PopItem()
		if !ok {
			return groupResult{}, core.Invariantf("compress.CompressGroup", cur, "pruning queue exhausted")
		}
		cur = slices.DeleteFunc(cur, func(col int) bool { return col == worst.Col })
		res.pruned = append(res.pruned, worst.Col)
		res.iterations++
		c.logger.Debug("column pruned", "column", worst.Col, "ratio", worst.Ratio, "remaining", len(cur))
		c.metrics.RecordPrune(worst.Col, worst.Ratio)
	}

	c.logger.Debug("group left uncompressed", "columns", cols, "iterations", res.iterations)
	c.metrics.RecordGroup(core.SchemeUncompressed, len(cols), 0, time.Since(start))
	return res, nil
}

// CompressGroups runs CompressGroup for every candidate set.
//
// groups[i] belongs to candidates[i] and is nil when the set was left
// uncompressed. With Parallelism 1 the sets are processed in order on the
// calling goroutine. Otherwise they run on a bounded pool; the first failure
// cancels the remaining sets and is returned as a *GroupError.
func (c *Compressor) CompressGroups(ctx context.Context, m core.Matrix, ratios RatioTable, candidates [][]int) ([]colgroup.ColGroup, error) {
	out := make([]colgroup.ColGroup, len(candidates))

	if c.cfg.Parallelism == 1 || len(candidates) <= 1 {
		for i, cols := range candidates {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			g, err := c.CompressGroup(m, ratios, cols)
			if err != nil {
				return nil, &GroupError{Index: i, Columns: cols, Err: err}
			}
			out[i] = g
		}
		return out, nil
	}

	rows, _ := m.Dims()
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(c.cfg.Parallelism)
	for i, cols := range candidates {
		eg.Go(func() error {
			g, err := c.compressWithResources(ctx, m, ratios, cols, rows)
			if err != nil {
				return &GroupError{Index: i, Columns: cols, Err: err}
			}
			out[i] = g
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Compressor) compressWithResources(ctx context.Context, m core.Matrix, ratios RatioTable, cols []int, rows int) (colgroup.ColGroup, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := c.rc.AcquireWorker(ctx); err != nil {
		return nil, err
	}
	defer c.rc.ReleaseWorker()

	mem := bitmapFootprint(rows, len(cols))
	if err := c.rc.AcquireMemory(ctx, mem); err != nil {
		return nil, err
	}
	defer c.rc.ReleaseMemory(mem)

	return c.CompressGroup(m, ratios, cols)
}

// bitmapFootprint bounds the memory of one extraction: an offset per row
// plus, at worst, one distinct tuple per row.
func bitmapFootprint(rows, numCols int) int64 {
	return int64(rows) * (estim.Uint32Size + estim.Float64Size*int64(numCols))
}
