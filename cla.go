package cla

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/cla/bitmap"
	"github.com/hupe1980/cla/colgroup"
	"github.com/hupe1980/cla/compress"
	"github.com/hupe1980/cla/core"
	"github.com/hupe1980/cla/estim"
)

// Compress compresses src into column groups.
//
// *mat.Dense and every other gonum matrix satisfy core.Matrix. The result
// holds no reference to src.
func Compress(ctx context.Context, src core.Matrix, optFns ...Option) (*Matrix, error) {
	o := applyOptions(optFns)
	rows, cols := src.Dims()

	start := time.Now()
	m, err := compressMatrix(ctx, src, &o)
	err = translateError(err)

	var ratio float64
	var groups int
	if err == nil {
		ratio = m.CompressionRatio()
		groups = len(m.groups)
	}
	o.logger.LogCompress(ctx, rows, cols, groups, ratio, err)
	o.metricsCollector.RecordCompress(rows, cols, groups, ratio, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func compressMatrix(ctx context.Context, src core.Matrix, o *options) (*Matrix, error) {
	rows, cols := src.Dims()
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: %dx%d matrix", ErrInvalidArgument, rows, cols)
	}
	if rows > bitmap.MaxRows {
		return nil, fmt.Errorf("%w: %d rows exceed %d", ErrInvalidArgument, rows, bitmap.MaxRows)
	}

	candidates := o.columnGroups
	if candidates == nil {
		candidates = singletons(cols)
	}
	candidates, err := checkCandidates(candidates, cols)
	if err != nil {
		return nil, err
	}

	var groups []colgroup.ColGroup
	if o.schemes != 0 {
		c := compress.New(compress.Config{
			Estimator: estim.Config{
				DenseEstimate: o.denseEstimate,
				Bitmap:        bitmap.Config{Zero: o.zero},
			},
			Schemes:     o.schemes,
			TargetRows:  o.targetRows,
			Parallelism: o.parallelism,
		},
			compress.WithLogger(o.logger.Logger),
			compress.WithResourceController(o.resource),
			compress.WithMetricsObserver(o.metricsCollector),
		)

		ratios, err := c.BuildRatioTable(src)
		if err != nil {
			return nil, err
		}
		compressed, err := c.CompressGroups(ctx, src, ratios, candidates)
		if err != nil {
			return nil, err
		}
		for _, g := range compressed {
			if g != nil {
				groups = append(groups, g)
			}
		}
	}

	if rest := uncovered(groups, cols); len(rest) > 0 {
		g, err := colgroup.NewUncompressed(rest, src)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	for _, g := range groups {
		o.logger.LogGroup(ctx, g)
	}
	return newMatrix(rows, cols, groups, o)
}

func singletons(cols int) [][]int {
	out := make([][]int, cols)
	for c := range out {
		out[c] = []int{c}
	}
	return out
}

// checkCandidates requires every set to be non-empty, in range and disjoint
// from the others. It returns the sets sorted ascending.
func checkCandidates(candidates [][]int, numCols int) ([][]int, error) {
	seen := bitset.New(uint(numCols))
	out := make([][]int, len(candidates))
	for i, cols := range candidates {
		if err := core.CheckColumns(cols, numCols); err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}
		for _, c := range cols {
			if seen.Test(uint(c)) {
				return nil, fmt.Errorf("%w: column %d appears twice", ErrInvalidColumnGroups, c)
			}
			seen.Set(uint(c))
		}
		out[i] = slices.Sorted(slices.Values(cols))
	}
	return out, nil
}

// uncovered returns the ascending columns no group holds.
func uncovered(groups []colgroup.ColGroup, numCols int) []int {
	covered := bitset.New(uint(numCols))
	for _, g := range groups {
		for _, c := range g.ColIndexes() {
			covered.Set(uint(c))
		}
	}
	var rest []int
	for c, ok := covered.NextClear(0); ok && int(c) < numCols; c, ok = covered.NextClear(c + 1) {
		rest = append(rest, int(c))
	}
	return slices.Clip(rest)
}
