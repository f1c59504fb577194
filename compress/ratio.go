package compress

import (
	"fmt"

	"github.com/hupe1980/cla/core"
	"github.com/hupe1980/cla/estim"
)

// RatioTable maps a column index to its standalone compression ratio.
// It is built once before a batch and only read afterwards.
type RatioTable map[int]float64

// Ratio returns the ratio of col. Unknown columns rank worst (0).
func (t RatioTable) Ratio(col int) float64 {
	return t[col]
}

// BuildRatioTable estimates every column of m on its own.
func (c *Compressor) BuildRatioTable(m core.Matrix) (RatioTable, error) {
	_, numCols := m.Dims()
	t := make(RatioTable, numCols)
	for col := 0; col < numCols; col++ {
		info, _, err := c.est.EstimateColumns([]int{col}, m)
		if err != nil {
			return nil, fmt.Errorf("ratio of column %d: %w", col, err)
		}
		t[col], _, _ = c.ratio(info)
	}
	return t, nil
}

// ratio returns the uncompressed baseline divided by the size of the scheme
// selectScheme picks, or 0 when no enabled scheme can encode the set.
func (c *Compressor) ratio(info *estim.SizeInfo) (float64, core.Scheme, int64) {
	sc, size := selectScheme(info, c.cfg.Schemes)
	if size <= 0 {
		return 0, sc, 0
	}
	rows := c.cfg.TargetRows
	if rows <= 0 {
		rows = info.NumRows
	}
	baseline := estim.UncompressedSize(rows, len(info.Columns), info.Sparsity)
	return float64(baseline) / float64(size), sc, size
}

// selectScheme picks the encoding for a favorable set: dictionary coding
// when it is strictly smaller than both run-length and offset-list coding,
// otherwise the smaller of those two (offset-list on a tie). The dictionary
// width is one byte whenever the dictionary fits.
func selectScheme(info *estim.SizeInfo, allowed SchemeSet) (core.Scheme, int64) {
	size := func(sc core.Scheme) (int64, bool) {
		if !allowed.Allows(sc) || !info.Feasible(sc) {
			return 0, false
		}
		return info.Size(sc), true
	}

	best, bestSize := core.SchemeUncompressed, int64(0)
	rle, rleOK := size(core.SchemeRLE)
	ole, oleOK := size(core.SchemeOLE)
	switch {
	case rleOK && (!oleOK || rle < ole):
		best, bestSize = core.SchemeRLE, rle
	case oleOK:
		best, bestSize = core.SchemeOLE, ole
	}

	ddcScheme := core.SchemeDDC1
	ddc, ok := size(core.SchemeDDC1)
	if !ok {
		ddcScheme = core.SchemeDDC2
		ddc, ok = size(core.SchemeDDC2)
	}
	if ok && (bestSize == 0 || ddc < bestSize) {
		best, bestSize = ddcScheme, ddc
	}
	return best, bestSize
}
