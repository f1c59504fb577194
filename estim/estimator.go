package estim

import (
	"fmt"
	"strings"

	"github.com/hupe1980/cla/bitmap"
	"github.com/hupe1980/cla/core"
)

// SizeInfo holds the estimated size of every scheme for one column set.
// It is read-only after the estimator returns it.
type SizeInfo struct {
	Columns       []int
	NumRows       int
	NumDistinct   int // stored tuples, without a synthesized zero tuple
	NumOffsets    int
	NumRuns       int
	Sparsity      float64
	ContainsZeros bool

	sizes    [core.NumSchemes]int64
	feasible [core.NumSchemes]bool
}

// Size returns the estimated size of scheme s, or 0 if s cannot encode the
// column set.
func (s *SizeInfo) Size(sc core.Scheme) int64 {
	if !sc.Valid() || !s.feasible[sc] {
		return 0
	}
	return s.sizes[sc]
}

// Feasible reports whether scheme s can encode the column set.
func (s *SizeInfo) Feasible(sc core.Scheme) bool {
	return sc.Valid() && s.feasible[sc]
}

// MinSize returns the smallest size across all feasible schemes.
func (s *SizeInfo) MinSize() int64 {
	_, size := s.min()
	return size
}

// MinScheme returns the scheme with the smallest size.
func (s *SizeInfo) MinScheme() core.Scheme {
	sc, _ := s.min()
	return sc
}

func (s *SizeInfo) min() (core.Scheme, int64) {
	best := core.SchemeUncompressed
	var size int64 = -1
	for _, sc := range core.Schemes {
		if !s.feasible[sc] {
			continue
		}
		if size < 0 || s.sizes[sc] < size {
			best, size = sc, s.sizes[sc]
		}
	}
	return best, size
}

// DictionaryRows is the dictionary size of a DDC encoding: the stored tuples
// plus a synthesized all-zero tuple when some rows are not covered.
func (s *SizeInfo) DictionaryRows() int {
	if s.NumOffsets < s.NumRows {
		return s.NumDistinct + 1
	}
	return s.NumDistinct
}

// String implements fmt.Stringer.
func (s *SizeInfo) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "cols=%v distinct=%d", s.Columns, s.NumDistinct)
	for _, sc := range core.Schemes {
		if s.feasible[sc] {
			fmt.Fprintf(&sb, " %s=%d", sc, s.sizes[sc])
		}
	}
	return sb.String()
}

// Config configures the estimator.
type Config struct {
	// DenseEstimate assumes every cell is nonzero when sizing the
	// uncompressed baseline (worst case) instead of measuring density.
	DenseEstimate bool

	// Bitmap configures extraction for EstimateColumns.
	Bitmap bitmap.Config
}

// DefaultConfig returns the default estimator configuration.
func DefaultConfig() Config {
	return Config{
		DenseEstimate: false,
		Bitmap:        bitmap.DefaultConfig(),
	}
}

// Estimator computes SizeInfo from bitmaps. It is stateless and safe for
// concurrent use.
type Estimator struct {
	cfg Config
}

// New creates an estimator.
func New(cfg Config) *Estimator {
	return &Estimator{cfg: cfg}
}

// Config returns the estimator configuration.
func (e *Estimator) Config() Config {
	return e.cfg
}

// Estimate sizes every scheme for the column set of bm.
//
// A non-positive minimum size is an internal defect and is reported as a
// *core.InvariantError.
func (e *Estimator) Estimate(bm *bitmap.Bitmap) (*SizeInfo, error) {
	nc := bm.NumCols()
	rows := bm.NumRows()

	info := &SizeInfo{
		Columns:       bm.Columns(),
		NumRows:       rows,
		NumDistinct:   bm.NumValues(),
		NumOffsets:    bm.TotalOffsets(),
		NumRuns:       bm.TotalRuns(),
		Sparsity:      1.0,
		ContainsZeros: bm.ContainsZeros(),
	}
	if !e.cfg.DenseEstimate {
		info.Sparsity = bm.Sparsity()
	}

	info.set(core.SchemeUncompressed, UncompressedSize(rows, nc, info.Sparsity))

	dictRows := info.DictionaryRows()
	if dictRows <= MaxDDC1Values {
		info.set(core.SchemeDDC1, DDC1Size(nc, rows, dictRows))
	}
	if dictRows <= MaxDDC2Values {
		info.set(core.SchemeDDC2, DDC2Size(nc, rows, dictRows))
	}
	info.set(core.SchemeRLE, RLESize(nc, info.NumDistinct, info.NumRuns))
	info.set(core.SchemeOLE, OLESize(nc, rows, info.NumDistinct, info.NumOffsets))

	if minSize := info.MinSize(); minSize <= 0 {
		return nil, core.Invariantf("estimate", info.Columns, "minimum estimated size %d (%s)", minSize, info)
	}
	return info, nil
}

// EstimateColumns extracts the bitmap of cols and estimates it. The bitmap is
// returned so callers can build the final group without a second scan.
func (e *Estimator) EstimateColumns(cols []int, m core.Matrix) (*SizeInfo, *bitmap.Bitmap, error) {
	bm, err := bitmap.ExtractWithConfig(cols, m, e.cfg.Bitmap)
	if err != nil {
		return nil, nil, err
	}
	info, err := e.Estimate(bm)
	if err != nil {
		return nil, nil, err
	}
	return info, bm, nil
}

func (s *SizeInfo) set(sc core.Scheme, size int64) {
	s.sizes[sc] = size
	s.feasible[sc] = true
}
