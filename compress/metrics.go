package compress

import (
	"time"

	"github.com/hupe1980/cla/core"
)

// MetricsObserver receives compression events.
type MetricsObserver interface {
	// RecordGroup is called once per candidate set. scheme is
	// SchemeUncompressed when the set was left uncompressed.
	RecordGroup(scheme core.Scheme, numCols int, size int64, duration time.Duration)

	// RecordPrune is called each time a column is dropped from a candidate set.
	RecordPrune(col int, ratio float64)
}

type noopObserver struct{}

func (noopObserver) RecordGroup(core.Scheme, int, int64, time.Duration) {}
func (noopObserver) RecordPrune(int, float64)                           {}
