package compress

import (
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/hupe1980/cla/core"
	"github.com/hupe1980/cla/estim"
	"github.com/hupe1980/cla/resource"
)

// SchemeSet is a set of encodings the compressor may choose from.
type SchemeSet uint8

const (
	// EnableDDC allows dictionary coding (DDC1 or DDC2 by dictionary size).
	EnableDDC SchemeSet = 1 << iota
	// EnableRLE allows run-length coding.
	EnableRLE
	// EnableOLE allows offset-list coding.
	EnableOLE

	// AllSchemes enables every encoding.
	AllSchemes = EnableDDC | EnableRLE | EnableOLE
)

// Has reports whether every scheme of o is in s.
func (s SchemeSet) Has(o SchemeSet) bool { return s&o == o }

// Allows reports whether scheme sc may be chosen.
func (s SchemeSet) Allows(sc core.Scheme) bool {
	switch sc {
	case core.SchemeDDC1, core.SchemeDDC2:
		return s.Has(EnableDDC)
	case core.SchemeRLE:
		return s.Has(EnableRLE)
	case core.SchemeOLE:
		return s.Has(EnableOLE)
	default:
		return false
	}
}

// String returns the comma-separated scheme names.
func (s SchemeSet) String() string {
	var names []string
	if s.Has(EnableDDC) {
		names = append(names, "ddc")
	}
	if s.Has(EnableRLE) {
		names = append(names, "rle")
	}
	if s.Has(EnableOLE) {
		names = append(names, "ole")
	}
	return strings.Join(names, ",")
}

// ParseSchemeSet parses a comma-separated list of "ddc", "rle" and "ole".
func ParseSchemeSet(s string) (SchemeSet, error) {
	var set SchemeSet
	for _, name := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "ddc":
			set |= EnableDDC
		case "rle":
			set |= EnableRLE
		case "ole":
			set |= EnableOLE
		case "":
		default:
			return 0, fmt.Errorf("%w: unknown scheme %q", core.ErrInvalidArgument, name)
		}
	}
	if set == 0 {
		return 0, fmt.Errorf("%w: empty scheme set", core.ErrInvalidArgument)
	}
	return set, nil
}

// Config configures a Compressor.
type Config struct {
	// Estimator configures bitmap extraction and size estimation.
	Estimator estim.Config

	// Schemes is the set of encodings to choose from.
	Schemes SchemeSet

	// TargetRows is the row count the uncompressed baseline is sized for.
	// If 0, the row count of the matrix is used.
	TargetRows int

	// Parallelism is the number of candidate sets compressed concurrently.
	// 1 runs sequentially. If 0, defaults to GOMAXPROCS.
	Parallelism int
}

// DefaultConfig returns the default compressor configuration.
func DefaultConfig() Config {
	return Config{
		Estimator:   estim.DefaultConfig(),
		Schemes:     AllSchemes,
		Parallelism: runtime.GOMAXPROCS(0),
	}
}

// Option configures optional collaborators of a Compressor.
type Option func(*Compressor)

// WithLogger sets the logger. Decisions are logged at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(c *Compressor) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithResourceController bounds workers and bitmap memory of batch runs.
func WithResourceController(rc *resource.Controller) Option {
	return func(c *Compressor) {
		c.rc = rc
	}
}

// WithMetricsObserver sets the observer notified about groups and pruning.
func WithMetricsObserver(o MetricsObserver) Option {
	return func(c *Compressor) {
		if o != nil {
			c.metrics = o
		}
	}
}
