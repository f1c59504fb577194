package cla

import (
	"github.com/hupe1980/cla/codec"
)

// GroupReport describes one column group.
type GroupReport struct {
	Scheme        string `json:"scheme"`
	Columns       []int  `json:"columns"`
	NumValues     int    `json:"num_values"`
	ContainsZeros bool   `json:"contains_zeros"`
	InMemorySize  int64  `json:"in_memory_size"`
	DiskSize      int64  `json:"disk_size"`
}

// Report summarizes a compressed matrix.
type Report struct {
	Rows             int            `json:"rows"`
	Cols             int            `json:"cols"`
	Groups           []GroupReport  `json:"groups"`
	SchemeCounts     map[string]int `json:"scheme_counts"`
	InMemorySize     int64          `json:"in_memory_size"`
	UncompressedSize int64          `json:"uncompressed_size"`
	CompressionRatio float64        `json:"compression_ratio"`
}

// Report returns a summary of the groups of m.
func (m *Matrix) Report() Report {
	r := Report{
		Rows:             m.rows,
		Cols:             m.cols,
		Groups:           make([]GroupReport, len(m.groups)),
		SchemeCounts:     make(map[string]int),
		InMemorySize:     m.InMemorySize(),
		UncompressedSize: m.UncompressedSize(),
		CompressionRatio: m.CompressionRatio(),
	}
	for i, g := range m.groups {
		r.Groups[i] = GroupReport{
			Scheme:        g.Scheme().String(),
			Columns:       g.ColIndexes(),
			NumValues:     g.NumValues(),
			ContainsZeros: g.ContainsZeros(),
			InMemorySize:  g.EstimateInMemorySize(),
			DiskSize:      g.ExactSizeOnDisk(false),
		}
		r.SchemeCounts[g.Scheme().String()]++
	}
	return r
}

// MarshalReport encodes Report with the codec configured by WithCodec.
func (m *Matrix) MarshalReport() ([]byte, error) {
	c := m.opts.codec
	if c == nil {
		c = codec.Default
	}
	return c.Marshal(m.Report())
}
