// Package codec encodes compression reports.
//
// Codecs are selected by a stable name so a report consumer can decode what
// a producer wrote, whichever implementation produced it.
package codec

import "slices"

// Codec encodes and decodes reports. Implementations are safe for
// concurrent use.
type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	// MarshalIndent encodes v for people: two-space indent, one field per line.
	MarshalIndent(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

var builtin = map[string]Codec{
	JSON{}.Name():   JSON{},
	GoJSON{}.Name(): GoJSON{},
}

// ByName returns a built-in codec.
func ByName(name string) (Codec, bool) {
	c, ok := builtin[name]
	return c, ok
}

// Names lists the built-in codec names in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
