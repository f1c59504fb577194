package core

import "strings"

// Scheme identifies the encoding of a column group.
type Scheme uint8

const (
	// SchemeUncompressed stores the columns densely.
	SchemeUncompressed Scheme = iota
	// SchemeDDC1 is dictionary coding with one byte per row.
	SchemeDDC1
	// SchemeDDC2 is dictionary coding with two bytes per row.
	SchemeDDC2
	// SchemeRLE stores runs of rows per distinct tuple.
	SchemeRLE
	// SchemeOLE stores segmented row offsets per distinct tuple.
	SchemeOLE

	// NumSchemes is the number of defined schemes.
	NumSchemes = int(SchemeOLE) + 1
)

// Schemes lists every scheme in tag order.
var Schemes = [NumSchemes]Scheme{SchemeUncompressed, SchemeDDC1, SchemeDDC2, SchemeRLE, SchemeOLE}

// String returns the string representation of the scheme.
func (s Scheme) String() string {
	switch s {
	case SchemeUncompressed:
		return "UNCOMPRESSED"
	case SchemeDDC1:
		return "DDC1"
	case SchemeDDC2:
		return "DDC2"
	case SchemeRLE:
		return "RLE"
	case SchemeOLE:
		return "OLE"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether s is a defined scheme.
func (s Scheme) Valid() bool {
	return int(s) < NumSchemes
}

// IsDDC reports whether s is one of the dictionary-coded widths.
func (s Scheme) IsDDC() bool {
	return s == SchemeDDC1 || s == SchemeDDC2
}

// ParseScheme parses a scheme name (case-insensitive).
func ParseScheme(name string) (Scheme, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "UNCOMPRESSED":
		return SchemeUncompressed, true
	case "DDC1":
		return SchemeDDC1, true
	case "DDC2":
		return SchemeDDC2, true
	case "RLE":
		return SchemeRLE, true
	case "OLE":
		return SchemeOLE, true
	default:
		return SchemeUncompressed, false
	}
}
