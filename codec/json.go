package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
//
// Reports hold plain structs, slices and numbers, so both JSON codecs
// produce interchangeable output. Non-finite floats are not representable.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// MarshalIndent encodes the value to indented JSON for human consumption.
func (JSON) MarshalIndent(v any) ([]byte, error) { return json.MarshalIndent(v, "", "  ") }

// Default is the codec used when none is configured.
var Default Codec = GoJSON{}
