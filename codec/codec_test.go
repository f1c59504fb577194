package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type groupStat struct {
	Scheme  string  `json:"scheme"`
	Columns []int   `json:"columns"`
	Size    int64   `json:"size"`
	Ratio   float64 `json:"ratio"`
}

type report struct {
	Rows   int         `json:"rows"`
	Groups []groupStat `json:"groups"`
}

func TestByName(t *testing.T) {
	for _, name := range Names() {
		c, ok := ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, c.Name())
	}
	_, ok := ByName("msgpack")
	assert.False(t, ok)
}

func TestCodecs_Interchangeable(t *testing.T) {
	in := report{
		Rows: 1000,
		Groups: []groupStat{
			{Scheme: "DDC1", Columns: []int{0, 3}, Size: 1234, Ratio: 6.5},
			{Scheme: "OLE", Columns: []int{1}, Size: 88, Ratio: 90.9},
		},
	}
	for _, enc := range []Codec{JSON{}, GoJSON{}} {
		for _, dec := range []Codec{JSON{}, GoJSON{}} {
			data, err := enc.Marshal(in)
			require.NoError(t, err)

			var out report
			require.NoError(t, dec.Unmarshal(data, &out), "%s -> %s", enc.Name(), dec.Name())
			assert.Equal(t, in, out)
		}
	}
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"go-json", "json"}, Names())
	assert.Equal(t, "go-json", Default.Name())
}

func TestMarshalIndent(t *testing.T) {
	a, err := JSON{}.MarshalIndent(report{Rows: 2})
	require.NoError(t, err)
	b, err := GoJSON{}.MarshalIndent(report{Rows: 2})
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
	assert.Contains(t, string(a), "\n  \"rows\"")
}
