package bitmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForEachRun(t *testing.T) {
	type run struct{ start, length int }
	var got []run
	ForEachRun([]uint32{1, 2, 3, 7, 9, 10}, func(s, l int) {
		got = append(got, run{s, l})
	})
	assert.Equal(t, []run{{1, 3}, {7, 1}, {9, 2}}, got)

	ForEachRun(nil, func(int, int) { t.Fatal("no runs expected") })
}

func TestAppendRunPairs(t *testing.T) {
	pairs := AppendRunPairs(nil, []uint32{1, 2, 3, 7, 9, 10})
	// gap measured from the end of the previous run
	assert.Equal(t, []uint16{1, 3, 3, 1, 1, 2}, pairs)
}

func TestRunPairs_Splits(t *testing.T) {
	long := make([]uint32, 0, 2*MaxRunField+10)
	for r := 0; r < 2*MaxRunField+10; r++ {
		long = append(long, uint32(r))
	}
	far := []uint32{3*MaxRunField + 5, 3*MaxRunField + 6}

	cases := map[string][]uint32{
		"empty":       nil,
		"single":      {0},
		"long run":    long,
		"far gap":     far,
		"exact field": {MaxRunField, MaxRunField + 1},
		"mixed":       append(append([]uint32{}, long...), far...),
	}
	for name, offsets := range cases {
		t.Run(name, func(t *testing.T) {
			pairs := AppendRunPairs(nil, offsets)
			assert.Equal(t, len(pairs)/2, CountRunPairs(offsets))

			// Decoding the pairs reproduces the offsets.
			var decoded []uint32
			pos := 0
			for i := 0; i < len(pairs); i += 2 {
				start := pos + int(pairs[i])
				for r := start; r < start+int(pairs[i+1]); r++ {
					decoded = append(decoded, uint32(r))
				}
				pos = start + int(pairs[i+1])
			}
			assert.Equal(t, len(offsets), len(decoded))
			if len(offsets) > 0 {
				assert.Equal(t, offsets, decoded)
			}
		})
	}
}
