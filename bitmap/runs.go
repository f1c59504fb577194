package bitmap

import "math"

// MaxRunField is the largest gap or length a single run pair can carry.
const MaxRunField = math.MaxUint16

// ForEachRun calls fn for every maximal run of consecutive rows in offsets.
func ForEachRun(offsets []uint32, fn func(start, length int)) {
	if len(offsets) == 0 {
		return
	}
	start := int(offsets[0])
	length := 1
	for _, r := range offsets[1:] {
		if int(r) == start+length {
			length++
			continue
		}
		fn(start, length)
		start = int(r)
		length = 1
	}
	fn(start, length)
}

// AppendRunPairs appends the run-length encoding of offsets to dst.
//
// Each run is stored as a (gap, length) pair, gap measured from the end of the
// previous run. Gaps above MaxRunField emit (MaxRunField, 0) continuation
// pairs, lengths above MaxRunField emit (gap, MaxRunField) then (0, rest).
func AppendRunPairs(dst []uint16, offsets []uint32) []uint16 {
	pos := 0
	ForEachRun(offsets, func(start, length int) {
		gap := start - pos
		for gap > MaxRunField {
			dst = append(dst, MaxRunField, 0)
			gap -= MaxRunField
		}
		rest := length
		for rest > MaxRunField {
			dst = append(dst, uint16(gap), MaxRunField)
			gap = 0
			rest -= MaxRunField
		}
		dst = append(dst, uint16(gap), uint16(rest))
		pos = start + length
	})
	return dst
}

// CountRunPairs returns len(AppendRunPairs(nil, offsets)) / 2 without
// allocating.
func CountRunPairs(offsets []uint32) int {
	n := 0
	pos := 0
	ForEachRun(offsets, func(start, length int) {
		if gap := start - pos; gap > MaxRunField {
			n += (gap - 1) / MaxRunField
		}
		if length > MaxRunField {
			n += (length - 1) / MaxRunField
		}
		n++
		pos = start + length
	})
	return n
}
