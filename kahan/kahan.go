// Package kahan provides a compensated floating-point accumulator.
//
// A Sum keeps a running correction term next to the running total so that
// the error of adding many terms stays bounded independent of the number of
// terms, instead of growing linearly as with naive summation.
package kahan

// Sum is a Kahan accumulator. The zero value is an empty sum.
type Sum struct {
	sum  float64
	corr float64
}

// Add adds v to the sum.
func (k *Sum) Add(v float64) {
	y := v - k.corr
	t := k.sum + y
	k.corr = (t - k.sum) - y
	k.sum = t
}

// AddCount adds v count times, as a single product term.
func (k *Sum) AddCount(v float64, count int) {
	if count == 0 {
		return
	}
	k.Add(v * float64(count))
}

// Value returns the compensated total.
func (k Sum) Value() float64 {
	return k.sum
}

// Of sums values with compensation.
func Of(values []float64) float64 {
	var k Sum
	for _, v := range values {
		k.Add(v)
	}
	return k.Value()
}
