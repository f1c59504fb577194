package simd

import "gonum.org/v1/gonum/floats"

// Dot returns the dot product of a and b.
//
// SAFETY: assumes len(a) == len(b). Callers must ensure matching lengths.
func Dot(a, b []float64) float64 {
	return floats.Dot(a, b)
}

// MatVec computes out[i] = dot(m[i*cols:(i+1)*cols], v) for i in [0, rows).
// m is row-major. out must have length >= rows and v length >= cols.
func MatVec(m []float64, rows, cols int, v, out []float64) {
	if rows == 0 {
		return
	}
	switch cols {
	case 1:
		s := v[0]
		for i := 0; i < rows; i++ {
			out[i] = m[i] * s
		}
	case 2:
		a, b := v[0], v[1]
		for i := 0; i < rows; i++ {
			out[i] = m[2*i]*a + m[2*i+1]*b
		}
	default:
		vv := v[:cols]
		for i := 0; i < rows; i++ {
			off := i * cols
			out[i] = floats.Dot(m[off:off+cols], vv)
		}
	}
}

// AddScaled performs dst += alpha * s.
//
// SAFETY: assumes len(dst) == len(s).
func AddScaled(dst []float64, alpha float64, s []float64) {
	floats.AddScaled(dst, alpha, s)
}

// Gather sets dst[j] = src[idx[j]].
func Gather(dst, src []float64, idx []int) {
	for j, i := range idx {
		dst[j] = src[i]
	}
}

// ScatterAdd performs dst[idx[j]] += src[j].
func ScatterAdd(dst, src []float64, idx []int) {
	for j, i := range idx {
		dst[i] += src[j]
	}
}
