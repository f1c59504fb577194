package simd

import (
	"os"
	"runtime"
	"strings"
)

// ISA is the instruction set family detected on the running CPU.
type ISA uint8

const (
	// Generic means no wide vector unit was detected.
	Generic ISA = iota
	// NEON is ARM64 ASIMD (128-bit).
	NEON
	// SVE2 is ARM64 scalable vectors.
	SVE2
	// AVX2 is x86-64 AVX2 with FMA (256-bit).
	AVX2
	// AVX512 is x86-64 AVX-512 F+BW (512-bit).
	AVX512
)

// String returns the string representation of an ISA.
func (i ISA) String() string {
	switch i {
	case Generic:
		return "generic"
	case NEON:
		return "neon"
	case SVE2:
		return "sve2"
	case AVX2:
		return "avx2"
	case AVX512:
		return "avx512"
	default:
		return "unknown"
	}
}

// ParseISA parses a string into an ISA value.
func ParseISA(s string) (ISA, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "generic":
		return Generic, true
	case "neon":
		return NEON, true
	case "sve2":
		return SVE2, true
	case "avx2":
		return AVX2, true
	case "avx512":
		return AVX512, true
	default:
		return Generic, false
	}
}

// Row block sizes for the batched right multiply. Wide-vector server parts
// ship with at least 1 MiB of L2 per core, which fits two blocks of
// pre-aggregated values plus the output slice.
const (
	smallRowBlock = 1024
	largeRowBlock = 2048
)

// features are the vector units reported by the CPU.
type features struct {
	neon, sve2, avx2, avx512 bool
}

func (f features) has(isa ISA) bool {
	switch isa {
	case Generic:
		return true
	case NEON:
		return f.neon
	case SVE2:
		return f.sve2
	case AVX2:
		return f.avx2
	case AVX512:
		return f.avx512
	default:
		return false
	}
}

// Read-only after package initialization.
var (
	cpuFeatures            = detectFeatures()
	activeISA, hasOverride = selectISA(os.Getenv("CLA_SIMD"))
)

// selectISA honors a CLA_SIMD override when the CPU supports it.
func selectISA(override string) (ISA, bool) {
	if override != "" {
		if isa, ok := ParseISA(override); ok && cpuFeatures.has(isa) {
			return isa, true
		}
	}
	return selectBestISA(), false
}

func selectBestISA() ISA {
	switch runtime.GOARCH {
	case "arm64":
		// Apple silicon reports SVE2 as unavailable or slow; prefer NEON there.
		if cpuFeatures.sve2 && runtime.GOOS != "darwin" {
			return SVE2
		}
		if cpuFeatures.neon {
			return NEON
		}
	case "amd64":
		if cpuFeatures.avx512 {
			return AVX512
		}
		if cpuFeatures.avx2 {
			return AVX2
		}
	}
	return Generic
}

// ActiveISA returns the currently active ISA.
func ActiveISA() ISA {
	return activeISA
}

// IsOverridden returns true if CLA_SIMD selected the ISA.
func IsOverridden() bool {
	return hasOverride
}

// RowBlockSize returns the number of rows processed per block by the
// cache-blocked multi-group kernels.
func RowBlockSize() int {
	switch activeISA {
	case AVX512, SVE2:
		return largeRowBlock
	default:
		return smallRowBlock
	}
}
