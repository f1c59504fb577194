//go:build amd64

package simd

import "golang.org/x/sys/cpu"

func detectFeatures() features {
	return features{
		avx2:   cpu.X86.HasAVX2 && cpu.X86.HasFMA,
		avx512: cpu.X86.HasAVX512F && cpu.X86.HasAVX512BW,
	}
}
