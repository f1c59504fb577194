//go:build arm64

package simd

import "golang.org/x/sys/cpu"

func detectFeatures() features {
	return features{neon: cpu.ARM64.HasASIMD, sve2: cpu.ARM64.HasSVE2}
}
