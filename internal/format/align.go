package format

// Alignment utilities for pool geometry.
// Chunk strides must be aligned to the handle link width so that a freed
// chunk can always hold a freelist link in its first bytes.

// Align returns n aligned up to the next multiple of a.
// a must be a power of two. Align(0, a) = 0.
//
// Example:
//
//	Align(2, 4) = 4
//	Align(3, 4) = 4
//	Align(5, 4) = 8
//	Align(8, 8) = 8
func Align(n, a int) int {
	return (n + a - 1) &^ (a - 1)
}

// AlignU32 returns n aligned up to the next multiple of a.
// uint32 version for use in block geometry code to avoid conversion noise.
func AlignU32(n, a uint32) uint32 {
	return (n + a - 1) &^ (a - 1)
}
