package blend

// div255 divides x by 255 with rounding, without using division.
//
// Formula: ((x + 128) + ((x + 128) >> 8)) >> 8
//
// Exact for all products of two bytes (Alvy Ray Smith, Tech Memo 4).
func div255(x uint16) uint16 {
	t := uint32(x) + 128
	return uint16((t + (t >> 8)) >> 8)
}

// MulDiv255 multiplies two bytes and divides by 255.
func MulDiv255(a, b byte) byte {
	return byte(div255(uint16(a) * uint16(b)))
}

// addClamp adds two bytes, saturating at 255.
func addClamp(a, b byte) byte {
	sum := uint16(a) + uint16(b)
	if sum > 255 {
		return 255
	}
	return byte(sum)
}
