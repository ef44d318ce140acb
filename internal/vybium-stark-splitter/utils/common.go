package utils

// IsPowerOfTwo checks if a number is a power of 2
func IsPowerOfTwo(n uint64) bool {
	return n > 0 && (n&(n-1)) == 0
}

// Log2 computes the base-2 logarithm of a power of 2
func Log2(n uint64) int {
	if !IsPowerOfTwo(n) {
		return -1
	}

	result := 0
	for n > 1 {
		n >>= 1
		result++
	}
	return result
}

// BitReverse reverses the low `bits` bits of x
func BitReverse(x uint64, bits int) uint64 {
	var r uint64
	for i := 0; i < bits; i++ {
		r = (r << 1) | (x & 1)
		x >>= 1
	}
	return r
}
