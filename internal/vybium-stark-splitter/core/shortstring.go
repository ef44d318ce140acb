package core

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// MaxShortStringLen is the longest string that fits in a single felt
const MaxShortStringLen = 31

// ErrShortString is returned for strings that cannot be encoded as a short string
var ErrShortString = errors.New("invalid short string")

// ShortString encodes an ASCII string of at most 31 bytes as a felt, reading
// the bytes as a big-endian integer.
func ShortString(s string) (Felt, error) {
	if len(s) > MaxShortStringLen {
		return Zero, fmt.Errorf("%w: %q is %d bytes long (max %d)", ErrShortString, s, len(s), MaxShortStringLen)
	}
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7f {
			return Zero, fmt.Errorf("%w: %q contains non-ASCII byte at %d", ErrShortString, s, i)
		}
	}
	return FeltFromBigReduced(new(big.Int).SetBytes([]byte(s))), nil
}

// MustShortString is like ShortString but panics on invalid input
func MustShortString(s string) Felt {
	f, err := ShortString(s)
	if err != nil {
		panic(err)
	}
	return f
}

// DecodeShortString is the inverse of ShortString. Leading zero bytes are dropped.
func DecodeShortString(f Felt) (string, error) {
	b := f.Big().Bytes()
	if len(b) > MaxShortStringLen {
		return "", fmt.Errorf("%w: %s does not fit in %d bytes", ErrShortString, f, MaxShortStringLen)
	}
	var sb strings.Builder
	for _, c := range b {
		if c > 0x7f {
			return "", fmt.Errorf("%w: %s contains non-ASCII byte", ErrShortString, f)
		}
		sb.WriteByte(c)
	}
	return sb.String(), nil
}
