package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
)

// FieldGeneratorValue generates the multiplicative group of the Stark field.
const FieldGeneratorValue = 3

// TwoAdicity is the largest k such that 2^k divides p-1.
const TwoAdicity = 192

var (
	// ErrFeltOverflow is returned when a value does not fit below the field modulus
	ErrFeltOverflow = errors.New("value exceeds field modulus")

	// ErrFeltSyntax is returned when a textual felt cannot be parsed
	ErrFeltSyntax = errors.New("invalid felt encoding")
)

// Felt is an element of the Stark prime field p = 2^251 + 17*2^192 + 1.
//
// The zero value is the field element 0. Felt is a value type: arithmetic
// never mutates the receiver. The underlying Montgomery representation is
// canonical, so two Felts can be compared with ==.
type Felt fp.Element

// Common constants
var (
	Zero           = NewFelt(0)
	One            = NewFelt(1)
	Two            = NewFelt(2)
	FieldGenerator = NewFelt(FieldGeneratorValue)
)

// Modulus returns the field modulus
func Modulus() *big.Int {
	return fp.Modulus()
}

// NewFelt creates a field element from a uint64
func NewFelt(v uint64) Felt {
	var e fp.Element
	e.SetUint64(v)
	return Felt(e)
}

// FeltFromBig creates a field element from a non-negative big.Int below the modulus
func FeltFromBig(v *big.Int) (Felt, error) {
	if v.Sign() < 0 || v.Cmp(fp.Modulus()) >= 0 {
		return Zero, fmt.Errorf("%w: %s", ErrFeltOverflow, v.String())
	}
	var e fp.Element
	e.SetBigInt(v)
	return Felt(e), nil
}

// FeltFromBigReduced creates a field element from v mod p
func FeltFromBigReduced(v *big.Int) Felt {
	var e fp.Element
	e.SetBigInt(v)
	return Felt(e)
}

// FeltFromHex parses a 0x-prefixed (or bare) hexadecimal felt
func FeltFromHex(s string) (Felt, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return Zero, fmt.Errorf("%w: %q", ErrFeltSyntax, s)
	}
	return FeltFromBig(v)
}

// MustFeltFromHex is like FeltFromHex but panics on malformed constants
func MustFeltFromHex(s string) Felt {
	f, err := FeltFromHex(s)
	if err != nil {
		panic(err)
	}
	return f
}

// FeltFromString parses a felt written in decimal or 0x-prefixed hexadecimal
func FeltFromString(s string) (Felt, error) {
	v, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return Zero, fmt.Errorf("%w: %q", ErrFeltSyntax, s)
	}
	return FeltFromBig(v)
}

// FeltFromBytes32 interprets b as a big-endian integer and reduces it mod p
func FeltFromBytes32(b [32]byte) Felt {
	var e fp.Element
	e.SetBytes(b[:])
	return Felt(e)
}

// FeltFromRaw builds a felt from its raw Montgomery limbs, most significant
// limb first. This is the layout used by on-chain tooling for constants such
// as entrypoint selectors.
func FeltFromRaw(limbs [4]uint64) Felt {
	return Felt(fp.Element{limbs[3], limbs[2], limbs[1], limbs[0]})
}

func (f *Felt) elem() *fp.Element {
	return (*fp.Element)(f)
}

// Add performs field addition
func (f Felt) Add(g Felt) Felt {
	var r fp.Element
	r.Add(f.elem(), g.elem())
	return Felt(r)
}

// Sub performs field subtraction
func (f Felt) Sub(g Felt) Felt {
	var r fp.Element
	r.Sub(f.elem(), g.elem())
	return Felt(r)
}

// Mul performs field multiplication
func (f Felt) Mul(g Felt) Felt {
	var r fp.Element
	r.Mul(f.elem(), g.elem())
	return Felt(r)
}

// Square returns f^2
func (f Felt) Square() Felt {
	var r fp.Element
	r.Square(f.elem())
	return Felt(r)
}

// Neg returns the additive inverse
func (f Felt) Neg() Felt {
	var r fp.Element
	r.Neg(f.elem())
	return Felt(r)
}

// Inverse returns the multiplicative inverse. The inverse of zero is zero.
func (f Felt) Inverse() Felt {
	var r fp.Element
	r.Inverse(f.elem())
	return Felt(r)
}

// Exp returns f^k
func (f Felt) Exp(k *big.Int) Felt {
	var r fp.Element
	r.Exp(fp.Element(f), k)
	return Felt(r)
}

// Pow returns f^k for a small exponent
func (f Felt) Pow(k uint64) Felt {
	return f.Exp(new(big.Int).SetUint64(k))
}

// Equal reports whether f and g are the same element
func (f Felt) Equal(g Felt) bool {
	return f == g
}

// IsZero reports whether f is the additive identity
func (f Felt) IsZero() bool {
	return f.elem().IsZero()
}

// Cmp compares the canonical integer representatives of f and g
func (f Felt) Cmp(g Felt) int {
	return f.elem().Cmp(g.elem())
}

// Uint64 returns f as a uint64 when it fits
func (f Felt) Uint64() (uint64, bool) {
	if !f.elem().IsUint64() {
		return 0, false
	}
	return f.elem().Uint64(), true
}

// Big returns the canonical integer representative of f
func (f Felt) Big() *big.Int {
	return f.elem().BigInt(new(big.Int))
}

// Bytes32 returns the big-endian encoding of f
func (f Felt) Bytes32() [32]byte {
	return f.elem().Bytes()
}

// Hex returns f as a 0x-prefixed lowercase hexadecimal string
func (f Felt) Hex() string {
	return "0x" + f.Big().Text(16)
}

// String implements fmt.Stringer
func (f Felt) String() string {
	return f.Hex()
}

// MarshalJSON encodes f as a hex string
func (f Felt) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Hex())
}

// UnmarshalJSON accepts a hex or decimal string, or a bare JSON number
func (f *Felt) UnmarshalJSON(data []byte) error {
	var s string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	} else {
		s = string(data)
	}
	v, err := FeltFromString(s)
	if err != nil {
		return err
	}
	*f = v
	return nil
}
