package core

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFeltArithmetic(t *testing.T) {
	a := NewFelt(7)
	b := NewFelt(5)

	require.Equal(t, NewFelt(12), a.Add(b))
	require.Equal(t, NewFelt(2), a.Sub(b))
	require.Equal(t, NewFelt(35), a.Mul(b))
	require.Equal(t, NewFelt(49), a.Square())
	require.Equal(t, Zero, a.Add(a.Neg()))
	require.Equal(t, One, a.Mul(a.Inverse()))
	require.Equal(t, NewFelt(343), a.Pow(3))

	// p - 1 wraps around to -1
	pMinusOne, err := FeltFromBig(new(big.Int).Sub(Modulus(), big.NewInt(1)))
	require.NoError(t, err)
	require.Equal(t, One.Neg(), pMinusOne)
	require.True(t, pMinusOne.Add(One).IsZero())
}

func TestFeltFromBigRejectsOverflow(t *testing.T) {
	_, err := FeltFromBig(Modulus())
	require.ErrorIs(t, err, ErrFeltOverflow)

	_, err = FeltFromBig(big.NewInt(-1))
	require.ErrorIs(t, err, ErrFeltOverflow)
}

func TestFeltTextEncodings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Felt
	}{
		{name: "hex", input: "0x1f", want: NewFelt(31)},
		{name: "decimal", input: "31", want: NewFelt(31)},
		{name: "zero", input: "0x0", want: Zero},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FeltFromString(tc.input)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}

	_, err := FeltFromString("0xzz")
	require.ErrorIs(t, err, ErrFeltSyntax)
}

func TestFeltJSON(t *testing.T) {
	type wrapper struct {
		Value Felt   `json:"value"`
		List  []Felt `json:"list"`
	}

	in := wrapper{Value: NewFelt(255), List: []Felt{One, NewFelt(16)}}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	require.JSONEq(t, `{"value":"0xff","list":["0x1","0x10"]}`, string(data))

	var out wrapper
	require.NoError(t, json.Unmarshal(data, &out))
	require.Equal(t, in, out)

	// bare numbers are accepted too
	require.NoError(t, json.Unmarshal([]byte(`{"value":42,"list":[]}`), &out))
	require.Equal(t, NewFelt(42), out.Value)
}

func TestFeltFromRawMatchesSelector(t *testing.T) {
	raw := FeltFromRaw([4]uint64{
		454550947884470974,
		16477582295426715492,
		11685118883294889452,
		4530997181248663582,
	})
	require.Equal(t, MustFeltFromHex("0xb53e890ffceefb79ff82339bda6cb5ab80726b52de3821d940f82d7a265fcf"), raw)
	require.Equal(t, StarknetKeccak([]byte("verify_proof_initial")), raw)
}

func TestRootOfUnity(t *testing.T) {
	for _, logN := range []uint32{1, 4, 10, 20} {
		root, err := RootOfUnity(logN)
		require.NoError(t, err)

		order := new(big.Int).Lsh(big.NewInt(1), uint(logN))
		half := new(big.Int).Rsh(order, 1)
		require.Equal(t, One, root.Exp(order), "root must have order dividing 2^%d", logN)
		require.Equal(t, One.Neg(), root.Exp(half), "root must be primitive for 2^%d", logN)

		cached, err := RootOfUnity(logN)
		require.NoError(t, err)
		require.Equal(t, root, cached)
	}

	_, err := RootOfUnity(TwoAdicity + 1)
	require.Error(t, err)
}

func TestShortString(t *testing.T) {
	f, err := ShortString("recursive")
	require.NoError(t, err)
	require.Equal(t, MustFeltFromHex("0x726563757273697665"), f)

	s, err := DecodeShortString(f)
	require.NoError(t, err)
	require.Equal(t, "recursive", s)

	_, err = ShortString("this string is definitely longer than 31 bytes")
	require.ErrorIs(t, err, ErrShortString)

	_, err = ShortString("café")
	require.ErrorIs(t, err, ErrShortString)
}
