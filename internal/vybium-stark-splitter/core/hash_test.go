package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPoseidonVectors(t *testing.T) {
	require.Equal(t,
		MustFeltFromHex("0x5d44a3decb2b2e0cc71071f7b802f45dd792d064f0fc7316c46514f70f9891a"),
		Poseidon(NewFelt(1), NewFelt(2)))

	tests := []struct {
		name  string
		felts []Felt
		want  string
	}{
		{"empty", nil, "0x2272be0f580fd156823304800919530eaa97430e972d7213ee13f4fbf7a5dbc"},
		{"odd", []Felt{NewFelt(1), NewFelt(2), NewFelt(3)}, "0x2f0d8840bcf3bc629598d8a6cc80cb7c0d9e52d93dab244bbf9cd0dca0ad082"},
		{"even", []Felt{Zero, NewFelt(1), NewFelt(2), NewFelt(3)}, "0x7b8f30ac298ea12d170c0873f1fa631a18c00756c6e7d1fd273b9a239d0d413"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, MustFeltFromHex(tt.want), PoseidonMany(tt.felts...))
		})
	}

	require.NotEqual(t, Poseidon(NewFelt(1), NewFelt(2)), PoseidonMany(NewFelt(1), NewFelt(2)))
}

func TestPedersenArray(t *testing.T) {
	a := MustFeltFromHex("0x03d937c035c878245caf64531a5756109c53068da139362728feb561405371cb")
	b := MustFeltFromHex("0x0208a0a10250e382e1e4bbe2880906c2791bf6275695e02fbbc6aeff9cd8b31a")

	// h(h(h(0, a), b), 2) differs from the bare pair hash
	require.NotEqual(t, MustFeltFromHex("0x030e480bed5fe53fa909cc0f8c4d99b8f9f2c016be4c41e13a4848797979c662"), PedersenArray(a, b))
	require.Equal(t, PedersenArray(a, b), PedersenArray(a, b))
	require.NotEqual(t, PedersenArray(a, b), PedersenArray(b, a))
}

func TestStarknetKeccakSelector(t *testing.T) {
	sel := StarknetKeccak([]byte("verify_proof_initial"))
	require.Less(t, sel.Big().BitLen(), 251)
}
