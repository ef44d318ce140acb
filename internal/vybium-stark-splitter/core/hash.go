package core

import (
	"github.com/NethermindEth/juno/core/crypto"
	"github.com/NethermindEth/juno/core/felt"
	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"
)

var (
	mask250 = new(uint256.Int).SubUint64(new(uint256.Int).Lsh(uint256.NewInt(1), 250), 1)
	mask251 = new(uint256.Int).SubUint64(new(uint256.Int).Lsh(uint256.NewInt(1), 251), 1)
)

// Keccak256 computes the legacy Keccak-256 digest of the concatenated inputs
func Keccak256(data ...[]byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	var out [32]byte
	h.Sum(out[:0])
	return out
}

// KeccakFelts hashes the 32-byte big-endian encodings of the given felts
func KeccakFelts(felts ...Felt) [32]byte {
	h := sha3.NewLegacyKeccak256()
	for _, f := range felts {
		b := f.Bytes32()
		h.Write(b[:])
	}
	var out [32]byte
	h.Sum(out[:0])
	return out
}

// StarknetKeccak returns the Keccak-256 digest of data truncated to 250 bits,
// which is how entrypoint selectors are derived from their names.
func StarknetKeccak(data []byte) Felt {
	return truncatedDigest(Keccak256(data), mask250)
}

// FeltFromDigest keeps the low 251 bits of a digest, which always lie below p
func FeltFromDigest(digest [32]byte) Felt {
	return truncatedDigest(digest, mask251)
}

func truncatedDigest(digest [32]byte, mask *uint256.Int) Felt {
	v := new(uint256.Int).SetBytes32(digest[:])
	v.And(v, mask)
	return FeltFromBytes32(v.Bytes32())
}

// Poseidon hashes two felts with the Starknet Poseidon permutation
func Poseidon(a, b Felt) Felt {
	x, y := toJuno(a), toJuno(b)
	return fromJuno(crypto.Poseidon(&x, &y))
}

// PoseidonMany hashes a sequence of felts with Starknet Poseidon array
// hashing. The sequence is padded, so PoseidonMany(a, b) differs from
// Poseidon(a, b).
func PoseidonMany(felts ...Felt) Felt {
	return fromJuno(crypto.PoseidonArray(junoSlice(felts)...))
}

// PedersenArray chains Starknet Pedersen over felts starting from zero and
// finishes with the element count
func PedersenArray(felts ...Felt) Felt {
	return fromJuno(crypto.PedersenArray(junoSlice(felts)...))
}

func toJuno(f Felt) felt.Felt {
	return felt.New(fp.Element(f))
}

func fromJuno(f *felt.Felt) Felt {
	return Felt(*f.Impl())
}

func junoSlice(felts []Felt) []*felt.Felt {
	vals := make([]felt.Felt, len(felts))
	ptrs := make([]*felt.Felt, len(felts))
	for i, f := range felts {
		vals[i] = toJuno(f)
		ptrs[i] = &vals[i]
	}
	return ptrs
}
