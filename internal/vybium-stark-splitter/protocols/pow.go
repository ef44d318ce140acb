package protocols

import (
	"encoding/binary"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/core"
)

// MaxProofOfWorkBits is the largest grinding difficulty accepted
const MaxProofOfWorkBits = 50

// powPrefix is mixed into the grinding hash ahead of the transcript digest
var powPrefix = [8]byte{0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xed}

// VerifyProofOfWork checks that keccak(seed || nonce) has nBits leading zero
// bits, where seed = keccak(prefix || digest || nBits)
func VerifyProofOfWork(digest core.Felt, nonce uint64, nBits uint8) error {
	if nBits > MaxProofOfWorkBits {
		return fmt.Errorf("%w: %d proof of work bits, at most %d", ErrShapeMismatch, nBits, MaxProofOfWorkBits)
	}
	if nBits == 0 {
		return nil
	}

	seed := powInit(digest, nBits)
	if !powValid(seed, nonce, powThreshold(nBits)) {
		return fmt.Errorf("%w: nonce %d does not reach %d bits", ErrProofOfWork, nonce, nBits)
	}
	return nil
}

// SolveProofOfWork grinds the smallest nonce satisfying VerifyProofOfWork
func SolveProofOfWork(digest core.Felt, nBits uint8) (uint64, error) {
	if nBits > MaxProofOfWorkBits {
		return 0, fmt.Errorf("%w: %d proof of work bits, at most %d", ErrShapeMismatch, nBits, MaxProofOfWorkBits)
	}
	if nBits == 0 {
		return 0, nil
	}

	seed := powInit(digest, nBits)
	threshold := powThreshold(nBits)
	for nonce := uint64(0); ; nonce++ {
		if powValid(seed, nonce, threshold) {
			return nonce, nil
		}
	}
}

func powInit(digest core.Felt, nBits uint8) [32]byte {
	d := digest.Bytes32()
	return core.Keccak256(powPrefix[:], d[:], []byte{nBits})
}

func powThreshold(nBits uint8) *uint256.Int {
	return new(uint256.Int).Lsh(uint256.NewInt(1), 256-uint(nBits))
}

func powValid(seed [32]byte, nonce uint64, threshold *uint256.Int) bool {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], nonce)
	h := core.Keccak256(seed[:], n[:])
	return new(uint256.Int).SetBytes32(h[:]).Lt(threshold)
}
