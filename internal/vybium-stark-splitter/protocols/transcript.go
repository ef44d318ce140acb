package protocols

import (
	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/core"
	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/utils"
)

// Transcript is the Fiat-Shamir channel the commit phase and query sampling
// run on. utils.Transcript is the Poseidon channel the on-chain verifier uses.
type Transcript interface {
	RandomFeltToProver() core.Felt
	RandomFeltsToProver(n int) []core.Felt
	ReadFeltFromProver(v core.Felt)
	ReadFeltVectorFromProver(values []core.Felt)
	ReadUint64FromProver(v uint64)
	Digest() core.Felt
}

var _ Transcript = (*utils.Transcript)(nil)
