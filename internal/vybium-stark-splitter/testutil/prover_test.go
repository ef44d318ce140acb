package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFoldIndices(t *testing.T) {
	next, leaves := foldIndices([]uint64{1, 2, 13}, 4)
	require.Equal(t, []uint64{0, 3}, next)
	require.Equal(t, 5, leaves)

	next, leaves = foldIndices(nil, 4)
	require.Empty(t, next)
	require.Zero(t, leaves)
}

func TestNewProofShape(t *testing.T) {
	p := DefaultProofParams()
	proof, err := NewProof(p)
	require.NoError(t, err)

	require.Len(t, proof.Witness.FriWitness.Layers, len(p.InnerStepSizes))
	require.Len(t, proof.UnsentCommitment.Fri.LastLayerCoefficients, 1<<p.LogLastLayerDegreeBound)
	require.Equal(t, p.ProofOfWorkBits, proof.Config.ProofOfWork.NBits)

	again, err := NewProof(p)
	require.NoError(t, err)
	require.Equal(t, proof, again)
}

func TestProofParamsValidate(t *testing.T) {
	p := DefaultProofParams()
	p.InnerStepSizes = []uint64{3, 3}
	require.Error(t, p.Validate())

	p = DefaultProofParams()
	p.InnerStepSizes = []uint64{5, 0}
	require.Error(t, p.Validate())

	p = DefaultProofParams()
	p.NQueries = 0
	require.Error(t, p.Validate())
}
