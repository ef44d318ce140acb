package vybiumstarksplitter

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/calldata"
	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/core"
	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/protocols"
	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/testutil"
)

func newProof(t *testing.T) *StarkProof {
	t.Helper()
	proof, err := testutil.NewProof(testutil.DefaultProofParams())
	require.NoError(t, err)
	return proof
}

func TestGenerateCalls(t *testing.T) {
	proof := newProof(t)
	config := DefaultConfig().WithJobID("random_job_id")

	calls, err := GenerateCalls(proof, config)
	require.NoError(t, err)
	require.Len(t, calls, 4)

	require.Equal(t, calldata.SelectorVerifyProofInitial, calls[0].Selector)
	require.Equal(t, calldata.SelectorVerifyProofStep, calls[1].Selector)
	require.Equal(t, calldata.SelectorVerifyProofStep, calls[2].Selector)
	require.Equal(t, calldata.SelectorVerifyProofFinalAndRegisterFact, calls[3].Selector)

	jobID := core.MustShortString("random_job_id")
	to, err := config.ContractFelt()
	require.NoError(t, err)
	for _, c := range calls {
		require.Equal(t, to, c.To)
		require.Equal(t, jobID, c.Calldata[0])
	}

	// job id, then the verifier configuration as short strings
	require.Equal(t, core.MustShortString("recursive"), calls[0].Calldata[1])
	require.Equal(t, core.MustShortString("keccak_160_lsb"), calls[0].Calldata[2])
	require.Equal(t, core.MustShortString("stone6"), calls[0].Calldata[3])
	require.Equal(t, core.MustShortString("cairo1"), calls[0].Calldata[4])
}

func TestGenerateCallsDefaultJobID(t *testing.T) {
	proof := newProof(t)
	calls, err := GenerateIntegrityCalls(proof, nil)
	require.NoError(t, err)
	require.Equal(t, proof.PublicInput.Hash(proof.Config.NVerifierFriendlyCommitmentLayers), calls.Initial.JobID)
}

func TestParseProofRoundTrip(t *testing.T) {
	proof := newProof(t)
	data, err := json.Marshal(proof)
	require.NoError(t, err)
	require.Contains(t, string(data), `"unsent_commitment"`)

	parsed, err := ParseProof(data)
	require.NoError(t, err)

	want, err := GenerateCalls(proof, nil)
	require.NoError(t, err)
	got, err := GenerateCalls(parsed, nil)
	require.NoError(t, err)
	require.Equal(t, want, got)

	_, err = ParseProof([]byte(`{"config": 12}`))
	require.ErrorIs(t, err, &SplitError{Code: ErrInvalidInput})
}

func TestErrorCategories(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*StarkProof, *Config)
		code   ErrorCode
	}{
		{
			name:   "invalid config",
			mutate: func(_ *StarkProof, c *Config) { c.WithContract("nope") },
			code:   ErrInvalidConfig,
		},
		{
			name:   "unknown layout",
			mutate: func(_ *StarkProof, c *Config) { c.WithLayout("starknet") },
			code:   ErrShape,
		},
		{
			name:   "layout mismatch",
			mutate: func(_ *StarkProof, c *Config) { c.WithLayout("plain") },
			code:   ErrShape,
		},
		{
			name:   "oods values",
			mutate: func(p *StarkProof, _ *Config) { p.UnsentCommitment.OodsValues = p.UnsentCommitment.OodsValues[1:] },
			code:   ErrShape,
		},
		{
			name:   "proof of work",
			mutate: func(p *StarkProof, _ *Config) { p.Config.ProofOfWork.NBits = 40 },
			code:   ErrProtocol,
		},
		{
			name: "fri witness",
			mutate: func(p *StarkProof, _ *Config) {
				layer := &p.Witness.FriWitness.Layers[1]
				layer.Leaves = append(layer.Leaves, core.One)
			},
			code: ErrProtocol,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			proof := newProof(t)
			config := DefaultConfig()
			tc.mutate(proof, config)

			_, err := GenerateCalls(proof, config)
			require.Error(t, err)
			require.ErrorIs(t, err, &SplitError{Code: tc.code})

			var splitErr *SplitError
			require.True(t, errors.As(err, &splitErr))
			require.Equal(t, tc.code, splitErr.Code, splitErr.Error())
		})
	}
}

func TestSequencingError(t *testing.T) {
	s, err := SplitProof(newProof(t), "")
	require.NoError(t, err)

	_, err = s.Steps.Final()
	require.Error(t, err)
	require.ErrorIs(t, classify("final", err), &SplitError{Code: ErrSequencing})
}

func TestMissingDynamicParams(t *testing.T) {
	params := testutil.DefaultProofParams()
	params.Layout = "dynamic"
	params.DynamicParams = []uint64{3, 1}
	proof, err := testutil.NewProof(params)
	require.NoError(t, err)

	_, err = SplitProof(proof, "dynamic")
	require.NoError(t, err)

	proof.PublicInput.DynamicParams = nil
	_, err = SplitProof(proof, "dynamic")
	require.ErrorIs(t, err, &SplitError{Code: ErrShape})
	require.ErrorIs(t, err, protocols.ErrColumnMissing)
}

func TestSplitErrorMessages(t *testing.T) {
	err := &SplitError{Code: ErrShape, Message: "bad proof", Cause: protocols.ErrShapeMismatch}
	require.Equal(t, "vybium-stark-splitter error [shape]: bad proof (caused by: proof shape mismatch)", err.Error())
	require.ErrorIs(t, err, protocols.ErrShapeMismatch)
	require.False(t, errors.Is(err, &SplitError{Code: ErrProtocol}))

	require.Nil(t, classify("nothing", nil))
	wrapped := classify("outer", err)
	require.Same(t, err, wrapped)
}

func TestLayouts(t *testing.T) {
	require.Contains(t, Layouts(), "recursive")
}
