// Package testutil builds synthetic proofs for tests and examples.
package testutil

import (
	"fmt"

	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/core"
	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/protocols"
	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/utils"
)

// ProofParams describes the synthetic proof to build
type ProofParams struct {
	Layout                  string
	LogTraceDomainSize      uint64
	LogNCosets              uint64
	InnerStepSizes          []uint64 // one per inner FRI layer
	LogLastLayerDegreeBound uint64
	NQueries                uint64
	ProofOfWorkBits         uint8
	DynamicParams           []uint64
	Seed                    uint64
}

// DefaultProofParams returns a recursive layout proof with two step calls
func DefaultProofParams() ProofParams {
	return ProofParams{
		Layout:                  "recursive",
		LogTraceDomainSize:      6,
		LogNCosets:              2,
		InnerStepSizes:          []uint64{3, 2},
		LogLastLayerDegreeBound: 1,
		NQueries:                8,
		ProofOfWorkBits:         8,
		Seed:                    1,
	}
}

// Validate checks if the parameters describe a consistent proof
func (p ProofParams) Validate() error {
	var folded uint64
	for i, s := range p.InnerStepSizes {
		if s < 1 || s > protocols.MaxFriStep {
			return fmt.Errorf("inner step %d has size %d", i, s)
		}
		folded += s
	}
	if folded+p.LogLastLayerDegreeBound != p.LogTraceDomainSize {
		return fmt.Errorf("steps fold %d and last layer is 2^%d, trace domain is 2^%d",
			folded, p.LogLastLayerDegreeBound, p.LogTraceDomainSize)
	}
	if p.NQueries == 0 {
		return fmt.Errorf("at least one query is required")
	}
	return nil
}

// NewProof builds a proof whose witnesses have exactly the shape the
// splitter expects.
//
// The proof is built in the order the verifier reads it:
// 1. Configuration and public input from the parameters
// 2. Commitments filled with deterministic values
// 3. Proof of work ground against the transcript digest
// 4. Queries derived from the transcript to size every decommitment
// 5. FRI layer witnesses sized by replaying the query folding
//
// The values are not a valid STARK proof; only the shapes are.
func NewProof(p ProofParams) (*protocols.StarkProof, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid proof parameters: %w", err)
	}
	layout, err := protocols.LayoutByName(p.Layout)
	if err != nil {
		return nil, err
	}
	src := &source{seed: p.Seed}

	pi := publicInput(p, src)
	nFirst, nSecond, err := protocols.ResolveColumns(layout, &pi)
	if err != nil {
		return nil, err
	}

	// 1. Configuration
	logEval := p.LogTraceDomainSize + p.LogNCosets
	stepSizes := append([]uint64{0}, p.InnerStepSizes...)
	innerLayers := make([]protocols.TableCommitmentConfig, len(p.InnerStepSizes))
	logLayer := logEval
	for i, s := range p.InnerStepSizes {
		logLayer -= s
		next := uint64(0)
		if i+1 < len(p.InnerStepSizes) {
			next = p.InnerStepSizes[i+1]
		}
		innerLayers[i] = tableConfig(uint64(1)<<next, logLayer-next)
	}

	cfg := protocols.StarkConfig{
		Traces: protocols.TracesConfig{
			Original:    tableConfig(uint64(nFirst), logEval),
			Interaction: tableConfig(uint64(nSecond), logEval),
		},
		Composition: tableConfig(uint64(layout.ConstraintDegree()), logEval),
		Fri: protocols.FriConfig{
			LogInputSize:            core.NewFelt(logEval),
			NLayers:                 core.NewFelt(uint64(len(stepSizes))),
			InnerLayers:             innerLayers,
			FriStepSizes:            uintFelts(stepSizes),
			LogLastLayerDegreeBound: core.NewFelt(p.LogLastLayerDegreeBound),
		},
		LogTraceDomainSize: core.NewFelt(p.LogTraceDomainSize),
		NQueries:           core.NewFelt(p.NQueries),
		LogNCosets:         core.NewFelt(p.LogNCosets),
	}

	// 2. Commitments
	unsent := protocols.StarkUnsentCommitment{
		Traces: protocols.TracesUnsentCommitment{
			Original:    src.next(),
			Interaction: src.next(),
		},
		Composition: src.next(),
		OodsValues:  src.felts(protocols.NumOodsValues(layout, nFirst, nSecond)),
		Fri: protocols.FriUnsentCommitment{
			InnerLayers:           src.felts(len(innerLayers)),
			LastLayerCoefficients: src.felts(1 << p.LogLastLayerDegreeBound),
		},
	}

	domains, err := protocols.DomainsFromConfig(&cfg)
	if err != nil {
		return nil, err
	}
	seed := pi.Hash(cfg.NVerifierFriendlyCommitmentLayers)

	// 3. Proof of work
	t := utils.NewTranscript(seed)
	if _, err := protocols.StarkCommit(t, &pi, &unsent, &cfg, domains, layout); err != nil {
		return nil, err
	}
	nonce, err := protocols.SolveProofOfWork(t.Digest(), p.ProofOfWorkBits)
	if err != nil {
		return nil, err
	}
	cfg.ProofOfWork.NBits = p.ProofOfWorkBits
	unsent.ProofOfWork.Nonce = nonce

	// 4. Queries
	t = utils.NewTranscript(seed)
	if _, err := protocols.StarkCommit(t, &pi, &unsent, &cfg, domains, layout); err != nil {
		return nil, err
	}
	queries, err := protocols.GenerateQueries(t, p.NQueries, domains.EvalDomainSize)
	if err != nil {
		return nil, err
	}
	n := len(queries)

	witness := protocols.StarkWitness{
		TracesDecommitment: protocols.TracesDecommitment{
			Original:    protocols.TableDecommitment{Values: src.felts(n * int(nFirst))},
			Interaction: protocols.TableDecommitment{Values: src.felts(n * int(nSecond))},
		},
		TracesWitness: protocols.TracesWitness{
			Original:    src.tableWitness(n),
			Interaction: src.tableWitness(n),
		},
		CompositionDecommitment: protocols.TableDecommitment{Values: src.felts(n * int(layout.ConstraintDegree()))},
		CompositionWitness:      src.tableWitness(n),
	}

	// 5. FRI layers
	indices := queries
	for _, s := range p.InnerStepSizes {
		var leaves int
		indices, leaves = foldIndices(indices, uint64(1)<<s)
		witness.FriWitness.Layers = append(witness.FriWitness.Layers, protocols.FriLayerWitness{
			Leaves:       src.felts(leaves),
			TableWitness: src.tableWitness(len(indices)),
		})
	}

	return &protocols.StarkProof{
		Config:           cfg,
		PublicInput:      pi,
		UnsentCommitment: unsent,
		Witness:          witness,
	}, nil
}

// MustNewProof is like NewProof but panics on error
func MustNewProof(p ProofParams) *protocols.StarkProof {
	proof, err := NewProof(p)
	if err != nil {
		panic(err)
	}
	return proof
}

// foldIndices returns the query indices of the next layer and the number of
// coset siblings the witness must supply
func foldIndices(indices []uint64, cosetSize uint64) ([]uint64, int) {
	var next []uint64
	leaves := 0
	for i := 0; i < len(indices); {
		coset := indices[i] / cosetSize
		covered := 0
		for i < len(indices) && indices[i]/cosetSize == coset {
			covered++
			i++
		}
		leaves += int(cosetSize) - covered
		next = append(next, coset)
	}
	return next, leaves
}

func publicInput(p ProofParams, src *source) protocols.PublicInput {
	pi := protocols.PublicInput{
		LogNSteps:     core.NewFelt(p.LogTraceDomainSize),
		RangeCheckMin: core.NewFelt(0),
		RangeCheckMax: core.NewFelt(0xffff),
		Layout:        core.MustShortString(p.Layout),
		DynamicParams: uintFelts(p.DynamicParams),
		Segments: []protocols.SegmentInfo{
			{BeginAddr: core.NewFelt(1), StopPtr: core.NewFelt(5)},
			{BeginAddr: core.NewFelt(100), StopPtr: core.NewFelt(140)},
		},
		PaddingAddr:  core.NewFelt(1),
		PaddingValue: src.next(),
		MainPage: []protocols.AddrValue{
			{Address: core.NewFelt(1), Value: src.next()},
			{Address: core.NewFelt(2), Value: src.next()},
		},
	}
	if len(p.DynamicParams) == 0 {
		pi.DynamicParams = nil
	}
	return pi
}

func tableConfig(nColumns, height uint64) protocols.TableCommitmentConfig {
	return protocols.TableCommitmentConfig{
		NColumns: core.NewFelt(nColumns),
		Vector: protocols.VectorCommitmentConfig{
			Height:                            core.NewFelt(height),
			NVerifierFriendlyCommitmentLayers: core.NewFelt(0),
		},
	}
}

func uintFelts(vs []uint64) []core.Felt {
	out := make([]core.Felt, len(vs))
	for i, v := range vs {
		out[i] = core.NewFelt(v)
	}
	return out
}

// source derives a deterministic stream of felts from a seed
type source struct {
	seed    uint64
	counter uint64
}

func (s *source) next() core.Felt {
	s.counter++
	return core.FeltFromDigest(core.KeccakFelts(core.NewFelt(s.seed), core.NewFelt(s.counter)))
}

func (s *source) felts(n int) []core.Felt {
	out := make([]core.Felt, n)
	for i := range out {
		out[i] = s.next()
	}
	return out
}

func (s *source) tableWitness(n int) protocols.TableCommitmentWitness {
	return protocols.TableCommitmentWitness{
		Vector: protocols.VectorCommitmentWitness{Authentications: s.felts(n)},
	}
}
