package split

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"

	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/calldata"
	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/core"
	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/protocols"
	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/utils"
)

var (
	logger = log.New("module", "split")

	splitCounter = metrics.NewRegisteredCounter("splitter/split/count", nil)
	splitFailed  = metrics.NewRegisteredCounter("splitter/split/failed", nil)
	stepCounter  = metrics.NewRegisteredCounter("splitter/split/steps", nil)
	splitTimer   = metrics.NewRegisteredTimer("splitter/split/time", nil)
)

// SplitProof is a proof prepared for submission in several calls
type SplitProof struct {
	// InitialProof is the proof sent in the initial call, without FRI layer
	// witnesses
	InitialProof protocols.StarkProof

	// PublicInputHash seeds the transcript
	PublicInputHash core.Felt

	Commitment *protocols.StarkCommitment
	Queries    []uint64

	history []utils.Event

	// Steps produces the step and final calls
	Steps *StepIterator
}

// Split replays the verifier up to the first FRI layer and prepares one step
// per inner FRI layer
func Split(proof *protocols.StarkProof, layout protocols.Layout) (*SplitProof, error) {
	start := time.Now()
	s, err := split(proof, layout)
	if err != nil {
		splitFailed.Inc(1)
		return nil, err
	}
	splitCounter.Inc(1)
	splitTimer.Update(time.Since(start))
	return s, nil
}

func split(proof *protocols.StarkProof, layout protocols.Layout) (*SplitProof, error) {
	cfg := &proof.Config
	witness := &proof.Witness

	// 1. Resolve the layout before touching the transcript
	nFirst, nSecond, err := protocols.ResolveColumns(layout, &proof.PublicInput)
	if err != nil {
		return nil, err
	}

	// 2. Domains and transcript
	domains, err := protocols.DomainsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	seed := proof.PublicInput.Hash(cfg.NVerifierFriendlyCommitmentLayers)
	transcript := utils.NewTranscript(seed)

	// 3. Commit phase
	commitment, err := protocols.StarkCommit(transcript, &proof.PublicInput, &proof.UnsentCommitment, cfg, domains, layout)
	if err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	if len(witness.FriWitness.Layers) != len(commitment.Fri.InnerLayers) {
		return nil, fmt.Errorf("%w: %d fri layer witnesses for %d inner layers",
			protocols.ErrShapeMismatch, len(witness.FriWitness.Layers), len(commitment.Fri.InnerLayers))
	}
	stepSizes, err := cfg.Fri.StepSizes()
	if err != nil {
		return nil, err
	}

	// 4. Queries
	nQueries, err := cfg.QueryCount()
	if err != nil {
		return nil, err
	}
	queries, err := protocols.GenerateQueries(transcript, nQueries, domains.EvalDomainSize)
	if err != nil {
		return nil, err
	}

	// 5. First FRI layer
	points := protocols.QueriesToPoints(queries, domains)
	evals, err := protocols.EvalOodsBoundaryPolyAtPoints(
		layout, nFirst, nSecond,
		protocols.OodsInfo(commitment, domains),
		points,
		&witness.TracesDecommitment,
		&witness.CompositionDecommitment,
	)
	if err != nil {
		return nil, fmt.Errorf("boundary evaluation: %w", err)
	}
	first, err := protocols.GatherFirstLayerQueries(queries, evals, points)
	if err != nil {
		return nil, err
	}

	constant := NewStateConstant(&commitment.Fri)
	steps := newStepIterator(constant, stepSizes[1:], witness.FriWitness.Layers, first, commitment.Fri.LastLayerCoefficients)

	logger.Debug("Split proof",
		"layout", layout.Name(),
		"queries", len(queries),
		"steps", steps.Remaining(),
		"publicInputHash", seed)

	return &SplitProof{
		InitialProof:    proof.StripFriWitness(),
		PublicInputHash: seed,
		Commitment:      commitment,
		Queries:         queries,
		history:         transcript.History(),
		Steps:           steps,
	}, nil
}

// NewStateConstant builds the FRI state shared by the step and final calls
func NewStateConstant(fri *protocols.FriCommitment) calldata.FriVerificationStateConstant {
	return calldata.FriVerificationStateConstant{
		NLayers:                   uint32(len(fri.InnerLayers)),
		Commitment:                append([]protocols.TableCommitment(nil), fri.InnerLayers...),
		EvalPoints:                append([]core.Felt(nil), fri.EvalPoints...),
		StepSizes:                 append([]core.Felt(nil), fri.Config.FriStepSizes[1:]...),
		LastLayerCoefficientsHash: LastLayerCoefficientsHash(fri.LastLayerCoefficients),
	}
}

// LastLayerCoefficientsHash is the Poseidon hash of the last FRI layer
// coefficients carried by the step calls
func LastLayerCoefficientsHash(coefficients []core.Felt) core.Felt {
	return core.PoseidonMany(coefficients...)
}

// History returns a copy of the transcript events recorded up to the query
// draw
func (s *SplitProof) History() []utils.Event {
	out := make([]utils.Event, len(s.history))
	for i, e := range s.history {
		out[i] = utils.Event{Kind: e.Kind, Values: append([]core.Felt(nil), e.Values...)}
	}
	return out
}

// IntoCalls drives the step iterator to the end and binds every call. The
// split proof is consumed.
func (s *SplitProof) IntoCalls(jobID core.Felt, verifier calldata.VerifierConfiguration) (*calldata.IntegrityCalls, error) {
	if s.Steps == nil {
		return nil, fmt.Errorf("%w: split proof already consumed", ErrFinalConsumed)
	}
	steps := s.Steps
	s.Steps = nil

	calls := &calldata.IntegrityCalls{
		Initial: calldata.VerifyProofInitialCall{
			JobID:          jobID,
			VerifierConfig: verifier,
			StarkProof:     s.InitialProof,
		},
		IntermediateSteps: make([]calldata.VerifyProofStepCall, 0, steps.Remaining()),
	}

	for {
		p, ok, err := steps.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		calls.IntermediateSteps = append(calls.IntermediateSteps, calldata.VerifyProofStepCall{
			JobID:         jobID,
			StateConstant: p.StateConstant,
			StateVariable: p.StateVariable,
			Witness:       p.Witness,
		})
	}

	final, err := steps.Final()
	if err != nil {
		return nil, err
	}
	calls.FinalStep = calldata.VerifyProofFinalAndRegisterFactCall{
		JobID:                 jobID,
		StateConstant:         final.StateConstant,
		StateVariable:         final.StateVariable,
		LastLayerCoefficients: final.LastLayerCoefficients,
	}
	return calls, nil
}
