package protocols

import (
	"fmt"

	"github.com/ethereum/go-ethereum/log"

	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/core"
)

// MaxFriStep is the largest number of folds a single FRI layer may perform
const MaxFriStep = 4

var logger = log.New("module", "protocols")

// VectorCommitment is a Merkle root together with the tree shape
type VectorCommitment struct {
	Config         VectorCommitmentConfig
	CommitmentHash core.Felt
}

// TableCommitment is a committed table
type TableCommitment struct {
	Config           TableCommitmentConfig
	VectorCommitment VectorCommitment
}

// TracesCommitment holds both trace commitments and the challenges drawn
// between them
type TracesCommitment struct {
	Original            TableCommitment
	InteractionElements []core.Felt
	Interaction         TableCommitment
}

// FriCommitment holds the FRI layer commitments and their folding challenges
type FriCommitment struct {
	Config                FriConfig
	InnerLayers           []TableCommitment
	EvalPoints            []core.Felt
	LastLayerCoefficients []core.Felt
}

// StarkCommitment holds everything the verifier derives while replaying the
// transcript over the unsent commitment
type StarkCommitment struct {
	Traces           TracesCommitment
	CompositionAlpha core.Felt
	Composition      TableCommitment

	// InteractionAfterComposition is the out of domain sampling point
	InteractionAfterComposition core.Felt
	OodsValues                  []core.Felt

	// InteractionAfterOods are the coefficients of the boundary quotients
	InteractionAfterOods []core.Felt
	Fri                  FriCommitment
}

// OodsPoint returns the out of domain sampling point
func (c *StarkCommitment) OodsPoint() core.Felt {
	return c.InteractionAfterComposition
}

// NLayers returns the number of FRI layers, input layer included
func (c *FriCommitment) NLayers() int {
	return len(c.InnerLayers) + 1
}

// StarkCommit replays the commit phase of the verifier on t.
//
// Values are absorbed and challenges squeezed in this order:
//  1. original trace root, interaction elements, interaction trace root
//  2. composition alpha, composition root
//  3. out of domain point, out of domain values
//  4. boundary coefficients alpha
//  5. for each inner FRI layer, its root then its evaluation point
//  6. last layer coefficients
//  7. proof of work nonce
func StarkCommit(
	t Transcript,
	pi *PublicInput,
	unsent *StarkUnsentCommitment,
	cfg *StarkConfig,
	domains *StarkDomains,
	layout Layout,
) (*StarkCommitment, error) {
	nFirst, nSecond, err := ResolveColumns(layout, pi)
	if err != nil {
		return nil, err
	}
	if err := validateFriShape(cfg, unsent, domains); err != nil {
		return nil, err
	}
	if _, err := cfg.QueryCount(); err != nil {
		return nil, err
	}
	if cfg.ProofOfWork.NBits > MaxProofOfWorkBits {
		return nil, fmt.Errorf("%w: %d proof of work bits, at most %d", ErrShapeMismatch, cfg.ProofOfWork.NBits, MaxProofOfWorkBits)
	}

	nOods := NumOodsValues(layout, nFirst, nSecond)
	if len(unsent.OodsValues) != nOods {
		return nil, fmt.Errorf("%w: %d out of domain values, layout %s needs %d",
			ErrShapeMismatch, len(unsent.OodsValues), layout.Name(), nOods)
	}

	// 1. Traces
	traces := TracesCommitment{
		Original: tableCommit(t, cfg.Traces.Original, unsent.Traces.Original),
	}
	traces.InteractionElements = t.RandomFeltsToProver(layout.NumInteractionElements())
	traces.Interaction = tableCommit(t, cfg.Traces.Interaction, unsent.Traces.Interaction)

	// 2. Composition
	compositionAlpha := t.RandomFeltToProver()
	composition := tableCommit(t, cfg.Composition, unsent.Composition)

	// 3. Out of domain sampling
	oodsPoint := t.RandomFeltToProver()
	t.ReadFeltVectorFromProver(unsent.OodsValues)

	// 4. Boundary coefficients
	oodsAlpha := t.RandomFeltToProver()
	coefficients := powers(oodsAlpha, nOods)

	// 5-6. FRI
	fri := friCommit(t, &unsent.Fri, &cfg.Fri)

	// 7. Proof of work
	if cfg.ProofOfWork.NBits > 0 {
		if err := VerifyProofOfWork(t.Digest(), unsent.ProofOfWork.Nonce, cfg.ProofOfWork.NBits); err != nil {
			return nil, err
		}
		t.ReadUint64FromProver(unsent.ProofOfWork.Nonce)
	}

	logger.Debug("Replayed commit phase",
		"layout", layout.Name(),
		"columns", nFirst+nSecond,
		"oods", nOods,
		"friLayers", fri.NLayers(),
		"digest", t.Digest())

	return &StarkCommitment{
		Traces:                      traces,
		CompositionAlpha:            compositionAlpha,
		Composition:                 composition,
		InteractionAfterComposition: oodsPoint,
		OodsValues:                  unsent.OodsValues,
		InteractionAfterOods:        coefficients,
		Fri:                         fri,
	}, nil
}

func tableCommit(t Transcript, cfg TableCommitmentConfig, root core.Felt) TableCommitment {
	t.ReadFeltFromProver(root)
	return TableCommitment{
		Config: cfg,
		VectorCommitment: VectorCommitment{
			Config:         cfg.Vector,
			CommitmentHash: root,
		},
	}
}

func friCommit(t Transcript, unsent *FriUnsentCommitment, cfg *FriConfig) FriCommitment {
	n := len(cfg.InnerLayers)
	layers := make([]TableCommitment, n)
	evalPoints := make([]core.Felt, n)
	for i := 0; i < n; i++ {
		layers[i] = tableCommit(t, cfg.InnerLayers[i], unsent.InnerLayers[i])
		evalPoints[i] = t.RandomFeltToProver()
	}
	t.ReadFeltVectorFromProver(unsent.LastLayerCoefficients)

	return FriCommitment{
		Config:                *cfg,
		InnerLayers:           layers,
		EvalPoints:            evalPoints,
		LastLayerCoefficients: unsent.LastLayerCoefficients,
	}
}

// validateFriShape checks that the FRI configuration and commitments agree
// with each other and with the evaluation domain
func validateFriShape(cfg *StarkConfig, unsent *StarkUnsentCommitment, domains *StarkDomains) error {
	fri := &cfg.Fri
	nLayers, err := feltUint64(fri.NLayers, "n_layers")
	if err != nil {
		return err
	}
	if nLayers < 1 {
		return fmt.Errorf("%w: fri needs at least one layer", ErrShapeMismatch)
	}
	if uint64(len(fri.FriStepSizes)) != nLayers {
		return fmt.Errorf("%w: %d fri step sizes for %d layers", ErrShapeMismatch, len(fri.FriStepSizes), nLayers)
	}
	if uint64(len(fri.InnerLayers)) != nLayers-1 {
		return fmt.Errorf("%w: %d inner layer configs for %d layers", ErrShapeMismatch, len(fri.InnerLayers), nLayers)
	}
	if uint64(len(unsent.Fri.InnerLayers)) != nLayers-1 {
		return fmt.Errorf("%w: %d inner layer commitments for %d layers", ErrShapeMismatch, len(unsent.Fri.InnerLayers), nLayers)
	}

	logInput, err := feltUint64(fri.LogInputSize, "log_input_size")
	if err != nil {
		return err
	}
	if logInput != domains.LogEvalDomainSize {
		return fmt.Errorf("%w: fri input 2^%d, evaluation domain 2^%d", ErrShapeMismatch, logInput, domains.LogEvalDomainSize)
	}

	var folded uint64
	for i, s := range fri.FriStepSizes {
		step, err := feltUint64(s, "fri_step_size")
		if err != nil {
			return err
		}
		if i == 0 && step != 0 {
			return fmt.Errorf("%w: first fri step has size %d, want 0", ErrShapeMismatch, step)
		}
		if i > 0 && (step < 1 || step > MaxFriStep) {
			return fmt.Errorf("%w: fri step %d has size %d, want 1..%d", ErrShapeMismatch, i, step, MaxFriStep)
		}
		folded += step
	}

	logLast, err := feltUint64(fri.LogLastLayerDegreeBound, "log_last_layer_degree_bound")
	if err != nil {
		return err
	}
	if logLast > 32 {
		return fmt.Errorf("%w: last layer degree bound 2^%d", ErrShapeMismatch, logLast)
	}
	if folded+logLast != domains.LogTraceDomainSize {
		return fmt.Errorf("%w: fri folds %d times down to 2^%d, trace domain is 2^%d",
			ErrShapeMismatch, folded, logLast, domains.LogTraceDomainSize)
	}
	if uint64(len(unsent.Fri.LastLayerCoefficients)) != 1<<logLast {
		return fmt.Errorf("%w: %d last layer coefficients, want %d",
			ErrShapeMismatch, len(unsent.Fri.LastLayerCoefficients), uint64(1)<<logLast)
	}
	return nil
}

// powers returns 1, alpha, alpha^2, ..., alpha^(n-1)
func powers(alpha core.Felt, n int) []core.Felt {
	out := make([]core.Felt, n)
	cur := core.One
	for i := range out {
		out[i] = cur
		cur = cur.Mul(alpha)
	}
	return out
}
