package split

import (
	"errors"
	"fmt"

	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/calldata"
	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/core"
	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/protocols"
)

var (
	// ErrStepsRemaining is returned by Final while step calls remain
	ErrStepsRemaining = errors.New("fri steps remain before the final call")

	// ErrFinalConsumed is returned by Final once the final call was produced
	ErrFinalConsumed = errors.New("final call already produced")

	// ErrIteratorFailed is returned once a fold has failed
	ErrIteratorFailed = errors.New("step iterator failed")
)

// phase is the state of a StepIterator
type phase int

const (
	phaseActive phase = iota
	phaseExhausted
	phaseFinalized
	phaseFailed
)

func (p phase) String() string {
	switch p {
	case phaseActive:
		return "active"
	case phaseExhausted:
		return "exhausted"
	case phaseFinalized:
		return "finalized"
	case phaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// noCopy makes go vet flag copies of the iterator
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// StepParams is the payload of one step call
type StepParams struct {
	StateConstant calldata.FriVerificationStateConstant
	StateVariable calldata.FriVerificationStateVariable
	Witness       calldata.FriLayerWitness
}

// FinalParams is the payload of the final call
type FinalParams struct {
	StateConstant         calldata.FriVerificationStateConstant
	StateVariable         calldata.FriVerificationStateVariable
	LastLayerCoefficients []core.Felt
}

// StepIterator folds one FRI layer per step.
//
// The iterator is active while layers remain, exhausted once every layer was
// folded, and finalized after Final. A fold error moves it to failed, where
// every later call reports ErrIteratorFailed. It must be driven by a single
// goroutine and must not be copied.
type StepIterator struct {
	noCopy noCopy

	constant  calldata.FriVerificationStateConstant
	group     []core.Felt
	stepSizes []uint64
	witnesses []protocols.FriLayerWitness
	lastLayer []core.Felt

	phase   phase
	layer   int
	queries []protocols.FriLayerQuery
	err     error
}

func newStepIterator(
	constant calldata.FriVerificationStateConstant,
	stepSizes []uint64,
	witnesses []protocols.FriLayerWitness,
	queries []protocols.FriLayerQuery,
	lastLayer []core.Felt,
) *StepIterator {
	it := &StepIterator{
		constant:  constant,
		group:     protocols.FriGroup(),
		stepSizes: stepSizes,
		witnesses: witnesses,
		lastLayer: lastLayer,
		queries:   queries,
	}
	if it.steps() == 0 {
		it.phase = phaseExhausted
	}
	return it
}

func (it *StepIterator) steps() int {
	return int(it.constant.NLayers)
}

// Layer returns the index of the next layer to fold
func (it *StepIterator) Layer() int {
	return it.layer
}

// Remaining returns the number of step calls not yet produced
func (it *StepIterator) Remaining() int {
	return it.steps() - it.layer
}

// Queries returns a copy of the current query set
func (it *StepIterator) Queries() []protocols.FriLayerQuery {
	return append([]protocols.FriLayerQuery(nil), it.queries...)
}

// Next folds the next layer. The returned state variable holds the queries
// before the fold; the iterator keeps the folded queries. ok is false once
// every layer was folded.
func (it *StepIterator) Next() (params StepParams, ok bool, err error) {
	switch it.phase {
	case phaseFailed:
		return StepParams{}, false, fmt.Errorf("%w: %w", ErrIteratorFailed, it.err)
	case phaseExhausted, phaseFinalized:
		return StepParams{}, false, nil
	}

	i := it.layer
	witness := &it.witnesses[i]
	next, err := protocols.ComputeNextLayer(it.queries, witness.Leaves, protocols.FriLayerComputationParams{
		CosetSize: 1 << it.stepSizes[i],
		FriGroup:  it.group,
		EvalPoint: it.constant.EvalPoints[i],
	})
	if err != nil {
		it.phase = phaseFailed
		it.err = fmt.Errorf("fri layer %d: %w", i, err)
		splitFailed.Inc(1)
		return StepParams{}, false, it.err
	}

	params = StepParams{
		StateConstant: cloneStateConstant(&it.constant),
		StateVariable: calldata.FriVerificationStateVariable{
			Iter:    uint32(i),
			Queries: it.queries,
		},
		Witness: calldata.NewFriLayerWitness(witness),
	}
	stepCounter.Inc(1)
	logger.Trace("Folded fri layer", "layer", i, "cosetSize", 1<<it.stepSizes[i], "queries", len(it.queries), "next", len(next))

	it.queries = next
	it.layer++
	if it.layer == it.steps() {
		it.phase = phaseExhausted
	}
	return params, true, nil
}

// Final produces the final call payload. It fails without changing state
// while steps remain, and after the final payload was produced.
func (it *StepIterator) Final() (FinalParams, error) {
	switch it.phase {
	case phaseActive:
		return FinalParams{}, fmt.Errorf("%w: %d of %d", ErrStepsRemaining, it.Remaining(), it.steps())
	case phaseFinalized:
		return FinalParams{}, ErrFinalConsumed
	case phaseFailed:
		return FinalParams{}, fmt.Errorf("%w: %w", ErrIteratorFailed, it.err)
	}

	it.phase = phaseFinalized
	params := FinalParams{
		StateConstant: cloneStateConstant(&it.constant),
		StateVariable: calldata.FriVerificationStateVariable{
			Iter:    uint32(it.layer),
			Queries: it.queries,
		},
		LastLayerCoefficients: append([]core.Felt(nil), it.lastLayer...),
	}
	it.queries = nil
	return params, nil
}

// cloneStateConstant copies the constant so that no two calls share slices
func cloneStateConstant(c *calldata.FriVerificationStateConstant) calldata.FriVerificationStateConstant {
	return calldata.FriVerificationStateConstant{
		NLayers:                   c.NLayers,
		Commitment:                append([]protocols.TableCommitment(nil), c.Commitment...),
		EvalPoints:                append([]core.Felt(nil), c.EvalPoints...),
		StepSizes:                 append([]core.Felt(nil), c.StepSizes...),
		LastLayerCoefficientsHash: c.LastLayerCoefficientsHash,
	}
}
