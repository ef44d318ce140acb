package calldata

import (
	"encoding/json"
	"fmt"

	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/core"
	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/protocols"
	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/utils"
)

// VerifierConfiguration selects the verifier variant. Every field is a
// short string.
type VerifierConfiguration struct {
	Layout             core.Felt `json:"layout"`
	Hasher             core.Felt `json:"hasher"`
	StoneVersion       core.Felt `json:"stone_version"`
	MemoryVerification core.Felt `json:"memory_verification"`
}

func (c *VerifierConfiguration) EncodeCalldata(w *Writer) error {
	w.Felt(c.Layout)
	w.Felt(c.Hasher)
	w.Felt(c.StoneVersion)
	w.Felt(c.MemoryVerification)
	return nil
}

// FriVerificationStateConstant is the part of the FRI state shared by every
// step and the final call
type FriVerificationStateConstant struct {
	NLayers                   uint32                      `json:"n_layers"`
	Commitment                []protocols.TableCommitment `json:"commitment"`
	EvalPoints                []core.Felt                 `json:"eval_points"`
	StepSizes                 []core.Felt                 `json:"step_sizes"`
	LastLayerCoefficientsHash core.Felt                   `json:"last_layer_coefficients_hash"`
}

func (s *FriVerificationStateConstant) EncodeCalldata(w *Writer) error {
	w.Uint64(uint64(s.NLayers))

	w.Len(len(s.Commitment))
	for i := range s.Commitment {
		c := &s.Commitment[i]
		encodeTableCommitmentConfig(w, &c.Config)
		encodeVectorCommitmentConfig(w, &c.VectorCommitment.Config)
		w.Felt(c.VectorCommitment.CommitmentHash)
	}

	w.Felts(s.EvalPoints)
	w.Felts(s.StepSizes)
	w.Felt(s.LastLayerCoefficientsHash)
	return nil
}

// FriVerificationStateVariable is the FRI state that changes between steps:
// the layer about to be folded and its queries
type FriVerificationStateVariable struct {
	Iter    uint32                    `json:"iter"`
	Queries []protocols.FriLayerQuery `json:"queries"`
}

func (s *FriVerificationStateVariable) EncodeCalldata(w *Writer) error {
	w.Uint64(uint64(s.Iter))
	w.Len(len(s.Queries))
	for _, q := range s.Queries {
		w.Uint64(q.Index)
		w.Felt(q.YValue)
		w.Felt(q.XInvValue)
	}
	return nil
}

// FriLayerWitness is the witness of the layer folded by a step call
type FriLayerWitness struct {
	Leaves          []core.Felt `json:"leaves"`
	Authentications []core.Felt `json:"authentications"`
}

// NewFriLayerWitness copies a proof layer witness into call form
func NewFriLayerWitness(w *protocols.FriLayerWitness) FriLayerWitness {
	return FriLayerWitness{
		Leaves:          append([]core.Felt(nil), w.Leaves...),
		Authentications: append([]core.Felt(nil), w.TableWitness.Vector.Authentications...),
	}
}

func (l *FriLayerWitness) EncodeCalldata(w *Writer) error {
	w.Felts(l.Leaves)
	w.Felts(l.Authentications)
	return nil
}

// VerifyProofInitialCall binds verify_proof_initial
type VerifyProofInitialCall struct {
	JobID          core.Felt             `json:"job_id"`
	VerifierConfig VerifierConfiguration `json:"verifier_config"`
	StarkProof     protocols.StarkProof  `json:"stark_proof"`
}

func (c *VerifyProofInitialCall) EncodeCalldata(w *Writer) error {
	w.Felt(c.JobID)
	if err := c.VerifierConfig.EncodeCalldata(w); err != nil {
		return err
	}
	return (*StarkProof)(&c.StarkProof).EncodeCalldata(w)
}

// Call builds the contract call to address to
func (c *VerifyProofInitialCall) Call(to core.Felt) (Call, error) {
	return newCall(to, SelectorVerifyProofInitial, c)
}

// VerifyProofStepCall binds verify_proof_step
type VerifyProofStepCall struct {
	JobID         core.Felt                    `json:"job_id"`
	StateConstant FriVerificationStateConstant `json:"state_constant"`
	StateVariable FriVerificationStateVariable `json:"state_variable"`
	Witness       FriLayerWitness              `json:"witness"`
}

func (c *VerifyProofStepCall) EncodeCalldata(w *Writer) error {
	w.Felt(c.JobID)
	if err := c.StateConstant.EncodeCalldata(w); err != nil {
		return err
	}
	if err := c.StateVariable.EncodeCalldata(w); err != nil {
		return err
	}
	return c.Witness.EncodeCalldata(w)
}

// Call builds the contract call to address to
func (c *VerifyProofStepCall) Call(to core.Felt) (Call, error) {
	return newCall(to, SelectorVerifyProofStep, c)
}

// VerifyProofFinalAndRegisterFactCall binds verify_proof_final_and_register_fact
type VerifyProofFinalAndRegisterFactCall struct {
	JobID                 core.Felt                    `json:"job_id"`
	StateConstant         FriVerificationStateConstant `json:"state_constant"`
	StateVariable         FriVerificationStateVariable `json:"state_variable"`
	LastLayerCoefficients []core.Felt                  `json:"last_layer_coefficients"`
}

func (c *VerifyProofFinalAndRegisterFactCall) EncodeCalldata(w *Writer) error {
	w.Felt(c.JobID)
	if err := c.StateConstant.EncodeCalldata(w); err != nil {
		return err
	}
	if err := c.StateVariable.EncodeCalldata(w); err != nil {
		return err
	}
	w.Felts(c.LastLayerCoefficients)
	return nil
}

// Call builds the contract call to address to
func (c *VerifyProofFinalAndRegisterFactCall) Call(to core.Felt) (Call, error) {
	return newCall(to, SelectorVerifyProofFinalAndRegisterFact, c)
}

// Call is an encoded contract invocation
type Call struct {
	To       core.Felt   `json:"to"`
	Selector core.Felt   `json:"selector"`
	Calldata []core.Felt `json:"calldata"`
}

func newCall(to, selector core.Felt, e Encoder) (Call, error) {
	data, err := Encode(e)
	if err != nil {
		return Call{}, err
	}
	return Call{To: to, Selector: selector, Calldata: data}, nil
}

// String returns a short description of the call
func (c Call) String() string {
	return fmt.Sprintf("Call{to: %s, selector: %s, calldata: %d felts}", c.To, c.Selector, len(c.Calldata))
}

// IntegrityCalls holds every call needed to verify one proof
type IntegrityCalls struct {
	Initial           VerifyProofInitialCall              `json:"initial"`
	IntermediateSteps []VerifyProofStepCall               `json:"intermediate_steps"`
	FinalStep         VerifyProofFinalAndRegisterFactCall `json:"final_step"`
}

// CollectCalls encodes the calls in submission order: the initial call, the
// step calls, then the final call
func (c *IntegrityCalls) CollectCalls(to core.Felt) ([]Call, error) {
	calls := make([]Call, 0, len(c.IntermediateSteps)+2)

	initial, err := c.Initial.Call(to)
	if err != nil {
		return nil, fmt.Errorf("initial call: %w", err)
	}
	calls = append(calls, initial)

	for i := range c.IntermediateSteps {
		step, err := c.IntermediateSteps[i].Call(to)
		if err != nil {
			return nil, fmt.Errorf("step call %d: %w", i, err)
		}
		calls = append(calls, step)
	}

	final, err := c.FinalStep.Call(to)
	if err != nil {
		return nil, fmt.Errorf("final call: %w", err)
	}
	return append(calls, final), nil
}

// MarshalCalls encodes calls as indented JSON
func MarshalCalls(calls []Call) ([]byte, error) {
	return json.MarshalIndent(calls, "", "  ")
}

// NewVerifierConfiguration encodes the verifier names as short strings
func NewVerifierConfiguration(c utils.VerifierConfig) (VerifierConfiguration, error) {
	var out VerifierConfiguration
	fields := []struct {
		dst   *core.Felt
		name  string
		value string
	}{
		{&out.Layout, "layout", c.Layout},
		{&out.Hasher, "hasher", c.Hasher},
		{&out.StoneVersion, "stone version", c.StoneVersion},
		{&out.MemoryVerification, "memory verification", c.MemoryVerification},
	}
	for _, f := range fields {
		v, err := core.ShortString(f.value)
		if err != nil {
			return VerifierConfiguration{}, fmt.Errorf("verifier %s: %w", f.name, err)
		}
		*f.dst = v
	}
	return out, nil
}
