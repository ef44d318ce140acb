package protocols

import (
	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/core"
)

// StarkProof is a complete STARK proof as produced by the prover.
//
// The proof is split in four parts that the verifier processes in order:
// the configuration, the public input, the commitments sent before any
// challenge is derived, and the witness opening the committed tables at the
// queried positions.
type StarkProof struct {
	Config           StarkConfig           `json:"config"`
	PublicInput      PublicInput           `json:"public_input"`
	UnsentCommitment StarkUnsentCommitment `json:"unsent_commitment"`
	Witness          StarkWitness          `json:"witness"`
}

// StarkConfig holds the shapes of every commitment in the proof
type StarkConfig struct {
	Traces                            TracesConfig          `json:"traces"`
	Composition                       TableCommitmentConfig `json:"composition"`
	Fri                               FriConfig             `json:"fri"`
	ProofOfWork                       ProofOfWorkConfig     `json:"proof_of_work"`
	LogTraceDomainSize                core.Felt             `json:"log_trace_domain_size"`
	NQueries                          core.Felt             `json:"n_queries"`
	LogNCosets                        core.Felt             `json:"log_n_cosets"`
	NVerifierFriendlyCommitmentLayers core.Felt             `json:"n_verifier_friendly_commitment_layers"`
}

// TracesConfig holds the commitment shapes of the original and interaction traces
type TracesConfig struct {
	Original    TableCommitmentConfig `json:"original"`
	Interaction TableCommitmentConfig `json:"interaction"`
}

// TableCommitmentConfig describes a committed table
type TableCommitmentConfig struct {
	NColumns core.Felt              `json:"n_columns"`
	Vector   VectorCommitmentConfig `json:"vector"`
}

// VectorCommitmentConfig describes the Merkle tree under a table commitment
type VectorCommitmentConfig struct {
	Height                            core.Felt `json:"height"`
	NVerifierFriendlyCommitmentLayers core.Felt `json:"n_verifier_friendly_commitment_layers"`
}

// FriConfig describes the FRI layers.
//
// NLayers counts the input layer, so there are NLayers-1 inner layers, one
// step size per layer and one evaluation point per inner layer.
type FriConfig struct {
	LogInputSize            core.Felt               `json:"log_input_size"`
	NLayers                 core.Felt               `json:"n_layers"`
	InnerLayers             []TableCommitmentConfig `json:"inner_layers"`
	FriStepSizes            []core.Felt             `json:"fri_step_sizes"`
	LogLastLayerDegreeBound core.Felt               `json:"log_last_layer_degree_bound"`
}

// ProofOfWorkConfig holds the grinding difficulty
type ProofOfWorkConfig struct {
	NBits uint8 `json:"n_bits"`
}

// PublicInput is the public part of the statement being proven
type PublicInput struct {
	LogNSteps             core.Felt              `json:"log_n_steps"`
	RangeCheckMin         core.Felt              `json:"range_check_min"`
	RangeCheckMax         core.Felt              `json:"range_check_max"`
	Layout                core.Felt              `json:"layout"`
	DynamicParams         []core.Felt            `json:"dynamic_params,omitempty"`
	Segments              []SegmentInfo          `json:"segments"`
	PaddingAddr           core.Felt              `json:"padding_addr"`
	PaddingValue          core.Felt              `json:"padding_value"`
	MainPage              []AddrValue            `json:"main_page"`
	ContinuousPageHeaders []ContinuousPageHeader `json:"continuous_page_headers"`
}

// SegmentInfo is a memory segment of the program
type SegmentInfo struct {
	BeginAddr core.Felt `json:"begin_addr"`
	StopPtr   core.Felt `json:"stop_ptr"`
}

// AddrValue is one public memory cell
type AddrValue struct {
	Address core.Felt `json:"address"`
	Value   core.Felt `json:"value"`
}

// ContinuousPageHeader summarizes a continuous public memory page
type ContinuousPageHeader struct {
	StartAddress core.Felt `json:"start_address"`
	Size         core.Felt `json:"size"`
	Hash         core.Felt `json:"hash"`
	Prod         core.Felt `json:"prod"`
}

// StarkUnsentCommitment holds every commitment the prover sends before the
// verifier derives its challenges
type StarkUnsentCommitment struct {
	Traces      TracesUnsentCommitment      `json:"traces"`
	Composition core.Felt                   `json:"composition"`
	OodsValues  []core.Felt                 `json:"oods_values"`
	Fri         FriUnsentCommitment         `json:"fri"`
	ProofOfWork ProofOfWorkUnsentCommitment `json:"proof_of_work"`
}

// TracesUnsentCommitment holds the trace table roots
type TracesUnsentCommitment struct {
	Original    core.Felt `json:"original"`
	Interaction core.Felt `json:"interaction"`
}

// FriUnsentCommitment holds the inner layer roots and the last layer in the clear
type FriUnsentCommitment struct {
	InnerLayers           []core.Felt `json:"inner_layers"`
	LastLayerCoefficients []core.Felt `json:"last_layer_coefficients"`
}

// ProofOfWorkUnsentCommitment holds the grinding nonce
type ProofOfWorkUnsentCommitment struct {
	Nonce uint64 `json:"nonce"`
}

// StarkWitness opens the committed tables at the queried positions
type StarkWitness struct {
	TracesDecommitment      TracesDecommitment     `json:"traces_decommitment"`
	TracesWitness           TracesWitness          `json:"traces_witness"`
	CompositionDecommitment TableDecommitment      `json:"composition_decommitment"`
	CompositionWitness      TableCommitmentWitness `json:"composition_witness"`
	FriWitness              FriWitness             `json:"fri_witness"`
}

// TracesDecommitment holds the trace values at the queried rows
type TracesDecommitment struct {
	Original    TableDecommitment `json:"original"`
	Interaction TableDecommitment `json:"interaction"`
}

// TracesWitness holds the authentication paths of the trace tables
type TracesWitness struct {
	Original    TableCommitmentWitness `json:"original"`
	Interaction TableCommitmentWitness `json:"interaction"`
}

// TableDecommitment holds table values row by row
type TableDecommitment struct {
	Values []core.Felt `json:"values"`
}

// TableCommitmentWitness authenticates a table decommitment
type TableCommitmentWitness struct {
	Vector VectorCommitmentWitness `json:"vector"`
}

// VectorCommitmentWitness is the flattened Merkle authentication path
type VectorCommitmentWitness struct {
	Authentications []core.Felt `json:"authentications"`
}

// FriWitness holds one witness per inner FRI layer
type FriWitness struct {
	Layers []FriLayerWitness `json:"layers"`
}

// FriLayerWitness holds the coset siblings of the queries on one layer and
// the authentication path of the layer commitment
type FriLayerWitness struct {
	Leaves       []core.Felt            `json:"leaves"`
	TableWitness TableCommitmentWitness `json:"table_witness"`
}

// StripFriWitness returns a copy of the proof with the FRI layer witnesses
// removed. The copy shares no slices with p that the stripping touches.
func (p *StarkProof) StripFriWitness() StarkProof {
	stripped := *p
	stripped.Witness.FriWitness = FriWitness{}
	return stripped
}
