package vybiumstarksplitter

import (
	"encoding/json"
	"fmt"

	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/calldata"
	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/core"
	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/protocols"
	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/split"
)

// ParseProof decodes a JSON encoded proof
func ParseProof(data []byte) (*StarkProof, error) {
	var proof StarkProof
	if err := json.Unmarshal(data, &proof); err != nil {
		return nil, &SplitError{Code: ErrInvalidInput, Message: "failed to decode proof", Cause: err}
	}
	return &proof, nil
}

// SplitProof prepares a proof for submission. An empty layout name selects
// the layout named in the public input.
func SplitProof(proof *StarkProof, layoutName string) (*Split, error) {
	if proof == nil {
		return nil, &SplitError{Code: ErrInvalidInput, Message: "proof is nil"}
	}

	var (
		layout Layout
		err    error
	)
	if layoutName == "" {
		layout, err = protocols.LayoutForPublicInput(&proof.PublicInput)
	} else {
		layout, err = protocols.LayoutByName(layoutName)
	}
	if err != nil {
		return nil, classify("failed to resolve layout", err)
	}
	if name, err := core.DecodeShortString(proof.PublicInput.Layout); err == nil && name != layout.Name() {
		return nil, &SplitError{
			Code:    ErrShape,
			Message: fmt.Sprintf("proof was generated for layout %q, not %q", name, layout.Name()),
		}
	}

	s, err := split.Split(proof, layout)
	if err != nil {
		return nil, classify("failed to split proof", err)
	}
	return s, nil
}

// GenerateIntegrityCalls splits a proof and binds every call. Without a
// configured job id the public input hash is used.
func GenerateIntegrityCalls(proof *StarkProof, config *Config) (*IntegrityCalls, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, &SplitError{Code: ErrInvalidConfig, Message: "invalid configuration", Cause: err}
	}
	verifier, err := calldata.NewVerifierConfiguration(config.Verifier)
	if err != nil {
		return nil, &SplitError{Code: ErrInvalidConfig, Message: "invalid verifier configuration", Cause: err}
	}

	s, err := SplitProof(proof, config.Verifier.Layout)
	if err != nil {
		return nil, err
	}

	jobID, ok, err := config.JobIDFelt()
	if err != nil {
		return nil, &SplitError{Code: ErrInvalidConfig, Message: "invalid job id", Cause: err}
	}
	if !ok {
		jobID = s.PublicInputHash
	}

	calls, err := s.IntoCalls(jobID, verifier)
	if err != nil {
		return nil, classify("failed to build calls", err)
	}
	return calls, nil
}

// GenerateCalls splits a proof and encodes the calls in submission order
func GenerateCalls(proof *StarkProof, config *Config) ([]Call, error) {
	if config == nil {
		config = DefaultConfig()
	}
	calls, err := GenerateIntegrityCalls(proof, config)
	if err != nil {
		return nil, err
	}

	to, err := config.ContractFelt()
	if err != nil {
		return nil, &SplitError{Code: ErrInvalidConfig, Message: "invalid contract address", Cause: err}
	}
	out, err := calls.CollectCalls(to)
	if err != nil {
		return nil, classify("failed to encode calls", err)
	}
	return out, nil
}
