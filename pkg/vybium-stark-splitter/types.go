package vybiumstarksplitter

import (
	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/calldata"
	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/core"
	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/protocols"
	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/split"
	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/utils"
)

// Felt is an element of the Stark field
type Felt = core.Felt

// StarkProof is a STARK proof ready to be split
type StarkProof = protocols.StarkProof

// Layout describes the AIR a proof was generated for
type Layout = protocols.Layout

// Config represents the configuration for turning a proof into contract calls
type Config = utils.Config

// VerifierConfig names the verifier variant
type VerifierConfig = utils.VerifierConfig

// Split is a proof prepared for submission in several calls
type Split = split.SplitProof

// StepIterator produces the step and final payloads of a split proof
type StepIterator = split.StepIterator

// IntegrityCalls holds the initial, step and final calls of one proof
type IntegrityCalls = calldata.IntegrityCalls

// Call is an encoded contract invocation
type Call = calldata.Call

// DefaultConfig returns the default splitter configuration
func DefaultConfig() *Config {
	return utils.DefaultConfig()
}

// RegisterLayout makes a custom layout available to SplitProof
func RegisterLayout(l Layout) {
	protocols.RegisterLayout(l)
}

// Layouts lists the registered layout names
func Layouts() []string {
	return protocols.LayoutNames()
}
