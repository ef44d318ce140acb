package utils

import (
	"fmt"
	"strings"

	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/core"
)

// SepoliaVerifier is the address of the integrity verifier contract on Sepolia
const SepoliaVerifier = "0x04ce7851f00b6c3289674841fd7a1b96b6fd41ed1edc248faccd672c26371b8c"

// VerifierConfig names the verifier variant the on-chain contract dispatches to.
// Every field is sent as a short string in the initial call.
type VerifierConfig struct {
	Layout             string `koanf:"layout"`
	Hasher             string `koanf:"hasher"`
	StoneVersion       string `koanf:"stone-version"`
	MemoryVerification string `koanf:"memory-verification"`
}

// Config represents the configuration for turning a proof into contract calls
type Config struct {
	// JobID correlates the calls of one verification. Either a 0x-prefixed
	// felt or a short string; empty derives it from the public input digest.
	JobID string `koanf:"job-id"`

	// Contract is the verifier contract address
	Contract string `koanf:"contract"`

	// Verifier selects the verifier variant
	Verifier VerifierConfig `koanf:"verifier"`
}

// DefaultConfig returns a configuration for recursive-layout proofs produced
// by stone6 and verified with keccak commitments
func DefaultConfig() *Config {
	return &Config{
		JobID:    "",
		Contract: SepoliaVerifier,
		Verifier: VerifierConfig{
			Layout:             "recursive",
			Hasher:             "keccak_160_lsb",
			StoneVersion:       "stone6",
			MemoryVerification: "cairo1",
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if _, err := c.ContractFelt(); err != nil {
		return fmt.Errorf("invalid contract address %q: %w", c.Contract, err)
	}

	if c.JobID != "" {
		if _, err := ParseFeltOrShortString(c.JobID); err != nil {
			return fmt.Errorf("invalid job id %q: %w", c.JobID, err)
		}
	}

	fields := []struct {
		name  string
		value string
	}{
		{"layout", c.Verifier.Layout},
		{"hasher", c.Verifier.Hasher},
		{"stone version", c.Verifier.StoneVersion},
		{"memory verification", c.Verifier.MemoryVerification},
	}
	for _, f := range fields {
		if f.value == "" {
			return fmt.Errorf("verifier %s must be set", f.name)
		}
		if _, err := core.ShortString(f.value); err != nil {
			return fmt.Errorf("verifier %s: %w", f.name, err)
		}
	}

	return nil
}

// ContractFelt returns the contract address as a felt
func (c *Config) ContractFelt() (core.Felt, error) {
	return core.FeltFromHex(c.Contract)
}

// JobIDFelt returns the job id as a felt. ok is false when no job id is set.
func (c *Config) JobIDFelt() (id core.Felt, ok bool, err error) {
	if c.JobID == "" {
		return core.Zero, false, nil
	}
	id, err = ParseFeltOrShortString(c.JobID)
	return id, err == nil, err
}

// WithJobID sets the job id
func (c *Config) WithJobID(jobID string) *Config {
	c.JobID = jobID
	return c
}

// WithContract sets the verifier contract address
func (c *Config) WithContract(address string) *Config {
	c.Contract = address
	return c
}

// WithLayout sets the verifier layout name
func (c *Config) WithLayout(layout string) *Config {
	c.Verifier.Layout = layout
	return c
}

// WithHasher sets the verifier hasher name
func (c *Config) WithHasher(hasher string) *Config {
	c.Verifier.Hasher = hasher
	return c
}

// WithStoneVersion sets the prover version tag
func (c *Config) WithStoneVersion(version string) *Config {
	c.Verifier.StoneVersion = version
	return c
}

// WithMemoryVerification sets the memory verification mode
func (c *Config) WithMemoryVerification(mode string) *Config {
	c.Verifier.MemoryVerification = mode
	return c
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ParseFeltOrShortString reads a 0x-prefixed value as a felt and anything
// else as a short string
func ParseFeltOrShortString(s string) (core.Felt, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return core.FeltFromHex(s)
	}
	return core.ShortString(s)
}
