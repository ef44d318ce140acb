package protocols

import (
	"fmt"

	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/core"
)

// MaxLogEvalDomainSize bounds the evaluation domain so that indices fit a uint64
const MaxLogEvalDomainSize = 62

// MaxQueries bounds the number of FRI queries a proof may request
const MaxQueries = 1024

// StarkDomains holds the trace domain and the low degree extension domain.
//
// The evaluation domain is the trace domain blown up by 2^LogNCosets and
// shifted by the field generator.
type StarkDomains struct {
	LogTraceDomainSize uint64
	TraceDomainSize    uint64
	TraceGenerator     core.Felt

	LogNCosets        uint64
	LogEvalDomainSize uint64
	EvalDomainSize    uint64
	EvalGenerator     core.Felt
}

// NewStarkDomains creates the domains for a trace of 2^logTraceDomainSize rows
func NewStarkDomains(logTraceDomainSize, logNCosets uint64) (*StarkDomains, error) {
	logEval := logTraceDomainSize + logNCosets
	if logEval > MaxLogEvalDomainSize || logEval < logTraceDomainSize {
		return nil, fmt.Errorf("%w: evaluation domain 2^(%d+%d) too large", ErrShapeMismatch, logTraceDomainSize, logNCosets)
	}

	traceGen, err := core.RootOfUnity(uint32(logTraceDomainSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShapeMismatch, err)
	}
	evalGen, err := core.RootOfUnity(uint32(logEval))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShapeMismatch, err)
	}

	return &StarkDomains{
		LogTraceDomainSize: logTraceDomainSize,
		TraceDomainSize:    1 << logTraceDomainSize,
		TraceGenerator:     traceGen,
		LogNCosets:         logNCosets,
		LogEvalDomainSize:  logEval,
		EvalDomainSize:     1 << logEval,
		EvalGenerator:      evalGen,
	}, nil
}

// DomainsFromConfig reads the domain sizes from a proof configuration
func DomainsFromConfig(cfg *StarkConfig) (*StarkDomains, error) {
	logTrace, err := feltUint64(cfg.LogTraceDomainSize, "log_trace_domain_size")
	if err != nil {
		return nil, err
	}
	logNCosets, err := feltUint64(cfg.LogNCosets, "log_n_cosets")
	if err != nil {
		return nil, err
	}
	return NewStarkDomains(logTrace, logNCosets)
}

// feltUint64 reads a small configuration value
func feltUint64(f core.Felt, name string) (uint64, error) {
	v, ok := f.Uint64()
	if !ok {
		return 0, fmt.Errorf("%w: %s %s does not fit in 64 bits", ErrShapeMismatch, name, f)
	}
	return v, nil
}

// QueryCount returns the number of queries the verifier draws
func (c *StarkConfig) QueryCount() (uint64, error) {
	n, err := feltUint64(c.NQueries, "n_queries")
	if err != nil {
		return 0, err
	}
	if n > MaxQueries {
		return 0, fmt.Errorf("%w: %d queries, at most %d", ErrShapeMismatch, n, MaxQueries)
	}
	return n, nil
}

// StepSizes returns the FRI step sizes as integers
func (c *FriConfig) StepSizes() ([]uint64, error) {
	out := make([]uint64, len(c.FriStepSizes))
	for i, s := range c.FriStepSizes {
		v, err := feltUint64(s, "fri_step_size")
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
