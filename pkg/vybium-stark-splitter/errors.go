package vybiumstarksplitter

import (
	"errors"
	"fmt"

	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/calldata"
	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/protocols"
	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/split"
)

// ErrorCode represents a splitter error code
type ErrorCode int

const (
	// ErrUnknown represents an unknown error
	ErrUnknown ErrorCode = iota

	// ErrInvalidConfig represents an invalid configuration error
	ErrInvalidConfig

	// ErrInvalidInput represents a proof that cannot be decoded
	ErrInvalidInput

	// ErrShape represents a proof whose shape does not match its
	// configuration or layout
	ErrShape

	// ErrProtocol represents a failed proof of work or FRI fold
	ErrProtocol

	// ErrSequencing represents calls requested out of order
	ErrSequencing
)

func (c ErrorCode) String() string {
	switch c {
	case ErrInvalidConfig:
		return "invalid config"
	case ErrInvalidInput:
		return "invalid input"
	case ErrShape:
		return "shape"
	case ErrProtocol:
		return "protocol"
	case ErrSequencing:
		return "sequencing"
	default:
		return "unknown"
	}
}

// SplitError represents a splitter error
type SplitError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error returns the error message
func (e *SplitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("vybium-stark-splitter error [%s]: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("vybium-stark-splitter error [%s]: %s", e.Code, e.Message)
}

// Unwrap returns the cause of the error
func (e *SplitError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error
func (e *SplitError) Is(target error) bool {
	t, ok := target.(*SplitError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

var (
	shapeErrors = []error{
		protocols.ErrColumnMissing,
		protocols.ErrShapeMismatch,
		protocols.ErrDecommitmentShape,
		protocols.ErrUnknownLayout,
		calldata.ErrFriWitnessNotStripped,
	}
	protocolErrors = []error{
		protocols.ErrProofOfWork,
		protocols.ErrWitnessExhausted,
		protocols.ErrWitnessUnused,
		protocols.ErrQueryOrder,
		protocols.ErrDegeneratePoint,
	}
	sequencingErrors = []error{
		split.ErrStepsRemaining,
		split.ErrFinalConsumed,
		split.ErrIteratorFailed,
	}
)

// classify wraps err in a SplitError with the code of its category
func classify(message string, err error) error {
	if err == nil {
		return nil
	}
	var splitErr *SplitError
	if errors.As(err, &splitErr) {
		return err
	}

	code := ErrUnknown
	switch {
	case matchesAny(err, sequencingErrors):
		code = ErrSequencing
	case matchesAny(err, shapeErrors):
		code = ErrShape
	case matchesAny(err, protocolErrors):
		code = ErrProtocol
	}
	return &SplitError{Code: code, Message: message, Cause: err}
}

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
