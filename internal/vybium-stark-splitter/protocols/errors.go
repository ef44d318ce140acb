package protocols

import "errors"

// Shape errors: the proof does not have the shape its configuration and
// layout require.
var (
	ErrColumnMissing     = errors.New("column count cannot be resolved")
	ErrShapeMismatch     = errors.New("proof shape mismatch")
	ErrDecommitmentShape = errors.New("decommitment shape mismatch")
	ErrUnknownLayout     = errors.New("unknown layout")
)

// Protocol errors: a cryptographic check or fold failed on well-shaped data.
var (
	ErrProofOfWork      = errors.New("invalid proof of work")
	ErrWitnessExhausted = errors.New("fri witness has too few leaves")
	ErrWitnessUnused    = errors.New("fri witness has unused leaves")
	ErrQueryOrder       = errors.New("queries are not strictly increasing")
	ErrDegeneratePoint  = errors.New("query point collides with an out of domain sample")
)
