package protocols

import (
	"fmt"
	"math/big"

	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/core"
	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/utils"
)

// FriGroupSize is the size of the largest coset a layer can fold
const FriGroupSize = 1 << MaxFriStep

// FriLayerQuery is a query on one FRI layer: the index in the layer domain,
// the layer value there and the inverse of the domain point.
type FriLayerQuery struct {
	Index     uint64    `json:"index"`
	YValue    core.Felt `json:"y_value"`
	XInvValue core.Felt `json:"x_inv_value"`
}

// FriLayerComputationParams are the parameters of one fold
type FriLayerComputationParams struct {
	CosetSize uint64
	FriGroup  []core.Felt
	EvalPoint core.Felt
}

var friGroup = computeFriGroup()

func computeFriGroup() []core.Felt {
	// generator of the subgroup of order 16
	exp := new(big.Int).Sub(core.Modulus(), big.NewInt(1))
	exp.Rsh(exp, MaxFriStep)
	w := core.FieldGenerator.Exp(exp)

	group := make([]core.Felt, FriGroupSize)
	for j := range group {
		group[j] = w.Pow(utils.BitReverse(uint64(j), MaxFriStep))
	}
	return group
}

// FriGroup returns the 16th roots of unity in bit-reversed order. The first
// n elements are the n-th roots of unity in bit-reversed order for every n
// dividing 16, so one table serves every coset size.
func FriGroup() []core.Felt {
	return append([]core.Felt(nil), friGroup...)
}

// GatherFirstLayerQueries pairs each query with its boundary evaluation and
// the inverse of its domain point
func GatherFirstLayerQueries(queries []uint64, evaluations, points []core.Felt) ([]FriLayerQuery, error) {
	if len(evaluations) != len(queries) || len(points) != len(queries) {
		return nil, fmt.Errorf("%w: %d queries, %d evaluations, %d points",
			ErrShapeMismatch, len(queries), len(evaluations), len(points))
	}

	out := make([]FriLayerQuery, len(queries))
	for i, q := range queries {
		out[i] = FriLayerQuery{
			Index:     q,
			YValue:    evaluations[i],
			XInvValue: points[i].Inverse(),
		}
	}
	return out, nil
}

// ComputeNextLayer folds the queries of one layer into the queries of the
// next layer.
//
// Queries are grouped into cosets of params.CosetSize consecutive indices.
// Positions of a coset not covered by a query are taken from leaves, in
// order. Each coset folds into a single query of the next layer at index
// coset/CosetSize. Every leaf must be consumed.
func ComputeNextLayer(queries []FriLayerQuery, leaves []core.Felt, params FriLayerComputationParams) ([]FriLayerQuery, error) {
	n := params.CosetSize
	if !utils.IsPowerOfTwo(n) || n < 2 || n > uint64(len(params.FriGroup)) {
		return nil, fmt.Errorf("%w: coset size %d with a group of %d", ErrShapeMismatch, n, len(params.FriGroup))
	}
	for i := 1; i < len(queries); i++ {
		if queries[i].Index <= queries[i-1].Index {
			return nil, fmt.Errorf("%w: index %d after %d", ErrQueryOrder, queries[i].Index, queries[i-1].Index)
		}
	}

	groupInv := make([]core.Felt, n)
	for j := range groupInv {
		groupInv[j] = params.FriGroup[j].Inverse()
	}

	next := make([]FriLayerQuery, 0, len(queries))
	values := make([]core.Felt, n)
	leaf := 0
	for i := 0; i < len(queries); {
		coset := queries[i].Index / n
		start := coset * n

		var x0Inv core.Felt
		anchored := false
		for j := uint64(0); j < n; j++ {
			if i < len(queries) && queries[i].Index == start+j {
				if !anchored {
					x0Inv = queries[i].XInvValue.Mul(params.FriGroup[j])
					anchored = true
				}
				values[j] = queries[i].YValue
				i++
				continue
			}
			if leaf >= len(leaves) {
				return nil, fmt.Errorf("%w: %d leaves, coset %d needs more", ErrWitnessExhausted, len(leaves), coset)
			}
			values[j] = leaves[leaf]
			leaf++
		}

		next = append(next, FriLayerQuery{
			Index:     coset,
			YValue:    friFormula(values, params.EvalPoint, x0Inv, groupInv),
			XInvValue: x0Inv.Pow(n),
		})
	}

	if leaf != len(leaves) {
		return nil, fmt.Errorf("%w: %d of %d leaves consumed", ErrWitnessUnused, leaf, len(leaves))
	}
	return next, nil
}

// FriFormula folds the values of one coset into a single value of the next
// layer. xInv is the inverse of the first point of the coset.
func FriFormula(values []core.Felt, evalPoint, xInv core.Felt) (core.Felt, error) {
	n := len(values)
	if !utils.IsPowerOfTwo(uint64(n)) || n > FriGroupSize {
		return core.Zero, fmt.Errorf("%w: coset of %d values", ErrShapeMismatch, n)
	}
	if xInv.IsZero() {
		return core.Zero, ErrDegeneratePoint
	}
	groupInv := make([]core.Felt, n)
	for j := range groupInv {
		groupInv[j] = friGroup[j].Inverse()
	}
	return friFormula(append([]core.Felt(nil), values...), evalPoint, xInv, groupInv), nil
}

// friFormula folds values in place. Each round pairs the points x and -x,
// which sit next to each other in bit-reversed order, into
// f(x) + f(-x) + alpha/x * (f(x) - f(-x)), then squares alpha and x.
func friFormula(values []core.Felt, alpha, xInv core.Felt, groupInv []core.Felt) core.Felt {
	for n := len(values); n > 1; n /= 2 {
		for m := 0; m < n/2; m++ {
			a, b := values[2*m], values[2*m+1]
			xmInv := xInv.Mul(groupInv[2*m])
			values[m] = a.Add(b).Add(alpha.Mul(xmInv).Mul(a.Sub(b)))
		}
		alpha = alpha.Square()
		xInv = xInv.Square()
	}
	return values[0]
}
