package protocols

import (
	"fmt"

	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/core"
)

// OodsEvaluationInfo holds the out of domain data the boundary quotients need
type OodsEvaluationInfo struct {
	OodsValues             []core.Felt
	OodsPoint              core.Felt
	TraceGenerator         core.Felt
	ConstraintCoefficients []core.Felt
}

// OodsInfo collects the out of domain data of a commitment
func OodsInfo(c *StarkCommitment, domains *StarkDomains) *OodsEvaluationInfo {
	return &OodsEvaluationInfo{
		OodsValues:             c.OodsValues,
		OodsPoint:              c.OodsPoint(),
		TraceGenerator:         domains.TraceGenerator,
		ConstraintCoefficients: c.InteractionAfterOods,
	}
}

// EvalOodsBoundaryPolyAtPoints evaluates the DEEP composition at every query
// point from the decommitted trace and composition values.
//
// For a trace sample (column c, row offset k) with out of domain value v the
// quotient is (c(x) - v) / (x - z*g^k); for composition column j it is
// (h_j(x) - v) / (x - z^D). The quotients are combined with the constraint
// coefficients in the order the out of domain values were sent. Decommitted
// values are laid out row by row, one row per query.
func EvalOodsBoundaryPolyAtPoints(
	layout Layout,
	nFirst, nSecond uint32,
	info *OodsEvaluationInfo,
	points []core.Felt,
	traces *TracesDecommitment,
	composition *TableDecommitment,
) ([]core.Felt, error) {
	nQueries := len(points)
	degree := int(layout.ConstraintDegree())
	mask := LayoutMask(layout, nFirst, nSecond)

	if len(info.OodsValues) != len(mask)+degree || len(info.ConstraintCoefficients) != len(info.OodsValues) {
		return nil, fmt.Errorf("%w: %d out of domain values, %d coefficients, mask of %d plus %d composition columns",
			ErrShapeMismatch, len(info.OodsValues), len(info.ConstraintCoefficients), len(mask), degree)
	}
	if err := checkDecommitment("original trace", traces.Original.Values, nQueries, int(nFirst)); err != nil {
		return nil, err
	}
	if err := checkDecommitment("interaction trace", traces.Interaction.Values, nQueries, int(nSecond)); err != nil {
		return nil, err
	}
	if err := checkDecommitment("composition", composition.Values, nQueries, degree); err != nil {
		return nil, err
	}

	shifted := make(map[uint64]core.Felt)
	for _, m := range mask {
		if _, ok := shifted[m.RowOffset]; !ok {
			shifted[m.RowOffset] = info.OodsPoint.Mul(info.TraceGenerator.Pow(m.RowOffset))
		}
	}
	compositionPoint := info.OodsPoint.Pow(uint64(degree))

	evals := make([]core.Felt, nQueries)
	for q, x := range points {
		column := func(c uint32) core.Felt {
			if c < nFirst {
				return traces.Original.Values[q*int(nFirst)+int(c)]
			}
			return traces.Interaction.Values[q*int(nSecond)+int(c-nFirst)]
		}

		acc := core.Zero
		for i, m := range mask {
			term, err := quotient(column(m.Column), info.OodsValues[i], x, shifted[m.RowOffset])
			if err != nil {
				return nil, fmt.Errorf("query %d, column %d: %w", q, m.Column, err)
			}
			acc = acc.Add(info.ConstraintCoefficients[i].Mul(term))
		}
		for j := 0; j < degree; j++ {
			i := len(mask) + j
			term, err := quotient(composition.Values[q*degree+j], info.OodsValues[i], x, compositionPoint)
			if err != nil {
				return nil, fmt.Errorf("query %d, composition column %d: %w", q, j, err)
			}
			acc = acc.Add(info.ConstraintCoefficients[i].Mul(term))
		}
		evals[q] = acc
	}
	return evals, nil
}

func quotient(value, oodsValue, x, sample core.Felt) (core.Felt, error) {
	den := x.Sub(sample)
	if den.IsZero() {
		return core.Zero, ErrDegeneratePoint
	}
	return value.Sub(oodsValue).Mul(den.Inverse()), nil
}

func checkDecommitment(name string, values []core.Felt, nQueries, nColumns int) error {
	if len(values) != nQueries*nColumns {
		return fmt.Errorf("%w: %s has %d values, want %d queries x %d columns",
			ErrDecommitmentShape, name, len(values), nQueries, nColumns)
	}
	return nil
}
