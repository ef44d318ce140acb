package protocols

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/core"
	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/utils"
)

// GenerateQueries squeezes nQueries indices into a domain of domainSize
// points. The result is sorted and free of duplicates, so it may be shorter
// than nQueries.
func GenerateQueries(t Transcript, nQueries, domainSize uint64) ([]uint64, error) {
	if domainSize == 0 {
		return nil, fmt.Errorf("%w: empty query domain", ErrShapeMismatch)
	}
	if nQueries > MaxQueries {
		return nil, fmt.Errorf("%w: %d queries, at most %d", ErrShapeMismatch, nQueries, MaxQueries)
	}

	queries := make([]uint64, 0, nQueries)
	for i := uint64(0); i < nQueries; i++ {
		sample := t.RandomFeltToProver().Bytes32()
		queries = append(queries, binary.BigEndian.Uint64(sample[24:])%domainSize)
	}
	return sortDedup(queries), nil
}

func sortDedup(queries []uint64) []uint64 {
	sort.Slice(queries, func(i, j int) bool { return queries[i] < queries[j] })
	out := queries[:0]
	for _, q := range queries {
		if len(out) > 0 && out[len(out)-1] == q {
			continue
		}
		out = append(out, q)
	}
	return out
}

// QueriesToPoints maps evaluation domain indices to field points.
//
// The domain is stored in bit-reversed order, so index q is the point
// g * w^bitrev(q) with g the field generator and w the domain generator.
func QueriesToPoints(queries []uint64, domains *StarkDomains) []core.Felt {
	points := make([]core.Felt, len(queries))
	for i, q := range queries {
		exp := utils.BitReverse(q, int(domains.LogEvalDomainSize))
		points[i] = core.FieldGenerator.Mul(domains.EvalGenerator.Pow(exp))
	}
	return points
}
