package protocols

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/core"
	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/utils"
)

func TestStarkDomains(t *testing.T) {
	d, err := NewStarkDomains(3, 2)
	require.NoError(t, err)
	require.Equal(t, uint64(8), d.TraceDomainSize)
	require.Equal(t, uint64(5), d.LogEvalDomainSize)
	require.Equal(t, uint64(32), d.EvalDomainSize)
	require.Equal(t, core.One, d.TraceGenerator.Pow(8))
	require.NotEqual(t, core.One, d.TraceGenerator.Pow(4))
	require.Equal(t, d.TraceGenerator, d.EvalGenerator.Pow(4))

	_, err = NewStarkDomains(60, 3)
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestGenerateQueries(t *testing.T) {
	const domainSize = 64
	queries, err := GenerateQueries(utils.NewTranscript(core.NewFelt(5)), 20, domainSize)
	require.NoError(t, err)
	require.NotEmpty(t, queries)
	require.LessOrEqual(t, len(queries), 20)
	for i, q := range queries {
		require.Less(t, q, uint64(domainSize))
		if i > 0 {
			require.Less(t, queries[i-1], q)
		}
	}

	again, err := GenerateQueries(utils.NewTranscript(core.NewFelt(5)), 20, domainSize)
	require.NoError(t, err)
	require.Equal(t, queries, again)

	_, err = GenerateQueries(utils.NewTranscript(core.Zero), 1, 0)
	require.ErrorIs(t, err, ErrShapeMismatch)

	tr := utils.NewTranscript(core.Zero)
	_, err = GenerateQueries(tr, 1<<62, domainSize)
	require.ErrorIs(t, err, ErrShapeMismatch)
	require.Empty(t, tr.History())
}

func TestSortDedup(t *testing.T) {
	require.Equal(t, []uint64{1, 3, 7}, sortDedup([]uint64{7, 3, 7, 1, 3}))
	require.Empty(t, sortDedup(nil))
}

func TestQueriesToPoints(t *testing.T) {
	d, err := NewStarkDomains(3, 1)
	require.NoError(t, err)

	three := core.NewFelt(3)
	points := QueriesToPoints([]uint64{0, 1, 2}, d)
	require.Equal(t, three, points[0])
	// index 1 is bit-reversed to the middle of the domain
	require.Equal(t, three.Neg(), points[1])
	require.Equal(t, three.Mul(d.EvalGenerator.Pow(4)), points[2])
}

func TestProofOfWork(t *testing.T) {
	digest := core.NewFelt(0x1234)

	nonce, err := SolveProofOfWork(digest, 8)
	require.NoError(t, err)
	require.NoError(t, VerifyProofOfWork(digest, nonce, 8))
	require.NoError(t, VerifyProofOfWork(digest, 12345, 0))

	// a nonce ground for another digest is accepted with probability 1/256
	failing := false
	for n := uint64(0); n < 64 && !failing; n++ {
		failing = VerifyProofOfWork(digest, n, 8) != nil
	}
	require.True(t, failing)

	require.ErrorIs(t, VerifyProofOfWork(digest, 0, MaxProofOfWorkBits+1), ErrShapeMismatch)
	_, err = SolveProofOfWork(digest, MaxProofOfWorkBits+1)
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestLayoutRegistry(t *testing.T) {
	require.Subset(t, LayoutNames(), []string{"dynamic", "plain", "recursive"})

	_, err := LayoutByName("starknet_with_keccak_unknown")
	require.ErrorIs(t, err, ErrUnknownLayout)

	recursive, err := LayoutForPublicInput(&PublicInput{Layout: core.MustShortString("recursive")})
	require.NoError(t, err)
	require.Equal(t, "recursive", recursive.Name())
	nFirst, nSecond, err := ResolveColumns(recursive, nil)
	require.NoError(t, err)
	require.Equal(t, uint32(7), nFirst)
	require.Equal(t, uint32(3), nSecond)
	require.Equal(t, 22, NumOodsValues(recursive, nFirst, nSecond))
}

func TestDynamicLayoutColumns(t *testing.T) {
	dynamic, err := LayoutByName("dynamic")
	require.NoError(t, err)

	tests := []struct {
		name    string
		params  []core.Felt
		first   uint32
		second  uint32
		wantErr bool
	}{
		{name: "absent", wantErr: true},
		{name: "first only", params: felts(5), wantErr: true},
		{name: "both", params: felts(5, 2), first: 5, second: 2},
		{name: "overflow", params: []core.Felt{core.NewFelt(1 << 40), core.One}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			first, second, err := ResolveColumns(dynamic, &PublicInput{DynamicParams: tc.params})
			if tc.wantErr {
				require.ErrorIs(t, err, ErrColumnMissing)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.first, first)
			require.Equal(t, tc.second, second)
		})
	}
}

func TestLayoutMask(t *testing.T) {
	plain, err := LayoutByName("plain")
	require.NoError(t, err)

	mask := LayoutMask(plain, 2, 1)
	require.Equal(t, []MaskItem{
		{Column: 0, RowOffset: 0}, {Column: 0, RowOffset: 1},
		{Column: 1, RowOffset: 0}, {Column: 1, RowOffset: 1},
		{Column: 2, RowOffset: 0}, {Column: 2, RowOffset: 1},
	}, mask)
}

func TestEvalOodsBoundaryPoly(t *testing.T) {
	plain, err := LayoutByName("plain")
	require.NoError(t, err)

	// one original column, no interaction, two composition columns
	z, g := core.NewFelt(11), core.NewFelt(13)
	oods := felts(3, 4, 5, 6)
	coeffs := felts(1, 2, 3, 4)
	info := &OodsEvaluationInfo{OodsValues: oods, OodsPoint: z, TraceGenerator: g, ConstraintCoefficients: coeffs}

	x := core.NewFelt(100)
	traces := &TracesDecommitment{Original: TableDecommitment{Values: felts(20)}}
	composition := &TableDecommitment{Values: felts(30, 31)}

	got, err := EvalOodsBoundaryPolyAtPoints(plain, 1, 0, info, []core.Felt{x}, traces, composition)
	require.NoError(t, err)

	q := func(v, o, s core.Felt) core.Felt { return v.Sub(o).Mul(x.Sub(s).Inverse()) }
	want := coeffs[0].Mul(q(core.NewFelt(20), oods[0], z)).
		Add(coeffs[1].Mul(q(core.NewFelt(20), oods[1], z.Mul(g)))).
		Add(coeffs[2].Mul(q(core.NewFelt(30), oods[2], z.Square()))).
		Add(coeffs[3].Mul(q(core.NewFelt(31), oods[3], z.Square())))
	require.Equal(t, []core.Felt{want}, got)

	_, err = EvalOodsBoundaryPolyAtPoints(plain, 1, 0, info, []core.Felt{x, x}, traces, composition)
	require.ErrorIs(t, err, ErrDecommitmentShape)

	_, err = EvalOodsBoundaryPolyAtPoints(plain, 1, 0, info, []core.Felt{z}, traces, composition)
	require.ErrorIs(t, err, ErrDegeneratePoint)
}
