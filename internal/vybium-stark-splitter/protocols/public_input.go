package protocols

import (
	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/core"
)

// MainPageHash is the Pedersen array hash of the main page cells, each cell
// contributing its address then its value
func (pi *PublicInput) MainPageHash() core.Felt {
	cells := make([]core.Felt, 0, 2*len(pi.MainPage))
	for _, cell := range pi.MainPage {
		cells = append(cells, cell.Address, cell.Value)
	}
	return core.PedersenArray(cells...)
}

// HashData lists the felts the public input digest is computed over.
//
// Dynamic parameters and segments are inlined without a length. The main
// page is summarized by its length and MainPageHash, preceded by the total
// page count. Continuous pages contribute their address, size and hash.
func (pi *PublicInput) HashData(nVerifierFriendlyLayers core.Felt) []core.Felt {
	out := []core.Felt{
		nVerifierFriendlyLayers,
		pi.LogNSteps,
		pi.RangeCheckMin,
		pi.RangeCheckMax,
		pi.Layout,
	}
	out = append(out, pi.DynamicParams...)

	for _, s := range pi.Segments {
		out = append(out, s.BeginAddr, s.StopPtr)
	}

	out = append(out,
		pi.PaddingAddr,
		pi.PaddingValue,
		core.NewFelt(uint64(1+len(pi.ContinuousPageHeaders))),
		core.NewFelt(uint64(len(pi.MainPage))),
		pi.MainPageHash(),
	)

	for _, h := range pi.ContinuousPageHeaders {
		out = append(out, h.StartAddress, h.Size, h.Hash)
	}
	return out
}

// Hash returns the Poseidon digest that seeds the transcript
func (pi *PublicInput) Hash(nVerifierFriendlyLayers core.Felt) core.Felt {
	return core.PoseidonMany(pi.HashData(nVerifierFriendlyLayers)...)
}
