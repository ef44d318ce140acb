package calldata

import (
	"errors"
	"fmt"

	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/protocols"
)

// ErrFriWitnessNotStripped is returned when a proof sent in the initial call
// still carries FRI layer witnesses. Those are sent one per step call.
var ErrFriWitnessNotStripped = errors.New("fri layer witnesses must be stripped from the initial call")

// The contract ABI deviates from plain length-prefixed sequences for a few
// structures. Each of them has a dedicated encoder below.

// StarkProof encodes a proof for the initial call
type StarkProof protocols.StarkProof

func (p *StarkProof) EncodeCalldata(w *Writer) error {
	encodeStarkConfig(w, &p.Config)
	encodePublicInput(w, &p.PublicInput)
	encodeUnsentCommitment(w, &p.UnsentCommitment)
	return encodeStarkWitness(w, &p.Witness)
}

func encodeStarkConfig(w *Writer, c *protocols.StarkConfig) {
	encodeTableCommitmentConfig(w, &c.Traces.Original)
	encodeTableCommitmentConfig(w, &c.Traces.Interaction)
	encodeTableCommitmentConfig(w, &c.Composition)
	encodeFriConfig(w, &c.Fri)
	w.Uint64(uint64(c.ProofOfWork.NBits))
	w.Felt(c.LogTraceDomainSize)
	w.Felt(c.NQueries)
	w.Felt(c.LogNCosets)
	w.Felt(c.NVerifierFriendlyCommitmentLayers)
}

func encodeTableCommitmentConfig(w *Writer, c *protocols.TableCommitmentConfig) {
	w.Felt(c.NColumns)
	encodeVectorCommitmentConfig(w, &c.Vector)
}

func encodeVectorCommitmentConfig(w *Writer, c *protocols.VectorCommitmentConfig) {
	w.Felt(c.Height)
	w.Felt(c.NVerifierFriendlyCommitmentLayers)
}

// FriConfig prefixes its inner layers with the number of felts they occupy
// rather than the number of layers
type FriConfig protocols.FriConfig

func (c *FriConfig) EncodeCalldata(w *Writer) error {
	encodeFriConfig(w, (*protocols.FriConfig)(c))
	return nil
}

func encodeFriConfig(w *Writer, c *protocols.FriConfig) {
	w.Felt(c.LogInputSize)
	w.Felt(c.NLayers)

	w.Len(len(c.InnerLayers) * 3)
	for i := range c.InnerLayers {
		encodeTableCommitmentConfig(w, &c.InnerLayers[i])
	}

	w.Felts(c.FriStepSizes)
	w.Felt(c.LogLastLayerDegreeBound)
}

// PublicInput writes two length markers ahead of each record list: the
// record count, then the number of felts the records occupy
type PublicInput protocols.PublicInput

func (pi *PublicInput) EncodeCalldata(w *Writer) error {
	encodePublicInput(w, (*protocols.PublicInput)(pi))
	return nil
}

func encodePublicInput(w *Writer, pi *protocols.PublicInput) {
	w.Felt(pi.LogNSteps)
	w.Felt(pi.RangeCheckMin)
	w.Felt(pi.RangeCheckMax)
	w.Felt(pi.Layout)
	w.Felts(pi.DynamicParams)

	w.Len(len(pi.Segments))
	w.Len(len(pi.Segments) * 2)
	for _, s := range pi.Segments {
		w.Felt(s.BeginAddr)
		w.Felt(s.StopPtr)
	}

	w.Felt(pi.PaddingAddr)
	w.Felt(pi.PaddingValue)

	w.Len(len(pi.MainPage))
	w.Len(len(pi.MainPage) * 2)
	for _, cell := range pi.MainPage {
		w.Felt(cell.Address)
		w.Felt(cell.Value)
	}

	w.Len(len(pi.ContinuousPageHeaders))
	w.Len(len(pi.ContinuousPageHeaders) * 4)
	for _, h := range pi.ContinuousPageHeaders {
		w.Felt(h.StartAddress)
		w.Felt(h.Size)
		w.Felt(h.Hash)
		w.Felt(h.Prod)
	}
}

func encodeUnsentCommitment(w *Writer, u *protocols.StarkUnsentCommitment) {
	w.Felt(u.Traces.Original)
	w.Felt(u.Traces.Interaction)
	w.Felt(u.Composition)
	w.Felts(u.OodsValues)
	w.Felts(u.Fri.InnerLayers)
	w.Felts(u.Fri.LastLayerCoefficients)
	w.Uint64(u.ProofOfWork.Nonce)
}

func encodeStarkWitness(w *Writer, s *protocols.StarkWitness) error {
	encodeTableDecommitment(w, &s.TracesDecommitment.Original)
	encodeTableDecommitment(w, &s.TracesDecommitment.Interaction)
	encodeVectorCommitmentWitness(w, &s.TracesWitness.Original.Vector)
	encodeVectorCommitmentWitness(w, &s.TracesWitness.Interaction.Vector)
	encodeTableDecommitment(w, &s.CompositionDecommitment)
	encodeVectorCommitmentWitness(w, &s.CompositionWitness.Vector)
	return (*FriWitness)(&s.FriWitness).EncodeCalldata(w)
}

// TableDecommitment writes n_values ahead of the length-prefixed values
type TableDecommitment protocols.TableDecommitment

func (d *TableDecommitment) EncodeCalldata(w *Writer) error {
	encodeTableDecommitment(w, (*protocols.TableDecommitment)(d))
	return nil
}

func encodeTableDecommitment(w *Writer, d *protocols.TableDecommitment) {
	w.Len(len(d.Values))
	w.Felts(d.Values)
}

// VectorCommitmentWitness writes n_authentications ahead of the
// length-prefixed authentications
type VectorCommitmentWitness protocols.VectorCommitmentWitness

func (v *VectorCommitmentWitness) EncodeCalldata(w *Writer) error {
	encodeVectorCommitmentWitness(w, (*protocols.VectorCommitmentWitness)(v))
	return nil
}

func encodeVectorCommitmentWitness(w *Writer, v *protocols.VectorCommitmentWitness) {
	w.Len(len(v.Authentications))
	w.Felts(v.Authentications)
}

// FriWitness is always sent empty in the initial call
type FriWitness protocols.FriWitness

func (f *FriWitness) EncodeCalldata(w *Writer) error {
	if len(f.Layers) != 0 {
		return fmt.Errorf("%w: %d layers", ErrFriWitnessNotStripped, len(f.Layers))
	}
	w.Len(0)
	return nil
}
