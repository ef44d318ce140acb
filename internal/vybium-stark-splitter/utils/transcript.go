package utils

import (
	"fmt"
	"strings"

	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/core"
)

// EventKind tells whether a transcript event absorbed or squeezed data
type EventKind int

const (
	// EventAbsorb records prover data mixed into the digest
	EventAbsorb EventKind = iota

	// EventSqueeze records a challenge sent to the prover
	EventSqueeze
)

// Event is a single transcript operation
type Event struct {
	Kind   EventKind
	Values []core.Felt
}

func (e Event) String() string {
	parts := make([]string, len(e.Values))
	for i, v := range e.Values {
		parts[i] = v.Hex()
	}
	kind := "absorb"
	if e.Kind == EventSqueeze {
		kind = "squeeze"
	}
	return fmt.Sprintf("%s:[%s]", kind, strings.Join(parts, ","))
}

// Transcript represents a Fiat-Shamir hash chain over the Stark field.
//
// The state is a digest and a counter. Challenges are poseidon(digest, counter).
// Absorbing a single value replaces the digest with poseidon(digest+1, value)
// and absorbing a vector with poseidon_many(digest+1, values...); both reset
// the counter. Every operation is recorded in an ordered history.
type Transcript struct {
	digest  core.Felt
	counter uint64
	history []Event
}

// NewTranscript creates a transcript seeded with the public input digest
func NewTranscript(seed core.Felt) *Transcript {
	return &Transcript{
		digest:  seed,
		history: make([]Event, 0, 64),
	}
}

// RandomFeltToProver squeezes the next challenge
func (t *Transcript) RandomFeltToProver() core.Felt {
	challenge := core.Poseidon(t.digest, core.NewFelt(t.counter))
	t.counter++
	t.history = append(t.history, Event{Kind: EventSqueeze, Values: []core.Felt{challenge}})
	return challenge
}

// RandomFeltsToProver squeezes n consecutive challenges
func (t *Transcript) RandomFeltsToProver(n int) []core.Felt {
	out := make([]core.Felt, n)
	for i := range out {
		out[i] = t.RandomFeltToProver()
	}
	return out
}

// ReadFeltFromProver absorbs a single prover value
func (t *Transcript) ReadFeltFromProver(v core.Felt) {
	t.digest = core.Poseidon(t.digest.Add(core.One), v)
	t.counter = 0
	t.history = append(t.history, Event{Kind: EventAbsorb, Values: []core.Felt{v}})
}

// ReadFeltVectorFromProver absorbs a vector of prover values in one hash
func (t *Transcript) ReadFeltVectorFromProver(values []core.Felt) {
	input := make([]core.Felt, 0, len(values)+1)
	input = append(input, t.digest.Add(core.One))
	input = append(input, values...)
	t.digest = core.PoseidonMany(input...)
	t.counter = 0
	t.history = append(t.history, Event{Kind: EventAbsorb, Values: append([]core.Felt(nil), values...)})
}

// ReadUint64FromProver absorbs a 64-bit prover value such as a PoW nonce
func (t *Transcript) ReadUint64FromProver(v uint64) {
	t.ReadFeltFromProver(core.NewFelt(v))
}

// Digest returns the current digest
func (t *Transcript) Digest() core.Felt {
	return t.digest
}

// Counter returns the number of challenges squeezed since the last absorb
func (t *Transcript) Counter() uint64 {
	return t.counter
}

// History returns a copy of the recorded operations
func (t *Transcript) History() []Event {
	return append([]Event(nil), t.history...)
}

// String returns a representation of the transcript history
func (t *Transcript) String() string {
	parts := make([]string, len(t.history))
	for i, e := range t.history {
		parts[i] = e.String()
	}
	return strings.Join(parts, " ")
}
