package calldata

import (
	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/core"
)

// Encoder is implemented by every value that can be sent as calldata
type Encoder interface {
	EncodeCalldata(w *Writer) error
}

// Writer accumulates calldata felts
type Writer struct {
	felts []core.Felt
}

// NewWriter creates an empty writer
func NewWriter() *Writer {
	return &Writer{felts: make([]core.Felt, 0, 256)}
}

// Felt writes a single felt
func (w *Writer) Felt(f core.Felt) {
	w.felts = append(w.felts, f)
}

// Uint64 writes a small integer as a felt
func (w *Writer) Uint64(v uint64) {
	w.felts = append(w.felts, core.NewFelt(v))
}

// Len writes a length marker
func (w *Writer) Len(n int) {
	w.Uint64(uint64(n))
}

// Felts writes a length-prefixed sequence
func (w *Writer) Felts(values []core.Felt) {
	w.Len(len(values))
	w.felts = append(w.felts, values...)
}

// Calldata returns the written felts
func (w *Writer) Calldata() []core.Felt {
	return w.felts
}

// Encode runs e on a fresh writer and returns the calldata
func Encode(e Encoder) ([]core.Felt, error) {
	w := NewWriter()
	if err := e.EncodeCalldata(w); err != nil {
		return nil, err
	}
	return w.Calldata(), nil
}
