package protocols

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/core"
)

// Layout describes the AIR a proof was generated for. The splitter only needs
// the column counts, the mask and the composition degree; the constraints
// themselves are checked on-chain.
type Layout interface {
	// Name is the layout name as stored in the public input
	Name() string

	// NumColumnsFirst returns the number of columns of the original trace
	NumColumnsFirst(pi *PublicInput) (uint32, bool)

	// NumColumnsSecond returns the number of columns of the interaction trace
	NumColumnsSecond(pi *PublicInput) (uint32, bool)

	// NumInteractionElements is the number of challenges drawn between the
	// original and the interaction trace commitments
	NumInteractionElements() int

	// RowOffsets are the rows, relative to the evaluated row, at which every
	// trace column is sampled out of domain
	RowOffsets() []uint64

	// ConstraintDegree is the number of composition polynomial columns
	ConstraintDegree() uint32
}

// MaskItem is one out of domain sample of a trace column
type MaskItem struct {
	Column    uint32
	RowOffset uint64
}

// LayoutMask lists the trace samples in the order their out of domain values
// appear in the proof: column major, original columns first
func LayoutMask(layout Layout, nFirst, nSecond uint32) []MaskItem {
	offsets := layout.RowOffsets()
	mask := make([]MaskItem, 0, int(nFirst+nSecond)*len(offsets))
	for col := uint32(0); col < nFirst+nSecond; col++ {
		for _, off := range offsets {
			mask = append(mask, MaskItem{Column: col, RowOffset: off})
		}
	}
	return mask
}

// NumOodsValues returns how many out of domain values a proof must carry
func NumOodsValues(layout Layout, nFirst, nSecond uint32) int {
	return int(nFirst+nSecond)*len(layout.RowOffsets()) + int(layout.ConstraintDegree())
}

// ResolveColumns resolves both trace column counts of the layout
func ResolveColumns(layout Layout, pi *PublicInput) (nFirst, nSecond uint32, err error) {
	nFirst, ok := layout.NumColumnsFirst(pi)
	if !ok {
		return 0, 0, fmt.Errorf("%w: layout %s, original trace", ErrColumnMissing, layout.Name())
	}
	nSecond, ok = layout.NumColumnsSecond(pi)
	if !ok {
		return 0, 0, fmt.Errorf("%w: layout %s, interaction trace", ErrColumnMissing, layout.Name())
	}
	return nFirst, nSecond, nil
}

// fixedLayout has column counts that do not depend on the public input
type fixedLayout struct {
	name                string
	nFirst, nSecond     uint32
	interactionElements int
	constraintDegree    uint32
}

func (l *fixedLayout) Name() string { return l.name }

func (l *fixedLayout) NumColumnsFirst(*PublicInput) (uint32, bool) { return l.nFirst, true }

func (l *fixedLayout) NumColumnsSecond(*PublicInput) (uint32, bool) { return l.nSecond, true }

func (l *fixedLayout) NumInteractionElements() int { return l.interactionElements }

func (l *fixedLayout) RowOffsets() []uint64 { return []uint64{0, 1} }

func (l *fixedLayout) ConstraintDegree() uint32 { return l.constraintDegree }

// Positions of the column counts inside public_input.dynamic_params
const (
	DynamicParamNumColumnsFirst = iota
	DynamicParamNumColumnsSecond
)

// dynamicLayout reads its column counts from the public input
type dynamicLayout struct{}

func (dynamicLayout) Name() string { return "dynamic" }

func (dynamicLayout) NumColumnsFirst(pi *PublicInput) (uint32, bool) {
	return dynamicParam(pi, DynamicParamNumColumnsFirst)
}

func (dynamicLayout) NumColumnsSecond(pi *PublicInput) (uint32, bool) {
	return dynamicParam(pi, DynamicParamNumColumnsSecond)
}

func (dynamicLayout) NumInteractionElements() int { return 6 }

func (dynamicLayout) RowOffsets() []uint64 { return []uint64{0, 1} }

func (dynamicLayout) ConstraintDegree() uint32 { return 2 }

func dynamicParam(pi *PublicInput, i int) (uint32, bool) {
	if pi == nil || i >= len(pi.DynamicParams) {
		return 0, false
	}
	v, ok := pi.DynamicParams[i].Uint64()
	if !ok || v > 1<<32-1 {
		return 0, false
	}
	return uint32(v), true
}

var (
	layoutsMu sync.RWMutex
	layouts   = map[string]Layout{}
)

func init() {
	RegisterLayout(&fixedLayout{name: "plain", nFirst: 4, constraintDegree: 2})
	RegisterLayout(&fixedLayout{name: "recursive", nFirst: 7, nSecond: 3, interactionElements: 6, constraintDegree: 2})
	RegisterLayout(dynamicLayout{})
}

// RegisterLayout makes a layout available by name, replacing any layout
// registered under the same name
func RegisterLayout(l Layout) {
	layoutsMu.Lock()
	defer layoutsMu.Unlock()
	layouts[l.Name()] = l
}

// LayoutByName looks up a registered layout
func LayoutByName(name string) (Layout, error) {
	layoutsMu.RLock()
	defer layoutsMu.RUnlock()
	l, ok := layouts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayout, name)
	}
	return l, nil
}

// LayoutForPublicInput looks up the layout named in the public input
func LayoutForPublicInput(pi *PublicInput) (Layout, error) {
	name, err := core.DecodeShortString(pi.Layout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownLayout, err)
	}
	return LayoutByName(name)
}

// LayoutNames lists the registered layouts in sorted order
func LayoutNames() []string {
	layoutsMu.RLock()
	defer layoutsMu.RUnlock()
	names := make([]string, 0, len(layouts))
	for name := range layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
