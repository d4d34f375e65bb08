package tensor

import (
	"fmt"
)

// Value is an immutable tensor: a type, a sparse index over its subspaces and
// one dense cell buffer holding the blocks of all subspaces back to back.
//
// The cell buffer is a []float32 or []float64 matching the type's cell type.
type Value struct {
	typ   Type
	index SparseIndex
	cells any
}

// NewValue assembles a Value from its parts. cells must be a []float32 or
// []float64 matching t and hold exactly index.Size() dense blocks.
func NewValue(t Type, index SparseIndex, cells any) (*Value, error) {
	if index.NumMappedDims() != t.NumMappedDimensions() {
		return nil, fmt.Errorf("index has %d mapped dimensions, type %s has %d",
			index.NumMappedDims(), t, t.NumMappedDimensions())
	}
	var n int
	switch c := cells.(type) {
	case []float32:
		if t.CellType() != Float32 {
			return nil, fmt.Errorf("float cells given for type %s", t)
		}
		n = len(c)
	case []float64:
		if t.CellType() != Float64 {
			return nil, fmt.Errorf("double cells given for type %s", t)
		}
		n = len(c)
	default:
		return nil, fmt.Errorf("unsupported cell buffer %T", cells)
	}
	if want := index.Size() * t.DenseSubspaceSize(); n != want {
		return nil, fmt.Errorf("type %s with %d subspaces requires %d cells, but got %d",
			t, index.Size(), want, n)
	}
	return &Value{typ: t, index: index, cells: cells}, nil
}

// DenseValue creates a value of a type without mapped dimensions.
func DenseValue[T Float](t Type, cells []T) (*Value, error) {
	if t.NumMappedDimensions() != 0 {
		return nil, fmt.Errorf("type %s is not dense", t)
	}
	if CellTypeOf[T]() != t.CellType() {
		return nil, fmt.Errorf("%s cells given for type %s", CellTypeOf[T](), t)
	}
	index := NewMapIndex(0, 1)
	index.Insert(nil)
	return NewValue(t, index, append([]T(nil), cells...))
}

// ScalarValue creates a double scalar.
func ScalarValue(v float64) *Value {
	t, _ := NewType(Float64)
	index := NewMapIndex(0, 1)
	index.Insert(nil)
	return &Value{typ: t, index: index, cells: []float64{v}}
}

// Subspace describes one dense block by its labels, for building values by hand.
type Subspace struct {
	Labels []string
	Cells  []float64
}

// FromSubspaces builds a value of type t from explicit subspaces.
func FromSubspaces(t Type, subs ...Subspace) (*Value, error) {
	switch t.CellType() {
	case Float32:
		return fromSubspaces[float32](t, subs)
	default:
		return fromSubspaces[float64](t, subs)
	}
}

func fromSubspaces[T Float](t Type, subs []Subspace) (*Value, error) {
	blockSize := t.DenseSubspaceSize()
	b := NewBuilder[T](t, len(subs))
	for _, s := range subs {
		if len(s.Labels) != t.NumMappedDimensions() {
			return nil, fmt.Errorf("subspace %v has %d labels, type %s needs %d",
				s.Labels, len(s.Labels), t, t.NumMappedDimensions())
		}
		if len(s.Cells) != blockSize {
			return nil, fmt.Errorf("subspace %v has %d cells, type %s needs %d",
				s.Labels, len(s.Cells), t, blockSize)
		}
		block := b.AddSubspace(InternAll(s.Labels...))
		for i, c := range s.Cells {
			block[i] = T(c)
		}
	}
	return b.Build(), nil
}

// Type returns the value's type.
func (v *Value) Type() Type { return v.typ }

// Index returns the value's sparse index.
func (v *Value) Index() SparseIndex { return v.index }

// CellType returns the cell type of the dense buffer.
func (v *Value) CellType() CellType { return v.typ.CellType() }

// NumSubspaces returns the number of subspaces.
func (v *Value) NumSubspaces() int { return v.index.Size() }

// Cells returns a typed view of the value's dense buffer.
// Panics if T does not match the value's cell type.
//
// WARNING: Values are immutable; the returned slice must not be modified.
func Cells[T Float](v *Value) []T {
	c, ok := v.cells.([]T)
	if !ok {
		panic(fmt.Sprintf("value: cells are %s, requested %s", v.CellType(), CellTypeOf[T]()))
	}
	return c
}

// Float64s returns a copy of all cells converted to float64.
func (v *Value) Float64s() []float64 {
	switch c := v.cells.(type) {
	case []float32:
		out := make([]float64, len(c))
		for i, x := range c {
			out[i] = float64(x)
		}
		return out
	case []float64:
		return append([]float64(nil), c...)
	default:
		panic(fmt.Sprintf("value: unsupported cell buffer %T", v.cells))
	}
}

// Block returns the cells of one subspace converted to float64.
func (v *Value) Block(subspace int) []float64 {
	size := v.typ.DenseSubspaceSize()
	start := subspace * size
	switch c := v.cells.(type) {
	case []float32:
		out := make([]float64, size)
		for i := range out {
			out[i] = float64(c[start+i])
		}
		return out
	case []float64:
		return append([]float64(nil), c[start:start+size]...)
	default:
		panic(fmt.Sprintf("value: unsupported cell buffer %T", v.cells))
	}
}

// Lookup returns the cells of the subspace addressed by labels.
func (v *Value) Lookup(labels ...string) ([]float64, bool) {
	subspace, ok := v.index.Lookup(InternAll(labels...))
	if !ok {
		return nil, false
	}
	return v.Block(subspace), true
}

// Blocks returns every subspace keyed by its rendered address, e.g. "{a,b}".
// Intended for order-independent comparisons.
func (v *Value) Blocks() map[string][]float64 {
	out := make(map[string][]float64, v.index.Size())
	v.index.Each(func(addr []Label, subspace int) {
		out[LabelsString(addr)] = v.Block(subspace)
	})
	return out
}
