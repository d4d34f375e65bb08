package tensor

import "fmt"

// Builder assembles exactly one Value of a given type.
//
// Example:
//
//	b := tensor.NewBuilder[float32](t, 2)
//	copy(b.AddSubspace(tensor.InternAll("a")), []float32{1, 2})
//	copy(b.AddSubspace(tensor.InternAll("b")), []float32{3, 4})
//	v := b.Build()
type Builder[T Float] struct {
	typ       Type
	index     *MapIndex
	cells     []T
	blockSize int
	built     bool
}

// NewBuilder creates a builder for a value of type t. expectedSubspaces is a
// capacity hint.
func NewBuilder[T Float](t Type, expectedSubspaces int) *Builder[T] {
	if ct := CellTypeOf[T](); ct != t.CellType() {
		panic(fmt.Sprintf("builder: %s cells requested for type %s", ct, t))
	}
	blockSize := t.DenseSubspaceSize()
	return &Builder[T]{
		typ:       t,
		index:     NewMapIndex(t.NumMappedDimensions(), expectedSubspaces),
		cells:     make([]T, 0, blockSize*expectedSubspaces),
		blockSize: blockSize,
	}
}

// AddSubspace returns the dense block for addr, creating a zero-filled block
// on first use. The block is valid until the next call to AddSubspace.
func (b *Builder[T]) AddSubspace(addr []Label) []T {
	subspace, added := b.index.Insert(addr)
	if added {
		var zero T
		for i := 0; i < b.blockSize; i++ {
			b.cells = append(b.cells, zero)
		}
	}
	start := subspace * b.blockSize
	return b.cells[start : start+b.blockSize : start+b.blockSize]
}

// NumSubspaces returns the number of subspaces added so far.
func (b *Builder[T]) NumSubspaces() int { return b.index.Size() }

// Build finalizes the value. A type without mapped dimensions always gets
// its single subspace, zero-filled if it was never added.
func (b *Builder[T]) Build() *Value {
	if b.built {
		panic("builder: Build called twice")
	}
	b.built = true
	if b.typ.NumMappedDimensions() == 0 && b.index.Size() == 0 {
		b.AddSubspace(nil)
	}
	return &Value{typ: b.typ, index: b.index, cells: b.cells}
}
