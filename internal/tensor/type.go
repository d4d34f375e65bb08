package tensor

import (
	"fmt"
	"slices"
	"strings"
)

// Mapped is the Size of a mapped (sparse) dimension.
const Mapped = -1

// Dimension is a named axis of a tensor type.
//
// Indexed dimensions have a fixed, non-negative Size. Mapped dimensions are
// keyed by labels and carry Size == Mapped.
type Dimension struct {
	Name string
	Size int
}

// IndexedDim creates an indexed dimension of the given size.
func IndexedDim(name string, size int) Dimension {
	return Dimension{Name: name, Size: size}
}

// MappedDim creates a mapped dimension.
func MappedDim(name string) Dimension {
	return Dimension{Name: name, Size: Mapped}
}

// IsMapped reports whether the dimension is keyed by labels.
func (d Dimension) IsMapped() bool { return d.Size == Mapped }

// IsIndexed reports whether the dimension has a fixed size.
func (d Dimension) IsIndexed() bool { return d.Size != Mapped }

// String renders the dimension the way type specs write it.
func (d Dimension) String() string {
	if d.IsMapped() {
		return d.Name + "{}"
	}
	return fmt.Sprintf("%s[%d]", d.Name, d.Size)
}

// Type is a validated tensor type: a cell type and a set of dimensions kept
// sorted by name. The sorted order is the canonical order used for addresses
// and dense layouts everywhere in the engine.
//
// Type values are immutable and safe to share.
type Type struct {
	cellType CellType
	dims     []Dimension
}

// NewType validates dims and returns the type with dimensions in canonical order.
func NewType(cellType CellType, dims ...Dimension) (Type, error) {
	sorted := slices.Clone(dims)
	slices.SortFunc(sorted, func(a, b Dimension) int { return strings.Compare(a.Name, b.Name) })

	for i, d := range sorted {
		if d.Name == "" {
			return Type{}, fmt.Errorf("%w: empty dimension name", ErrInvalidDimension)
		}
		if d.Size < 0 && d.Size != Mapped {
			return Type{}, fmt.Errorf("%w: %s has negative size %d", ErrInvalidDimension, d.Name, d.Size)
		}
		if i > 0 && sorted[i-1].Name == d.Name {
			return Type{}, fmt.Errorf("%w: %s", ErrDuplicateDimension, d.Name)
		}
	}
	if len(sorted) == 0 {
		// Scalars are always double.
		cellType = Float64
	}
	return Type{cellType: cellType, dims: sorted}, nil
}

// MustType is like NewType but panics on error. Intended for tests and
// package-level fixtures.
func MustType(cellType CellType, dims ...Dimension) Type {
	t, err := NewType(cellType, dims...)
	if err != nil {
		panic(fmt.Sprintf("tensor: %v", err))
	}
	return t
}

// CellType returns the type's cell type.
func (t Type) CellType() CellType { return t.cellType }

// Dimensions returns all dimensions in canonical order.
// The returned slice must not be modified.
func (t Type) Dimensions() []Dimension { return t.dims }

// MappedDimensions returns the mapped dimensions in canonical order.
func (t Type) MappedDimensions() []Dimension {
	var out []Dimension
	for _, d := range t.dims {
		if d.IsMapped() {
			out = append(out, d)
		}
	}
	return out
}

// IndexedDimensions returns the indexed dimensions in canonical order.
func (t Type) IndexedDimensions() []Dimension {
	var out []Dimension
	for _, d := range t.dims {
		if d.IsIndexed() {
			out = append(out, d)
		}
	}
	return out
}

// NumMappedDimensions returns the number of mapped dimensions.
func (t Type) NumMappedDimensions() int {
	n := 0
	for _, d := range t.dims {
		if d.IsMapped() {
			n++
		}
	}
	return n
}

// DenseShape returns the sizes of the indexed dimensions.
func (t Type) DenseShape() Shape {
	var s Shape
	for _, d := range t.dims {
		if d.IsIndexed() {
			s = append(s, d.Size)
		}
	}
	return s
}

// DenseSubspaceSize returns the number of cells owned by each subspace.
func (t Type) DenseSubspaceSize() int {
	return t.DenseShape().NumElements()
}

// DimensionIndex returns the canonical position of the named dimension, or -1.
func (t Type) DimensionIndex(name string) int {
	i, found := slices.BinarySearchFunc(t.dims, name, func(d Dimension, n string) int {
		return strings.Compare(d.Name, n)
	})
	if !found {
		return -1
	}
	return i
}

// Dimension returns the named dimension.
func (t Type) Dimension(name string) (Dimension, bool) {
	i := t.DimensionIndex(name)
	if i < 0 {
		return Dimension{}, false
	}
	return t.dims[i], true
}

// IsScalar reports whether the type has no dimensions.
func (t Type) IsScalar() bool { return len(t.dims) == 0 }

// Equal reports whether two types have the same cell type and dimensions.
func (t Type) Equal(other Type) bool {
	return t.cellType == other.cellType && slices.Equal(t.dims, other.dims)
}

// String renders the type as a type spec, e.g. "tensor<float>(x{},y[3])".
func (t Type) String() string {
	if t.IsScalar() {
		return "double"
	}
	var sb strings.Builder
	sb.WriteString("tensor")
	if t.cellType != Float64 {
		sb.WriteString("<" + t.cellType.String() + ">")
	}
	sb.WriteByte('(')
	for i, d := range t.dims {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(d.String())
	}
	sb.WriteByte(')')
	return sb.String()
}
