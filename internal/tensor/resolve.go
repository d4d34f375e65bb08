package tensor

import (
	"fmt"
	"slices"
)

// JoinType resolves the result type of joining a and b.
//
// The result has the union of both dimension sets. Dimensions present on both
// sides must agree on kind and, for indexed dimensions, on size.
func JoinType(a, b Type) (Type, error) {
	dims, err := unionDimensions(a, b, "")
	if err != nil {
		return Type{}, err
	}
	return NewType(Unify(a.cellType, b.cellType), dims...)
}

// ConcatType resolves the result type of concatenating a and b along dim.
//
// All other dimensions are merged as for JoinType. The concatenation
// dimension is indexed in the result with a size equal to the sum of both
// operands' sizes along it; an operand lacking it counts as size 1.
func ConcatType(a, b Type, dim string) (Type, error) {
	sizeA, err := concatWidth(a, dim)
	if err != nil {
		return Type{}, err
	}
	sizeB, err := concatWidth(b, dim)
	if err != nil {
		return Type{}, err
	}
	dims, err := unionDimensions(a, b, dim)
	if err != nil {
		return Type{}, err
	}
	dims = append(dims, IndexedDim(dim, sizeA+sizeB))
	return NewType(Unify(a.cellType, b.cellType), dims...)
}

// ReduceType resolves the result type of reducing t over the named
// dimensions. An empty list reduces all dimensions, yielding a scalar.
func ReduceType(t Type, dims []string) (Type, error) {
	if len(dims) == 0 {
		return NewType(Float64)
	}
	for _, name := range dims {
		if t.DimensionIndex(name) < 0 {
			return Type{}, fmt.Errorf("%w: cannot reduce %s over %q", ErrUnknownDimension, t, name)
		}
	}
	var kept []Dimension
	for _, d := range t.dims {
		if !slices.Contains(dims, d.Name) {
			kept = append(kept, d)
		}
	}
	return NewType(t.cellType, kept...)
}

func concatWidth(t Type, dim string) (int, error) {
	d, ok := t.Dimension(dim)
	if !ok {
		return 1, nil
	}
	if d.IsMapped() {
		return 0, fmt.Errorf("%w: cannot concatenate %s along mapped dimension %q", ErrIncompatibleTypes, t, dim)
	}
	return d.Size, nil
}

// unionDimensions merges both dimension lists, skipping the dimension named skip.
func unionDimensions(a, b Type, skip string) ([]Dimension, error) {
	dims := make([]Dimension, 0, len(a.dims)+len(b.dims))
	for _, d := range a.dims {
		if d.Name != skip {
			dims = append(dims, d)
		}
	}
	for _, d := range b.dims {
		if d.Name == skip {
			continue
		}
		other, ok := a.Dimension(d.Name)
		if !ok {
			dims = append(dims, d)
			continue
		}
		if other.Size != d.Size {
			return nil, fmt.Errorf("%w: dimension %q is %s in %s but %s in %s",
				ErrIncompatibleTypes, d.Name, other, a, d, b)
		}
	}
	return dims, nil
}
