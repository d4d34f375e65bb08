// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/hybrid/internal/tensor"
)

// Type aliases for public API

// CellType is the numeric type of tensor cells.
type CellType = tensor.CellType

// Cell type constants.
const (
	Float64 CellType = tensor.Float64
	Float32 CellType = tensor.Float32
)

// Float is a constraint for cell types (float32, float64).
type Float = tensor.Float

// Dimension is a named tensor dimension, indexed or mapped.
type Dimension = tensor.Dimension

// Mapped is the size of a mapped dimension.
const Mapped = tensor.Mapped

// Type is an immutable tensor type with dimensions sorted by name.
type Type = tensor.Type

// Shape is the row-major extent of the indexed dimensions of a type.
type Shape = tensor.Shape

// Label is an interned mapped-dimension label.
type Label = tensor.Label

// SparseIndex maps label tuples to subspace numbers.
type SparseIndex = tensor.SparseIndex

// MapIndex is the hash-based SparseIndex used by all values built here.
type MapIndex = tensor.MapIndex

// Value is an immutable tensor value.
type Value = tensor.Value

// Subspace describes one dense block by its labels.
type Subspace = tensor.Subspace

// Builder assembles a value one subspace at a time.
type Builder[T Float] = tensor.Builder[T]

// Errors returned by type construction and resolution.
var (
	ErrInvalidDimension   = tensor.ErrInvalidDimension
	ErrDuplicateDimension = tensor.ErrDuplicateDimension
	ErrIncompatibleTypes  = tensor.ErrIncompatibleTypes
	ErrUnknownDimension   = tensor.ErrUnknownDimension
	ErrParse              = tensor.ErrParse
)

// Types

// IndexedDim returns an indexed dimension of the given size.
func IndexedDim(name string, size int) Dimension { return tensor.IndexedDim(name, size) }

// MappedDim returns a mapped dimension.
func MappedDim(name string) Dimension { return tensor.MappedDim(name) }

// NewType creates a type, sorting dims by name.
//
// Example:
//
//	t, err := tensor.NewType(tensor.Float32, tensor.MappedDim("k"), tensor.IndexedDim("x", 3))
//	// t.String() == "tensor<float>(k{},x[3])"
func NewType(cellType CellType, dims ...Dimension) (Type, error) {
	return tensor.NewType(cellType, dims...)
}

// ParseType parses a type such as "tensor<float>(k{},x[3])" or "double".
func ParseType(spec string) (Type, error) {
	return tensor.ParseType(spec)
}

// MustParseType is like ParseType but panics on error.
func MustParseType(spec string) Type {
	return tensor.MustParseType(spec)
}

// UnifyCellTypes returns the cell type of a result combining a and b.
func UnifyCellTypes(a, b CellType) CellType {
	return tensor.Unify(a, b)
}

// JoinType returns the type of joining a and b.
func JoinType(a, b Type) (Type, error) {
	return tensor.JoinType(a, b)
}

// ConcatType returns the type of concatenating a and b along dim.
//
// Example:
//
//	res, _ := tensor.ConcatType(
//	    tensor.MustParseType("tensor(x[2])"),
//	    tensor.MustParseType("tensor(x[3])"),
//	    "x",
//	)
//	// res.String() == "tensor(x[5])"
func ConcatType(a, b Type, dim string) (Type, error) {
	return tensor.ConcatType(a, b, dim)
}

// ReduceType returns the type of reducing dims of t. An empty list reduces
// every dimension.
func ReduceType(t Type, dims []string) (Type, error) {
	return tensor.ReduceType(t, dims)
}

// Labels

// Intern returns the label for s.
func Intern(s string) Label { return tensor.Intern(s) }

// InternAll interns every string.
func InternAll(ss ...string) []Label { return tensor.InternAll(ss...) }

// Values

// NewMapIndex creates an empty index over numDims mapped dimensions.
func NewMapIndex(numDims, expected int) *MapIndex {
	return tensor.NewMapIndex(numDims, expected)
}

// NewValue assembles a value from a type, an index and a []float32 or
// []float64 cell buffer.
func NewValue(t Type, index SparseIndex, cells any) (*Value, error) {
	return tensor.NewValue(t, index, cells)
}

// DenseValue creates a value of a type without mapped dimensions.
//
// Example:
//
//	v, err := tensor.DenseValue(tensor.MustParseType("tensor<float>(x[3])"), []float32{1, 2, 3})
func DenseValue[T Float](t Type, cells []T) (*Value, error) {
	return tensor.DenseValue(t, cells)
}

// ScalarValue creates a double scalar.
func ScalarValue(v float64) *Value { return tensor.ScalarValue(v) }

// FromSubspaces builds a value of type t from explicit subspaces.
func FromSubspaces(t Type, subs ...Subspace) (*Value, error) {
	return tensor.FromSubspaces(t, subs...)
}

// NewBuilder creates a builder for values of type t.
func NewBuilder[T Float](t Type, expectedSubspaces int) *Builder[T] {
	return tensor.NewBuilder[T](t, expectedSubspaces)
}

// Cells returns a typed view of the value's cells. Panics if T does not
// match the value's cell type.
func Cells[T Float](v *Value) []T {
	return tensor.Cells[T](v)
}
