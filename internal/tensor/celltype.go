// Package tensor provides the address-space model shared by the hybrid tensor engine:
// dimensions, types, interned labels, sparse indexes and values.
package tensor

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Float is the constraint satisfied by every supported cell type.
type Float interface {
	constraints.Float
}

// CellType represents runtime type information for dense cells.
type CellType int

// Supported cell types.
const (
	Float64 CellType = iota
	Float32
)

// Size returns the byte size of one cell.
func (ct CellType) Size() int {
	switch ct {
	case Float32:
		return 4
	case Float64:
		return 8
	default:
		panic(fmt.Sprintf("unknown cell type %d", int(ct)))
	}
}

// String returns the cell type name used in type specs.
func (ct CellType) String() string {
	switch ct {
	case Float32:
		return "float"
	case Float64:
		return "double"
	default:
		return "unknown"
	}
}

// Unify returns the cell type used when combining cells of both types.
// Only float32 with float32 stays float32.
func Unify(a, b CellType) CellType {
	if a == Float32 && b == Float32 {
		return Float32
	}
	return Float64
}

// CellTypeOf infers the CellType from a generic type T.
func CellTypeOf[T Float]() CellType {
	var dummy T
	switch any(dummy).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	default:
		panic("unsupported cell type")
	}
}
