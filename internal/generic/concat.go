// Package generic implements the generic hybrid sparse/dense tensor
// operations: concatenation along an indexed dimension and join with
// reduction. They handle any combination of mapped and indexed dimensions
// and are used whenever no specialised kernel applies.
package generic

import (
	"fmt"

	"github.com/born-ml/hybrid/internal/dense"
	"github.com/born-ml/hybrid/internal/sparse"
	"github.com/born-ml/hybrid/internal/tensor"
)

// ConcatParam holds everything needed to concatenate values of two fixed
// types. It is immutable and may be shared between goroutines.
type ConcatParam struct {
	LHSType    tensor.Type
	RHSType    tensor.Type
	ResultType tensor.Type
	Dimension  string

	sparse *sparse.JoinPlan
	dense  *dense.ConcatPlan
}

// NewConcatParam resolves the result type and builds the sparse and dense
// plans for concatenating lhs and rhs along dim.
func NewConcatParam(lhs, rhs tensor.Type, dim string) (*ConcatParam, error) {
	res, err := tensor.ConcatType(lhs, rhs, dim)
	if err != nil {
		return nil, fmt.Errorf("concat: %w", err)
	}
	return &ConcatParam{
		LHSType:    lhs,
		RHSType:    rhs,
		ResultType: res,
		Dimension:  dim,
		sparse:     sparse.NewJoinPlan(lhs, rhs, nil),
		dense:      dense.NewConcatPlan(lhs.IndexedDimensions(), rhs.IndexedDimensions(), res.IndexedDimensions(), dim),
	}, nil
}

// SparsePlan returns the plan enumerating subspace pairs.
func (p *ConcatParam) SparsePlan() *sparse.JoinPlan { return p.sparse }

// DensePlan returns the plan copying dense blocks.
func (p *ConcatParam) DensePlan() *dense.ConcatPlan { return p.dense }

// EstimateResultSize returns an upper bound on the number of result subspaces.
func (p *ConcatParam) EstimateResultSize(lhs, rhs *tensor.Value) int {
	return p.sparse.EstimateResultSize(lhs.Index(), rhs.Index())
}

// Apply concatenates lhs and rhs. Their types must be the ones the param
// was built for.
//
// Example:
//
//	p, _ := generic.NewConcatParam(a.Type(), b.Type(), "x")
//	c := p.Apply(a, b)
func (p *ConcatParam) Apply(lhs, rhs *tensor.Value) *tensor.Value {
	checkTypes("concat", p.LHSType, p.RHSType, lhs, rhs)

	switch l, r := lhs.CellType(), rhs.CellType(); {
	case l == tensor.Float32 && r == tensor.Float32:
		return concatCells[float32, float32, float32](p, lhs, rhs)
	case l == tensor.Float32:
		return concatCells[float32, float64, float64](p, lhs, rhs)
	case r == tensor.Float32:
		return concatCells[float64, float32, float64](p, lhs, rhs)
	default:
		return concatCells[float64, float64, float64](p, lhs, rhs)
	}
}

func concatCells[L, R, O tensor.Float](p *ConcatParam, lhs, rhs *tensor.Value) *tensor.Value {
	lhsCells := tensor.Cells[L](lhs)
	rhsCells := tensor.Cells[R](rhs)
	left, right := &p.dense.Left, &p.dense.Right

	b := tensor.NewBuilder[O](p.ResultType, capacityHint(p.EstimateResultSize(lhs, rhs), lhs, rhs))
	p.sparse.Execute(lhs.Index(), rhs.Index(), func(ls, rs int, addr []tensor.Label) {
		block := b.AddSubspace(addr)
		left.Execute(ls*left.InputSize, 0, func(in, out int) {
			block[out] = O(lhsCells[in])
		})
		right.Execute(rs*right.InputSize, p.dense.RightOffset, func(in, out int) {
			block[out] = O(rhsCells[in])
		})
	})
	return b.Build()
}

// Concat concatenates lhs and rhs along dim, building a fresh param.
// Use NewConcatParam or a PlanCache to reuse plans across many values.
func Concat(lhs, rhs *tensor.Value, dim string) (*tensor.Value, error) {
	p, err := NewConcatParam(lhs.Type(), rhs.Type(), dim)
	if err != nil {
		return nil, err
	}
	return p.Apply(lhs, rhs), nil
}

func checkTypes(op string, lhsType, rhsType tensor.Type, lhs, rhs *tensor.Value) {
	if !lhs.Type().Equal(lhsType) || !rhs.Type().Equal(rhsType) {
		panic(fmt.Sprintf("%s: param built for %s and %s, got %s and %s",
			op, lhsType, rhsType, lhs.Type(), rhs.Type()))
	}
}

// capacityHint bounds a result size estimate for preallocation. Partial
// overlaps estimate the full cross product, which is rarely reached.
func capacityHint(estimate int, lhs, rhs *tensor.Value) int {
	return min(estimate, max(lhs.NumSubspaces(), rhs.NumSubspaces()))
}
