// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package generic provides the generic tensor operations: concatenation and
// join-reduce over values of any mix of sparse and dense dimensions.
//
// Params resolve result types and build execution plans once per
// combination of operand types; applying a param to values is then a pure
// function. PlanCache memoises params for callers that see the same types
// repeatedly.
//
// Example:
//
//	a, _ := tensor.DenseValue(tensor.MustParseType("tensor(x[3])"), []float64{1, 2, 3})
//	b, _ := tensor.DenseValue(tensor.MustParseType("tensor(x[3])"), []float64{4, 5, 6})
//	dot, err := generic.JoinReduce(a, b, generic.Mul, aggr.Sum) // 32
package generic

import (
	"log/slog"

	"github.com/born-ml/hybrid/internal/aggr"
	"github.com/born-ml/hybrid/internal/generic"
	"github.com/born-ml/hybrid/internal/operation"
	"github.com/born-ml/hybrid/internal/tensor"
)

// Op is a binary cell operation used when joining values.
type Op = operation.Op

// Binary operations.
const (
	Add   Op = operation.Add
	Sub   Op = operation.Sub
	Mul   Op = operation.Mul
	Div   Op = operation.Div
	Max   Op = operation.Max
	Min   Op = operation.Min
	Pow   Op = operation.Pow
	Mod   Op = operation.Mod
	Hypot Op = operation.Hypot
)

// ConcatParam concatenates values of two fixed types along one dimension.
type ConcatParam = generic.ConcatParam

// JoinReduceParam joins values of two fixed types and reduces the result.
type JoinReduceParam = generic.JoinReduceParam

// PlanCache memoises params. It is safe for concurrent use.
type PlanCache = generic.PlanCache

// ParseOp returns the operation with the given name.
func ParseOp(name string) (Op, error) { return operation.Parse(name) }

// NewConcatParam resolves the result type and builds the plans for
// concatenating lhs and rhs along dim.
func NewConcatParam(lhs, rhs tensor.Type, dim string) (*ConcatParam, error) {
	return generic.NewConcatParam(lhs, rhs, dim)
}

// NewJoinReduceParam resolves the result type and builds the plans for
// joining lhs and rhs with op and reducing dims with kind. An empty reduce
// list reduces every dimension.
func NewJoinReduceParam(lhs, rhs tensor.Type, op Op, kind aggr.Aggr, reduce []string) (*JoinReduceParam, error) {
	return generic.NewJoinReduceParam(lhs, rhs, op, kind, reduce)
}

// NewPlanCache creates an empty cache logging plan builds to logger at
// debug level. A nil logger uses slog.Default().
func NewPlanCache(logger *slog.Logger) *PlanCache {
	return generic.NewPlanCache(logger)
}

// Concat concatenates lhs and rhs along dim.
//
// Example:
//
//	a, _ := tensor.DenseValue(tensor.MustParseType("tensor(x[2])"), []float64{1, 2})
//	b, _ := tensor.DenseValue(tensor.MustParseType("tensor(x[3])"), []float64{3, 4, 5})
//	c, err := generic.Concat(a, b, "x") // tensor(x[5]): [1 2 3 4 5]
func Concat(lhs, rhs *tensor.Value, dim string) (*tensor.Value, error) {
	return generic.Concat(lhs, rhs, dim)
}

// JoinReduce joins lhs and rhs with op and reduces the named dimensions
// with kind. An empty reduce list reduces every dimension.
func JoinReduce(lhs, rhs *tensor.Value, op Op, kind aggr.Aggr, reduce ...string) (*tensor.Value, error) {
	return generic.JoinReduce(lhs, rhs, op, kind, reduce...)
}
