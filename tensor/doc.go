// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the value model of the hybrid tensor engine.
//
// # Overview
//
// A tensor type is a cell type plus a set of named dimensions. Each
// dimension is either indexed, with a fixed size, or mapped, addressed by
// string labels:
//
//	tensor<float>(k{},x[3])   // mapped k, indexed x of size 3, float cells
//	tensor(x[2],y[2])         // dense 2x2 matrix of doubles
//	double                    // scalar
//
// Dimensions are kept sorted by name. The mapped dimensions of a value form
// its sparse index; each entry of the index (a subspace) owns one dense
// block holding the indexed dimensions in row-major order.
//
// # Basic Usage
//
//	t := tensor.MustParseType("tensor(k{},x[2])")
//	v, err := tensor.FromSubspaces(t,
//	    tensor.Subspace{Labels: []string{"a"}, Cells: []float64{1, 2}},
//	    tensor.Subspace{Labels: []string{"b"}, Cells: []float64{3, 4}},
//	)
//	cells, ok := v.Lookup("a") // [1 2], true
//
// # Cell Types
//
// Cells are float32 ("float") or float64 ("double"). Combining two types
// yields float only when both sides are float. Scalars are always double.
//
// # Type Resolution
//
// JoinType, ConcatType and ReduceType compute result types of the generic
// operations and report incompatible inputs with wrapped sentinel errors:
//
//	res, err := tensor.JoinType(a, b)
//	if errors.Is(err, tensor.ErrIncompatibleTypes) {
//	    ...
//	}
package tensor
