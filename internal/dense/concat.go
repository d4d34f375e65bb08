package dense

import (
	"fmt"

	"github.com/born-ml/hybrid/internal/tensor"
)

// Program copies one operand's dense block into an output block.
//
// LoopCount, InputStride and OutputStride describe a nested loop, outermost
// level first. A zero InputStride broadcasts the operand along a dimension
// it lacks.
type Program struct {
	InputSize    int
	LoopCount    []int
	InputStride  []int
	OutputStride []int
}

// Execute calls fn with the input and output cell index of every visited
// cell, starting from the given offsets.
func (p *Program) Execute(inOffset, outOffset int, fn func(in, out int)) {
	runLoop2(p.LoopCount, p.InputStride, p.OutputStride, inOffset, outOffset, fn)
}

// Visits returns the number of cells the program visits.
func (p *Program) Visits() int {
	n := 1
	for _, c := range p.LoopCount {
		n *= c
	}
	return n
}

// ConcatPlan places the dense blocks of two operands side by side along one
// indexed dimension of the output layout. The left block starts at output
// cell 0 and the right block at RightOffset; together they cover every
// output cell exactly once.
type ConcatPlan struct {
	Left        Program
	Right       Program
	RightOffset int
	OutputSize  int
}

// NewConcatPlan builds the plan for concatenating along dim. lhs, rhs and out
// are the indexed dimensions of the operand and result types in canonical
// order; out must be the resolved concat type.
func NewConcatPlan(lhs, rhs, out []tensor.Dimension, dim string) *ConcatPlan {
	outStrides := stridesByName(out)
	outStride, ok := outStrides[dim]
	if !ok {
		panic(fmt.Sprintf("dense: concat dimension %q missing from output", dim))
	}

	p := &ConcatPlan{OutputSize: sizeOf(out)}
	var leftWidth int
	p.Left, leftWidth = concatProgram(lhs, out, dim)
	p.Right, _ = concatProgram(rhs, out, dim)
	p.RightOffset = outStride * leftWidth
	return p
}

// concatProgram builds the copy program for one operand and returns its
// width along the concat dimension.
func concatProgram(in, out []tensor.Dimension, dim string) (Program, int) {
	inStrides := stridesByName(in)
	outStrides := stridesByName(out)
	inSizes := make(map[string]int, len(in))
	for _, d := range in {
		inSizes[d.Name] = d.Size
	}

	width := 1
	levels := make([]level, 0, len(out))
	for _, d := range out {
		size, present := inSizes[d.Name]
		switch {
		case d.Name == dim:
			if present {
				width = size
			}
			levels = append(levels, level{count: width, strides: []int{inStrides[d.Name], outStrides[d.Name]}})
		case present:
			if size != d.Size {
				panic(fmt.Sprintf("dense: dimension %q is %d in operand but %d in output", d.Name, size, d.Size))
			}
			levels = append(levels, level{count: d.Size, strides: []int{inStrides[d.Name], outStrides[d.Name]}})
		default:
			levels = append(levels, level{count: d.Size, strides: []int{0, outStrides[d.Name]}})
		}
	}
	for _, d := range in {
		if _, ok := outStrides[d.Name]; !ok {
			panic(fmt.Sprintf("dense: operand dimension %q missing from output", d.Name))
		}
	}

	counts, strides := columns(compact(levels), 2)
	return Program{
		InputSize:    sizeOf(in),
		LoopCount:    counts,
		InputStride:  strides[0],
		OutputStride: strides[1],
	}, width
}
