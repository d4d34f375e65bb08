// Package dense plans nested loops that remap cells between dense subspace
// layouts. Plans depend only on the indexed dimensions of the operand types
// and are immutable once built.
package dense

import (
	"fmt"

	"github.com/born-ml/hybrid/internal/tensor"
)

// level is one nested loop level with a stride per cell stream.
type level struct {
	count   int
	strides []int
}

// compact drops trivial levels and fuses neighbours that are contiguous in
// every stream, leaving the minimal number of loop levels.
func compact(levels []level) []level {
	out := make([]level, 0, len(levels))
	for _, l := range levels {
		if l.count == 1 {
			continue
		}
		if n := len(out); n > 0 && fusable(out[n-1], l) {
			prev := out[n-1]
			out[n-1] = level{count: prev.count * l.count, strides: l.strides}
			continue
		}
		out = append(out, l)
	}
	return out
}

func fusable(outer, inner level) bool {
	for k := range inner.strides {
		if outer.strides[k] != inner.strides[k]*inner.count {
			return false
		}
	}
	return true
}

// columns splits levels into a loop count slice and one stride slice per stream.
func columns(levels []level, streams int) (counts []int, strides [][]int) {
	counts = make([]int, len(levels))
	strides = make([][]int, streams)
	for k := range strides {
		strides[k] = make([]int, len(levels))
	}
	for i, l := range levels {
		counts[i] = l.count
		for k := range strides {
			strides[k][i] = l.strides[k]
		}
	}
	return counts, strides
}

// stridesByName returns the row-major stride of each indexed dimension.
func stridesByName(dims []tensor.Dimension) map[string]int {
	shape := make(tensor.Shape, len(dims))
	for i, d := range dims {
		if d.IsMapped() {
			panic(fmt.Sprintf("dense: mapped dimension %q in dense layout", d.Name))
		}
		shape[i] = d.Size
	}
	strides := shape.ComputeStrides()
	out := make(map[string]int, len(dims))
	for i, d := range dims {
		out[d.Name] = strides[i]
	}
	return out
}

func sizeOf(dims []tensor.Dimension) int {
	n := 1
	for _, d := range dims {
		n *= d.Size
	}
	return n
}

func runLoop2(counts, s1, s2 []int, i1, i2 int, fn func(a, b int)) {
	switch len(counts) {
	case 0:
		fn(i1, i2)
	case 1:
		for i := 0; i < counts[0]; i++ {
			fn(i1+i*s1[0], i2+i*s2[0])
		}
	default:
		for i := 0; i < counts[0]; i++ {
			runLoop2(counts[1:], s1[1:], s2[1:], i1+i*s1[0], i2+i*s2[0], fn)
		}
	}
}

func runLoop3(counts, s1, s2, s3 []int, i1, i2, i3 int, fn func(a, b, c int)) {
	switch len(counts) {
	case 0:
		fn(i1, i2, i3)
	case 1:
		for i := 0; i < counts[0]; i++ {
			fn(i1+i*s1[0], i2+i*s2[0], i3+i*s3[0])
		}
	default:
		for i := 0; i < counts[0]; i++ {
			runLoop3(counts[1:], s1[1:], s2[1:], s3[1:], i1+i*s1[0], i2+i*s2[0], i3+i*s3[0], fn)
		}
	}
}
