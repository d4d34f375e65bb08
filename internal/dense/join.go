package dense

import (
	"fmt"
	"slices"
	"strings"

	"github.com/born-ml/hybrid/internal/tensor"
)

// JoinPlan pairs up the cells of two dense blocks over the union of their
// indexed dimensions and maps every pair to an output cell. Reduced
// dimensions get output stride 0, so all pairs differing only in them land
// on the same output cell.
type JoinPlan struct {
	LHSSize      int
	RHSSize      int
	OutputSize   int
	LoopCount    []int
	LHSStride    []int
	RHSStride    []int
	OutputStride []int
}

// NewJoinPlan builds the plan for joining blocks laid out by lhs and rhs and
// reducing the named dimensions. Names in reduce that are not indexed
// dimensions of either side are ignored.
func NewJoinPlan(lhs, rhs []tensor.Dimension, reduce []string) *JoinPlan {
	joined := slices.Clone(lhs)
	for _, d := range rhs {
		i := slices.IndexFunc(lhs, func(l tensor.Dimension) bool { return l.Name == d.Name })
		if i < 0 {
			joined = append(joined, d)
			continue
		}
		if lhs[i].Size != d.Size {
			panic(fmt.Sprintf("dense: dimension %q is %d in lhs but %d in rhs", d.Name, lhs[i].Size, d.Size))
		}
	}
	slices.SortFunc(joined, func(a, b tensor.Dimension) int { return strings.Compare(a.Name, b.Name) })

	var out []tensor.Dimension
	for _, d := range joined {
		if !slices.Contains(reduce, d.Name) {
			out = append(out, d)
		}
	}

	lhsStrides := stridesByName(lhs)
	rhsStrides := stridesByName(rhs)
	outStrides := stridesByName(out)
	levels := make([]level, 0, len(joined))
	for _, d := range joined {
		// Missing names yield stride 0.
		levels = append(levels, level{
			count:   d.Size,
			strides: []int{lhsStrides[d.Name], rhsStrides[d.Name], outStrides[d.Name]},
		})
	}

	counts, strides := columns(compact(levels), 3)
	return &JoinPlan{
		LHSSize:      sizeOf(lhs),
		RHSSize:      sizeOf(rhs),
		OutputSize:   sizeOf(out),
		LoopCount:    counts,
		LHSStride:    strides[0],
		RHSStride:    strides[1],
		OutputStride: strides[2],
	}
}

// Execute calls fn with the lhs, rhs and output cell index of every joined
// cell pair, starting from the given offsets.
func (p *JoinPlan) Execute(lhsOffset, rhsOffset, outOffset int, fn func(l, r, o int)) {
	runLoop3(p.LoopCount, p.LHSStride, p.RHSStride, p.OutputStride, lhsOffset, rhsOffset, outOffset, fn)
}
