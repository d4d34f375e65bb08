package dense

import (
	"fmt"
	"slices"
	"sort"
	"testing"

	"github.com/born-ml/hybrid/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// naiveJoin lists every joined cell triple by index arithmetic.
func naiveJoin(lhs, rhs []tensor.Dimension, reduce []string) []string {
	joined := slices.Clone(lhs)
	for _, d := range rhs {
		if !slices.ContainsFunc(lhs, func(l tensor.Dimension) bool { return l.Name == d.Name }) {
			joined = append(joined, d)
		}
	}
	var out []tensor.Dimension
	for _, d := range tensor.MustType(tensor.Float64, joined...).Dimensions() {
		if !slices.Contains(reduce, d.Name) {
			out = append(out, d)
		}
	}
	var triples []string
	forEachIndex(joined, func(idx map[string]int) {
		triples = append(triples, fmt.Sprintf("%d/%d/%d", flatIndex(lhs, idx), flatIndex(rhs, idx), flatIndex(out, idx)))
	})
	sort.Strings(triples)
	return triples
}

func runJoin(p *JoinPlan) []string {
	var triples []string
	p.Execute(0, 0, 0, func(l, r, o int) {
		triples = append(triples, fmt.Sprintf("%d/%d/%d", l, r, o))
	})
	sort.Strings(triples)
	return triples
}

func TestJoinPlan_Cases(t *testing.T) {
	tests := []struct {
		name     string
		lhs, rhs string
		reduce   []string
		loops    int
		outSize  int
	}{
		{"same shape", "tensor(x[3],y[2])", "tensor(x[3],y[2])", nil, 1, 6},
		{"outer product", "tensor(x[3])", "tensor(y[2])", nil, 2, 6},
		{"scalar rhs", "tensor(x[3],y[2])", "double", nil, 1, 6},
		{"both scalar", "double", "double", nil, 0, 1},
		{"reduce all", "tensor(x[3],y[2])", "tensor(y[2])", []string{"x", "y"}, 2, 1},
		{"reduce inner", "tensor(x[3],y[2])", "tensor(x[3],y[2])", []string{"y"}, 2, 3},
		{"reduce outer", "tensor(x[3],y[2])", "tensor(y[2],z[4])", []string{"x"}, 3, 8},
		{"interleaved", "tensor(a[2],c[2])", "tensor(b[3],d[2])", []string{"b"}, 4, 8},
		{"reduce unknown", "tensor(x[2])", "tensor(x[2])", []string{"q"}, 1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lhs, rhs := indexed(tt.lhs), indexed(tt.rhs)
			p := NewJoinPlan(lhs, rhs, tt.reduce)
			assert.Len(t, p.LoopCount, tt.loops)
			assert.Equal(t, tt.outSize, p.OutputSize)
			assert.Equal(t, sizeOf(lhs), p.LHSSize)
			assert.Equal(t, sizeOf(rhs), p.RHSSize)
			assert.Equal(t, naiveJoin(lhs, rhs, tt.reduce), runJoin(p))
		})
	}
}

func TestJoinPlan_SizeMismatchPanics(t *testing.T) {
	assert.Panics(t, func() { NewJoinPlan(indexed("tensor(x[2])"), indexed("tensor(x[3])"), nil) })
}

func TestJoinPlan_Offsets(t *testing.T) {
	p := NewJoinPlan(indexed("tensor(x[2])"), indexed("tensor(x[2])"), nil)
	var got [][3]int
	p.Execute(10, 20, 30, func(l, r, o int) { got = append(got, [3]int{l, r, o}) })
	require.Len(t, got, 2)
	assert.Equal(t, [3]int{10, 20, 30}, got[0])
	assert.Equal(t, [3]int{11, 21, 31}, got[1])
}
