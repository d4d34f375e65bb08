package generic

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"testing"

	"github.com/born-ml/hybrid/internal/aggr"
	"github.com/born-ml/hybrid/internal/operation"
	"github.com/born-ml/hybrid/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinReduce_DotProduct(t *testing.T) {
	a := mustValue(t, "tensor(x[3])", sub([]float64{1, 2, 3}))
	b := mustValue(t, "tensor(x[3])", sub([]float64{4, 5, 6}))

	res, err := JoinReduce(a, b, operation.Mul, aggr.Sum)
	require.NoError(t, err)
	assert.True(t, res.Type().IsScalar())
	assert.Equal(t, []float64{32}, res.Float64s())
}

func TestJoinReduce_MatrixVector(t *testing.T) {
	m := mustValue(t, "tensor(x[2],y[3])", sub([]float64{1, 2, 3, 4, 5, 6}))
	v := mustValue(t, "tensor(y[3])", sub([]float64{1, 0, -1}))

	res, err := JoinReduce(m, v, operation.Mul, aggr.Sum, "y")
	require.NoError(t, err)
	assert.Equal(t, "tensor(x[2])", res.Type().String())
	assert.Equal(t, []float64{-2, -2}, res.Float64s())
}

func TestJoinReduce_OuterProduct(t *testing.T) {
	a := mustValue(t, "tensor(x[2])", sub([]float64{1, 2}))
	b := mustValue(t, "tensor(y[2])", sub([]float64{10, 20}))

	res, err := JoinReduce(a, b, operation.Add, aggr.Sum, "z")
	require.ErrorIs(t, err, tensor.ErrUnknownDimension)
	assert.Nil(t, res)

	p, err := NewJoinReduceParam(a.Type(), b.Type(), operation.Add, aggr.Max, []string{"y"})
	require.NoError(t, err)
	assert.Equal(t, []float64{21, 22}, p.Apply(a, b).Float64s())
}

func TestJoinReduce_SparseDotProduct(t *testing.T) {
	a := mustValue(t, "tensor(k{})",
		sub([]float64{1}, "a"), sub([]float64{2}, "b"), sub([]float64{3}, "c"))
	b := mustValue(t, "tensor(k{})",
		sub([]float64{10}, "a"), sub([]float64{100}, "c"), sub([]float64{1000}, "d"))

	res, err := JoinReduce(a, b, operation.Mul, aggr.Sum)
	require.NoError(t, err)
	assert.Equal(t, []float64{310}, res.Float64s())

	res, err = JoinReduce(a, b, operation.Mul, aggr.Count)
	require.NoError(t, err)
	assert.Equal(t, []float64{2}, res.Float64s())
}

func TestJoinReduce_PartialOverlap(t *testing.T) {
	a := mustValue(t, "tensor(k{},x[2])",
		sub([]float64{1, 2}, "a"),
		sub([]float64{3, 4}, "b"))
	b := mustValue(t, "tensor(k{},q{})",
		sub([]float64{2}, "a", "p"),
		sub([]float64{3}, "a", "r"),
		sub([]float64{10}, "b", "p"))

	res, err := JoinReduce(a, b, operation.Mul, aggr.Sum, "k")
	require.NoError(t, err)
	assert.Equal(t, "tensor(q{},x[2])", res.Type().String())
	assert.Equal(t, map[string][]float64{
		"{p}": {32, 44},
		"{r}": {3, 6},
	}, res.Blocks())
}

func TestJoinReduce_Median(t *testing.T) {
	a := mustValue(t, "tensor(x[4])", sub([]float64{1, 9, 3, 7}))
	res, err := JoinReduce(a, tensor.ScalarValue(1), operation.Mul, aggr.Median)
	require.NoError(t, err)
	assert.Equal(t, []float64{5}, res.Float64s())
}

func TestJoinReduce_NoMatchingSubspaces(t *testing.T) {
	a := mustValue(t, "tensor(k{},x[2])", sub([]float64{1, 2}, "a"))
	b := mustValue(t, "tensor(k{})", sub([]float64{1}, "b"))

	tests := []struct {
		kind  aggr.Aggr
		check func(t *testing.T, got float64)
	}{
		{aggr.Sum, func(t *testing.T, got float64) { assert.Equal(t, 0.0, got) }},
		{aggr.Count, func(t *testing.T, got float64) { assert.Equal(t, 0.0, got) }},
		{aggr.Prod, func(t *testing.T, got float64) { assert.Equal(t, 1.0, got) }},
		{aggr.Avg, func(t *testing.T, got float64) { assert.True(t, math.IsNaN(got)) }},
		{aggr.Max, func(t *testing.T, got float64) { assert.Equal(t, math.Inf(-1), got) }},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			res, err := JoinReduce(a, b, operation.Mul, tt.kind, "k")
			require.NoError(t, err)
			assert.Equal(t, "tensor(x[2])", res.Type().String())
			cells := res.Float64s()
			require.Len(t, cells, 2)
			for _, c := range cells {
				tt.check(t, c)
			}
		})
	}

	res, err := JoinReduce(a, b, operation.Mul, aggr.Sum, "x")
	require.NoError(t, err)
	assert.Equal(t, "tensor(k{})", res.Type().String())
	assert.Equal(t, 0, res.NumSubspaces())
}

func TestJoinReduce_CellTypes(t *testing.T) {
	f := mustValue(t, "tensor<float>(x[2])", sub([]float64{1.5, 2}))
	d := mustValue(t, "tensor(x[2])", sub([]float64{2, 4}))

	res, err := JoinReduce(f, f, operation.Mul, aggr.Sum, "x")
	require.NoError(t, err)
	assert.Equal(t, tensor.Float64, res.CellType(), "reducing every dimension yields a double scalar")
	assert.Equal(t, []float64{6.25}, res.Float64s())

	res, err = JoinReduce(f, f, operation.Add, aggr.Sum, "q")
	assert.Error(t, err)
	assert.Nil(t, res)

	g := mustValue(t, "tensor<float>(y[1])", sub([]float64{2}))
	res, err = JoinReduce(f, g, operation.Mul, aggr.Sum, "y")
	require.NoError(t, err)
	assert.Equal(t, tensor.Float32, res.CellType())
	assert.Equal(t, []float32{3, 4}, tensor.Cells[float32](res))

	res, err = JoinReduce(f, d, operation.Mul, aggr.Max, "x")
	require.NoError(t, err)
	assert.Equal(t, tensor.Float64, res.CellType())
	assert.Equal(t, []float64{8}, res.Float64s())

	res, err = JoinReduce(d, f, operation.Sub, aggr.Min, "x")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5}, res.Float64s())
}

func TestJoinReduce_IncompatibleTypes(t *testing.T) {
	a := mustValue(t, "tensor(x{})", sub([]float64{1}, "a"))
	b := mustValue(t, "tensor(x[2])", sub([]float64{1, 2}))
	_, err := JoinReduce(a, b, operation.Mul, aggr.Sum)
	assert.ErrorIs(t, err, tensor.ErrIncompatibleTypes)
}

// cell is one dense cell of a value addressed by dimension name.
type cell struct {
	coords map[string]string
	value  float64
}

func cellsOf(v *tensor.Value) []cell {
	mapped := v.Type().MappedDimensions()
	indexed := v.Type().IndexedDimensions()
	var out []cell
	v.Index().Each(func(addr []tensor.Label, subspace int) {
		for i, x := range v.Block(subspace) {
			coords := make(map[string]string, len(mapped)+len(indexed))
			for k, d := range mapped {
				coords[d.Name] = addr[k].String()
			}
			rem := i
			for k := len(indexed) - 1; k >= 0; k-- {
				coords[indexed[k].Name] = strconv.Itoa(rem % indexed[k].Size)
				rem /= indexed[k].Size
			}
			out = append(out, cell{coords: coords, value: x})
		}
	})
	return out
}

func keyOf(coords map[string]string, t tensor.Type) string {
	parts := make([]string, 0, len(t.Dimensions()))
	for _, d := range t.Dimensions() {
		parts = append(parts, d.Name+"="+coords[d.Name])
	}
	return strings.Join(parts, ";")
}

// naiveJoinReduce joins every pair of cells that agree on their common
// dimensions and folds them per output cell.
func naiveJoinReduce(p *JoinReduceParam, lhs, rhs *tensor.Value) map[string]float64 {
	fn := p.Op.Float64()
	groups := make(map[string]*aggr.Aggregator)
	rcells := cellsOf(rhs)
	for _, l := range cellsOf(lhs) {
	pairs:
		for _, r := range rcells {
			joined := make(map[string]string, len(l.coords)+len(r.coords))
			for k, v := range l.coords {
				joined[k] = v
			}
			for k, v := range r.coords {
				if lv, ok := joined[k]; ok && lv != v {
					continue pairs
				}
				joined[k] = v
			}
			key := keyOf(joined, p.ResultType)
			a, ok := groups[key]
			if !ok {
				a = aggr.New(p.Aggr)
				groups[key] = a
				a.First(fn(l.value, r.value))
			} else {
				a.Next(fn(l.value, r.value))
			}
		}
	}
	want := make(map[string]float64, len(groups))
	for k, a := range groups {
		want[k] = a.Result()
	}
	if len(want) == 0 && p.ResultType.NumMappedDimensions() == 0 {
		empty := aggr.New(p.Aggr).Result()
		for _, c := range cellsOf(mustBuild(p.ResultType)) {
			want[keyOf(c.coords, p.ResultType)] = empty
		}
	}
	return want
}

func mustBuild(t tensor.Type) *tensor.Value {
	v, err := tensor.FromSubspaces(t)
	if err != nil {
		panic(err)
	}
	return v
}

func randomValue(t *testing.T, rng *rand.Rand, spec string) *tensor.Value {
	t.Helper()
	typ := tensor.MustParseType(spec)
	size := typ.DenseSubspaceSize()
	labels := []string{"a", "b", "c"}

	n := 1
	if typ.NumMappedDimensions() > 0 {
		n = rng.IntN(6)
	}
	subs := make([]tensor.Subspace, 0, n)
	for i := 0; i < n; i++ {
		s := tensor.Subspace{Cells: make([]float64, size)}
		for range typ.NumMappedDimensions() {
			s.Labels = append(s.Labels, labels[rng.IntN(len(labels))])
		}
		for k := range s.Cells {
			s.Cells[k] = float64(1 + rng.IntN(3))
		}
		subs = append(subs, s)
	}
	return mustValue(t, spec, subs...)
}

func TestJoinReduce_MatchesCellLevelOracle(t *testing.T) {
	cases := []struct {
		lhs, rhs string
		reduce   [][]string
	}{
		{"tensor(k{},x[2])", "tensor(k{},q{},y[2])", [][]string{{"k"}, {"x"}, {"k", "y"}, nil}},
		{"tensor(a{},x[3])", "tensor(b{},x[3])", [][]string{{"x"}, {"a"}, {"a", "b"}}},
		{"tensor(x[2],y[3])", "tensor(y[3])", [][]string{{"y"}, {"x"}}},
		{"tensor<float>(k{},x[2])", "tensor<float>(k{})", [][]string{{"k"}, {"x"}}},
		{"tensor(k{})", "tensor<float>(k{},x[2])", [][]string{{"x"}, {"k"}}},
		{"double", "tensor(k{})", [][]string{nil, {"k"}}},
	}
	ops := []operation.Op{operation.Add, operation.Mul}

	rng := rand.New(rand.NewPCG(3, 5))
	for _, tc := range cases {
		for _, reduce := range tc.reduce {
			for _, op := range ops {
				for _, kind := range aggr.List() {
					name := fmt.Sprintf("%s*%s/%v/%s/%s", tc.lhs, tc.rhs, reduce, op, kind)
					p, err := NewJoinReduceParam(tensor.MustParseType(tc.lhs), tensor.MustParseType(tc.rhs), op, kind, reduce)
					require.NoError(t, err, name)

					for trial := 0; trial < 4; trial++ {
						lhs := randomValue(t, rng, tc.lhs)
						rhs := randomValue(t, rng, tc.rhs)
						want := naiveJoinReduce(p, lhs, rhs)

						got := make(map[string]float64)
						for _, c := range cellsOf(p.Apply(lhs, rhs)) {
							got[keyOf(c.coords, p.ResultType)] = c.value
						}
						require.Len(t, got, len(want), name)
						for k, w := range want {
							g, ok := got[k]
							require.True(t, ok, "%s: missing cell %s", name, k)
							if math.IsNaN(w) {
								assert.True(t, math.IsNaN(g), "%s: cell %s", name, k)
								continue
							}
							assert.InDelta(t, w, g, 1e-6*math.Max(1, math.Abs(w)), "%s: cell %s", name, k)
						}
					}
				}
			}
		}
	}
}
