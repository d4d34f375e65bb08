package generic

import (
	"fmt"
	"slices"

	"github.com/born-ml/hybrid/internal/aggr"
	"github.com/born-ml/hybrid/internal/dense"
	"github.com/born-ml/hybrid/internal/operation"
	"github.com/born-ml/hybrid/internal/sparse"
	"github.com/born-ml/hybrid/internal/tensor"
)

// JoinReduceParam holds everything needed to join values of two fixed types
// and reduce the result. It is immutable and may be shared between
// goroutines.
type JoinReduceParam struct {
	LHSType    tensor.Type
	RHSType    tensor.Type
	JoinedType tensor.Type
	ResultType tensor.Type
	Op         operation.Op
	Aggr       aggr.Aggr
	Reduce     []string

	sparse *sparse.JoinPlan
	dense  *dense.JoinPlan
}

// NewJoinReduceParam resolves the joined and reduced types and builds the
// plans. An empty reduce list reduces every dimension.
func NewJoinReduceParam(lhs, rhs tensor.Type, op operation.Op, kind aggr.Aggr, reduce []string) (*JoinReduceParam, error) {
	joined, err := tensor.JoinType(lhs, rhs)
	if err != nil {
		return nil, fmt.Errorf("join: %w", err)
	}
	res, err := tensor.ReduceType(joined, reduce)
	if err != nil {
		return nil, fmt.Errorf("reduce: %w", err)
	}
	reduce = slices.Clone(reduce)
	if len(reduce) == 0 {
		for _, d := range joined.Dimensions() {
			reduce = append(reduce, d.Name)
		}
	}
	return &JoinReduceParam{
		LHSType:    lhs,
		RHSType:    rhs,
		JoinedType: joined,
		ResultType: res,
		Op:         op,
		Aggr:       kind,
		Reduce:     reduce,
		sparse:     sparse.NewJoinPlan(lhs, rhs, reduce),
		dense:      dense.NewJoinPlan(lhs.IndexedDimensions(), rhs.IndexedDimensions(), reduce),
	}, nil
}

// SparsePlan returns the plan enumerating subspace pairs.
func (p *JoinReduceParam) SparsePlan() *sparse.JoinPlan { return p.sparse }

// DensePlan returns the plan pairing up dense cells.
func (p *JoinReduceParam) DensePlan() *dense.JoinPlan { return p.dense }

// EstimateResultSize returns an upper bound on the number of subspace pairs
// that will be folded.
func (p *JoinReduceParam) EstimateResultSize(lhs, rhs *tensor.Value) int {
	return p.sparse.EstimateResultSize(lhs.Index(), rhs.Index())
}

// Apply joins lhs and rhs with the param's operation and folds every joined
// cell into the aggregator of its output cell.
func (p *JoinReduceParam) Apply(lhs, rhs *tensor.Value) *tensor.Value {
	checkTypes("join-reduce", p.LHSType, p.RHSType, lhs, rhs)

	switch l, r, o := lhs.CellType(), rhs.CellType(), p.ResultType.CellType(); {
	case l == tensor.Float32 && r == tensor.Float32 && o == tensor.Float32:
		return joinReduceCells[float32, float32, float32, float32](p, lhs, rhs, p.Op.Float32())
	case l == tensor.Float32 && r == tensor.Float32:
		return joinReduceCells[float32, float32, float32, float64](p, lhs, rhs, p.Op.Float32())
	case l == tensor.Float32:
		return joinReduceCells[float32, float64, float64, float64](p, lhs, rhs, p.Op.Float64())
	case r == tensor.Float32:
		return joinReduceCells[float64, float32, float64, float64](p, lhs, rhs, p.Op.Float64())
	default:
		return joinReduceCells[float64, float64, float64, float64](p, lhs, rhs, p.Op.Float64())
	}
}

// joinReduceCells combines cells in the joined cell type J and writes
// results in the output cell type O.
func joinReduceCells[L, R, J, O tensor.Float](p *JoinReduceParam, lhs, rhs *tensor.Value, fn func(a, b J) J) *tensor.Value {
	lhsCells := tensor.Cells[L](lhs)
	rhsCells := tensor.Cells[R](rhs)
	outSize := p.dense.OutputSize
	lhsSize, rhsSize := p.dense.LHSSize, p.dense.RHSSize

	index := tensor.NewMapIndex(len(p.sparse.OutputDims()), capacityHint(p.EstimateResultSize(lhs, rhs), lhs, rhs))
	var aggrs []*aggr.Aggregator // outSize aggregators per output subspace
	p.sparse.Execute(lhs.Index(), rhs.Index(), func(ls, rs int, addr []tensor.Label) {
		subspace, added := index.Insert(addr)
		if added {
			for i := 0; i < outSize; i++ {
				aggrs = append(aggrs, aggr.New(p.Aggr))
			}
		}
		p.dense.Execute(ls*lhsSize, rs*rhsSize, subspace*outSize, func(l, r, o int) {
			v := float64(fn(J(lhsCells[l]), J(rhsCells[r])))
			if a := aggrs[o]; a.Samples() == 0 {
				a.First(v)
			} else {
				a.Next(v)
			}
		})
	})

	b := tensor.NewBuilder[O](p.ResultType, index.Size())
	index.Each(func(addr []tensor.Label, subspace int) {
		block := b.AddSubspace(addr)
		for i := range block {
			block[i] = O(aggrs[subspace*outSize+i].Result())
		}
	})
	if index.Size() == 0 && p.ResultType.NumMappedDimensions() == 0 {
		// Nothing was joined: the dense result holds empty aggregates.
		empty := O(aggr.New(p.Aggr).Result())
		block := b.AddSubspace(nil)
		for i := range block {
			block[i] = empty
		}
	}
	return b.Build()
}

// JoinReduce joins lhs and rhs with op and reduces the named dimensions
// with kind, building a fresh param. An empty reduce list reduces every
// dimension.
func JoinReduce(lhs, rhs *tensor.Value, op operation.Op, kind aggr.Aggr, reduce ...string) (*tensor.Value, error) {
	p, err := NewJoinReduceParam(lhs.Type(), rhs.Type(), op, kind, reduce)
	if err != nil {
		return nil, err
	}
	return p.Apply(lhs, rhs), nil
}
