// Package sparse enumerates matching subspace pairs of two sparse indexes.
package sparse

import (
	"fmt"
	"hash/maphash"
	"slices"

	"github.com/born-ml/hybrid/internal/tensor"
)

// Overlap classifies how the mapped dimensions of two types relate.
type Overlap int

// Overlap classes.
const (
	NoOverlap      Overlap = iota // no shared mapped dimension: cross product
	FullOverlap                   // identical mapped dimension sets
	PartialOverlap                // some shared, some owned by one side only
)

// String returns a short name for the overlap class.
func (o Overlap) String() string {
	switch o {
	case NoOverlap:
		return "none"
	case FullOverlap:
		return "full"
	case PartialOverlap:
		return "partial"
	default:
		return "unknown"
	}
}

// Callback receives one matching pair. addr holds the output labels and is
// reused between calls; copy it to retain it.
type Callback func(lhsSubspace, rhsSubspace int, addr []tensor.Label)

// labelSource locates one output label in the operand addresses.
// A position is -1 when the operand lacks the dimension.
type labelSource struct {
	lhs int
	rhs int
}

// JoinPlan joins the sparse indexes of two values on their shared mapped
// dimensions. A plan depends only on the operand types and is immutable, so
// it can be built once per type pair and reused for any number of values.
type JoinPlan struct {
	lhsDims    int
	rhsDims    int
	lhsKeys    []int // join key positions in lhs addresses
	rhsKeys    []int // join key positions in rhs addresses, same order as lhsKeys
	keyNames   []string
	outNames   []string
	output     []labelSource
	lhsCovered bool // every lhs mapped dimension is a join key
	rhsCovered bool // every rhs mapped dimension is a join key
}

// NewJoinPlan creates a join plan for values of types lhs and rhs. The
// mapped dimensions named in reduce are joined on but left out of the output
// address.
func NewJoinPlan(lhs, rhs tensor.Type, reduce []string) *JoinPlan {
	lhsMapped := names(lhs.MappedDimensions())
	rhsMapped := names(rhs.MappedDimensions())

	p := &JoinPlan{
		lhsDims: len(lhsMapped),
		rhsDims: len(rhsMapped),
	}

	all := slices.Concat(lhsMapped, rhsMapped)
	slices.Sort(all)
	all = slices.Compact(all)

	for _, name := range all {
		src := labelSource{
			lhs: slices.Index(lhsMapped, name),
			rhs: slices.Index(rhsMapped, name),
		}
		if src.lhs >= 0 && src.rhs >= 0 {
			p.lhsKeys = append(p.lhsKeys, src.lhs)
			p.rhsKeys = append(p.rhsKeys, src.rhs)
			p.keyNames = append(p.keyNames, name)
		}
		if !slices.Contains(reduce, name) {
			p.output = append(p.output, src)
			p.outNames = append(p.outNames, name)
		}
	}
	p.lhsCovered = len(p.lhsKeys) == p.lhsDims
	p.rhsCovered = len(p.rhsKeys) == p.rhsDims
	return p
}

func names(dims []tensor.Dimension) []string {
	out := make([]string, len(dims))
	for i, d := range dims {
		out[i] = d.Name
	}
	return out
}

// JoinKeys returns the shared mapped dimension names in canonical order.
func (p *JoinPlan) JoinKeys() []string { return p.keyNames }

// OutputDims returns the names of the output address labels in canonical order.
func (p *JoinPlan) OutputDims() []string { return p.outNames }

// Overlap returns the overlap class of the operand types.
func (p *JoinPlan) Overlap() Overlap {
	switch {
	case len(p.lhsKeys) == 0:
		return NoOverlap
	case p.lhsCovered && p.rhsCovered:
		return FullOverlap
	default:
		return PartialOverlap
	}
}

// EstimateResultSize returns an upper bound on the number of pairs Execute
// would emit, without performing the join.
func (p *JoinPlan) EstimateResultSize(lhs, rhs tensor.SparseIndex) int {
	l, r := lhs.Size(), rhs.Size()
	switch {
	case len(p.lhsKeys) == 0:
		return l * r
	case p.lhsCovered && p.rhsCovered:
		return min(l, r)
	case p.lhsCovered:
		// Each rhs subspace determines the whole lhs address.
		return r
	case p.rhsCovered:
		return l
	default:
		return l * r
	}
}

// Execute calls fn once for every pair of subspaces whose labels agree on all
// join keys. Pair order is unspecified.
func (p *JoinPlan) Execute(lhs, rhs tensor.SparseIndex, fn Callback) {
	if lhs.NumMappedDims() != p.lhsDims || rhs.NumMappedDims() != p.rhsDims {
		panic(fmt.Sprintf("sparse: plan expects %d/%d mapped dimensions, got %d/%d",
			p.lhsDims, p.rhsDims, lhs.NumMappedDims(), rhs.NumMappedDims()))
	}
	if lhs.Size() == 0 || rhs.Size() == 0 {
		return
	}

	out := make([]tensor.Label, len(p.output))
	switch {
	case len(p.lhsKeys) == 0:
		p.crossProduct(lhs, rhs, out, fn)
	case p.rhsCovered:
		p.probe(lhs, rhs, true, out, fn)
	case p.lhsCovered:
		p.probe(rhs, lhs, false, out, fn)
	default:
		p.hashJoin(lhs, rhs, out, fn)
	}
}

// entry is a copied subspace address retained across enumeration.
type entry struct {
	addr     []tensor.Label
	subspace int
}

func collect(index tensor.SparseIndex) []entry {
	entries := make([]entry, 0, index.Size())
	index.Each(func(addr []tensor.Label, subspace int) {
		entries = append(entries, entry{addr: slices.Clone(addr), subspace: subspace})
	})
	return entries
}

// fill writes the output labels. Either address may be nil when its labels
// are all join keys and therefore available from the other side.
func (p *JoinPlan) fill(out, lhsAddr, rhsAddr []tensor.Label) {
	for i, src := range p.output {
		if src.lhs >= 0 && lhsAddr != nil {
			out[i] = lhsAddr[src.lhs]
		} else {
			out[i] = rhsAddr[src.rhs]
		}
	}
}

func (p *JoinPlan) crossProduct(lhs, rhs tensor.SparseIndex, out []tensor.Label, fn Callback) {
	if lhs.Size() < rhs.Size() {
		inner := collect(lhs)
		rhs.Each(func(ra []tensor.Label, rs int) {
			for _, e := range inner {
				p.fill(out, e.addr, ra)
				fn(e.subspace, rs, out)
			}
		})
		return
	}
	inner := collect(rhs)
	lhs.Each(func(la []tensor.Label, ls int) {
		for _, e := range inner {
			p.fill(out, la, e.addr)
			fn(ls, e.subspace, out)
		}
	})
}

// probe enumerates outer and looks each join key up directly in inner,
// whose addresses consist of join keys only.
func (p *JoinPlan) probe(outer, inner tensor.SparseIndex, outerIsLHS bool, out []tensor.Label, fn Callback) {
	keys := p.lhsKeys
	if !outerIsLHS {
		keys = p.rhsKeys
	}
	key := make([]tensor.Label, len(keys))
	outer.Each(func(oa []tensor.Label, os int) {
		for i, k := range keys {
			key[i] = oa[k]
		}
		is, ok := inner.Lookup(key)
		if !ok {
			return
		}
		if outerIsLHS {
			p.fill(out, oa, nil)
			fn(os, is, out)
		} else {
			p.fill(out, nil, oa)
			fn(is, os, out)
		}
	})
}

// hashJoin buckets the smaller side on its join key and probes with the
// larger one.
func (p *JoinPlan) hashJoin(lhs, rhs tensor.SparseIndex, out []tensor.Label, fn Callback) {
	buildLHS := lhs.Size() <= rhs.Size()
	build, probe := rhs, lhs
	buildKeys, probeKeys := p.rhsKeys, p.lhsKeys
	if buildLHS {
		build, probe = lhs, rhs
		buildKeys, probeKeys = p.lhsKeys, p.rhsKeys
	}

	seed := maphash.MakeSeed()
	key := make([]tensor.Label, len(buildKeys))
	buckets := make(map[uint64][]entry, build.Size())
	build.Each(func(addr []tensor.Label, subspace int) {
		for i, k := range buildKeys {
			key[i] = addr[k]
		}
		h := tensor.HashLabels(seed, key)
		buckets[h] = append(buckets[h], entry{addr: slices.Clone(addr), subspace: subspace})
	})

	probe.Each(func(addr []tensor.Label, subspace int) {
		for i, k := range probeKeys {
			key[i] = addr[k]
		}
		for _, e := range buckets[tensor.HashLabels(seed, key)] {
			if !keysMatch(e.addr, buildKeys, key) {
				continue
			}
			if buildLHS {
				p.fill(out, e.addr, addr)
				fn(e.subspace, subspace, out)
			} else {
				p.fill(out, addr, e.addr)
				fn(subspace, e.subspace, out)
			}
		}
	})
}

func keysMatch(addr []tensor.Label, keys []int, key []tensor.Label) bool {
	for i, k := range keys {
		if addr[k] != key[i] {
			return false
		}
	}
	return true
}
