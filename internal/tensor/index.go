package tensor

import (
	"fmt"
	"hash/maphash"
	"slices"
)

// SparseIndex maps subspace addresses to dense block positions.
//
// Addresses hold one label per mapped dimension, in the canonical order of
// the owning type. Enumeration order is stable for the lifetime of the index.
type SparseIndex interface {
	// Size returns the number of subspaces.
	Size() int
	// NumMappedDims returns the number of labels in each address.
	NumMappedDims() int
	// Each calls fn for every subspace in stable order. The address slice is
	// only valid during the call.
	Each(fn func(addr []Label, subspace int))
	// Lookup returns the subspace stored for addr.
	Lookup(addr []Label) (int, bool)
}

// MapIndex is a hash-bucketed SparseIndex. Subspaces are numbered in
// insertion order.
type MapIndex struct {
	numDims int
	labels  []Label // numDims labels per subspace
	size    int
	buckets map[uint64][]int32
	seed    maphash.Seed
}

// Verify that MapIndex implements SparseIndex.
var _ SparseIndex = (*MapIndex)(nil)

// NewMapIndex creates an empty index for addresses of numDims labels.
func NewMapIndex(numDims, expected int) *MapIndex {
	return &MapIndex{
		numDims: numDims,
		labels:  make([]Label, 0, numDims*expected),
		buckets: make(map[uint64][]int32, expected),
		seed:    maphash.MakeSeed(),
	}
}

// Size returns the number of subspaces.
func (m *MapIndex) Size() int { return m.size }

// NumMappedDims returns the number of labels in each address.
func (m *MapIndex) NumMappedDims() int { return m.numDims }

// Address returns the address of a subspace. The slice must not be modified.
func (m *MapIndex) Address(subspace int) []Label {
	start := subspace * m.numDims
	return m.labels[start : start+m.numDims : start+m.numDims]
}

// Each calls fn for every subspace in insertion order.
func (m *MapIndex) Each(fn func(addr []Label, subspace int)) {
	for i := 0; i < m.size; i++ {
		fn(m.Address(i), i)
	}
}

// Lookup returns the subspace stored for addr.
func (m *MapIndex) Lookup(addr []Label) (int, bool) {
	m.checkArity(addr)
	for _, idx := range m.buckets[HashLabels(m.seed, addr)] {
		if slices.Equal(m.Address(int(idx)), addr) {
			return int(idx), true
		}
	}
	return 0, false
}

// Insert adds addr if missing and returns its subspace. added reports
// whether a new subspace was created.
func (m *MapIndex) Insert(addr []Label) (subspace int, added bool) {
	m.checkArity(addr)
	h := HashLabels(m.seed, addr)
	for _, idx := range m.buckets[h] {
		if slices.Equal(m.Address(int(idx)), addr) {
			return int(idx), false
		}
	}
	subspace = m.size
	m.labels = append(m.labels, addr...)
	m.buckets[h] = append(m.buckets[h], int32(subspace))
	m.size++
	return subspace, true
}

func (m *MapIndex) checkArity(addr []Label) {
	if len(addr) != m.numDims {
		panic(fmt.Sprintf("index: address has %d labels, expected %d", len(addr), m.numDims))
	}
}
