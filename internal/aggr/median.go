package aggr

import (
	"container/heap"
	"math"
	"slices"
)

// median tracks the exact median with a max-heap holding the lower half of
// the samples and a min-heap holding the upper half. lo has either the same
// number of samples as hi or one more.
type median struct {
	lo  maxHeap
	hi  minHeap
	nan bool // sticky once a NaN sample was seen
}

func (m *median) reset() {
	m.lo = m.lo[:0]
	m.hi = m.hi[:0]
	m.nan = false
}

func (m *median) add(v float64) {
	if math.IsNaN(v) {
		m.nan = true
		return
	}
	if len(m.lo) == 0 || v <= m.lo[0] {
		heap.Push(&m.lo, v)
	} else {
		heap.Push(&m.hi, v)
	}
	switch {
	case len(m.lo) > len(m.hi)+1:
		heap.Push(&m.hi, heap.Pop(&m.lo))
	case len(m.hi) > len(m.lo):
		heap.Push(&m.lo, heap.Pop(&m.hi))
	}
}

func (m *median) result() float64 {
	if m.nan || len(m.lo) == 0 {
		return math.NaN()
	}
	if len(m.lo) > len(m.hi) {
		return m.lo[0]
	}
	return (m.lo[0] + m.hi[0]) / 2
}

func (m *median) merge(other *median) {
	if other.nan {
		m.nan = true
	}
	// Copy first so that merging with itself is well defined.
	samples := slices.Concat([]float64(other.lo), []float64(other.hi))
	for _, v := range samples {
		m.add(v)
	}
}

type maxHeap []float64

func (h maxHeap) Len() int           { return len(h) }
func (h maxHeap) Less(i, j int) bool { return h[i] > h[j] }
func (h maxHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *maxHeap) Push(x any)        { *h = append(*h, x.(float64)) }
func (h *maxHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

type minHeap []float64

func (h minHeap) Len() int           { return len(h) }
func (h minHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h minHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x any)        { *h = append(*h, x.(float64)) }
func (h *minHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
