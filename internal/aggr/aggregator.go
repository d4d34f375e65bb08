package aggr

import (
	"fmt"
	"math"
)

// Aggregator folds samples into a single result.
//
// The variant is fixed at construction and all operations dispatch on it
// with a switch. An Aggregator is not safe for concurrent use; fold disjoint
// sample sets into separate aggregators and Merge them instead.
type Aggregator struct {
	kind Aggr
	n    int64
	acc  float64
	med  *median
}

// New creates an empty aggregator of the given variant.
func New(kind Aggr) *Aggregator {
	a := &Aggregator{kind: kind}
	if kind == Median {
		a.med = &median{}
	}
	a.Reset()
	return a
}

// Enum returns the aggregator's variant.
func (a *Aggregator) Enum() Aggr { return a.kind }

// Samples returns the number of samples folded so far.
func (a *Aggregator) Samples() int64 { return a.n }

// Reset returns the aggregator to its empty state.
func (a *Aggregator) Reset() {
	a.n = 0
	switch a.kind {
	case Avg, Count, Sum:
		a.acc = 0
	case Prod:
		a.acc = 1
	case Max:
		a.acc = math.Inf(-1)
	case Min:
		a.acc = math.Inf(1)
	case Median:
		a.med.reset()
	default:
		panic(fmt.Sprintf("aggr: unknown variant %d", int(a.kind)))
	}
}

// First resets the aggregator and folds v.
func (a *Aggregator) First(v float64) {
	a.Reset()
	a.Next(v)
}

// Next folds v. A NaN sample makes the result NaN for every variant except
// Count, until the next First or Reset.
func (a *Aggregator) Next(v float64) {
	a.n++
	switch a.kind {
	case Avg, Sum:
		a.acc += v
	case Count:
	case Prod:
		a.acc *= v
	case Max:
		a.acc = max(a.acc, v)
	case Min:
		a.acc = min(a.acc, v)
	case Median:
		a.med.add(v)
	}
}

// Result returns the aggregate over all samples folded so far, or the
// variant's empty result if there are none.
func (a *Aggregator) Result() float64 {
	switch a.kind {
	case Avg:
		if a.n == 0 {
			return math.NaN()
		}
		return a.acc / float64(a.n)
	case Count:
		return float64(a.n)
	case Median:
		return a.med.result()
	default:
		return a.acc
	}
}

// Merge folds the samples of other into a, as if every sample of other had
// been passed to Next. Both aggregators must be of the same variant.
func (a *Aggregator) Merge(other *Aggregator) {
	if a.kind != other.kind {
		panic(fmt.Sprintf("aggr: cannot merge %s into %s", other.kind, a.kind))
	}
	a.n += other.n
	switch a.kind {
	case Avg, Sum:
		a.acc += other.acc
	case Count:
	case Prod:
		a.acc *= other.acc
	case Max:
		a.acc = max(a.acc, other.acc)
	case Min:
		a.acc = min(a.acc, other.acc)
	case Median:
		a.med.merge(other.med)
	}
}
