// Package aggr implements the reduction primitives of the tensor engine.
//
// An Aggregator folds a stream of samples into one number. Two aggregators
// of the same variant built over disjoint sample sets can be merged into the
// aggregate over their union, which is how folding is parallelised.
package aggr

import (
	"fmt"
	"strings"
)

// Aggr identifies an aggregation variant.
type Aggr int

// Supported aggregation variants.
const (
	Avg Aggr = iota
	Count
	Prod
	Sum
	Max
	Median
	Min
)

// list is the canonical listing order.
var list = [...]Aggr{Avg, Count, Prod, Sum, Max, Median, Min}

// List returns all variants in canonical order.
func List() []Aggr {
	return list[:]
}

// String returns the variant name.
func (a Aggr) String() string {
	switch a {
	case Avg:
		return "avg"
	case Count:
		return "count"
	case Prod:
		return "prod"
	case Sum:
		return "sum"
	case Max:
		return "max"
	case Median:
		return "median"
	case Min:
		return "min"
	default:
		return fmt.Sprintf("aggr(%d)", int(a))
	}
}

// Parse returns the variant with the given name.
func Parse(name string) (Aggr, error) {
	for _, a := range list {
		if strings.EqualFold(a.String(), name) {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown aggregator %q", name)
}

// IsSimple reports whether the variant folds into a single scalar with an
// associative, commutative operator.
func (a Aggr) IsSimple() bool {
	switch a {
	case Prod, Sum, Max, Min:
		return true
	default:
		return false
	}
}

// IsIdent reports whether aggregating a single sample yields that sample.
func (a Aggr) IsIdent() bool {
	return a != Count
}

// IsComplex reports whether the variant needs more than scalar state.
func (a Aggr) IsComplex() bool {
	return a == Median
}
