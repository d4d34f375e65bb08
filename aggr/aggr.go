// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package aggr provides the aggregators used to reduce tensor dimensions.
//
// Example:
//
//	a := aggr.New(aggr.Median)
//	a.First(10)
//	a.Next(20)
//	a.Next(7)
//	a.Result() // 10
//
// Aggregators of the same variant merge, so large sample sets can be folded
// in parallel:
//
//	res, err := aggr.Fold(ctx, aggr.Sum, samples, aggr.DefaultFoldConfig())
package aggr

import (
	"context"

	"github.com/born-ml/hybrid/internal/aggr"
	"github.com/born-ml/hybrid/internal/parallel"
)

// Aggr identifies an aggregation variant.
type Aggr = aggr.Aggr

// Aggregation variants.
const (
	Avg    Aggr = aggr.Avg
	Count  Aggr = aggr.Count
	Prod   Aggr = aggr.Prod
	Sum    Aggr = aggr.Sum
	Max    Aggr = aggr.Max
	Median Aggr = aggr.Median
	Min    Aggr = aggr.Min
)

// Aggregator folds samples into a single result.
type Aggregator = aggr.Aggregator

// FoldConfig controls how Fold splits work across goroutines.
type FoldConfig = parallel.Config

// List returns all variants in canonical order.
func List() []Aggr { return aggr.List() }

// Parse returns the variant with the given name (case-insensitive).
func Parse(name string) (Aggr, error) { return aggr.Parse(name) }

// New creates an empty aggregator.
func New(kind Aggr) *Aggregator { return aggr.New(kind) }

// DefaultFoldConfig returns a FoldConfig sized to the number of CPUs.
func DefaultFoldConfig() FoldConfig { return parallel.DefaultConfig() }

// Fold aggregates samples with kind, splitting the work according to cfg.
func Fold(ctx context.Context, kind Aggr, samples []float64, cfg FoldConfig) (*Aggregator, error) {
	return parallel.Fold(ctx, kind, samples, cfg)
}
