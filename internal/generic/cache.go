package generic

import (
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/born-ml/hybrid/internal/aggr"
	"github.com/born-ml/hybrid/internal/operation"
	"github.com/born-ml/hybrid/internal/tensor"
)

const (
	opConcat     = "concat"
	opJoinReduce = "join_reduce"
)

type concatKey struct {
	lhs, rhs, dim string
}

type joinReduceKey struct {
	lhs, rhs string
	op       operation.Op
	aggr     aggr.Aggr
	reduce   string
}

// PlanCache memoises params per distinct combination of operand types and
// operation parameters. Types change far less often than values, so a
// cached param is typically applied to many values.
//
// A PlanCache is safe for concurrent use.
type PlanCache struct {
	mu         sync.Mutex
	concat     map[concatKey]*ConcatParam
	joinReduce map[joinReduceKey]*JoinReduceParam
	logger     *slog.Logger
}

// NewPlanCache creates an empty cache. A nil logger uses slog.Default().
func NewPlanCache(logger *slog.Logger) *PlanCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlanCache{
		concat:     make(map[concatKey]*ConcatParam),
		joinReduce: make(map[joinReduceKey]*JoinReduceParam),
		logger:     logger,
	}
}

// Len returns the number of cached params.
func (c *PlanCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.concat) + len(c.joinReduce)
}

// Concat returns the param for concatenating lhs and rhs along dim.
func (c *PlanCache) Concat(lhs, rhs tensor.Type, dim string) (*ConcatParam, error) {
	key := concatKey{lhs: lhs.String(), rhs: rhs.String(), dim: dim}

	c.mu.Lock()
	p, ok := c.concat[key]
	c.mu.Unlock()
	if ok {
		planCacheLookups.WithLabelValues(opConcat, "hit").Inc()
		return p, nil
	}

	start := time.Now()
	p, err := NewConcatParam(lhs, rhs, dim)
	if err != nil {
		planCacheLookups.WithLabelValues(opConcat, "error").Inc()
		return nil, err
	}
	elapsed := time.Since(start)
	planBuildDuration.WithLabelValues(opConcat).Observe(elapsed.Seconds())
	planCacheLookups.WithLabelValues(opConcat, "miss").Inc()

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.concat[key]; ok {
		return existing, nil
	}
	c.concat[key] = p
	planCacheEntries.Inc()
	c.logger.Debug("built concat plan",
		slog.String("lhs", key.lhs),
		slog.String("rhs", key.rhs),
		slog.String("dim", dim),
		slog.String("result", p.ResultType.String()),
		slog.Duration("elapsed", elapsed))
	return p, nil
}

// JoinReduce returns the param for joining lhs and rhs with op and reducing
// the named dimensions with kind.
func (c *PlanCache) JoinReduce(lhs, rhs tensor.Type, op operation.Op, kind aggr.Aggr, reduce []string) (*JoinReduceParam, error) {
	// Reduction is over a set of dimensions; the key ignores list order.
	reduce = slices.Sorted(slices.Values(reduce))
	key := joinReduceKey{
		lhs:    lhs.String(),
		rhs:    rhs.String(),
		op:     op,
		aggr:   kind,
		reduce: strings.Join(reduce, ","),
	}

	c.mu.Lock()
	p, ok := c.joinReduce[key]
	c.mu.Unlock()
	if ok {
		planCacheLookups.WithLabelValues(opJoinReduce, "hit").Inc()
		return p, nil
	}

	start := time.Now()
	p, err := NewJoinReduceParam(lhs, rhs, op, kind, reduce)
	if err != nil {
		planCacheLookups.WithLabelValues(opJoinReduce, "error").Inc()
		return nil, err
	}
	elapsed := time.Since(start)
	planBuildDuration.WithLabelValues(opJoinReduce).Observe(elapsed.Seconds())
	planCacheLookups.WithLabelValues(opJoinReduce, "miss").Inc()

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.joinReduce[key]; ok {
		return existing, nil
	}
	c.joinReduce[key] = p
	planCacheEntries.Inc()
	c.logger.Debug("built join-reduce plan",
		slog.String("lhs", key.lhs),
		slog.String("rhs", key.rhs),
		slog.String("op", op.String()),
		slog.String("aggr", kind.String()),
		slog.String("reduce", key.reduce),
		slog.String("result", p.ResultType.String()),
		slog.Duration("elapsed", elapsed))
	return p, nil
}
