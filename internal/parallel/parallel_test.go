package parallel

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/born-ml/hybrid/internal/aggr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequential(kind aggr.Aggr, samples []float64) *aggr.Aggregator {
	a := aggr.New(kind)
	for _, v := range samples {
		a.Next(v)
	}
	return a
}

func TestChunks(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 10}

	assert.Nil(t, chunks(0, cfg))
	assert.Equal(t, []span{{0, 5}}, chunks(5, cfg), "below the minimum chunk size")
	assert.Equal(t, []span{{0, 10}, {10, 20}, {20, 25}}, chunks(25, cfg))
	assert.Equal(t, []span{{0, 25}, {25, 50}, {50, 75}, {75, 100}}, chunks(100, cfg))
	assert.Equal(t, []span{{0, 100}}, chunks(100, Config{Enabled: false, NumWorkers: 4}))

	covered := 0
	for _, s := range chunks(1001, Config{Enabled: true, NumWorkers: 7, MinChunkSize: 1}) {
		assert.Equal(t, covered, s.start)
		covered = s.end
	}
	assert.Equal(t, 1001, covered)
}

func TestFold_MatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	samples := make([]float64, 10_000)
	for i := range samples {
		samples[i] = 0.9 + 0.2*rng.Float64()
	}
	cfg := Config{Enabled: true, NumWorkers: 8, MinChunkSize: 100}

	for _, kind := range aggr.List() {
		t.Run(kind.String(), func(t *testing.T) {
			got, err := Fold(context.Background(), kind, samples, cfg)
			require.NoError(t, err)
			want := sequential(kind, samples)

			assert.Equal(t, want.Samples(), got.Samples())
			assert.InDelta(t, want.Result(), got.Result(), 1e-9*math.Max(1, math.Abs(want.Result())))
		})
	}
}

func TestFold_Disabled(t *testing.T) {
	samples := []float64{3, 1, 2}
	got, err := Fold(context.Background(), aggr.Median, samples, Config{Enabled: false})
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.Result())
	assert.Equal(t, int64(3), got.Samples())
}

func TestFold_Empty(t *testing.T) {
	got, err := Fold(context.Background(), aggr.Sum, nil, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.Result())
	assert.Equal(t, int64(0), got.Samples())
}

func TestFold_NaNPropagates(t *testing.T) {
	samples := make([]float64, 1000)
	samples[700] = math.NaN()
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 10}
	for _, kind := range []aggr.Aggr{aggr.Sum, aggr.Max, aggr.Median} {
		got, err := Fold(context.Background(), kind, samples, cfg)
		require.NoError(t, err)
		assert.True(t, math.IsNaN(got.Result()), kind.String())
	}
}

func TestFold_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Fold(ctx, aggr.Sum, make([]float64, 100), Config{Enabled: true, NumWorkers: 2, MinChunkSize: 10})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = Fold(ctx, aggr.Sum, []float64{1}, Config{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Positive(t, cfg.NumWorkers)
	assert.Positive(t, cfg.MinChunkSize)
	assert.Equal(t, cfg.NumWorkers > 1, cfg.Enabled)
}
