package market

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"guild-economy-bot/internal/model"
)

// TestStepWithinBandProperty checks that for any seed and price, one
// walk step lands in [p-maxStep, p+maxStep] clipped at 1.
func TestStepWithinBandProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Int64().Draw(rt, "seed")
		price := rapid.Int64Range(1, 1_000_000).Draw(rt, "price")
		maxStep := rapid.Int64Range(1, 100).Draw(rt, "maxStep")

		rng := rand.New(rand.NewSource(seed))
		next := Step(price, maxStep, rng)

		if next < 1 {
			rt.Fatalf("price %d dropped below floor", next)
		}
		lo := price - maxStep
		if lo < 1 {
			lo = 1
		}
		if next < lo || next > price+maxStep {
			rt.Fatalf("step from %d landed at %d, outside [%d, %d]", price, next, lo, price+maxStep)
		}
	})
}

func TestStepFloorClamp(t *testing.T) {
	// With price 1 and enough seeds, downward steps must clamp to 1.
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		assert.GreaterOrEqual(t, Step(1, 20, rng), int64(1))
	}
}

func TestStepCoversFullRange(t *testing.T) {
	// Over many draws from a fixed seed the step should reach both
	// extremes of the [-20, +20] band.
	rng := rand.New(rand.NewSource(42))
	seen := make(map[int64]bool)
	for i := 0; i < 10_000; i++ {
		seen[Step(1000, 20, rng)-1000] = true
	}
	assert.True(t, seen[-20], "never drew -20")
	assert.True(t, seen[20], "never drew +20")
	assert.True(t, seen[0], "never drew 0")
}

// memPriceStore is an in-memory PriceStore for worker tests.
type memPriceStore struct {
	prices map[string]int64
}

func (m *memPriceStore) ListPrices(_ context.Context) ([]model.StockPrice, error) {
	out := make([]model.StockPrice, 0, len(m.prices))
	for sym, p := range m.prices {
		out = append(out, model.StockPrice{Symbol: sym, Price: p})
	}
	return out, nil
}

func (m *memPriceStore) UpsertPrice(_ context.Context, symbol string, price int64) error {
	m.prices[symbol] = price
	return nil
}

func TestWorkerTick(t *testing.T) {
	store := &memPriceStore{prices: map[string]int64{"ACME": 100, "GLOB": 3}}
	w := NewWorker(store, 0, 20, rand.New(rand.NewSource(7)))

	require.NoError(t, w.Tick(context.Background()))

	for sym, p := range store.prices {
		assert.GreaterOrEqual(t, p, int64(1), sym)
	}
	assert.InDelta(t, 100, store.prices["ACME"], 20)
}
