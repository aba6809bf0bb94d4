package market

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"guild-economy-bot/internal/model"
	"guild-economy-bot/internal/pkg/metrics"
)

// PriceStore is the slice of the ledger store the walk needs.
type PriceStore interface {
	ListPrices(ctx context.Context) ([]model.StockPrice, error)
	UpsertPrice(ctx context.Context, symbol string, price int64) error
}

// Worker drives the price walk on a fixed interval.
type Worker struct {
	store    PriceStore
	interval time.Duration
	maxStep  int64
	rng      *rand.Rand
}

// NewWorker creates a price-walk worker. The rng is injected so tests
// can seed it deterministically.
func NewWorker(store PriceStore, interval time.Duration, maxStep int64, rng *rand.Rand) *Worker {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Worker{
		store:    store,
		interval: interval,
		maxStep:  maxStep,
		rng:      rng,
	}
}

// Run ticks until the context is cancelled. A failed tick is logged
// and retried on the next interval; prices just stay stale meanwhile.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.Info().
		Dur("interval", w.interval).
		Int64("max_step", w.maxStep).
		Msg("Price walk started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Price walk stopped")
			return
		case <-ticker.C:
			if err := w.Tick(ctx); err != nil {
				log.Error().Err(err).Msg("Price walk tick failed")
			}
		}
	}
}

// Tick applies one walk step to every tracked symbol independently.
func (w *Worker) Tick(ctx context.Context) error {
	prices, err := w.store.ListPrices(ctx)
	if err != nil {
		return err
	}

	for _, p := range prices {
		next := Step(p.Price, w.maxStep, w.rng)
		if err := w.store.UpsertPrice(ctx, p.Symbol, next); err != nil {
			return err
		}
		metrics.SetStockPrice(p.Symbol, next)
		log.Debug().
			Str("symbol", p.Symbol).
			Int64("old", p.Price).
			Int64("new", next).
			Msg("Price stepped")
	}
	return nil
}
