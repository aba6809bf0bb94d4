package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"guild-economy-bot/internal/model"
)

// ErrSymbolNotFound is returned when a stock symbol is not tracked.
var ErrSymbolNotFound = errors.New("symbol not found")

// StockRepository handles stock price persistence.
type StockRepository struct {
	pool *pgxpool.Pool
}

// NewStockRepository creates a new StockRepository instance.
func NewStockRepository(pool *pgxpool.Pool) *StockRepository {
	return &StockRepository{pool: pool}
}

// ListPrices retrieves all tracked symbols with their current prices.
func (r *StockRepository) ListPrices(ctx context.Context) ([]model.StockPrice, error) {
	const query = `
		SELECT symbol, price, updated_at
		FROM stock_prices
		ORDER BY symbol
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list prices: %w", err)
	}
	defer rows.Close()

	var prices []model.StockPrice
	for rows.Next() {
		var p model.StockPrice
		if err := rows.Scan(&p.Symbol, &p.Price, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan price: %w", err)
		}
		prices = append(prices, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prices: %w", err)
	}
	return prices, nil
}

// PriceMap retrieves the symbol→price mapping the engine consumes.
func (r *StockRepository) PriceMap(ctx context.Context) (map[string]int64, error) {
	prices, err := r.ListPrices(ctx)
	if err != nil {
		return nil, err
	}
	m := make(map[string]int64, len(prices))
	for _, p := range prices {
		m[p.Symbol] = p.Price
	}
	return m, nil
}

// GetPrice retrieves the current price of one symbol.
// Returns ErrSymbolNotFound if the symbol is not tracked.
func (r *StockRepository) GetPrice(ctx context.Context, symbol string) (int64, error) {
	const query = `SELECT price FROM stock_prices WHERE symbol = $1`

	var price int64
	err := r.pool.QueryRow(ctx, query, symbol).Scan(&price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrSymbolNotFound
		}
		return 0, fmt.Errorf("failed to get price: %w", err)
	}
	return price, nil
}

// UpsertPrice writes the current price of a symbol.
func (r *StockRepository) UpsertPrice(ctx context.Context, symbol string, price int64) error {
	const query = `
		INSERT INTO stock_prices (symbol, price, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (symbol) DO UPDATE
		SET price = EXCLUDED.price, updated_at = NOW()
	`

	if _, err := r.pool.Exec(ctx, query, symbol, price); err != nil {
		return fmt.Errorf("failed to upsert price: %w", err)
	}
	return nil
}

// Seed inserts initial prices for symbols not yet tracked. Existing
// prices are left alone so a restart never resets the walk.
func (r *StockRepository) Seed(ctx context.Context, seed map[string]int64) error {
	const query = `
		INSERT INTO stock_prices (symbol, price, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (symbol) DO NOTHING
	`

	for symbol, price := range seed {
		if _, err := r.pool.Exec(ctx, query, symbol, price); err != nil {
			return fmt.Errorf("failed to seed %s: %w", symbol, err)
		}
	}
	return nil
}
