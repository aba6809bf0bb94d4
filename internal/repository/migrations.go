package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Migrate creates the schema. Statements are idempotent so the bot can
// run them on every startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	migrations := []struct {
		name string
		stmt string
	}{
		{
			name: "accounts table",
			stmt: `
				CREATE TABLE IF NOT EXISTS accounts (
					user_id TEXT PRIMARY KEY,
					points BIGINT NOT NULL DEFAULT 0,
					debt BIGINT NOT NULL DEFAULT 0,
					due_date DATE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CONSTRAINT debt_due_date CHECK ((debt = 0) = (due_date IS NULL))
				);
			`,
		},
		{
			name: "holdings table",
			stmt: `
				CREATE TABLE IF NOT EXISTS holdings (
					user_id TEXT NOT NULL REFERENCES accounts(user_id) ON DELETE CASCADE,
					symbol TEXT NOT NULL,
					quantity BIGINT NOT NULL CHECK (quantity > 0),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					PRIMARY KEY (user_id, symbol)
				);
			`,
		},
		{
			name: "stock_prices table",
			stmt: `
				CREATE TABLE IF NOT EXISTS stock_prices (
					symbol TEXT PRIMARY KEY,
					price BIGINT NOT NULL CHECK (price >= 1),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`,
		},
		{
			name: "transactions table",
			stmt: `
				CREATE TABLE IF NOT EXISTS transactions (
					id BIGSERIAL PRIMARY KEY,
					user_id TEXT NOT NULL REFERENCES accounts(user_id) ON DELETE CASCADE,
					amount BIGINT NOT NULL,
					type VARCHAR(50) NOT NULL,
					description TEXT,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_transactions_user_time
					ON transactions(user_id, created_at DESC);
			`,
		},
	}

	for _, m := range migrations {
		if _, err := pool.Exec(ctx, m.stmt); err != nil {
			return fmt.Errorf("migration %q failed: %w", m.name, err)
		}
		log.Info().Str("migration", m.name).Msg("Migration applied")
	}
	return nil
}
