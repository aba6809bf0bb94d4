// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"guild-economy-bot/internal/model"
)

// Common errors for repository operations.
var (
	ErrAccountNotFound = errors.New("account not found")
)

// AccountRepository handles account and holdings persistence.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository instance.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// Get retrieves an account with its holdings by user ID.
// Returns ErrAccountNotFound if the account does not exist.
func (r *AccountRepository) Get(ctx context.Context, userID string) (*model.Account, error) {
	const query = `
		SELECT user_id, points, debt, due_date, created_at, updated_at
		FROM accounts
		WHERE user_id = $1
	`

	var acct model.Account
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&acct.UserID,
		&acct.Points,
		&acct.Debt,
		&acct.DueDate,
		&acct.CreatedAt,
		&acct.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	acct.Holdings, err = r.holdings(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

// GetOrNil retrieves an account, mapping "not found" to a nil account
// rather than an error. The engine treats a nil account as
// "unregistered", so this is the read used ahead of engine calls.
func (r *AccountRepository) GetOrNil(ctx context.Context, userID string) (*model.Account, error) {
	acct, err := r.Get(ctx, userID)
	if errors.Is(err, ErrAccountNotFound) {
		return nil, nil
	}
	return acct, err
}

// Upsert writes the account row and reconciles its holdings to match
// the in-memory map exactly. Rows for symbols absent from the map are
// deleted; zero counts are never stored.
func (r *AccountRepository) Upsert(ctx context.Context, acct *model.Account) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin upsert: %w", err)
	}
	defer tx.Rollback(ctx)

	const upsertAccount = `
		INSERT INTO accounts (user_id, points, debt, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET points = EXCLUDED.points,
		    debt = EXCLUDED.debt,
		    due_date = EXCLUDED.due_date,
		    updated_at = NOW()
	`
	if _, err := tx.Exec(ctx, upsertAccount, acct.UserID, acct.Points, acct.Debt, acct.DueDate); err != nil {
		return fmt.Errorf("failed to upsert account: %w", err)
	}

	symbols := make([]string, 0, len(acct.Holdings))
	for sym, qty := range acct.Holdings {
		if qty <= 0 {
			continue
		}
		symbols = append(symbols, sym)
		const upsertHolding = `
			INSERT INTO holdings (user_id, symbol, quantity, updated_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (user_id, symbol) DO UPDATE
			SET quantity = EXCLUDED.quantity, updated_at = NOW()
		`
		if _, err := tx.Exec(ctx, upsertHolding, acct.UserID, sym, qty); err != nil {
			return fmt.Errorf("failed to upsert holding %s: %w", sym, err)
		}
	}

	const pruneHoldings = `
		DELETE FROM holdings
		WHERE user_id = $1 AND symbol != ALL($2)
	`
	if _, err := tx.Exec(ctx, pruneHoldings, acct.UserID, symbols); err != nil {
		return fmt.Errorf("failed to prune holdings: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit upsert: %w", err)
	}
	return nil
}

// List retrieves all accounts with their holdings.
func (r *AccountRepository) List(ctx context.Context) ([]*model.Account, error) {
	const query = `
		SELECT user_id, points, debt, due_date, created_at, updated_at
		FROM accounts
		ORDER BY user_id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*model.Account)
	var accounts []*model.Account
	for rows.Next() {
		var acct model.Account
		err := rows.Scan(
			&acct.UserID,
			&acct.Points,
			&acct.Debt,
			&acct.DueDate,
			&acct.CreatedAt,
			&acct.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		acct.Holdings = make(map[string]int64)
		byID[acct.UserID] = &acct
		accounts = append(accounts, &acct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	const holdingsQuery = `SELECT user_id, symbol, quantity FROM holdings`
	hrows, err := r.pool.Query(ctx, holdingsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	defer hrows.Close()

	for hrows.Next() {
		var userID, symbol string
		var qty int64
		if err := hrows.Scan(&userID, &symbol, &qty); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		if acct, ok := byID[userID]; ok {
			acct.Holdings[symbol] = qty
		}
	}
	if err := hrows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holdings: %w", err)
	}

	return accounts, nil
}

// holdings loads the positive share counts for one user.
func (r *AccountRepository) holdings(ctx context.Context, userID string) (map[string]int64, error) {
	const query = `SELECT symbol, quantity FROM holdings WHERE user_id = $1`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get holdings: %w", err)
	}
	defer rows.Close()

	holdings := make(map[string]int64)
	for rows.Next() {
		var symbol string
		var qty int64
		if err := rows.Scan(&symbol, &qty); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings[symbol] = qty
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holdings: %w", err)
	}
	return holdings, nil
}
