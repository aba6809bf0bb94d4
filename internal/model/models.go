// Package model defines the data models for the guild economy bot.
package model

import "time"

// Account represents a member's economic state: point balance, an
// optional outstanding loan, and stock holdings.
//
// Invariants maintained by the economy engine:
//   - Debt == 0 exactly when DueDate == nil.
//   - Holdings contains only positive share counts; an absent symbol
//     means zero shares.
type Account struct {
	UserID    string           `db:"user_id"`
	Points    int64            `db:"points"`
	Debt      int64            `db:"debt"`
	DueDate   *time.Time       `db:"due_date"`
	Holdings  map[string]int64 `db:"-"`
	CreatedAt time.Time        `db:"created_at"`
	UpdatedAt time.Time        `db:"updated_at"`
}

// HasLoan reports whether the account has an outstanding loan.
func (a *Account) HasLoan() bool {
	return a.Debt > 0
}

// Shares returns the share count for a symbol, treating an absent key
// as zero.
func (a *Account) Shares(symbol string) int64 {
	if a.Holdings == nil {
		return 0
	}
	return a.Holdings[symbol]
}

// Clone returns a deep copy of the account. The engine mutates copies
// so a failed persist never leaves a half-applied account in memory.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	cp := *a
	if a.DueDate != nil {
		due := *a.DueDate
		cp.DueDate = &due
	}
	cp.Holdings = make(map[string]int64, len(a.Holdings))
	for sym, qty := range a.Holdings {
		cp.Holdings[sym] = qty
	}
	return &cp
}

// StockPrice represents the current price of a tracked stock symbol.
// Prices are mutated only by the periodic price walk and never drop
// below 1.
type StockPrice struct {
	Symbol    string    `db:"symbol"`
	Price     int64     `db:"price"`
	UpdatedAt time.Time `db:"updated_at"`
}

// ActivityCounter tracks how many messages have already been rewarded
// for one user on one calendar day. Old day keys are simply never read
// again; there is no explicit reset.
type ActivityCounter struct {
	UserID string
	DayKey string
	Count  int64
}

// Transaction represents a point balance change record.
type Transaction struct {
	ID          int64     `db:"id"`
	UserID      string    `db:"user_id"`
	Amount      int64     `db:"amount"`
	Type        string    `db:"type"`
	Description *string   `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

// Transaction types for categorizing balance changes.
const (
	TxTypeInitial      = "initial"       // Seed balance on registration
	TxTypeGrant        = "grant"         // Admin granted points
	TxTypeBorrow       = "borrow"        // Loan principal received
	TxTypeRepay        = "repay"         // Loan repayment
	TxTypeActivity     = "activity"      // Chat activity payout
	TxTypeStockBuy     = "stock_buy"     // Stock purchase
	TxTypeStockSell    = "stock_sell"    // Stock sale
	TxTypeTierPurchase = "tier_purchase" // Role tier purchase
)
