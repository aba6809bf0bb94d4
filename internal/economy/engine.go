// Package economy implements the point-economy state machine: account
// registration, loans, passive income from chat activity, stock
// trading, and the role-tier ladder.
//
// Every operation is pure with respect to its explicit inputs: the
// engine touches no storage and keeps no hidden state, and all
// validation happens before any mutation, so a failed operation leaves
// the account exactly as it was.
package economy

import (
	"math"
	"time"

	"guild-economy-bot/internal/model"
)

// Engine evaluates economy operations against a fixed policy table.
type Engine struct {
	policy Policy
}

// NewEngine creates an Engine with the given policy.
func NewEngine(policy Policy) *Engine {
	return &Engine{policy: policy}
}

// Policy returns the policy table the engine was built with.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Register creates a fresh account with the seed balance, no debt, and
// empty holdings. It fails with ErrAlreadyRegistered if an account
// already exists; the caller applies the lowest-tier role and nickname
// as a side effect on success.
func (e *Engine) Register(existing *model.Account, userID string, now time.Time) (*model.Account, error) {
	if existing != nil {
		return nil, ErrAlreadyRegistered
	}
	return &model.Account{
		UserID:    userID,
		Points:    e.policy.SeedBalance,
		Holdings:  make(map[string]int64),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Grant adds points to an account, creating a zero-balance account
// first if none exists. Authorization and amount validation belong to
// the caller; the engine places no upper bound on the amount.
func (e *Engine) Grant(existing *model.Account, userID string, amount int64, now time.Time) *model.Account {
	acct := existing
	if acct == nil {
		acct = &model.Account{
			UserID:    userID,
			Holdings:  make(map[string]int64),
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	acct.Points += amount
	return acct
}

// Borrow takes out a loan. The amount must be positive and no more
// than LoanMaxMultiplier times the current balance, and only one loan
// may be active at a time. On success the principal is credited, the
// debt is set to floor(amount * (100+interest)/100), and the due date
// lands LoanTermDays from today.
func (e *Engine) Borrow(acct *model.Account, amount int64, now time.Time) error {
	if acct == nil {
		return ErrNoAccount
	}
	if acct.HasLoan() {
		return ErrLoanActive
	}
	// The cap must not wrap for huge balances; past the point where
	// points*multiplier overflows, no amount can exceed it anyway. A
	// non-positive multiplier disables borrowing outright.
	limit := int64(0)
	if e.policy.LoanMaxMultiplier > 0 {
		limit = math.MaxInt64
		if acct.Points <= math.MaxInt64/e.policy.LoanMaxMultiplier {
			limit = acct.Points * e.policy.LoanMaxMultiplier
		}
	}
	if amount <= 0 || amount > limit {
		return ErrAmountOutOfRange
	}

	acct.Points += amount
	acct.Debt = amount * (100 + e.policy.LoanInterestPercent) / 100
	due := dateOf(now).AddDate(0, 0, e.policy.LoanTermDays)
	acct.DueDate = &due
	return nil
}

// Repay pays down the active loan. The amount must be positive, no
// more than the outstanding debt, and covered by the current balance.
// When the debt reaches zero the due date clears with it, preserving
// the debt/due-date invariant.
func (e *Engine) Repay(acct *model.Account, amount int64) error {
	if acct == nil {
		return ErrNoAccount
	}
	if !acct.HasLoan() {
		return ErrNoActiveLoan
	}
	if amount <= 0 || amount > acct.Debt || amount > acct.Points {
		return ErrInvalidAmount
	}

	acct.Points -= amount
	acct.Debt -= amount
	if acct.Debt == 0 {
		acct.DueDate = nil
	}
	return nil
}

// AccrueActivity credits the tier's payout for one qualifying chat
// message. It is a silent no-op, not an error, once the day's rewarded
// count has reached the tier's daily limit. The per-message cooldown
// gate lives with the activity log, not here.
func (e *Engine) AccrueActivity(acct *model.Account, tierIndex int, countToday int64) (payout int64, ok bool) {
	if acct == nil {
		return 0, false
	}
	payout, limit := e.policy.PayoutForTier(tierIndex)
	if countToday >= limit || payout <= 0 {
		return 0, false
	}
	acct.Points += payout
	return payout, true
}

// BuyStock purchases qty shares of symbol at the current price,
// deducting the cost and adding to holdings. Returns the total cost.
// Quantities whose total cost cannot be represented are rejected as
// invalid, never wrapped.
func (e *Engine) BuyStock(acct *model.Account, prices map[string]int64, symbol string, qty int64) (int64, error) {
	if acct == nil {
		return 0, ErrNoAccount
	}
	price, ok := prices[symbol]
	if !ok {
		return 0, ErrUnknownSymbol
	}
	if qty <= 0 || qty > math.MaxInt64/price {
		return 0, ErrInvalidAmount
	}
	cost := price * qty
	if acct.Points < cost {
		return 0, ErrInsufficientFunds
	}

	acct.Points -= cost
	if acct.Holdings == nil {
		acct.Holdings = make(map[string]int64)
	}
	acct.Holdings[symbol] += qty
	return cost, nil
}

// SellStock sells qty shares of symbol at the current price, crediting
// the proceeds. A holding that reaches zero is removed from the map,
// never stored as zero. Returns the total proceeds.
func (e *Engine) SellStock(acct *model.Account, prices map[string]int64, symbol string, qty int64) (int64, error) {
	if acct == nil {
		return 0, ErrNoAccount
	}
	price, ok := prices[symbol]
	if !ok {
		return 0, ErrUnknownSymbol
	}
	if qty <= 0 || qty > math.MaxInt64/price {
		return 0, ErrInvalidAmount
	}
	if acct.Shares(symbol) < qty {
		return 0, ErrInsufficientHoldings
	}

	proceeds := price * qty
	acct.Points += proceeds
	acct.Holdings[symbol] -= qty
	if acct.Holdings[symbol] == 0 {
		delete(acct.Holdings, symbol)
	}
	return proceeds, nil
}

// PurchaseTier buys the next rung of the role ladder. Progression is
// strictly linear: only currentIndex+1 is purchasable, so skipping
// ahead and re-buying a held or lower tier both fail with
// ErrTierOutOfOrder. The caller applies the role and nickname.
func (e *Engine) PurchaseTier(acct *model.Account, currentIndex, targetIndex int) (Tier, error) {
	if acct == nil {
		return Tier{}, ErrNoAccount
	}
	if targetIndex < 0 || targetIndex >= len(e.policy.Tiers) || targetIndex != currentIndex+1 {
		return Tier{}, ErrTierOutOfOrder
	}
	tier := e.policy.Tiers[targetIndex]
	if acct.Points < tier.Price {
		return Tier{}, ErrInsufficientFunds
	}

	acct.Points -= tier.Price
	return tier, nil
}

// dateOf truncates a timestamp to its UTC calendar date.
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
