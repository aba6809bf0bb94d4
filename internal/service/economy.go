// Package service provides business logic implementations. Every
// ledger-touching flow runs the same shape: acquire the per-user lock,
// read rows, run the pure engine on a copy, persist, record the
// transaction. The engine works on clones, so a failed persist never
// leaves a half-applied account anywhere.
package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"guild-economy-bot/internal/activity"
	"guild-economy-bot/internal/economy"
	"guild-economy-bot/internal/model"
	"guild-economy-bot/internal/pkg/lock"
	"guild-economy-bot/internal/pkg/metrics"
	"guild-economy-bot/internal/repository"
)

// Economy orchestrates economy operations across the ledger store, the
// activity log, and the pure engine.
type Economy struct {
	accounts *repository.AccountRepository
	stocks   *repository.StockRepository
	txs      *repository.TransactionRepository
	activity *activity.Log
	engine   *economy.Engine
	userLock *lock.UserLock
}

// NewEconomy creates the economy service.
func NewEconomy(
	accounts *repository.AccountRepository,
	stocks *repository.StockRepository,
	txs *repository.TransactionRepository,
	activityLog *activity.Log,
	engine *economy.Engine,
	userLock *lock.UserLock,
) *Economy {
	return &Economy{
		accounts: accounts,
		stocks:   stocks,
		txs:      txs,
		activity: activityLog,
		engine:   engine,
		userLock: userLock,
	}
}

// Policy exposes the engine's policy table to handlers.
func (s *Economy) Policy() economy.Policy {
	return s.engine.Policy()
}

// Register creates a fresh account with the seed balance.
func (s *Economy) Register(ctx context.Context, userID string) (*model.Account, error) {
	s.userLock.Lock(userID)
	defer s.userLock.Unlock(userID)

	existing, err := s.accounts.GetOrNil(ctx, userID)
	if err != nil {
		return nil, err
	}

	acct, err := s.engine.Register(existing, userID, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.accounts.Upsert(ctx, acct); err != nil {
		return nil, err
	}

	s.record(ctx, userID, acct.Points, model.TxTypeInitial, "seed balance")
	return acct, nil
}

// Profile returns the account with its recent balance changes.
func (s *Economy) Profile(ctx context.Context, userID string) (*model.Account, []*model.Transaction, error) {
	acct, err := s.accounts.GetOrNil(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if acct == nil {
		return nil, nil, economy.ErrNoAccount
	}

	txs, err := s.txs.Recent(ctx, userID, 5)
	if err != nil {
		// The profile is still useful without history.
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to load recent transactions")
		txs = nil
	}
	return acct, txs, nil
}

// Grant adds points to a member, creating a zero-balance account if
// needed. Authorization was already checked by the caller.
func (s *Economy) Grant(ctx context.Context, grantorID, targetID string, amount int64) (*model.Account, error) {
	if amount <= 0 {
		return nil, economy.ErrInvalidAmount
	}

	s.userLock.Lock(targetID)
	defer s.userLock.Unlock(targetID)

	existing, err := s.accounts.GetOrNil(ctx, targetID)
	if err != nil {
		return nil, err
	}

	acct := s.engine.Grant(existing.Clone(), targetID, amount, time.Now())
	if err := s.accounts.Upsert(ctx, acct); err != nil {
		return nil, err
	}

	s.record(ctx, targetID, amount, model.TxTypeGrant, fmt.Sprintf("granted by %s", grantorID))
	log.Info().
		Str("grantor_id", grantorID).
		Str("target_id", targetID).
		Int64("amount", amount).
		Msg("Points granted")
	return acct, nil
}

// Borrow takes out a loan against the current balance.
func (s *Economy) Borrow(ctx context.Context, userID string, amount int64) (*model.Account, error) {
	s.userLock.Lock(userID)
	defer s.userLock.Unlock(userID)

	acct, err := s.readAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	work := acct.Clone()
	if err := s.engine.Borrow(work, amount, time.Now()); err != nil {
		return nil, err
	}
	if err := s.accounts.Upsert(ctx, work); err != nil {
		return nil, err
	}

	s.record(ctx, userID, amount, model.TxTypeBorrow, fmt.Sprintf("loan, debt %d", work.Debt))
	return work, nil
}

// Repay pays down the active loan.
func (s *Economy) Repay(ctx context.Context, userID string, amount int64) (*model.Account, error) {
	s.userLock.Lock(userID)
	defer s.userLock.Unlock(userID)

	acct, err := s.readAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	work := acct.Clone()
	if err := s.engine.Repay(work, amount); err != nil {
		return nil, err
	}
	if err := s.accounts.Upsert(ctx, work); err != nil {
		return nil, err
	}

	s.record(ctx, userID, -amount, model.TxTypeRepay, fmt.Sprintf("remaining debt %d", work.Debt))
	return work, nil
}

// TradeResult describes a settled buy or sell.
type TradeResult struct {
	Account *model.Account
	Symbol  string
	Qty     int64
	Price   int64
	Total   int64
}

// Buy purchases qty shares of symbol at the current price.
func (s *Economy) Buy(ctx context.Context, userID, symbol string, qty int64) (*TradeResult, error) {
	s.userLock.Lock(userID)
	defer s.userLock.Unlock(userID)

	acct, err := s.readAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	prices, err := s.stocks.PriceMap(ctx)
	if err != nil {
		return nil, err
	}

	work := acct.Clone()
	cost, err := s.engine.BuyStock(work, prices, symbol, qty)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.Upsert(ctx, work); err != nil {
		return nil, err
	}

	s.record(ctx, userID, -cost, model.TxTypeStockBuy, fmt.Sprintf("%d x %s", qty, symbol))
	return &TradeResult{Account: work, Symbol: symbol, Qty: qty, Price: prices[symbol], Total: cost}, nil
}

// Sell sells qty shares of symbol at the current price.
func (s *Economy) Sell(ctx context.Context, userID, symbol string, qty int64) (*TradeResult, error) {
	s.userLock.Lock(userID)
	defer s.userLock.Unlock(userID)

	acct, err := s.readAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	prices, err := s.stocks.PriceMap(ctx)
	if err != nil {
		return nil, err
	}

	work := acct.Clone()
	proceeds, err := s.engine.SellStock(work, prices, symbol, qty)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.Upsert(ctx, work); err != nil {
		return nil, err
	}

	s.record(ctx, userID, proceeds, model.TxTypeStockSell, fmt.Sprintf("%d x %s", qty, symbol))
	return &TradeResult{Account: work, Symbol: symbol, Qty: qty, Price: prices[symbol], Total: proceeds}, nil
}

// Prices returns the current symbol→price table for display.
func (s *Economy) Prices(ctx context.Context) ([]model.StockPrice, error) {
	return s.stocks.ListPrices(ctx)
}

// Leaderboard returns the top accounts by point balance, ties broken
// by user ID for a stable view.
func (s *Economy) Leaderboard(ctx context.Context, limit int) ([]*model.Account, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].Points != accounts[j].Points {
			return accounts[i].Points > accounts[j].Points
		}
		return accounts[i].UserID < accounts[j].UserID
	})
	if limit > 0 && len(accounts) > limit {
		accounts = accounts[:limit]
	}
	return accounts, nil
}

// PurchaseTier buys the named tier for a member currently holding the
// given roles. The returned tier carries the role ID the caller must
// apply; role assignment itself is a gateway side effect, not ours.
func (s *Economy) PurchaseTier(ctx context.Context, userID string, heldRoleIDs []string, tierName string) (economy.Tier, *model.Account, error) {
	policy := s.engine.Policy()
	targetIndex := policy.TierByName(tierName)
	if targetIndex < 0 {
		return economy.Tier{}, nil, economy.ErrTierOutOfOrder
	}
	currentIndex := policy.CurrentTierIndex(heldRoleIDs)

	s.userLock.Lock(userID)
	defer s.userLock.Unlock(userID)

	acct, err := s.readAccount(ctx, userID)
	if err != nil {
		return economy.Tier{}, nil, err
	}

	work := acct.Clone()
	tier, err := s.engine.PurchaseTier(work, currentIndex, targetIndex)
	if err != nil {
		return economy.Tier{}, nil, err
	}
	if err := s.accounts.Upsert(ctx, work); err != nil {
		return economy.Tier{}, nil, err
	}

	s.record(ctx, userID, -tier.Price, model.TxTypeTierPurchase, tier.Name)
	return tier, work, nil
}

// HandleMessage accrues passive income for one chat message. Both the
// cooldown gate and the daily limit fail silently: a message that earns
// nothing is normal traffic, not an error. The cooldown window runs
// from the last credited message, so non-crediting messages never
// consume it.
func (s *Economy) HandleMessage(ctx context.Context, userID string, heldRoleIDs []string, now time.Time) (int64, error) {
	policy := s.engine.Policy()

	active, err := s.activity.CooldownActive(ctx, userID, policy.MessageCooldown)
	if err != nil {
		return 0, err
	}
	if active {
		return 0, nil
	}

	s.userLock.Lock(userID)
	defer s.userLock.Unlock(userID)

	acct, err := s.accounts.GetOrNil(ctx, userID)
	if err != nil {
		return 0, err
	}
	if acct == nil {
		// Unregistered members earn nothing.
		return 0, nil
	}

	dayKey := activity.DayKey(now)
	counter, err := s.activity.Count(ctx, userID, dayKey)
	if err != nil {
		return 0, err
	}

	tierIndex := policy.CurrentTierIndex(heldRoleIDs)
	work := acct.Clone()
	payout, credited := s.engine.AccrueActivity(work, tierIndex, counter.Count)
	if !credited {
		return 0, nil
	}

	if err := s.accounts.Upsert(ctx, work); err != nil {
		return 0, err
	}
	// Counter and cooldown writes are best effort: if they fail the
	// member may earn an extra payout today, which is an accepted
	// limitation of the uncoordinated store/log pair.
	if _, err := s.activity.Increment(ctx, userID, dayKey); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to increment activity counter")
	}
	if err := s.activity.ArmCooldown(ctx, userID, policy.MessageCooldown); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to arm payout cooldown")
	}

	s.record(ctx, userID, payout, model.TxTypeActivity, dayKey)
	metrics.RecordActivityPayout()
	return payout, nil
}

// readAccount loads an account, mapping absence to ErrNoAccount.
func (s *Economy) readAccount(ctx context.Context, userID string) (*model.Account, error) {
	acct, err := s.accounts.GetOrNil(ctx, userID)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, economy.ErrNoAccount
	}
	return acct, nil
}

// record writes the audit transaction. Failures are logged, not
// surfaced: the balance change has already been committed.
func (s *Economy) record(ctx context.Context, userID string, amount int64, txType, description string) {
	if _, err := s.txs.Create(ctx, userID, amount, txType, &description); err != nil {
		log.Warn().
			Err(err).
			Str("user_id", userID).
			Str("type", txType).
			Msg("Failed to record transaction")
	}
}
