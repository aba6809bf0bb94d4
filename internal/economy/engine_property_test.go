// Property-based tests for the economy engine invariants.
package economy

import (
	"errors"
	"math"
	"testing"
	"time"

	"pgregory.net/rapid"

	"guild-economy-bot/internal/model"
)

// TestBorrowRepayInvariantProperty checks that for any valid loan, the
// debt equals floor(amount*1.1), and that repaying it to zero always
// clears the due date with the debt.
func TestBorrowRepayInvariantProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		e := NewEngine(testPolicy())
		now := time.Now()

		points := rapid.Int64Range(1, 1_000_000).Draw(rt, "points")
		acct := &model.Account{UserID: "u", Points: points, Holdings: map[string]int64{}}

		amount := rapid.Int64Range(1, points*3).Draw(rt, "amount")
		if err := e.Borrow(acct, amount, now); err != nil {
			rt.Fatalf("borrow within limit failed: %v", err)
		}

		if acct.Debt != amount*110/100 {
			rt.Fatalf("debt = %d, want floor(%d*1.1) = %d", acct.Debt, amount, amount*110/100)
		}
		if acct.DueDate == nil {
			rt.Fatalf("due date missing while debt > 0")
		}

		// Repay in random positive chunks until the debt is gone.
		for acct.Debt > 0 {
			chunk := rapid.Int64Range(1, acct.Debt).Draw(rt, "chunk")
			if chunk > acct.Points {
				chunk = acct.Points
			}
			if chunk == 0 {
				// Balance exhausted; nothing more to verify.
				return
			}
			if err := e.Repay(acct, chunk); err != nil {
				rt.Fatalf("repay %d of %d failed: %v", chunk, acct.Debt, err)
			}
			if (acct.Debt == 0) != (acct.DueDate == nil) {
				rt.Fatalf("invariant broken: debt=%d dueDate=%v", acct.Debt, acct.DueDate)
			}
		}
	})
}

// TestBorrowFailureNoStateChangeProperty checks that every rejected
// borrow leaves the account untouched.
func TestBorrowFailureNoStateChangeProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		e := NewEngine(testPolicy())
		now := time.Now()

		points := rapid.Int64Range(0, 10_000).Draw(rt, "points")
		debt := rapid.Int64Range(0, 1_000).Draw(rt, "debt")
		acct := &model.Account{UserID: "u", Points: points, Debt: debt, Holdings: map[string]int64{}}
		if debt > 0 {
			due := time.Now().AddDate(0, 0, 7)
			acct.DueDate = &due
		}
		before := acct.Clone()

		amount := rapid.Int64Range(-1_000, 100_000).Draw(rt, "amount")
		err := e.Borrow(acct, amount, now)

		valid := debt == 0 && amount > 0 && amount <= points*3
		if valid {
			if err != nil {
				rt.Fatalf("valid borrow rejected: %v", err)
			}
			return
		}
		if err == nil {
			rt.Fatalf("invalid borrow accepted: points=%d debt=%d amount=%d", points, debt, amount)
		}
		if acct.Points != before.Points || acct.Debt != before.Debt {
			rt.Fatalf("failed borrow changed state: %+v -> %+v", before, acct)
		}
	})
}

// TestBuySellRoundTripProperty checks that buying and selling the same
// quantity at an unchanged price returns points and holdings to their
// exact pre-trade values.
func TestBuySellRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		e := NewEngine(testPolicy())

		price := rapid.Int64Range(1, 10_000).Draw(rt, "price")
		qty := rapid.Int64Range(1, 100).Draw(rt, "qty")
		points := rapid.Int64Range(price*qty, price*qty+1_000_000).Draw(rt, "points")

		prices := map[string]int64{"SYM": price}
		acct := &model.Account{UserID: "u", Points: points, Holdings: map[string]int64{}}

		if _, err := e.BuyStock(acct, prices, "SYM", qty); err != nil {
			rt.Fatalf("buy failed: %v", err)
		}
		if _, err := e.SellStock(acct, prices, "SYM", qty); err != nil {
			rt.Fatalf("sell failed: %v", err)
		}

		if acct.Points != points {
			rt.Fatalf("points %d after round trip, want %d", acct.Points, points)
		}
		if len(acct.Holdings) != 0 {
			rt.Fatalf("holdings not empty after round trip: %v", acct.Holdings)
		}
	})
}

// TestBuyCostRepresentableProperty checks, over the full int64 range,
// that every accepted buy charges an exactly representable price*qty
// and that wrap-prone quantities are rejected without touching state.
func TestBuyCostRepresentableProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		e := NewEngine(testPolicy())

		price := rapid.Int64Range(1, math.MaxInt64).Draw(rt, "price")
		qty := rapid.Int64Range(1, math.MaxInt64).Draw(rt, "qty")
		points := rapid.Int64Range(0, math.MaxInt64).Draw(rt, "points")

		acct := &model.Account{UserID: "u", Points: points, Holdings: map[string]int64{}}
		prices := map[string]int64{"SYM": price}

		cost, err := e.BuyStock(acct, prices, "SYM", qty)

		if qty > math.MaxInt64/price {
			if !errors.Is(err, ErrInvalidAmount) {
				rt.Fatalf("overflowing buy %d x %d got err=%v, want ErrInvalidAmount", qty, price, err)
			}
			if acct.Points != points || len(acct.Holdings) != 0 {
				rt.Fatalf("rejected buy changed state: points=%d holdings=%v", acct.Points, acct.Holdings)
			}
			return
		}
		if err != nil {
			if !errors.Is(err, ErrInsufficientFunds) {
				rt.Fatalf("representable buy got err=%v", err)
			}
			return
		}
		if cost != price*qty || cost/qty != price {
			rt.Fatalf("cost %d is not %d*%d", cost, price, qty)
		}
		if acct.Points != points-cost || acct.Holdings["SYM"] != qty {
			rt.Fatalf("buy applied wrong: points=%d holdings=%v", acct.Points, acct.Holdings)
		}
	})
}

// TestActivityDailyLimitProperty checks that no sequence of messages
// ever earns more than the tier's daily limit of payouts on one day.
func TestActivityDailyLimitProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		e := NewEngine(testPolicy())
		tierIndex := rapid.IntRange(-1, 2).Draw(rt, "tierIndex")
		messages := rapid.IntRange(0, 200).Draw(rt, "messages")

		payout, limit := e.Policy().PayoutForTier(tierIndex)
		acct := &model.Account{UserID: "u", Holdings: map[string]int64{}}

		var count, credited int64
		for i := 0; i < messages; i++ {
			if _, ok := e.AccrueActivity(acct, tierIndex, count); ok {
				count++
				credited++
			}
		}

		if credited > limit {
			rt.Fatalf("credited %d payouts, limit is %d", credited, limit)
		}
		if acct.Points != credited*payout {
			rt.Fatalf("points %d, want %d credits * %d payout", acct.Points, credited, payout)
		}
	})
}
