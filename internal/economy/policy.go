package economy

import (
	"time"

	"guild-economy-bot/internal/config"
)

// Tier is one rung of the role ladder: a purchasable rank with its own
// passive-income rate and daily payout limit.
type Tier struct {
	Name       string
	RoleID     string
	Price      int64
	Payout     int64
	DailyLimit int64
}

// Policy is the full economy policy table: seed balance, loan terms,
// activity payouts, and the ordered tier ladder. The engine never
// reads configuration directly; a Policy is built once at startup.
type Policy struct {
	SeedBalance int64

	// Loan terms: a member may borrow up to LoanMaxMultiplier times
	// their current balance, owes floor(amount * (100+interest)/100),
	// and the due date lands LoanTermDays after borrowing.
	LoanMaxMultiplier   int64
	LoanInterestPercent int64
	LoanTermDays        int

	// Passive income for members below the first tier.
	BasePayout     int64
	BaseDailyLimit int64

	MessageCooldown time.Duration

	// Tiers in strict ladder order: index 0 is the lowest rank.
	Tiers []Tier
}

// PolicyFromConfig builds the engine policy from loaded configuration.
func PolicyFromConfig(cfg *config.EconomyConfig) Policy {
	tiers := make([]Tier, 0, len(cfg.Tiers))
	for _, t := range cfg.Tiers {
		tiers = append(tiers, Tier{
			Name:       t.Name,
			RoleID:     t.RoleID,
			Price:      t.Price,
			Payout:     t.Payout,
			DailyLimit: t.DailyLimit,
		})
	}
	return Policy{
		SeedBalance:         cfg.SeedBalance,
		LoanMaxMultiplier:   cfg.Loan.MaxMultiplier,
		LoanInterestPercent: cfg.Loan.InterestPercent,
		LoanTermDays:        cfg.Loan.TermDays,
		BasePayout:          cfg.Activity.BasePayout,
		BaseDailyLimit:      cfg.Activity.BaseDailyLimit,
		MessageCooldown:     time.Duration(cfg.Activity.CooldownSeconds) * time.Second,
		Tiers:               tiers,
	}
}

// PayoutForTier returns the activity payout and daily limit for the
// given tier index. Index -1 (no tier held) gets the base rates.
func (p Policy) PayoutForTier(tierIndex int) (payout, dailyLimit int64) {
	if tierIndex < 0 || tierIndex >= len(p.Tiers) {
		return p.BasePayout, p.BaseDailyLimit
	}
	t := p.Tiers[tierIndex]
	return t.Payout, t.DailyLimit
}

// TierByName returns the ladder index of a tier by name, or -1.
func (p Policy) TierByName(name string) int {
	for i, t := range p.Tiers {
		if t.Name == name {
			return i
		}
	}
	return -1
}
