package handler

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"guild-economy-bot/internal/service"
)

// LoanHandler handles /borrow and /repay.
type LoanHandler struct {
	svc *service.Economy
}

// NewLoanHandler creates a new LoanHandler.
func NewLoanHandler(svc *service.Economy) *LoanHandler {
	return &LoanHandler{svc: svc}
}

// HandleBorrow handles /borrow <amount>.
func (h *LoanHandler) HandleBorrow(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	user := interactionUser(i)
	if user == nil {
		return nil
	}

	opts := optionMap(i.ApplicationCommandData().Options)
	amount := opts["amount"].IntValue()

	acct, err := h.svc.Borrow(ctx, user.ID, amount)
	if err != nil {
		return respondFailure(s, i, err)
	}

	return respond(s, i, fmt.Sprintf(
		"✅ Borrowed **%d** points. You owe **%d**, due **%s**.\n💰 Balance: %d",
		amount, acct.Debt, acct.DueDate.Format("2006-01-02"), acct.Points,
	))
}

// HandleRepay handles /repay <amount>.
func (h *LoanHandler) HandleRepay(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	user := interactionUser(i)
	if user == nil {
		return nil
	}

	opts := optionMap(i.ApplicationCommandData().Options)
	amount := opts["amount"].IntValue()

	acct, err := h.svc.Repay(ctx, user.ID, amount)
	if err != nil {
		return respondFailure(s, i, err)
	}

	if acct.HasLoan() {
		return respond(s, i, fmt.Sprintf(
			"✅ Repaid **%d**. Remaining debt: **%d**, due %s.\n💰 Balance: %d",
			amount, acct.Debt, acct.DueDate.Format("2006-01-02"), acct.Points,
		))
	}
	return respond(s, i, fmt.Sprintf(
		"🎉 Loan fully repaid!\n💰 Balance: %d", acct.Points,
	))
}
