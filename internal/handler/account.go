package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"guild-economy-bot/internal/service"
)

// AccountHandler handles registration and the profile view.
type AccountHandler struct {
	svc *service.Economy
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(svc *service.Economy) *AccountHandler {
	return &AccountHandler{svc: svc}
}

// HandleRegister handles /register. On success the member gets the
// lowest tier's role and a tagged nickname as one-time side effects.
func (h *AccountHandler) HandleRegister(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	user := interactionUser(i)
	if user == nil {
		return nil
	}

	acct, err := h.svc.Register(ctx, user.ID)
	if err != nil {
		return respondFailure(s, i, err)
	}

	policy := h.svc.Policy()
	if len(policy.Tiers) > 0 {
		applyTier(s, i.GuildID, user, policy.Tiers[0].RoleID, policy.Tiers[0].Name)
	}

	return respond(s, i, fmt.Sprintf(
		"🎉 Welcome! Your account is open with **%d** points.\n"+
			"Chat to earn points, /borrow if you're short, /stock to trade.",
		acct.Points,
	))
}

// HandleProfile handles /profile: balance, debt, holdings, and the
// latest balance changes.
func (h *AccountHandler) HandleProfile(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	user := interactionUser(i)
	if user == nil {
		return nil
	}

	acct, txs, err := h.svc.Profile(ctx, user.ID)
	if err != nil {
		return respondFailure(s, i, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "💰 Balance: **%d** points\n", acct.Points)
	if acct.HasLoan() {
		fmt.Fprintf(&b, "💸 Debt: **%d**, due %s\n", acct.Debt, acct.DueDate.Format("2006-01-02"))
	}
	if len(acct.Holdings) > 0 {
		b.WriteString("📈 Holdings:\n")
		for symbol, qty := range acct.Holdings {
			fmt.Fprintf(&b, "  • %s × %d\n", symbol, qty)
		}
	}
	if len(txs) > 0 {
		b.WriteString("🧾 Recent:\n")
		for _, tx := range txs {
			fmt.Fprintf(&b, "  • %+d (%s)\n", tx.Amount, tx.Type)
		}
	}

	return respond(s, i, b.String())
}

// HandleTop handles /top: the members with the highest balances.
func (h *AccountHandler) HandleTop(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()

	accounts, err := h.svc.Leaderboard(ctx, 10)
	if err != nil {
		return respondFailure(s, i, err)
	}
	if len(accounts) == 0 {
		return respond(s, i, "🏆 Nobody has an account yet.")
	}

	var b strings.Builder
	b.WriteString("🏆 Richest members:\n")
	for rank, acct := range accounts {
		fmt.Fprintf(&b, "%d. <@%s> — %d points\n", rank+1, acct.UserID, acct.Points)
	}
	return respond(s, i, b.String())
}

// applyTier adds the tier role and tags the nickname. Both are best
// effort: the purchase/registration has already been committed and a
// missing Manage Roles permission must not undo it.
func applyTier(s *discordgo.Session, guildID string, user *discordgo.User, roleID, tierName string) {
	if guildID == "" || roleID == "" {
		return
	}
	if err := s.GuildMemberRoleAdd(guildID, user.ID, roleID); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Str("role_id", roleID).Msg("Failed to add tier role")
	}
	nick := fmt.Sprintf("[%s] %s", tierName, user.Username)
	if len(nick) > 32 {
		nick = nick[:32]
	}
	if err := s.GuildMemberNickname(guildID, user.ID, nick); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("Failed to set nickname")
	}
}
