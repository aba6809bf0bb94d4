package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"guild-economy-bot/internal/service"
)

// TierBuyPrefix namespaces the custom IDs of tier purchase buttons.
// The tier name rides after the colon.
const TierBuyPrefix = "tier_buy:"

// TierHandler handles the /tiers ladder view and its buy button.
type TierHandler struct {
	svc *service.Economy
}

// NewTierHandler creates a new TierHandler.
func NewTierHandler(svc *service.Economy) *TierHandler {
	return &TierHandler{svc: svc}
}

// HandleTiers handles /tiers: renders the ladder with the member's
// position and, when a next rung exists, a buy button for exactly that
// rung. Strict progression means there is never more than one legal
// purchase.
func (h *TierHandler) HandleTiers(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	user := interactionUser(i)
	if user == nil {
		return nil
	}

	policy := h.svc.Policy()
	current := policy.CurrentTierIndex(memberRoles(i))

	var b strings.Builder
	b.WriteString("🏅 Role ladder:\n")
	for idx, tier := range policy.Tiers {
		marker := "  "
		if idx <= current {
			marker = "✅"
		}
		fmt.Fprintf(&b, "%s %s — %d points (payout %d, up to %d/day)\n",
			marker, tier.Name, tier.Price, tier.Payout, tier.DailyLimit)
	}

	next, ok := policy.NextTier(current)
	if !ok {
		b.WriteString("\nYou've reached the top of the ladder.")
		return respond(s, i, b.String())
	}

	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    fmt.Sprintf("Buy %s (%d points)", next.Name, next.Price),
					Style:    discordgo.PrimaryButton,
					CustomID: TierBuyPrefix + next.Name,
				},
			},
		},
	}
	return respondComponents(s, i, b.String(), components)
}

// HandleTierBuy handles the buy button press. The tier name rides in
// the component's custom ID.
func (h *TierHandler) HandleTierBuy(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	user := interactionUser(i)
	if user == nil {
		return nil
	}

	tierName := strings.TrimPrefix(i.MessageComponentData().CustomID, TierBuyPrefix)

	tier, acct, err := h.svc.PurchaseTier(ctx, user.ID, memberRoles(i), tierName)
	if err != nil {
		return respondFailure(s, i, err)
	}

	applyTier(s, i.GuildID, user, tier.RoleID, tier.Name)

	return respond(s, i, fmt.Sprintf(
		"🎉 You are now **%s**!\n💰 Balance: %d", tier.Name, acct.Points,
	))
}
