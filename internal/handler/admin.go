package handler

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"guild-economy-bot/internal/config"
	"guild-economy-bot/internal/service"
)

// AdminHandler handles the privileged /grant command. Authorization
// lives here, not in the engine.
type AdminHandler struct {
	svc *service.Economy
	cfg *config.Config
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(svc *service.Economy, cfg *config.Config) *AdminHandler {
	return &AdminHandler{svc: svc, cfg: cfg}
}

// HandleGrant handles /grant <member> <amount>.
func (h *AdminHandler) HandleGrant(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	user := interactionUser(i)
	if user == nil {
		return nil
	}

	if !h.cfg.IsAdmin(user.ID) {
		return respond(s, i, "❌ You are not allowed to grant points.")
	}

	data := i.ApplicationCommandData()
	opts := optionMap(data.Options)
	target := opts["member"].UserValue(s)
	amount := opts["amount"].IntValue()
	if target == nil {
		return respond(s, i, "❌ Member not found.")
	}

	acct, err := h.svc.Grant(ctx, user.ID, target.ID, amount)
	if err != nil {
		return respondFailure(s, i, err)
	}

	log.Info().
		Str("admin_id", user.ID).
		Str("target_id", target.ID).
		Int64("amount", amount).
		Msg("Admin grant executed")

	return respond(s, i, fmt.Sprintf(
		"✅ Granted **%d** points to %s.\n💰 Their balance: %d",
		amount, target.Mention(), acct.Points,
	))
}
