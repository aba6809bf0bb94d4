package handler

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"guild-economy-bot/internal/service"
)

// ActivityHandler feeds chat messages into passive-income accrual.
type ActivityHandler struct {
	svc *service.Economy
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(svc *service.Economy) *ActivityHandler {
	return &ActivityHandler{svc: svc}
}

// HandleMessage runs on every guild message. Earning nothing (bot
// author, cooldown, daily limit, unregistered) is normal; only store
// failures are logged.
func (h *ActivityHandler) HandleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	var roles []string
	if m.Member != nil {
		roles = m.Member.Roles
	}

	ctx := context.Background()
	payout, err := h.svc.HandleMessage(ctx, m.Author.ID, roles, time.Now())
	if err != nil {
		log.Error().Err(err).Str("user_id", m.Author.ID).Msg("Activity accrual failed")
		return
	}
	if payout > 0 {
		log.Debug().
			Str("user_id", m.Author.ID).
			Int64("payout", payout).
			Msg("Activity payout credited")
	}
}
