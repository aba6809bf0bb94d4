// Package handler provides the Discord interaction handlers. Each
// handler maps one command to a service call and renders the outcome
// as an ephemeral reply; engine failures map 1:1 to reply text.
package handler

import (
	"errors"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"guild-economy-bot/internal/economy"
)

// respond sends an ephemeral reply to an interaction.
func respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// respondComponents sends an ephemeral reply carrying message components.
func respondComponents(s *discordgo.Session, i *discordgo.InteractionCreate, content string, components []discordgo.MessageComponent) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Flags:      discordgo.MessageFlagsEphemeral,
			Components: components,
		},
	})
}

// respondFailure maps an operation failure to its user-facing reply.
// Store failures get a generic message; by this point nothing has been
// persisted on the failure path.
func respondFailure(s *discordgo.Session, i *discordgo.InteractionCreate, err error) error {
	return respond(s, i, failureMessage(err))
}

// failureMessage maps engine failures 1:1 to reply text.
func failureMessage(err error) string {
	switch {
	case errors.Is(err, economy.ErrAlreadyRegistered):
		return "❌ You already have an account."
	case errors.Is(err, economy.ErrNoAccount):
		return "❌ You don't have an account yet. Use /register first."
	case errors.Is(err, economy.ErrLoanActive):
		return "❌ You already have an active loan. Repay it first."
	case errors.Is(err, economy.ErrNoActiveLoan):
		return "❌ You have no active loan."
	case errors.Is(err, economy.ErrAmountOutOfRange):
		return "❌ You can borrow at most 3x your current balance."
	case errors.Is(err, economy.ErrInvalidAmount):
		return "❌ Invalid amount."
	case errors.Is(err, economy.ErrUnknownSymbol):
		return "❌ Unknown stock symbol."
	case errors.Is(err, economy.ErrInsufficientFunds):
		return "❌ You don't have enough points."
	case errors.Is(err, economy.ErrInsufficientHoldings):
		return "❌ You don't hold that many shares."
	case errors.Is(err, economy.ErrTierOutOfOrder):
		return "❌ Tiers must be bought in order, one rung at a time."
	default:
		log.Error().Err(err).Msg("Command failed")
		return "❌ Something went wrong, please try again later."
	}
}

// interactionUser returns the invoking member's user, preferring the
// guild member payload.
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil {
		return i.Member.User
	}
	return i.User
}

// memberRoles returns the invoking member's role IDs, empty outside a
// guild.
func memberRoles(i *discordgo.InteractionCreate) []string {
	if i.Member == nil {
		return nil
	}
	return i.Member.Roles
}

// optionMap flattens interaction options by name.
func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}
