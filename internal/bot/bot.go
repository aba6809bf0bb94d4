package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"guild-economy-bot/internal/config"
	"guild-economy-bot/internal/handler"
	"guild-economy-bot/internal/pkg/metrics"
	"guild-economy-bot/internal/service"
)

// Bot wraps the Discord session with application dependencies.
type Bot struct {
	session *discordgo.Session
	cfg     *config.Config

	accountHandler  *handler.AccountHandler
	loanHandler     *handler.LoanHandler
	adminHandler    *handler.AdminHandler
	stockHandler    *handler.StockHandler
	tierHandler     *handler.TierHandler
	activityHandler *handler.ActivityHandler
}

// Dependencies holds everything the bot handlers need.
type Dependencies struct {
	Config  *config.Config
	Economy *service.Economy
}

// New creates a Bot instance with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	session, err := discordgo.New("Bot " + deps.Config.Bot.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers

	b := &Bot{
		session:         session,
		cfg:             deps.Config,
		accountHandler:  handler.NewAccountHandler(deps.Economy),
		loanHandler:     handler.NewLoanHandler(deps.Economy),
		adminHandler:    handler.NewAdminHandler(deps.Economy, deps.Config),
		stockHandler:    handler.NewStockHandler(deps.Economy),
		tierHandler:     handler.NewTierHandler(deps.Economy),
		activityHandler: handler.NewActivityHandler(deps.Economy),
	}

	session.AddHandler(b.onReady)
	session.AddHandler(b.onInteraction)
	session.AddHandler(b.activityHandler.HandleMessage)

	return b, nil
}

// Start opens the gateway connection and registers the slash command
// set with the configured guild.
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open gateway: %w", err)
	}

	appID := b.session.State.User.ID
	if _, err := b.session.ApplicationCommandBulkOverwrite(appID, b.cfg.Bot.GuildID, Definitions()); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	log.Info().Str("guild_id", b.cfg.Bot.GuildID).Msg("Slash commands registered")
	return nil
}

// Stop closes the gateway connection.
func (b *Bot) Stop() {
	if err := b.session.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close gateway")
	}
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	log.Info().
		Str("username", r.User.Username).
		Int("guilds", len(r.Guilds)).
		Msg("Gateway connected")
}

// onInteraction routes slash commands and component presses.
func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.dispatchCommand(s, i)
	case discordgo.InteractionMessageComponent:
		b.dispatchComponent(s, i)
	}
}

func (b *Bot) dispatchCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	name := i.ApplicationCommandData().Name
	cmd, ok := ParseCommand(name)
	if !ok {
		log.Warn().Str("command", name).Msg("Unknown command received")
		return
	}

	start := time.Now()
	var err error
	switch cmd {
	case CmdRegister:
		err = b.accountHandler.HandleRegister(s, i)
	case CmdProfile:
		err = b.accountHandler.HandleProfile(s, i)
	case CmdBorrow:
		err = b.loanHandler.HandleBorrow(s, i)
	case CmdRepay:
		err = b.loanHandler.HandleRepay(s, i)
	case CmdGrant:
		err = b.adminHandler.HandleGrant(s, i)
	case CmdStock:
		err = b.stockHandler.HandleStock(s, i)
	case CmdTiers:
		err = b.tierHandler.HandleTiers(s, i)
	case CmdTop:
		err = b.accountHandler.HandleTop(s, i)
	case CmdUnknown:
		return
	}

	status := "ok"
	if err != nil {
		status = "error"
		log.Error().Err(err).Str("command", name).Msg("Command handler failed")
	}
	metrics.RecordCommand(name, status, time.Since(start))
}

func (b *Bot) dispatchComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID
	if !strings.HasPrefix(customID, handler.TierBuyPrefix) {
		log.Warn().Str("custom_id", customID).Msg("Unknown component received")
		return
	}

	start := time.Now()
	err := b.tierHandler.HandleTierBuy(s, i)
	status := "ok"
	if err != nil {
		status = "error"
		log.Error().Err(err).Str("custom_id", customID).Msg("Component handler failed")
	}
	metrics.RecordCommand("tier_buy", status, time.Since(start))
}
