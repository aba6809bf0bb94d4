package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"guild-economy-bot/internal/service"
)

// StockHandler handles /stock buy|sell.
type StockHandler struct {
	svc *service.Economy
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(svc *service.Economy) *StockHandler {
	return &StockHandler{svc: svc}
}

// HandleStock routes the buy and sell subcommands.
func (h *StockHandler) HandleStock(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	user := interactionUser(i)
	if user == nil {
		return nil
	}

	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return respond(s, i, "❌ Missing subcommand.")
	}
	sub := data.Options[0]
	if sub.Name == "prices" {
		return h.handlePrices(ctx, s, i)
	}

	opts := optionMap(sub.Options)
	symbol := strings.ToUpper(strings.TrimSpace(opts["symbol"].StringValue()))
	qty := opts["qty"].IntValue()

	var (
		result *service.TradeResult
		err    error
		verb   string
	)
	switch sub.Name {
	case "buy":
		result, err = h.svc.Buy(ctx, user.ID, symbol, qty)
		verb = "Bought"
	case "sell":
		result, err = h.svc.Sell(ctx, user.ID, symbol, qty)
		verb = "Sold"
	default:
		return respond(s, i, "❌ Unknown subcommand.")
	}
	if err != nil {
		return respondFailure(s, i, err)
	}

	return respond(s, i, fmt.Sprintf(
		"✅ %s **%d × %s** at %d for **%d** points.\n💰 Balance: %d, holdings of %s: %d",
		verb, result.Qty, result.Symbol, result.Price, result.Total,
		result.Account.Points, result.Symbol, result.Account.Shares(result.Symbol),
	))
}

func (h *StockHandler) handlePrices(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	prices, err := h.svc.Prices(ctx)
	if err != nil {
		return respondFailure(s, i, err)
	}
	if len(prices) == 0 {
		return respond(s, i, "📊 No stocks are tracked right now.")
	}

	var b strings.Builder
	b.WriteString("📊 Current prices:\n")
	for _, p := range prices {
		fmt.Fprintf(&b, "  • %s — %d\n", p.Symbol, p.Price)
	}
	return respond(s, i, b.String())
}
