// Package bot provides the Discord gateway wiring: slash command
// registration, interaction dispatch, and the message-activity hook.
package bot

import "github.com/bwmarrin/discordgo"

// Command enumerates the bot's slash commands. Inbound interaction
// names are parsed into this type so dispatch is an exhaustive switch
// instead of string-keyed branching.
type Command int

const (
	CmdUnknown Command = iota
	CmdRegister
	CmdProfile
	CmdBorrow
	CmdRepay
	CmdGrant
	CmdStock
	CmdTiers
	CmdTop
)

var commandNames = map[string]Command{
	"register": CmdRegister,
	"profile":  CmdProfile,
	"borrow":   CmdBorrow,
	"repay":    CmdRepay,
	"grant":    CmdGrant,
	"stock":    CmdStock,
	"tiers":    CmdTiers,
	"top":      CmdTop,
}

// ParseCommand maps an interaction name to its Command.
func ParseCommand(name string) (Command, bool) {
	cmd, ok := commandNames[name]
	return cmd, ok
}

// String returns the wire name of the command.
func (c Command) String() string {
	for name, cmd := range commandNames {
		if cmd == c {
			return name
		}
	}
	return "unknown"
}

// minAmount is the shared lower bound for amount options.
var minAmount = float64(1)

// Definitions returns the slash command set registered with the guild.
func Definitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "register",
			Description: "Open an account with the seed balance",
		},
		{
			Name:        "profile",
			Description: "Show your balance, debt, and holdings",
		},
		{
			Name:        "borrow",
			Description: "Take out a loan (10% interest, due in 7 days)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "Points to borrow (at most 3x your balance)",
					Required:    true,
					MinValue:    &minAmount,
				},
			},
		},
		{
			Name:        "repay",
			Description: "Pay down your active loan",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "Points to repay",
					Required:    true,
					MinValue:    &minAmount,
				},
			},
		},
		{
			Name:        "grant",
			Description: "Grant points to a member (admin only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "member",
					Description: "Member to grant points to",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "Points to grant",
					Required:    true,
					MinValue:    &minAmount,
				},
			},
		},
		{
			Name:        "stock",
			Description: "Trade stocks",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "buy",
					Description: "Buy shares",
					Options:     tradeOptions(),
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "sell",
					Description: "Sell shares",
					Options:     tradeOptions(),
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "prices",
					Description: "Show current stock prices",
				},
			},
		},
		{
			Name:        "tiers",
			Description: "Show the role ladder and buy the next tier",
		},
		{
			Name:        "top",
			Description: "Show the richest members",
		},
	}
}

func tradeOptions() []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "symbol",
			Description: "Stock symbol",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "qty",
			Description: "Number of shares",
			Required:    true,
			MinValue:    &minAmount,
		},
	}
}
