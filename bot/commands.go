package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func itemOptions() []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "type",
			Description: "What is being auctioned",
			Required:    true,
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "Club", Value: "club"},
				{Name: "Duelist", Value: "duelist"},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "id",
			Description: "Club or duelist ID",
			Required:    true,
		},
	}
}

func amountOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "amount",
		Description: description,
		Required:    true,
	}
}

func groupNameOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "name",
		Description: "Investor group name",
		Required:    true,
	}
}

func subcommand(name, description string, options ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        name,
		Description: description,
		Options:     options,
	}
}

// slashCommands returns every command the bot serves
func slashCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "auction",
			Description: "Bid on clubs and duelists",
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("bid", "Place a bid with your own money",
					append(itemOptions(), amountOption("Bid amount"))...),
				subcommand("groupbid", "Place a bid on behalf of your investor group",
					append(itemOptions(), amountOption("Bid amount"), &discordgo.ApplicationCommandOption{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "group",
						Description: "Investor group to bid for",
						Required:    true,
					})...),
				subcommand("info", "Show the current bid and minimum next bid", itemOptions()...),
				subcommand("active", "List auctions with a running countdown"),
				subcommand("start", "Open a fresh auction round (admin)",
					append(itemOptions(), &discordgo.ApplicationCommandOption{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "seconds",
						Description: "Countdown length (defaults to the configured value)",
						MinValue:    floatPtr(1),
					})...),
				subcommand("forcewinner", "Record a winner without a bid (owner)",
					append(itemOptions(), amountOption("Recorded sale amount"),
						&discordgo.ApplicationCommandOption{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "Winning user",
						},
						&discordgo.ApplicationCommandOption{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "group",
							Description: "Winning investor group",
						})...),
				subcommand("freeze", "Stop accepting bids (admin)"),
				subcommand("unfreeze", "Resume accepting bids (admin)"),
				subcommand("reset", "Clear every bid and countdown (admin)"),
			},
		},
		{
			Name:        "group",
			Description: "Manage investor groups",
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("create", "Create an investor group", groupNameOption(), &discordgo.ApplicationCommandOption{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "funds",
					Description: "Starting funds",
					MinValue:    floatPtr(0),
				}),
				subcommand("join", "Join an investor group", groupNameOption()),
				subcommand("leave", "Leave an investor group (the group pays a penalty)", groupNameOption()),
				subcommand("deposit", "Add funds to a group", groupNameOption(), amountOption("Amount to deposit")),
				subcommand("withdraw", "Take funds out of a group you belong to", groupNameOption(), amountOption("Amount to withdraw")),
				subcommand("info", "Show a group's funds and members", groupNameOption()),
				subcommand("mine", "List the groups you belong to"),
				subcommand("adjust", "Add or remove group funds (admin)", groupNameOption(), &discordgo.ApplicationCommandOption{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "delta",
					Description: "Signed adjustment",
					Required:    true,
				}),
			},
		},
		{
			Name:        "wallet",
			Description: "Manage your personal wallet",
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("balance", "Show your balance"),
				subcommand("deposit", "Add money to your wallet", amountOption("Amount to deposit")),
				subcommand("withdraw", "Take money out of your wallet", amountOption("Amount to withdraw")),
				subcommand("history", "Show recent wallet transactions", &discordgo.ApplicationCommandOption{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "limit",
					Description: "How many transactions to show",
					MinValue:    floatPtr(1),
					MaxValue:    25,
				}),
				subcommand("profile", "Show a wallet, groups and open bids", &discordgo.ApplicationCommandOption{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Whose profile (defaults to you)",
				}),
			},
		},
		{
			Name:        "club",
			Description: "Browse and register clubs",
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("register", "Register a club (admin)",
					&discordgo.ApplicationCommandOption{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "name",
						Description: "Club name",
						Required:    true,
					},
					&discordgo.ApplicationCommandOption{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "base_price",
						Description: "Opening price",
						Required:    true,
						MinValue:    floatPtr(1),
					},
					&discordgo.ApplicationCommandOption{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "slogan",
						Description: "Club slogan",
					}),
				subcommand("list", "List all clubs"),
				subcommand("info", "Show a club", &discordgo.ApplicationCommandOption{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "id",
					Description: "Club ID",
					Required:    true,
				}),
				subcommand("setmanager", "Assign a club manager (admin)",
					&discordgo.ApplicationCommandOption{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "club",
						Description: "Club name",
						Required:    true,
					},
					&discordgo.ApplicationCommandOption{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "user",
						Description: "New manager",
						Required:    true,
					}),
				subcommand("manager", "Show a club's manager", &discordgo.ApplicationCommandOption{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "club",
					Description: "Club name",
					Required:    true,
				}),
			},
		},
		{
			Name:        "duelist",
			Description: "Browse and register duelists",
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("register", "Register a duelist",
					&discordgo.ApplicationCommandOption{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "base_price",
						Description: "Opening price",
						Required:    true,
						MinValue:    floatPtr(1),
					},
					&discordgo.ApplicationCommandOption{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "salary",
						Description: "Expected salary per match",
						Required:    true,
						MinValue:    floatPtr(0),
					},
					&discordgo.ApplicationCommandOption{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "user",
						Description: "Discord user (defaults to you)",
					},
					&discordgo.ApplicationCommandOption{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "username",
						Description: "Display name (defaults to the Discord username)",
					}),
				subcommand("list", "List all duelists"),
				subcommand("info", "Show a duelist and their contract", &discordgo.ApplicationCommandOption{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "id",
					Description: "Duelist ID",
					Required:    true,
				}),
				subcommand("owned", "List duelists owned by a user or group",
					&discordgo.ApplicationCommandOption{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "user",
						Description: "Owner (defaults to you)",
					},
					&discordgo.ApplicationCommandOption{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "group",
						Description: "Owning investor group",
					}),
				subcommand("penalty", "Charge the owner for a missed salary (admin)",
					&discordgo.ApplicationCommandOption{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "id",
						Description: "Duelist ID",
						Required:    true,
					},
					&discordgo.ApplicationCommandOption{
						Type:        discordgo.ApplicationCommandOptionBoolean,
						Name:        "apply",
						Description: "Apply the deduction (defaults to true)",
					}),
			},
		},
		{
			Name:        "admin",
			Description: "Owner tools",
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("audit", "Show the newest audit log entries", &discordgo.ApplicationCommandOption{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "limit",
					Description: "How many entries to show",
					MinValue:    floatPtr(1),
					MaxValue:    100,
				}),
				subcommand("report", "Post the weekly market report now"),
			},
		},
	}
}

func floatPtr(v float64) *float64 {
	return &v
}

// registerCommands registers all slash commands with Discord. Commands are
// registered to the configured guild when set, globally otherwise.
func (b *Bot) registerCommands() error {
	commands := slashCommands()

	registered, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, b.config.GuildID, commands)
	if err != nil {
		return fmt.Errorf("cannot register commands: %w", err)
	}

	log.WithFields(log.Fields{
		"count":   len(registered),
		"guildID": b.config.GuildID,
	}).Info("Registered slash commands")
	return nil
}
