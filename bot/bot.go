package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"clubauction/bot/features/admin"
	"clubauction/bot/features/auction"
	"clubauction/bot/features/catalog"
	"clubauction/bot/features/groups"
	"clubauction/bot/features/wallet"
	"clubauction/service"
)

// Config holds bot configuration
type Config struct {
	Token           string
	GuildID         string
	OwnerID         int64
	ReportChannelID string
}

// Services groups the services the bot's commands call into
type Services struct {
	Auction  service.AuctionService
	Groups   service.GroupService
	Wallets  service.WalletService
	Catalog  service.CatalogService
	Penalty  service.PenaltyService
	Snapshot service.SnapshotService
	Reports  admin.ReportRunner
}

type Bot struct {
	config   Config
	session  *discordgo.Session
	notifier *DiscordNotifier

	// Features
	auctionFeature *auction.Feature
	groupsFeature  *groups.Feature
	walletFeature  *wallet.Feature
	catalogFeature *catalog.Feature
	adminFeature   *admin.Feature
}

func New(config Config, services Services) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsDirectMessages

	notifier := NewDiscordNotifier(dg, config.ReportChannelID)
	bot := &Bot{
		config:         config,
		session:        dg,
		notifier:       notifier,
		auctionFeature: auction.NewFeature(services.Auction, notifier, config.OwnerID),
		groupsFeature:  groups.NewFeature(services.Groups, services.Penalty, config.OwnerID),
		walletFeature:  wallet.NewFeature(services.Wallets),
		catalogFeature: catalog.NewFeature(services.Catalog, services.Penalty, config.OwnerID),
		adminFeature:   admin.NewFeature(services.Snapshot, services.Reports, config.OwnerID),
	}

	// Register slash command handlers
	dg.AddHandler(bot.handleCommands)

	// Open websocket connection
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	return bot, nil
}

// Notifier returns the notifier that posts auction activity through this bot
func (b *Bot) Notifier() *DiscordNotifier {
	return b.notifier
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	name := i.ApplicationCommandData().Name
	log.WithFields(log.Fields{
		"command":   name,
		"channelID": i.ChannelID,
	}).Debug("Handling slash command")

	switch name {
	case "auction":
		b.auctionFeature.HandleCommand(s, i)
	case "group":
		b.groupsFeature.HandleCommand(s, i)
	case "wallet":
		b.walletFeature.HandleCommand(s, i)
	case "club":
		b.catalogFeature.HandleClubCommand(s, i)
	case "duelist":
		b.catalogFeature.HandleDuelistCommand(s, i)
	case "admin":
		b.adminFeature.HandleCommand(s, i)
	}
}
