package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"clubauction/bot/common"
	"clubauction/events"
	"clubauction/models"
)

// messageSender is the subset of *discordgo.Session the notifier needs
type messageSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
}

// DiscordNotifier announces auction activity in the channel where each
// auction was run, falling back to the report channel
type DiscordNotifier struct {
	sender          messageSender
	reportChannelID string

	mu       sync.Mutex
	channels map[models.ItemKey]string
	leaders  map[models.ItemKey]int64
}

// NewDiscordNotifier creates a notifier that posts through the given session
func NewDiscordNotifier(sender messageSender, reportChannelID string) *DiscordNotifier {
	return &DiscordNotifier{
		sender:          sender,
		reportChannelID: reportChannelID,
		channels:        make(map[models.ItemKey]string),
		leaders:         make(map[models.ItemKey]int64),
	}
}

// RememberChannel records the channel an auction command was used in
func (n *DiscordNotifier) RememberChannel(key models.ItemKey, channelID string) {
	if channelID == "" {
		return
	}
	n.mu.Lock()
	n.channels[key] = channelID
	n.mu.Unlock()
}

func (n *DiscordNotifier) channelFor(key models.ItemKey) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if channelID, ok := n.channels[key]; ok {
		return channelID
	}
	return n.reportChannelID
}

func (n *DiscordNotifier) forget(key models.ItemKey) {
	n.mu.Lock()
	delete(n.channels, key)
	delete(n.leaders, key)
	n.mu.Unlock()
}

func (n *DiscordNotifier) send(ctx context.Context, channelID, content string) error {
	if channelID == "" {
		log.WithField("content", content).Debug("No channel configured, dropping notification")
		return nil
	}
	if _, err := n.sender.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to send message to channel %s: %w", channelID, err)
	}
	return nil
}

func (n *DiscordNotifier) directMessage(ctx context.Context, userID int64, content string) error {
	channel, err := n.sender.UserChannelCreate(strconv.FormatInt(userID, 10), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to open DM with %d: %w", userID, err)
	}
	return n.send(ctx, channel.ID, content)
}

func itemLabel(key models.ItemKey, name string) string {
	if name == "" {
		return key.String()
	}
	return fmt.Sprintf("%s %s (ID %d)", key.Type, name, key.ID)
}

func (n *DiscordNotifier) NotifyAuctionStarted(ctx context.Context, event events.AuctionStartedEvent) error {
	content := fmt.Sprintf("🔨 Auction started for %s. Opening price **%s**, ends %s.",
		itemLabel(event.Item, event.ItemName),
		common.FormatAmount(event.BasePrice),
		common.FormatDiscordTimestamp(event.EndsAt, "R"))
	return n.send(ctx, n.channelFor(event.Item), content)
}

// NotifyBidPlaced tells the previously leading individual that they were outbid
func (n *DiscordNotifier) NotifyBidPlaced(ctx context.Context, event events.BidPlacedEvent) error {
	newLeader, _ := event.Bidder.UserID()

	n.mu.Lock()
	previous := n.leaders[event.Item]
	n.leaders[event.Item] = newLeader
	n.mu.Unlock()

	if previous == 0 || previous == newLeader {
		return nil
	}
	content := fmt.Sprintf("You were outbid on %s. New bid: **%s** by %s.",
		itemLabel(event.Item, event.ItemName), common.FormatAmount(event.Amount), event.Bidder.String())
	return n.directMessage(ctx, previous, content)
}

// NotifyGroupBidPlaced DMs every member of the group except the one who bid
func (n *DiscordNotifier) NotifyGroupBidPlaced(ctx context.Context, event events.GroupBidPlacedEvent) error {
	content := fmt.Sprintf("Your group **%s** bid **%s** on %s (placed by %s).",
		event.GroupName, common.FormatAmount(event.Amount), itemLabel(event.Item, event.ItemName), common.Mention(event.PlacedBy))

	var errs []error
	for _, member := range event.Members {
		if member == event.PlacedBy {
			continue
		}
		if err := n.directMessage(ctx, member, content); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (n *DiscordNotifier) NotifyAuctionEnded(ctx context.Context, event events.AuctionEndedEvent) error {
	channelID := n.channelFor(event.Item)
	n.forget(event.Item)

	var content string
	switch event.Item.Type {
	case models.ItemTypeDuelist:
		content = fmt.Sprintf("🏁 Duelist auction ended. %s signed to **%s** for **%s**.",
			event.ItemName, event.Winner.String(), common.FormatAmount(event.Amount))
	default:
		content = fmt.Sprintf("🏁 Auction ended for %s. Winner: **%s** for **%s**.",
			itemLabel(event.Item, event.ItemName), event.Winner.String(), common.FormatAmount(event.Amount))
	}
	if event.Forced {
		content += " (set by the owner)"
	}
	return n.send(ctx, channelID, content)
}

func (n *DiscordNotifier) NotifyNoWinner(ctx context.Context, event events.AuctionNoWinnerEvent) error {
	channelID := n.channelFor(event.Item)
	n.forget(event.Item)
	return n.send(ctx, channelID, fmt.Sprintf("Auction ended with no bids for %s.", itemLabel(event.Item, event.ItemName)))
}

// PostReport posts the weekly market report to the report channel
func (n *DiscordNotifier) PostReport(ctx context.Context, report *models.WeeklyReport) error {
	if n.reportChannelID == "" {
		log.Debug("No report channel configured, skipping weekly report")
		return nil
	}
	if _, err := n.sender.ChannelMessageSendEmbed(n.reportChannelID, BuildReportEmbed(report), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to post weekly report: %w", err)
	}
	return nil
}

// BuildReportEmbed renders a weekly report
func BuildReportEmbed(report *models.WeeklyReport) *discordgo.MessageEmbed {
	topGroups := "No group purchases this week."
	if len(report.TopGroups) > 0 {
		topGroups = ""
		for rank, spend := range report.TopGroups {
			topGroups += fmt.Sprintf("%d. **%s** %s\n", rank+1, spend.GroupName, common.FormatAmount(spend.Amount))
		}
	}

	return &discordgo.MessageEmbed{
		Title: "📈 Weekly market report",
		Description: fmt.Sprintf("%s to %s",
			common.FormatDiscordTimestamp(report.From, "D"), common.FormatDiscordTimestamp(report.To, "D")),
		Color: common.ColorPrimary,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Sales", Value: strconv.Itoa(report.TotalSales), Inline: true},
			{Name: "Volume", Value: common.FormatAmount(report.TotalVolume), Inline: true},
			{Name: "Top groups", Value: topGroups},
		},
		Timestamp: report.To.Format(time.RFC3339),
	}
}
