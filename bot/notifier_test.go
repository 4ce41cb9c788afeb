package bot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubauction/events"
	"clubauction/models"
)

type sentMessage struct {
	channelID string
	content   string
	embed     *discordgo.MessageEmbed
}

type fakeSender struct {
	mu       sync.Mutex
	sent     []sentMessage
	failDMTo string
}

func (f *fakeSender) ChannelMessageSend(channelID string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{channelID: channelID, content: content})
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

func (f *fakeSender) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{channelID: channelID, embed: embed})
	return &discordgo.Message{ChannelID: channelID}, nil
}

func (f *fakeSender) UserChannelCreate(recipientID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if recipientID == f.failDMTo {
		return nil, errors.New("cannot send messages to this user")
	}
	return &discordgo.Channel{ID: "dm-" + recipientID}, nil
}

func (f *fakeSender) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

func TestDiscordNotifier_AuctionEnded(t *testing.T) {
	ctx := context.Background()
	club := models.NewItemKey(models.ItemTypeClub, 1)

	t.Run("announces in the channel the auction ran in", func(t *testing.T) {
		sender := &fakeSender{}
		notifier := NewDiscordNotifier(sender, "reports")
		notifier.RememberChannel(club, "auction-floor")

		err := notifier.NotifyAuctionEnded(ctx, events.AuctionEndedEvent{
			Item:     club,
			ItemName: "Red Lions",
			Winner:   models.Group("g1"),
			Amount:   1100,
		})

		require.NoError(t, err)
		msgs := sender.messages()
		require.Len(t, msgs, 1)
		assert.Equal(t, "auction-floor", msgs[0].channelID)
		assert.Equal(t, "🏁 Auction ended for club Red Lions (ID 1). Winner: **g1 (group)** for **1,100**.", msgs[0].content)
	})

	t.Run("falls back to the report channel", func(t *testing.T) {
		sender := &fakeSender{}
		notifier := NewDiscordNotifier(sender, "reports")

		err := notifier.NotifyAuctionEnded(ctx, events.AuctionEndedEvent{
			Item:     models.NewItemKey(models.ItemTypeDuelist, 3),
			ItemName: "kaiba",
			Winner:   models.Individual(42),
			Amount:   600,
		})

		require.NoError(t, err)
		msgs := sender.messages()
		require.Len(t, msgs, 1)
		assert.Equal(t, "reports", msgs[0].channelID)
		assert.Equal(t, "🏁 Duelist auction ended. kaiba signed to **<@42>** for **600**.", msgs[0].content)
	})

	t.Run("channel is forgotten once the round closes", func(t *testing.T) {
		sender := &fakeSender{}
		notifier := NewDiscordNotifier(sender, "reports")
		notifier.RememberChannel(club, "auction-floor")

		require.NoError(t, notifier.NotifyNoWinner(ctx, events.AuctionNoWinnerEvent{Item: club, ItemName: "Red Lions"}))
		require.NoError(t, notifier.NotifyNoWinner(ctx, events.AuctionNoWinnerEvent{Item: club, ItemName: "Red Lions"}))

		msgs := sender.messages()
		require.Len(t, msgs, 2)
		assert.Equal(t, "auction-floor", msgs[0].channelID)
		assert.Equal(t, "reports", msgs[1].channelID)
		assert.Contains(t, msgs[0].content, "Auction ended with no bids")
	})

	t.Run("no channel configured drops the message", func(t *testing.T) {
		sender := &fakeSender{}
		notifier := NewDiscordNotifier(sender, "")

		err := notifier.NotifyNoWinner(ctx, events.AuctionNoWinnerEvent{Item: club})

		require.NoError(t, err)
		assert.Empty(t, sender.messages())
	})
}

func TestDiscordNotifier_Outbid(t *testing.T) {
	ctx := context.Background()
	club := models.NewItemKey(models.ItemTypeClub, 1)
	sender := &fakeSender{}
	notifier := NewDiscordNotifier(sender, "reports")

	require.NoError(t, notifier.NotifyBidPlaced(ctx, events.BidPlacedEvent{Item: club, Bidder: models.Individual(42), Amount: 1100}))
	assert.Empty(t, sender.messages())

	// Raising your own bid is not an outbid
	require.NoError(t, notifier.NotifyBidPlaced(ctx, events.BidPlacedEvent{Item: club, Bidder: models.Individual(42), Amount: 1200}))
	assert.Empty(t, sender.messages())

	require.NoError(t, notifier.NotifyBidPlaced(ctx, events.BidPlacedEvent{Item: club, ItemName: "Red Lions", Bidder: models.Group("g1"), Amount: 1300}))

	msgs := sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "dm-42", msgs[0].channelID)
	assert.Equal(t, "You were outbid on club Red Lions (ID 1). New bid: **1,300** by g1 (group).", msgs[0].content)

	// Groups are told through the group bid notification instead
	require.NoError(t, notifier.NotifyBidPlaced(ctx, events.BidPlacedEvent{Item: club, Bidder: models.Individual(7), Amount: 1400}))
	assert.Len(t, sender.messages(), 1)
}

func TestDiscordNotifier_GroupBidPlaced(t *testing.T) {
	ctx := context.Background()
	sender := &fakeSender{failDMTo: "3"}
	notifier := NewDiscordNotifier(sender, "reports")

	err := notifier.NotifyGroupBidPlaced(ctx, events.GroupBidPlacedEvent{
		Item:      models.NewItemKey(models.ItemTypeClub, 1),
		ItemName:  "Red Lions",
		GroupName: "g1",
		PlacedBy:  1,
		Members:   []int64{1, 2, 3},
		Amount:    1100,
	})

	assert.Error(t, err)
	msgs := sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "dm-2", msgs[0].channelID)
	assert.Equal(t, "Your group **g1** bid **1,100** on club Red Lions (ID 1) (placed by <@1>).", msgs[0].content)
}

func TestDiscordNotifier_PostReport(t *testing.T) {
	to := time.Date(2024, 5, 8, 12, 0, 0, 0, time.UTC)
	report := &models.WeeklyReport{
		From:        to.Add(-7 * 24 * time.Hour),
		To:          to,
		TotalSales:  3,
		TotalVolume: 2500,
		TopGroups:   []models.GroupSpend{{GroupName: "g1", Amount: 1400}},
	}

	t.Run("posts an embed", func(t *testing.T) {
		sender := &fakeSender{}
		notifier := NewDiscordNotifier(sender, "reports")

		require.NoError(t, notifier.PostReport(context.Background(), report))

		msgs := sender.messages()
		require.Len(t, msgs, 1)
		assert.Equal(t, "reports", msgs[0].channelID)
		require.NotNil(t, msgs[0].embed)
		require.Len(t, msgs[0].embed.Fields, 3)
		assert.Equal(t, "3", msgs[0].embed.Fields[0].Value)
		assert.Equal(t, "2,500", msgs[0].embed.Fields[1].Value)
		assert.Equal(t, "1. **g1** 1,400\n", msgs[0].embed.Fields[2].Value)
	})

	t.Run("skipped without a report channel", func(t *testing.T) {
		sender := &fakeSender{}
		notifier := NewDiscordNotifier(sender, "")

		require.NoError(t, notifier.PostReport(context.Background(), report))
		assert.Empty(t, sender.messages())
	})
}
