package auction

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"clubauction/bot/common"
	"clubauction/models"
	"clubauction/service"
)

// itemKey reads the type and id options shared by most subcommands
func itemKey(opts common.Options) (models.ItemKey, error) {
	itemType, err := models.ParseItemType(opts.String("type"))
	if err != nil {
		return models.ItemKey{}, err
	}
	return models.NewItemKey(itemType, opts.Int("id")), nil
}

func (f *Feature) handleBid(s *discordgo.Session, i *discordgo.InteractionCreate, opts common.Options) {
	ctx := context.Background()

	actor, err := common.ResolveActor(i, f.ownerID)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}
	key, err := itemKey(opts)
	if err != nil {
		common.RespondWithError(s, i, "Item type must be 'club' or 'duelist'.")
		return
	}

	bid, err := f.auctionService.PlaceBid(ctx, actor.UserID, key, opts.Int("amount"))
	if err != nil {
		common.RespondWithOutcome(s, i, "auction bid", err)
		return
	}
	f.channels.RememberChannel(key, i.ChannelID)

	common.RespondWithSuccess(s, i, fmt.Sprintf("New bid of **%s** on %s %d by %s",
		common.FormatAmount(bid.Amount), key.Type, key.ID, common.Mention(actor.UserID)), false)
}

func (f *Feature) handleGroupBid(s *discordgo.Session, i *discordgo.InteractionCreate, opts common.Options) {
	ctx := context.Background()

	actor, err := common.ResolveActor(i, f.ownerID)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}
	key, err := itemKey(opts)
	if err != nil {
		common.RespondWithError(s, i, "Item type must be 'club' or 'duelist'.")
		return
	}

	groupName := opts.String("group")
	bid, err := f.auctionService.PlaceGroupBid(ctx, actor.UserID, groupName, key, opts.Int("amount"))
	if err != nil {
		common.RespondWithOutcome(s, i, "auction groupbid", err)
		return
	}
	f.channels.RememberChannel(key, i.ChannelID)

	common.RespondWithSuccess(s, i, fmt.Sprintf("Group **%s** placed a bid of **%s** on %s %d.",
		models.NormalizeGroupName(groupName), common.FormatAmount(bid.Amount), key.Type, key.ID), false)
}

func (f *Feature) handleInfo(s *discordgo.Session, i *discordgo.InteractionCreate, opts common.Options) {
	key, err := itemKey(opts)
	if err != nil {
		common.RespondWithError(s, i, "Item type must be 'club' or 'duelist'.")
		return
	}

	quote, err := f.auctionService.CurrentBid(context.Background(), key)
	if err != nil {
		common.RespondWithOutcome(s, i, "auction info", err)
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s (%s %d)", quote.ItemName, key.Type, key.ID),
		Color: common.ColorPrimary,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Base price", Value: common.FormatAmount(quote.BasePrice), Inline: true},
			{Name: "Current", Value: common.FormatAmount(quote.Current), Inline: true},
			{Name: "Minimum next bid", Value: common.FormatAmount(quote.MinRequired), Inline: true},
			{Name: "Bids this round", Value: fmt.Sprintf("%d", quote.BidCount), Inline: true},
		},
	}
	if quote.Latest != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Leading", Value: quote.Latest.Bidder.String(), Inline: true,
		})
	}
	if quote.Round.State == service.TimerArmed {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Ends", Value: common.FormatDiscordTimestamp(quote.Round.EndsAt, "R"), Inline: true,
		})
	}

	common.RespondWithEmbed(s, i, embed, false)
}

func (f *Feature) handleActive(s *discordgo.Session, i *discordgo.InteractionCreate) {
	rounds := f.auctionService.ActiveRounds()
	if len(rounds) == 0 {
		common.RespondWithMessage(s, i, "No auctions are running.", true)
		return
	}

	lines := make([]string, 0, len(rounds))
	for _, round := range rounds {
		lines = append(lines, fmt.Sprintf("• %s %d ends %s", round.Key.Type, round.Key.ID,
			common.FormatDiscordTimestamp(round.EndsAt, "R")))
	}
	common.RespondWithMessage(s, i, strings.Join(lines, "\n"), true)
}

func (f *Feature) handleStart(s *discordgo.Session, i *discordgo.InteractionCreate, opts common.Options) {
	actor, err := common.ResolveActor(i, f.ownerID)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}
	key, err := itemKey(opts)
	if err != nil {
		common.RespondWithError(s, i, "Item type must be 'club' or 'duelist'.")
		return
	}

	countdown := time.Duration(opts.Int("seconds")) * time.Second
	status, err := f.auctionService.StartAuction(context.Background(), actor, key, countdown)
	if err != nil {
		common.RespondWithOutcome(s, i, "auction start", err)
		return
	}
	f.channels.RememberChannel(key, i.ChannelID)

	common.RespondWithMessage(s, i, fmt.Sprintf("🔔 Auction started for %s %d! Ends %s unless someone bids.\nUse `/auction bid` to bid.",
		key.Type, key.ID, common.FormatDiscordTimestamp(status.EndsAt, "R")), false)
}

func (f *Feature) handleForceWinner(s *discordgo.Session, i *discordgo.InteractionCreate, opts common.Options) {
	actor, err := common.ResolveActor(i, f.ownerID)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}
	key, err := itemKey(opts)
	if err != nil {
		common.RespondWithError(s, i, "Item type must be 'club' or 'duelist'.")
		return
	}

	var winner models.BidderIdentity
	switch {
	case opts.String("group") != "":
		winner = models.Group(opts.String("group"))
	case opts.UserID("user") != 0:
		winner = models.Individual(opts.UserID("user"))
	default:
		common.RespondWithError(s, i, "Provide either a user or a group as the winner.")
		return
	}

	outcome, err := f.auctionService.ForceWinner(context.Background(), actor, key, winner, opts.Int("amount"))
	if err != nil {
		common.RespondWithOutcome(s, i, "auction forcewinner", err)
		return
	}

	log.WithFields(log.Fields{
		"item":   key.String(),
		"winner": winner.Encode(),
		"actor":  actor.UserID,
	}).Info("Winner forced")

	common.RespondWithSuccess(s, i, fmt.Sprintf("Forced winner %s for %s at %s.",
		outcome.Winner.String(), outcome.ItemName, common.FormatAmount(outcome.Amount)), false)
}

func (f *Feature) handleFreeze(s *discordgo.Session, i *discordgo.InteractionCreate, freeze bool) {
	actor, err := common.ResolveActor(i, f.ownerID)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	if freeze {
		err = f.auctionService.Freeze(context.Background(), actor)
	} else {
		err = f.auctionService.Unfreeze(context.Background(), actor)
	}
	if err != nil {
		common.RespondWithOutcome(s, i, "auction freeze", err)
		return
	}

	if freeze {
		common.RespondWithMessage(s, i, "🔒 Bidding frozen.", false)
	} else {
		common.RespondWithMessage(s, i, "🔓 Bidding unfrozen.", false)
	}
}

func (f *Feature) handleReset(s *discordgo.Session, i *discordgo.InteractionCreate) {
	actor, err := common.ResolveActor(i, f.ownerID)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	cleared, err := f.auctionService.ResetAllAuctions(context.Background(), actor)
	if err != nil {
		common.RespondWithOutcome(s, i, "auction reset", err)
		return
	}

	common.RespondWithSuccess(s, i, fmt.Sprintf("All auctions reset (%d bids cleared).", cleared), true)
}
