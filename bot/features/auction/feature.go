package auction

import (
	"github.com/bwmarrin/discordgo"

	"clubauction/bot/common"
	"clubauction/models"
	"clubauction/service"
)

// ChannelTracker remembers where an item's auction is being run so the
// result can be announced there
type ChannelTracker interface {
	RememberChannel(key models.ItemKey, channelID string)
}

// Feature handles the /auction command
type Feature struct {
	auctionService service.AuctionService
	channels       ChannelTracker
	ownerID        int64
}

// NewFeature creates a new auction feature instance
func NewFeature(auctionService service.AuctionService, channels ChannelTracker, ownerID int64) *Feature {
	return &Feature{
		auctionService: auctionService,
		channels:       channels,
		ownerID:        ownerID,
	}
}

// HandleCommand routes /auction subcommands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	sub, opts := common.SubcommandOptions(i)

	switch sub {
	case "bid":
		f.handleBid(s, i, opts)
	case "groupbid":
		f.handleGroupBid(s, i, opts)
	case "info":
		f.handleInfo(s, i, opts)
	case "active":
		f.handleActive(s, i)
	case "start":
		f.handleStart(s, i, opts)
	case "forcewinner":
		f.handleForceWinner(s, i, opts)
	case "freeze":
		f.handleFreeze(s, i, true)
	case "unfreeze":
		f.handleFreeze(s, i, false)
	case "reset":
		f.handleReset(s, i)
	default:
		common.RespondWithError(s, i, "Unknown subcommand.")
	}
}
