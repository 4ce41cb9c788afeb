package groups

import (
	"github.com/bwmarrin/discordgo"

	"clubauction/bot/common"
	"clubauction/service"
)

// Feature handles the /group command
type Feature struct {
	groupService   service.GroupService
	penaltyService service.PenaltyService
	ownerID        int64
}

// NewFeature creates a new investor groups feature instance
func NewFeature(groupService service.GroupService, penaltyService service.PenaltyService, ownerID int64) *Feature {
	return &Feature{
		groupService:   groupService,
		penaltyService: penaltyService,
		ownerID:        ownerID,
	}
}

// HandleCommand routes /group subcommands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	sub, opts := common.SubcommandOptions(i)

	switch sub {
	case "create":
		f.handleCreate(s, i, opts)
	case "join":
		f.handleJoin(s, i, opts)
	case "leave":
		f.handleLeave(s, i, opts)
	case "deposit":
		f.handleDeposit(s, i, opts)
	case "withdraw":
		f.handleWithdraw(s, i, opts)
	case "info":
		f.handleInfo(s, i, opts)
	case "mine":
		f.handleMine(s, i)
	case "adjust":
		f.handleAdjust(s, i, opts)
	default:
		common.RespondWithError(s, i, "Unknown subcommand.")
	}
}
