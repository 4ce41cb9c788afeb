package admin

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"clubauction/bot/common"
	"clubauction/models"
	"clubauction/service"
)

// ReportRunner produces the weekly report on demand
type ReportRunner interface {
	RunOnce(ctx context.Context) (*models.WeeklyReport, error)
}

// Feature handles the owner-only /admin command
type Feature struct {
	snapshotService service.SnapshotService
	reports         ReportRunner
	ownerID         int64
}

// NewFeature creates a new admin feature instance
func NewFeature(snapshotService service.SnapshotService, reports ReportRunner, ownerID int64) *Feature {
	return &Feature{
		snapshotService: snapshotService,
		reports:         reports,
		ownerID:         ownerID,
	}
}

// HandleCommand routes /admin subcommands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	actor, err := common.ResolveActor(i, f.ownerID)
	if err != nil || !actor.IsOwner {
		common.RespondWithError(s, i, "Only the bot owner can use this command.")
		return
	}

	sub, opts := common.SubcommandOptions(i)
	switch sub {
	case "audit":
		f.handleAudit(s, i, opts)
	case "report":
		f.handleReport(s, i)
	default:
		common.RespondWithError(s, i, "Unknown subcommand.")
	}
}
