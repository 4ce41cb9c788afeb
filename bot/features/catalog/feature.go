package catalog

import (
	"github.com/bwmarrin/discordgo"

	"clubauction/bot/common"
	"clubauction/service"
)

// Feature handles the /club and /duelist commands
type Feature struct {
	catalogService service.CatalogService
	penaltyService service.PenaltyService
	ownerID        int64
}

// NewFeature creates a new catalog feature instance
func NewFeature(catalogService service.CatalogService, penaltyService service.PenaltyService, ownerID int64) *Feature {
	return &Feature{
		catalogService: catalogService,
		penaltyService: penaltyService,
		ownerID:        ownerID,
	}
}

// HandleClubCommand routes /club subcommands
func (f *Feature) HandleClubCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	sub, opts := common.SubcommandOptions(i)

	switch sub {
	case "register":
		f.handleRegisterClub(s, i, opts)
	case "list":
		f.handleListClubs(s, i)
	case "info":
		f.handleClubInfo(s, i, opts)
	case "setmanager":
		f.handleSetManager(s, i, opts)
	case "manager":
		f.handleManager(s, i, opts)
	default:
		common.RespondWithError(s, i, "Unknown subcommand.")
	}
}

// HandleDuelistCommand routes /duelist subcommands
func (f *Feature) HandleDuelistCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	sub, opts := common.SubcommandOptions(i)

	switch sub {
	case "register":
		f.handleRegisterDuelist(s, i, opts)
	case "list":
		f.handleListDuelists(s, i)
	case "info":
		f.handleDuelistInfo(s, i, opts)
	case "owned":
		f.handleOwnedDuelists(s, i, opts)
	case "penalty":
		f.handleSalaryPenalty(s, i, opts)
	default:
		common.RespondWithError(s, i, "Unknown subcommand.")
	}
}
