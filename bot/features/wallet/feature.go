package wallet

import (
	"github.com/bwmarrin/discordgo"

	"clubauction/bot/common"
	"clubauction/service"
)

// Feature handles the /wallet command
type Feature struct {
	walletService service.WalletService
}

func NewFeature(walletService service.WalletService) *Feature {
	return &Feature{walletService: walletService}
}

func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	sub, opts := common.SubcommandOptions(i)

	switch sub {
	case "balance":
		f.handleBalance(s, i)
	case "deposit":
		f.handleDeposit(s, i, opts)
	case "withdraw":
		f.handleWithdraw(s, i, opts)
	case "history":
		f.handleHistory(s, i, opts)
	case "profile":
		f.handleProfile(s, i, opts)
	default:
		common.RespondWithError(s, i, "Unknown subcommand.")
	}
}
