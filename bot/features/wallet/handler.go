package wallet

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"clubauction/bot/common"
)

func (f *Feature) handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	actor, err := common.ResolveActor(i, 0)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	balance, err := f.walletService.Balance(context.Background(), actor.UserID)
	if err != nil {
		common.RespondWithOutcome(s, i, "wallet balance", err)
		return
	}

	common.RespondWithMessage(s, i, fmt.Sprintf("Your wallet balance: **%s**", common.FormatAmount(balance)), true)
}

func (f *Feature) handleDeposit(s *discordgo.Session, i *discordgo.InteractionCreate, opts common.Options) {
	actor, err := common.ResolveActor(i, 0)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	balance, err := f.walletService.Deposit(context.Background(), actor.UserID, opts.Int("amount"))
	if err != nil {
		common.RespondWithOutcome(s, i, "wallet deposit", err)
		return
	}

	common.RespondWithSuccess(s, i, fmt.Sprintf("Deposited. New balance: **%s**", common.FormatAmount(balance)), true)
}

func (f *Feature) handleWithdraw(s *discordgo.Session, i *discordgo.InteractionCreate, opts common.Options) {
	actor, err := common.ResolveActor(i, 0)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	balance, err := f.walletService.Withdraw(context.Background(), actor.UserID, opts.Int("amount"))
	if err != nil {
		common.RespondWithOutcome(s, i, "wallet withdraw", err)
		return
	}

	common.RespondWithSuccess(s, i, fmt.Sprintf("Withdrawn. New balance: **%s**", common.FormatAmount(balance)), true)
}

func (f *Feature) handleHistory(s *discordgo.Session, i *discordgo.InteractionCreate, opts common.Options) {
	actor, err := common.ResolveActor(i, 0)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	history, err := f.walletService.History(context.Background(), actor.UserID, int(opts.Int("limit")))
	if err != nil {
		common.RespondWithOutcome(s, i, "wallet history", err)
		return
	}
	if len(history) == 0 {
		common.RespondWithMessage(s, i, "No wallet transactions yet.", true)
		return
	}

	lines := make([]string, 0, len(history))
	for _, tx := range history {
		lines = append(lines, fmt.Sprintf("%s %s **%s**",
			common.FormatDiscordTimestamp(tx.CreatedAt, "f"), tx.Type, common.FormatAmount(tx.Amount)))
	}
	common.RespondWithMessage(s, i, strings.Join(lines, "\n"), true)
}

func (f *Feature) handleProfile(s *discordgo.Session, i *discordgo.InteractionCreate, opts common.Options) {
	subject := common.InvokingUser(i)
	if userID := opts.UserID("user"); userID != 0 {
		subject = nil
		if resolved := i.ApplicationCommandData().Resolved; resolved != nil {
			subject = resolved.Users[strconv.FormatInt(userID, 10)]
		}
		if subject == nil {
			subject = &discordgo.User{ID: strconv.FormatInt(userID, 10), Username: strconv.FormatInt(userID, 10)}
		}
	}
	if subject == nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	userID, err := strconv.ParseInt(subject.ID, 10, 64)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	profile, err := f.walletService.Profile(context.Background(), userID)
	if err != nil {
		common.RespondWithOutcome(s, i, "wallet profile", err)
		return
	}

	common.RespondWithEmbed(s, i, BuildProfileEmbed(profile, subject), false)
}
