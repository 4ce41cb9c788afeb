package groups

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"clubauction/bot/common"
	"clubauction/models"
)

const unableToProcess = "Unable to process request. Please try again."

func (f *Feature) handleCreate(s *discordgo.Session, i *discordgo.InteractionCreate, opts common.Options) {
	actor, err := common.ResolveActor(i, f.ownerID)
	if err != nil {
		common.RespondWithError(s, i, unableToProcess)
		return
	}

	group, err := f.groupService.CreateGroup(context.Background(), actor.UserID, opts.String("name"), opts.Int("funds"))
	if err != nil {
		common.RespondWithOutcome(s, i, "group create", err)
		return
	}

	common.RespondWithSuccess(s, i, fmt.Sprintf("Group **%s** created with %s funds.",
		group.Name, common.FormatAmount(group.Funds)), false)
}

func (f *Feature) handleJoin(s *discordgo.Session, i *discordgo.InteractionCreate, opts common.Options) {
	actor, err := common.ResolveActor(i, f.ownerID)
	if err != nil {
		common.RespondWithError(s, i, unableToProcess)
		return
	}

	group, err := f.groupService.JoinGroup(context.Background(), actor.UserID, opts.String("name"))
	if err != nil {
		common.RespondWithOutcome(s, i, "group join", err)
		return
	}

	common.RespondWithSuccess(s, i, fmt.Sprintf("%s joined **%s**.", common.Mention(actor.UserID), group.Name), false)
}

func (f *Feature) handleLeave(s *discordgo.Session, i *discordgo.InteractionCreate, opts common.Options) {
	actor, err := common.ResolveActor(i, f.ownerID)
	if err != nil {
		common.RespondWithError(s, i, unableToProcess)
		return
	}

	result, err := f.penaltyService.LeaveGroup(context.Background(), actor.UserID, opts.String("name"))
	if err != nil {
		common.RespondWithOutcome(s, i, "group leave", err)
		return
	}

	common.RespondWithMessage(s, i, fmt.Sprintf("%s left **%s**. Group penalized %s.",
		common.Mention(actor.UserID), result.GroupName, common.FormatAmount(result.Penalty)), false)
}

func (f *Feature) handleDeposit(s *discordgo.Session, i *discordgo.InteractionCreate, opts common.Options) {
	actor, err := common.ResolveActor(i, f.ownerID)
	if err != nil {
		common.RespondWithError(s, i, unableToProcess)
		return
	}

	name := opts.String("name")
	change, err := f.groupService.Deposit(context.Background(), actor.UserID, name, opts.Int("amount"))
	if err != nil {
		common.RespondWithOutcome(s, i, "group deposit", err)
		return
	}

	common.RespondWithSuccess(s, i, fmt.Sprintf("Deposited %s to **%s**. Funds now %s.",
		common.FormatAmount(change.Applied), models.NormalizeGroupName(name), common.FormatAmount(change.After)), false)
}

func (f *Feature) handleWithdraw(s *discordgo.Session, i *discordgo.InteractionCreate, opts common.Options) {
	actor, err := common.ResolveActor(i, f.ownerID)
	if err != nil {
		common.RespondWithError(s, i, unableToProcess)
		return
	}

	name := opts.String("name")
	change, err := f.groupService.Withdraw(context.Background(), actor.UserID, name, opts.Int("amount"))
	if err != nil {
		common.RespondWithOutcome(s, i, "group withdraw", err)
		return
	}

	common.RespondWithSuccess(s, i, fmt.Sprintf("Withdrew %s from **%s**. Funds now %s.",
		common.FormatAmount(change.Applied), models.NormalizeGroupName(name), common.FormatAmount(change.After)), true)
}

func (f *Feature) handleInfo(s *discordgo.Session, i *discordgo.InteractionCreate, opts common.Options) {
	info, err := f.groupService.GetGroup(context.Background(), opts.String("name"))
	if err != nil {
		common.RespondWithOutcome(s, i, "group info", err)
		return
	}

	members := make([]string, 0, len(info.Members))
	for _, id := range info.Members {
		members = append(members, common.Mention(id))
	}
	memberList := strings.Join(members, ", ")
	if memberList == "" {
		memberList = "None"
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Group %s", info.Group.Name),
		Color: common.ColorPrimary,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Funds", Value: common.FormatAmount(info.Group.Funds), Inline: true},
			{Name: "Members", Value: memberList},
		},
	}
	common.RespondWithEmbed(s, i, embed, false)
}

func (f *Feature) handleMine(s *discordgo.Session, i *discordgo.InteractionCreate) {
	actor, err := common.ResolveActor(i, f.ownerID)
	if err != nil {
		common.RespondWithError(s, i, unableToProcess)
		return
	}

	groups, err := f.groupService.GroupsForUser(context.Background(), actor.UserID)
	if err != nil {
		common.RespondWithOutcome(s, i, "group mine", err)
		return
	}
	if len(groups) == 0 {
		common.RespondWithMessage(s, i, "You are not in any group.", true)
		return
	}

	lines := make([]string, 0, len(groups))
	for _, group := range groups {
		lines = append(lines, fmt.Sprintf("• **%s**: %s", group.Name, common.FormatAmount(group.Funds)))
	}
	common.RespondWithMessage(s, i, strings.Join(lines, "\n"), true)
}

func (f *Feature) handleAdjust(s *discordgo.Session, i *discordgo.InteractionCreate, opts common.Options) {
	actor, err := common.ResolveActor(i, f.ownerID)
	if err != nil {
		common.RespondWithError(s, i, unableToProcess)
		return
	}

	name := opts.String("name")
	change, err := f.penaltyService.AdjustGroupFunds(context.Background(), actor, name, opts.Int("delta"))
	if err != nil {
		common.RespondWithOutcome(s, i, "group adjust", err)
		return
	}

	common.RespondWithSuccess(s, i, fmt.Sprintf("Adjusted **%s**: %s → %s.",
		models.NormalizeGroupName(name), common.FormatAmount(change.Before), common.FormatAmount(change.After)), false)
}
