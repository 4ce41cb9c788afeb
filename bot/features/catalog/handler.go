package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"clubauction/bot/common"
	"clubauction/models"
)

const unableToProcess = "Unable to process request. Please try again."

func (f *Feature) handleRegisterClub(s *discordgo.Session, i *discordgo.InteractionCreate, opts common.Options) {
	actor, err := common.ResolveActor(i, f.ownerID)
	if err != nil {
		common.RespondWithError(s, i, unableToProcess)
		return
	}

	club, err := f.catalogService.RegisterClub(context.Background(), actor, opts.String("name"), opts.Int("base_price"), opts.String("slogan"))
	if err != nil {
		common.RespondWithOutcome(s, i, "club register", err)
		return
	}

	common.RespondWithSuccess(s, i, fmt.Sprintf("Club **%s** registered with ID %d and base price %s.",
		club.Name, club.ID, common.FormatAmount(club.BasePrice)), false)
}

func (f *Feature) handleListClubs(s *discordgo.Session, i *discordgo.InteractionCreate) {
	clubs, err := f.catalogService.ListClubs(context.Background())
	if err != nil {
		common.RespondWithOutcome(s, i, "club list", err)
		return
	}
	if len(clubs) == 0 {
		common.RespondWithMessage(s, i, "No clubs registered.", true)
		return
	}

	lines := make([]string, 0, len(clubs))
	for _, club := range clubs {
		lines = append(lines, fmt.Sprintf("%d. **%s** base %s, value %s",
			club.ID, club.Name, common.FormatAmount(club.BasePrice), common.FormatAmount(club.MarketValue)))
	}
	common.RespondWithMessage(s, i, strings.Join(lines, "\n"), false)
}

func (f *Feature) handleClubInfo(s *discordgo.Session, i *discordgo.InteractionCreate, opts common.Options) {
	info, err := f.catalogService.GetClubInfo(context.Background(), opts.Int("id"))
	if err != nil {
		common.RespondWithOutcome(s, i, "club info", err)
		return
	}

	common.RespondWithEmbed(s, i, BuildClubEmbed(info), false)
}

func (f *Feature) handleSetManager(s *discordgo.Session, i *discordgo.InteractionCreate, opts common.Options) {
	actor, err := common.ResolveActor(i, f.ownerID)
	if err != nil {
		common.RespondWithError(s, i, unableToProcess)
		return
	}

	managerID := opts.UserID("user")
	club, err := f.catalogService.SetClubManager(context.Background(), actor, opts.String("club"), managerID)
	if err != nil {
		common.RespondWithOutcome(s, i, "club setmanager", err)
		return
	}

	common.RespondWithSuccess(s, i, fmt.Sprintf("%s is now the manager of **%s**.", common.Mention(managerID), club.Name), false)
}

func (f *Feature) handleManager(s *discordgo.Session, i *discordgo.InteractionCreate, opts common.Options) {
	managerID, err := f.catalogService.GetClubManager(context.Background(), opts.String("club"))
	if err != nil {
		common.RespondWithOutcome(s, i, "club manager", err)
		return
	}
	if managerID == nil {
		common.RespondWithMessage(s, i, "That club has no manager.", true)
		return
	}

	common.RespondWithMessage(s, i, fmt.Sprintf("Manager: %s", common.Mention(*managerID)), true)
}

func (f *Feature) handleRegisterDuelist(s *discordgo.Session, i *discordgo.InteractionCreate, opts common.Options) {
	actor, err := common.ResolveActor(i, f.ownerID)
	if err != nil {
		common.RespondWithError(s, i, unableToProcess)
		return
	}

	subject := common.InvokingUser(i)
	if userID := opts.UserID("user"); userID != 0 {
		if resolved := i.ApplicationCommandData().Resolved; resolved != nil {
			if user, found := resolved.Users[strconv.FormatInt(userID, 10)]; found {
				subject = user
			}
		}
	}

	username := opts.String("username")
	if username == "" && subject != nil {
		username = subject.Username
	}
	var avatarURL string
	if subject != nil {
		avatarURL = subject.AvatarURL("")
	}

	duelist, err := f.catalogService.RegisterDuelist(context.Background(), actor, &models.Duelist{
		DiscordUserID:  opts.UserID("user"),
		Username:       username,
		AvatarURL:      avatarURL,
		BasePrice:      opts.Int("base_price"),
		ExpectedSalary: opts.Int("salary"),
	})
	if err != nil {
		common.RespondWithOutcome(s, i, "duelist register", err)
		return
	}

	common.RespondWithSuccess(s, i, fmt.Sprintf("Duelist **%s** registered with ID **%d** (base %s, salary %s).",
		duelist.Username, duelist.ID, common.FormatAmount(duelist.BasePrice), common.FormatAmount(duelist.ExpectedSalary)), false)
}

func (f *Feature) handleListDuelists(s *discordgo.Session, i *discordgo.InteractionCreate) {
	duelists, err := f.catalogService.ListDuelists(context.Background())
	if err != nil {
		common.RespondWithOutcome(s, i, "duelist list", err)
		return
	}
	if len(duelists) == 0 {
		common.RespondWithMessage(s, i, "No duelists registered.", true)
		return
	}

	lines := make([]string, 0, len(duelists))
	for _, d := range duelists {
		lines = append(lines, fmt.Sprintf("%d. **%s** base %s, salary %s, owner %s",
			d.ID, d.Username, common.FormatAmount(d.BasePrice), common.FormatAmount(d.ExpectedSalary), d.OwnedBy.String()))
	}
	common.RespondWithMessage(s, i, strings.Join(lines, "\n"), false)
}

func (f *Feature) handleOwnedDuelists(s *discordgo.Session, i *discordgo.InteractionCreate, opts common.Options) {
	var owner models.BidderIdentity
	switch {
	case opts.String("group") != "":
		owner = models.Group(opts.String("group"))
	case opts.UserID("user") != 0:
		owner = models.Individual(opts.UserID("user"))
	default:
		actor, err := common.ResolveActor(i, f.ownerID)
		if err != nil {
			common.RespondWithError(s, i, unableToProcess)
			return
		}
		owner = models.Individual(actor.UserID)
	}

	duelists, err := f.catalogService.ListDuelistsByOwner(context.Background(), owner)
	if err != nil {
		common.RespondWithOutcome(s, i, "duelist owned", err)
		return
	}
	if len(duelists) == 0 {
		common.RespondWithMessage(s, i, fmt.Sprintf("%s owns no duelists.", owner.String()), true)
		return
	}

	lines := make([]string, 0, len(duelists))
	for _, d := range duelists {
		lines = append(lines, fmt.Sprintf("%d. **%s** salary %s", d.ID, d.Username, common.FormatAmount(d.ExpectedSalary)))
	}
	common.RespondWithMessage(s, i, strings.Join(lines, "\n"), false)
}

func (f *Feature) handleDuelistInfo(s *discordgo.Session, i *discordgo.InteractionCreate, opts common.Options) {
	info, err := f.catalogService.GetDuelist(context.Background(), opts.Int("id"))
	if err != nil {
		common.RespondWithOutcome(s, i, "duelist info", err)
		return
	}

	common.RespondWithEmbed(s, i, BuildDuelistEmbed(info), false)
}

func (f *Feature) handleSalaryPenalty(s *discordgo.Session, i *discordgo.InteractionCreate, opts common.Options) {
	actor, err := common.ResolveActor(i, f.ownerID)
	if err != nil {
		common.RespondWithError(s, i, unableToProcess)
		return
	}

	apply := true
	if opt, ok := opts["apply"]; ok {
		apply = opt.BoolValue()
	}

	result, err := f.penaltyService.ApplySalaryMissPenalty(context.Background(), actor, opts.Int("id"), apply)
	if err != nil {
		common.RespondWithOutcome(s, i, "duelist penalty", err)
		return
	}

	if !result.Applied {
		common.RespondWithMessage(s, i, "Salary deduction skipped.", true)
		return
	}
	common.RespondWithMessage(s, i, fmt.Sprintf("Applied salary deduction of %s for %s (owner %s).",
		common.FormatAmount(result.Penalty), result.DuelistName, result.Owner.String()), false)
}
