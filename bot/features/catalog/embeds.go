package catalog

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"clubauction/bot/common"
	"clubauction/models"
	"clubauction/service"
)

// BuildClubEmbed renders a club and its current round
func BuildClubEmbed(info *models.ClubInfo) *discordgo.MessageEmbed {
	club := info.Club
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s (ID %d)", club.Name, club.ID),
		Description: club.Slogan,
		Color:       common.ColorPrimary,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Base price", Value: common.FormatAmount(club.BasePrice), Inline: true},
			{Name: "Market value", Value: common.FormatAmount(club.MarketValue), Inline: true},
			{Name: "Current bid", Value: common.FormatAmount(info.CurrentBid), Inline: true},
			{Name: "Bids this round", Value: fmt.Sprintf("%d", info.BidCount), Inline: true},
		},
	}
	if club.ManagerID != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Manager", Value: common.Mention(*club.ManagerID), Inline: true,
		})
	}
	return embed
}

// BuildDuelistEmbed renders a duelist with its contract
func BuildDuelistEmbed(info *service.DuelistInfo) *discordgo.MessageEmbed {
	d := info.Duelist
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s (ID %d)", d.Username, d.ID),
		Color: common.ColorPrimary,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Base price", Value: common.FormatAmount(d.BasePrice), Inline: true},
			{Name: "Expected salary", Value: common.FormatAmount(d.ExpectedSalary), Inline: true},
			{Name: "Current bid", Value: common.FormatAmount(info.CurrentBid), Inline: true},
		},
	}
	if d.AvatarURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: d.AvatarURL}
	}

	if info.Contract != nil {
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: "Owner", Value: info.Contract.Owner.String(), Inline: true},
			&discordgo.MessageEmbedField{Name: "Purchase price", Value: common.FormatAmount(info.Contract.PurchasePrice), Inline: true},
			&discordgo.MessageEmbedField{Name: "Salary", Value: common.FormatAmount(info.Contract.Salary), Inline: true},
		)
	} else {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Owner", Value: "Free agent", Inline: true})
	}
	return embed
}
