package wallet

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"clubauction/bot/common"
	"clubauction/service"
)

// BuildProfileEmbed renders a user's wallet, groups and open bids
func BuildProfileEmbed(profile *service.UserProfile, user *discordgo.User) *discordgo.MessageEmbed {
	title := "Profile"
	if user != nil {
		title = "Profile: " + user.Username
	}

	groups := "None"
	if len(profile.Groups) > 0 {
		names := make([]string, 0, len(profile.Groups))
		for _, g := range profile.Groups {
			names = append(names, g.Name)
		}
		groups = strings.Join(names, ", ")
	}

	bids := "No recent bids"
	if len(profile.RecentBids) > 0 {
		lines := make([]string, 0, len(profile.RecentBids))
		for _, b := range profile.RecentBids {
			lines = append(lines, fmt.Sprintf("%s %d: **%s**", b.ItemType, b.ItemID, common.FormatAmount(b.Amount)))
		}
		bids = strings.Join(lines, "\n")
	}

	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: common.Mention(profile.UserID),
		Color:       common.ColorSuccess,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Wallet", Value: common.FormatAmount(profile.Balance), Inline: true},
			{Name: "Groups", Value: groups},
			{Name: "Recent bids", Value: bids},
		},
	}
	if user != nil {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: user.AvatarURL("")}
	}
	return embed
}
