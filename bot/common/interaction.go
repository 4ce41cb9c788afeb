package common

import (
	"strconv"

	"github.com/bwmarrin/discordgo"

	"clubauction/models"
)

// Options indexes command options by name
type Options map[string]*discordgo.ApplicationCommandInteractionDataOption

// NewOptions builds an index from a list of command options
func NewOptions(opts []*discordgo.ApplicationCommandInteractionDataOption) Options {
	indexed := make(Options, len(opts))
	for _, opt := range opts {
		indexed[opt.Name] = opt
	}
	return indexed
}

// SubcommandOptions returns the subcommand name and its options
func SubcommandOptions(i *discordgo.InteractionCreate) (string, Options) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return "", Options{}
	}
	return options[0].Name, NewOptions(options[0].Options)
}

func (o Options) Int(name string) int64 {
	if opt, ok := o[name]; ok {
		return opt.IntValue()
	}
	return 0
}

func (o Options) String(name string) string {
	if opt, ok := o[name]; ok {
		return opt.StringValue()
	}
	return ""
}

// UserID returns the ID of a user option without resolving it through the session
func (o Options) UserID(name string) int64 {
	opt, ok := o[name]
	if !ok {
		return 0
	}
	value, ok := opt.Value.(string)
	if !ok {
		return 0
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// InvokingUser returns the user who triggered the interaction, in guilds or DMs
func InvokingUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// ResolveActor builds the actor for the invoking user. Guild administrators
// are auction admins; ownerID is the configured bot owner.
func ResolveActor(i *discordgo.InteractionCreate, ownerID int64) (models.Actor, error) {
	user := InvokingUser(i)
	userID, err := strconv.ParseInt(user.ID, 10, 64)
	if err != nil {
		return models.Actor{}, err
	}

	actor := models.Actor{
		UserID:   userID,
		Username: user.Username,
		IsOwner:  ownerID != 0 && ownerID == userID,
	}
	if i.Member != nil {
		actor.IsAdmin = i.Member.Permissions&discordgo.PermissionAdministrator != 0
	}
	return actor, nil
}
