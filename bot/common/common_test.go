package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubauction/service"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount   int64
		expected string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1103, "1,103"},
		{1234567, "1,234,567"},
		{-25000, "-25,000"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatAmount(tt.amount))
		})
	}
}

func TestOutcomeMessage(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		expected   string
		unexpected bool
	}{
		{
			name:     "low bid",
			err:      &service.BidRejectedError{Reason: service.RejectInsufficientBid, Current: 1000, MinRequired: 1103},
			expected: "Minimum required bid is 1,103 (current 1,000).",
		},
		{
			name:     "group lacks funds",
			err:      fmt.Errorf("wrapped: %w", &service.BidRejectedError{Reason: service.RejectInsufficientFunds, Available: 500}),
			expected: "Group lacks funds (available 500).",
		},
		{
			name:     "frozen",
			err:      &service.BidRejectedError{Reason: service.RejectAuctionFrozen},
			expected: "Bidding is currently frozen by an admin.",
		},
		{
			name:     "plain rejection",
			err:      service.ErrInsufficientFunds,
			expected: "Insufficient funds.",
		},
		{
			name:     "not found",
			err:      &service.NotFoundError{Entity: "club", Key: "9"},
			expected: "Club 9 not found.",
		},
		{
			name:     "unauthorized",
			err:      service.ErrUnauthorized,
			expected: "You are not allowed to use this command.",
		},
		{
			name:       "infrastructure failure",
			err:        errors.New("connection reset"),
			expected:   "Something went wrong. Please try again.",
			unexpected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, unexpected := OutcomeMessage(tt.err)
			assert.Equal(t, tt.expected, msg)
			assert.Equal(t, tt.unexpected, unexpected)
		})
	}
}

func TestOptions(t *testing.T) {
	opts := NewOptions([]*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "amount", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(1103)},
		{Name: "group", Type: discordgo.ApplicationCommandOptionString, Value: "lions"},
		{Name: "user", Type: discordgo.ApplicationCommandOptionUser, Value: "123456789"},
	})

	assert.Equal(t, int64(1103), opts.Int("amount"))
	assert.Equal(t, "lions", opts.String("group"))
	assert.Equal(t, int64(123456789), opts.UserID("user"))

	assert.Zero(t, opts.Int("missing"))
	assert.Empty(t, opts.String("missing"))
	assert.Zero(t, opts.UserID("missing"))
}

func TestResolveActor(t *testing.T) {
	interaction := func(userID string, permissions int64) *discordgo.InteractionCreate {
		return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
			Member: &discordgo.Member{
				User:        &discordgo.User{ID: userID, Username: "kaiba"},
				Permissions: permissions,
			},
		}}
	}

	t.Run("guild administrator", func(t *testing.T) {
		actor, err := ResolveActor(interaction("42", discordgo.PermissionAdministrator), 0)

		require.NoError(t, err)
		assert.Equal(t, int64(42), actor.UserID)
		assert.True(t, actor.IsAdmin)
		assert.False(t, actor.IsOwner)
	})

	t.Run("owner without guild permissions", func(t *testing.T) {
		actor, err := ResolveActor(interaction("42", 0), 42)

		require.NoError(t, err)
		assert.True(t, actor.IsOwner)
		assert.True(t, actor.CanAdminister())
	})

	t.Run("direct message", func(t *testing.T) {
		i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
			User: &discordgo.User{ID: "7", Username: "joey"},
		}}

		actor, err := ResolveActor(i, 42)

		require.NoError(t, err)
		assert.Equal(t, int64(7), actor.UserID)
		assert.False(t, actor.CanAdminister())
	})

	t.Run("malformed ID", func(t *testing.T) {
		_, err := ResolveActor(interaction("not-a-number", 0), 0)

		assert.Error(t, err)
	})
}
