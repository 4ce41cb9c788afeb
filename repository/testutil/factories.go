package testutil

import (
	"time"

	"clubauction/models"
)

// CreateTestClub creates a club with default values
func CreateTestClub(name string) *models.Club {
	return &models.Club{
		Name:        name,
		BasePrice:   1000,
		Slogan:      "Never give up",
		MarketValue: 1000,
		CreatedAt:   time.Now(),
	}
}

// CreateTestDuelist creates a free agent duelist with default values
func CreateTestDuelist(discordUserID int64, username string) *models.Duelist {
	return &models.Duelist{
		DiscordUserID:  discordUserID,
		Username:       username,
		BasePrice:      500,
		ExpectedSalary: 100,
		RegisteredAt:   time.Now(),
	}
}

// CreateTestGroup creates an investor group with the given funds
func CreateTestGroup(name string, funds int64) *models.InvestorGroup {
	return &models.InvestorGroup{
		Name:      models.NormalizeGroupName(name),
		Funds:     funds,
		CreatedAt: time.Now(),
	}
}

// CreateTestBid creates a bid on an item
func CreateTestBid(bidder models.BidderIdentity, key models.ItemKey, amount int64) *models.Bid {
	return &models.Bid{
		Bidder:    bidder,
		Amount:    amount,
		ItemType:  key.Type,
		ItemID:    key.ID,
		CreatedAt: time.Now(),
	}
}
