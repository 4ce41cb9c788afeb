package models

import (
	"time"
)

// Duelist is a player who can be auctioned to a club owner
type Duelist struct {
	ID             int64          `db:"id"`
	DiscordUserID  int64          `db:"discord_user_id"`
	Username       string         `db:"username"`
	AvatarURL      string         `db:"avatar_url"`
	BasePrice      int64          `db:"base_price"`
	ExpectedSalary int64          `db:"expected_salary"`
	OwnedBy        BidderIdentity `db:"-"`
	RegisteredAt   time.Time      `db:"registered_at"`
}

// Key returns the auction key of the duelist
func (d *Duelist) Key() ItemKey {
	return NewItemKey(ItemTypeDuelist, d.ID)
}

// IsFreeAgent reports whether nobody owns the duelist
func (d *Duelist) IsFreeAgent() bool {
	return d.OwnedBy.IsZero()
}

// Contract is produced when a duelist auction finalizes. History is append-only;
// the most recent contract for a duelist is the active one.
type Contract struct {
	ID            int64          `db:"id"`
	DuelistID     int64          `db:"duelist_id"`
	Owner         BidderIdentity `db:"-"`
	PurchasePrice int64          `db:"purchase_price"`
	Salary        int64          `db:"salary"`
	SignedAt      time.Time      `db:"signed_at"`
}
