package models

import (
	"time"
)

// Bid is a single offer in the current round of an item's auction.
// Bids are ordered by ID; the highest ID is the current bid.
type Bid struct {
	ID        int64          `db:"id"`
	Bidder    BidderIdentity `db:"-"`
	Amount    int64          `db:"amount"`
	ItemType  ItemType       `db:"item_type"`
	ItemID    int64          `db:"item_id"`
	CreatedAt time.Time      `db:"created_at"`
}

// Key returns the item the bid was placed on
func (b *Bid) Key() ItemKey {
	return NewItemKey(b.ItemType, b.ItemID)
}
