package models

import (
	"time"
)

// Club is a singleton-per-name auctionable entity
type Club struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	BasePrice   int64     `db:"base_price"`
	Slogan      string    `db:"slogan"`
	MarketValue int64     `db:"market_value"`
	ManagerID   *int64    `db:"manager_id"`
	CreatedAt   time.Time `db:"created_at"`
}

// Key returns the auction key of the club
func (c *Club) Key() ItemKey {
	return NewItemKey(ItemTypeClub, c.ID)
}

// MarketValuePoint is a single entry of a club's market value history
type MarketValuePoint struct {
	ID         int64     `db:"id"`
	ClubID     int64     `db:"club_id"`
	Value      int64     `db:"value"`
	RecordedAt time.Time `db:"recorded_at"`
}

// SaleHistory is the append-only record of a finalized club auction
type SaleHistory struct {
	ID                int64          `db:"id"`
	ClubID            int64          `db:"club_id"`
	Winner            BidderIdentity `db:"-"`
	Amount            int64          `db:"amount"`
	MarketValueAtSale int64          `db:"market_value_at_sale"`
	Forced            bool           `db:"forced"`
	SoldAt            time.Time      `db:"sold_at"`
}

// ClubInfo combines a club with the state of its current auction round
type ClubInfo struct {
	Club       *Club
	CurrentBid int64
	BidCount   int
}
