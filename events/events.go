package events

import (
	"time"

	"clubauction/models"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeAuctionStarted     EventType = "auction_started"
	EventTypeBidPlaced          EventType = "bid_placed"
	EventTypeGroupBidPlaced     EventType = "group_bid_placed"
	EventTypeAuctionEnded       EventType = "auction_ended"
	EventTypeAuctionNoWinner    EventType = "auction_no_winner"
	EventTypeGroupFundsChanged  EventType = "group_funds_changed"
	EventTypeMarketValueChanged EventType = "market_value_changed"
	EventTypeReportGenerated    EventType = "report_generated"
)

// AllEventTypes lists every event type, for subscribers that mirror the whole stream
func AllEventTypes() []EventType {
	return []EventType{
		EventTypeAuctionStarted,
		EventTypeBidPlaced,
		EventTypeGroupBidPlaced,
		EventTypeAuctionEnded,
		EventTypeAuctionNoWinner,
		EventTypeGroupFundsChanged,
		EventTypeMarketValueChanged,
		EventTypeReportGenerated,
	}
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// AuctionStartedEvent is emitted when an admin opens a round on an item
type AuctionStartedEvent struct {
	Item      models.ItemKey
	ItemName  string
	BasePrice int64
	EndsAt    time.Time
}

func (e AuctionStartedEvent) Type() EventType {
	return EventTypeAuctionStarted
}

// BidPlacedEvent is emitted for every accepted bid
type BidPlacedEvent struct {
	Item     models.ItemKey
	ItemName string
	BidID    int64
	Bidder   models.BidderIdentity
	Amount   int64
	EndsAt   time.Time
}

func (e BidPlacedEvent) Type() EventType {
	return EventTypeBidPlaced
}

// GroupBidPlacedEvent is emitted alongside BidPlacedEvent when a group bids,
// carrying the members that should be told about it
type GroupBidPlacedEvent struct {
	Item      models.ItemKey
	ItemName  string
	GroupName string
	PlacedBy  int64
	Members   []int64
	Amount    int64
}

func (e GroupBidPlacedEvent) Type() EventType {
	return EventTypeGroupBidPlaced
}

// AuctionEndedEvent is emitted when a round finalizes with a winner
type AuctionEndedEvent struct {
	Item     models.ItemKey
	ItemName string
	Winner   models.BidderIdentity
	Amount   int64
	Debited  int64
	Forced   bool
}

func (e AuctionEndedEvent) Type() EventType {
	return EventTypeAuctionEnded
}

// AuctionNoWinnerEvent is emitted when a round expires without bids
type AuctionNoWinnerEvent struct {
	Item     models.ItemKey
	ItemName string
}

func (e AuctionNoWinnerEvent) Type() EventType {
	return EventTypeAuctionNoWinner
}

// GroupFundsChangedEvent records a change to an investor group's funds
type GroupFundsChangedEvent struct {
	GroupName string
	OldFunds  int64
	NewFunds  int64
	Reason    string
}

func (e GroupFundsChangedEvent) Type() EventType {
	return EventTypeGroupFundsChanged
}

// MarketValueChangedEvent is emitted by the market drift job for each club
type MarketValueChangedEvent struct {
	ClubID   int64
	ClubName string
	OldValue int64
	NewValue int64
}

func (e MarketValueChangedEvent) Type() EventType {
	return EventTypeMarketValueChanged
}

// ReportGeneratedEvent carries a freshly built weekly report
type ReportGeneratedEvent struct {
	Report models.WeeklyReport
}

func (e ReportGeneratedEvent) Type() EventType {
	return EventTypeReportGenerated
}
