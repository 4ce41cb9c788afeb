package service

import (
	"github.com/shopspring/decimal"

	"clubauction/models"
)

var hundred = decimal.NewFromInt(100)

// MinRequiredBid returns the smallest acceptable next bid:
// current + max(1, ceil(current * incrementPercent / 100))
func MinRequiredBid(current, incrementPercent int64) int64 {
	step := decimal.NewFromInt(current).
		Mul(decimal.NewFromInt(incrementPercent)).
		Div(hundred).
		Ceil().
		IntPart()
	if step < 1 {
		step = 1
	}
	return current + step
}

// PercentOf returns floor(amount * percent / 100)
func PercentOf(amount, percent int64) int64 {
	return decimal.NewFromInt(amount).
		Mul(decimal.NewFromInt(percent)).
		Div(hundred).
		Floor().
		IntPart()
}

// CurrentPrice is the latest bid of the round, or the base price if the round is empty
func CurrentPrice(latest *models.Bid, basePrice int64) int64 {
	if latest == nil {
		return basePrice
	}
	return latest.Amount
}

// GroupStanding is what the validator needs to know about a group bidder
type GroupStanding struct {
	IsMember bool
	Funds    int64
}

// BidCheck is the input of ValidateBid
type BidCheck struct {
	ItemType         models.ItemType
	Current          int64
	Amount           int64
	IncrementPercent int64
	Frozen           bool

	// Group is nil for individual bids; individual bids are never checked
	// against the personal wallet
	Group *GroupStanding
}

// ValidateBid accepts (nil) or rejects (*BidRejectedError) a bid. It has no side effects.
func ValidateBid(check BidCheck) error {
	if check.Frozen {
		return &BidRejectedError{Reason: RejectAuctionFrozen}
	}
	if !check.ItemType.IsValid() {
		return &BidRejectedError{Reason: RejectInvalidItemType}
	}
	if check.Amount <= 0 {
		return &BidRejectedError{Reason: RejectInvalidAmount}
	}

	if check.Group != nil {
		if !check.Group.IsMember {
			return &BidRejectedError{Reason: RejectNotAMember}
		}
		if check.Amount > check.Group.Funds {
			return &BidRejectedError{Reason: RejectInsufficientFunds, Available: check.Group.Funds}
		}
	}

	minRequired := MinRequiredBid(check.Current, check.IncrementPercent)
	if check.Amount < minRequired {
		return &BidRejectedError{
			Reason:      RejectInsufficientBid,
			Current:     check.Current,
			MinRequired: minRequired,
		}
	}

	return nil
}
