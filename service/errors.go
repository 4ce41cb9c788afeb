package service

import (
	"errors"
	"fmt"

	"clubauction/models"
)

// RejectReason explains why a bid was not accepted
type RejectReason string

const (
	RejectInsufficientBid   RejectReason = "insufficient_bid"
	RejectNotAMember        RejectReason = "not_a_member"
	RejectInsufficientFunds RejectReason = "insufficient_funds"
	RejectAuctionFrozen     RejectReason = "auction_frozen"
	RejectInvalidItemType   RejectReason = "invalid_item_type"
	RejectInvalidAmount     RejectReason = "invalid_amount"
)

// BidRejectedError is returned when a bid fails validation. No state changes.
type BidRejectedError struct {
	Reason      RejectReason
	Current     int64
	MinRequired int64
	Available   int64
}

func (e *BidRejectedError) Error() string {
	switch e.Reason {
	case RejectInsufficientBid:
		return fmt.Sprintf("bid rejected: minimum bid is %d (current %d)", e.MinRequired, e.Current)
	case RejectInsufficientFunds:
		return fmt.Sprintf("bid rejected: group only has %d available", e.Available)
	case RejectNotAMember:
		return "bid rejected: bidder is not a member of the group"
	case RejectAuctionFrozen:
		return "bid rejected: auctions are frozen"
	case RejectInvalidItemType:
		return "bid rejected: item type must be club or duelist"
	default:
		return fmt.Sprintf("bid rejected: %s", e.Reason)
	}
}

// NotFoundError reports an unknown item, group or duelist
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.Key)
}

func notFound(entity string, key any) error {
	return &NotFoundError{Entity: entity, Key: fmt.Sprint(key)}
}

func itemNotFound(key models.ItemKey) error {
	return notFound(string(key.Type), key.ID)
}

var (
	ErrUnauthorized      = errors.New("not authorized")
	ErrNotContracted     = errors.New("duelist has no active contract")
	ErrClubExists        = errors.New("a club with that name already exists")
	ErrGroupExists       = errors.New("a group with that name already exists")
	ErrAlreadyMember     = errors.New("already a member of that group")
	ErrNotMember         = errors.New("not a member of that group")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInvalidName       = errors.New("name cannot be empty")
)

// OutcomeKind is the typed result the chat front-end renders
type OutcomeKind int

const (
	OutcomeAccepted OutcomeKind = iota
	OutcomeRejected
	OutcomeNotFound
	OutcomeUnauthorized
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeRejected:
		return "rejected"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeUnauthorized:
		return "unauthorized"
	default:
		return "failed"
	}
}

// Outcome classifies an error returned by any service operation
func Outcome(err error) OutcomeKind {
	if err == nil {
		return OutcomeAccepted
	}

	var rejected *BidRejectedError
	var missing *NotFoundError
	switch {
	case errors.As(err, &rejected):
		return OutcomeRejected
	case errors.As(err, &missing):
		return OutcomeNotFound
	case errors.Is(err, ErrUnauthorized):
		return OutcomeUnauthorized
	case errors.Is(err, ErrNotContracted),
		errors.Is(err, ErrClubExists),
		errors.Is(err, ErrGroupExists),
		errors.Is(err, ErrAlreadyMember),
		errors.Is(err, ErrNotMember),
		errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidName):
		return OutcomeRejected
	default:
		return OutcomeFailed
	}
}
