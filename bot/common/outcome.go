package common

import (
	"errors"

	"clubauction/service"
)

// OutcomeMessage renders a service error for the user. The second result
// is true when the error was not a domain outcome and should be logged.
func OutcomeMessage(err error) (string, bool) {
	switch service.Outcome(err) {
	case service.OutcomeAccepted:
		return "Done.", false
	case service.OutcomeRejected:
		var rejected *service.BidRejectedError
		if errors.As(err, &rejected) {
			return rejectionMessage(rejected), false
		}
		return capitalize(err.Error()) + ".", false
	case service.OutcomeNotFound:
		return capitalize(err.Error()) + ".", false
	case service.OutcomeUnauthorized:
		return "You are not allowed to use this command.", false
	default:
		return "Something went wrong. Please try again.", true
	}
}

func rejectionMessage(e *service.BidRejectedError) string {
	switch e.Reason {
	case service.RejectInsufficientBid:
		return "Minimum required bid is " + FormatAmount(e.MinRequired) + " (current " + FormatAmount(e.Current) + ")."
	case service.RejectNotAMember:
		return "You are not in that group."
	case service.RejectInsufficientFunds:
		return "Group lacks funds (available " + FormatAmount(e.Available) + ")."
	case service.RejectAuctionFrozen:
		return "Bidding is currently frozen by an admin."
	case service.RejectInvalidItemType:
		return "Item type must be 'club' or 'duelist'."
	default:
		return "Amount must be positive."
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}
