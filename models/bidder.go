package models

import (
	"fmt"
	"strconv"
	"strings"
)

// BidderKind discriminates individual bidders from investor groups
type BidderKind string

const (
	BidderKindUser  BidderKind = "user"
	BidderKindGroup BidderKind = "group"
)

// BidderIdentity is either an individual user or an investor group.
// Kind is the only discriminator; Ref holds the user ID or the group name.
type BidderIdentity struct {
	Kind BidderKind
	Ref  string
}

// Individual returns the identity of a single user
func Individual(userID int64) BidderIdentity {
	return BidderIdentity{Kind: BidderKindUser, Ref: strconv.FormatInt(userID, 10)}
}

// Group returns the identity of an investor group. Group names are case-insensitive.
func Group(name string) BidderIdentity {
	return BidderIdentity{Kind: BidderKindGroup, Ref: NormalizeGroupName(name)}
}

// NewBidderIdentity rebuilds an identity from its stored columns
func NewBidderIdentity(kind BidderKind, ref string) (BidderIdentity, error) {
	switch kind {
	case BidderKindUser:
		if _, err := strconv.ParseInt(ref, 10, 64); err != nil {
			return BidderIdentity{}, fmt.Errorf("invalid user reference %q: %w", ref, err)
		}
		return BidderIdentity{Kind: kind, Ref: ref}, nil
	case BidderKindGroup:
		if ref == "" {
			return BidderIdentity{}, fmt.Errorf("group reference cannot be empty")
		}
		return BidderIdentity{Kind: kind, Ref: ref}, nil
	default:
		return BidderIdentity{}, fmt.Errorf("unknown bidder kind %q", kind)
	}
}

// ParseBidderIdentity parses the "kind:ref" form produced by Encode
func ParseBidderIdentity(s string) (BidderIdentity, error) {
	kind, ref, ok := strings.Cut(s, ":")
	if !ok {
		return BidderIdentity{}, fmt.Errorf("bidder identity %q must look like user:<id> or group:<name>", s)
	}
	return NewBidderIdentity(BidderKind(kind), ref)
}

// Encode returns the lossless "kind:ref" form
func (b BidderIdentity) Encode() string {
	return string(b.Kind) + ":" + b.Ref
}

// IsGroup reports whether the identity refers to an investor group
func (b BidderIdentity) IsGroup() bool {
	return b.Kind == BidderKindGroup
}

// IsZero reports whether the identity is unset (e.g. a free agent owner)
func (b BidderIdentity) IsZero() bool {
	return b.Kind == "" && b.Ref == ""
}

// UserID returns the user ID of an individual identity
func (b BidderIdentity) UserID() (int64, bool) {
	if b.Kind != BidderKindUser {
		return 0, false
	}
	id, err := strconv.ParseInt(b.Ref, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// GroupName returns the group name of a group identity
func (b BidderIdentity) GroupName() (string, bool) {
	if b.Kind != BidderKindGroup {
		return "", false
	}
	return b.Ref, true
}

// String renders the identity for humans
func (b BidderIdentity) String() string {
	switch b.Kind {
	case BidderKindGroup:
		return b.Ref + " (group)"
	case BidderKindUser:
		return "<@" + b.Ref + ">"
	default:
		return "free agent"
	}
}

// NormalizeGroupName lowercases and trims a group name
func NormalizeGroupName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
