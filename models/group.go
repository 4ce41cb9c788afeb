package models

import (
	"time"
)

// InvestorGroup is a named pool of funds jointly owned by its members
type InvestorGroup struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Funds     int64     `db:"funds"`
	CreatedAt time.Time `db:"created_at"`
}

// Identity returns the bidder identity of the group
func (g *InvestorGroup) Identity() BidderIdentity {
	return Group(g.Name)
}

// GroupMember links a user to an investor group
type GroupMember struct {
	ID        int64     `db:"id"`
	GroupName string    `db:"group_name"`
	UserID    int64     `db:"user_id"`
	JoinedAt  time.Time `db:"joined_at"`
}
