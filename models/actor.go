package models

import "strconv"

// Actor is the user invoking an operation, with the roles the front-end resolved for them
type Actor struct {
	UserID   int64
	Username string
	IsAdmin  bool
	IsOwner  bool
}

// Name returns the username, or the user ID when no name is known
func (a Actor) Name() string {
	if a.Username != "" {
		return a.Username
	}
	return strconv.FormatInt(a.UserID, 10)
}

// CanAdminister reports whether the actor may run admin commands.
// The bot owner is always an admin.
func (a Actor) CanAdminister() bool {
	return a.IsAdmin || a.IsOwner
}
