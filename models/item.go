package models

import (
	"fmt"
	"strings"
)

// ItemType identifies what kind of entity is being auctioned
type ItemType string

const (
	ItemTypeClub    ItemType = "club"
	ItemTypeDuelist ItemType = "duelist"
)

// IsValid reports whether the item type is one the auction engine knows
func (t ItemType) IsValid() bool {
	return t == ItemTypeClub || t == ItemTypeDuelist
}

// ParseItemType converts user input into an ItemType
func ParseItemType(s string) (ItemType, error) {
	t := ItemType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("item type must be 'club' or 'duelist', got %q", s)
	}
	return t, nil
}

// ItemKey identifies a single auctionable item
type ItemKey struct {
	Type ItemType
	ID   int64
}

// NewItemKey builds an ItemKey
func NewItemKey(itemType ItemType, id int64) ItemKey {
	return ItemKey{Type: itemType, ID: id}
}

func (k ItemKey) String() string {
	return fmt.Sprintf("%s:%d", k.Type, k.ID)
}
