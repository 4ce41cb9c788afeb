package models

import (
	"time"
)

// WalletTransactionType represents the type of personal wallet movement
type WalletTransactionType string

const (
	WalletTransactionDeposit  WalletTransactionType = "deposit"
	WalletTransactionWithdraw WalletTransactionType = "withdraw"
)

// PersonalWallet is a user's private balance, created lazily on first deposit
type PersonalWallet struct {
	UserID    int64     `db:"user_id"`
	Balance   int64     `db:"balance"`
	UpdatedAt time.Time `db:"updated_at"`
}

// WalletTransaction records a single wallet movement
type WalletTransaction struct {
	ID        int64                 `db:"id"`
	UserID    int64                 `db:"user_id"`
	Amount    int64                 `db:"amount"`
	Type      WalletTransactionType `db:"type"`
	CreatedAt time.Time             `db:"created_at"`
}
