package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"clubauction/database"
	"clubauction/models"
)

// WalletRepository implements service.WalletRepository
type WalletRepository struct {
	q queryable
}

// NewWalletRepository creates a new personal wallet repository
func NewWalletRepository(db *database.DB) *WalletRepository {
	return &WalletRepository{q: db.Pool}
}

func newWalletRepositoryWithTx(tx queryable) *WalletRepository {
	return &WalletRepository{q: tx}
}

// Get returns the user's wallet
func (r *WalletRepository) Get(ctx context.Context, userID int64) (*models.PersonalWallet, error) {
	var w models.PersonalWallet
	err := r.q.QueryRow(ctx, `SELECT user_id, balance, updated_at FROM personal_wallets WHERE user_id = $1`, userID).
		Scan(&w.UserID, &w.Balance, &w.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet of user %d: %w", userID, err)
	}
	return &w, nil
}

// Credit adds to the wallet, creating it on first deposit
func (r *WalletRepository) Credit(ctx context.Context, userID int64, amount int64) (int64, error) {
	query := `
		INSERT INTO personal_wallets (user_id, balance)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET balance = personal_wallets.balance + EXCLUDED.balance, updated_at = NOW()
		RETURNING balance
	`

	var balance int64
	if err := r.q.QueryRow(ctx, query, userID, amount).Scan(&balance); err != nil {
		return 0, fmt.Errorf("failed to credit wallet of user %d: %w", userID, err)
	}
	return balance, nil
}

// Debit removes up to amount from the wallet, never going below zero
func (r *WalletRepository) Debit(ctx context.Context, userID int64, amount int64) (*models.FundsChange, error) {
	query := `
		WITH prev AS (
			SELECT balance FROM personal_wallets WHERE user_id = $1 FOR UPDATE
		)
		UPDATE personal_wallets w
		SET balance = GREATEST(prev.balance - $2, 0), updated_at = NOW()
		FROM prev
		WHERE w.user_id = $1
		RETURNING prev.balance, w.balance
	`

	var change models.FundsChange
	err := r.q.QueryRow(ctx, query, userID, amount).Scan(&change.Before, &change.After)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to debit wallet of user %d: %w", userID, err)
	}

	change.Applied = change.Before - change.After
	return &change, nil
}

// RecordTransaction appends a wallet movement
func (r *WalletRepository) RecordTransaction(ctx context.Context, tx *models.WalletTransaction) error {
	query := `
		INSERT INTO wallet_transactions (user_id, amount, type)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	if err := r.q.QueryRow(ctx, query, tx.UserID, tx.Amount, string(tx.Type)).Scan(&tx.ID, &tx.CreatedAt); err != nil {
		return fmt.Errorf("failed to record wallet transaction for user %d: %w", tx.UserID, err)
	}
	return nil
}

// ListTransactions returns the newest wallet movements of a user
func (r *WalletRepository) ListTransactions(ctx context.Context, userID int64, limit int) ([]*models.WalletTransaction, error) {
	query := `
		SELECT id, user_id, amount, type, created_at
		FROM wallet_transactions
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallet transactions of user %d: %w", userID, err)
	}
	defer rows.Close()

	var txs []*models.WalletTransaction
	for rows.Next() {
		var tx models.WalletTransaction
		var txType string
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Amount, &txType, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wallet transaction: %w", err)
		}
		tx.Type = models.WalletTransactionType(txType)
		txs = append(txs, &tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wallet transactions: %w", err)
	}

	return txs, nil
}
