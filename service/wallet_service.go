package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"clubauction/models"
)

const (
	defaultHistoryLimit = 10
	profileBidLimit     = 10
)

// UserProfile summarizes a user's money and activity
type UserProfile struct {
	UserID     int64
	Balance    int64
	Groups     []*models.InvestorGroup
	RecentBids []*models.Bid
}

type walletService struct {
	uowFactory UnitOfWorkFactory
}

// NewWalletService creates a new personal wallet service
func NewWalletService(uowFactory UnitOfWorkFactory) WalletService {
	return &walletService{uowFactory: uowFactory}
}

// Balance returns the wallet balance; users who never deposited have 0
func (s *walletService) Balance(ctx context.Context, userID int64) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	wallet, err := uow.WalletRepository().Get(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet == nil {
		return 0, nil
	}
	return wallet.Balance, nil
}

// Deposit credits the wallet, creating it on first use
func (s *walletService) Deposit(ctx context.Context, userID int64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	balance, err := uow.WalletRepository().Credit(ctx, userID, amount)
	if err != nil {
		return 0, fmt.Errorf("failed to credit wallet: %w", err)
	}

	err = uow.WalletRepository().RecordTransaction(ctx, &models.WalletTransaction{
		UserID: userID,
		Amount: amount,
		Type:   models.WalletTransactionDeposit,
	})
	if err != nil {
		return 0, err
	}

	if err := uow.AuditRepository().Record(ctx, fmt.Sprintf("%d deposited %d to personal wallet", userID, amount)); err != nil {
		return 0, err
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":  userID,
		"amount":  amount,
		"balance": balance,
	}).Info("Wallet deposit")

	return balance, nil
}

// Withdraw debits the wallet. A withdrawal larger than the balance is
// rejected rather than clamped.
func (s *walletService) Withdraw(ctx context.Context, userID int64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	wallet, err := uow.WalletRepository().Get(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet == nil || wallet.Balance < amount {
		return 0, ErrInsufficientFunds
	}

	change, err := uow.WalletRepository().Debit(ctx, userID, amount)
	if err != nil {
		return 0, fmt.Errorf("failed to debit wallet: %w", err)
	}
	// A concurrent debit may have landed between the read and the update
	if change == nil || change.Applied < amount {
		return 0, ErrInsufficientFunds
	}

	err = uow.WalletRepository().RecordTransaction(ctx, &models.WalletTransaction{
		UserID: userID,
		Amount: -amount,
		Type:   models.WalletTransactionWithdraw,
	})
	if err != nil {
		return 0, err
	}

	if err := uow.AuditRepository().Record(ctx, fmt.Sprintf("%d withdrew %d from personal wallet", userID, amount)); err != nil {
		return 0, err
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":  userID,
		"amount":  amount,
		"balance": change.After,
	}).Info("Wallet withdrawal")

	return change.After, nil
}

// History returns the latest wallet movements, newest first
func (s *walletService) History(ctx context.Context, userID int64, limit int) ([]*models.WalletTransaction, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.WalletRepository().ListTransactions(ctx, userID, limit)
}

// Profile returns the wallet balance, group memberships and the user's
// latest individual bids in open rounds
func (s *walletService) Profile(ctx context.Context, userID int64) (*UserProfile, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	profile := &UserProfile{UserID: userID}

	wallet, err := uow.WalletRepository().Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet != nil {
		profile.Balance = wallet.Balance
	}

	profile.Groups, err = uow.GroupRepository().ListGroupsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	profile.RecentBids, err = uow.BidRepository().ListByBidder(ctx, models.Individual(userID), profileBidLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list bids: %w", err)
	}

	return profile, nil
}
