package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"clubauction/database"
	"clubauction/events"
	"clubauction/service"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db               *database.DB
	tx               pgx.Tx
	ctx              context.Context
	transactionalBus *events.TransactionalBus
	clubRepo         service.ClubRepository
	duelistRepo      service.DuelistRepository
	contractRepo     service.ContractRepository
	bidRepo          service.BidRepository
	saleHistoryRepo  service.SaleHistoryRepository
	groupRepo        service.GroupRepository
	walletRepo       service.WalletRepository
	auditRepo        service.AuditRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.clubRepo = newClubRepositoryWithTx(tx)
	u.duelistRepo = newDuelistRepositoryWithTx(tx)
	u.contractRepo = newContractRepositoryWithTx(tx)
	u.bidRepo = newBidRepositoryWithTx(tx)
	u.saleHistoryRepo = newSaleHistoryRepositoryWithTx(tx)
	u.groupRepo = newGroupRepositoryWithTx(tx)
	u.walletRepo = newWalletRepositoryWithTx(tx)
	u.auditRepo = newAuditRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction and flushes pending events
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		u.tx = nil
		u.transactionalBus.Discard()
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil
	return u.transactionalBus.Flush(u.ctx)
}

// Rollback rolls back the transaction. Safe to call after Commit.
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(u.ctx)
	u.tx = nil
	u.transactionalBus.Discard()

	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

func mustBegin[T any](repo T, started bool) T {
	if !started {
		panic("unit of work not started - call Begin() first")
	}
	return repo
}

func (u *unitOfWork) started() bool {
	return u.clubRepo != nil
}

// ClubRepository returns the club repository for this unit of work
func (u *unitOfWork) ClubRepository() service.ClubRepository {
	return mustBegin(u.clubRepo, u.started())
}

// DuelistRepository returns the duelist repository for this unit of work
func (u *unitOfWork) DuelistRepository() service.DuelistRepository {
	return mustBegin(u.duelistRepo, u.started())
}

// ContractRepository returns the contract repository for this unit of work
func (u *unitOfWork) ContractRepository() service.ContractRepository {
	return mustBegin(u.contractRepo, u.started())
}

// BidRepository returns the bid repository for this unit of work
func (u *unitOfWork) BidRepository() service.BidRepository {
	return mustBegin(u.bidRepo, u.started())
}

// SaleHistoryRepository returns the sale history repository for this unit of work
func (u *unitOfWork) SaleHistoryRepository() service.SaleHistoryRepository {
	return mustBegin(u.saleHistoryRepo, u.started())
}

// GroupRepository returns the investor group repository for this unit of work
func (u *unitOfWork) GroupRepository() service.GroupRepository {
	return mustBegin(u.groupRepo, u.started())
}

// WalletRepository returns the wallet repository for this unit of work
func (u *unitOfWork) WalletRepository() service.WalletRepository {
	return mustBegin(u.walletRepo, u.started())
}

// AuditRepository returns the audit repository for this unit of work
func (u *unitOfWork) AuditRepository() service.AuditRepository {
	return mustBegin(u.auditRepo, u.started())
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	return u.transactionalBus
}
