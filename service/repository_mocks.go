package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"clubauction/events"
	"clubauction/models"
)

// MockClubRepository is a mock implementation of ClubRepository
type MockClubRepository struct {
	mock.Mock
}

func (m *MockClubRepository) Create(ctx context.Context, club *models.Club) error {
	args := m.Called(ctx, club)
	return args.Error(0)
}

func (m *MockClubRepository) GetByID(ctx context.Context, id int64) (*models.Club, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Club), args.Error(1)
}

func (m *MockClubRepository) GetByName(ctx context.Context, name string) (*models.Club, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Club), args.Error(1)
}

func (m *MockClubRepository) List(ctx context.Context) ([]*models.Club, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Club), args.Error(1)
}

func (m *MockClubRepository) UpdateMarketValue(ctx context.Context, id int64, value int64) error {
	args := m.Called(ctx, id, value)
	return args.Error(0)
}

func (m *MockClubRepository) SetManager(ctx context.Context, id int64, managerID *int64) error {
	args := m.Called(ctx, id, managerID)
	return args.Error(0)
}

func (m *MockClubRepository) RecordMarketValue(ctx context.Context, clubID int64, value int64) error {
	args := m.Called(ctx, clubID, value)
	return args.Error(0)
}

func (m *MockClubRepository) GetMarketHistory(ctx context.Context, clubID int64, since time.Time) ([]*models.MarketValuePoint, error) {
	args := m.Called(ctx, clubID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MarketValuePoint), args.Error(1)
}

// MockDuelistRepository is a mock implementation of DuelistRepository
type MockDuelistRepository struct {
	mock.Mock
}

func (m *MockDuelistRepository) Create(ctx context.Context, duelist *models.Duelist) error {
	args := m.Called(ctx, duelist)
	return args.Error(0)
}

func (m *MockDuelistRepository) GetByID(ctx context.Context, id int64) (*models.Duelist, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Duelist), args.Error(1)
}

func (m *MockDuelistRepository) List(ctx context.Context) ([]*models.Duelist, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Duelist), args.Error(1)
}

func (m *MockDuelistRepository) ListByOwner(ctx context.Context, owner models.BidderIdentity) ([]*models.Duelist, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Duelist), args.Error(1)
}

func (m *MockDuelistRepository) SetOwner(ctx context.Context, id int64, owner models.BidderIdentity) error {
	args := m.Called(ctx, id, owner)
	return args.Error(0)
}

// MockContractRepository is a mock implementation of ContractRepository
type MockContractRepository struct {
	mock.Mock
}

func (m *MockContractRepository) Create(ctx context.Context, contract *models.Contract) error {
	args := m.Called(ctx, contract)
	return args.Error(0)
}

func (m *MockContractRepository) GetLatestByDuelist(ctx context.Context, duelistID int64) (*models.Contract, error) {
	args := m.Called(ctx, duelistID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contract), args.Error(1)
}

// MockBidRepository is a mock implementation of BidRepository
type MockBidRepository struct {
	mock.Mock
}

func (m *MockBidRepository) Create(ctx context.Context, bid *models.Bid) error {
	args := m.Called(ctx, bid)
	return args.Error(0)
}

func (m *MockBidRepository) GetLatest(ctx context.Context, key models.ItemKey) (*models.Bid, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bid), args.Error(1)
}

func (m *MockBidRepository) ListByBidder(ctx context.Context, bidder models.BidderIdentity, limit int) ([]*models.Bid, error) {
	args := m.Called(ctx, bidder, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bid), args.Error(1)
}

func (m *MockBidRepository) CountByItem(ctx context.Context, key models.ItemKey) (int, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Error(1)
}

func (m *MockBidRepository) DeleteByItem(ctx context.Context, key models.ItemKey) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBidRepository) DeleteAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBidRepository) ListOpenItems(ctx context.Context) ([]models.ItemKey, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ItemKey), args.Error(1)
}

// MockSaleHistoryRepository is a mock implementation of SaleHistoryRepository
type MockSaleHistoryRepository struct {
	mock.Mock
}

func (m *MockSaleHistoryRepository) Create(ctx context.Context, sale *models.SaleHistory) error {
	args := m.Called(ctx, sale)
	return args.Error(0)
}

func (m *MockSaleHistoryRepository) ListBetween(ctx context.Context, from, to time.Time) ([]*models.SaleHistory, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SaleHistory), args.Error(1)
}

func (m *MockSaleHistoryRepository) ListByClub(ctx context.Context, clubID int64, limit int) ([]*models.SaleHistory, error) {
	args := m.Called(ctx, clubID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SaleHistory), args.Error(1)
}

// MockGroupRepository is a mock implementation of GroupRepository
type MockGroupRepository struct {
	mock.Mock
}

func (m *MockGroupRepository) Create(ctx context.Context, group *models.InvestorGroup) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *MockGroupRepository) GetByName(ctx context.Context, name string) (*models.InvestorGroup, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InvestorGroup), args.Error(1)
}

func (m *MockGroupRepository) GetByNameForUpdate(ctx context.Context, name string) (*models.InvestorGroup, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InvestorGroup), args.Error(1)
}

func (m *MockGroupRepository) AdjustFunds(ctx context.Context, name string, delta int64) (*models.FundsChange, error) {
	args := m.Called(ctx, name, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FundsChange), args.Error(1)
}

func (m *MockGroupRepository) AddMember(ctx context.Context, groupName string, userID int64) error {
	args := m.Called(ctx, groupName, userID)
	return args.Error(0)
}

func (m *MockGroupRepository) RemoveMember(ctx context.Context, groupName string, userID int64) (bool, error) {
	args := m.Called(ctx, groupName, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGroupRepository) IsMember(ctx context.Context, groupName string, userID int64) (bool, error) {
	args := m.Called(ctx, groupName, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGroupRepository) ListMembers(ctx context.Context, groupName string) ([]int64, error) {
	args := m.Called(ctx, groupName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockGroupRepository) ListGroupsForUser(ctx context.Context, userID int64) ([]*models.InvestorGroup, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InvestorGroup), args.Error(1)
}

// MockWalletRepository is a mock implementation of WalletRepository
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) Get(ctx context.Context, userID int64) (*models.PersonalWallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PersonalWallet), args.Error(1)
}

func (m *MockWalletRepository) Credit(ctx context.Context, userID int64, amount int64) (int64, error) {
	args := m.Called(ctx, userID, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWalletRepository) Debit(ctx context.Context, userID int64, amount int64) (*models.FundsChange, error) {
	args := m.Called(ctx, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FundsChange), args.Error(1)
}

func (m *MockWalletRepository) RecordTransaction(ctx context.Context, tx *models.WalletTransaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockWalletRepository) ListTransactions(ctx context.Context, userID int64, limit int) ([]*models.WalletTransaction, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.WalletTransaction), args.Error(1)
}

// MockAuditRepository is a mock implementation of AuditRepository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Record(ctx context.Context, entry string) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRepository) Tail(ctx context.Context, limit int) ([]*models.AuditEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditEntry), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Transaction calls
// go through mock.Mock; repositories are plain fields set by the test.
type MockUnitOfWork struct {
	mock.Mock
	Clubs     *MockClubRepository
	Duelists  *MockDuelistRepository
	Contracts *MockContractRepository
	Bids      *MockBidRepository
	Sales     *MockSaleHistoryRepository
	Groups    *MockGroupRepository
	Wallets   *MockWalletRepository
	Audit     *MockAuditRepository
	Events    *MockEventPublisher
}

// NewMockUnitOfWork creates a mock unit of work with fresh repository mocks
func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		Clubs:     new(MockClubRepository),
		Duelists:  new(MockDuelistRepository),
		Contracts: new(MockContractRepository),
		Bids:      new(MockBidRepository),
		Sales:     new(MockSaleHistoryRepository),
		Groups:    new(MockGroupRepository),
		Wallets:   new(MockWalletRepository),
		Audit:     new(MockAuditRepository),
		Events:    new(MockEventPublisher),
	}
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) ClubRepository() ClubRepository             { return m.Clubs }
func (m *MockUnitOfWork) DuelistRepository() DuelistRepository       { return m.Duelists }
func (m *MockUnitOfWork) ContractRepository() ContractRepository     { return m.Contracts }
func (m *MockUnitOfWork) BidRepository() BidRepository               { return m.Bids }
func (m *MockUnitOfWork) SaleHistoryRepository() SaleHistoryRepository { return m.Sales }
func (m *MockUnitOfWork) GroupRepository() GroupRepository           { return m.Groups }
func (m *MockUnitOfWork) WalletRepository() WalletRepository         { return m.Wallets }
func (m *MockUnitOfWork) AuditRepository() AuditRepository           { return m.Audit }
func (m *MockUnitOfWork) EventBus() EventPublisher                   { return m.Events }

// AssertRepositoryExpectations asserts expectations on the unit of work and every repository mock
func (m *MockUnitOfWork) AssertRepositoryExpectations(t mock.TestingT) {
	m.AssertExpectations(t)
	m.Clubs.AssertExpectations(t)
	m.Duelists.AssertExpectations(t)
	m.Contracts.AssertExpectations(t)
	m.Bids.AssertExpectations(t)
	m.Sales.AssertExpectations(t)
	m.Groups.AssertExpectations(t)
	m.Wallets.AssertExpectations(t)
	m.Audit.AssertExpectations(t)
	m.Events.AssertExpectations(t)
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyAuctionStarted(ctx context.Context, event events.AuctionStartedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockNotifier) NotifyBidPlaced(ctx context.Context, event events.BidPlacedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockNotifier) NotifyAuctionEnded(ctx context.Context, event events.AuctionEndedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockNotifier) NotifyNoWinner(ctx context.Context, event events.AuctionNoWinnerEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockNotifier) NotifyGroupBidPlaced(ctx context.Context, event events.GroupBidPlacedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockNotifier) PostReport(ctx context.Context, report *models.WeeklyReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}
