package service

import (
	"context"
	"time"

	"clubauction/events"
	"clubauction/models"
)

// ClubRepository defines the interface for club data access
type ClubRepository interface {
	// Create inserts a new club and fills in its ID and timestamps
	Create(ctx context.Context, club *models.Club) error

	// GetByID retrieves a club by ID, returning nil if it does not exist
	GetByID(ctx context.Context, id int64) (*models.Club, error)

	// GetByName retrieves a club by case-insensitive name, returning nil if it does not exist
	GetByName(ctx context.Context, name string) (*models.Club, error)

	// List returns all clubs ordered by name
	List(ctx context.Context) ([]*models.Club, error)

	// UpdateMarketValue sets a club's market value
	UpdateMarketValue(ctx context.Context, id int64, value int64) error

	// SetManager assigns or clears the club manager
	SetManager(ctx context.Context, id int64, managerID *int64) error

	// RecordMarketValue appends a point to the club's market value history
	RecordMarketValue(ctx context.Context, clubID int64, value int64) error

	// GetMarketHistory returns market value points recorded since the given time
	GetMarketHistory(ctx context.Context, clubID int64, since time.Time) ([]*models.MarketValuePoint, error)
}

// DuelistRepository defines the interface for duelist data access
type DuelistRepository interface {
	Create(ctx context.Context, duelist *models.Duelist) error
	GetByID(ctx context.Context, id int64) (*models.Duelist, error)
	List(ctx context.Context) ([]*models.Duelist, error)
	ListByOwner(ctx context.Context, owner models.BidderIdentity) ([]*models.Duelist, error)
	SetOwner(ctx context.Context, id int64, owner models.BidderIdentity) error
}

// ContractRepository defines the interface for duelist contract history
type ContractRepository interface {
	// Create appends a contract
	Create(ctx context.Context, contract *models.Contract) error

	// GetLatestByDuelist returns the active contract, or nil for a duelist never sold
	GetLatestByDuelist(ctx context.Context, duelistID int64) (*models.Contract, error)
}

// BidRepository defines the interface for bids of the open auction rounds
type BidRepository interface {
	// Create inserts a bid and fills in its ID
	Create(ctx context.Context, bid *models.Bid) error

	// GetLatest returns the bid with the highest ID for the item, or nil when the round is empty
	GetLatest(ctx context.Context, key models.ItemKey) (*models.Bid, error)

	// ListByBidder returns the bidder's newest bids, at most limit
	ListByBidder(ctx context.Context, bidder models.BidderIdentity, limit int) ([]*models.Bid, error)

	// CountByItem returns how many bids the current round of the item holds
	CountByItem(ctx context.Context, key models.ItemKey) (int, error)

	// DeleteByItem removes all bids of the item, closing its round
	DeleteByItem(ctx context.Context, key models.ItemKey) (int64, error)

	// DeleteAll removes every bid of every item
	DeleteAll(ctx context.Context) (int64, error)

	// ListOpenItems returns the items that currently have at least one bid
	ListOpenItems(ctx context.Context) ([]models.ItemKey, error)
}

// SaleHistoryRepository defines the interface for the append-only club sale ledger
type SaleHistoryRepository interface {
	Create(ctx context.Context, sale *models.SaleHistory) error

	// ListBetween returns sales with from <= sold_at < to, oldest first
	ListBetween(ctx context.Context, from, to time.Time) ([]*models.SaleHistory, error)

	// ListByClub returns the most recent sales of a club, newest first
	ListByClub(ctx context.Context, clubID int64, limit int) ([]*models.SaleHistory, error)
}

// GroupRepository defines the interface for investor groups and their members
type GroupRepository interface {
	Create(ctx context.Context, group *models.InvestorGroup) error

	// GetByName returns the group or nil if it does not exist
	GetByName(ctx context.Context, name string) (*models.InvestorGroup, error)

	// GetByNameForUpdate is GetByName with a row lock held until the transaction ends
	GetByNameForUpdate(ctx context.Context, name string) (*models.InvestorGroup, error)

	// AdjustFunds adds delta to the group's funds, clamping the result at zero.
	// Returns nil if the group does not exist.
	AdjustFunds(ctx context.Context, name string, delta int64) (*models.FundsChange, error)

	AddMember(ctx context.Context, groupName string, userID int64) error

	// RemoveMember returns false if the user was not a member
	RemoveMember(ctx context.Context, groupName string, userID int64) (bool, error)

	IsMember(ctx context.Context, groupName string, userID int64) (bool, error)
	ListMembers(ctx context.Context, groupName string) ([]int64, error)
	ListGroupsForUser(ctx context.Context, userID int64) ([]*models.InvestorGroup, error)
}

// WalletRepository defines the interface for personal wallets
type WalletRepository interface {
	// Get returns the wallet or nil if the user never deposited
	Get(ctx context.Context, userID int64) (*models.PersonalWallet, error)

	// Credit adds to the wallet, creating it on first use, and returns the new balance
	Credit(ctx context.Context, userID int64, amount int64) (int64, error)

	// Debit removes amount from the wallet, clamping at zero. Returns nil if no wallet exists.
	Debit(ctx context.Context, userID int64, amount int64) (*models.FundsChange, error)

	RecordTransaction(ctx context.Context, tx *models.WalletTransaction) error
	ListTransactions(ctx context.Context, userID int64, limit int) ([]*models.WalletTransaction, error)
}

// AuditRepository defines the interface for the free-text audit log
type AuditRepository interface {
	Record(ctx context.Context, entry string) error

	// Tail returns the newest entries, newest first
	Tail(ctx context.Context, limit int) ([]*models.AuditEntry, error)
}

// EventPublisher defines the interface for publishing events inside a unit of work
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes pending events
	Commit() error

	// Rollback rolls back the transaction and discards pending events
	Rollback() error

	// Repository getters
	ClubRepository() ClubRepository
	DuelistRepository() DuelistRepository
	ContractRepository() ContractRepository
	BidRepository() BidRepository
	SaleHistoryRepository() SaleHistoryRepository
	GroupRepository() GroupRepository
	WalletRepository() WalletRepository
	AuditRepository() AuditRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// AuctionService defines the interface for the auction engine
type AuctionService interface {
	// PlaceBid places an individual bid and restarts the item's countdown
	PlaceBid(ctx context.Context, bidderID int64, key models.ItemKey, amount int64) (*models.Bid, error)

	// PlaceGroupBid places a bid on behalf of an investor group the bidder belongs to
	PlaceGroupBid(ctx context.Context, bidderID int64, groupName string, key models.ItemKey, amount int64) (*models.Bid, error)

	// StartAuction opens a fresh round on an item with the given countdown (zero means the default)
	StartAuction(ctx context.Context, actor models.Actor, key models.ItemKey, countdown time.Duration) (*RoundStatus, error)

	// Finalize closes the item's round immediately
	Finalize(ctx context.Context, key models.ItemKey) (*AuctionOutcome, error)

	// ForceWinner records a win without a bid or a debit
	ForceWinner(ctx context.Context, actor models.Actor, key models.ItemKey, winner models.BidderIdentity, amount int64) (*AuctionOutcome, error)

	// ResetAllAuctions clears every bid and cancels every countdown
	ResetAllAuctions(ctx context.Context, actor models.Actor) (int64, error)

	// Freeze rejects new bids until Unfreeze is called
	Freeze(ctx context.Context, actor models.Actor) error
	Unfreeze(ctx context.Context, actor models.Actor) error
	IsFrozen() bool

	// CurrentBid returns the current price of an item and the minimum next bid
	CurrentBid(ctx context.Context, key models.ItemKey) (*BidQuote, error)

	// ActiveRounds lists the items with a running countdown
	ActiveRounds() []RoundStatus

	// Recover re-arms countdowns for items that still have bids after a restart
	Recover(ctx context.Context) (int, error)

	// Shutdown cancels all countdowns without finalizing
	Shutdown()
}

// PenaltyService defines the interface for penalties and manual fund adjustments
type PenaltyService interface {
	// LeaveGroup removes the user from the group and charges the leave penalty to the group
	LeaveGroup(ctx context.Context, userID int64, groupName string) (*LeaveResult, error)

	// ApplySalaryMissPenalty charges the owner of a duelist for a missed match
	ApplySalaryMissPenalty(ctx context.Context, actor models.Actor, duelistID int64, apply bool) (*SalaryPenaltyResult, error)

	// AdjustGroupFunds adds a signed delta to a group's funds, clamping at zero
	AdjustGroupFunds(ctx context.Context, actor models.Actor, groupName string, delta int64) (*models.FundsChange, error)
}

// GroupService defines the interface for investor group membership and funds
type GroupService interface {
	CreateGroup(ctx context.Context, creatorID int64, name string, startingFunds int64) (*models.InvestorGroup, error)
	JoinGroup(ctx context.Context, userID int64, name string) (*models.InvestorGroup, error)
	Deposit(ctx context.Context, userID int64, name string, amount int64) (*models.FundsChange, error)
	Withdraw(ctx context.Context, userID int64, name string, amount int64) (*models.FundsChange, error)
	GetGroup(ctx context.Context, name string) (*GroupInfo, error)
	GroupsForUser(ctx context.Context, userID int64) ([]*models.InvestorGroup, error)
}

// WalletService defines the interface for personal wallets
type WalletService interface {
	Balance(ctx context.Context, userID int64) (int64, error)
	Deposit(ctx context.Context, userID int64, amount int64) (int64, error)
	Withdraw(ctx context.Context, userID int64, amount int64) (int64, error)
	History(ctx context.Context, userID int64, limit int) ([]*models.WalletTransaction, error)
	Profile(ctx context.Context, userID int64) (*UserProfile, error)
}

// CatalogService defines the interface for registering and browsing auctionable items
type CatalogService interface {
	RegisterClub(ctx context.Context, actor models.Actor, name string, basePrice int64, slogan string) (*models.Club, error)
	ListClubs(ctx context.Context) ([]*models.Club, error)
	GetClubInfo(ctx context.Context, clubID int64) (*models.ClubInfo, error)
	FindClub(ctx context.Context, name string) (*models.Club, error)
	SetClubManager(ctx context.Context, actor models.Actor, clubName string, managerID int64) (*models.Club, error)
	GetClubManager(ctx context.Context, clubName string) (*int64, error)

	RegisterDuelist(ctx context.Context, actor models.Actor, duelist *models.Duelist) (*models.Duelist, error)
	GetDuelist(ctx context.Context, id int64) (*DuelistInfo, error)
	ListDuelists(ctx context.Context) ([]*models.Duelist, error)
	ListDuelistsByOwner(ctx context.Context, owner models.BidderIdentity) ([]*models.Duelist, error)
}

// SnapshotService defines read-only queries over the ledger
type SnapshotService interface {
	GetClubValue(ctx context.Context, clubID int64) (*models.Club, error)
	MarketHistory(ctx context.Context, clubID int64, since time.Time) ([]*models.MarketValuePoint, error)
	SaleHistoryBetween(ctx context.Context, from, to time.Time) ([]*models.SaleHistory, error)
	ClubSales(ctx context.Context, clubID int64, limit int) ([]*models.SaleHistory, error)
	AuditTail(ctx context.Context, limit int) ([]*models.AuditEntry, error)
	ListClubs(ctx context.Context) ([]*models.Club, error)
	WeeklyReport(ctx context.Context, now time.Time) (*models.WeeklyReport, error)
}

// Notifier delivers auction outcomes to users. Implementations are
// best effort; a failed delivery never affects the ledger.
type Notifier interface {
	NotifyAuctionStarted(ctx context.Context, event events.AuctionStartedEvent) error
	NotifyBidPlaced(ctx context.Context, event events.BidPlacedEvent) error
	NotifyAuctionEnded(ctx context.Context, event events.AuctionEndedEvent) error
	NotifyNoWinner(ctx context.Context, event events.AuctionNoWinnerEvent) error
	NotifyGroupBidPlaced(ctx context.Context, event events.GroupBidPlacedEvent) error
	PostReport(ctx context.Context, report *models.WeeklyReport) error
}
