package service

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"clubauction/models"
)

// DuelistInfo combines a duelist with its active contract and auction round
type DuelistInfo struct {
	Duelist    *models.Duelist
	Contract   *models.Contract
	CurrentBid int64
	BidCount   int
}

type catalogService struct {
	uowFactory UnitOfWorkFactory
}

// NewCatalogService creates the service that registers and describes auctionable items
func NewCatalogService(uowFactory UnitOfWorkFactory) CatalogService {
	return &catalogService{uowFactory: uowFactory}
}

// RegisterClub registers a club; its market value starts at the base price
func (s *catalogService) RegisterClub(ctx context.Context, actor models.Actor, name string, basePrice int64, slogan string) (*models.Club, error) {
	if !actor.CanAdminister() {
		return nil, ErrUnauthorized
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	if basePrice <= 0 {
		return nil, ErrInvalidAmount
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	club := &models.Club{
		Name:        name,
		BasePrice:   basePrice,
		Slogan:      strings.TrimSpace(slogan),
		MarketValue: basePrice,
	}
	if err := uow.ClubRepository().Create(ctx, club); err != nil {
		return nil, err
	}

	if err := uow.ClubRepository().RecordMarketValue(ctx, club.ID, basePrice); err != nil {
		return nil, fmt.Errorf("failed to record initial market value: %w", err)
	}

	if err := uow.AuditRepository().Record(ctx, fmt.Sprintf("%s registered club %s (base %d)", actor.Name(), name, basePrice)); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"clubID":    club.ID,
		"name":      name,
		"basePrice": basePrice,
	}).Info("Club registered")

	return club, nil
}

func (s *catalogService) ListClubs(ctx context.Context) ([]*models.Club, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.ClubRepository().List(ctx)
}

// GetClubInfo returns a club with the state of its current round
func (s *catalogService) GetClubInfo(ctx context.Context, clubID int64) (*models.ClubInfo, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	club, err := uow.ClubRepository().GetByID(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to get club: %w", err)
	}
	if club == nil {
		return nil, notFound("club", clubID)
	}

	current, count, err := roundState(ctx, uow, club.Key(), club.BasePrice)
	if err != nil {
		return nil, err
	}

	return &models.ClubInfo{Club: club, CurrentBid: current, BidCount: count}, nil
}

func (s *catalogService) FindClub(ctx context.Context, name string) (*models.Club, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return s.clubByName(ctx, uow, name)
}

// SetClubManager assigns a manager to a club
func (s *catalogService) SetClubManager(ctx context.Context, actor models.Actor, clubName string, managerID int64) (*models.Club, error) {
	if !actor.CanAdminister() {
		return nil, ErrUnauthorized
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	club, err := s.clubByName(ctx, uow, clubName)
	if err != nil {
		return nil, err
	}

	if err := uow.ClubRepository().SetManager(ctx, club.ID, &managerID); err != nil {
		return nil, fmt.Errorf("failed to set manager: %w", err)
	}
	club.ManagerID = &managerID

	if err := uow.AuditRepository().Record(ctx, fmt.Sprintf("%s set %d as manager for %s", actor.Name(), managerID, club.Name)); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return club, nil
}

// GetClubManager returns the manager's user ID, or nil if none is assigned
func (s *catalogService) GetClubManager(ctx context.Context, clubName string) (*int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	club, err := s.clubByName(ctx, uow, clubName)
	if err != nil {
		return nil, err
	}
	return club.ManagerID, nil
}

// RegisterDuelist registers a free agent. When no Discord user is given the
// actor registers themselves.
func (s *catalogService) RegisterDuelist(ctx context.Context, actor models.Actor, duelist *models.Duelist) (*models.Duelist, error) {
	duelist.Username = strings.TrimSpace(duelist.Username)
	if duelist.Username == "" {
		return nil, ErrInvalidName
	}
	if duelist.BasePrice <= 0 || duelist.ExpectedSalary < 0 {
		return nil, ErrInvalidAmount
	}
	if duelist.DiscordUserID == 0 {
		duelist.DiscordUserID = actor.UserID
	}
	duelist.OwnedBy = models.BidderIdentity{}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.DuelistRepository().Create(ctx, duelist); err != nil {
		return nil, fmt.Errorf("failed to register duelist: %w", err)
	}

	entry := fmt.Sprintf("%s registered duelist %s (base %d, salary %d)", actor.Name(), duelist.Username, duelist.BasePrice, duelist.ExpectedSalary)
	if err := uow.AuditRepository().Record(ctx, entry); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"duelistID": duelist.ID,
		"username":  duelist.Username,
	}).Info("Duelist registered")

	return duelist, nil
}

// GetDuelist returns a duelist with its contract and current round
func (s *catalogService) GetDuelist(ctx context.Context, id int64) (*DuelistInfo, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	duelist, err := uow.DuelistRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get duelist: %w", err)
	}
	if duelist == nil {
		return nil, notFound("duelist", id)
	}

	contract, err := uow.ContractRepository().GetLatestByDuelist(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}

	current, count, err := roundState(ctx, uow, duelist.Key(), duelist.BasePrice)
	if err != nil {
		return nil, err
	}

	return &DuelistInfo{
		Duelist:    duelist,
		Contract:   contract,
		CurrentBid: current,
		BidCount:   count,
	}, nil
}

func (s *catalogService) ListDuelists(ctx context.Context) ([]*models.Duelist, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.DuelistRepository().List(ctx)
}

func (s *catalogService) ListDuelistsByOwner(ctx context.Context, owner models.BidderIdentity) ([]*models.Duelist, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.DuelistRepository().ListByOwner(ctx, owner)
}

func (s *catalogService) clubByName(ctx context.Context, uow UnitOfWork, name string) (*models.Club, error) {
	club, err := uow.ClubRepository().GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("failed to get club: %w", err)
	}
	if club == nil {
		return nil, notFound("club", name)
	}
	return club, nil
}

func roundState(ctx context.Context, uow UnitOfWork, key models.ItemKey, basePrice int64) (int64, int, error) {
	latest, err := uow.BidRepository().GetLatest(ctx, key)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get current bid: %w", err)
	}
	count, err := uow.BidRepository().CountByItem(ctx, key)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count bids: %w", err)
	}
	return CurrentPrice(latest, basePrice), count, nil
}
