package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"clubauction/models"
)

const (
	reportWindow       = 7 * 24 * time.Hour
	reportTopGroups    = 5
	defaultAuditLength = 50
)

type snapshotService struct {
	uowFactory UnitOfWorkFactory
}

// NewSnapshotService creates the read-only query service used by the
// dashboard and the weekly report
func NewSnapshotService(uowFactory UnitOfWorkFactory) SnapshotService {
	return &snapshotService{uowFactory: uowFactory}
}

// read runs fn inside a transaction that is always rolled back
func (s *snapshotService) read(ctx context.Context, fn func(uow UnitOfWork) error) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return fn(uow)
}

func (s *snapshotService) GetClubValue(ctx context.Context, clubID int64) (*models.Club, error) {
	var club *models.Club
	err := s.read(ctx, func(uow UnitOfWork) error {
		var err error
		club, err = uow.ClubRepository().GetByID(ctx, clubID)
		if err != nil {
			return fmt.Errorf("failed to get club: %w", err)
		}
		if club == nil {
			return notFound("club", clubID)
		}
		return nil
	})
	return club, err
}

func (s *snapshotService) MarketHistory(ctx context.Context, clubID int64, since time.Time) ([]*models.MarketValuePoint, error) {
	var points []*models.MarketValuePoint
	err := s.read(ctx, func(uow UnitOfWork) error {
		var err error
		points, err = uow.ClubRepository().GetMarketHistory(ctx, clubID, since)
		return err
	})
	return points, err
}

func (s *snapshotService) SaleHistoryBetween(ctx context.Context, from, to time.Time) ([]*models.SaleHistory, error) {
	var sales []*models.SaleHistory
	err := s.read(ctx, func(uow UnitOfWork) error {
		var err error
		sales, err = uow.SaleHistoryRepository().ListBetween(ctx, from, to)
		return err
	})
	return sales, err
}

func (s *snapshotService) ClubSales(ctx context.Context, clubID int64, limit int) ([]*models.SaleHistory, error) {
	var sales []*models.SaleHistory
	err := s.read(ctx, func(uow UnitOfWork) error {
		var err error
		sales, err = uow.SaleHistoryRepository().ListByClub(ctx, clubID, limit)
		return err
	})
	return sales, err
}

// AuditTail returns the newest audit entries, newest first
func (s *snapshotService) AuditTail(ctx context.Context, limit int) ([]*models.AuditEntry, error) {
	if limit <= 0 {
		limit = defaultAuditLength
	}

	var entries []*models.AuditEntry
	err := s.read(ctx, func(uow UnitOfWork) error {
		var err error
		entries, err = uow.AuditRepository().Tail(ctx, limit)
		return err
	})
	return entries, err
}

func (s *snapshotService) ListClubs(ctx context.Context) ([]*models.Club, error) {
	var clubs []*models.Club
	err := s.read(ctx, func(uow UnitOfWork) error {
		var err error
		clubs, err = uow.ClubRepository().List(ctx)
		return err
	})
	return clubs, err
}

// WeeklyReport summarizes the club sales of the seven days before now
func (s *snapshotService) WeeklyReport(ctx context.Context, now time.Time) (*models.WeeklyReport, error) {
	from := now.Add(-reportWindow)

	sales, err := s.SaleHistoryBetween(ctx, from, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load sales: %w", err)
	}

	return BuildWeeklyReport(from, now, sales), nil
}

// BuildWeeklyReport aggregates sales into a report. Group spend is ranked
// highest first, ties broken by name.
func BuildWeeklyReport(from, to time.Time, sales []*models.SaleHistory) *models.WeeklyReport {
	report := &models.WeeklyReport{
		From:       from,
		To:         to,
		TotalSales: len(sales),
	}

	spend := make(map[string]int64)
	for _, sale := range sales {
		report.TotalVolume += sale.Amount
		if name, ok := sale.Winner.GroupName(); ok {
			spend[name] += sale.Amount
		}
	}

	for name, amount := range spend {
		report.TopGroups = append(report.TopGroups, models.GroupSpend{GroupName: name, Amount: amount})
	}
	sort.Slice(report.TopGroups, func(i, j int) bool {
		a, b := report.TopGroups[i], report.TopGroups[j]
		if a.Amount != b.Amount {
			return a.Amount > b.Amount
		}
		return a.GroupName < b.GroupName
	})
	if len(report.TopGroups) > reportTopGroups {
		report.TopGroups = report.TopGroups[:reportTopGroups]
	}

	return report
}
