package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"clubauction/config"
	"clubauction/events"
	"clubauction/models"
)

var (
	driftSwing  = decimal.NewFromFloat(0.03)
	driftPerBid = decimal.NewFromFloat(0.001)
	decimalOne  = decimal.NewFromInt(1)
	decimalTwo  = decimal.NewFromInt(2)
)

// MarketDriftWorker periodically nudges every club's market value by a
// random swing of up to ±3% plus 0.1% for every bid beyond the first in
// the club's current round
type MarketDriftWorker struct {
	uowFactory UnitOfWorkFactory
	config     *config.Config
	metrics    *Metrics
	random     func() float64
}

// NewMarketDriftWorker creates a new market drift worker
func NewMarketDriftWorker(uowFactory UnitOfWorkFactory, cfg *config.Config, metrics *Metrics) *MarketDriftWorker {
	return &MarketDriftWorker{
		uowFactory: uowFactory,
		config:     cfg,
		metrics:    metrics,
		random:     rand.Float64,
	}
}

// Start runs a drift pass every MarketDriftInterval until ctx is done or
// the returned stop function is called
func (w *MarketDriftWorker) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})

	go func() {
		log.WithField("interval", w.config.MarketDriftInterval).Info("Market drift worker started")

		for {
			select {
			case <-ctx.Done():
				log.Info("Market drift worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Market drift worker shutting down (stop requested)...")
				return
			case <-time.After(w.config.MarketDriftInterval):
				if _, err := w.RunOnce(ctx); err != nil {
					log.WithError(err).Error("Market drift pass failed")
				}
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}

// RunOnce drifts every club and returns how many were updated. A failure
// on one club does not stop the others.
func (w *MarketDriftWorker) RunOnce(ctx context.Context) (int, error) {
	clubs, err := w.listClubs(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, club := range clubs {
		if err := w.driftClub(ctx, club.ID); err != nil {
			log.WithError(err).WithField("clubID", club.ID).Error("Failed to drift club market value")
			continue
		}
		updated++
	}

	w.metrics.MarketDrifts.Inc()
	log.WithFields(log.Fields{
		"clubs":   len(clubs),
		"updated": updated,
	}).Debug("Market drift pass complete")

	return updated, nil
}

func (w *MarketDriftWorker) listClubs(ctx context.Context) ([]*models.Club, error) {
	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.ClubRepository().List(ctx)
}

func (w *MarketDriftWorker) driftClub(ctx context.Context, clubID int64) error {
	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	club, err := uow.ClubRepository().GetByID(ctx, clubID)
	if err != nil {
		return fmt.Errorf("failed to get club: %w", err)
	}
	if club == nil {
		return nil
	}

	bids, err := uow.BidRepository().CountByItem(ctx, club.Key())
	if err != nil {
		return fmt.Errorf("failed to count bids: %w", err)
	}

	current := club.MarketValue
	if current <= 0 {
		current = club.BasePrice
	}
	next := DriftValue(current, bids, w.random(), w.config.MarketValueFloor)

	if err := uow.ClubRepository().UpdateMarketValue(ctx, club.ID, next); err != nil {
		return fmt.Errorf("failed to update market value: %w", err)
	}
	if err := uow.ClubRepository().RecordMarketValue(ctx, club.ID, next); err != nil {
		return fmt.Errorf("failed to record market value: %w", err)
	}
	if err := uow.AuditRepository().Record(ctx, fmt.Sprintf("Market value of %s updated to %d", club.Name, next)); err != nil {
		return err
	}

	uow.EventBus().Publish(events.MarketValueChangedEvent{
		ClubID:   club.ID,
		ClubName: club.Name,
		OldValue: current,
		NewValue: next,
	})

	return uow.Commit()
}

// DriftValue maps u, uniform in [0,1), to a swing in [-3%, +3%), adds 0.1%
// per bid beyond the first, and truncates the result. The value never
// drops below floor.
func DriftValue(current int64, bids int, u float64, floor int64) int64 {
	swing := decimal.NewFromFloat(u).Mul(decimalTwo).Sub(decimalOne).Mul(driftSwing)
	bonus := driftPerBid.Mul(decimal.NewFromInt(int64(max(0, bids-1))))

	next := decimal.NewFromInt(current).Mul(decimalOne.Add(swing).Add(bonus)).IntPart()
	return max(floor, next)
}
