package service

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"clubauction/config"
	"clubauction/events"
	"clubauction/models"
)

// WeeklyReportWorker builds the sales report every WeeklyReportInterval,
// records it in the audit log and publishes it for the notifier
type WeeklyReportWorker struct {
	uowFactory UnitOfWorkFactory
	snapshots  SnapshotService
	config     *config.Config
	now        func() time.Time
}

// NewWeeklyReportWorker creates a new weekly report worker
func NewWeeklyReportWorker(uowFactory UnitOfWorkFactory, snapshots SnapshotService, cfg *config.Config) *WeeklyReportWorker {
	return &WeeklyReportWorker{
		uowFactory: uowFactory,
		snapshots:  snapshots,
		config:     cfg,
		now:        time.Now,
	}
}

// Start begins the worker; the returned function stops it
func (w *WeeklyReportWorker) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})

	go func() {
		log.WithField("interval", w.config.WeeklyReportInterval).Info("Weekly report worker started")

		for {
			select {
			case <-ctx.Done():
				log.Info("Weekly report worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Weekly report worker shutting down (stop requested)...")
				return
			case <-time.After(w.config.WeeklyReportInterval):
				if _, err := w.RunOnce(ctx); err != nil {
					log.WithError(err).Error("Failed to generate weekly report")
				}
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}

// RunOnce generates and publishes one report
func (w *WeeklyReportWorker) RunOnce(ctx context.Context) (*models.WeeklyReport, error) {
	report, err := w.snapshots.WeeklyReport(ctx, w.now())
	if err != nil {
		return nil, err
	}

	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entry := fmt.Sprintf("Weekly report generated: %d sales, volume %d", report.TotalSales, report.TotalVolume)
	if err := uow.AuditRepository().Record(ctx, entry); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.ReportGeneratedEvent{Report: *report})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"sales":     report.TotalSales,
		"volume":    report.TotalVolume,
		"topGroups": len(report.TopGroups),
	}).Info("Weekly report generated")

	return report, nil
}
