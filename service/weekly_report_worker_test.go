package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"clubauction/config"
	"clubauction/events"
	"clubauction/models"
)

func TestWeeklyReportWorker_RunOnce(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 8, 12, 0, 0, 0, time.UTC)

	mockUoW := NewMockUnitOfWork()
	mockFactory := new(MockUnitOfWorkFactory)
	mockFactory.On("Create").Return(mockUoW)

	worker := NewWeeklyReportWorker(mockFactory, NewSnapshotService(mockFactory), config.NewTestConfig())
	worker.now = func() time.Time { return now }

	setupBasicTransactionMocks(mockUoW)
	mockUoW.Sales.On("ListBetween", ctx, now.Add(-reportWindow), now).Return([]*models.SaleHistory{
		testSale(models.Group("g1"), 1100),
		testSale(models.Individual(42), 400),
	}, nil)
	mockUoW.Audit.On("Record", ctx, "Weekly report generated: 2 sales, volume 1500").Return(nil)
	mockUoW.Events.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		generated, ok := e.(events.ReportGeneratedEvent)
		return ok && generated.Report.TotalSales == 2 && len(generated.Report.TopGroups) == 1
	})).Return()

	report, err := worker.RunOnce(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(1500), report.TotalVolume)
	mockUoW.AssertRepositoryExpectations(t)
	mockUoW.AssertCalled(t, "Commit")
}

func TestWeeklyReportWorker_SalesFailure(t *testing.T) {
	ctx := context.Background()

	mockUoW := NewMockUnitOfWork()
	mockFactory := new(MockUnitOfWorkFactory)
	mockFactory.On("Create").Return(mockUoW)

	worker := NewWeeklyReportWorker(mockFactory, NewSnapshotService(mockFactory), config.NewTestConfig())

	setupReadOnlyTransactionMocks(mockUoW)
	mockUoW.Sales.On("ListBetween", ctx, mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))

	_, err := worker.RunOnce(ctx)

	assert.Error(t, err)
	mockUoW.Audit.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	mockUoW.AssertNotCalled(t, "Commit")
}
