package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubauction/models"
)

func createTestSnapshotService() (SnapshotService, *MockUnitOfWork) {
	mockUoW := NewMockUnitOfWork()
	mockFactory := new(MockUnitOfWorkFactory)
	mockFactory.On("Create").Return(mockUoW)

	return NewSnapshotService(mockFactory), mockUoW
}

func testSale(winner models.BidderIdentity, amount int64) *models.SaleHistory {
	return &models.SaleHistory{ClubID: 1, Winner: winner, Amount: amount}
}

func TestBuildWeeklyReport(t *testing.T) {
	to := time.Date(2024, 5, 8, 12, 0, 0, 0, time.UTC)
	from := to.Add(-reportWindow)

	t.Run("totals include individual winners", func(t *testing.T) {
		report := BuildWeeklyReport(from, to, []*models.SaleHistory{
			testSale(models.Group("g1"), 1100),
			testSale(models.Individual(42), 900),
			testSale(models.Group("g2"), 700),
			testSale(models.Group("g1"), 300),
		})

		assert.Equal(t, 4, report.TotalSales)
		assert.Equal(t, int64(3000), report.TotalVolume)
		assert.Equal(t, []models.GroupSpend{
			{GroupName: "g1", Amount: 1400},
			{GroupName: "g2", Amount: 700},
		}, report.TopGroups)
		assert.Equal(t, from, report.From)
		assert.Equal(t, to, report.To)
	})

	t.Run("ties ordered by name and capped at five", func(t *testing.T) {
		var sales []*models.SaleHistory
		for _, name := range []string{"f", "e", "d", "c", "b", "a"} {
			sales = append(sales, testSale(models.Group(name), 100))
		}

		report := BuildWeeklyReport(from, to, sales)

		require.Len(t, report.TopGroups, 5)
		assert.Equal(t, "a", report.TopGroups[0].GroupName)
		assert.Equal(t, "e", report.TopGroups[4].GroupName)
	})

	t.Run("empty week", func(t *testing.T) {
		report := BuildWeeklyReport(from, to, nil)

		assert.Equal(t, 0, report.TotalSales)
		assert.Equal(t, int64(0), report.TotalVolume)
		assert.Empty(t, report.TopGroups)
	})
}

func TestSnapshotService_WeeklyReport(t *testing.T) {
	ctx := context.Background()
	svc, mockUoW := createTestSnapshotService()
	now := time.Date(2024, 5, 8, 12, 0, 0, 0, time.UTC)

	setupReadOnlyTransactionMocks(mockUoW)
	mockUoW.Sales.On("ListBetween", ctx, now.Add(-7*24*time.Hour), now).
		Return([]*models.SaleHistory{testSale(models.Group("g1"), 1100)}, nil)

	report, err := svc.WeeklyReport(ctx, now)

	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalSales)
	assert.Equal(t, int64(1100), report.TotalVolume)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestSnapshotService_GetClubValue(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		ctx := context.Background()
		svc, mockUoW := createTestSnapshotService()

		setupReadOnlyTransactionMocks(mockUoW)
		mockUoW.Clubs.On("GetByID", ctx, int64(1)).Return(createTestClub(1, 1000), nil)

		club, err := svc.GetClubValue(ctx, 1)

		require.NoError(t, err)
		assert.Equal(t, int64(1234), club.MarketValue)
	})

	t.Run("unknown club", func(t *testing.T) {
		ctx := context.Background()
		svc, mockUoW := createTestSnapshotService()

		setupReadOnlyTransactionMocks(mockUoW)
		mockUoW.Clubs.On("GetByID", ctx, int64(9)).Return(nil, nil)

		_, err := svc.GetClubValue(ctx, 9)

		assert.Equal(t, OutcomeNotFound, Outcome(err))
	})
}

func TestSnapshotService_AuditTailDefaultsLimit(t *testing.T) {
	ctx := context.Background()
	svc, mockUoW := createTestSnapshotService()

	setupReadOnlyTransactionMocks(mockUoW)
	mockUoW.Audit.On("Tail", ctx, 50).Return([]*models.AuditEntry{{ID: 2, Entry: "b"}, {ID: 1, Entry: "a"}}, nil)

	entries, err := svc.AuditTail(ctx, 0)

	require.NoError(t, err)
	assert.Len(t, entries, 2)
	mockUoW.Audit.AssertExpectations(t)
}
