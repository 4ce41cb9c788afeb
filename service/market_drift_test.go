package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"clubauction/config"
	"clubauction/events"
	"clubauction/models"
)

func TestDriftValue(t *testing.T) {
	tests := []struct {
		name    string
		current int64
		bids    int
		u       float64
		want    int64
	}{
		{"no swing, no bids", 1000, 0, 0.5, 1000},
		{"single bid earns nothing", 1000, 1, 0.5, 1000},
		{"each extra bid adds a tenth of a percent", 1000, 3, 0.5, 1002},
		{"largest drop", 1000, 0, 0, 970},
		{"largest rise", 1000, 0, 1, 1030},
		{"truncates toward zero", 1234, 0, 0.5 + 1.0/6, 1246},
		{"clamped at the floor", 100, 0, 0, 100},
		{"recovers from below the floor", 50, 0, 0.5, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DriftValue(tt.current, tt.bids, tt.u, 100))
		})
	}
}

func createTestDriftWorker(u float64) (*MarketDriftWorker, *MockUnitOfWork, *prometheus.Registry) {
	mockUoW := NewMockUnitOfWork()
	mockFactory := new(MockUnitOfWorkFactory)
	mockFactory.On("Create").Return(mockUoW)

	reg := prometheus.NewRegistry()
	worker := NewMarketDriftWorker(mockFactory, config.NewTestConfig(), NewMetrics(reg))
	worker.random = func() float64 { return u }
	return worker, mockUoW, reg
}

func driftRuns(t *testing.T, reg *prometheus.Registry) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() == "clubauction_market_drift_runs_total" {
			return family.GetMetric()[0].GetCounter().GetValue()
		}
	}
	return 0
}

func TestMarketDriftWorker_RunOnce(t *testing.T) {
	ctx := context.Background()
	worker, mockUoW, reg := createTestDriftWorker(0.5)

	club := &models.Club{ID: 1, Name: "alpha", BasePrice: 1000, MarketValue: 1200}
	setupBasicTransactionMocks(mockUoW)
	mockUoW.Clubs.On("List", ctx).Return([]*models.Club{club}, nil)
	mockUoW.Clubs.On("GetByID", ctx, int64(1)).Return(club, nil)
	mockUoW.Bids.On("CountByItem", ctx, club.Key()).Return(6, nil)
	mockUoW.Clubs.On("UpdateMarketValue", ctx, int64(1), int64(1206)).Return(nil)
	mockUoW.Clubs.On("RecordMarketValue", ctx, int64(1), int64(1206)).Return(nil)
	mockUoW.Audit.On("Record", ctx, "Market value of alpha updated to 1206").Return(nil)
	mockUoW.Events.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		changed, ok := e.(events.MarketValueChangedEvent)
		return ok && changed.OldValue == 1200 && changed.NewValue == 1206
	})).Return()

	updated, err := worker.RunOnce(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, updated)
	assert.Equal(t, float64(1), driftRuns(t, reg))
	mockUoW.AssertRepositoryExpectations(t)
}

func TestMarketDriftWorker_UsesBasePriceWithoutMarketValue(t *testing.T) {
	ctx := context.Background()
	worker, mockUoW, _ := createTestDriftWorker(0)

	club := &models.Club{ID: 2, Name: "beta", BasePrice: 2000}
	setupBasicTransactionMocks(mockUoW)
	mockUoW.Clubs.On("List", ctx).Return([]*models.Club{club}, nil)
	mockUoW.Clubs.On("GetByID", ctx, int64(2)).Return(club, nil)
	mockUoW.Bids.On("CountByItem", ctx, club.Key()).Return(0, nil)
	mockUoW.Clubs.On("UpdateMarketValue", ctx, int64(2), int64(1940)).Return(nil)
	mockUoW.Clubs.On("RecordMarketValue", ctx, int64(2), int64(1940)).Return(nil)
	mockUoW.Audit.On("Record", ctx, mock.Anything).Return(nil)
	mockUoW.Events.On("Publish", eventOfType(events.EventTypeMarketValueChanged)).Return()

	updated, err := worker.RunOnce(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, updated)
	mockUoW.Clubs.AssertExpectations(t)
}

func TestMarketDriftWorker_FailedClubDoesNotStopOthers(t *testing.T) {
	ctx := context.Background()
	worker, mockUoW, _ := createTestDriftWorker(0.5)

	broken := &models.Club{ID: 1, Name: "alpha", BasePrice: 1000, MarketValue: 1000}
	healthy := &models.Club{ID: 2, Name: "beta", BasePrice: 1000, MarketValue: 1000}
	setupBasicTransactionMocks(mockUoW)
	mockUoW.Clubs.On("List", ctx).Return([]*models.Club{broken, healthy}, nil)
	mockUoW.Clubs.On("GetByID", ctx, int64(1)).Return(nil, errors.New("connection reset"))
	mockUoW.Clubs.On("GetByID", ctx, int64(2)).Return(healthy, nil)
	mockUoW.Bids.On("CountByItem", ctx, healthy.Key()).Return(0, nil)
	mockUoW.Clubs.On("UpdateMarketValue", ctx, int64(2), int64(1000)).Return(nil)
	mockUoW.Clubs.On("RecordMarketValue", ctx, int64(2), int64(1000)).Return(nil)
	mockUoW.Audit.On("Record", ctx, mock.Anything).Return(nil)
	mockUoW.Events.On("Publish", mock.Anything).Return()

	updated, err := worker.RunOnce(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, updated)
	mockUoW.Clubs.AssertNotCalled(t, "UpdateMarketValue", ctx, int64(1), mock.Anything)
}

func TestMarketDriftWorker_ListFailure(t *testing.T) {
	ctx := context.Background()
	worker, mockUoW, reg := createTestDriftWorker(0.5)

	setupReadOnlyTransactionMocks(mockUoW)
	mockUoW.Clubs.On("List", ctx).Return(nil, errors.New("database is down"))

	_, err := worker.RunOnce(ctx)

	assert.Error(t, err)
	assert.Equal(t, float64(0), driftRuns(t, reg))
}

func TestMarketDriftWorker_StopEndsLoop(t *testing.T) {
	worker, _, _ := createTestDriftWorker(0.5)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := worker.Start(ctx)
	stop()
}
