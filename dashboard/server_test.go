package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"clubauction/models"
	"clubauction/service"
)

type mockSnapshotService struct {
	mock.Mock
}

func (m *mockSnapshotService) GetClubValue(ctx context.Context, clubID int64) (*models.Club, error) {
	args := m.Called(ctx, clubID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Club), args.Error(1)
}

func (m *mockSnapshotService) MarketHistory(ctx context.Context, clubID int64, since time.Time) ([]*models.MarketValuePoint, error) {
	args := m.Called(ctx, clubID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MarketValuePoint), args.Error(1)
}

func (m *mockSnapshotService) SaleHistoryBetween(ctx context.Context, from, to time.Time) ([]*models.SaleHistory, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SaleHistory), args.Error(1)
}

func (m *mockSnapshotService) ClubSales(ctx context.Context, clubID int64, limit int) ([]*models.SaleHistory, error) {
	args := m.Called(ctx, clubID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SaleHistory), args.Error(1)
}

func (m *mockSnapshotService) AuditTail(ctx context.Context, limit int) ([]*models.AuditEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditEntry), args.Error(1)
}

func (m *mockSnapshotService) ListClubs(ctx context.Context) ([]*models.Club, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Club), args.Error(1)
}

func (m *mockSnapshotService) WeeklyReport(ctx context.Context, now time.Time) (*models.WeeklyReport, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WeeklyReport), args.Error(1)
}

type staticRounds []service.RoundStatus

func (r staticRounds) ActiveRounds() []service.RoundStatus {
	return r
}

var fixedNow = time.Date(2024, 5, 8, 12, 0, 0, 0, time.UTC)

func newTestServer(rounds staticRounds) (*Server, *mockSnapshotService, *prometheus.Registry) {
	snapshots := new(mockSnapshotService)
	reg := prometheus.NewRegistry()
	s := NewServer(":0", snapshots, rounds, reg)
	s.now = func() time.Time { return fixedNow }
	return s, snapshots, reg
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestServer_Club(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		s, snapshots, _ := newTestServer(nil)
		snapshots.On("GetClubValue", mock.Anything, int64(1)).
			Return(&models.Club{ID: 1, Name: "Red Lions", BasePrice: 1000, MarketValue: 1234}, nil)

		rec := get(t, s, "/api/clubs/1")

		require.Equal(t, http.StatusOK, rec.Code)
		var body clubResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Red Lions", body.Name)
		assert.Equal(t, int64(1234), body.MarketValue)
	})

	t.Run("unknown club", func(t *testing.T) {
		s, snapshots, _ := newTestServer(nil)
		snapshots.On("GetClubValue", mock.Anything, int64(9)).
			Return(nil, &service.NotFoundError{Entity: "club", Key: "9"})

		rec := get(t, s, "/api/clubs/9")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "club 9 not found")
	})

	t.Run("non-numeric ID does not match", func(t *testing.T) {
		s, _, _ := newTestServer(nil)

		rec := get(t, s, "/api/clubs/abc")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("store failure hides the cause", func(t *testing.T) {
		s, snapshots, _ := newTestServer(nil)
		snapshots.On("GetClubValue", mock.Anything, int64(1)).Return(nil, errors.New("connection refused"))

		rec := get(t, s, "/api/clubs/1")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "connection refused")
	})
}

func TestServer_Sales(t *testing.T) {
	t.Run("defaults to the last week", func(t *testing.T) {
		s, snapshots, _ := newTestServer(nil)
		snapshots.On("SaleHistoryBetween", mock.Anything, fixedNow.Add(-7*24*time.Hour), fixedNow).
			Return([]*models.SaleHistory{{ID: 1, ClubID: 1, Winner: models.Group("g1"), Amount: 1100}}, nil)

		rec := get(t, s, "/api/sales")

		require.Equal(t, http.StatusOK, rec.Code)
		var body []saleResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body, 1)
		assert.Equal(t, "group:g1", body[0].Winner)
	})

	t.Run("explicit window", func(t *testing.T) {
		s, snapshots, _ := newTestServer(nil)
		from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
		snapshots.On("SaleHistoryBetween", mock.Anything, from, to).Return([]*models.SaleHistory{}, nil)

		rec := get(t, s, "/api/sales?from=2024-05-01T00:00:00Z&to=2024-05-02T00:00:00Z")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
	})

	t.Run("rejects inverted window", func(t *testing.T) {
		s, snapshots, _ := newTestServer(nil)

		rec := get(t, s, "/api/sales?from=2024-05-02T00:00:00Z&to=2024-05-01T00:00:00Z")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		snapshots.AssertNotCalled(t, "SaleHistoryBetween", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects malformed time", func(t *testing.T) {
		s, _, _ := newTestServer(nil)

		rec := get(t, s, "/api/sales?from=yesterday")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_Audit(t *testing.T) {
	s, snapshots, _ := newTestServer(nil)
	snapshots.On("AuditTail", mock.Anything, 0).Return([]*models.AuditEntry{{ID: 2, Entry: "b"}, {ID: 1, Entry: "a"}}, nil)
	snapshots.On("AuditTail", mock.Anything, 5).Return([]*models.AuditEntry{{ID: 2, Entry: "b"}}, nil)

	rec := get(t, s, "/api/audit")
	require.Equal(t, http.StatusOK, rec.Code)
	var body []auditResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body, 2)

	rec = get(t, s, "/api/audit?limit=5")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, s, "/api/audit?limit=-1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Rounds(t *testing.T) {
	endsAt := fixedNow.Add(30 * time.Second)
	s, _, _ := newTestServer(staticRounds{{
		Key:    models.NewItemKey(models.ItemTypeClub, 1),
		State:  service.TimerArmed,
		EndsAt: endsAt,
	}})

	rec := get(t, s, "/api/rounds")

	require.Equal(t, http.StatusOK, rec.Code)
	var body []roundResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "club:1", body[0].Item)
	assert.Equal(t, "armed", body[0].State)
	assert.True(t, endsAt.Equal(body[0].EndsAt))
}

func TestServer_Metrics(t *testing.T) {
	s, _, reg := newTestServer(nil)
	metrics := service.NewMetrics(reg)
	metrics.MarketDrifts.Inc()

	rec := get(t, s, "/metrics")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "clubauction_market_drift_runs_total 1")
}

func TestServer_Health(t *testing.T) {
	s, _, _ := newTestServer(nil)

	rec := get(t, s, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_RejectsWrites(t *testing.T) {
	s, _, _ := newTestServer(nil)

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/clubs", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
