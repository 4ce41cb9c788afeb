package dashboard

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"clubauction/models"
	"clubauction/service"
)

const (
	defaultHistoryWindow = 30 * 24 * time.Hour
	defaultSalesWindow   = 7 * 24 * time.Hour
	defaultClubSales     = 20
)

type clubResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slogan      string    `json:"slogan,omitempty"`
	BasePrice   int64     `json:"base_price"`
	MarketValue int64     `json:"market_value"`
	ManagerID   *int64    `json:"manager_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type pointResponse struct {
	Value      int64     `json:"value"`
	RecordedAt time.Time `json:"recorded_at"`
}

type saleResponse struct {
	ID                int64     `json:"id"`
	ClubID            int64     `json:"club_id"`
	Winner            string    `json:"winner"`
	Amount            int64     `json:"amount"`
	MarketValueAtSale int64     `json:"market_value_at_sale"`
	Forced            bool      `json:"forced"`
	SoldAt            time.Time `json:"sold_at"`
}

type auditResponse struct {
	ID        int64     `json:"id"`
	Entry     string    `json:"entry"`
	CreatedAt time.Time `json:"created_at"`
}

type roundResponse struct {
	Item   string    `json:"item"`
	State  string    `json:"state"`
	EndsAt time.Time `json:"ends_at"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toClubResponse(c *models.Club) clubResponse {
	return clubResponse{
		ID:          c.ID,
		Name:        c.Name,
		Slogan:      c.Slogan,
		BasePrice:   c.BasePrice,
		MarketValue: c.MarketValue,
		ManagerID:   c.ManagerID,
		CreatedAt:   c.CreatedAt,
	}
}

func toSaleResponses(sales []*models.SaleHistory) []saleResponse {
	out := make([]saleResponse, 0, len(sales))
	for _, sale := range sales {
		out = append(out, saleResponse{
			ID:                sale.ID,
			ClubID:            sale.ClubID,
			Winner:            sale.Winner.Encode(),
			Amount:            sale.Amount,
			MarketValueAtSale: sale.MarketValueAtSale,
			Forced:            sale.Forced,
			SoldAt:            sale.SoldAt,
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Warn("Failed to encode dashboard response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch service.Outcome(err) {
	case service.OutcomeNotFound:
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		log.WithError(err).WithField("path", r.URL.Path).Error("Dashboard query failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: message})
}

func clubID(r *http.Request) int64 {
	// the route pattern guarantees digits
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func queryInt(r *http.Request, name string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func queryTime(r *http.Request, name string, fallback time.Time) (time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleClubs(w http.ResponseWriter, r *http.Request) {
	clubs, err := s.snapshots.ListClubs(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]clubResponse, 0, len(clubs))
	for _, club := range clubs {
		out = append(out, toClubResponse(club))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleClub(w http.ResponseWriter, r *http.Request) {
	club, err := s.snapshots.GetClubValue(r.Context(), clubID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toClubResponse(club))
}

func (s *Server) handleClubHistory(w http.ResponseWriter, r *http.Request) {
	since, ok := queryTime(r, "since", s.now().Add(-defaultHistoryWindow))
	if !ok {
		badRequest(w, "since must be an RFC 3339 timestamp")
		return
	}

	points, err := s.snapshots.MarketHistory(r.Context(), clubID(r), since)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]pointResponse, 0, len(points))
	for _, p := range points {
		out = append(out, pointResponse{Value: p.Value, RecordedAt: p.RecordedAt})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleClubSales(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit", defaultClubSales)
	if !ok {
		badRequest(w, "limit must be a positive integer")
		return
	}

	sales, err := s.snapshots.ClubSales(r.Context(), clubID(r), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSaleResponses(sales))
}

func (s *Server) handleSales(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	from, ok := queryTime(r, "from", now.Add(-defaultSalesWindow))
	if !ok {
		badRequest(w, "from must be an RFC 3339 timestamp")
		return
	}
	to, ok := queryTime(r, "to", now)
	if !ok {
		badRequest(w, "to must be an RFC 3339 timestamp")
		return
	}
	if !from.Before(to) {
		badRequest(w, "from must be before to")
		return
	}

	sales, err := s.snapshots.SaleHistoryBetween(r.Context(), from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSaleResponses(sales))
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit", 0)
	if !ok {
		badRequest(w, "limit must be a positive integer")
		return
	}

	entries, err := s.snapshots.AuditTail(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]auditResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, auditResponse{ID: e.ID, Entry: e.Entry, CreatedAt: e.CreatedAt})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRounds(w http.ResponseWriter, r *http.Request) {
	rounds := s.rounds.ActiveRounds()

	out := make([]roundResponse, 0, len(rounds))
	for _, round := range rounds {
		out = append(out, roundResponse{Item: round.Key.String(), State: string(round.State), EndsAt: round.EndsAt})
	}
	writeJSON(w, http.StatusOK, out)
}
