package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"clubauction/service"
)

// RoundLister reports the auctions with a running countdown
type RoundLister interface {
	ActiveRounds() []service.RoundStatus
}

// Server is the read-only HTTP snapshot of the auction ledger
type Server struct {
	snapshots service.SnapshotService
	rounds    RoundLister
	gatherer  prometheus.Gatherer
	now       func() time.Time
	srv       *http.Server
}

// NewServer creates a dashboard listening on addr
func NewServer(addr string, snapshots service.SnapshotService, rounds RoundLister, gatherer prometheus.Gatherer) *Server {
	s := &Server{
		snapshots: snapshots,
		rounds:    rounds,
		gatherer:  gatherer,
		now:       time.Now,
	}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Router builds the route table
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/clubs", s.handleClubs).Methods(http.MethodGet)
	api.HandleFunc("/clubs/{id:[0-9]+}", s.handleClub).Methods(http.MethodGet)
	api.HandleFunc("/clubs/{id:[0-9]+}/history", s.handleClubHistory).Methods(http.MethodGet)
	api.HandleFunc("/clubs/{id:[0-9]+}/sales", s.handleClubSales).Methods(http.MethodGet)
	api.HandleFunc("/sales", s.handleSales).Methods(http.MethodGet)
	api.HandleFunc("/audit", s.handleAudit).Methods(http.MethodGet)
	api.HandleFunc("/rounds", s.handleRounds).Methods(http.MethodGet)

	return router
}

// Start serves in the background until Shutdown is called
func (s *Server) Start() {
	go func() {
		log.WithField("addr", s.srv.Addr).Info("Dashboard listening")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Dashboard server stopped unexpectedly")
		}
	}()
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down dashboard: %w", err)
	}
	return nil
}
