package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the auction engine's Prometheus collectors
type Metrics struct {
	BidsPlaced       *prometheus.CounterVec
	BidsRejected     *prometheus.CounterVec
	AuctionsFinished *prometheus.CounterVec
	AmountSettled    prometheus.Counter
	PenaltiesApplied *prometheus.CounterVec
	ActiveRounds     prometheus.Gauge
	MarketDrifts     prometheus.Counter
}

// NewMetrics registers the collectors with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		BidsPlaced: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clubauction",
			Name:      "bids_placed_total",
			Help:      "Accepted bids by item type and bidder kind.",
		}, []string{"item_type", "bidder_kind"}),
		BidsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clubauction",
			Name:      "bids_rejected_total",
			Help:      "Rejected bids by reason.",
		}, []string{"reason"}),
		AuctionsFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clubauction",
			Name:      "auctions_finalized_total",
			Help:      "Finalized auction rounds by item type and result.",
		}, []string{"item_type", "result"}),
		AmountSettled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "clubauction",
			Name:      "amount_settled_total",
			Help:      "Sum of winning bid amounts.",
		}),
		PenaltiesApplied: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clubauction",
			Name:      "penalties_applied_total",
			Help:      "Penalties and adjustments applied by kind.",
		}, []string{"kind"}),
		ActiveRounds: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "clubauction",
			Name:      "active_rounds",
			Help:      "Items with a running countdown.",
		}),
		MarketDrifts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "clubauction",
			Name:      "market_drift_runs_total",
			Help:      "Completed market drift passes.",
		}),
	}
}
