package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GiveawaysCreated counts successfully created giveaways.
	GiveawaysCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "giveaway_created_total",
		Help: "Number of giveaways created",
	})

	// Resolutions counts resolution outcomes by result: winner, no_winner,
	// conflict or error.
	Resolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "giveaway_resolutions_total",
		Help: "Number of giveaway resolution attempts by outcome",
	}, []string{"outcome"})

	// ResolutionDuration tracks the latency of a full resolution, from claim
	// to announcement.
	ResolutionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "giveaway_resolution_duration_seconds",
		Help:    "Duration of giveaway resolutions in seconds",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
	})

	// RejectedOptIns counts participation attempts revoked by an eligibility
	// condition.
	RejectedOptIns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "giveaway_rejected_opt_ins_total",
		Help: "Number of opt-ins revoked for failing the eligibility condition",
	})

	// StaleClaims reports giveaways claimed for resolution but never
	// finalized. Anything above zero needs operator attention.
	StaleClaims = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "giveaway_stale_claims",
		Help: "Number of giveaways stuck mid-resolution",
	})
)
