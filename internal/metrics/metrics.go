package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Requests counts accepted media requests by kind
	Requests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tubegram",
		Name:      "requests_total",
		Help:      "Media requests accepted, by requested kind.",
	}, []string{"kind"})

	// Outcomes counts terminal outcomes by kind and failure category ("ok" on success)
	Outcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tubegram",
		Name:      "outcomes_total",
		Help:      "Terminal acquisition outcomes, by kind and category.",
	}, []string{"kind", "category"})

	// Deliveries counts delivery actions
	Deliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tubegram",
		Name:      "deliveries_total",
		Help:      "Delivery actions taken for successful acquisitions.",
	}, []string{"action"})

	// ExtractionSeconds observes the wall time of one extraction call
	ExtractionSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tubegram",
		Name:      "extraction_duration_seconds",
		Help:      "Duration of extraction tool calls.",
		Buckets:   []float64{1, 2, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"kind"})

	// InFlight tracks requests currently being processed
	InFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "tubegram",
		Name:      "requests_in_flight",
		Help:      "Requests currently being processed.",
	})

	// CleanedArtifacts counts files removed from the working directory
	CleanedArtifacts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tubegram",
		Name:      "artifacts_cleaned_total",
		Help:      "Artifacts removed from the working directory.",
	})
)
