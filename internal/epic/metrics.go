package epic

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess   = "success"
	outcomeFailure   = "failure"
	outcomeDiscarded = "discarded"
)

// Metrics counts effect outcomes per slice.
type Metrics struct {
	// Labels: slice (tags, articles), outcome (success, failure, discarded)
	Requests *prometheus.CounterVec

	// Labels: slice
	Superseded *prometheus.CounterVec

	// Labels: slice
	FetchDuration *prometheus.HistogramVec
}

// NewMetrics registers the effect metrics on reg. A nil reg leaves them
// unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scrollfeed",
			Subsystem: "effect",
			Name:      "requests_total",
			Help:      "Fetch requests handled by the effect processor, by terminal outcome.",
		}, []string{"slice", "outcome"}),
		Superseded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scrollfeed",
			Subsystem: "effect",
			Name:      "superseded_total",
			Help:      "In-flight fetches cancelled by a newer request for the same slice.",
		}, []string{"slice"}),
		FetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "scrollfeed",
			Subsystem: "effect",
			Name:      "fetch_duration_seconds",
			Help:      "Time spent in the gateway per fetch.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"slice"}),
	}
}
