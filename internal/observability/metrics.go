package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	profilePersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "maternity_service",
		Subsystem: "persistence",
		Name:      "last_profile_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent pregnancy profile persisted to Postgres.",
	})
	checklistPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "maternity_service",
		Subsystem: "persistence",
		Name:      "last_checklist_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent checklist state written to Postgres.",
	})
	checklistPersistFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "maternity_service",
		Subsystem: "persistence",
		Name:      "checklist_persist_failures_total",
		Help:      "Checklist write-through failures swallowed per the best-effort save policy.",
	})
	assistantFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "maternity_service",
		Subsystem: "assistant",
		Name:      "bridge_fallbacks_total",
		Help:      "Assistant bridge calls that degraded to the fallback reply.",
	})
	contentFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "maternity_service",
		Subsystem: "content",
		Name:      "trimester_fallbacks_total",
		Help:      "Trimester content fetches served from the hard-coded fallback set.",
	})
)

func init() {
	prometheus.MustRegister(
		profilePersistGauge,
		checklistPersistGauge,
		checklistPersistFailures,
		assistantFallbacks,
		contentFallbacks,
	)
}

// RecordProfilePersisted updates the profile persistence watermark gauge.
func RecordProfilePersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	profilePersistGauge.Set(float64(ts.Unix()))
}

// RecordChecklistPersisted updates the checklist persistence watermark gauge.
func RecordChecklistPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	checklistPersistGauge.Set(float64(ts.Unix()))
}

// RecordChecklistPersistFailure counts a swallowed checklist write failure.
func RecordChecklistPersistFailure() {
	checklistPersistFailures.Inc()
}

// RecordAssistantFallback counts a degraded assistant reply.
func RecordAssistantFallback() {
	assistantFallbacks.Inc()
}

// RecordContentFallback counts a trimester fetch served from the fallback.
func RecordContentFallback() {
	contentFallbacks.Inc()
}
