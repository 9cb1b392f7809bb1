package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts pipeline activity.
type Metrics struct {
	EventsProcessed   prometheus.Counter
	ReputationLookups prometheus.Counter
	ThreatLookups     prometheus.Counter
	LookupErrors      prometheus.Counter
	ViolationsTotal   prometheus.Counter
	AlertsCreated     prometheus.Counter
}

// NewMetrics registers the pipeline counters on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EventsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "trustmon_events_processed_total",
			Help: "Total number of page events processed",
		}),
		ReputationLookups: factory.NewCounter(prometheus.CounterOpts{
			Name: "trustmon_reputation_lookups_total",
			Help: "Total number of domain reputation checks",
		}),
		ThreatLookups: factory.NewCounter(prometheus.CounterOpts{
			Name: "trustmon_threat_lookups_total",
			Help: "Total number of threat intelligence checks",
		}),
		LookupErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "trustmon_lookup_errors_total",
			Help: "Total number of reputation lookups that ended in an error result",
		}),
		ViolationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "trustmon_policy_violations_total",
			Help: "Total number of policy violations raised",
		}),
		AlertsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "trustmon_alerts_created_total",
			Help: "Total number of security alerts admitted by the alert manager",
		}),
	}
}
