package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RegistrationOutcomes counts register and RSVP submissions by result.
// outcome: created|rsvp_existing|duplicate|closed|not_found|invalid|error
var RegistrationOutcomes = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registration_outcomes_total",
		Help:      "Total number of registration and RSVP submissions by outcome",
	},
	[]string{"operation", "outcome"},
)

// RecordRegistration increments the outcome counter for one submission.
func RecordRegistration(operation, outcome string) {
	RegistrationOutcomes.WithLabelValues(operation, outcome).Inc()
}
