package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	MessagesProcessed = promauto.With(registerer).NewCounter(
		prometheus.CounterOpts{
			Name: "chatguard_messages_processed_total",
			Help: "Total number of chat messages evaluated",
		},
	)

	ActionsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatguard_actions_total",
			Help: "Enforcement actions taken, by kind",
		},
		[]string{"action"},
	)

	EnforcementFailures = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatguard_enforcement_failures_total",
			Help: "Failed enforcement calls, by failure kind",
		},
		[]string{"kind"},
	)

	DecodeFallbacks = promauto.With(registerer).NewCounter(
		prometheus.CounterOpts{
			Name: "chatguard_decode_fallbacks_total",
			Help: "Classifier responses that yielded no decisions",
		},
	)

	ClassifierErrors = promauto.With(registerer).NewCounter(
		prometheus.CounterOpts{
			Name: "chatguard_classifier_errors_total",
			Help: "Classification calls that failed entirely",
		},
	)
)

// Handler serves the registry for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
