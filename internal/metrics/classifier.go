package metrics

import "github.com/prometheus/client_golang/prometheus"

// Classifier Prometheus metrics.
var (
	ClassificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mona",
			Name:      "classifications_total",
			Help:      "Total number of classified queries",
		},
		[]string{"intent"},
	)

	ClassificationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "mona",
			Name:      "classification_duration_seconds",
			Help:      "Query classification duration in seconds",
			Buckets:   []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01},
		},
	)

	ClassifierRegexFaultsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mona",
			Name:      "classifier_regex_faults_total",
			Help:      "Total classification rules skipped due to regex compile errors",
		},
	)

	ClassifierFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mona",
			Name:      "classifier_fallbacks_total",
			Help:      "Total chat requests routed to retrieval because classification failed",
		},
	)
)

var classifierMetricsRegistered bool

// RegisterClassifierMetrics registers classifier metrics. Must be called once from main.
func RegisterClassifierMetrics() {
	if classifierMetricsRegistered {
		return
	}
	prometheus.MustRegister(ClassificationsTotal)
	prometheus.MustRegister(ClassificationDuration)
	prometheus.MustRegister(ClassifierRegexFaultsTotal)
	prometheus.MustRegister(ClassifierFallbacksTotal)
	classifierMetricsRegistered = true
}
