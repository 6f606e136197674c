package lmclient

import "github.com/prometheus/client_golang/prometheus"

var (
	transportCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lmsbridge",
			Subsystem: "client",
			Name:      "transport_calls_total",
			Help:      "Transport attempts by operation, transport and outcome",
		},
		[]string{"op", "transport", "outcome"},
	)

	fallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lmsbridge",
			Subsystem: "client",
			Name:      "fallbacks_total",
			Help:      "Calls that fell back from the primary to the secondary transport",
		},
		[]string{"op"},
	)

	callDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lmsbridge",
			Subsystem: "client",
			Name:      "call_duration_seconds",
			Help:      "Duration of facade calls including any fallback attempt",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(transportCallsTotal, fallbacksTotal, callDuration)
}

func outcomeLabel(err error) string {
	if err == nil {
		return "ok"
	}
	return string(KindOf(err))
}
