package storequeue

import "github.com/prometheus/client_golang/prometheus"

var (
	heartbeats = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storecast_heartbeats_total",
			Help: "Heartbeats received, by reported store status",
		},
		[]string{"status"},
	)
	queueReads = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storecast_queue_reads_total",
			Help: "Queue status reads served to store players",
		},
	)
	overrideServes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storecast_emergency_overrides_served_total",
			Help: "Responses that carried an active emergency override",
		},
	)
)

func RegisterMetrics() {
	prometheus.MustRegister(heartbeats, queueReads, overrideServes)
}
