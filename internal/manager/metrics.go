package manager

import "github.com/prometheus/client_golang/prometheus"

var (
	opsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modelbridge",
			Subsystem: "manager",
			Name:      "operations_total",
			Help:      "Module operations by kind and result",
		},
		[]string{"op", "result"},
	)

	liveModules = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "modelbridge",
			Subsystem: "manager",
			Name:      "live_modules",
			Help:      "Modules currently loaded",
		},
	)

	forwardDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "modelbridge",
			Subsystem: "manager",
			Name:      "forward_duration_seconds",
			Help:      "Engine time spent per forward call",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(opsTotal, liveModules, forwardDuration)
}
