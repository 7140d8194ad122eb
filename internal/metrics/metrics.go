// Package metrics holds Prometheus instruments shared by the webhook
// server and the settings bootstrap.  All collectors are registered with
// the global registry, so mounting promhttp.Handler() is enough to expose
// them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SettingsSources = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "settings_sources_loaded",
			Help: "Number of settings sources merged at bootstrap.",
		})

	WebhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Webhook deliveries by provider and outcome.",
		}, []string{"provider", "outcome"})

	ReviewRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_runs_total",
			Help: "Review CLI invocations by exit status.",
		}, []string{"status"})

	ReviewRunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "review_run_duration_seconds",
			Help:    "Wall time of review CLI invocations.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		})
)

func init() {
	prometheus.MustRegister(
		SettingsSources,
		WebhookEventsTotal,
		ReviewRunsTotal,
		ReviewRunDuration,
	)
}
