package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ScheduleEdits = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "campboard", Name: "schedule_edits_total", Help: "Number of committed schedule edits."},
	)
	ScheduleEditConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "campboard", Name: "schedule_edit_conflicts_total", Help: "Number of check-and-set conflicts during schedule edits."},
	)
	LiveSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "campboard", Name: "live_subscribers", Help: "Currently open live schedule subscriptions."},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "campboard", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "campboard", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(ScheduleEdits)
	reg.MustRegister(ScheduleEditConflicts)
	reg.MustRegister(LiveSubscribers)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
