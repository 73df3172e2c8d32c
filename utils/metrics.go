package utils

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ReqCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waterbuddy_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ReqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "waterbuddy_request_duration_seconds",
			Help: "Request duration seconds",
		},
		[]string{"method", "path"},
	)

	ErrorCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waterbuddy_errors_total",
			Help: "Total app errors",
		},
		[]string{"handler", "type"},
	)

	StorageErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waterbuddy_storage_errors_total",
			Help: "Storage adapter failures by backend and operation",
		},
		[]string{"backend", "op"},
	)

	IntakeLogged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "waterbuddy_intake_logged_total",
			Help: "Number of intake log operations",
		},
	)

	MilestonesFired = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waterbuddy_milestones_fired_total",
			Help: "Daily milestones reached, by threshold",
		},
		[]string{"threshold"},
	)
)

func InitMetrics() {
	prometheus.MustRegister(
		ReqCount, ReqDuration, ErrorCount,
		StorageErrors, IntakeLogged, MilestonesFired,
	)
}
