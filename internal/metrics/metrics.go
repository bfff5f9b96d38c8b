package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP handler latency by method, route and status.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		},
		[]string{"method", "route", "status"},
	)

	// RecordsAppended counts successful appends per collection.
	RecordsAppended = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_records_appended_total",
			Help: "Number of records appended per collection",
		},
		[]string{"collection"},
	)

	// ReferralValidations counts public referral validations by outcome.
	ReferralValidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "referral_validations_total",
			Help: "Number of referral code validations by outcome",
		},
		[]string{"outcome"}, // valid or invalid
	)
)
