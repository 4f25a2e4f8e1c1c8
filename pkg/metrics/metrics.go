package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threadloom_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// TokenRotations counts refresh-credential rotations by outcome
	// (success|invalid|transient).
	TokenRotations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threadloom_token_rotations_total",
			Help: "Total number of refresh token rotation attempts",
		},
		[]string{"result"},
	)

	// ActiveSessions tracks refresh sessions that are neither expired nor revoked.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "threadloom_active_sessions",
			Help: "Number of active refresh sessions",
		},
	)

	// MediaUploads counts media store uploads by kind (image|video).
	MediaUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threadloom_media_uploads_total",
			Help: "Total number of media uploads",
		},
		[]string{"kind"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "threadloom_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
