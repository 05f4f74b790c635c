package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	LoginSuccess = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "login_success_total",
		Help: "Total successful login attempts",
	})

	LoginFailure = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "login_failure_total",
		Help: "Total failed login attempts",
	}, []string{"reason"})

	// resource: complaint / listing / lost_found
	RateLimited = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rate_limited_total",
		Help: "Creations rejected by the store rate limit",
	}, []string{"resource"})

	UpvoteToggles = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "complaint_upvote_toggles_total",
		Help: "Upvote toggles by outcome",
	}, []string{"outcome"})

	ChatMessages = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_messages_posted_total",
		Help: "Total chat messages persisted",
	})

	ChatClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_connected_clients",
		Help: "WebSocket clients attached to this instance",
	})

	OutboxRelayed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_relayed_total",
		Help: "Outbox events handed to kafka by result",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(
		RequestDuration,
		LoginSuccess,
		LoginFailure,
		RateLimited,
		UpvoteToggles,
		ChatMessages,
		ChatClients,
		OutboxRelayed,
	)
}
