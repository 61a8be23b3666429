// File: internal/utils/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts incoming HTTP requests.
	RequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auth_bridge_requests_total",
		Help: "The total number of requests",
	})

	// ResponsesTotal counts responses by status code.
	ResponsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_bridge_responses_total",
		Help: "The total number of responses by status code",
	}, []string{"status"})

	// RequestDuration observes request handling time.
	RequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "auth_bridge_request_duration_seconds",
		Help:    "The request duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// TokensIssuedTotal counts issued login tokens.
	TokensIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auth_bridge_tokens_issued_total",
		Help: "The total number of issued auth tokens",
	})

	// TelegramAuthTotal counts Telegram auth submissions by outcome.
	TelegramAuthTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_bridge_telegram_auth_total",
		Help: "The total number of Telegram auth submissions by outcome",
	}, []string{"status"})

	// AuthStatusPollsTotal counts check-auth-status polls by result.
	AuthStatusPollsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_bridge_auth_status_polls_total",
		Help: "The total number of auth status polls by result",
	}, []string{"result"})

	// TokensSweptTotal counts tokens removed by the periodic sweep.
	TokensSweptTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auth_bridge_tokens_swept_total",
		Help: "The total number of expired unclaimed tokens swept",
	})
)
