package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kumpul_chat_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kumpul_chat_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	ConversationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kumpul_chat_conversations_created_total",
			Help: "Total conversations created",
		},
		[]string{"type"}, // "direct", "group" or "event"
	)

	MessagesPosted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kumpul_chat_messages_posted_total",
			Help: "Total messages appended to the ledger",
		},
	)

	// Gateway metrics
	WSConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kumpul_chat_ws_connections_active",
			Help: "Currently registered websocket connections",
		},
	)

	WSFramesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kumpul_chat_ws_frames_total",
			Help: "Total websocket frames received",
		},
		[]string{"type"}, // "connect", "ping", "message", "legacy_message", "malformed"
	)
)
