package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Presence metrics
	ConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chatpi_connections_active",
			Help: "Live websocket connections",
		},
	)

	MembersActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chatpi_members_active",
			Help: "Members currently present across all rooms",
		},
	)

	RoomsTracked = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chatpi_rooms_tracked",
			Help: "Rooms known to the registry, empty ones included",
		},
	)

	JoinsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatpi_joins_total",
			Help: "Join events by reconciliation outcome",
		},
		[]string{"outcome"}, // "new", "reconnect", "reannounce", "rejected"
	)

	LeavesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatpi_leaves_total",
			Help: "Explicit leave-room removals",
		},
	)

	DisconnectsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatpi_disconnects_total",
			Help: "Disconnects that removed a member",
		},
	)

	// Chat relay metrics
	ChatRelayedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatpi_chat_relayed_total",
			Help: "Chat messages relayed to a room",
		},
	)

	ChatDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatpi_chat_dropped_total",
			Help: "Chat messages silently dropped",
		},
		[]string{"reason"}, // "empty", "no_room", "throttled"
	)

	// Backend notifier metrics
	NotifyFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatpi_notify_failures_total",
			Help: "Failed meeting-service notifications",
		},
		[]string{"op"}, // "add", "remove"
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatpi_rate_limit_hits_total",
			Help: "Requests or messages rejected by rate limiting",
		},
		[]string{"scope"}, // "http", "chat"
	)
)
