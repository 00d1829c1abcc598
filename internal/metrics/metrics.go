// Package metrics holds the process-wide Prometheus collectors shared by
// every layer of the server. It exists as its own package (rather than
// living in internal/api, as the teacher's observability.go did) because
// the lobby and match packages need to record tick/vision timings and
// internal/api must not import them just to reach a metrics call — api
// only mounts the /metrics endpoint, it doesn't own the collectors it
// exposes.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics deliberately carry no per-player or per-lobby labels: unbounded
// label cardinality from up to 800 concurrent players is a DoS vector in
// its own right.
var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arenacore_physics_tick_duration_seconds",
		Help:    "Time spent in one lobby's physics tick",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
	})

	visionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arenacore_vision_compute_duration_seconds",
		Help:    "Time spent computing one player's FOV for a snapshot",
		Buckets: []float64{0.0005, 0.001, 0.002, 0.005, 0.01, 0.02},
	})

	playerCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arenacore_fleet_player_count",
		Help: "Current number of joined players across all lobbies",
	})

	lobbyCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arenacore_fleet_lobby_count",
		Help: "Current number of live lobbies",
	})

	inputAcceptedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arenacore_input_accepted_total",
		Help: "Total player input frames accepted into a lobby's queue",
	})

	inputDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arenacore_input_dropped_total",
		Help: "Input frames dropped by sequence/skew rejection or queue overflow",
	}, []string{"reason"}) // bounded: "sequence", "skew", "overflow"

	connectionRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arenacore_connection_rejected_total",
		Help: "Connections rejected by rate limiter or origin check",
	}, []string{"reason"}) // bounded: "rate_limit", "origin", "ws_total_limit", "ws_ip_limit"

	httpRequestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "arenacore_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint"}) // endpoint is the route pattern, not the raw URL

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arenacore_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arenacore_websocket_connections_active",
		Help: "Currently active WebSocket connections",
	})

	wsMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arenacore_websocket_messages_total",
		Help: "Total WebSocket messages received",
	})
)

// Handler returns the Prometheus scrape endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordTick records one lobby's physics-tick duration.
func RecordTick(d time.Duration) { tickDuration.Observe(d.Seconds()) }

// RecordVision records one player's FOV computation duration. Callers skip
// this when the cached result was reused, per the "must early-exit" vision
// performance contract.
func RecordVision(d time.Duration) { visionDuration.Observe(d.Seconds()) }

// SetPlayerCount sets the fleet-wide joined-player gauge.
func SetPlayerCount(n int) { playerCount.Set(float64(n)) }

// SetLobbyCount sets the live-lobby gauge.
func SetLobbyCount(n int) { lobbyCount.Set(float64(n)) }

// RecordInputAccepted increments the accepted-input counter.
func RecordInputAccepted() { inputAcceptedTotal.Inc() }

// RecordInputDropped increments the dropped-input counter for reason.
func RecordInputDropped(reason string) { inputDroppedTotal.WithLabelValues(reason).Inc() }

// RecordConnectionRejected increments the rejected-connection counter for reason.
func RecordConnectionRejected(reason string) { connectionRejectedTotal.WithLabelValues(reason).Inc() }

// RecordHTTPRequest records one HTTP request's latency and outcome.
func RecordHTTPRequest(method, endpoint string, status int, d time.Duration) {
	httpRequestLatency.WithLabelValues(method, endpoint).Observe(d.Seconds())
	httpRequestsTotal.WithLabelValues(method, endpoint, http.StatusText(status)).Inc()
}

// SetWSConnections sets the active-WebSocket-connections gauge.
func SetWSConnections(n int) { wsConnectionsActive.Set(float64(n)) }

// IncWSMessages increments the received-WebSocket-message counter.
func IncWSMessages() { wsMessagesTotal.Inc() }
