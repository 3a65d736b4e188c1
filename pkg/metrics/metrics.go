package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RoomsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "linkcable",
		Name:      "rooms_created_total",
		Help:      "Rooms created since start.",
	})

	PlayersSeated = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "linkcable",
		Name:      "players_seated",
		Help:      "Players currently holding a seat in any room.",
	})

	Sessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "linkcable",
		Name:      "sessions_open",
		Help:      "Open websocket sessions.",
	})

	EventsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "linkcable",
		Name:      "events_sent_total",
		Help:      "Events handed to a session by the registry, by cmd.",
	}, []string{"cmd"})

	EventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "linkcable",
		Name:      "events_dropped_total",
		Help:      "Events refused by a full session buffer, by cmd.",
	}, []string{"cmd"})

	FramesIgnored = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "linkcable",
		Name:      "frames_ignored_total",
		Help:      "Inbound frames dropped by sessions, by reason.",
	}, []string{"reason"})
)

// Handler exposes Prometheus metrics at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
