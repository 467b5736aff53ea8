package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the coordinator's instrumentation. A single instance is
// created in main and injected where needed.
type Metrics struct {
	ActiveConnections prometheus.Gauge
	ActiveRooms       prometheus.Gauge
	InboundEvents     *prometheus.CounterVec
	BroadcastsSent    prometheus.Counter
	DroppedFrames     prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ActiveConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "searchparty_active_connections",
			Help: "Currently open websocket connections.",
		}),
		ActiveRooms: factory.NewGauge(prometheus.GaugeOpts{
			Name: "searchparty_active_rooms",
			Help: "Rooms currently held in the registry.",
		}),
		InboundEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "searchparty_inbound_events_total",
			Help: "Inbound client events processed, by event name.",
		}, []string{"event"}),
		BroadcastsSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "searchparty_broadcasts_total",
			Help: "Outbound events fanned out to room members.",
		}),
		DroppedFrames: factory.NewCounter(prometheus.CounterOpts{
			Name: "searchparty_dropped_frames_total",
			Help: "Outbound frames dropped because a client send buffer was full.",
		}),
	}
}

// Handler exposes the default prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
