package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors
type Metrics struct {
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
	WSConnections      prometheus.Gauge
	WSMessagesSent     prometheus.Counter
	EntitiesChanged    prometheus.Counter
	SuggestionsEmitted *prometheus.CounterVec
	ScenesActivated    prometheus.Counter
	RefreshesRejected  prometheus.Counter
}

// New registers the service collectors on the given registerer
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dashview_http_requests_total",
			Help: "HTTP requests by method, path and status",
		}, []string{"method", "path", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dashview_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		WSConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dashview_websocket_connections",
			Help: "Currently connected websocket clients",
		}),
		WSMessagesSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "dashview_websocket_messages_sent_total",
			Help: "Messages pushed to websocket clients",
		}),
		EntitiesChanged: factory.NewCounter(prometheus.CounterOpts{
			Name: "dashview_state_entities_changed_total",
			Help: "Entity changes detected by the diff engine",
		}),
		SuggestionsEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dashview_suggestions_emitted_total",
			Help: "Suggestions emitted by rule id",
		}, []string{"rule_id"}),
		ScenesActivated: factory.NewCounter(prometheus.CounterOpts{
			Name: "dashview_scenes_activated_total",
			Help: "Scene activations",
		}),
		RefreshesRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "dashview_refreshes_rejected_total",
			Help: "Refresh requests rejected by throttle or mutual exclusion",
		}),
	}
}
