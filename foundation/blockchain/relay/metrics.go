package relay

import "github.com/prometheus/client_golang/prometheus"

// metrics tracks the relay's traffic. The collectors are not registered
// here; the application decides which registry exposes them.
type metrics struct {
	peers     prometheus.Gauge
	received  prometheus.Counter
	forwarded prometheus.Counter
	dropped   prometheus.Counter
}

func newMetrics() *metrics {
	return &metrics{
		peers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "relay",
			Name:      "peers_connected",
			Help:      "Number of peers currently connected to the relay.",
		}),
		received: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "relay",
			Name:      "frames_received_total",
			Help:      "Frames read from peers.",
		}),
		forwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "relay",
			Name:      "frames_forwarded_total",
			Help:      "Frames written to peers.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "relay",
			Name:      "frames_dropped_total",
			Help:      "Frames that could not be queued or written to a peer.",
		}),
	}
}

// Collectors returns the relay's prometheus collectors for registration.
func (r *Relay) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		r.metrics.peers,
		r.metrics.received,
		r.metrics.forwarded,
		r.metrics.dropped,
	}
}
