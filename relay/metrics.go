package relay

import "github.com/prometheus/client_golang/prometheus"

var (
	messagesFanned = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "protov2",
		Subsystem: "relay",
		Name:      "messages_fanned_total",
		Help:      "Messages enqueued onto a subscriber's channel, by topic.",
	}, []string{"topic"})

	messagesDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "protov2",
		Subsystem: "relay",
		Name:      "messages_dropped_total",
		Help:      "Messages dropped under the drop-newest backpressure policy, by topic.",
	}, []string{"topic"})

	subscribersDisconnected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "protov2",
		Subsystem: "relay",
		Name:      "subscribers_disconnected_total",
		Help:      "Subscribers evicted under the disconnect backpressure policy, by topic.",
	}, []string{"topic"})
)

func init() {
	prometheus.MustRegister(messagesFanned, messagesDropped, subscribersDisconnected)
}
