package ws

import "github.com/prometheus/client_golang/prometheus"

var (
	ConnectedClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ws_connected_clients",
		Help: "WebSocket clients currently connected",
	})
	DroppedClients = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ws_dropped_clients_total",
		Help: "Clients disconnected because their send buffer was full",
	})
)

func init() {
	prometheus.MustRegister(ConnectedClients)
	prometheus.MustRegister(DroppedClients)
}
