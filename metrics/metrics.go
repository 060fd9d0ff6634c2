// Package metrics exposes GETFILE server/client activity as Prometheus
// gauges and counters: queue depth, active workers, open connections, and
// bytes served/received. Modeled on
// _examples/etalazz-vsa/internal/ratelimiter/telemetry/churn's package-level
// metric vars registered once via prometheus.MustRegister, with an optional
// side HTTP server serving /metrics through promhttp.Handler.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	QueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "getfile",
		Name:      "queue_depth",
		Help:      "Number of tasks currently queued in a worker pool.",
	})
	ActiveWorkers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "getfile",
		Name:      "active_workers",
		Help:      "Number of worker goroutines currently processing a task.",
	})
	OpenConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "getfile",
		Name:      "open_connections",
		Help:      "Number of accepted connections not yet closed.",
	})
	BytesServed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "getfile",
		Name:      "bytes_served_total",
		Help:      "Total bytes written to clients by the server.",
	})
	BytesReceived = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "getfile",
		Name:      "bytes_received_total",
		Help:      "Total bytes read from servers by the client.",
	})
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "getfile",
		Name:      "requests_total",
		Help:      "Total requests handled, labeled by outcome status.",
	}, []string{"status"})
)

func init() {
	prometheus.MustRegister(QueueDepth, ActiveWorkers, OpenConnections, BytesServed, BytesReceived, RequestsTotal)
}

// Server is the optional loopback-bound /metrics exporter (NON-GOALS: no
// TLS on this side-port either).
type Server struct {
	http *http.Server
}

// Serve starts the exporter on addr in the background and returns
// immediately; Close shuts it down. An empty addr means the caller never
// wanted the exporter, so Serve is skipped entirely by callers.
func Serve(addr string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	s := &Server{http: &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}}
	go func() {
		_ = s.http.ListenAndServe()
	}()
	return s
}

// Close shuts the exporter down.
func (s *Server) Close(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
