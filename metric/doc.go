// Package metric provides the Prometheus registry and HTTP exposition server
// used by spscring applications.
//
// MetricsRegistry wraps a private prometheus.Registry. It pre-registers the
// driver metrics (Metrics type) plus the Go runtime and process collectors, and
// lets components such as ring buffers add counters and gauges under a
// (component, name) key. Registering the same key twice is an invalid error,
// and Unregister frees the key again.
//
// # Basic Usage
//
//	registry := metric.NewMetricsRegistry()
//
//	r, err := ring.New(make([]Sample, 1024),
//		ring.WithMetrics[Sample](registry, "samples"),
//	)
//
//	server := metric.NewServer(9090, "/metrics", registry, monitor.Handler("ringdemo"))
//	go func() {
//		if err := server.Start(); err != nil {
//			slog.Error("metrics server failed", "error", err)
//		}
//	}()
//	defer server.Stop()
//
// The server exposes OpenMetrics at the configured path, a health endpoint at
// /health and a small index page at /.
package metric
