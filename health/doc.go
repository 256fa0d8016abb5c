// Package health tracks the health of rings and of the driver process.
//
// A Status is healthy, degraded or unhealthy. FromRing derives one from ring
// statistics using Thresholds on overflow rate and utilization:
//
//	monitor := health.NewMonitor(registry.CoreMetrics())
//	monitor.UpdateRing("telemetry", r, health.DefaultThresholds())
//
// Monitor stores the latest status per component, forwards every update to an
// optional Recorder (the spscring_health_status gauge) and serves the
// aggregate over HTTP via Handler. Aggregation reports the worst sub-status.
package health
