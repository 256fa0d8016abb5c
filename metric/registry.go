package metric

import (
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/c360/spscring/errors"
)

type registryKey struct {
	component string
	name      string
}

// MetricsRegistry owns a Prometheus registry and tracks which collectors each
// component has registered, so a component can remove its own metrics again.
type MetricsRegistry struct {
	prom       *prometheus.Registry
	core       *Metrics
	mu         sync.Mutex
	collectors map[registryKey]prometheus.Collector
}

// NewMetricsRegistry returns a registry with the driver metrics and the Go
// runtime and process collectors already registered.
func NewMetricsRegistry() *MetricsRegistry {
	r := &MetricsRegistry{
		prom:       prometheus.NewRegistry(),
		core:       NewMetrics(),
		collectors: make(map[registryKey]prometheus.Collector),
	}
	r.core.mustRegister(r.prom)
	r.prom.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// PrometheusRegistry exposes the registry for gathering and HTTP export.
func (r *MetricsRegistry) PrometheusRegistry() *prometheus.Registry {
	return r.prom
}

// CoreMetrics returns the driver-level metrics.
func (r *MetricsRegistry) CoreMetrics() *Metrics {
	return r.core
}

// RegisterCounter registers counter under component/name.
func (r *MetricsRegistry) RegisterCounter(component, name string, counter prometheus.Counter) error {
	return r.register("RegisterCounter", registryKey{component, name}, counter)
}

// RegisterGauge registers gauge under component/name.
func (r *MetricsRegistry) RegisterGauge(component, name string, gauge prometheus.Gauge) error {
	return r.register("RegisterGauge", registryKey{component, name}, gauge)
}

// register fails with an invalid error when the key is taken or Prometheus
// already holds an identical descriptor, and with a fatal error otherwise.
func (r *MetricsRegistry) register(method string, key registryKey, c prometheus.Collector) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.collectors[key]; taken {
		return errors.WrapInvalid(
			fmt.Errorf("metric %s already registered for component %s", key.name, key.component),
			"MetricsRegistry", method, "duplicate metric registration")
	}

	if err := r.prom.Register(c); err != nil {
		var dup prometheus.AlreadyRegisteredError
		if stderrors.As(err, &dup) {
			return errors.WrapInvalid(err, "MetricsRegistry", method,
				"prometheus conflict for metric "+key.name)
		}
		return errors.WrapFatal(err, "MetricsRegistry", method, "register collector")
	}

	r.collectors[key] = c
	return nil
}

// Unregister removes the collector registered under component/name and reports
// whether one was removed.
func (r *MetricsRegistry) Unregister(component, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := registryKey{component, name}
	c, ok := r.collectors[key]
	if !ok || !r.prom.Unregister(c) {
		return false
	}
	delete(r.collectors, key)
	return true
}
