package ring

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/spscring/metric"
)

// ringMetrics holds Prometheus metrics for ring operations.
type ringMetrics struct {
	puts       prometheus.Counter
	gets       prometheus.Counter
	peeks      prometheus.Counter
	overflows  prometheus.Counter
	underflows prometheus.Counter
	drops      prometheus.Counter

	length      prometheus.Gauge
	utilization prometheus.Gauge
}

func newCounter(prefix, name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   "spscring",
		Subsystem:   "ring",
		Name:        name,
		ConstLabels: prometheus.Labels{"component": prefix},
		Help:        help,
	})
}

func newGauge(prefix, name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   "spscring",
		Subsystem:   "ring",
		Name:        name,
		ConstLabels: prometheus.Labels{"component": prefix},
		Help:        help,
	})
}

// newRingMetrics creates and registers ring metrics with the provided registry.
// On a registration error the metrics registered so far are removed again.
func newRingMetrics(registry *metric.MetricsRegistry, prefix string) (*ringMetrics, error) {
	m := &ringMetrics{
		puts:        newCounter(prefix, "puts_total", "Total number of successful puts"),
		gets:        newCounter(prefix, "gets_total", "Total number of successful gets"),
		peeks:       newCounter(prefix, "peeks_total", "Total number of successful peeks"),
		overflows:   newCounter(prefix, "overflows_total", "Total number of puts on a full ring"),
		underflows:  newCounter(prefix, "underflows_total", "Total number of gets or peeks on an empty ring"),
		drops:       newCounter(prefix, "drops_total", "Total number of elements discarded by the overwrite policy"),
		length:      newGauge(prefix, "length", "Current number of queued elements"),
		utilization: newGauge(prefix, "utilization", "Queued elements relative to usable capacity (0.0 to 1.0)"),
	}

	counters := []struct {
		name string
		c    prometheus.Counter
	}{
		{"ring_puts", m.puts},
		{"ring_gets", m.gets},
		{"ring_peeks", m.peeks},
		{"ring_overflows", m.overflows},
		{"ring_underflows", m.underflows},
		{"ring_drops", m.drops},
	}
	gauges := []struct {
		name string
		g    prometheus.Gauge
	}{
		{"ring_length", m.length},
		{"ring_utilization", m.utilization},
	}

	var registered []string
	rollback := func() {
		for _, name := range registered {
			registry.Unregister(prefix, name)
		}
	}

	for _, entry := range counters {
		if err := registry.RegisterCounter(prefix, entry.name, entry.c); err != nil {
			rollback()
			return nil, err
		}
		registered = append(registered, entry.name)
	}
	for _, entry := range gauges {
		if err := registry.RegisterGauge(prefix, entry.name, entry.g); err != nil {
			rollback()
			return nil, err
		}
		registered = append(registered, entry.name)
	}

	return m, nil
}

func (m *ringMetrics) recordPut(n, length, usable int) {
	m.puts.Add(float64(n))
	m.updateLen(length, usable)
}

func (m *ringMetrics) recordGet(n, length, usable int) {
	m.gets.Add(float64(n))
	m.updateLen(length, usable)
}

func (m *ringMetrics) recordPeek() {
	m.peeks.Inc()
}

func (m *ringMetrics) recordOverflow() {
	m.overflows.Inc()
}

func (m *ringMetrics) recordUnderflow() {
	m.underflows.Inc()
}

func (m *ringMetrics) recordDrop() {
	m.drops.Inc()
}

func (m *ringMetrics) updateLen(length, usable int) {
	m.length.Set(float64(length))
	if usable > 0 {
		m.utilization.Set(float64(length) / float64(usable))
	}
}
