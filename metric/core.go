package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains driver-level metrics shared by every ring an application
// runs. Per-ring counters live in the ring package and are registered through
// MetricsRegistry.
type Metrics struct {
	ItemsProduced   *prometheus.CounterVec
	ItemsConsumed   *prometheus.CounterVec
	ProducerRetries *prometheus.CounterVec
	OrderViolations *prometheus.CounterVec
	HealthStatus    *prometheus.GaugeVec
}

// NewMetrics creates a new Metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		ItemsProduced: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "spscring",
				Subsystem: "driver",
				Name:      "items_produced_total",
				Help:      "Total number of items accepted by a ring",
			},
			[]string{"ring"},
		),

		ItemsConsumed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "spscring",
				Subsystem: "driver",
				Name:      "items_consumed_total",
				Help:      "Total number of items taken from a ring",
			},
			[]string{"ring"},
		),

		ProducerRetries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "spscring",
				Subsystem: "driver",
				Name:      "producer_retries_total",
				Help:      "Total number of put attempts repeated after an overflow",
			},
			[]string{"ring"},
		),

		OrderViolations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "spscring",
				Subsystem: "driver",
				Name:      "order_violations_total",
				Help:      "Items observed out of FIFO order by the consumer",
			},
			[]string{"ring"},
		),

		HealthStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "spscring",
				Subsystem: "health",
				Name:      "status",
				Help:      "Health status (0=unhealthy, 1=degraded, 2=healthy)",
			},
			[]string{"component"},
		),
	}
}

func (c *Metrics) mustRegister(reg *prometheus.Registry) {
	reg.MustRegister(
		c.ItemsProduced,
		c.ItemsConsumed,
		c.ProducerRetries,
		c.OrderViolations,
		c.HealthStatus,
	)
}

// RecordProduced adds n accepted items for a ring
func (c *Metrics) RecordProduced(ring string, n int) {
	c.ItemsProduced.WithLabelValues(ring).Add(float64(n))
}

// RecordConsumed adds n consumed items for a ring
func (c *Metrics) RecordConsumed(ring string, n int) {
	c.ItemsConsumed.WithLabelValues(ring).Add(float64(n))
}

// RecordRetry increments the producer retry counter
func (c *Metrics) RecordRetry(ring string) {
	c.ProducerRetries.WithLabelValues(ring).Inc()
}

// RecordOrderViolation increments the FIFO violation counter
func (c *Metrics) RecordOrderViolation(ring string) {
	c.OrderViolations.WithLabelValues(ring).Inc()
}

// RecordHealthStatus updates the health gauge. level follows the Help text.
func (c *Metrics) RecordHealthStatus(component string, level int) {
	c.HealthStatus.WithLabelValues(component).Set(float64(level))
}
