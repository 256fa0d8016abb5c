package ring

import (
	"github.com/c360/spscring/errors"
	"github.com/c360/spscring/metric"
)

// observer feeds Statistics (always) and Prometheus (when enabled) from the
// ring operations. It holds no locks.
type observer struct {
	stats   *Statistics
	metrics *ringMetrics
}

func newObserver(component string, registry *metric.MetricsRegistry, prefix string) (observer, error) {
	o := observer{stats: NewStatistics()}
	if registry == nil || prefix == "" {
		return o, nil
	}

	m, err := newRingMetrics(registry, prefix)
	if err != nil {
		return observer{}, errors.WrapTransient(err, component, "New", "metrics registration")
	}
	o.metrics = m
	return o, nil
}

func (o *observer) put(n int, c *cursors) {
	length := c.Len()
	o.stats.PutN(n)
	o.stats.UpdateLen(int64(length))
	if o.metrics != nil {
		o.metrics.recordPut(n, length, c.Usable())
	}
}

func (o *observer) get(n int, c *cursors) {
	length := c.Len()
	o.stats.GetN(n)
	o.stats.UpdateLen(int64(length))
	if o.metrics != nil {
		o.metrics.recordGet(n, length, c.Usable())
	}
}

func (o *observer) peek() {
	o.stats.Peek()
	if o.metrics != nil {
		o.metrics.recordPeek()
	}
}

func (o *observer) overflow() {
	o.stats.Overflow()
	if o.metrics != nil {
		o.metrics.recordOverflow()
	}
}

func (o *observer) underflow() {
	o.stats.Underflow()
	if o.metrics != nil {
		o.metrics.recordUnderflow()
	}
}

func (o *observer) drop() {
	o.stats.Drop()
	if o.metrics != nil {
		o.metrics.recordDrop()
	}
}

func (o *observer) reject() {
	o.stats.Reject()
}

func (o *observer) reset(fill bool, c *cursors) {
	if fill {
		o.stats.Fill()
	} else {
		o.stats.Clear()
	}
	o.stats.UpdateLen(0)
	if o.metrics != nil {
		o.metrics.updateLen(0, c.Usable())
	}
}
