package health

import (
	"fmt"

	"github.com/c360/spscring/pkg/ring"
)

// RingSource is what FromRing needs from a ring. Both ring.Ring and ring.Bytes
// satisfy it.
type RingSource interface {
	Stats() *ring.Statistics
	Usable() int
}

// Thresholds decide when ring statistics turn a ring degraded or unhealthy.
// A zero threshold disables that check.
type Thresholds struct {
	DegradedOverflowRate  float64 `json:"degraded_overflow_rate" yaml:"degraded_overflow_rate"`
	UnhealthyOverflowRate float64 `json:"unhealthy_overflow_rate" yaml:"unhealthy_overflow_rate"`
	DegradedUtilization   float64 `json:"degraded_utilization" yaml:"degraded_utilization"`
}

// DefaultThresholds returns the thresholds used when none are configured.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DegradedOverflowRate:  0.01,
		UnhealthyOverflowRate: 0.5,
		DegradedUtilization:   0.9,
	}
}

// FromRing derives a status from the ring's statistics. A ring that can never
// hold an element is unhealthy.
func FromRing(name string, src RingSource, th Thresholds) Status {
	stats := src.Stats()
	usable := src.Usable()

	rm := &RingMetrics{
		Length:        stats.CurrentLen(),
		Usable:        usable,
		Utilization:   stats.Utilization(int64(usable)),
		OverflowRate:  stats.OverflowRate(),
		UnderflowRate: stats.UnderflowRate(),
		Drops:         stats.Drops(),
		Uptime:        stats.Uptime(),
	}

	var status Status
	switch {
	case usable == 0:
		status = NewUnhealthy(name, "ring has no usable capacity")
	case th.UnhealthyOverflowRate > 0 && rm.OverflowRate >= th.UnhealthyOverflowRate:
		status = NewUnhealthy(name, fmt.Sprintf("overflow rate %.3f", rm.OverflowRate))
	case th.DegradedOverflowRate > 0 && rm.OverflowRate >= th.DegradedOverflowRate:
		status = NewDegraded(name, fmt.Sprintf("overflow rate %.3f", rm.OverflowRate))
	case th.DegradedUtilization > 0 && rm.Utilization >= th.DegradedUtilization:
		status = NewDegraded(name, fmt.Sprintf("utilization %.2f", rm.Utilization))
	default:
		status = NewHealthy(name, "ring operating normally")
	}

	status.Ring = rm
	return status
}
