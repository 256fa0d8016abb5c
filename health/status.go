package health

import (
	"time"
)

// Status levels
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Status represents the health state of a ring or of the whole process
type Status struct {
	Component   string       `json:"component"`
	Healthy     bool         `json:"healthy"` // true if status is "healthy"
	Status      string       `json:"status"`  // "healthy", "unhealthy", "degraded"
	Message     string       `json:"message"`
	Timestamp   time.Time    `json:"timestamp"`
	SubStatuses []Status     `json:"sub_statuses,omitempty"`
	Ring        *RingMetrics `json:"ring,omitempty"`
}

// RingMetrics is the ring state a status was derived from
type RingMetrics struct {
	Length        int64         `json:"length"`
	Usable        int           `json:"usable"`
	Utilization   float64       `json:"utilization"`
	OverflowRate  float64       `json:"overflow_rate"`
	UnderflowRate float64       `json:"underflow_rate"`
	Drops         int64         `json:"drops"`
	Uptime        time.Duration `json:"uptime"`
}

// IsHealthy returns true if the status is healthy
func (s Status) IsHealthy() bool {
	return s.Status == StatusHealthy
}

// IsDegraded returns true if the status is degraded
func (s Status) IsDegraded() bool {
	return s.Status == StatusDegraded
}

// IsUnhealthy returns true if the status is unhealthy
func (s Status) IsUnhealthy() bool {
	return s.Status == StatusUnhealthy
}

// Level maps the status to the value exported by the health gauge:
// 0 unhealthy, 1 degraded, 2 healthy. Unknown statuses count as unhealthy.
func (s Status) Level() int {
	switch s.Status {
	case StatusHealthy:
		return 2
	case StatusDegraded:
		return 1
	default:
		return 0
	}
}

// WithSubStatus adds a sub-status and returns a copy
func (s Status) WithSubStatus(subStatus Status) Status {
	// Create a new slice to avoid sharing the underlying array
	newSubStatuses := make([]Status, len(s.SubStatuses), len(s.SubStatuses)+1)
	copy(newSubStatuses, s.SubStatuses)
	s.SubStatuses = append(newSubStatuses, subStatus)
	return s
}
