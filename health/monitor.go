package health

import (
	"cmp"
	"encoding/json"
	"maps"
	"net/http"
	"slices"
	"sync"
	"time"
)

// Recorder receives the level of every stored status. metric.Metrics
// implements it.
type Recorder interface {
	RecordHealthStatus(component string, level int)
}

// Monitor holds the latest status of each named component. It is safe for
// concurrent use.
type Monitor struct {
	recorder Recorder

	mu       sync.RWMutex
	statuses map[string]Status
}

// NewMonitor returns an empty monitor. recorder may be nil.
func NewMonitor(recorder Recorder) *Monitor {
	return &Monitor{recorder: recorder, statuses: make(map[string]Status)}
}

// Update stores status under name, stamping it when no timestamp is set.
func (m *Monitor) Update(name string, status Status) {
	status.Component = name
	if status.Timestamp.IsZero() {
		status.Timestamp = time.Now()
	}

	m.mu.Lock()
	m.statuses[name] = status
	m.mu.Unlock()

	if m.recorder != nil {
		m.recorder.RecordHealthStatus(name, status.Level())
	}
}

func (m *Monitor) UpdateHealthy(name, message string)   { m.Update(name, NewHealthy(name, message)) }
func (m *Monitor) UpdateDegraded(name, message string)  { m.Update(name, NewDegraded(name, message)) }
func (m *Monitor) UpdateUnhealthy(name, message string) { m.Update(name, NewUnhealthy(name, message)) }

// UpdateRing derives the status of a ring, stores it under name and returns it.
func (m *Monitor) UpdateRing(name string, src RingSource, th Thresholds) Status {
	status := FromRing(name, src, th)
	m.Update(name, status)
	return status
}

func (m *Monitor) Get(name string) (Status, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	status, ok := m.statuses[name]
	return status, ok
}

// GetAll returns a copy of every stored status.
func (m *Monitor) GetAll() map[string]Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.statuses)
}

func (m *Monitor) Remove(name string) {
	m.mu.Lock()
	delete(m.statuses, name)
	m.mu.Unlock()
}

func (m *Monitor) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.statuses)
}

// AggregateHealth folds every component into one status for systemName.
// Sub-statuses are ordered by component name.
func (m *Monitor) AggregateHealth(systemName string) Status {
	m.mu.RLock()
	subs := slices.Collect(maps.Values(m.statuses))
	m.mu.RUnlock()

	slices.SortFunc(subs, func(a, b Status) int { return cmp.Compare(a.Component, b.Component) })
	return Aggregate(systemName, subs)
}

// Handler serves the aggregated status as JSON, answering 503 while unhealthy.
func (m *Monitor) Handler(systemName string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		status := m.AggregateHealth(systemName)

		w.Header().Set("Content-Type", "application/json")
		if status.IsUnhealthy() {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(status)
	})
}
