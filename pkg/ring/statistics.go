package ring

import (
	"sync/atomic"
	"time"
)

// Statistics tracks ring activity with atomic counters only, so recording from
// the producer and consumer never takes a lock.
type Statistics struct {
	puts       atomic.Int64
	gets       atomic.Int64
	peeks      atomic.Int64
	overflows  atomic.Int64
	underflows atomic.Int64
	drops      atomic.Int64
	rejects    atomic.Int64
	clears     atomic.Int64
	fills      atomic.Int64

	currentLen atomic.Int64
	maxLen     atomic.Int64
	startTime  atomic.Int64 // unix nanoseconds
}

// NewStatistics creates a new statistics tracker.
func NewStatistics() *Statistics {
	s := &Statistics{}
	s.startTime.Store(time.Now().UnixNano())
	return s
}

// Put records a successful put.
func (s *Statistics) Put() { s.puts.Add(1) }

// PutN records n successful puts.
func (s *Statistics) PutN(n int) { s.puts.Add(int64(n)) }

// Get records a successful get.
func (s *Statistics) Get() { s.gets.Add(1) }

// GetN records n successful gets.
func (s *Statistics) GetN(n int) { s.gets.Add(int64(n)) }

// Peek records a successful peek.
func (s *Statistics) Peek() { s.peeks.Add(1) }

// Overflow records a put that found the ring full.
func (s *Statistics) Overflow() { s.overflows.Add(1) }

// Underflow records a get or peek that found the ring empty.
func (s *Statistics) Underflow() { s.underflows.Add(1) }

// Drop records an element discarded by the Overwrite policy.
func (s *Statistics) Drop() { s.drops.Add(1) }

// Reject records a call refused for a wrong element or output length.
func (s *Statistics) Reject() { s.rejects.Add(1) }

// Clear records a clear.
func (s *Statistics) Clear() { s.clears.Add(1) }

// Fill records a fill.
func (s *Statistics) Fill() { s.fills.Add(1) }

// UpdateLen records the current queue length and the high-water mark.
func (s *Statistics) UpdateLen(n int64) {
	s.currentLen.Store(n)
	for {
		peak := s.maxLen.Load()
		if n <= peak || s.maxLen.CompareAndSwap(peak, n) {
			return
		}
	}
}

// Puts returns the number of successful puts.
func (s *Statistics) Puts() int64 { return s.puts.Load() }

// Gets returns the number of successful gets.
func (s *Statistics) Gets() int64 { return s.gets.Load() }

// Peeks returns the number of successful peeks.
func (s *Statistics) Peeks() int64 { return s.peeks.Load() }

// Overflows returns the number of puts that found the ring full.
func (s *Statistics) Overflows() int64 { return s.overflows.Load() }

// Underflows returns the number of gets and peeks that found the ring empty.
func (s *Statistics) Underflows() int64 { return s.underflows.Load() }

// Drops returns the number of elements discarded by Overwrite.
func (s *Statistics) Drops() int64 { return s.drops.Load() }

// Rejects returns the number of calls refused for a length mismatch.
func (s *Statistics) Rejects() int64 { return s.rejects.Load() }

// Clears returns the number of clears.
func (s *Statistics) Clears() int64 { return s.clears.Load() }

// Fills returns the number of fills.
func (s *Statistics) Fills() int64 { return s.fills.Load() }

// CurrentLen returns the last recorded queue length.
func (s *Statistics) CurrentLen() int64 { return s.currentLen.Load() }

// MaxLen returns the highest queue length recorded.
func (s *Statistics) MaxLen() int64 { return s.maxLen.Load() }

// Uptime returns the time since creation or the last Reset.
func (s *Statistics) Uptime() time.Duration {
	return time.Since(time.Unix(0, s.startTime.Load()))
}

// Throughput returns successful puts per second.
func (s *Statistics) Throughput() float64 {
	elapsed := s.Uptime()
	if elapsed <= 0 {
		return 0.0
	}
	return float64(s.Puts()) / elapsed.Seconds()
}

// GetThroughput returns successful gets per second.
func (s *Statistics) GetThroughput() float64 {
	elapsed := s.Uptime()
	if elapsed <= 0 {
		return 0.0
	}
	return float64(s.Gets()) / elapsed.Seconds()
}

// OverflowRate returns the fraction of put attempts that found the ring full
// (0.0 to 1.0). Under Overwrite an overflowing put also succeeds and drops one
// element, so attempts are puts + overflows - drops.
func (s *Statistics) OverflowRate() float64 {
	overflows := s.Overflows()
	attempts := s.Puts() + overflows - s.Drops()
	if attempts <= 0 {
		return 0.0
	}
	return float64(overflows) / float64(attempts)
}

// UnderflowRate returns the fraction of get and peek attempts that found the
// ring empty (0.0 to 1.0).
func (s *Statistics) UnderflowRate() float64 {
	underflows := s.Underflows()
	attempts := s.Gets() + s.Peeks() + underflows
	if attempts == 0 {
		return 0.0
	}
	return float64(underflows) / float64(attempts)
}

// Utilization returns CurrentLen relative to usable (0.0 to 1.0).
func (s *Statistics) Utilization(usable int64) float64 {
	if usable <= 0 {
		return 0.0
	}
	return float64(s.CurrentLen()) / float64(usable)
}

// Reset zeroes every counter and restarts the uptime clock. Counters updated
// concurrently with Reset may survive it.
func (s *Statistics) Reset() {
	for _, c := range []*atomic.Int64{
		&s.puts, &s.gets, &s.peeks, &s.overflows, &s.underflows,
		&s.drops, &s.rejects, &s.clears, &s.fills, &s.currentLen, &s.maxLen,
	} {
		c.Store(0)
	}
	s.startTime.Store(time.Now().UnixNano())
}

// StatsSummary is a point-in-time snapshot of Statistics.
type StatsSummary struct {
	Puts          int64         `json:"puts"`
	Gets          int64         `json:"gets"`
	Peeks         int64         `json:"peeks"`
	Overflows     int64         `json:"overflows"`
	Underflows    int64         `json:"underflows"`
	Drops         int64         `json:"drops"`
	Rejects       int64         `json:"rejects"`
	Clears        int64         `json:"clears"`
	Fills         int64         `json:"fills"`
	CurrentLen    int64         `json:"current_len"`
	MaxLen        int64         `json:"max_len"`
	Throughput    float64       `json:"throughput"`
	GetThroughput float64       `json:"get_throughput"`
	OverflowRate  float64       `json:"overflow_rate"`
	UnderflowRate float64       `json:"underflow_rate"`
	Uptime        time.Duration `json:"uptime"`
}

// Summary returns a snapshot of all statistics.
func (s *Statistics) Summary() StatsSummary {
	return StatsSummary{
		Puts:          s.Puts(),
		Gets:          s.Gets(),
		Peeks:         s.Peeks(),
		Overflows:     s.Overflows(),
		Underflows:    s.Underflows(),
		Drops:         s.Drops(),
		Rejects:       s.Rejects(),
		Clears:        s.Clears(),
		Fills:         s.Fills(),
		CurrentLen:    s.CurrentLen(),
		MaxLen:        s.MaxLen(),
		Throughput:    s.Throughput(),
		GetThroughput: s.GetThroughput(),
		OverflowRate:  s.OverflowRate(),
		UnderflowRate: s.UnderflowRate(),
		Uptime:        s.Uptime(),
	}
}
