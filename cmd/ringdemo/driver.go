package main

import (
	"context"
	"encoding/binary"
	stderrors "errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/c360/spscring/config"
	"github.com/c360/spscring/errors"
	"github.com/c360/spscring/health"
	"github.com/c360/spscring/metric"
	"github.com/c360/spscring/pkg/retry"
	"github.com/c360/spscring/pkg/ring"
)

// sample is the fixed-layout record moved through the ring. Elements larger
// than its encoding are zero padded.
type sample struct {
	Seq       uint64
	Timestamp int64
	Value     float64
}

var sampleSize = binary.Size(sample{})

const (
	flushEvery     = 256
	healthInterval = 500 * time.Millisecond
)

// Summary reports one driver run
type Summary struct {
	RunID           string            `json:"run_id"`
	Ring            string            `json:"ring"`
	Policy          string            `json:"policy"`
	Produced        int64             `json:"produced"`
	Consumed        int64             `json:"consumed"`
	Dropped         int64             `json:"dropped"`
	Retries         int64             `json:"retries"`
	OrderViolations int64             `json:"order_violations"`
	Interrupted     bool              `json:"interrupted"`
	Duration        time.Duration     `json:"duration"`
	Stats           ring.StatsSummary `json:"stats"`
}

// Driver moves samples from a producer to a consumer through a byte ring
type Driver struct {
	cfg     *config.Config
	runID   string
	logger  *slog.Logger
	metrics *metric.Metrics
	monitor *health.Monitor
	ring    *ring.Bytes
	policy  ring.OverflowPolicy
	limiter *rate.Limiter // nil when the producer is unpaced

	firstDrop  sync.Once
	retries    atomic.Int64
	violations atomic.Int64
}

// NewDriver builds the ring described by cfg. registry may be nil to run
// without Prometheus export.
func NewDriver(cfg *config.Config, registry *metric.MetricsRegistry, monitor *health.Monitor,
	logger *slog.Logger, runID string) (*Driver, error) {
	if cfg.Ring.ElementSize < sampleSize {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: element_size %d is smaller than a %d byte sample", errors.ErrInvalidConfig,
				cfg.Ring.ElementSize, sampleSize),
			"Driver", "NewDriver", "validate element size")
	}

	policy, err := ring.ParseOverflowPolicy(cfg.Ring.OverflowPolicy)
	if err != nil {
		return nil, err
	}

	d := &Driver{
		cfg:     cfg,
		runID:   runID,
		logger:  logger.With("ring", cfg.Ring.Name),
		monitor: monitor,
		policy:  policy,
	}

	if cfg.Producer.Rate > 0 {
		d.limiter = rate.NewLimiter(rate.Limit(cfg.Producer.Rate), max(cfg.Producer.Burst, 1))
	}

	opts := []ring.Option[[]byte]{
		ring.WithOverflowPolicy[[]byte](policy),
		ring.WithDropCallback[[]byte](d.onDrop),
	}
	if registry != nil {
		d.metrics = registry.CoreMetrics()
		opts = append(opts, ring.WithMetrics[[]byte](registry, cfg.Ring.Name))
	}

	region := make([]byte, cfg.Ring.Capacity*cfg.Ring.ElementSize)
	d.ring, err = ring.NewBytes(region, cfg.Ring.Capacity, cfg.Ring.ElementSize, opts...)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Driver) onDrop(elem []byte) {
	d.firstDrop.Do(func() {
		var s sample
		if _, err := binary.Decode(elem, binary.LittleEndian, &s); err == nil {
			d.logger.Warn("Ring overwrote unconsumed elements", "first_dropped_seq", s.Seq)
		}
	})
}

// Run transfers items samples and returns when all were consumed or ctx is
// done. Cancellation is not an error; the summary is marked interrupted.
func (d *Driver) Run(ctx context.Context, items int) (Summary, error) {
	start := time.Now()
	d.logger.Info("Driver starting",
		"items", items,
		"capacity", d.ring.Cap(),
		"element_size", d.ring.ElementSize(),
		"policy", d.policy.String())

	healthCtx, stopHealth := context.WithCancel(ctx)
	var healthWG sync.WaitGroup
	healthWG.Add(1)
	go func() {
		defer healthWG.Done()
		d.watchHealth(healthCtx)
	}()

	var produced, consumed int64
	var err error
	if d.policy == ring.Overwrite {
		produced, consumed = d.runInterleaved(ctx, items)
	} else {
		produced, consumed, err = d.runConcurrent(ctx, items)
	}

	stopHealth()
	healthWG.Wait()
	d.updateHealth()

	stats := d.ring.Stats()
	summary := Summary{
		RunID:           d.runID,
		Ring:            d.cfg.Ring.Name,
		Policy:          d.policy.String(),
		Produced:        produced,
		Consumed:        consumed,
		Dropped:         stats.Drops(),
		Retries:         d.retries.Load(),
		OrderViolations: d.violations.Load(),
		Interrupted:     ctx.Err() != nil,
		Duration:        time.Since(start),
		Stats:           stats.Summary(),
	}
	return summary, err
}

// runConcurrent runs the producer and the consumer on separate goroutines.
func (d *Driver) runConcurrent(ctx context.Context, items int) (int64, int64, error) {
	done := make(chan struct{})
	var produced, consumed int64

	var g errgroup.Group
	g.Go(func() error {
		defer close(done)
		var err error
		produced, err = d.produce(ctx, items)
		return err
	})
	g.Go(func() error {
		consumed = d.consume(done)
		return nil
	})
	prodErr := g.Wait()

	if prodErr != nil && !isCancellation(prodErr) {
		d.monitor.Update("producer", health.FromError("producer", prodErr))
		return produced, consumed, errors.Wrap(prodErr, "Driver", "Run", "produce")
	}
	d.monitor.UpdateHealthy("producer", "finished")
	return produced, consumed, nil
}

func isCancellation(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}

func (d *Driver) produce(ctx context.Context, items int) (int64, error) {
	cfg := d.cfg.Producer.Retry.Retry()
	elem := make([]byte, d.ring.ElementSize())
	notify := func(int, error, time.Duration) {
		d.retries.Add(1)
		if d.metrics != nil {
			d.metrics.RecordRetry(d.cfg.Ring.Name)
		}
	}

	var produced int64
	pending := 0
	defer func() { d.recordProduced(pending) }()

	for seq := 0; seq < items; seq++ {
		if err := d.pace(ctx); err != nil {
			return produced, err
		}
		if err := encode(elem, uint64(seq)); err != nil {
			return produced, err
		}

		err := retry.DoNotify(ctx, cfg, func() error {
			if !d.ring.Put(elem) {
				return ring.ErrOverflow
			}
			return nil
		}, notify)
		if err != nil {
			return produced, err
		}

		produced++
		if pending++; pending == flushEvery {
			d.recordProduced(pending)
			pending = 0
		}
	}
	return produced, nil
}

// consume drains the ring until the producer has closed done and nothing is
// left.
func (d *Driver) consume(done <-chan struct{}) int64 {
	out := make([]byte, d.ring.ElementSize())
	var consumed int64
	var next uint64
	pending := 0
	defer func() { d.recordConsumed(pending) }()

	for {
		if !d.ring.Get(out) {
			select {
			case <-done:
				if d.ring.IsEmpty() {
					return consumed
				}
			default:
				runtime.Gosched()
			}
			continue
		}

		next = d.check(out, next)
		consumed++
		if pending++; pending == flushEvery {
			d.recordConsumed(pending)
			pending = 0
		}
	}
}

// runInterleaved drives Overwrite rings from one goroutine: bursts of Cap()
// puts, one more than fits, followed by a full drain.
func (d *Driver) runInterleaved(ctx context.Context, items int) (int64, int64) {
	elem := make([]byte, d.ring.ElementSize())
	out := make([]byte, d.ring.ElementSize())
	burst := d.ring.Cap()

	var produced, consumed int64
	var next uint64
	for seq := 0; seq < items && ctx.Err() == nil; {
		for i := 0; i < burst && seq < items; i++ {
			if d.pace(ctx) != nil {
				break
			}
			// elements are at least sampleSize bytes, so encoding cannot fail
			_ = encode(elem, uint64(seq))
			if d.ring.Put(elem) {
				produced++
			}
			seq++
		}
		for d.ring.Get(out) {
			next = d.check(out, next)
			consumed++
		}
	}

	d.recordProduced(int(produced))
	d.recordConsumed(int(consumed))
	d.monitor.UpdateHealthy("producer", "finished")
	return produced, consumed
}

// pace blocks until the limiter admits one more element or ctx is done.
func (d *Driver) pace(ctx context.Context) error {
	if d.limiter == nil {
		return ctx.Err()
	}
	if err := d.limiter.Wait(ctx); err != nil {
		// the next token lies past the deadline
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

// check verifies out carries a sequence number at or after want and returns
// the next expected one. Gaps are drops; going backwards is a FIFO violation.
func (d *Driver) check(out []byte, want uint64) uint64 {
	var s sample
	if _, err := binary.Decode(out, binary.LittleEndian, &s); err != nil || s.Seq < want {
		d.violations.Add(1)
		if d.metrics != nil {
			d.metrics.RecordOrderViolation(d.cfg.Ring.Name)
		}
		d.logger.Error("Element out of order", "expected_seq", want, "got_seq", s.Seq)
		return want
	}
	if d.policy == ring.Reject && s.Seq != want {
		d.violations.Add(1)
		if d.metrics != nil {
			d.metrics.RecordOrderViolation(d.cfg.Ring.Name)
		}
		d.logger.Error("Element missing", "expected_seq", want, "got_seq", s.Seq)
	}
	return s.Seq + 1
}

func encode(elem []byte, seq uint64) error {
	s := sample{Seq: seq, Timestamp: time.Now().UnixNano(), Value: float64(seq) * 0.5}
	if _, err := binary.Encode(elem, binary.LittleEndian, s); err != nil {
		return errors.WrapFatal(err, "Driver", "encode", "encode sample")
	}
	return nil
}

func (d *Driver) recordProduced(n int) {
	if d.metrics != nil && n > 0 {
		d.metrics.RecordProduced(d.cfg.Ring.Name, n)
	}
}

func (d *Driver) recordConsumed(n int) {
	if d.metrics != nil && n > 0 {
		d.metrics.RecordConsumed(d.cfg.Ring.Name, n)
	}
}

func (d *Driver) watchHealth(ctx context.Context) {
	ticker := time.NewTicker(healthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.updateHealth()
		}
	}
}

func (d *Driver) updateHealth() {
	status := d.monitor.UpdateRing(d.cfg.Ring.Name, d.ring, d.cfg.Health)
	if !status.IsHealthy() {
		d.logger.Debug("Ring health changed", "status", status.Status, "message", status.Message)
	}
}
