package ring

import (
	"github.com/c360/spscring/metric"
)

// Option configures ring behavior using the functional options pattern.
// Bytes rings take Option[[]byte].
type Option[T any] func(*ringOptions[T])

// ringOptions holds construction-time configuration. Statistics are always
// collected and are not an option.
type ringOptions[T any] struct {
	overflowPolicy OverflowPolicy
	dropCallback   DropCallback[T]

	// metricsReg is optional; when set, statistics are also exported to Prometheus
	metricsReg *metric.MetricsRegistry

	// metricsPrefix is the component label for Prometheus metrics
	metricsPrefix string
}

// WithOverflowPolicy sets the behavior of Put on a full ring. Defaults to Reject.
func WithOverflowPolicy[T any](policy OverflowPolicy) Option[T] {
	return func(opts *ringOptions[T]) {
		opts.overflowPolicy = policy
	}
}

// WithMetrics enables Prometheus export of ring statistics.
// A nil registry or empty prefix leaves metrics disabled.
func WithMetrics[T any](registry *metric.MetricsRegistry, prefix string) Option[T] {
	return func(opts *ringOptions[T]) {
		if registry != nil && prefix != "" {
			opts.metricsReg = registry
			opts.metricsPrefix = prefix
		}
	}
}

// WithDropCallback sets a function called with every element discarded by the
// Overwrite policy. It runs on the producer's goroutine after the drop.
func WithDropCallback[T any](callback DropCallback[T]) Option[T] {
	return func(opts *ringOptions[T]) {
		opts.dropCallback = callback
	}
}

func applyOptions[T any](options ...Option[T]) *ringOptions[T] {
	opts := &ringOptions[T]{
		overflowPolicy: Reject,
	}

	for _, opt := range options {
		if opt != nil {
			opt(opts)
		}
	}

	return opts
}
