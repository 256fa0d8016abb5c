// Package retry runs an operation until it succeeds, backing off exponentially
// between attempts.
//
//	err := retry.DoNotify(ctx, retry.DefaultConfig(), func() error {
//		if !r.Put(v) {
//			return ring.ErrOverflow
//		}
//		return nil
//	}, func(attempt int, err error, delay time.Duration) {
//		metrics.RecordRetry("telemetry")
//	})
//
// Errors wrapped with NonRetryable, or classified invalid or fatal by the
// errors package, end the loop at once. Exhausting MaxAttempts returns a fatal
// error wrapping errors.ErrMaxRetriesExceeded and the last failure.
package retry
