// Package errors provides standardized error handling for spscring packages.
//
// # Overview
//
// Errors fall into three classes: Transient (temporary, retryable), Invalid
// (bad input, non-retryable) and Fatal (unrecoverable, stop processing).
// Callers branch on the class instead of matching error strings.
//
// The ring buffer itself reports overflow and underflow as boolean results.
// ErrBufferFull and ErrBufferEmpty exist so that callers who turn those results
// into errors (for example a producer retrying with backoff) get a transient
// classification for free.
//
// # Error Wrapping Pattern
//
// All wrapping follows the format:
//
//	"component.method: action failed: %w"
//
// Three wrappers attach a class while preserving the chain for errors.Is and
// errors.As:
//
//	errors.WrapTransient(err, "Ring", "WithMetrics", "metrics registration")
//	errors.WrapInvalid(err, "Ring", "New", "validate capacity")
//	errors.WrapFatal(err, "Server", "Start", "listen")
//
// # Classification
//
//	if errors.IsInvalid(err) {
//		// fix the configuration, retrying will not help
//	}
//
// Unknown errors classify as transient.
package errors
