package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorClass tells a caller what to do with an error: retry it, fix the input, or stop.
type ErrorClass int

const (
	// ErrorTransient errors may succeed when retried.
	ErrorTransient ErrorClass = iota
	// ErrorInvalid errors come from bad input or configuration.
	ErrorInvalid
	// ErrorFatal errors are unrecoverable.
	ErrorFatal
)

func (ec ErrorClass) String() string {
	switch ec {
	case ErrorTransient:
		return "transient"
	case ErrorInvalid:
		return "invalid"
	case ErrorFatal:
		return "fatal"
	}
	return "unknown"
}

var (
	// A full ring drains and an empty ring fills, so both are transient.
	ErrBufferFull  = errors.New("buffer full")
	ErrBufferEmpty = errors.New("buffer empty")

	ErrInvalidCapacity    = errors.New("invalid capacity")
	ErrInvalidElementSize = errors.New("invalid element size")
	ErrStorageTooSmall    = errors.New("storage too small")
	ErrElementSize        = errors.New("element size mismatch")

	ErrAlreadyStarted = errors.New("already started")
	ErrNotStarted     = errors.New("not started")
	ErrShuttingDown   = errors.New("shutting down")

	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrMissingConfig  = errors.New("missing required configuration")
	ErrConfigNotFound = errors.New("configuration not found")

	ErrInvalidData   = errors.New("invalid data format")
	ErrParsingFailed = errors.New("parsing failed")
	ErrDataCorrupted = errors.New("data corrupted")

	ErrMaxRetriesExceeded = errors.New("maximum retries exceeded")
)

// sentinelClasses is consulted in order; the first sentinel found in the chain wins.
var sentinelClasses = []struct {
	err   error
	class ErrorClass
}{
	{ErrBufferFull, ErrorTransient},
	{ErrBufferEmpty, ErrorTransient},
	{ErrShuttingDown, ErrorTransient},
	{context.DeadlineExceeded, ErrorTransient},
	{context.Canceled, ErrorTransient},
	{ErrInvalidConfig, ErrorFatal},
	{ErrMissingConfig, ErrorFatal},
	{ErrDataCorrupted, ErrorFatal},
	{ErrMaxRetriesExceeded, ErrorFatal},
	{ErrInvalidCapacity, ErrorInvalid},
	{ErrInvalidElementSize, ErrorInvalid},
	{ErrStorageTooSmall, ErrorInvalid},
	{ErrElementSize, ErrorInvalid},
	{ErrInvalidData, ErrorInvalid},
	{ErrParsingFailed, ErrorInvalid},
}

// messageHints classify foreign errors that carry no sentinel.
var messageHints = []struct {
	substr string
	class  ErrorClass
}{
	{"timeout", ErrorTransient},
	{"temporary", ErrorTransient},
	{"unavailable", ErrorTransient},
	{"busy", ErrorTransient},
	{"retry", ErrorTransient},
	{"fatal", ErrorFatal},
	{"panic", ErrorFatal},
	{"corrupted", ErrorFatal},
	{"out of memory", ErrorFatal},
}

// ClassifiedError carries a class plus the component and operation that produced it.
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Message   string
	Component string
	Operation string
}

func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Err.Error()
}

func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// classOf reports the class of err. The outermost ClassifiedError takes
// precedence over sentinels, and sentinels over message hints.
func classOf(err error) (ErrorClass, bool) {
	if err == nil {
		return 0, false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class, true
	}

	for _, s := range sentinelClasses {
		if errors.Is(err, s.err) {
			return s.class, true
		}
	}

	msg := strings.ToLower(err.Error())
	for _, h := range messageHints {
		if strings.Contains(msg, h.substr) {
			return h.class, true
		}
	}
	return 0, false
}

func is(err error, class ErrorClass) bool {
	c, ok := classOf(err)
	return ok && c == class
}

// IsTransient reports whether err may succeed on retry.
func IsTransient(err error) bool { return is(err, ErrorTransient) }

// IsFatal reports whether err should stop processing.
func IsFatal(err error) bool { return is(err, ErrorFatal) }

// IsInvalid reports whether err comes from bad input or configuration.
func IsInvalid(err error) bool { return is(err, ErrorInvalid) }

// Classify returns the class of err. Unrecognised errors are transient.
func Classify(err error) ErrorClass {
	c, _ := classOf(err)
	return c
}

// Wrap adds context in the form "component.method: action failed: err".
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

func wrapAs(class ErrorClass, err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrapped := Wrap(err, component, method, action)
	return &ClassifiedError{
		Class:     class,
		Err:       wrapped,
		Message:   wrapped.Error(),
		Component: component,
		Operation: method,
	}
}

// WrapTransient wraps err with context and marks it retryable.
func WrapTransient(err error, component, method, action string) error {
	return wrapAs(ErrorTransient, err, component, method, action)
}

// WrapInvalid wraps err with context and marks it as an input error.
func WrapInvalid(err error, component, method, action string) error {
	return wrapAs(ErrorInvalid, err, component, method, action)
}

// WrapFatal wraps err with context and marks it unrecoverable.
func WrapFatal(err error, component, method, action string) error {
	return wrapAs(ErrorFatal, err, component, method, action)
}
