package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorClassString(t *testing.T) {
	assert.Equal(t, "transient", ErrorTransient.String())
	assert.Equal(t, "invalid", ErrorInvalid.String())
	assert.Equal(t, "fatal", ErrorFatal.String())
	assert.Equal(t, "unknown", ErrorClass(42).String())
}

func TestClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transient bool
		invalid   bool
		fatal     bool
		class     ErrorClass
	}{
		{name: "nil", err: nil, class: ErrorTransient},
		{name: "buffer full", err: ErrBufferFull, transient: true, class: ErrorTransient},
		{name: "wrapped buffer empty", err: fmt.Errorf("get: %w", ErrBufferEmpty), transient: true, class: ErrorTransient},
		{name: "deadline", err: context.DeadlineExceeded, transient: true, class: ErrorTransient},
		{name: "canceled", err: context.Canceled, transient: true, class: ErrorTransient},
		{name: "timeout hint", err: errors.New("dial: i/o Timeout"), transient: true, class: ErrorTransient},
		{name: "invalid capacity", err: ErrInvalidCapacity, invalid: true, class: ErrorInvalid},
		{name: "storage too small", err: ErrStorageTooSmall, invalid: true, class: ErrorInvalid},
		{name: "element size", err: ErrElementSize, invalid: true, class: ErrorInvalid},
		{name: "parsing failed", err: ErrParsingFailed, invalid: true, class: ErrorInvalid},
		{name: "invalid config", err: ErrInvalidConfig, fatal: true, class: ErrorFatal},
		{name: "max retries", err: ErrMaxRetriesExceeded, fatal: true, class: ErrorFatal},
		{name: "panic hint", err: errors.New("panic: ring corrupted"), fatal: true, class: ErrorFatal},
		{name: "unknown", err: errors.New("something else"), class: ErrorTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.transient, IsTransient(tt.err), "IsTransient")
			assert.Equal(t, tt.invalid, IsInvalid(tt.err), "IsInvalid")
			assert.Equal(t, tt.fatal, IsFatal(tt.err), "IsFatal")
			assert.Equal(t, tt.class, Classify(tt.err))
		})
	}
}

func TestOutermostClassWins(t *testing.T) {
	// ErrInvalidConfig alone is fatal; an explicit class overrides it.
	err := WrapInvalid(ErrInvalidConfig, "config", "Validate", "check capacity")
	assert.True(t, IsInvalid(err))
	assert.False(t, IsFatal(err))

	outer := WrapFatal(err, "retry", "Do", "retry operation")
	assert.True(t, IsFatal(outer))
	assert.False(t, IsInvalid(outer))
	assert.ErrorIs(t, outer, ErrInvalidConfig)
}

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap(nil, "Ring", "New", "validate"))

	err := Wrap(ErrInvalidCapacity, "Ring", "New", "validate capacity")
	assert.ErrorIs(t, err, ErrInvalidCapacity)
	assert.Equal(t, "Ring.New: validate capacity failed: invalid capacity", err.Error())
}

func TestWrapClassified(t *testing.T) {
	tests := []struct {
		name  string
		wrap  func(error, string, string, string) error
		class ErrorClass
	}{
		{"transient", WrapTransient, ErrorTransient},
		{"invalid", WrapInvalid, ErrorInvalid},
		{"fatal", WrapFatal, ErrorFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, tt.wrap(nil, "c", "m", "a"))

			err := tt.wrap(ErrDataCorrupted, "Bytes", "Get", "copy slot")

			var ce *ClassifiedError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.class, ce.Class)
			assert.Equal(t, "Bytes", ce.Component)
			assert.Equal(t, "Get", ce.Operation)
			assert.Equal(t, "Bytes.Get: copy slot failed: data corrupted", err.Error())
			assert.ErrorIs(t, err, ErrDataCorrupted)
			assert.Equal(t, tt.class, Classify(err))
		})
	}
}

func TestClassifiedErrorFallsBackToWrapped(t *testing.T) {
	ce := &ClassifiedError{Class: ErrorInvalid, Err: ErrElementSize}
	assert.Equal(t, ErrElementSize.Error(), ce.Error())
}
