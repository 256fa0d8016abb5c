package ring

import (
	"fmt"

	"github.com/c360/spscring/errors"
)

// Buffer is the typed ring contract. The producer side is Put, PutBatch and
// IsFull; the consumer side is Get, GetBatch, Peek and IsEmpty. Clear and Fill
// reset both cursors and need both ends quiescent.
type Buffer[T any] interface {
	// Put enqueues item. Returns false if the ring is full and the policy is Reject.
	Put(item T) bool

	// PutBatch enqueues the longest prefix of items that fits and returns its length.
	PutBatch(items []T) int

	// Get dequeues the oldest item. Returns false if the ring is empty.
	Get() (T, bool)

	// GetBatch dequeues up to len(dst) items into dst and returns how many.
	GetBatch(dst []T) int

	// Peek returns the oldest item without dequeuing it.
	Peek() (T, bool)

	// IsEmpty reports whether no item is queued.
	IsEmpty() bool

	// IsFull reports whether a Put would overflow.
	IsFull() bool

	// Len returns the number of queued items.
	Len() int

	// Cap returns the number of slots. At most Cap()-1 items are queued at once.
	Cap() int

	// Clear discards all queued items without touching storage.
	Clear()

	// Fill writes item into every slot and leaves the ring empty.
	Fill(item T)

	// Stats returns ring statistics (always available).
	Stats() *Statistics
}

var _ Buffer[int] = (*Ring[int])(nil)

// Sentinel errors. Geometry errors come back from constructors wrapped as
// invalid; ErrOverflow and ErrUnderflow are for callers that convert a false
// Put/Get into an error.
var (
	ErrNotPowerOfTwo      = fmt.Errorf("%w: capacity must be a power of two", errors.ErrInvalidCapacity)
	ErrInvalidElementSize = errors.ErrInvalidElementSize
	ErrStorageTooSmall    = errors.ErrStorageTooSmall
	ErrOverflow           = errors.ErrBufferFull
	ErrUnderflow          = errors.ErrBufferEmpty
)

// OverflowPolicy defines what Put does when the ring is full.
type OverflowPolicy int

const (
	// Reject leaves the ring unchanged and makes Put return false.
	Reject OverflowPolicy = iota

	// Overwrite discards the oldest element to make room. The producer then
	// advances the read cursor, so Overwrite is only correct when producer and
	// consumer run in the same goroutine or are serialized by the caller.
	Overwrite
)

// String returns a human-readable representation of the overflow policy.
func (p OverflowPolicy) String() string {
	switch p {
	case Reject:
		return "reject"
	case Overwrite:
		return "overwrite"
	default:
		return "unknown"
	}
}

// ParseOverflowPolicy maps a policy name back to its value.
func ParseOverflowPolicy(name string) (OverflowPolicy, error) {
	switch name {
	case "", "reject":
		return Reject, nil
	case "overwrite":
		return Overwrite, nil
	default:
		return Reject, errors.WrapInvalid(fmt.Errorf("%w: overflow policy %q", errors.ErrInvalidConfig, name),
			"Ring", "ParseOverflowPolicy", "parse policy")
	}
}

// DropCallback is called with each element discarded by the Overwrite policy.
type DropCallback[T any] func(item T)
