package ring

import (
	"fmt"

	"github.com/c360/spscring/errors"
)

// Ring is a fixed-capacity SPSC ring buffer over caller-owned storage.
//
// The ring borrows storage for its lifetime and never reallocates it. Slots
// keep their values after Get and Clear until a later Put or Fill overwrites
// them, so callers holding pointers in T should zero storage themselves when
// that matters.
type Ring[T any] struct {
	cursors

	slots  []T
	policy OverflowPolicy
	onDrop DropCallback[T]
	obs    observer
}

// New binds a ring to storage. len(storage) is the capacity and must be a
// power of two; Cap()-1 elements fit. A capacity of 1 is accepted but can
// never hold an element. Storage contents are not zeroed.
func New[T any](storage []T, options ...Option[T]) (*Ring[T], error) {
	if err := validateCapacity("Ring", len(storage)); err != nil {
		return nil, err
	}

	opts := applyOptions(options...)
	if err := validatePolicy("Ring", opts.overflowPolicy); err != nil {
		return nil, err
	}

	obs, err := newObserver("Ring", opts.metricsReg, opts.metricsPrefix)
	if err != nil {
		return nil, err
	}

	r := &Ring[T]{
		slots:  storage,
		policy: opts.overflowPolicy,
		onDrop: opts.dropCallback,
		obs:    obs,
	}
	r.init(len(storage))
	return r, nil
}

// NewWithCapacity allocates storage for capacity slots and calls New.
func NewWithCapacity[T any](capacity int, options ...Option[T]) (*Ring[T], error) {
	if err := validateCapacity("Ring", capacity); err != nil {
		return nil, err
	}
	return New(make([]T, capacity), options...)
}

func validatePolicy(component string, policy OverflowPolicy) error {
	if policy != Reject && policy != Overwrite {
		return errors.WrapInvalid(fmt.Errorf("%w: overflow policy %d", errors.ErrInvalidConfig, policy),
			component, "New", "validate overflow policy")
	}
	return nil
}

// Put enqueues item. Producer only.
func (r *Ring[T]) Put(item T) bool {
	w, ok := r.reserve()
	if !ok {
		if r.policy != Overwrite || r.mask == 0 {
			r.obs.overflow()
			return false
		}
		return r.overwrite(w, item)
	}

	r.slots[w] = item
	r.publish(w, 1)
	r.obs.put(1, &r.cursors)
	return true
}

// overwrite drops the oldest element and stores item in the freed position.
func (r *Ring[T]) overwrite(w uint64, item T) bool {
	rd, _ := r.front()
	dropped := r.slots[rd]
	r.release(rd, 1)
	r.obs.overflow()
	r.obs.drop()

	r.slots[w] = item
	r.publish(w, 1)
	r.obs.put(1, &r.cursors)

	if r.onDrop != nil {
		r.onDrop(dropped)
	}
	return true
}

// PutBatch enqueues the longest prefix of items that fits, publishing it with
// a single cursor store. Producer only.
func (r *Ring[T]) PutBatch(items []T) int {
	if len(items) == 0 {
		return 0
	}

	if r.policy == Overwrite {
		n := 0
		for _, item := range items {
			if r.Put(item) {
				n++
			}
		}
		return n
	}

	w, free := r.free()
	n := uint64(len(items))
	if n > free {
		n = free
		r.obs.overflow()
	}
	if n == 0 {
		return 0
	}

	first := copy(r.slots[w:], items[:n])
	copy(r.slots, items[first:n])
	r.publish(w, n)
	r.obs.put(int(n), &r.cursors)
	return int(n)
}

// Get dequeues the oldest element. Consumer only.
func (r *Ring[T]) Get() (T, bool) {
	rd, ok := r.front()
	if !ok {
		r.obs.underflow()
		var zero T
		return zero, false
	}

	item := r.slots[rd]
	r.release(rd, 1)
	r.obs.get(1, &r.cursors)
	return item, true
}

// GetBatch dequeues up to len(dst) elements into dst, releasing them with a
// single cursor store. Consumer only.
func (r *Ring[T]) GetBatch(dst []T) int {
	if len(dst) == 0 {
		return 0
	}

	rd, avail := r.available()
	n := uint64(len(dst))
	if n > avail {
		n = avail
	}
	if n == 0 {
		r.obs.underflow()
		return 0
	}

	first := copy(dst[:n], r.slots[rd:])
	copy(dst[first:n], r.slots)
	r.release(rd, n)
	r.obs.get(int(n), &r.cursors)
	return int(n)
}

// Peek returns the oldest element without dequeuing it. Consumer only.
func (r *Ring[T]) Peek() (T, bool) {
	rd, ok := r.front()
	if !ok {
		r.obs.underflow()
		var zero T
		return zero, false
	}

	r.obs.peek()
	return r.slots[rd], true
}

// Clear discards all queued elements. Storage is left as is.
func (r *Ring[T]) Clear() {
	r.reset()
	r.obs.reset(false, &r.cursors)
}

// Fill writes item into all Cap() slots and leaves the ring empty.
func (r *Ring[T]) Fill(item T) {
	for i := range r.slots {
		r.slots[i] = item
	}
	r.reset()
	r.obs.reset(true, &r.cursors)
}

// Policy returns the overflow policy.
func (r *Ring[T]) Policy() OverflowPolicy {
	return r.policy
}

// Stats returns ring statistics.
func (r *Ring[T]) Stats() *Statistics {
	return r.obs.stats
}
