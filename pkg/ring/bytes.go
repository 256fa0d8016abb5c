package ring

import (
	"fmt"

	"github.com/c360/spscring/errors"
)

// Bytes is an SPSC ring of fixed-size byte elements over a caller-owned
// region, for element types that are exchanged as raw bytes. Slot i occupies
// storage[i*elementSize : (i+1)*elementSize].
type Bytes struct {
	cursors

	storage     []byte
	elementSize int
	policy      OverflowPolicy
	onDrop      DropCallback[[]byte]
	obs         observer
}

// NewBytes binds a ring of capacity slots of elementSize bytes each to
// storage. capacity must be a power of two, elementSize positive and storage
// at least capacity*elementSize bytes long; bytes past that are never touched.
func NewBytes(storage []byte, capacity, elementSize int, options ...Option[[]byte]) (*Bytes, error) {
	if err := validateCapacity("Bytes", capacity); err != nil {
		return nil, err
	}
	if elementSize <= 0 {
		return nil, errors.WrapInvalid(fmt.Errorf("%w: %d", ErrInvalidElementSize, elementSize),
			"Bytes", "NewBytes", "validate element size")
	}
	if capacity > len(storage)/elementSize {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: need %d*%d bytes, have %d", ErrStorageTooSmall, capacity, elementSize, len(storage)),
			"Bytes", "NewBytes", "validate storage")
	}

	opts := applyOptions(options...)
	if err := validatePolicy("Bytes", opts.overflowPolicy); err != nil {
		return nil, err
	}

	obs, err := newObserver("Bytes", opts.metricsReg, opts.metricsPrefix)
	if err != nil {
		return nil, err
	}

	b := &Bytes{
		storage:     storage[:capacity*elementSize],
		elementSize: elementSize,
		policy:      opts.overflowPolicy,
		onDrop:      opts.dropCallback,
		obs:         obs,
	}
	b.init(capacity)
	return b, nil
}

func (b *Bytes) slot(i uint64) []byte {
	off := int(i) * b.elementSize
	return b.storage[off : off+b.elementSize : off+b.elementSize]
}

// Put copies elem into the next slot. elem must be exactly ElementSize bytes;
// any other length is rejected without touching the ring. Producer only.
func (b *Bytes) Put(elem []byte) bool {
	if len(elem) != b.elementSize {
		b.obs.reject()
		return false
	}

	w, ok := b.reserve()
	if !ok {
		if b.policy != Overwrite || b.mask == 0 {
			b.obs.overflow()
			return false
		}

		rd, _ := b.front()
		var dropped []byte
		if b.onDrop != nil {
			dropped = append([]byte(nil), b.slot(rd)...)
		}
		b.release(rd, 1)
		b.obs.overflow()
		b.obs.drop()

		copy(b.slot(w), elem)
		b.publish(w, 1)
		b.obs.put(1, &b.cursors)

		if b.onDrop != nil {
			b.onDrop(dropped)
		}
		return true
	}

	copy(b.slot(w), elem)
	b.publish(w, 1)
	b.obs.put(1, &b.cursors)
	return true
}

// Get copies the oldest element into out and dequeues it. out must hold at
// least ElementSize bytes; only the first ElementSize are written. Consumer only.
func (b *Bytes) Get(out []byte) bool {
	if len(out) < b.elementSize {
		b.obs.reject()
		return false
	}

	rd, ok := b.front()
	if !ok {
		b.obs.underflow()
		return false
	}

	copy(out, b.slot(rd))
	b.release(rd, 1)
	b.obs.get(1, &b.cursors)
	return true
}

// Peek copies the oldest element into out without dequeuing it. Consumer only.
func (b *Bytes) Peek(out []byte) bool {
	if len(out) < b.elementSize {
		b.obs.reject()
		return false
	}

	rd, ok := b.front()
	if !ok {
		b.obs.underflow()
		return false
	}

	copy(out, b.slot(rd))
	b.obs.peek()
	return true
}

// Clear discards all queued elements. Storage is left as is.
func (b *Bytes) Clear() {
	b.reset()
	b.obs.reset(false, &b.cursors)
}

// Fill copies value into every one of the capacity slots, so exactly
// capacity*elementSize storage bytes are written, and leaves the ring empty.
// value must be exactly ElementSize bytes.
func (b *Bytes) Fill(value []byte) bool {
	if len(value) != b.elementSize {
		b.obs.reject()
		return false
	}
	for i := uint64(0); i < b.capacity; i++ {
		copy(b.slot(i), value)
	}
	b.reset()
	b.obs.reset(true, &b.cursors)
	return true
}

// ElementSize returns the size of one element in bytes.
func (b *Bytes) ElementSize() int {
	return b.elementSize
}

// Policy returns the overflow policy.
func (b *Bytes) Policy() OverflowPolicy {
	return b.policy
}

// Stats returns ring statistics.
func (b *Bytes) Stats() *Statistics {
	return b.obs.stats
}
