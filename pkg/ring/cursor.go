package ring

import (
	"fmt"
	"sync/atomic"

	"golang.org/x/sys/cpu"

	"github.com/c360/spscring/errors"
)

// cursors is the index/capacity model shared by Ring and Bytes.
//
// write is stored only by the producer and read only by the consumer; each
// side loads the other's cursor. Both stay in [0, capacity) and advance with
// (i+1)&mask. One slot is kept free so that read == write means empty and
// next(write) == read means full without a separate length counter.
type cursors struct {
	_     cpu.CacheLinePad
	write atomic.Uint64
	_     cpu.CacheLinePad
	read  atomic.Uint64
	_     cpu.CacheLinePad

	capacity uint64
	mask     uint64
}

func (c *cursors) init(capacity int) {
	c.capacity = uint64(capacity)
	c.mask = uint64(capacity) - 1
	c.write.Store(0)
	c.read.Store(0)
}

func (c *cursors) next(i uint64) uint64 {
	return (i + 1) & c.mask
}

// IsEmpty reports whether no element is queued.
func (c *cursors) IsEmpty() bool {
	return c.read.Load() == c.write.Load()
}

// IsFull reports whether a Put would overflow. A full ring holds Cap()-1 elements.
func (c *cursors) IsFull() bool {
	return c.next(c.write.Load()) == c.read.Load()
}

// Len returns the number of queued elements. Under concurrent use it is a
// snapshot that may already be stale when returned.
func (c *cursors) Len() int {
	return int(c.length())
}

// Cap returns the number of slots, including the one kept free.
func (c *cursors) Cap() int {
	return int(c.capacity)
}

// Usable returns how many elements fit before the ring reports full.
func (c *cursors) Usable() int {
	return int(c.mask)
}

func (c *cursors) length() uint64 {
	return (c.write.Load() - c.read.Load()) & c.mask
}

// reserve returns the slot the producer may fill next, or false when full.
func (c *cursors) reserve() (uint64, bool) {
	w := c.write.Load()
	return w, c.next(w) != c.read.Load()
}

// free returns the producer's write cursor and the number of slots it may fill.
func (c *cursors) free() (uint64, uint64) {
	w := c.write.Load()
	return w, c.mask - ((w - c.read.Load()) & c.mask)
}

// publish makes n slots starting at w visible to the consumer.
func (c *cursors) publish(w, n uint64) {
	c.write.Store((w + n) & c.mask)
}

// front returns the slot holding the oldest element, or false when empty.
func (c *cursors) front() (uint64, bool) {
	r := c.read.Load()
	return r, r != c.write.Load()
}

// available returns the consumer's read cursor and the number of queued slots.
func (c *cursors) available() (uint64, uint64) {
	r := c.read.Load()
	return r, (c.write.Load() - r) & c.mask
}

// release hands n slots starting at r back to the producer.
func (c *cursors) release(r, n uint64) {
	c.read.Store((r + n) & c.mask)
}

// reset empties the ring. Both cursors are written, so neither end may be
// mid-operation.
func (c *cursors) reset() {
	c.read.Store(0)
	c.write.Store(0)
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func validateCapacity(component string, capacity int) error {
	if !IsPowerOfTwo(capacity) {
		return errors.WrapInvalid(fmt.Errorf("%w: %d", ErrNotPowerOfTwo, capacity),
			component, "New", "validate capacity")
	}
	return nil
}
