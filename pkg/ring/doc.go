// Package ring provides fixed-capacity single-producer/single-consumer ring
// buffers over caller-owned storage, with always-on statistics and optional
// Prometheus metrics.
//
// # Overview
//
// A ring never allocates on the hot path and never blocks. The capacity must
// be a power of two so index wraparound is a bitmask; one slot is always kept
// free, so a ring of capacity C holds at most C-1 elements. Failure is
// explicit: Put returns false on a full ring and Get returns false on an
// empty one.
//
// Two flavors share the same cursor model:
//
//   - Ring[T]: typed slots over a []T
//   - Bytes: fixed-size byte elements over a []byte region
//
// # Quick Start
//
//	storage := make([]uint32, 1024)
//	r, err := ring.New(storage)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if !r.Put(42) {
//		// full
//	}
//	v, ok := r.Get()
//
// Byte elements, e.g. a fixed-layout struct encoded with encoding/binary:
//
//	region := make([]byte, 64*16)
//	b, err := ring.NewBytes(region, 64, 16)
//	...
//	b.Put(encoded)   // len(encoded) must be 16
//	b.Get(out)       // len(out) must be >= 16
//
// # Concurrency
//
// Exactly one goroutine may act as producer (Put, PutBatch, IsFull) and one as
// consumer (Get, GetBatch, Peek, IsEmpty). The producer stores only the write
// cursor and the consumer stores only the read cursor; each loads the other's
// with sync/atomic. The slot is written before the write cursor is published
// and read before the read cursor is released, so no locks are needed.
//
// Clear and Fill store both cursors. Call them only while neither end is
// mid-operation, or from a goroutine that owns both ends.
//
// The Overwrite policy lets Put on a full ring discard the oldest element. The
// producer then moves the read cursor, which breaks the SPSC contract, so
// Overwrite is only valid when producer and consumer are the same goroutine or
// are serialized by the caller.
//
// # Observability
//
// Statistics are always collected with atomic counters and are available via
// Stats(). Prometheus export is opt-in:
//
//	r, err := ring.New(storage,
//		ring.WithMetrics[uint32](registry, "telemetry"),
//	)
//
// which registers spscring_ring_* counters and gauges labeled with
// component="telemetry".
package ring
