// Package spscring is a fixed-capacity single-producer/single-consumer ring
// buffer with a small driver around it.
//
// The buffer itself lives in pkg/ring. The other packages support it:
//
//	pkg/ring      Ring[T] and Bytes over caller-owned storage, statistics, Prometheus export
//	pkg/retry     exponential backoff for a producer facing a full ring
//	errors        classified errors (transient, invalid, fatal) and sentinels
//	metric        Prometheus registry, driver metrics and the /metrics server
//	health        ring health derived from statistics, aggregated per process
//	config        JSON/YAML driver configuration with schema validation
//	cmd/ringdemo  producer and consumer goroutines exercising one ring
//
// A ring of capacity C (a power of two) holds at most C-1 elements. Put and
// Get report overflow and underflow by returning false; they never block,
// allocate or take a lock. See pkg/ring for the concurrency contract.
package spscring
