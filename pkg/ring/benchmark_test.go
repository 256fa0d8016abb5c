package ring

import (
	"fmt"
	"runtime"
	"sync"
	"testing"
)

// BenchmarkRingPutGet measures a put followed by a get on one goroutine.
func BenchmarkRingPutGet(b *testing.B) {
	for _, capacity := range []int{16, 1024, 65536} {
		b.Run(fmt.Sprintf("Cap_%d", capacity), func(b *testing.B) {
			r, err := NewWithCapacity[int](capacity)
			if err != nil {
				b.Fatal(err)
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				r.Put(i)
				r.Get()
			}
		})
	}
}

// BenchmarkRingBatch measures batched transfer of 64 elements per call.
func BenchmarkRingBatch(b *testing.B) {
	r, err := NewWithCapacity[int](1024)
	if err != nil {
		b.Fatal(err)
	}
	src := make([]int, 64)
	dst := make([]int, 64)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.PutBatch(src)
		r.GetBatch(dst)
	}
}

// BenchmarkBytesPutGet measures byte element copies of different sizes.
func BenchmarkBytesPutGet(b *testing.B) {
	for _, size := range []int{1, 16, 256} {
		b.Run(fmt.Sprintf("Elem_%d", size), func(b *testing.B) {
			buf, err := NewBytes(make([]byte, 1024*size), 1024, size)
			if err != nil {
				b.Fatal(err)
			}
			elem := make([]byte, size)
			out := make([]byte, size)

			b.SetBytes(int64(size))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				buf.Put(elem)
				buf.Get(out)
			}
		})
	}
}

// BenchmarkRingSPSC measures throughput between a producer and a consumer goroutine.
func BenchmarkRingSPSC(b *testing.B) {
	r, err := NewWithCapacity[int](4096)
	if err != nil {
		b.Fatal(err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	b.ResetTimer()
	go func() {
		defer wg.Done()
		for i := 0; i < b.N; {
			if r.Put(i) {
				i++
			} else {
				runtime.Gosched()
			}
		}
	}()

	for n := 0; n < b.N; {
		if _, ok := r.Get(); ok {
			n++
		} else {
			runtime.Gosched()
		}
	}
	wg.Wait()
}
