package ring

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/c360/spscring/errors"
)

func newTestRing[T any](t *testing.T, capacity int, options ...Option[T]) *Ring[T] {
	t.Helper()
	r, err := NewWithCapacity[T](capacity, options...)
	require.NoError(t, err)
	return r
}

func TestNewRejectsInvalidCapacity(t *testing.T) {
	for _, capacity := range []int{0, 3, 5, 6, 7, 100, 1000} {
		r, err := New(make([]int, capacity))
		require.Error(t, err, "capacity %d", capacity)
		assert.Nil(t, r)
		assert.True(t, errors.Is(err, ErrNotPowerOfTwo))
		assert.True(t, errors.Is(err, cerrors.ErrInvalidCapacity))
		assert.True(t, cerrors.IsInvalid(err))
	}

	_, err := NewWithCapacity[int](-4)
	assert.True(t, errors.Is(err, ErrNotPowerOfTwo))
}

func TestNewRejectsUnknownPolicy(t *testing.T) {
	_, err := New(make([]int, 4), WithOverflowPolicy[int](OverflowPolicy(7)))
	require.Error(t, err)
	assert.True(t, cerrors.IsInvalid(err))
	assert.True(t, errors.Is(err, cerrors.ErrInvalidConfig))
}

func TestNewInitialState(t *testing.T) {
	for _, capacity := range []int{2, 4, 8, 1024} {
		r := newTestRing[int](t, capacity)
		assert.True(t, r.IsEmpty())
		assert.False(t, r.IsFull())
		assert.Equal(t, 0, r.Len())
		assert.Equal(t, capacity, r.Cap())
		assert.Equal(t, capacity-1, r.Usable())
		assert.Equal(t, Reject, r.Policy())
	}
}

func TestNewDoesNotZeroStorage(t *testing.T) {
	storage := []int{9, 9, 9, 9}
	r, err := New(storage)
	require.NoError(t, err)
	assert.True(t, r.IsEmpty())
	assert.Equal(t, []int{9, 9, 9, 9}, storage)
}

func TestRingHoldsCapacityMinusOne(t *testing.T) {
	for _, capacity := range []int{2, 4, 8, 64} {
		r := newTestRing[int](t, capacity)
		for i := 0; i < capacity-1; i++ {
			assert.False(t, r.IsFull())
			require.True(t, r.Put(i), "put %d of capacity %d", i, capacity)
		}
		assert.True(t, r.IsFull())
		assert.Equal(t, capacity-1, r.Len())
		assert.False(t, r.Put(-1))
	}
}

func TestCapacityOneIsDegenerate(t *testing.T) {
	r := newTestRing[string](t, 1)
	assert.True(t, r.IsEmpty())
	assert.True(t, r.IsFull())
	assert.False(t, r.Put("a"))

	_, ok := r.Get()
	assert.False(t, ok)
	assert.Equal(t, int64(1), r.Stats().Overflows())
	assert.Equal(t, int64(1), r.Stats().Underflows())

	ow := newTestRing[string](t, 1, WithOverflowPolicy[string](Overwrite))
	assert.False(t, ow.Put("a"))
	assert.Equal(t, int64(0), ow.Stats().Drops())
}

func TestFIFOWithWraparound(t *testing.T) {
	r := newTestRing[int](t, 4)

	next := 0
	want := 0
	for round := 0; round < 50; round++ {
		for r.Put(next) {
			next++
		}
		n := 1 + round%3
		for i := 0; i < n; i++ {
			got, ok := r.Get()
			require.True(t, ok)
			require.Equal(t, want, got)
			want++
		}
	}
	for {
		got, ok := r.Get()
		if !ok {
			break
		}
		require.Equal(t, want, got)
		want++
	}
	assert.Equal(t, next, want)
	assert.True(t, r.IsEmpty())
}

func TestOverflowLeavesContentsUnchanged(t *testing.T) {
	r := newTestRing[int](t, 4)
	require.True(t, r.Put(1))
	require.True(t, r.Put(2))
	require.True(t, r.Put(3))

	assert.False(t, r.Put(4))
	assert.Equal(t, 3, r.Len())

	for _, want := range []int{1, 2, 3} {
		got, ok := r.Get()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestUnderflowLeavesRingEmpty(t *testing.T) {
	r := newTestRing[int](t, 8)
	got, ok := r.Get()
	assert.False(t, ok)
	assert.Zero(t, got)
	assert.True(t, r.IsEmpty())

	_, ok = r.Peek()
	assert.False(t, ok)
	assert.True(t, r.IsEmpty())
	assert.Equal(t, int64(2), r.Stats().Underflows())
}

func TestPeekIsIdempotent(t *testing.T) {
	r := newTestRing[string](t, 4)
	require.True(t, r.Put("first"))
	require.True(t, r.Put("second"))

	for i := 0; i < 3; i++ {
		got, ok := r.Peek()
		require.True(t, ok)
		assert.Equal(t, "first", got)
		assert.Equal(t, 2, r.Len())
	}

	got, ok := r.Get()
	require.True(t, ok)
	assert.Equal(t, "first", got)

	got, ok = r.Peek()
	require.True(t, ok)
	assert.Equal(t, "second", got)
	assert.Equal(t, int64(4), r.Stats().Peeks())
}

func TestGetLeavesSlotValue(t *testing.T) {
	storage := make([]int, 4)
	r, err := New(storage)
	require.NoError(t, err)

	require.True(t, r.Put(42))
	_, ok := r.Get()
	require.True(t, ok)
	assert.Equal(t, 42, storage[0])
}

func TestClear(t *testing.T) {
	storage := make([]int, 8)
	r, err := New(storage)
	require.NoError(t, err)

	for i := 1; i <= 5; i++ {
		require.True(t, r.Put(i))
	}
	r.Clear()

	assert.True(t, r.IsEmpty())
	assert.Equal(t, 0, r.Len())
	_, ok := r.Get()
	assert.False(t, ok)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, storage[:5])
	assert.Equal(t, int64(1), r.Stats().Clears())

	require.True(t, r.Put(6))
	got, ok := r.Get()
	require.True(t, ok)
	assert.Equal(t, 6, got)
}

func TestFillWritesEverySlot(t *testing.T) {
	storage := make([]int, 8)
	r, err := New(storage)
	require.NoError(t, err)

	require.True(t, r.Put(1))
	require.True(t, r.Put(2))
	r.Fill(7)

	assert.True(t, r.IsEmpty())
	assert.Equal(t, []int{7, 7, 7, 7, 7, 7, 7, 7}, storage)
	assert.Equal(t, int64(1), r.Stats().Fills())
	assert.Equal(t, int64(0), r.Stats().CurrentLen())
}

func TestOverwriteDropsOldest(t *testing.T) {
	var dropped []int
	r := newTestRing[int](t, 4,
		WithOverflowPolicy[int](Overwrite),
		WithDropCallback[int](func(item int) { dropped = append(dropped, item) }),
	)

	for i := 1; i <= 5; i++ {
		require.True(t, r.Put(i))
	}
	assert.True(t, r.IsFull())
	assert.Equal(t, []int{1, 2}, dropped)

	for _, want := range []int{3, 4, 5} {
		got, ok := r.Get()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}

	stats := r.Stats()
	assert.Equal(t, int64(5), stats.Puts())
	assert.Equal(t, int64(2), stats.Overflows())
	assert.Equal(t, int64(2), stats.Drops())
	assert.InDelta(t, 2.0/5.0, stats.OverflowRate(), 1e-9)
}

func TestPutBatch(t *testing.T) {
	r := newTestRing[int](t, 8)

	assert.Equal(t, 0, r.PutBatch(nil))
	assert.Equal(t, 5, r.PutBatch([]int{1, 2, 3, 4, 5}))
	assert.Equal(t, 0, int(r.Stats().Overflows()))

	// 2 free slots left
	assert.Equal(t, 2, r.PutBatch([]int{6, 7, 8, 9}))
	assert.True(t, r.IsFull())
	assert.Equal(t, int64(1), r.Stats().Overflows())
	assert.Equal(t, 0, r.PutBatch([]int{10}))

	dst := make([]int, 16)
	n := r.GetBatch(dst)
	require.Equal(t, 7, n)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, dst[:n])
	assert.Equal(t, int64(7), r.Stats().Puts())
	assert.Equal(t, int64(7), r.Stats().Gets())
}

func TestBatchWraparound(t *testing.T) {
	r := newTestRing[int](t, 8)

	// move both cursors to 6 so the next batch spans the end of storage
	require.Equal(t, 6, r.PutBatch([]int{0, 0, 0, 0, 0, 0}))
	require.Equal(t, 6, r.GetBatch(make([]int, 6)))

	require.Equal(t, 5, r.PutBatch([]int{1, 2, 3, 4, 5}))

	dst := make([]int, 3)
	require.Equal(t, 3, r.GetBatch(dst))
	assert.Equal(t, []int{1, 2, 3}, dst)

	require.Equal(t, 2, r.GetBatch(dst))
	assert.Equal(t, []int{4, 5}, dst[:2])
	assert.True(t, r.IsEmpty())

	assert.Equal(t, 0, r.GetBatch(dst))
	assert.Equal(t, 0, r.GetBatch(nil))
	assert.Equal(t, int64(1), r.Stats().Underflows())
}

func TestPutBatchOverwrite(t *testing.T) {
	r := newTestRing[int](t, 4, WithOverflowPolicy[int](Overwrite))
	assert.Equal(t, 6, r.PutBatch([]int{1, 2, 3, 4, 5, 6}))

	dst := make([]int, 4)
	n := r.GetBatch(dst)
	assert.Equal(t, []int{4, 5, 6}, dst[:n])
}

func TestRingGenericTypes(t *testing.T) {
	type point struct {
		X, Y int32
	}

	r := newTestRing[point](t, 4)
	require.True(t, r.Put(point{1, 2}))
	require.True(t, r.Put(point{3, 4}))

	got, ok := r.Get()
	require.True(t, ok)
	assert.Equal(t, point{1, 2}, got)

	pr := newTestRing[*point](t, 2)
	p := &point{5, 6}
	require.True(t, pr.Put(p))
	gotp, ok := pr.Get()
	require.True(t, ok)
	assert.Same(t, p, gotp)
}

func TestBufferInterface(t *testing.T) {
	var buf Buffer[int] = newTestRing[int](t, 16)
	assert.True(t, buf.IsEmpty())
	assert.True(t, buf.Put(1))
	assert.Equal(t, 1, buf.Len())
	assert.Equal(t, 16, buf.Cap())
	assert.NotNil(t, buf.Stats())
}

func TestOverflowPolicyString(t *testing.T) {
	tests := []struct {
		policy OverflowPolicy
		want   string
	}{
		{Reject, "reject"},
		{Overwrite, "overwrite"},
		{OverflowPolicy(99), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.policy.String())
	}
}

func TestParseOverflowPolicy(t *testing.T) {
	tests := []struct {
		name    string
		want    OverflowPolicy
		wantErr bool
	}{
		{"", Reject, false},
		{"reject", Reject, false},
		{"overwrite", Overwrite, false},
		{"block", Reject, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOverflowPolicy(tt.name)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, cerrors.IsInvalid(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
