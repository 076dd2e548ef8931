package alloc_test

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgavlin/wafer/wasm/alloc"
	"github.com/pgavlin/wafer/wasm/alloc/alloctest"
)

func TestHeapAlignment(t *testing.T) {
	for _, align := range []int{1, 2, 4, 8, 16, 64, 4096} {
		for _, size := range []int{1, 3, 8, 17, 100} {
			b, err := alloc.Heap{}.Allocate(size, align)
			require.NoError(t, err)
			assert.Len(t, b, size)
			assert.Zero(t, uintptr(unsafe.Pointer(&b[0]))%uintptr(align), "size %d align %d", size, align)
		}
	}
}

func TestHeapRejectsBadRequests(t *testing.T) {
	_, err := alloc.Heap{}.Allocate(0, 8)
	assert.ErrorIs(t, err, alloc.ErrOutOfMemory)
	_, err = alloc.Heap{}.Allocate(8, 3)
	assert.ErrorIs(t, err, alloc.ErrOutOfMemory)
}

func TestBufferGrowth(t *testing.T) {
	tracker := alloctest.NewTracker(0)
	buf := alloc.NewBuffer(tracker, 8)

	for i := 0; i < 100; i++ {
		p, err := buf.Extend(16)
		require.NoError(t, err)
		p[0] = byte(i)
	}
	assert.Equal(t, 1600, buf.Len())
	assert.Equal(t, 1, tracker.Outstanding())
	for i := 0; i < 100; i++ {
		assert.Equal(t, byte(i), buf.Bytes()[i*16])
	}

	buf.Release()
	assert.Zero(t, tracker.Outstanding())
	assert.Empty(t, tracker.Faults())
}

func TestBufferGrowthFailure(t *testing.T) {
	tracker := alloctest.NewTracker(2)
	buf := alloc.NewBuffer(tracker, 8)

	_, err := buf.Extend(64)
	require.NoError(t, err)
	_, err = buf.Extend(1)
	assert.ErrorIs(t, err, alloc.ErrOutOfMemory)
	assert.Equal(t, 64, buf.Len())

	buf.Release()
	assert.Zero(t, tracker.Outstanding())
}

func TestBufferDetach(t *testing.T) {
	tracker := alloctest.NewTracker(0)
	buf := alloc.NewBuffer(tracker, 8)

	_, err := buf.Extend(10)
	require.NoError(t, err)
	b := buf.Detach()
	assert.Len(t, b, 10)
	assert.Zero(t, buf.Len())
	assert.Equal(t, 1, tracker.Outstanding())

	buf.Release()
	assert.Equal(t, 1, tracker.Outstanding())

	tracker.Deallocate(b)
	assert.Zero(t, tracker.Outstanding())
}

func TestTrackerFaults(t *testing.T) {
	tracker := alloctest.NewTracker(0)
	tracker.Deallocate(make([]byte, 4))
	assert.Len(t, tracker.Faults(), 1)

	tracker = &alloctest.Tracker{FailAfter: 2}
	for i := 0; i < 2; i++ {
		_, err := tracker.Allocate(8, 8)
		require.NoError(t, err)
	}
	_, err := tracker.Allocate(8, 8)
	assert.ErrorIs(t, err, alloc.ErrOutOfMemory)
	assert.Equal(t, 3, tracker.Requests())
	assert.Equal(t, 2, tracker.Peak())
	assert.Equal(t, 16, tracker.OutstandingBytes())
}
