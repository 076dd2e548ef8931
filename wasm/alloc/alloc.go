// Package alloc defines the allocation capability used for every
// variable-size payload a decode produces.
package alloc

import (
	"errors"
	"fmt"
	"unsafe"
)

// ErrOutOfMemory is wrapped by every allocation failure.
var ErrOutOfMemory = errors.New("allocation failed")

// Allocator hands out byte blocks. Implementations may fail any request.
type Allocator interface {
	// Allocate returns a zeroed block of size bytes whose first byte is aligned to
	// align, which must be a power of two.
	Allocate(size, align int) ([]byte, error)
	// Deallocate returns a block obtained from Allocate. b may be any reslice
	// that starts at the block's first byte.
	Deallocate(b []byte)
}

// Heap allocates from the Go heap. Deallocate is a no-op.
type Heap struct{}

func (Heap) Allocate(size, align int) ([]byte, error) {
	if size <= 0 || align <= 0 || align&(align-1) != 0 {
		return nil, fmt.Errorf("%w: bad request size=%d align=%d", ErrOutOfMemory, size, align)
	}
	if align <= 8 {
		// Go's allocator aligns blocks of at least 8 bytes to 8.
		return make([]byte, size, roundUp(size, 8)), nil
	}
	raw := make([]byte, size+align-1)
	pad := int(-uintptr(unsafe.Pointer(&raw[0])) & uintptr(align-1))
	return raw[pad : pad+size : pad+size], nil
}

func (Heap) Deallocate(b []byte) {}

func roundUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}

// Failure builds the error returned for a failed request.
func Failure(size, align int) error {
	return fmt.Errorf("%w: %d bytes (align %d)", ErrOutOfMemory, size, align)
}
