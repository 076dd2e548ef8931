// Package storage provides sequential byte access to the encoding of a module.
//
// Two backings are provided: Buffer, which serves zero-copy views of a
// caller-owned region, and Stream, which copies from an io.Reader into
// caller-provided scratch space. Neither performs any validation.
package storage

import (
	"errors"
	"io"
)

var (
	// ErrScratchTooSmall is returned by Stream.Read when the requested view does
	// not fit in the stream's scratch space. Nothing is consumed.
	ErrScratchTooSmall = errors.New("storage: read exceeds scratch space")
	// ErrLimit is returned by Limited when a read would cross its end offset.
	ErrLimit = errors.New("unexpected end of section or function")
)

// Storage is sequential read access to a module's bytes.
//
// A read that cannot be satisfied because the input is exhausted returns
// io.ErrUnexpectedEOF. ReadByte and Peek at a clean end of input return io.EOF.
type Storage interface {
	io.ByteReader

	// Peek returns the next byte without consuming it.
	Peek() (byte, error)
	// Read returns a view of the next n bytes. The view is valid until the next
	// call on the storage.
	Read(n int) ([]byte, error)
	// ReadFull copies the next len(dst) bytes into dst.
	ReadFull(dst []byte) error
	// Skip discards the next n bytes.
	Skip(n int) error
	// Offset returns the absolute position of the next byte.
	Offset() int
	// AtEnd reports whether the input is cleanly exhausted.
	AtEnd() bool
}

// Sized is implemented by storage that knows how many unread bytes it holds.
type Sized interface {
	Len() int
}

// Unread returns the number of unread bytes s is known to hold. It reports
// false when s cannot know, as for a Stream. A Limited window is sized when
// the storage it wraps is.
func Unread(s Storage) (int, bool) {
	switch s := s.(type) {
	case Sized:
		return s.Len(), true
	case *Limited:
		n, ok := Unread(s.S)
		if !ok {
			return 0, false
		}
		return min(n, max(s.Remaining(), 0)), true
	}
	return 0, false
}
