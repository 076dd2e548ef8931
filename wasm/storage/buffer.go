package storage

import "io"

// Buffer is a Storage over an in-memory region. Views returned by Read alias
// the region.
type Buffer struct {
	b   []byte
	off int
}

// NewBuffer returns a Buffer reading b from the start.
func NewBuffer(b []byte) *Buffer {
	return &Buffer{b: b}
}

// Len returns the number of unread bytes.
func (s *Buffer) Len() int {
	return len(s.b) - s.off
}

func (s *Buffer) ReadByte() (byte, error) {
	if s.off >= len(s.b) {
		return 0, io.EOF
	}
	c := s.b[s.off]
	s.off++
	return c, nil
}

func (s *Buffer) Peek() (byte, error) {
	if s.off >= len(s.b) {
		return 0, io.EOF
	}
	return s.b[s.off], nil
}

func (s *Buffer) Read(n int) ([]byte, error) {
	if n < 0 || n > s.Len() {
		return nil, io.ErrUnexpectedEOF
	}
	v := s.b[s.off : s.off+n : s.off+n]
	s.off += n
	return v, nil
}

func (s *Buffer) ReadFull(dst []byte) error {
	v, err := s.Read(len(dst))
	if err != nil {
		return err
	}
	copy(dst, v)
	return nil
}

func (s *Buffer) Skip(n int) error {
	if n < 0 || n > s.Len() {
		return io.ErrUnexpectedEOF
	}
	s.off += n
	return nil
}

func (s *Buffer) Offset() int {
	return s.off
}

func (s *Buffer) AtEnd() bool {
	return s.off >= len(s.b)
}
