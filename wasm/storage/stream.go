package storage

import "io"

// Stream is a Storage over an io.Reader. Bytes are staged in a caller-provided
// scratch buffer; views returned by Read alias that buffer.
type Stream struct {
	r   io.Reader
	buf []byte

	start, end int
	off        int
	err        error
}

// NewStream returns a Stream reading from r through scratch. The scratch must
// not be empty.
func NewStream(r io.Reader, scratch []byte) *Stream {
	if len(scratch) == 0 {
		panic("storage: empty scratch")
	}
	return &Stream{r: r, buf: scratch}
}

func (s *Stream) buffered() int {
	return s.end - s.start
}

// fill ensures at least n bytes are buffered. It returns io.EOF if no bytes
// at all remain and io.ErrUnexpectedEOF if fewer than n remain.
func (s *Stream) fill(n int) error {
	if n > len(s.buf) {
		return ErrScratchTooSmall
	}
	if s.buffered() >= n {
		return nil
	}
	if s.start+n > len(s.buf) {
		copy(s.buf, s.buf[s.start:s.end])
		s.end -= s.start
		s.start = 0
	}
	for s.buffered() < n && s.err == nil {
		m, err := s.r.Read(s.buf[s.end:])
		s.end += m
		if err != nil {
			s.err = err
		} else if m == 0 {
			s.err = io.ErrNoProgress
		}
	}
	if s.buffered() >= n {
		return nil
	}
	if s.err != io.EOF {
		return s.err
	}
	if s.buffered() == 0 {
		return io.EOF
	}
	return io.ErrUnexpectedEOF
}

func (s *Stream) ReadByte() (byte, error) {
	if err := s.fill(1); err != nil {
		return 0, err
	}
	c := s.buf[s.start]
	s.start++
	s.off++
	return c, nil
}

func (s *Stream) Peek() (byte, error) {
	if err := s.fill(1); err != nil {
		return 0, err
	}
	return s.buf[s.start], nil
}

func (s *Stream) Read(n int) ([]byte, error) {
	if n < 0 {
		return nil, io.ErrUnexpectedEOF
	}
	if err := s.fill(n); err != nil {
		if err == io.EOF {
			if n == 0 {
				return nil, nil
			}
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	v := s.buf[s.start : s.start+n : s.start+n]
	s.start += n
	s.off += n
	return v, nil
}

func (s *Stream) ReadFull(dst []byte) error {
	for len(dst) > 0 {
		if s.buffered() == 0 {
			if err := s.fill(1); err != nil {
				if err == io.EOF {
					err = io.ErrUnexpectedEOF
				}
				return err
			}
		}
		m := copy(dst, s.buf[s.start:s.end])
		s.start += m
		s.off += m
		dst = dst[m:]
	}
	return nil
}

func (s *Stream) Skip(n int) error {
	if n < 0 {
		return io.ErrUnexpectedEOF
	}
	for n > 0 {
		if s.buffered() == 0 {
			if err := s.fill(1); err != nil {
				if err == io.EOF {
					err = io.ErrUnexpectedEOF
				}
				return err
			}
		}
		m := s.buffered()
		if m > n {
			m = n
		}
		s.start += m
		s.off += m
		n -= m
	}
	return nil
}

func (s *Stream) Offset() int {
	return s.off
}

func (s *Stream) AtEnd() bool {
	return s.fill(1) == io.EOF
}
