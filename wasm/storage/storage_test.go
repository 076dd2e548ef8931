package storage

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backings(b []byte) map[string]func() Storage {
	return map[string]func() Storage{
		"buffer": func() Storage { return NewBuffer(b) },
		"stream": func() Storage { return NewStream(bytes.NewReader(b), make([]byte, 4)) },
		"stream-onebyte": func() Storage {
			return NewStream(iotest.OneByteReader(bytes.NewReader(b)), make([]byte, 3))
		},
	}
}

func TestSequentialAccess(t *testing.T) {
	input := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	for name, open := range backings(input) {
		t.Run(name, func(t *testing.T) {
			s := open()
			assert.False(t, s.AtEnd())

			c, err := s.Peek()
			require.NoError(t, err)
			assert.Equal(t, byte(0x00), c)
			assert.Equal(t, 0, s.Offset())

			c, err = s.ReadByte()
			require.NoError(t, err)
			assert.Equal(t, byte(0x00), c)

			v, err := s.Read(3)
			require.NoError(t, err)
			assert.Equal(t, []byte("asm"), v)
			assert.Equal(t, 4, s.Offset())

			require.NoError(t, s.Skip(1))

			dst := make([]byte, 3)
			require.NoError(t, s.ReadFull(dst))
			assert.Equal(t, []byte{0, 0, 0}, dst)
			assert.Equal(t, 8, s.Offset())
			assert.True(t, s.AtEnd())

			_, err = s.ReadByte()
			assert.Equal(t, io.EOF, err)
		})
	}
}

func TestTruncation(t *testing.T) {
	for name, open := range backings([]byte{0x00, 0x61}) {
		t.Run(name, func(t *testing.T) {
			s := open()
			_, err := s.Read(3)
			assert.Equal(t, io.ErrUnexpectedEOF, err)

			s = open()
			assert.Equal(t, io.ErrUnexpectedEOF, s.ReadFull(make([]byte, 3)))

			s = open()
			assert.Equal(t, io.ErrUnexpectedEOF, s.Skip(3))
		})
	}
}

func TestStreamScratchTooSmall(t *testing.T) {
	s := NewStream(bytes.NewReader([]byte("abcdefgh")), make([]byte, 4))

	_, err := s.Read(5)
	assert.Equal(t, ErrScratchTooSmall, err)
	assert.Equal(t, 0, s.Offset())

	dst := make([]byte, 6)
	require.NoError(t, s.ReadFull(dst))
	assert.Equal(t, []byte("abcdef"), dst)

	v, err := s.Read(2)
	require.NoError(t, err)
	assert.Equal(t, []byte("gh"), v)
	assert.True(t, s.AtEnd())
}

func TestStreamStickyError(t *testing.T) {
	boom := errors.New("boom")
	s := NewStream(iotest.ErrReader(boom), make([]byte, 4))

	_, err := s.ReadByte()
	assert.Equal(t, boom, err)
	_, err = s.Read(1)
	assert.Equal(t, boom, err)
	assert.False(t, s.AtEnd())
}

func TestBufferViewsAlias(t *testing.T) {
	input := []byte{1, 2, 3, 4}
	s := NewBuffer(input)

	v, err := s.Read(2)
	require.NoError(t, err)
	assert.Equal(t, &input[0], &v[0])
	assert.Equal(t, 2, cap(v))
}

func TestLimited(t *testing.T) {
	for name, open := range backings([]byte{1, 2, 3, 4, 5}) {
		t.Run(name, func(t *testing.T) {
			var l Limited
			l.Reset(open(), 3)

			c, err := l.ReadByte()
			require.NoError(t, err)
			assert.Equal(t, byte(1), c)
			assert.Equal(t, 2, l.Remaining())

			_, err = l.Read(3)
			assert.Equal(t, ErrLimit, err)
			assert.Equal(t, 1, l.Offset())

			v, err := l.Read(2)
			require.NoError(t, err)
			assert.Equal(t, []byte{2, 3}, v)
			assert.True(t, l.AtEnd())

			_, err = l.ReadByte()
			assert.Equal(t, ErrLimit, err)
		})
	}
}

func TestUnread(t *testing.T) {
	b := NewBuffer([]byte{1, 2, 3, 4, 5})
	_, err := b.ReadByte()
	require.NoError(t, err)

	n, ok := Unread(b)
	require.True(t, ok)
	assert.Equal(t, 4, n)

	n, ok = Unread(&Limited{S: b, End: 3})
	require.True(t, ok)
	assert.Equal(t, 2, n)

	n, ok = Unread(&Limited{S: b, End: 100})
	require.True(t, ok)
	assert.Equal(t, 4, n)

	s := NewStream(bytes.NewReader([]byte{1, 2}), make([]byte, 4))
	_, ok = Unread(s)
	assert.False(t, ok)
	_, ok = Unread(&Limited{S: s, End: 2})
	assert.False(t, ok)
}
