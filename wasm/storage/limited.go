package storage

// Limited restricts reads from a Storage to bytes before an absolute end
// offset. Reads that would cross the end fail with ErrLimit and consume
// nothing.
type Limited struct {
	S   Storage
	End int
}

// Reset retargets l at s, ending at the absolute offset end.
func (l *Limited) Reset(s Storage, end int) {
	l.S, l.End = s, end
}

// Remaining returns the number of bytes left before the end offset.
func (l *Limited) Remaining() int {
	return l.End - l.S.Offset()
}

func (l *Limited) ReadByte() (byte, error) {
	if l.Remaining() < 1 {
		return 0, ErrLimit
	}
	return l.S.ReadByte()
}

func (l *Limited) Peek() (byte, error) {
	if l.Remaining() < 1 {
		return 0, ErrLimit
	}
	return l.S.Peek()
}

func (l *Limited) Read(n int) ([]byte, error) {
	if n > l.Remaining() {
		return nil, ErrLimit
	}
	return l.S.Read(n)
}

func (l *Limited) ReadFull(dst []byte) error {
	if len(dst) > l.Remaining() {
		return ErrLimit
	}
	return l.S.ReadFull(dst)
}

func (l *Limited) Skip(n int) error {
	if n > l.Remaining() {
		return ErrLimit
	}
	return l.S.Skip(n)
}

func (l *Limited) Offset() int {
	return l.S.Offset()
}

// AtEnd reports whether the window is exhausted.
func (l *Limited) AtEnd() bool {
	return l.Remaining() <= 0
}
