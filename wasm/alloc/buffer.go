package alloc

// Buffer is a growable byte buffer whose storage comes from an Allocator.
type Buffer struct {
	a     Allocator
	align int
	block []byte
	n     int
}

// NewBuffer returns an empty buffer drawing blocks aligned to align from a.
func NewBuffer(a Allocator, align int) Buffer {
	return Buffer{a: a, align: align}
}

// Len returns the number of filled bytes.
func (b *Buffer) Len() int {
	return b.n
}

// Bytes returns the filled prefix. The slice aliases the current block.
func (b *Buffer) Bytes() []byte {
	if b.block == nil {
		return nil
	}
	return b.block[:b.n:b.n]
}

// Extend grows the filled prefix by n bytes and returns them.
func (b *Buffer) Extend(n int) ([]byte, error) {
	if b.n+n > len(b.block) {
		if err := b.grow(b.n + n); err != nil {
			return nil, err
		}
	}
	p := b.block[b.n : b.n+n : b.n+n]
	b.n += n
	return p, nil
}

func (b *Buffer) grow(min int) error {
	size := 2 * len(b.block)
	if size < 64 {
		size = 64
	}
	for size < min {
		size *= 2
	}
	block, err := b.a.Allocate(size, b.align)
	if err != nil {
		return err
	}
	copy(block, b.block[:b.n])
	if b.block != nil {
		b.a.Deallocate(b.block)
	}
	b.block = block
	return nil
}

// Truncate discards all but the first n filled bytes.
func (b *Buffer) Truncate(n int) {
	b.n = n
}

// Release returns the buffer's block to its allocator and empties the buffer.
func (b *Buffer) Release() {
	if b.block != nil {
		b.a.Deallocate(b.block)
	}
	b.block, b.n = nil, 0
}

// Detach hands the filled prefix to the caller, who becomes responsible for
// deallocating it, and empties the buffer.
func (b *Buffer) Detach() []byte {
	p := b.Bytes()
	b.block, b.n = nil, 0
	return p
}
