package diag

import (
	"errors"
	"fmt"
	"strings"
)

// Class is the category of a decode failure.
type Class uint8

const (
	// Malformed input could not be parsed as the binary format.
	Malformed Class = iota + 1
	// Invalid input parsed but violates a static validation rule.
	Invalid
	// AllocationFailure means the allocator refused a request.
	AllocationFailure
)

func (c Class) String() string {
	switch c {
	case Malformed:
		return "malformed"
	case Invalid:
		return "invalid"
	case AllocationFailure:
		return "allocation failure"
	default:
		return "unknown"
	}
}

// Sentinels matched by errors.Is against any *Error of the same class.
var (
	ErrMalformed  = errors.New("malformed module")
	ErrInvalid    = errors.New("invalid module")
	ErrAllocation = errors.New("allocation failure")
)

func (c Class) sentinel() error {
	switch c {
	case Malformed:
		return ErrMalformed
	case Invalid:
		return ErrInvalid
	default:
		return ErrAllocation
	}
}

// Error is a located decode failure. It owns a copy of the context stack as it
// was when the failure was detected.
type Error struct {
	Class  Class
	Offset int
	Err    error

	frames [MaxDepth]Frame
	depth  int
}

// NewError builds an error at offset, copying the frames of s.
func NewError(class Class, offset int, err error, s *Stack) *Error {
	e := &Error{Class: class, Offset: offset, Err: err}
	if s != nil {
		e.depth = copy(e.frames[:], s.Frames())
	}
	return e
}

// Frames returns the snapshot, outermost first.
func (e *Error) Frames() []Frame {
	return e.frames[:e.depth]
}

// Innermost returns the innermost frame of the snapshot.
func (e *Error) Innermost() (Frame, bool) {
	if e.depth == 0 {
		return Frame{}, false
	}
	return e.frames[e.depth-1], true
}

// Find returns the innermost frame of kind k.
func (e *Error) Find(k Kind) (Frame, bool) {
	for i := e.depth - 1; i >= 0; i-- {
		if e.frames[i].Kind == k {
			return e.frames[i], true
		}
	}
	return Frame{}, false
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v: %v at offset %#x", e.Class, e.Err, e.Offset)
	if e.depth > 0 {
		b.WriteString(" (")
		for i, f := range e.Frames() {
			if i > 0 {
				b.WriteString(" > ")
			}
			b.WriteString(f.Kind.String())
			if f.Label != "" {
				b.WriteString(" " + f.Label)
			}
			if f.Index != NoIndex {
				fmt.Fprintf(&b, " #%d", f.Index)
			}
		}
		b.WriteString(")")
	}
	return b.String()
}

// Trace renders the snapshot one frame per line, indented by depth.
func (e *Error) Trace() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%#x: %v: %v\n", e.Offset, e.Class, e.Err)
	for i, f := range e.Frames() {
		fmt.Fprintf(&b, "%s%v\n", strings.Repeat("  ", i+1), f)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the class sentinels.
func (e *Error) Is(target error) bool {
	return target == e.Class.sentinel()
}

// DepthError is the cause reported when a frame does not fit on the stack.
type DepthError struct {
	Frame Frame
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("excessive parsing depth entering %v", e.Frame)
}

// ClassOf returns the class of err, or zero if err is not a *Error.
func ClassOf(err error) Class {
	var e *Error
	if errors.As(err, &e) {
		return e.Class
	}
	return 0
}

// ValidationError is the cause of an Invalid failure that needs no structured
// payload.
type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

// InvalidTokenError is the cause reported when a byte is not a legal encoding
// of the named token.
type InvalidTokenError struct {
	Token string
	Byte  byte
}

func (e *InvalidTokenError) Error() string {
	return fmt.Sprintf("malformed %s 0x%02x", e.Token, e.Byte)
}
