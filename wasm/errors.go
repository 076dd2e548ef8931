package wasm

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidMagic   = errors.New("magic header not detected")
	ErrUnknownVersion = errors.New("unknown binary version")
	ErrInvalidUTF8    = errors.New("malformed UTF-8 encoding")
	ErrTooManyLocals  = errors.New("too many locals")
)

type InvalidSectionIDError SectionID

func (e InvalidSectionIDError) Error() string {
	return fmt.Sprintf("malformed section id %d", uint8(e))
}

// OutOfOrderSectionError reports a known section that follows a section that
// must come after it.
type OutOfOrderSectionError struct {
	ID    SectionID
	After SectionID
}

func (e *OutOfOrderSectionError) Error() string {
	return fmt.Sprintf("unexpected content after last section: %v section after %v section", e.ID, e.After)
}

type DuplicateSectionError SectionID

func (e DuplicateSectionError) Error() string {
	return fmt.Sprintf("duplicate %v section", SectionID(e))
}

// SectionLengthError reports a section or function body whose declared size
// does not match the bytes its contents occupy.
type SectionLengthError struct {
	ID       SectionID
	Size     uint32
	Consumed int
}

func (e *SectionLengthError) Error() string {
	return fmt.Sprintf("section size mismatch: %v declared %d bytes, consumed %d", e.ID, e.Size, e.Consumed)
}

type FunctionLengthError struct {
	Functions int
	Bodies    uint32
}

func (e *FunctionLengthError) Error() string {
	return fmt.Sprintf("function and code section have inconsistent lengths (%d functions, %d bodies)", e.Functions, e.Bodies)
}

type DuplicateExportError string

func (e DuplicateExportError) Error() string {
	return fmt.Sprintf("duplicate export name %q", string(e))
}
