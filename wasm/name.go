package wasm

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/pgavlin/wafer/wasm/leb128"
	"github.com/pgavlin/wafer/wasm/storage"
)

const CustomSectionName = "name"

// ErrNoNameSection is returned by Module.Names when the module has no retained
// name section.
var ErrNoNameSection = errors.New("module has no name section")

// NameType is the type of name subsection.
type NameType byte

const (
	NameModule   = NameType(0)
	NameFunction = NameType(1)
	NameLocal    = NameType(2)
)

type Naming struct {
	Index uint32
	Name  string
}

type LocalNames struct {
	Index uint32
	Names []Naming
}

// NameSection holds the debug names of a module, its functions and their
// locals. Subsections other than these three are skipped.
// See https://webassembly.github.io/spec/core/appendix/custom.html#name-section.
type NameSection struct {
	Module    string
	Functions []Naming
	Locals    []LocalNames
}

// FunctionName returns the name recorded for funcidx.
func (s *NameSection) FunctionName(funcidx uint32) (string, bool) {
	for _, n := range s.Functions {
		if n.Index == funcidx {
			return n.Name, true
		}
	}
	return "", false
}

// Names decodes the module's name section. The section's payload must have
// been retained (Config.KeepCustomSections).
func (m *Module) Names() (*NameSection, error) {
	s := m.Custom(CustomSectionName)
	if s == nil || s.Data == nil {
		return nil, ErrNoNameSection
	}

	var names NameSection
	if err := names.decode(storage.NewBuffer(s.Data)); err != nil {
		return nil, fmt.Errorf("decoding name section: %w", err)
	}
	return &names, nil
}

func (s *NameSection) decode(b *storage.Buffer) error {
	last := -1
	for !b.AtEnd() {
		typ, err := b.ReadByte()
		if err != nil {
			return err
		}
		if int(typ) <= last {
			return fmt.Errorf("out of order name subsection %d", typ)
		}
		last = int(typ)

		size, err := leb128.ReadVarUint32(b)
		if err != nil {
			return err
		}
		var sub storage.Limited
		sub.Reset(b, b.Offset()+int(size))

		switch NameType(typ) {
		case NameModule:
			s.Module, err = readNameString(&sub)
		case NameFunction:
			s.Functions, err = readNameMap(&sub)
		case NameLocal:
			s.Locals, err = readIndirectNameMap(&sub)
		default:
			err = sub.Skip(int(size))
		}
		if err != nil {
			return err
		}
		if !sub.AtEnd() {
			return fmt.Errorf("name subsection %d: %d trailing bytes", typ, sub.Remaining())
		}
	}
	return nil
}

func readNameString(s storage.Storage) (string, error) {
	n, err := leb128.ReadVarUint32(s)
	if err != nil {
		return "", err
	}
	b, err := s.Read(int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", ErrInvalidUTF8
	}
	return string(b), nil
}

func readNameMap(s storage.Storage) ([]Naming, error) {
	count, err := leb128.ReadVarUint32(s)
	if err != nil {
		return nil, err
	}

	var names []Naming
	for i := uint32(0); i < count; i++ {
		index, err := leb128.ReadVarUint32(s)
		if err != nil {
			return nil, err
		}
		name, err := readNameString(s)
		if err != nil {
			return nil, err
		}
		names = append(names, Naming{Index: index, Name: name})
	}
	return names, nil
}

func readIndirectNameMap(s storage.Storage) ([]LocalNames, error) {
	count, err := leb128.ReadVarUint32(s)
	if err != nil {
		return nil, err
	}

	var funcs []LocalNames
	for i := uint32(0); i < count; i++ {
		index, err := leb128.ReadVarUint32(s)
		if err != nil {
			return nil, err
		}
		names, err := readNameMap(s)
		if err != nil {
			return nil, err
		}
		funcs = append(funcs, LocalNames{Index: index, Names: names})
	}
	return funcs, nil
}
