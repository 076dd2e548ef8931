// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wasm

import (
	"go.uber.org/zap"

	"github.com/pgavlin/wafer/wasm/code"
	"github.com/pgavlin/wafer/wasm/diag"
	"github.com/pgavlin/wafer/wasm/types"
)

// Section is a decoded section of a module.
type Section interface {
	// SectionID returns the section's id.
	SectionID() SectionID
	// GetRawSection returns the section's position in the input.
	GetRawSection() *RawSection
}

// SectionID is a 1-byte code that encodes the section code of both known and custom sections.
type SectionID uint8

const (
	SectionIDCustom   SectionID = 0
	SectionIDType     SectionID = 1
	SectionIDImport   SectionID = 2
	SectionIDFunction SectionID = 3
	SectionIDTable    SectionID = 4
	SectionIDMemory   SectionID = 5
	SectionIDGlobal   SectionID = 6
	SectionIDExport   SectionID = 7
	SectionIDStart    SectionID = 8
	SectionIDElement  SectionID = 9
	SectionIDCode     SectionID = 10
	SectionIDData     SectionID = 11
)

var sectionNames = [...]string{
	SectionIDCustom:   "custom",
	SectionIDType:     "type",
	SectionIDImport:   "import",
	SectionIDFunction: "function",
	SectionIDTable:    "table",
	SectionIDMemory:   "memory",
	SectionIDGlobal:   "global",
	SectionIDExport:   "export",
	SectionIDStart:    "start",
	SectionIDElement:  "element",
	SectionIDCode:     "code",
	SectionIDData:     "data",
}

func (s SectionID) String() string {
	if int(s) < len(sectionNames) {
		return sectionNames[s]
	}
	return "unknown"
}

// RawSection records where a section's payload lies in the input.
type RawSection struct {
	Start int
	End   int

	ID SectionID
}

func (s *RawSection) SectionID() SectionID {
	return s.ID
}

func (s *RawSection) GetRawSection() *RawSection {
	return s
}

// Name is a UTF-8 name read from the module. Its bytes are owned by the
// module.
type Name []byte

func (n Name) String() string {
	return string(n)
}

type SectionCustom struct {
	RawSection
	Name Name
	// Data is the payload after the name. It is only retained when
	// Config.KeepCustomSections is set.
	Data []byte
}

func (s *SectionCustom) readPayload(d *decoder) error {
	var err error
	if s.Name, err = d.name(); err != nil {
		return err
	}
	name, n := string(s.Name), d.win.Remaining()
	visit := d.v.ShouldVisit(name)

	d.log.Debug("custom section", zap.String("name", name), zap.Int("size", n))

	if d.cfg.KeepCustomSections {
		if s.Data, err = d.bytes(n); err != nil {
			return err
		}
		if visit {
			return d.visit(s.Start, name, s.Data)
		}
		return nil
	}
	if !visit {
		if err := d.win.Skip(n); err != nil {
			return d.malformed(d.win.Offset(), err)
		}
		return nil
	}

	data, release, err := d.view(n)
	if err != nil {
		return err
	}
	defer release()
	return d.visit(s.Start, name, data)
}

// SectionTypes declares all function signatures that will be used in a module.
type SectionTypes struct {
	RawSection
	Entries []types.FunctionSig
}

func (s *SectionTypes) readPayload(d *decoder) error {
	count, err := d.u32()
	if err != nil {
		return err
	}

	s.Entries = make([]types.FunctionSig, 0, d.capHint(count))
	for i := uint32(0); i < count; i++ {
		if err := d.enter(diag.Indexed(diag.KindEntry, "", int(i), d.win.Offset())); err != nil {
			return err
		}
		sig, err := d.functionSig()
		if err != nil {
			return err
		}
		s.Entries = append(s.Entries, sig)
		d.leave()
	}
	d.m.Types = s
	return nil
}

// SectionImports declares all imports that will be used in the module.
type SectionImports struct {
	RawSection
	Entries []ImportEntry
}

func (s *SectionImports) readPayload(d *decoder) error {
	count, err := d.u32()
	if err != nil {
		return err
	}

	s.Entries = make([]ImportEntry, 0, d.capHint(count))
	for i := uint32(0); i < count; i++ {
		if err := d.enter(diag.Indexed(diag.KindEntry, "", int(i), d.win.Offset())); err != nil {
			return err
		}
		entry, err := d.importEntry()
		if err != nil {
			return err
		}
		s.Entries = append(s.Entries, entry)
		d.leave()
	}
	d.m.Import = s
	return nil
}

// SectionFunctions declares the signature of all functions defined in the module (in the code section)
type SectionFunctions struct {
	RawSection
	Types []uint32
}

func (s *SectionFunctions) readPayload(d *decoder) error {
	count, err := d.u32()
	if err != nil {
		return err
	}

	s.Types = make([]uint32, 0, d.capHint(count))
	for i := uint32(0); i < count; i++ {
		offset := d.win.Offset()
		t, err := d.u32()
		if err != nil {
			return err
		}
		if _, ok := d.m.typeAt(t); !ok {
			return d.invalidAt(diag.Indexed(diag.KindEntry, "", int(i), offset), diag.ValidationError("unknown type"))
		}
		s.Types = append(s.Types, t)
		d.m.funcTypes = append(d.m.funcTypes, t)
	}
	d.m.Function = s
	return nil
}

// SectionTables describes all tables declared by a module.
type SectionTables struct {
	RawSection
	Entries []types.Table
}

func (s *SectionTables) readPayload(d *decoder) error {
	count, err := d.u32()
	if err != nil {
		return err
	}

	s.Entries = make([]types.Table, 0, d.capHint(count))
	for i := uint32(0); i < count; i++ {
		offset := d.win.Offset()
		if err := d.enter(diag.Indexed(diag.KindEntry, "", int(i), offset)); err != nil {
			return err
		}
		t, err := d.tableType()
		if err != nil {
			return err
		}
		if err := d.addTable(offset); err != nil {
			return err
		}
		s.Entries = append(s.Entries, t)
		d.leave()
	}
	d.m.Table = s
	return nil
}

// SectionMemories describes all linear memories used by a module.
type SectionMemories struct {
	RawSection
	Entries []types.Memory
}

func (s *SectionMemories) readPayload(d *decoder) error {
	count, err := d.u32()
	if err != nil {
		return err
	}

	s.Entries = make([]types.Memory, 0, d.capHint(count))
	for i := uint32(0); i < count; i++ {
		offset := d.win.Offset()
		if err := d.enter(diag.Indexed(diag.KindEntry, "", int(i), offset)); err != nil {
			return err
		}
		m, err := d.memoryType()
		if err != nil {
			return err
		}
		if err := d.addMemory(offset); err != nil {
			return err
		}
		s.Entries = append(s.Entries, m)
		d.leave()
	}
	d.m.Memory = s
	return nil
}

// GlobalEntry declares a global variable.
type GlobalEntry struct {
	Type types.GlobalVar
	Init code.Body
}

// SectionGlobals defines the value of all global variables declared in a module.
type SectionGlobals struct {
	RawSection
	Globals []GlobalEntry
}

func (s *SectionGlobals) readPayload(d *decoder) error {
	count, err := d.u32()
	if err != nil {
		return err
	}

	s.Globals = make([]GlobalEntry, 0, d.capHint(count))
	for i := uint32(0); i < count; i++ {
		if err := d.enter(diag.Indexed(diag.KindEntry, "", int(i), d.win.Offset())); err != nil {
			return err
		}
		t, err := d.globalType()
		if err != nil {
			return err
		}
		init, err := d.constExpr(t.Type)
		if err != nil {
			return err
		}
		s.Globals = append(s.Globals, GlobalEntry{Type: t, Init: init})
		d.m.globals = append(d.m.globals, t)
		d.leave()
	}
	d.m.Global = s
	return nil
}

// ExportEntry represents an exported entry by the module
type ExportEntry struct {
	Field Name
	Kind  types.External
	Index uint32
}

// SectionExports declares the export section of a module
type SectionExports struct {
	RawSection
	Entries []ExportEntry
}

func (s *SectionExports) readPayload(d *decoder) error {
	count, err := d.u32()
	if err != nil {
		return err
	}

	names := make(map[string]struct{}, d.capHint(count))
	s.Entries = make([]ExportEntry, 0, d.capHint(count))
	for i := uint32(0); i < count; i++ {
		offset := d.win.Offset()
		if err := d.enter(diag.Indexed(diag.KindEntry, "", int(i), offset)); err != nil {
			return err
		}
		e, err := d.exportEntry()
		if err != nil {
			return err
		}
		if _, dup := names[string(e.Field)]; dup {
			return d.invalid(offset, DuplicateExportError(e.Field))
		}
		names[string(e.Field)] = struct{}{}
		s.Entries = append(s.Entries, e)
		d.leave()
	}
	d.m.Export = s
	return nil
}

// SectionStartFunction represents the start function section.
type SectionStartFunction struct {
	RawSection
	Index uint32 // The index of the start function into the global index space.
}

func (s *SectionStartFunction) readPayload(d *decoder) error {
	offset := d.win.Offset()
	index, err := d.u32()
	if err != nil {
		return err
	}
	if err := d.m.validateStart(index); err != nil {
		return d.invalid(offset, err)
	}
	s.Index = index
	d.m.Start = s
	return nil
}

// ElementSegment describes a group of repeated elements that begin at a specified offset
type ElementSegment struct {
	Index  uint32 // The index into the global table space, should always be 0 in v1.
	Offset code.Body
	Elems  []uint32
}

// SectionElements describes the initial contents of a table's elements.
type SectionElements struct {
	RawSection
	Entries []ElementSegment
}

func (s *SectionElements) readPayload(d *decoder) error {
	count, err := d.u32()
	if err != nil {
		return err
	}

	s.Entries = make([]ElementSegment, 0, d.capHint(count))
	for i := uint32(0); i < count; i++ {
		if err := d.enter(diag.Indexed(diag.KindEntry, "", int(i), d.win.Offset())); err != nil {
			return err
		}
		seg, err := d.elementSegment()
		if err != nil {
			return err
		}
		s.Entries = append(s.Entries, seg)
		d.leave()
	}
	d.m.Elements = s
	return nil
}

// LocalEntry is a run of locals of one type.
type LocalEntry struct {
	Count uint32
	Type  types.ValueType
}

type FunctionBody struct {
	Locals []LocalEntry
	Code   code.Body

	// Offset and Size locate the body's encoding after its size prefix.
	Offset int
	Size   uint32
}

// SectionCode describes the body for every function declared inside a module.
type SectionCode struct {
	RawSection
	Bodies []FunctionBody
}

func (s *SectionCode) readPayload(d *decoder) error {
	offset := d.win.Offset()
	count, err := d.u32()
	if err != nil {
		return err
	}
	if defined := d.m.definedFunctionCount(); count != uint32(defined) {
		return d.malformed(offset, &FunctionLengthError{Functions: defined, Bodies: count})
	}

	s.Bodies = make([]FunctionBody, 0, d.capHint(count))
	for i := uint32(0); i < count; i++ {
		body, err := d.functionBody(i)
		if err != nil {
			return err
		}
		s.Bodies = append(s.Bodies, body)
	}
	d.m.Code = s
	return nil
}

// DataSegment describes a group of repeated elements that begin at a specified offset in the linear memory
type DataSegment struct {
	Index  uint32
	Offset code.Body
	Data   []byte
}

// SectionData describes the initial values of a module's linear memory
type SectionData struct {
	RawSection
	Entries []DataSegment
}

func (s *SectionData) readPayload(d *decoder) error {
	count, err := d.u32()
	if err != nil {
		return err
	}

	s.Entries = make([]DataSegment, 0, d.capHint(count))
	for i := uint32(0); i < count; i++ {
		if err := d.enter(diag.Indexed(diag.KindEntry, "", int(i), d.win.Offset())); err != nil {
			return err
		}
		seg, err := d.dataSegment()
		if err != nil {
			return err
		}
		s.Entries = append(s.Entries, seg)
		d.leave()
	}
	d.m.Data = s
	return nil
}
