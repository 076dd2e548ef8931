// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wasm

import (
	"github.com/pgavlin/wafer/wasm/alloc"
	"github.com/pgavlin/wafer/wasm/types"
)

const (
	Magic   uint32 = 0x6d736100
	Version uint32 = 0x1
)

// Module represents a decoded and validated WebAssembly module:
// http://webassembly.org/docs/modules/
//
// Names, data segments, retained custom sections and decoded expressions are
// held in blocks obtained from the decode's allocator. Free returns them.
type Module struct {
	Version  uint32
	Sections []Section

	Types    *SectionTypes
	Import   *SectionImports
	Function *SectionFunctions
	Table    *SectionTables
	Memory   *SectionMemories
	Global   *SectionGlobals
	Export   *SectionExports
	Start    *SectionStartFunction
	Elements *SectionElements
	Code     *SectionCode
	Data     *SectionData
	Customs  []*SectionCustom

	// Index spaces, imports first.
	funcTypes       []uint32
	globals         []types.GlobalVar
	importedFuncs   int
	importedGlobals int
	tables          int
	memories        int

	allocator alloc.Allocator
	blocks    [][]byte
}

// Free returns every block the module owns to the allocator it was decoded
// with. The module's names, payloads and expressions must not be used
// afterwards.
func (m *Module) Free() {
	for _, b := range m.blocks {
		m.allocator.Deallocate(b)
	}
	m.blocks = nil
}

// Custom returns a custom section with a specific name, if it exists.
func (m *Module) Custom(name string) *SectionCustom {
	for _, s := range m.Customs {
		if string(s.Name) == name {
			return s
		}
	}
	return nil
}

// FunctionCount returns the size of the function index space.
func (m *Module) FunctionCount() int {
	return len(m.funcTypes)
}

func (m *Module) ImportedFunctionCount() int {
	return m.importedFuncs
}

func (m *Module) definedFunctionCount() int {
	return len(m.funcTypes) - m.importedFuncs
}

// GlobalCount returns the size of the global index space.
func (m *Module) GlobalCount() int {
	return len(m.globals)
}

func (m *Module) ImportedGlobalCount() int {
	return m.importedGlobals
}

func (m *Module) TableCount() int {
	return m.tables
}

func (m *Module) MemoryCount() int {
	return m.memories
}

func (m *Module) typeAt(typeidx uint32) (types.FunctionSig, bool) {
	if m.Types == nil || uint64(typeidx) >= uint64(len(m.Types.Entries)) {
		return types.FunctionSig{}, false
	}
	return m.Types.Entries[typeidx], true
}

// FunctionSignature returns the signature of the function at funcidx in the
// function index space.
func (m *Module) FunctionSignature(funcidx uint32) (types.FunctionSig, bool) {
	if uint64(funcidx) >= uint64(len(m.funcTypes)) {
		return types.FunctionSig{}, false
	}
	return m.typeAt(m.funcTypes[funcidx])
}

// GlobalType returns the type of the global at globalidx in the global index
// space.
func (m *Module) GlobalType(globalidx uint32) (types.GlobalVar, bool) {
	if uint64(globalidx) >= uint64(len(m.globals)) {
		return types.GlobalVar{}, false
	}
	return m.globals[globalidx], true
}

// Body returns the decoded body of the function at funcidx, which must be a
// defined function.
func (m *Module) Body(funcidx uint32) (*FunctionBody, bool) {
	i := int64(funcidx) - int64(m.importedFuncs)
	if m.Code == nil || i < 0 || i >= int64(len(m.Code.Bodies)) {
		return nil, false
	}
	return &m.Code.Bodies[i], true
}
