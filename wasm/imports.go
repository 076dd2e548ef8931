// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wasm

import "github.com/pgavlin/wafer/wasm/types"

// Import is an interface implemented by types that can be imported by a WebAssembly module.
type Import interface {
	Kind() types.External
	isImport()
}

// ImportEntry describes an import statement in a Wasm module.
type ImportEntry struct {
	ModuleName Name // module name string
	FieldName  Name // field name string

	// If Kind is Function, Type is a FuncImport containing the type index of the function signature
	// If Kind is Table, Type is a TableImport containing the type of the imported table
	// If Kind is Memory, Type is a MemoryImport containing the type of the imported memory
	// If the Kind is Global, Type is a GlobalVarImport
	Type Import
}

type FuncImport struct {
	Type uint32
}

func (FuncImport) isImport() {}
func (FuncImport) Kind() types.External {
	return types.ExternalFunction
}

type TableImport struct {
	Type types.Table
}

func (TableImport) isImport() {}
func (TableImport) Kind() types.External {
	return types.ExternalTable
}

type MemoryImport struct {
	Type types.Memory
}

func (MemoryImport) isImport() {}
func (MemoryImport) Kind() types.External {
	return types.ExternalMemory
}

type GlobalVarImport struct {
	Type types.GlobalVar
}

func (GlobalVarImport) isImport() {}
func (GlobalVarImport) Kind() types.External {
	return types.ExternalGlobal
}
