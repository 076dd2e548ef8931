package code

import "github.com/pgavlin/wafer/wasm/types"

// Scope answers the index-space queries the validator makes about the module
// and function being decoded.
type Scope interface {
	GetLocalType(localidx uint32) (types.ValueType, bool)
	GetGlobalType(globalidx uint32) (types.GlobalVar, bool)
	// IsImportedGlobal reports whether globalidx names an imported global. Only
	// imported globals may be read by a constant expression.
	IsImportedGlobal(globalidx uint32) bool
	GetFunctionSignature(funcidx uint32) (types.FunctionSig, bool)
	GetType(typeidx uint32) (types.FunctionSig, bool)

	HasTable(tableidx uint32) bool
	HasMemory(memoryidx uint32) bool
}

// Unknown is the operand type the validator uses for values of an
// unreachable stack. It matches every type.
const Unknown types.ValueType = 0

var UnknownTypes = []types.ValueType{}

// UnknownScope treats every index as present with unknown type. It lets a
// body be decoded without its module.
var UnknownScope = unknownScope(0)

type unknownScope int

func (unknownScope) GetLocalType(localidx uint32) (types.ValueType, bool) {
	return Unknown, true
}

func (unknownScope) GetGlobalType(globalidx uint32) (types.GlobalVar, bool) {
	return types.GlobalVar{Type: Unknown}, true
}

func (unknownScope) IsImportedGlobal(globalidx uint32) bool {
	return true
}

func (unknownScope) GetFunctionSignature(funcidx uint32) (types.FunctionSig, bool) {
	return types.FunctionSig{ParamTypes: UnknownTypes, ReturnTypes: UnknownTypes}, true
}

func (unknownScope) GetType(typeidx uint32) (types.FunctionSig, bool) {
	return types.FunctionSig{ParamTypes: UnknownTypes, ReturnTypes: UnknownTypes}, true
}

func (unknownScope) HasTable(tableidx uint32) bool {
	return true
}

func (unknownScope) HasMemory(memoryidx uint32) bool {
	return true
}
