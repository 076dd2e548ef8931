package wasm

import "github.com/pgavlin/wafer/wasm/types"

// moduleScope answers the validator's index queries from the module decoded so
// far and the locals of the current function.
type moduleScope struct {
	m      *Module
	locals []types.ValueType
}

func (s *moduleScope) GetLocalType(localidx uint32) (types.ValueType, bool) {
	if uint64(localidx) >= uint64(len(s.locals)) {
		return 0, false
	}
	return s.locals[localidx], true
}

func (s *moduleScope) GetGlobalType(globalidx uint32) (types.GlobalVar, bool) {
	return s.m.GlobalType(globalidx)
}

func (s *moduleScope) IsImportedGlobal(globalidx uint32) bool {
	return uint64(globalidx) < uint64(s.m.importedGlobals)
}

func (s *moduleScope) GetFunctionSignature(funcidx uint32) (types.FunctionSig, bool) {
	return s.m.FunctionSignature(funcidx)
}

func (s *moduleScope) GetType(typeidx uint32) (types.FunctionSig, bool) {
	return s.m.typeAt(typeidx)
}

func (s *moduleScope) HasTable(tableidx uint32) bool {
	return uint64(tableidx) < uint64(s.m.tables)
}

func (s *moduleScope) HasMemory(memoryidx uint32) bool {
	return uint64(memoryidx) < uint64(s.m.memories)
}
