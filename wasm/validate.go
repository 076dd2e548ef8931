package wasm

import (
	"fmt"

	"github.com/pgavlin/wafer/wasm/diag"
	"github.com/pgavlin/wafer/wasm/types"
)

func (m *Module) validateMemory(l types.Limits, maxPages uint32) error {
	if l.Min > maxPages || l.HasMax && l.Max > maxPages {
		return diag.ValidationError(fmt.Sprintf("memory size must be at most %d pages", maxPages))
	}
	return nil
}

func (m *Module) validateExport(e ExportEntry) error {
	var ok bool
	switch e.Kind {
	case types.ExternalFunction:
		ok = uint64(e.Index) < uint64(m.FunctionCount())
	case types.ExternalTable:
		ok = uint64(e.Index) < uint64(m.tables)
	case types.ExternalMemory:
		ok = uint64(e.Index) < uint64(m.memories)
	case types.ExternalGlobal:
		ok = uint64(e.Index) < uint64(m.GlobalCount())
	}
	if !ok {
		return diag.ValidationError("unknown " + e.Kind.String())
	}
	return nil
}

func (m *Module) validateStart(funcidx uint32) error {
	sig, ok := m.FunctionSignature(funcidx)
	switch {
	case !ok:
		return diag.ValidationError("unknown function")
	case len(sig.ParamTypes) != 0 || len(sig.ReturnTypes) != 0:
		return diag.ValidationError("start function")
	}
	return nil
}
