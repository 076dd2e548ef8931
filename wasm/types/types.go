// Package types defines the WebAssembly 1.0 type grammar shared by the decoder
// and the instruction validator.
package types

import (
	"fmt"
	"strings"
)

// ValueType represents the type of a valid value in Wasm
type ValueType int8

const (
	ValueTypeI32 ValueType = 0x7f
	ValueTypeI64 ValueType = 0x7e
	ValueTypeF32 ValueType = 0x7d
	ValueTypeF64 ValueType = 0x7c
)

// ValueTypeFromByte returns the value type encoded by b.
func ValueTypeFromByte(b byte) (ValueType, bool) {
	switch t := ValueType(b); t {
	case ValueTypeI32, ValueTypeI64, ValueTypeF32, ValueTypeF64:
		return t, true
	}
	return 0, false
}

func (t ValueType) String() string {
	switch t {
	case ValueTypeI32:
		return "i32"
	case ValueTypeI64:
		return "i64"
	case ValueTypeF32:
		return "f32"
	case ValueTypeF64:
		return "f64"
	default:
		return "unknown"
	}
}

// TypeFunc is the form byte of a function signature.
const TypeFunc byte = 0x60

// FunctionSig describes the signature of a declared function.
type FunctionSig struct {
	ParamTypes  []ValueType
	ReturnTypes []ValueType
}

func (f FunctionSig) String() string {
	return fmt.Sprintf("(%s) -> (%s)", joinTypes(f.ParamTypes), joinTypes(f.ReturnTypes))
}

// Equal reports whether f and g have identical parameter and result lists.
func (f FunctionSig) Equal(g FunctionSig) bool {
	return equalTypes(f.ParamTypes, g.ParamTypes) && equalTypes(f.ReturnTypes, g.ReturnTypes)
}

func joinTypes(ts []ValueType) string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.String()
	}
	return strings.Join(names, ", ")
}

func equalTypes(a, b []ValueType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Limits describe the size bounds of a table or memory.
type Limits struct {
	Min    uint32
	Max    uint32
	HasMax bool
}

func (l Limits) String() string {
	if l.HasMax {
		return fmt.Sprintf("%d..%d", l.Min, l.Max)
	}
	return fmt.Sprintf("%d..", l.Min)
}

// ElemTypeFuncref is the only table element type in 1.0.
const ElemTypeFuncref byte = 0x70

// Table describes a table in a Wasm module.
type Table struct {
	ElementType byte
	Limits      Limits
}

// Memory describes a linear memory. Limits are in units of 64KiB pages.
type Memory struct {
	Limits Limits
}

// MaxMemoryPages is the largest memory size expressible with 32-bit addressing.
const MaxMemoryPages = 65536

// GlobalVar describes the type and mutability of a declared global variable.
type GlobalVar struct {
	Type    ValueType
	Mutable bool
}

func (g GlobalVar) String() string {
	if g.Mutable {
		return fmt.Sprintf("(mut %v)", g.Type)
	}
	return g.Type.String()
}

// External describes the kind of the entry being imported or exported.
type External uint8

const (
	ExternalFunction External = 0
	ExternalTable    External = 1
	ExternalMemory   External = 2
	ExternalGlobal   External = 3
)

func (e External) String() string {
	switch e {
	case ExternalFunction:
		return "function"
	case ExternalTable:
		return "table"
	case ExternalMemory:
		return "memory"
	case ExternalGlobal:
		return "global"
	default:
		return "<unknown external_kind>"
	}
}
