package wasm_test

import (
	"github.com/pgavlin/wafer/wasm"
	"github.com/pgavlin/wafer/wasm/code"
	"github.com/pgavlin/wafer/wasm/leb128"
	"github.com/pgavlin/wafer/wasm/types"
)

var header = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

func cat(parts ...[]byte) []byte {
	var b []byte
	for _, p := range parts {
		b = append(b, p...)
	}
	return b
}

func module(sections ...[]byte) []byte {
	return cat(append([][]byte{header}, sections...)...)
}

func section(id wasm.SectionID, payload ...[]byte) []byte {
	p := cat(payload...)
	return cat([]byte{byte(id)}, u32(uint32(len(p))), p)
}

func vec(items ...[]byte) []byte {
	return cat(u32(uint32(len(items))), cat(items...))
}

func u32(v uint32) []byte {
	return leb128.AppendVarUint32(nil, v)
}

func str(s string) []byte {
	return cat(u32(uint32(len(s))), []byte(s))
}

func valtypes(ts ...types.ValueType) []byte {
	b := u32(uint32(len(ts)))
	for _, t := range ts {
		b = append(b, byte(t))
	}
	return b
}

func funcType(params, results []types.ValueType) []byte {
	return cat([]byte{types.TypeFunc}, valtypes(params...), valtypes(results...))
}

func limits(min uint32) []byte {
	return cat([]byte{0x00}, u32(min))
}

func limitsMax(min, max uint32) []byte {
	return cat([]byte{0x01}, u32(min), u32(max))
}

func funcImport(mod, field string, typeidx uint32) []byte {
	return cat(str(mod), str(field), []byte{byte(types.ExternalFunction)}, u32(typeidx))
}

func globalImport(mod, field string, t types.ValueType, mutable bool) []byte {
	return cat(str(mod), str(field), []byte{byte(types.ExternalGlobal)}, globalType(t, mutable))
}

func globalType(t types.ValueType, mutable bool) []byte {
	mut := byte(0)
	if mutable {
		mut = 1
	}
	return []byte{byte(t), mut}
}

func export(name string, kind types.External, index uint32) []byte {
	return cat(str(name), []byte{byte(kind)}, u32(index))
}

// locals encodes a local declaration vector from (count, type) pairs.
func locals(decls ...any) []byte {
	b := u32(uint32(len(decls) / 2))
	for i := 0; i < len(decls); i += 2 {
		b = append(b, u32(decls[i].(uint32))...)
		b = append(b, byte(decls[i+1].(types.ValueType)))
	}
	return b
}

func body(decls []byte, expr []byte) []byte {
	inner := cat(decls, expr)
	return cat(u32(uint32(len(inner))), inner)
}

func asm() *code.Assembler {
	return &code.Assembler{}
}

func custom(name string, data []byte) []byte {
	return section(wasm.SectionIDCustom, str(name), data)
}

func nameSection(moduleName string, funcs map[uint32]string, order ...uint32) []byte {
	mod := str(moduleName)
	sub := cat([]byte{byte(wasm.NameModule)}, u32(uint32(len(mod))), mod)

	var names [][]byte
	for _, i := range order {
		names = append(names, cat(u32(i), str(funcs[i])))
	}
	fn := vec(names...)
	sub = cat(sub, []byte{byte(wasm.NameFunction)}, u32(uint32(len(fn))), fn)
	return custom(wasm.CustomSectionName, sub)
}

var (
	i32 = types.ValueTypeI32
	i64 = types.ValueTypeI64

	noValues []types.ValueType
	oneI32   = []types.ValueType{i32}
)

// kitchenSink builds a module that uses every section.
func kitchenSink() []byte {
	body1 := asm().
		LocalGet(0).If(byte(i32)).I32Const(1).Else().I32Const(2).End().Drop().
		Block(byte(i32)).LocalGet(1).LocalGet(0).BrTable([]uint32{0, 0}, 0).End().
		End().Bytes()
	body2 := asm().
		I32Const(0).Load(code.OpI32Load, 4).Call(1).Drop().
		Loop().End().
		I32Const(0).GlobalSet(1).
		End().Bytes()
	body3 := asm().
		LocalGet(0).I32Const(1).Op(code.OpI32Add).I32Const(0).CallIndirect(0).
		End().Bytes()

	return module(
		section(wasm.SectionIDType, vec(funcType(oneI32, oneI32), funcType(nil, nil))),
		section(wasm.SectionIDImport, vec(funcImport("env", "f", 0), globalImport("env", "g", i32, false))),
		section(wasm.SectionIDFunction, vec(u32(0), u32(1), u32(0))),
		section(wasm.SectionIDTable, vec(cat([]byte{types.ElemTypeFuncref}, limits(1)))),
		section(wasm.SectionIDMemory, vec(limitsMax(1, 2))),
		section(wasm.SectionIDGlobal, vec(
			cat(globalType(i32, true), asm().GlobalGet(0).End().Bytes()),
			cat(globalType(i64, false), asm().I64Const(7).End().Bytes()),
		)),
		section(wasm.SectionIDExport, vec(
			export("f2", types.ExternalFunction, 1),
			export("mem", types.ExternalMemory, 0),
			export("g", types.ExternalGlobal, 1),
		)),
		section(wasm.SectionIDStart, u32(2)),
		section(wasm.SectionIDElement, vec(cat(u32(0), asm().I32Const(0).End().Bytes(), vec(u32(1), u32(3))))),
		section(wasm.SectionIDCode, vec(
			body(locals(uint32(1), i32), body1),
			body(locals(), body2),
			body(locals(), body3),
		)),
		section(wasm.SectionIDData, vec(cat(u32(0), asm().I32Const(8).End().Bytes(), str("hello")))),
		nameSection("kitchen", map[uint32]string{1: "first", 3: "third"}, 1, 3),
	)
}
