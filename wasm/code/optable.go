package code

import "github.com/pgavlin/wafer/wasm/types"

// Category groups opcodes for statistics.
type Category uint8

const (
	CategoryIllegal Category = iota
	CategoryControl
	CategoryParametric
	CategoryVariable
	CategoryLoad
	CategoryStore
	CategoryMemory
	CategoryConst
	CategoryCompare
	CategoryArith
	CategoryConvert
)

var categoryNames = [...]string{
	CategoryIllegal:    "illegal",
	CategoryControl:    "control",
	CategoryParametric: "parametric",
	CategoryVariable:   "variable",
	CategoryLoad:       "load",
	CategoryStore:      "store",
	CategoryMemory:     "memory",
	CategoryConst:      "const",
	CategoryCompare:    "compare",
	CategoryArith:      "arith",
	CategoryConvert:    "convert",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "illegal"
}

// opcodeInfo describes how to decode and check one opcode.
//
// read consumes the opcode's immediates into the instruction. check applies
// the opcode's stack effect; when check is nil the fixed effect pop/push is
// applied instead.
type opcodeInfo struct {
	name     string
	shape    Shape
	category Category
	read     func(d *Decoder, ins *Instruction) error
	check    func(d *Decoder, ins *Instruction, info *opcodeInfo) error
	pop      []types.ValueType
	push     []types.ValueType
	align    uint32
	constant bool
}

var (
	i32    = []types.ValueType{types.ValueTypeI32}
	i64    = []types.ValueType{types.ValueTypeI64}
	f32    = []types.ValueType{types.ValueTypeF32}
	f64    = []types.ValueType{types.ValueTypeF64}
	i32i32 = []types.ValueType{types.ValueTypeI32, types.ValueTypeI32}
	i64i64 = []types.ValueType{types.ValueTypeI64, types.ValueTypeI64}
	f32f32 = []types.ValueType{types.ValueTypeF32, types.ValueTypeF32}
	f64f64 = []types.ValueType{types.ValueTypeF64, types.ValueTypeF64}
	i32i64 = []types.ValueType{types.ValueTypeI32, types.ValueTypeI64}
	i32f32 = []types.ValueType{types.ValueTypeI32, types.ValueTypeF32}
	i32f64 = []types.ValueType{types.ValueTypeI32, types.ValueTypeF64}
)

func control(name string, shape Shape, read func(*Decoder, *Instruction) error, check func(*Decoder, *Instruction, *opcodeInfo) error) opcodeInfo {
	return opcodeInfo{name: name, shape: shape, category: CategoryControl, read: read, check: check}
}

func variable(name string, check func(*Decoder, *Instruction, *opcodeInfo) error) opcodeInfo {
	return opcodeInfo{name: name, shape: ShapeIndex, category: CategoryVariable, read: readIndex, check: check}
}

func load(name string, align uint32, push []types.ValueType) opcodeInfo {
	return opcodeInfo{name: name, shape: ShapeMemarg, category: CategoryLoad, read: readMemarg, check: checkMemarg, pop: i32, push: push, align: align}
}

func store(name string, align uint32, pop []types.ValueType) opcodeInfo {
	return opcodeInfo{name: name, shape: ShapeMemarg, category: CategoryStore, read: readMemarg, check: checkMemarg, pop: pop, align: align}
}

func constant(name string, read func(*Decoder, *Instruction) error, push []types.ValueType) opcodeInfo {
	return opcodeInfo{name: name, shape: ShapeConst, category: CategoryConst, read: read, push: push, constant: true}
}

func op(name string, category Category, pop, push []types.ValueType) opcodeInfo {
	return opcodeInfo{name: name, category: category, pop: pop, push: push}
}

var opcodeTable = [256]opcodeInfo{
	OpUnreachable:  control("unreachable", ShapeNone, nil, checkUnreachable),
	OpNop:          control("nop", ShapeNone, nil, nil),
	OpBlock:        control("block", ShapeBlock, readBlockType, checkBlock),
	OpLoop:         control("loop", ShapeBlock, readBlockType, checkBlock),
	OpIf:           control("if", ShapeBlock, readBlockType, checkBlock),
	OpElse:         control("else", ShapeNone, nil, checkElse),
	OpEnd:          {name: "end", category: CategoryControl, check: checkEnd, constant: true},
	OpBr:           control("br", ShapeIndex, readIndex, checkBr),
	OpBrIf:         control("br_if", ShapeIndex, readIndex, checkBrIf),
	OpBrTable:      control("br_table", ShapeBranchTable, readBranchTable, checkBrTable),
	OpReturn:       control("return", ShapeNone, nil, checkReturn),
	OpCall:         control("call", ShapeIndex, readIndex, checkCall),
	OpCallIndirect: control("call_indirect", ShapeIndex, readCallIndirect, checkCallIndirect),

	OpDrop:   {name: "drop", category: CategoryParametric, check: checkDrop},
	OpSelect: {name: "select", category: CategoryParametric, check: checkSelect},

	OpLocalGet:  variable("local.get", checkLocalGet),
	OpLocalSet:  variable("local.set", checkLocalSet),
	OpLocalTee:  variable("local.tee", checkLocalTee),
	OpGlobalGet: {name: "global.get", shape: ShapeIndex, category: CategoryVariable, read: readIndex, check: checkGlobalGet, constant: true},
	OpGlobalSet: variable("global.set", checkGlobalSet),

	OpI32Load:    load("i32.load", 2, i32),
	OpI64Load:    load("i64.load", 3, i64),
	OpF32Load:    load("f32.load", 2, f32),
	OpF64Load:    load("f64.load", 3, f64),
	OpI32Load8S:  load("i32.load8_s", 0, i32),
	OpI32Load8U:  load("i32.load8_u", 0, i32),
	OpI32Load16S: load("i32.load16_s", 1, i32),
	OpI32Load16U: load("i32.load16_u", 1, i32),
	OpI64Load8S:  load("i64.load8_s", 0, i64),
	OpI64Load8U:  load("i64.load8_u", 0, i64),
	OpI64Load16S: load("i64.load16_s", 1, i64),
	OpI64Load16U: load("i64.load16_u", 1, i64),
	OpI64Load32S: load("i64.load32_s", 2, i64),
	OpI64Load32U: load("i64.load32_u", 2, i64),
	OpI32Store:   store("i32.store", 2, i32i32),
	OpI64Store:   store("i64.store", 3, i32i64),
	OpF32Store:   store("f32.store", 2, i32f32),
	OpF64Store:   store("f64.store", 3, i32f64),
	OpI32Store8:  store("i32.store8", 0, i32i32),
	OpI32Store16: store("i32.store16", 1, i32i32),
	OpI64Store8:  store("i64.store8", 0, i32i64),
	OpI64Store16: store("i64.store16", 1, i32i64),
	OpI64Store32: store("i64.store32", 2, i32i64),
	OpMemorySize: {name: "memory.size", category: CategoryMemory, read: readZeroByte, check: checkMemory, push: i32},
	OpMemoryGrow: {name: "memory.grow", category: CategoryMemory, read: readZeroByte, check: checkMemory, pop: i32, push: i32},

	OpI32Const: constant("i32.const", readI32Const, i32),
	OpI64Const: constant("i64.const", readI64Const, i64),
	OpF32Const: constant("f32.const", readF32Const, f32),
	OpF64Const: constant("f64.const", readF64Const, f64),

	OpI32Eqz: op("i32.eqz", CategoryCompare, i32, i32),
	OpI32Eq:  op("i32.eq", CategoryCompare, i32i32, i32),
	OpI32Ne:  op("i32.ne", CategoryCompare, i32i32, i32),
	OpI32LtS: op("i32.lt_s", CategoryCompare, i32i32, i32),
	OpI32LtU: op("i32.lt_u", CategoryCompare, i32i32, i32),
	OpI32GtS: op("i32.gt_s", CategoryCompare, i32i32, i32),
	OpI32GtU: op("i32.gt_u", CategoryCompare, i32i32, i32),
	OpI32LeS: op("i32.le_s", CategoryCompare, i32i32, i32),
	OpI32LeU: op("i32.le_u", CategoryCompare, i32i32, i32),
	OpI32GeS: op("i32.ge_s", CategoryCompare, i32i32, i32),
	OpI32GeU: op("i32.ge_u", CategoryCompare, i32i32, i32),

	OpI64Eqz: op("i64.eqz", CategoryCompare, i64, i32),
	OpI64Eq:  op("i64.eq", CategoryCompare, i64i64, i32),
	OpI64Ne:  op("i64.ne", CategoryCompare, i64i64, i32),
	OpI64LtS: op("i64.lt_s", CategoryCompare, i64i64, i32),
	OpI64LtU: op("i64.lt_u", CategoryCompare, i64i64, i32),
	OpI64GtS: op("i64.gt_s", CategoryCompare, i64i64, i32),
	OpI64GtU: op("i64.gt_u", CategoryCompare, i64i64, i32),
	OpI64LeS: op("i64.le_s", CategoryCompare, i64i64, i32),
	OpI64LeU: op("i64.le_u", CategoryCompare, i64i64, i32),
	OpI64GeS: op("i64.ge_s", CategoryCompare, i64i64, i32),
	OpI64GeU: op("i64.ge_u", CategoryCompare, i64i64, i32),

	OpF32Eq: op("f32.eq", CategoryCompare, f32f32, i32),
	OpF32Ne: op("f32.ne", CategoryCompare, f32f32, i32),
	OpF32Lt: op("f32.lt", CategoryCompare, f32f32, i32),
	OpF32Gt: op("f32.gt", CategoryCompare, f32f32, i32),
	OpF32Le: op("f32.le", CategoryCompare, f32f32, i32),
	OpF32Ge: op("f32.ge", CategoryCompare, f32f32, i32),

	OpF64Eq: op("f64.eq", CategoryCompare, f64f64, i32),
	OpF64Ne: op("f64.ne", CategoryCompare, f64f64, i32),
	OpF64Lt: op("f64.lt", CategoryCompare, f64f64, i32),
	OpF64Gt: op("f64.gt", CategoryCompare, f64f64, i32),
	OpF64Le: op("f64.le", CategoryCompare, f64f64, i32),
	OpF64Ge: op("f64.ge", CategoryCompare, f64f64, i32),

	OpI32Clz:    op("i32.clz", CategoryArith, i32, i32),
	OpI32Ctz:    op("i32.ctz", CategoryArith, i32, i32),
	OpI32Popcnt: op("i32.popcnt", CategoryArith, i32, i32),
	OpI32Add:    op("i32.add", CategoryArith, i32i32, i32),
	OpI32Sub:    op("i32.sub", CategoryArith, i32i32, i32),
	OpI32Mul:    op("i32.mul", CategoryArith, i32i32, i32),
	OpI32DivS:   op("i32.div_s", CategoryArith, i32i32, i32),
	OpI32DivU:   op("i32.div_u", CategoryArith, i32i32, i32),
	OpI32RemS:   op("i32.rem_s", CategoryArith, i32i32, i32),
	OpI32RemU:   op("i32.rem_u", CategoryArith, i32i32, i32),
	OpI32And:    op("i32.and", CategoryArith, i32i32, i32),
	OpI32Or:     op("i32.or", CategoryArith, i32i32, i32),
	OpI32Xor:    op("i32.xor", CategoryArith, i32i32, i32),
	OpI32Shl:    op("i32.shl", CategoryArith, i32i32, i32),
	OpI32ShrS:   op("i32.shr_s", CategoryArith, i32i32, i32),
	OpI32ShrU:   op("i32.shr_u", CategoryArith, i32i32, i32),
	OpI32Rotl:   op("i32.rotl", CategoryArith, i32i32, i32),
	OpI32Rotr:   op("i32.rotr", CategoryArith, i32i32, i32),

	OpI64Clz:    op("i64.clz", CategoryArith, i64, i64),
	OpI64Ctz:    op("i64.ctz", CategoryArith, i64, i64),
	OpI64Popcnt: op("i64.popcnt", CategoryArith, i64, i64),
	OpI64Add:    op("i64.add", CategoryArith, i64i64, i64),
	OpI64Sub:    op("i64.sub", CategoryArith, i64i64, i64),
	OpI64Mul:    op("i64.mul", CategoryArith, i64i64, i64),
	OpI64DivS:   op("i64.div_s", CategoryArith, i64i64, i64),
	OpI64DivU:   op("i64.div_u", CategoryArith, i64i64, i64),
	OpI64RemS:   op("i64.rem_s", CategoryArith, i64i64, i64),
	OpI64RemU:   op("i64.rem_u", CategoryArith, i64i64, i64),
	OpI64And:    op("i64.and", CategoryArith, i64i64, i64),
	OpI64Or:     op("i64.or", CategoryArith, i64i64, i64),
	OpI64Xor:    op("i64.xor", CategoryArith, i64i64, i64),
	OpI64Shl:    op("i64.shl", CategoryArith, i64i64, i64),
	OpI64ShrS:   op("i64.shr_s", CategoryArith, i64i64, i64),
	OpI64ShrU:   op("i64.shr_u", CategoryArith, i64i64, i64),
	OpI64Rotl:   op("i64.rotl", CategoryArith, i64i64, i64),
	OpI64Rotr:   op("i64.rotr", CategoryArith, i64i64, i64),

	OpF32Abs:      op("f32.abs", CategoryArith, f32, f32),
	OpF32Neg:      op("f32.neg", CategoryArith, f32, f32),
	OpF32Ceil:     op("f32.ceil", CategoryArith, f32, f32),
	OpF32Floor:    op("f32.floor", CategoryArith, f32, f32),
	OpF32Trunc:    op("f32.trunc", CategoryArith, f32, f32),
	OpF32Nearest:  op("f32.nearest", CategoryArith, f32, f32),
	OpF32Sqrt:     op("f32.sqrt", CategoryArith, f32, f32),
	OpF32Add:      op("f32.add", CategoryArith, f32f32, f32),
	OpF32Sub:      op("f32.sub", CategoryArith, f32f32, f32),
	OpF32Mul:      op("f32.mul", CategoryArith, f32f32, f32),
	OpF32Div:      op("f32.div", CategoryArith, f32f32, f32),
	OpF32Min:      op("f32.min", CategoryArith, f32f32, f32),
	OpF32Max:      op("f32.max", CategoryArith, f32f32, f32),
	OpF32Copysign: op("f32.copysign", CategoryArith, f32f32, f32),

	OpF64Abs:      op("f64.abs", CategoryArith, f64, f64),
	OpF64Neg:      op("f64.neg", CategoryArith, f64, f64),
	OpF64Ceil:     op("f64.ceil", CategoryArith, f64, f64),
	OpF64Floor:    op("f64.floor", CategoryArith, f64, f64),
	OpF64Trunc:    op("f64.trunc", CategoryArith, f64, f64),
	OpF64Nearest:  op("f64.nearest", CategoryArith, f64, f64),
	OpF64Sqrt:     op("f64.sqrt", CategoryArith, f64, f64),
	OpF64Add:      op("f64.add", CategoryArith, f64f64, f64),
	OpF64Sub:      op("f64.sub", CategoryArith, f64f64, f64),
	OpF64Mul:      op("f64.mul", CategoryArith, f64f64, f64),
	OpF64Div:      op("f64.div", CategoryArith, f64f64, f64),
	OpF64Min:      op("f64.min", CategoryArith, f64f64, f64),
	OpF64Max:      op("f64.max", CategoryArith, f64f64, f64),
	OpF64Copysign: op("f64.copysign", CategoryArith, f64f64, f64),

	OpI32WrapI64:        op("i32.wrap_i64", CategoryConvert, i64, i32),
	OpI32TruncF32S:      op("i32.trunc_f32_s", CategoryConvert, f32, i32),
	OpI32TruncF32U:      op("i32.trunc_f32_u", CategoryConvert, f32, i32),
	OpI32TruncF64S:      op("i32.trunc_f64_s", CategoryConvert, f64, i32),
	OpI32TruncF64U:      op("i32.trunc_f64_u", CategoryConvert, f64, i32),
	OpI64ExtendI32S:     op("i64.extend_i32_s", CategoryConvert, i32, i64),
	OpI64ExtendI32U:     op("i64.extend_i32_u", CategoryConvert, i32, i64),
	OpI64TruncF32S:      op("i64.trunc_f32_s", CategoryConvert, f32, i64),
	OpI64TruncF32U:      op("i64.trunc_f32_u", CategoryConvert, f32, i64),
	OpI64TruncF64S:      op("i64.trunc_f64_s", CategoryConvert, f64, i64),
	OpI64TruncF64U:      op("i64.trunc_f64_u", CategoryConvert, f64, i64),
	OpF32ConvertI32S:    op("f32.convert_i32_s", CategoryConvert, i32, f32),
	OpF32ConvertI32U:    op("f32.convert_i32_u", CategoryConvert, i32, f32),
	OpF32ConvertI64S:    op("f32.convert_i64_s", CategoryConvert, i64, f32),
	OpF32ConvertI64U:    op("f32.convert_i64_u", CategoryConvert, i64, f32),
	OpF32DemoteF64:      op("f32.demote_f64", CategoryConvert, f64, f32),
	OpF64ConvertI32S:    op("f64.convert_i32_s", CategoryConvert, i32, f64),
	OpF64ConvertI32U:    op("f64.convert_i32_u", CategoryConvert, i32, f64),
	OpF64ConvertI64S:    op("f64.convert_i64_s", CategoryConvert, i64, f64),
	OpF64ConvertI64U:    op("f64.convert_i64_u", CategoryConvert, i64, f64),
	OpF64PromoteF32:     op("f64.promote_f32", CategoryConvert, f32, f64),
	OpI32ReinterpretF32: op("i32.reinterpret_f32", CategoryConvert, f32, i32),
	OpI64ReinterpretF64: op("i64.reinterpret_f64", CategoryConvert, f64, i64),
	OpF32ReinterpretI32: op("f32.reinterpret_i32", CategoryConvert, i32, f32),
	OpF64ReinterpretI64: op("f64.reinterpret_i64", CategoryConvert, i64, f64),
}

// OpcodeName returns the mnemonic for op, or the empty string if op is not a
// legal opcode.
func OpcodeName(op byte) string {
	return opcodeTable[op].name
}

// OpcodeCategory returns the statistics category of op.
func OpcodeCategory(op byte) Category {
	return opcodeTable[op].category
}

// IsLegal reports whether op is a legal opcode.
func IsLegal(op byte) bool {
	return opcodeTable[op].name != ""
}
