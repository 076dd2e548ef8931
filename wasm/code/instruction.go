package code

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Shape identifies which immediate fields of an Instruction are meaningful.
type Shape uint8

const (
	// ShapeNone instructions carry no immediate.
	ShapeNone Shape = iota
	// ShapeBlock instructions carry a block type in Arg and resolved branch
	// targets in Imm.
	ShapeBlock
	// ShapeIndex instructions carry an index or label depth in Arg.
	ShapeIndex
	// ShapeConst instructions carry constant bits in Imm.
	ShapeConst
	// ShapeMemarg instructions carry an alignment exponent in Arg and an offset
	// in Imm.
	ShapeMemarg
	// ShapeBranchTable instructions carry a side-table offset (in uint32 units)
	// in Arg and the number of non-default targets in Imm.
	ShapeBranchTable
)

func (s Shape) String() string {
	switch s {
	case ShapeNone:
		return "none"
	case ShapeBlock:
		return "block"
	case ShapeIndex:
		return "index"
	case ShapeConst:
		return "const"
	case ShapeMemarg:
		return "memarg"
	case ShapeBranchTable:
		return "br_table"
	default:
		return fmt.Sprintf("shape(%d)", uint8(s))
	}
}

// InstructionSize is the size in bytes of an encoded Instruction.
const InstructionSize = 16

// Instruction is the decoded form of one instruction. In a Body it is stored
// as InstructionSize little-endian bytes:
//
//	0      opcode
//	1      shape
//	2..3   zero
//	4..7   Arg
//	8..15  Imm
//
// Block targets are instruction indices: a block's Imm is the index of its
// end, a loop's Imm is its own index, an if's Imm holds the index of its else
// (or end, if it has none) in the low half and the index of its end in the
// high half, and an else's Imm is the index of its end.
type Instruction struct {
	Opcode byte
	Shape  Shape
	Arg    uint32
	Imm    uint64
}

func (i Instruction) put(b []byte) {
	_ = b[InstructionSize-1]
	b[0], b[1], b[2], b[3] = i.Opcode, byte(i.Shape), 0, 0
	binary.LittleEndian.PutUint32(b[4:], i.Arg)
	binary.LittleEndian.PutUint64(b[8:], i.Imm)
}

func instructionAt(b []byte) Instruction {
	_ = b[InstructionSize-1]
	return Instruction{
		Opcode: b[0],
		Shape:  Shape(b[1]),
		Arg:    binary.LittleEndian.Uint32(b[4:]),
		Imm:    binary.LittleEndian.Uint64(b[8:]),
	}
}

func (i *Instruction) BlockType() byte {
	return byte(i.Arg)
}

// Continuation returns the index of the instruction a branch to this block
// transfers control to the end of (or, for a loop, the start of).
func (i *Instruction) Continuation() int {
	if i.Opcode == OpIf {
		return int(i.Imm >> 32)
	}
	return int(uint32(i.Imm))
}

// Else returns the index of an if's else instruction, or of its end if it has
// no else.
func (i *Instruction) Else() int {
	return int(uint32(i.Imm))
}

func (i *Instruction) Labelidx() int {
	return int(i.Arg)
}

func (i *Instruction) Funcidx() uint32 {
	return i.Arg
}

func (i *Instruction) Localidx() uint32 {
	return i.Arg
}

func (i *Instruction) Globalidx() uint32 {
	return i.Arg
}

func (i *Instruction) Typeidx() uint32 {
	return i.Arg
}

func (i *Instruction) Memarg() (offset uint32, align uint32) {
	return uint32(i.Imm), i.Arg
}

func (i *Instruction) Offset() uint32 {
	return uint32(i.Imm)
}

func (i *Instruction) I32() int32 {
	return int32(i.Imm)
}

func (i *Instruction) I64() int64 {
	return int64(i.Imm)
}

func (i *Instruction) F32() float32 {
	return math.Float32frombits(uint32(i.Imm))
}

func (i *Instruction) F64() float64 {
	return math.Float64frombits(i.Imm)
}

// OpString returns the mnemonic of the instruction's opcode.
func (i *Instruction) OpString() string {
	if name := opcodeTable[i.Opcode].name; name != "" {
		return name
	}
	return fmt.Sprintf("<illegal 0x%02x>", i.Opcode)
}

func (i *Instruction) memString(op string) string {
	var b strings.Builder
	b.WriteString(op)
	offset, align := i.Memarg()
	if offset != 0 {
		fmt.Fprintf(&b, " offset=%v", offset)
	}
	if align != opcodeTable[i.Opcode].align {
		fmt.Fprintf(&b, " align=%v", 1<<align)
	}
	return b.String()
}

// String renders the instruction in text-format syntax. br_table targets live
// in the body's side table; use Body.String for them.
func (i *Instruction) String() string {
	switch i.Opcode {
	case OpBlock, OpLoop, OpIf:
		return i.OpString() + blockTypeString(i.BlockType())
	case OpBr, OpBrIf:
		return fmt.Sprintf("%s %d", i.OpString(), i.Labelidx())
	case OpBrTable:
		return fmt.Sprintf("br_table [%d targets]", i.Imm)
	case OpCall:
		return fmt.Sprintf("call %d", i.Funcidx())
	case OpCallIndirect:
		return fmt.Sprintf("call_indirect (type %v)", i.Typeidx())
	case OpLocalGet, OpLocalSet, OpLocalTee:
		return fmt.Sprintf("%s %v", i.OpString(), i.Localidx())
	case OpGlobalGet, OpGlobalSet:
		return fmt.Sprintf("%s %v", i.OpString(), i.Globalidx())
	case OpI32Const:
		return fmt.Sprintf("i32.const %d", i.I32())
	case OpI64Const:
		return fmt.Sprintf("i64.const %d", i.I64())
	case OpF32Const:
		return fmt.Sprintf("f32.const %g", i.F32())
	case OpF64Const:
		return fmt.Sprintf("f64.const %g", i.F64())
	}
	if i.Shape == ShapeMemarg {
		return i.memString(i.OpString())
	}
	return i.OpString()
}
