package code

import (
	"encoding/binary"
	"math"

	"github.com/pgavlin/wafer/wasm/leb128"
)

// Assembler builds the wire encoding of an expression. Each method appends
// one instruction and returns the assembler so calls can be chained:
//
//	var a code.Assembler
//	a.LocalGet(0).LocalGet(1).Op(code.OpI32Add).End()
//
// The assembler does not validate what it builds.
type Assembler struct {
	buf []byte
}

// Bytes returns the encoding built so far.
func (a *Assembler) Bytes() []byte {
	return a.buf
}

func (a *Assembler) Len() int {
	return len(a.buf)
}

func (a *Assembler) Reset() {
	a.buf = a.buf[:0]
}

// Raw appends bytes verbatim.
func (a *Assembler) Raw(b ...byte) *Assembler {
	a.buf = append(a.buf, b...)
	return a
}

// Op appends an instruction that has no immediates.
func (a *Assembler) Op(op byte) *Assembler {
	a.buf = append(a.buf, op)
	return a
}

func (a *Assembler) blockOp(op, blockType byte) *Assembler {
	a.buf = append(a.buf, op, blockType)
	return a
}

func (a *Assembler) indexOp(op byte, idx uint32) *Assembler {
	a.buf = leb128.AppendVarUint32(append(a.buf, op), idx)
	return a
}

func blockType(bt []byte) byte {
	if len(bt) != 0 {
		return bt[0]
	}
	return BlockTypeEmpty
}

func (a *Assembler) Unreachable() *Assembler { return a.Op(OpUnreachable) }
func (a *Assembler) Nop() *Assembler         { return a.Op(OpNop) }

// Block appends a block with the given block type, or an empty one.
func (a *Assembler) Block(bt ...byte) *Assembler { return a.blockOp(OpBlock, blockType(bt)) }
func (a *Assembler) Loop(bt ...byte) *Assembler  { return a.blockOp(OpLoop, blockType(bt)) }
func (a *Assembler) If(bt ...byte) *Assembler    { return a.blockOp(OpIf, blockType(bt)) }
func (a *Assembler) Else() *Assembler            { return a.Op(OpElse) }
func (a *Assembler) End() *Assembler             { return a.Op(OpEnd) }

func (a *Assembler) Br(labelidx uint32) *Assembler   { return a.indexOp(OpBr, labelidx) }
func (a *Assembler) BrIf(labelidx uint32) *Assembler { return a.indexOp(OpBrIf, labelidx) }

func (a *Assembler) BrTable(labels []uint32, defaultLabel uint32) *Assembler {
	a.buf = leb128.AppendVarUint32(append(a.buf, OpBrTable), uint32(len(labels)))
	for _, l := range labels {
		a.buf = leb128.AppendVarUint32(a.buf, l)
	}
	a.buf = leb128.AppendVarUint32(a.buf, defaultLabel)
	return a
}

func (a *Assembler) Return() *Assembler             { return a.Op(OpReturn) }
func (a *Assembler) Call(funcidx uint32) *Assembler { return a.indexOp(OpCall, funcidx) }

func (a *Assembler) CallIndirect(typeidx uint32) *Assembler {
	a.indexOp(OpCallIndirect, typeidx)
	a.buf = append(a.buf, 0x00)
	return a
}

func (a *Assembler) Drop() *Assembler   { return a.Op(OpDrop) }
func (a *Assembler) Select() *Assembler { return a.Op(OpSelect) }

func (a *Assembler) LocalGet(localidx uint32) *Assembler   { return a.indexOp(OpLocalGet, localidx) }
func (a *Assembler) LocalSet(localidx uint32) *Assembler   { return a.indexOp(OpLocalSet, localidx) }
func (a *Assembler) LocalTee(localidx uint32) *Assembler   { return a.indexOp(OpLocalTee, localidx) }
func (a *Assembler) GlobalGet(globalidx uint32) *Assembler { return a.indexOp(OpGlobalGet, globalidx) }
func (a *Assembler) GlobalSet(globalidx uint32) *Assembler { return a.indexOp(OpGlobalSet, globalidx) }

// Memarg appends a load or store. align is the base-2 exponent of the
// alignment.
func (a *Assembler) Memarg(op byte, align, offset uint32) *Assembler {
	a.buf = leb128.AppendVarUint32(append(a.buf, op), align)
	a.buf = leb128.AppendVarUint32(a.buf, offset)
	return a
}

// Load appends a load with its natural alignment.
func (a *Assembler) Load(op byte, offset uint32) *Assembler {
	return a.Memarg(op, naturalAlignment(op), offset)
}

// Store appends a store with its natural alignment.
func (a *Assembler) Store(op byte, offset uint32) *Assembler {
	return a.Memarg(op, naturalAlignment(op), offset)
}

func naturalAlignment(op byte) uint32 {
	switch op {
	case OpI32Load8S, OpI32Load8U, OpI64Load8S, OpI64Load8U, OpI32Store8, OpI64Store8:
		return 0
	case OpI32Load16S, OpI32Load16U, OpI64Load16S, OpI64Load16U, OpI32Store16, OpI64Store16:
		return 1
	case OpI64Load, OpF64Load, OpI64Store, OpF64Store:
		return 3
	default:
		return 2
	}
}

func (a *Assembler) MemorySize() *Assembler { return a.Raw(OpMemorySize, 0x00) }
func (a *Assembler) MemoryGrow() *Assembler { return a.Raw(OpMemoryGrow, 0x00) }

func (a *Assembler) I32Const(v int32) *Assembler {
	a.buf = leb128.AppendVarint64(append(a.buf, OpI32Const), int64(v))
	return a
}

func (a *Assembler) I64Const(v int64) *Assembler {
	a.buf = leb128.AppendVarint64(append(a.buf, OpI64Const), v)
	return a
}

func (a *Assembler) F32Const(v float32) *Assembler { return a.F32Bits(math.Float32bits(v)) }
func (a *Assembler) F64Const(v float64) *Assembler { return a.F64Bits(math.Float64bits(v)) }

// F32Bits appends an f32.const with the given bit pattern.
func (a *Assembler) F32Bits(bits uint32) *Assembler {
	a.buf = binary.LittleEndian.AppendUint32(append(a.buf, OpF32Const), bits)
	return a
}

// F64Bits appends an f64.const with the given bit pattern.
func (a *Assembler) F64Bits(bits uint64) *Assembler {
	a.buf = binary.LittleEndian.AppendUint64(append(a.buf, OpF64Const), bits)
	return a
}
