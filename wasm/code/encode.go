package code

import "io"

// Encode writes the canonical wire encoding of the body to w.
func (b *Body) Encode(w io.Writer) error {
	var a Assembler
	b.AppendTo(&a)
	_, err := w.Write(a.Bytes())
	return err
}

// AppendTo appends the canonical wire encoding of the body to a.
func (b *Body) AppendTo(a *Assembler) {
	for pc := 0; pc < b.Len(); pc++ {
		ins := b.Instruction(pc)
		switch ins.Shape {
		case ShapeBlock:
			a.blockOp(ins.Opcode, ins.BlockType())
		case ShapeIndex:
			a.indexOp(ins.Opcode, ins.Arg)
			if ins.Opcode == OpCallIndirect {
				a.buf = append(a.buf, 0x00)
			}
		case ShapeConst:
			switch ins.Opcode {
			case OpI32Const:
				a.I32Const(ins.I32())
			case OpI64Const:
				a.I64Const(ins.I64())
			case OpF32Const:
				a.F32Bits(uint32(ins.Imm))
			case OpF64Const:
				a.F64Bits(ins.Imm)
			}
		case ShapeMemarg:
			a.Memarg(ins.Opcode, ins.Arg, uint32(ins.Imm))
		case ShapeBranchTable:
			labels := b.BranchTable(ins)
			a.BrTable(labels[:len(labels)-1], labels[len(labels)-1])
		default:
			switch ins.Opcode {
			case OpMemorySize:
				a.MemorySize()
			case OpMemoryGrow:
				a.MemoryGrow()
			default:
				a.Op(ins.Opcode)
			}
		}
	}
}
