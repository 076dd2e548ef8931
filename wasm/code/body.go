package code

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/pgavlin/wafer/wasm/alloc"
)

// Body is a decoded expression.
type Body struct {
	// Code holds InstructionSize bytes per instruction.
	Code []byte
	// Table holds the br_table side table as little-endian uint32s.
	Table   []byte
	Metrics Metrics

	allocator alloc.Allocator
}

// Len returns the number of instructions in the body.
func (b *Body) Len() int {
	return len(b.Code) / InstructionSize
}

// Instruction returns the instruction at pc.
func (b *Body) Instruction(pc int) Instruction {
	return instructionAt(b.Code[pc*InstructionSize:])
}

// Instructions unpacks the whole body.
func (b *Body) Instructions() []Instruction {
	instrs := make([]Instruction, b.Len())
	for pc := range instrs {
		instrs[pc] = b.Instruction(pc)
	}
	return instrs
}

// BranchTable returns the label depths of a br_table instruction. The last
// entry is the default.
func (b *Body) BranchTable(ins Instruction) []uint32 {
	if ins.Shape != ShapeBranchTable {
		return nil
	}
	start, n := int(ins.Arg), int(ins.Imm)+1
	labels := make([]uint32, n)
	for i := range labels {
		labels[i] = binary.LittleEndian.Uint32(b.Table[4*(start+i):])
	}
	return labels
}

// Release returns the body's buffers to the allocator that produced them.
func (b *Body) Release() {
	if b.allocator != nil {
		if b.Code != nil {
			b.allocator.Deallocate(b.Code)
		}
		if b.Table != nil {
			b.allocator.Deallocate(b.Table)
		}
	}
	b.Code, b.Table = nil, nil
}

// String renders one instruction per line, indented by nesting depth.
func (b *Body) String() string {
	var sb strings.Builder
	depth := 0
	for pc := 0; pc < b.Len(); pc++ {
		ins := b.Instruction(pc)
		switch ins.Opcode {
		case OpEnd, OpElse:
			if depth > 0 {
				depth--
			}
		}
		fmt.Fprintf(&sb, "%4d: %s", pc, strings.Repeat("  ", depth))
		if ins.Shape == ShapeBranchTable {
			sb.WriteString("br_table")
			for _, l := range b.BranchTable(ins) {
				fmt.Fprintf(&sb, " %d", l)
			}
		} else {
			sb.WriteString(ins.String())
		}
		sb.WriteByte('\n')
		switch ins.Opcode {
		case OpBlock, OpLoop, OpIf, OpElse:
			depth++
		}
	}
	return sb.String()
}
