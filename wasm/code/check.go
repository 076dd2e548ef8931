package code

import (
	"github.com/pgavlin/wafer/wasm/diag"
	"github.com/pgavlin/wafer/wasm/types"
)

func checkUnreachable(d *Decoder, ins *Instruction, _ *opcodeInfo) error {
	d.unreachable()
	return nil
}

func checkBlock(d *Decoder, ins *Instruction, _ *opcodeInfo) error {
	if ins.Opcode == OpIf {
		if err := d.popOpds(types.ValueTypeI32); err != nil {
			return err
		}
	}
	out, _ := BlockResults(ins.BlockType())
	if ins.Opcode == OpLoop {
		d.metrics.HasLoops = true
		ins.Imm = uint64(d.pc)
	}
	d.pushBlock(ins.Opcode, d.pc, nil, out)
	return nil
}

func checkElse(d *Decoder, ins *Instruction, _ *opcodeInfo) error {
	if top := &d.blocks[len(d.blocks)-1]; top.opcode != OpIf || top.elsePC >= 0 {
		return diag.ValidationError("else without matching if")
	}
	b, err := d.popBlock()
	if err != nil {
		return err
	}
	d.pushBlock(OpIf, b.pc, b.in, b.out)
	d.blocks[len(d.blocks)-1].elsePC = d.pc
	return nil
}

func checkEnd(d *Decoder, ins *Instruction, _ *opcodeInfo) error {
	if top := &d.blocks[len(d.blocks)-1]; top.opcode == OpIf && top.elsePC < 0 && len(top.out) != 0 {
		return diag.ValidationError("type mismatch")
	}
	b, err := d.popBlock()
	if err != nil {
		return err
	}
	if b.pc < 0 {
		d.done = true
		return nil
	}

	end := uint64(d.pc)
	switch b.opcode {
	case OpBlock:
		d.patch(b.pc, end)
	case OpIf:
		targets := end | end<<32
		if b.elsePC >= 0 {
			targets = uint64(b.elsePC) | end<<32
			d.patch(b.elsePC, end)
		}
		d.patch(b.pc, targets)
	}
	d.pushOpds(b.out...)
	return nil
}

func checkBr(d *Decoder, ins *Instruction, _ *opcodeInfo) error {
	pop, err := d.labelTypes(ins.Arg)
	if err != nil {
		return err
	}
	if err := d.popOpds(pop...); err != nil {
		return err
	}
	d.unreachable()
	return nil
}

func checkBrIf(d *Decoder, ins *Instruction, _ *opcodeInfo) error {
	pop, err := d.labelTypes(ins.Arg)
	if err != nil {
		return err
	}
	if err := d.popOpds(types.ValueTypeI32); err != nil {
		return err
	}
	return d.popPush(pop, pop)
}

func checkBrTable(d *Decoder, ins *Instruction, _ *opcodeInfo) error {
	n := len(d.labels) - 1
	pop, err := d.labelTypes(d.labels[n])
	if err != nil {
		return err
	}
	for _, l := range d.labels[:n] {
		ts, err := d.labelTypes(l)
		if err != nil {
			return err
		}
		if !equalTypes(ts, pop) {
			return diag.ValidationError("type mismatch")
		}
	}
	if err := d.popOpds(types.ValueTypeI32); err != nil {
		return err
	}
	if err := d.popOpds(pop...); err != nil {
		return err
	}
	d.unreachable()
	return nil
}

func checkReturn(d *Decoder, ins *Instruction, _ *opcodeInfo) error {
	if err := d.popOpds(d.blocks[0].out...); err != nil {
		return err
	}
	d.unreachable()
	return nil
}

func checkCall(d *Decoder, ins *Instruction, _ *opcodeInfo) error {
	sig, ok := d.Scope.GetFunctionSignature(ins.Funcidx())
	if !ok {
		return diag.ValidationError("unknown function")
	}
	return d.popPush(sig.ParamTypes, sig.ReturnTypes)
}

func checkCallIndirect(d *Decoder, ins *Instruction, _ *opcodeInfo) error {
	if !d.Scope.HasTable(0) {
		return diag.ValidationError("unknown table")
	}
	sig, ok := d.Scope.GetType(ins.Typeidx())
	if !ok {
		return diag.ValidationError("unknown type")
	}
	if err := d.popOpds(types.ValueTypeI32); err != nil {
		return err
	}
	return d.popPush(sig.ParamTypes, sig.ReturnTypes)
}

func checkDrop(d *Decoder, ins *Instruction, _ *opcodeInfo) error {
	_, err := d.popOpd()
	return err
}

func checkSelect(d *Decoder, ins *Instruction, _ *opcodeInfo) error {
	if err := d.popOpds(types.ValueTypeI32); err != nil {
		return err
	}
	t1, err := d.popOpd()
	if err != nil {
		return err
	}
	t2, err := d.popOpd()
	if err != nil {
		return err
	}
	if t1 != Unknown && t2 != Unknown && t1 != t2 {
		return diag.ValidationError("type mismatch")
	}
	if t1 == Unknown {
		t1 = t2
	}
	d.pushOpds(t1)
	return nil
}

func checkLocalGet(d *Decoder, ins *Instruction, _ *opcodeInfo) error {
	t, ok := d.Scope.GetLocalType(ins.Localidx())
	if !ok {
		return diag.ValidationError("unknown local")
	}
	d.pushOpds(t)
	return nil
}

func checkLocalSet(d *Decoder, ins *Instruction, _ *opcodeInfo) error {
	t, ok := d.Scope.GetLocalType(ins.Localidx())
	if !ok {
		return diag.ValidationError("unknown local")
	}
	return d.popOpds(t)
}

func checkLocalTee(d *Decoder, ins *Instruction, _ *opcodeInfo) error {
	t, ok := d.Scope.GetLocalType(ins.Localidx())
	if !ok {
		return diag.ValidationError("unknown local")
	}
	if err := d.popOpds(t); err != nil {
		return err
	}
	d.pushOpds(t)
	return nil
}

func checkGlobalGet(d *Decoder, ins *Instruction, _ *opcodeInfo) error {
	g, ok := d.Scope.GetGlobalType(ins.Globalidx())
	if !ok {
		return diag.ValidationError("unknown global")
	}
	if d.constant {
		if !d.Scope.IsImportedGlobal(ins.Globalidx()) {
			return diag.ValidationError("unknown global")
		}
		if g.Mutable {
			return ErrConstantRequired
		}
	}
	d.pushOpds(g.Type)
	return nil
}

func checkGlobalSet(d *Decoder, ins *Instruction, _ *opcodeInfo) error {
	g, ok := d.Scope.GetGlobalType(ins.Globalidx())
	if !ok {
		return diag.ValidationError("unknown global")
	}
	if !g.Mutable {
		return diag.ValidationError("global is immutable")
	}
	return d.popOpds(g.Type)
}

func checkMemarg(d *Decoder, ins *Instruction, info *opcodeInfo) error {
	if !d.Scope.HasMemory(0) {
		return diag.ValidationError("unknown memory")
	}
	if ins.Arg > info.align {
		return diag.ValidationError("alignment must not be larger than natural")
	}
	return d.popPush(info.pop, info.push)
}

func checkMemory(d *Decoder, ins *Instruction, info *opcodeInfo) error {
	if !d.Scope.HasMemory(0) {
		return diag.ValidationError("unknown memory")
	}
	return d.popPush(info.pop, info.push)
}
