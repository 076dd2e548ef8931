package code

import (
	"encoding/binary"

	"github.com/pgavlin/wafer/wasm/diag"
	"github.com/pgavlin/wafer/wasm/leb128"
)

func readIndex(d *Decoder, ins *Instruction) error {
	offset := d.Storage.Offset()
	v, err := leb128.ReadVarUint32(d.Storage)
	if err != nil {
		return d.readError(offset, err)
	}
	ins.Arg = v
	return nil
}

func readZeroByte(d *Decoder, ins *Instruction) error {
	offset := d.Storage.Offset()
	b, err := d.Storage.ReadByte()
	if err != nil {
		return d.readError(offset, err)
	}
	if b != 0 {
		return d.fail(diag.Malformed, offset, ErrZeroByte)
	}
	return nil
}

func readCallIndirect(d *Decoder, ins *Instruction) error {
	if err := readIndex(d, ins); err != nil {
		return err
	}
	return readZeroByte(d, ins)
}

func readBlockType(d *Decoder, ins *Instruction) error {
	offset := d.Storage.Offset()
	if err := d.enter(diag.At(diag.KindImmediate, "block type", offset)); err != nil {
		return err
	}
	b, err := d.Storage.ReadByte()
	if err != nil {
		return d.readError(offset, err)
	}
	if _, ok := BlockResults(b); !ok {
		return d.fail(diag.Malformed, offset, &diag.InvalidTokenError{Token: "block type", Byte: b})
	}
	ins.Arg = uint32(b)
	d.Context.Pop()
	return nil
}

// readBranchTable reads the targets followed by the default into d.labels.
func readBranchTable(d *Decoder, ins *Instruction) error {
	offset := d.Storage.Offset()
	if err := d.enter(diag.At(diag.KindImmediate, "br_table", offset)); err != nil {
		return err
	}
	n, err := leb128.ReadVarUint32(d.Storage)
	if err != nil {
		return d.readError(offset, err)
	}

	d.labels = d.labels[:0]
	for i := uint64(0); i <= uint64(n); i++ {
		at := d.Storage.Offset()
		l, err := leb128.ReadVarUint32(d.Storage)
		if err != nil {
			return d.readError(at, err)
		}
		d.labels = append(d.labels, l)
	}
	d.Context.Pop()
	return nil
}

func readMemarg(d *Decoder, ins *Instruction) error {
	offset := d.Storage.Offset()
	if err := d.enter(diag.At(diag.KindImmediate, "memarg", offset)); err != nil {
		return err
	}
	align, err := leb128.ReadVarUint32(d.Storage)
	if err != nil {
		return d.readError(offset, err)
	}
	at := d.Storage.Offset()
	off, err := leb128.ReadVarUint32(d.Storage)
	if err != nil {
		return d.readError(at, err)
	}
	ins.Arg, ins.Imm = align, uint64(off)
	d.Context.Pop()
	return nil
}

func readI32Const(d *Decoder, ins *Instruction) error {
	offset := d.Storage.Offset()
	v, err := leb128.ReadVarint32(d.Storage)
	if err != nil {
		return d.readError(offset, err)
	}
	ins.Imm = uint64(uint32(v))
	return nil
}

func readI64Const(d *Decoder, ins *Instruction) error {
	offset := d.Storage.Offset()
	v, err := leb128.ReadVarint64(d.Storage)
	if err != nil {
		return d.readError(offset, err)
	}
	ins.Imm = uint64(v)
	return nil
}

func readF32Const(d *Decoder, ins *Instruction) error {
	offset := d.Storage.Offset()
	var buf [4]byte
	if err := d.Storage.ReadFull(buf[:]); err != nil {
		return d.readError(offset, err)
	}
	ins.Imm = uint64(binary.LittleEndian.Uint32(buf[:]))
	return nil
}

func readF64Const(d *Decoder, ins *Instruction) error {
	offset := d.Storage.Offset()
	var buf [8]byte
	if err := d.Storage.ReadFull(buf[:]); err != nil {
		return d.readError(offset, err)
	}
	ins.Imm = binary.LittleEndian.Uint64(buf[:])
	return nil
}
