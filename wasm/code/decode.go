package code

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/pgavlin/wafer/wasm/alloc"
	"github.com/pgavlin/wafer/wasm/diag"
	"github.com/pgavlin/wafer/wasm/storage"
	"github.com/pgavlin/wafer/wasm/types"
)

var (
	// ErrUnexpectedEnd is the cause reported when an expression's input ends
	// before its final end instruction.
	ErrUnexpectedEnd = errors.New("unexpected end")
	// ErrZeroByte is the cause reported when a reserved immediate byte is not
	// zero.
	ErrZeroByte = errors.New("zero byte expected")
	// ErrConstantRequired is the cause reported when a constant expression
	// contains a non-constant instruction.
	ErrConstantRequired = diag.ValidationError("constant expression required")
)

// IllegalOpcodeError is the cause reported for a byte that is not a 1.0
// opcode.
type IllegalOpcodeError struct {
	Opcode byte
}

func (e *IllegalOpcodeError) Error() string {
	return fmt.Sprintf("illegal opcode 0x%02x", e.Opcode)
}

type Metrics struct {
	MaxNesting       int  // The maximum block nesting for the function.
	MaxStackDepth    int  // The maximum stack depth for the function.
	LabelCount       int  // The number of labels in the function.
	HasLoops         bool // True if this function has loops
	InstructionCount int  // The number of decoded instructions.
}

type block struct {
	opcode byte
	pc     int // -1 for the function frame
	elsePC int // -1 until an else is seen

	in, out     []types.ValueType
	stackHeight int
	unreachable bool
}

// A Decoder validates expressions and re-encodes them into their decoded
// form. A Decoder may be reused for many expressions; its working state is
// retained between calls.
type Decoder struct {
	// Storage supplies the encoded expression. For function bodies it is
	// usually a storage.Limited window ending at the body's end.
	Storage storage.Storage
	// Context receives an instruction frame for each instruction decoded. Frames
	// pushed by a call are popped before it returns.
	Context *diag.Stack
	// Allocator backs the decoded instruction buffer and branch table.
	Allocator alloc.Allocator
	// Scope resolves indices.
	Scope Scope

	blocks  []block
	stack   []types.ValueType
	labels  []uint32
	metrics Metrics

	code, table alloc.Buffer

	constant bool
	done     bool
	pc       int
}

// Decode decodes and validates a single function body expression that must
// produce results.
func Decode(body []byte, scope Scope, results []types.ValueType) (Body, error) {
	d := Decoder{Storage: storage.NewBuffer(body), Scope: scope}
	return d.Decode(results)
}

// Decode decodes one function body expression producing results from
// d.Storage.
func (d *Decoder) Decode(results []types.ValueType) (Body, error) {
	d.constant = false
	return d.decode(results)
}

// DecodeConst decodes one constant initializer expression producing a single
// value of type expected.
func (d *Decoder) DecodeConst(expected types.ValueType) (Body, error) {
	d.constant = true
	var results [1]types.ValueType
	results[0] = expected
	return d.decode(results[:])
}

func (d *Decoder) fail(class diag.Class, offset int, err error) error {
	return diag.NewError(class, offset, err, d.Context)
}

// readError classifies an input failure. Every read failure is malformed.
func (d *Decoder) readError(offset int, err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return d.fail(diag.Malformed, offset, err)
}

func (d *Decoder) enter(f diag.Frame) error {
	if !d.Context.Push(f) {
		return d.fail(diag.Invalid, f.Offset, &diag.DepthError{Frame: f})
	}
	return nil
}

func (d *Decoder) reset(results []types.ValueType) {
	if d.Context == nil {
		d.Context = diag.NewStack(8)
	}
	if d.Allocator == nil {
		d.Allocator = alloc.Heap{}
	}
	if d.Scope == nil {
		d.Scope = UnknownScope
	}
	d.blocks, d.stack, d.labels = d.blocks[:0], d.stack[:0], d.labels[:0]
	d.metrics = Metrics{}
	d.code = alloc.NewBuffer(d.Allocator, 8)
	d.table = alloc.NewBuffer(d.Allocator, 4)
	d.done, d.pc = false, 0

	d.pushBlock(0, -1, nil, results)
}

func (d *Decoder) decode(results []types.ValueType) (body Body, err error) {
	d.reset(results)

	depth := d.Context.Depth()
	defer d.Context.Truncate(depth)
	defer func() {
		if err != nil {
			d.code.Release()
			d.table.Release()
		}
	}()

	if err := d.enter(diag.At(diag.KindExpr, "", d.Storage.Offset())); err != nil {
		return Body{}, err
	}
	exprDepth := d.Context.Depth()

	for !d.done {
		offset := d.Storage.Offset()
		opcode, err := d.Storage.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, storage.ErrLimit) {
				err = ErrUnexpectedEnd
			}
			return Body{}, d.fail(diag.Malformed, offset, err)
		}

		info := &opcodeTable[opcode]
		if info.name == "" {
			return Body{}, d.fail(diag.Malformed, offset, &IllegalOpcodeError{Opcode: opcode})
		}
		if err := d.enter(diag.At(diag.KindInstruction, info.name, offset)); err != nil {
			return Body{}, err
		}

		ins := Instruction{Opcode: opcode, Shape: info.shape}
		if info.read != nil {
			if err := info.read(d, &ins); err != nil {
				return Body{}, err
			}
		}

		if d.constant && !info.constant {
			return Body{}, d.fail(diag.Invalid, offset, ErrConstantRequired)
		}
		if info.check != nil {
			err = info.check(d, &ins, info)
		} else {
			err = d.popPush(info.pop, info.push)
		}
		if err != nil {
			var derr *diag.Error
			if errors.As(err, &derr) {
				return Body{}, err
			}
			return Body{}, d.fail(diag.Invalid, offset, err)
		}

		if err := d.emit(&ins, offset); err != nil {
			return Body{}, err
		}
		d.Context.Truncate(exprDepth)
	}

	d.metrics.InstructionCount = d.pc
	return Body{
		Code:      d.code.Detach(),
		Table:     d.table.Detach(),
		Metrics:   d.metrics,
		allocator: d.Allocator,
	}, nil
}

func (d *Decoder) emit(ins *Instruction, offset int) error {
	if ins.Shape == ShapeBranchTable {
		n := len(d.labels)
		b, err := d.table.Extend(4 * n)
		if err != nil {
			return d.fail(diag.AllocationFailure, offset, err)
		}
		for i, l := range d.labels {
			binary.LittleEndian.PutUint32(b[4*i:], l)
		}
		ins.Arg = uint32(d.table.Len()/4 - n)
		ins.Imm = uint64(n - 1)
	}

	b, err := d.code.Extend(InstructionSize)
	if err != nil {
		return d.fail(diag.AllocationFailure, offset, err)
	}
	ins.put(b)
	d.pc++
	return nil
}

// patch overwrites the Imm field of the already emitted instruction at pc.
func (d *Decoder) patch(pc int, imm uint64) {
	binary.LittleEndian.PutUint64(d.code.Bytes()[pc*InstructionSize+8:], imm)
}

func (d *Decoder) popOpd() (types.ValueType, error) {
	b := &d.blocks[len(d.blocks)-1]
	if b.unreachable && len(d.stack) == b.stackHeight {
		return Unknown, nil
	}
	if len(d.stack) == b.stackHeight {
		return 0, diag.ValidationError("type mismatch")
	}
	t := d.stack[len(d.stack)-1]
	d.stack = d.stack[:len(d.stack)-1]
	return t, nil
}

func (d *Decoder) popOpds(want ...types.ValueType) error {
	for i := len(want) - 1; i >= 0; i-- {
		expected := want[i]
		actual, err := d.popOpd()
		if err != nil {
			return err
		}
		if actual != Unknown && expected != Unknown && actual != expected {
			return diag.ValidationError("type mismatch")
		}
	}
	return nil
}

func (d *Decoder) pushOpds(ts ...types.ValueType) {
	d.stack = append(d.stack, ts...)

	if len(d.stack) > d.metrics.MaxStackDepth {
		d.metrics.MaxStackDepth = len(d.stack)
	}
}

func (d *Decoder) popPush(pop, push []types.ValueType) error {
	if err := d.popOpds(pop...); err != nil {
		return err
	}
	d.pushOpds(push...)
	return nil
}

func (d *Decoder) pushBlock(opcode byte, pc int, in, out []types.ValueType) {
	d.blocks = append(d.blocks, block{
		opcode:      opcode,
		pc:          pc,
		elsePC:      -1,
		in:          in,
		out:         out,
		stackHeight: len(d.stack),
	})
	d.pushOpds(in...)

	if len(d.blocks) > d.metrics.MaxNesting {
		d.metrics.MaxNesting = len(d.blocks)
	}
	d.metrics.LabelCount++
}

func (d *Decoder) popBlock() (block, error) {
	b := d.blocks[len(d.blocks)-1]
	if err := d.popOpds(b.out...); err != nil {
		return block{}, err
	}
	if len(d.stack) != b.stackHeight {
		return block{}, diag.ValidationError("type mismatch")
	}
	d.blocks = d.blocks[:len(d.blocks)-1]
	return b, nil
}

func (d *Decoder) labelTypes(n uint32) ([]types.ValueType, error) {
	if uint64(n) >= uint64(len(d.blocks)) {
		return nil, diag.ValidationError("unknown label")
	}

	b := &d.blocks[len(d.blocks)-1-int(n)]
	if b.opcode == OpLoop {
		return b.in, nil
	}
	return b.out, nil
}

func (d *Decoder) unreachable() {
	b := &d.blocks[len(d.blocks)-1]
	d.stack = d.stack[:b.stackHeight]
	b.unreachable = true
}

func equalTypes(a, b []types.ValueType) bool {
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
