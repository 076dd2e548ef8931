package code

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgavlin/wafer/wasm/alloc/alloctest"
	"github.com/pgavlin/wafer/wasm/diag"
	"github.com/pgavlin/wafer/wasm/storage"
	"github.com/pgavlin/wafer/wasm/types"
)

type testScope struct {
	locals   []types.ValueType
	globals  []types.GlobalVar
	imported int
	funcs    []types.FunctionSig
	sigs     []types.FunctionSig
	table    bool
	memory   bool
}

func (s *testScope) GetLocalType(i uint32) (types.ValueType, bool) {
	if int(i) >= len(s.locals) {
		return 0, false
	}
	return s.locals[i], true
}

func (s *testScope) GetGlobalType(i uint32) (types.GlobalVar, bool) {
	if int(i) >= len(s.globals) {
		return types.GlobalVar{}, false
	}
	return s.globals[i], true
}

func (s *testScope) IsImportedGlobal(i uint32) bool {
	return int(i) < s.imported
}

func (s *testScope) GetFunctionSignature(i uint32) (types.FunctionSig, bool) {
	if int(i) >= len(s.funcs) {
		return types.FunctionSig{}, false
	}
	return s.funcs[i], true
}

func (s *testScope) GetType(i uint32) (types.FunctionSig, bool) {
	if int(i) >= len(s.sigs) {
		return types.FunctionSig{}, false
	}
	return s.sigs[i], true
}

func (s *testScope) HasTable(i uint32) bool  { return i == 0 && s.table }
func (s *testScope) HasMemory(i uint32) bool { return i == 0 && s.memory }

func fullScope() *testScope {
	sig := types.FunctionSig{ParamTypes: []types.ValueType{types.ValueTypeI32}, ReturnTypes: []types.ValueType{types.ValueTypeI32}}
	return &testScope{
		locals: []types.ValueType{types.ValueTypeI32, types.ValueTypeI32, types.ValueTypeI64, types.ValueTypeF32, types.ValueTypeF64},
		globals: []types.GlobalVar{
			{Type: types.ValueTypeI32},
			{Type: types.ValueTypeI32, Mutable: true},
			{Type: types.ValueTypeI64},
		},
		imported: 2,
		funcs:    []types.FunctionSig{sig},
		sigs:     []types.FunctionSig{sig},
		table:    true,
		memory:   true,
	}
}

var resultI32 = []types.ValueType{types.ValueTypeI32}

func asm() *Assembler {
	return &Assembler{}
}

func requireClass(t *testing.T, err error, class diag.Class) *diag.Error {
	t.Helper()
	require.Error(t, err)
	var derr *diag.Error
	require.True(t, errors.As(err, &derr), "%v is not a *diag.Error", err)
	assert.Equal(t, class, derr.Class, "%v", err)
	return derr
}

func TestDecodeAdd(t *testing.T) {
	expr := asm().LocalGet(0).LocalGet(1).Op(OpI32Add).End().Bytes()
	body, err := Decode(expr, fullScope(), resultI32)
	require.NoError(t, err)

	require.Equal(t, 4, body.Len())
	assert.Len(t, body.Code, 4*InstructionSize)
	assert.Equal(t, Instruction{Opcode: OpLocalGet, Shape: ShapeIndex, Arg: 1}, body.Instruction(1))
	assert.Equal(t, Instruction{Opcode: OpI32Add}, body.Instruction(2))
	assert.Equal(t, Instruction{Opcode: OpEnd}, body.Instruction(3))
	assert.Equal(t, 2, body.Metrics.MaxStackDepth)
	assert.Equal(t, 4, body.Metrics.InstructionCount)
	assert.False(t, body.Metrics.HasLoops)
}

func TestDecodeLayout(t *testing.T) {
	expr := asm().I32Const(-1).Drop().End().Bytes()
	body, err := Decode(expr, fullScope(), nil)
	require.NoError(t, err)

	assert.Equal(t, []byte{
		OpI32Const, byte(ShapeConst), 0, 0, 0, 0, 0, 0, 0xff, 0xff, 0xff, 0xff, 0, 0, 0, 0,
	}, body.Code[:InstructionSize])
	ins := body.Instruction(0)
	assert.Equal(t, int32(-1), ins.I32())
}

func TestDecodeTargets(t *testing.T) {
	t.Run("block", func(t *testing.T) {
		body, err := Decode(asm().Block().Nop().End().End().Bytes(), fullScope(), nil)
		require.NoError(t, err)
		b := body.Instruction(0)
		assert.Equal(t, ShapeBlock, b.Shape)
		assert.Equal(t, byte(BlockTypeEmpty), b.BlockType())
		assert.Equal(t, 2, b.Continuation())
	})

	t.Run("loop", func(t *testing.T) {
		body, err := Decode(asm().Nop().Loop().Br(0).End().End().Bytes(), fullScope(), nil)
		require.NoError(t, err)
		l := body.Instruction(1)
		assert.Equal(t, 1, l.Continuation())
		assert.True(t, body.Metrics.HasLoops)
	})

	t.Run("if else", func(t *testing.T) {
		expr := asm().LocalGet(0).If(BlockTypeI32).I32Const(1).Else().I32Const(2).End().End().Bytes()
		body, err := Decode(expr, fullScope(), resultI32)
		require.NoError(t, err)

		i := body.Instruction(1)
		assert.Equal(t, 3, i.Else())
		assert.Equal(t, 5, i.Continuation())
		e := body.Instruction(3)
		assert.Equal(t, 5, e.Continuation())
		assert.Equal(t, 2, body.Metrics.MaxNesting)
	})

	t.Run("if without else", func(t *testing.T) {
		body, err := Decode(asm().LocalGet(0).If().Nop().End().End().Bytes(), fullScope(), nil)
		require.NoError(t, err)
		i := body.Instruction(1)
		assert.Equal(t, 3, i.Else())
		assert.Equal(t, 3, i.Continuation())
	})

	t.Run("br_table", func(t *testing.T) {
		expr := asm().Block().Block().LocalGet(0).BrTable([]uint32{0, 1}, 1).End().End().End().Bytes()
		body, err := Decode(expr, fullScope(), nil)
		require.NoError(t, err)

		bt := body.Instruction(3)
		assert.Equal(t, ShapeBranchTable, bt.Shape)
		assert.Equal(t, uint64(2), bt.Imm)
		assert.Equal(t, []uint32{0, 1, 1}, body.BranchTable(bt))
		assert.Len(t, body.Table, 12)
	})
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		name    string
		expr    []byte
		results []types.ValueType
		scope   *testScope
		class   diag.Class
		cause   error
	}{
		{name: "empty stack", expr: asm().End().Bytes(), results: resultI32, class: diag.Invalid},
		{name: "extra value", expr: asm().I32Const(1).End().Bytes(), class: diag.Invalid},
		{name: "type mismatch", expr: asm().LocalGet(2).End().Bytes(), results: resultI32, class: diag.Invalid},
		{name: "illegal opcode", expr: []byte{0xc0, OpEnd}, class: diag.Malformed},
		{name: "saturating prefix", expr: []byte{0xfc, 0x00, OpEnd}, class: diag.Malformed},
		{name: "missing end", expr: asm().Nop().Bytes(), class: diag.Malformed, cause: ErrUnexpectedEnd},
		{name: "unknown local", expr: asm().LocalGet(9).Drop().End().Bytes(), class: diag.Invalid},
		{name: "unknown global", expr: asm().GlobalGet(9).Drop().End().Bytes(), class: diag.Invalid},
		{name: "immutable global", expr: asm().I32Const(0).GlobalSet(0).End().Bytes(), class: diag.Invalid},
		{name: "unknown function", expr: asm().Call(3).End().Bytes(), class: diag.Invalid},
		{name: "unknown type", expr: asm().I32Const(0).I32Const(0).CallIndirect(7).Drop().End().Bytes(), class: diag.Invalid},
		{name: "unknown label", expr: asm().Br(1).End().Bytes(), class: diag.Invalid},
		{name: "if result without else", expr: asm().LocalGet(0).If(BlockTypeI32).I32Const(1).End().Drop().End().Bytes(), class: diag.Invalid},
		{name: "else without if", expr: asm().Block().Else().End().End().Bytes(), class: diag.Invalid},
		{name: "select mismatch", expr: asm().I32Const(0).I64Const(0).I32Const(0).Select().Drop().End().Bytes(), class: diag.Invalid},
		{name: "br_table arity", expr: asm().Block(BlockTypeI32).Block().I32Const(0).BrTable([]uint32{0}, 1).End().I32Const(0).End().Drop().End().Bytes(), class: diag.Invalid},
		{name: "alignment", expr: asm().I32Const(0).Memarg(OpI32Load, 3, 0).Drop().End().Bytes(), class: diag.Invalid},
		{name: "memory missing", expr: asm().MemorySize().Drop().End().Bytes(), scope: &testScope{}, class: diag.Invalid},
		{name: "memory reserved byte", expr: []byte{OpMemorySize, 0x01, OpDrop, OpEnd}, scope: &testScope{}, class: diag.Malformed, cause: ErrZeroByte},
		{name: "call_indirect reserved byte", expr: []byte{OpI32Const, 0, OpCallIndirect, 0, 1, OpEnd}, class: diag.Malformed, cause: ErrZeroByte},
		{name: "table missing", expr: asm().I32Const(0).I32Const(0).CallIndirect(0).Drop().End().Bytes(), scope: &testScope{sigs: fullScope().sigs}, class: diag.Invalid},
		{name: "bad block type", expr: []byte{OpBlock, 0x70, OpEnd, OpEnd}, class: diag.Malformed},
		{name: "multi-value block type", expr: []byte{OpBlock, 0x00, OpEnd, OpEnd}, class: diag.Malformed},
		{name: "truncated f64", expr: []byte{OpF64Const, 0, 0, 0}, class: diag.Malformed},
		{name: "overlong index", expr: []byte{OpLocalGet, 0x80, 0x80, 0x80, 0x80, 0x80, 0x00, OpDrop, OpEnd}, class: diag.Malformed},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			scope := c.scope
			if scope == nil {
				scope = fullScope()
			}
			_, err := Decode(c.expr, scope, c.results)
			derr := requireClass(t, err, c.class)
			if c.cause != nil {
				assert.ErrorIs(t, err, c.cause)
			}
			f, ok := derr.Innermost()
			require.True(t, ok)
			assert.Contains(t, []diag.Kind{diag.KindInstruction, diag.KindImmediate, diag.KindExpr}, f.Kind)
		})
	}
}

func TestDecodeErrorLocation(t *testing.T) {
	expr := asm().Nop().Nop().End().Bytes()
	_, err := Decode(expr, fullScope(), resultI32)
	derr := requireClass(t, err, diag.Invalid)
	assert.Equal(t, 2, derr.Offset)

	f, ok := derr.Find(diag.KindInstruction)
	require.True(t, ok)
	assert.Equal(t, "end", f.Label)
	assert.Equal(t, 2, f.Offset)

	_, ok = derr.Find(diag.KindExpr)
	assert.True(t, ok)
}

func TestDecodeMalformedFirst(t *testing.T) {
	// local.set on an empty stack with an oversized index.
	_, err := Decode([]byte{OpLocalSet, 0x80, 0x80, 0x80, 0x80, 0x10, OpEnd}, fullScope(), nil)
	requireClass(t, err, diag.Malformed)
}

func TestDecodeUnreachable(t *testing.T) {
	cases := map[string][]byte{
		"polymorphic add":    asm().Unreachable().Op(OpI32Add).End().Bytes(),
		"br then add":        asm().Block(BlockTypeI32).I32Const(1).Br(0).Op(OpI32Add).End().End().Bytes(),
		"return then select": asm().I32Const(0).Return().Select().End().Bytes(),
		"br_table":           asm().Block(BlockTypeI32).I32Const(0).I32Const(0).BrTable(nil, 0).End().End().Bytes(),
	}
	for name, expr := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(expr, fullScope(), resultI32)
			assert.NoError(t, err)
		})
	}
}

func TestDecodeConst(t *testing.T) {
	cases := []struct {
		name     string
		expr     []byte
		expected types.ValueType
		class    diag.Class
	}{
		{name: "i32", expr: asm().I32Const(5).End().Bytes(), expected: types.ValueTypeI32},
		{name: "f64", expr: asm().F64Const(1.5).End().Bytes(), expected: types.ValueTypeF64},
		{name: "imported global", expr: asm().GlobalGet(0).End().Bytes(), expected: types.ValueTypeI32},
		{name: "mutable global", expr: asm().GlobalGet(1).End().Bytes(), expected: types.ValueTypeI32, class: diag.Invalid},
		{name: "defined global", expr: asm().GlobalGet(2).End().Bytes(), expected: types.ValueTypeI64, class: diag.Invalid},
		{name: "non-constant", expr: asm().I32Const(1).I32Const(2).Op(OpI32Add).End().Bytes(), expected: types.ValueTypeI32, class: diag.Invalid},
		{name: "empty", expr: asm().End().Bytes(), expected: types.ValueTypeI32, class: diag.Invalid},
		{name: "two values", expr: asm().I32Const(1).I32Const(2).End().Bytes(), expected: types.ValueTypeI32, class: diag.Invalid},
		{name: "wrong type", expr: asm().I64Const(1).End().Bytes(), expected: types.ValueTypeI32, class: diag.Invalid},
		{name: "truncated", expr: []byte{OpI32Const}, expected: types.ValueTypeI32, class: diag.Malformed},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d := Decoder{Storage: storage.NewBuffer(c.expr), Scope: fullScope()}
			body, err := d.DecodeConst(c.expected)
			if c.class == 0 {
				require.NoError(t, err)
				assert.Equal(t, 2, body.Len())
				return
			}
			requireClass(t, err, c.class)
		})
	}

	t.Run("constant required", func(t *testing.T) {
		d := Decoder{Storage: storage.NewBuffer(asm().Nop().End().Bytes()), Scope: fullScope()}
		_, err := d.DecodeConst(types.ValueTypeI32)
		assert.ErrorIs(t, err, ErrConstantRequired)
	})
}

func TestDecodeWindow(t *testing.T) {
	// The body's window ends before its final end.
	expr := asm().Nop().End().Bytes()
	var w storage.Limited
	w.Reset(storage.NewBuffer(expr), 1)

	d := Decoder{Storage: &w, Scope: fullScope()}
	_, err := d.Decode(nil)
	requireClass(t, err, diag.Malformed)
	assert.ErrorIs(t, err, ErrUnexpectedEnd)
}

func TestDecodeDepth(t *testing.T) {
	d := Decoder{
		Storage: storage.NewBuffer(asm().Nop().End().Bytes()),
		Context: diag.NewStack(1),
		Scope:   fullScope(),
	}
	_, err := d.Decode(nil)
	requireClass(t, err, diag.Invalid)

	var depth *diag.DepthError
	require.True(t, errors.As(err, &depth))
	assert.Equal(t, diag.KindInstruction, depth.Frame.Kind)
	assert.Equal(t, 0, d.Context.Depth())
}

func TestDecoderReuse(t *testing.T) {
	d := Decoder{Context: diag.NewStack(4), Scope: fullScope()}
	for i := 0; i < 3; i++ {
		d.Storage = storage.NewBuffer(asm().I32Const(int32(i)).End().Bytes())
		body, err := d.Decode(resultI32)
		require.NoError(t, err)
		ins := body.Instruction(0)
		assert.Equal(t, int32(i), ins.I32())
		assert.Equal(t, 0, d.Context.Depth())
	}
}

// kitchenSink exercises every immediate shape, including non-canonical
// encodings that re-encode to shorter forms.
func kitchenSink() []byte {
	a := asm()
	a.Block(BlockTypeI32)
	a.Loop()
	a.LocalGet(0).If()
	a.Br(1)
	a.Else()
	a.Nop()
	a.End()
	a.End()
	a.LocalGet(0).Call(0).Drop()
	a.Raw(OpLocalGet, 0x81, 0x80, 0x00) // local.get 1, padded
	a.Drop()
	a.I32Const(0).Memarg(OpI64Load, 2, 16).Drop()
	a.I32Const(0).F32Const(-0.5).Store(OpF32Store, 4)
	a.I32Const(0).F64Bits(0x7ff8000000000001).Memarg(OpF64Store, 0, 0)
	a.I64Const(-1 << 40).Drop()
	a.I32Const(0).I32Const(1).CallIndirect(0).Drop()
	a.MemorySize().MemoryGrow().Drop()
	a.I32Const(7).LocalTee(0).Block().LocalGet(1).BrTable([]uint32{0, 0}, 0).End()
	a.End()
	a.End()
	return a.Bytes()
}

func TestEncodeIdempotent(t *testing.T) {
	scope := fullScope()
	body, err := Decode(kitchenSink(), scope, resultI32)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, body.Encode(&buf))
	assert.Less(t, buf.Len(), len(kitchenSink()))

	again, err := Decode(buf.Bytes(), scope, resultI32)
	require.NoError(t, err)
	assert.Equal(t, body.Code, again.Code)
	assert.Equal(t, body.Table, again.Table)
	assert.Equal(t, body.Metrics, again.Metrics)

	var buf2 bytes.Buffer
	require.NoError(t, again.Encode(&buf2))
	assert.Equal(t, buf.Bytes(), buf2.Bytes())
}

func TestDecodeAllocationFailure(t *testing.T) {
	expr := kitchenSink()

	for failAt := 1; ; failAt++ {
		tracker := alloctest.NewTracker(failAt)
		d := Decoder{Storage: storage.NewBuffer(expr), Allocator: tracker, Scope: fullScope()}
		body, err := d.Decode(resultI32)
		if err == nil {
			assert.Greater(t, failAt, 1)
			body.Release()
			assert.Equal(t, 0, tracker.Outstanding())
			assert.Empty(t, tracker.Faults())
			return
		}

		requireClass(t, err, diag.AllocationFailure)
		assert.ErrorIs(t, err, diag.ErrAllocation)
		assert.Equal(t, 0, tracker.Outstanding(), "fail at %d", failAt)
		assert.Empty(t, tracker.Faults())
		require.Less(t, failAt, 64)
	}
}

func TestBodyString(t *testing.T) {
	body, err := Decode(asm().Block().LocalGet(0).BrTable([]uint32{0}, 0).End().End().Bytes(), fullScope(), nil)
	require.NoError(t, err)
	s := body.String()
	assert.Contains(t, s, "block")
	assert.Contains(t, s, "  local.get 0")
	assert.Contains(t, s, "br_table 0 0")
}
