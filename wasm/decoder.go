package wasm

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/willf/bitset"
	"go.uber.org/zap"

	"github.com/pgavlin/wafer/wasm/alloc"
	"github.com/pgavlin/wafer/wasm/code"
	"github.com/pgavlin/wafer/wasm/diag"
	"github.com/pgavlin/wafer/wasm/leb128"
	"github.com/pgavlin/wafer/wasm/storage"
	"github.com/pgavlin/wafer/wasm/types"
)

// payload is a section that knows how to read its own contents.
type payload interface {
	Section
	readPayload(d *decoder) error
}

type decoder struct {
	st  storage.Storage
	win storage.Limited
	r   storage.Storage

	ctx diag.Stack
	a   alloc.Allocator
	v   CustomSectionVisitor
	cfg *Config
	log *zap.Logger

	m     *Module
	seen  *bitset.BitSet
	last  SectionID
	owned [][]byte

	code  code.Decoder
	scope moduleScope
}

// Decode decodes and validates a module read from st.
//
// Every variable-size payload of the result is allocated from a; a nil
// allocator selects alloc.Heap. v observes custom sections; nil selects
// NopVisitor. A nil cfg selects DefaultConfig.
//
// Failures are returned as a *diag.Error. Nothing allocated by a failed
// decode remains outstanding.
func Decode(st storage.Storage, a alloc.Allocator, v CustomSectionVisitor, cfg *Config) (*Module, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if a == nil {
		a = alloc.Heap{}
	}
	if v == nil {
		v = NopVisitor{}
	}

	d := &decoder{
		st:   st,
		r:    st,
		a:    a,
		v:    v,
		cfg:  cfg,
		log:  cfg.logger(),
		m:    &Module{},
		seen: bitset.New(uint(SectionIDData) + 1),
	}
	d.ctx.Init(cfg.MaxContextDepth)
	d.scope.m = d.m
	d.code = code.Decoder{Context: &d.ctx, Allocator: a, Scope: &d.scope}

	if err := d.decode(); err != nil {
		for _, b := range d.owned {
			a.Deallocate(b)
		}
		d.log.Debug("decode failed", zap.Error(err))
		return nil, err
	}
	d.m.allocator, d.m.blocks = a, d.owned
	return d.m, nil
}

// DecodeBytes decodes a module held in memory. Names and payloads are copied
// out of b.
func DecodeBytes(b []byte) (*Module, error) {
	return Decode(storage.NewBuffer(b), nil, nil, nil)
}

// DecodeReader decodes a module read from r, buffering through scratch space
// of cfg.StreamScratch bytes obtained from a.
func DecodeReader(r io.Reader, a alloc.Allocator, v CustomSectionVisitor, cfg *Config) (*Module, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if a == nil {
		a = alloc.Heap{}
	}
	scratch, err := a.Allocate(cfg.StreamScratch, 8)
	if err != nil {
		ctx := diag.NewStack(cfg.MaxContextDepth)
		ctx.Push(diag.At(diag.KindModule, "", 0))
		return nil, diag.NewError(diag.AllocationFailure, 0, err, ctx)
	}
	defer a.Deallocate(scratch)
	return Decode(storage.NewStream(r, scratch), a, v, cfg)
}

// DecodeModule decodes a WASM module.
func DecodeModule(r io.Reader) (*Module, error) {
	return DecodeReader(r, nil, nil, nil)
}

// MustDecode decodes a WASM module and panics on failure.
func MustDecode(r io.Reader) *Module {
	m, err := DecodeModule(r)
	if err != nil {
		panic(fmt.Errorf("decoding module: %w", err))
	}
	return m
}

func (d *decoder) fail(class diag.Class, offset int, err error) error {
	return diag.NewError(class, offset, err, &d.ctx)
}

func (d *decoder) malformed(offset int, err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return d.fail(diag.Malformed, offset, err)
}

func (d *decoder) invalid(offset int, err error) error {
	return d.fail(diag.Invalid, offset, err)
}

func (d *decoder) enter(f diag.Frame) error {
	if !d.ctx.Push(f) {
		return d.invalid(f.Offset, &diag.DepthError{Frame: f})
	}
	return nil
}

func (d *decoder) leave() {
	d.ctx.Pop()
}

// invalidAt reports err inside the frame f.
func (d *decoder) invalidAt(f diag.Frame, err error) error {
	if err := d.enter(f); err != nil {
		return err
	}
	return d.invalid(f.Offset, err)
}

func (d *decoder) decode() error {
	if err := d.enter(diag.At(diag.KindModule, "", d.st.Offset())); err != nil {
		return err
	}
	if err := d.header(); err != nil {
		return err
	}
	for {
		done, err := d.section()
		if err != nil {
			return err
		}
		if done {
			break
		}
	}
	return d.finish()
}

func (d *decoder) header() error {
	offset := d.st.Offset()
	if err := d.enter(diag.At(diag.KindHeader, "", offset)); err != nil {
		return err
	}

	var buf [4]byte
	if err := d.st.ReadFull(buf[:]); err != nil {
		return d.malformed(offset, err)
	}
	if !bytes.Equal(buf[:], []byte{0x00, 0x61, 0x73, 0x6d}) {
		return d.malformed(offset, ErrInvalidMagic)
	}
	if err := d.st.ReadFull(buf[:]); err != nil {
		return d.malformed(offset+4, err)
	}
	if !bytes.Equal(buf[:], []byte{0x01, 0x00, 0x00, 0x00}) {
		return d.malformed(offset+4, ErrUnknownVersion)
	}
	d.m.Version = Version

	d.log.Debug("header", zap.Uint32("version", Version))
	d.leave()
	return nil
}

// section decodes one section. It reports true at a clean end of input.
func (d *decoder) section() (bool, error) {
	offset := d.st.Offset()
	b, err := d.st.ReadByte()
	if err != nil {
		if err == io.EOF {
			return true, nil
		}
		return false, d.malformed(offset, err)
	}

	id := SectionID(b)
	label := "unknown"
	if id <= SectionIDData {
		label = sectionNames[id]
	}
	depth := d.ctx.Depth()
	if err := d.enter(diag.At(diag.KindSection, label, offset)); err != nil {
		return false, err
	}

	if id > SectionIDData {
		return false, d.malformed(offset, InvalidSectionIDError(id))
	}
	size, err := d.u32()
	if err != nil {
		return false, err
	}
	start := d.st.Offset()
	if n, ok := storage.Unread(d.st); ok && int64(size) > int64(n) {
		return false, d.malformed(start, io.ErrUnexpectedEOF)
	}

	if id != SectionIDCustom {
		switch {
		case d.seen.Test(uint(id)):
			return false, d.invalid(offset, DuplicateSectionError(id))
		case id < d.last:
			return false, d.invalid(offset, &OutOfOrderSectionError{ID: id, After: d.last})
		}
		d.seen.Set(uint(id))
		d.last = id
	}
	d.win.Reset(d.st, start+int(size))
	d.r = &d.win

	d.log.Debug("section", zap.Stringer("id", id), zap.Uint32("size", size), zap.Int("offset", offset))

	raw := RawSection{Start: start, End: start + int(size), ID: id}
	var sec payload
	switch id {
	case SectionIDCustom:
		sec = &SectionCustom{RawSection: raw}
	case SectionIDType:
		sec = &SectionTypes{RawSection: raw}
	case SectionIDImport:
		sec = &SectionImports{RawSection: raw}
	case SectionIDFunction:
		sec = &SectionFunctions{RawSection: raw}
	case SectionIDTable:
		sec = &SectionTables{RawSection: raw}
	case SectionIDMemory:
		sec = &SectionMemories{RawSection: raw}
	case SectionIDGlobal:
		sec = &SectionGlobals{RawSection: raw}
	case SectionIDExport:
		sec = &SectionExports{RawSection: raw}
	case SectionIDStart:
		sec = &SectionStartFunction{RawSection: raw}
	case SectionIDElement:
		sec = &SectionElements{RawSection: raw}
	case SectionIDCode:
		sec = &SectionCode{RawSection: raw}
	case SectionIDData:
		sec = &SectionData{RawSection: raw}
	}
	if err := sec.readPayload(d); err != nil {
		return false, err
	}
	if !d.win.AtEnd() {
		return false, d.malformed(d.win.Offset(), &SectionLengthError{ID: id, Size: size, Consumed: d.win.Offset() - start})
	}

	d.r = d.st
	if c, ok := sec.(*SectionCustom); ok {
		d.m.Customs = append(d.m.Customs, c)
	}
	d.m.Sections = append(d.m.Sections, sec)
	d.ctx.Truncate(depth)
	return false, nil
}

// capHint bounds a vector's preallocation by the bytes left in the section,
// since every entry occupies at least one byte. Over storage of unknown length
// the section size is only a claim, so the hint is also bounded by the stream
// scratch size.
func (d *decoder) capHint(count uint32) int {
	n, ok := storage.Unread(&d.win)
	if !ok {
		n = min(max(d.win.Remaining(), 0), d.cfg.StreamScratch)
	}
	return int(min(uint64(count), uint64(n)))
}

func (d *decoder) u32() (uint32, error) {
	offset := d.r.Offset()
	v, err := leb128.ReadVarUint32(d.r)
	if err != nil {
		return 0, d.malformed(offset, err)
	}
	return v, nil
}

func (d *decoder) readByte() (byte, error) {
	offset := d.r.Offset()
	b, err := d.r.ReadByte()
	if err != nil {
		return 0, d.malformed(offset, err)
	}
	return b, nil
}

func (d *decoder) valueType() (types.ValueType, error) {
	offset := d.r.Offset()
	b, err := d.readByte()
	if err != nil {
		return 0, err
	}
	t, ok := types.ValueTypeFromByte(b)
	if !ok {
		return 0, d.malformed(offset, &diag.InvalidTokenError{Token: "value type", Byte: b})
	}
	return t, nil
}

// bytes reads the next n bytes of the section into an owned block.
func (d *decoder) bytes(n int) ([]byte, error) {
	offset := d.win.Offset()
	if n > d.win.Remaining() {
		return nil, d.malformed(offset, storage.ErrLimit)
	}
	if n == 0 {
		return []byte{}, nil
	}
	b, err := d.fill(offset, n)
	if err != nil {
		return nil, err
	}
	d.owned = append(d.owned, b)
	return b, nil
}

// fill copies the next n bytes of the section into a new block. When the
// storage cannot vouch for n bytes the block grows as they arrive, so a
// truncated stream fails before any request much larger than its input.
func (d *decoder) fill(offset, n int) ([]byte, error) {
	if avail, ok := storage.Unread(&d.win); ok {
		if n > avail {
			return nil, d.malformed(offset, io.ErrUnexpectedEOF)
		}
		b, err := d.a.Allocate(n, 1)
		if err != nil {
			return nil, d.fail(diag.AllocationFailure, offset, err)
		}
		if err := d.win.ReadFull(b); err != nil {
			d.a.Deallocate(b)
			return nil, d.malformed(offset, err)
		}
		return b, nil
	}

	buf := alloc.NewBuffer(d.a, 1)
	for left := n; left > 0; {
		chunk := min(left, d.cfg.StreamScratch)
		p, err := buf.Extend(chunk)
		if err != nil {
			buf.Release()
			return nil, d.fail(diag.AllocationFailure, offset, err)
		}
		if err := d.win.ReadFull(p); err != nil {
			buf.Release()
			return nil, d.malformed(offset, err)
		}
		left -= chunk
	}
	return buf.Detach(), nil
}

// vec reads a length-prefixed byte vector into an owned block.
func (d *decoder) vec() ([]byte, error) {
	n, err := d.u32()
	if err != nil {
		return nil, err
	}
	return d.bytes(int(min(uint64(n), uint64(d.win.Remaining())+1)))
}

func (d *decoder) name() (Name, error) {
	offset := d.win.Offset()
	if err := d.enter(diag.At(diag.KindName, "", offset)); err != nil {
		return nil, err
	}
	b, err := d.vec()
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(b) {
		return nil, d.malformed(offset, ErrInvalidUTF8)
	}
	d.leave()
	return Name(b), nil
}

// view returns the next n bytes of the section for the duration of a visit.
// When the storage cannot serve a view that large the bytes are copied into a
// temporary block; release returns it.
func (d *decoder) view(n int) (data []byte, release func(), err error) {
	offset := d.win.Offset()
	data, err = d.win.Read(n)
	if err == nil {
		return data, func() {}, nil
	}
	if !errors.Is(err, storage.ErrScratchTooSmall) {
		return nil, nil, d.malformed(offset, err)
	}

	block, err := d.fill(offset, n)
	if err != nil {
		return nil, nil, err
	}
	return block, func() { d.a.Deallocate(block) }, nil
}

func (d *decoder) visit(offset int, name string, data []byte) error {
	if err := d.enter(diag.At(diag.KindCustom, "", offset)); err != nil {
		return err
	}
	if err := d.v.VisitCustomSection(name, data); err != nil {
		return d.invalid(offset, err)
	}
	d.leave()
	return nil
}

func (d *decoder) functionSig() (types.FunctionSig, error) {
	offset := d.win.Offset()
	form, err := d.readByte()
	if err != nil {
		return types.FunctionSig{}, err
	}
	if form != types.TypeFunc {
		return types.FunctionSig{}, d.malformed(offset, &diag.InvalidTokenError{Token: "function type", Byte: form})
	}

	params, err := d.valueTypes()
	if err != nil {
		return types.FunctionSig{}, err
	}
	resultsOffset := d.win.Offset()
	results, err := d.valueTypes()
	if err != nil {
		return types.FunctionSig{}, err
	}
	if len(results) > 1 {
		return types.FunctionSig{}, d.invalid(resultsOffset, diag.ValidationError("invalid result arity"))
	}
	return types.FunctionSig{ParamTypes: params, ReturnTypes: results}, nil
}

func (d *decoder) valueTypes() ([]types.ValueType, error) {
	count, err := d.u32()
	if err != nil {
		return nil, err
	}
	ts := make([]types.ValueType, 0, d.capHint(count))
	for i := uint32(0); i < count; i++ {
		t, err := d.valueType()
		if err != nil {
			return nil, err
		}
		ts = append(ts, t)
	}
	return ts, nil
}

func (d *decoder) limits() (types.Limits, error) {
	offset := d.win.Offset()
	if err := d.enter(diag.At(diag.KindLimits, "", offset)); err != nil {
		return types.Limits{}, err
	}
	flag, err := d.readByte()
	if err != nil {
		return types.Limits{}, err
	}
	if flag > 1 {
		return types.Limits{}, d.malformed(offset, &diag.InvalidTokenError{Token: "limits flag", Byte: flag})
	}

	var l types.Limits
	if l.Min, err = d.u32(); err != nil {
		return types.Limits{}, err
	}
	if flag == 1 {
		l.HasMax = true
		if l.Max, err = d.u32(); err != nil {
			return types.Limits{}, err
		}
		if l.Min > l.Max {
			return types.Limits{}, d.invalid(offset, diag.ValidationError("size minimum must not be greater than maximum"))
		}
	}
	d.leave()
	return l, nil
}

func (d *decoder) tableType() (types.Table, error) {
	offset := d.win.Offset()
	elem, err := d.readByte()
	if err != nil {
		return types.Table{}, err
	}
	if elem != types.ElemTypeFuncref {
		return types.Table{}, d.malformed(offset, &diag.InvalidTokenError{Token: "element type", Byte: elem})
	}
	l, err := d.limits()
	if err != nil {
		return types.Table{}, err
	}
	return types.Table{ElementType: elem, Limits: l}, nil
}

func (d *decoder) memoryType() (types.Memory, error) {
	offset := d.win.Offset()
	l, err := d.limits()
	if err != nil {
		return types.Memory{}, err
	}
	if err := d.m.validateMemory(l, d.cfg.MaxMemoryPages); err != nil {
		return types.Memory{}, d.invalid(offset, err)
	}
	return types.Memory{Limits: l}, nil
}

func (d *decoder) globalType() (types.GlobalVar, error) {
	t, err := d.valueType()
	if err != nil {
		return types.GlobalVar{}, err
	}
	offset := d.win.Offset()
	mut, err := d.readByte()
	if err != nil {
		return types.GlobalVar{}, err
	}
	if mut > 1 {
		return types.GlobalVar{}, d.malformed(offset, &diag.InvalidTokenError{Token: "mutability", Byte: mut})
	}
	return types.GlobalVar{Type: t, Mutable: mut == 1}, nil
}

// constExpr decodes an initializer expression producing a value of type t.
// Its buffers become owned by the module.
func (d *decoder) constExpr(t types.ValueType) (code.Body, error) {
	d.code.Storage = d.r
	body, err := d.code.DecodeConst(t)
	if err != nil {
		return code.Body{}, err
	}
	d.own(&body)
	return body, nil
}

func (d *decoder) own(body *code.Body) {
	if body.Code != nil {
		d.owned = append(d.owned, body.Code)
	}
	if body.Table != nil {
		d.owned = append(d.owned, body.Table)
	}
}

func (d *decoder) importEntry() (ImportEntry, error) {
	var entry ImportEntry
	var err error
	if entry.ModuleName, err = d.name(); err != nil {
		return ImportEntry{}, err
	}
	if entry.FieldName, err = d.name(); err != nil {
		return ImportEntry{}, err
	}

	offset := d.win.Offset()
	kind, err := d.readByte()
	if err != nil {
		return ImportEntry{}, err
	}
	switch types.External(kind) {
	case types.ExternalFunction:
		at := d.win.Offset()
		t, err := d.u32()
		if err != nil {
			return ImportEntry{}, err
		}
		if _, ok := d.m.typeAt(t); !ok {
			return ImportEntry{}, d.invalid(at, diag.ValidationError("unknown type"))
		}
		entry.Type = FuncImport{Type: t}
		d.m.funcTypes = append(d.m.funcTypes, t)
		d.m.importedFuncs++
	case types.ExternalTable:
		t, err := d.tableType()
		if err != nil {
			return ImportEntry{}, err
		}
		if err := d.addTable(offset); err != nil {
			return ImportEntry{}, err
		}
		entry.Type = TableImport{Type: t}
	case types.ExternalMemory:
		m, err := d.memoryType()
		if err != nil {
			return ImportEntry{}, err
		}
		if err := d.addMemory(offset); err != nil {
			return ImportEntry{}, err
		}
		entry.Type = MemoryImport{Type: m}
	case types.ExternalGlobal:
		g, err := d.globalType()
		if err != nil {
			return ImportEntry{}, err
		}
		entry.Type = GlobalVarImport{Type: g}
		d.m.globals = append(d.m.globals, g)
		d.m.importedGlobals++
	default:
		return ImportEntry{}, d.malformed(offset, &diag.InvalidTokenError{Token: "import kind", Byte: kind})
	}
	return entry, nil
}

func (d *decoder) addTable(offset int) error {
	if d.m.tables >= 1 {
		return d.invalid(offset, diag.ValidationError("multiple tables"))
	}
	d.m.tables++
	return nil
}

func (d *decoder) addMemory(offset int) error {
	if d.m.memories >= 1 {
		return d.invalid(offset, diag.ValidationError("multiple memories"))
	}
	d.m.memories++
	return nil
}

func (d *decoder) exportEntry() (ExportEntry, error) {
	field, err := d.name()
	if err != nil {
		return ExportEntry{}, err
	}
	offset := d.win.Offset()
	kind, err := d.readByte()
	if err != nil {
		return ExportEntry{}, err
	}
	if kind > byte(types.ExternalGlobal) {
		return ExportEntry{}, d.malformed(offset, &diag.InvalidTokenError{Token: "export kind", Byte: kind})
	}
	index, err := d.u32()
	if err != nil {
		return ExportEntry{}, err
	}
	e := ExportEntry{Field: field, Kind: types.External(kind), Index: index}
	if err := d.m.validateExport(e); err != nil {
		return ExportEntry{}, d.invalid(offset, err)
	}
	return e, nil
}

func (d *decoder) elementSegment() (ElementSegment, error) {
	offset := d.win.Offset()
	index, err := d.u32()
	if err != nil {
		return ElementSegment{}, err
	}
	if uint64(index) >= uint64(d.m.tables) {
		return ElementSegment{}, d.invalid(offset, diag.ValidationError("unknown table"))
	}
	init, err := d.constExpr(types.ValueTypeI32)
	if err != nil {
		return ElementSegment{}, err
	}

	count, err := d.u32()
	if err != nil {
		return ElementSegment{}, err
	}
	elems := make([]uint32, 0, d.capHint(count))
	for i := uint32(0); i < count; i++ {
		at := d.win.Offset()
		f, err := d.u32()
		if err != nil {
			return ElementSegment{}, err
		}
		if uint64(f) >= uint64(len(d.m.funcTypes)) {
			return ElementSegment{}, d.invalid(at, diag.ValidationError("unknown function"))
		}
		elems = append(elems, f)
	}
	return ElementSegment{Index: index, Offset: init, Elems: elems}, nil
}

func (d *decoder) dataSegment() (DataSegment, error) {
	offset := d.win.Offset()
	index, err := d.u32()
	if err != nil {
		return DataSegment{}, err
	}
	if uint64(index) >= uint64(d.m.memories) {
		return DataSegment{}, d.invalid(offset, diag.ValidationError("unknown memory"))
	}
	init, err := d.constExpr(types.ValueTypeI32)
	if err != nil {
		return DataSegment{}, err
	}
	data, err := d.vec()
	if err != nil {
		return DataSegment{}, err
	}
	return DataSegment{Index: index, Offset: init, Data: data}, nil
}

func (d *decoder) functionBody(i uint32) (FunctionBody, error) {
	funcidx := d.m.importedFuncs + int(i)
	offset := d.win.Offset()
	if err := d.enter(diag.Indexed(diag.KindFunction, "", funcidx, offset)); err != nil {
		return FunctionBody{}, err
	}

	size, err := d.u32()
	if err != nil {
		return FunctionBody{}, err
	}
	start := d.win.Offset()
	if int64(size) > int64(d.win.Remaining()) {
		return FunctionBody{}, d.malformed(start, storage.ErrLimit)
	}
	var body storage.Limited
	body.Reset(&d.win, start+int(size))
	d.r = &body
	defer func() { d.r = &d.win }()

	sig, _ := d.m.FunctionSignature(uint32(funcidx))
	locals, err := d.locals(&body, sig)
	if err != nil {
		return FunctionBody{}, err
	}

	d.code.Storage = &body
	decoded, err := d.code.Decode(sig.ReturnTypes)
	if err != nil {
		return FunctionBody{}, err
	}
	d.own(&decoded)
	if !body.AtEnd() {
		return FunctionBody{}, d.malformed(body.Offset(), &SectionLengthError{ID: SectionIDCode, Size: size, Consumed: body.Offset() - start})
	}

	if ce := d.log.Check(zap.DebugLevel, "function"); ce != nil {
		ce.Write(
			zap.Int("index", funcidx),
			zap.Uint32("size", size),
			zap.Int("locals", len(d.scope.locals)-len(sig.ParamTypes)),
			zap.Int("instructions", decoded.Len()),
			zap.Int("maxStackDepth", decoded.Metrics.MaxStackDepth),
		)
	}
	d.leave()
	return FunctionBody{Locals: locals, Code: decoded, Offset: start, Size: size}, nil
}

// locals reads a body's local declarations and sets up the scope's local
// index space.
func (d *decoder) locals(body *storage.Limited, sig types.FunctionSig) ([]LocalEntry, error) {
	offset := body.Offset()
	if err := d.enter(diag.At(diag.KindLocals, "", offset)); err != nil {
		return nil, err
	}
	count, err := d.u32()
	if err != nil {
		return nil, err
	}

	entries := make([]LocalEntry, 0, int(min(uint64(count), uint64(max(body.Remaining(), 0)))))
	total := uint64(0)
	for i := uint32(0); i < count; i++ {
		at := body.Offset()
		n, err := d.u32()
		if err != nil {
			return nil, err
		}
		t, err := d.valueType()
		if err != nil {
			return nil, err
		}
		if total += uint64(n); total > uint64(d.cfg.MaxLocals) {
			return nil, d.malformed(at, ErrTooManyLocals)
		}
		entries = append(entries, LocalEntry{Count: n, Type: t})
	}

	d.scope.locals = append(d.scope.locals[:0], sig.ParamTypes...)
	for _, e := range entries {
		for j := uint32(0); j < e.Count; j++ {
			d.scope.locals = append(d.scope.locals, e.Type)
		}
	}
	d.leave()
	return entries, nil
}

// finish applies the checks that need the whole module.
func (d *decoder) finish() error {
	if d.m.definedFunctionCount() != 0 && d.m.Code == nil {
		return d.malformed(d.st.Offset(), &FunctionLengthError{Functions: d.m.definedFunctionCount()})
	}
	d.log.Debug("module decoded",
		zap.Int("sections", len(d.m.Sections)),
		zap.Int("functions", d.m.FunctionCount()),
		zap.Int("blocks", len(d.owned)))
	return nil
}
