package dump

import (
	"encoding/csv"
	"io"

	"github.com/jszwec/csvutil"
	"github.com/willf/bitset"

	"github.com/pgavlin/wafer/wasm"
	"github.com/pgavlin/wafer/wasm/code"
)

// rows:
// - function
//     - in/out, nlocals, max stack, max nesting, # labels, # instructions, # distinct opcodes, instruction breakdown

type row struct {
	Function         string `csv:"function"`
	Funcidx          int    `csv:"funcidx"`
	In               int    `csv:"in"`
	Out              int    `csv:"out"`
	LocalCount       int    `csv:"local count"`
	MaxStack         int    `csv:"max stack"`
	MaxNesting       int    `csv:"max nesting"`
	LabelCount       int    `csv:"label count"`
	InstructionCount int    `csv:"instruction count"`
	DistinctOpcodes  int    `csv:"distinct opcodes"`
	HasLoops         bool   `csv:"has loops"`
	BranchTableSize  int    `csv:"br_table targets"`
	Block            int    `csv:"block"`
	BlockUnit        int    `csv:"unit block"`
	Loop             int    `csv:"loop"`
	If               int    `csv:"if"`
	Else             int    `csv:"else"`
	Br               int    `csv:"br"`
	BrIf             int    `csv:"br_if"`
	BrTable          int    `csv:"br_table"`
	Return           int    `csv:"return"`
	Call             int    `csv:"call"`
	CallIndirect     int    `csv:"call_indirect"`
	Control          int    `csv:"control"`
	Parametric       int    `csv:"parametric"`
	Variable         int    `csv:"variable"`
	Load             int    `csv:"load"`
	LoadSmall        int    `csv:"load small offset"`
	Store            int    `csv:"store"`
	StoreSmall       int    `csv:"store small offset"`
	Memory           int    `csv:"memory"`
	Const            int    `csv:"const"`
	SmallConst       int    `csv:"small const"`
	Compare          int    `csv:"compare"`
	Arith            int    `csv:"arith"`
	Convert          int    `csv:"convert"`
}

func functionStats(m *wasm.Module, funcidx uint32, body *wasm.FunctionBody, n *names) row {
	sig, _ := m.FunctionSignature(funcidx)

	locals := 0
	for _, l := range body.Locals {
		locals += int(l.Count)
	}

	metrics := body.Code.Metrics
	r := row{
		Function:         n.functionNames[funcidx],
		Funcidx:          int(funcidx),
		In:               len(sig.ParamTypes),
		Out:              len(sig.ReturnTypes),
		LocalCount:       locals,
		MaxStack:         metrics.MaxStackDepth,
		MaxNesting:       metrics.MaxNesting,
		LabelCount:       metrics.LabelCount,
		InstructionCount: body.Code.Len(),
		HasLoops:         metrics.HasLoops,
	}

	var opcodes bitset.BitSet
	for pc := 0; pc < body.Code.Len(); pc++ {
		instr := body.Code.Instruction(pc)
		opcodes.Set(uint(instr.Opcode))

		switch instr.Opcode {
		case code.OpBlock:
			r.Block++
			if instr.BlockType() == code.BlockTypeEmpty {
				r.BlockUnit++
			}
		case code.OpLoop:
			r.Loop++
		case code.OpIf:
			r.If++
		case code.OpElse:
			r.Else++
		case code.OpBr:
			r.Br++
		case code.OpBrIf:
			r.BrIf++
		case code.OpBrTable:
			r.BrTable++
			r.BranchTableSize += len(body.Code.BranchTable(instr))
		case code.OpReturn:
			r.Return++
		case code.OpCall:
			r.Call++
		case code.OpCallIndirect:
			r.CallIndirect++
		}

		switch code.OpcodeCategory(instr.Opcode) {
		case code.CategoryControl:
			r.Control++
		case code.CategoryParametric:
			r.Parametric++
		case code.CategoryVariable:
			r.Variable++
		case code.CategoryLoad:
			r.Load++
			if instr.Offset() < 256 {
				r.LoadSmall++
			}
		case code.CategoryStore:
			r.Store++
			if instr.Offset() < 256 {
				r.StoreSmall++
			}
		case code.CategoryMemory:
			r.Memory++
		case code.CategoryConst:
			r.Const++
			if isSmallConst(&instr) {
				r.SmallConst++
			}
		case code.CategoryCompare:
			r.Compare++
		case code.CategoryArith:
			r.Arith++
		case code.CategoryConvert:
			r.Convert++
		}
	}
	r.DistinctOpcodes = int(opcodes.Count())
	return r
}

func isSmallConst(instr *code.Instruction) bool {
	switch instr.Opcode {
	case code.OpI32Const:
		return instr.I32() >= -128 && instr.I32() < 128
	case code.OpI64Const:
		return instr.I64() >= -128 && instr.I64() < 128
	case code.OpF32Const:
		return instr.F32() == 0
	case code.OpF64Const:
		return instr.F64() == 0
	}
	return false
}

func dumpStats(w io.Writer, m *wasm.Module, n *names) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	encoder := csvutil.NewEncoder(csvWriter)
	if m.Code == nil {
		return encoder.EncodeHeader(row{})
	}

	for i := range m.Code.Bodies {
		funcidx := uint32(m.ImportedFunctionCount() + i)
		if err := encoder.Encode(functionStats(m, funcidx, &m.Code.Bodies[i], n)); err != nil {
			return err
		}
	}
	return nil
}
