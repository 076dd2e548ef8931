package code

import "github.com/pgavlin/wafer/wasm/types"

// Block type encodings. WebAssembly 1.0 blocks take no parameters and yield at
// most one result.
const (
	BlockTypeEmpty byte = 0x40
	BlockTypeI32   byte = 0x7f
	BlockTypeI64   byte = 0x7e
	BlockTypeF32   byte = 0x7d
	BlockTypeF64   byte = 0x7c
)

var (
	resultsI32 = []types.ValueType{types.ValueTypeI32}
	resultsI64 = []types.ValueType{types.ValueTypeI64}
	resultsF32 = []types.ValueType{types.ValueTypeF32}
	resultsF64 = []types.ValueType{types.ValueTypeF64}
)

// BlockResults returns the result types of the block type bt.
func BlockResults(bt byte) ([]types.ValueType, bool) {
	switch bt {
	case BlockTypeEmpty:
		return nil, true
	case BlockTypeI32:
		return resultsI32, true
	case BlockTypeI64:
		return resultsI64, true
	case BlockTypeF32:
		return resultsF32, true
	case BlockTypeF64:
		return resultsF64, true
	default:
		return nil, false
	}
}

func blockTypeString(bt byte) string {
	if bt == BlockTypeEmpty {
		return ""
	}
	return " (result " + types.ValueType(bt).String() + ")"
}
