// Package diag tracks decode nesting in a fixed-capacity context stack and
// reports failures as classified errors that carry a copy of that stack.
package diag

import "fmt"

// Kind identifies the decode scope a frame describes.
type Kind uint8

const (
	KindModule Kind = iota
	KindHeader
	KindSection
	KindEntry
	KindFunction
	KindLocals
	KindExpr
	KindInstruction
	KindImmediate
	KindName
	KindLimits
	KindCustom
)

var kindNames = [...]string{
	KindModule:      "module",
	KindHeader:      "header",
	KindSection:     "section",
	KindEntry:       "entry",
	KindFunction:    "func",
	KindLocals:      "locals",
	KindExpr:        "expr",
	KindInstruction: "instr",
	KindImmediate:   "immediate",
	KindName:        "name",
	KindLimits:      "limits",
	KindCustom:      "custom",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// NoIndex marks a frame without an index.
const NoIndex = -1

// Frame is one entry of the context stack. Label must be a static string; it
// names the section, field or opcode the frame covers.
type Frame struct {
	Kind   Kind
	Label  string
	Index  int
	Offset int
}

// At returns a frame of the given kind entered at offset.
func At(kind Kind, label string, offset int) Frame {
	return Frame{Kind: kind, Label: label, Index: NoIndex, Offset: offset}
}

// Indexed returns a frame for the index'th entry of a vector.
func Indexed(kind Kind, label string, index, offset int) Frame {
	return Frame{Kind: kind, Label: label, Index: index, Offset: offset}
}

func (f Frame) String() string {
	s := f.Kind.String()
	if f.Label != "" {
		s += " " + f.Label
	}
	if f.Index != NoIndex {
		s += fmt.Sprintf(" #%d", f.Index)
	}
	return s + fmt.Sprintf(" @%#x", f.Offset)
}
