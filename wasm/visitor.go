package wasm

// CustomSectionVisitor observes custom sections as they are decoded.
type CustomSectionVisitor interface {
	// ShouldVisit reports whether VisitCustomSection should be called for the
	// named section.
	ShouldVisit(name string) bool
	// VisitCustomSection receives the section's payload after its name. data is
	// only valid for the duration of the call. A non-nil error aborts the decode.
	VisitCustomSection(name string, data []byte) error
}

// NopVisitor visits nothing.
type NopVisitor struct{}

func (NopVisitor) ShouldVisit(name string) bool                      { return false }
func (NopVisitor) VisitCustomSection(name string, data []byte) error { return nil }

// VisitorFunc visits every custom section by calling itself.
type VisitorFunc func(name string, data []byte) error

func (f VisitorFunc) ShouldVisit(name string) bool { return true }

func (f VisitorFunc) VisitCustomSection(name string, data []byte) error {
	return f(name, data)
}

// NamedVisitor visits only the section called Name.
type NamedVisitor struct {
	Name  string
	Visit func(data []byte) error
}

func (v NamedVisitor) ShouldVisit(name string) bool { return name == v.Name }

func (v NamedVisitor) VisitCustomSection(name string, data []byte) error {
	return v.Visit(data)
}
