// Package idl defines the instruction records produced by parsing IDL text
// and ships the default parser for the supported IDL subset.
//
// The model builder consumes []Instruction through the Parser interface and
// never inspects raw source text itself, so alternative grammar front ends
// can be swapped in without touching resolution.
package idl

// Kind discriminates top-level instruction records.
type Kind string

const (
	KindInterface  Kind = "interface"
	KindDictionary Kind = "dictionary"
	KindTypedef    Kind = "typedef"
	KindImplements Kind = "implements"

	// Kinds the parser recognizes syntactically but the model builder does
	// not support. Strict mode rejects them; relaxed mode drops them.
	KindEnum     Kind = "enum"
	KindCallback Kind = "callback"
)

// MemberKind discriminates members within an interface or dictionary body.
type MemberKind string

const (
	MemberAttribute MemberKind = "attribute"
	MemberOperation MemberKind = "operation"
	MemberConst     MemberKind = "const"
	MemberField     MemberKind = "field"
)

// ExtAttr is a single extended attribute, e.g. [Constructor] or
// [PutForwards=name]. Value is empty for bare attributes.
type ExtAttr struct {
	Name  string
	Value string
}

// Argument is one operation argument.
type Argument struct {
	Name     string
	Type     string
	Optional bool
	Variadic bool
}

// Member is one declaration inside an interface or dictionary body.
type Member struct {
	Kind     MemberKind
	Name     string
	Type     string // declared IDL type text, e.g. "unsigned long" or "sequence<DOMString>"
	Readonly bool   // interface attributes only
	Required bool   // dictionary fields only
	Default  string // dictionary field default, or const value
	Args     []Argument
	ExtAttrs []ExtAttr
}

// Instruction is one typed top-level record in a parsed document, in source
// order. For KindImplements, Name is the target interface (the one gaining
// members) and Mixin is the source interface.
type Instruction struct {
	Kind     Kind
	Name     string
	Partial  bool
	Inherits string // "interface Foo : Bar" / "dictionary Foo : Bar"
	Type     string // typedef target type
	Members  []Member
	ExtAttrs []ExtAttr
	Mixin    string
}

// Parser turns raw IDL text into an ordered instruction list. Failures are
// parse errors carrying position information; callers do not attempt
// recovery.
type Parser interface {
	Parse(text string) ([]Instruction, error)
}
