package idl

import (
	"fmt"
	"strings"
)

// ParseError reports a syntax error with its 1-based source position.
type ParseError struct {
	Line int
	Col  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// DefaultParser is the built-in parser for the supported IDL subset:
// interfaces, dictionaries, typedefs, partial definitions, extended
// attributes, and implements/includes statements. Enums and callbacks are
// tokenized through as unsupported instruction kinds for the model builder
// to reject or drop.
type DefaultParser struct{}

// NewParser returns the default IDL parser.
func NewParser() *DefaultParser {
	return &DefaultParser{}
}

// Parse implements Parser.
func (p *DefaultParser) Parse(text string) ([]Instruction, error) {
	toks, err := lex(text)
	if err != nil {
		return nil, err
	}
	s := &parseState{toks: toks}
	return s.parseDocument()
}

type parseState struct {
	toks []token
	pos  int
}

func (s *parseState) cur() token { return s.toks[s.pos] }
func (s *parseState) advance()   { s.pos++ }

func (s *parseState) errAt(t token, format string, args ...interface{}) error {
	return &ParseError{Line: t.line, Col: t.col, Msg: fmt.Sprintf(format, args...)}
}

func (s *parseState) expectIdent() (token, error) {
	t := s.cur()
	if t.kind != tokIdent {
		return t, s.errAt(t, "expected identifier, got %q", t.text)
	}
	s.advance()
	return t, nil
}

func (s *parseState) expectPunct(text string) error {
	t := s.cur()
	if t.kind != tokPunct || t.text != text {
		return s.errAt(t, "expected %q, got %q", text, t.text)
	}
	s.advance()
	return nil
}

func (s *parseState) isPunct(text string) bool {
	t := s.cur()
	return t.kind == tokPunct && t.text == text
}

func (s *parseState) parseDocument() ([]Instruction, error) {
	var out []Instruction
	for s.cur().kind != tokEOF {
		inst, err := s.parseDefinition()
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}

func (s *parseState) parseDefinition() (Instruction, error) {
	extAttrs, err := s.parseExtAttrs()
	if err != nil {
		return Instruction{}, err
	}

	t := s.cur()
	if t.kind != tokIdent {
		return Instruction{}, s.errAt(t, "expected definition, got %q", t.text)
	}

	switch t.text {
	case "partial":
		s.advance()
		kw := s.cur()
		switch kw.text {
		case "interface":
			s.advance()
			return s.parseContainer(KindInterface, true, extAttrs)
		case "dictionary":
			s.advance()
			return s.parseContainer(KindDictionary, true, extAttrs)
		default:
			return Instruction{}, s.errAt(kw, "expected interface or dictionary after partial, got %q", kw.text)
		}
	case "interface":
		s.advance()
		return s.parseContainer(KindInterface, false, extAttrs)
	case "dictionary":
		s.advance()
		return s.parseContainer(KindDictionary, false, extAttrs)
	case "typedef":
		s.advance()
		return s.parseTypedef(extAttrs)
	case "enum":
		s.advance()
		return s.parseSkipped(KindEnum)
	case "callback":
		s.advance()
		if s.cur().kind == tokIdent && s.cur().text == "interface" {
			s.advance()
		}
		return s.parseSkipped(KindCallback)
	default:
		// A implements B; / A includes B;
		return s.parseMixinStatement()
	}
}

// parseContainer parses an interface or dictionary body after the keyword.
func (s *parseState) parseContainer(kind Kind, partial bool, extAttrs []ExtAttr) (Instruction, error) {
	name, err := s.expectIdent()
	if err != nil {
		return Instruction{}, err
	}

	inst := Instruction{Kind: kind, Name: name.text, Partial: partial, ExtAttrs: extAttrs}

	if s.isPunct(":") {
		s.advance()
		parent, err := s.expectIdent()
		if err != nil {
			return Instruction{}, err
		}
		inst.Inherits = parent.text
	}

	if err := s.expectPunct("{"); err != nil {
		return Instruction{}, err
	}

	for !s.isPunct("}") {
		if s.cur().kind == tokEOF {
			return Instruction{}, s.errAt(s.cur(), "unexpected end of input in %s %s", kind, name.text)
		}
		member, err := s.parseMember(kind)
		if err != nil {
			return Instruction{}, err
		}
		inst.Members = append(inst.Members, member)
	}
	s.advance() // }
	if err := s.expectPunct(";"); err != nil {
		return Instruction{}, err
	}
	return inst, nil
}

func (s *parseState) parseTypedef(extAttrs []ExtAttr) (Instruction, error) {
	start := s.cur()
	toks, err := s.collectUntilSemicolon()
	if err != nil {
		return Instruction{}, err
	}
	if len(toks) < 2 {
		return Instruction{}, s.errAt(start, "typedef requires a type and a name")
	}
	nameTok := toks[len(toks)-1]
	if nameTok.kind != tokIdent {
		return Instruction{}, s.errAt(nameTok, "typedef name must be an identifier, got %q", nameTok.text)
	}
	return Instruction{
		Kind:     KindTypedef,
		Name:     nameTok.text,
		Type:     joinType(toks[:len(toks)-1]),
		ExtAttrs: extAttrs,
	}, nil
}

// parseSkipped consumes a definition the model builder does not support,
// keeping just its kind and name so strict mode can report it precisely.
func (s *parseState) parseSkipped(kind Kind) (Instruction, error) {
	name, err := s.expectIdent()
	if err != nil {
		return Instruction{}, err
	}
	depth := 0
	for {
		t := s.cur()
		if t.kind == tokEOF {
			return Instruction{}, s.errAt(t, "unexpected end of input in %s %s", kind, name.text)
		}
		if t.kind == tokPunct {
			switch t.text {
			case "{", "(":
				depth++
			case "}", ")":
				depth--
			case ";":
				if depth == 0 {
					s.advance()
					return Instruction{Kind: kind, Name: name.text}, nil
				}
			}
		}
		s.advance()
	}
}

func (s *parseState) parseMixinStatement() (Instruction, error) {
	target, err := s.expectIdent()
	if err != nil {
		return Instruction{}, err
	}
	kw := s.cur()
	if kw.kind != tokIdent || (kw.text != "implements" && kw.text != "includes") {
		return Instruction{}, s.errAt(kw, "expected implements or includes after %q, got %q", target.text, kw.text)
	}
	s.advance()
	source, err := s.expectIdent()
	if err != nil {
		return Instruction{}, err
	}
	if err := s.expectPunct(";"); err != nil {
		return Instruction{}, err
	}
	return Instruction{Kind: KindImplements, Name: target.text, Mixin: source.text}, nil
}

// parseMember parses one body declaration up to and including its semicolon.
func (s *parseState) parseMember(container Kind) (Member, error) {
	extAttrs, err := s.parseExtAttrs()
	if err != nil {
		return Member{}, err
	}
	start := s.cur()
	toks, err := s.collectUntilSemicolon()
	if err != nil {
		return Member{}, err
	}
	if len(toks) == 0 {
		return Member{}, s.errAt(start, "empty member declaration")
	}

	var m Member
	if container == KindDictionary {
		m, err = classifyDictionaryMember(toks)
	} else {
		m, err = classifyInterfaceMember(toks)
	}
	if err != nil {
		return Member{}, err
	}
	m.ExtAttrs = extAttrs
	return m, nil
}

// collectUntilSemicolon gathers tokens until the next top-level semicolon,
// which is consumed but not returned.
func (s *parseState) collectUntilSemicolon() ([]token, error) {
	var out []token
	depth := 0
	for {
		t := s.cur()
		if t.kind == tokEOF {
			return nil, s.errAt(t, "expected \";\"")
		}
		if t.kind == tokPunct {
			switch t.text {
			case "(", "{":
				depth++
			case ")", "}":
				if depth == 0 {
					return nil, s.errAt(t, "unexpected %q before \";\"", t.text)
				}
				depth--
			case ";":
				if depth == 0 {
					s.advance()
					return out, nil
				}
			}
		}
		out = append(out, t)
		s.advance()
	}
}

func classifyInterfaceMember(toks []token) (Member, error) {
	if toks[0].kind == tokIdent && toks[0].text == "const" {
		return classifyConst(toks)
	}

	if idx := topLevelParen(toks); idx > 0 {
		return classifyOperation(toks, idx)
	}

	// Strip leading modifiers down to an optional `attribute` keyword.
	kind := MemberField
	readonly := false
	i := 0
	for i < len(toks) && toks[i].kind == tokIdent {
		switch toks[i].text {
		case "readonly":
			readonly = true
			i++
			continue
		case "inherit", "static", "stringifier":
			i++
			continue
		case "attribute":
			kind = MemberAttribute
			i++
		}
		break
	}

	rest := toks[i:]
	if len(rest) < 2 {
		return Member{}, memberErr(toks[0], "expected a type and a name")
	}
	nameTok := rest[len(rest)-1]
	if nameTok.kind != tokIdent {
		return Member{}, memberErr(nameTok, "member name must be an identifier, got %q", nameTok.text)
	}
	return Member{Kind: kind, Name: nameTok.text, Type: joinType(rest[:len(rest)-1]), Readonly: readonly}, nil
}

func classifyConst(toks []token) (Member, error) {
	eq := -1
	for i, t := range toks {
		if t.kind == tokPunct && t.text == "=" {
			eq = i
			break
		}
	}
	if eq < 3 {
		return Member{}, memberErr(toks[0], "const requires a type, a name, and a value")
	}
	nameTok := toks[eq-1]
	if nameTok.kind != tokIdent {
		return Member{}, memberErr(nameTok, "const name must be an identifier, got %q", nameTok.text)
	}
	return Member{
		Kind:    MemberConst,
		Name:    nameTok.text,
		Type:    joinType(toks[1 : eq-1]),
		Default: joinType(toks[eq+1:]),
	}, nil
}

func classifyOperation(toks []token, parenIdx int) (Member, error) {
	nameTok := toks[parenIdx-1]
	if nameTok.kind != tokIdent {
		return Member{}, memberErr(nameTok, "operation name must be an identifier, got %q", nameTok.text)
	}
	args, err := parseArguments(toks[parenIdx:])
	if err != nil {
		return Member{}, err
	}
	retToks := toks[:parenIdx-1]
	// Skip a leading `static` or `stringifier` in the return position.
	for len(retToks) > 0 && (retToks[0].text == "static" || retToks[0].text == "stringifier") {
		retToks = retToks[1:]
	}
	return Member{
		Kind: MemberOperation,
		Name: nameTok.text,
		Type: joinType(retToks),
		Args: args,
	}, nil
}

func classifyDictionaryMember(toks []token) (Member, error) {
	m := Member{Kind: MemberField}
	first := toks[0]
	if toks[0].kind == tokIdent && toks[0].text == "required" {
		m.Required = true
		toks = toks[1:]
	}
	if len(toks) == 0 {
		return Member{}, memberErr(first, "dictionary member requires a type and a name")
	}

	eq := -1
	for i, t := range toks {
		if t.kind == tokPunct && t.text == "=" {
			eq = i
			break
		}
	}
	if eq >= 0 {
		m.Default = joinType(toks[eq+1:])
		toks = toks[:eq]
	}

	if len(toks) < 2 {
		return Member{}, memberErr(first, "dictionary member requires a type and a name")
	}
	nameTok := toks[len(toks)-1]
	if nameTok.kind != tokIdent {
		return Member{}, memberErr(nameTok, "dictionary member name must be an identifier, got %q", nameTok.text)
	}
	m.Name = nameTok.text
	m.Type = joinType(toks[:len(toks)-1])
	return m, nil
}

// parseArguments parses "( ... )" token runs into arguments, splitting on
// top-level commas. Argument defaults are recorded but not preserved.
func parseArguments(toks []token) ([]Argument, error) {
	if len(toks) == 0 || toks[0].text != "(" {
		return nil, memberErr(toks[0], "expected argument list")
	}
	// Locate the matching close paren.
	depth := 0
	end := -1
	for i, t := range toks {
		if t.kind != tokPunct {
			continue
		}
		switch t.text {
		case "(":
			depth++
		case ")":
			depth--
			if depth == 0 {
				end = i
			}
		}
		if end >= 0 {
			break
		}
	}
	if end < 0 {
		return nil, memberErr(toks[0], "unterminated argument list")
	}

	inner := toks[1:end]
	if len(inner) == 0 {
		return nil, nil
	}

	var args []Argument
	var group []token
	depth = 0
	flush := func() error {
		if len(group) == 0 {
			return memberErr(toks[0], "empty argument")
		}
		arg, err := parseOneArgument(group)
		if err != nil {
			return err
		}
		args = append(args, arg)
		group = nil
		return nil
	}
	for _, t := range inner {
		if t.kind == tokPunct {
			switch t.text {
			case "(", "<":
				depth++
			case ")", ">":
				depth--
			case ",":
				if depth == 0 {
					if err := flush(); err != nil {
						return nil, err
					}
					continue
				}
			}
		}
		group = append(group, t)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return args, nil
}

func parseOneArgument(toks []token) (Argument, error) {
	var arg Argument
	first := toks[0]
	if toks[0].kind == tokIdent && toks[0].text == "optional" {
		arg.Optional = true
		toks = toks[1:]
	}
	if len(toks) == 0 {
		return Argument{}, memberErr(first, "argument requires a type and a name")
	}

	// Drop a default value clause.
	for i, t := range toks {
		if t.kind == tokPunct && t.text == "=" {
			toks = toks[:i]
			break
		}
	}

	// Filter the variadic marker out of the type.
	var typeToks []token
	for _, t := range toks {
		if t.kind == tokPunct && t.text == "..." {
			arg.Variadic = true
			continue
		}
		typeToks = append(typeToks, t)
	}

	if len(typeToks) < 2 {
		return Argument{}, memberErr(first, "argument requires a type and a name")
	}
	nameTok := typeToks[len(typeToks)-1]
	if nameTok.kind != tokIdent {
		return Argument{}, memberErr(nameTok, "argument name must be an identifier, got %q", nameTok.text)
	}
	arg.Name = nameTok.text
	arg.Type = joinType(typeToks[:len(typeToks)-1])
	return arg, nil
}

// parseExtAttrs parses an optional "[A, B=value, C(args)]" prefix.
func (s *parseState) parseExtAttrs() ([]ExtAttr, error) {
	if !s.isPunct("[") {
		return nil, nil
	}
	s.advance()

	var attrs []ExtAttr
	for {
		name, err := s.expectIdent()
		if err != nil {
			return nil, err
		}
		attr := ExtAttr{Name: name.text}

		switch {
		case s.isPunct("="):
			s.advance()
			val := s.cur()
			if val.kind != tokIdent && val.kind != tokString && val.kind != tokNumber {
				return nil, s.errAt(val, "expected extended attribute value, got %q", val.text)
			}
			s.advance()
			attr.Value = val.text
		case s.isPunct("("):
			// Argument-list form, e.g. [Constructor(DOMString s)]. Keep the
			// raw text; no component interprets the arguments today.
			var raw strings.Builder
			depth := 0
			for {
				t := s.cur()
				if t.kind == tokEOF {
					return nil, s.errAt(t, "unterminated extended attribute arguments")
				}
				if t.kind == tokPunct && t.text == "(" {
					depth++
				}
				if t.kind == tokPunct && t.text == ")" {
					depth--
				}
				raw.WriteString(t.text)
				s.advance()
				if depth == 0 {
					break
				}
			}
			attr.Value = raw.String()
		}
		attrs = append(attrs, attr)

		if s.isPunct(",") {
			s.advance()
			continue
		}
		break
	}
	if err := s.expectPunct("]"); err != nil {
		return nil, err
	}
	return attrs, nil
}

// topLevelParen returns the index of the first depth-zero "(" or -1. Angle
// brackets are not tracked here; a "(" can only open an argument list.
func topLevelParen(toks []token) int {
	for i, t := range toks {
		if t.kind == tokPunct && t.text == "(" {
			return i
		}
	}
	return -1
}

func memberErr(t token, format string, args ...interface{}) error {
	return &ParseError{Line: t.line, Col: t.col, Msg: fmt.Sprintf(format, args...)}
}
