package idl

import (
	"strings"
	"unicode"
)

type tokKind int

const (
	tokEOF tokKind = iota
	tokIdent
	tokNumber
	tokString
	tokPunct
)

type token struct {
	kind tokKind
	text string
	line int
	col  int
}

// lex tokenizes the whole input up front. Line and column are 1-based.
// Comments (// and /* */) and whitespace separate tokens and are discarded.
func lex(src string) ([]token, error) {
	var toks []token
	runes := []rune(src)
	line, col := 1, 1
	i := 0

	advance := func(n int) {
		for ; n > 0; n-- {
			if runes[i] == '\n' {
				line++
				col = 1
			} else {
				col++
			}
			i++
		}
	}

	for i < len(runes) {
		r := runes[i]

		switch {
		case r == ' ' || r == '\t' || r == '\r' || r == '\n':
			advance(1)

		case r == '/' && i+1 < len(runes) && runes[i+1] == '/':
			for i < len(runes) && runes[i] != '\n' {
				advance(1)
			}

		case r == '/' && i+1 < len(runes) && runes[i+1] == '*':
			startLine, startCol := line, col
			advance(2)
			closed := false
			for i < len(runes) {
				if runes[i] == '*' && i+1 < len(runes) && runes[i+1] == '/' {
					advance(2)
					closed = true
					break
				}
				advance(1)
			}
			if !closed {
				return nil, &ParseError{Line: startLine, Col: startCol, Msg: "unterminated block comment"}
			}

		case r == '"':
			startLine, startCol := line, col
			advance(1)
			var sb strings.Builder
			closed := false
			for i < len(runes) {
				if runes[i] == '"' {
					advance(1)
					closed = true
					break
				}
				if runes[i] == '\n' {
					break
				}
				sb.WriteRune(runes[i])
				advance(1)
			}
			if !closed {
				return nil, &ParseError{Line: startLine, Col: startCol, Msg: "unterminated string literal"}
			}
			toks = append(toks, token{kind: tokString, text: sb.String(), line: startLine, col: startCol})

		case unicode.IsLetter(r) || r == '_':
			startLine, startCol := line, col
			var sb strings.Builder
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				sb.WriteRune(runes[i])
				advance(1)
			}
			toks = append(toks, token{kind: tokIdent, text: sb.String(), line: startLine, col: startCol})

		case unicode.IsDigit(r) || (r == '-' && i+1 < len(runes) && unicode.IsDigit(runes[i+1])):
			startLine, startCol := line, col
			var sb strings.Builder
			if r == '-' {
				sb.WriteRune(r)
				advance(1)
			}
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.' ||
				runes[i] == 'x' || runes[i] == 'X' ||
				(runes[i] >= 'a' && runes[i] <= 'f') || (runes[i] >= 'A' && runes[i] <= 'F')) {
				sb.WriteRune(runes[i])
				advance(1)
			}
			toks = append(toks, token{kind: tokNumber, text: sb.String(), line: startLine, col: startCol})

		case r == '.' && i+2 < len(runes) && runes[i+1] == '.' && runes[i+2] == '.':
			toks = append(toks, token{kind: tokPunct, text: "...", line: line, col: col})
			advance(3)

		default:
			toks = append(toks, token{kind: tokPunct, text: string(r), line: line, col: col})
			advance(1)
		}
	}

	toks = append(toks, token{kind: tokEOF, text: "", line: line, col: col})
	return toks, nil
}

// joinType renders a type token sequence back to canonical text: single
// spaces between adjacent words, none around angle brackets and suffixes,
// so "unsigned long" and "sequence<DOMString>?" both come out right.
// String literals get their quotes back; the lexer stores only the content.
func joinType(toks []token) string {
	var sb strings.Builder
	for idx, t := range toks {
		if idx > 0 && needsSpace(toks[idx-1], t) {
			sb.WriteByte(' ')
		}
		if t.kind == tokString {
			sb.WriteByte('"')
			sb.WriteString(t.text)
			sb.WriteByte('"')
			continue
		}
		sb.WriteString(t.text)
	}
	return sb.String()
}

func needsSpace(prev, cur token) bool {
	wordish := func(t token) bool { return t.kind == tokIdent || t.kind == tokNumber }
	return wordish(prev) && wordish(cur)
}
