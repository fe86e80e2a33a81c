// Package asm assembles Xenos microcode from its text form.
//
// The grammar is exactly what package disasm emits, so the two are inverses
// over canonical streams: Parse(disasm.Program(p)) reproduces p, and
// Encode(Parse(text)) reproduces the words text was disassembled from.
// Semicolons start comments that run to the end of the line.
package asm

import "fmt"

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNewline
	tokWord
	tokComma
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokPipe
	tokPlus
	tokMinus
	tokBang
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokNewline:
		return "end of line"
	case tokWord:
		return "word"
	case tokComma:
		return "','"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokLBracket:
		return "'['"
	case tokRBracket:
		return "']'"
	case tokPipe:
		return "'|'"
	case tokPlus:
		return "'+'"
	case tokMinus:
		return "'-'"
	case tokBang:
		return "'!'"
	}
	return "unknown token"
}

type token struct {
	kind tokenKind
	text string
	line int
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' || c == '_' || c == '.'
}

// lex splits source into tokens. Words are maximal runs of letters, digits,
// underscores and dots, which keeps swizzle suffixes, format names and
// numbers each in a single token.
func lex(source string) ([]token, error) {
	var toks []token
	line := 1
	for i := 0; i < len(source); {
		c := source[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			i++
		case c == ';':
			for i < len(source) && source[i] != '\n' {
				i++
			}
		case c == '\n':
			toks = append(toks, token{tokNewline, "", line})
			line++
			i++
		case isWordByte(c):
			start := i
			for i < len(source) && isWordByte(source[i]) {
				i++
			}
			toks = append(toks, token{tokWord, source[start:i], line})
		default:
			kind, ok := punctKinds[c]
			if !ok {
				return nil, fmt.Errorf("line %d: unexpected character %q", line, c)
			}
			toks = append(toks, token{kind, string(c), line})
			i++
		}
	}
	toks = append(toks, token{tokNewline, "", line})
	toks = append(toks, token{tokEOF, "", line})
	return toks, nil
}

var punctKinds = map[byte]tokenKind{
	',': tokComma,
	'(': tokLParen,
	')': tokRParen,
	'[': tokLBracket,
	']': tokRBracket,
	'|': tokPipe,
	'+': tokPlus,
	'-': tokMinus,
	'!': tokBang,
}
