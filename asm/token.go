package asm

import "github.com/Zorby-dev/poc/source"

// Kind enumerates the lexical token categories, matching the original
// pasm lexer's TokenKind exactly (Word/Number/Character/String plus
// the five single-character punctuation tokens).
type Kind int

const (
	Word Kind = iota
	Number
	Character
	String
	Comma
	Colon
	Percent
	NewLine
	Backslash
)

func (k Kind) String() string {
	switch k {
	case Word:
		return "word"
	case Number:
		return "number"
	case Character:
		return "character"
	case String:
		return "string"
	case Comma:
		return "','"
	case Colon:
		return "':'"
	case Percent:
		return "'%'"
	case NewLine:
		return "newline"
	case Backslash:
		return "'\\'"
	default:
		return "?"
	}
}

// Token is a single lexical item with its source span. Only the field
// matching Kind is meaningful: Text for Word/String, Byte for
// Number/Character.
type Token struct {
	Kind Kind
	Text string
	Byte byte
	Span source.Span
}
