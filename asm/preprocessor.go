package asm

import (
	"os"
	"path/filepath"

	"github.com/Zorby-dev/poc/diag"
	"github.com/Zorby-dev/poc/source"
)

// MaxMacroDepth bounds recursive %include / macro-expansion nesting
// with an explicit depth counter (%ifndef bodies are not counted),
// guarding against a
// self-referential macro stack-overflowing the preprocessor.
const MaxMacroDepth = 256

// tokenPayload is a Token stripped of its span, the representation
// %define stores so a macro body can be re-spanned at each call site
// (the original stores Vec<TokenKind> for exactly this reason).
type tokenPayload struct {
	Kind Kind
	Text string
	Byte byte
}

func payloadOf(t Token) tokenPayload {
	return tokenPayload{Kind: t.Kind, Text: t.Text, Byte: t.Byte}
}

func (p tokenPayload) withSpan(span source.Span) Token {
	return Token{Kind: p.Kind, Text: p.Text, Byte: p.Byte, Span: span}
}

// Scope is a lexical macro-symbol environment with a parent chain,
// matching the original's Scope<'a>.
type Scope struct {
	Tokens  []Token
	symbols map[string][]tokenPayload
	parent  *Scope
}

// NewScope creates a scope chained to parent (nil for the root scope).
func NewScope(parent *Scope) *Scope {
	return &Scope{symbols: make(map[string][]tokenPayload), parent: parent}
}

func (s *Scope) getSymbol(name string) ([]tokenPayload, bool) {
	if v, ok := s.symbols[name]; ok {
		return v, true
	}
	if s.parent != nil {
		return s.parent.getSymbol(name)
	}
	return nil, false
}

func (s *Scope) extend(tokens []Token, symbols map[string][]tokenPayload) {
	s.Tokens = append(s.Tokens, tokens...)
	for k, v := range symbols {
		s.symbols[k] = v
	}
}

func (s *Scope) extract() ([]Token, map[string][]tokenPayload) {
	return s.Tokens, s.symbols
}

// preprocessor walks a flat token stream, expanding %include/%define/
// %ifndef/%end directives and macro-word substitutions into scope.
type preprocessor struct {
	tokens  []Token
	pos     int
	current *Token
	depth   *int
	bag     *diag.Bag
}

func newPreprocessor(tokens []Token, depth *int, bag *diag.Bag) *preprocessor {
	p := &preprocessor{tokens: tokens, depth: depth, bag: bag}
	p.advance()
	return p
}

func (p *preprocessor) advance() *Token {
	if p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		p.current = &tok
		p.pos++
	} else {
		p.current = nil
	}
	return p.current
}

// Preprocess runs the full %include/%define/%ifndef/macro expansion
// pass over tokens, accumulating errors and warnings into bag and
// returning the fully-expanded flat token stream.
func Preprocess(tokens []Token, bag *diag.Bag) []Token {
	depth := 0
	scope := NewScope(nil)
	p := newPreprocessor(tokens, &depth, bag)
	p.run(scope)
	return scope.Tokens
}

// run processes tokens into scope until input is exhausted or a
// %end directive closes this (possibly nested, e.g. %ifndef body)
// scope early, matching the original's early "return" on %end.
func (p *preprocessor) run(scope *Scope) {
	for p.current != nil {
		tok := *p.current

		switch tok.Kind {
		case Percent:
			if p.directive(scope, tok) {
				return
			}
		case Word:
			p.wordOrMacro(scope, tok)
		default:
			scope.Tokens = append(scope.Tokens, tok)
			p.advance()
		}
	}
}

func (p *preprocessor) wordOrMacro(scope *Scope, tok Token) {
	if body, ok := scope.getSymbol(tok.Text); ok {
		p.expandMacroBody(scope, tok, body)
	} else {
		scope.Tokens = append(scope.Tokens, tok)
	}
	p.advance()
}

func (p *preprocessor) expandMacroBody(scope *Scope, invocation Token, body []tokenPayload) {
	if !p.enterNested() {
		return
	}
	defer p.leaveNested()

	respanned := make([]Token, len(body))
	for i, payload := range body {
		respanned[i] = payload.withSpan(invocation.Span)
	}

	child := NewScope(scope)
	newPreprocessor(respanned, p.depth, p.bag).run(child)
	tokens, symbols := child.extract()
	scope.extend(tokens, symbols)
}

func (p *preprocessor) enterNested() bool {
	*p.depth++
	if *p.depth > MaxMacroDepth {
		p.bag.Add(diag.Error(diag.KindMacroRecursionTooDeep,
			"macro expansion exceeded the maximum nesting depth"))
		*p.depth--
		return false
	}
	return true
}

func (p *preprocessor) leaveNested() {
	*p.depth--
}

// directive handles one "%..." line. It reports whether this directive
// was %end, which closes the current scope's run() early.
func (p *preprocessor) directive(scope *Scope, percent Token) bool {
	nameTok := p.advance()

	if nameTok == nil {
		p.bag.Add(diag.Error(diag.KindMissingMacroName,
			"macro invocation must include macro name").
			WithCode("expected identifier", source.NewSpan(percent.Span.End, percent.Span.End+1, percent.Span.Source)))
		p.endDirectiveLine()
		return false
	}
	if nameTok.Kind != Word {
		p.bag.Add(diag.Error(diag.KindExpectedIdentifier,
			"expected macro name, found '"+nameTok.Span.Text()+"'").
			WithCode("expected identifier", nameTok.Span))
		p.advance()
		p.endDirectiveLine()
		return false
	}

	name := nameTok.Text
	switch name {
	case "include":
		p.directiveInclude(scope, percent)
	case "define":
		p.directiveDefine(scope)
	case "ifndef":
		p.directiveIfndef(scope)
	case "end":
		p.advance()
		return true
	default:
		p.bag.Add(diag.Error(diag.KindUnknownMacro,
			"use of undeclared macro: '"+name+"'").
			WithCode("unknown macro", nameTok.Span))
		p.advance()
	}

	p.endDirectiveLine()
	return false
}

// endDirectiveLine enforces that a directive line ends at a NewLine or
// EOF, matching the original's trailing check after every directive.
func (p *preprocessor) endDirectiveLine() {
	if p.current == nil {
		return
	}
	if p.current.Kind == NewLine {
		p.advance()
		return
	}
	p.bag.Add(diag.Error(diag.KindTrailingTokensAfterDirective,
		"macro invocations must end with a new line").
		WithCode("expected new line", p.current.Span))
}

func (p *preprocessor) directiveInclude(scope *Scope, percent Token) {
	pathTok := p.advance()
	if pathTok == nil || pathTok.Kind != String {
		if pathTok != nil {
			p.bag.Add(diag.Error(diag.KindExpectedStringPath,
				"expected include path, found "+pathTok.Span.Text()).
				WithCode("expected string", pathTok.Span))
		} else {
			p.bag.Add(diag.Error(diag.KindExpectedStringPath,
				"'%include' must be supplied with include path"))
		}
		return
	}

	includePath := filepath.Join(filepath.Dir(percent.Span.Source.Path), pathTok.Text)
	p.advance()

	text, err := os.ReadFile(includePath)
	if err != nil {
		p.bag.Add(diag.Error(diag.KindFileNotFound,
			"no such file: "+includePath).
			WithCode("invalid include path", pathTok.Span))
		return
	}

	if !p.enterNested() {
		return
	}
	defer p.leaveNested()

	childSrc := source.New(includePath, string(text))
	childTokens, lexBag := Lex(childSrc)
	p.bag.AddAll(lexBag)

	childScope := NewScope(scope)
	newPreprocessor(childTokens, p.depth, p.bag).run(childScope)
	tokens, symbols := childScope.extract()
	scope.extend(tokens, symbols)
}

func (p *preprocessor) directiveDefine(scope *Scope) {
	symTok := p.advance()
	if symTok == nil || symTok.Kind != Word {
		if symTok != nil {
			p.bag.Add(diag.Error(diag.KindExpectedIdentifier,
				"expected symbol, found '"+symTok.Span.Text()+"'").
				WithCode("expected identifier", symTok.Span))
		} else {
			p.bag.Add(diag.Error(diag.KindExpectedIdentifier,
				"'%define' must be supplied with symbol"))
		}
		return
	}
	symbol := symTok.Text

	var definition []tokenPayload
	p.advance()

	for p.current != nil {
		switch p.current.Kind {
		case Backslash:
			p.advance()
			if p.current != nil {
				definition = append(definition, payloadOf(*p.current))
				p.advance()
			}
		case NewLine:
			scope.symbols[symbol] = definition
			return
		default:
			definition = append(definition, payloadOf(*p.current))
			p.advance()
		}
	}

	scope.symbols[symbol] = definition
}

func (p *preprocessor) directiveIfndef(scope *Scope) {
	symTok := p.advance()
	if symTok == nil || symTok.Kind != Word {
		if symTok != nil {
			p.bag.Add(diag.Error(diag.KindExpectedIdentifier,
				"expected symbol, found '"+symTok.Span.Text()+"'").
				WithCode("expected identifier", symTok.Span))
		} else {
			p.bag.Add(diag.Error(diag.KindExpectedIdentifier,
				"'%ifndef' must be supplied with symbol"))
		}
		return
	}
	symbol := symTok.Text
	p.advance()

	// The body is always syntactically preprocessed into a child scope
	// regardless of whether symbol ends up defined; only at %end do we
	// decide whether to keep its contribution. This matches the
	// original, which parses disabled branches rather than skipping
	// their tokens outright.
	child := NewScope(scope)
	p.run(child)

	if _, defined := scope.getSymbol(symbol); !defined {
		tokens, symbols := child.extract()
		scope.extend(tokens, symbols)
	}
}
