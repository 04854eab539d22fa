// Package diag implements structured diagnostics (errors and warnings)
// with source-span code snippets, notes, and a plain-text formatter.
// Multi-snippet, caret-anchored rendering with ANSI coloring left out
// entirely; diagnostic color styling is out of scope for this module.
package diag

import (
	"fmt"
	"strings"

	"github.com/Zorby-dev/poc/source"
)

// Kind enumerates the diagnostic taxonomy: lexical, preprocessor,
// parse, semantic, and warning diagnostics.
type Kind int

const (
	// Lexical
	KindInvalidRadix Kind = iota
	KindEmptyNumber
	KindInvalidDigit
	KindNumberOverflow
	KindSignedNotSupported
	KindCharacterOutOfRange
	KindUnterminatedString
	KindIllegalCharacter

	// Preprocessor
	KindMissingMacroName
	KindUnknownMacro
	KindExpectedStringPath
	KindFileNotFound
	KindExpectedIdentifier
	KindTrailingTokensAfterDirective
	KindMacroRecursionTooDeep

	// Parse
	KindExpectedArgument
	KindExpectedStatement

	// Semantic
	KindUnknownInstruction
	KindWrongArity
	KindWrongArgumentKind
	KindUndeclaredLabel
	KindDuplicateLabel
	KindStringAsImmediate
	KindProgramExceedsImage

	// Warnings
	KindUnusedLabel
)

var kindNames = map[Kind]string{
	KindInvalidRadix:                 "invalid-radix",
	KindEmptyNumber:                  "empty-number",
	KindInvalidDigit:                 "invalid-digit",
	KindNumberOverflow:               "number-overflow",
	KindSignedNotSupported:           "signed-not-supported",
	KindCharacterOutOfRange:          "character-out-of-range",
	KindUnterminatedString:           "unterminated-string",
	KindIllegalCharacter:             "illegal-character",
	KindMissingMacroName:             "missing-macro-name",
	KindUnknownMacro:                 "unknown-macro",
	KindExpectedStringPath:           "expected-string-path",
	KindFileNotFound:                 "file-not-found",
	KindExpectedIdentifier:           "expected-identifier",
	KindTrailingTokensAfterDirective: "trailing-tokens-after-directive",
	KindMacroRecursionTooDeep:        "macro-recursion-too-deep",
	KindExpectedArgument:             "expected-argument",
	KindExpectedStatement:            "expected-statement",
	KindUnknownInstruction:           "unknown-instruction",
	KindWrongArity:                   "wrong-arity",
	KindWrongArgumentKind:            "wrong-argument-kind",
	KindUndeclaredLabel:              "undeclared-label",
	KindDuplicateLabel:               "duplicate-label",
	KindStringAsImmediate:            "string-as-immediate",
	KindProgramExceedsImage:          "program-exceeds-image",
	KindUnusedLabel:                  "unused-label",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Severity distinguishes errors from warnings.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) label() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// snippet is one code-span attachment on a Message.
type snippet struct {
	description string
	span        source.Span
}

// Message is a single diagnostic: a headline, zero or more code
// snippets, and an optional trailing note.
type Message struct {
	Kind     Kind
	Severity Severity
	Text     string
	snippets []snippet
	note     string
}

// Error builds a new error-severity message.
func Error(kind Kind, text string) *Message {
	return &Message{Kind: kind, Severity: SeverityError, Text: text}
}

// Warning builds a new warning-severity message.
func Warning(kind Kind, text string) *Message {
	return &Message{Kind: kind, Severity: SeverityWarning, Text: text}
}

// WithCode attaches a code snippet describing span, underlined with
// description.
func (m *Message) WithCode(description string, span source.Span) *Message {
	m.snippets = append(m.snippets, snippet{description: description, span: span})
	return m
}

// WithNote attaches a trailing note line.
func (m *Message) WithNote(note string) *Message {
	m.note = note
	return m
}

// Error implements the error interface so a *Message can be returned
// and compared like any other Go error.
func (m *Message) Error() string {
	var b strings.Builder
	m.Format(&b)
	return b.String()
}

// Format writes the full diagnostic layout: headline, one ruled block
// per code snippet (gutter, underlined source line, caret-style
// description), and an optional note line.
func (m *Message) Format(w *strings.Builder) {
	fmt.Fprintf(w, "%s: %s\n", m.Severity.label(), m.Text)

	gutter := 0
	for _, snip := range m.snippets {
		if n := len(fmt.Sprintf("%d", snip.span.Row())); n > gutter {
			gutter = n
		}
	}

	for _, snip := range m.snippets {
		formatSnippet(w, snip, gutter)
	}

	if m.note != "" {
		fmt.Fprintf(w, "note: %s\n", m.note)
	}
}

func formatSnippet(w *strings.Builder, snip snippet, gutter int) {
	row := snip.span.Row()
	col := snip.span.Column()
	rowStr := fmt.Sprintf("%d", row)
	pad := strings.Repeat(" ", gutter-len(rowStr))

	line := snip.span.RowText()
	before, mid, after := splitAtSpan(line, col, snip.span.End-snip.span.Begin)

	fmt.Fprintf(w, "  --> %s:%d:%d\n", snip.span.Source.Path, row, col)
	fmt.Fprintf(w, "%s%s | %s%s%s\n", pad, rowStr, before, mid, after)
	fmt.Fprintf(w, "%s | %s%s %s\n",
		strings.Repeat(" ", gutter), strings.Repeat(" ", len(before)),
		strings.Repeat("^", max(1, len(mid))), snip.description)
}

func splitAtSpan(line string, col, width int) (before, mid, after string) {
	idx := col - 1
	if idx < 0 {
		idx = 0
	}
	if idx > len(line) {
		idx = len(line)
	}
	endIdx := idx + width
	if endIdx > len(line) {
		endIdx = len(line)
	}
	if endIdx < idx {
		endIdx = idx
	}
	return line[:idx], line[idx:endIdx], line[endIdx:]
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Bag collects diagnostics accumulated across a pipeline stage.
type Bag struct {
	Errors   []*Message
	Warnings []*Message
}

// Add appends a message, routing it to Errors or Warnings by severity.
func (b *Bag) Add(m *Message) {
	if m.Severity == SeverityWarning {
		b.Warnings = append(b.Warnings, m)
	} else {
		b.Errors = append(b.Errors, m)
	}
}

// AddAll merges another bag's contents into this one.
func (b *Bag) AddAll(other *Bag) {
	if other == nil {
		return
	}
	b.Errors = append(b.Errors, other.Errors...)
	b.Warnings = append(b.Warnings, other.Warnings...)
}

// HasErrors reports whether any error-severity message was collected.
func (b *Bag) HasErrors() bool {
	return len(b.Errors) > 0
}

// Error implements the error interface for a bag of errors.
func (b *Bag) Error() string {
	var sb strings.Builder
	for _, e := range b.Errors {
		e.Format(&sb)
	}
	return sb.String()
}

// FormatAll writes every error then every warning, in collection order.
func (b *Bag) FormatAll(w *strings.Builder) {
	for _, e := range b.Errors {
		e.Format(w)
	}
	for _, wmsg := range b.Warnings {
		wmsg.Format(w)
	}
}

// Summary renders the final "error: could not compile ..." line.
func Summary(inputPath string, errorCount int) string {
	return fmt.Sprintf("error: could not compile '%s' due to previous %s\n",
		inputPath, HumanCount("error", errorCount))
}

// HumanCount pluralizes "N word" / "N words".
func HumanCount(word string, count int) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, word)
	}
	return fmt.Sprintf("%d %ss", count, word)
}
