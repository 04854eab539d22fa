// Package source holds the immutable source buffer and byte-span
// provenance shared by every later stage of the assembler pipeline.
package source

import "fmt"

// Source is an immutable (text, path) pair. Every Span produced while
// processing a file borrows from the same Source by reference.
type Source struct {
	Text string
	Path string
}

// New creates a Source for the given path and text.
func New(path, text string) *Source {
	return &Source{Text: text, Path: path}
}

// Span is a half-open byte range [Begin, End) into a Source.
type Span struct {
	Begin  int
	End    int
	Source *Source
}

// NewSpan creates a Span into the given source.
func NewSpan(begin, end int, src *Source) Span {
	return Span{Begin: begin, End: end, Source: src}
}

// Row returns the 1-based line number of Begin, counted by newlines
// appearing before it in the source text.
func (s Span) Row() int {
	row := 1
	limit := s.Begin
	if limit > len(s.Source.Text) {
		limit = len(s.Source.Text)
	}
	for i := 0; i < limit; i++ {
		if s.Source.Text[i] == '\n' {
			row++
		}
	}
	return row
}

// rowBegin returns the byte offset of the first character of the row
// containing Begin.
func (s Span) rowBegin() int {
	text := s.Source.Text
	limit := s.Begin
	if limit > len(text) {
		limit = len(text)
	}
	begin := 0
	for i := 0; i < limit; i++ {
		if text[i] == '\n' {
			begin = i + 1
		}
	}
	return begin
}

// Column returns the 1-based column number of Begin.
func (s Span) Column() int {
	return s.Begin + 1 - s.rowBegin()
}

// RowText returns the full text of the row containing Begin, excluding
// the trailing newline.
func (s Span) RowText() string {
	text := s.Source.Text
	begin := s.rowBegin()
	end := begin
	for end < len(text) && text[end] != '\n' {
		end++
	}
	return text[begin:end]
}

// Text returns the raw substring this span covers.
func (s Span) Text() string {
	end := s.End
	if end > len(s.Source.Text) {
		end = len(s.Source.Text)
	}
	begin := s.Begin
	if begin > end {
		begin = end
	}
	return s.Source.Text[begin:end]
}

// String implements a "path:line:col" position label.
func (s Span) String() string {
	return fmt.Sprintf("%s:%d:%d", s.Source.Path, s.Row(), s.Column())
}

// WithSpan pairs any value with the span it was produced from, used
// uniformly across the pipeline to carry provenance.
type WithSpan[T any] struct {
	Value T
	Span  Span
}

// Of wraps a value with a span.
func Of[T any](value T, span Span) WithSpan[T] {
	return WithSpan[T]{Value: value, Span: span}
}
