package asm

import (
	"github.com/Zorby-dev/poc/diag"
	"github.com/Zorby-dev/poc/source"
)

// label records a declared label's address and source span, plus
// whether any instruction has referenced it. The original tracks
// "used" via a Deref side effect on every lookup (UsedMarker); this
// sets Used explicitly in immediate() instead, which is more legible in Go
// and doesn't depend on read access implying a mutation.
type label struct {
	Address byte
	Span    source.Span
	Used    bool
}

// Assembler performs the two-pass assembly compile.rs implements:
// a declaration pass that assigns label addresses from naive
// arg-count instruction sizing, and an emit pass that resolves
// symbols and writes the final byte image.
type Assembler struct {
	program []Node
	symbols map[string]*label
	cursor  int
	output  []byte
}

// NewAssembler prepares an Assembler over an already-parsed program.
func NewAssembler(program []Node) *Assembler {
	return &Assembler{program: program, symbols: make(map[string]*label)}
}

// DeclarationPass computes every label's address without validating
// instruction signatures: each instruction contributes 1 (opcode) plus
// one byte per immediate-shaped argument (parsed structurally, not
// matched against the instruction table), each bare Value contributes
// 1, and a Label contributes 0 but records its address. A label
// redefinition is an error, not a warning.
func (a *Assembler) DeclarationPass(bag *diag.Bag) {
	cursor := 0

	for _, node := range a.program {
		switch node.Kind {
		case NodeInstruction:
			args := ParseArguments(node.Arguments)
			size := 1
			for _, arg := range args {
				if arg == ArgIm {
					size++
				}
			}
			cursor += size

		case NodeValue:
			cursor++

		case NodeLabel:
			name := node.Name.Value
			if previous, ok := a.symbols[name]; ok {
				bag.Add(diag.Error(diag.KindDuplicateLabel,
					"redefinition of label '"+name+"'").
					WithCode("already defined", node.Name.Span).
					WithCode("previously defined here", previous.Span))
				continue
			}
			a.symbols[name] = &label{Address: byte(cursor), Span: node.Name.Span}
		}
	}
}

// immediate resolves a single argument token to its byte value: a
// literal Number/Character is used directly, a Word looks up (and
// marks used) a declared label, and a String is rejected.
func (a *Assembler) immediate(tok Token, bag *diag.Bag) (byte, bool) {
	switch tok.Kind {
	case Number, Character:
		return tok.Byte, true
	case Word:
		sym, ok := a.symbols[tok.Text]
		if !ok {
			bag.Add(diag.Error(diag.KindUndeclaredLabel,
				"use of undeclared label: '"+tok.Text+"'").
				WithCode("unknown label", tok.Span))
			return 0, false
		}
		sym.Used = true
		return sym.Address, true
	case String:
		bag.Add(diag.Error(diag.KindStringAsImmediate,
			"usage of strings as immediate values is currently not supported").
			WithCode("unsupported value", tok.Span))
		return 0, false
	default:
		return 0, false
	}
}

func (a *Assembler) write(b byte) {
	a.output = append(a.output, b)
	a.cursor++
}

func (a *Assembler) compileInstruction(node Node, bag *diag.Bag) {
	switch node.Kind {
	case NodeInstruction:
		inst, ok := Instructions[node.Name.Value]
		if !ok {
			bag.Add(diag.Error(diag.KindUnknownInstruction,
				"use of invalid instruction: '"+node.Name.Value+"' does not exist").
				WithCode("unknown instruction", node.Name.Span))
			return
		}

		argsSig := ParseArguments(node.Arguments)
		resolution, ok := ResolveSignature(inst, argsSig)
		if !ok {
			arities := ArgumentArities(inst)
			bag.Add(diag.Error(diag.KindWrongArity,
				wrongArityMessage(node.Name.Value, arities, len(argsSig))).
				WithCode("wrong number of arguments", node.Name.Span))
			return
		}

		if resolution.Mismatches != 0 {
			for i, matched := range resolution.PerArgMatch {
				if matched {
					continue
				}
				bag.Add(diag.Error(diag.KindWrongArgumentKind,
					"expected argument "+resolution.Signature.Arguments[i].displayName()+
						", found "+argumentDisplayName(argsSig[i])).
					WithCode("wrong argument", node.Arguments[i].Span))
			}
			return
		}

		a.write(resolution.Signature.Code)
		for i, argKind := range argsSig {
			if argKind != ArgIm {
				continue
			}
			value, ok := a.immediate(node.Arguments[i], bag)
			if !ok {
				continue
			}
			a.write(value)
		}

	case NodeValue:
		value, ok := a.immediate(node.Value, bag)
		if !ok {
			return
		}
		a.write(value)

	case NodeLabel:
		// contributes no bytes
	}
}

func argumentDisplayName(a Argument) string {
	return a.displayName()
}

func wrongArityMessage(name string, arities []int, got int) string {
	var want string
	if len(arities) == 1 {
		want = diag.HumanCount("argument", arities[0])
	} else {
		want = ""
		for i, n := range arities {
			if i > 0 {
				want += " or "
			}
			want += diag.HumanCount("argument", n)
		}
	}
	return "instruction '" + name + "' takes " + want + ", but " + diag.HumanCount("argument", got) + " were supplied"
}

// Emit runs the emit pass over the program, writing opcode and
// immediate bytes, then reports unused-label warnings and pads or
// flags an oversized image against imageSize (a nil imageSize skips
// the padding/overflow check entirely, matching an un-sized `%include`
// style build with no fixed output length).
func (a *Assembler) Emit(imageSize *int, bag *diag.Bag) []byte {
	a.cursor = 0
	a.output = nil

	for _, node := range a.program {
		a.compileInstruction(node, bag)
	}

	for name, sym := range a.symbols {
		if !sym.Used {
			bag.Add(diag.Warning(diag.KindUnusedLabel,
				"label '"+name+"' is never used").
				WithCode("unused label", sym.Span))
		}
	}

	if imageSize == nil {
		return a.output
	}

	size := *imageSize
	if a.cursor > size {
		bag.Add(diag.Error(diag.KindProgramExceedsImage,
			"program ("+diag.HumanCount("byte", a.cursor)+") does not fit inside image ("+
				diag.HumanCount("byte", size)+")!"))
		return nil
	}
	if a.cursor < size {
		padding := make([]byte, size-a.cursor)
		a.output = append(a.output, padding...)
	}

	return a.output
}

// Assemble runs the complete pipeline (lex, preprocess, parse,
// declaration pass, emit pass) over src, matching the original
// compiler::compile top-level entry point. imageSize is nil for an
// unbounded image. Returns the final byte image and every diagnostic
// collected; callers must check bag.HasErrors() before trusting image.
func Assemble(src *source.Source, imageSize *int) ([]byte, *diag.Bag) {
	bag := &diag.Bag{}

	tokens, lexBag := Lex(src)
	bag.AddAll(lexBag)
	if bag.HasErrors() {
		return nil, bag
	}

	expanded := Preprocess(tokens, bag)
	if bag.HasErrors() {
		return nil, bag
	}

	nodes := Parse(expanded, bag)
	if bag.HasErrors() {
		return nil, bag
	}

	asmr := NewAssembler(nodes)
	asmr.DeclarationPass(bag)
	if bag.HasErrors() {
		return nil, bag
	}

	image := asmr.Emit(imageSize, bag)
	return image, bag
}
