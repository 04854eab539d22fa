package asm

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed instructions.json
var instructionsJSON []byte

// Argument names one instruction operand position: a fixed register
// or an immediate byte operand.
type Argument int

const (
	ArgRx Argument = iota
	ArgRy
	ArgRz
	ArgIm
)

func (a Argument) displayName() string {
	switch a {
	case ArgRx:
		return "'rx'"
	case ArgRy:
		return "'ry'"
	case ArgRz:
		return "'rz'"
	default:
		return "<immediate>"
	}
}

func (a Argument) assemblyName() string {
	switch a {
	case ArgRx:
		return "rx"
	case ArgRy:
		return "ry"
	case ArgRz:
		return "rz"
	default:
		return "<im>"
	}
}

// Signature is one opcode encoding for a mnemonic: its argument shape
// and the single byte emitted for it.
type Signature struct {
	Arguments []Argument
	Code      byte
}

// Instruction is the full set of signatures sharing one mnemonic.
type Instruction struct {
	Signatures []Signature
}

// Table is the mnemonic -> Instruction opcode table, loaded once from
// the embedded instructions.json (the Go analogue of the original's
// lazy_static HashMap parsed from include_str!("instructions.json")).
type Table map[string]Instruction

type jsonSignature struct {
	Arguments []string `json:"arguments"`
	Code      byte     `json:"code"`
}

type jsonInstruction struct {
	Signatures []jsonSignature `json:"signatures"`
}

func argumentFromJSON(s string) (Argument, error) {
	switch s {
	case "rx":
		return ArgRx, nil
	case "ry":
		return ArgRy, nil
	case "rz":
		return ArgRz, nil
	case "im":
		return ArgIm, nil
	default:
		return 0, fmt.Errorf("instructions.json: unknown argument kind %q", s)
	}
}

// Instructions is the parsed, validated instruction table shared by
// the signature resolver, assembler, and disassembly helper.
var Instructions = mustLoadTable()

func mustLoadTable() Table {
	var raw map[string]jsonInstruction
	if err := json.Unmarshal(instructionsJSON, &raw); err != nil {
		panic(fmt.Errorf("instructions.json: %w", err))
	}

	table := make(Table, len(raw))
	seen := make(map[byte]string)

	for mnemonic, inst := range raw {
		converted := Instruction{}
		for _, sig := range inst.Signatures {
			args := make([]Argument, len(sig.Arguments))
			for i, a := range sig.Arguments {
				arg, err := argumentFromJSON(a)
				if err != nil {
					panic(err)
				}
				args[i] = arg
			}

			if owner, ok := seen[sig.Code]; ok {
				panic(fmt.Errorf("instructions.json: opcode 0x%02x used by both %q and %q", sig.Code, owner, mnemonic))
			}
			seen[sig.Code] = mnemonic

			converted.Signatures = append(converted.Signatures, Signature{Arguments: args, Code: sig.Code})
		}
		table[mnemonic] = converted
	}

	return table
}

// FormatInstructionCode renders the mnemonic + argument-name form of an
// opcode byte, e.g. 0x01 -> "put rx,<im>". Returns ok=false for any
// byte not assigned to an instruction. This is the Go counterpart of
// the original signature::format_instruction_code, used for
// disassembly-style lookups.
func FormatInstructionCode(code byte) (string, bool) {
	for mnemonic, inst := range Instructions {
		for _, sig := range inst.Signatures {
			if sig.Code == code {
				names := make([]string, len(sig.Arguments))
				for i, a := range sig.Arguments {
					names[i] = a.assemblyName()
				}
				if len(names) == 0 {
					return mnemonic, true
				}
				out := mnemonic
				for i, n := range names {
					if i == 0 {
						out += " " + n
					} else {
						out += "," + n
					}
				}
				return out, true
			}
		}
	}
	return "", false
}
