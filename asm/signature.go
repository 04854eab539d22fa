package asm

// ParseArguments maps a raw argument token list to its Argument shape:
// the words "rx"/"ry"/"rz" select the matching register, anything
// else (a bare word, a character, a number, or a string) is treated as
// an immediate. This mirrors the original signature::parse_arguments;
// unlike it, a String token is accepted here rather than left
// unreachable; the dedicated "strings are not supported as immediate
// values" diagnostic is raised later, when the resolved signature
// tries to actually encode it.
func ParseArguments(tokens []Token) []Argument {
	args := make([]Argument, len(tokens))
	for i, tok := range tokens {
		if tok.Kind == Word {
			switch tok.Text {
			case "rx":
				args[i] = ArgRx
			case "ry":
				args[i] = ArgRy
			case "rz":
				args[i] = ArgRz
			default:
				args[i] = ArgIm
			}
		} else {
			args[i] = ArgIm
		}
	}
	return args
}

// Resolution is the outcome of matching a call-site argument list
// against an instruction's candidate signatures.
type Resolution struct {
	Signature Signature
	Mismatches int
	PerArgMatch []bool
}

// ResolveSignature filters inst's signatures to those with the right
// arity, then picks the one with the fewest per-position argument-kind
// mismatches, keeping the first candidate on ties (a stable reduction,
// matching the original compiler's Iterator::reduce which only
// replaces the accumulator on a strict improvement). ok is false when
// no signature shares the call site's arity.
func ResolveSignature(inst Instruction, args []Argument) (Resolution, bool) {
	var candidates []Signature
	for _, sig := range inst.Signatures {
		if len(sig.Arguments) == len(args) {
			candidates = append(candidates, sig)
		}
	}
	if len(candidates) == 0 {
		return Resolution{}, false
	}

	best := scoreSignature(candidates[0], args)
	for _, sig := range candidates[1:] {
		candidate := scoreSignature(sig, args)
		if candidate.Mismatches < best.Mismatches {
			best = candidate
		}
	}
	return best, true
}

func scoreSignature(sig Signature, args []Argument) Resolution {
	matches := make([]bool, len(args))
	mismatches := 0
	for i, arg := range args {
		matches[i] = sig.Arguments[i] == arg
		if !matches[i] {
			mismatches++
		}
	}
	return Resolution{Signature: sig, Mismatches: mismatches, PerArgMatch: matches}
}

// ArgumentArities returns the distinct argument counts accepted by
// inst's signatures, in first-seen order, for composing a "takes N or
// M arguments" diagnostic.
func ArgumentArities(inst Instruction) []int {
	var arities []int
	seen := make(map[int]bool)
	for _, sig := range inst.Signatures {
		n := len(sig.Arguments)
		if !seen[n] {
			seen[n] = true
			arities = append(arities, n)
		}
	}
	return arities
}
