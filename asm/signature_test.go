package asm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgumentsRegistersAndImmediate(t *testing.T) {
	tokens := []Token{
		{Kind: Word, Text: "rx"},
		{Kind: Word, Text: "ry"},
		{Kind: Word, Text: "rz"},
		{Kind: Number, Byte: 9},
		{Kind: Word, Text: "some_label"},
	}
	args := ParseArguments(tokens)
	assert.Equal(t, []Argument{ArgRx, ArgRy, ArgRz, ArgIm, ArgIm}, args)
}

func TestResolveSignatureExactMatch(t *testing.T) {
	inst := Instructions["put"]
	res, ok := ResolveSignature(inst, []Argument{ArgRx, ArgIm})
	require.True(t, ok)
	assert.Equal(t, 0, res.Mismatches)
	assert.Equal(t, byte(1), res.Signature.Code)
}

func TestResolveSignatureWrongArity(t *testing.T) {
	inst := Instructions["hlt"]
	_, ok := ResolveSignature(inst, []Argument{ArgRx})
	assert.False(t, ok)
}

func TestResolveSignaturePicksFewestMismatches(t *testing.T) {
	inst := Instructions["put"]
	// rz,rz isn't a real signature; nearest same-arity candidates should
	// report exactly one mismatched position against some signature.
	res, ok := ResolveSignature(inst, []Argument{ArgRz, ArgRz})
	require.True(t, ok)
	assert.Equal(t, 1, res.Mismatches)
}

func TestFormatInstructionCodeRoundTrip(t *testing.T) {
	name, ok := FormatInstructionCode(0x03)
	require.True(t, ok)
	assert.Equal(t, "hlt", name)

	name, ok = FormatInstructionCode(0x01)
	require.True(t, ok)
	assert.Equal(t, "put rx,<im>", name)
}

func TestInstructionTableHas64UniqueOpcodes(t *testing.T) {
	seen := make(map[byte]bool)
	for _, inst := range Instructions {
		for _, sig := range inst.Signatures {
			require.False(t, seen[sig.Code], "duplicate opcode 0x%02x", sig.Code)
			seen[sig.Code] = true
		}
	}
	assert.Len(t, seen, 64)
}
