package asm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zorby-dev/poc/diag"
	"github.com/Zorby-dev/poc/source"
)

func parseString(t *testing.T, text string) ([]Node, *diag.Bag) {
	t.Helper()
	src := source.New("test.asm", text)
	tokens, bag := Lex(src)
	require.False(t, bag.HasErrors())
	expanded := Preprocess(tokens, bag)
	require.False(t, bag.HasErrors())
	nodes := Parse(expanded, bag)
	return nodes, bag
}

func TestParseInstructionWithArguments(t *testing.T) {
	nodes, bag := parseString(t, "put rx,1\n")
	require.False(t, bag.HasErrors())
	require.Len(t, nodes, 1)

	node := nodes[0]
	assert.Equal(t, NodeInstruction, node.Kind)
	assert.Equal(t, "put", node.Name.Value)
	require.Len(t, node.Arguments, 2)
	assert.Equal(t, "rx", node.Arguments[0].Text)
	assert.Equal(t, byte(1), node.Arguments[1].Byte)
}

func TestParseLabel(t *testing.T) {
	nodes, bag := parseString(t, "start:\nhlt\n")
	require.False(t, bag.HasErrors())
	require.Len(t, nodes, 2)
	assert.Equal(t, NodeLabel, nodes[0].Kind)
	assert.Equal(t, "start", nodes[0].Name.Value)
	assert.Equal(t, NodeInstruction, nodes[1].Kind)
}

func TestParseBareValue(t *testing.T) {
	nodes, bag := parseString(t, "42\n")
	require.False(t, bag.HasErrors())
	require.Len(t, nodes, 1)
	assert.Equal(t, NodeValue, nodes[0].Kind)
	assert.Equal(t, byte(42), nodes[0].Value.Byte)
}

func TestParseTrailingCommaTolerated(t *testing.T) {
	nodes, bag := parseString(t, "put rx,1,\n")
	require.False(t, bag.HasErrors())
	require.Len(t, nodes, 1)
	assert.Len(t, nodes[0].Arguments, 2)
}

func TestParseUnexpectedCommaIsSyntaxError(t *testing.T) {
	_, bag := parseString(t, "put ,rx\n")
	require.True(t, bag.HasErrors())
	assert.Equal(t, diag.KindExpectedArgument, bag.Errors[0].Kind)
}
