package asm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zorby-dev/poc/diag"
	"github.com/Zorby-dev/poc/source"
)

func assembleString(t *testing.T, text string, imageSize *int) ([]byte, *diag.Bag) {
	t.Helper()
	src := source.New("test.asm", text)
	return Assemble(src, imageSize)
}

func TestAssembleHelloHalt(t *testing.T) {
	size := 4
	image, bag := assembleString(t, "put rx,72\nhlt\n", &size)
	require.False(t, bag.HasErrors())
	assert.Equal(t, []byte{0x01, 72, 0x03, 0x00}, image)
}

func TestAssembleResolvesLabel(t *testing.T) {
	size := 6
	image, bag := assembleString(t, "start:\nnop\njmp start\nhlt\n", &size)
	require.False(t, bag.HasErrors())
	// nop(1) then jmp<im>(2) referencing label at address 0, then hlt
	assert.Equal(t, []byte{0x00, 0x09, 0x00, 0x03, 0x00, 0x00}, image)
}

func TestAssembleExpandsMacro(t *testing.T) {
	size := 2
	image, bag := assembleString(t, "%define GREETING 65\nput rx,GREETING\n", &size)
	require.False(t, bag.HasErrors())
	assert.Equal(t, []byte{0x01, 65}, image)
}

func TestAssembleConditionalIncludeSkipsDefinedBody(t *testing.T) {
	size := 1
	image, bag := assembleString(t,
		"%define SKIP 1\n%ifndef SKIP\nnop\n%end\nhlt\n", &size)
	require.False(t, bag.HasErrors())
	assert.Equal(t, []byte{0x03}, image)
}

func TestAssembleDuplicateLabelIsError(t *testing.T) {
	size := 4
	_, bag := assembleString(t, "start:\nnop\nstart:\nhlt\n", &size)
	require.True(t, bag.HasErrors())
	assert.Equal(t, diag.KindDuplicateLabel, bag.Errors[0].Kind)
}

func TestAssembleArityMismatchIsError(t *testing.T) {
	size := 4
	_, bag := assembleString(t, "hlt rx\n", &size)
	require.True(t, bag.HasErrors())
	assert.Equal(t, diag.KindWrongArity, bag.Errors[0].Kind)
}

func TestAssembleWrongArgumentKindIsError(t *testing.T) {
	size := 4
	_, bag := assembleString(t, "inc 5\n", &size)
	require.True(t, bag.HasErrors())
	assert.Equal(t, diag.KindWrongArgumentKind, bag.Errors[0].Kind)
}

func TestAssembleUnusedLabelWarns(t *testing.T) {
	size := 1
	_, bag := assembleString(t, "start:\nhlt\n", &size)
	require.False(t, bag.HasErrors())
	require.Len(t, bag.Warnings, 1)
	assert.Equal(t, diag.KindUnusedLabel, bag.Warnings[0].Kind)
}

func TestAssembleProgramExceedsImageIsError(t *testing.T) {
	size := 1
	_, bag := assembleString(t, "hlt\nhlt\n", &size)
	require.True(t, bag.HasErrors())
	assert.Equal(t, diag.KindProgramExceedsImage, bag.Errors[0].Kind)
}

func TestAssemblePadsShortProgram(t *testing.T) {
	size := 3
	image, bag := assembleString(t, "hlt\n", &size)
	require.False(t, bag.HasErrors())
	assert.Equal(t, []byte{0x03, 0x00, 0x00}, image)
}

func TestAssembleUnboundedImageSkipsPadding(t *testing.T) {
	image, bag := assembleString(t, "hlt\n", nil)
	require.False(t, bag.HasErrors())
	assert.Equal(t, []byte{0x03}, image)
}
