package vm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCPU(program ...byte) *CPU {
	bus := NewBus([]Port{NewPort(0, 256, NewRAM(256, program))})
	return NewCPU(bus)
}

func TestExecutePutLoadsImmediateAndAdvances(t *testing.T) {
	cpu := newTestCPU(0x01, 5) // put rx,5
	err := cpu.Execute()
	require.NoError(t, err)
	assert.Equal(t, byte(5), cpu.Rx)
	assert.Equal(t, byte(2), cpu.IP)
}

func TestExecuteHaltReturnsErrHalt(t *testing.T) {
	cpu := newTestCPU(0x03)
	err := cpu.Execute()
	assert.True(t, errors.Is(err, ErrHalt))
}

func TestExecuteUnknownOpcodeReturnsErrUnimplemented(t *testing.T) {
	cpu := newTestCPU(0xfe)
	err := cpu.Execute()
	var unimpl *ErrUnimplemented
	require.ErrorAs(t, err, &unimpl)
	assert.Equal(t, byte(0xfe), unimpl.Opcode)
}

func TestExecuteArithmeticWrapsModulo256(t *testing.T) {
	cpu := newTestCPU(0x0a) // inc rx
	cpu.Rx = 0xff
	require.NoError(t, cpu.Execute())
	assert.Equal(t, byte(0), cpu.Rx)
}

func TestExecuteSubWrapsOnUnderflow(t *testing.T) {
	cpu := newTestCPU(0x0b) // sub ry,rx
	cpu.Ry = 0
	cpu.Rx = 1
	require.NoError(t, cpu.Execute())
	assert.Equal(t, byte(0xff), cpu.Ry)
}

func TestExecuteNegRzReadsRyNotRz(t *testing.T) {
	// neg rz (0x2d) carries the original's bug forward: it negates ry,
	// not rz, and stores the result into rz.
	cpu := newTestCPU(0x2d)
	cpu.Ry = 5
	cpu.Rz = 100
	require.NoError(t, cpu.Execute())
	assert.Equal(t, byte(0xfb), cpu.Rz) // two's complement of 5
	assert.Equal(t, byte(5), cpu.Ry)    // ry itself is untouched
}

func TestExecuteNegRxAndRyNegateThemselves(t *testing.T) {
	cpu := newTestCPU(0x2b) // neg rx
	cpu.Rx = 1
	require.NoError(t, cpu.Execute())
	assert.Equal(t, byte(0xff), cpu.Rx)

	cpu = newTestCPU(0x2c) // neg ry
	cpu.Ry = 2
	require.NoError(t, cpu.Execute())
	assert.Equal(t, byte(0xfe), cpu.Ry)
}

func TestExecuteJmpImmediateSetsIPWithoutExtraAdvance(t *testing.T) {
	cpu := newTestCPU(0x09, 0x2a) // jmp 0x2a
	require.NoError(t, cpu.Execute())
	assert.Equal(t, byte(0x2a), cpu.IP)
}

func TestExecuteRetPopsStackIntoIPWithNoAdvance(t *testing.T) {
	cpu := newTestCPU(0x2e) // ret
	cpu.push(0x10)
	require.NoError(t, cpu.Execute())
	assert.Equal(t, byte(0x10), cpu.IP)
}

func TestExecutePopOnEmptyStackYieldsZero(t *testing.T) {
	cpu := newTestCPU(0x1b) // pop rx
	require.NoError(t, cpu.Execute())
	assert.Equal(t, byte(0), cpu.Rx)
}

func TestExecuteConditionalJumpTakenWhenZero(t *testing.T) {
	cpu := newTestCPU(0x07, 0x50) // jpz 0x50,rx
	cpu.Rx = 0
	require.NoError(t, cpu.Execute())
	assert.Equal(t, byte(0x50), cpu.IP)
}

func TestExecuteConditionalJumpSkippedWhenNonZero(t *testing.T) {
	cpu := newTestCPU(0x07, 0x50) // jpz 0x50,rx
	cpu.Rx = 1
	require.NoError(t, cpu.Execute())
	assert.Equal(t, byte(2), cpu.IP)
}
