package vm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVM(program ...byte) *VM {
	ram := NewRAM(256, program)
	return New([]Port{NewPort(0, 256, ram)})
}

func TestStepExecutesOneInstructionAndCountsCycles(t *testing.T) {
	m := newTestVM(0x01, 7, 0x03) // put rx,7 ; hlt
	require.NoError(t, m.Step())
	assert.Equal(t, byte(7), m.CPU.Rx)
	assert.Equal(t, uint64(1), m.Cycles)
	assert.Equal(t, StateRunning, m.State)
}

func TestStepTransitionsToHalted(t *testing.T) {
	m := newTestVM(0x03)
	require.NoError(t, m.Step())
	assert.Equal(t, StateHalted, m.State)
}

func TestStepIsNoopOnceHalted(t *testing.T) {
	m := newTestVM(0x03)
	require.NoError(t, m.Step())
	require.NoError(t, m.Step())
	assert.Equal(t, uint64(1), m.Cycles)
}

func TestStepOnUnimplementedOpcodeSetsErrorState(t *testing.T) {
	m := newTestVM(0xfe)
	err := m.Step()
	require.Error(t, err)
	assert.Equal(t, StateError, m.State)
	assert.Equal(t, err, m.LastErr)
}

func TestRunStepsUntilHalt(t *testing.T) {
	m := newTestVM(0x0a, 0x0a, 0x03) // inc rx ; inc rx ; hlt
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := m.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateHalted, m.State)
	assert.Equal(t, byte(2), m.CPU.Rx)
}

func TestRunStopsOnContextCancellation(t *testing.T) {
	m := newTestVM(0x00, 0x00) // nop forever, never halts
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := m.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSnapshotReflectsStateWithoutMutating(t *testing.T) {
	m := newTestVM(0x13, 9) // psh 9
	require.NoError(t, m.Step())

	snap := m.Snapshot()
	assert.Equal(t, []byte{9}, snap.Stack)
	assert.Equal(t, byte(0x13), snap.Memory[0])
	assert.Equal(t, StateRunning, snap.State)
	assert.Equal(t, uint64(1), snap.Cycles)
}
