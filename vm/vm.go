package vm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// State is the machine's run state: running, halted, or errored.
type State int

const (
	StateRunning State = iota
	StateHalted
	StateError
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateHalted:
		return "halted"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// TickInterval is the pacing delay between Run's instruction steps,
// matching the original main loop's spin_sleep::sleep(Duration::
// from_nanos(100)).
const TickInterval = 100 * time.Nanosecond

// VM wraps a CPU and its bus with a run-state machine. Step returns a
// wrapped error and also records it on the machine so a caller
// inspecting state after a failed Run can see why it stopped.
type VM struct {
	CPU   *CPU
	Bus   *Bus
	State State

	Cycles   uint64
	LastErr  error
}

// New builds a VM wired to the given port list.
func New(ports []Port) *VM {
	bus := NewBus(ports)
	return &VM{CPU: NewCPU(bus), Bus: bus, State: StateRunning}
}

// Step executes exactly one instruction. It is a no-op returning nil
// once the machine has left StateRunning; callers that want to re-arm
// a halted/errored machine should build a fresh VM instead of
// resetting state out from under stale device handles.
func (m *VM) Step() error {
	if m.State != StateRunning {
		return nil
	}

	err := m.CPU.Execute()
	m.Cycles++

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrHalt):
		m.State = StateHalted
		return nil
	default:
		m.State = StateError
		wrapped := fmt.Errorf("step %d at ip=0x%02x: %w", m.Cycles, m.CPU.IP, err)
		m.LastErr = wrapped
		return wrapped
	}
}

// Run steps the machine until it halts, errors, or ctx is canceled,
// pacing each step by TickInterval the way the original's main loop
// paces with spin_sleep.
func (m *VM) Run(ctx context.Context) error {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	for {
		if m.State != StateRunning {
			return m.LastErr
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := m.Step(); err != nil {
				return err
			}
		}
	}
}

// Snapshot is a point-in-time, side-effect-free view of the machine
// for the post-halt inspector: register values and a full memory dump
// built from Peek, never Read, so inspecting the machine cannot alter
// it.
type Snapshot struct {
	Rx, Ry, Rz byte
	IP         byte
	Stack      []byte
	Memory     [256]byte
	State      State
	Cycles     uint64
}

// Snapshot captures the machine's current state.
func (m *VM) Snapshot() Snapshot {
	stack := make([]byte, len(m.CPU.Stack))
	copy(stack, m.CPU.Stack)

	return Snapshot{
		Rx:     m.CPU.Rx,
		Ry:     m.CPU.Ry,
		Rz:     m.CPU.Rz,
		IP:     m.CPU.IP,
		Stack:  stack,
		Memory: m.Bus.Peek(),
		State:  m.State,
		Cycles: m.Cycles,
	}
}
