// Package loader bridges an assembled byte image into a running
// machine: validating the image against the configured RAM size and
// wiring up the standard port map.
package loader

import (
	"fmt"
	"os"

	"github.com/Zorby-dev/poc/config"
	"github.com/Zorby-dev/poc/vm"
)

// LoadImage reads path and validates its length against ramSize
// exactly, matching the original's load_image, which rejects any
// image that isn't exactly ram_size bytes rather than padding or
// truncating it at load time (padding/truncation is pasm's job, at
// assemble time).
func LoadImage(path string, ramSize int) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: reading %s: %w", path, err)
	}
	if len(data) != ramSize {
		return nil, fmt.Errorf("loader: image %s is %d byte(s), expected exactly %d", path, len(data), ramSize)
	}
	return data, nil
}

// Machine bundles a running VM together with the peripheral handles a
// host/presentation layer needs: the keyboard's shared scancode cell,
// the serial output channel, and the terminal's scrollback device.
type Machine struct {
	VM       *vm.VM
	Keyboard *vm.KeyboardCell
	Serial   *vm.Serial
	Terminal *vm.Terminal
	Floppy   *vm.Floppy
}

// Build wires a RAM-backed machine using cfg's port map: RAM first,
// then keyboard, floppy, and serial in declaration order, matching the
// original start_computer()'s canonical
// [RAM, Keyboard, Floppy, STI] layout. image must already have passed
// LoadImage (or be a freshly assembled, correctly sized program).
func Build(image []byte, cfg *config.Config) *Machine {
	ram := vm.NewRAM(cfg.Machine.RAMSize, image)
	keyboardCell := &vm.KeyboardCell{}
	keyboard := vm.NewKeyboard(keyboardCell)
	floppy := vm.NewFloppy()
	serial := vm.NewSerial(cfg.Machine.SerialBuffer)
	terminal := vm.NewTerminal()

	ports := []vm.Port{
		vm.NewPort(0, cfg.Machine.RAMSize, ram),
		vm.NewPort(cfg.Machine.KeyboardBegin, cfg.Machine.KeyboardEnd, keyboard),
		vm.NewPort(cfg.Machine.FloppyBegin, cfg.Machine.FloppyEnd, floppy),
		vm.NewPort(cfg.Machine.SerialBegin, cfg.Machine.SerialEnd, serial),
	}

	if cfg.Machine.TerminalEnd > cfg.Machine.TerminalBegin {
		ports = append(ports, vm.NewPort(cfg.Machine.TerminalBegin, cfg.Machine.TerminalEnd, terminal))
	}

	return &Machine{
		VM:       vm.New(ports),
		Keyboard: keyboardCell,
		Serial:   serial,
		Terminal: terminal,
		Floppy:   floppy,
	}
}
