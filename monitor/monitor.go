// Package monitor implements a non-interactive, post-halt snapshot
// inspector: a single tview screen showing the final register values,
// stack, and a full memory dump once a machine has stopped running.
// It deliberately does not step the machine, set breakpoints, or
// accept commands. It only displays what a vm.Snapshot already
// captured.
package monitor

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/Zorby-dev/poc/vm"
)

// Inspector is the one-shot snapshot viewer.
type Inspector struct {
	App *tview.Application

	registerView *tview.TextView
	memoryView   *tview.TextView
	stackView    *tview.TextView

	snapshot     vm.Snapshot
	bytesPerLine int
}

// New builds an Inspector over snapshot. bytesPerLine controls the
// memory dump's row width; 16 matches the original's hex-dump layout.
func New(snapshot vm.Snapshot, bytesPerLine int) *Inspector {
	if bytesPerLine <= 0 {
		bytesPerLine = 16
	}

	ins := &Inspector{
		App:          tview.NewApplication(),
		snapshot:     snapshot,
		bytesPerLine: bytesPerLine,
	}

	ins.initializeViews()
	ins.buildLayout()
	return ins
}

func (ins *Inspector) initializeViews() {
	ins.registerView = tview.NewTextView().SetDynamicColors(false)
	ins.registerView.SetBorder(true).SetTitle(" Registers ")
	ins.registerView.SetText(ins.formatRegisters())

	ins.memoryView = tview.NewTextView().SetDynamicColors(false).SetScrollable(true).SetWrap(false)
	ins.memoryView.SetBorder(true).SetTitle(" Memory ")
	ins.memoryView.SetText(ins.formatMemory())

	ins.stackView = tview.NewTextView().SetDynamicColors(false).SetScrollable(true)
	ins.stackView.SetBorder(true).SetTitle(" Stack ")
	ins.stackView.SetText(ins.formatStack())
}

func (ins *Inspector) buildLayout() {
	left := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(ins.registerView, 7, 0, false).
		AddItem(ins.stackView, 0, 1, false)

	root := tview.NewFlex().
		AddItem(left, 30, 0, false).
		AddItem(ins.memoryView, 0, 2, true)

	ins.App.SetRoot(root, true)
	ins.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEsc:
			ins.App.Stop()
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'q' {
				ins.App.Stop()
				return nil
			}
		}
		return event
	})
}

// Run displays the inspector until the user quits (Esc or 'q').
func (ins *Inspector) Run() error {
	return ins.App.Run()
}

func (ins *Inspector) formatRegisters() string {
	return fmt.Sprintf(
		"rx: 0x%02x\nry: 0x%02x\nrz: 0x%02x\nip: 0x%02x\nstate: %s\ncycles: %d",
		ins.snapshot.Rx, ins.snapshot.Ry, ins.snapshot.Rz, ins.snapshot.IP,
		ins.snapshot.State, ins.snapshot.Cycles)
}

func (ins *Inspector) formatStack() string {
	if len(ins.snapshot.Stack) == 0 {
		return "(empty)"
	}
	var b strings.Builder
	for i, v := range ins.snapshot.Stack {
		fmt.Fprintf(&b, "%3d: 0x%02x\n", i, v)
	}
	return b.String()
}

// formatMemory renders the 256-byte snapshot as a hex dump with an
// ASCII decode column and the instruction pointer highlighted, the
// same layout the original's print_address_space produces, minus ANSI
// color styling.
func (ins *Inspector) formatMemory() string {
	var b strings.Builder

	mem := ins.snapshot.Memory
	perLine := ins.bytesPerLine

	b.WriteString("     ")
	for i := 0; i < perLine; i++ {
		fmt.Fprintf(&b, "%02x ", i)
	}
	b.WriteString(" decoded text\n\n")

	for base := 0; base < len(mem); base += perLine {
		fmt.Fprintf(&b, "%04x  ", base)

		end := base + perLine
		if end > len(mem) {
			end = len(mem)
		}

		var decoded strings.Builder
		for i := base; i < end; i++ {
			marker := ' '
			if i == int(ins.snapshot.IP) {
				marker = '*'
			}
			fmt.Fprintf(&b, "%02x%c", mem[i], marker)
			decoded.WriteRune(decodeASCII(mem[i]))
		}

		fmt.Fprintf(&b, " %s\n", decoded.String())
	}

	return b.String()
}

func decodeASCII(b byte) rune {
	if b >= 0x20 && b <= 0x7e {
		return rune(b)
	}
	return '.'
}
