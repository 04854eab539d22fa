package vm

import "sync"

// RAM is a flat byte array device: read, write, and peek all index
// directly into the backing slice.
type RAM struct {
	Data []byte
}

// NewRAM allocates a RAM device of the given size, optionally seeded
// with an initial image (image is copied, not aliased).
func NewRAM(size int, image []byte) *RAM {
	data := make([]byte, size)
	copy(data, image)
	return &RAM{Data: data}
}

func (r *RAM) Read(addr byte) byte       { return r.Data[int(addr)%len(r.Data)] }
func (r *RAM) Write(addr, data byte)     { r.Data[int(addr)%len(r.Data)] = data }
func (r *RAM) Peek(addr byte) byte       { return r.Data[int(addr)%len(r.Data)] }

// Serial is a write-only output sink (the original's Stdout/STI
// device): writes forward a byte to the presentation side, reads and
// peeks always return 0 because the device has no readable state.
//
// The original's channel is an unbounded std::sync::mpsc sender; Go
// has no unbounded channel primitive, so Serial uses a large buffered
// channel and drops the oldest queued byte instead of blocking the
// CPU goroutine when the presentation side falls behind. This is a
// deliberate, documented deviation from the literal Rust behavior.
type Serial struct {
	Out chan byte
}

// NewSerial creates a Serial device backed by a channel of the given
// capacity.
func NewSerial(capacity int) *Serial {
	return &Serial{Out: make(chan byte, capacity)}
}

func (s *Serial) Write(addr, data byte) {
	select {
	case s.Out <- data:
	default:
		select {
		case <-s.Out:
		default:
		}
		select {
		case s.Out <- data:
		default:
		}
	}
}

func (s *Serial) Read(addr byte) byte { return 0 }
func (s *Serial) Peek(addr byte) byte { return 0 }

// KeyboardCell is the shared scancode register the presentation side
// writes into (the original's Arc<Mutex<u8>>).
type KeyboardCell struct {
	mu    sync.Mutex
	value byte
}

// Set stores the latest scancode.
func (k *KeyboardCell) Set(value byte) {
	k.mu.Lock()
	k.value = value
	k.mu.Unlock()
}

// Get returns the current scancode.
func (k *KeyboardCell) Get() byte {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.value
}

// Keyboard is a read-only device exposing a KeyboardCell. Unlike a
// typical "consume on read" input register, reading the keyboard does
// NOT clear the cell: repeated reads return the same scancode until
// the presentation side overwrites it, matching the original's
// Keyboard::peak/read (both just re-read the locked value).
type Keyboard struct {
	Cell *KeyboardCell
}

// NewKeyboard wraps an existing KeyboardCell as a device.
func NewKeyboard(cell *KeyboardCell) *Keyboard {
	return &Keyboard{Cell: cell}
}

func (k *Keyboard) Write(addr, data byte) {}
func (k *Keyboard) Read(addr byte) byte   { return k.Cell.Get() }
func (k *Keyboard) Peek(addr byte) byte   { return k.Cell.Get() }

// Floppy is a two-register block-storage device over a 256-byte
// backing array: writing address register 0 latches the active byte
// address, writing register 1 stores into that address, and reading
// register 1 reads the data at the latched address. Register 0
// (the address register) is not readable as data: peeking or reading
// it always yields 0, matching the original Floppy device.
type Floppy struct {
	address byte
	data    [256]byte
}

// NewFloppy creates an empty Floppy.
func NewFloppy() *Floppy {
	return &Floppy{}
}

func (f *Floppy) Write(addr, data byte) {
	switch addr {
	case 0:
		f.address = data
	case 1:
		f.data[f.address] = data
	}
}

func (f *Floppy) Read(addr byte) byte { return f.Peek(addr) }

func (f *Floppy) Peek(addr byte) byte {
	if addr == 1 {
		return f.data[f.address]
	}
	return 0
}

// Terminal is a supplemental, character-addressable scrollback device
// recovered from the original CLI's windowed terminal output: unlike
// Serial, every byte written is retained (as a circular 256-byte
// scrollback) so a non-interactive inspector can display recent
// output after the machine halts. It is Floppy-shaped: register 0
// selects a read cursor, register 1 both appends a byte to the
// scrollback (advancing the write cursor) and is readable back by
// cursor position for the inspector to page through.
type Terminal struct {
	cursor byte
	write  byte
	buffer [256]byte
}

// NewTerminal creates an empty Terminal.
func NewTerminal() *Terminal {
	return &Terminal{}
}

func (t *Terminal) Write(addr, data byte) {
	switch addr {
	case 0:
		t.cursor = data
	case 1:
		t.buffer[t.write] = data
		t.write++
	}
}

func (t *Terminal) Read(addr byte) byte { return t.Peek(addr) }

func (t *Terminal) Peek(addr byte) byte {
	if addr == 1 {
		return t.buffer[t.cursor]
	}
	return 0
}

// Scrollback returns a copy of the full 256-byte scrollback buffer in
// write order (oldest byte first), for the snapshot inspector.
func (t *Terminal) Scrollback() [256]byte {
	var out [256]byte
	for i := 0; i < 256; i++ {
		out[i] = t.buffer[byte(int(t.write)+i)]
	}
	return out
}
