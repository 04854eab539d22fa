// Package vm implements the POC-8 CPU core and its memory-mapped
// device bus: fetch/decode/execute over a flat 256-byte address space
// resolved through an ordered list of device ports.
package vm

// Device is the capability every port occupant implements. Read and
// Write may mutate device-internal state (a floppy's address
// register, the serial device's output queue). Peek must not; it exists
// solely so a snapshot/dump can observe memory without side effects,
// matching the original cpu::device::Device trait's read/write taking
// &mut self and peak taking &self.
type Device interface {
	Read(addr byte) byte
	Write(addr, data byte)
	Peek(addr byte) byte
}

// Port maps a half-open address range [Begin, End) to a Device.
type Port struct {
	Begin  int
	End    int
	Device Device
}

// NewPort builds a Port occupying [begin, end) backed by device.
func NewPort(begin, end int, device Device) Port {
	return Port{Begin: begin, End: end, Device: device}
}

// Bus is the ordered port list the CPU addresses through. The first
// port whose range contains an address wins; this mirrors
// CPU::map_address's linear scan in original declaration order.
type Bus struct {
	Ports []Port
}

// NewBus builds a Bus from an ordered port list.
func NewBus(ports []Port) *Bus {
	return &Bus{Ports: ports}
}

// resolve maps an absolute address to its owning device and the
// address translated into that device's local address space.
func (b *Bus) resolve(address byte) (Device, byte, bool) {
	addr := int(address)
	for _, port := range b.Ports {
		if addr >= port.Begin && addr < port.End {
			return port.Device, byte(addr - port.Begin), true
		}
	}
	return nil, 0, false
}

// Read returns 0 for any address with no mapped device, matching the
// original's silent-miss behavior.
func (b *Bus) Read(address byte) byte {
	device, local, ok := b.resolve(address)
	if !ok {
		return 0
	}
	return device.Read(local)
}

// Write silently drops writes to any address with no mapped device.
func (b *Bus) Write(address, data byte) {
	device, local, ok := b.resolve(address)
	if !ok {
		return
	}
	device.Write(local, data)
}

// Peek builds a full 256-byte snapshot of the address space without
// mutating any device, for use by the post-halt inspector. Unmapped
// addresses read as 0.
func (b *Bus) Peek() [256]byte {
	var out [256]byte
	for i := 0; i < 256; i++ {
		device, local, ok := b.resolve(byte(i))
		if ok {
			out[i] = device.Peek(local)
		}
	}
	return out
}
