package vm

import "fmt"

// CPU holds the three general-purpose registers, the instruction
// pointer, and the byte stack, matching the original's CPU{rx,ry,rz,
// ip,stack}. ip wraps modulo 256 on every advance. There is no carry,
// zero, or sign flag register; conditional jumps test a register's
// value directly.
type CPU struct {
	Rx, Ry, Rz byte
	IP         byte
	Stack      []byte

	Bus *Bus
}

// NewCPU creates a CPU with all registers zeroed, wired to bus.
func NewCPU(bus *Bus) *CPU {
	return &CPU{Bus: bus}
}

func (c *CPU) advance() {
	c.IP++
}

// im reads the byte immediately following the current instruction: it
// advances IP first, then reads at the new position, so by the time
// im returns, IP already points at the just-read immediate. Every
// instruction using im() therefore ends with one more advance() (to
// move past the immediate) except for the branch instructions, which
// instead overwrite IP directly.
func (c *CPU) im() byte {
	c.advance()
	return c.Bus.Read(c.IP)
}

func (c *CPU) push(v byte) {
	c.Stack = append(c.Stack, v)
}

// pop returns 0 for an empty stack rather than erroring, matching the
// original's unwrap_or(0).
func (c *CPU) pop() byte {
	if len(c.Stack) == 0 {
		return 0
	}
	v := c.Stack[len(c.Stack)-1]
	c.Stack = c.Stack[:len(c.Stack)-1]
	return v
}

// ErrHalt is returned by Execute when the CPU runs the hlt
// instruction. The original spins in an empty loop forever; looping
// forever inside a Go call would wedge the calling goroutine with no
// way to observe it, so Execute instead reports halting as a distinct,
// checkable outcome and leaves looping (or not) to the caller.
var ErrHalt = fmt.Errorf("cpu halted")

// ErrUnimplemented is returned for any opcode byte outside the defined
// 0x00-0x3f table.
type ErrUnimplemented struct {
	Opcode byte
}

func (e *ErrUnimplemented) Error() string {
	return fmt.Sprintf("unimplemented opcode 0x%02x", e.Opcode)
}

// Execute performs one fetch/decode/execute cycle. It returns ErrHalt
// after hlt, *ErrUnimplemented for an opcode with no defined behavior,
// or nil otherwise.
func (c *CPU) Execute() error {
	instruction := c.Bus.Read(c.IP)

	switch instruction {
	case 0x00: // nop
		c.advance()
	case 0x01: // put rx,<im>
		c.Rx = c.im()
		c.advance()
	case 0x02: // str <im>,rx
		dest := c.im()
		c.Bus.Write(dest, c.Rx)
		c.advance()
	case 0x03: // hlt
		return ErrHalt
	case 0x04: // ldr rx,<im>
		src := c.im()
		c.Rx = c.Bus.Read(src)
		c.advance()
	case 0x05: // put ry,<im>
		c.Ry = c.im()
		c.advance()
	case 0x06: // ldr rx,ry
		c.Rx = c.Bus.Read(c.Ry)
		c.advance()
	case 0x07: // jpz <im>,rx
		dest := c.im()
		if c.Rx == 0 {
			c.IP = dest
		} else {
			c.advance()
		}
	case 0x08: // inc ry
		c.Ry++
		c.advance()
	case 0x09: // jmp <im>
		c.IP = c.im()
	case 0x0a: // inc rx
		c.Rx++
		c.advance()
	case 0x0b: // sub ry,rx
		c.Ry -= c.Rx
		c.advance()
	case 0x0c: // jpz <im>,ry
		dest := c.im()
		if c.Ry == 0 {
			c.IP = dest
		} else {
			c.advance()
		}
	case 0x0d: // ldr ry,<im>
		src := c.im()
		c.Ry = c.Bus.Read(src)
		c.advance()
	case 0x0e: // sub rx,ry
		c.Rx -= c.Ry
		c.advance()
	case 0x0f: // add rx,ry
		c.Rx += c.Ry
		c.advance()
	case 0x10: // str rx,ry
		c.Bus.Write(c.Rx, c.Ry)
		c.advance()
	case 0x11: // str <im>,ry
		dest := c.im()
		c.Bus.Write(dest, c.Ry)
		c.advance()
	case 0x12: // jpn <im>,rx
		dest := c.im()
		if c.Rx&0b10000000 != 0 {
			c.IP = dest
		} else {
			c.advance()
		}
	case 0x13: // psh <im>
		c.push(c.im())
		c.advance()
	case 0x14: // put rz,<im>
		c.Rz = c.im()
		c.advance()
	case 0x15: // inc rz
		c.Rz++
		c.advance()
	case 0x16: // pop ry
		c.Ry = c.pop()
		c.advance()
	case 0x17: // jmp ry
		c.IP = c.Ry
	case 0x18: // psh rx
		c.push(c.Rx)
		c.advance()
	case 0x19: // jpz <im>,rz
		dest := c.im()
		if c.Rz == 0 {
			c.IP = dest
		} else {
			c.advance()
		}
	case 0x1a: // put rx,rz
		c.Rx = c.Rz
		c.advance()
	case 0x1b: // pop rx
		c.Rx = c.pop()
		c.advance()
	case 0x1c: // jmp rx
		c.IP = c.Rx
	case 0x1d: // ldr ry,rx
		c.Ry = c.Bus.Read(c.Rx)
		c.advance()
	case 0x1e: // add rz,rx
		c.Rz += c.Rx
		c.advance()
	case 0x1f: // dec ry
		c.Ry--
		c.advance()
	case 0x20: // str <im>,rz
		dest := c.im()
		c.Bus.Write(dest, c.Rz)
		c.advance()
	case 0x21: // sub ry,rz
		c.Ry -= c.Rz
		c.advance()
	case 0x22: // add ry,rz
		c.Ry += c.Rz
		c.advance()
	case 0x23: // put rx,ry
		c.Rx = c.Ry
		c.advance()
	case 0x24: // psh ry
		c.push(c.Ry)
		c.advance()
	case 0x25: // jpn <im>,ry
		dest := c.im()
		if c.Ry&0b10000000 != 0 {
			c.IP = dest
		} else {
			c.advance()
		}
	case 0x26: // dec rx
		c.Rx--
		c.advance()
	case 0x27: // pop rz
		c.Rz = c.pop()
		c.advance()
	case 0x28: // jmp rz
		c.IP = c.Rz
	case 0x29: // sub rz,rx
		c.Rz -= c.Rx
		c.advance()
	case 0x2a: // dec rz
		c.Rz--
		c.advance()
	case 0x2b: // neg rx
		c.Rx = byte(-int8(c.Rx))
		c.advance()
	case 0x2c: // neg ry
		c.Ry = byte(-int8(c.Ry))
		c.advance()
	case 0x2d: // neg rz
		// Preserves the original's bug: this reads ry instead of rz.
		c.Rz = byte(-int8(c.Ry))
		c.advance()
	case 0x2e: // ret
		c.IP = c.pop()
	case 0x2f: // put rz,rx
		c.Rz = c.Rx
		c.advance()
	case 0x30: // psh rz
		c.push(c.Rz)
		c.advance()
	case 0x31: // sub rx,rz
		c.Rx -= c.Rz
		c.advance()
	case 0x32: // ldr rz,<im>
		src := c.im()
		c.Rz = c.Bus.Read(src)
		c.advance()
	case 0x33: // and rz,<im>
		src := c.im()
		c.Rz &= src
		c.advance()
	case 0x34: // put ry,rx
		c.Ry = c.Rx
		c.advance()
	case 0x35: // and ry,<im>
		src := c.im()
		c.Ry &= src
		c.advance()
	case 0x36: // add ry,rx
		c.Ry += c.Rx
		c.advance()
	case 0x37: // sub rz,<im>
		src := c.im()
		c.Rz -= src
		c.advance()
	case 0x38: // add rz,<im>
		src := c.im()
		c.Rz += src
		c.advance()
	case 0x39: // sub rz,ry
		c.Rz -= c.Ry
		c.advance()
	case 0x3a: // add rx,rz
		c.Rx += c.Rz
		c.advance()
	case 0x3b: // and rx,<im>
		src := c.im()
		c.Rx &= src
		c.advance()
	case 0x3c: // add rz,ry
		c.Rz += c.Ry
		c.advance()
	case 0x3d: // or rx,ry
		c.Rx |= c.Ry
		c.advance()
	case 0x3e: // str rz,rx
		c.Bus.Write(c.Rz, c.Rx)
		c.advance()
	case 0x3f: // ldr ry,ry
		c.Ry = c.Bus.Read(c.Ry)
		c.advance()
	default:
		return &ErrUnimplemented{Opcode: instruction}
	}

	return nil
}
