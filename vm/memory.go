package vm

import "encoding/binary"

// StackOrigin is the virtual address of stack byte 0. Keeping the stack
// away from address zero means a zeroed register never names valid memory.
const StackOrigin Word = 0x10000

// DefaultStackSize is the stack capacity in bytes used by New.
const DefaultStackSize = 64 * 1024

// stack is the VM's byte-addressable memory. It grows downward: sp starts
// at len(buf) and Push moves it toward zero.
type stack struct {
	buf []byte
}

func newStack(size int) *stack {
	return &stack{buf: make([]byte, size)}
}

func (s *stack) cap() int {
	return len(s.buf)
}

// addr maps a stack index to its virtual address.
func (s *stack) addr(index int) Word {
	return StackOrigin + Word(index)
}

// offset translates a virtual address into a buffer offset, or reports
// false if [addr, addr+width) is not entirely inside the stack.
func (s *stack) offset(addr Word, width int) (int, bool) {
	off := addr - StackOrigin
	size := Word(len(s.buf))
	if addr < StackOrigin || off > size || size-off < Word(width) {
		return 0, false
	}
	return int(off), true
}

// load reads width bytes little-endian and zero-extends them.
func (s *stack) load(addr Word, width int) (Word, bool) {
	off, ok := s.offset(addr, width)
	if !ok {
		return 0, false
	}
	b := s.buf[off : off+width]
	switch width {
	case 1:
		return Word(b[0]), true
	case 2:
		return Word(binary.LittleEndian.Uint16(b)), true
	case 4:
		return Word(binary.LittleEndian.Uint32(b)), true
	case 8:
		return binary.LittleEndian.Uint64(b), true
	}
	return 0, false
}

// store writes the low width bytes of v little-endian.
func (s *stack) store(addr Word, width int, v Word) bool {
	off, ok := s.offset(addr, width)
	if !ok {
		return false
	}
	b := s.buf[off : off+width]
	switch width {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(v))
	case 8:
		binary.LittleEndian.PutUint64(b, v)
	default:
		return false
	}
	return true
}
