package vm

import (
	"fmt"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("glass.vm")

// ---------------------------------------------------------------------------
// VM: the glass virtual machine
// ---------------------------------------------------------------------------

// VM executes a Program against a downward-growing byte stack and a file
// of NumRegisters registers. A VM is not safe for concurrent use.
type VM struct {
	program []Instruction
	pc      int

	mem  *stack
	sp   int
	base int

	registers [NumRegisters]Word

	halted bool
	fault  *Fault

	tracer Tracer
}

// Option configures a VM at construction.
type Option func(*VM) error

// StackSize sets the stack capacity in bytes. It must hold at least the
// sentinel return address.
func StackSize(n int) Option {
	return func(m *VM) error {
		if n < PtrSize {
			return fmt.Errorf("stack size %d is smaller than one word", n)
		}
		m.mem = newStack(n)
		return nil
	}
}

// WithTracer installs a Tracer that observes every executed instruction.
func WithTracer(t Tracer) Option {
	return func(m *VM) error {
		m.tracer = t
		return nil
	}
}

// New creates a VM in its reset state.
func New(opts ...Option) (*VM, error) {
	m := &VM{}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	if m.mem == nil {
		m.mem = newStack(DefaultStackSize)
	}
	m.Reset()
	return m, nil
}

// Reset restores sp and base to the top of the stack, pushes the sentinel
// return address 0 and clears the halt and fault state. The stack buffer
// is reused and register contents are left alone.
func (m *VM) Reset() {
	m.sp = m.mem.cap()
	m.base = m.sp
	m.pc = 0
	m.halted = false
	m.fault = nil
	// Cannot fail: StackSize guarantees room for one word.
	_ = m.pushWord(0)
	log.Debugf("reset: sp=%d base=%d", m.sp, m.base)
}

// Load installs program and sets the program counter to pc. Stack memory
// and registers are untouched; call Reset first for a fresh run.
func (m *VM) Load(p *Program, pc int) {
	m.program = p.Code
	m.pc = pc
	m.halted = false
	log.Debugf("load: %d instructions, pc=%d", len(p.Code), pc)
}

// PC returns the slot of the next instruction to execute.
func (m *VM) PC() int { return m.pc }

// SP returns the stack pointer as an index into the stack buffer.
func (m *VM) SP() int { return m.sp }

// Base returns the current frame base as an index into the stack buffer.
func (m *VM) Base() int { return m.base }

// StackCap returns the stack capacity in bytes.
func (m *VM) StackCap() int { return m.mem.cap() }

// Halted reports whether the running program has stopped.
func (m *VM) Halted() bool { return m.halted }

// Fault returns the fault that stopped the VM, or nil.
func (m *VM) Fault() *Fault { return m.fault }

// Register returns the contents of r.
func (m *VM) Register(r Reg) Word { return m.registers[r] }

// SetRegister overwrites r.
func (m *VM) SetRegister(r Reg, v Word) { m.registers[r] = v }

// Result returns r0, the value a program hands back to its caller.
func (m *VM) Result() Word { return m.registers[0] }

// ReadMemory performs a bounds-checked read of width bytes at addr.
func (m *VM) ReadMemory(addr Word, width int) (Word, bool) {
	return m.mem.load(addr, width)
}

// StackAddress returns the virtual address of stack index i.
func (m *VM) StackAddress(i int) Word {
	return m.mem.addr(i)
}

// ---------------------------------------------------------------------------
// Frame stack primitives
// ---------------------------------------------------------------------------

func (m *VM) push(n Word) bool {
	if n > Word(m.sp) {
		return false
	}
	m.sp -= int(n)
	return true
}

func (m *VM) pop(n Word) bool {
	if n > Word(m.mem.cap()-m.sp) {
		return false
	}
	m.sp += int(n)
	return true
}

func (m *VM) pushWord(v Word) bool {
	if !m.push(PtrSize) {
		return false
	}
	return m.mem.store(m.mem.addr(m.sp), PtrSize, v)
}

func (m *VM) popWord() (Word, bool) {
	v, ok := m.mem.load(m.mem.addr(m.sp), PtrSize)
	if !ok || !m.pop(PtrSize) {
		return 0, false
	}
	return v, true
}
