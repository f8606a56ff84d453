package vm

import "fmt"

// Tracer observes execution. TraceStep is called after an instruction is
// fetched and pc has advanced, before the instruction takes effect.
//
//go:generate mockgen -destination=mock_tracer_test.go -package=vm_test github.com/chazu/glass/vm Tracer
type Tracer interface {
	TraceStep(pc int, ins Instruction)
}

// LogTracer writes every step to the glass.vm logger at debug level.
type LogTracer struct{}

func (LogTracer) TraceStep(pc int, ins Instruction) {
	log.Debugf("%04d  %s", pc, ins)
}

// Run steps until the program halts or faults.
func (m *VM) Run() error {
	for !m.halted {
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Step executes exactly one instruction. After a fault the VM refuses to
// step until Reset is called.
func (m *VM) Step() error {
	if m.fault != nil {
		return fmt.Errorf("%w: %v", ErrFaulted, m.fault)
	}
	if m.halted {
		return nil
	}
	pc := m.pc
	if pc < 0 || pc >= len(m.program) {
		return m.raise(&Fault{Kind: FaultPC, PC: pc})
	}
	ins := m.program[pc]
	m.pc++
	if m.tracer != nil {
		m.tracer.TraceStep(pc, ins)
	}

	switch ins.Op {
	case OpPush:
		if !m.push(ins.Value) {
			return m.raise(&Fault{Kind: FaultMemory, PC: pc, Op: ins.Op, Width: int(ins.Value), Msg: "stack overflow"})
		}

	case OpPop:
		if !m.pop(ins.Value) {
			return m.raise(&Fault{Kind: FaultMemory, PC: pc, Op: ins.Op, Width: int(ins.Value), Msg: "stack underflow"})
		}

	case OpAddrStack:
		m.registers[ins.Dst] = m.mem.addr(m.base) - ins.Value

	case OpLoadImm:
		m.registers[ins.Dst] = ins.Value

	case OpLoadByte, OpLoadHalf, OpLoadWord, OpLoadLong, OpLoadPtr:
		width := ins.Op.Info().Width
		addr := m.registers[ins.Src] + ins.Value
		v, ok := m.mem.load(addr, width)
		if !ok {
			return m.raise(&Fault{Kind: FaultMemory, PC: pc, Op: ins.Op, Addr: addr, Width: width, Msg: "load out of range"})
		}
		m.registers[ins.Dst] = v

	case OpStrByte, OpStrHalf, OpStrWord, OpStrLong, OpStrPtr:
		width := ins.Op.Info().Width
		addr := m.registers[ins.Src] + ins.Value
		if !m.mem.store(addr, width, m.registers[ins.Dst]) {
			return m.raise(&Fault{Kind: FaultMemory, PC: pc, Op: ins.Op, Addr: addr, Width: width, Msg: "store out of range"})
		}

	case OpAdd:
		m.registers[ins.Dst] += m.registers[ins.Src]
	case OpSub:
		m.registers[ins.Dst] -= m.registers[ins.Src]
	case OpMul:
		m.registers[ins.Dst] *= m.registers[ins.Src]
	case OpDiv:
		d := m.registers[ins.Src]
		if d == 0 {
			return m.raise(&Fault{Kind: FaultArithmetic, PC: pc, Op: ins.Op, Msg: "division by zero"})
		}
		m.registers[ins.Dst] /= d

	case OpCall:
		if ins.Conditional && m.registers[ins.Dst] == 0 {
			break
		}
		if !m.pushWord(Word(m.base)) || !m.pushWord(Word(m.pc)) {
			return m.raise(&Fault{Kind: FaultMemory, PC: pc, Op: ins.Op, Addr: m.mem.addr(m.sp), Width: PtrSize, Msg: "stack overflow"})
		}
		m.base = m.sp
		m.pc = ins.Target()

	case OpReturn:
		ret, ok := m.popWord()
		if !ok {
			return m.raise(&Fault{Kind: FaultMemory, PC: pc, Op: ins.Op, Addr: m.mem.addr(m.sp), Width: PtrSize, Msg: "stack underflow"})
		}
		if ret == 0 {
			m.halted = true
			break
		}
		base, ok := m.popWord()
		if !ok || base > Word(m.mem.cap()) {
			return m.raise(&Fault{Kind: FaultMemory, PC: pc, Op: ins.Op, Addr: m.mem.addr(m.sp), Width: PtrSize, Msg: "corrupt frame"})
		}
		m.base = int(base)
		m.pc = int(ret)

	case OpHalt:
		m.halted = true

	case OpSymbol:
		// entry marker

	default:
		return m.raise(&Fault{Kind: FaultIllegal, PC: pc, Op: ins.Op, Msg: "unknown opcode"})
	}
	return nil
}

// raise records f and rewinds pc to the faulting instruction.
func (m *VM) raise(f *Fault) error {
	m.fault = f
	m.pc = f.PC
	log.Debugf("fault: %v", f)
	return f
}
