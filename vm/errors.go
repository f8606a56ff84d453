package vm

import (
	"errors"
	"fmt"
)

var (
	ErrMemoryFault        = errors.New("memory fault")
	ErrArithmeticFault    = errors.New("arithmetic fault")
	ErrPCOutOfRange       = errors.New("program counter out of range")
	ErrIllegalInstruction = errors.New("illegal instruction")
	ErrFaulted            = errors.New("vm is faulted; reset required")
	ErrMissingEntryPoint  = errors.New("missing entry point")
	ErrBadImage           = errors.New("bad program image")
)

// FaultKind classifies a runtime fault.
type FaultKind uint8

const (
	FaultMemory FaultKind = iota
	FaultArithmetic
	FaultPC
	FaultIllegal
)

func (k FaultKind) sentinel() error {
	switch k {
	case FaultMemory:
		return ErrMemoryFault
	case FaultArithmetic:
		return ErrArithmeticFault
	case FaultPC:
		return ErrPCOutOfRange
	default:
		return ErrIllegalInstruction
	}
}

// Fault is a runtime error raised while executing an instruction. PC is
// the slot of the faulting instruction. Addr and Width describe the
// rejected access for memory faults.
type Fault struct {
	Kind  FaultKind
	PC    int
	Op    Opcode
	Addr  Word
	Width int
	Msg   string
}

func (f *Fault) Error() string {
	base := f.Kind.sentinel().Error()
	switch f.Kind {
	case FaultMemory:
		return fmt.Sprintf("%s at pc %d (%s): %s [addr=%#x width=%d]", base, f.PC, f.Op, f.Msg, f.Addr, f.Width)
	case FaultPC:
		return fmt.Sprintf("%s: pc %d", base, f.PC)
	default:
		return fmt.Sprintf("%s at pc %d (%s): %s", base, f.PC, f.Op, f.Msg)
	}
}

// Is matches the sentinel for the fault's kind, so callers can write
// errors.Is(err, vm.ErrMemoryFault).
func (f *Fault) Is(target error) bool {
	return target == f.Kind.sentinel()
}
