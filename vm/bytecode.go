package vm

import (
	"fmt"
)

// Word is the machine word held by registers and moved by the 8-byte
// loads and stores.
type Word = uint64

// PtrSize is the width in bytes of a pointer-sized memory access.
const PtrSize = 8

// NumRegisters is the size of the register file.
const NumRegisters = 256

// Reg names one of the NumRegisters general purpose registers.
type Reg uint8

func (r Reg) String() string {
	return fmt.Sprintf("r%d", uint8(r))
}

// ---------------------------------------------------------------------------
// Opcode definitions
// ---------------------------------------------------------------------------

// Opcode identifies the operation performed by an Instruction.
type Opcode byte

// Frame operations
const (
	OpPush      Opcode = 0x00 // reserve n bytes of stack
	OpPop       Opcode = 0x01 // release n bytes of stack
	OpAddrStack Opcode = 0x02 // dst = address of frame slot base-n
	OpLoadImm   Opcode = 0x03 // dst = immediate
)

// Loads: dst = mem[base+off]
const (
	OpLoadByte Opcode = 0x10
	OpLoadHalf Opcode = 0x11
	OpLoadWord Opcode = 0x12
	OpLoadLong Opcode = 0x13
	OpLoadPtr  Opcode = 0x14
)

// Stores: mem[base+off] = dst
const (
	OpStrByte Opcode = 0x18
	OpStrHalf Opcode = 0x19
	OpStrWord Opcode = 0x1A
	OpStrLong Opcode = 0x1B
	OpStrPtr  Opcode = 0x1C
)

// Arithmetic: dst = dst OP src
const (
	OpAdd Opcode = 0x20
	OpSub Opcode = 0x21
	OpMul Opcode = 0x22
	OpDiv Opcode = 0x23
)

// Control flow
const (
	OpCall   Opcode = 0x30 // push base, push return pc, jump
	OpReturn Opcode = 0x31 // pop return pc; 0 halts
	OpHalt   Opcode = 0x32
	OpSymbol Opcode = 0x33 // function entry marker, no-op
)

// Shape selects which Instruction fields an opcode reads.
type Shape uint8

const (
	ShapeEmpty     Shape = iota // no operands
	ShapeImmediate              // Dst, Value
	ShapeRegPair                // Dst, Src
	ShapeMemory                 // Dst, Src (base register), Value (offset)
	ShapeBranch                 // Conditional, Dst (condition), Value (target)
	ShapeSymbol                 // Name
)

var shapeNames = [...]string{
	ShapeEmpty:     "empty",
	ShapeImmediate: "immediate",
	ShapeRegPair:   "register pair",
	ShapeMemory:    "memory",
	ShapeBranch:    "branch",
	ShapeSymbol:    "symbol",
}

func (s Shape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return fmt.Sprintf("Shape(%d)", uint8(s))
}

// OpcodeInfo contains metadata about an opcode.
type OpcodeInfo struct {
	Name  string
	Shape Shape
	Width int // access width in bytes for loads and stores
}

var opcodeTable = map[Opcode]OpcodeInfo{
	OpPush:      {"PUSH", ShapeImmediate, 0},
	OpPop:       {"POP", ShapeImmediate, 0},
	OpAddrStack: {"ADDR_STACK", ShapeImmediate, 0},
	OpLoadImm:   {"LOAD_IMM", ShapeImmediate, 0},

	OpLoadByte: {"LOAD_BYTE", ShapeMemory, 1},
	OpLoadHalf: {"LOAD_HALF", ShapeMemory, 2},
	OpLoadWord: {"LOAD_WORD", ShapeMemory, 4},
	OpLoadLong: {"LOAD_LONG", ShapeMemory, 8},
	OpLoadPtr:  {"LOAD_PTR", ShapeMemory, PtrSize},

	OpStrByte: {"STR_BYTE", ShapeMemory, 1},
	OpStrHalf: {"STR_HALF", ShapeMemory, 2},
	OpStrWord: {"STR_WORD", ShapeMemory, 4},
	OpStrLong: {"STR_LONG", ShapeMemory, 8},
	OpStrPtr:  {"STR_PTR", ShapeMemory, PtrSize},

	OpAdd: {"ADD", ShapeRegPair, 0},
	OpSub: {"SUB", ShapeRegPair, 0},
	OpMul: {"MUL", ShapeRegPair, 0},
	OpDiv: {"DIV", ShapeRegPair, 0},

	OpCall:   {"CALL", ShapeBranch, 0},
	OpReturn: {"RETURN", ShapeEmpty, 0},
	OpHalt:   {"HALT", ShapeEmpty, 0},
	OpSymbol: {"SYMBOL", ShapeSymbol, 0},
}

// Info returns metadata for an opcode.
func (op Opcode) Info() OpcodeInfo {
	if info, ok := opcodeTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN_%02X", byte(op))}
}

// Valid reports whether op is part of the instruction set.
func (op Opcode) Valid() bool {
	_, ok := opcodeTable[op]
	return ok
}

// Name returns the human-readable name for an opcode.
func (op Opcode) Name() string {
	return op.Info().Name
}

// Shape returns the operand shape of an opcode.
func (op Opcode) Shape() Shape {
	return op.Info().Shape
}

// IsLoad reports whether op reads memory into a register.
func (op Opcode) IsLoad() bool {
	return op >= OpLoadByte && op <= OpLoadPtr
}

// IsStore reports whether op writes a register to memory.
func (op Opcode) IsStore() bool {
	return op >= OpStrByte && op <= OpStrPtr
}

func (op Opcode) String() string {
	return op.Name()
}

// ---------------------------------------------------------------------------
// Instruction
// ---------------------------------------------------------------------------

// Instruction is one slot of a program. Which fields are meaningful is
// decided by Op.Shape(); the others stay zero.
type Instruction struct {
	Op          Opcode
	Dst         Reg
	Src         Reg
	Value       Word
	Conditional bool
	Name        string
}

// Imm builds an immediate-shaped instruction.
func Imm(op Opcode, dst Reg, v Word) Instruction {
	return Instruction{Op: op, Dst: dst, Value: v}
}

// Pair builds a register-pair instruction.
func Pair(op Opcode, dst, src Reg) Instruction {
	return Instruction{Op: op, Dst: dst, Src: src}
}

// Mem builds a load or store. For loads dst receives the value, for
// stores dst supplies it.
func Mem(op Opcode, dst, base Reg, off Word) Instruction {
	return Instruction{Op: op, Dst: dst, Src: base, Value: off}
}

// Branch builds an unconditional branch to target.
func Branch(op Opcode, target int) Instruction {
	return Instruction{Op: op, Value: Word(target)}
}

// CondBranch builds a branch taken when cond holds a non-zero value.
func CondBranch(op Opcode, cond Reg, target int) Instruction {
	return Instruction{Op: op, Dst: cond, Value: Word(target), Conditional: true}
}

// Empty builds an operand-less instruction.
func Empty(op Opcode) Instruction {
	return Instruction{Op: op}
}

// Marker builds the Symbol pseudo-instruction naming a function entry.
func Marker(name string) Instruction {
	return Instruction{Op: OpSymbol, Name: name}
}

// Convenience constructors for the common cases.

func LoadImm(dst Reg, v Word) Instruction { return Imm(OpLoadImm, dst, v) }
func Call(target int) Instruction        { return Branch(OpCall, target) }
func Return() Instruction                { return Empty(OpReturn) }
func Halt() Instruction                  { return Empty(OpHalt) }

// Target returns the branch destination of a Branch-shaped instruction.
func (ins Instruction) Target() int {
	return int(ins.Value)
}

func (ins Instruction) String() string {
	info := ins.Op.Info()
	switch info.Shape {
	case ShapeImmediate:
		if ins.Op == OpPush || ins.Op == OpPop {
			return fmt.Sprintf("%s %d", info.Name, ins.Value)
		}
		return fmt.Sprintf("%s %s, %d", info.Name, ins.Dst, ins.Value)
	case ShapeRegPair:
		return fmt.Sprintf("%s %s, %s", info.Name, ins.Dst, ins.Src)
	case ShapeMemory:
		return fmt.Sprintf("%s %s, [%s+%d]", info.Name, ins.Dst, ins.Src, ins.Value)
	case ShapeBranch:
		if ins.Conditional {
			return fmt.Sprintf("%s %s, @%d", info.Name, ins.Dst, ins.Value)
		}
		return fmt.Sprintf("%s @%d", info.Name, ins.Value)
	case ShapeSymbol:
		return ins.Name + ":"
	default:
		return info.Name
	}
}
