package vm

import (
	"fmt"
	"sort"
	"strings"
)

// Program is the unit handed from the compiler to the VM: a linear
// instruction sequence plus the symbol table mapping each function name
// to the slot following its Symbol marker.
type Program struct {
	Code    []Instruction
	Symbols map[string]int
}

// NewProgram returns an empty program.
func NewProgram() *Program {
	return &Program{Symbols: make(map[string]int)}
}

// Len returns the number of instruction slots.
func (p *Program) Len() int {
	return len(p.Code)
}

// Append adds instructions to the end of the program.
func (p *Program) Append(ins ...Instruction) {
	p.Code = append(p.Code, ins...)
}

// EntryPoint returns the entry slot of the named function.
func (p *Program) EntryPoint(name string) (int, error) {
	pc, ok := p.Symbols[name]
	if !ok {
		return 0, fmt.Errorf("%w: no function named %q", ErrMissingEntryPoint, name)
	}
	return pc, nil
}

// SymbolNames returns the defined function names ordered by entry slot.
func (p *Program) SymbolNames() []string {
	names := make([]string, 0, len(p.Symbols))
	for name := range p.Symbols {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := p.Symbols[names[i]], p.Symbols[names[j]]
		if a != b {
			return a < b
		}
		return names[i] < names[j]
	})
	return names
}

// SymbolAt returns the function whose entry is pc, if any.
func (p *Program) SymbolAt(pc int) (string, bool) {
	for name, entry := range p.Symbols {
		if entry == pc {
			return name, true
		}
	}
	return "", false
}

// Function returns the instructions of the named function, from its entry
// up to the next Symbol marker or the end of the program.
func (p *Program) Function(name string) ([]Instruction, int, error) {
	entry, err := p.EntryPoint(name)
	if err != nil {
		return nil, 0, err
	}
	end := entry
	for end < len(p.Code) && p.Code[end].Op != OpSymbol {
		end++
	}
	return p.Code[entry:end], entry, nil
}

// Validate checks that every opcode is known, every symbol points inside
// the program and every unconditional branch target is a valid slot.
func (p *Program) Validate() error {
	for i, ins := range p.Code {
		if !ins.Op.Valid() {
			return fmt.Errorf("slot %d: unknown opcode %s", i, ins.Op)
		}
		if ins.Op.Shape() == ShapeBranch && ins.Value >= Word(len(p.Code)) {
			return fmt.Errorf("slot %d: branch target %d outside program", i, ins.Value)
		}
	}
	for name, entry := range p.Symbols {
		if entry < 1 || entry > len(p.Code) || p.Code[entry-1].Op != OpSymbol {
			return fmt.Errorf("symbol %q: entry %d does not follow a marker", name, entry)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Disassembler
// ---------------------------------------------------------------------------

// DisassembleInstruction returns a one-line representation of the
// instruction at pc.
func DisassembleInstruction(pc int, ins Instruction) string {
	return fmt.Sprintf("%04d  %s", pc, ins)
}

// Disassemble returns a listing of the whole program.
func (p *Program) Disassemble() string {
	var sb strings.Builder
	for i, ins := range p.Code {
		sb.WriteString(DisassembleInstruction(i, ins))
		sb.WriteByte('\n')
	}
	return sb.String()
}
