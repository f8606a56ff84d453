package vm

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
)

// DisassemblyTable renders p as a table of slot, symbol and instruction.
func DisassemblyTable(p *Program) string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("Program (%d slots)", p.Len()))
	t.AppendHeader(table.Row{"Slot", "Entry", "Instruction"})
	for i, ins := range p.Code {
		entry, _ := p.SymbolAt(i)
		t.AppendRow(table.Row{fmt.Sprintf("%04d", i), entry, ins.String()})
	}
	return t.Render()
}

// RegisterTable renders the register file eight registers per row. Unless
// all is set, rows holding only zeros are omitted.
func (m *VM) RegisterTable(all bool) string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("Registers (pc=%d sp=%d base=%d)", m.pc, m.sp, m.base))
	t.AppendHeader(table.Row{"Regs", "+0", "+1", "+2", "+3", "+4", "+5", "+6", "+7"})
	for row := 0; row < NumRegisters; row += 8 {
		cells := table.Row{fmt.Sprintf("r%d-r%d", row, row+7)}
		nonZero := false
		for i := row; i < row+8; i++ {
			v := m.registers[i]
			nonZero = nonZero || v != 0
			cells = append(cells, v)
		}
		if all || nonZero {
			t.AppendRow(cells)
		}
	}
	return t.Render()
}

// StackTable renders the live words between sp and the top of the stack,
// marking the frame base.
func (m *VM) StackTable() string {
	t := table.NewWriter()
	t.SetTitle("Stack")
	t.AppendHeader(table.Row{"Index", "Address", "Value", ""})
	for i := m.sp; i+PtrSize <= m.mem.cap(); i += PtrSize {
		v, _ := m.mem.load(m.mem.addr(i), PtrSize)
		mark := ""
		if i == m.base {
			mark = "<- base"
		}
		t.AppendRow(table.Row{i, fmt.Sprintf("%#x", m.mem.addr(i)), v, mark})
	}
	return t.Render()
}
