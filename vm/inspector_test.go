package vm

import (
	"strings"
	"testing"
)

func TestDisassemblyTable(t *testing.T) {
	out := DisassemblyTable(sampleProgram())
	for _, want := range []string{"LOAD_IMM r0, 40", "ADD r0, r1", "main"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	// go-pretty upper-cases headers by default.
	if !strings.Contains(strings.ToUpper(out), "SLOT") {
		t.Errorf("table missing header:\n%s", out)
	}
}

func TestRegisterTable(t *testing.T) {
	m := newTestVM(t)
	m.SetRegister(0, 42)
	m.SetRegister(17, 7)

	out := m.RegisterTable(false)
	if !strings.Contains(out, "r0-r7") || !strings.Contains(out, "r16-r23") {
		t.Errorf("expected non-zero rows:\n%s", out)
	}
	if strings.Contains(out, "r8-r15") {
		t.Errorf("zero row should be omitted:\n%s", out)
	}
	if !strings.Contains(m.RegisterTable(true), "r248-r255") {
		t.Error("all=true should list every row")
	}
}

func TestStackTable(t *testing.T) {
	m := newTestVM(t, StackSize(32))
	out := m.StackTable()
	if !strings.Contains(out, "24") {
		t.Errorf("sentinel slot missing:\n%s", out)
	}
}
