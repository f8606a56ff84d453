package server

import (
	"errors"
	"fmt"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/chazu/glass/compiler"
	"github.com/chazu/glass/vm"
)

// Analysis is what the server knows about one version of a document.
type Analysis struct {
	Tree    *compiler.Tree
	Program *vm.Program

	// Result holds r0 after main ran to completion; Ran reports whether
	// it did.
	Result vm.Word
	Ran    bool

	Diagnostics []protocol.Diagnostic
}

// analyze compiles text and, when it defines main, runs it on the
// worker's VM. Runtime faults become warnings on main's declaration.
func analyze(w *VMWorker, text string) *Analysis {
	a := &Analysis{Diagnostics: []protocol.Diagnostic{}}

	tree, err := compiler.ParseFile(text)
	a.Tree = tree
	if err != nil {
		a.addCompileErrors(err)
		return a
	}
	prog, err := compiler.Build(tree)
	if err != nil {
		a.addCompileErrors(err)
		return a
	}
	a.Program = prog

	pc, err := prog.EntryPoint(compiler.EntryName)
	if err != nil {
		return a
	}
	result, err := w.Run(prog, pc)
	if err != nil {
		pos := a.declaration(compiler.EntryName)
		msg := err.Error()
		var f *vm.Fault
		if errors.As(err, &f) {
			msg = fmt.Sprintf("%s: %s", compiler.EntryName, f.Error())
		}
		a.add(pos, len(compiler.EntryName), protocol.DiagnosticSeverityWarning, msg)
		return a
	}
	a.Result = result
	a.Ran = true
	return a
}

func (a *Analysis) addCompileErrors(err error) {
	for _, ce := range compiler.Errors(err) {
		width := len(ce.Name)
		if width == 0 {
			width = 1
		}
		a.add(ce.Pos, width, protocol.DiagnosticSeverityError, ce.Error())
	}
}

func (a *Analysis) add(pos compiler.Position, width int, severity protocol.DiagnosticSeverity, msg string) {
	source := lspName
	start := toLSP(pos)
	end := start
	end.Character += protocol.UInteger(width)
	a.Diagnostics = append(a.Diagnostics, protocol.Diagnostic{
		Range:    protocol.Range{Start: start, End: end},
		Severity: &severity,
		Source:   &source,
		Message:  msg,
	})
}

// declaration returns the position of the named function's name token,
// or the zero position if the tree does not declare it.
func (a *Analysis) declaration(name string) compiler.Position {
	if a.Tree == nil {
		return compiler.Position{}
	}
	for _, id := range a.Tree.Functions() {
		if n := a.Tree.Node(id); n.Token.Literal == name {
			return n.Pos()
		}
	}
	return compiler.Position{}
}

// describe renders hover text for a function: entry slot, disassembly and,
// for main, the value it returned.
func (a *Analysis) describe(name string) (string, bool) {
	if a.Program == nil {
		return "", false
	}
	code, entry, err := a.Program.Function(name)
	if err != nil {
		return "", false
	}
	md := fmt.Sprintf("**func %s()** entry @%d\n\n```\n", name, entry)
	for i, ins := range code {
		md += vm.DisassembleInstruction(entry+i, ins) + "\n"
	}
	md += "```"
	if name == compiler.EntryName && a.Ran {
		md += fmt.Sprintf("\n\nreturns `%d`", a.Result)
	}
	return md, true
}

// toLSP converts a 1-based compiler position to a 0-based LSP position.
func toLSP(pos compiler.Position) protocol.Position {
	var p protocol.Position
	if pos.Line > 0 {
		p.Line = protocol.UInteger(pos.Line - 1)
	}
	if pos.Column > 0 {
		p.Character = protocol.UInteger(pos.Column - 1)
	}
	return p
}
