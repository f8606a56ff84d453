package compiler

import (
	"errors"
	"strings"

	"github.com/chazu/glass/vm"
)

// EntryName is the function a program starts in.
const EntryName = "main"

// ParseFile parses a whole source file. On error the partial tree is
// returned alongside it.
func ParseFile(source string) (*Tree, error) {
	p := NewParser(source)
	tree := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		joined := make([]error, len(errs))
		for i, e := range errs {
			joined[i] = e
		}
		return tree, errors.Join(joined...)
	}
	return tree, nil
}

// Build feeds every root of tree to a fresh Builder and finalizes it.
func Build(tree *Tree) (*vm.Program, error) {
	b := NewBuilder()
	for _, id := range tree.Roots {
		if err := b.Feed(tree, id); err != nil {
			return nil, err
		}
	}
	if err := b.Finalize(); err != nil {
		return nil, err
	}
	return b.Program(), nil
}

// Compile parses and builds source.
func Compile(source string) (*vm.Program, error) {
	tree, err := ParseFile(source)
	if err != nil {
		return nil, err
	}
	return Build(tree)
}

// WrapExpression turns a bare expression typed at the REPL into a return
// statement. Input starting with an identifier, integer or minus sign is
// treated as an expression; anything else is returned unchanged.
func WrapExpression(line string) (string, bool) {
	switch NewLexer(line).Peek().Type {
	case TokenIdentifier, TokenInteger, TokenMinus:
		expr := strings.TrimRight(strings.TrimSpace(line), ";")
		return "return " + expr + ";", true
	}
	return line, false
}

// CompileLine compiles one line of interactive input and returns the
// program with the slot to start at. A line defining main starts there;
// otherwise a Halt is appended and execution starts at slot 0 so that
// top-level statements run.
func CompileLine(line string) (*vm.Program, int, error) {
	src, _ := WrapExpression(line)
	prog, err := Compile(src)
	if err != nil {
		return nil, 0, err
	}
	if pc, err := prog.EntryPoint(EntryName); err == nil {
		return prog, pc, nil
	}
	prog.Append(vm.Halt())
	return prog, 0, nil
}
