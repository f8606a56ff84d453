package compiler

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/tliron/commonlog"

	"github.com/chazu/glass/vm"
)

var log = commonlog.GetLogger("glass.compiler")

// ---------------------------------------------------------------------------
// Codegen: lower the AST to a linear instruction sequence
// ---------------------------------------------------------------------------

// Relocation is an instruction slot whose immediate or branch target must
// be patched with the entry of Name once every symbol is known.
type Relocation struct {
	Slot int
	Name string
	Pos  Position
}

// Builder lowers top-level nodes into instructions. Feed may be called any
// number of times; Finalize resolves symbol references and may be called
// once, after which the builder is frozen.
type Builder struct {
	code      []vm.Instruction
	symbols   map[string]int
	pending   []Relocation
	finalized bool
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{symbols: make(map[string]int)}
}

var binaryOps = map[TokenType]vm.Opcode{
	TokenPlus:  vm.OpAdd,
	TokenMinus: vm.OpSub,
	TokenStar:  vm.OpMul,
	TokenSlash: vm.OpDiv,
}

// Feed lowers one top-level node of tree.
func (b *Builder) Feed(tree *Tree, id NodeID) error {
	if b.finalized {
		return ErrFinalized
	}
	return b.feedStatement(tree, id, newRegAlloc())
}

// Finalize patches every pending relocation with its symbol's entry. All
// unresolved names are reported together, in slot order.
func (b *Builder) Finalize() error {
	if b.finalized {
		return ErrFinalized
	}
	b.finalized = true

	var errs []error
	for _, r := range b.pending {
		entry, ok := b.symbols[r.Name]
		if !ok {
			errs = append(errs, &Error{Pos: r.Pos, Kind: ErrUnresolvedSymbol, Name: r.Name})
			continue
		}
		if err := b.relocate(r.Slot, entry); err != nil {
			errs = append(errs, err)
		}
	}
	log.Debugf("finalize: %d instructions, %d relocations, %d unresolved", len(b.code), len(b.pending), len(errs))
	b.pending = nil
	return errors.Join(errs...)
}

// Program returns the instructions and symbol table built so far.
func (b *Builder) Program() *vm.Program {
	return &vm.Program{Code: b.code, Symbols: b.symbols}
}

// Symbols returns the symbol table built so far.
func (b *Builder) Symbols() map[string]int {
	return b.symbols
}

// Pending returns the relocations not yet resolved.
func (b *Builder) Pending() []Relocation {
	return b.pending
}

// ---------------------------------------------------------------------------
// Emission
// ---------------------------------------------------------------------------

func (b *Builder) emit(ins vm.Instruction) int {
	b.code = append(b.code, ins)
	return len(b.code) - 1
}

// emitRelocated emits ins with a zero placeholder and records that its
// operand must become the entry of name.
func (b *Builder) emitRelocated(ins vm.Instruction, name string, pos Position) {
	ins.Value = 0
	slot := b.emit(ins)
	b.pending = append(b.pending, Relocation{Slot: slot, Name: name, Pos: pos})
}

func (b *Builder) relocate(slot, entry int) error {
	ins := &b.code[slot]
	switch ins.Op.Shape() {
	case vm.ShapeImmediate, vm.ShapeBranch:
		ins.Value = vm.Word(entry)
		return nil
	}
	return fmt.Errorf("slot %d: cannot relocate %s instruction %s", slot, ins.Op.Shape(), ins.Op)
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (b *Builder) feedStatement(tree *Tree, id NodeID, alloc *regAlloc) error {
	n := tree.Node(id)
	switch n.Kind {
	case KindFuncDecl:
		return b.feedFunc(tree, id)
	case KindReturn:
		return b.feedReturn(tree, n, alloc)
	case KindBlock, KindLiteral, KindIdentifier, KindBinary, KindUnary, KindCall:
		return unsupported(n, "not a statement")
	}
	return unsupported(n, "unknown node")
}

func (b *Builder) feedFunc(tree *Tree, id NodeID) error {
	n := tree.Node(id)
	name := n.Token.Literal
	if _, dup := b.symbols[name]; dup {
		return &Error{Pos: n.Pos(), Kind: ErrDuplicateSymbol, Name: name}
	}
	b.emit(vm.Marker(name))
	b.symbols[name] = len(b.code)

	alloc := newRegAlloc()
	for _, stmt := range tree.Body(id) {
		if err := b.feedStatement(tree, stmt, alloc); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) feedReturn(tree *Tree, n *Node, alloc *regAlloc) error {
	release, err := alloc.reserve(0)
	if err != nil {
		return &Error{Pos: n.Pos(), Kind: err}
	}
	defer release()

	if err := b.lower(tree, n.Left, 0, alloc); err != nil {
		return err
	}
	b.emit(vm.Return())
	return nil
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// lower emits code leaving the value of expression id in target.
func (b *Builder) lower(tree *Tree, id NodeID, target vm.Reg, alloc *regAlloc) error {
	n := tree.Node(id)
	switch n.Kind {
	case KindLiteral:
		v, err := strconv.ParseUint(n.Token.Literal, 10, 64)
		if err != nil {
			return &Error{Pos: n.Pos(), Kind: ErrLiteralRange, Msg: n.Token.Literal}
		}
		b.emit(vm.LoadImm(target, v))
		return nil

	case KindIdentifier:
		b.emitRelocated(vm.LoadImm(target, 0), n.Token.Literal, n.Pos())
		return nil

	case KindBinary:
		op, ok := binaryOps[n.Token.Type]
		if !ok {
			return unsupported(n, fmt.Sprintf("operator %q", n.Token.Literal))
		}
		rhs, release, err := alloc.acquire()
		if err != nil {
			return &Error{Pos: n.Pos(), Kind: err}
		}
		defer release()

		if err := b.lower(tree, n.Left, target, alloc); err != nil {
			return err
		}
		if err := b.lower(tree, n.Right, rhs, alloc); err != nil {
			return err
		}
		b.emit(vm.Pair(op, target, rhs))
		return nil

	case KindUnary:
		return unsupported(n, fmt.Sprintf("prefix %q", n.Token.Literal))
	case KindCall:
		return unsupported(n, "calls")
	case KindBlock:
		return unsupported(n, "block expressions")
	case KindFuncDecl, KindReturn:
		return unsupported(n, "not an expression")
	}
	return unsupported(n, "unknown node")
}

func unsupported(n *Node, detail string) error {
	return &Error{Pos: n.Pos(), Kind: ErrUnsupported, Msg: fmt.Sprintf("%s: %s", n.Kind, detail)}
}
