package compiler

import (
	"fmt"
	"sort"
)

// ---------------------------------------------------------------------------
// AST: arena of nodes addressed by index
// ---------------------------------------------------------------------------

// Position represents a source location.
type Position struct {
	Offset int // byte offset
	Line   int // 1-based line number
	Column int // 1-based column number
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// NodeID addresses a node inside its Tree.
type NodeID int32

// NoNode marks an absent child or the parent of a root.
const NoNode NodeID = -1

// NodeKind is the closed set of node variants.
type NodeKind uint8

const (
	KindFuncDecl   NodeKind = iota // Token: name; Left: body block
	KindReturn                     // Left: expression
	KindBlock                      // Children: statements
	KindLiteral                    // Token: integer literal
	KindIdentifier                 // Token: name
	KindBinary                     // Token: operator; Left, Right: operands
	KindUnary                      // Token: operator; Left: operand
	KindCall                       // Left: callee
)

var kindNames = [...]string{
	KindFuncDecl:   "function declaration",
	KindReturn:     "return statement",
	KindBlock:      "block",
	KindLiteral:    "integer literal",
	KindIdentifier: "identifier",
	KindBinary:     "binary expression",
	KindUnary:      "unary expression",
	KindCall:       "call expression",
}

func (k NodeKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("NodeKind(%d)", uint8(k))
}

// Node is one AST node. Which fields are meaningful depends on Kind, as
// listed next to the NodeKind constants.
type Node struct {
	Kind     NodeKind
	Token    Token
	Parent   NodeID
	Left     NodeID
	Right    NodeID
	Children []NodeID
}

// Pos returns the source position of the node's leading token.
func (n *Node) Pos() Position {
	return n.Token.Pos
}

// Tree owns every node of one parsed unit. Roots lists the top-level
// statements in source order.
type Tree struct {
	Nodes []Node
	Roots []NodeID
}

// Node returns the node with the given id.
func (t *Tree) Node(id NodeID) *Node {
	return &t.Nodes[id]
}

// Parent returns the id of the node's parent, or NoNode for a root.
func (t *Tree) Parent(id NodeID) NodeID {
	return t.Nodes[id].Parent
}

func (t *Tree) add(n Node) NodeID {
	n.Parent = NoNode
	id := NodeID(len(t.Nodes))
	t.Nodes = append(t.Nodes, n)
	return id
}

func (t *Tree) newLeaf(kind NodeKind, tok Token) NodeID {
	return t.add(Node{Kind: kind, Token: tok, Left: NoNode, Right: NoNode})
}

func (t *Tree) newUnary(kind NodeKind, tok Token, child NodeID) NodeID {
	id := t.add(Node{Kind: kind, Token: tok, Left: child, Right: NoNode})
	t.adopt(id, child)
	return id
}

func (t *Tree) newBinary(tok Token, lhs, rhs NodeID) NodeID {
	id := t.add(Node{Kind: KindBinary, Token: tok, Left: lhs, Right: rhs})
	t.adopt(id, lhs)
	t.adopt(id, rhs)
	return id
}

func (t *Tree) newBlock(tok Token, stmts []NodeID) NodeID {
	id := t.add(Node{Kind: KindBlock, Token: tok, Left: NoNode, Right: NoNode, Children: stmts})
	for _, s := range stmts {
		t.adopt(id, s)
	}
	return id
}

func (t *Tree) adopt(parent, child NodeID) {
	if child != NoNode {
		t.Nodes[child].Parent = parent
	}
}

// Body returns the statements of a function declaration.
func (t *Tree) Body(fn NodeID) []NodeID {
	body := t.Nodes[fn].Left
	if body == NoNode {
		return nil
	}
	return t.Nodes[body].Children
}

// Functions returns every function declaration in the tree, nested ones
// included, in source order.
func (t *Tree) Functions() []NodeID {
	var ids []NodeID
	for i := range t.Nodes {
		if t.Nodes[i].Kind == KindFuncDecl {
			ids = append(ids, NodeID(i))
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		return t.Nodes[ids[i]].Token.Pos.Offset < t.Nodes[ids[j]].Token.Pos.Offset
	})
	return ids
}
