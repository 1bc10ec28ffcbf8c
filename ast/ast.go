// Package ast defines the compacted node forms produced by the sigil parser.
//
// The node set is a closed tagged union: evaluation is done by exhaustive
// type switching over these types, never by virtual dispatch on the nodes
// themselves.
package ast

import (
	"fmt"
	"strings"
)

// Node is the interface shared by all compacted nodes.
type Node interface {
	fmt.Stringer
	node()
}

// Literal is raw text. Quoted literals have had their delimiting quote
// characters stripped exactly once during compaction.
type Literal struct {
	Text   string
	Quoted bool
}

// Number is a numeric literal. Float indicates the literal contained a
// decimal point; Int holds the value otherwise.
type Number struct {
	Int   int64
	Float float64
	IsFlt bool
}

// Bool is the literal true or false.
type Bool struct {
	Value bool
}

// RefKind identifies the context source a Ref reads from.
type RefKind uint8

const (
	RefVariable RefKind = iota
	RefHeader
	RefBody
)

// Ref reads a value from the evaluation context: a bound or context
// variable, a message header, or the message body.
type Ref struct {
	Kind RefKind
	Name string
}

// FunctionCall invokes a registered callable with the evaluated arguments.
type FunctionCall struct {
	Name string
	Args []Node
}

// Composite groups an ordered list of nodes. A plain composite evaluates
// each part and concatenates the results (template semantics). A chained
// composite applies each stage to the previous stage's result.
type Composite struct {
	Parts   []Node
	Chained bool
}

// Unary is a prefix operator applied to one operand.
type Unary struct {
	Op      string
	Operand Node
}

// Binary is an infix operator applied to two operands. The operator is
// resolved through the function registry at evaluation time.
type Binary struct {
	Op    string
	Left  Node
	Right Node
}

// Ternary is the conditional operator cond ? then : else.
type Ternary struct {
	Cond Node
	Then Node
	Else Node
}

// InitBinding is one named binding from an init block. Chain bindings
// defer evaluation of the right-hand side until the binding is referenced.
type InitBinding struct {
	Name  string
	Chain bool
	Right Node
}

func (Literal) node()      {}
func (Number) node()       {}
func (Bool) node()         {}
func (Ref) node()          {}
func (FunctionCall) node() {}
func (Composite) node()    {}
func (Unary) node()        {}
func (Binary) node()       {}
func (Ternary) node()      {}
func (InitBinding) node()  {}

func (n Literal) String() string {
	if n.Quoted {
		return fmt.Sprintf("'%s'", n.Text)
	}
	return fmt.Sprintf("%q", n.Text)
}

func (n Number) String() string {
	if n.IsFlt {
		return fmt.Sprintf("%g", n.Float)
	}
	return fmt.Sprintf("%d", n.Int)
}

func (n Bool) String() string {
	return fmt.Sprintf("%t", n.Value)
}

func (n Ref) String() string {
	switch n.Kind {
	case RefHeader:
		return "header." + n.Name
	case RefBody:
		return "body"
	default:
		return "$" + n.Name
	}
}

func (n FunctionCall) String() string {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.String()
	}
	return n.Name + "(" + strings.Join(args, ", ") + ")"
}

func (n Composite) String() string {
	parts := make([]string, len(n.Parts))
	for i, p := range n.Parts {
		parts[i] = p.String()
	}
	if n.Chained {
		return "(" + strings.Join(parts, " -> ") + ")"
	}
	return "[" + strings.Join(parts, " + ") + "]"
}

func (n Unary) String() string {
	return n.Op + n.Operand.String()
}

func (n Binary) String() string {
	return "(" + n.Left.String() + " " + n.Op + " " + n.Right.String() + ")"
}

func (n Ternary) String() string {
	return "(" + n.Cond.String() + " ? " + n.Then.String() + " : " + n.Else.String() + ")"
}

func (n InitBinding) String() string {
	op := ":="
	if n.Chain {
		op = "::="
	}
	return "$" + n.Name + " " + op + " " + n.Right.String()
}

// Walk visits n and all its descendants in depth-first order.
func Walk(n Node, visit func(Node)) {
	if n == nil {
		return
	}
	visit(n)
	switch v := n.(type) {
	case FunctionCall:
		for _, a := range v.Args {
			Walk(a, visit)
		}
	case Composite:
		for _, p := range v.Parts {
			Walk(p, visit)
		}
	case Unary:
		Walk(v.Operand, visit)
	case Binary:
		Walk(v.Left, visit)
		Walk(v.Right, visit)
	case Ternary:
		Walk(v.Cond, visit)
		Walk(v.Then, visit)
		Walk(v.Else, visit)
	case InitBinding:
		Walk(v.Right, visit)
	}
}
