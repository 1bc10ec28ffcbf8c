package parser

import (
	"fmt"

	"github.com/sigil-lang/sigil/ast"
	"github.com/sigil-lang/sigil/errs"
	"github.com/sigil-lang/sigil/token"
)

// initNode pairs a compacted node with the source position of the token
// that started it, so init-grammar errors can cite a real offset.
type initNode struct {
	node ast.Node
	pos  int
}

// parseInit compacts the tokens between `$init{` and `}init$` into an
// ordered binding list.
//
// Grammar: initStatement ::= '$' name ':=' rhs [';'], with `::=` as the
// chain-assignment variant. The right-hand side is "stacked": every node
// up to the statement terminator, or to the next variable marker that
// starts an assignment, belongs to the current binding. A right-hand side
// that collapses to one child is used directly rather than being wrapped
// in a one-element composite.
func parseInit(toks []token.Token) ([]ast.InitBinding, error) {
	nodes, err := groupInit(stripInit(toks))
	if err != nil {
		return nil, err
	}

	var bindings []ast.InitBinding
	var positions []int
	i := 0
	for i < len(nodes) {
		ref, ok := nodes[i].node.(ast.Ref)
		if !ok || ref.Kind != ast.RefVariable {
			return nil, errs.Syntaxf(errs.UnexpectedToken, nodes[i].pos, textOf(nodes[i].node),
				"expected a $name variable marker")
		}
		if i+1 >= len(nodes) {
			return nil, errs.Syntaxf(errs.MissingAssignment, nodes[i].pos, "$"+ref.Name,
				"binding %q has no assignment operator", ref.Name)
		}
		op, ok := nodes[i+1].node.(*opNode)
		if !ok || op.tok.Kind != token.InitOperator {
			return nil, errs.Syntaxf(errs.MissingAssignment, nodes[i+1].pos, textOf(nodes[i+1].node),
				"binding %q: expected := or ::=", ref.Name)
		}

		j := i + 2
		var rhs []ast.Node
		for j < len(nodes) {
			if m, ok := nodes[j].node.(*opNode); ok && m.tok.Kind == token.InitEnd {
				break
			}
			if startsBinding(nodes, j) {
				break
			}
			rhs = append(rhs, nodes[j].node)
			j++
		}
		if len(rhs) == 0 {
			return nil, errs.Syntaxf(errs.UnexpectedToken, op.tok.Pos, op.tok.Text,
				"binding %q has an empty right-hand side", ref.Name)
		}

		right, err := collapse(rhs, op.tok)
		if err != nil {
			return nil, err
		}
		if err := validateRHS(right, ref.Name, nodes[i].pos); err != nil {
			return nil, err
		}

		bindings = append(bindings, ast.InitBinding{
			Name:  ref.Name,
			Chain: op.tok.ChainAssignment(),
			Right: right,
		})
		positions = append(positions, nodes[i].pos)

		// consume the optional statement terminator
		if j < len(nodes) {
			if m, ok := nodes[j].node.(*opNode); ok && m.tok.Kind == token.InitEnd {
				j++
			}
		}
		i = j
	}

	if err := validateReferences(bindings, positions); err != nil {
		return nil, err
	}
	return bindings, nil
}

// groupInit is the init-grammar variant of pass 2: the same bracket
// matching and leaf conversion, with the starting token's position kept
// alongside each top-level node.
func groupInit(toks []token.Token) ([]initNode, error) {
	var nodes []initNode
	i := 0
	for i < len(toks) {
		t := toks[i]
		switch t.Kind {
		case token.FunctionStart:
			end, err := matchEnd(toks, i)
			if err != nil {
				return nil, err
			}
			inner := toks[i+1 : end]
			if t.Text == "" {
				n, err := groupAndFold(inner, t)
				if err != nil {
					return nil, err
				}
				nodes = append(nodes, initNode{node: n, pos: t.Pos})
			} else {
				args, err := splitArgs(inner, t)
				if err != nil {
					return nil, err
				}
				nodes = append(nodes, initNode{node: ast.FunctionCall{Name: t.Text, Args: args}, pos: t.Pos})
			}
			i = end + 1
		case token.FunctionEnd:
			return nil, errs.Syntaxf(errs.UnbalancedDelimiter, t.Pos, t.Text, "unmatched closing delimiter")
		default:
			nodes = append(nodes, initNode{node: leaf(t, false), pos: t.Pos})
			i++
		}
	}
	return nodes, nil
}

// stripInit removes whitespace, end-of-lines and comments; none of them
// carry meaning inside an init block.
func stripInit(toks []token.Token) []token.Token {
	out := make([]token.Token, 0, len(toks))
	for _, t := range toks {
		switch t.Kind {
		case token.Whitespace, token.EOL, token.Comment:
		default:
			out = append(out, t)
		}
	}
	return out
}

// startsBinding reports whether the node at j begins a new init statement:
// a variable marker directly followed by an assignment operator.
func startsBinding(nodes []initNode, j int) bool {
	ref, ok := nodes[j].node.(ast.Ref)
	if !ok || ref.Kind != ast.RefVariable {
		return false
	}
	if j+1 >= len(nodes) {
		return false
	}
	m, ok := nodes[j+1].node.(*opNode)
	return ok && m.tok.Kind == token.InitOperator
}

// validateRHS enforces the init grammar: a right-hand side is a group, a
// quoted literal, a number, a boolean or a reference to an earlier
// binding. Bare unquoted text is not a valid right-hand side.
func validateRHS(n ast.Node, name string, pos int) error {
	check := func(n ast.Node) error {
		if lit, ok := n.(ast.Literal); ok && !lit.Quoted {
			return errs.Syntaxf(errs.UnexpectedToken, pos, lit.Text,
				"binding %q: bare text is not a valid right-hand side", name)
		}
		return nil
	}
	if c, ok := n.(ast.Composite); ok {
		for _, p := range c.Parts {
			if err := check(p); err != nil {
				return err
			}
		}
		return nil
	}
	return check(n)
}

// validateReferences enforces forward-only references between bindings: a
// right-hand side may name bindings declared before it, never itself or a
// later one. Names that are not bindings at all are left alone; they stay
// context-variable lookups resolved at evaluation time.
func validateReferences(bindings []ast.InitBinding, positions []int) error {
	all := make(map[string]bool, len(bindings))
	for _, b := range bindings {
		all[b.Name] = true
	}
	declared := make(map[string]bool, len(bindings))
	for k, b := range bindings {
		var bad string
		ast.Walk(b.Right, func(n ast.Node) {
			if bad != "" {
				return
			}
			if r, ok := n.(ast.Ref); ok && r.Kind == ast.RefVariable && all[r.Name] && !declared[r.Name] {
				bad = r.Name
			}
		})
		if bad != "" {
			return &errs.UnsupportedConstructError{
				Construct: "$" + bad,
				Msg:       fmt.Sprintf("binding %q references %q before its declaration", b.Name, bad),
				Pos:       positions[k],
			}
		}
		declared[b.Name] = true
	}
	return nil
}

func textOf(n ast.Node) string {
	if m, ok := n.(*opNode); ok {
		return m.tok.Text
	}
	return n.String()
}
