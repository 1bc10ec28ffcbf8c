package parser

import (
	"strconv"
	"strings"

	"github.com/sigil-lang/sigil/ast"
	"github.com/sigil-lang/sigil/errs"
	"github.com/sigil-lang/sigil/token"
)

// Compaction runs in four passes, each a pure transformation:
//
//  1. stripBody removes comments and the whitespace that carries no output
//     meaning.
//  2. group matches nested function-start/-end brackets recursively,
//     innermost first.
//  3. foldChain collapses `->` sequences into chained composites.
//  4. foldUnary, foldBinary (in precedence tiers) and foldTernary reduce
//     the remaining operators; ternary binds loosest, chain tightest.
//
// Any operator marker surviving all passes is a syntax error.

// opNode marks an unreduced operator in a node list between passes. It
// never appears in a finished parse result.
type opNode struct {
	ast.Literal
	tok token.Token
}

// operator-class token kinds, used when deciding which whitespace to keep
func operatorClass(k token.Kind) bool {
	switch k {
	case token.Operator, token.UnaryOperator, token.ChainOperator,
		token.InitOperator, token.InitEnd, token.Comma:
		return true
	}
	return false
}

// stripBody is compaction pass 1 for the plain grammar. Comments always
// go. Inside bracket groups, whitespace and end-of-lines always go. At the
// top level they are output text, and are kept unless they sit next to an
// operator.
func stripBody(toks []token.Token) []token.Token {
	out := make([]token.Token, 0, len(toks))
	depth := 0
	for i, t := range toks {
		switch t.Kind {
		case token.FunctionStart:
			depth++
			out = append(out, t)
		case token.FunctionEnd:
			depth--
			out = append(out, t)
		case token.Comment:
			// dropped
		case token.Whitespace, token.EOL:
			if t.Text == "" {
				continue // sentinel
			}
			if depth > 0 {
				continue
			}
			// the EOL ending a comment goes with the comment
			if t.Kind == token.EOL && i > 0 && toks[i-1].Kind == token.Comment {
				continue
			}
			if operatorAdjacent(toks, i) {
				continue
			}
			out = append(out, t)
		default:
			out = append(out, t)
		}
	}
	return out
}

// operatorAdjacent reports whether the nearest non-ignorable token on
// either side of position i is an operator.
func operatorAdjacent(toks []token.Token, i int) bool {
	for j := i - 1; j >= 0; j-- {
		k := toks[j].Kind
		if k == token.Whitespace || k == token.EOL || k == token.Comment {
			continue
		}
		if operatorClass(k) {
			return true
		}
		break
	}
	for j := i + 1; j < len(toks); j++ {
		k := toks[j].Kind
		if k == token.Whitespace || k == token.EOL || k == token.Comment {
			continue
		}
		if operatorClass(k) {
			return true
		}
		break
	}
	return false
}

// group is compaction pass 2: it matches bracket pairs recursively and
// converts the remaining tokens to leaf nodes. Function-call groups have
// their arguments split on top-level commas; each argument and each
// anonymous group body is folded bottom-up, so inner groups finish before
// outer ones.
func group(toks []token.Token, inGroup bool) ([]ast.Node, error) {
	var nodes []ast.Node
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
				nodes = append(nodes, n)
			} else {
				args, err := splitArgs(inner, t)
				if err != nil {
					return nil, err
				}
				nodes = append(nodes, ast.FunctionCall{Name: t.Text, Args: args})
			}
			i = end + 1
		case token.FunctionEnd:
			return nil, errs.Syntaxf(errs.UnbalancedDelimiter, t.Pos, t.Text, "unmatched closing delimiter")
		default:
			nodes = append(nodes, leaf(t, inGroup))
			i++
		}
	}
	return nodes, nil
}

// matchEnd returns the index of the FunctionEnd matching the
// FunctionStart at index start.
func matchEnd(toks []token.Token, start int) (int, error) {
	depth := 0
	for i := start; i < len(toks); i++ {
		switch toks[i].Kind {
		case token.FunctionStart:
			depth++
		case token.FunctionEnd:
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	t := toks[start]
	return 0, errs.Syntaxf(errs.UnbalancedDelimiter, t.Pos, t.Text, "unclosed group")
}

// groupAndFold reduces a bracketed region to a single node.
func groupAndFold(toks []token.Token, open token.Token) (ast.Node, error) {
	nodes, err := group(toks, true)
	if err != nil {
		return nil, err
	}
	return collapse(nodes, open)
}

// splitArgs splits the tokens of a function-call group at top-level commas
// and reduces each argument to a single node.
func splitArgs(toks []token.Token, open token.Token) ([]ast.Node, error) {
	var args []ast.Node
	if len(toks) == 0 {
		return args, nil
	}
	depth, from := 0, 0
	for i := 0; i <= len(toks); i++ {
		if i < len(toks) {
			switch toks[i].Kind {
			case token.FunctionStart:
				depth++
				continue
			case token.FunctionEnd:
				depth--
				continue
			case token.Comma:
				if depth != 0 {
					continue
				}
			default:
				continue
			}
		}
		arg, err := groupAndFold(toks[from:i], open)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		from = i + 1
	}
	return args, nil
}

// leaf converts one non-bracket token to a node. Bare text inside a group
// is a context accessor; at the top level it is literal output.
func leaf(t token.Token, inGroup bool) ast.Node {
	switch t.Kind {
	case token.Text:
		if inGroup {
			return classifyRef(t.Text)
		}
		return ast.Literal{Text: t.Text}
	case token.Whitespace, token.EOL:
		return ast.Literal{Text: t.Text}
	case token.SingleQuote, token.DoubleQuote:
		return ast.Literal{Text: t.Text[1 : len(t.Text)-1], Quoted: true}
	case token.Number:
		if strings.Contains(t.Text, ".") {
			f, _ := strconv.ParseFloat(t.Text, 64)
			return ast.Number{Float: f, IsFlt: true}
		}
		n, _ := strconv.ParseInt(t.Text, 10, 64)
		return ast.Number{Int: n}
	case token.Boolean:
		return ast.Bool{Value: t.Text == "true"}
	case token.Variable:
		return ast.Ref{Kind: ast.RefVariable, Name: t.Text}
	default:
		return &opNode{tok: t}
	}
}

// classifyRef maps a bare word inside a group to its context source.
func classifyRef(text string) ast.Node {
	switch {
	case text == "body":
		return ast.Ref{Kind: ast.RefBody}
	case strings.HasPrefix(text, "header."):
		return ast.Ref{Kind: ast.RefHeader, Name: strings.TrimPrefix(text, "header.")}
	case strings.HasPrefix(text, "variable."):
		return ast.Ref{Kind: ast.RefVariable, Name: strings.TrimPrefix(text, "variable.")}
	default:
		return ast.Ref{Kind: ast.RefVariable, Name: text}
	}
}

// binary operator tiers, tightest first; each tier folds left to right
var binaryTiers = []map[string]bool{
	{"*": true, "/": true, "%": true},
	{"+": true, "-": true},
	{"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true, "contains": true},
	{"&&": true},
	{"||": true},
}

// fold runs passes 3 and 4 over a node list.
func fold(nodes []ast.Node) ([]ast.Node, error) {
	out, err := foldChain(nodes)
	if err != nil {
		return nil, err
	}
	out, err = foldUnary(out)
	if err != nil {
		return nil, err
	}
	for _, tier := range binaryTiers {
		out, err = foldBinary(out, tier)
		if err != nil {
			return nil, err
		}
	}
	out, err = foldTernary(out)
	if err != nil {
		return nil, err
	}
	for _, n := range out {
		if m, ok := n.(*opNode); ok {
			kind := errs.UnexpectedToken
			if m.tok.Text == ":" {
				kind = errs.MalformedTernary
			}
			return nil, errs.Syntaxf(kind, m.tok.Pos, m.tok.Text, "operator could not be reduced")
		}
	}
	return out, nil
}

// collapse reduces a folded node list to a single node: one node is used
// directly, several form a composite, none is a syntax error.
func collapse(nodes []ast.Node, at token.Token) (ast.Node, error) {
	folded, err := fold(nodes)
	if err != nil {
		return nil, err
	}
	switch len(folded) {
	case 0:
		return nil, errs.Syntaxf(errs.UnexpectedToken, at.Pos, at.Text, "empty group")
	case 1:
		return folded[0], nil
	default:
		return ast.Composite{Parts: folded}, nil
	}
}

// foldChain is pass 3: function applications joined by `->` collapse into
// one chained composite. Chain binds tighter than every other operator.
func foldChain(nodes []ast.Node) ([]ast.Node, error) {
	var out []ast.Node
	i := 0
	for i < len(nodes) {
		m, ok := nodes[i].(*opNode)
		if !ok || m.tok.Kind != token.ChainOperator {
			out = append(out, nodes[i])
			i++
			continue
		}
		if len(out) == 0 || i+1 >= len(nodes) {
			return nil, errs.Syntaxf(errs.UnexpectedToken, m.tok.Pos, m.tok.Text, "chain operator needs operands on both sides")
		}
		next := nodes[i+1]
		if _, bad := next.(*opNode); bad {
			return nil, errs.Syntaxf(errs.UnexpectedToken, m.tok.Pos, m.tok.Text, "chain operator needs a value on its right")
		}
		last := out[len(out)-1]
		if c, ok := last.(ast.Composite); ok && c.Chained {
			c.Parts = append(c.Parts, next)
			out[len(out)-1] = c
		} else {
			if _, bad := last.(*opNode); bad {
				return nil, errs.Syntaxf(errs.UnexpectedToken, m.tok.Pos, m.tok.Text, "chain operator needs a value on its left")
			}
			out[len(out)-1] = ast.Composite{Chained: true, Parts: []ast.Node{last, next}}
		}
		i += 2
	}
	return out, nil
}

// foldUnary reduces prefix operators right to left, so `!!x` nests.
func foldUnary(nodes []ast.Node) ([]ast.Node, error) {
	out := append([]ast.Node(nil), nodes...)
	for i := len(out) - 1; i >= 0; i-- {
		m, ok := out[i].(*opNode)
		if !ok || m.tok.Kind != token.UnaryOperator {
			continue
		}
		if i+1 >= len(out) {
			return nil, errs.Syntaxf(errs.UnexpectedToken, m.tok.Pos, m.tok.Text, "unary operator has no operand")
		}
		if _, bad := out[i+1].(*opNode); bad {
			return nil, errs.Syntaxf(errs.UnexpectedToken, m.tok.Pos, m.tok.Text, "unary operator has no operand")
		}
		out[i] = ast.Unary{Op: m.tok.Text, Operand: out[i+1]}
		out = append(out[:i+1], out[i+2:]...)
	}
	return out, nil
}

// foldBinary reduces the operators of one precedence tier left to right.
func foldBinary(nodes []ast.Node, tier map[string]bool) ([]ast.Node, error) {
	var out []ast.Node
	i := 0
	for i < len(nodes) {
		m, ok := nodes[i].(*opNode)
		if !ok || m.tok.Kind != token.Operator || !tier[m.tok.Text] {
			out = append(out, nodes[i])
			i++
			continue
		}
		if len(out) == 0 || i+1 >= len(nodes) {
			return nil, errs.Syntaxf(errs.UnexpectedToken, m.tok.Pos, m.tok.Text, "operator %q has a missing operand", m.tok.Text)
		}
		left := out[len(out)-1]
		right := nodes[i+1]
		if _, bad := left.(*opNode); bad {
			return nil, errs.Syntaxf(errs.UnexpectedToken, m.tok.Pos, m.tok.Text, "operator %q has a missing left operand", m.tok.Text)
		}
		if _, bad := right.(*opNode); bad {
			return nil, errs.Syntaxf(errs.UnexpectedToken, m.tok.Pos, m.tok.Text, "operator %q has a missing right operand", m.tok.Text)
		}
		out[len(out)-1] = ast.Binary{Op: m.tok.Text, Left: left, Right: right}
		i += 2
	}
	return out, nil
}

// foldTernary reduces `cond ? a : b` last; the else branch extends to the
// end of the list, which makes nested ternaries right-associative.
func foldTernary(nodes []ast.Node) ([]ast.Node, error) {
	q := -1
	for i, n := range nodes {
		if m, ok := n.(*opNode); ok && m.tok.Kind == token.Operator && m.tok.Text == "?" {
			q = i
			break
		}
	}
	if q < 0 {
		return nodes, nil
	}
	m := nodes[q].(*opNode)
	if q == 0 {
		return nil, errs.Syntaxf(errs.MalformedTernary, m.tok.Pos, m.tok.Text, "ternary has no condition")
	}
	if _, bad := nodes[q-1].(*opNode); bad {
		return nil, errs.Syntaxf(errs.MalformedTernary, m.tok.Pos, m.tok.Text, "ternary has no condition")
	}

	// find the matching ':', skipping over nested '?'
	c, depth := -1, 0
	for i := q + 1; i < len(nodes); i++ {
		mm, ok := nodes[i].(*opNode)
		if !ok || mm.tok.Kind != token.Operator {
			continue
		}
		switch mm.tok.Text {
		case "?":
			depth++
		case ":":
			if depth == 0 {
				c = i
			} else {
				depth--
			}
		}
		if c >= 0 {
			break
		}
	}
	if c < 0 {
		return nil, errs.Syntaxf(errs.MalformedTernary, m.tok.Pos, m.tok.Text, "ternary has no ':' branch")
	}

	thenNode, err := collapse(nodes[q+1:c], m.tok)
	if err != nil {
		return nil, err
	}
	elseNode, err := collapse(nodes[c+1:], m.tok)
	if err != nil {
		return nil, err
	}

	out := append([]ast.Node(nil), nodes[:q-1]...)
	out = append(out, ast.Ternary{Cond: nodes[q-1], Then: thenNode, Else: elseNode})
	return out, nil
}
