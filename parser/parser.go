// Package parser turns the token stream produced by the lexer into the
// compacted node forms defined in the ast package.
//
// Two grammars share the token stream representation. Plain source is
// compacted directly to a body node. Source beginning with an init block
// (`$init{ ... }init$`) has the block region handed to the init-block
// sub-parser, which produces an ordered list of named bindings; the
// remainder, if any, is parsed with the plain grammar as the body.
package parser

import (
	"github.com/sigil-lang/sigil/ast"
	"github.com/sigil-lang/sigil/errs"
	"github.com/sigil-lang/sigil/token"
)

// Result is the outcome of parsing one source text.
type Result struct {
	// Bindings holds the init-block bindings in declaration order.
	// Empty when the source has no init block.
	Bindings []ast.InitBinding

	// Body is the compacted body node, or nil when the source consists
	// of bindings only.
	Body ast.Node
}

// Parse compacts a token sequence into bindings and a body node.
func Parse(toks []token.Token) (*Result, error) {
	initStart, initEnd := -1, -1
	for i, t := range toks {
		switch t.Kind {
		case token.InitBlockStart:
			if initStart >= 0 {
				return nil, &errs.UnsupportedConstructError{
					Construct: t.Text,
					Msg:       "only one init block is allowed",
					Pos:       t.Pos,
				}
			}
			initStart = i
		case token.InitBlockEnd:
			initEnd = i
		}
	}

	res := &Result{}
	body := toks

	if initStart >= 0 {
		// the init block must be a preamble: nothing but whitespace
		// and comments may precede it
		for _, t := range toks[:initStart] {
			switch t.Kind {
			case token.Whitespace, token.EOL, token.Comment:
			default:
				return nil, &errs.UnsupportedConstructError{
					Construct: t.Text,
					Msg:       "init block must begin the source",
					Pos:       t.Pos,
				}
			}
		}

		bindings, err := parseInit(toks[initStart+1 : initEnd])
		if err != nil {
			return nil, err
		}
		res.Bindings = bindings
		body = trimAfterInit(toks[initEnd+1:])
	}

	node, err := compactBody(body)
	if err != nil {
		return nil, err
	}
	res.Body = node
	return res, nil
}

// trimAfterInit drops the single end-of-line that separates the init block
// from the body. It is a statement separator, not body output.
func trimAfterInit(toks []token.Token) []token.Token {
	if len(toks) > 0 && toks[0].Kind == token.EOL && toks[0].Text != "" {
		return toks[1:]
	}
	return toks
}

// compactBody runs the plain-grammar compaction pipeline: strip ignorable
// tokens, group by brackets, then fold chain, unary, binary and ternary
// constructs. A nil node means the body was empty.
func compactBody(toks []token.Token) (ast.Node, error) {
	stripped := stripBody(toks)
	if len(stripped) == 0 {
		return nil, nil
	}
	nodes, err := group(stripped, false)
	if err != nil {
		return nil, err
	}
	folded, err := fold(nodes)
	if err != nil {
		return nil, err
	}
	if len(folded) == 0 {
		return nil, nil
	}
	if len(folded) == 1 {
		return folded[0], nil
	}
	return ast.Composite{Parts: folded}, nil
}
