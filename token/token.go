// Package token defines the lexical units shared by the sigil tokenizer and
// both grammar parsers.
package token

import "fmt"

// Kind identifies the lexical class of a token.
type Kind uint8

const (
	// EOL marks an end-of-line in the source. EOLs are kept by the
	// tokenizer so that line-sensitive body output can be reproduced,
	// and stripped later where they carry no meaning.
	EOL Kind = iota

	// Whitespace is a run of spaces or tabs.
	Whitespace

	// Text is a run of characters with no special lexical meaning on its
	// own. The parser decides whether a Text token is a literal or a
	// context accessor, based on where it appears.
	Text

	// FunctionStart opens a grouping region: either `${` (anonymous
	// group, empty token text) or `name(` (function call, token text is
	// the function name).
	FunctionStart

	// FunctionEnd closes the innermost grouping region (`}` or `)`).
	FunctionEnd

	// SingleQuote is a complete single-quoted region, delimiters included.
	SingleQuote

	// DoubleQuote is a complete double-quoted region, delimiters included.
	DoubleQuote

	// Number is an integer or floating point literal.
	Number

	// Boolean is the literal `true` or `false`.
	Boolean

	// Variable is a `$name` reference; the token text is the name without
	// the leading dollar sign.
	Variable

	// InitBlockStart is the literal `$init{` delimiter.
	InitBlockStart

	// InitBlockEnd is the literal `}init$` delimiter.
	InitBlockEnd

	// InitOperator is an init-block assignment operator. The token text
	// distinguishes the value variant (`:=`) from the chain variant
	// (`::=`).
	InitOperator

	// InitEnd is the `;` terminating an init statement.
	InitEnd

	// UnaryOperator is a prefix operator (`!`).
	UnaryOperator

	// Operator is a binary or ternary operator word or symbol.
	Operator

	// ChainOperator is the `->` operator joining sequential function
	// applications.
	ChainOperator

	// Comma separates function call arguments. Emitted only inside
	// grouping regions; a comma in plain body text stays in a Text run.
	Comma

	// Comment is a `//` line comment, text excluding the terminating EOL.
	Comment
)

var kindNames = map[Kind]string{
	EOL:            "EOL",
	Whitespace:     "Whitespace",
	Text:           "Text",
	FunctionStart:  "FunctionStart",
	FunctionEnd:    "FunctionEnd",
	SingleQuote:    "SingleQuote",
	DoubleQuote:    "DoubleQuote",
	Number:         "Number",
	Boolean:        "Boolean",
	Variable:       "Variable",
	InitBlockStart: "InitBlockStart",
	InitBlockEnd:   "InitBlockEnd",
	InitOperator:   "InitOperator",
	InitEnd:        "InitEnd",
	UnaryOperator:  "UnaryOperator",
	Operator:       "Operator",
	ChainOperator:  "ChainOperator",
	Comma:          "Comma",
	Comment:        "Comment",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Token is one lexical unit. Pos is the byte offset of the token's first
// character in the original source.
type Token struct {
	Kind Kind
	Text string
	Pos  int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d", t.Kind, t.Text, t.Pos)
}

// ChainAssignment reports whether an InitOperator token is the chain
// (deferred) assignment variant.
func (t Token) ChainAssignment() bool {
	return t.Kind == InitOperator && t.Text == "::="
}
