// Package errs defines the error taxonomy shared by the sigil tokenizer,
// parsers and evaluator.
//
// Syntax and unsupported-construct errors are raised only while turning
// source text into a compiled artifact; evaluation errors are raised only
// while running an artifact against a context. None of them are retried,
// swallowed or downgraded inside this module.
package errs

import "fmt"

// SyntaxKind classifies a SyntaxError.
type SyntaxKind uint8

const (
	// UnexpectedToken is the general parse failure: a token that cannot
	// take part in any reduction at its position.
	UnexpectedToken SyntaxKind = iota

	// UnbalancedDelimiter means quote or function nesting depth was not
	// zero at end of input, or a closer did not match its opener.
	UnbalancedDelimiter

	// MissingAssignment means an init statement had no := or ::= where
	// one was required.
	MissingAssignment

	// MalformedTernary means a ? had no matching : or a branch was empty.
	MalformedTernary
)

func (k SyntaxKind) String() string {
	switch k {
	case UnbalancedDelimiter:
		return "unbalanced delimiter"
	case MissingAssignment:
		return "missing assignment operator"
	case MalformedTernary:
		return "malformed ternary"
	default:
		return "unexpected token"
	}
}

// SyntaxError reports source text that could not be tokenized or parsed.
// Token holds the offending token text where determinable; Pos is the byte
// offset into the original source.
type SyntaxError struct {
	Kind  SyntaxKind
	Msg   string
	Token string
	Pos   int
}

func (e *SyntaxError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("syntax error at position %d (%s): %s near %q", e.Pos, e.Kind, e.Msg, e.Token)
	}
	return fmt.Sprintf("syntax error at position %d (%s): %s", e.Pos, e.Kind, e.Msg)
}

// Syntaxf builds a SyntaxError with a formatted message.
func Syntaxf(kind SyntaxKind, pos int, tok string, format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{
		Kind:  kind,
		Msg:   fmt.Sprintf(format, args...),
		Token: tok,
		Pos:   pos,
	}
}

// UnsupportedConstructError reports a construct that is valid in one grammar
// mode but was used where that mode does not apply.
type UnsupportedConstructError struct {
	Construct string
	Msg       string
	Pos       int
}

func (e *UnsupportedConstructError) Error() string {
	return fmt.Sprintf("unsupported construct %q at position %d: %s", e.Construct, e.Pos, e.Msg)
}

// EvaluationError reports a failure while evaluating a compiled artifact:
// an unresolved function name, a coercion failure, or a missing context
// value.
type EvaluationError struct {
	Msg   string
	Cause error
}

func (e *EvaluationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("evaluation error: %s: %v", e.Msg, e.Cause)
	}
	return "evaluation error: " + e.Msg
}

func (e *EvaluationError) Unwrap() error {
	return e.Cause
}

// Evalf builds an EvaluationError with a formatted message.
func Evalf(format string, args ...interface{}) *EvaluationError {
	return &EvaluationError{Msg: fmt.Sprintf(format, args...)}
}
