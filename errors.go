package sigil

import (
	"errors"

	"github.com/sigil-lang/sigil/errs"
)

// The error taxonomy lives in the errs package so the lexer and parser can
// raise the same types the engine surfaces. The aliases below keep the
// public API in one import.
type (
	SyntaxError               = errs.SyntaxError
	UnsupportedConstructError = errs.UnsupportedConstructError
	EvaluationError           = errs.EvaluationError
)

type SyntaxKind = errs.SyntaxKind

const (
	UnexpectedToken     = errs.UnexpectedToken
	UnbalancedDelimiter = errs.UnbalancedDelimiter
	MissingAssignment   = errs.MissingAssignment
	MalformedTernary    = errs.MalformedTernary
)

// IsSyntaxError reports whether err is (or wraps) a SyntaxError.
func IsSyntaxError(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se)
}

// IsEvaluationError reports whether err is (or wraps) an EvaluationError.
func IsEvaluationError(err error) bool {
	var ee *EvaluationError
	return errors.As(err, &ee)
}
