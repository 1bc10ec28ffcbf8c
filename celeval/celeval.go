// Package celeval provides a sigil.Backend backed by Google's cel-go
// evaluator. See https://github.com/google/cel-go for more information
// about CEL.
//
// The backend covers body-only expressions and predicates written in CEL
// syntax against a declared set of context variables; it has no init
// blocks and no sigil function registry. Use it when the hosting engine
// already speaks CEL and only the compile-once/evaluate-many artifact
// contract is wanted.
package celeval

import (
	pkgerrors "github.com/pkg/errors"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/checker/decls"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"

	"github.com/sigil-lang/sigil"
	"github.com/sigil-lang/sigil/errs"
)

// reserved variable name through which the message body is declared
const bodyVar = "body"

// Backend compiles CEL expressions into sigil artifacts.
type Backend struct {
	env  *cel.Env
	vars map[string]sigil.Type
}

// New builds a backend whose expressions may reference the declared
// variables. Declaring the name "body" exposes the context body under it.
func New(vars map[string]sigil.Type) (*Backend, error) {
	items := make([]*exprpb.Decl, 0, len(vars))
	for name, t := range vars {
		typ, err := celType(t)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "declaring %s", name)
		}
		items = append(items, decls.NewIdent(name, typ, nil))
	}
	env, err := cel.NewEnv(cel.Declarations(items...))
	if err != nil {
		return nil, pkgerrors.Wrap(err, "creating CEL environment")
	}
	return &Backend{env: env, vars: vars}, nil
}

// celType converts a sigil type to a CEL type.
func celType(t sigil.Type) (*exprpb.Type, error) {
	switch t.(type) {
	case sigil.String:
		return decls.String, nil
	case sigil.Int:
		return decls.Int, nil
	case sigil.Float:
		return decls.Double, nil
	case sigil.Bool:
		return decls.Bool, nil
	case sigil.Any:
		return decls.Any, nil
	}
	return nil, pkgerrors.Errorf("unsupported type %s", t)
}

// Compile parses, checks and stores the expression as a runnable program.
func (b *Backend) Compile(src string) (sigil.Artifact, error) {
	p, iss := b.env.Parse(src)
	if iss != nil && iss.Err() != nil {
		return nil, &errs.SyntaxError{
			Kind: errs.UnexpectedToken,
			Msg:  iss.Err().Error(),
		}
	}
	c, iss := b.env.Check(p)
	if iss != nil && iss.Err() != nil {
		return nil, &errs.SyntaxError{
			Kind: errs.UnexpectedToken,
			Msg:  iss.Err().Error(),
		}
	}
	prg, err := b.env.Program(c)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "generating program for %q", src)
	}
	return &artifact{src: src, prg: prg, vars: b.vars}, nil
}

// artifact is one compiled CEL program. Like native artifacts it is
// immutable and safe for concurrent evaluation.
type artifact struct {
	src  string
	prg  cel.Program
	vars map[string]sigil.Type
}

func (a *artifact) Source() string { return a.src }

// Evaluate gathers the declared variables from the context and executes
// the program.
func (a *artifact) Evaluate(ctx sigil.Context) (sigil.Value, error) {
	data := make(map[string]interface{}, len(a.vars))
	for name := range a.vars {
		if name == bodyVar {
			if v, ok := ctx.GetBody(); ok {
				data[name] = v.Val
			}
			continue
		}
		if v, ok := ctx.GetVariable(name); ok {
			data[name] = v.Val
			continue
		}
		if v, ok := ctx.GetHeader(name); ok {
			data[name] = v.Val
		}
	}

	raw, _, err := a.prg.Eval(data)
	if err != nil {
		return sigil.Value{}, &errs.EvaluationError{Msg: "evaluating " + a.src, Cause: err}
	}
	return sigil.ValueOf(raw.Value()), nil
}

// Matches evaluates the program and requires a boolean result.
func (a *artifact) Matches(ctx sigil.Context) (bool, error) {
	v, err := a.Evaluate(ctx)
	if err != nil {
		return false, err
	}
	b, err := v.AsBool()
	if err != nil {
		return false, errs.Evalf("predicate %q did not produce a boolean: %v", a.src, err)
	}
	return b, nil
}
