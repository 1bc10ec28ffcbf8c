package sigil

import (
	"strings"

	"github.com/sigil-lang/sigil/ast"
	"github.com/sigil-lang/sigil/errs"
)

// eval walks a compacted node. The node set is a closed union, so this is
// an exhaustive switch; an unknown node is a bug, not an input error.
func (a *artifact) eval(n ast.Node, ctx Context, sc *scope) (Value, error) {
	switch v := n.(type) {
	case ast.Literal:
		return StringValue(v.Text), nil

	case ast.Number:
		if v.IsFlt {
			return FloatValue(v.Float), nil
		}
		return IntValue(v.Int), nil

	case ast.Bool:
		return BoolValue(v.Value), nil

	case ast.Ref:
		return a.resolve(v, ctx, sc)

	case ast.FunctionCall:
		return a.call(v.Name, v.Args, nil, ctx, sc)

	case ast.Composite:
		if v.Chained {
			return a.evalChain(v, ctx, sc)
		}
		return a.evalConcat(v, ctx, sc)

	case ast.Unary:
		return a.evalOperator(v.Op, ctx, sc, v.Operand)

	case ast.Binary:
		return a.evalOperator(v.Op, ctx, sc, v.Left, v.Right)

	case ast.Ternary:
		cond, err := a.eval(v.Cond, ctx, sc)
		if err != nil {
			return Value{}, err
		}
		b, err := cond.AsBool()
		if err != nil {
			return Value{}, errs.Evalf("ternary condition is not a boolean: %v", err)
		}
		if b {
			return a.eval(v.Then, ctx, sc)
		}
		return a.eval(v.Else, ctx, sc)

	default:
		return Value{}, errs.Evalf("cannot evaluate node %T", n)
	}
}

// resolve reads a context reference: a bound variable, header or body.
// Variable lookups check the call-local scope first, then the context; a
// chain binding re-evaluates its right-hand side on every reference.
func (a *artifact) resolve(r ast.Ref, ctx Context, sc *scope) (Value, error) {
	switch r.Kind {
	case ast.RefHeader:
		if v, ok := ctx.GetHeader(r.Name); ok {
			return v, nil
		}
		return Value{}, errs.Evalf("header %q not found", r.Name)

	case ast.RefBody:
		if v, ok := ctx.GetBody(); ok {
			return v, nil
		}
		return Value{}, errs.Evalf("message has no body")

	default:
		if sc != nil {
			if fn, ok := sc.deferred[r.Name]; ok {
				return fn()
			}
			if v, ok := sc.vals[r.Name]; ok {
				return v, nil
			}
		}
		if v, ok := ctx.GetVariable(r.Name); ok {
			return v, nil
		}
		return Value{}, errs.Evalf("variable %q not found", r.Name)
	}
}

// call resolves a name in the registry, evaluates the arguments and
// invokes the callable. A non-nil receiver is prepended to the argument
// list; chain stages use this to pass the previous stage's result along.
func (a *artifact) call(name string, args []ast.Node, receiver *Value, ctx Context, sc *scope) (Value, error) {
	fn, ok := a.registry.Lookup(name)
	if !ok {
		return Value{}, errs.Evalf("function %q not found", name)
	}
	vals := make([]Value, 0, len(args)+1)
	if receiver != nil {
		vals = append(vals, *receiver)
	}
	for _, arg := range args {
		v, err := a.eval(arg, ctx, sc)
		if err != nil {
			return Value{}, err
		}
		vals = append(vals, v)
	}
	return fn(vals...)
}

// evalOperator dispatches an operator through the registry like any other
// callable.
func (a *artifact) evalOperator(op string, ctx Context, sc *scope, operands ...ast.Node) (Value, error) {
	fn, ok := a.registry.Lookup(op)
	if !ok {
		return Value{}, errs.Evalf("operator %q not found", op)
	}
	vals := make([]Value, len(operands))
	for i, o := range operands {
		v, err := a.eval(o, ctx, sc)
		if err != nil {
			return Value{}, err
		}
		vals[i] = v
	}
	return fn(vals...)
}

// evalChain applies the stages of a chained composite sequentially: each
// stage after the first receives the previous result as its first
// argument.
func (a *artifact) evalChain(c ast.Composite, ctx Context, sc *scope) (Value, error) {
	v, err := a.eval(c.Parts[0], ctx, sc)
	if err != nil {
		return Value{}, err
	}
	for _, stage := range c.Parts[1:] {
		fc, ok := stage.(ast.FunctionCall)
		if !ok {
			return Value{}, errs.Evalf("chain stage %s is not a function call", stage)
		}
		v, err = a.call(fc.Name, fc.Args, &v, ctx, sc)
		if err != nil {
			return Value{}, err
		}
	}
	return v, nil
}

// evalConcat renders each part of a plain composite as text and joins
// them; this is how template bodies produce their output.
func (a *artifact) evalConcat(c ast.Composite, ctx Context, sc *scope) (Value, error) {
	var sb strings.Builder
	for _, p := range c.Parts {
		v, err := a.eval(p, ctx, sc)
		if err != nil {
			return Value{}, err
		}
		sb.WriteString(v.AsString())
	}
	return StringValue(sb.String()), nil
}
