package sigil

import (
	"github.com/sigil-lang/sigil/ast"
	"github.com/sigil-lang/sigil/errs"
	"github.com/sigil-lang/sigil/lexer"
	"github.com/sigil-lang/sigil/parser"
	"github.com/sigil-lang/sigil/token"
)

// Expression is a compiled artifact that produces a value when evaluated
// against a context.
type Expression interface {
	Evaluate(ctx Context) (Value, error)
}

// Predicate is a compiled artifact that produces a boolean when evaluated
// against a context.
type Predicate interface {
	Matches(ctx Context) (bool, error)
}

// Artifact is a compiled source text. Artifacts are immutable after
// construction and safe for concurrent evaluation; every evaluation gets
// its own binding scope.
type Artifact interface {
	Expression
	Predicate

	// Source returns the text the artifact was compiled from.
	Source() string
}

// Backend compiles source text into reusable artifacts. The native sigil
// language is the default backend; celeval provides a CEL-based one.
type Backend interface {
	Compile(src string) (Artifact, error)
}

// nativeBackend is the sigil language pipeline: tokenize, parse, compact.
type nativeBackend struct {
	registry *Registry
}

// NewBackend returns the native language backend using the given registry
// for function and operator dispatch.
func NewBackend(r *Registry) Backend {
	if r == nil {
		r = NewRegistry()
	}
	return &nativeBackend{registry: r}
}

func (b *nativeBackend) Compile(src string) (Artifact, error) {
	toks, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	res, err := parser.Parse(toks)
	if err != nil {
		return nil, err
	}

	a := &artifact{
		src:      src,
		toks:     toks,
		bindings: res.Bindings,
		body:     res.Body,
		registry: b.registry,
		values:   map[string]bool{},
		chains:   map[string]bool{},
	}
	for _, bd := range res.Bindings {
		if bd.Chain {
			a.chains[bd.Name] = true
		} else {
			a.values[bd.Name] = true
		}
	}
	return a, nil
}

// artifact is the compiled form of one source text.
type artifact struct {
	src      string
	toks     []token.Token
	bindings []ast.InitBinding
	body     ast.Node
	registry *Registry

	// binding name sets by assignment variant
	values map[string]bool
	chains map[string]bool
}

func (a *artifact) Source() string { return a.src }

// HasBody reports whether the artifact has a body beyond its bindings.
func (a *artifact) HasBody() bool { return a.body != nil }

// Evaluate runs the bindings in declaration order, then the body. With no
// body the result is the empty string; the bindings remain observable
// through the context's variable side channel.
func (a *artifact) Evaluate(ctx Context) (Value, error) {
	sc, err := a.bind(ctx)
	if err != nil {
		return Value{}, err
	}
	if a.body == nil {
		return StringValue(""), nil
	}
	return a.eval(a.body, ctx, sc)
}

// Matches evaluates the body and coerces the result to a boolean. An
// artifact with bindings only cannot act as a predicate.
func (a *artifact) Matches(ctx Context) (bool, error) {
	if a.body == nil {
		return false, &UnsupportedConstructError{
			Construct: "$init{...}init$",
			Msg:       "a predicate requires a body expression, not bindings only",
		}
	}
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

// scope is the call-local binding state of one evaluation. It is created
// fresh per call and discarded afterwards; nothing is shared or memoized
// across evaluations.
type scope struct {
	vals     map[string]Value
	deferred map[string]func() (Value, error)
}

// bind evaluates the init bindings in declaration order. Value bindings
// are computed eagerly and mirrored into the context; chain bindings are
// stored as deferred callables and resolved when referenced.
func (a *artifact) bind(ctx Context) (*scope, error) {
	sc := &scope{
		vals:     map[string]Value{},
		deferred: map[string]func() (Value, error){},
	}
	for _, b := range a.bindings {
		if b.Chain {
			right := b.Right
			sc.deferred[b.Name] = func() (Value, error) {
				return a.eval(right, ctx, sc)
			}
			continue
		}
		v, err := a.eval(b.Right, ctx, sc)
		if err != nil {
			return nil, err
		}
		sc.vals[b.Name] = v
		ctx.SetVariable(b.Name, v)
	}
	return sc, nil
}
