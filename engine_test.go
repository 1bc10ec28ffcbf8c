package sigil_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/sigil-lang/sigil"
)

const orderInit = "$init{\n" +
	"  $sum := ${sum(${header.lines},100)};\n" +
	"  $sku := ${body contains 'Camel' ? '123' : '999'};\n" +
	"}init$"

func orderContext(lines, body string) *sigil.MapContext {
	return sigil.NewMapContext().SetHeader("lines", lines).SetBody(body)
}

func TestOrderTemplate(t *testing.T) {
	e := sigil.NewEngine()

	expr, err := e.Expression(orderInit + "\norderId=$sku,total=$sum\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v, err := expr.Evaluate(orderContext("75,33", "Hello Camel"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.AsString() != "orderId=123,total=208\n" {
		t.Errorf("got %q, want %q", v.AsString(), "orderId=123,total=208\n")
	}
}

func TestOrderPredicate(t *testing.T) {
	e := sigil.NewEngine()

	p, err := e.Predicate(orderInit + "\n$sum > 200 && $sku != 999")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		lines string
		body  string
		want  bool
	}{
		{"75,33", "Hello Camel", true},
		{"3,5", "Hello Camel", false},
		{"75,99", "Hello World", false},
	}

	for _, c := range cases {
		got, err := p.Matches(orderContext(c.lines, c.body))
		if err != nil {
			t.Fatalf("lines=%q body=%q: unexpected error: %v", c.lines, c.body, err)
		}
		if got != c.want {
			t.Errorf("lines=%q body=%q: got %t, want %t", c.lines, c.body, got, c.want)
		}
	}
}

func TestInitOnlyBindings(t *testing.T) {
	e := sigil.NewEngine()

	expr, err := e.Expression(orderInit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := orderContext("75,33", "Hello Camel")
	v, err := expr.Evaluate(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.AsString() != "" {
		t.Errorf("init-only text evaluated to %q, want empty", v.AsString())
	}

	sku, ok := ctx.GetVariable("sku")
	if !ok || sku.AsString() != "123" {
		t.Errorf("sku = %v (ok=%t), want 123", sku.Val, ok)
	}
	sum, ok := ctx.GetVariable("sum")
	if !ok || sum.AsString() != "208" {
		t.Errorf("sum = %v (ok=%t), want 208", sum.Val, ok)
	}
}

func TestInitOnlyPredicateRejected(t *testing.T) {
	e := sigil.NewEngine()

	_, err := e.Predicate(orderInit)
	if err == nil {
		t.Fatalf("expected an error for an init-only predicate")
	}
	var uc *sigil.UnsupportedConstructError
	if !errors.As(err, &uc) {
		t.Errorf("got %T, want UnsupportedConstructError", err)
	}
}

func TestAverageTruncation(t *testing.T) {
	e := sigil.NewEngine()

	src := "$init{ $a := ${val(1)}; $b := ${val(2)}; $c := ${val(3)}; }init$\n" +
		"average($a,$b,$c)"
	expr, err := e.Expression(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v, err := expr.Evaluate(sigil.NewMapContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, ok := v.Val.(int64); !ok || n != 2 {
		t.Errorf("got %v (%s), want integer 2", v.Val, v.Typ)
	}
}

func TestUnbalancedSource(t *testing.T) {
	e := sigil.NewEngine()

	cases := []string{
		"${sum(${header.lines},100)",
		"${sum(${header.lines,100)}",
		"${sum(${header.lines},100}",
		"${body",
		"'unterminated",
		"$init{ $x := 1; ",
	}

	for _, src := range cases {
		_, err := e.Expression(src)
		if err == nil {
			t.Errorf("%q: expected a syntax error", src)
			continue
		}
		if !sigil.IsSyntaxError(err) {
			t.Errorf("%q: got %v, want a SyntaxError", src, err)
		}
	}
}

func TestQuotedLiteralBoundary(t *testing.T) {
	e := sigil.NewEngine()

	expr, err := e.Expression("'Hi := Me $sku'")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v, err := expr.Evaluate(sigil.NewMapContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.AsString() != "Hi := Me $sku" {
		t.Errorf("got %q, want the literal content back", v.AsString())
	}
}

func TestCompileDeterminism(t *testing.T) {
	e := sigil.NewEngine(sigil.NoCache())
	src := orderInit + "\norderId=$sku,total=$sum\n"

	a1, err := e.Compile(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a2, err := e.Compile(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(a1, a2) {
		t.Errorf("compiling identical source twice produced different artifacts")
	}
}

func TestReferentialTransparency(t *testing.T) {
	e := sigil.NewEngine()

	expr, err := e.Expression(orderInit + "\norderId=$sku,total=$sum\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v1, err := expr.Evaluate(orderContext("75,33", "Hello Camel"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v2, err := expr.Evaluate(orderContext("75,33", "Hello Camel"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v1.AsString() != v2.AsString() {
		t.Errorf("same artifact, equal contexts: got %q then %q", v1.AsString(), v2.AsString())
	}
}

func TestChainOperator(t *testing.T) {
	e := sigil.NewEngine()

	expr, err := e.Expression("${${header.lines} -> sum(100)}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v, err := expr.Evaluate(orderContext("75,33", ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.AsString() != "208" {
		t.Errorf("got %q, want 208", v.AsString())
	}
}

func TestChainBindingIsDeferred(t *testing.T) {
	e := sigil.NewEngine()

	calls := 0
	e.Register("tick", func(args ...sigil.Value) (sigil.Value, error) {
		calls++
		return sigil.IntValue(int64(calls)), nil
	})

	src := "$init{ $eager := ${tick()}; $lazy ::= ${tick()}; }init$\n" +
		"${val($lazy)}.${val($lazy)}"
	expr, err := e.Expression(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := sigil.NewMapContext()
	v, err := expr.Evaluate(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.AsString() != "2.3" {
		t.Errorf("got %q, want %q", v.AsString(), "2.3")
	}
	if calls != 3 {
		t.Errorf("tick called %d times, want 3", calls)
	}

	if _, ok := ctx.GetVariable("eager"); !ok {
		t.Errorf("value binding not mirrored into the context")
	}
	if _, ok := ctx.GetVariable("lazy"); ok {
		t.Errorf("chain binding must not be mirrored into the context")
	}
}

func TestSelfReferentialBindingRejected(t *testing.T) {
	e := sigil.NewEngine()

	_, err := e.Expression("$init{ $x ::= ${val($x)}; }init$\n${val($x)}")
	if err == nil {
		t.Fatalf("expected a compile error for a self-referential binding")
	}
	var uc *sigil.UnsupportedConstructError
	if !errors.As(err, &uc) {
		t.Errorf("got %T, want UnsupportedConstructError", err)
	}
}

func TestForwardBindingReferenceRejected(t *testing.T) {
	e := sigil.NewEngine()

	_, err := e.Expression("$init{ $a ::= ${val($b)}; $b := 7; }init$\n${val($a)}")
	if err == nil {
		t.Fatalf("expected a compile error for a forward binding reference")
	}
	var uc *sigil.UnsupportedConstructError
	if !errors.As(err, &uc) {
		t.Errorf("got %T, want UnsupportedConstructError", err)
	}
}

func TestEarlierBindingReference(t *testing.T) {
	e := sigil.NewEngine()

	expr, err := e.Expression("$init{ $a := 2; $b := ${sum('1',$a)}; }init$\n$b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := expr.Evaluate(sigil.NewMapContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.AsString() != "3" {
		t.Errorf("got %q, want 3", v.AsString())
	}
}

func TestRegisterExtension(t *testing.T) {
	e := sigil.NewEngine()
	e.Register("double", func(args ...sigil.Value) (sigil.Value, error) {
		n, err := args[0].AsInt()
		if err != nil {
			return sigil.Value{}, err
		}
		return sigil.IntValue(n * 2), nil
	})

	expr, err := e.Expression("double(21)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := expr.Evaluate(sigil.NewMapContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.AsString() != "42" {
		t.Errorf("got %q, want 42", v.AsString())
	}
}

func TestUnknownFunction(t *testing.T) {
	e := sigil.NewEngine()

	expr, err := e.Expression("nope(1)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = expr.Evaluate(sigil.NewMapContext())
	if err == nil {
		t.Fatalf("expected an evaluation error for an unknown function")
	}
	if !sigil.IsEvaluationError(err) {
		t.Errorf("got %v, want an EvaluationError", err)
	}
}

func TestMissingHeader(t *testing.T) {
	e := sigil.NewEngine()

	expr, err := e.Expression("${header.missing}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = expr.Evaluate(sigil.NewMapContext())
	if !sigil.IsEvaluationError(err) {
		t.Errorf("got %v, want an EvaluationError", err)
	}
}

func TestPredicateBooleanCoercion(t *testing.T) {
	e := sigil.NewEngine()

	p, err := e.Predicate("plain text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = p.Matches(sigil.NewMapContext())
	if !sigil.IsEvaluationError(err) {
		t.Errorf("got %v, want an EvaluationError for a non-boolean body", err)
	}
}

func TestInitMustBeginSource(t *testing.T) {
	e := sigil.NewEngine()

	_, err := e.Expression("oops $init{ $x := 1; }init$")
	if err == nil {
		t.Fatalf("expected an error")
	}
	var uc *sigil.UnsupportedConstructError
	if !errors.As(err, &uc) {
		t.Errorf("got %T, want UnsupportedConstructError", err)
	}
}

func TestDescribe(t *testing.T) {
	e := sigil.NewEngine()

	a, err := e.Compile(orderInit + "\norderId=$sku,total=$sum\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := sigil.Describe(a)
	for _, want := range []string{"TOKENS", "COMPACTED NODES", "binding (value)", "orderId="} {
		if !strings.Contains(out, want) {
			t.Errorf("Describe output missing %q", want)
		}
	}
}
