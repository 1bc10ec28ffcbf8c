package celeval_test

import (
	"testing"

	"github.com/sigil-lang/sigil"
	"github.com/sigil-lang/sigil/celeval"
)

func TestMatches(t *testing.T) {
	b, err := celeval.New(map[string]sigil.Type{
		"body":  sigil.String{},
		"count": sigil.Int{},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, err := b.Compile(`body == "Hello Camel" && count > 2`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := sigil.NewMapContext().SetBody("Hello Camel")
	ctx.SetVariable("count", sigil.IntValue(3))

	ok, err := a.Matches(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Errorf("expected a match")
	}

	ctx.SetVariable("count", sigil.IntValue(1))
	ok, err = a.Matches(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Errorf("expected no match")
	}
}

func TestEvaluate(t *testing.T) {
	b, err := celeval.New(map[string]sigil.Type{"count": sigil.Int{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, err := b.Compile(`count + 1`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := sigil.NewMapContext()
	ctx.SetVariable("count", sigil.IntValue(41))

	v, err := a.Evaluate(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, ok := v.Val.(int64); !ok || n != 42 {
		t.Errorf("got %v (%s), want 42", v.Val, v.Typ)
	}
}

func TestHeadersResolve(t *testing.T) {
	b, err := celeval.New(map[string]sigil.Type{"region": sigil.String{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, err := b.Compile(`region == "eu"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := sigil.NewMapContext().SetHeader("region", "eu")
	ok, err := a.Matches(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Errorf("expected the header to satisfy the predicate")
	}
}

func TestCompileErrors(t *testing.T) {
	b, err := celeval.New(map[string]sigil.Type{"count": sigil.Int{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := b.Compile(`count +`); err == nil {
		t.Errorf("expected a parse error")
	} else if !sigil.IsSyntaxError(err) {
		t.Errorf("got %v, want a SyntaxError", err)
	}

	if _, err := b.Compile(`unknown == 1`); err == nil {
		t.Errorf("expected a check error for an undeclared variable")
	} else if !sigil.IsSyntaxError(err) {
		t.Errorf("got %v, want a SyntaxError", err)
	}
}

func TestEngineIntegration(t *testing.T) {
	b, err := celeval.New(map[string]sigil.Type{"body": sigil.String{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e := sigil.NewEngine(sigil.WithBackend(b))

	p, err := e.Predicate(`body.contains("Camel")`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ok, err := p.Matches(sigil.NewMapContext().SetBody("Hello Camel"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Errorf("expected a match")
	}
}
