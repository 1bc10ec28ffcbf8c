package sigil_test

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/sigil-lang/sigil"
)

func TestCacheHit(t *testing.T) {
	cache := sigil.NewCache()
	e := sigil.NewEngine(sigil.WithCache(cache))

	a1, err := e.Compile("${header.x}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a2, err := e.Compile("${header.x}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a1 != a2 {
		t.Errorf("expected the cached artifact on the second compile")
	}

	st := cache.Stats()
	if st.Entries != 1 {
		t.Errorf("entries = %d, want 1", st.Entries)
	}
	if st.Hits != 1 || st.Misses != 1 {
		t.Errorf("hits/misses = %d/%d, want 1/1", st.Hits, st.Misses)
	}
}

func TestCacheRemove(t *testing.T) {
	cache := sigil.NewCache()
	e := sigil.NewEngine(sigil.WithCache(cache))

	if _, err := e.Compile("${header.x}"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cache.Remove("${header.x}")
	if cache.Len() != 0 {
		t.Errorf("len = %d, want 0 after remove", cache.Len())
	}
}

func TestNoCache(t *testing.T) {
	e := sigil.NewEngine(sigil.NoCache())

	a1, err := e.Compile("${header.x}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a2, err := e.Compile("${header.x}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a1 == a2 {
		t.Errorf("NoCache engine returned the same artifact twice")
	}
}

func TestCacheStatsString(t *testing.T) {
	cache := sigil.NewCache()
	cache.Put("x", nil)
	out := cache.Stats().String()
	if !strings.Contains(out, "artifacts") {
		t.Errorf("unexpected stats rendering: %q", out)
	}
}

// Exercises the cache and artifact evaluation from many goroutines; run
// with the race detector.
func TestConcurrentCompileAndEvaluate(t *testing.T) {
	e := sigil.NewEngine()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				src := fmt.Sprintf("${sum(${header.lines},%d)}", i%10)
				expr, err := e.Expression(src)
				if err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
				ctx := sigil.NewMapContext().SetHeader("lines", "1,2")
				v, err := expr.Evaluate(ctx)
				if err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
				want := fmt.Sprintf("%d", 3+i%10)
				if v.AsString() != want {
					t.Errorf("got %q, want %q", v.AsString(), want)
				}
			}
		}(g)
	}
	wg.Wait()
}
