package sigil

import "sync"

// Callable is a function or operator reachable from an expression. Args
// arrive already evaluated; the callable returns a value or an
// EvaluationError.
type Callable func(args ...Value) (Value, error)

// Registry maps function and operator names to callables. The built-in
// set is installed by NewRegistry; callers may register more before
// compiling. Registration is a compile-time wiring concern: for a
// non-reserved name, last registered wins.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Callable
}

// reserved names cannot be replaced; the operator symbols the parser folds
// must keep their built-in meaning.
var reserved = map[string]bool{
	"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true,
	"&&": true, "||": true, "!": true,
	"+": true, "-": true, "*": true, "/": true, "%": true,
	"contains": true,
}

// NewRegistry returns a registry with the built-in functions and operator
// callables installed.
func NewRegistry() *Registry {
	r := &Registry{funcs: make(map[string]Callable, len(builtins))}
	for name, fn := range builtins {
		r.funcs[name] = fn
	}
	return r
}

// Register adds a callable under the given name, replacing any previous
// non-reserved registration. Registering a reserved operator name is a
// no-op.
func (r *Registry) Register(name string, fn Callable) {
	if reserved[name] {
		return
	}
	r.mu.Lock()
	r.funcs[name] = fn
	r.mu.Unlock()
}

// Lookup returns the callable registered under name.
func (r *Registry) Lookup(name string) (Callable, bool) {
	r.mu.RLock()
	fn, ok := r.funcs[name]
	r.mu.RUnlock()
	return fn, ok
}

// Names returns the registered names, for diagnostics.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for n := range r.funcs {
		names = append(names, n)
	}
	return names
}
