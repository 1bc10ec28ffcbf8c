package sigil

import "fmt"

// Engine compiles source text into artifacts. It owns the function
// registry and the artifact cache; the cache is an explicit injected
// object with the engine's lifetime, never a package global.
//
// Compilation is synchronous and free of I/O. Compiled artifacts are
// immutable and may be evaluated concurrently from any number of
// goroutines.
type Engine struct {
	backend  Backend
	registry *Registry
	cache    *Cache
	opts     EngineOptions
}

// See the functional options below for the meaning.
type EngineOptions struct {
	Backend  Backend
	Registry *Registry
	Cache    *Cache
	NoCache  bool
}

type EngineOption func(o *EngineOptions)

func applyEngineOptions(o *EngineOptions, opts ...EngineOption) {
	for _, opt := range opts {
		opt(o)
	}
}

// WithBackend selects the compilation backend. Default: the native sigil
// language.
func WithBackend(b Backend) EngineOption {
	return func(o *EngineOptions) { o.Backend = b }
}

// WithRegistry supplies the function registry used by the native backend.
// Register extension functions on it before compiling.
func WithRegistry(r *Registry) EngineOption {
	return func(o *EngineOptions) { o.Registry = r }
}

// WithCache supplies a shared artifact cache, letting several engines
// reuse one.
func WithCache(c *Cache) EngineOption {
	return func(o *EngineOptions) { o.Cache = c }
}

// NoCache disables artifact caching; every Compile call runs the full
// pipeline.
func NoCache() EngineOption {
	return func(o *EngineOptions) { o.NoCache = true }
}

// NewEngine initializes an engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{}
	applyEngineOptions(&e.opts, opts...)

	e.registry = e.opts.Registry
	if e.registry == nil {
		e.registry = NewRegistry()
	}
	e.backend = e.opts.Backend
	if e.backend == nil {
		e.backend = NewBackend(e.registry)
	}
	if !e.opts.NoCache {
		e.cache = e.opts.Cache
		if e.cache == nil {
			e.cache = NewCache()
		}
	}
	return e
}

// Register adds a callable to the engine's registry. Registration must
// happen before the expressions using the name are compiled; it is a
// wiring concern, not something done concurrently with evaluation.
func (e *Engine) Register(name string, fn Callable) {
	e.registry.Register(name, fn)
}

// Compile turns source text into an artifact, reusing a cached one for
// identical text. Compiling the same text from two goroutines at once may
// compile twice; both results are equivalent and either may end up cached.
func (e *Engine) Compile(src string) (Artifact, error) {
	if e.cache != nil {
		if a, ok := e.cache.Get(src); ok {
			return a, nil
		}
	}
	a, err := e.backend.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("compiling %q: %w", src, err)
	}
	if e.cache != nil {
		e.cache.Put(src, a)
	}
	return a, nil
}

// Expression compiles src for value-producing evaluation.
func (e *Engine) Expression(src string) (Expression, error) {
	return e.Compile(src)
}

// Predicate compiles src for boolean evaluation. Text consisting of an
// init block only cannot be a predicate; that is reported at compile time
// rather than on first use.
func (e *Engine) Predicate(src string) (Predicate, error) {
	a, err := e.Compile(src)
	if err != nil {
		return nil, err
	}
	if na, ok := a.(interface{ HasBody() bool }); ok && !na.HasBody() {
		return nil, &UnsupportedConstructError{
			Construct: "$init{...}init$",
			Msg:       "a predicate requires a body expression, not bindings only",
		}
	}
	return a, nil
}
