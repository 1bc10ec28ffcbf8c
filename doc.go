// Package sigil implements a small expression and predicate language for
// querying and transforming message contexts at route-evaluation time.
//
// A source text is compiled exactly once into an immutable artifact, then
// evaluated any number of times, from any number of goroutines, against
// caller-supplied contexts:
//
//  1. Create an engine (optionally registering extension functions)
//  2. Compile source text into an artifact
//  3. Evaluate the artifact against a Context, as an Expression
//     (value-producing) or a Predicate (boolean-producing)
//
// Source text may start with an init block declaring named bindings that
// are evaluated, in declaration order, before the body:
//
//	$init{
//	  $sum := ${sum(${header.lines},100)};
//	  $sku := ${body contains 'Camel' ? '123' : '999'};
//	}init$
//	orderId=$sku,total=$sum
//
// The body is template text: `${...}` groups embed sub-expressions and
// context accessors (`header.name`, `body`, `variable.name`), `$name`
// references a binding, and `name(args...)` calls a registered function.
//
// Compilation failures (SyntaxError, UnsupportedConstructError) are
// permanent for that text; evaluation failures (EvaluationError) are
// returned to the caller unmodified. The package performs no I/O and no
// retries; recovery policy belongs to the hosting routing engine.
package sigil
