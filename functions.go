package sigil

import (
	"strings"

	"github.com/sigil-lang/sigil/errs"
)

// builtins holds the built-in functions and the callables behind the
// operator symbols. Operators resolve through the registry like any other
// function; the parser only decides where their operands are.
var builtins = map[string]Callable{
	"sum":        builtinSum,
	"average":    builtinAverage,
	"val":        builtinVal,
	"contains":   builtinContains,
	"length":     builtinLength,
	"trim":       builtinTrim,
	"upper":      builtinUpper,
	"lower":      builtinLower,
	"startsWith": builtinStartsWith,
	"endsWith":   builtinEndsWith,

	"==": comparison(func(c int) bool { return c == 0 }),
	"!=": comparison(func(c int) bool { return c != 0 }),
	"<":  comparison(func(c int) bool { return c < 0 }),
	"<=": comparison(func(c int) bool { return c <= 0 }),
	">":  comparison(func(c int) bool { return c > 0 }),
	">=": comparison(func(c int) bool { return c >= 0 }),

	"&&": builtinAnd,
	"||": builtinOr,
	"!":  builtinNot,

	"+": arithmetic(func(a, b float64) float64 { return a + b }),
	"-": arithmetic(func(a, b float64) float64 { return a - b }),
	"*": arithmetic(func(a, b float64) float64 { return a * b }),
	"/": builtinDivide,
	"%": builtinModulo,
}

func arity(name string, args []Value, n int) error {
	if len(args) != n {
		return errs.Evalf("%s expects %d argument(s), got %d", name, n, len(args))
	}
	return nil
}

// builtinSum parses a comma-joined string of numbers, sums the elements,
// adds the remaining arguments, and truncates the result to an integer.
func builtinSum(args ...Value) (Value, error) {
	if len(args) == 0 {
		return Value{}, errs.Evalf("sum expects at least 1 argument")
	}
	var total float64
	for _, part := range strings.Split(args[0].AsString(), ",") {
		v := StringValue(strings.TrimSpace(part))
		f, err := v.AsFloat()
		if err != nil {
			return Value{}, err
		}
		total += f
	}
	for _, a := range args[1:] {
		f, err := a.AsFloat()
		if err != nil {
			return Value{}, err
		}
		total += f
	}
	return IntValue(int64(total)), nil
}

// builtinAverage computes the arithmetic mean of its arguments, truncated
// toward zero.
func builtinAverage(args ...Value) (Value, error) {
	if len(args) == 0 {
		return Value{}, errs.Evalf("average expects at least 1 argument")
	}
	var total float64
	for _, a := range args {
		f, err := a.AsFloat()
		if err != nil {
			return Value{}, err
		}
		total += f
	}
	return IntValue(int64(total / float64(len(args)))), nil
}

// builtinVal is the identity function; it forces literal materialization
// in contexts that otherwise expect a group or call.
func builtinVal(args ...Value) (Value, error) {
	if err := arity("val", args, 1); err != nil {
		return Value{}, err
	}
	return args[0], nil
}

func builtinContains(args ...Value) (Value, error) {
	if err := arity("contains", args, 2); err != nil {
		return Value{}, err
	}
	return BoolValue(strings.Contains(args[0].AsString(), args[1].AsString())), nil
}

func builtinLength(args ...Value) (Value, error) {
	if err := arity("length", args, 1); err != nil {
		return Value{}, err
	}
	return IntValue(int64(len(args[0].AsString()))), nil
}

func builtinTrim(args ...Value) (Value, error) {
	if err := arity("trim", args, 1); err != nil {
		return Value{}, err
	}
	return StringValue(strings.TrimSpace(args[0].AsString())), nil
}

func builtinUpper(args ...Value) (Value, error) {
	if err := arity("upper", args, 1); err != nil {
		return Value{}, err
	}
	return StringValue(strings.ToUpper(args[0].AsString())), nil
}

func builtinLower(args ...Value) (Value, error) {
	if err := arity("lower", args, 1); err != nil {
		return Value{}, err
	}
	return StringValue(strings.ToLower(args[0].AsString())), nil
}

func builtinStartsWith(args ...Value) (Value, error) {
	if err := arity("startsWith", args, 2); err != nil {
		return Value{}, err
	}
	return BoolValue(strings.HasPrefix(args[0].AsString(), args[1].AsString())), nil
}

func builtinEndsWith(args ...Value) (Value, error) {
	if err := arity("endsWith", args, 2); err != nil {
		return Value{}, err
	}
	return BoolValue(strings.HasSuffix(args[0].AsString(), args[1].AsString())), nil
}

// comparison builds an operator callable from a predicate on the
// three-way comparison result.
func comparison(pick func(c int) bool) Callable {
	return func(args ...Value) (Value, error) {
		if err := arity("comparison", args, 2); err != nil {
			return Value{}, err
		}
		c := compareValues(args[0], args[1])
		return BoolValue(pick(c)), nil
	}
}

// compareValues orders two values: numerically when both sides coerce to
// numbers, lexically otherwise.
func compareValues(a, b Value) int {
	if a.numeric() && b.numeric() {
		af, _ := a.AsFloat()
		bf, _ := b.AsFloat()
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a.AsString(), b.AsString())
}

func builtinAnd(args ...Value) (Value, error) {
	if err := arity("&&", args, 2); err != nil {
		return Value{}, err
	}
	l, err := args[0].AsBool()
	if err != nil {
		return Value{}, err
	}
	r, err := args[1].AsBool()
	if err != nil {
		return Value{}, err
	}
	return BoolValue(l && r), nil
}

func builtinOr(args ...Value) (Value, error) {
	if err := arity("||", args, 2); err != nil {
		return Value{}, err
	}
	l, err := args[0].AsBool()
	if err != nil {
		return Value{}, err
	}
	r, err := args[1].AsBool()
	if err != nil {
		return Value{}, err
	}
	return BoolValue(l || r), nil
}

func builtinNot(args ...Value) (Value, error) {
	if err := arity("!", args, 1); err != nil {
		return Value{}, err
	}
	b, err := args[0].AsBool()
	if err != nil {
		return Value{}, err
	}
	return BoolValue(!b), nil
}

// arithmetic builds an operator callable that keeps integer results when
// both operands are integral.
func arithmetic(op func(a, b float64) float64) Callable {
	return func(args ...Value) (Value, error) {
		if err := arity("arithmetic operator", args, 2); err != nil {
			return Value{}, err
		}
		a, err := args[0].AsFloat()
		if err != nil {
			return Value{}, err
		}
		b, err := args[1].AsFloat()
		if err != nil {
			return Value{}, err
		}
		res := op(a, b)
		if integral(args[0]) && integral(args[1]) {
			return IntValue(int64(res)), nil
		}
		return FloatValue(res), nil
	}
}

func builtinDivide(args ...Value) (Value, error) {
	if err := arity("/", args, 2); err != nil {
		return Value{}, err
	}
	a, err := args[0].AsFloat()
	if err != nil {
		return Value{}, err
	}
	b, err := args[1].AsFloat()
	if err != nil {
		return Value{}, err
	}
	if b == 0 {
		return Value{}, errs.Evalf("division by zero")
	}
	if integral(args[0]) && integral(args[1]) {
		return IntValue(int64(a) / int64(b)), nil
	}
	return FloatValue(a / b), nil
}

func builtinModulo(args ...Value) (Value, error) {
	if err := arity("%", args, 2); err != nil {
		return Value{}, err
	}
	a, err := args[0].AsInt()
	if err != nil {
		return Value{}, err
	}
	b, err := args[1].AsInt()
	if err != nil {
		return Value{}, err
	}
	if b == 0 {
		return Value{}, errs.Evalf("division by zero")
	}
	return IntValue(a % b), nil
}

// integral reports whether a value is an integer or an integer-shaped
// string; arithmetic on such operands stays in integers.
func integral(v Value) bool {
	if _, ok := v.Val.(int64); ok {
		return true
	}
	if s, ok := v.Val.(string); ok {
		return !strings.Contains(s, ".") && v.numeric()
	}
	return false
}
