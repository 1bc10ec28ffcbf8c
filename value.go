package sigil

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sigil-lang/sigil/errs"
)

// Type defines a type in the sigil type system. Types describe evaluation
// results and the declared variables of the celeval backend.
type Type interface {
	String() string
}

type String struct{}
type Int struct{}
type Float struct{}
type Bool struct{}
type Any struct{}

func (t String) String() string { return "string" }
func (t Int) String() string    { return "int" }
func (t Float) String() string  { return "float" }
func (t Bool) String() string   { return "bool" }
func (t Any) String() string    { return "any" }

// Value is the result of evaluating an expression, or a value read from a
// context. Inspect Typ to determine what Val holds.
type Value struct {
	Val interface{}
	Typ Type
}

func StringValue(s string) Value  { return Value{Val: s, Typ: String{}} }
func IntValue(n int64) Value      { return Value{Val: n, Typ: Int{}} }
func FloatValue(f float64) Value  { return Value{Val: f, Typ: Float{}} }
func BoolValue(b bool) Value      { return Value{Val: b, Typ: Bool{}} }
func AnyValue(v interface{}) Value {
	return Value{Val: v, Typ: Any{}}
}

// ValueOf wraps a plain Go value in a typed Value.
func ValueOf(v interface{}) Value {
	switch x := v.(type) {
	case Value:
		return x
	case string:
		return StringValue(x)
	case int:
		return IntValue(int64(x))
	case int64:
		return IntValue(x)
	case float64:
		return FloatValue(x)
	case bool:
		return BoolValue(x)
	default:
		return AnyValue(v)
	}
}

// AsString renders the value as text the way body output is produced.
func (v Value) AsString() string {
	switch x := v.Val.(type) {
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", x)
	}
}

// AsInt coerces the value to an integer. Strings holding integers parse;
// floats truncate toward zero. Anything else fails with an
// EvaluationError; there is no silent coercion to zero.
func (v Value) AsInt() (int64, error) {
	switch x := v.Val.(type) {
	case int64:
		return x, nil
	case float64:
		return int64(x), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			f, ferr := strconv.ParseFloat(strings.TrimSpace(x), 64)
			if ferr != nil {
				return 0, errs.Evalf("cannot coerce %q to an integer", x)
			}
			return int64(f), nil
		}
		return n, nil
	}
	return 0, errs.Evalf("cannot coerce %v (%s) to an integer", v.Val, v.Typ)
}

// AsFloat coerces the value to a float.
func (v Value) AsFloat() (float64, error) {
	switch x := v.Val.(type) {
	case int64:
		return float64(x), nil
	case float64:
		return x, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, errs.Evalf("cannot coerce %q to a number", x)
		}
		return f, nil
	}
	return 0, errs.Evalf("cannot coerce %v (%s) to a number", v.Val, v.Typ)
}

// AsBool coerces the value to a boolean. Only booleans and the strings
// "true" and "false" qualify.
func (v Value) AsBool() (bool, error) {
	switch x := v.Val.(type) {
	case bool:
		return x, nil
	case string:
		switch strings.TrimSpace(x) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	return false, errs.Evalf("cannot coerce %v (%s) to a boolean", v.Val, v.Typ)
}

// numeric reports whether the value coerces to a number.
func (v Value) numeric() bool {
	_, err := v.AsFloat()
	return err == nil
}
