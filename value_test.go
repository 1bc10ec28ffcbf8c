package sigil

import (
	"testing"

	"github.com/matryer/is"
)

func TestValueOf(t *testing.T) {
	is := is.New(t)

	is.Equal(ValueOf("x").Typ, String{})
	is.Equal(ValueOf(42).Val, int64(42))
	is.Equal(ValueOf(int64(42)).Typ, Int{})
	is.Equal(ValueOf(1.5).Typ, Float{})
	is.Equal(ValueOf(true).Typ, Bool{})
	is.Equal(ValueOf([]string{"a"}).Typ, Any{})

	// Values pass through untouched
	v := IntValue(7)
	is.Equal(ValueOf(v), v)
}

func TestAsString(t *testing.T) {
	is := is.New(t)

	is.Equal(StringValue("x").AsString(), "x")
	is.Equal(IntValue(208).AsString(), "208")
	is.Equal(FloatValue(1.5).AsString(), "1.5")
	is.Equal(BoolValue(true).AsString(), "true")
	is.Equal(Value{}.AsString(), "")
}

func TestAsInt(t *testing.T) {
	is := is.New(t)

	n, err := IntValue(5).AsInt()
	is.NoErr(err)
	is.Equal(n, int64(5))

	n, err = FloatValue(5.9).AsInt()
	is.NoErr(err)
	is.Equal(n, int64(5)) // truncated toward zero

	n, err = StringValue(" 42 ").AsInt()
	is.NoErr(err)
	is.Equal(n, int64(42))

	n, err = StringValue("2.9").AsInt()
	is.NoErr(err)
	is.Equal(n, int64(2))

	_, err = StringValue("camel").AsInt()
	is.True(err != nil)
	_, err = BoolValue(true).AsInt()
	is.True(err != nil)
}

func TestAsFloat(t *testing.T) {
	is := is.New(t)

	f, err := StringValue("1.25").AsFloat()
	is.NoErr(err)
	is.Equal(f, 1.25)

	f, err = IntValue(3).AsFloat()
	is.NoErr(err)
	is.Equal(f, 3.0)

	_, err = StringValue("").AsFloat()
	is.True(err != nil)
}

func TestAsBool(t *testing.T) {
	is := is.New(t)

	b, err := BoolValue(true).AsBool()
	is.NoErr(err)
	is.Equal(b, true)

	b, err = StringValue(" false ").AsBool()
	is.NoErr(err)
	is.Equal(b, false)

	_, err = StringValue("1").AsBool()
	is.True(err != nil)
	_, err = IntValue(1).AsBool()
	is.True(err != nil)
}
