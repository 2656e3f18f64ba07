package core

import (
	"math"
	"testing"
)

func TestDestinationEqualityIgnoresArgOrder(t *testing.T) {
	a := NewDestination("detail",
		Arg{Name: "id", Value: IntValue(42)},
		Arg{Name: "tab", Value: StringValue("info")},
	)
	b := NewDestination("detail",
		Arg{Name: "tab", Value: StringValue("info")},
		Arg{Name: "id", Value: IntValue(42)},
	)
	if !a.Equal(b) {
		t.Fatalf("argument order must not affect equality")
	}

	c := NewDestination("detail", Arg{Name: "id", Value: IntValue(43)})
	if a.Equal(c) {
		t.Fatalf("differing values must compare unequal")
	}
	if a.Equal(NewDestination("other", a.Args()...)) {
		t.Fatalf("differing tags must compare unequal")
	}
}

func TestDestinationDuplicateNamesKeepLast(t *testing.T) {
	d := NewDestination("s",
		Arg{Name: "q", Value: StringValue("first")},
		Arg{Name: "q", Value: StringValue("second")},
	)
	v, ok := d.Arg("q")
	if !ok || v.Str() != "second" {
		t.Fatalf("arg q = %v, %v", v, ok)
	}
	if len(d.Args()) != 1 {
		t.Fatalf("args = %v", d.Args())
	}
}

func TestValueKindsDistinguishTypes(t *testing.T) {
	if IntValue(1).Equal(Int64Value(1)) {
		t.Fatalf("int and int64 are distinct kinds")
	}
	if StringValue("true").Equal(BoolValue(true)) {
		t.Fatalf("string and bool are distinct kinds")
	}
	if !FloatValue(0.5).Equal(FloatValue(0.5)) {
		t.Fatalf("equal floats must compare equal")
	}
}

func TestNaNFloatValuesCompareEqual(t *testing.T) {
	nan := FloatValue(math.NaN())
	if !nan.Equal(FloatValue(math.NaN())) {
		t.Fatalf("NaN value must equal NaN value")
	}
	if nan.Equal(FloatValue(1.5)) {
		t.Fatalf("NaN must not equal a number")
	}

	a := NewDestination("chart", Arg{Name: "ratio", Value: FloatValue(math.NaN())})
	b := NewDestination("chart", Arg{Name: "ratio", Value: FloatValue(math.NaN())})
	if !a.Equal(b) {
		t.Fatalf("destinations carrying NaN must equal themselves")
	}
}

func TestDestinationString(t *testing.T) {
	d := NewDestination("detail", Arg{Name: "id", Value: IntValue(42)})
	if got := d.String(); got != "detail(id=42)" {
		t.Fatalf("String() = %q", got)
	}
	if got := NewDestination("home").String(); got != "home" {
		t.Fatalf("String() = %q", got)
	}
}
