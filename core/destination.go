package core

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// ValueKind discriminates the typed argument values a Destination carries.
type ValueKind int

const (
	ValueString ValueKind = iota
	ValueInt
	ValueInt64
	ValueFloat
	ValueBool
)

func (k ValueKind) String() string {
	switch k {
	case ValueString:
		return "string"
	case ValueInt:
		return "int"
	case ValueInt64:
		return "int64"
	case ValueFloat:
		return "float"
	case ValueBool:
		return "bool"
	}
	return "unknown"
}

// Value is a small tagged union holding one typed destination argument.
// Values are immutable and comparable with Equal.
type Value struct {
	kind ValueKind
	str  string
	num  int64
	flt  float64
	bit  bool
}

func StringValue(s string) Value { return Value{kind: ValueString, str: s} }
func IntValue(i int) Value { return Value{kind: ValueInt, num: int64(i)} }
func Int64Value(i int64) Value { return Value{kind: ValueInt64, num: i} }
func FloatValue(f float64) Value { return Value{kind: ValueFloat, flt: f} }
func BoolValue(b bool) Value { return Value{kind: ValueBool, bit: b} }

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) Str() string { return v.str }
func (v Value) Int() int { return int(v.num) }
func (v Value) Int64() int64 { return v.num }
func (v Value) Float() float64 { return v.flt }
func (v Value) Bool() bool { return v.bit }

// Equal compares kind and payload. Float values compare NaN equal to NaN so
// a destination carrying NaN still equals itself.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	if v.kind == ValueFloat {
		return v.flt == o.flt || (math.IsNaN(v.flt) && math.IsNaN(o.flt))
	}
	return v == o
}

func (v Value) String() string {
	switch v.kind {
	case ValueString:
		return v.str
	case ValueInt, ValueInt64:
		return strconv.FormatInt(v.num, 10)
	case ValueFloat:
		return strconv.FormatFloat(v.flt, 'g', -1, 64)
	case ValueBool:
		return strconv.FormatBool(v.bit)
	}
	return ""
}

// Arg is a named, typed destination argument.
type Arg struct {
	Name  string
	Value Value
}

// Destination is an opaque, equality-comparable descriptor of what to show:
// a type tag plus typed arguments. Two destinations are equal iff tag and
// arguments are equal. Arguments are kept sorted by name so equality does
// not depend on construction order.
type Destination struct {
	tag  string
	args []Arg
}

// NewDestination builds a destination from a tag and its arguments.
// Duplicate argument names keep the last value given.
func NewDestination(tag string, args ...Arg) Destination {
	kept := make([]Arg, 0, len(args))
	for _, a := range args {
		idx := slices.IndexFunc(kept, func(k Arg) bool { return k.Name == a.Name })
		if idx >= 0 {
			kept[idx] = a
			continue
		}
		kept = append(kept, a)
	}
	slices.SortFunc(kept, func(a, b Arg) int { return strings.Compare(a.Name, b.Name) })
	return Destination{tag: tag, args: kept}
}

func (d Destination) Tag() string { return d.tag }

// Args returns a copy of the argument list.
func (d Destination) Args() []Arg { return slices.Clone(d.args) }

// Arg looks up one argument by name.
func (d Destination) Arg(name string) (Value, bool) {
	for _, a := range d.args {
		if a.Name == name {
			return a.Value, true
		}
	}
	return Value{}, false
}

func (d Destination) Equal(o Destination) bool {
	if d.tag != o.tag || len(d.args) != len(o.args) {
		return false
	}
	for i := range d.args {
		if d.args[i].Name != o.args[i].Name || !d.args[i].Value.Equal(o.args[i].Value) {
			return false
		}
	}
	return true
}

func (d Destination) String() string {
	if len(d.args) == 0 {
		return d.tag
	}
	parts := make([]string, 0, len(d.args))
	for _, a := range d.args {
		parts = append(parts, fmt.Sprintf("%s=%s", a.Name, a.Value))
	}
	return d.tag + "(" + strings.Join(parts, ", ") + ")"
}
