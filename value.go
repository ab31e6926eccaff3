// value.go — runtime value model shared by every execution path.
//
// The tracer handles dynamic, JSON-esque data (a probe payload may carry
// an int, a double, a string, or a bool), but we deliberately model it as
// a *closed* tagged variant instead of a dynamically-typed cell. With a
// closed tag set, a `TypeMismatch` is a real branch the arithmetic helpers
// can take, not an implicit coercion that corrupts the trace.
//
// Formatting is locale-independent and stable: the same value always
// renders to the same text, across runs and platforms. This matters
// because traces are compared byte-for-byte in the determinism contract.
//
// Integer division and modulo use floor semantics (7 / 2 == 3 and
// -7 / 2 == -4), which differs from Go's (and C's) truncating division.
// See eval.go for where this is exercised and interpreter_test.go for the
// explicit negative-operand coverage.
package stepscope

import (
	"fmt"
	"strconv"
)

////////////////////////////////////////////////////////////////////////////////
//                                  PUBLIC API
////////////////////////////////////////////////////////////////////////////////

// ValueTag enumerates the runtime kinds a Value may hold. The zero tag is
// deliberately invalid so that a zero Value is detectable (see IsValid).
type ValueTag int

const (
	VTInt   ValueTag = iota + 1 // int64
	VTFloat                     // float64
	VTText                      // string
	VTBool                      // bool
)

// Value is the universal runtime carrier used by the interpreter, the
// probe log parser, and the trace data model.
//
// Invariants:
//   - Tag determines which Go type Data holds (see ValueTag).
//   - Values are immutable; snapshots may share them freely.
type Value struct {
	Tag  ValueTag
	Data any
}

// Constructors. They never attach extra state.
func Int(n int64) Value      { return Value{Tag: VTInt, Data: n} }
func Float(f float64) Value  { return Value{Tag: VTFloat, Data: f} }
func Text(s string) Value    { return Value{Tag: VTText, Data: s} }
func Bool(b bool) Value      { return Value{Tag: VTBool, Data: b} }

// IsValid reports whether v carries one of the four closed tags.
// The zero Value is not valid; payload fields use this to signal absence.
func (v Value) IsValid() bool { return v.Tag >= VTInt && v.Tag <= VTBool }

// String renders the canonical, locale-independent text form.
func (v Value) String() string {
	switch v.Tag {
	case VTInt:
		return strconv.FormatInt(v.Data.(int64), 10)
	case VTFloat:
		return strconv.FormatFloat(v.Data.(float64), 'g', -1, 64)
	case VTText:
		return v.Data.(string)
	case VTBool:
		return strconv.FormatBool(v.Data.(bool))
	default:
		return "<invalid>"
	}
}

// TypeName returns the C-flavored type name used in step payloads.
func (v Value) TypeName() string {
	switch v.Tag {
	case VTInt:
		return "int"
	case VTFloat:
		return "double"
	case VTText:
		return "string"
	case VTBool:
		return "bool"
	default:
		return "unknown"
	}
}

// AsInt returns the int64 payload. ok is false for non-int tags.
func (v Value) AsInt() (int64, bool) {
	if v.Tag != VTInt {
		return 0, false
	}
	return v.Data.(int64), true
}

// Truthy reports the value's truth in a condition position. Ints follow
// the C convention (non-zero is true).
func (v Value) Truthy() (bool, error) {
	switch v.Tag {
	case VTBool:
		return v.Data.(bool), nil
	case VTInt:
		return v.Data.(int64) != 0, nil
	default:
		return false, fmt.Errorf("non-numeric condition of type %s", v.TypeName())
	}
}

// Equal compares two values structurally. Cross-tag comparisons are false
// except Int/Float with equal numeric value.
func (v Value) Equal(o Value) bool {
	if v.Tag == o.Tag {
		return v.Data == o.Data
	}
	vn, vok := v.numeric()
	on, ook := o.numeric()
	return vok && ook && vn == on
}

//// END_OF_PUBLIC

////////////////////////////////////////////////////////////////////////////////
//                                 PRIVATE
////////////////////////////////////////////////////////////////////////////////

func (v Value) numeric() (float64, bool) {
	switch v.Tag {
	case VTInt:
		return float64(v.Data.(int64)), true
	case VTFloat:
		return v.Data.(float64), true
	default:
		return 0, false
	}
}

// floorDiv divides with the quotient rounded toward negative infinity.
// Callers must reject b == 0 first.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// floorMod pairs with floorDiv: a == floorDiv(a,b)*b + floorMod(a,b).
func floorMod(a, b int64) int64 {
	r := a % b
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r
}

// snapshotVars copies a variable table. Values are immutable, so a
// per-entry copy of the map is a full deep copy of the snapshot.
func snapshotVars(m map[string]Value) map[string]Value {
	out := make(map[string]Value, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
