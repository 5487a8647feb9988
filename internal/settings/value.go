package settings

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind is the kind of a settings [Value].
type Kind int

// Kinds of settings value.
const (
	KindText   Kind = iota // text
	KindBool               // bool
	KindNumber             // number
)

// String implements [fmt.Stringer] for [Kind].
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a single scalar preset setting: a boolean, a number or
// a piece of text.
//
// The zero Value is the empty text.
type Value struct {
	text    string  // Set when kind == KindText
	number  float64 // Set when kind == KindNumber
	kind    Kind    // Which of the fields is meaningful
	boolean bool    // Set when kind == KindBool
}

// Text returns a text [Value].
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Bool returns a boolean [Value].
func Bool(b bool) Value {
	return Value{kind: KindBool, boolean: b}
}

// Number returns a numeric [Value].
func Number(f float64) Value {
	return Value{kind: KindNumber, number: f}
}

// Kind reports the kind of the value.
func (v Value) Kind() Kind {
	return v.kind
}

// Text returns the text held by v, it is only meaningful if v is of
// kind [KindText], use [Value.String] for a textual rendering of any value.
func (v Value) Text() string {
	return v.text
}

// Bool returns the boolean held by v, false if v is not a [KindBool].
func (v Value) Bool() bool {
	return v.boolean
}

// Number returns the number held by v, 0 if v is not a [KindNumber].
func (v Value) Number() float64 {
	return v.number
}

// IsInteger reports whether v is a number with no fractional part.
func (v Value) IsInteger() bool {
	if v.kind != KindNumber {
		return false
	}

	return !math.IsInf(v.number, 0) && v.number == math.Trunc(v.number)
}

// String implements [fmt.Stringer] for a [Value].
//
// Booleans render as "true" or "false", numbers in their shortest
// non-exponent decimal form and text as-is.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.boolean)
	case KindNumber:
		if v.number == 0 {
			// Avoid "-0"
			return "0"
		}

		return strconv.FormatFloat(v.number, 'f', -1, 64)
	default:
		return v.text
	}
}

// Any returns the value as the natural Go type: bool, int64 for integers
// that fit, float64 for any other number and string for text.
func (v Value) Any() any {
	switch v.kind {
	case KindBool:
		return v.boolean
	case KindNumber:
		if v.IsInteger() && math.Abs(v.number) < math.MaxInt64 {
			return int64(v.number)
		}

		return v.number
	default:
		return v.text
	}
}

// MarshalJSON implements [json.Marshaler] for [Value].
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Any())
}
