package dataset

import (
	"fmt"
	"strconv"
	"time"
)

// Kind identifies the type of a cell value.
type Kind string

const (
	KindNull   Kind = "null"
	KindNumber Kind = "number"
	KindText   Kind = "text"
	KindBool   Kind = "bool"
	KindTime   Kind = "time"
)

// Value is a single typed cell. The zero value is null.
type Value struct {
	kind Kind
	num  float64
	str  string
	b    bool
	t    time.Time
}

// Null returns the null value.
func Null() Value {
	return Value{kind: KindNull}
}

// Number returns a numeric value.
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Text returns a text value.
func Text(s string) Value {
	return Value{kind: KindText, str: s}
}

// Bool returns a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Time returns a datetime value.
func Time(t time.Time) Value {
	return Value{kind: KindTime, t: t}
}

// Kind returns the value's kind. The zero Value reports KindNull.
func (v Value) Kind() Kind {
	if v.kind == "" {
		return KindNull
	}
	return v.kind
}

// IsNull reports whether the value is null.
func (v Value) IsNull() bool {
	return v.Kind() == KindNull
}

// Number returns the numeric content. Valid only for KindNumber.
func (v Value) Number() float64 {
	return v.num
}

// Text returns the text content. Valid only for KindText.
func (v Value) Text() string {
	return v.str
}

// Bool returns the boolean content. Valid only for KindBool.
func (v Value) Bool() bool {
	return v.b
}

// Time returns the datetime content. Valid only for KindTime.
func (v Value) Time() time.Time {
	return v.t
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.Kind() != o.Kind() {
		return false
	}
	switch v.Kind() {
	case KindNull:
		return true
	case KindNumber:
		return v.num == o.num
	case KindText:
		return v.str == o.str
	case KindBool:
		return v.b == o.b
	case KindTime:
		return v.t.Equal(o.t)
	}
	return false
}

// String renders the value for display and export. Null renders as the
// empty string so CSV round-trips preserve missing cells.
func (v Value) String() string {
	switch v.Kind() {
	case KindNull:
		return ""
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindText:
		return v.str
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindTime:
		return v.t.Format(time.RFC3339)
	}
	return ""
}

// key returns a stable representation used for duplicate detection and mode
// computation. Distinct kinds never collide.
func (v Value) key() string {
	return fmt.Sprintf("%s\x00%s", v.Kind(), v.String())
}
