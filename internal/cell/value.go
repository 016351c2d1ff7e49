package cell

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrorPrefix tags error values so they render distinctly from text
const ErrorPrefix = "#ERROR: "

// Kind identifies which variant a Value holds
type Kind int

const (
	KindEmpty Kind = iota
	KindText
	KindNumber
	KindBool
	KindError
)

// String returns the lowercase name of the kind
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindError:
		return "error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a single cell value. The zero Value is empty.
type Value struct {
	kind Kind
	text string
	num  float64
	b    bool
}

// Empty returns the empty value
func Empty() Value {
	return Value{}
}

// Text returns a text value
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Number returns a numeric value
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Bool returns a boolean value
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Error returns an error value carrying a human-readable cause
func Error(cause string) Value {
	return Value{kind: KindError, text: ErrorPrefix + cause}
}

// Kind returns the variant held by v
func (v Value) Kind() Kind {
	return v.kind
}

// IsEmpty reports whether v is the empty value
func (v Value) IsEmpty() bool {
	return v.kind == KindEmpty
}

// IsError reports whether v is an error value
func (v Value) IsError() bool {
	return v.kind == KindError
}

// Number returns the numeric payload and whether v is a number
func (v Value) Number() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Text returns the text payload and whether v is text
func (v Value) Text() (string, bool) {
	if v.kind != KindText {
		return "", false
	}
	return v.text, true
}

// Bool returns the boolean payload and whether v is a boolean
func (v Value) Bool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// String returns the display form of v
func (v Value) String() string {
	switch v.kind {
	case KindText, KindError:
		return v.text
	case KindNumber:
		return FormatNumber(v.num)
	case KindBool:
		if v.b {
			return "TRUE"
		}
		return "FALSE"
	default:
		return ""
	}
}

// Any returns v as a plain Go value (nil, string, float64 or bool)
func (v Value) Any() any {
	switch v.kind {
	case KindText, KindError:
		return v.text
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	default:
		return nil
	}
}

// MarshalJSON encodes numbers and booleans natively, empty as null
// and text or errors as strings.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Any())
}

// UnmarshalJSON decodes a JSON scalar into a Value
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode cell value: %w", err)
	}
	parsed, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// FromAny converts a loosely typed value (JSON decoded, user supplied)
// into a Value. Strings stay text even when they look numeric.
func FromAny(x any) (Value, error) {
	switch val := x.(type) {
	case nil:
		return Empty(), nil
	case Value:
		return val, nil
	case string:
		if val == "" {
			return Empty(), nil
		}
		return Text(val), nil
	case bool:
		return Bool(val), nil
	case float64:
		return Number(val), nil
	case float32:
		return Number(float64(val)), nil
	case int:
		return Number(float64(val)), nil
	case int64:
		return Number(float64(val)), nil
	case int32:
		return Number(float64(val)), nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q: %w", val.String(), err)
		}
		return Number(f), nil
	default:
		return Value{}, fmt.Errorf("unsupported cell value type %T", x)
	}
}

// Parse interprets user input the way a cell editor does: numbers and
// TRUE/FALSE become typed values, everything else (formulas included)
// stays text.
func Parse(s string) Value {
	if s == "" {
		return Empty()
	}
	if strings.HasPrefix(s, "=") {
		return Text(s)
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return Number(f)
	}
	switch strings.ToUpper(s) {
	case "TRUE":
		return Bool(true)
	case "FALSE":
		return Bool(false)
	}
	return Text(s)
}

// FormatNumber renders f as a plain decimal literal without exponent
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
