package dataset

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Value is a single categorical cell value: either a string or a number.
// Two values are the same category when their String forms match, so the
// number 1 and the text "1" read from a CSV select the same rows.
type Value struct {
	str   string
	num   float64
	isNum bool
}

// StringValue wraps a text category
func StringValue(s string) Value {
	return Value{str: s}
}

// NumberValue wraps a numeric category
func NumberValue(f float64) Value {
	return Value{num: f, isNum: true}
}

// ValueOf converts a raw cell into a Value. Nil, empty strings and NaN are
// reported as missing.
func ValueOf(raw interface{}) (Value, bool) {
	switch v := raw.(type) {
	case nil:
		return Value{}, false
	case Value:
		return v, !v.IsZero()
	case string:
		if strings.TrimSpace(v) == "" {
			return Value{}, false
		}
		return StringValue(v), true
	case float64:
		if math.IsNaN(v) {
			return Value{}, false
		}
		return NumberValue(v), true
	case float32:
		return ValueOf(float64(v))
	case int:
		return NumberValue(float64(v)), true
	case int64:
		return NumberValue(float64(v)), true
	case int32:
		return NumberValue(float64(v)), true
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return NumberValue(f), true
		}
		return StringValue(v.String()), true
	case bool:
		return StringValue(strconv.FormatBool(v)), true
	case fmt.Stringer:
		return ValueOf(v.String())
	default:
		return StringValue(fmt.Sprint(v)), true
	}
}

// IsNumber reports whether the value was numeric
func (v Value) IsNumber() bool { return v.isNum }

// IsZero reports whether the value is the empty string value
func (v Value) IsZero() bool { return !v.isNum && v.str == "" }

// Float returns the numeric value, parsing text when necessary
func (v Value) Float() (float64, bool) {
	if v.isNum {
		return v.num, true
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// String renders the value as shown in labels and used for matching
func (v Value) String() string {
	if v.isNum {
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	}
	return v.str
}

// Equal compares two values by category identity
func (v Value) Equal(o Value) bool {
	return v.String() == o.String()
}

// MarshalJSON encodes numbers as JSON numbers and text as JSON strings
func (v Value) MarshalJSON() ([]byte, error) {
	if v.isNum {
		if math.IsInf(v.num, 0) || math.IsNaN(v.num) {
			return json.Marshal(v.String())
		}
		return json.Marshal(v.num)
	}
	return json.Marshal(v.str)
}

// UnmarshalJSON accepts either a JSON number or a JSON string
func (v *Value) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid value JSON: %s", string(data))
	}
	res := gjson.ParseBytes(data)
	switch res.Type {
	case gjson.Number:
		*v = NumberValue(res.Float())
	case gjson.String:
		*v = StringValue(res.String())
	case gjson.True, gjson.False:
		*v = StringValue(res.Raw)
	case gjson.Null:
		*v = Value{}
	default:
		return fmt.Errorf("unsupported value JSON: %s", res.Raw)
	}
	return nil
}

// Strings renders a list of values for labels and hashing
func Strings(values []Value) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}

// SameSet reports order-independent set equality of two value lists
func SameSet(a, b []Value) bool {
	as := make(map[string]bool, len(a))
	for _, v := range a {
		as[v.String()] = true
	}
	bs := make(map[string]bool, len(b))
	for _, v := range b {
		bs[v.String()] = true
	}
	if len(as) != len(bs) {
		return false
	}
	for k := range as {
		if !bs[k] {
			return false
		}
	}
	return true
}
