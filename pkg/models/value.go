package models

import (
	"fmt"

	jsonx "github.com/quality-match/hari-client-sub000/internal/shared/json"
)

// Kind classifies an attribute value. Numeric and boolean are distinct
// classifications even though JSON callers may conflate them.
type Kind int

const (
	KindNull Kind = iota
	KindNumber
	KindBool
	KindString
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindString:
		return "str"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Value is a closed tagged variant for attribute values: number, bool,
// string, list of Value, or null. The zero Value is null.
type Value struct {
	kind Kind
	num  float64
	b    bool
	str  string
	list []Value
}

// Null returns the null value.
func Null() Value { return Value{} }

// Number builds a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Int builds a numeric value from an integer.
func Int(i int) Value { return Number(float64(i)) }

// Bool builds a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// String builds a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// List builds a list value from its elements.
func List(elems ...Value) Value {
	return Value{kind: KindList, list: append([]Value(nil), elems...)}
}

// Kind returns the value's classification.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsNumber returns the numeric payload when the value is a number.
func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == KindNumber }

// AsBool returns the boolean payload when the value is a bool.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsString returns the string payload when the value is a string.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsList returns the element slice when the value is a list.
func (v Value) AsList() ([]Value, bool) { return v.list, v.kind == KindList }

// FromAny converts a dynamically typed value into a Value. Supported inputs
// are nil, bool, string, all Go integer and float types, []any, []Value and
// Value itself.
func FromAny(raw any) (Value, error) {
	switch val := raw.(type) {
	case nil:
		return Null(), nil
	case Value:
		return val, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case float64:
		return Number(val), nil
	case float32:
		return Number(float64(val)), nil
	case int:
		return Number(float64(val)), nil
	case int8:
		return Number(float64(val)), nil
	case int16:
		return Number(float64(val)), nil
	case int32:
		return Number(float64(val)), nil
	case int64:
		return Number(float64(val)), nil
	case uint:
		return Number(float64(val)), nil
	case uint8:
		return Number(float64(val)), nil
	case uint16:
		return Number(float64(val)), nil
	case uint32:
		return Number(float64(val)), nil
	case uint64:
		return Number(float64(val)), nil
	case []Value:
		return List(val...), nil
	case []any:
		elems := make([]Value, 0, len(val))
		for _, elem := range val {
			converted, err := FromAny(elem)
			if err != nil {
				return Value{}, err
			}
			elems = append(elems, converted)
		}
		return List(elems...), nil
	default:
		return Value{}, fmt.Errorf("unsupported attribute value type %T", raw)
	}
}

// MarshalJSON encodes the variant into its natural JSON form.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindNumber:
		return jsonx.Marshal(v.num)
	case KindBool:
		return jsonx.Marshal(v.b)
	case KindString:
		return jsonx.Marshal(v.str)
	case KindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return jsonx.Marshal(v.list)
	default:
		return nil, fmt.Errorf("cannot marshal value of kind %s", v.kind)
	}
}

// UnmarshalJSON decodes any JSON scalar, array or null into the variant.
// JSON numbers always decode as KindNumber; nested objects are rejected.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := jsonx.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}
