package lang

import (
	"reflect"

	"github.com/ardnew/macro/lang/value"
)

// Value is a dynamically typed value. The built-in types are bool, int64,
// float64, and string; nil is the empty value. Values of any other type are
// host values, passed through but not interpreted.
type Value = any

// Type is the runtime type of a [Value], used to index operator tables.
type Type = reflect.Type

// Built-in value types.
var (
	TypeBool   = value.TypeBool
	TypeInt    = value.TypeInt
	TypeDouble = value.TypeDouble
	TypeString = value.TypeString
)

// TypeOf returns the runtime type of v, or nil for the empty value.
func TypeOf(v Value) Type { return reflect.TypeOf(v) }

// TypeName returns the language name of t.
func TypeName(t Type) string { return value.Name(t) }

// FormatValue renders v the way print and string concatenation do.
func FormatValue(v Value) string { return value.String(v) }

// Normalize converts host numeric types to the built-in int64 and float64
// so operators apply to values returned by commands and passed as arguments.
func Normalize(v Value) Value {
	switch v := v.(type) {
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case uint:
		return int64(v)
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case float32:
		return float64(v)
	}

	return v
}
