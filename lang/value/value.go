// Package value names and renders the dynamically typed values shared by the
// interpreter and host commands.
package value

import (
	"fmt"
	"reflect"
	"strconv"
)

// Built-in value types.
var (
	TypeBool   = reflect.TypeFor[bool]()
	TypeInt    = reflect.TypeFor[int64]()
	TypeDouble = reflect.TypeFor[float64]()
	TypeString = reflect.TypeFor[string]()
)

// Name returns the language name of t. A nil t is the empty type.
func Name(t reflect.Type) string {
	switch t {
	case nil:
		return "empty"
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeDouble:
		return "double"
	case TypeString:
		return "string"
	}

	return t.String()
}

// TypeName returns the language name of the dynamic type of v.
func TypeName(v any) string { return Name(reflect.TypeOf(v)) }

// String renders v the way print and string concatenation do.
func String(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}

	return fmt.Sprint(v)
}
