package value

import (
	"fmt"
	"slices"
	"unicode/utf16"
)

// Value is a sealed interface over the constrained property value domain.
// Only Null, String, Int, Bool, Array, and Object implement this.
// NO float kind - numbers are always int64, which keeps canonical
// serialization and change detection deterministic.
type Value interface {
	value() // Sealed - only these types implement it

	// Kind reports the value's kind tag.
	Kind() Kind
}

// Kind identifies the concrete type of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindString
	KindBool
	KindArray
	KindObject
)

// kindNames maps kinds to the names used in type definitions and error
// messages. These are the same spellings accepted by ParseKind.
var kindNames = map[Kind]string{
	KindNull:   "null",
	KindInt:    "int",
	KindString: "string",
	KindBool:   "bool",
	KindArray:  "array",
	KindObject: "object",
}

// String returns the kind's name as used in type definitions.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind converts a type-definition kind name to a Kind.
// "null" is not a declarable property kind and is rejected.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "int":
		return KindInt, nil
	case "string":
		return KindString, nil
	case "bool":
		return KindBool, nil
	case "array":
		return KindArray, nil
	case "object":
		return KindObject, nil
	default:
		return KindNull, fmt.Errorf("unknown value kind %q", name)
	}
}

// Null represents an unset nullable value.
// Using an explicit type keeps the Value interface sealed: a stored
// property value is never a Go nil.
type Null struct{}

func (Null) value()     {}
func (Null) Kind() Kind { return KindNull }

// String represents a string value.
type String string

func (String) value()     {}
func (String) Kind() Kind { return KindString }

// Int represents an integer value. Always int64, never float.
type Int int64

func (Int) value()     {}
func (Int) Kind() Kind { return KindInt }

// Bool represents a boolean value.
type Bool bool

func (Bool) value()     {}
func (Bool) Kind() Kind { return KindBool }

// Array represents an ordered sequence of values.
type Array []Value

func (Array) value()     {}
func (Array) Kind() Kind { return KindArray }

// Object represents a map of string keys to values.
// Use SortedKeys() for deterministic iteration.
type Object map[string]Value

func (Object) value()     {}
func (Object) Kind() Kind { return KindObject }

// Equal reports structural equality of two values.
//
// This is the equality used by the property-change short circuit: a Set
// whose new value is Equal to the stored value is a no-op and fires no
// signal. Arrays compare elementwise in order; objects compare by key set
// and per-key value. Values of different kinds are never equal.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Null:
		return true
	case String:
		return av == b.(String)
	case Int:
		return av == b.(Int)
	case Bool:
		return av == b.(Bool)
	case Array:
		bv := b.(Array)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Object:
		bv := b.(Object)
		if len(av) != len(bv) {
			return false
		}
		for k, ae := range av {
			be, ok := bv[k]
			if !ok || !Equal(ae, be) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// FromGo converts a decoded YAML/JSON scalar or container to a Value.
// Floats are rejected, as are types outside the constrained domain.
// Go nil converts to Null.
func FromGo(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case int:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint64:
		if val > 1<<63-1 {
			return nil, fmt.Errorf("integer out of int64 range: %d", val)
		}
		return Int(int64(val)), nil
	case float32, float64:
		return nil, fmt.Errorf("floats are not allowed as property values: %v", val)
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			ve, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = ve
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			ve, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj[k] = ve
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type %T", v)
	}
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's sort.Strings uses UTF-8 byte order, which differs for some inputs.
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings by UTF-16 code units as required by
// RFC 8785 (Canonical JSON). Must use unicode/utf16 for correct surrogate
// handling.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := min(len(a16), len(b16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	if len(a16) < len(b16) {
		return -1
	}
	if len(a16) > len(b16) {
		return 1
	}
	return 0
}
