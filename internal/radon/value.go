package radon

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Value is a RADON value. The interface is sealed: the only implementations
// are the types declared in this package.
type Value interface {
	Kind() Kind
	String() string
	isValue()
}

// Boolean is a RADON boolean.
type Boolean bool

func (Boolean) Kind() Kind       { return KindBoolean }
func (b Boolean) String() string { return strconv.FormatBool(bool(b)) }
func (Boolean) isValue()         {}

// String is a UTF-8 RADON string.
type String string

func (String) Kind() Kind       { return KindString }
func (s String) String() string { return strconv.Quote(string(s)) }
func (String) isValue()         {}

// Bytes is an opaque byte string. Operators never modify the backing array
// of an existing Bytes value.
type Bytes []byte

func (Bytes) Kind() Kind       { return KindBytes }
func (b Bytes) String() string { return "0x" + hex.EncodeToString(b) }
func (Bytes) isValue()         {}

// NewBytes copies b into a new Bytes value.
func NewBytes(b []byte) Bytes {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Array is an ordered sequence of values.
type Array struct {
	elems []Value
}

// NewArray builds an Array holding a copy of vals.
func NewArray(vals ...Value) Array {
	elems := make([]Value, len(vals))
	copy(elems, vals)
	return Array{elems: elems}
}

func (Array) Kind() Kind { return KindArray }
func (Array) isValue()   {}

// Len returns the number of elements.
func (a Array) Len() int { return len(a.elems) }

// At returns the element at index i. It panics if i is out of range.
func (a Array) At(i int) Value { return a.elems[i] }

// Values returns a copy of the elements.
func (a Array) Values() []Value {
	out := make([]Value, len(a.elems))
	copy(out, a.elems)
	return out
}

func (a Array) String() string {
	parts := make([]string, len(a.elems))
	for i, e := range a.elems {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Map is a mapping of string keys to values. Keys are kept sorted so that
// iteration order never depends on how the map was built.
type Map struct {
	keys []string
	vals map[string]Value
}

// NewMap builds a Map holding a copy of m.
func NewMap(m map[string]Value) Map {
	keys := make([]string, 0, len(m))
	vals := make(map[string]Value, len(m))
	for k, v := range m {
		keys = append(keys, k)
		vals[k] = v
	}
	sort.Strings(keys)
	return Map{keys: keys, vals: vals}
}

func (Map) Kind() Kind { return KindMap }
func (Map) isValue()   {}

// Len returns the number of entries.
func (m Map) Len() int { return len(m.keys) }

// Get looks up a key.
func (m Map) Get(key string) (Value, bool) {
	v, ok := m.vals[key]
	return v, ok
}

// Keys returns the keys in sorted order.
func (m Map) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Values returns the values ordered by their keys.
func (m Map) Values() []Value {
	out := make([]Value, len(m.keys))
	for i, k := range m.keys {
		out[i] = m.vals[k]
	}
	return out
}

func (m Map) String() string {
	parts := make([]string, len(m.keys))
	for i, k := range m.keys {
		parts[i] = fmt.Sprintf("%q: %s", k, m.vals[k].String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
