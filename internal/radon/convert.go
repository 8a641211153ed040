package radon

import (
	"fmt"
	"math"
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// Number is implemented by textual number types such as json.Number.
type Number interface {
	String() string
}

// FromGo converts generic decoded data into a Value. It accepts the shapes
// produced by JSON, YAML, CBOR and cty decoders. Nested failures are returned
// as Go errors because they indicate a programming or document error, not a
// data error.
func FromGo(x any) (Value, error) {
	switch v := x.(type) {
	case Value:
		return v, nil
	case bool:
		return Boolean(v), nil
	case string:
		return String(v), nil
	case []byte:
		return NewBytes(v), nil
	case int:
		return NewInteger(int64(v)), nil
	case int8:
		return NewInteger(int64(v)), nil
	case int16:
		return NewInteger(int64(v)), nil
	case int32:
		return NewInteger(int64(v)), nil
	case int64:
		return NewInteger(v), nil
	case uint:
		return IntegerFromBig(new(big.Int).SetUint64(uint64(v))), nil
	case uint8:
		return NewInteger(int64(v)), nil
	case uint16:
		return NewInteger(int64(v)), nil
	case uint32:
		return NewInteger(int64(v)), nil
	case uint64:
		return IntegerFromBig(new(big.Int).SetUint64(v)), nil
	case *big.Int:
		return IntegerFromBig(v), nil
	case big.Int:
		return IntegerFromBig(&v), nil
	case float32:
		return NewFloat(float64(v)), nil
	case float64:
		return NewFloat(v), nil
	case []any:
		elems := make([]Value, len(v))
		for i, e := range v {
			ev, err := FromGo(e)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			elems[i] = ev
		}
		return Array{elems: elems}, nil
	case map[string]any:
		m := make(map[string]Value, len(v))
		for k, e := range v {
			ev, err := FromGo(e)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			m[k] = ev
		}
		return NewMap(m), nil
	case map[any]any:
		m := make(map[string]Value, len(v))
		for k, e := range v {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("map key %v is not a string", k)
			}
			ev, err := FromGo(e)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", ks, err)
			}
			m[ks] = ev
		}
		return NewMap(m), nil
	case cbor.Tag:
		return decodeErrorTag(v)
	case Number:
		return NumberFromString(v.String()), nil
	case nil:
		return nil, fmt.Errorf("null has no radon representation")
	}
	return nil, fmt.Errorf("unsupported value of type %T", x)
}

// NumberFromString turns a decimal literal into an Integer when it has no
// fraction or exponent and fits in 128 bits, and into a Float otherwise.
func NumberFromString(s string) Value {
	if !strings.ContainsAny(s, ".eE") {
		if i, ok := ParseInteger(s).(Integer); ok {
			return i
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !math.IsInf(f, 0) {
		return NewError(ParseError, "invalid number %q", s)
	}
	return NewFloat(f)
}

// ToGo converts a Value back into plain Go data: int64 or *big.Int, float64,
// bool, string, []byte, []any and map[string]any. Errors become a map with
// "error" and "message" keys. It is used for rendering, never for hashing.
func ToGo(v Value) any {
	switch x := v.(type) {
	case Boolean:
		return bool(x)
	case Integer:
		if n, ok := x.Int64(); ok {
			return n
		}
		return x.Big()
	case Float:
		return x.f
	case String:
		return string(x)
	case Bytes:
		return []byte(x)
	case Array:
		out := make([]any, len(x.elems))
		for i, e := range x.elems {
			out[i] = ToGo(e)
		}
		return out
	case Map:
		out := make(map[string]any, len(x.keys))
		for _, k := range x.keys {
			out[k] = ToGo(x.vals[k])
		}
		return out
	case Error:
		return map[string]any{"error": x.Code.String(), "message": x.Message}
	}
	return nil
}

// SortValues sorts vals in place by the total order, keeping equal elements
// in their original order.
func SortValues(vals []Value) {
	sort.SliceStable(vals, func(i, j int) bool { return Compare(vals[i], vals[j]) < 0 })
}
