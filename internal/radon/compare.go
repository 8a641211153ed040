package radon

import (
	"bytes"
	"strings"
)

// Compare imposes a total order on values: first by kind, then by content.
// Floats are never NaN, so the numeric comparison below is total.
func Compare(a, b Value) int {
	if ka, kb := a.Kind(), b.Kind(); ka != kb {
		if ka < kb {
			return -1
		}
		return 1
	}

	switch x := a.(type) {
	case Boolean:
		y := b.(Boolean)
		switch {
		case x == y:
			return 0
		case !bool(x):
			return -1
		default:
			return 1
		}
	case Integer:
		return x.big().Cmp(b.(Integer).big())
	case Float:
		y := b.(Float)
		switch {
		case x.f < y.f:
			return -1
		case x.f > y.f:
			return 1
		default:
			return 0
		}
	case String:
		return strings.Compare(string(x), string(b.(String)))
	case Bytes:
		return bytes.Compare(x, b.(Bytes))
	case Array:
		y := b.(Array)
		for i := 0; i < len(x.elems) && i < len(y.elems); i++ {
			if c := Compare(x.elems[i], y.elems[i]); c != 0 {
				return c
			}
		}
		return compareInts(len(x.elems), len(y.elems))
	case Map:
		y := b.(Map)
		for i := 0; i < len(x.keys) && i < len(y.keys); i++ {
			if c := strings.Compare(x.keys[i], y.keys[i]); c != 0 {
				return c
			}
			if c := Compare(x.vals[x.keys[i]], y.vals[y.keys[i]]); c != 0 {
				return c
			}
		}
		return compareInts(len(x.keys), len(y.keys))
	case Error:
		y := b.(Error)
		if x.Code != y.Code {
			return compareInts(int(x.Code), int(y.Code))
		}
		return strings.Compare(x.Message, y.Message)
	}
	return 0
}

// Equal reports whether two values are identical under Compare.
func Equal(a, b Value) bool {
	return Compare(a, b) == 0
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
