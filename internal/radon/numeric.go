package radon

import "math/big"

// IsNumber reports whether v is an Integer or a Float.
func IsNumber(v Value) bool {
	k := v.Kind()
	return k == KindInteger || k == KindFloat
}

// CompareNumeric compares two numbers exactly, across Integer and Float. The
// second result is false when either value is not a number.
func CompareNumeric(a, b Value) (int, bool) {
	x, ok := exactFloat(a)
	if !ok {
		return 0, false
	}
	y, ok := exactFloat(b)
	if !ok {
		return 0, false
	}
	return x.Cmp(y), true
}

// AsFloat64 converts a number to float64, rounding Integers to nearest even.
func AsFloat64(v Value) (float64, bool) {
	switch x := v.(type) {
	case Integer:
		return x.Float64(), true
	case Float:
		return x.f, true
	}
	return 0, false
}

func exactFloat(v Value) (*big.Float, bool) {
	switch x := v.(type) {
	case Integer:
		return new(big.Float).SetInt(x.big()), true
	case Float:
		return new(big.Float).SetFloat64(x.f), true
	}
	return nil, false
}
