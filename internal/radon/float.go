package radon

import (
	"math"
	"strconv"
)

// Float is a 64-bit IEEE-754 value that is never NaN and never negative zero.
// Both rules keep equality and ordering identical on every platform.
type Float struct {
	f float64
}

// NewFloat canonicalizes f. NaN becomes a NotANumber error and -0 becomes +0.
func NewFloat(f float64) Value {
	if math.IsNaN(f) {
		return NewError(NotANumber, "operation produced NaN")
	}
	if f == 0 {
		f = 0
	}
	return Float{f: f}
}

func (Float) Kind() Kind { return KindFloat }
func (Float) isValue()   {}

// Float64 returns the underlying number.
func (f Float) Float64() float64 { return f.f }

func (f Float) String() string { return formatFloat(f.f) }

// formatFloat renders the shortest decimal that round-trips to f.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// FormatFloat is the deterministic decimal rendering used by FloatAsString.
func FormatFloat(f Float) string { return formatFloat(f.f) }
