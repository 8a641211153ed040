package radon

import (
	"math"
	"math/big"
)

var (
	// MaxInteger is the largest representable Integer, 2^127 - 1.
	MaxInteger = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	// MinInteger is the smallest representable Integer, -2^127.
	MinInteger = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
)

// Integer is a signed 128-bit integer. The zero value is 0.
type Integer struct {
	v *big.Int
}

// NewInteger returns the Integer holding n.
func NewInteger(n int64) Integer {
	return Integer{v: big.NewInt(n)}
}

// IntegerFromBig returns an Integer holding a copy of b, or an Overflow
// error when b does not fit in 128 bits.
func IntegerFromBig(b *big.Int) Value {
	if b.Cmp(MaxInteger) > 0 {
		return NewError(Overflow, "integer above 2^127-1")
	}
	if b.Cmp(MinInteger) < 0 {
		return NewError(Underflow, "integer below -2^127")
	}
	return Integer{v: new(big.Int).Set(b)}
}

// ParseInteger parses a base-10 integer.
func ParseInteger(s string) Value {
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return NewError(ParseError, "invalid integer %q", s)
	}
	return IntegerFromBig(b)
}

func (Integer) Kind() Kind { return KindInteger }
func (Integer) isValue()   {}

func (i Integer) String() string { return i.big().String() }

// Big returns a copy of the integer as a big.Int.
func (i Integer) Big() *big.Int { return new(big.Int).Set(i.big()) }

// Int64 returns the integer as an int64 when it fits.
func (i Integer) Int64() (int64, bool) {
	b := i.big()
	if !b.IsInt64() {
		return 0, false
	}
	return b.Int64(), true
}

// Sign returns -1, 0 or +1.
func (i Integer) Sign() int { return i.big().Sign() }

// Float64 returns the nearest float64, rounding half to even.
func (i Integer) Float64() float64 {
	f, _ := new(big.Float).SetInt(i.big()).Float64()
	return f
}

func (i Integer) big() *big.Int {
	if i.v == nil {
		return new(big.Int)
	}
	return i.v
}

// IntegerFromFloat converts a float with a fractional part already removed
// into an Integer, reporting Overflow when it does not fit.
func IntegerFromFloat(f float64) Value {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return NewError(Overflow, "cannot convert %s to an integer", formatFloat(f))
	}
	b, _ := big.NewFloat(f).Int(nil)
	return IntegerFromBig(b)
}
