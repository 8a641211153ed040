// Package filters removes elements from an array and reports which positions
// were removed, so the tally stage can flag the witnesses behind them.
package filters

import (
	"math"

	"github.com/specialistvlad/radgo/internal/radon"
	"github.com/specialistvlad/radgo/internal/reducers"
)

// Code identifies a filter in scripts. Codes with the high bit set negate the
// filter with the same low bits.
type Code uint8

const (
	GreaterThan       Code = 0x00
	LessThan          Code = 0x01
	Equals            Code = 0x02
	DeviationStandard Code = 0x05
	Mode              Code = 0x08

	LessOrEqualThan      Code = 0x80
	GreaterOrEqualThan   Code = 0x81
	NotEquals            Code = 0x82
	NotDeviationStandard Code = 0x85

	negated Code = 0x80
)

// Names maps filter names, as written in request documents, to codes.
var Names = map[string]Code{
	"GreaterThan":          GreaterThan,
	"LessThan":             LessThan,
	"Equals":               Equals,
	"DeviationStandard":    DeviationStandard,
	"Mode":                 Mode,
	"LessOrEqualThan":      LessOrEqualThan,
	"GreaterOrEqualThan":   GreaterOrEqualThan,
	"NotEquals":            NotEquals,
	"NotDeviationStandard": NotDeviationStandard,
}

// Result is the outcome of a filter. When Err is set the other fields are
// meaningless.
type Result struct {
	Kept    []radon.Value
	Removed []bool
	Err     radon.Value
}

// Apply runs filter code over vals with the given literal arguments.
func Apply(code Code, vals []radon.Value, args []radon.Value) Result {
	for _, v := range vals {
		if radon.IsError(v) {
			return Result{Err: radon.NewError(radon.SourcesDisagree, "cannot filter an array containing errors")}
		}
	}

	base, neg := code&^negated, code&negated != 0
	if base == Mode && neg {
		return Result{Err: radon.NewError(radon.UnsupportedOperator, "unknown filter 0x%02X", uint8(code))}
	}

	var keep func(radon.Value) (bool, radon.Value)
	switch base {
	case GreaterThan, LessThan:
		bound, errVal := numericArg(args, 0)
		if errVal != nil {
			return Result{Err: errVal}
		}
		want := 1
		if base == LessThan {
			want = -1
		}
		keep = func(v radon.Value) (bool, radon.Value) {
			c, ok := radon.CompareNumeric(v, bound)
			if !ok {
				return false, radon.NewError(radon.WrongType, "cannot compare %s with a number", v.Kind())
			}
			return c == want, nil
		}
	case Equals:
		if len(args) < 1 {
			return Result{Err: radon.NewError(radon.WrongArguments, "Equals filter takes one argument")}
		}
		target := args[0]
		keep = func(v radon.Value) (bool, radon.Value) {
			if c, ok := radon.CompareNumeric(v, target); ok {
				return c == 0, nil
			}
			return radon.Equal(v, target), nil
		}
	case DeviationStandard:
		return deviationStandard(vals, args, neg)
	case Mode:
		return mode(vals, args)
	default:
		return Result{Err: radon.NewError(radon.UnsupportedOperator, "unknown filter 0x%02X", uint8(code))}
	}

	res := Result{Removed: make([]bool, len(vals))}
	for i, v := range vals {
		ok, errVal := keep(v)
		if errVal != nil {
			return Result{Err: errVal}
		}
		if ok != neg {
			res.Kept = append(res.Kept, v)
		} else {
			res.Removed[i] = true
		}
	}
	return res
}

// deviationStandard keeps the values within k population standard
// deviations of the mean.
func deviationStandard(vals []radon.Value, args []radon.Value, neg bool) Result {
	k, errVal := numericArg(args, 0)
	if errVal != nil {
		return Result{Err: errVal}
	}
	factor, _ := radon.AsFloat64(k)
	if factor < 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return Result{Err: radon.NewError(radon.WrongArguments, "DeviationStandard factor must be a finite non-negative number")}
	}
	res := Result{Removed: make([]bool, len(vals))}
	if len(vals) == 0 {
		return res
	}

	xs := make([]float64, len(vals))
	for i, v := range vals {
		f, ok := radon.AsFloat64(v)
		if !ok {
			return Result{Err: radon.NewError(radon.WrongType, "DeviationStandard filter expects numbers, got %s", v.Kind())}
		}
		xs[i] = f
	}

	mean, sigma := reducers.MeanAndDeviation(xs)
	spread := float64(sigma * factor)
	lo, hi := float64(mean-spread), float64(mean+spread)

	for i, x := range xs {
		inside := x >= lo && x <= hi
		if inside != neg {
			res.Kept = append(res.Kept, vals[i])
		} else {
			res.Removed[i] = true
		}
	}
	return res
}

// mode keeps only the values equal to the mode.
func mode(vals []radon.Value, args []radon.Value) Result {
	tie := reducers.TieError
	if len(args) > 0 {
		n, ok := args[0].(radon.Integer)
		if !ok {
			return Result{Err: radon.NewError(radon.WrongArguments, "Mode filter tie-break must be an integer")}
		}
		t, exact := n.Int64()
		if !exact {
			return Result{Err: radon.NewError(radon.WrongArguments, "unknown tie-break %s", n)}
		}
		var errVal radon.Value
		if tie, errVal = reducers.ParseTieBreak(t); errVal != nil {
			return Result{Err: errVal}
		}
	}
	res := Result{Removed: make([]bool, len(vals))}
	if len(vals) == 0 {
		return res
	}

	m := reducers.ModeOf(vals, tie)
	if radon.IsError(m) {
		return Result{Err: m}
	}
	for i, v := range vals {
		if radon.Equal(v, m) {
			res.Kept = append(res.Kept, v)
		} else {
			res.Removed[i] = true
		}
	}
	return res
}

func numericArg(args []radon.Value, i int) (radon.Value, radon.Value) {
	if i >= len(args) || !radon.IsNumber(args[i]) {
		return nil, radon.NewError(radon.WrongArguments, "filter argument %d must be a number", i)
	}
	return args[i], nil
}
