// Package reducers collapses an array of values into a single value. Every
// reducer is deterministic: sums run in array order with explicit float64
// rounding and ties are broken by a rule chosen by the script author.
package reducers

import (
	"crypto/sha256"
	"math"
	"math/big"

	"github.com/specialistvlad/radgo/internal/radon"
)

// Code identifies a reducer in scripts.
type Code uint8

const (
	Min               Code = 0x00
	Max               Code = 0x01
	Mode              Code = 0x02
	AverageMean       Code = 0x03
	AverageMedian     Code = 0x05
	DeviationStandard Code = 0x07
	HashConcatenate   Code = 0x0B
)

// Names maps reducer names, as written in request documents, to codes.
var Names = map[string]Code{
	"Min":               Min,
	"Max":               Max,
	"Mode":              Mode,
	"AverageMean":       AverageMean,
	"AverageMedian":     AverageMedian,
	"DeviationStandard": DeviationStandard,
	"HashConcatenate":   HashConcatenate,
}

// TieBreak decides which value a mode-like reducer returns when several
// values share the highest count.
type TieBreak uint8

const (
	TieError TieBreak = iota
	TieLowest
	TieHighest
)

// TieBreakNames maps tie-break names to values.
var TieBreakNames = map[string]TieBreak{
	"error":   TieError,
	"lowest":  TieLowest,
	"highest": TieHighest,
}

// ParseTieBreak converts a script literal to a TieBreak. Values outside the
// known range are rejected instead of wrapping.
func ParseTieBreak(n int64) (TieBreak, radon.Value) {
	if n < int64(TieError) || n > int64(TieHighest) {
		return 0, radon.NewError(radon.WrongArguments, "unknown tie-break %d", n)
	}
	return TieBreak(n), nil
}

// Reduce applies the reducer identified by code. Inputs must not contain
// Error values; callers drop or reject them first.
func Reduce(code Code, vals []radon.Value, tie TieBreak) radon.Value {
	if len(vals) == 0 {
		return radon.NewError(radon.EmptyArray, "cannot reduce an empty array")
	}
	for _, v := range vals {
		if radon.IsError(v) {
			return radon.NewError(radon.SourcesDisagree, "input contains errors")
		}
	}

	switch code {
	case Min:
		return extreme(vals, -1)
	case Max:
		return extreme(vals, 1)
	case Mode:
		return ModeOf(vals, tie)
	case AverageMean:
		return Mean(vals)
	case AverageMedian:
		return Median(vals)
	case DeviationStandard:
		return StandardDeviation(vals)
	case HashConcatenate:
		return hashConcatenate(vals)
	}
	return radon.NewError(radon.UnsupportedOperator, "unknown reducer 0x%02X", uint8(code))
}

func extreme(vals []radon.Value, sign int) radon.Value {
	kind := vals[0].Kind()
	best := vals[0]
	for _, v := range vals[1:] {
		if v.Kind() != kind {
			return radon.NewError(radon.NotHomogeneous, "array mixes %s and %s", kind, v.Kind())
		}
		if radon.Compare(v, best)*sign > 0 {
			best = v
		}
	}
	return best
}

// numbers checks that vals are all Integers or all Floats.
func numbers(vals []radon.Value) (radon.Kind, radon.Value) {
	kind := vals[0].Kind()
	if kind != radon.KindInteger && kind != radon.KindFloat {
		return kind, radon.NewError(radon.WrongType, "expected numbers, got %s", kind)
	}
	for _, v := range vals[1:] {
		if v.Kind() != kind {
			return kind, radon.NewError(radon.NotHomogeneous, "array mixes %s and %s", kind, v.Kind())
		}
	}
	return kind, nil
}

// Mean returns the arithmetic mean as a Float. Integer sums are exact and
// the division is rounded once.
func Mean(vals []radon.Value) radon.Value {
	kind, errVal := numbers(vals)
	if errVal != nil {
		return errVal
	}
	if kind == radon.KindInteger {
		sum := new(big.Int)
		for _, v := range vals {
			sum.Add(sum, v.(radon.Integer).Big())
		}
		f, _ := new(big.Rat).SetFrac(sum, big.NewInt(int64(len(vals)))).Float64()
		return radon.NewFloat(f)
	}
	return radon.NewFloat(floatMean(floats(vals)))
}

// Median sorts by the total order and returns the middle value. Even-length
// Integer arrays return the floor of the mean of the middle pair.
func Median(vals []radon.Value) radon.Value {
	kind, errVal := numbers(vals)
	if errVal != nil {
		return errVal
	}
	sorted := append([]radon.Value(nil), vals...)
	radon.SortValues(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	lo, hi := sorted[mid-1], sorted[mid]
	if kind == radon.KindInteger {
		sum := new(big.Int).Add(lo.(radon.Integer).Big(), hi.(radon.Integer).Big())
		return radon.IntegerFromBig(sum.Div(sum, big.NewInt(2)))
	}
	a, b := lo.(radon.Float).Float64(), hi.(radon.Float).Float64()
	return radon.NewFloat(float64(a/2) + float64(b/2))
}

// StandardDeviation returns the population standard deviation as a Float.
func StandardDeviation(vals []radon.Value) radon.Value {
	if _, errVal := numbers(vals); errVal != nil {
		return errVal
	}
	_, sigma := MeanAndDeviation(floats(vals))
	return radon.NewFloat(sigma)
}

// MeanAndDeviation returns the mean and the population standard deviation
// of xs.
func MeanAndDeviation(xs []float64) (float64, float64) {
	mean := floatMean(xs)
	var acc float64
	for _, x := range xs {
		d := float64(x - mean)
		acc = float64(acc + float64(d*d))
	}
	return mean, math.Sqrt(float64(acc / float64(len(xs))))
}

// floatMean sums in order. Every intermediate result is converted to float64
// explicitly so the compiler cannot fuse operations.
func floatMean(xs []float64) float64 {
	var acc float64
	for _, x := range xs {
		acc = float64(acc + x)
	}
	return float64(acc / float64(len(xs)))
}

func floats(vals []radon.Value) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i], _ = radon.AsFloat64(v)
	}
	return out
}

// ModeOf returns the most frequent value. Counting uses canonical equality.
func ModeOf(vals []radon.Value, tie TieBreak) radon.Value {
	groups := groupEqual(vals)
	best := 0
	for _, g := range groups {
		best = max(best, g.count)
	}

	var winners []radon.Value
	for _, g := range groups {
		if g.count == best {
			winners = append(winners, g.value)
		}
	}
	if len(winners) == 1 {
		return winners[0]
	}

	switch tie {
	case TieLowest:
		return winners[0]
	case TieHighest:
		return winners[len(winners)-1]
	}
	return radon.NewError(radon.ModeTie, "%d values tie with %d occurrences each", len(winners), best)
}

type group struct {
	value radon.Value
	count int
}

// groupEqual returns runs of equal values in ascending order.
func groupEqual(vals []radon.Value) []group {
	sorted := append([]radon.Value(nil), vals...)
	radon.SortValues(sorted)

	var groups []group
	for _, v := range sorted {
		if n := len(groups); n > 0 && radon.Equal(groups[n-1].value, v) {
			groups[n-1].count++
			continue
		}
		groups = append(groups, group{value: v, count: 1})
	}
	return groups
}

func hashConcatenate(vals []radon.Value) radon.Value {
	h := sha256.New()
	for _, v := range vals {
		b, ok := v.(radon.Bytes)
		if !ok {
			return radon.NewError(radon.WrongType, "HashConcatenate expects Bytes, got %s", v.Kind())
		}
		h.Write(b)
	}
	return radon.Bytes(h.Sum(nil))
}
