package reducers

import (
	"crypto/sha256"
	"math"
	"testing"

	"github.com/specialistvlad/radgo/internal/radon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ints(ns ...int64) []radon.Value {
	out := make([]radon.Value, len(ns))
	for i, n := range ns {
		out[i] = radon.NewInteger(n)
	}
	return out
}

func floatVals(fs ...float64) []radon.Value {
	out := make([]radon.Value, len(fs))
	for i, f := range fs {
		out[i] = radon.NewFloat(f)
	}
	return out
}

func requireErrorCode(t *testing.T, v radon.Value, code radon.ErrorCode) {
	t.Helper()
	e, ok := radon.AsError(v)
	require.True(t, ok, "expected an error value, got %s", v)
	assert.Equal(t, code, e.Code)
}

func TestReduce(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		code Code
		in   []radon.Value
		tie  TieBreak
		want radon.Value
	}{
		{name: "mean of integers", code: AverageMean, in: ints(1, 2, 4), want: radon.NewFloat(7.0 / 3.0)},
		{name: "mean of floats", code: AverageMean, in: floatVals(100, 105), want: radon.NewFloat(102.5)},
		{name: "median odd", code: AverageMedian, in: ints(9, 1, 5), want: radon.NewInteger(5)},
		{name: "median even integers floors", code: AverageMedian, in: ints(1, 2, 3, 4), want: radon.NewInteger(2)},
		{name: "median even negative integers floors", code: AverageMedian, in: ints(-1, -2), want: radon.NewInteger(-2)},
		{name: "median even floats", code: AverageMedian, in: floatVals(1, 2, 3, 4), want: radon.NewFloat(2.5)},
		{name: "mode", code: Mode, in: ints(2, 1, 2), want: radon.NewInteger(2)},
		{name: "mode tie lowest", code: Mode, in: ints(1, 1, 2, 2), tie: TieLowest, want: radon.NewInteger(1)},
		{name: "mode tie highest", code: Mode, in: ints(1, 1, 2, 2), tie: TieHighest, want: radon.NewInteger(2)},
		{name: "min", code: Min, in: floatVals(3, -1, 2), want: radon.NewFloat(-1)},
		{name: "max strings", code: Max, in: []radon.Value{radon.String("a"), radon.String("c"), radon.String("b")}, want: radon.String("c")},
		{name: "standard deviation", code: DeviationStandard, in: ints(2, 4, 4, 4, 5, 5, 7, 9), want: radon.NewFloat(2)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Reduce(tc.code, tc.in, tc.tie)
			assert.True(t, radon.Equal(tc.want, got), "got %s, want %s", got, tc.want)
		})
	}
}

func TestReduce_Failures(t *testing.T) {
	t.Parallel()

	requireErrorCode(t, Reduce(AverageMean, nil, TieError), radon.EmptyArray)
	requireErrorCode(t, Reduce(Mode, ints(1, 1, 2, 2), TieError), radon.ModeTie)
	requireErrorCode(t, Reduce(AverageMean, []radon.Value{radon.NewInteger(1), radon.NewFloat(1)}, TieError), radon.NotHomogeneous)
	requireErrorCode(t, Reduce(AverageMean, []radon.Value{radon.String("x")}, TieError), radon.WrongType)
	requireErrorCode(t, Reduce(AverageMean, []radon.Value{radon.NewInteger(1), radon.NewError(radon.Timeout, "t")}, TieError), radon.SourcesDisagree)
	requireErrorCode(t, Reduce(0x7F, ints(1), TieError), radon.UnsupportedOperator)
	requireErrorCode(t, Reduce(AverageMean, floatVals(math.Inf(1), math.Inf(-1)), TieError), radon.NotANumber)
}

func TestParseTieBreak(t *testing.T) {
	t.Parallel()

	for _, n := range []int64{0, 1, 2} {
		tie, errVal := ParseTieBreak(n)
		require.Nil(t, errVal)
		assert.Equal(t, TieBreak(n), tie)
	}
	for _, n := range []int64{-1, 3, 257} {
		_, errVal := ParseTieBreak(n)
		e, ok := radon.AsError(errVal)
		require.True(t, ok, "tie-break %d", n)
		assert.Equal(t, radon.WrongArguments, e.Code)
	}
}

func TestReduce_HashConcatenate(t *testing.T) {
	t.Parallel()

	got := Reduce(HashConcatenate, []radon.Value{radon.Bytes{0x01}, radon.Bytes{0x02, 0x03}}, TieError)
	want := sha256.Sum256([]byte{0x01, 0x02, 0x03})
	assert.True(t, radon.Equal(radon.Bytes(want[:]), got))
}

func TestMean_IsOrderSensitiveButRepeatable(t *testing.T) {
	t.Parallel()

	in := floatVals(0.1, 0.2, 0.3, 1e16, -1e16)
	first := Mean(in)
	for i := 0; i < 10; i++ {
		assert.Equal(t, radon.MustEncode(first), radon.MustEncode(Mean(in)))
	}
}
