package radon

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFloat_Canonicalizes(t *testing.T) {
	t.Parallel()

	nan := NewFloat(math.NaN())
	e, ok := AsError(nan)
	require.True(t, ok, "NaN must become an error value")
	assert.Equal(t, NotANumber, e.Code)

	negZero := NewFloat(math.Copysign(0, -1))
	require.IsType(t, Float{}, negZero)
	assert.False(t, math.Signbit(negZero.(Float).Float64()), "negative zero must be canonicalized")
	assert.True(t, Equal(negZero, NewFloat(0)))

	inf := NewFloat(math.Inf(1))
	require.IsType(t, Float{}, inf)
}

func TestIntegerFromBig_Bounds(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		in   *big.Int
		code ErrorCode
		ok   bool
	}{
		{name: "max", in: MaxInteger, ok: true},
		{name: "min", in: MinInteger, ok: true},
		{name: "above max", in: new(big.Int).Add(MaxInteger, big.NewInt(1)), code: Overflow},
		{name: "below min", in: new(big.Int).Sub(MinInteger, big.NewInt(1)), code: Underflow},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			v := IntegerFromBig(tc.in)
			if tc.ok {
				require.IsType(t, Integer{}, v)
				assert.Equal(t, 0, v.(Integer).Big().Cmp(tc.in))
				return
			}
			e, isErr := AsError(v)
			require.True(t, isErr)
			assert.Equal(t, tc.code, e.Code)
		})
	}
}

func TestCompare_TotalOrder(t *testing.T) {
	t.Parallel()

	ordered := []Value{
		Boolean(false),
		Boolean(true),
		NewInteger(-5),
		NewInteger(3),
		NewFloat(math.Inf(-1)),
		NewFloat(-1.5),
		NewFloat(2.25),
		String("a"),
		String("b"),
		Bytes{0x01},
		Bytes{0x01, 0x00},
		NewArray(NewInteger(1)),
		NewArray(NewInteger(1), NewInteger(0)),
		NewMap(map[string]Value{"a": NewInteger(1)}),
		NewError(WrongType, "a"),
		NewError(Overflow, "a"),
	}
	// WrongType (0x50) sorts after Overflow (0x41).
	ordered[len(ordered)-1], ordered[len(ordered)-2] = ordered[len(ordered)-2], ordered[len(ordered)-1]

	for i := range ordered {
		for j := range ordered {
			got := Compare(ordered[i], ordered[j])
			want := compareInts(i, j)
			assert.Equal(t, want, got, "Compare(%s, %s)", ordered[i], ordered[j])
		}
	}
}

func TestMap_KeysSortedRegardlessOfInput(t *testing.T) {
	t.Parallel()

	a := NewMap(map[string]Value{"z": NewInteger(1), "a": NewInteger(2), "m": NewInteger(3)})
	assert.Equal(t, []string{"a", "m", "z"}, a.Keys())

	v, ok := a.Get("m")
	require.True(t, ok)
	assert.True(t, Equal(NewInteger(3), v))

	_, ok = a.Get("missing")
	assert.False(t, ok)
}

func TestEncode_RoundTrip(t *testing.T) {
	t.Parallel()

	huge, _ := new(big.Int).SetString("-100000000000000000000000000000", 10)
	testCases := map[string]Value{
		"boolean":       Boolean(true),
		"small integer": NewInteger(7),
		"negative":      NewInteger(-42),
		"int128 max":    IntegerFromBig(MaxInteger),
		"int128 min":    IntegerFromBig(MinInteger),
		"big negative":  IntegerFromBig(huge),
		"float":         NewFloat(3.141592653589793),
		"float inf":     NewFloat(math.Inf(-1)),
		"string":        String("héllo"),
		"bytes":         Bytes{0xde, 0xad, 0xbe, 0xef},
		"error":         NewError(Timeout, "retrieval timed out"),
		"nested": NewArray(
			NewInteger(1),
			NewMap(map[string]Value{
				"inner": NewArray(String("x"), NewError(WrongType, "bad")),
				"f":     NewFloat(0.5),
			}),
			NewArray(),
		),
	}

	for name, v := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			// --- Act ---
			encoded, err := Encode(v)
			require.NoError(t, err)
			decoded, err := Decode(encoded)
			require.NoError(t, err)
			reencoded, err := Encode(decoded)
			require.NoError(t, err)

			// --- Assert ---
			assert.True(t, Equal(v, decoded), "decoded %s, want %s", decoded, v)
			assert.Equal(t, encoded, reencoded)
		})
	}
}

func TestEncode_EqualValuesEncodeIdentically(t *testing.T) {
	t.Parallel()

	first := NewMap(map[string]Value{"b": NewInteger(2), "aa": NewInteger(1), "a": NewFloat(0)})
	second := NewMap(map[string]Value{"a": NewFloat(math.Copysign(0, -1)), "aa": NewInteger(1), "b": NewInteger(2)})

	assert.Equal(t, MustEncode(first), MustEncode(second))

	h1, err := Hash(first)
	require.NoError(t, err)
	h2, err := Hash(second)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestEncode_ErrorUsesTag39(t *testing.T) {
	t.Parallel()

	b := MustEncode(NewError(Overflow, ""))
	// tag(39) = 0xd8 0x27, array(2) = 0x82, 0x18 0x41 = uint 65, "" = 0x60
	assert.Equal(t, []byte{0xd8, 0x27, 0x82, 0x18, 0x41, 0x60}, b)
}

func TestDecode_Rejects(t *testing.T) {
	t.Parallel()

	testCases := map[string][]byte{
		"trailing data":   {0x01, 0x02},
		"null":            {0xf6},
		"unknown tag":     {0xd8, 0x28, 0x01},
		"non-string key":  {0xa1, 0x01, 0x02},
		"duplicate keys":  {0xa2, 0x61, 0x61, 0x01, 0x61, 0x61, 0x02},
		"malformed error": {0xd8, 0x27, 0x01},
		"empty input":     {},
	}

	for name, data := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode(data)
			require.Error(t, err)
		})
	}
}

func TestFromGo_Numbers(t *testing.T) {
	t.Parallel()

	assert.True(t, Equal(NewInteger(12), NumberFromString("12")))
	assert.True(t, Equal(NewFloat(12), NumberFromString("12.0")))
	assert.True(t, Equal(NewFloat(1200), NumberFromString("1.2e3")))

	big := NumberFromString("170141183460469231731687303715884105728")
	require.IsType(t, Float{}, big, "integers beyond 128 bits degrade to floats")

	v, err := FromGo(map[string]any{"list": []any{1, "two", 3.5, true}})
	require.NoError(t, err)
	m := v.(Map)
	list, ok := m.Get("list")
	require.True(t, ok)
	assert.Equal(t, 4, list.(Array).Len())

	_, err = FromGo(nil)
	require.Error(t, err)
}
