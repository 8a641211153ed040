package radon

import (
	"crypto/sha256"
	"fmt"
	"math/big"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// ErrorTag is the CBOR tag wrapping an encoded Error value.
const ErrorTag = 39

var (
	encMode = mustEncMode()
	decMode = mustDecMode()
)

func mustEncMode() cbor.EncMode {
	opts := cbor.CoreDetEncOptions()
	// Floats are always written as float64 so that the width never depends
	// on the value.
	opts.ShortestFloat = cbor.ShortestFloatNone
	opts.InfConvert = cbor.InfConvertNone
	em, err := opts.EncMode()
	if err != nil {
		panic(fmt.Errorf("radon: invalid cbor encoding options: %w", err))
	}
	return em
}

func mustDecMode() cbor.DecMode {
	dm, err := cbor.DecOptions{
		DupMapKey:      cbor.DupMapKeyEnforcedAPF,
		IndefLength:    cbor.IndefLengthForbidden,
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
		BigIntDec:      cbor.BigIntDecodeValue,
	}.DecMode()
	if err != nil {
		panic(fmt.Errorf("radon: invalid cbor decoding options: %w", err))
	}
	return dm
}

// Encode returns the canonical binary form of v. Semantically equal values
// always produce identical bytes.
func Encode(v Value) ([]byte, error) {
	return encMode.Marshal(ToCBOR(v))
}

// MustEncode is Encode for values known to be well formed.
func MustEncode(v Value) []byte {
	b, err := Encode(v)
	if err != nil {
		panic(err)
	}
	return b
}

// Decode parses the canonical binary form produced by Encode.
func Decode(data []byte) (Value, error) {
	var raw any
	if err := decMode.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding radon value: %w", err)
	}
	return FromCBOR(raw)
}

// MarshalCanonical encodes generic data (as produced by ToCBOR) with the
// same deterministic options used for values.
func MarshalCanonical(x any) ([]byte, error) {
	return encMode.Marshal(x)
}

// UnmarshalGeneric decodes CBOR into generic Go data without interpreting it
// as a value.
func UnmarshalGeneric(data []byte) (any, error) {
	var raw any
	if err := decMode.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Hash returns the SHA-256 digest of the canonical encoding of v.
func Hash(v Value) ([32]byte, error) {
	b, err := Encode(v)
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(b), nil
}

// ToCBOR maps a value onto the generic data model understood by the CBOR
// encoder.
func ToCBOR(v Value) any {
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
			out[i] = ToCBOR(e)
		}
		return out
	case Map:
		out := make(map[string]any, len(x.keys))
		for _, k := range x.keys {
			out[k] = ToCBOR(x.vals[k])
		}
		return out
	case Error:
		return cbor.Tag{Number: ErrorTag, Content: []any{uint64(x.Code), x.Message}}
	}
	panic(fmt.Sprintf("radon: cannot encode %T", v))
}

// FromCBOR is the inverse of ToCBOR over generically decoded CBOR data.
func FromCBOR(raw any) (Value, error) {
	switch x := raw.(type) {
	case bool:
		return Boolean(x), nil
	case uint64:
		return checkedInteger(new(big.Int).SetUint64(x))
	case int64:
		return NewInteger(x), nil
	case big.Int:
		return checkedInteger(&x)
	case *big.Int:
		return checkedInteger(x)
	case float64:
		return checkedFloat(x)
	case float32:
		return checkedFloat(float64(x))
	case string:
		return String(x), nil
	case []byte:
		return NewBytes(x), nil
	case []any:
		elems := make([]Value, len(x))
		for i, e := range x {
			v, err := FromCBOR(e)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return Array{elems: elems}, nil
	case map[string]any:
		m := make(map[string]Value, len(x))
		for k, e := range x {
			v, err := FromCBOR(e)
			if err != nil {
				return nil, err
			}
			m[k] = v
		}
		return NewMap(m), nil
	case cbor.Tag:
		return decodeErrorTag(x)
	case nil:
		return nil, fmt.Errorf("null is not a radon value")
	}
	return nil, fmt.Errorf("unsupported cbor item %T", raw)
}

func checkedInteger(b *big.Int) (Value, error) {
	v := IntegerFromBig(b)
	if e, ok := v.(Error); ok {
		return nil, e
	}
	return v, nil
}

func checkedFloat(f float64) (Value, error) {
	v := NewFloat(f)
	if e, ok := v.(Error); ok {
		return nil, e
	}
	return v, nil
}

func decodeErrorTag(t cbor.Tag) (Value, error) {
	if t.Number != ErrorTag {
		return nil, fmt.Errorf("unsupported cbor tag %d", t.Number)
	}
	content, ok := t.Content.([]any)
	if !ok || len(content) != 2 {
		return nil, fmt.Errorf("error tag must wrap [code, message]")
	}
	code, ok := content[0].(uint64)
	if !ok || code > 0xff {
		return nil, fmt.Errorf("error tag code must be a small unsigned integer")
	}
	msg, ok := content[1].(string)
	if !ok {
		return nil, fmt.Errorf("error tag message must be a text string")
	}
	return Error{Code: ErrorCode(code), Message: msg}, nil
}
