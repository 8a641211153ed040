package operators

import (
	"encoding/hex"
	"math/big"
	"unicode/utf8"

	"github.com/specialistvlad/radgo/internal/radon"
	"github.com/specialistvlad/radgo/internal/script"
)

const (
	OpBytesAsString  script.Opcode = 0x30
	OpBytesHash      script.Opcode = 0x31
	OpBytesAsInteger script.Opcode = 0x32
	OpBytesLength    script.Opcode = 0x33
	OpBytesSlice     script.Opcode = 0x34
	OpBytesAsHex     script.Opcode = 0x35
)

func bytesOperators() []*Operator {
	only := []radon.Kind{radon.KindBytes}
	return []*Operator{
		{
			Code: OpBytesAsString, Name: "BytesAsString", Input: only,
			Fn: func(_ *Context, in radon.Value, _ []script.Arg) radon.Value {
				b := in.(radon.Bytes)
				if !utf8.Valid(b) {
					return radon.NewError(radon.ParseError, "bytes are not valid UTF-8")
				}
				return radon.String(b)
			},
		},
		{
			Code: OpBytesHash, Name: "BytesHash", Input: only,
			Args: []script.ArgKind{script.ArgHash}, Required: 1,
			Fn: func(_ *Context, in radon.Value, args []script.Arg) radon.Value {
				code, errv := intArg(args, 0)
				if errv != nil {
					return errv
				}
				if code < 0 || code > 0xFF {
					return radon.NewError(radon.UnsupportedOperator, "unknown hash function %d", code)
				}
				sum, ok := Digest(HashFunction(code), in.(radon.Bytes))
				if !ok {
					return radon.NewError(radon.UnsupportedOperator, "unknown hash function 0x%02X", code)
				}
				return radon.Bytes(sum)
			},
		},
		{
			// BytesAsInteger reads an unsigned big-endian integer unless the
			// first argument asks for little-endian.
			Code: OpBytesAsInteger, Name: "BytesAsInteger", Input: only,
			Args: []script.ArgKind{script.ArgBoolean},
			Fn: func(_ *Context, in radon.Value, args []script.Arg) radon.Value {
				b := radon.NewBytes(in.(radon.Bytes))
				if v, ok := literal(args, 0); ok && v == radon.Boolean(true) {
					for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
						b[i], b[j] = b[j], b[i]
					}
				}
				return radon.IntegerFromBig(new(big.Int).SetBytes(b))
			},
		},
		{
			Code: OpBytesLength, Name: "BytesLength", Input: only,
			Fn: func(_ *Context, in radon.Value, _ []script.Arg) radon.Value {
				return radon.NewInteger(int64(len(in.(radon.Bytes))))
			},
		},
		{
			Code: OpBytesSlice, Name: "BytesSlice", Input: only,
			Args: []script.ArgKind{script.ArgInteger, script.ArgInteger}, Required: 1,
			Fn: func(_ *Context, in radon.Value, args []script.Arg) radon.Value {
				b := in.(radon.Bytes)
				start, end, errv := sliceBounds(args, len(b))
				if errv != nil {
					return errv
				}
				return radon.NewBytes(b[start:end])
			},
		},
		{
			Code: OpBytesAsHex, Name: "BytesAsHex", Input: only,
			Fn: func(_ *Context, in radon.Value, _ []script.Arg) radon.Value {
				return radon.String(hex.EncodeToString(in.(radon.Bytes)))
			},
		},
	}
}

// sliceBounds reads [start, end) arguments for a sequence of length n. The
// end defaults to n.
func sliceBounds(args []script.Arg, n int) (int, int, radon.Value) {
	start, errv := intArg(args, 0)
	if errv != nil {
		return 0, 0, errv
	}
	end, errv := optIntArg(args, 1, int64(n))
	if errv != nil {
		return 0, 0, errv
	}
	if start < 0 || end > int64(n) || start > end {
		return 0, 0, radon.NewError(radon.IndexOutOfBounds, "slice [%d:%d] out of bounds for length %d", start, end, n)
	}
	return int(start), int(end), nil
}
