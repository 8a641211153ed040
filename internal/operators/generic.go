package operators

import (
	"github.com/specialistvlad/radgo/internal/radon"
	"github.com/specialistvlad/radgo/internal/script"
)

const (
	OpIdentity     script.Opcode = 0x00
	OpErrorDefault script.Opcode = 0x02
	OpErrorCode    script.Opcode = 0x03
	OpErrorMessage script.Opcode = 0x04
)

func genericOperators() []*Operator {
	onlyErrors := []radon.Kind{radon.KindError}
	return []*Operator{
		{
			Code: OpIdentity, Name: "Identity",
			Fn: func(_ *Context, in radon.Value, _ []script.Arg) radon.Value { return in },
		},
		{
			// ErrorDefault replaces an error with a fallback value and lets
			// anything else through.
			Code: OpErrorDefault, Name: "ErrorDefault", AcceptsError: true,
			Args: []script.ArgKind{script.ArgAny}, Required: 1,
			Fn: func(_ *Context, in radon.Value, args []script.Arg) radon.Value {
				if !radon.IsError(in) {
					return in
				}
				def, _ := literal(args, 0)
				return def
			},
		},
		{
			Code: OpErrorCode, Name: "ErrorCode", Input: onlyErrors, AcceptsError: true,
			Fn: func(_ *Context, in radon.Value, _ []script.Arg) radon.Value {
				e, _ := radon.AsError(in)
				return radon.NewInteger(int64(e.Code))
			},
		},
		{
			Code: OpErrorMessage, Name: "ErrorMessage", Input: onlyErrors, AcceptsError: true,
			Fn: func(_ *Context, in radon.Value, _ []script.Arg) radon.Value {
				e, _ := radon.AsError(in)
				return radon.String(e.Message)
			},
		},
	}
}
