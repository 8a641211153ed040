package operators

import (
	"github.com/specialistvlad/radgo/internal/radon"
	"github.com/specialistvlad/radgo/internal/script"
)

const (
	OpBooleanAsString script.Opcode = 0x20
	OpBooleanNegate   script.Opcode = 0x21
)

func booleanOperators() []*Operator {
	only := []radon.Kind{radon.KindBoolean}
	return []*Operator{
		{
			Code: OpBooleanAsString, Name: "BooleanAsString", Input: only,
			Fn: func(_ *Context, in radon.Value, _ []script.Arg) radon.Value {
				return radon.String(in.(radon.Boolean).String())
			},
		},
		{
			Code: OpBooleanNegate, Name: "BooleanNegate", Input: only,
			Fn: func(_ *Context, in radon.Value, _ []script.Arg) radon.Value {
				return !in.(radon.Boolean)
			},
		},
	}
}
