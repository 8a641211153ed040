package operators

import (
	"math"

	"github.com/specialistvlad/radgo/internal/radon"
	"github.com/specialistvlad/radgo/internal/script"
)

const (
	OpFloatAbsolute    script.Opcode = 0x50
	OpFloatAsString    script.Opcode = 0x51
	OpFloatCeiling     script.Opcode = 0x52
	OpFloatGreaterThan script.Opcode = 0x53
	OpFloatFloor       script.Opcode = 0x54
	OpFloatLessThan    script.Opcode = 0x55
	OpFloatModulo      script.Opcode = 0x56
	OpFloatMultiply    script.Opcode = 0x57
	OpFloatNegate      script.Opcode = 0x58
	OpFloatPower       script.Opcode = 0x59
	OpFloatRound       script.Opcode = 0x5A
	OpFloatTruncate    script.Opcode = 0x5B
	OpFloatAdd         script.Opcode = 0x5C
)

// Every float result goes through radon.NewFloat so NaN never escapes, and
// every product is rounded to float64 before it is used again.

func floatOperators() []*Operator {
	only := []radon.Kind{radon.KindFloat}
	unary := func(code script.Opcode, name string, fn func(float64) float64) *Operator {
		return &Operator{
			Code: code, Name: name, Input: only,
			Fn: func(_ *Context, in radon.Value, _ []script.Arg) radon.Value {
				return radon.NewFloat(fn(in.(radon.Float).Float64()))
			},
		}
	}
	toInteger := func(code script.Opcode, name string, fn func(float64) float64) *Operator {
		return &Operator{
			Code: code, Name: name, Input: only,
			Fn: func(_ *Context, in radon.Value, _ []script.Arg) radon.Value {
				return radon.IntegerFromFloat(fn(in.(radon.Float).Float64()))
			},
		}
	}
	binary := func(code script.Opcode, name string, fn func(x, y float64) radon.Value) *Operator {
		return &Operator{
			Code: code, Name: name, Input: only,
			Args: []script.ArgKind{script.ArgFloat}, Required: 1,
			Fn: func(_ *Context, in radon.Value, args []script.Arg) radon.Value {
				y, errv := floatArg(args, 0)
				if errv != nil {
					return errv
				}
				return fn(in.(radon.Float).Float64(), y)
			},
		}
	}

	return []*Operator{
		unary(OpFloatAbsolute, "FloatAbsolute", math.Abs),
		{
			Code: OpFloatAsString, Name: "FloatAsString", Input: only,
			Fn: func(_ *Context, in radon.Value, _ []script.Arg) radon.Value {
				return radon.String(radon.FormatFloat(in.(radon.Float)))
			},
		},
		toInteger(OpFloatCeiling, "FloatCeiling", math.Ceil),
		numericComparison(OpFloatGreaterThan, "FloatGreaterThan", only, func(c int) bool { return c > 0 }),
		toInteger(OpFloatFloor, "FloatFloor", math.Floor),
		numericComparison(OpFloatLessThan, "FloatLessThan", only, func(c int) bool { return c < 0 }),
		binary(OpFloatModulo, "FloatModulo", func(x, y float64) radon.Value {
			if y == 0 {
				return radon.NewError(radon.DivisionByZero, "float modulo by zero")
			}
			return radon.NewFloat(math.Mod(x, y))
		}),
		binary(OpFloatMultiply, "FloatMultiply", func(x, y float64) radon.Value {
			return radon.NewFloat(float64(x * y))
		}),
		unary(OpFloatNegate, "FloatNegate", func(x float64) float64 { return -x }),
		binary(OpFloatPower, "FloatPower", func(x, y float64) radon.Value {
			return radon.NewFloat(math.Pow(x, y))
		}),
		toInteger(OpFloatRound, "FloatRound", math.Round),
		toInteger(OpFloatTruncate, "FloatTruncate", math.Trunc),
		binary(OpFloatAdd, "FloatAdd", func(x, y float64) radon.Value {
			return radon.NewFloat(float64(x + y))
		}),
	}
}
