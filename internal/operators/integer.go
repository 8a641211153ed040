package operators

import (
	"math/big"

	"github.com/specialistvlad/radgo/internal/radon"
	"github.com/specialistvlad/radgo/internal/script"
)

const (
	OpIntegerAbsolute    script.Opcode = 0x40
	OpIntegerAsFloat     script.Opcode = 0x41
	OpIntegerAsString    script.Opcode = 0x42
	OpIntegerGreaterThan script.Opcode = 0x43
	OpIntegerLessThan    script.Opcode = 0x44
	OpIntegerAdd         script.Opcode = 0x45
	OpIntegerModulo      script.Opcode = 0x46
	OpIntegerMultiply    script.Opcode = 0x47
	OpIntegerNegate      script.Opcode = 0x48
	OpIntegerPower       script.Opcode = 0x49
	OpIntegerEquals      script.Opcode = 0x4A
)

func integerOperators() []*Operator {
	only := []radon.Kind{radon.KindInteger}
	unary := func(code script.Opcode, name string, fn func(*big.Int) *big.Int) *Operator {
		return &Operator{
			Code: code, Name: name, Input: only,
			Fn: func(_ *Context, in radon.Value, _ []script.Arg) radon.Value {
				return radon.IntegerFromBig(fn(in.(radon.Integer).Big()))
			},
		}
	}
	binary := func(code script.Opcode, name string, fn func(x, y *big.Int) radon.Value) *Operator {
		return &Operator{
			Code: code, Name: name, Input: only,
			Args: []script.ArgKind{script.ArgInteger}, Required: 1,
			Fn: func(_ *Context, in radon.Value, args []script.Arg) radon.Value {
				v, _ := literal(args, 0)
				y, ok := v.(radon.Integer)
				if !ok {
					return radon.NewError(radon.WrongArguments, "%s needs an integer argument", name)
				}
				return fn(in.(radon.Integer).Big(), y.Big())
			},
		}
	}

	return []*Operator{
		unary(OpIntegerAbsolute, "IntegerAbsolute", func(x *big.Int) *big.Int { return x.Abs(x) }),
		{
			Code: OpIntegerAsFloat, Name: "IntegerAsFloat", Input: only,
			Fn: func(_ *Context, in radon.Value, _ []script.Arg) radon.Value {
				return radon.NewFloat(in.(radon.Integer).Float64())
			},
		},
		{
			Code: OpIntegerAsString, Name: "IntegerAsString", Input: only,
			Fn: func(_ *Context, in radon.Value, _ []script.Arg) radon.Value {
				return radon.String(in.(radon.Integer).String())
			},
		},
		numericComparison(OpIntegerGreaterThan, "IntegerGreaterThan", only, func(c int) bool { return c > 0 }),
		numericComparison(OpIntegerLessThan, "IntegerLessThan", only, func(c int) bool { return c < 0 }),
		numericComparison(OpIntegerEquals, "IntegerEquals", only, func(c int) bool { return c == 0 }),
		binary(OpIntegerAdd, "IntegerAdd", func(x, y *big.Int) radon.Value {
			return radon.IntegerFromBig(x.Add(x, y))
		}),
		binary(OpIntegerModulo, "IntegerModulo", func(x, y *big.Int) radon.Value {
			if y.Sign() == 0 {
				return radon.NewError(radon.DivisionByZero, "integer modulo by zero")
			}
			// Truncated remainder: the sign follows the dividend.
			return radon.IntegerFromBig(x.Rem(x, y))
		}),
		binary(OpIntegerMultiply, "IntegerMultiply", func(x, y *big.Int) radon.Value {
			return radon.IntegerFromBig(x.Mul(x, y))
		}),
		unary(OpIntegerNegate, "IntegerNegate", func(x *big.Int) *big.Int { return x.Neg(x) }),
		binary(OpIntegerPower, "IntegerPower", integerPower),
	}
}

func integerPower(x, y *big.Int) radon.Value {
	if y.Sign() < 0 {
		return radon.NewError(radon.WrongArguments, "negative exponent %s", y)
	}
	// Anything beyond 1 in magnitude overflows 128 bits well before an
	// exponent of 128.
	if x.CmpAbs(big.NewInt(1)) > 0 && y.Cmp(big.NewInt(128)) > 0 {
		if x.Sign() < 0 && y.Bit(0) == 1 {
			return radon.NewError(radon.Underflow, "integer below -2^127")
		}
		return radon.NewError(radon.Overflow, "integer above 2^127-1")
	}
	return radon.IntegerFromBig(new(big.Int).Exp(x, y, nil))
}

// numericComparison builds an operator comparing its numeric input to a
// numeric argument, exactly across Integer and Float.
func numericComparison(code script.Opcode, name string, input []radon.Kind, ok func(int) bool) *Operator {
	return &Operator{
		Code: code, Name: name, Input: input,
		Args: []script.ArgKind{script.ArgFloat}, Required: 1,
		Fn: func(_ *Context, in radon.Value, args []script.Arg) radon.Value {
			v, _ := literal(args, 0)
			if v == nil {
				return radon.NewError(radon.WrongArguments, "%s needs a numeric argument", name)
			}
			c, comparable := radon.CompareNumeric(in, v)
			if !comparable {
				return radon.NewError(radon.WrongArguments, "%s needs a numeric argument", name)
			}
			return radon.Boolean(ok(c))
		},
	}
}
