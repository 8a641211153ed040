package operators

import (
	"github.com/specialistvlad/radgo/internal/radon"
	"github.com/specialistvlad/radgo/internal/script"
)

// Argument kinds are checked when a script is built, so these helpers only
// deal with optional positions and range checks.

func literal(args []script.Arg, i int) (radon.Value, bool) {
	if i >= len(args) {
		return nil, false
	}
	return args[i].Value()
}

func intArg(args []script.Arg, i int) (int64, radon.Value) {
	v, ok := literal(args, i)
	if !ok {
		return 0, radon.NewError(radon.WrongArguments, "missing integer argument %d", i)
	}
	n, ok := v.(radon.Integer)
	if !ok {
		return 0, radon.NewError(radon.WrongArguments, "argument %d must be an integer", i)
	}
	x, ok := n.Int64()
	if !ok {
		return 0, radon.NewError(radon.WrongArguments, "argument %d is out of range", i)
	}
	return x, nil
}

func optIntArg(args []script.Arg, i int, def int64) (int64, radon.Value) {
	if _, ok := literal(args, i); !ok {
		return def, nil
	}
	return intArg(args, i)
}

func floatArg(args []script.Arg, i int) (float64, radon.Value) {
	v, ok := literal(args, i)
	if !ok {
		return 0, radon.NewError(radon.WrongArguments, "missing numeric argument %d", i)
	}
	f, ok := radon.AsFloat64(v)
	if !ok {
		return 0, radon.NewError(radon.WrongArguments, "argument %d must be a number", i)
	}
	return f, nil
}

func optFloatArg(args []script.Arg, i int, def float64) (float64, radon.Value) {
	if _, ok := literal(args, i); !ok {
		return def, nil
	}
	return floatArg(args, i)
}

func stringArg(args []script.Arg, i int, def string) string {
	v, ok := literal(args, i)
	if !ok {
		return def
	}
	if s, ok := v.(radon.String); ok {
		return string(s)
	}
	return def
}

func subArg(args []script.Arg, i int) (script.ID, bool) {
	if i >= len(args) {
		return 0, false
	}
	return args[i].Script()
}

// literals returns the literal arguments starting at position from.
func literals(args []script.Arg, from int) []radon.Value {
	var out []radon.Value
	for i := from; i < len(args); i++ {
		if v, ok := args[i].Value(); ok {
			out = append(out, v)
		}
	}
	return out
}

func wrongType(op string, v radon.Value) radon.Value {
	return radon.NewError(radon.WrongType, "%s cannot be applied to %s", op, v.Kind())
}

// eval runs a subscript through the context. A context without an evaluator
// cannot run higher-order operators.
func (c *Context) eval(id script.ID, in radon.Value) radon.Value {
	if c == nil || c.Eval == nil {
		return radon.NewError(radon.MalformedScript, "subscripts are not available here")
	}
	return c.Eval(id, in)
}

func (c *Context) tracker() *Tracker {
	if c == nil {
		return nil
	}
	return c.Tracker
}
