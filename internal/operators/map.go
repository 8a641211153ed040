package operators

import (
	"github.com/specialistvlad/radgo/internal/radon"
	"github.com/specialistvlad/radgo/internal/script"
)

const (
	OpMapGet        script.Opcode = 0x60
	OpMapGetArray   script.Opcode = 0x61
	OpMapGetBoolean script.Opcode = 0x62
	OpMapGetBytes   script.Opcode = 0x63
	OpMapGetFloat   script.Opcode = 0x64
	OpMapGetInteger script.Opcode = 0x65
	OpMapGetMap     script.Opcode = 0x66
	OpMapGetString  script.Opcode = 0x67
	OpMapKeys       script.Opcode = 0x68
	OpMapValues     script.Opcode = 0x69
)

func mapOperators() []*Operator {
	only := []radon.Kind{radon.KindMap}
	ops := []*Operator{
		{
			Code: OpMapGet, Name: "MapGet", Input: only,
			Args: []script.ArgKind{script.ArgString}, Required: 1,
			Fn: mapGet(radon.KindInvalid),
		},
		{
			Code: OpMapKeys, Name: "MapKeys", Input: only,
			Fn: func(_ *Context, in radon.Value, _ []script.Arg) radon.Value {
				keys := in.(radon.Map).Keys()
				out := make([]radon.Value, len(keys))
				for i, k := range keys {
					out[i] = radon.String(k)
				}
				return radon.NewArray(out...)
			},
		},
		{
			Code: OpMapValues, Name: "MapValues", Input: only,
			Fn: func(_ *Context, in radon.Value, _ []script.Arg) radon.Value {
				return radon.NewArray(in.(radon.Map).Values()...)
			},
		},
	}
	for _, g := range []struct {
		code script.Opcode
		kind radon.Kind
	}{
		{OpMapGetArray, radon.KindArray},
		{OpMapGetBoolean, radon.KindBoolean},
		{OpMapGetBytes, radon.KindBytes},
		{OpMapGetFloat, radon.KindFloat},
		{OpMapGetInteger, radon.KindInteger},
		{OpMapGetMap, radon.KindMap},
		{OpMapGetString, radon.KindString},
	} {
		ops = append(ops, &Operator{
			Code: g.code, Name: "MapGet" + g.kind.String(), Input: only,
			Args: []script.ArgKind{script.ArgString}, Required: 1,
			Fn: mapGet(g.kind),
		})
	}
	return ops
}

// mapGet looks a key up; want is KindInvalid for the untyped getter.
func mapGet(want radon.Kind) Fn {
	return func(_ *Context, in radon.Value, args []script.Arg) radon.Value {
		key, ok := literal(args, 0)
		if !ok {
			return radon.NewError(radon.WrongArguments, "missing key")
		}
		k, ok := key.(radon.String)
		if !ok {
			return radon.NewError(radon.WrongArguments, "map keys are strings, got %s", key.Kind())
		}
		v, ok := in.(radon.Map).Get(string(k))
		if !ok {
			return radon.NewError(radon.KeyNotFound, "key %q not found", string(k))
		}
		if want != radon.KindInvalid && v.Kind() != want {
			return radon.NewError(radon.WrongType, "value at %q is %s, not %s", string(k), v.Kind(), want)
		}
		return v
	}
}
