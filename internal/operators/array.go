package operators

import (
	"sort"

	"github.com/specialistvlad/radgo/internal/filters"
	"github.com/specialistvlad/radgo/internal/radon"
	"github.com/specialistvlad/radgo/internal/reducers"
	"github.com/specialistvlad/radgo/internal/script"
)

const (
	OpArrayCount       script.Opcode = 0x10
	OpArrayFilter      script.Opcode = 0x11
	OpArrayJoin        script.Opcode = 0x12
	OpArrayGetArray    script.Opcode = 0x13
	OpArrayGetBoolean  script.Opcode = 0x14
	OpArrayGetBytes    script.Opcode = 0x15
	OpArrayGetFloat    script.Opcode = 0x16
	OpArrayGetInteger  script.Opcode = 0x17
	OpArrayGetMap      script.Opcode = 0x18
	OpArrayGetString   script.Opcode = 0x19
	OpArrayMap         script.Opcode = 0x1A
	OpArrayReduce      script.Opcode = 0x1B
	OpArrayFilterBy    script.Opcode = 0x1C
	OpArraySort        script.Opcode = 0x1D
	OpArrayCountErrors script.Opcode = 0x1E
	OpArrayDropErrors  script.Opcode = 0x1F
)

var arrayOnly = []radon.Kind{radon.KindArray}

func arrayOperators() []*Operator {
	ops := []*Operator{
		{
			Code: OpArrayCount, Name: "ArrayCount", Input: arrayOnly,
			Fn: func(_ *Context, in radon.Value, _ []script.Arg) radon.Value {
				return radon.NewInteger(int64(in.(radon.Array).Len()))
			},
		},
		{
			Code: OpArrayFilter, Name: "ArrayFilter", Input: arrayOnly,
			Args: []script.ArgKind{script.ArgScript}, Required: 1,
			Fn: arrayFilter,
		},
		{
			Code: OpArrayJoin, Name: "ArrayJoin", Input: arrayOnly,
			Args: []script.ArgKind{script.ArgString},
			Fn:   arrayJoin,
		},
		{
			Code: OpArrayMap, Name: "ArrayMap", Input: arrayOnly,
			Args: []script.ArgKind{script.ArgScript}, Required: 1,
			Fn: arrayMap,
		},
		{
			Code: OpArrayReduce, Name: "ArrayReduce", Input: arrayOnly,
			Args:     []script.ArgKind{script.ArgReducer, script.ArgFloat, script.ArgTieBreak},
			Required: 1,
			Fn:       arrayReduce,
		},
		{
			Code: OpArrayFilterBy, Name: "ArrayFilterBy", Input: arrayOnly,
			Args:     []script.ArgKind{script.ArgFilter, script.ArgAny},
			Required: 1, Variadic: true,
			Fn: arrayFilterBy,
		},
		{
			Code: OpArraySort, Name: "ArraySort", Input: arrayOnly,
			Args: []script.ArgKind{script.ArgScript},
			Fn:   arraySort,
		},
		{
			Code: OpArrayCountErrors, Name: "ArrayCountErrors", Input: arrayOnly,
			Fn: func(_ *Context, in radon.Value, _ []script.Arg) radon.Value {
				_, errs := splitErrors(in.(radon.Array).Values())
				return radon.NewInteger(int64(count(errs)))
			},
		},
		{
			Code: OpArrayDropErrors, Name: "ArrayDropErrors", Input: arrayOnly,
			Args: []script.ArgKind{script.ArgFloat},
			Fn:   arrayDropErrors,
		},
	}

	getters := []struct {
		code script.Opcode
		kind radon.Kind
	}{
		{OpArrayGetArray, radon.KindArray},
		{OpArrayGetBoolean, radon.KindBoolean},
		{OpArrayGetBytes, radon.KindBytes},
		{OpArrayGetFloat, radon.KindFloat},
		{OpArrayGetInteger, radon.KindInteger},
		{OpArrayGetMap, radon.KindMap},
		{OpArrayGetString, radon.KindString},
	}
	for _, g := range getters {
		ops = append(ops, &Operator{
			Code: g.code, Name: "ArrayGet" + g.kind.String(), Input: arrayOnly,
			Args: []script.ArgKind{script.ArgInteger}, Required: 1,
			Fn: arrayGet(g.kind),
		})
	}
	return ops
}

func arrayGet(want radon.Kind) Fn {
	return func(_ *Context, in radon.Value, args []script.Arg) radon.Value {
		arr := in.(radon.Array)
		idx, errv := intArg(args, 0)
		if errv != nil {
			return errv
		}
		if idx < 0 || idx >= int64(arr.Len()) {
			return radon.NewError(radon.IndexOutOfBounds, "index %d out of bounds for array of length %d", idx, arr.Len())
		}
		v := arr.At(int(idx))
		if v.Kind() != want {
			return radon.NewError(radon.WrongType, "element %d is %s, not %s", idx, v.Kind(), want)
		}
		return v
	}
}

func arrayFilter(ctx *Context, in radon.Value, args []script.Arg) radon.Value {
	id, _ := subArg(args, 0)
	vals := in.(radon.Array).Values()
	kept := make([]radon.Value, 0, len(vals))
	removed := make([]bool, len(vals))
	for i, v := range vals {
		res := ctx.eval(id, v)
		if radon.IsError(res) {
			return res
		}
		keep, ok := res.(radon.Boolean)
		if !ok {
			return radon.NewError(radon.WrongType, "filter predicate returned %s, not boolean", res.Kind())
		}
		if keep {
			kept = append(kept, v)
		} else {
			removed[i] = true
		}
	}
	ctx.tracker().drop(removed, false)
	return radon.NewArray(kept...)
}

func arrayMap(ctx *Context, in radon.Value, args []script.Arg) radon.Value {
	id, _ := subArg(args, 0)
	vals := in.(radon.Array).Values()
	out := make([]radon.Value, len(vals))
	for i, v := range vals {
		out[i] = ctx.eval(id, v)
	}
	return radon.NewArray(out...)
}

// arrayJoin concatenates strings (with an optional separator), byte strings
// or arrays, and merges maps with later keys winning.
func arrayJoin(_ *Context, in radon.Value, args []script.Arg) radon.Value {
	vals := in.(radon.Array).Values()
	if len(vals) == 0 {
		return radon.NewError(radon.EmptyArray, "cannot join an empty array")
	}
	kind := vals[0].Kind()
	for _, v := range vals {
		if v.Kind() != kind {
			return radon.NewError(radon.NotHomogeneous, "cannot join %s with %s", kind, v.Kind())
		}
	}
	sep := stringArg(args, 0, "")
	switch kind {
	case radon.KindString:
		var out []byte
		for i, v := range vals {
			if i > 0 {
				out = append(out, sep...)
			}
			out = append(out, string(v.(radon.String))...)
		}
		return radon.String(out)
	case radon.KindBytes:
		var out []byte
		for _, v := range vals {
			out = append(out, v.(radon.Bytes)...)
		}
		return radon.NewBytes(out)
	case radon.KindArray:
		var out []radon.Value
		for _, v := range vals {
			out = append(out, v.(radon.Array).Values()...)
		}
		return radon.NewArray(out...)
	case radon.KindMap:
		out := make(map[string]radon.Value)
		for _, v := range vals {
			m := v.(radon.Map)
			for _, k := range m.Keys() {
				out[k], _ = m.Get(k)
			}
		}
		return radon.NewMap(out)
	}
	return radon.NewError(radon.WrongType, "cannot join elements of kind %s", kind)
}

func arrayReduce(ctx *Context, in radon.Value, args []script.Arg) radon.Value {
	code, errv := intArg(args, 0)
	if errv != nil {
		return errv
	}
	tolerance, errv := optFloatArg(args, 1, 0)
	if errv != nil {
		return errv
	}
	n, errv := optIntArg(args, 2, int64(reducers.TieError))
	if errv != nil {
		return errv
	}
	tie, errv := reducers.ParseTieBreak(n)
	if errv != nil {
		return errv
	}
	vals, errv := dropErrors(ctx, in.(radon.Array).Values(), tolerance)
	if errv != nil {
		return errv
	}
	return reducers.Reduce(reducers.Code(code), vals, tie)
}

func arrayDropErrors(ctx *Context, in radon.Value, args []script.Arg) radon.Value {
	tolerance, errv := optFloatArg(args, 0, 1)
	if errv != nil {
		return errv
	}
	vals, errv := dropErrors(ctx, in.(radon.Array).Values(), tolerance)
	if errv != nil {
		return errv
	}
	return radon.NewArray(vals...)
}

// dropErrors removes Error elements when at most tolerance·n of the n
// elements are errors.
func dropErrors(ctx *Context, vals []radon.Value, tolerance float64) ([]radon.Value, radon.Value) {
	if tolerance < 0 || tolerance > 1 {
		return nil, radon.NewError(radon.WrongArguments, "error tolerance %v is outside [0, 1]", tolerance)
	}
	kept, errs := splitErrors(vals)
	e := count(errs)
	if e == 0 {
		return vals, nil
	}
	if float64(e) > float64(tolerance*float64(len(vals))) {
		return nil, radon.NewError(radon.SourcesDisagree, "%d of %d elements are errors", e, len(vals))
	}
	ctx.tracker().drop(errs, true)
	if len(kept) == 0 {
		return nil, radon.NewError(radon.InsufficientSources, "every element is an error")
	}
	return kept, nil
}

func splitErrors(vals []radon.Value) ([]radon.Value, []bool) {
	kept := make([]radon.Value, 0, len(vals))
	errs := make([]bool, len(vals))
	for i, v := range vals {
		if radon.IsError(v) {
			errs[i] = true
			continue
		}
		kept = append(kept, v)
	}
	return kept, errs
}

func count(mask []bool) int {
	n := 0
	for _, b := range mask {
		if b {
			n++
		}
	}
	return n
}

func arrayFilterBy(ctx *Context, in radon.Value, args []script.Arg) radon.Value {
	code, errv := intArg(args, 0)
	if errv != nil {
		return errv
	}
	extra := literals(args, 1)
	if filters.Code(code) == filters.Mode && len(extra) > 0 {
		// The tie-break of the Mode filter may be written by name.
		if name, ok := extra[0].(radon.String); ok {
			if tie, ok := reducers.TieBreakNames[string(name)]; ok {
				extra[0] = radon.NewInteger(int64(tie))
			}
		}
	}
	res := filters.Apply(filters.Code(code), in.(radon.Array).Values(), extra)
	if res.Err != nil {
		return res.Err
	}
	ctx.tracker().drop(res.Removed, false)
	return radon.NewArray(res.Kept...)
}

func arraySort(ctx *Context, in radon.Value, args []script.Arg) radon.Value {
	vals := in.(radon.Array).Values()
	keys := vals
	if id, ok := subArg(args, 0); ok {
		keys = make([]radon.Value, len(vals))
		for i, v := range vals {
			k := ctx.eval(id, v)
			if radon.IsError(k) {
				return k
			}
			keys[i] = k
		}
	}
	order := make([]int, len(vals))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return radon.Compare(keys[order[a]], keys[order[b]]) < 0
	})
	out := make([]radon.Value, len(vals))
	for i, old := range order {
		out[i] = vals[old]
	}
	ctx.tracker().permute(order)
	return radon.NewArray(out...)
}
