package script

import (
	"fmt"
	"math"
	"sort"

	"github.com/agext/levenshtein"
	"github.com/specialistvlad/radgo/internal/radon"
)

// FromSlice builds a script from generic data as produced by HCL, YAML, JSON
// or CBOR decoders. Each call is an operator name, an opcode number, or a list
// whose head is a name or opcode and whose tail holds the arguments.
// Arguments in script positions are lists of calls themselves.
func FromSlice(raw []any, cat Catalog, limits Limits) (*Script, error) {
	b := NewBuilder(cat, limits)
	calls, err := b.parseCalls(raw)
	if err != nil {
		return nil, err
	}
	return b.Build(calls)
}

// Decode builds a script from its canonical binary form.
func Decode(data []byte, cat Catalog, limits Limits) (*Script, error) {
	raw, err := radon.UnmarshalGeneric(data)
	if err != nil {
		return nil, radon.NewError(radon.MalformedScript, "script is not valid CBOR")
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, radon.NewError(radon.MalformedScript, "script must be an array of calls")
	}
	return FromSlice(list, cat, limits)
}

// Encode returns the canonical binary form of the script. Opcodes are always
// written as numbers.
func (s *Script) Encode() ([]byte, error) {
	return radon.MarshalCanonical(s.toSlice(s.calls))
}

// ToSlice returns the generic form accepted by FromSlice.
func (s *Script) ToSlice() []any {
	return s.toSlice(s.calls)
}

func (s *Script) toSlice(calls []Call) []any {
	out := make([]any, len(calls))
	for i, c := range calls {
		if len(c.Args) == 0 {
			out[i] = uint64(c.Op)
			continue
		}
		item := make([]any, 0, len(c.Args)+1)
		item = append(item, uint64(c.Op))
		for _, a := range c.Args {
			if id, ok := a.Script(); ok {
				item = append(item, s.toSlice(s.subs[id]))
				continue
			}
			lit, _ := a.Value()
			item = append(item, radon.ToCBOR(lit))
		}
		out[i] = item
	}
	return out
}

func (b *Builder) parseCalls(raw []any) ([]Call, error) {
	calls := make([]Call, 0, len(raw))
	for i, item := range raw {
		call, err := b.parseCall(item)
		if err != nil {
			if e, ok := err.(radon.Error); ok {
				return nil, e
			}
			return nil, radon.NewError(radon.MalformedScript, "call %d: %v", i, err)
		}
		calls = append(calls, call)
	}
	return calls, nil
}

func (b *Builder) parseCall(item any) (Call, error) {
	head := item
	var tail []any
	if list, ok := item.([]any); ok {
		if len(list) == 0 {
			return Call{}, fmt.Errorf("empty call")
		}
		head, tail = list[0], list[1:]
	}

	op, err := b.resolveOp(head)
	if err != nil {
		return Call{}, err
	}
	sig, ok := b.cat.Signature(op)
	if !ok {
		return Call{}, radon.NewError(radon.UnsupportedOperator, "unknown opcode %s", op)
	}

	args := make([]Arg, 0, len(tail))
	for j, rawArg := range tail {
		kind, _ := sig.kindAt(j)
		arg, err := b.parseArg(kind, rawArg)
		if err != nil {
			return Call{}, err
		}
		args = append(args, arg)
	}
	return Call{Op: op, Args: args}, nil
}

func (b *Builder) parseArg(kind ArgKind, rawArg any) (Arg, error) {
	if kind == ArgScript {
		list, ok := rawArg.([]any)
		if !ok {
			return Arg{}, radon.NewError(radon.WrongArguments, "expected a script, got %T", rawArg)
		}
		calls, err := b.parseCalls(list)
		if err != nil {
			return Arg{}, err
		}
		id, err := b.Subscript(calls)
		if err != nil {
			return Arg{}, err
		}
		return Subscript(id), nil
	}
	if name, ok := rawArg.(string); ok && kind.symbolic() {
		code, found := b.cat.Symbol(kind, name)
		if !found {
			return Arg{}, radon.NewError(radon.WrongArguments, "unknown %s %q", kind, name)
		}
		return Literal(radon.NewInteger(code)), nil
	}
	v, err := radon.FromGo(rawArg)
	if err != nil {
		return Arg{}, radon.NewError(radon.WrongArguments, "invalid literal: %v", err)
	}
	return Literal(v), nil
}

func (b *Builder) resolveOp(head any) (Opcode, error) {
	switch h := head.(type) {
	case string:
		if op, ok := b.cat.Resolve(h); ok {
			return op, nil
		}
		if hint := suggest(h, b.cat.Names()); hint != "" {
			return 0, radon.NewError(radon.UnsupportedOperator, "unknown operator %q (did you mean %q?)", h, hint)
		}
		return 0, radon.NewError(radon.UnsupportedOperator, "unknown operator %q", h)
	case int:
		return opcodeFromInt(int64(h))
	case int64:
		return opcodeFromInt(h)
	case uint64:
		if h > math.MaxUint8 {
			return 0, radon.NewError(radon.UnsupportedOperator, "opcode %d out of range", h)
		}
		return Opcode(h), nil
	case float64:
		if h != math.Trunc(h) {
			return 0, fmt.Errorf("opcode %v is not an integer", h)
		}
		return opcodeFromInt(int64(h))
	case radon.Integer:
		n, ok := h.Int64()
		if !ok {
			return 0, radon.NewError(radon.UnsupportedOperator, "opcode %s out of range", h)
		}
		return opcodeFromInt(n)
	}
	return 0, fmt.Errorf("operator must be a name or an opcode, got %T", head)
}

func opcodeFromInt(n int64) (Opcode, error) {
	if n < 0 || n > math.MaxUint8 {
		return 0, radon.NewError(radon.UnsupportedOperator, "opcode %d out of range", n)
	}
	return Opcode(n), nil
}

// suggest returns the closest known name within a small edit distance.
func suggest(name string, names []string) string {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	best, bestDist := "", 4
	for _, candidate := range sorted {
		if d := levenshtein.Distance(name, candidate, nil); d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best
}
