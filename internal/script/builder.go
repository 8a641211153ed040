package script

import (
	"fmt"

	"github.com/specialistvlad/radgo/internal/radon"
)

// Builder assembles a Script, validating every call against a catalog and
// the configured limits as it goes.
type Builder struct {
	cat    Catalog
	limits Limits
	subs   [][]Call
	depths []int
	total  int
}

// NewBuilder returns an empty builder.
func NewBuilder(cat Catalog, limits Limits) *Builder {
	return &Builder{cat: cat, limits: limits}
}

// Subscript validates calls and appends them to the arena. The returned ID
// can be used by calls added afterwards.
func (b *Builder) Subscript(calls []Call) (ID, error) {
	depth, err := b.check(calls)
	if err != nil {
		return 0, err
	}
	b.subs = append(b.subs, cloneCalls(calls))
	b.depths = append(b.depths, depth)
	return ID(len(b.subs) - 1), nil
}

// Build validates the top-level calls and returns the finished script. The
// builder must not be reused afterwards.
func (b *Builder) Build(calls []Call) (*Script, error) {
	depth, err := b.check(calls)
	if err != nil {
		return nil, err
	}
	return &Script{
		calls: cloneCalls(calls),
		subs:  b.subs,
		total: b.total,
		depth: depth,
	}, nil
}

func (b *Builder) check(calls []Call) (int, error) {
	b.total += len(calls)
	if b.limits.MaxCalls > 0 && b.total > b.limits.MaxCalls {
		return 0, radon.NewError(radon.ScriptTooLong, "script has more than %d calls", b.limits.MaxCalls)
	}

	depth := 0
	for i, call := range calls {
		sig, ok := b.cat.Signature(call.Op)
		if !ok {
			return 0, radon.NewError(radon.UnsupportedOperator, "call %d: unknown opcode %s", i, call.Op)
		}
		if len(call.Args) < sig.Required {
			return 0, radon.NewError(radon.WrongArguments, "call %d: %s takes at least %d arguments, got %d", i, sig.Name, sig.Required, len(call.Args))
		}
		for j, arg := range call.Args {
			kind, ok := sig.kindAt(j)
			if !ok {
				return 0, radon.NewError(radon.WrongArguments, "call %d: %s takes at most %d arguments, got %d", i, sig.Name, len(sig.Args), len(call.Args))
			}
			if id, isSub := arg.Script(); isSub {
				if kind != ArgScript {
					return 0, radon.NewError(radon.WrongArguments, "call %d: %s argument %d must be a %s, not a script", i, sig.Name, j, kind)
				}
				if id < 0 || int(id) >= len(b.subs) {
					return 0, radon.NewError(radon.MalformedScript, "call %d: subscript %d is not defined before use", i, id)
				}
				depth = max(depth, b.depths[id]+1)
				continue
			}
			lit, _ := arg.Value()
			if kind == ArgScript || lit == nil || !kind.accepts(lit) {
				return 0, radon.NewError(radon.WrongArguments, "call %d: %s argument %d must be a %s", i, sig.Name, j, kind)
			}
		}
	}
	if b.limits.MaxDepth > 0 && depth > b.limits.MaxDepth {
		return 0, radon.NewError(radon.ScriptTooLong, "script nesting exceeds depth %d", b.limits.MaxDepth)
	}
	return depth, nil
}

func cloneCalls(calls []Call) []Call {
	out := make([]Call, len(calls))
	for i, c := range calls {
		out[i] = Call{Op: c.Op, Args: append([]Arg(nil), c.Args...)}
	}
	return out
}

// String renders a call for diagnostics.
func (c Call) String() string {
	return fmt.Sprintf("%s%v", c.Op, c.Args)
}

func (a Arg) String() string {
	if a.isSub {
		return fmt.Sprintf("script#%d", a.sub)
	}
	if a.lit == nil {
		return "<nil>"
	}
	return a.lit.String()
}
