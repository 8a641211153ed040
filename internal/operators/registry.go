package operators

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/specialistvlad/radgo/internal/filters"
	"github.com/specialistvlad/radgo/internal/radon"
	"github.com/specialistvlad/radgo/internal/reducers"
	"github.com/specialistvlad/radgo/internal/script"
)

// Fn is the implementation of an operator. It must not retain or modify its
// input and must return a value for every input it declares to accept.
type Fn func(ctx *Context, in radon.Value, args []script.Arg) radon.Value

// Operator is a catalog entry.
type Operator struct {
	Code script.Opcode
	Name string
	// Input lists the accepted kinds; empty accepts every non-error kind.
	Input []radon.Kind
	// AcceptsError lets an Error value reach Fn instead of ending the script.
	AcceptsError bool
	Args         []script.ArgKind
	Required     int
	Variadic     bool
	Fn           Fn
}

// Accepts reports whether the operator can be applied to a value of kind k.
func (o *Operator) Accepts(k radon.Kind) bool {
	if k == radon.KindError {
		return o.AcceptsError
	}
	if len(o.Input) == 0 {
		return true
	}
	for _, in := range o.Input {
		if in == k {
			return true
		}
	}
	return false
}

// Registry holds the operator table and implements script.Catalog.
type Registry struct {
	byCode map[script.Opcode]*Operator
	byName map[string]*Operator
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byCode: make(map[script.Opcode]*Operator),
		byName: make(map[string]*Operator),
	}
}

// Register adds an operator. Duplicate codes or names are programming errors
// and panic.
func (r *Registry) Register(op *Operator) {
	if _, exists := r.byCode[op.Code]; exists {
		panic(fmt.Sprintf("operator with code %s is already registered", op.Code))
	}
	if _, exists := r.byName[op.Name]; exists {
		panic(fmt.Sprintf("operator %q is already registered", op.Name))
	}
	slog.Debug("Registering operator", "name", op.Name, "code", op.Code)
	r.byCode[op.Code] = op
	r.byName[op.Name] = op
}

// Lookup returns the operator for an opcode.
func (r *Registry) Lookup(code script.Opcode) (*Operator, bool) {
	op, ok := r.byCode[code]
	return op, ok
}

// Signature implements script.Catalog.
func (r *Registry) Signature(code script.Opcode) (script.Signature, bool) {
	op, ok := r.byCode[code]
	if !ok {
		return script.Signature{}, false
	}
	return script.Signature{Name: op.Name, Args: op.Args, Required: op.Required, Variadic: op.Variadic}, true
}

// Resolve implements script.Catalog.
func (r *Registry) Resolve(name string) (script.Opcode, bool) {
	op, ok := r.byName[name]
	if !ok {
		return 0, false
	}
	return op.Code, true
}

// Names implements script.Catalog.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Symbol implements script.Catalog by resolving reducer, filter, hash and
// tie-break names.
func (r *Registry) Symbol(kind script.ArgKind, name string) (int64, bool) {
	switch kind {
	case script.ArgReducer:
		code, ok := reducers.Names[name]
		return int64(code), ok
	case script.ArgFilter:
		code, ok := filters.Names[name]
		return int64(code), ok
	case script.ArgHash:
		code, ok := hashNames[name]
		return int64(code), ok
	case script.ArgTieBreak:
		tie, ok := reducers.TieBreakNames[name]
		return int64(tie), ok
	}
	return 0, false
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the shared, fully populated catalog.
func Default() *Registry {
	defaultOnce.Do(func() {
		r := NewRegistry()
		for _, group := range [][]*Operator{
			genericOperators(),
			arrayOperators(),
			booleanOperators(),
			bytesOperators(),
			integerOperators(),
			floatOperators(),
			mapOperators(),
			stringOperators(),
		} {
			for _, op := range group {
				r.Register(op)
			}
		}
		defaultRegistry = r
	})
	return defaultRegistry
}
