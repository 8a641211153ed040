package script

import "github.com/specialistvlad/radgo/internal/radon"

// ArgKind declares what an argument position accepts.
type ArgKind uint8

const (
	ArgAny ArgKind = iota
	ArgInteger
	ArgFloat // Integer or Float
	ArgString
	ArgBoolean
	ArgMap
	ArgScript
	ArgReducer
	ArgFilter
	ArgHash
	ArgTieBreak
)

// maxTieBreak is the highest tie-break code: error, lowest, highest.
const maxTieBreak = 2

var argKindNames = map[ArgKind]string{
	ArgAny:      "any",
	ArgInteger:  "integer",
	ArgFloat:    "number",
	ArgString:   "string",
	ArgBoolean:  "boolean",
	ArgMap:      "map",
	ArgScript:   "script",
	ArgReducer:  "reducer",
	ArgFilter:   "filter",
	ArgHash:     "hash function",
	ArgTieBreak: "tie-break",
}

func (k ArgKind) String() string { return argKindNames[k] }

// symbolic reports whether a position takes a catalog code that may be
// written by name.
func (k ArgKind) symbolic() bool {
	switch k {
	case ArgReducer, ArgFilter, ArgHash, ArgTieBreak:
		return true
	}
	return false
}

// accepts checks a literal against the position.
func (k ArgKind) accepts(v radon.Value) bool {
	switch k {
	case ArgAny:
		return true
	case ArgInteger, ArgReducer, ArgFilter, ArgHash:
		return v.Kind() == radon.KindInteger
	case ArgTieBreak:
		n, ok := v.(radon.Integer)
		if !ok {
			return false
		}
		t, ok := n.Int64()
		return ok && t >= 0 && t <= maxTieBreak
	case ArgFloat:
		return v.Kind() == radon.KindInteger || v.Kind() == radon.KindFloat
	case ArgString:
		return v.Kind() == radon.KindString
	case ArgBoolean:
		return v.Kind() == radon.KindBoolean
	case ArgMap:
		return v.Kind() == radon.KindMap
	}
	return false
}

// Signature describes the argument list of an operator.
type Signature struct {
	Name     string
	Args     []ArgKind
	Required int
	// Variadic repeats the last entry of Args without limit.
	Variadic bool
}

func (s Signature) kindAt(i int) (ArgKind, bool) {
	if i < len(s.Args) {
		return s.Args[i], true
	}
	if s.Variadic && len(s.Args) > 0 {
		return s.Args[len(s.Args)-1], true
	}
	return ArgAny, false
}

// Catalog resolves operators and symbolic argument names. The operators
// package provides the implementation.
type Catalog interface {
	Signature(op Opcode) (Signature, bool)
	Resolve(name string) (Opcode, bool)
	Names() []string
	Symbol(kind ArgKind, name string) (int64, bool)
}
