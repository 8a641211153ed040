package script

import (
	"fmt"

	"github.com/specialistvlad/radgo/internal/radon"
)

// Opcode identifies an operator in the catalog.
type Opcode uint8

func (o Opcode) String() string { return fmt.Sprintf("0x%02X", uint8(o)) }

// ID is the position of a subscript in a script's arena.
type ID int

// Arg is a call argument: either a literal value or a reference to a
// subscript.
type Arg struct {
	lit   radon.Value
	sub   ID
	isSub bool
}

// Literal wraps a literal argument.
func Literal(v radon.Value) Arg { return Arg{lit: v} }

// Subscript wraps a reference to an arena entry.
func Subscript(id ID) Arg { return Arg{sub: id, isSub: true} }

// Value returns the literal, if the argument is one.
func (a Arg) Value() (radon.Value, bool) {
	if a.isSub {
		return nil, false
	}
	return a.lit, true
}

// Script returns the subscript reference, if the argument is one.
func (a Arg) Script() (ID, bool) {
	if !a.isSub {
		return 0, false
	}
	return a.sub, true
}

// Call is one operator invocation.
type Call struct {
	Op   Opcode
	Args []Arg
}

// Script is an immutable, validated RadonScript.
type Script struct {
	calls []Call
	subs  [][]Call
	total int
	depth int
}

// Calls returns the top-level calls.
func (s *Script) Calls() []Call { return s.calls }

// Sub returns the calls of a subscript. IDs come from the script's own
// arguments, so an unknown ID is a programming error and panics.
func (s *Script) Sub(id ID) []Call { return s.subs[id] }

// Len returns the number of calls across the script and all subscripts.
func (s *Script) Len() int { return s.total }

// Depth returns the nesting depth; a script without subscripts has depth 0.
func (s *Script) Depth() int { return s.depth }

// Limits bounds the size of a script.
type Limits struct {
	MaxCalls int
	MaxDepth int
}

// DefaultLimits are used when a request does not say otherwise.
var DefaultLimits = Limits{MaxCalls: 128, MaxDepth: 8}
