package operators

import (
	"github.com/specialistvlad/radgo/internal/radon"
	"github.com/specialistvlad/radgo/internal/script"
)

// Context is what an operator may use besides its input: a way to evaluate
// subscripts and, during a tally, the tracker of witness positions.
type Context struct {
	Eval    func(id script.ID, in radon.Value) radon.Value
	Tracker *Tracker
}

// Tracker follows the original position of every element of the array being
// tallied, so elements removed by filters can be reported as liars and
// elements dropped for being errors can be reported as errors.
type Tracker struct {
	active []int
	liars  []bool
	errors []bool
}

// NewTracker starts tracking an array of n elements.
func NewTracker(n int) *Tracker {
	active := make([]int, n)
	for i := range active {
		active[i] = i
	}
	return &Tracker{active: active, liars: make([]bool, n), errors: make([]bool, n)}
}

// follows reports whether the current array still lines up with the tracked
// positions. Operators that change the shape of the array (maps to another
// length, joins) silently stop the tracking.
func (t *Tracker) follows(n int) bool {
	return t != nil && len(t.active) == n
}

// drop removes the positions marked in removed, recording them as liars or
// as errors.
func (t *Tracker) drop(removed []bool, asErrors bool) {
	if !t.follows(len(removed)) {
		return
	}
	kept := t.active[:0:0]
	for i, orig := range t.active {
		if !removed[i] {
			kept = append(kept, orig)
			continue
		}
		if asErrors {
			t.errors[orig] = true
		} else {
			t.liars[orig] = true
		}
	}
	t.active = kept
}

// permute reorders the tracked positions; order[i] is the old index of the
// element now at i.
func (t *Tracker) permute(order []int) {
	if !t.follows(len(order)) {
		return
	}
	next := make([]int, len(order))
	for i, old := range order {
		next[i] = t.active[old]
	}
	t.active = next
}

// Liars returns which original positions were filtered out.
func (t *Tracker) Liars() []bool { return append([]bool(nil), t.liars...) }

// Errors returns which original positions were dropped for being errors.
func (t *Tracker) Errors() []bool { return append([]bool(nil), t.errors...) }

// MarkErrors flags original positions as errors without changing the
// tracked array.
func (t *Tracker) MarkErrors(positions []bool) {
	for i, e := range positions {
		if e && i < len(t.errors) {
			t.errors[i] = true
		}
	}
}
