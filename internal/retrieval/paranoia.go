package retrieval

import (
	"github.com/specialistvlad/radgo/internal/radon"
)

// Agree picks the value most paths agree on and checks it against the
// paranoia threshold. Errors are compared like any other value. When several
// groups share the largest size the lowest value in the total order wins.
// The winner is accepted when agree·100 ≥ paranoia·n; a single path is always
// accepted.
func Agree(values []radon.Value, paranoia int) (radon.Value, int, bool) {
	n := len(values)
	if n == 0 {
		return radon.NewError(radon.InsufficientConsensus, "no paths to compare"), 0, false
	}
	if n == 1 {
		return values[0], 1, true
	}

	sorted := append([]radon.Value(nil), values...)
	radon.SortValues(sorted)

	best, bestCount := sorted[0], 0
	for i := 0; i < n; {
		j := i + 1
		for j < n && radon.Equal(sorted[i], sorted[j]) {
			j++
		}
		if j-i > bestCount {
			best, bestCount = sorted[i], j-i
		}
		i = j
	}

	if bestCount*100 >= paranoia*n {
		return best, bestCount, true
	}
	return radon.NewError(radon.InsufficientConsensus, "%d of %d paths agree", bestCount, n), bestCount, false
}
