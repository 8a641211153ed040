package transport

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/specialistvlad/radgo/internal/radon"
)

// RNGSize is the number of random bytes an rng source yields.
const RNGSize = 32

// RNG produces local randomness for rng sources.
type RNG struct{}

// Fetch returns RNGSize bytes from the operating system.
func (RNG) Fetch(ctx context.Context, _ Request) (radon.Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	buf := make([]byte, RNGSize)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("reading randomness: %w", err)
	}
	return radon.Bytes(buf), nil
}
