package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext_FallsBackToDefault(t *testing.T) {
	t.Parallel()

	assert.Same(t, slog.Default(), FromContext(context.Background()))
	assert.Same(t, slog.Default(), FromContext(WithLogger(context.Background(), nil)))
}

func TestWith(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := WithLogger(context.Background(), base)

	// --- Act ---
	ctx, logger := With(ctx, "run_id", "r-1")
	FromContext(ctx).Info("hello")

	// --- Assert ---
	require.NotSame(t, base, logger)
	assert.Contains(t, buf.String(), "run_id=r-1")
	assert.Contains(t, buf.String(), "msg=hello")
}
