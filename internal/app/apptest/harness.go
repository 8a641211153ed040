// Package apptest builds fully wired Apps for tests.
package apptest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/radgo/internal/app"
	"github.com/specialistvlad/radgo/internal/testutil"
	"github.com/stretchr/testify/require"
)

// Harness is an App wired against request documents in a temp directory.
type Harness struct {
	App  *app.App
	Logs *testutil.SafeBuffer
	// Dir holds the request documents.
	Dir string
}

// NewHarness writes files to a temporary directory and builds an App with
// the given settings document. An empty settings string keeps the defaults.
func NewHarness(t *testing.T, files map[string]string, settings string) *Harness {
	t.Helper()

	cfg := app.Config{LogLevel: "debug", LogFormat: "text"}
	if settings != "" {
		path := filepath.Join(t.TempDir(), "settings.yaml")
		require.NoError(t, os.WriteFile(path, []byte(settings), 0o644))
		cfg.SettingsPath = path
	}
	appCfg, err := app.NewConfig(cfg)
	require.NoError(t, err)

	logs := &testutil.SafeBuffer{}
	a, err := app.NewApp(logs, appCfg)
	require.NoError(t, err)
	t.Cleanup(a.Close)

	t.Cleanup(func() {
		if os.Getenv("RADGO_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})
	return &Harness{App: a, Logs: logs, Dir: testutil.WriteFiles(t, files)}
}
