package settings

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/specialistvlad/radgo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	t.Parallel()

	s := Default()

	require.NoError(t, s.Validate())
	limit, err := s.BodyLimit()
	require.NoError(t, err)
	assert.Equal(t, int64(8<<20), limit)
	assert.Equal(t, 128, s.Limits().MaxCalls)
	assert.Equal(t, 8, s.Limits().MaxDepth)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := testutil.WriteFiles(t, map[string]string{"node.yaml": `
paranoia: 67
proxies: ["socks5://10.0.0.1:1080", "http://10.0.0.2:3128"]
timeout: 3s
rate_limit: 20
rate_burst: 5
max_body_size: 512 KiB
script_limits:
  max_calls: 64
interval: 30s
`})

	// --- Act ---
	s, err := Load(filepath.Join(root, "node.yaml"))

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, 67, s.Paranoia)
	assert.Len(t, s.Proxies, 2)
	assert.True(t, s.AllowUnproxied, "unset fields keep their defaults")
	assert.Equal(t, 3*time.Second, s.Timeout)
	assert.Equal(t, 64, s.ScriptLimits.MaxCalls)
	assert.Equal(t, 8, s.ScriptLimits.MaxDepth)
	assert.Equal(t, 30*time.Second, s.Interval)
	limit, err := s.BodyLimit()
	require.NoError(t, err)
	assert.Equal(t, int64(512<<10), limit)

	d := s.RequestDefaults()
	assert.Equal(t, 67, d.Paranoia)
	assert.Equal(t, 64, d.Limits.MaxCalls)
}

func TestLoad_EmptyPathGivesDefaults(t *testing.T) {
	t.Parallel()

	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestParse_EmptyDocument(t *testing.T) {
	t.Parallel()

	s, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestParse_Rejects(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{name: "paranoia zero", doc: "paranoia: 0", wantErr: "paranoia"},
		{name: "paranoia too high", doc: "paranoia: 101", wantErr: "paranoia"},
		{name: "negative timeout", doc: "timeout: -1s", wantErr: "timeout"},
		{name: "unknown field", doc: "paranoya: 51", wantErr: "paranoya"},
		{name: "bad body size", doc: "max_body_size: lots", wantErr: "max_body_size"},
		{name: "bad proxy", doc: "proxies: [\"ftp://x:21\"]", wantErr: "proxy scheme"},
		{name: "nowhere to fetch from", doc: "allow_unproxied: false", wantErr: "no proxies"},
		{name: "no workers", doc: "workers: 0", wantErr: "workers"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tc.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestParse_ReportsAllProblems(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("paranoia: 0\nworkers: 0\n"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "paranoia")
	assert.Contains(t, err.Error(), "workers")
}
