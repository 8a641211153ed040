package yamlreq

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/radgo/internal/operators"
	"github.com/specialistvlad/radgo/internal/request"
	"github.com/specialistvlad/radgo/internal/script"
	"github.com/specialistvlad/radgo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const priceYAML = `
requests:
  - name: btc-usd
    timeout: 5s
    paranoia: 67
    allow_unproxied: false
    sources:
      - kind: http-get
        url: https://api.example.com/ticker
        headers: {X-Api-Key: secret}
        script: [StringParseJSONMap, [MapGetFloat, price]]
      - kind: rng
    aggregate:
      reducer: AverageMean
      error_tolerance: 0.5
    tally:
      filters:
        - {name: DeviationStandard, args: [1.5]}
      reducer: Mode
      tie_break: lowest
      min_consensus: 0.66
---
requests:
  - name: second
    sources:
      - kind: websocket
        url: wss://stream.example.com
        body: subscribe
`

func TestLoader_Load(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := testutil.WriteFiles(t, map[string]string{"price.yaml": priceYAML})

	// --- Act ---
	reqs, err := NewLoader().Load(context.Background(), filepath.Join(root, "price.yaml"))

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, reqs, 2)

	btc := reqs[0]
	assert.Equal(t, "btc-usd", btc.Name)
	assert.Equal(t, 5*time.Second, btc.Timeout)
	assert.Equal(t, 67, btc.Paranoia)
	require.NotNil(t, btc.AllowUnproxied)
	assert.False(t, *btc.AllowUnproxied)
	require.Len(t, btc.Sources, 2)
	assert.Equal(t, map[string]string{"X-Api-Key": "secret"}, btc.Sources[0].Headers)
	want := []any{"StringParseJSONMap", []any{"MapGetFloat", "price"}}
	if diff := cmp.Diff(want, btc.Sources[0].Script); diff != "" {
		t.Errorf("script mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "lowest", btc.Tally.TieBreak)
	require.Len(t, btc.Tally.Filters, 1)
	assert.Equal(t, []any{1.5}, btc.Tally.Filters[0].Args)

	second := reqs[1]
	assert.Equal(t, "second", second.Name)
	assert.Equal(t, "subscribe", second.Sources[0].Body)
	assert.Nil(t, second.Aggregate)
	assert.Equal(t, filepath.Join(root, "price.yaml"), second.File)

	defaults := request.Defaults{Paranoia: 51, AllowUnproxied: true, Timeout: 10 * time.Second, Limits: script.DefaultLimits}
	for _, r := range reqs {
		_, err := request.Compile(r, operators.Default(), defaults)
		assert.NoError(t, err, r.Name)
	}
}

func TestParse_Rejects(t *testing.T) {
	t.Parallel()

	testCases := map[string]string{
		"unknown field":  "requests:\n  - name: x\n    colour: red\n",
		"bad timeout":    "requests:\n  - name: x\n    timeout: soon\n",
		"not a list":     "requests: {name: x}\n",
		"broken yaml":    "requests: [\n",
		"script not seq": "requests:\n  - name: x\n    sources:\n      - kind: rng\n        script: ArrayCount\n",
	}

	for name, doc := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(doc))
			require.Error(t, err)
		})
	}
}

func TestLoader_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "read ")
}
