package request

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/radgo/internal/operators"
	"github.com/specialistvlad/radgo/internal/radon"
	"github.com/specialistvlad/radgo/internal/retrieval"
	"github.com/specialistvlad/radgo/internal/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaults = Defaults{
	Paranoia:       51,
	AllowUnproxied: true,
	Timeout:        10 * time.Second,
	Limits:         script.DefaultLimits,
}

func priceRequest() *Request {
	return &Request{
		Name: "btc-usd",
		Sources: []*Source{
			{Kind: "http-get", URL: "https://api.example.com/price", Script: []any{"StringParseJSONMap", []any{"MapGetFloat", "usd"}}},
			{Kind: "rng"},
		},
		Aggregate: &Stage{Reducer: "AverageMean", ErrorTolerance: 0.5},
		Tally: &Stage{
			Filters:      []*Filter{{Name: "DeviationStandard", Args: []any{1.5}}},
			Reducer:      "Mode",
			TieBreak:     "lowest",
			MinConsensus: 0.66,
		},
	}
}

func TestStage_Calls(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		stage *Stage
		want  []any
	}{
		{name: "nil stage", stage: nil, want: nil},
		{name: "script wins", stage: &Stage{Script: []any{"ArrayCount"}, Reducer: "Mode"}, want: []any{"ArrayCount"}},
		{name: "reducer only", stage: &Stage{Reducer: "AverageMean"}, want: []any{[]any{"ArrayReduce", "AverageMean"}}},
		{
			name:  "full shorthand",
			stage: priceRequest().Tally,
			want: []any{
				[]any{"ArrayFilterBy", "DeviationStandard", 1.5},
				[]any{"ArrayReduce", "Mode", 0.0, "lowest"},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(tc.want, tc.stage.Calls()); diff != "" {
				t.Errorf("Calls() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompile(t *testing.T) {
	t.Parallel()

	// Arrange
	r := priceRequest()
	r.Paranoia = 67
	r.Proxies = []string{"socks5://127.0.0.1:1080"}

	// Act
	c, err := Compile(r, operators.Default(), defaults)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "btc-usd", c.Name)
	require.Len(t, c.Sources, 2)
	assert.Equal(t, retrieval.KindHTTPGet, c.Sources[0].Kind)
	assert.Equal(t, 2, c.Sources[0].Script.Len())
	assert.Equal(t, 67, c.Params.Paranoia)
	assert.Equal(t, 10*time.Second, c.Params.Timeout)
	require.Len(t, c.Params.Proxies, 1)
	assert.Equal(t, "socks5", c.Params.Proxies[0].Scheme)
	assert.Equal(t, 2, c.Tally.Len())
	assert.InDelta(t, 0.66, c.MinConsensus, 0)
}

func TestCompile_Rejects(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		modify func(r *Request)
		code   radon.ErrorCode
	}{
		{name: "no sources", modify: func(r *Request) { r.Sources = nil }, code: radon.TooManySources},
		{name: "too many sources", modify: func(r *Request) {
			for range MaxSources {
				r.Sources = append(r.Sources, &Source{Kind: "rng"})
			}
		}, code: radon.TooManySources},
		{name: "paranoia above 100", modify: func(r *Request) { r.Paranoia = 101 }, code: radon.WrongArguments},
		{name: "negative paranoia", modify: func(r *Request) { r.Paranoia = -1 }, code: radon.WrongArguments},
		{name: "negative timeout", modify: func(r *Request) { r.Timeout = -time.Second }, code: radon.WrongArguments},
		{name: "bad proxy", modify: func(r *Request) { r.Proxies = []string{"ftp://proxy:21"} }, code: radon.WrongArguments},
		{name: "unknown kind", modify: func(r *Request) { r.Sources[0].Kind = "gopher" }, code: radon.MalformedSource},
		{name: "bad url", modify: func(r *Request) { r.Sources[0].URL = "not a url" }, code: radon.MalformedSource},
		{name: "unknown operator", modify: func(r *Request) { r.Sources[0].Script = []any{"StringParseJSONMapp"} }, code: radon.UnsupportedOperator},
		{name: "unknown reducer", modify: func(r *Request) { r.Aggregate.Reducer = "Average" }, code: radon.WrongArguments},
		{name: "min consensus above 1", modify: func(r *Request) { r.Tally.MinConsensus = 1.5 }, code: radon.WrongArguments},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := priceRequest()
			tc.modify(r)

			_, err := Compile(r, operators.Default(), defaults)

			require.Error(t, err)
			assert.True(t, strings.HasPrefix(err.Error(), `request "btc-usd"`), err.Error())
			var e radon.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tc.code, e.Code, e.Message)
		})
	}
}

func TestCompile_RequestOverridesNode(t *testing.T) {
	t.Parallel()

	no := false
	r := priceRequest()
	r.AllowUnproxied = &no
	r.Timeout = 3 * time.Second
	d := defaults
	d.Proxies = []string{"http://node-proxy:3128"}

	c, err := Compile(r, operators.Default(), d)

	require.NoError(t, err)
	assert.False(t, c.Params.AllowUnproxied)
	assert.Equal(t, 3*time.Second, c.Params.Timeout)
	require.Len(t, c.Params.Proxies, 1)
	assert.Equal(t, "node-proxy:3128", c.Params.Proxies[0].Host)
}

type fakeLoader struct{}

func (f fakeLoader) Load(_ context.Context, paths ...string) ([]*Request, error) {
	var out []*Request
	for _, p := range paths {
		name := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		out = append(out, &Request{Name: name, File: p})
	}
	return out, nil
}

func TestMultiLoader(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"a.hcl", "b.yaml", "c.yml", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	yaml := fakeLoader{}
	m := NewMultiLoader(map[string]Loader{".hcl": fakeLoader{}, ".yaml": yaml, ".yml": yaml})

	t.Run("directory", func(t *testing.T) {
		t.Parallel()
		reqs, err := m.Load(context.Background(), dir)
		require.NoError(t, err)
		var names []string
		for _, r := range reqs {
			names = append(names, r.Name)
		}
		assert.Equal(t, []string{"a", "b", "c"}, names)
	})

	t.Run("single file", func(t *testing.T) {
		t.Parallel()
		reqs, err := m.Load(context.Background(), filepath.Join(dir, "b.yaml"))
		require.NoError(t, err)
		require.Len(t, reqs, 1)
	})

	t.Run("unsupported file", func(t *testing.T) {
		t.Parallel()
		_, err := m.Load(context.Background(), filepath.Join(dir, "notes.txt"))
		require.ErrorContains(t, err, "unsupported document type")
	})

	t.Run("duplicate names", func(t *testing.T) {
		t.Parallel()
		_, err := m.Load(context.Background(), filepath.Join(dir, "a.hcl"), filepath.Join(dir, "a.hcl"))
		require.ErrorContains(t, err, "defined in both")
	})

	t.Run("missing path", func(t *testing.T) {
		t.Parallel()
		_, err := m.Load(context.Background(), filepath.Join(dir, "missing"))
		require.Error(t, err)
	})
}
