package witness

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/specialistvlad/radgo/internal/operators"
	"github.com/specialistvlad/radgo/internal/radon"
	"github.com/specialistvlad/radgo/internal/request"
	"github.com/specialistvlad/radgo/internal/retrieval"
	"github.com/specialistvlad/radgo/internal/script"
	"github.com/specialistvlad/radgo/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func priceServer(t *testing.T, price string, status int) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"price": %s}`, price)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func compile(t *testing.T, urls ...string) *request.Compiled {
	t.Helper()
	r := &request.Request{
		Name:      "price",
		Aggregate: &request.Stage{Reducer: "AverageMean", ErrorTolerance: 0.5},
		Tally: &request.Stage{
			Filters:      []*request.Filter{{Name: "DeviationStandard", Args: []any{1.0}}},
			Reducer:      "AverageMean",
			MinConsensus: 0.5,
		},
	}
	for _, u := range urls {
		r.Sources = append(r.Sources, &request.Source{
			Kind:   "http-get",
			URL:    u,
			Script: []any{"StringParseJSONMap", []any{"MapGetFloat", "price"}},
		})
	}
	c, err := request.Compile(r, operators.Default(), request.Defaults{
		Paranoia:       51,
		AllowUnproxied: true,
		Timeout:        5 * time.Second,
		Limits:         script.DefaultLimits,
	})
	require.NoError(t, err)
	return c
}

func newPipeline(opts ...Option) *Pipeline {
	r := retrieval.New(retrieval.Transports{
		retrieval.KindHTTPGet: transport.NewHTTP(transport.HTTPConfig{}),
	})
	return New(r, opts...)
}

func TestPipeline_Run(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	req := compile(t, priceServer(t, "100.0", http.StatusOK), priceServer(t, "110.0", http.StatusOK))
	p := newPipeline()

	// --- Act ---
	out := p.Run(context.Background(), req)

	// --- Assert ---
	_, err := uuid.Parse(out.RunID)
	require.NoError(t, err)
	assert.Equal(t, "price", out.Request)
	assert.Equal(t, 2, out.Retrieval.Values.Len())
	assert.Nil(t, out.Tally)
	assert.True(t, radon.Equal(radon.NewFloat(105), out.Result()), "got %s", out.Result())
	assert.Equal(t, -1, out.Aggregation.FailedCall)
}

func TestPipeline_Run_ToleratesFailedSource(t *testing.T) {
	t.Parallel()

	req := compile(t, priceServer(t, "100.0", http.StatusOK), priceServer(t, "0", http.StatusInternalServerError))

	out := newPipeline().Run(context.Background(), req)

	second := out.Retrieval.Values.At(1)
	e, ok := radon.AsError(second)
	require.True(t, ok, "got %s", second)
	assert.Equal(t, radon.HTTPStatus, e.Code)
	assert.True(t, radon.Equal(radon.NewFloat(100), out.Result()), "got %s", out.Result())
}

func TestPipeline_Run_TooManyFailures(t *testing.T) {
	t.Parallel()

	bad := priceServer(t, "0", http.StatusBadGateway)
	req := compile(t, priceServer(t, "100.0", http.StatusOK), bad, bad)

	out := newPipeline().Run(context.Background(), req)

	e, ok := radon.AsError(out.Result())
	require.True(t, ok, "got %s", out.Result())
	assert.Equal(t, radon.SourcesDisagree, e.Code)
	assert.Equal(t, 0, out.Aggregation.FailedCall)
}

func TestPipeline_Try_WithInputs(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	req := compile(t, "https://unreachable.invalid/a", "https://unreachable.invalid/b")
	inputs := map[int]radon.Value{
		0: radon.String(`{"price": 7}`),
		1: radon.String(`{"price": 9}`),
	}

	// --- Act ---
	out := newPipeline().Try(context.Background(), req, WithInputs(inputs), WithPartial())

	// --- Assert ---
	require.NotNil(t, out.Tally)
	assert.True(t, radon.Equal(radon.NewFloat(8), out.Result()), "got %s", out.Result())
	assert.InDelta(t, 1.0, out.Tally.Tally.Consensus, 0)
	assert.True(t, out.Retrieval.Sources[0].Injected)
	require.NotNil(t, out.Aggregation.Partial)
	assert.Len(t, out.Aggregation.Partial, 2, "input plus one ArrayReduce call")
}

func TestPipeline_TallyReveals(t *testing.T) {
	t.Parallel()

	req := compile(t, "https://example.com")
	reveals := radon.NewArray(
		radon.NewFloat(100), radon.NewFloat(101), radon.NewFloat(99),
		radon.NewFloat(100), radon.NewFloat(500),
	)

	report := newPipeline().TallyReveals(context.Background(), req, reveals)

	require.False(t, report.Failed(), "got %s", report.Result)
	assert.True(t, radon.Equal(radon.NewFloat(100), report.Result), "got %s", report.Result)
	assert.Equal(t, []bool{false, false, false, false, true}, report.Tally.Liars)
	assert.InDelta(t, 0.8, report.Tally.Consensus, 1e-9)
}

func TestPipeline_TallyReveals_NoReveals(t *testing.T) {
	t.Parallel()

	report := newPipeline().TallyReveals(context.Background(), compile(t, "https://example.com"), radon.NewArray())

	e, ok := radon.AsError(report.Result)
	require.True(t, ok)
	assert.Equal(t, radon.NoReveals, e.Code)
}

func TestPipeline_Metrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	req := compile(t, priceServer(t, "1.5", http.StatusOK))

	newPipeline(WithMetrics(m)).Try(context.Background(), req)

	assert.InDelta(t, 1, testutil.ToFloat64(m.runs.WithLabelValues(StageRetrieval, "ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.runs.WithLabelValues(StageAggregation, "ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.runs.WithLabelValues(StageTally, "ok")), 0)
	assert.Equal(t, 3, testutil.CollectAndCount(m.duration))
}
