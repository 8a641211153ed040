package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/specialistvlad/radgo/internal/ctxlog"
	"github.com/specialistvlad/radgo/internal/hcl"
	"github.com/specialistvlad/radgo/internal/operators"
	"github.com/specialistvlad/radgo/internal/reportstore"
	"github.com/specialistvlad/radgo/internal/request"
	"github.com/specialistvlad/radgo/internal/retrieval"
	"github.com/specialistvlad/radgo/internal/settings"
	"github.com/specialistvlad/radgo/internal/witness"
	"github.com/specialistvlad/radgo/internal/yamlreq"
)

// App encapsulates the node's dependencies, configuration, and lifecycle.
type App struct {
	config   *Config
	logger   *slog.Logger
	settings *settings.Settings
	catalog  *operators.Registry
	loader   request.Loader
	registry *prometheus.Registry
	pipeline *witness.Pipeline
	store    reportstore.Store
	close    func()
}

// NewApp builds a fully wired App with its own logger and metrics registry.
func NewApp(outW io.Writer, cfg *Config) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	s, err := settings.Load(cfg.SettingsPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("Node settings loaded.", "paranoia", s.Paranoia, "proxies", len(s.Proxies), "timeout", s.Timeout)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	transports, closeTransports, err := newTransports(s)
	if err != nil {
		return nil, err
	}
	retriever := retrieval.New(transports,
		retrieval.WithMaxInFlight(int64(s.MaxInFlight)),
		retrieval.WithRateLimit(s.RateLimit, s.RateBurst),
		retrieval.WithMetrics(retrieval.NewMetrics(reg)),
	)

	catalog := operators.Default()
	yamlLoader := yamlreq.NewLoader()
	a := &App{
		config:   cfg,
		logger:   logger,
		settings: s,
		catalog:  catalog,
		loader: request.NewMultiLoader(map[string]request.Loader{
			".hcl":  hcl.NewLoader(),
			".yaml": yamlLoader,
			".yml":  yamlLoader,
		}),
		registry: reg,
		pipeline: witness.New(retriever, witness.WithCatalog(catalog), witness.WithMetrics(witness.NewMetrics(reg))),
		store:    reportstore.New(),
		close:    closeTransports,
	}
	logger.Debug("App wired.", "operators", len(catalog.Names()), "source_kinds", len(transports))
	return a, nil
}

// Context returns ctx carrying the app's logger.
func (a *App) Context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

// Settings returns the node settings in use.
func (a *App) Settings() *settings.Settings {
	return a.settings
}

// Pipeline returns the witness pipeline.
func (a *App) Pipeline() *witness.Pipeline {
	return a.pipeline
}

// Store returns the outcome store used in serve mode.
func (a *App) Store() reportstore.Store {
	return a.store
}

// Close releases idle transport connections.
func (a *App) Close() {
	if a.close != nil {
		a.close()
	}
}

// requireRequest finds a compiled request by name.
func requireRequest(reqs []*request.Compiled, name string) (*request.Compiled, error) {
	for _, r := range reqs {
		if r.Name == name {
			return r, nil
		}
	}
	names := make([]string, len(reqs))
	for i, r := range reqs {
		names[i] = r.Name
	}
	return nil, fmt.Errorf("request %q not found (available: %v)", name, names)
}
