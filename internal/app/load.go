package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/radgo/internal/ctxlog"
	"github.com/specialistvlad/radgo/internal/request"
)

// Load reads request documents from paths and compiles every request
// against the node settings.
func (a *App) Load(ctx context.Context, paths ...string) ([]*request.Compiled, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading requests...", "paths", paths)

	reqs, err := a.loader.Load(ctx, paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load requests: %w", err)
	}

	defaults := a.settings.RequestDefaults()
	compiled := make([]*request.Compiled, 0, len(reqs))
	for _, r := range reqs {
		c, err := request.Compile(r, a.catalog, defaults)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r.File, err)
		}
		compiled = append(compiled, c)
	}
	logger.Info("Requests loaded successfully.", "requests", len(compiled))
	return compiled, nil
}

// LoadOne loads the request called name from paths.
func (a *App) LoadOne(ctx context.Context, name string, paths ...string) (*request.Compiled, error) {
	reqs, err := a.Load(ctx, paths...)
	if err != nil {
		return nil, err
	}
	return requireRequest(reqs, name)
}
