package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/radgo/internal/ctxlog"
	"github.com/specialistvlad/radgo/internal/request"
)

// Loader is the HCL implementation of request.Loader.
type Loader struct {
	// env is nil until WithEnv is used; Load then reads the process
	// environment.
	env map[string]string
}

// NewLoader creates a new HCL request loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var _ request.Loader = (*Loader)(nil)

// Load parses every file and translates all `request` blocks it finds.
func (l *Loader) Load(ctx context.Context, paths ...string) ([]*request.Request, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	env := l.env
	if env == nil {
		env = environ()
	}
	evalCtx := evalContext(env)

	parser := hclparse.NewParser()
	var out []*request.Request
	for _, file := range paths {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, evalCtx, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, block := range root.Requests {
			r, err := translateRequest(block, evalCtx)
			if err != nil {
				return nil, fmt.Errorf("%s: request %q: %w", file, block.Name, err)
			}
			r.File = file
			out = append(out, r)
		}
	}

	logger.Debug("HCL loading complete.", "requests", len(out))
	return out, nil
}
