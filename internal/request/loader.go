package request

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/specialistvlad/radgo/internal/ctxlog"
	"github.com/specialistvlad/radgo/internal/fsutil"
)

// Loader reads request documents of one format.
type Loader interface {
	// Load reads the given files and translates them into requests.
	Load(ctx context.Context, paths ...string) ([]*Request, error)
}

// MultiLoader dispatches files to a Loader chosen by extension. Directories
// are searched recursively for every registered extension.
type MultiLoader struct {
	byExt map[string]Loader
}

// NewMultiLoader creates a loader from an extension table such as
// {".hcl": hclLoader, ".yaml": yamlLoader}.
func NewMultiLoader(byExt map[string]Loader) *MultiLoader {
	return &MultiLoader{byExt: byExt}
}

// Extensions lists the registered extensions in order.
func (m *MultiLoader) Extensions() []string {
	exts := make([]string, 0, len(m.byExt))
	for ext := range m.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Load implements Loader. Request names must be unique across all files.
func (m *MultiLoader) Load(ctx context.Context, paths ...string) ([]*Request, error) {
	logger := ctxlog.FromContext(ctx)

	groups := make(map[string][]string)
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		if !info.IsDir() {
			ext := strings.ToLower(filepath.Ext(p))
			if _, ok := m.byExt[ext]; !ok {
				return nil, fmt.Errorf("%s: unsupported document type %q", p, ext)
			}
			groups[ext] = append(groups[ext], p)
			continue
		}
		files, err := fsutil.FindFilesByExtension(p, m.Extensions()...)
		if err != nil {
			return nil, fmt.Errorf("searching %s: %w", p, err)
		}
		for _, f := range files {
			ext := strings.ToLower(filepath.Ext(f))
			groups[ext] = append(groups[ext], f)
		}
	}

	var out []*Request
	seen := make(map[string]string)
	for _, ext := range m.Extensions() {
		files := groups[ext]
		if len(files) == 0 {
			continue
		}
		logger.Debug("Loading request documents.", "extension", ext, "files", len(files))
		reqs, err := m.byExt[ext].Load(ctx, files...)
		if err != nil {
			return nil, err
		}
		for _, r := range reqs {
			if prev, dup := seen[r.Name]; dup {
				return nil, fmt.Errorf("request %q is defined in both %s and %s", r.Name, prev, r.File)
			}
			seen[r.Name] = r.File
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no requests found in %s", strings.Join(paths, ", "))
	}
	return out, nil
}
