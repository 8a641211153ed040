package hcl

import (
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Option configures a Loader.
type Option func(*Loader)

// WithEnv replaces the process environment exposed to documents as `env`.
func WithEnv(env map[string]string) Option {
	return func(l *Loader) { l.env = env }
}

func environ() map[string]string {
	env := make(map[string]string)
	for _, e := range os.Environ() {
		if k, v, ok := strings.Cut(e, "="); ok {
			env[k] = v
		}
	}
	return env
}

// evalContext exposes environment variables as `env.NAME`, so secrets such
// as API keys stay out of request documents. Referencing an unset variable
// is a decode error.
func evalContext(env map[string]string) *hcl.EvalContext {
	vals := make(map[string]cty.Value, len(env))
	for k, v := range env {
		vals[k] = cty.StringVal(v)
	}
	obj := cty.EmptyObjectVal
	if len(vals) > 0 {
		obj = cty.ObjectVal(vals)
	}
	return &hcl.EvalContext{Variables: map[string]cty.Value{"env": obj}}
}
