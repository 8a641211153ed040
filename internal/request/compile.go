package request

import (
	"fmt"
	"net/url"
	"time"

	"github.com/specialistvlad/radgo/internal/radon"
	"github.com/specialistvlad/radgo/internal/retrieval"
	"github.com/specialistvlad/radgo/internal/script"
)

// MaxSources is the largest number of sources a request may have.
const MaxSources = 255

// Defaults are the node-level settings a request falls back to.
type Defaults struct {
	Paranoia       int
	Proxies        []string
	AllowUnproxied bool
	Timeout        time.Duration
	Limits         script.Limits
}

// Compiled is a request ready to run.
type Compiled struct {
	Name         string
	Sources      []retrieval.Source
	Params       retrieval.Params
	Aggregate    *script.Script
	Tally        *script.Script
	MinConsensus float64
}

// Compile validates r and builds its scripts. Errors that describe a broken
// request are radon.Error values wrapped with the request name.
func Compile(r *Request, cat script.Catalog, d Defaults) (*Compiled, error) {
	c, err := compile(r, cat, d)
	if err != nil {
		return nil, fmt.Errorf("request %q: %w", r.Name, err)
	}
	return c, nil
}

func compile(r *Request, cat script.Catalog, d Defaults) (*Compiled, error) {
	if len(r.Sources) == 0 {
		return nil, radon.NewError(radon.TooManySources, "a request needs at least one source")
	}
	if len(r.Sources) > MaxSources {
		return nil, radon.NewError(radon.TooManySources, "%d sources, at most %d allowed", len(r.Sources), MaxSources)
	}

	params, err := resolveParams(r, d)
	if err != nil {
		return nil, err
	}
	c := &Compiled{Name: r.Name, Params: params}

	for i, src := range r.Sources {
		kind := retrieval.Kind(src.Kind)
		if !kind.Valid() {
			return nil, radon.NewError(radon.MalformedSource, "source %d: unknown kind %q", i, src.Kind)
		}
		if kind != retrieval.KindRNG {
			if u, err := url.Parse(src.URL); err != nil || u.Scheme == "" || u.Host == "" {
				return nil, radon.NewError(radon.MalformedSource, "source %d: invalid URL %q", i, src.URL)
			}
		}
		s, err := script.FromSlice(src.Script, cat, d.Limits)
		if err != nil {
			return nil, fmt.Errorf("source %d script: %w", i, err)
		}
		c.Sources = append(c.Sources, retrieval.Source{
			Kind:    kind,
			URL:     src.URL,
			Body:    src.Body,
			Headers: src.Headers,
			Script:  s,
		})
	}

	if c.Aggregate, err = script.FromSlice(r.Aggregate.Calls(), cat, d.Limits); err != nil {
		return nil, fmt.Errorf("aggregate script: %w", err)
	}
	if c.Tally, err = script.FromSlice(r.Tally.Calls(), cat, d.Limits); err != nil {
		return nil, fmt.Errorf("tally script: %w", err)
	}
	if r.Tally != nil {
		c.MinConsensus = r.Tally.MinConsensus
	}
	if c.MinConsensus < 0 || c.MinConsensus > 1 {
		return nil, radon.NewError(radon.WrongArguments, "min_consensus %v is outside [0, 1]", c.MinConsensus)
	}
	return c, nil
}

// resolveParams merges request-level retrieval settings over the node's.
func resolveParams(r *Request, d Defaults) (retrieval.Params, error) {
	p := retrieval.Params{
		Paranoia:       d.Paranoia,
		AllowUnproxied: d.AllowUnproxied,
		Timeout:        d.Timeout,
	}
	if r.Paranoia != 0 {
		p.Paranoia = r.Paranoia
	}
	if p.Paranoia < 1 || p.Paranoia > 100 {
		return p, radon.NewError(radon.WrongArguments, "paranoia %d is outside 1..100", p.Paranoia)
	}
	if r.Timeout < 0 {
		return p, radon.NewError(radon.WrongArguments, "negative timeout %s", r.Timeout)
	}
	if r.Timeout > 0 {
		p.Timeout = r.Timeout
	}
	if r.AllowUnproxied != nil {
		p.AllowUnproxied = *r.AllowUnproxied
	}

	proxies := d.Proxies
	if len(r.Proxies) > 0 {
		proxies = r.Proxies
	}
	for _, raw := range proxies {
		u, err := ParseProxy(raw)
		if err != nil {
			return p, err
		}
		p.Proxies = append(p.Proxies, u)
	}
	return p, nil
}

// ParseProxy checks a proxy URL. Supported schemes are http, https and
// socks5.
func ParseProxy(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, radon.NewError(radon.WrongArguments, "invalid proxy %q", raw)
	}
	switch u.Scheme {
	case "http", "https", "socks5":
		return u, nil
	}
	return nil, radon.NewError(radon.WrongArguments, "unsupported proxy scheme %q", u.Scheme)
}
