package mediaurl

import (
	"github.com/tendant/schoolsite/pkg/schoolsite"
)

// DefaultMediaBase is used when no base media path is configured.
const DefaultMediaBase = "/media/"

// Config holds the process-wide settings the resolver needs.
type Config struct {
	Store        schoolsite.BlobStore // backend that owns stored keys; may be nil
	CustomDomain string               // public hostname serving the bucket
	MediaBase    string               // e.g. "/media/" or "https://example.com/media/"
}

// Resolver walks an ordered chain of strategies and returns the first URL found.
type Resolver struct {
	chain []Strategy
}

var _ schoolsite.URLResolver = (*Resolver)(nil)

// New builds the standard chain: native, custom-domain, media-base.
func New(cfg Config) *Resolver {
	return NewChain(
		Native{Store: cfg.Store},
		CustomDomain{Domain: cfg.CustomDomain},
		MediaBase{Base: cfg.MediaBase},
	)
}

// NewChain builds a resolver from an explicit strategy order.
func NewChain(strategies ...Strategy) *Resolver {
	return &Resolver{chain: append([]Strategy(nil), strategies...)}
}

// Strategies returns the names of the chain in evaluation order.
func (r *Resolver) Strategies() []string {
	names := make([]string, len(r.chain))
	for i, s := range r.chain {
		names[i] = s.Name()
	}
	return names
}

// Resolve returns the URL for a record's media field. Unknown fields and
// empty stored values yield "".
func (r *Resolver) Resolve(rec schoolsite.Record, field string) string {
	if rec == nil {
		return ""
	}
	ref := rec.MediaRef(field)
	if ref == nil {
		return ""
	}
	return r.ResolveKey(*ref)
}

// ResolveKey returns the URL for a stored key.
func (r *Resolver) ResolveKey(key string) string {
	url, _ := r.ResolveWith(key)
	return url
}

// ResolveWith is ResolveKey that also reports which strategy answered.
func (r *Resolver) ResolveWith(key string) (url string, strategy string) {
	if key == "" {
		return "", ""
	}
	for _, s := range r.chain {
		if res := s.Resolve(key); res.Found {
			return res.URL, s.Name()
		}
	}
	return "", ""
}
