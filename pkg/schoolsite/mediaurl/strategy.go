package mediaurl

import (
	"strings"

	"github.com/tendant/schoolsite/pkg/schoolsite"
)

// Result is the outcome of one strategy: either a URL was found or the
// strategy has nothing to offer and the next one should be tried.
type Result struct {
	URL   string
	Found bool
}

// Found returns a successful result.
func Found(url string) Result {
	return Result{URL: url, Found: true}
}

// NotAvailable is returned when a strategy cannot produce a URL.
var NotAvailable = Result{}

// Strategy produces a URL for a stored key.
type Strategy interface {
	// Name identifies the strategy in logs and tests
	Name() string

	// Resolve returns Found or NotAvailable; it must not panic
	Resolve(key string) Result
}

// Native asks the record's storage backend for its own URL.
type Native struct {
	Store schoolsite.BlobStore
}

func (n Native) Name() string { return "native" }

func (n Native) Resolve(key string) (res Result) {
	if n.Store == nil {
		return NotAvailable
	}
	defer func() {
		if recover() != nil {
			res = NotAvailable
		}
	}()
	url, err := n.Store.URL(key)
	if err != nil || url == "" {
		return NotAvailable
	}
	return Found(url)
}

// CustomDomain serves keys from an operator-configured public hostname.
type CustomDomain struct {
	Domain string
}

func (c CustomDomain) Name() string { return "custom-domain" }

func (c CustomDomain) Resolve(key string) Result {
	domain := trimDomain(c.Domain)
	if domain == "" {
		return NotAvailable
	}
	return Found("https://" + domain + "/" + strings.TrimLeft(key, "/"))
}

// MediaBase joins the key to the base media path. A relative base yields a
// relative URL; no scheme or host is added.
type MediaBase struct {
	Base string
}

func (m MediaBase) Name() string { return "media-base" }

func (m MediaBase) Resolve(key string) Result {
	base := m.Base
	if base == "" {
		base = DefaultMediaBase
	}
	return Found(strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/"))
}

// trimDomain drops any scheme and surrounding slashes from a configured domain.
func trimDomain(domain string) string {
	domain = strings.TrimSpace(domain)
	if i := strings.Index(domain, "://"); i >= 0 {
		domain = domain[i+3:]
	}
	return strings.Trim(domain, "/")
}
