package urlqueue

import (
	"crypto/md5"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"site_crawler/internal/models"
)

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

var errNotAbsolute = errors.New("url has no scheme or host")

// NormalizeURL resolves raw against base (when base is not empty) and strips
// the fragment. Scheme and host are lowercased, a default port is dropped and
// an empty path becomes "/", so the result is stable under repeated calls.
func NormalizeURL(raw, base string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", models.NewStageError(models.SkipInvalidURL, raw, err)
	}

	// An absolute ref resolved against itself only has its dot segments removed.
	baseURL := ref
	if base != "" {
		baseURL, err = url.Parse(base)
		if err != nil {
			return "", models.NewStageError(models.SkipInvalidURL, base, err)
		}
	}
	ref = baseURL.ResolveReference(ref)

	if ref.Scheme == "" || ref.Host == "" {
		return "", models.NewStageError(models.SkipInvalidURL, raw, errNotAbsolute)
	}

	ref.Scheme = strings.ToLower(ref.Scheme)
	ref.Host = canonicalHost(ref)
	ref.Fragment = ""
	ref.RawFragment = ""
	if ref.Path == "" && ref.RawPath == "" {
		ref.Path = "/"
	}

	return ref.String(), nil
}

// NormalizeRoot normalizes a crawl root. Only http and https roots are accepted.
func NormalizeRoot(raw string) (string, error) {
	normalized, err := NormalizeURL(raw, "")
	if err != nil {
		return "", err
	}
	u, err := url.Parse(normalized)
	if err != nil {
		return "", models.NewStageError(models.SkipInvalidURL, raw, err)
	}
	if _, ok := defaultPorts[u.Scheme]; !ok {
		return "", models.NewStageError(models.SkipInvalidURL, raw,
			fmt.Errorf("unsupported scheme %q", u.Scheme))
	}
	return normalized, nil
}

func canonicalHost(u *url.URL) string {
	host := strings.ToLower(u.Hostname())
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	port := u.Port()
	if port == "" || defaultPorts[strings.ToLower(u.Scheme)] == port {
		return host
	}
	return host + ":" + port
}

// Frontier holds URLs waiting to be visited. It is a stack: the URL pushed
// last is popped first, which makes the crawl depth-first.
type Frontier struct {
	urls []string
}

func NewFrontier(seed ...string) *Frontier {
	f := &Frontier{urls: make([]string, 0, len(seed))}
	f.Push(seed...)
	return f
}

// Push appends urls in the given order.
func (f *Frontier) Push(urls ...string) {
	f.urls = append(f.urls, urls...)
}

func (f *Frontier) Pop() (string, bool) {
	if len(f.urls) == 0 {
		return "", false
	}
	last := len(f.urls) - 1
	u := f.urls[last]
	f.urls[last] = ""
	f.urls = f.urls[:last]
	return u, true
}

func (f *Frontier) Len() int {
	return len(f.urls)
}

// VisitedSet records every URL popped from the frontier, accepted or not.
type VisitedSet struct {
	urls map[string]struct{}
}

func NewVisitedSet() *VisitedSet {
	return &VisitedSet{urls: make(map[string]struct{})}
}

func (v *VisitedSet) Add(u string) {
	v.urls[u] = struct{}{}
}

func (v *VisitedSet) Has(u string) bool {
	_, ok := v.urls[u]
	return ok
}

func (v *VisitedSet) Len() int {
	return len(v.urls)
}

func ComputeContentHash(content string) string {
	hash := md5.Sum([]byte(content))
	return fmt.Sprintf("%x", hash)
}
