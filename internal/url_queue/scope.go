package urlqueue

import (
	"fmt"
	"net/url"
	"strings"

	"site_crawler/internal/models"
)

type ScopeMode string

const (
	// ScopeStrict compares scheme, host and port of the candidate with the root.
	ScopeStrict ScopeMode = "strict"
	// ScopePrefix keeps the legacy textual test: the candidate only has to
	// start with the root origin string. https://example.com.evil.test/ passes
	// for origin https://example.com in this mode.
	ScopePrefix ScopeMode = "prefix"
)

func ParseScopeMode(s string) (ScopeMode, error) {
	switch ScopeMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ScopeStrict:
		return ScopeStrict, nil
	case ScopePrefix:
		return ScopePrefix, nil
	default:
		return "", fmt.Errorf("unknown scope mode %q", s)
	}
}

// Scope decides whether a URL belongs to the origin of a crawl root.
type Scope struct {
	mode   ScopeMode
	origin string
	scheme string
	host   string
	port   string
}

func NewScope(root string, mode ScopeMode) (*Scope, error) {
	u, err := url.Parse(root)
	if err != nil {
		return nil, models.NewStageError(models.SkipInvalidURL, root, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, models.NewStageError(models.SkipInvalidURL, root, errNotAbsolute)
	}
	if mode == "" {
		mode = ScopeStrict
	}
	return &Scope{
		mode:   mode,
		origin: Origin(u),
		scheme: strings.ToLower(u.Scheme),
		host:   strings.ToLower(u.Hostname()),
		port:   effectivePort(u),
	}, nil
}

// Origin returns scheme://host[:port] of u, without a default port.
func Origin(u *url.URL) string {
	return strings.ToLower(u.Scheme) + "://" + canonicalHost(u)
}

func (s *Scope) Origin() string {
	return s.origin
}

func (s *Scope) Mode() ScopeMode {
	return s.mode
}

// InScope reports whether candidate, a normalized absolute URL, is crawlable.
func (s *Scope) InScope(candidate string) bool {
	if s.mode == ScopePrefix {
		return strings.HasPrefix(candidate, s.origin)
	}

	u, err := url.Parse(candidate)
	if err != nil {
		return false
	}
	return strings.ToLower(u.Scheme) == s.scheme &&
		strings.ToLower(u.Hostname()) == s.host &&
		effectivePort(u) == s.port
}

func effectivePort(u *url.URL) string {
	if p := u.Port(); p != "" {
		return p
	}
	return defaultPorts[strings.ToLower(u.Scheme)]
}
