// Package parser rewrites request URLs against caller supplied base URLs.
//
// A request URL is split into a replaceable base (scheme, host and the first N
// path segments) and a preserved tail. The base is swapped for a replacement
// URL, the tail is appended to it unchanged. Three modes choose N:
//
//   - super: N comes from a "#baseurl_path_size=N" token in the fragment
//   - advanced: N is the path size of a configured base URL
//   - domain: N is zero, only scheme and host are replaced
//
// Super mode wins whenever its token parses. Every anomaly (missing or
// malformed token, missing replacement, oversized N) leaves the URL as it was.
//
// For example, with the replacement base https://www.google.com/api:
//
//	https://www.github.com/wiki/part#baseurl_path_size=1         -> https://www.google.com/api/part
//	https://www.github.com/wiki/part#baseurl_path_size=0         -> https://www.google.com/api/wiki/part
//	https://www.github.com/wiki/part/issues/1#baseurl_path_size=3 -> https://www.google.com/api/1
package parser

import (
	"strings"
	"sync/atomic"

	"github.com/genaku/urlmanager/cache"
)

// Resolver returns the replacement base registered for a domain key.
type Resolver func(key string) (URL, bool)

// Mode identifies which rewrite rule produced a result.
type Mode int

const (
	// ModeNone means the URL was returned unchanged.
	ModeNone Mode = iota
	ModeDomain
	ModeAdvanced
	ModeSuper
)

func (m Mode) String() string {
	switch m {
	case ModeDomain:
		return "domain"
	case ModeAdvanced:
		return "advanced"
	case ModeSuper:
		return "super"
	default:
		return "none"
	}
}

// SchemePolicy selects the scheme of a rewritten URL.
type SchemePolicy int

const (
	// SchemeFromReplacement takes the replacement base's scheme.
	SchemeFromReplacement SchemePolicy = iota
	// SchemeFromOriginal keeps the request's own scheme.
	SchemeFromOriginal
)

func (p SchemePolicy) String() string {
	if p == SchemeFromOriginal {
		return "original"
	}
	return "replacement"
}

// CacheKey identifies a rewritten prefix. Requests sharing a key share the
// rewritten base and differ only in their tails.
type CacheKey struct {
	Base   string
	Scheme string
	Host   string
	Prefix string
}

// Stats counts prefix cache lookups. Misses equals the number of prefixes
// built from scratch.
type Stats struct {
	Hits   uint64
	Misses uint64
}

// Option configures a Parser.
type Option func(*Parser)

// WithSchemePolicy sets how the output scheme is chosen.
func WithSchemePolicy(policy SchemePolicy) Option {
	return func(p *Parser) {
		p.scheme = policy
	}
}

// Parser applies the rewrite modes. It is safe for concurrent use; the cache
// is the only shared mutable state besides the counters.
//
// Userinfo of the request URL is carried over to the replacement host, so
// credentials in a request URL are sent wherever the replacement points.
// Userinfo of the replacement base is never used.
type Parser struct {
	cache    cache.Cache[CacheKey, URL]
	scheme   SchemePolicy
	advanced atomic.Int64
	hits     atomic.Uint64
	misses   atomic.Uint64
}

// New creates a Parser memoizing prefixes in c.
func New(c cache.Cache[CacheKey, URL], opts ...Option) *Parser {
	p := &Parser{cache: c}
	p.advanced.Store(-1)
	for _, fn := range opts {
		fn(p)
	}
	return p
}

// SetAdvancedPathSize turns advanced mode on with path size n. A negative n
// turns it off.
func (p *Parser) SetAdvancedPathSize(n int) {
	if n < 0 {
		n = -1
	}
	p.advanced.Store(int64(n))
}

// AdvancedPathSize returns the advanced mode path size, if enabled.
func (p *Parser) AdvancedPathSize() (int, bool) {
	n := p.advanced.Load()
	return int(n), n >= 0
}

func (p *Parser) SchemePolicy() SchemePolicy {
	return p.scheme
}

func (p *Parser) Stats() Stats {
	return Stats{Hits: p.hits.Load(), Misses: p.misses.Load()}
}

// RewriteSuper rewrites original when it carries a path size token and a
// replacement is registered for its host. Otherwise original is returned.
func (p *Parser) RewriteSuper(original URL, resolve Resolver) URL {
	n, fragment, ok := ExtractPathSize(original.fragment)
	if !ok {
		return original
	}
	out, ok := p.splice(original.WithFragment(fragment), n, resolve)
	if !ok {
		return original
	}
	return out
}

// Rewrite applies the highest priority mode. See Apply.
func (p *Parser) Rewrite(original URL, resolve Resolver) URL {
	out, _ := p.Apply(original, resolve)
	return out
}

// Apply picks a mode for original and rewrites it. Super mode wins when the
// path size token parses, advanced mode applies when enabled, domain mode
// otherwise. ModeNone is returned together with original when no
// replacement is resolved.
func (p *Parser) Apply(original URL, resolve Resolver) (URL, Mode) {
	if n, fragment, ok := ExtractPathSize(original.fragment); ok {
		if out, ok := p.splice(original.WithFragment(fragment), n, resolve); ok {
			return out, ModeSuper
		}
		return original, ModeNone
	}
	if n, ok := p.AdvancedPathSize(); ok {
		if out, ok := p.splice(original, n, resolve); ok {
			return out, ModeAdvanced
		}
		return original, ModeNone
	}
	if out, ok := p.splice(original, 0, resolve); ok {
		return out, ModeDomain
	}
	return original, ModeNone
}

// splice replaces the first n segments of u, together with its scheme and
// host, by the replacement resolved for u's host. n is clamped to u's path
// size. u must already be free of the path size token.
func (p *Parser) splice(u URL, n int, resolve Resolver) (URL, bool) {
	if resolve == nil {
		return URL{}, false
	}
	n = min(n, len(u.segments))
	head, tail := u.segments[:n], u.segments[n:]

	base, ok := resolve(u.host)
	if !ok || base.IsZero() {
		return URL{}, false
	}

	key := CacheKey{
		Base:   base.String(),
		Scheme: u.scheme,
		Host:   u.host,
		Prefix: strings.Join(head, "/"),
	}
	prefix, hit := p.lookup(key)
	if hit {
		p.hits.Add(1)
	} else {
		p.misses.Add(1)
		prefix = p.buildPrefix(base, u)
		p.store(key, prefix)
	}

	segments := make([]string, 0, len(prefix.segments)+len(tail))
	segments = append(segments, prefix.segments...)
	segments = append(segments, tail...)
	out := prefix
	out.user = u.user
	out.segments = segments
	out.rawQuery = u.rawQuery
	out.fragment = u.fragment
	return out, true
}

func (p *Parser) buildPrefix(base, u URL) URL {
	scheme := base.scheme
	if p.scheme == SchemeFromOriginal {
		scheme = u.scheme
	}
	return URL{
		scheme:   scheme,
		host:     base.host,
		segments: base.Segments()[:len(base.baseSegments())],
	}
}

func (p *Parser) lookup(key CacheKey) (URL, bool) {
	if p.cache == nil {
		return URL{}, false
	}
	return p.cache.Get(key)
}

func (p *Parser) store(key CacheKey, prefix URL) {
	if p.cache != nil {
		p.cache.Put(key, prefix)
	}
}
