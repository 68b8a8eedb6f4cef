package parser

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// ErrInvalidURL is returned for URLs that cannot serve as a request or base URL.
var ErrInvalidURL = errors.New("invalid url")

// URL is an immutable absolute URL split into the parts the rewriters work on.
// Path segments are kept in their escaped form.
type URL struct {
	scheme   string
	user     *url.Userinfo
	host     string
	segments []string
	rawQuery string
	fragment string
}

// Parse parses raw, which must carry a scheme and a host.
func Parse(raw string) (URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return URL{}, fmt.Errorf("%w %q: %v", ErrInvalidURL, raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return URL{}, fmt.Errorf("%w %q: scheme and host are required", ErrInvalidURL, raw)
	}
	return FromStd(u), nil
}

// FromStd copies u into a URL value.
func FromStd(u *url.URL) URL {
	if u == nil {
		return URL{}
	}
	return URL{
		scheme:   u.Scheme,
		user:     u.User,
		host:     u.Host,
		segments: splitPath(u.EscapedPath()),
		rawQuery: u.RawQuery,
		fragment: u.Fragment,
	}
}

func splitPath(p string) []string {
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func (u URL) Scheme() string   { return u.scheme }
func (u URL) Host() string     { return u.host }
func (u URL) RawQuery() string { return u.rawQuery }
func (u URL) Fragment() string { return u.fragment }

// Segments returns a copy of the escaped path segments.
func (u URL) Segments() []string {
	return slices.Clone(u.segments)
}

// PathSize is the number of path segments.
func (u URL) PathSize() int {
	return len(u.segments)
}

// Query parses the raw query. Malformed pairs are dropped.
func (u URL) Query() url.Values {
	v, _ := url.ParseQuery(u.rawQuery)
	return v
}

// EscapedPath renders the segments as a path, empty when there are none.
func (u URL) EscapedPath() string {
	if len(u.segments) == 0 {
		return ""
	}
	return "/" + strings.Join(u.segments, "/")
}

func (u URL) WithScheme(scheme string) URL {
	u.scheme = scheme
	return u
}

func (u URL) WithHost(host string) URL {
	u.host = host
	return u
}

func (u URL) WithSegments(segments []string) URL {
	u.segments = slices.Clone(segments)
	return u
}

func (u URL) WithRawQuery(rawQuery string) URL {
	u.rawQuery = rawQuery
	return u
}

func (u URL) WithFragment(fragment string) URL {
	u.fragment = fragment
	return u
}

// baseSegments are the segments used when u is a replacement base: a
// trailing slash does not count as a segment.
func (u URL) baseSegments() []string {
	n := len(u.segments)
	if n > 0 && u.segments[n-1] == "" {
		return u.segments[:n-1]
	}
	return u.segments
}

// BasePathSize is the number of segments u contributes as a replacement base.
func (u URL) BasePathSize() int {
	return len(u.baseSegments())
}

// Std converts u to a *url.URL. The result is a fresh value.
func (u URL) Std() *url.URL {
	rawPath := u.EscapedPath()
	path, err := url.PathUnescape(rawPath)
	if err != nil {
		path = rawPath
	}
	return &url.URL{
		Scheme:   u.scheme,
		User:     u.user,
		Host:     u.host,
		Path:     path,
		RawPath:  rawPath,
		RawQuery: u.rawQuery,
		Fragment: u.fragment,
	}
}

func (u URL) String() string {
	return u.Std().String()
}

// Equal reports whether both values render to the same URL.
func (u URL) Equal(o URL) bool {
	return u.String() == o.String()
}

// IsZero reports whether u was never set.
func (u URL) IsZero() bool {
	return u.scheme == "" && u.host == "" && len(u.segments) == 0
}
