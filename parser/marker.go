package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// PathSizeKey names the fragment token carrying the base path size.
	PathSizeKey = "baseurl_path_size"
	// PathSizeIdentifier is appended to a URL to opt it into per-request
	// base replacement, followed by the path size.
	PathSizeIdentifier = "#" + PathSizeKey + "="

	// IgnoreKey is the fragment token that turns rewriting off for a URL.
	IgnoreKey = "url_ignore"
	// IgnoreIdentifier is the in-URL form of IgnoreKey.
	IgnoreIdentifier = "#" + IgnoreKey

	fragmentSep = "#"
)

// ErrNegativePathSize is returned when a path size below zero is requested.
var ErrNegativePathSize = errors.New("path size must be >= 0")

// ExtractPathSize looks for the path size token in fragment. The first token
// supplies n; every path size token is removed from rest. ok is false when no
// token exists or its value is not a non-negative integer, and rest is then
// fragment unchanged. The value follows strconv.Atoi, so "+1" reads as 1.
// When a token is removed, empty tokens left in rest are dropped as well:
// "x##baseurl_path_size=1" yields rest "x".
func ExtractPathSize(fragment string) (n int, rest string, ok bool) {
	rest, markers := removeTokens(fragment, isPathSizeToken)
	if len(markers) == 0 {
		return 0, fragment, false
	}
	size, err := strconv.Atoi(strings.TrimPrefix(markers[0], PathSizeKey+"="))
	if err != nil || size < 0 {
		return 0, fragment, false
	}
	return size, rest, true
}

// HasPathSize reports whether u carries a well formed path size token.
func HasPathSize(u URL) bool {
	_, _, ok := ExtractPathSize(u.fragment)
	return ok
}

// StripIgnore removes every ignore token from fragment.
func StripIgnore(fragment string) (rest string, found bool) {
	rest, dropped := removeTokens(fragment, func(tok string) bool { return tok == IgnoreKey })
	if len(dropped) == 0 {
		return fragment, false
	}
	return rest, true
}

func isPathSizeToken(tok string) bool {
	return strings.HasPrefix(tok, PathSizeKey+"=")
}

// removeTokens splits fragment on '#' and drops the tokens matching drop.
// Empty tokens are dropped too so no dangling separators remain.
func removeTokens(fragment string, drop func(tok string) bool) (rest string, dropped []string) {
	if fragment == "" {
		return "", nil
	}
	var kept []string
	for _, tok := range strings.Split(fragment, fragmentSep) {
		switch {
		case drop(tok):
			dropped = append(dropped, tok)
		case tok != "":
			kept = append(kept, tok)
		}
	}
	if len(dropped) == 0 {
		return fragment, nil
	}
	return strings.Join(kept, fragmentSep), dropped
}

// SetPathSize appends the path size identifier to rawURL.
func SetPathSize(rawURL string, n int) (string, error) {
	if n < 0 {
		return "", fmt.Errorf("%w: %d", ErrNegativePathSize, n)
	}
	return rawURL + PathSizeIdentifier + strconv.Itoa(n), nil
}

// SetURLNotChange appends the ignore identifier to rawURL.
func SetURLNotChange(rawURL string) string {
	return rawURL + IgnoreIdentifier
}

// WithPathSize returns u with its path size token set to n, replacing any
// existing one. Negative sizes leave u unchanged.
func (u URL) WithPathSize(n int) URL {
	if n < 0 {
		return u
	}
	rest, _ := removeTokens(u.fragment, isPathSizeToken)
	token := PathSizeKey + "=" + strconv.Itoa(n)
	if rest == "" {
		return u.WithFragment(token)
	}
	return u.WithFragment(rest + fragmentSep + token)
}
