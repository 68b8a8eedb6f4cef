package urlmanager

import (
	"net/http"
	"strings"
	"time"

	"github.com/genaku/urlmanager/parser"
)

type options struct {
	Middlewares []Middleware
}

// Option customizes a single request.
type Option func(*options)

func newOptions() *options {
	return &options{}
}

func WithMiddleware(m Middleware) Option {
	return func(opt *options) {
		opt.Middlewares = append(opt.Middlewares, m)
	}
}

func WithPrependMiddleware(m Middleware) Option {
	return func(opt *options) {
		opt.Middlewares = append([]Middleware{m}, opt.Middlewares...)
	}
}

func WithBeforeHook(hook func(*http.Request)) Option {
	return WithMiddleware(func(next Endpoint) Endpoint {
		return func(req *http.Request) (*http.Response, error) {
			hook(req)
			return next(req)
		}
	})
}

func WithAfterHook(hook func(*http.Response)) Option {
	return WithMiddleware(func(next Endpoint) Endpoint {
		return func(req *http.Request) (*http.Response, error) {
			res, err := next(req)
			if err == nil && res != nil {
				hook(res)
			}
			return res, err
		}
	})
}

func WithTimeout(tm time.Duration) Option {
	return WithMiddleware(func(next Endpoint) Endpoint {
		return func(req *http.Request) (*http.Response, error) {
			getValue(req).Timeout = tm
			return next(req)
		}
	})
}

func WithHeaders(hdr map[string]string) Option {
	return WithMiddleware(func(next Endpoint) Endpoint {
		return func(req *http.Request) (*http.Response, error) {
			setRequestHeader(req, hdr)
			return next(req)
		}
	})
}

func WithHeader(k, v string) Option {
	return WithHeaders(map[string]string{k: v})
}

func WithoutQuery(k string) Option {
	return WithMiddleware(func(next Endpoint) Endpoint {
		return func(req *http.Request) (*http.Response, error) {
			if qs := req.URL.Query(); qs != nil {
				qs.Del(k)
				req.URL.RawQuery = qs.Encode()
			}
			return next(req)
		}
	})
}

// WithDomain sends the request to the base URL registered under name.
func WithDomain(name string) Option {
	return WithHeader(DomainNameHeader, name)
}

// WithPathSize replaces the first n path segments of the request URL together
// with its scheme and host. Negative sizes are ignored.
func WithPathSize(n int) Option {
	return WithMiddleware(func(next Endpoint) Endpoint {
		return func(req *http.Request) (*http.Response, error) {
			if n >= 0 {
				setFragment(req, parser.FromStd(req.URL).WithPathSize(n).Fragment())
			}
			return next(req)
		}
	})
}

// WithoutRewrite sends the request to its URL as written.
func WithoutRewrite() Option {
	return WithMiddleware(func(next Endpoint) Endpoint {
		return func(req *http.Request) (*http.Response, error) {
			if _, found := parser.StripIgnore(req.URL.Fragment); !found {
				setFragment(req, joinFragment(req.URL.Fragment, parser.IgnoreKey))
			}
			return next(req)
		}
	})
}

func setFragment(req *http.Request, fragment string) {
	req.URL.Fragment = fragment
	req.URL.RawFragment = ""
}

func joinFragment(fragment, token string) string {
	if fragment == "" {
		return token
	}
	return fragment + "#" + token
}

func setRequestHeader(req *http.Request, header map[string]string) {
	for k, v := range header {
		req.Header.Set(k, v)
		if strings.ToLower(k) == "host" {
			req.Host = v
		}
	}
}
