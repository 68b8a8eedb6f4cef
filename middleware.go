package urlmanager

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/genaku/urlmanager/parser"
)

// Endpoint sends a request.
type Endpoint func(*http.Request) (*http.Response, error)

// Middleware wraps an Endpoint.
type Middleware func(next Endpoint) Endpoint

type valueKey struct{}

// requestValue carries per-request settings from middlewares down to the
// innermost endpoint, and what was dispatched back up to the Response.
type requestValue struct {
	Timeout time.Duration
	Mock    Endpoint

	// URL is the URL handed to the transport or mock.
	URL *url.URL
	// Mode is the rewrite rule the URL manager applied.
	Mode parser.Mode
}

func getValue(req *http.Request) *requestValue {
	if v, ok := req.Context().Value(valueKey{}).(*requestValue); ok {
		return v
	}
	return &requestValue{}
}

// withValue returns req carrying a requestValue, reusing one already present.
func withValue(req *http.Request) (*http.Request, *requestValue) {
	if v, ok := req.Context().Value(valueKey{}).(*requestValue); ok {
		return req, v
	}
	v := &requestValue{}
	return req.WithContext(context.WithValue(req.Context(), valueKey{}, v)), v
}

func middlewareInitCtx(next Endpoint) Endpoint {
	return func(req *http.Request) (*http.Response, error) {
		req, _ = withValue(req)
		return next(req)
	}
}

// middlewareContext applies the timeout and mock settings collected by the
// outer middlewares.
func middlewareContext(next Endpoint) Endpoint {
	return func(req *http.Request) (*http.Response, error) {
		v := getValue(req)
		v.URL = req.URL
		send := next
		if v.Mock != nil {
			send = v.Mock
		}
		if v.Timeout <= 0 {
			return send(req)
		}
		ctx, cancel := context.WithTimeout(req.Context(), v.Timeout)
		res, err := send(req.WithContext(ctx))
		if err != nil || res == nil || res.Body == nil {
			cancel()
			return res, err
		}
		// the deadline must outlive Do until the body is consumed
		res.Body = &cancelOnClose{ReadCloser: res.Body, cancel: cancel}
		return res, nil
	}
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

func middlewareDebug(l zerolog.Logger) Middleware {
	return func(next Endpoint) Endpoint {
		return func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			res, err := next(req)
			ev := l.Debug().
				Str("method", req.Method).
				Str("url", req.URL.String()).
				Dur("elapsed", time.Since(start))
			if err != nil {
				ev.Err(err).Msg("request failed")
				return res, err
			}
			if res != nil {
				ev = ev.Int("status", res.StatusCode)
			}
			ev.Msg("request done")
			return res, err
		}
	}
}
