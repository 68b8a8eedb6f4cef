package urlmanager

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"runtime"
	"time"

	"github.com/rs/zerolog"
)

// NewClient creates a client with pooled connections and a 5s timeout.
func NewClient() Client {
	cli := &clientImpl{
		Client: &http.Client{Transport: DefaultPooledTransport()},
	}
	cli.SetTimeout(5 * time.Second)
	return cli
}

type clientImpl struct {
	Client      *http.Client
	middlewares []Middleware
	manager     *Manager
}

func (client *clientImpl) Fork(withMiddlewares bool) Client {
	cli := &clientImpl{
		Client:  &http.Client{Transport: client.Client.Transport},
		manager: client.manager,
	}
	if withMiddlewares {
		ms := make([]Middleware, len(client.middlewares))
		copy(ms, client.middlewares)
		cli.middlewares = ms
	}
	return cli
}

func (client *clientImpl) SetTimeout(tm time.Duration) Client {
	return client.AddMiddleware(func(next Endpoint) Endpoint {
		return func(req *http.Request) (*http.Response, error) {
			getValue(req).Timeout = tm
			return next(req)
		}
	})
}

func (client *clientImpl) SetMock(fn Endpoint) Client {
	return client.AddMiddleware(func(next Endpoint) Endpoint {
		return func(req *http.Request) (*http.Response, error) {
			getValue(req).Mock = fn
			return next(req)
		}
	})
}

// SetDebug logs every request at debug level on l.
func (client *clientImpl) SetDebug(l zerolog.Logger) Client {
	return client.AddMiddleware(middlewareDebug(l))
}

// SetURLManager routes every request of this client through m. A nil m turns
// rewriting off.
func (client *clientImpl) SetURLManager(m *Manager) Client {
	client.manager = m
	return client
}

func (client *clientImpl) SetHeader(name, val string) Client {
	return client.SetHeaders(map[string]string{name: val})
}

func (client *clientImpl) SetHeaders(hder map[string]string) Client {
	return client.AddMiddleware(func(next Endpoint) Endpoint {
		return func(req *http.Request) (*http.Response, error) {
			setRequestHeader(req, hder)
			return next(req)
		}
	})
}

func (client *clientImpl) AddMiddleware(m ...Middleware) Client {
	client.middlewares = append(client.middlewares, m...)
	return client
}

func (client *clientImpl) PrependMiddleware(m ...Middleware) Client {
	client.middlewares = append(m, client.middlewares...)
	return client
}

func (client *clientImpl) AddBeforeHook(hook func(*http.Request)) Client {
	return client.AddMiddleware(func(next Endpoint) Endpoint {
		return func(req *http.Request) (*http.Response, error) {
			hook(req)
			return next(req)
		}
	})
}

func (client *clientImpl) AddAfterHook(hook func(*http.Response)) Client {
	return client.AddMiddleware(func(next Endpoint) Endpoint {
		return func(req *http.Request) (*http.Response, error) {
			res, err := next(req)
			if err == nil && res != nil {
				hook(res)
			}
			return res, err
		}
	})
}

func (client *clientImpl) MakeDoer(opts ...Option) Doer {
	return Doer(client.makeFinalHandler(client.getOptionMiddlewares(opts...)...))
}

func (client *clientImpl) DoRequest(req *http.Request, opts ...Option) *Response {
	return client.send(req, opts...)
}

func (client *clientImpl) Do(ctx context.Context, method string, uri string, body io.Reader, opts ...Option) *Response {
	req, err := http.NewRequest(method, uri, body)
	if err != nil {
		return buildResponse(nil, nil, err)
	}
	if ctx != nil {
		req = req.WithContext(ctx)
	}
	return client.send(req, opts...)
}

// send runs req through the chain. The requestValue is attached here so the
// Response can report what the chain dispatched.
func (client *clientImpl) send(req *http.Request, opts ...Option) *Response {
	req, v := withValue(req)
	res, err := client.makeFinalHandler(client.getOptionMiddlewares(opts...)...)(req)
	return buildResponse(v, res, err)
}

// Download writes the response body of a GET to w.
func (client *clientImpl) Download(ctx context.Context, uri string, w io.Writer, opts ...Option) error {
	return client.Get(ctx, uri, opts...).Save(w)
}

func (client *clientImpl) Get(ctx context.Context, uri string, opts ...Option) *Response {
	return client.Do(ctx, http.MethodGet, uri, nil, opts...)
}

func (client *clientImpl) Post(ctx context.Context, urlstr string, data []byte, opts ...Option) *Response {
	return client.Do(ctx, http.MethodPost, urlstr, bytes.NewBuffer(data), opts...)
}

func (client *clientImpl) Delete(ctx context.Context, urlstr string, data []byte, opts ...Option) *Response {
	return client.Do(ctx, http.MethodDelete, urlstr, bytes.NewBuffer(data), opts...)
}

func (client *clientImpl) Put(ctx context.Context, urlstr string, data []byte, opts ...Option) *Response {
	return client.Do(ctx, http.MethodPut, urlstr, bytes.NewBuffer(data), opts...)
}

func (client *clientImpl) PostForm(ctx context.Context, urlstr string, data map[string]any, opts ...Option) *Response {
	values := url.Values{}
	for k, v := range data {
		values.Set(k, fmt.Sprint(v))
	}
	opts = append([]Option{WithHeader("Content-Type", "application/x-www-form-urlencoded")}, opts...)
	return client.Post(ctx, urlstr, []byte(values.Encode()), opts...)
}

func (client *clientImpl) PostJSON(ctx context.Context, urlstr string, data any, opts ...Option) *Response {
	var payload []byte
	var err error
	switch d := data.(type) {
	case string:
		payload = []byte(d)
	case []byte:
		payload = d
	case nil:
	case io.Reader:
		payload, err = io.ReadAll(d)
		if err != nil {
			return buildResponse(nil, nil, err)
		}
	default:
		payload, err = json.Marshal(data)
		if err != nil {
			return buildResponse(nil, nil, err)
		}
	}
	opts = append([]Option{WithHeader("Content-Type", "application/json; charset=utf-8")}, opts...)
	return client.Post(ctx, urlstr, payload, opts...)
}

// makeFinalHandler builds, from the outside in: context init, client
// middlewares, option middlewares, URL manager, timeout and mock, transport.
func (client *clientImpl) makeFinalHandler(extraMiddlewares ...Middleware) Endpoint {
	next := client.Client.Do

	next = middlewareContext(next)

	if client.manager != nil {
		next = client.manager.Middleware()(next)
	}
	for i := len(extraMiddlewares) - 1; i >= 0; i-- {
		next = extraMiddlewares[i](next)
	}
	for i := len(client.middlewares) - 1; i >= 0; i-- {
		next = client.middlewares[i](next)
	}
	/* must create context */
	next = middlewareInitCtx(next)

	return next
}

func (client *clientImpl) getOptionMiddlewares(opts ...Option) []Middleware {
	opt := newOptions()
	for _, fn := range opts {
		fn(opt)
	}
	return opt.Middlewares
}

// Doer adapts a client to interfaces expecting Do(*http.Request).
type Doer func(*http.Request) (*http.Response, error)

func (hd Doer) Do(req *http.Request) (*http.Response, error) {
	return hd(req)
}

func DefaultPooledTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConnsPerHost:   runtime.GOMAXPROCS(0) + 1,
	}
}
