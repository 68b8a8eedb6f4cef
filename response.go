package urlmanager

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/genaku/urlmanager/parser"
)

// Response is the outcome of one request: the server response, the URL the
// request was finally sent to and the rewrite mode that produced it. The body
// is consumed by the first of Error, Unmarshal, GetBody, Save or HandleResult.
type Response struct {
	*http.Response
	err      error
	sent     *url.URL
	mode     parser.Mode
	consumed bool
}

type ResponseHandler func(*http.Response) error

func buildResponse(v *requestValue, res *http.Response, err error) *Response {
	if res == nil {
		res = &http.Response{}
	}
	r := &Response{Response: res, err: err}
	if v != nil {
		r.sent = v.URL
		r.mode = v.Mode
	}
	return r
}

// URL is the URL the request was dispatched to, after any rewrite. It is nil
// when the request never reached the transport.
func (r *Response) URL() *url.URL {
	return r.sent
}

// RewriteMode is the rule the URL manager applied; parser.ModeNone when the
// URL went out as written or no manager is attached.
func (r *Response) RewriteMode() parser.Mode {
	return r.mode
}

// Rewritten reports whether the URL manager replaced the request URL.
func (r *Response) Rewritten() bool {
	return r.mode != parser.ModeNone
}

// HandleResult runs f on the response unless the request failed, then closes
// the body. Only the first call does any work.
func (r *Response) HandleResult(f ResponseHandler) error {
	if r.consumed || r.Response == nil {
		return r.err
	}
	r.consumed = true
	if r.Body != nil {
		defer r.Body.Close()
	}
	if r.err == nil && f != nil {
		r.err = f(r.Response)
	}
	return r.err
}

// Error drains the body and returns the request error, if any.
func (r *Response) Error() error {
	return r.Save(nil)
}

// Unmarshal decodes the JSON body into obj.
func (r *Response) Unmarshal(obj any) error {
	return r.HandleResult(func(res *http.Response) error {
		if res.Body == nil {
			return nil
		}
		data, err := io.ReadAll(res.Body)
		if err != nil {
			return fmt.Errorf("read response body url=%s status=%q: %w", r.sent, res.Status, err)
		}
		if obj == nil {
			return nil
		}
		if err := json.Unmarshal(data, obj); err != nil {
			return fmt.Errorf("unmarshal body %s url=%s status=%q: %w", data, r.sent, res.Status, err)
		}
		return nil
	})
}

// GetBody returns the whole body.
func (r *Response) GetBody() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save copies the body to w. A nil w discards it.
func (r *Response) Save(w io.Writer) error {
	if w == nil {
		w = io.Discard
	}
	return r.HandleResult(func(res *http.Response) error {
		if res.Body == nil {
			return nil
		}
		_, err := io.Copy(w, res.Body)
		return err
	})
}
