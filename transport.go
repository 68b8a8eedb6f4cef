package urlmanager

import (
	"net/http"
)

type roundTripper struct {
	manager *Manager
	base    http.RoundTripper
}

// Transport wraps base so that every request it sends is rewritten by m. A
// nil base means http.DefaultTransport.
func (m *Manager) Transport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &roundTripper{manager: m, base: base}
}

func (rt *roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	out, err := rt.manager.ProcessRequest(req)
	if err != nil {
		if req.Body != nil {
			req.Body.Close()
		}
		return nil, err
	}
	return rt.base.RoundTrip(out)
}
