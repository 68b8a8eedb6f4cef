package urlmanager

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/genaku/urlmanager/cache"
	"github.com/genaku/urlmanager/parser"
)

const (
	// DomainNameHeader selects a registered domain for a single request. The
	// manager removes it before the request is sent.
	DomainNameHeader = "Domain-Name"
	// GlobalDomainName is the registry key of the global domain.
	GlobalDomainName = "urlmanager.globalDomainName"
)

var (
	ErrMultipleDomainNames = errors.New("only one Domain-Name header is allowed")
	ErrInvalidDomain       = errors.New("invalid domain")
	ErrNilCache            = errors.New("cache is a nil pointer")
)

type managerOptions struct {
	cacheSize int
	cache     cache.Cache[parser.CacheKey, parser.URL]
	scheme    parser.SchemePolicy
	logger    *zerolog.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*managerOptions)

// WithCacheSize sets the capacity of the rewritten prefix cache.
func WithCacheSize(size int) ManagerOption {
	return func(o *managerOptions) {
		o.cacheSize = size
	}
}

// WithCache replaces the built-in LRU. WithCacheSize is ignored then. A nil
// pointer wrapped in the interface is rejected by NewManager.
func WithCache(c cache.Cache[parser.CacheKey, parser.URL]) ManagerOption {
	return func(o *managerOptions) {
		o.cache = c
	}
}

func WithSchemePolicy(policy parser.SchemePolicy) ManagerOption {
	return func(o *managerOptions) {
		o.scheme = policy
	}
}

// WithManagerLogger makes the manager log on l instead of the package logger.
func WithManagerLogger(l zerolog.Logger) ManagerOption {
	return func(o *managerOptions) {
		o.logger = &l
	}
}

// Manager rewrites outgoing request URLs against registered domains. It is
// safe for concurrent use.
type Manager struct {
	parser  *parser.Parser
	domains sync.Map // name -> parser.URL
	running atomic.Bool
	logger  zerolog.Logger

	// advancedMu orders writers of advanced and the parser path size.
	advancedMu sync.Mutex
	advanced   atomic.Pointer[parser.URL]

	mu        sync.Mutex
	listeners []Listener
}

func NewManager(opts ...ManagerOption) (*Manager, error) {
	o := &managerOptions{cacheSize: DefaultCacheSize, scheme: DefaultSchemePolicy}
	for _, fn := range opts {
		fn(o)
	}
	c := o.cache
	if c != nil && isNilPointer(c) {
		return nil, fmt.Errorf("new manager: %w", ErrNilCache)
	}
	if c == nil {
		lru, err := cache.NewLRU[parser.CacheKey, parser.URL](o.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("new manager: %w", err)
		}
		c = lru
	}
	m := &Manager{
		parser: parser.New(c, parser.WithSchemePolicy(o.scheme)),
		logger: logger,
	}
	if o.logger != nil {
		m.logger = *o.logger
	}
	m.running.Store(true)
	return m, nil
}

// StartAdvancedMode rewrites, for every request without its own path size
// token, as many leading segments as rawBaseURL has.
func (m *Manager) StartAdvancedMode(rawBaseURL string) error {
	base, err := parser.Parse(rawBaseURL)
	if err != nil {
		return fmt.Errorf("start advanced mode: %w", err)
	}
	m.advancedMu.Lock()
	defer m.advancedMu.Unlock()
	m.parser.SetAdvancedPathSize(base.BasePathSize())
	m.advanced.Store(&base)
	m.logger.Debug().Stringer("base_url", base).Int("path_size", base.BasePathSize()).Msg("advanced mode started")
	return nil
}

func (m *Manager) StopAdvancedMode() {
	m.advancedMu.Lock()
	defer m.advancedMu.Unlock()
	m.advanced.Store(nil)
	m.parser.SetAdvancedPathSize(-1)
}

func (m *Manager) IsAdvancedMode() bool {
	return m.advanced.Load() != nil
}

func (m *Manager) AdvancedBaseURL() (parser.URL, bool) {
	if p := m.advanced.Load(); p != nil {
		return *p, true
	}
	return parser.URL{}, false
}

// SetRun turns rewriting on or off. A stopped manager passes requests through.
func (m *Manager) SetRun(run bool) {
	m.running.Store(run)
}

func (m *Manager) IsRun() bool {
	return m.running.Load()
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

func (m *Manager) Stats() parser.Stats {
	return m.parser.Stats()
}

// ProcessRequest returns req with its URL rewritten. req itself is not
// modified; a clone is returned whenever anything changes.
func (m *Manager) ProcessRequest(req *http.Request) (*http.Request, error) {
	out, _, err := m.process(req)
	return out, err
}

func (m *Manager) process(req *http.Request) (*http.Request, parser.Mode, error) {
	if req == nil || req.URL == nil || !m.IsRun() {
		return req, parser.ModeNone, nil
	}
	if rest, found := parser.StripIgnore(req.URL.Fragment); found {
		out := req.Clone(req.Context())
		out.URL.Fragment = rest
		out.URL.RawFragment = ""
		m.logger.Debug().Stringer("url", out.URL).Msg("rewrite skipped")
		return out, parser.ModeNone, nil
	}

	names := req.Header.Values(DomainNameHeader)
	if len(names) > 1 {
		return nil, parser.ModeNone, fmt.Errorf("%w: %q", ErrMultipleDomainNames, names)
	}
	domainName := GlobalDomainName
	resolve := parser.Resolver(m.resolveByHost)
	if len(names) == 1 {
		if name := strings.TrimSpace(names[0]); name != "" {
			domainName = name
			resolve = m.resolveNamed(name)
		}
	}

	listeners := m.getListeners()
	oldURL := req.URL
	notifyBefore(listeners, oldURL, domainName)

	out := req.Clone(req.Context())
	out.Header.Del(DomainNameHeader)

	rewritten, mode := m.parser.Apply(parser.FromStd(oldURL), resolve)
	if mode == parser.ModeNone {
		m.logger.Debug().Str("domain", domainName).Stringer("url", oldURL).Msg("no replacement resolved")
		return out, mode, nil
	}
	out.URL = rewritten.Std()
	out.Host = out.URL.Host
	notifyChanged(listeners, out.URL, oldURL)
	m.logger.Debug().
		Str("mode", mode.String()).
		Str("domain", domainName).
		Stringer("from", oldURL).
		Stringer("to", out.URL).
		Msg("url rewritten")
	return out, mode, nil
}

// Middleware rewrites requests of a Client. The applied mode is reported by
// Response.RewriteMode.
func (m *Manager) Middleware() Middleware {
	return func(next Endpoint) Endpoint {
		return func(req *http.Request) (*http.Response, error) {
			out, mode, err := m.process(req)
			if err != nil {
				return nil, err
			}
			getValue(out).Mode = mode
			return next(out)
		}
	}
}
