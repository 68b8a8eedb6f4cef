package urlmanager

import (
	"fmt"

	"github.com/genaku/urlmanager/parser"
)

// PutDomain registers rawURL as the replacement base for name. Requests whose
// host equals name, or that carry a Domain-Name header with it, are sent there.
// Userinfo in a request URL travels with it to the new host.
func (m *Manager) PutDomain(name, rawURL string) error {
	if name == "" {
		return fmt.Errorf("%w: empty domain name", ErrInvalidDomain)
	}
	base, err := parser.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("put domain %q: %w", name, err)
	}
	m.domains.Store(name, base)
	m.logger.Debug().Str("domain", name).Stringer("url", base).Msg("domain registered")
	return nil
}

func (m *Manager) FetchDomain(name string) (parser.URL, bool) {
	v, ok := m.domains.Load(name)
	if !ok {
		return parser.URL{}, false
	}
	return v.(parser.URL), true
}

func (m *Manager) RemoveDomain(name string) {
	m.domains.Delete(name)
}

func (m *Manager) HaveDomain(name string) bool {
	_, ok := m.domains.Load(name)
	return ok
}

// DomainSize counts registered domains, the global domain included.
func (m *Manager) DomainSize() int {
	var n int
	m.domains.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}

// ClearAllDomain drops every registered domain, the global domain included.
func (m *Manager) ClearAllDomain() {
	m.domains.Range(func(k, _ any) bool {
		m.domains.Delete(k)
		return true
	})
}

// SetGlobalDomain sets the base used for hosts without their own entry.
func (m *Manager) SetGlobalDomain(rawURL string) error {
	return m.PutDomain(GlobalDomainName, rawURL)
}

func (m *Manager) GlobalDomain() (parser.URL, bool) {
	return m.FetchDomain(GlobalDomainName)
}

func (m *Manager) RemoveGlobalDomain() {
	m.RemoveDomain(GlobalDomainName)
}

// resolveByHost looks host up in the registry, falling back to the global
// domain.
func (m *Manager) resolveByHost(host string) (parser.URL, bool) {
	if base, ok := m.FetchDomain(host); ok {
		return base, true
	}
	return m.GlobalDomain()
}

// resolveNamed ignores the request host and always returns the domain
// registered under name.
func (m *Manager) resolveNamed(name string) parser.Resolver {
	return func(string) (parser.URL, bool) {
		return m.FetchDomain(name)
	}
}
