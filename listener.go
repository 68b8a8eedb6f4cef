package urlmanager

import (
	"net/url"
)

// Listener observes URL rewrites. Implementations must be comparable so they
// can be unregistered.
type Listener interface {
	// OnURLChangeBefore runs before a rewrite is attempted. domainName is the
	// Domain-Name header value, or GlobalDomainName when absent.
	OnURLChangeBefore(oldURL *url.URL, domainName string)
	// OnURLChanged runs after the URL was replaced.
	OnURLChanged(newURL, oldURL *url.URL)
}

// ListenerFuncs adapts plain functions to Listener. Register it by pointer.
// Nil fields are skipped.
type ListenerFuncs struct {
	Before  func(oldURL *url.URL, domainName string)
	Changed func(newURL, oldURL *url.URL)
}

func (l *ListenerFuncs) OnURLChangeBefore(oldURL *url.URL, domainName string) {
	if l.Before != nil {
		l.Before(oldURL, domainName)
	}
}

func (l *ListenerFuncs) OnURLChanged(newURL, oldURL *url.URL) {
	if l.Changed != nil {
		l.Changed(newURL, oldURL)
	}
}

func (m *Manager) RegisterListener(l Listener) {
	if l == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

func (m *Manager) UnregisterListener(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, v := range m.listeners {
		if v == l {
			m.listeners = append(m.listeners[:i:i], m.listeners[i+1:]...)
			return
		}
	}
}

func (m *Manager) getListeners() []Listener {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listeners
}

func notifyBefore(listeners []Listener, oldURL *url.URL, domainName string) {
	for _, l := range listeners {
		l.OnURLChangeBefore(oldURL, domainName)
	}
}

func notifyChanged(listeners []Listener, newURL, oldURL *url.URL) {
	for _, l := range listeners {
		l.OnURLChanged(newURL, oldURL)
	}
}
