package apiclient

import (
	"maps"
	"net/http"
	"sync"
	"sync/atomic"
)

const (
	// HeaderAuthorization carries bearer tokens set by SetBearerToken
	HeaderAuthorization = "Authorization"
	// HeaderAuthToken carries tokens set by SetAuthToken
	HeaderAuthToken = "X-Auth-Token"
)

// headerStore holds the default header set as an immutable snapshot.
// Writers serialize on mu and publish a fresh map; readers load the current
// snapshot without locking, so a request sees the set either entirely
// before or entirely after any mutation.
type headerStore struct {
	mu      sync.Mutex
	current atomic.Pointer[map[string]string]
}

func newHeaderStore(initial map[string]string) *headerStore {
	s := &headerStore{}
	s.publish(canonical(initial))
	return s
}

func (s *headerStore) snapshot() map[string]string {
	return *s.current.Load()
}

func (s *headerStore) publish(h map[string]string) {
	s.current.Store(&h)
}

func (s *headerStore) replace(h map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publish(canonical(h))
}

func (s *headerStore) update(h map[string]string) {
	if len(h) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publish(merge(s.snapshot(), h))
}

func (s *headerStore) clear() {
	s.replace(nil)
}

func canonical(h map[string]string) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[http.CanonicalHeaderKey(k)] = v
	}
	return out
}

// merge returns defaults overridden key by key by overrides. Neither input
// is modified.
func merge(defaults, overrides map[string]string) map[string]string {
	out := make(map[string]string, len(defaults)+len(overrides))
	maps.Copy(out, defaults)
	for k, v := range overrides {
		out[http.CanonicalHeaderKey(k)] = v
	}
	return out
}

// DefaultHeaders returns a copy of the current default header set
func (c *Client) DefaultHeaders() map[string]string {
	return maps.Clone(c.headers.snapshot())
}

// SetDefaultHeaders replaces the default header set. A nil map clears it.
func (c *Client) SetDefaultHeaders(headers map[string]string) {
	c.headers.replace(headers)
}

// UpdateDefaultHeaders overwrites matching keys and adds new ones, leaving
// the rest of the default set untouched.
func (c *Client) UpdateDefaultHeaders(headers map[string]string) {
	c.headers.update(headers)
}

// ClearDefaultHeaders removes every default header
func (c *Client) ClearDefaultHeaders() {
	c.headers.clear()
}

// SetBearerToken sets "Authorization: Bearer <token>" on every later request
func (c *Client) SetBearerToken(token string) {
	c.headers.update(map[string]string{HeaderAuthorization: "Bearer " + token})
}

// SetAuthToken sets the X-Auth-Token header on every later request
func (c *Client) SetAuthToken(token string) {
	c.headers.update(map[string]string{HeaderAuthToken: token})
}
