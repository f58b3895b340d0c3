package session

import (
	"net/http"
	"sync"
	"time"
)

// Marker is the per-request handle on the client side of a session: the
// session id the client presents and the means to replace or remove it.
type Marker interface {
	Get() (sessionID string, ok bool)
	Set(sessionID string, expiresAt time.Time)
	Clear()
}

// CookieMarker is a Marker backed by the session cookie of one request.
// Writes are reflected in later reads within the same request.
type CookieMarker struct {
	r    *http.Request
	w    http.ResponseWriter
	opts CookieOptions

	mu      sync.Mutex
	written bool
	value   string
}

func NewCookieMarker(w http.ResponseWriter, r *http.Request, opts CookieOptions) *CookieMarker {
	return &CookieMarker{r: r, w: w, opts: opts}
}

func (m *CookieMarker) Get() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.written {
		return m.value, m.value != ""
	}

	id, ok := ReadCookie(m.r, m.opts)
	if !ok || !ValidID(id) {
		return "", false
	}
	return id, true
}

func (m *CookieMarker) Set(sessionID string, expiresAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	SetCookie(m.w, sessionID, expiresAt, m.opts)
	m.written = true
	m.value = sessionID
}

func (m *CookieMarker) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	ClearCookie(m.w, m.opts)
	m.written = true
	m.value = ""
}
