package store

import (
	"net/http"
	"sync"
	"time"
)

// CookieJar persists named cookies for the current session.
type CookieJar interface {
	// Get returns the value of an unexpired cookie.
	Get(name string) (string, bool)
	// Set stores the cookie, replacing any cookie with the same name.
	Set(c *http.Cookie)
	// Remove deletes the cookie. Removing a missing cookie is a no-op.
	Remove(name string)
}

// MemoryJar is a process-local CookieJar that honours cookie expiry.
type MemoryJar struct {
	mu      sync.Mutex
	cookies map[string]http.Cookie
	now     func() time.Time
}

// NewMemoryJar creates an empty MemoryJar.
func NewMemoryJar() *MemoryJar {
	return &MemoryJar{
		cookies: make(map[string]http.Cookie),
		now:     time.Now,
	}
}

func (j *MemoryJar) Get(name string) (string, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	c, ok := j.cookies[name]
	if !ok {
		return "", false
	}
	if !c.Expires.IsZero() && !j.now().Before(c.Expires) {
		delete(j.cookies, name)
		return "", false
	}
	return c.Value, true
}

func (j *MemoryJar) Set(c *http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if c.MaxAge < 0 {
		delete(j.cookies, c.Name)
		return
	}
	j.cookies[c.Name] = *c
}

func (j *MemoryJar) Remove(name string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	delete(j.cookies, name)
}

// HTTPJar is a CookieJar bound to one HTTP exchange: it reads cookies from
// the request and writes Set-Cookie headers on the response.
type HTTPJar struct {
	w       http.ResponseWriter
	r       *http.Request
	secure  bool
	pending map[string]*http.Cookie
}

// NewHTTPJar creates a jar for the given exchange. secure marks written
// cookies as HTTPS-only.
func NewHTTPJar(w http.ResponseWriter, r *http.Request, secure bool) *HTTPJar {
	return &HTTPJar{w: w, r: r, secure: secure, pending: make(map[string]*http.Cookie)}
}

func (j *HTTPJar) Get(name string) (string, bool) {
	if c, ok := j.pending[name]; ok {
		if c.MaxAge < 0 || c.Value == "" {
			return "", false
		}
		return c.Value, true
	}
	c, err := j.r.Cookie(name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

func (j *HTTPJar) Set(c *http.Cookie) {
	cp := *c
	if cp.Path == "" {
		cp.Path = "/"
	}
	cp.HttpOnly = true
	cp.Secure = j.secure
	cp.SameSite = http.SameSiteLaxMode
	j.pending[cp.Name] = &cp
	http.SetCookie(j.w, &cp)
}

func (j *HTTPJar) Remove(name string) {
	j.Set(&http.Cookie{
		Name:    name,
		Value:   "",
		Path:    "/",
		MaxAge:  -1,
		Expires: time.Unix(0, 0),
	})
}
