// Package session keeps the per-login stores of the dashboard service.
package session

import (
	"encoding/hex"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/taskdash/taskdash-go/internal/model"
	"github.com/taskdash/taskdash-go/internal/repository"
	"github.com/taskdash/taskdash-go/internal/store"
)

var ErrNoToken = errors.New("no token")

// Session is the state behind one token: the task and user collections
// fetched with that token.
type Session struct {
	Tasks   *store.TaskStore
	Users   *store.UserStore
	Created time.Time

	username string
	token    string
}

// Username returns the signed-in username, or "" for sessions rebuilt from
// a bare token.
func (s *Session) Username() string { return s.username }

// Token returns the Basic token the session's requests are sent with.
func (s *Session) Token() string { return s.token }

// Manager owns the sessions keyed by token fingerprint.
type Manager struct {
	client  *repository.Client
	timeout time.Duration
	ttl     time.Duration
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session

	stop     chan struct{}
	stopOnce sync.Once
}

// NewManager creates a Manager whose stores talk to the API through client.
// Sessions older than ttl are dropped by a background sweep until Stop.
func NewManager(client *repository.Client, timeout, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = store.TokenTTL
	}
	m := &Manager{
		client:   client,
		timeout:  timeout,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
		stop:     make(chan struct{}),
	}
	go m.sweepLoop()
	return m
}

// Fingerprint returns a short, non-reversible id for a token, safe to log.
func Fingerprint(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}

// Open starts a fresh session after a successful login, replacing any
// session previously held for the same token.
func (m *Manager) Open(cred model.Credential, token string) (*Session, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	s := m.newSession(cred.Username, token)

	m.mu.Lock()
	m.sessions[Fingerprint(token)] = s
	m.mu.Unlock()

	slog.Info("session opened", "session", Fingerprint(token))
	return s, nil
}

// Get returns the session for token. A token with no session, for example
// after a restart, gets a new empty one that is kept only once a fetch made
// with it succeeds; the API decides whether the token is valid.
func (m *Manager) Get(token string) (*Session, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	key := Fingerprint(token)

	m.mu.Lock()
	s, ok := m.sessions[key]
	m.mu.Unlock()
	if ok {
		return s, nil
	}

	s = m.newSession("", token)
	var once sync.Once
	var cancels []func()
	keep := func() {
		once.Do(func() {
			for _, cancel := range cancels {
				cancel()
			}
			m.adopt(key, s)
		})
	}
	cancels = append(cancels, s.Tasks.Subscribe(keep), s.Users.Subscribe(keep))
	return s, nil
}

// adopt registers a session restored from a bare token unless another
// session for the same token got there first.
func (m *Manager) adopt(key string, s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[key]; ok {
		return
	}
	m.sessions[key] = s
	slog.Debug("session restored from token", "session", key)
}

// Close drops the session for token. Closing an unknown token is a no-op.
func (m *Manager) Close(token string) {
	if token == "" {
		return
	}
	key := Fingerprint(token)

	m.mu.Lock()
	_, ok := m.sessions[key]
	delete(m.sessions, key)
	m.mu.Unlock()

	if ok {
		slog.Info("session closed", "session", key)
	}
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep drops sessions older than the ttl and returns how many were removed.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for key, s := range m.sessions {
		if s.Created.Before(cutoff) {
			delete(m.sessions, key)
			n++
		}
	}
	if n > 0 {
		slog.Info("expired sessions swept", "count", n)
	}
	return n
}

// Stop ends the background sweep. It is safe to call more than once.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}

func (m *Manager) sweepLoop() {
	interval := m.ttl / 24
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

func (m *Manager) newSession(username, token string) *Session {
	c := m.client.WithToken(token)
	return &Session{
		Tasks:    store.NewTaskStore(repository.NewTaskRepository(c), m.timeout),
		Users:    store.NewUserStore(repository.NewUserRepository(c), m.timeout),
		Created:  m.now(),
		username: username,
		token:    token,
	}
}
