package store

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/taskdash/taskdash-go/internal/model"
	"github.com/taskdash/taskdash-go/internal/repository"
)

const (
	// TokenCookie is the cookie holding the bearer token.
	TokenCookie = "authToken"
	// TokenTTL is how long the token cookie lives.
	TokenTTL = 24 * time.Hour
)

// AuthAPI is the login endpoint of the task API.
type AuthAPI interface {
	Login(ctx context.Context, username, password, token string) (json.RawMessage, error)
}

// EncodeToken builds the Basic token for a username/password pair.
func EncodeToken(username, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
}

// CredentialStore holds the signed-in user's credential and persists the
// bearer token in a cookie.
type CredentialStore struct {
	api     AuthAPI
	jar     CookieJar
	timeout time.Duration
	now     func() time.Time

	mu    sync.RWMutex
	cred  *model.Credential
	token string
}

// NewCredentialStore creates a signed-out CredentialStore. A zero timeout
// selects DefaultTimeout.
func NewCredentialStore(api AuthAPI, jar CookieJar, timeout time.Duration) *CredentialStore {
	return &CredentialStore{
		api:     api,
		jar:     jar,
		timeout: timeoutOrDefault(timeout),
		now:     time.Now,
	}
}

// Login authenticates against the task API. On success it records the
// credential, writes the token cookie and returns the server's session
// payload. On failure the store and the cookie are left as they were.
func (s *CredentialStore) Login(ctx context.Context, username, password string) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	token := EncodeToken(username, password)
	payload, err := s.api.Login(ctx, username, password, token)
	if err != nil {
		if repository.StatusCode(err) != 0 {
			slog.Info("login rejected", "username", username, "status", repository.StatusCode(err))
			return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	s.mu.Lock()
	s.cred = &model.Credential{Username: username, Password: password}
	s.token = token
	s.mu.Unlock()

	s.jar.Set(&http.Cookie{
		Name:    TokenCookie,
		Value:   token,
		Path:    "/",
		Expires: s.now().Add(TokenTTL),
		MaxAge:  int(TokenTTL / time.Second),
	})

	slog.Info("login succeeded", "username", username)
	return payload, nil
}

// Logout clears the credential and removes the token cookie. It is safe to
// call when no one is signed in.
func (s *CredentialStore) Logout() {
	s.mu.Lock()
	s.cred = nil
	s.token = ""
	s.mu.Unlock()

	s.jar.Remove(TokenCookie)
}

// Credential returns the signed-in credential.
func (s *CredentialStore) Credential() (model.Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cred == nil {
		return model.Credential{}, false
	}
	return *s.cred, true
}

// Token returns the bearer token of the signed-in user, or "".
func (s *CredentialStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// StoredToken returns the token persisted in the cookie jar, which may
// outlive the in-memory credential, or "" when there is none.
func (s *CredentialStore) StoredToken() string {
	token, _ := s.jar.Get(TokenCookie)
	return token
}

// Authenticated reports whether a credential is held.
func (s *CredentialStore) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred != nil
}
