package store

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/taskdash/taskdash-go/internal/apitest"
	"github.com/taskdash/taskdash-go/internal/repository"
)

func newTestCredentialStore(t *testing.T) (*CredentialStore, *MemoryJar) {
	t.Helper()
	api := apitest.NewServer(t)
	client, err := repository.NewClient(repository.ClientConfig{BaseURL: api.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	jar := NewMemoryJar()
	return NewCredentialStore(repository.NewAuthRepository(client), jar, time.Second), jar
}

func TestEncodeToken(t *testing.T) {
	if got := EncodeToken("alice", "secret"); got != "YWxpY2U6c2VjcmV0" {
		t.Errorf("EncodeToken() = %q", got)
	}
}

func TestLogin_Success(t *testing.T) {
	store, jar := newTestCredentialStore(t)
	fixed := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	payload, err := store.Login(context.Background(), "alice", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if len(payload) == 0 {
		t.Error("expected session payload to be returned")
	}

	cred, ok := store.Credential()
	if !ok || cred.Username != "alice" || cred.Password != "secret" {
		t.Errorf("unexpected credential: %+v (ok=%v)", cred, ok)
	}

	token, ok := jar.Get(TokenCookie)
	if !ok || token != EncodeToken("alice", "secret") {
		t.Errorf("expected token cookie to be set, got %q (ok=%v)", token, ok)
	}
	if store.Token() != token {
		t.Errorf("Token() = %q, want %q", store.Token(), token)
	}

	jar.now = func() time.Time { return fixed.Add(24*time.Hour - time.Second) }
	if _, ok := jar.Get(TokenCookie); !ok {
		t.Error("token cookie should live for 24h")
	}
	jar.now = func() time.Time { return fixed.Add(24 * time.Hour) }
	if _, ok := jar.Get(TokenCookie); ok {
		t.Error("token cookie should expire after 24h")
	}
}

func TestStoredToken(t *testing.T) {
	store, jar := newTestCredentialStore(t)
	if got := store.StoredToken(); got != "" {
		t.Errorf("StoredToken() = %q, want empty", got)
	}

	// A token persisted by an earlier login is visible without signing in.
	jar.Set(&http.Cookie{Name: TokenCookie, Value: "YWxpY2U6c2VjcmV0"})
	if got := store.StoredToken(); got != "YWxpY2U6c2VjcmV0" {
		t.Errorf("StoredToken() = %q", got)
	}
	if store.Authenticated() {
		t.Error("a stored token alone does not sign in")
	}

	store.Logout()
	if got := store.StoredToken(); got != "" {
		t.Errorf("StoredToken() after logout = %q, want empty", got)
	}
}

func TestLogin_InvalidCredentialsLeavesStateUntouched(t *testing.T) {
	store, jar := newTestCredentialStore(t)

	_, err := store.Login(context.Background(), "alice", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if store.Authenticated() {
		t.Error("store should not be authenticated after a rejected login")
	}
	if _, ok := jar.Get(TokenCookie); ok {
		t.Error("cookie must not be written after a rejected login")
	}
}

func TestLogin_RejectedAfterSuccessKeepsPriorSession(t *testing.T) {
	store, jar := newTestCredentialStore(t)
	ctx := context.Background()

	if _, err := store.Login(ctx, "alice", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := store.Login(ctx, "mallory", "guess"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	cred, ok := store.Credential()
	if !ok || cred.Username != "alice" {
		t.Errorf("expected prior credential to survive, got %+v", cred)
	}
	if token, _ := jar.Get(TokenCookie); token != EncodeToken("alice", "secret") {
		t.Errorf("expected prior cookie to survive, got %q", token)
	}
}

func TestLogin_TransportErrorIsNotInvalidCredentials(t *testing.T) {
	api := apitest.NewServer(t)
	client, err := repository.NewClient(repository.ClientConfig{BaseURL: api.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	api.Close()

	store := NewCredentialStore(repository.NewAuthRepository(client), NewMemoryJar(), time.Second)
	_, err = store.Login(context.Background(), "alice", "secret")
	if err == nil {
		t.Fatal("expected error when the api is unreachable")
	}
	if errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("transport failure should not be reported as invalid credentials: %v", err)
	}
}

func TestLogout_ClearsStateAndIsIdempotent(t *testing.T) {
	store, jar := newTestCredentialStore(t)

	store.Logout()
	if store.Authenticated() {
		t.Fatal("expected signed-out store")
	}

	if _, err := store.Login(context.Background(), "alice", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	store.Logout()
	store.Logout()

	if store.Authenticated() || store.Token() != "" {
		t.Error("expected credential and token to be cleared")
	}
	if _, ok := jar.Get(TokenCookie); ok {
		t.Error("expected cookie to be removed")
	}
}

func TestMemoryJar_Expiry(t *testing.T) {
	jar := NewMemoryJar()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	jar.now = func() time.Time { return now }

	jar.Set(&http.Cookie{Name: "a", Value: "1", Expires: now.Add(time.Hour)})
	if v, ok := jar.Get("a"); !ok || v != "1" {
		t.Fatalf("expected cookie before expiry, got %q (ok=%v)", v, ok)
	}

	now = now.Add(time.Hour)
	if _, ok := jar.Get("a"); ok {
		t.Error("expected cookie to expire")
	}
}

func TestHTTPJar_SetAndRemove(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	jar := NewHTTPJar(rec, req, true)

	jar.Set(&http.Cookie{Name: TokenCookie, Value: "abc", MaxAge: 60})
	if v, ok := jar.Get(TokenCookie); !ok || v != "abc" {
		t.Fatalf("expected pending cookie, got %q (ok=%v)", v, ok)
	}
	jar.Remove(TokenCookie)
	if _, ok := jar.Get(TokenCookie); ok {
		t.Error("expected removed cookie to be gone")
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 2 {
		t.Fatalf("expected 2 Set-Cookie headers, got %d", len(cookies))
	}
	if !cookies[0].HttpOnly || !cookies[0].Secure || cookies[0].Path != "/" {
		t.Errorf("unexpected cookie attributes: %+v", cookies[0])
	}
	if cookies[1].MaxAge >= 0 {
		t.Errorf("expected removal cookie with negative MaxAge, got %d", cookies[1].MaxAge)
	}
}

func TestHTTPJar_ReadsRequestCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: "xyz"})
	jar := NewHTTPJar(httptest.NewRecorder(), req, false)

	if v, ok := jar.Get(TokenCookie); !ok || v != "xyz" {
		t.Errorf("expected request cookie, got %q (ok=%v)", v, ok)
	}
}
