package repository

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/taskdash/taskdash-go/internal/apitest"
	"github.com/taskdash/taskdash-go/internal/model"
)

func newTestClient(t *testing.T, api *apitest.Server) *Client {
	t.Helper()
	client, err := NewClient(ClientConfig{BaseURL: api.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestSentinelErrors(t *testing.T) {
	if ErrNotFound.Error() != "resource not found" {
		t.Fatalf("unexpected error message: %s", ErrNotFound.Error())
	}
	if ErrUnauthorized.Error() != "unauthorized" {
		t.Fatalf("unexpected error message: %s", ErrUnauthorized.Error())
	}
}

func TestAPIError_Is(t *testing.T) {
	tests := []struct {
		status       int
		notFound     bool
		unauthorized bool
	}{
		{status: http.StatusNotFound, notFound: true},
		{status: http.StatusUnauthorized, unauthorized: true},
		{status: http.StatusForbidden, unauthorized: true},
		{status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		err := error(&APIError{StatusCode: tt.status})
		if got := errors.Is(err, ErrNotFound); got != tt.notFound {
			t.Errorf("status %d: errors.Is(ErrNotFound) = %v", tt.status, got)
		}
		if got := errors.Is(err, ErrUnauthorized); got != tt.unauthorized {
			t.Errorf("status %d: errors.Is(ErrUnauthorized) = %v", tt.status, got)
		}
		if StatusCode(err) != tt.status {
			t.Errorf("StatusCode() = %d, want %d", StatusCode(err), tt.status)
		}
	}
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	if _, err := NewClient(ClientConfig{BaseURL: "localhost:7777"}); err == nil {
		t.Fatal("expected error for base url without scheme")
	}
}

func TestAuthRepository_Login(t *testing.T) {
	api := apitest.NewServer(t)
	repo := NewAuthRepository(newTestClient(t, api))

	payload, err := repo.Login(context.Background(), apitest.Username, apitest.Password,
		apitest.Token(apitest.Username, apitest.Password))
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if len(payload) == 0 {
		t.Fatal("expected non-empty session payload")
	}
}

func TestAuthRepository_LoginRejected(t *testing.T) {
	api := apitest.NewServer(t)
	repo := NewAuthRepository(newTestClient(t, api))

	_, err := repo.Login(context.Background(), apitest.Username, "wrong",
		apitest.Token(apitest.Username, "wrong"))
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "invalid credentials" {
		t.Errorf("expected message from error body, got %v", err)
	}
}

func TestUserRepository_List(t *testing.T) {
	api := apitest.NewServer(t)
	api.SeedUsers(
		model.User{ID: 1, Username: "alice", Email: "alice@example.com"},
		model.User{ID: 2, Username: "bob", Email: "bob@example.com"},
	)
	client := newTestClient(t, api).WithToken(apitest.Token(apitest.Username, apitest.Password))

	users, err := NewUserRepository(client).List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 2 || users[1].Username != "bob" {
		t.Errorf("unexpected users: %+v", users)
	}
}

func TestUserRepository_ListWithoutToken(t *testing.T) {
	api := apitest.NewServer(t)

	_, err := NewUserRepository(newTestClient(t, api)).List(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
