package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/taskdash/taskdash-go/internal/model"
)

// AuthRepository handles the login endpoint of the task API.
type AuthRepository struct {
	client *Client
}

// NewAuthRepository creates a new AuthRepository.
func NewAuthRepository(client *Client) *AuthRepository {
	return &AuthRepository{client: client}
}

// Login posts the credentials to /auth/login and returns the raw session payload.
// The credentials travel both as query parameters and as the Basic token.
func (r *AuthRepository) Login(ctx context.Context, username, password, token string) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("username", username)
	query.Set("password", password)

	var payload json.RawMessage
	if err := r.client.do(ctx, http.MethodPost, "/auth/login", query, nil, &payload, token); err != nil {
		return nil, err
	}
	return payload, nil
}

// UserRepository reads assignable users from the task API.
type UserRepository struct {
	client *Client
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(client *Client) *UserRepository {
	return &UserRepository{client: client}
}

// List retrieves all users.
func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.client.do(ctx, http.MethodGet, "/users", nil, nil, &users, ""); err != nil {
		return nil, err
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}
