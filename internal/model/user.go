package model

// User is an assignable user as returned by the task API.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar,omitempty"`
}

// Credential holds the username and password of the signed-in user.
type Credential struct {
	Username string
	Password string
}

// LoginRequest represents a dashboard login request.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
