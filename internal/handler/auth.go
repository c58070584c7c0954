package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/taskdash/taskdash-go/internal/model"
	"github.com/taskdash/taskdash-go/internal/session"
	"github.com/taskdash/taskdash-go/internal/store"
)

// AuthHandler handles sign-in and sign-out.
type AuthHandler struct {
	api          store.AuthAPI
	sessions     *session.Manager
	timeout      time.Duration
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(api store.AuthAPI, sessions *session.Manager, timeout time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{api: api, sessions: sessions, timeout: timeout, secureCookie: secureCookie}
}

func (h *AuthHandler) credentials(w http.ResponseWriter, r *http.Request) *store.CredentialStore {
	return store.NewCredentialStore(h.api, store.NewHTTPJar(w, r, h.secureCookie), h.timeout)
}

// HandleLogin handles POST /login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	creds := h.credentials(w, r)
	payload, err := creds.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, errorResponse("invalid credentials"))
			return
		}
		writeStoreError(w, r, err)
		return
	}

	cred, _ := creds.Credential()
	if _, err := h.sessions.Open(cred, creds.Token()); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	if len(payload) == 0 || !json.Valid(payload) {
		writeJSON(w, http.StatusOK, map[string]string{"username": cred.Username})
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// HandleLogout handles POST /logout requests. It always succeeds.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	creds := h.credentials(w, r)
	h.sessions.Close(creds.StoredToken())
	creds.Logout()
	w.WriteHeader(http.StatusNoContent)
}
