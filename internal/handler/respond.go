package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/taskdash/taskdash-go/internal/model"
	"github.com/taskdash/taskdash-go/internal/repository"
	"github.com/taskdash/taskdash-go/internal/session"
	"github.com/taskdash/taskdash-go/internal/store"
)

const maxBodyBytes = 1 << 20 // 1MB

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func errorResponse(msg string) map[string]string {
	return map[string]string{"error": msg}
}

// decodeBody decodes a JSON request body, writing the error response itself
// when it fails.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse("request body too large"))
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return false
	}
	return true
}

// writeStoreError maps a store or repository error to a JSON error response.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := http.StatusBadGateway, "task api unavailable"

	switch {
	case errors.Is(err, store.ErrInvalidCredentials), errors.Is(err, repository.ErrUnauthorized):
		status, msg = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, model.ErrTitleRequired),
		errors.Is(err, model.ErrInvalidPriority),
		errors.Is(err, model.ErrInvalidStatus):
		status, msg = http.StatusBadRequest, validationMessage(err)
	case errors.Is(err, repository.ErrNotFound):
		status, msg = http.StatusNotFound, "task not found"
	case errors.Is(err, context.DeadlineExceeded):
		status, msg = http.StatusGatewayTimeout, "task api timed out"
	case repository.StatusCode(err) == http.StatusUnprocessableEntity:
		status, msg = http.StatusUnprocessableEntity, apiMessage(err)
	case repository.StatusCode(err) >= 400 && repository.StatusCode(err) < 500:
		status, msg = http.StatusBadRequest, apiMessage(err)
	case errors.Is(err, store.ErrFetchFailed):
		msg = "could not refresh tasks"
	}

	if status >= 500 {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse(msg))
}

func validationMessage(err error) string {
	for _, target := range []error{model.ErrTitleRequired, model.ErrInvalidPriority, model.ErrInvalidStatus} {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return "invalid task"
}

func apiMessage(err error) string {
	var apiErr *repository.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "request rejected by task api"
}

// sessionFor resolves the session for the request's token cookie.
func sessionFor(sessions *session.Manager, w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	token, ok := store.NewHTTPJar(w, r, false).Get(store.TokenCookie)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return nil, false
	}
	s, err := sessions.Get(token)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return nil, false
	}
	return s, true
}

// queryInt parses an optional positive integer query parameter.
func queryInt(r *http.Request, key string, fallback int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	return n, nil
}
