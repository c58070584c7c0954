package handler

import (
	"net/http"
	"time"

	"github.com/taskdash/taskdash-go/internal/model"
	"github.com/taskdash/taskdash-go/internal/session"
	"github.com/taskdash/taskdash-go/internal/view"
)

// UserHandler serves the assignable users and the dashboard summary.
type UserHandler struct {
	sessions *session.Manager
	now      func() time.Time
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(sessions *session.Manager) *UserHandler {
	return &UserHandler{sessions: sessions, now: time.Now}
}

// HandleList handles GET /dashboard/users. The list is fetched on first use;
// refresh=true forces a refetch.
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFor(h.sessions, w, r)
	if !ok {
		return
	}

	var err error
	if r.URL.Query().Get("refresh") == "true" {
		err = s.Users.FetchUsers(r.Context())
	} else {
		err = s.Users.EnsureUsers(r.Context())
	}
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, s.Users.Users())
}

// HandleSummary handles GET /dashboard/summary: counts over the full task
// collection and the user list.
func (h *UserHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFor(h.sessions, w, r)
	if !ok {
		return
	}

	if err := s.Tasks.Fetch(r.Context(), model.FilterAll); err != nil {
		writeStoreError(w, r, err)
		return
	}
	if err := s.Users.EnsureUsers(r.Context()); err != nil {
		writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view.Summarize(s.Tasks.Tasks(), s.Users.Users(), h.now()))
}
