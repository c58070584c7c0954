// Package apitest provides an in-memory fake of the remote task API for tests.
package apitest

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/taskdash/taskdash-go/internal/model"
)

// Default credentials accepted by a fresh Server.
const (
	Username = "alice"
	Password = "secret"
)

// Token returns the Basic token for a username/password pair.
func Token(username, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
}

// Server is a fake task API backed by in-memory slices.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	tasks    []model.Task
	users    []model.User
	nextID   int64
	username string
	password string
	requests map[string]int
	failures map[string][]int
	delays   map[string]time.Duration
	now      func() time.Time
}

// NewServer starts a fake API that is closed when the test finishes.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		nextID:   1,
		username: Username,
		password: Password,
		requests: make(map[string]int),
		failures: make(map[string][]int),
		delays:   make(map[string]time.Duration),
		now:      time.Now,
	}

	r := chi.NewRouter()
	r.Use(s.instrument)
	r.Post("/auth/login", s.handleLogin)
	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)
		r.Get("/tasks", s.handleListTasks)
		r.Post("/tasks", s.handleCreateTask)
		r.Patch("/tasks/{id}", s.handleUpdateTask)
		r.Delete("/tasks/{id}", s.handleDeleteTask)
		r.Get("/users", s.handleListUsers)
	})

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// SetNow overrides the clock used for deadline filters.
func (s *Server) SetNow(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// SeedTasks appends tasks, assigning ids to those without one.
func (s *Server) SeedTasks(tasks ...model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range tasks {
		if t.ID == 0 {
			t.ID = s.nextID
		}
		if t.ID >= s.nextID {
			s.nextID = t.ID + 1
		}
		s.tasks = append(s.tasks, t)
	}
}

// SeedUsers replaces the user list.
func (s *Server) SeedUsers(users ...model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append([]model.User(nil), users...)
}

// Tasks returns a copy of the server-side task list.
func (s *Server) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Task(nil), s.tasks...)
}

// FailNext makes the next request to route (e.g. "DELETE /tasks/{id}")
// answer with status. Calls queue up.
func (s *Server) FailNext(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = append(s.failures[route], status)
}

// Delay holds every request to route for d, or until the request is canceled.
func (s *Server) Delay(route string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[route] = d
}

// Requests reports how many requests reached route.
func (s *Server) Requests(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[route]
}

func routeKey(r *http.Request) string {
	path := r.URL.Path
	if strings.HasPrefix(path, "/tasks/") {
		path = "/tasks/{id}"
	}
	return r.Method + " " + path
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := routeKey(r)

		s.mu.Lock()
		s.requests[key]++
		delay := s.delays[key]
		status := 0
		if queue := s.failures[key]; len(queue) > 0 {
			status = queue[0]
			s.failures[key] = queue[1:]
		}
		s.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}

		if status != 0 {
			writeJSON(w, status, map[string]string{"error": http.StatusText(status)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) validToken(header string) bool {
	token, found := strings.CutPrefix(header, "Basic ")
	if !found {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return token == Token(s.username, s.password)
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.validToken(r.Header.Get("Authorization")) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !s.validToken(r.Header.Get("Authorization")) ||
		q.Get("username") != s.username || q.Get("password") != s.password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"username": s.username,
		"message":  "login successful",
	})
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	now := s.now()
	out := make([]model.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if matchesFilter(t, r.URL.Query().Get("filter"), now) {
			out = append(out, t)
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func matchesFilter(t model.Task, filter string, now time.Time) bool {
	deadline := t.Deadline.Time.UTC()
	now = now.UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch filter {
	case "today":
		return !deadline.Before(startOfDay) && deadline.Before(startOfDay.AddDate(0, 0, 1))
	case "next7days":
		return !deadline.Before(startOfDay) && deadline.Before(startOfDay.AddDate(0, 0, 7))
	}
	return true
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req model.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid task"})
		return
	}

	s.mu.Lock()
	now := model.LocalTime{Time: s.now().UTC()}
	t := model.Task{
		ID:          s.nextID,
		Title:       req.Title,
		Description: req.Description,
		Deadline:    req.Deadline,
		Priority:    req.Priority,
		Status:      req.Status,
		AssignedTo:  s.userLocked(req.AssignedToID),
		CreatedBy:   s.userLocked(req.CreatedByID),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.nextID++
	s.tasks = append(s.tasks, t)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req model.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid task"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		t := &s.tasks[i]
		if t.ID != id {
			continue
		}
		if req.Title != nil {
			t.Title = *req.Title
		}
		if req.Description != nil {
			t.Description = *req.Description
		}
		if req.Deadline != nil {
			t.Deadline = *req.Deadline
		}
		if req.Priority != nil {
			t.Priority = *req.Priority
		}
		if req.Status != nil {
			t.Status = *req.Status
		}
		if req.AssignedToID != nil {
			t.AssignedTo = s.userLocked(*req.AssignedToID)
		}
		if req.UpdatedByID != nil {
			t.UpdatedBy = s.userLocked(*req.UpdatedByID)
		}
		t.UpdatedAt = model.LocalTime{Time: s.now().UTC()}
		writeJSON(w, http.StatusOK, *t)
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tasks {
		if t.ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	users := append([]model.User{}, s.users...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) userLocked(id int64) *model.User {
	for _, u := range s.users {
		if u.ID == id {
			u := u
			return &u
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
