package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taskdash/taskdash-go/internal/model"
	"github.com/taskdash/taskdash-go/internal/session"
	"github.com/taskdash/taskdash-go/internal/view"
)

// TaskHandler serves the task table of a signed-in session.
type TaskHandler struct {
	sessions *session.Manager
	pageSize int
}

// NewTaskHandler creates a new TaskHandler. pageSize is the default table
// page size.
func NewTaskHandler(sessions *session.Manager, pageSize int) *TaskHandler {
	if pageSize < 1 {
		pageSize = view.DefaultPageSize
	}
	return &TaskHandler{sessions: sessions, pageSize: pageSize}
}

// mutationResponse carries the task the API returned plus the refreshed
// first page of the collection.
type mutationResponse struct {
	Task  model.Task `json:"task"`
	Tasks view.Page  `json:"tasks"`
}

// listResponse is a table page tagged with the view it was built from.
type listResponse struct {
	view.Page
	View string `json:"view"`
}

// HandleList handles GET /dashboard/tasks. The view parameter selects the
// fetch (all, today, next7days); q, page and size shape the table.
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter, err := model.ParseTaskFilter(r.URL.Query().Get("view"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	page, err := queryInt(r, "page", 1)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid page"))
		return
	}
	size, err := queryInt(r, "size", h.pageSize)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid size"))
		return
	}

	s, ok := sessionFor(h.sessions, w, r)
	if !ok {
		return
	}
	if err := s.Tasks.Fetch(r.Context(), filter); err != nil {
		writeStoreError(w, r, err)
		return
	}

	// A concurrent fetch for another view may have replaced the collection;
	// report the view the rows actually came from.
	tasks, served := s.Tasks.Snapshot()
	writeJSON(w, http.StatusOK, listResponse{
		Page: view.Table(tasks, r.URL.Query().Get("q"), page, size),
		View: viewName(served),
	})
}

func viewName(f model.TaskFilter) string {
	if f == model.FilterAll {
		return "all"
	}
	return string(f)
}

// HandleCreate handles POST /dashboard/tasks.
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req model.CreateTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}

	s, ok := sessionFor(h.sessions, w, r)
	if !ok {
		return
	}
	created, err := s.Tasks.CreateTask(r.Context(), req)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, mutationResponse{
		Task:  created,
		Tasks: view.Table(s.Tasks.Tasks(), "", 1, h.pageSize),
	})
}

// HandleUpdate handles PATCH /dashboard/tasks/{id}.
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	var req model.UpdateTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}

	s, ok := sessionFor(h.sessions, w, r)
	if !ok {
		return
	}
	updated, err := s.Tasks.UpdateTask(r.Context(), id, req)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mutationResponse{
		Task:  updated,
		Tasks: view.Table(s.Tasks.Tasks(), "", 1, h.pageSize),
	})
}

// HandleDelete handles DELETE /dashboard/tasks/{id}.
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	s, ok := sessionFor(h.sessions, w, r)
	if !ok {
		return
	}
	if err := s.Tasks.DeleteTask(r.Context(), id); err != nil {
		writeStoreError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func taskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid task id"))
		return 0, false
	}
	return id, true
}
