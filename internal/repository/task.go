package repository

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/taskdash/taskdash-go/internal/model"
)

// TaskRepository handles task operations against the task API.
type TaskRepository struct {
	client *Client
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(client *Client) *TaskRepository {
	return &TaskRepository{client: client}
}

// List retrieves tasks in server order. A non-empty filter narrows the
// result to the matching deadline window.
func (r *TaskRepository) List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	var query url.Values
	if filter != model.FilterAll {
		query = url.Values{"filter": {string(filter)}}
	}

	var tasks []model.Task
	if err := r.client.do(ctx, http.MethodGet, "/tasks", query, nil, &tasks, ""); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}

// Create submits a new task and returns the server's copy of it.
func (r *TaskRepository) Create(ctx context.Context, req model.CreateTaskRequest) (model.Task, error) {
	var created model.Task
	if err := r.client.do(ctx, http.MethodPost, "/tasks", nil, req, &created, ""); err != nil {
		return model.Task{}, err
	}
	return created, nil
}

// Update applies a partial update to the task with the given id.
func (r *TaskRepository) Update(ctx context.Context, id int64, req model.UpdateTaskRequest) (model.Task, error) {
	var updated model.Task
	if err := r.client.do(ctx, http.MethodPatch, taskPath(id), nil, req, &updated, ""); err != nil {
		return model.Task{}, err
	}
	return updated, nil
}

// Delete removes the task with the given id.
func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	return r.client.do(ctx, http.MethodDelete, taskPath(id), nil, nil, nil, "")
}

func taskPath(id int64) string {
	return "/tasks/" + strconv.FormatInt(id, 10)
}
