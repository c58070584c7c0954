package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/taskdash/taskdash-go/internal/model"
)

// createKey is the lock key shared by all creates; task ids are positive.
const createKey int64 = 0

// TaskAPI is the task endpoint set of the task API.
type TaskAPI interface {
	List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error)
	Create(ctx context.Context, req model.CreateTaskRequest) (model.Task, error)
	Update(ctx context.Context, id int64, req model.UpdateTaskRequest) (model.Task, error)
	Delete(ctx context.Context, id int64) error
}

// TaskStore owns the in-memory task collection.
//
// Fetches replace the collection wholesale and the collection always reflects
// the most recently issued fetch that succeeded: a response that arrives
// after a later fetch was applied is dropped. Mutations on the same task are
// serialized, and every successful mutation completes a full refetch before
// returning.
type TaskStore struct {
	api     TaskAPI
	timeout time.Duration
	locks   keyedLocks
	subs    observers

	mu      sync.RWMutex
	tasks   []model.Task
	filter  model.TaskFilter
	issued  uint64
	applied uint64
}

// NewTaskStore creates an empty TaskStore. A zero timeout selects DefaultTimeout.
func NewTaskStore(api TaskAPI, timeout time.Duration) *TaskStore {
	return &TaskStore{
		api:     api,
		timeout: timeoutOrDefault(timeout),
		tasks:   []model.Task{},
	}
}

// Tasks returns a copy of the collection in server order.
func (s *TaskStore) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Task(nil), s.tasks...)
}

// Filter reports which server-side subset the collection currently holds.
func (s *TaskStore) Filter() model.TaskFilter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// Snapshot returns a copy of the collection together with the filter it was
// fetched with, read under one lock.
func (s *TaskStore) Snapshot() ([]model.Task, model.TaskFilter) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Task(nil), s.tasks...), s.filter
}

// Subscribe registers fn to run after every collection replacement.
func (s *TaskStore) Subscribe(fn func()) (cancel func()) {
	return s.subs.add(fn)
}

// FetchTasks replaces the collection with every task.
func (s *TaskStore) FetchTasks(ctx context.Context) error {
	return s.fetch(ctx, model.FilterAll)
}

// FetchTasksToday replaces the collection with the tasks due today.
func (s *TaskStore) FetchTasksToday(ctx context.Context) error {
	return s.fetch(ctx, model.FilterToday)
}

// FetchTasksNext7Days replaces the collection with the tasks due in the next
// seven days.
func (s *TaskStore) FetchTasksNext7Days(ctx context.Context) error {
	return s.fetch(ctx, model.FilterNext7Days)
}

// Fetch replaces the collection with the given server-side subset.
func (s *TaskStore) Fetch(ctx context.Context, filter model.TaskFilter) error {
	return s.fetch(ctx, filter)
}

func (s *TaskStore) fetch(ctx context.Context, filter model.TaskFilter) error {
	s.mu.Lock()
	s.issued++
	seq := s.issued
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tasks, err := s.api.List(ctx, filter)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	s.mu.Lock()
	if seq < s.applied {
		s.mu.Unlock()
		slog.Debug("dropping superseded task fetch", "filter", string(filter), "seq", seq)
		return nil
	}
	s.applied = seq
	s.tasks = tasks
	s.filter = filter
	s.mu.Unlock()

	s.subs.notify()
	return nil
}

// CreateTask submits a new task and refetches the full collection. The
// server's copy of the created task is returned. If the refetch fails the
// task exists on the server and the returned error wraps ErrFetchFailed.
func (s *TaskStore) CreateTask(ctx context.Context, req model.CreateTaskRequest) (model.Task, error) {
	if err := req.Validate(); err != nil {
		return model.Task{}, fmt.Errorf("%w: %w", ErrCreateFailed, err)
	}

	unlock := s.locks.lock(createKey)
	defer unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	created, err := s.api.Create(ctx, req)
	if err != nil {
		return model.Task{}, fmt.Errorf("%w: %w", ErrCreateFailed, err)
	}
	slog.Info("task created", "task_id", created.ID)

	if err := s.FetchTasks(ctx); err != nil {
		return created, err
	}
	return created, nil
}

// UpdateTask applies a partial update to task id and refetches the full
// collection.
func (s *TaskStore) UpdateTask(ctx context.Context, id int64, req model.UpdateTaskRequest) (model.Task, error) {
	if err := req.Validate(); err != nil {
		return model.Task{}, fmt.Errorf("%w: %w", ErrUpdateFailed, err)
	}

	unlock := s.locks.lock(id)
	defer unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	updated, err := s.api.Update(ctx, id, req)
	if err != nil {
		return model.Task{}, fmt.Errorf("%w: %w", ErrUpdateFailed, err)
	}
	slog.Info("task updated", "task_id", id)

	if err := s.FetchTasks(ctx); err != nil {
		return updated, err
	}
	return updated, nil
}

// DeleteTask deletes task id and refetches the full collection. On failure
// the collection is left unchanged, so the task stays visible.
func (s *TaskStore) DeleteTask(ctx context.Context, id int64) error {
	unlock := s.locks.lock(id)
	defer unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.api.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: %w", ErrDeleteFailed, err)
	}
	slog.Info("task deleted", "task_id", id)

	return s.FetchTasks(ctx)
}
