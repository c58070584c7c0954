package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/taskdash/taskdash-go/internal/model"
)

// UserAPI is the user endpoint of the task API.
type UserAPI interface {
	List(ctx context.Context) ([]model.User, error)
}

// UserStore owns the in-memory list of assignable users. Users are read-only
// here; the list is fetched on demand.
type UserStore struct {
	api     UserAPI
	timeout time.Duration
	group   singleflight.Group
	subs    observers

	mu     sync.RWMutex
	users  []model.User
	loaded bool
}

// NewUserStore creates an empty UserStore. A zero timeout selects DefaultTimeout.
func NewUserStore(api UserAPI, timeout time.Duration) *UserStore {
	return &UserStore{
		api:     api,
		timeout: timeoutOrDefault(timeout),
		users:   []model.User{},
	}
}

// Users returns a copy of the user list.
func (s *UserStore) Users() []model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.User(nil), s.users...)
}

// Loaded reports whether a fetch has ever succeeded.
func (s *UserStore) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Subscribe registers fn to run after every list replacement.
func (s *UserStore) Subscribe(fn func()) (cancel func()) {
	return s.subs.add(fn)
}

// FetchUsers replaces the user list. Concurrent calls share one request; a
// caller that gives up does not cancel it for the others. On failure the
// previous list is kept.
func (s *UserStore) FetchUsers(ctx context.Context) error {
	ch := s.group.DoChan("users", func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		users, err := s.api.List(fetchCtx)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.users = users
		s.loaded = true
		s.mu.Unlock()

		s.subs.notify()
		return nil, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return fmt.Errorf("%w: %w", ErrFetchFailed, res.Err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrFetchFailed, ctx.Err())
	}
}

// EnsureUsers fetches the user list unless it is already loaded.
func (s *UserStore) EnsureUsers(ctx context.Context) error {
	if s.Loaded() {
		return nil
	}
	return s.FetchUsers(ctx)
}
