// Package store holds the client-side state containers that mirror the task
// API: the credential store and the task and user collection stores.
//
// Stores are safe for concurrent use. Collection state is replaced wholesale
// from server responses; mutations are followed by a full refetch.
package store

import (
	"errors"
	"sync"
	"time"
)

// DefaultTimeout bounds every store operation unless a store is built with
// its own timeout.
const DefaultTimeout = 15 * time.Second

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrFetchFailed        = errors.New("fetch failed")
	ErrCreateFailed       = errors.New("create task failed")
	ErrUpdateFailed       = errors.New("update task failed")
	ErrDeleteFailed       = errors.New("delete task failed")
)

func timeoutOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultTimeout
	}
	return d
}

// observers is a set of change callbacks.
type observers struct {
	mu   sync.Mutex
	next int
	fns  map[int]func()
}

func (o *observers) add(fn func()) (cancel func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fns == nil {
		o.fns = make(map[int]func())
	}
	id := o.next
	o.next++
	o.fns[id] = fn
	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.fns, id)
	}
}

func (o *observers) notify() {
	o.mu.Lock()
	fns := make([]func(), 0, len(o.fns))
	for _, fn := range o.fns {
		fns = append(fns, fn)
	}
	o.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// keyedLocks serializes work per key. Entries are dropped once unused.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[int64]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedLocks) lock(key int64) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[int64]*keyedLock)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
