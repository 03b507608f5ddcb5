// Package confirm tracks which list rows have an open delete confirmation.
//
// A row is Idle until Request puts it into ConfirmPending together with the
// entity it shows. Resolve closes the dialog and, only when accepted, hands
// that captured entity to the delete function exactly once.
package confirm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nabungemas/internal/cache"
)

// ErrNotPending is returned when resolving a row that has no open dialog.
var ErrNotPending = errors.New("no pending confirmation")

type State int

const (
	Idle State = iota
	ConfirmPending
)

func (s State) String() string {
	if s == ConfirmPending {
		return "confirm_pending"
	}
	return "idle"
}

// DeleteFunc removes the confirmed entity.
type DeleteFunc[T any] func(ctx context.Context, entity T) error

const (
	DefaultTTL     = 10 * time.Minute
	DefaultMaxRows = 256
)

// Flow holds the pending confirmations of one list.
type Flow[T any] struct {
	pending *cache.LRUCache[T]
	del     DeleteFunc[T]
}

// New returns a Flow whose pending rows expire after ttl.
func New[T any](del DeleteFunc[T], ttl time.Duration, maxRows int) *Flow[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	return &Flow[T]{
		pending: cache.NewLRUCache[T](maxRows, ttl),
		del:     del,
	}
}

// Request opens the dialog for key, capturing entity. Requesting an already
// pending row replaces the captured entity.
func (f *Flow[T]) Request(key string, entity T) {
	f.pending.Set(key, entity)
}

// State reports the dialog state of key.
func (f *Flow[T]) State(key string) State {
	if _, ok := f.pending.Get(key); ok {
		return ConfirmPending
	}
	return Idle
}

func (f *Flow[T]) Pending(key string) bool {
	return f.State(key) == ConfirmPending
}

// Resolve closes the dialog for key. When accept is true the captured entity
// is deleted and Resolve reports true. The row returns to Idle even when the
// delete fails.
func (f *Flow[T]) Resolve(ctx context.Context, key string, accept bool) (bool, error) {
	entity, ok := f.pending.Take(key)
	if !ok {
		return false, fmt.Errorf("resolve %q: %w", key, ErrNotPending)
	}
	if !accept {
		return false, nil
	}
	if err := f.del(ctx, entity); err != nil {
		return false, fmt.Errorf("delete %q: %w", key, err)
	}
	return true, nil
}

// Cache exposes the backing store so a cache.Manager can sweep it.
func (f *Flow[T]) Cache() cache.Cleaner {
	return f.pending
}
