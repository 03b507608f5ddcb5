package viewmodel

import (
	"context"
	"sync"
)

// broadcaster fans the latest value out to subscribers. Each subscriber has a
// one-slot buffer that is overwritten, so a slow reader skips straight to the
// newest value instead of blocking the publisher.
type broadcaster[T any] struct {
	mu     sync.Mutex
	latest T
	has    bool
	subs   map[chan T]struct{}
}

func newBroadcaster[T any]() *broadcaster[T] {
	return &broadcaster[T]{subs: make(map[chan T]struct{})}
}

func (b *broadcaster[T]) publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.latest, b.has = v, true
	for ch := range b.subs {
		offer(ch, v)
	}
}

func (b *broadcaster[T]) snapshot() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.latest, b.has
}

// subscribe replays the latest value, if any, and closes the channel once ctx
// is done.
func (b *broadcaster[T]) subscribe(ctx context.Context) (<-chan T, bool) {
	ch := make(chan T, 1)

	b.mu.Lock()
	had := b.has
	if had {
		ch <- b.latest
	}
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, ch)
		close(ch)
		b.mu.Unlock()
	}()
	return ch, had
}

func (b *broadcaster[T]) subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// offer must be called with the broadcaster locked.
func offer[T any](ch chan T, v T) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}
