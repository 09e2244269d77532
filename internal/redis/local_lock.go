package redisclient

import (
	"context"
	"sync"
)

// LocalSlotLocker is an in-process Locker with the same try-lock semantics as
// the Redis one. It only serialises callers inside a single process.
type LocalSlotLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewLocalSlotLocker() *LocalSlotLocker {
	return &LocalSlotLocker{held: make(map[string]struct{})}
}

func (l *LocalSlotLocker) WithSlotLock(ctx context.Context, keys []string, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	for _, k := range keys {
		if _, busy := l.held[k]; busy {
			l.mu.Unlock()
			return ErrLockNotAcquired
		}
	}
	for _, k := range keys {
		l.held[k] = struct{}{}
	}
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		for _, k := range keys {
			delete(l.held, k)
		}
		l.mu.Unlock()
	}()

	return fn(ctx)
}
