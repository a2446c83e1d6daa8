// Package lock keeps scrape cycles from overlapping.
package lock

import (
	"context"
	"errors"
	"sync"
)

// ErrNotHeld is returned by Unlock when the caller does not own the lock.
var ErrNotHeld = errors.New("lock not held")

// Local serializes cycles within one process.
type Local struct {
	mu sync.Mutex
}

func NewLocal() *Local {
	return &Local{}
}

func (l *Local) TryLock(_ context.Context) (bool, error) {
	return l.mu.TryLock(), nil
}

func (l *Local) Unlock(_ context.Context) error {
	if l.mu.TryLock() {
		// It was free: undo our own acquisition and report misuse.
		l.mu.Unlock()
		return ErrNotHeld
	}
	l.mu.Unlock()
	return nil
}
