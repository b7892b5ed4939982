package contract

import (
	"sync"

	"github.com/google/uuid"
)

// contractLocks serializes lifecycle mutations per contract so concurrent
// amend/renew/terminate calls on the same aggregate queue up instead of
// racing to a version conflict. Entries are never evicted; the set of
// contracts mutated concurrently within one process stays small.
type contractLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newContractLocks() *contractLocks {
	return &contractLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

// Lock acquires the mutex for the given contract and returns the unlock func
func (l *contractLocks) Lock(id uuid.UUID) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
