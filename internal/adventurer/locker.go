package adventurer

import (
	"context"
	"sync"
)

// MemoryLocker is an in-process Locker: one mutex per character id, created
// on demand and dropped once nobody holds or waits for it.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	sem  chan struct{}
	refs int
}

// NewMemoryLocker returns an empty MemoryLocker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]*keyLock)}
}

// Acquire blocks until id's lock is held or ctx is done.
//
// Postcondition: on success the returned release func must be called exactly
// once; on failure the error is ctx.Err().
func (l *MemoryLocker) Acquire(ctx context.Context, id string) (func(), error) {
	l.mu.Lock()
	kl, ok := l.locks[id]
	if !ok {
		kl = &keyLock{sem: make(chan struct{}, 1)}
		l.locks[id] = kl
	}
	kl.refs++
	l.mu.Unlock()

	select {
	case kl.sem <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-kl.sem
				l.unref(id, kl)
			})
		}, nil
	case <-ctx.Done():
		l.unref(id, kl)
		return nil, ctx.Err()
	}
}

func (l *MemoryLocker) unref(id string, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, id)
	}
}

// Held returns how many ids currently have a holder or waiter.
func (l *MemoryLocker) Held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
