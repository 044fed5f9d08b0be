package fs

import "sync"

// Locker serializes read-modify-write cycles against on-disk JSON
// documents. Each document path gets its own mutex, allocated on first
// use; callers wrap the whole reload-mutate-rewrite sequence in Do so a
// concurrent writer can never interleave between the read and the write.
type Locker struct {
	mu   sync.Mutex
	docs map[string]*sync.Mutex
}

func NewLocker() *Locker {
	return &Locker{docs: make(map[string]*sync.Mutex)}
}

// Do runs fn while holding the mutex for the document at path and
// returns fn's error.
func (l *Locker) Do(path string, fn func() error) error {
	l.mu.Lock()
	m, ok := l.docs[path]
	if !ok {
		m = &sync.Mutex{}
		l.docs[path] = m
	}
	l.mu.Unlock()

	m.Lock()
	defer m.Unlock()
	return fn()
}
