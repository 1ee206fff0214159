package ingest

import "sync"

// subjectLocks serializes the read-then-write window per subject:
// the trailing-count read and the activity append for one subject
// must not interleave, or two concurrent events would both read a
// count that excludes the other. Subjects are independent, so locks
// are keyed rather than global.
type subjectLocks struct {
	mu    sync.Mutex
	locks map[string]*subjectLock
}

type subjectLock struct {
	mu   sync.Mutex
	refs int
}

func newSubjectLocks() *subjectLocks {
	return &subjectLocks{locks: make(map[string]*subjectLock)}
}

// lock acquires the subject's critical section and returns its
// unlock function
func (s *subjectLocks) lock(subjectID string) func() {
	s.mu.Lock()
	l, ok := s.locks[subjectID]
	if !ok {
		l = &subjectLock{}
		s.locks[subjectID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, subjectID)
		}
		s.mu.Unlock()
	}
}
