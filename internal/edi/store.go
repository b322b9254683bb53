package edi

import "sync"

// Snapshot is an immutable view of the uploaded records.
//
// Generation increases by one on every upload, so derived caches can detect
// a new upload by comparing generation numbers instead of relying on slice
// identity. Records must not be mutated after the snapshot is published.
type Snapshot struct {
	Records    []Record
	Generation uint64
}

// Empty reports whether the snapshot holds no records.
func (s Snapshot) Empty() bool {
	return len(s.Records) == 0
}

// Store holds the current record snapshot.
//
// The snapshot is replaced wholesale on each upload and never mutated in
// place, so readers always observe a consistent record set. In-flight work
// started against an older snapshot simply completes against it.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// NewStore returns an empty store at generation zero.
func NewStore() *Store {
	return &Store{}
}

// Snapshot returns the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Replace swaps in a new record set and returns the resulting snapshot.
func (s *Store) Replace(records []Record) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = Snapshot{
		Records:    records,
		Generation: s.snapshot.Generation + 1,
	}
	return s.snapshot
}
