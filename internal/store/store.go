// Package store holds request artifacts in memory for a short window:
// uploaded bytes between the analyze and mask steps, and finished masked
// files until they are downloaded. Entries expire on a TTL and nothing
// ever touches disk or an external system.
package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// File is a stored artifact.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

type entry struct {
	file     File
	storedAt time.Time
}

// Store is an in-memory TTL store keyed by generated ids.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	done    chan struct{}
}

// New creates a store and starts its expiry sweeper. The sweeper stops
// when Close is called.
func New(ttl time.Duration) *Store {
	s := &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		done:    make(chan struct{}),
	}
	go s.sweep()
	return s
}

// Put stores a file and returns its id.
func (s *Store) Put(f File) string {
	id := uuid.NewString()

	s.mu.Lock()
	s.entries[id] = entry{file: f, storedAt: time.Now()}
	s.mu.Unlock()

	return id
}

// Get returns the file for id if it exists and has not expired.
func (s *Store) Get(id string) (File, bool) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()

	if !ok || time.Since(e.storedAt) > s.ttl {
		return File{}, false
	}
	return e.file, true
}

// Take returns the file for id and removes it. Used for the upload
// cache, which is consumed exactly once by the mask step.
func (s *Store) Take(id string) (File, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return File{}, false
	}
	delete(s.entries, id)

	if time.Since(e.storedAt) > s.ttl {
		return File{}, false
	}
	return e.file, true
}

// Delete removes an entry if present.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
}

// Len returns the number of live entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close stops the expiry sweeper.
func (s *Store) Close() {
	close(s.done)
}

func (s *Store) sweep() {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-s.ttl)
			s.mu.Lock()
			for id, e := range s.entries {
				if e.storedAt.Before(cutoff) {
					delete(s.entries, id)
				}
			}
			s.mu.Unlock()
		}
	}
}
