package listing

import "sync"

// MemoryStore is a session-scoped in-memory listing store. State lives
// for the lifetime of the process and is discarded on exit. It is also
// the test double used throughout the repo.
type MemoryStore struct {
	mu       sync.Mutex
	listings []*Listing
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append adds a listing to the end of the sequence.
func (s *MemoryStore) Append(l *Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listings = append(s.listings, l.Clone())
	return nil
}

// ReadAll returns a snapshot of every listing in insertion order.
func (s *MemoryStore) ReadAll() ([]*Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Listing, len(s.listings))
	for i, l := range s.listings {
		out[i] = l.Clone()
	}
	return out, nil
}

// FindByID returns the listing with the given ID, or ErrNotFound.
func (s *MemoryStore) FindByID(id string) (*Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range s.listings {
		if l.ID == id {
			return l.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

// Replace overwrites the stored listing with the same ID in place.
func (s *MemoryStore) Replace(l *Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.listings {
		if existing.ID == l.ID {
			s.listings[i] = l.Clone()
			return nil
		}
	}
	return ErrNotFound
}

// DeleteByID removes the listing with the given ID.
func (s *MemoryStore) DeleteByID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, l := range s.listings {
		if l.ID == id {
			s.listings = append(s.listings[:i], s.listings[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
