package rowstore

import (
	"fmt"

	"github.com/localharvest/localharvest/internal/listing"
)

// Store implements listing.Store over a row-oriented Backend.
type Store struct {
	backend Backend
}

// NewStore creates a listing store over the given backend.
func NewStore(b Backend) *Store {
	return &Store{backend: b}
}

// Append writes a new listing as a row at the end of the medium.
func (s *Store) Append(l *listing.Listing) error {
	if err := s.backend.AppendRow(encodeRow(l)); err != nil {
		return fmt.Errorf("appending row: %w", listing.Unavailable(err))
	}
	return nil
}

// ReadAll returns the full snapshot in storage order. Rows that fail to
// decode are skipped rather than failing the whole read. Duplicate IDs
// are reconciled by keeping the newest created_at: a crashed replace on
// a medium without row update leaves a duplicate, never a loss, and the
// read path hides it.
func (s *Store) ReadAll() ([]*listing.Listing, error) {
	rows, err := s.backend.AllRows()
	if err != nil {
		return nil, fmt.Errorf("reading rows: %w", listing.Unavailable(err))
	}

	var listings []*listing.Listing
	byID := make(map[string]int)
	for _, row := range rows {
		l, err := decodeRow(row)
		if err != nil {
			continue
		}
		if i, ok := byID[l.ID]; ok {
			if l.CreatedAt.After(listings[i].CreatedAt) {
				listings[i] = l
			}
			continue
		}
		byID[l.ID] = len(listings)
		listings = append(listings, l)
	}

	return listings, nil
}

// FindByID scans the snapshot for the listing with the given ID.
func (s *Store) FindByID(id string) (*listing.Listing, error) {
	listings, err := s.ReadAll()
	if err != nil {
		return nil, err
	}
	for _, l := range listings {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, listing.ErrNotFound
}

// Replace overwrites the row holding the listing's ID in place.
func (s *Store) Replace(l *listing.Listing) error {
	pos, err := s.findPosition(l.ID)
	if err != nil {
		return err
	}
	if err := s.backend.UpdateRow(pos, encodeRow(l)); err != nil {
		return fmt.Errorf("updating row %d: %w", pos, listing.Unavailable(err))
	}
	return nil
}

// DeleteByID locates the row positionally and removes it.
func (s *Store) DeleteByID(id string) error {
	pos, err := s.findPosition(id)
	if err != nil {
		return err
	}
	if err := s.backend.DeleteRow(pos); err != nil {
		return fmt.Errorf("deleting row %d: %w", pos, listing.Unavailable(err))
	}
	return nil
}

// findPosition returns the zero-based row position of the given ID.
func (s *Store) findPosition(id string) (int, error) {
	rows, err := s.backend.AllRows()
	if err != nil {
		return 0, fmt.Errorf("reading rows: %w", listing.Unavailable(err))
	}
	for i, row := range rows {
		if len(row) > colID && row[colID] == id {
			return i, nil
		}
	}
	return 0, listing.ErrNotFound
}
