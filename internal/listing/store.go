package listing

// Store is the persistence contract shared by every listing backend:
// the in-memory session store, the SQLite repository, and the remote
// row store. Reads always return a full snapshot in storage order.
type Store interface {
	// Append writes a new listing.
	Append(l *Listing) error

	// ReadAll returns every live listing in storage order, oldest first.
	ReadAll() ([]*Listing, error)

	// FindByID returns the listing with the given ID, or ErrNotFound.
	FindByID(id string) (*Listing, error)

	// Replace overwrites the listing with the same ID in place,
	// preserving identity. Returns ErrNotFound if no such listing exists.
	Replace(l *Listing) error

	// DeleteByID removes the listing with the given ID.
	// Returns ErrNotFound if no such listing exists; callers that want
	// idempotent deletes treat that as a no-op.
	DeleteByID(id string) error
}
