package listing

import (
	"database/sql"
	"fmt"
)

// Repository is the SQLite-backed listing store, the durable single-node
// variant of Store.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a listing repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const insertSQL = `INSERT INTO listings
	(id, item_name, offer_type, description, postal_code, contact_method, contact, price, image, owner, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const selectColumns = `id, item_name, offer_type, description, postal_code, contact_method, contact, price, image, owner, created_at`

// Append writes a new listing.
func (r *Repository) Append(l *Listing) error {
	_, err := r.db.Exec(insertSQL,
		l.ID, l.ItemName, string(l.OfferType), l.Description,
		l.PostalCode, string(l.ContactMethod), l.Contact, l.Price,
		l.Image, l.Owner, l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("appending listing: %w", Unavailable(err))
	}
	return nil
}

// ReadAll returns every listing in insertion order.
func (r *Repository) ReadAll() ([]*Listing, error) {
	query := fmt.Sprintf("SELECT %s FROM listings ORDER BY rowid", selectColumns)
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("reading listings: %w", Unavailable(err))
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	var listings []*Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning listing: %w", err)
		}
		listings = append(listings, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating listings: %w", Unavailable(err))
	}

	return listings, nil
}

// FindByID returns the listing with the given ID, or ErrNotFound.
func (r *Repository) FindByID(id string) (*Listing, error) {
	query := fmt.Sprintf("SELECT %s FROM listings WHERE id = ?", selectColumns)
	row := r.db.QueryRow(query, id)

	l, err := scanListing(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying listing %s: %w", id, err)
	}

	return l, nil
}

// Replace overwrites the listing with the same ID in a single update,
// so an edit never passes through a deleted state.
func (r *Repository) Replace(l *Listing) error {
	result, err := r.db.Exec(
		`UPDATE listings SET item_name = ?, offer_type = ?, description = ?,
			postal_code = ?, contact_method = ?, contact = ?, price = ?,
			image = ?, created_at = ?
		WHERE id = ?`,
		l.ItemName, string(l.OfferType), l.Description,
		l.PostalCode, string(l.ContactMethod), l.Contact, l.Price,
		l.Image, l.CreatedAt, l.ID,
	)
	if err != nil {
		return fmt.Errorf("replacing listing: %w", Unavailable(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteByID removes the listing with the given ID.
func (r *Repository) DeleteByID(id string) error {
	result, err := r.db.Exec("DELETE FROM listings WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting listing: %w", Unavailable(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// scanListing scans a listing from a database row.
func scanListing(row interface{ Scan(...interface{}) error }) (*Listing, error) {
	var l Listing
	var offerType, contactMethod string
	var image []byte

	err := row.Scan(
		&l.ID, &l.ItemName, &offerType, &l.Description,
		&l.PostalCode, &contactMethod, &l.Contact, &l.Price,
		&image, &l.Owner, &l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.OfferType = OfferType(offerType)
	l.ContactMethod = ContactMethod(contactMethod)
	l.Image = image

	return &l, nil
}
