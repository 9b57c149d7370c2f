// Package rowstore adapts a row-oriented backing medium, such as a
// remote spreadsheet, to the listing store contract. Every read is a
// full snapshot; there is no incremental sync and no caching.
package rowstore

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/localharvest/localharvest/internal/listing"
)

// Row is one record in the backing medium, an ordered list of cells.
type Row []string

// Backend is the row-oriented storage boundary. Connection and
// authentication setup happen before a Backend is handed to a Store.
type Backend interface {
	// AppendRow adds a row at the end of the medium.
	AppendRow(row Row) error

	// AllRows returns every row in storage order.
	AllRows() ([]Row, error)

	// UpdateRow overwrites the row at the given zero-based position.
	UpdateRow(pos int, row Row) error

	// DeleteRow removes the row at the given zero-based position.
	DeleteRow(pos int) error
}

// Column layout of a listing row.
const (
	colID = iota
	colItemName
	colOfferType
	colDescription
	colPostalCode
	colContactMethod
	colContact
	colPrice
	colImage
	colOwner
	colCreatedAt

	rowWidth
)

// encodeRow flattens a listing into a row. The image is carried inline,
// base64-encoded, and the timestamp as RFC 3339.
func encodeRow(l *listing.Listing) Row {
	row := make(Row, rowWidth)
	row[colID] = l.ID
	row[colItemName] = l.ItemName
	row[colOfferType] = string(l.OfferType)
	row[colDescription] = l.Description
	row[colPostalCode] = l.PostalCode
	row[colContactMethod] = string(l.ContactMethod)
	row[colContact] = l.Contact
	row[colPrice] = l.Price
	if l.HasImage() {
		row[colImage] = base64.StdEncoding.EncodeToString(l.Image)
	}
	row[colOwner] = l.Owner
	row[colCreatedAt] = l.CreatedAt.UTC().Format(time.RFC3339Nano)
	return row
}

// decodeRow parses a row back into a listing.
func decodeRow(row Row) (*listing.Listing, error) {
	if len(row) < rowWidth {
		return nil, fmt.Errorf("row has %d cells, want %d", len(row), rowWidth)
	}
	if row[colID] == "" {
		return nil, fmt.Errorf("row has empty id")
	}

	createdAt, err := time.Parse(time.RFC3339Nano, row[colCreatedAt])
	if err != nil {
		return nil, fmt.Errorf("parsing created_at %q: %w", row[colCreatedAt], err)
	}

	var image []byte
	if row[colImage] != "" {
		image, err = base64.StdEncoding.DecodeString(row[colImage])
		if err != nil {
			return nil, fmt.Errorf("decoding image: %w", err)
		}
	}

	return &listing.Listing{
		ID:            row[colID],
		ItemName:      row[colItemName],
		OfferType:     listing.OfferType(row[colOfferType]),
		Description:   row[colDescription],
		PostalCode:    row[colPostalCode],
		ContactMethod: listing.ContactMethod(row[colContactMethod]),
		Contact:       row[colContact],
		Price:         row[colPrice],
		Image:         image,
		Owner:         row[colOwner],
		CreatedAt:     createdAt,
	}, nil
}
