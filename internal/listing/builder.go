package listing

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Fields holds the raw submission values handed over by the rendering
// boundary. Everything arrives as strings plus an optional image payload.
type Fields struct {
	ItemName      string
	OfferType     string
	Description   string
	PostalCode    string
	ContactMethod string
	Contact       string
	Price         string
	Image         []byte
}

// BuildNew validates the submitted fields and constructs a new listing
// with a freshly generated ID, the submission time, and the given owner.
// It performs no store writes.
func BuildNew(f Fields, owner string) (*Listing, error) {
	l, err := build(f)
	if err != nil {
		return nil, err
	}

	l.ID = uuid.NewString()
	l.Owner = strings.ToLower(strings.TrimSpace(owner))
	l.CreatedAt = time.Now().UTC()
	return l, nil
}

// BuildUpdate validates the submitted fields and constructs a replacement
// for prev. The ID and owner are reused so identity and ownership carry
// over; CreatedAt is overwritten with the update time. When no replacement
// image is supplied the previous image is carried forward unchanged.
func BuildUpdate(prev *Listing, f Fields) (*Listing, error) {
	l, err := build(f)
	if err != nil {
		return nil, err
	}

	l.ID = prev.ID
	l.Owner = prev.Owner
	l.CreatedAt = time.Now().UTC()
	if l.Image == nil && prev.HasImage() {
		l.Image = make([]byte, len(prev.Image))
		copy(l.Image, prev.Image)
	}
	return l, nil
}

// build normalizes and validates fields into a listing without identity.
func build(f Fields) (*Listing, error) {
	itemName := strings.TrimSpace(f.ItemName)
	postalCode := strings.TrimSpace(f.PostalCode)
	contact := strings.TrimSpace(f.Contact)

	if itemName == "" {
		return nil, &ValidationError{Field: "item_name", Reason: "must not be empty"}
	}
	if postalCode == "" {
		return nil, &ValidationError{Field: "postal_code", Reason: "must not be empty"}
	}
	if contact == "" {
		return nil, &ValidationError{Field: "contact", Reason: "must not be empty"}
	}
	if !ValidOfferType(f.OfferType) {
		return nil, &ValidationError{Field: "offer_type", Reason: "must be trade, sell, or trade_or_sell"}
	}

	method := f.ContactMethod
	if method == "" {
		method = string(ContactEmail)
	}
	if !ValidContactMethod(method) {
		return nil, &ValidationError{Field: "contact_method", Reason: "must be email, phone, or both"}
	}

	price := strings.TrimSpace(f.Price)
	if OfferType(f.OfferType) == OfferTrade {
		// A pure-trade listing has no price.
		price = ""
	}

	return &Listing{
		ItemName:      itemName,
		OfferType:     OfferType(f.OfferType),
		Description:   strings.TrimSpace(f.Description),
		PostalCode:    postalCode,
		ContactMethod: ContactMethod(method),
		Contact:       contact,
		Price:         price,
		Image:         f.Image,
	}, nil
}
