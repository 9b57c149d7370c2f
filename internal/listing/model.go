// Package listing provides the listing domain model and data access.
package listing

import "time"

// OfferType says whether a listing is offered for trade, for sale, or either.
type OfferType string

const (
	OfferTrade       OfferType = "trade"
	OfferSell        OfferType = "sell"
	OfferTradeOrSell OfferType = "trade_or_sell"
)

// ValidOfferType returns true if s is a known offer type.
func ValidOfferType(s string) bool {
	switch OfferType(s) {
	case OfferTrade, OfferSell, OfferTradeOrSell:
		return true
	}
	return false
}

// ContactMethod is the preferred way to reach a listing's owner.
type ContactMethod string

const (
	ContactEmail ContactMethod = "email"
	ContactPhone ContactMethod = "phone"
	ContactBoth  ContactMethod = "both"
)

// ValidContactMethod returns true if s is a known contact method.
func ValidContactMethod(s string) bool {
	switch ContactMethod(s) {
	case ContactEmail, ContactPhone, ContactBoth:
		return true
	}
	return false
}

// Listing represents a single produce trade or sale record.
// Image holds the raw attachment bytes; it marshals to base64 in JSON
// and is stored inline by every store backend.
type Listing struct {
	ID            string        `json:"id"`
	ItemName      string        `json:"item_name"`
	OfferType     OfferType     `json:"offer_type"`
	Description   string        `json:"description,omitempty"`
	PostalCode    string        `json:"postal_code"`
	ContactMethod ContactMethod `json:"contact_method"`
	Contact       string        `json:"contact"`
	Price         string        `json:"price,omitempty"`
	Image         []byte        `json:"image,omitempty"`
	Owner         string        `json:"owner,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// HasImage returns true if the listing carries an image attachment.
func (l *Listing) HasImage() bool {
	return len(l.Image) > 0
}

// Clone returns a deep copy of the listing.
// Stores hand out clones so callers can't mutate shared state.
func (l *Listing) Clone() *Listing {
	c := *l
	if l.Image != nil {
		c.Image = make([]byte, len(l.Image))
		copy(c.Image, l.Image)
	}
	return &c
}
