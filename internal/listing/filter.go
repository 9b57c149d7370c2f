package listing

import "strings"

// FilterOptions controls snapshot filtering. The zero value matches
// every listing; each set dimension narrows the result.
type FilterOptions struct {
	// PostalCode matches by prefix, so "902" matches "90210" and "90211".
	PostalCode string

	// Name is a case-insensitive substring match against the item name.
	Name string

	// OfferType matches exactly; empty means all types.
	OfferType OfferType

	// Contact is a case-insensitive substring match against the contact
	// field. A search convenience, not an ownership check.
	Contact string

	// Owner matches the owner identity exactly.
	Owner string
}

// Filter returns the listings matching every set dimension of opts,
// preserving the order of the input. Callers sort beforehand if they
// want a particular order. An empty result is a valid outcome.
func Filter(listings []*Listing, opts FilterOptions) []*Listing {
	var out []*Listing
	for _, l := range listings {
		if matches(l, opts) {
			out = append(out, l)
		}
	}
	return out
}

func matches(l *Listing, opts FilterOptions) bool {
	if opts.PostalCode != "" && !strings.HasPrefix(l.PostalCode, opts.PostalCode) {
		return false
	}
	if opts.Name != "" && !containsFold(l.ItemName, opts.Name) {
		return false
	}
	if opts.OfferType != "" && l.OfferType != opts.OfferType {
		return false
	}
	if opts.Contact != "" && !containsFold(l.Contact, opts.Contact) {
		return false
	}
	if opts.Owner != "" && l.Owner != strings.ToLower(opts.Owner) {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
