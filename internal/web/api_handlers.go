package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/localharvest/localharvest/internal/auth"
	"github.com/localharvest/localharvest/internal/listing"
)

// apiError writes a JSON error response.
func apiError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	resp := map[string]string{"error": msg}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, `{"error":"encode failed"}`, http.StatusInternalServerError)
	}
}

// apiJSON writes a JSON response with the given status code.
func apiJSON(w http.ResponseWriter, data interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"error":"encode failed"}`, http.StatusInternalServerError)
	}
}

// storeError maps store failures onto HTTP responses.
func storeError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, listing.ErrNotFound):
		apiError(w, "listing not found", http.StatusNotFound)
	case errors.Is(err, listing.ErrUnavailable):
		apiError(w, fmt.Sprintf("%s: store unavailable", action), http.StatusServiceUnavailable)
	default:
		apiError(w, fmt.Sprintf("%s: %v", action, err), http.StatusInternalServerError)
	}
}

// listingRequest is the JSON body for creating or updating a listing.
// The image arrives base64-encoded in the JSON payload.
type listingRequest struct {
	ItemName      string `json:"item_name"`
	OfferType     string `json:"offer_type"`
	Description   string `json:"description"`
	PostalCode    string `json:"postal_code"`
	ContactMethod string `json:"contact_method"`
	Contact       string `json:"contact"`
	Price         string `json:"price"`
	Image         []byte `json:"image,omitempty"`
}

func (req listingRequest) fields() listing.Fields {
	return listing.Fields{
		ItemName:      req.ItemName,
		OfferType:     req.OfferType,
		Description:   req.Description,
		PostalCode:    req.PostalCode,
		ContactMethod: req.ContactMethod,
		Contact:       req.Contact,
		Price:         req.Price,
		Image:         req.Image,
	}
}

// handleAPIListings routes /api/listings requests.
func (s *Server) handleAPIListings(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/listings")
	path = strings.TrimPrefix(path, "/")

	// /api/listings: browse or post
	if path == "" {
		switch r.Method {
		case http.MethodGet:
			s.apiListListings(w, r)
		case http.MethodPost:
			s.apiCreateListing(w, r)
		default:
			apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	// /api/listings/{id}/image
	if strings.HasSuffix(path, "/image") {
		id := strings.TrimSuffix(path, "/image")
		if r.Method != http.MethodGet {
			apiError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.apiGetImage(w, id)
		return
	}

	// /api/listings/{id}: show, edit, or remove
	switch r.Method {
	case http.MethodGet:
		s.apiGetListing(w, path)
	case http.MethodPut:
		s.apiUpdateListing(w, r, path)
	case http.MethodDelete:
		s.apiDeleteListing(w, r, path)
	default:
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// apiListListings returns listings as JSON, newest first.
// Supports zip, q, type, contact, and mine query filters.
func (s *Server) apiListListings(w http.ResponseWriter, r *http.Request) {
	opts := listing.FilterOptions{
		PostalCode: strings.TrimSpace(r.URL.Query().Get("zip")),
		Name:       strings.TrimSpace(r.URL.Query().Get("q")),
		Contact:    strings.TrimSpace(r.URL.Query().Get("contact")),
	}

	if typeStr := r.URL.Query().Get("type"); typeStr != "" {
		if !listing.ValidOfferType(typeStr) {
			apiError(w, "type must be trade, sell, or trade_or_sell", http.StatusBadRequest)
			return
		}
		opts.OfferType = listing.OfferType(typeStr)
	}

	if mineStr := r.URL.Query().Get("mine"); mineStr == "true" {
		identity := auth.Identity(r)
		if identity == "" {
			apiError(w, "mine requires authentication", http.StatusUnauthorized)
			return
		}
		opts.Owner = identity
	}

	all, err := s.store.ReadAll()
	if err != nil {
		storeError(w, err, "listing listings")
		return
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	result := listing.Filter(all, opts)
	if result == nil {
		result = make([]*listing.Listing, 0)
	}

	apiJSON(w, result, http.StatusOK)
}

// apiCreateListing validates and appends a new listing.
func (s *Server) apiCreateListing(w http.ResponseWriter, r *http.Request) {
	var req listingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	l, err := listing.BuildNew(req.fields(), auth.Identity(r))
	if err != nil {
		if listing.IsValidationError(err) {
			apiError(w, err.Error(), http.StatusBadRequest)
			return
		}
		apiError(w, fmt.Sprintf("building listing: %v", err), http.StatusInternalServerError)
		return
	}

	if err := s.store.Append(l); err != nil {
		storeError(w, err, "saving listing")
		return
	}

	apiJSON(w, l, http.StatusCreated)
}

// apiGetListing returns a single listing.
func (s *Server) apiGetListing(w http.ResponseWriter, id string) {
	l, err := s.store.FindByID(id)
	if err != nil {
		storeError(w, err, "loading listing")
		return
	}
	apiJSON(w, l, http.StatusOK)
}

// apiUpdateListing replaces a listing in place, keeping its ID and owner.
// Only the owner (or the admin) may edit.
func (s *Server) apiUpdateListing(w http.ResponseWriter, r *http.Request, id string) {
	prev, err := s.store.FindByID(id)
	if err != nil {
		storeError(w, err, "loading listing")
		return
	}

	identity := auth.Identity(r)
	if !s.canModify(identity, prev) {
		apiError(w, "not your listing", http.StatusForbidden)
		return
	}

	var req listingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	updated, err := listing.BuildUpdate(prev, req.fields())
	if err != nil {
		if listing.IsValidationError(err) {
			apiError(w, err.Error(), http.StatusBadRequest)
			return
		}
		apiError(w, fmt.Sprintf("building listing: %v", err), http.StatusInternalServerError)
		return
	}

	if err := s.store.Replace(updated); err != nil {
		storeError(w, err, "updating listing")
		return
	}

	apiJSON(w, updated, http.StatusOK)
}

// apiDeleteListing removes a listing. Deleting one that is already gone
// still reports success, so a stale client can't fail its cleanup.
func (s *Server) apiDeleteListing(w http.ResponseWriter, r *http.Request, id string) {
	prev, err := s.store.FindByID(id)
	if err != nil {
		if errors.Is(err, listing.ErrNotFound) {
			apiJSON(w, map[string]interface{}{"id": id, "removed": true}, http.StatusOK)
			return
		}
		storeError(w, err, "loading listing")
		return
	}

	identity := auth.Identity(r)
	if !s.canModify(identity, prev) {
		apiError(w, "not your listing", http.StatusForbidden)
		return
	}

	if err := s.store.DeleteByID(id); err != nil && !errors.Is(err, listing.ErrNotFound) {
		storeError(w, err, "deleting listing")
		return
	}

	apiJSON(w, map[string]interface{}{"id": id, "removed": true}, http.StatusOK)
}

// apiGetImage serves the listing's inline image with a sniffed content type.
func (s *Server) apiGetImage(w http.ResponseWriter, id string) {
	l, err := s.store.FindByID(id)
	if err != nil {
		storeError(w, err, "loading listing")
		return
	}
	if !l.HasImage() {
		apiError(w, "listing has no image", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(l.Image))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(l.Image); err != nil {
		return
	}
}

func (s *Server) canModify(identity string, l *listing.Listing) bool {
	if identity == "" {
		return false
	}
	return identity == l.Owner || s.users.IsAdmin(identity)
}
