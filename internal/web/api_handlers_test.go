package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/localharvest/localharvest/internal/auth"
	"github.com/localharvest/localharvest/internal/db"
	"github.com/localharvest/localharvest/internal/listing"
)

// testServer creates a server over a memory listing store and returns
// bearer tokens for two different users plus the admin.
func testServer(t *testing.T) (*Server, string, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	d, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if cerr := d.Close(); cerr != nil {
			t.Errorf("close db: %v", cerr)
		}
	})

	cfg := auth.Config{
		AdminEmail: "admin@example.com",
		DevMode:    true,
		BaseURL:    "http://localhost:8080",
	}
	srv, err := NewServer(d, listing.NewMemoryStore(), cfg)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	if _, err := srv.users.Add("alice@example.com", "Alice"); err != nil {
		t.Fatalf("add user: %v", err)
	}
	if _, err := srv.users.Add("bob@example.com", "Bob"); err != nil {
		t.Fatalf("add user: %v", err)
	}

	aliceKey, _, err := srv.apiKeys.Create("test", "alice@example.com")
	if err != nil {
		t.Fatalf("create api key: %v", err)
	}
	bobKey, _, err := srv.apiKeys.Create("test", "bob@example.com")
	if err != nil {
		t.Fatalf("create api key: %v", err)
	}

	return srv, aliceKey, bobKey
}

func apiRequest(t *testing.T, srv *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = &bytes.Buffer{}
	}

	r := httptest.NewRequest(method, path, reqBody)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, r)
	return w
}

func testListingBody(name, offerType, zip string) listingRequest {
	return listingRequest{
		ItemName:   name,
		OfferType:  offerType,
		PostalCode: zip,
		Contact:    "alice@example.com",
		Price:      "5.00",
	}
}

func createListing(t *testing.T, srv *Server, token string, body listingRequest) *listing.Listing {
	t.Helper()
	w := apiRequest(t, srv, "POST", "/api/listings", token, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}
	var l listing.Listing
	if err := json.NewDecoder(w.Body).Decode(&l); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return &l
}

func TestAPICreateListing(t *testing.T) {
	srv, alice, _ := testServer(t)

	l := createListing(t, srv, alice, testListingBody("Tomatoes", "sell", "90210"))

	if l.ID == "" {
		t.Error("expected generated ID")
	}
	if l.Owner != "alice@example.com" {
		t.Errorf("owner = %q, want alice@example.com", l.Owner)
	}
	if l.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
}

func TestAPICreateListingValidation(t *testing.T) {
	srv, alice, _ := testServer(t)

	tests := []struct {
		name string
		body listingRequest
	}{
		{"missing item name", testListingBody("", "sell", "90210")},
		{"missing postal code", testListingBody("Tomatoes", "sell", "")},
		{"bad offer type", testListingBody("Tomatoes", "barter", "90210")},
		{"missing contact", listingRequest{ItemName: "Tomatoes", OfferType: "sell", PostalCode: "90210"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := apiRequest(t, srv, "POST", "/api/listings", alice, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestAPICreateListingTradeDropsPrice(t *testing.T) {
	srv, alice, _ := testServer(t)

	body := testListingBody("Zucchini", "trade", "90210")
	body.Price = "4.50"
	l := createListing(t, srv, alice, body)

	if l.Price != "" {
		t.Errorf("price = %q, want empty for trade listing", l.Price)
	}
}

func TestAPIListListingsNewestFirst(t *testing.T) {
	srv, alice, _ := testServer(t)

	first := createListing(t, srv, alice, testListingBody("Apples", "sell", "90210"))
	second := createListing(t, srv, alice, testListingBody("Pears", "sell", "90211"))

	w := apiRequest(t, srv, "GET", "/api/listings", alice, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var listings []*listing.Listing
	if err := json.NewDecoder(w.Body).Decode(&listings); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("got %d listings, want 2", len(listings))
	}
	if listings[0].ID != second.ID && listings[0].CreatedAt.Before(listings[1].CreatedAt) {
		t.Errorf("expected newest first, got %q then %q", listings[0].ItemName, listings[1].ItemName)
	}
	_ = first
}

func TestAPIListListingsEmpty(t *testing.T) {
	srv, alice, _ := testServer(t)

	w := apiRequest(t, srv, "GET", "/api/listings", alice, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if body := w.Body.String(); body != "[]\n" {
		t.Errorf("body = %q, want empty JSON array", body)
	}
}

func TestAPIListListingsFilters(t *testing.T) {
	srv, alice, bob := testServer(t)

	createListing(t, srv, alice, testListingBody("Heirloom Tomatoes", "sell", "90210"))
	createListing(t, srv, alice, testListingBody("Zucchini", "trade", "90211"))
	createListing(t, srv, bob, testListingBody("Tomato Starts", "trade_or_sell", "10001"))

	tests := []struct {
		name  string
		query string
		token string
		want  int
	}{
		{"zip prefix", "?zip=902", alice, 2},
		{"zip exact", "?zip=90210", alice, 1},
		{"zip no match", "?zip=99999", alice, 0},
		{"name substring", "?q=tomato", alice, 2},
		{"offer type", "?type=trade", alice, 1},
		{"contact", "?contact=alice", alice, 3},
		{"mine alice", "?mine=true", alice, 2},
		{"mine bob", "?mine=true", bob, 1},
		{"combined", "?zip=902&q=tomato", alice, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := apiRequest(t, srv, "GET", "/api/listings"+tt.query, tt.token, nil)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
			}
			var listings []*listing.Listing
			if err := json.NewDecoder(w.Body).Decode(&listings); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(listings) != tt.want {
				t.Errorf("got %d listings, want %d", len(listings), tt.want)
			}
		})
	}
}

func TestAPIListListingsBadType(t *testing.T) {
	srv, alice, _ := testServer(t)

	w := apiRequest(t, srv, "GET", "/api/listings?type=barter", alice, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestAPIGetListing(t *testing.T) {
	srv, alice, _ := testServer(t)

	created := createListing(t, srv, alice, testListingBody("Eggs", "sell", "90210"))

	w := apiRequest(t, srv, "GET", "/api/listings/"+created.ID, alice, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var l listing.Listing
	if err := json.NewDecoder(w.Body).Decode(&l); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if l.ID != created.ID {
		t.Errorf("id = %q, want %q", l.ID, created.ID)
	}
}

func TestAPIGetListingNotFound(t *testing.T) {
	srv, alice, _ := testServer(t)

	w := apiRequest(t, srv, "GET", "/api/listings/nope", alice, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestAPIUpdateListing(t *testing.T) {
	srv, alice, _ := testServer(t)

	created := createListing(t, srv, alice, testListingBody("Eggs", "sell", "90210"))

	body := testListingBody("Duck Eggs", "trade_or_sell", "90210")
	w := apiRequest(t, srv, "PUT", "/api/listings/"+created.ID, alice, body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var updated listing.Listing
	if err := json.NewDecoder(w.Body).Decode(&updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated.ID != created.ID {
		t.Errorf("id changed on update: %q -> %q", created.ID, updated.ID)
	}
	if updated.ItemName != "Duck Eggs" {
		t.Errorf("item_name = %q, want Duck Eggs", updated.ItemName)
	}
	if updated.Owner != "alice@example.com" {
		t.Errorf("owner = %q, want alice@example.com", updated.Owner)
	}

	// No second copy appears after the edit
	list := apiRequest(t, srv, "GET", "/api/listings", alice, nil)
	var listings []*listing.Listing
	if err := json.NewDecoder(list.Body).Decode(&listings); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listings) != 1 {
		t.Errorf("got %d listings after update, want 1", len(listings))
	}
}

func TestAPIUpdateListingForbidden(t *testing.T) {
	srv, alice, bob := testServer(t)

	created := createListing(t, srv, alice, testListingBody("Eggs", "sell", "90210"))

	w := apiRequest(t, srv, "PUT", "/api/listings/"+created.ID, bob, testListingBody("Stolen Eggs", "sell", "90210"))
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestAPIDeleteListing(t *testing.T) {
	srv, alice, _ := testServer(t)

	created := createListing(t, srv, alice, testListingBody("Eggs", "sell", "90210"))

	w := apiRequest(t, srv, "DELETE", "/api/listings/"+created.ID, alice, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	w = apiRequest(t, srv, "GET", "/api/listings/"+created.ID, alice, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status after delete = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestAPIDeleteListingMissingIsNoop(t *testing.T) {
	srv, alice, _ := testServer(t)

	w := apiRequest(t, srv, "DELETE", "/api/listings/already-gone", alice, nil)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestAPIDeleteListingForbidden(t *testing.T) {
	srv, alice, bob := testServer(t)

	created := createListing(t, srv, alice, testListingBody("Eggs", "sell", "90210"))

	w := apiRequest(t, srv, "DELETE", "/api/listings/"+created.ID, bob, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestAPIListingImage(t *testing.T) {
	srv, alice, _ := testServer(t)

	// Tiny PNG header is enough for content sniffing
	png := []byte("\x89PNG\r\n\x1a\n0000000000")
	body := testListingBody("Honey", "sell", "90210")
	body.Image = png
	created := createListing(t, srv, alice, body)

	w := apiRequest(t, srv, "GET", "/api/listings/"+created.ID+"/image", alice, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q, want image/png", ct)
	}
	if !bytes.Equal(w.Body.Bytes(), png) {
		t.Error("image bytes do not round-trip")
	}
}

func TestAPIListingImageMissing(t *testing.T) {
	srv, alice, _ := testServer(t)

	created := createListing(t, srv, alice, testListingBody("Honey", "sell", "90210"))

	w := apiRequest(t, srv, "GET", "/api/listings/"+created.ID+"/image", alice, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestAPIRequiresAuth(t *testing.T) {
	srv, _, _ := testServer(t)

	w := apiRequest(t, srv, "GET", "/api/listings", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestAPIInvalidKey(t *testing.T) {
	srv, _, _ := testServer(t)

	w := apiRequest(t, srv, "GET", "/api/listings", "lh_bogus", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

// bearerRequest issues a GET /api/listings with a fixed client address,
// so rate limiter state stays isolated per test.
func bearerRequest(t *testing.T, srv *Server, token, remoteAddr string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest("GET", "/api/listings", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	r.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, r)
	return w
}

func TestAPIValidKeyNotRateLimited(t *testing.T) {
	srv, alice, _ := testServer(t)

	for i := 0; i < 25; i++ {
		w := bearerRequest(t, srv, alice, "10.1.1.1:5000")
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i+1, w.Code, http.StatusOK)
		}
	}
}

func TestAPIInvalidKeyRateLimited(t *testing.T) {
	srv, _, _ := testServer(t)

	for i := 0; i < 10; i++ {
		w := bearerRequest(t, srv, "lh_bogus", "10.2.2.2:5000")
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: status = %d, want %d", i+1, w.Code, http.StatusUnauthorized)
		}
	}

	if w := bearerRequest(t, srv, "lh_bogus", "10.2.2.2:5000"); w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}

	// Other addresses are unaffected
	if w := bearerRequest(t, srv, "lh_bogus", "10.3.3.3:5000"); w.Code != http.StatusUnauthorized {
		t.Errorf("fresh address status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestHealthIsPublic(t *testing.T) {
	srv, _, _ := testServer(t)

	w := apiRequest(t, srv, "GET", "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}
