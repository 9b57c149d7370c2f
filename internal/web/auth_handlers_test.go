package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLoginUnknownEmailGetsSameMessage(t *testing.T) {
	srv, _, _ := testServer(t)

	known := apiRequest(t, srv, "POST", "/auth/login", "", map[string]string{"email": "alice@example.com"})
	unknown := apiRequest(t, srv, "POST", "/auth/login", "", map[string]string{"email": "stranger@example.com"})

	if known.Code != http.StatusOK || unknown.Code != http.StatusOK {
		t.Fatalf("status = %d / %d, want 200 / 200", known.Code, unknown.Code)
	}
	if known.Body.String() != unknown.Body.String() {
		t.Error("login responses differ between known and unknown emails")
	}
}

func TestLoginMissingEmail(t *testing.T) {
	srv, _, _ := testServer(t)

	w := apiRequest(t, srv, "POST", "/auth/login", "", map[string]string{"email": ""})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestVerifyCreatesSession(t *testing.T) {
	srv, _, _ := testServer(t)

	token, err := srv.tokens.Create("alice@example.com")
	if err != nil {
		t.Fatalf("create token: %v", err)
	}

	w := apiRequest(t, srv, "GET", "/auth/verify?token="+token, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	cookie := sessionCookie(w)
	if cookie == nil {
		t.Fatal("expected session cookie")
	}

	// Session cookie authenticates API calls
	r := httptest.NewRequest("GET", "/api/me", nil)
	r.AddCookie(cookie)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d, want %d", rec.Code, http.StatusOK)
	}
	var me struct {
		Email string `json:"email"`
		Admin bool   `json:"admin"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&me); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if me.Email != "alice@example.com" {
		t.Errorf("email = %q, want alice@example.com", me.Email)
	}
	if me.Admin {
		t.Error("alice should not be admin")
	}
}

func TestVerifyTokenSingleUse(t *testing.T) {
	srv, _, _ := testServer(t)

	token, err := srv.tokens.Create("alice@example.com")
	if err != nil {
		t.Fatalf("create token: %v", err)
	}

	if w := apiRequest(t, srv, "GET", "/auth/verify?token="+token, "", nil); w.Code != http.StatusOK {
		t.Fatalf("first verify status = %d", w.Code)
	}
	if w := apiRequest(t, srv, "GET", "/auth/verify?token="+token, "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("second verify status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestVerifyBadToken(t *testing.T) {
	srv, _, _ := testServer(t)

	w := apiRequest(t, srv, "GET", "/auth/verify?token=bogus", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestLogoutDestroysSession(t *testing.T) {
	srv, _, _ := testServer(t)

	token, err := srv.tokens.Create("alice@example.com")
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	verify := apiRequest(t, srv, "GET", "/auth/verify?token="+token, "", nil)
	cookie := sessionCookie(verify)
	if cookie == nil {
		t.Fatal("expected session cookie")
	}

	r := httptest.NewRequest("POST", "/auth/logout", nil)
	r.AddCookie(cookie)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, r)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout status = %d", rec.Code)
	}

	r = httptest.NewRequest("GET", "/api/me", nil)
	r.AddCookie(cookie)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, r)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("me after logout = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestMeWithBearerToken(t *testing.T) {
	srv, alice, _ := testServer(t)

	w := apiRequest(t, srv, "GET", "/api/me", alice, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "alice@example.com") {
		t.Errorf("body = %q, want alice email", w.Body.String())
	}
}

func TestMePostalCodeRoundTrip(t *testing.T) {
	srv, alice, _ := testServer(t)

	w := apiRequest(t, srv, "PUT", "/api/me/postal_code", alice, map[string]string{"postal_code": "90210"})
	if w.Code != http.StatusOK {
		t.Fatalf("set status = %d, body %s", w.Code, w.Body.String())
	}

	w = apiRequest(t, srv, "GET", "/api/me", alice, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me status = %d", w.Code)
	}
	var me struct {
		Email      string `json:"email"`
		PostalCode string `json:"postal_code"`
	}
	if err := json.NewDecoder(w.Body).Decode(&me); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if me.PostalCode != "90210" {
		t.Errorf("postal_code = %q, want 90210", me.PostalCode)
	}
}

func TestMePostalCodeUnsetIsEmpty(t *testing.T) {
	srv, _, bob := testServer(t)

	w := apiRequest(t, srv, "GET", "/api/me", bob, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me status = %d", w.Code)
	}
	var me struct {
		PostalCode string `json:"postal_code"`
	}
	if err := json.NewDecoder(w.Body).Decode(&me); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if me.PostalCode != "" {
		t.Errorf("postal_code = %q, want empty", me.PostalCode)
	}
}

func TestUsersAdminOnly(t *testing.T) {
	srv, alice, _ := testServer(t)

	w := apiRequest(t, srv, "GET", "/api/users", alice, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestUsersAdminCanManage(t *testing.T) {
	srv, _, _ := testServer(t)

	adminKey, _, err := srv.apiKeys.Create("test", "admin@example.com")
	if err != nil {
		t.Fatalf("create admin key: %v", err)
	}

	w := apiRequest(t, srv, "POST", "/api/users", adminKey, map[string]string{
		"email": "carol@example.com",
		"name":  "Carol",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("add user status = %d, body %s", w.Code, w.Body.String())
	}

	w = apiRequest(t, srv, "GET", "/api/users", adminKey, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list users status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "carol@example.com") {
		t.Error("expected carol in user list")
	}
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == "lh_session" && c.Value != "" {
			return c
		}
	}
	return nil
}
