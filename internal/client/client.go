// Package client provides an HTTP client for the localharvest REST API.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/localharvest/localharvest/internal/listing"
)

// Client is an HTTP client for the localharvest API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a new API client.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ListOptions controls filtering for ListListings.
type ListOptions struct {
	PostalCode string // prefix match
	Name       string // substring match on item name
	OfferType  string // trade, sell, trade_or_sell (empty = all)
	Contact    string // substring match on contact
	Mine       bool   // only listings owned by the caller
}

// ListListings returns listings, optionally filtered, newest first.
func (c *Client) ListListings(opts ListOptions) ([]*listing.Listing, error) {
	params := url.Values{}
	if opts.PostalCode != "" {
		params.Set("zip", opts.PostalCode)
	}
	if opts.Name != "" {
		params.Set("q", opts.Name)
	}
	if opts.OfferType != "" {
		params.Set("type", opts.OfferType)
	}
	if opts.Contact != "" {
		params.Set("contact", opts.Contact)
	}
	if opts.Mine {
		params.Set("mine", "true")
	}

	path := "/api/listings"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var listings []*listing.Listing
	if err := c.get(path, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

// Submission holds the fields for creating or updating a listing.
type Submission struct {
	ItemName      string `json:"item_name"`
	OfferType     string `json:"offer_type"`
	Description   string `json:"description,omitempty"`
	PostalCode    string `json:"postal_code"`
	ContactMethod string `json:"contact_method,omitempty"`
	Contact       string `json:"contact"`
	Price         string `json:"price,omitempty"`
	Image         []byte `json:"image,omitempty"`
}

// CreateListing posts a new listing.
func (c *Client) CreateListing(sub Submission) (*listing.Listing, error) {
	var l listing.Listing
	if err := c.post("/api/listings", sub, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// GetListing returns a single listing.
func (c *Client) GetListing(id string) (*listing.Listing, error) {
	var l listing.Listing
	if err := c.get("/api/listings/"+url.PathEscape(id), &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// UpdateListing replaces a listing in place.
func (c *Client) UpdateListing(id string, sub Submission) (*listing.Listing, error) {
	var l listing.Listing
	if err := c.put("/api/listings/"+url.PathEscape(id), sub, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// DeleteListing removes a listing. Deleting a listing that is already
// gone is not an error.
func (c *Client) DeleteListing(id string) error {
	return c.doDelete("/api/listings/" + url.PathEscape(id))
}

// Identity describes the authenticated caller.
type Identity struct {
	Email      string `json:"email"`
	Admin      bool   `json:"admin"`
	PostalCode string `json:"postal_code"` // home ZIP, "" when unset
}

// Me returns the authenticated identity.
func (c *Client) Me() (*Identity, error) {
	var id Identity
	if err := c.get("/api/me", &id); err != nil {
		return nil, err
	}
	return &id, nil
}

// get performs a GET request and decodes the response.
func (c *Client) get(path string, result interface{}) error {
	req, err := http.NewRequest("GET", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, result)
}

// post performs a POST request with a JSON body and decodes the response.
func (c *Client) post(path string, body interface{}, result interface{}) error {
	return c.send("POST", path, body, result)
}

// put performs a PUT request with a JSON body and decodes the response.
func (c *Client) put(path string, body interface{}, result interface{}) error {
	return c.send("PUT", path, body, result)
}

func (c *Client) send(method, path string, body interface{}, result interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, result)
}

// doDelete performs a DELETE request.
func (c *Client) doDelete(path string) error {
	req, err := http.NewRequest("DELETE", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, nil)
}

// do executes an HTTP request with auth header and handles errors.
func (c *Client) do(req *http.Request, result interface{}) error {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			fmt.Printf("warning: closing response body: %v\n", cerr)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("server error: %s", http.StatusText(resp.StatusCode))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
