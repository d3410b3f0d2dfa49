// Package leadswift is the client for the external LeadSwift lead-discovery API.
package leadswift

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/foxzi/leadboard/internal/apiclient"
)

// ErrNotConfigured is returned when the base URL or API key is missing
var ErrNotConfigured = errors.New("leadswift is not configured: set leadswift.base_url and leadswift.api_key")

// DefaultPageLength is the number of leads requested per search
const DefaultPageLength = 100

// Client calls LeadSwift with the API key in the x-api-key header and the api_key query parameter
type Client struct {
	api        *apiclient.Client
	configured bool
}

// New creates a client. An empty baseURL or apiKey yields a client whose
// every call fails with ErrNotConfigured.
func New(baseURL, apiKey string, opts ...apiclient.Option) *Client {
	if baseURL == "" || apiKey == "" {
		return &Client{}
	}
	hc := &http.Client{Transport: &keyTransport{key: apiKey, next: http.DefaultTransport}}
	all := append([]apiclient.Option{apiclient.WithHTTPClient(hc), apiclient.WithService("leadswift")}, opts...)
	return &Client{
		api:        apiclient.New(baseURL, apiKey, all...),
		configured: true,
	}
}

// Configured reports whether calls can be made
func (c *Client) Configured() bool {
	return c != nil && c.configured
}

type keyTransport struct {
	key  string
	next http.RoundTripper
}

func (t *keyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("x-api-key", t.key)
	return t.next.RoundTrip(r)
}

type leadsRequest struct {
	SearchID string `json:"search_id"`
	Start    int    `json:"start"`
	Length   int    `json:"length"`
}

// FindSearches returns the saved searches of a campaign
func (c *Client) FindSearches(ctx context.Context, campaignID string) ([]SearchSummary, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	var raw json.RawMessage
	if err := c.api.Do(ctx, http.MethodGet, "/searches/"+url.PathEscape(campaignID), nil, nil, &raw); err != nil {
		return nil, fmt.Errorf("find searches: %w", err)
	}
	return ParseSearches(raw)
}

// LeadsForSearch returns the first page of leads found by a search
func (c *Client) LeadsForSearch(ctx context.Context, searchID string) ([]Lead, error) {
	raw, err := c.postLeads(ctx, searchID)
	if err != nil {
		return nil, fmt.Errorf("leads for search: %w", err)
	}
	return ParseLeads(raw)
}

// SyncLeads asks LeadSwift to persist the leads of a search and returns how
// many were synced. When the response carries no count, the number of
// leads in the response is used.
func (c *Client) SyncLeads(ctx context.Context, searchID string) (int, error) {
	raw, err := c.postLeads(ctx, searchID)
	if err != nil {
		return 0, fmt.Errorf("sync leads: %w", err)
	}
	if n, ok := syncedCount(raw); ok {
		return n, nil
	}
	leads, err := ParseLeads(raw)
	if err != nil {
		return 0, err
	}
	return len(leads), nil
}

func (c *Client) postLeads(ctx context.Context, searchID string) (json.RawMessage, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	body := leadsRequest{SearchID: searchID, Start: 0, Length: DefaultPageLength}
	var raw json.RawMessage
	err := c.api.Do(ctx, http.MethodPost, "/leads", url.Values{"search_id": {searchID}}, body, &raw)
	return raw, err
}
