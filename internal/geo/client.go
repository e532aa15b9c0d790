package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Area is a resolved location: a display name plus coordinates.
type Area struct {
	Name      string  `json:"display_name"`
	Latitude  float64 `json:"lat,string"`
	Longitude float64 `json:"lon,string"`
}

// Client resolves free-text addresses against a Nominatim-compatible
// geocoding endpoint. Lookups are best effort: callers are expected to
// proceed without coordinates when resolution fails.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Lookup returns the best match for the address, or nil when the
// service found nothing.
func (c *Client) Lookup(ctx context.Context, address string) (*Area, error) {
	if c.baseURL == "" {
		return nil, nil
	}

	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("geo: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geo: lookup %q: %w", address, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geo: lookup %q: unexpected status %d", address, resp.StatusCode)
	}

	var results []Area
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("geo: decode response: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}
