// Package geocode reverse-geocodes coordinates through a Nominatim
// (OpenStreetMap) instance. The GPS check flow uses the street name as the
// address sent to project resolution; the position report uses the full
// display name.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Place is the subset of a Nominatim reverse answer the client cares about.
type Place struct {
	DisplayName string
	Street      string
}

type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// NewClient builds a reverse-geocoding client. Nominatim's usage policy
// requires an identifying User-Agent; pass one through userAgent.
func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		http:      &http.Client{Timeout: timeout},
	}
}

type reverseEnvelope struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		Road string `json:"road"`
	} `json:"address"`
}

// Reverse resolves coordinates to a place. A fix with no resolvable street
// still returns a Place; only transport and decoding problems are errors.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (*Place, error) {
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reverse geocoding failed: %s", resp.Status)
	}

	var env reverseEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, err
	}

	return &Place{
		DisplayName: env.DisplayName,
		Street:      env.Address.Road,
	}, nil
}
