// Package geocoder resolves postal codes to coordinates through a
// Nominatim-compatible HTTP endpoint. A lookup is a single call; retries are
// the caller's decision.
package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/devtrail/devtrail-be/internal/apperr"
)

// Location is a resolved lng/lat pair.
type Location struct {
	Latitude  float64
	Longitude float64
}

// Geocoder resolves a postal code to a location.
type Geocoder interface {
	Geocode(ctx context.Context, zipcode string) (Location, error)
}

// Client is an HTTP Geocoder.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a geocoder client against the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Geocode looks up a postal code and returns its coordinates.
func (c *Client) Geocode(ctx context.Context, zipcode string) (Location, error) {
	q := url.Values{}
	q.Set("postalcode", zipcode)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return Location{}, apperr.Upstream("geocode", err)
	}
	req.Header.Set("User-Agent", "devtrail-be")

	resp, err := c.http.Do(req)
	if err != nil {
		return Location{}, apperr.Upstream("geocode", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Location{}, apperr.Upstream("geocode", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return Location{}, apperr.Upstream("geocode", err)
	}
	if len(results) == 0 {
		return Location{}, apperr.Validationf("could not resolve zipcode %s", zipcode)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return Location{}, apperr.Upstream("geocode", err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return Location{}, apperr.Upstream("geocode", err)
	}

	return Location{Latitude: lat, Longitude: lng}, nil
}
