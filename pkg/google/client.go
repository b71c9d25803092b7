package google

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/place"

// detailsFields is the field mask requested for a chosen place.
const detailsFields = "place_id,name,formatted_address,geometry,website,formatted_phone_number," +
	"international_phone_number,url,rating,user_ratings_total,business_status"

// Client performs Google Places (legacy web service) operations.
type Client interface {
	TextSearch(ctx context.Context, query string) (*TextSearchResponse, error)
	Details(ctx context.Context, placeID string) (*DetailsResponse, error)
}

// Status values the Places web service reports in every response body.
const (
	StatusOK          = "OK"
	StatusZeroResults = "ZERO_RESULTS"
)

// TextSearchResponse is the response from Places Text Search.
type TextSearchResponse struct {
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message,omitempty"`
	Results      []SearchPlace `json:"results"`
}

// SearchPlace is one text search result.
type SearchPlace struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Geometry         Geometry `json:"geometry"`
	Rating           float64  `json:"rating"`
	UserRatingsTotal int      `json:"user_ratings_total"`
	BusinessStatus   string   `json:"business_status"`
}

// Geometry holds a place location.
type Geometry struct {
	Location LatLng `json:"location"`
}

// LatLng is a coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DetailsResponse is the response from Place Details.
type DetailsResponse struct {
	Status       string       `json:"status"`
	ErrorMessage string       `json:"error_message,omitempty"`
	Result       PlaceDetails `json:"result"`
}

// PlaceDetails carries the contact fields of a single place.
type PlaceDetails struct {
	PlaceID                  string   `json:"place_id"`
	Name                     string   `json:"name"`
	FormattedAddress         string   `json:"formatted_address"`
	Geometry                 Geometry `json:"geometry"`
	Website                  string   `json:"website"`
	FormattedPhoneNumber     string   `json:"formatted_phone_number"`
	InternationalPhoneNumber string   `json:"international_phone_number"`
	URL                      string   `json:"url"`
	Rating                   float64  `json:"rating"`
	UserRatingsTotal         int      `json:"user_ratings_total"`
	BusinessStatus           string   `json:"business_status"`
}

// Phone prefers the international number and falls back to the national one.
func (d PlaceDetails) Phone() string {
	if d.InternationalPhoneNumber != "" {
		return d.InternationalPhoneNumber
	}
	return d.FormattedPhoneNumber
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Google Places API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// TextSearch runs a free-text place search. ZERO_RESULTS is not an error;
// any other non-OK status is.
func (c *httpClient) TextSearch(ctx context.Context, query string) (*TextSearchResponse, error) {
	params := url.Values{}
	params.Set("query", query)

	var result TextSearchResponse
	if err := c.get(ctx, "/textsearch/json", params, &result); err != nil {
		return nil, err
	}
	if result.Status != StatusOK && result.Status != StatusZeroResults {
		return nil, eris.Errorf("google: text search status %s: %s", result.Status, result.ErrorMessage)
	}
	return &result, nil
}

// Details fetches the contact fields for one place id.
func (c *httpClient) Details(ctx context.Context, placeID string) (*DetailsResponse, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", detailsFields)

	var result DetailsResponse
	if err := c.get(ctx, "/details/json", params, &result); err != nil {
		return nil, err
	}
	if result.Status != StatusOK {
		return nil, eris.Errorf("google: details status %s: %s", result.Status, result.ErrorMessage)
	}
	return &result, nil
}

func (c *httpClient) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return eris.Wrap(err, "google: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// The request URL carries the API key; report the path only.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return eris.Wrapf(err, "google: send request %s", path)
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "google: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("google: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return eris.Wrap(err, "google: unmarshal response")
	}
	return nil
}
