package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextSearch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/textsearch/json", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "Bumrungrad hospital Bangkok Thailand", r.URL.Query().Get("query"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(TextSearchResponse{
			Status: StatusOK,
			Results: []SearchPlace{
				{
					PlaceID:          "ChIJ-bumrungrad",
					Name:             "Bumrungrad International Hospital",
					FormattedAddress: "33 Sukhumvit 3, Bangkok 10110, Thailand",
					Rating:           4.5,
					UserRatingsTotal: 5210,
				},
			},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.TextSearch(context.Background(), "Bumrungrad hospital Bangkok Thailand")

	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "ChIJ-bumrungrad", resp.Results[0].PlaceID)
	assert.InDelta(t, 4.5, resp.Results[0].Rating, 0.001)
	assert.Equal(t, 5210, resp.Results[0].UserRatingsTotal)
}

func TestTextSearch_ZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.TextSearch(context.Background(), "Nonexistent Clinic")

	require.NoError(t, err)
	assert.Empty(t, resp.Results)
}

func TestTextSearch_DeniedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"REQUEST_DENIED","error_message":"The provided API key is invalid."}`))
	}))
	defer srv.Close()

	client := NewClient("bad-key", WithBaseURL(srv.URL))
	resp, err := client.TextSearch(context.Background(), "test query")

	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
}

func TestTextSearch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": "forbidden"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewClient("bad-key", WithBaseURL(srv.URL))
	resp, err := client.TextSearch(context.Background(), "test query")

	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "403")
}

func TestTextSearch_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.TextSearch(ctx, "test")

	assert.Error(t, err)
	assert.Nil(t, resp)
}

func TestTextSearch_TransportErrorOmitsKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	client := NewClient("SECRET-KEY-123", WithBaseURL(srv.URL))
	_, err := client.TextSearch(context.Background(), "Bumrungrad hospital Bangkok Thailand")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "google: send request /textsearch/json")
	assert.NotContains(t, err.Error(), "SECRET-KEY-123")
	assert.NotContains(t, fmt.Sprintf("%+v", err), "SECRET-KEY-123")
}

func TestDetails_ContextCanceledOmitsKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient("SECRET-KEY-123", WithBaseURL(srv.URL))
	_, err := client.Details(ctx, "ChIJ123")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotContains(t, err.Error(), "SECRET-KEY-123")
}

func TestDetails_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/details/json", r.URL.Path)
		assert.Equal(t, "ChIJ-bumrungrad", r.URL.Query().Get("place_id"))
		assert.Contains(t, r.URL.Query().Get("fields"), "international_phone_number")
		assert.Contains(t, r.URL.Query().Get("fields"), "website")

		_, _ = w.Write([]byte(`{
			"status": "OK",
			"result": {
				"place_id": "ChIJ-bumrungrad",
				"name": "Bumrungrad International Hospital",
				"formatted_address": "33 Sukhumvit 3, Bangkok",
				"geometry": {"location": {"lat": 13.746, "lng": 100.552}},
				"website": "https://www.bumrungrad.com/",
				"formatted_phone_number": "02 066 8888",
				"international_phone_number": "+66 2 066 8888",
				"url": "https://maps.google.com/?cid=42",
				"rating": 4.4,
				"user_ratings_total": 5210
			}
		}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.Details(context.Background(), "ChIJ-bumrungrad")

	require.NoError(t, err)
	assert.Equal(t, "https://www.bumrungrad.com/", resp.Result.Website)
	assert.Equal(t, "+66 2 066 8888", resp.Result.Phone())
	assert.InDelta(t, 13.746, resp.Result.Geometry.Location.Lat, 1e-9)
	assert.Equal(t, "https://maps.google.com/?cid=42", resp.Result.URL)
}

func TestDetails_NotFoundStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"NOT_FOUND"}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.Details(context.Background(), "gone")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOT_FOUND")
}

func TestPlaceDetails_PhoneFallback(t *testing.T) {
	assert.Equal(t, "02 066 8888", PlaceDetails{FormattedPhoneNumber: "02 066 8888"}.Phone())
	assert.Equal(t, "", PlaceDetails{}.Phone())
}
