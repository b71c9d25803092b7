package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/galtpos/oasara-sub004/internal/model"
	"github.com/galtpos/oasara-sub004/pkg/google"
	"github.com/galtpos/oasara-sub004/pkg/google/mocks"
)

var bumrungrad = model.Facility{
	ID:      "f-1",
	Name:    "Bumrungrad International Hospital",
	City:    "Bangkok",
	Country: "Thailand",
}

var bangkokResults = []google.SearchPlace{
	{
		PlaceID:          "p0",
		Name:             "Siam Dental Clinic",
		FormattedAddress: "Sukhumvit Rd, Bangkok, Thailand",
		Geometry:         google.Geometry{Location: google.LatLng{Lat: 13.7, Lng: 100.5}},
	},
	{
		PlaceID:          "p1",
		Name:             "Bumrungrad International Hospital",
		FormattedAddress: "33 Sukhumvit 3, Bangkok 10110, Thailand",
		Geometry:         google.Geometry{Location: google.LatLng{Lat: 13.746, Lng: 100.552}},
		Rating:           4.4,
		UserRatingsTotal: 8100,
	},
}

func TestQuery(t *testing.T) {
	assert.Equal(t, "Bumrungrad International Hospital hospital Bangkok Thailand", Query(bumrungrad))
	assert.Equal(t, "Apollo hospital India", Query(model.Facility{Name: " Apollo ", Country: "India"}))
}

func TestResolve_PicksBestRankedCandidate(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("TextSearch", mock.Anything, Query(bumrungrad)).
		Return(&google.TextSearchResponse{Status: google.StatusOK, Results: bangkokResults}, nil)
	client.On("Details", mock.Anything, "p1").
		Return(&google.DetailsResponse{Status: google.StatusOK, Result: google.PlaceDetails{
			PlaceID:                  "p1",
			Name:                     "Bumrungrad International Hospital",
			FormattedAddress:         "33 Sukhumvit 3, Khlong Toei Nuea, Bangkok 10110, Thailand",
			Website:                  "https://www.bumrungrad.com/",
			FormattedPhoneNumber:     "02 066 8888",
			InternationalPhoneNumber: "+66 2 066 8888",
			URL:                      "https://maps.google.com/?cid=123",
			BusinessStatus:           "OPERATIONAL",
		}}, nil)

	res, err := New(client, DefaultMinConfidence).Resolve(context.Background(), bumrungrad)
	require.NoError(t, err)

	assert.Equal(t, model.OutcomeResolved, res.Outcome)
	assert.Equal(t, "p1", res.PlaceID)
	assert.Equal(t, "+66 2 066 8888", res.Phone)
	assert.Equal(t, "https://www.bumrungrad.com/", res.Website)
	assert.Equal(t, "https://maps.google.com/?cid=123", res.MapsURL)
	assert.Equal(t, "33 Sukhumvit 3, Khlong Toei Nuea, Bangkok 10110, Thailand", res.FormattedAddress)
	assert.InDelta(t, 13.746, res.Latitude, 1e-9, "falls back to search geometry")
	assert.InDelta(t, 4.4, res.Rating, 1e-9)
	assert.Equal(t, 8100, res.RatingsTotal)
	assert.Equal(t, 2, res.Candidates)
	assert.InDelta(t, 1.0, res.Confidence, 1e-9)

	client.AssertNotCalled(t, "Details", mock.Anything, "p0")
}

func TestResolve_LoneLowSimilarityCandidate(t *testing.T) {
	f := model.Facility{ID: "f-2", Name: "Samitivej Sukhumvit Hospital", City: "Bangkok", Country: "Thailand"}
	client := mocks.NewMockClient(t)
	client.On("TextSearch", mock.Anything, Query(f)).
		Return(&google.TextSearchResponse{Status: google.StatusOK, Results: []google.SearchPlace{
			{PlaceID: "px", Name: "Bangkok Dusit Medical Services", FormattedAddress: "Bangkok, Thailand"},
		}}, nil)

	res, err := New(client, DefaultMinConfidence).Resolve(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, model.OutcomeNoConfidentMatch, res.Outcome)
	assert.Empty(t, res.PlaceID)
	assert.Equal(t, 1, res.Candidates)
	assert.Less(t, res.Confidence, DefaultMinConfidence)
	assert.True(t, res.Update().Empty())
	client.AssertNotCalled(t, "Details", mock.Anything, mock.Anything)
}

func TestResolve_ZeroThresholdTakesFirstResult(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("TextSearch", mock.Anything, mock.Anything).
		Return(&google.TextSearchResponse{Status: google.StatusOK, Results: bangkokResults}, nil)
	client.On("Details", mock.Anything, "p0").
		Return(&google.DetailsResponse{Status: google.StatusOK, Result: google.PlaceDetails{PlaceID: "p0"}}, nil)

	res, err := New(client, 0).Resolve(context.Background(), bumrungrad)
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeResolved, res.Outcome)
	assert.Equal(t, "p0", res.PlaceID)
	assert.Equal(t, "Siam Dental Clinic", res.Name)
}

func TestResolve_NotFound(t *testing.T) {
	tests := []struct {
		name   string
		search *google.TextSearchResponse
		err    error
	}{
		{"zero results", &google.TextSearchResponse{Status: google.StatusZeroResults}, nil},
		{"empty ok", &google.TextSearchResponse{Status: google.StatusOK}, nil},
		{"request error", nil, errors.New("google: unexpected status 500")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := mocks.NewMockClient(t)
			client.On("TextSearch", mock.Anything, mock.Anything).Return(tt.search, tt.err)

			res, err := New(client, DefaultMinConfidence).Resolve(context.Background(), bumrungrad)
			require.NoError(t, err)
			assert.Equal(t, model.OutcomeNotFound, res.Outcome)
		})
	}
}

func TestResolve_DetailsFailure(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("TextSearch", mock.Anything, mock.Anything).
		Return(&google.TextSearchResponse{Status: google.StatusOK, Results: bangkokResults}, nil)
	client.On("Details", mock.Anything, "p1").Return(nil, errors.New("google: details status NOT_FOUND"))

	res, err := New(client, DefaultMinConfidence).Resolve(context.Background(), bumrungrad)
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeNotFound, res.Outcome)
	assert.Equal(t, 2, res.Candidates)
}

func TestResolve_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := mocks.NewMockClient(t)
	client.On("TextSearch", mock.Anything, mock.Anything).Return(nil, context.Canceled)

	_, err := New(client, DefaultMinConfidence).Resolve(ctx, bumrungrad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve: search")
}

func TestRank_OrdersByScore(t *testing.T) {
	ranked := Rank(bumrungrad, bangkokResults)
	require.Len(t, ranked, 2)
	assert.Equal(t, "p1", ranked[0].Place.PlaceID)
	assert.Greater(t, ranked[0].Score, ranked[1].Score)
}
