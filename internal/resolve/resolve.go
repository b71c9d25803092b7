// Package resolve matches facilities to Google Places records.
package resolve

import (
	"context"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/galtpos/oasara-sub004/internal/model"
	"github.com/galtpos/oasara-sub004/pkg/google"
)

// DefaultMinConfidence is the lowest score a best candidate may have.
const DefaultMinConfidence = 0.4

// Candidate is a scored text search result.
type Candidate struct {
	Place google.SearchPlace
	Score float64
}

// Resolver picks the best place for a facility and looks up its details.
type Resolver struct {
	client        google.Client
	minConfidence float64
}

// New creates a Resolver. A minConfidence of 0 accepts the first search
// result without ranking.
func New(client google.Client, minConfidence float64) *Resolver {
	return &Resolver{client: client, minConfidence: minConfidence}
}

// Query builds the text search query for a facility, dropping empty parts.
func Query(f model.Facility) string {
	parts := []string{strings.TrimSpace(f.Name), "hospital", strings.TrimSpace(f.City), strings.TrimSpace(f.Country)}
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

// Rank scores every result against the facility, best first. Ties keep the
// search order.
func Rank(f model.Facility, results []google.SearchPlace) []Candidate {
	out := make([]Candidate, len(results))
	for i, p := range results {
		out[i] = Candidate{Place: p, Score: Score(f, p)}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// Resolve searches for the facility and, when a candidate is accepted,
// fetches details for that candidate only. Lookup failures are reported as
// a not_found outcome; only cancellation returns an error.
func (r *Resolver) Resolve(ctx context.Context, f model.Facility) (model.PlaceResolution, error) {
	log := zap.L().With(zap.String("facility_id", f.ID), zap.String("facility", f.Label()))
	notFound := model.PlaceResolution{Outcome: model.OutcomeNotFound}

	query := Query(f)
	search, err := r.client.TextSearch(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return notFound, eris.Wrap(ctx.Err(), "resolve: search")
		}
		log.Warn("resolve: search failed", zap.String("query", query), zap.Error(err))
		return notFound, nil
	}
	if search.Status != google.StatusOK || len(search.Results) == 0 {
		return notFound, nil
	}

	chosen, ok := r.choose(f, search.Results)
	if !ok {
		log.Info("resolve: no confident match",
			zap.Float64("best_score", chosen.Score),
			zap.String("best_name", chosen.Place.Name),
		)
		return model.PlaceResolution{
			Outcome:    model.OutcomeNoConfidentMatch,
			Name:       chosen.Place.Name,
			Confidence: chosen.Score,
			Candidates: len(search.Results),
		}, nil
	}

	details, err := r.client.Details(ctx, chosen.Place.PlaceID)
	if err != nil {
		if ctx.Err() != nil {
			return notFound, eris.Wrap(ctx.Err(), "resolve: details")
		}
		log.Warn("resolve: details failed", zap.String("place_id", chosen.Place.PlaceID), zap.Error(err))
		notFound.Candidates = len(search.Results)
		return notFound, nil
	}

	res := merge(chosen, details.Result)
	res.Candidates = len(search.Results)
	return res, nil
}

// choose returns the accepted candidate, or the best rejected one and false.
func (r *Resolver) choose(f model.Facility, results []google.SearchPlace) (Candidate, bool) {
	if r.minConfidence <= 0 {
		return Candidate{Place: results[0], Score: Score(f, results[0])}, true
	}
	best := Rank(f, results)[0]
	return best, best.Score >= r.minConfidence
}

// merge prefers details fields and falls back to the search result. The
// place id is always the searched one.
func merge(c Candidate, d google.PlaceDetails) model.PlaceResolution {
	p := c.Place
	res := model.PlaceResolution{
		Outcome:          model.OutcomeResolved,
		PlaceID:          p.PlaceID,
		Name:             firstNonEmpty(d.Name, p.Name),
		FormattedAddress: firstNonEmpty(d.FormattedAddress, p.FormattedAddress),
		Latitude:         d.Geometry.Location.Lat,
		Longitude:        d.Geometry.Location.Lng,
		Phone:            d.Phone(),
		Website:          d.Website,
		MapsURL:          d.URL,
		Rating:           d.Rating,
		RatingsTotal:     d.UserRatingsTotal,
		BusinessStatus:   firstNonEmpty(d.BusinessStatus, p.BusinessStatus),
		Confidence:       c.Score,
	}
	if res.Latitude == 0 && res.Longitude == 0 {
		res.Latitude, res.Longitude = p.Geometry.Location.Lat, p.Geometry.Location.Lng
	}
	if res.Rating == 0 {
		res.Rating = p.Rating
	}
	if res.RatingsTotal == 0 {
		res.RatingsTotal = p.UserRatingsTotal
	}
	return res
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
