package model

// ResolutionOutcome classifies a place resolution attempt.
type ResolutionOutcome string

const (
	OutcomeResolved         ResolutionOutcome = "resolved"
	OutcomeNotFound         ResolutionOutcome = "not_found"
	OutcomeNoConfidentMatch ResolutionOutcome = "no_confident_match"
)

// PlaceResolution is the transient result of matching a facility to a
// mapping-service place. It is consumed once to backfill the facility.
type PlaceResolution struct {
	Outcome          ResolutionOutcome `json:"outcome"`
	PlaceID          string            `json:"place_id,omitempty"`
	Name             string            `json:"name,omitempty"`
	FormattedAddress string            `json:"formatted_address,omitempty"`
	Latitude         float64           `json:"latitude,omitempty"`
	Longitude        float64           `json:"longitude,omitempty"`
	Phone            string            `json:"phone,omitempty"`
	Website          string            `json:"website,omitempty"`
	MapsURL          string            `json:"maps_url,omitempty"`
	Rating           float64           `json:"rating,omitempty"`
	RatingsTotal     int               `json:"ratings_total,omitempty"`
	BusinessStatus   string            `json:"business_status,omitempty"`
	Confidence       float64           `json:"confidence"`
	Candidates       int               `json:"candidates"`
}

// Update converts a resolved place into a fill-null facility update.
func (r PlaceResolution) Update() ContactUpdate {
	if r.Outcome != OutcomeResolved {
		return ContactUpdate{}
	}
	u := ContactUpdate{
		Website:       StrPtr(r.Website),
		Phone:         StrPtr(r.Phone),
		Address:       StrPtr(r.FormattedAddress),
		GooglePlaceID: StrPtr(r.PlaceID),
		GoogleMapsURL: StrPtr(r.MapsURL),
	}
	if r.Latitude != 0 || r.Longitude != 0 {
		lat, lng := r.Latitude, r.Longitude
		u.Latitude, u.Longitude = &lat, &lng
	}
	if r.Rating > 0 {
		rating := r.Rating
		u.GoogleRating = &rating
	}
	if r.RatingsTotal > 0 {
		total := r.RatingsTotal
		u.ReviewCount = &total
	}
	return u
}

// ExtractionStatus is the per-facility rollup of a content extraction run.
type ExtractionStatus string

const (
	ExtractionSuccess ExtractionStatus = "success"
	ExtractionPartial ExtractionStatus = "partial"
	ExtractionFailed  ExtractionStatus = "failed"
)

// ExtractionResult holds everything extracted from one facility website.
type ExtractionResult struct {
	Doctors      []Doctor           `json:"doctors"`
	Pricing      []ProcedurePricing `json:"pricing"`
	Testimonials []Testimonial      `json:"testimonials"`
}

// Total counts all extracted items.
func (r ExtractionResult) Total() int {
	return len(r.Doctors) + len(r.Pricing) + len(r.Testimonials)
}

// Status maps the item total to success (>= 10), partial (> 0) or failed.
func (r ExtractionResult) Status() ExtractionStatus {
	switch n := r.Total(); {
	case n >= 10:
		return ExtractionSuccess
	case n > 0:
		return ExtractionPartial
	default:
		return ExtractionFailed
	}
}

// Journey is a user's stated care request collected by the intake chat.
type Journey struct {
	Procedure string  `json:"procedure"`
	BudgetMin float64 `json:"budgetMin"`
	BudgetMax float64 `json:"budgetMax"`
	Timeline  string  `json:"timeline"`
}
