package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/galtpos/oasara-sub004/internal/model"
)

// ErrNotFound is returned when a facility id does not exist.
var ErrNotFound = eris.New("store: not found")

// FacilityFilter selects facilities for a stage. Zero values mean "no filter".
type FacilityFilter struct {
	NameContains   string `json:"name_contains,omitempty"`   // case-insensitive substring
	Country        string `json:"country,omitempty"`         // exact match
	Specialty      string `json:"specialty,omitempty"`       // specialties contains
	MissingContact bool   `json:"missing_contact,omitempty"` // website IS NULL OR phone IS NULL
	HasWebsite     bool   `json:"has_website,omitempty"`     // website IS NOT NULL
	MissingEmail   bool   `json:"missing_email,omitempty"`   // contact_email IS NULL
	Limit          int    `json:"limit,omitempty"`
}

// Stats is a snapshot of table coverage used by the status command.
type Stats struct {
	Facilities   int `json:"facilities"`
	WithWebsite  int `json:"with_website"`
	WithPhone    int `json:"with_phone"`
	WithEmail    int `json:"with_email"`
	WithPlaceID  int `json:"with_place_id"`
	Doctors      int `json:"doctors"`
	Prices       int `json:"prices"`
	Testimonials int `json:"testimonials"`
}

// Store defines the persistence interface for the facility pipeline.
type Store interface {
	// Facilities
	InsertFacilities(ctx context.Context, facilities []model.Facility) (int, error)
	GetFacility(ctx context.Context, id string) (*model.Facility, error)
	ListFacilities(ctx context.Context, filter FacilityFilter) ([]model.Facility, error)
	ApplyContactUpdate(ctx context.Context, id string, u model.ContactUpdate) error
	SetContactEmail(ctx context.Context, id, email string) error
	UpdateClassification(ctx context.Context, id string, specialties []string, procedures []model.PopularProcedure) error

	// Child records
	SaveExtraction(ctx context.Context, facilityID string, result model.ExtractionResult) error

	// Reporting
	Stats(ctx context.Context) (*Stats, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
