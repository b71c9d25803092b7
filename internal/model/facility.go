package model

import (
	"strings"
	"time"
)

// Facility is a medical provider location in the directory.
// Nullable columns are pointers; nil means "not yet known".
type Facility struct {
	ID                string             `json:"id" yaml:"id"`
	Name              string             `json:"name" yaml:"name"`
	Country           string             `json:"country" yaml:"country"`
	City              string             `json:"city" yaml:"city"`
	Address           *string            `json:"address,omitempty" yaml:"address,omitempty"`
	Latitude          *float64           `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude         *float64           `json:"longitude,omitempty" yaml:"longitude,omitempty"`
	Website           *string            `json:"website,omitempty" yaml:"website,omitempty"`
	Phone             *string            `json:"phone,omitempty" yaml:"phone,omitempty"`
	ContactEmail      *string            `json:"contact_email,omitempty" yaml:"contact_email,omitempty"`
	GooglePlaceID     *string            `json:"google_place_id,omitempty" yaml:"google_place_id,omitempty"`
	GoogleMapsURL     *string            `json:"google_maps_url,omitempty" yaml:"google_maps_url,omitempty"`
	GoogleRating      *float64           `json:"google_rating,omitempty" yaml:"google_rating,omitempty"`
	ReviewCount       *int               `json:"review_count,omitempty" yaml:"review_count,omitempty"`
	Specialties       []string           `json:"specialties" yaml:"specialties"`
	Languages         []string           `json:"languages" yaml:"languages"`
	JCIAccredited     bool               `json:"jci_accredited" yaml:"jci_accredited"`
	PopularProcedures []PopularProcedure `json:"popular_procedures" yaml:"popular_procedures"`
	CreatedAt         time.Time          `json:"created_at" yaml:"-"`
	UpdatedAt         time.Time          `json:"updated_at" yaml:"-"`
}

// PopularProcedure is a display entry on a facility's profile.
type PopularProcedure struct {
	Name       string `json:"name" yaml:"name"`
	PriceRange string `json:"price_range" yaml:"price_range"`
	WaitTime   string `json:"wait_time" yaml:"wait_time"`
}

// HasWebsite reports whether a non-blank website is stored.
func (f Facility) HasWebsite() bool { return notBlank(f.Website) }

// HasPhone reports whether a non-blank phone is stored.
func (f Facility) HasPhone() bool { return notBlank(f.Phone) }

// HasEmail reports whether a non-blank contact email is stored.
func (f Facility) HasEmail() bool { return notBlank(f.ContactEmail) }

// Label is the "name (city, country)" form used in logs and reports.
func (f Facility) Label() string {
	var loc []string
	for _, s := range []string{f.City, f.Country} {
		if s = strings.TrimSpace(s); s != "" {
			loc = append(loc, s)
		}
	}
	if len(loc) == 0 {
		return f.Name
	}
	return f.Name + " (" + strings.Join(loc, ", ") + ")"
}

// Str returns the value of a nullable string, or "".
func Str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// StrPtr returns nil for blank strings.
func StrPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func notBlank(p *string) bool {
	return p != nil && strings.TrimSpace(*p) != ""
}

// Doctor is a staff member extracted from a facility website.
type Doctor struct {
	ID              string    `json:"id"`
	FacilityID      string    `json:"facility_id"`
	Name            string    `json:"name"`
	Specialty       string    `json:"specialty"`
	Bio             string    `json:"bio"`
	Qualifications  []string  `json:"qualifications"`
	Languages       []string  `json:"languages"`
	YearsExperience *int      `json:"years_experience,omitempty"`
	Source          string    `json:"source"`
	CreatedAt       time.Time `json:"created_at"`
}

// ProcedurePricing is a published price for a procedure.
type ProcedurePricing struct {
	ID            string    `json:"id"`
	FacilityID    string    `json:"facility_id"`
	ProcedureName string    `json:"procedure_name"`
	Price         float64   `json:"price"`
	Currency      string    `json:"currency"`
	PriceType     string    `json:"price_type"`
	Source        string    `json:"source"`
	CreatedAt     time.Time `json:"created_at"`
}

// Testimonial is a patient review published on a facility website.
type Testimonial struct {
	ID          string    `json:"id"`
	FacilityID  string    `json:"facility_id"`
	PatientName string    `json:"patient_name"`
	ReviewText  string    `json:"review_text"`
	Rating      *int      `json:"rating,omitempty"`
	Source      string    `json:"source"`
	CreatedAt   time.Time `json:"created_at"`
}

// ContactUpdate carries resolved fields for a fill-null facility update.
// Website, Phone, Address, coordinates, rating and review count are only
// written where the stored value is null; place id and maps url always are.
type ContactUpdate struct {
	Website       *string
	Phone         *string
	Address       *string
	Latitude      *float64
	Longitude     *float64
	GoogleRating  *float64
	ReviewCount   *int
	GooglePlaceID *string
	GoogleMapsURL *string
}

// Empty reports whether the update would write nothing.
func (u ContactUpdate) Empty() bool {
	return u.Website == nil && u.Phone == nil && u.Address == nil &&
		u.Latitude == nil && u.Longitude == nil && u.GoogleRating == nil &&
		u.ReviewCount == nil && u.GooglePlaceID == nil && u.GoogleMapsURL == nil
}
