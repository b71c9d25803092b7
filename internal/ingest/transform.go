package ingest

import (
	"github.com/galtpos/oasara-sub004/internal/model"
)

// BaseSpecialties are given to every imported facility.
var BaseSpecialties = []string{"General Medicine", "Emergency Care"}

// hospitalSpecialties are added for full-service facility types.
var hospitalSpecialties = []string{"Surgery", "Internal Medicine", "Cardiology", "Orthopedics"}

var hospitalTypes = map[string]bool{
	"Hospital":                true,
	"Academic Medical Center": true,
}

var countryLanguages = map[string][]string{
	"Thailand":             {"English", "Thai"},
	"India":                {"English", "Hindi"},
	"Turkey":               {"English", "Turkish", "Arabic"},
	"Singapore":            {"English", "Mandarin", "Malay"},
	"United Arab Emirates": {"English", "Arabic"},
	"South Korea":          {"English", "Korean"},
	"Japan":                {"English", "Japanese"},
	"Brazil":               {"English", "Portuguese"},
	"Mexico":               {"English", "Spanish"},
	"Spain":                {"English", "Spanish"},
	"Germany":              {"English", "German"},
}

// DefaultProcedure is listed on every newly imported facility.
var DefaultProcedure = model.PopularProcedure{
	Name:       "General Consultation",
	PriceRange: "Contact for pricing",
	WaitTime:   "1-2 weeks",
}

// Languages returns the languages assumed to be spoken in a country.
func Languages(country string) []string {
	if langs, ok := countryLanguages[country]; ok {
		return append([]string(nil), langs...)
	}
	return []string{"English"}
}

// Specialties returns the import-time specialties for a facility type.
func Specialties(facilityType string) []string {
	out := append([]string(nil), BaseSpecialties...)
	if hospitalTypes[facilityType] {
		out = append(out, hospitalSpecialties...)
	}
	return out
}

// Transform turns a raw record into a facility ready to insert. Contact
// email is left empty for the email discovery stage.
func Transform(r Record) model.Facility {
	f := model.Facility{
		Name:              r.Name,
		Country:           r.Country,
		City:              r.City,
		Address:           model.StrPtr(r.Address),
		Website:           model.StrPtr(r.Website),
		Phone:             model.StrPtr(r.Phone),
		Specialties:       Specialties(r.Type),
		Languages:         Languages(r.Country),
		JCIAccredited:     r.JCIAccredited,
		PopularProcedures: []model.PopularProcedure{DefaultProcedure},
	}
	if r.Lat != 0 || r.Lng != 0 {
		lat, lng := r.Lat, r.Lng
		f.Latitude, f.Longitude = &lat, &lng
	}
	if r.GoogleRating > 0 {
		rating := r.GoogleRating
		f.GoogleRating = &rating
	}
	if r.ReviewCount > 0 {
		n := r.ReviewCount
		f.ReviewCount = &n
	}
	return f
}
