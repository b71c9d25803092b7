package store

import (
	"encoding/json"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/galtpos/oasara-sub004/internal/model"
)

const (
	tableFacilities   = "facilities"
	tableDoctors      = "doctors"
	tablePricing      = "procedure_pricing"
	tableTestimonials = "testimonials"
)

// facilityColumns is the scan order for every facility query.
var facilityColumns = []any{
	"id", "name", "country", "city", "address", "latitude", "longitude",
	"website", "phone", "contact_email", "google_place_id", "google_maps_url",
	"google_rating", "review_count", "specialties", "languages", "jci_accredited",
	"popular_procedures", "created_at", "updated_at",
}

var (
	doctorColumns      = []string{"id", "facility_id", "name", "specialty", "bio", "qualifications", "languages", "years_experience", "source", "created_at"}
	pricingColumns     = []string{"id", "facility_id", "procedure_name", "price", "currency", "price_type", "source", "created_at"}
	testimonialColumns = []string{"id", "facility_id", "patient_name", "review_text", "rating", "source", "created_at"}
)

const statsQuery = `SELECT
	(SELECT count(*) FROM facilities),
	(SELECT count(*) FROM facilities WHERE website IS NOT NULL AND website <> ''),
	(SELECT count(*) FROM facilities WHERE phone IS NOT NULL AND phone <> ''),
	(SELECT count(*) FROM facilities WHERE contact_email IS NOT NULL AND contact_email <> ''),
	(SELECT count(*) FROM facilities WHERE google_place_id IS NOT NULL),
	(SELECT count(*) FROM doctors),
	(SELECT count(*) FROM procedure_pricing),
	(SELECT count(*) FROM testimonials)`

// builder renders dialect-specific SQL for both store backends.
type builder struct {
	dialect goqu.DialectWrapper
	// list encodes a string set for the backend's column type.
	list func([]string) any
	// contains matches rows whose string-set column holds v.
	contains func(col, v string) exp.Expression
}

func postgresBuilder() builder {
	return builder{
		dialect: goqu.Dialect("postgres"),
		// goqu renders slices as IN lists, so arrays travel as JSON text.
		list: func(v []string) any {
			return goqu.L("ARRAY(SELECT jsonb_array_elements_text(?::jsonb))", jsonList(v))
		},
		contains: func(col, v string) exp.Expression {
			return goqu.L("? = ANY("+col+")", v)
		},
	}
}

func sqliteBuilder() builder {
	return builder{
		dialect: goqu.Dialect("sqlite3"),
		list: func(v []string) any {
			return jsonList(v)
		},
		contains: func(col, v string) exp.Expression {
			return goqu.L("EXISTS (SELECT 1 FROM json_each("+col+") WHERE value = ?)", v)
		},
	}
}

func (b builder) selectFacilities(f FacilityFilter) (string, []any, error) {
	var where []exp.Expression
	if f.NameContains != "" {
		where = append(where, goqu.C("name").ILike("%"+f.NameContains+"%"))
	}
	if f.Country != "" {
		where = append(where, goqu.C("country").Eq(f.Country))
	}
	if f.Specialty != "" {
		where = append(where, b.contains("specialties", f.Specialty))
	}
	if f.MissingContact {
		where = append(where, goqu.Or(
			goqu.C("website").IsNull(), goqu.C("website").Eq(""),
			goqu.C("phone").IsNull(), goqu.C("phone").Eq(""),
		))
	}
	if f.HasWebsite {
		where = append(where, goqu.C("website").IsNotNull(), goqu.C("website").Neq(""))
	}
	if f.MissingEmail {
		where = append(where, goqu.Or(goqu.C("contact_email").IsNull(), goqu.C("contact_email").Eq("")))
	}

	ds := b.dialect.From(tableFacilities).Prepared(true).
		Select(facilityColumns...).
		Where(where...).
		Order(goqu.C("country").Asc(), goqu.C("name").Asc(), goqu.C("id").Asc())
	if f.Limit > 0 {
		ds = ds.Limit(uint(f.Limit))
	}
	return ds.ToSQL()
}

func (b builder) selectFacility(id string) (string, []any, error) {
	return b.dialect.From(tableFacilities).Prepared(true).
		Select(facilityColumns...).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
}

func (b builder) insertFacilities(facilities []model.Facility) (string, []any, error) {
	rows := make([]any, 0, len(facilities))
	for _, f := range facilities {
		procs, err := json.Marshal(nonNilProcedures(f.PopularProcedures))
		if err != nil {
			return "", nil, eris.Wrap(err, "store: marshal popular procedures")
		}
		rows = append(rows, goqu.Record{
			"id":                 f.ID,
			"name":               f.Name,
			"country":            f.Country,
			"city":               f.City,
			"address":            nullString(f.Address),
			"latitude":           nullFloat(f.Latitude),
			"longitude":          nullFloat(f.Longitude),
			"website":            nullString(f.Website),
			"phone":              nullString(f.Phone),
			"contact_email":      nullString(f.ContactEmail),
			"google_place_id":    nullString(f.GooglePlaceID),
			"google_maps_url":    nullString(f.GoogleMapsURL),
			"google_rating":      nullFloat(f.GoogleRating),
			"review_count":       nullInt(f.ReviewCount),
			"specialties":        b.list(f.Specialties),
			"languages":          b.list(f.Languages),
			"jci_accredited":     f.JCIAccredited,
			"popular_procedures": string(procs),
			"created_at":         f.CreatedAt,
			"updated_at":         f.UpdatedAt,
		})
	}
	return b.dialect.Insert(tableFacilities).Prepared(true).Rows(rows...).ToSQL()
}

// fillNull keeps a populated text column and writes v only over NULL or ''.
func fillNull(col string, v any) exp.Expression {
	return goqu.COALESCE(goqu.Func("NULLIF", goqu.C(col), ""), v)
}

func (b builder) contactUpdate(id string, u model.ContactUpdate, now time.Time) (string, []any, error) {
	rec := goqu.Record{"updated_at": now}
	if u.Website != nil {
		rec["website"] = fillNull("website", *u.Website)
	}
	if u.Phone != nil {
		rec["phone"] = fillNull("phone", *u.Phone)
	}
	if u.Address != nil {
		rec["address"] = fillNull("address", *u.Address)
	}
	if u.Latitude != nil {
		rec["latitude"] = goqu.COALESCE(goqu.C("latitude"), *u.Latitude)
	}
	if u.Longitude != nil {
		rec["longitude"] = goqu.COALESCE(goqu.C("longitude"), *u.Longitude)
	}
	if u.GoogleRating != nil {
		rec["google_rating"] = goqu.COALESCE(goqu.C("google_rating"), *u.GoogleRating)
	}
	if u.ReviewCount != nil {
		rec["review_count"] = goqu.COALESCE(goqu.C("review_count"), *u.ReviewCount)
	}
	if u.GooglePlaceID != nil {
		rec["google_place_id"] = *u.GooglePlaceID
	}
	if u.GoogleMapsURL != nil {
		rec["google_maps_url"] = *u.GoogleMapsURL
	}
	return b.dialect.Update(tableFacilities).Prepared(true).
		Set(rec).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
}

func (b builder) emailUpdate(id, email string, now time.Time) (string, []any, error) {
	return b.dialect.Update(tableFacilities).Prepared(true).
		Set(goqu.Record{
			"contact_email": fillNull("contact_email", email),
			"updated_at":    now,
		}).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
}

func (b builder) classificationUpdate(id string, specialties []string, procedures []model.PopularProcedure, now time.Time) (string, []any, error) {
	procs, err := json.Marshal(nonNilProcedures(procedures))
	if err != nil {
		return "", nil, eris.Wrap(err, "store: marshal popular procedures")
	}
	return b.dialect.Update(tableFacilities).Prepared(true).
		Set(goqu.Record{
			"specialties":        b.list(specialties),
			"popular_procedures": string(procs),
			"updated_at":         now,
		}).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
}

// stampFacilities fills missing ids and timestamps before insert.
func stampFacilities(facilities []model.Facility, now time.Time) []model.Facility {
	out := make([]model.Facility, len(facilities))
	for i, f := range facilities {
		if f.ID == "" {
			f.ID = uuid.NewString()
		}
		if f.CreatedAt.IsZero() {
			f.CreatedAt = now
		}
		if f.UpdatedAt.IsZero() {
			f.UpdatedAt = f.CreatedAt
		}
		out[i] = f
	}
	return out
}

// extractionRows lays out a facility's child records for insertion, filling
// ids and timestamps. list encodes the doctors' set columns.
func extractionRows(facilityID string, r model.ExtractionResult, now time.Time, list func([]string) any) (doctors, prices, testimonials [][]any) {
	for _, d := range r.Doctors {
		d.ID, d.FacilityID = orNewID(d.ID), facilityID
		if d.CreatedAt.IsZero() {
			d.CreatedAt = now
		}
		doctors = append(doctors, doctorRow(d, list))
	}
	for _, p := range r.Pricing {
		p.ID, p.FacilityID = orNewID(p.ID), facilityID
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		if p.Currency == "" {
			p.Currency = "USD"
		}
		if p.PriceType == "" {
			p.PriceType = "starting_from"
		}
		prices = append(prices, pricingRow(p))
	}
	for _, t := range r.Testimonials {
		t.ID, t.FacilityID = orNewID(t.ID), facilityID
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		if t.PatientName == "" {
			t.PatientName = "Anonymous"
		}
		testimonials = append(testimonials, testimonialRow(t))
	}
	return doctors, prices, testimonials
}

func orNewID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

// doctorRow lays out a doctor in doctorColumns order; list encodes the set columns.
func doctorRow(d model.Doctor, list func([]string) any) []any {
	return []any{d.ID, d.FacilityID, d.Name, d.Specialty, d.Bio, list(d.Qualifications), list(d.Languages), nullInt(d.YearsExperience), d.Source, d.CreatedAt}
}

func pricingRow(p model.ProcedurePricing) []any {
	return []any{p.ID, p.FacilityID, p.ProcedureName, p.Price, p.Currency, p.PriceType, p.Source, p.CreatedAt}
}

func testimonialRow(t model.Testimonial) []any {
	return []any{t.ID, t.FacilityID, t.PatientName, t.ReviewText, nullInt(t.Rating), t.Source, t.CreatedAt}
}

// insertRows renders a multi-row insert for a child table.
func (b builder) insertRows(table string, columns []string, rows [][]any) (string, []any, error) {
	cols := make([]any, len(columns))
	for i, c := range columns {
		cols[i] = c
	}
	return b.dialect.Insert(table).Prepared(true).Cols(cols...).Vals(rows...).ToSQL()
}

func jsonList(v []string) string {
	if v == nil {
		v = []string{}
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func nonNilProcedures(p []model.PopularProcedure) []model.PopularProcedure {
	if p == nil {
		return []model.PopularProcedure{}
	}
	return p
}

func nullString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
