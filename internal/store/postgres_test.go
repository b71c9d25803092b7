package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galtpos/oasara-sub004/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return newPostgresWithPool(mock), mock
}

var facilityColumnNames = []string{
	"id", "name", "country", "city", "address", "latitude", "longitude",
	"website", "phone", "contact_email", "google_place_id", "google_maps_url",
	"google_rating", "review_count", "specialties", "languages", "jci_accredited",
	"popular_procedures", "created_at", "updated_at",
}

func facilityRow(id, name string, website *string) []any {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rating := 4.6
	return []any{
		id, name, "Thailand", "Bangkok", (*string)(nil), (*float64)(nil), (*float64)(nil),
		website, (*string)(nil), (*string)(nil), (*string)(nil), (*string)(nil),
		&rating, (*int)(nil), []string{"Cardiology"}, []string{"English", "Thai"}, true,
		[]byte(`[{"name":"General Consultation","price_range":"Contact for pricing","wait_time":"1-2 weeks"}]`),
		now, now,
	}
}

// insertedFacilityArgs is the placeholder list for one inserted facility row.
// goqu renders record columns in sorted order:
// address, city, contact_email, country, created_at, google_maps_url,
// google_place_id, google_rating, id, jci_accredited, languages, latitude,
// longitude, name, phone, popular_procedures, review_count, specialties,
// updated_at, website.
func insertedFacilityArgs(name, country, city, specialties string) []any {
	args := make([]any, 20)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	args[1] = city
	args[3] = country
	args[9] = false
	args[13] = name
	args[15] = "[]"
	args[17] = specialties
	return args
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS facilities`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertFacilities(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	args := append(
		insertedFacilityArgs("Bumrungrad International", "Thailand", "Bangkok", `["Cardiology"]`),
		insertedFacilityArgs("Apollo Hospitals", "India", "Chennai", "[]")...,
	)
	mock.ExpectExec(`INSERT INTO "facilities" \("address", "city", .*"website"\) VALUES \(\$1, .*ARRAY\(SELECT jsonb_array_elements_text\(\$\d+::jsonb\)\)`).
		WithArgs(args...).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))

	n, err := s.InsertFacilities(context.Background(), []model.Facility{
		{Name: "Bumrungrad International", Country: "Thailand", City: "Bangkok", Specialties: []string{"Cardiology"}},
		{Name: "Apollo Hospitals", Country: "India", City: "Chennai"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertFacilities_Empty(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	n, err := s.InsertFacilities(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetFacility(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	site := "https://www.bumrungrad.com"

	mock.ExpectQuery(`SELECT .* FROM "facilities" WHERE \("id" = \$1\)`).
		WithArgs("f-1").
		WillReturnRows(pgxmock.NewRows(facilityColumnNames).AddRow(facilityRow("f-1", "Bumrungrad", &site)...))

	f, err := s.GetFacility(context.Background(), "f-1")
	require.NoError(t, err)
	assert.Equal(t, "Bumrungrad", f.Name)
	assert.True(t, f.HasWebsite())
	assert.False(t, f.HasPhone())
	assert.Equal(t, []string{"Cardiology"}, f.Specialties)
	require.Len(t, f.PopularProcedures, 1)
	assert.Equal(t, "General Consultation", f.PopularProcedures[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetFacility_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT .* FROM "facilities"`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetFacility(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListFacilities(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT .* FROM "facilities" WHERE \(\("name" ILIKE \$1\) AND \("country" = \$2\) AND .*"website" IS NULL.* ORDER BY "country" ASC, "name" ASC, "id" ASC LIMIT \$5`).
		WithArgs("%bangkok%", "Thailand", "", "", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(facilityColumnNames).
			AddRow(facilityRow("f-1", "Bumrungrad", nil)...).
			AddRow(facilityRow("f-2", "Samitivej", nil)...))

	out, err := s.ListFacilities(context.Background(), FacilityFilter{NameContains: "bangkok", Country: "Thailand", MissingContact: true, Limit: 10})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "f-1", out[0].ID)
	assert.Equal(t, "Samitivej", out[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListFacilities_Error(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT .* FROM "facilities"`).
		WillReturnError(errors.New("connection refused"))

	_, err := s.ListFacilities(context.Background(), FacilityFilter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list facilities")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ApplyContactUpdate(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	site := "https://example.com"
	place := "ChIJ123"

	// Sorted columns: google_place_id, updated_at, website.
	mock.ExpectExec(`UPDATE "facilities" SET "google_place_id"=\$1,"updated_at"=\$2,"website"=COALESCE\(NULLIF\("website", \$3\), \$4\) WHERE \("id" = \$5\)`).
		WithArgs(place, pgxmock.AnyArg(), "", site, "f-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.ApplyContactUpdate(context.Background(), "f-1", model.ContactUpdate{Website: &site, GooglePlaceID: &place})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ApplyContactUpdate_Empty(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	require.NoError(t, s.ApplyContactUpdate(context.Background(), "f-1", model.ContactUpdate{}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SetContactEmail_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE "facilities" SET "contact_email"=COALESCE\(NULLIF\("contact_email", \$1\), \$2\),"updated_at"=\$3 WHERE \("id" = \$4\)`).
		WithArgs("", "info@example.com", pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.SetContactEmail(context.Background(), "missing", "info@example.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateClassification(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE "facilities" SET "popular_procedures"=\$1,"specialties"=ARRAY\(SELECT jsonb_array_elements_text\(\$2::jsonb\)\),"updated_at"=\$3 WHERE \("id" = \$4\)`).
		WithArgs(
			`[{"name":"Heart Bypass","price_range":"Contact for pricing","wait_time":"1-2 weeks"}]`,
			`["General Medicine","Cardiology"]`,
			pgxmock.AnyArg(),
			"f-1",
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.UpdateClassification(context.Background(), "f-1",
		[]string{"General Medicine", "Cardiology"},
		[]model.PopularProcedure{{Name: "Heart Bypass", PriceRange: "Contact for pricing", WaitTime: "1-2 weeks"}})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveExtraction(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	years := 15

	mock.ExpectBegin()
	mock.ExpectCopyFrom(pgx.Identifier{"doctors"}, doctorColumns).
		WillReturnResult(1)
	mock.ExpectCopyFrom(pgx.Identifier{"procedure_pricing"}, pricingColumns).
		WillReturnResult(2)
	mock.ExpectCommit()

	err := s.SaveExtraction(context.Background(), "f-1", model.ExtractionResult{
		Doctors: []model.Doctor{{Name: "Dr. Somchai", Specialty: "Cardiology", YearsExperience: &years}},
		Pricing: []model.ProcedurePricing{
			{ProcedureName: "Knee Replacement", Price: 12000},
			{ProcedureName: "Hip Replacement", Price: 14000},
		},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveExtraction_RollsBackOnError(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectCopyFrom(pgx.Identifier{"doctors"}, doctorColumns).
		WillReturnError(errors.New("copy failed"))
	mock.ExpectRollback()

	err := s.SaveExtraction(context.Background(), "f-1", model.ExtractionResult{
		Doctors: []model.Doctor{{Name: "Dr. Somchai"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save doctors")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveExtraction_Empty(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	require.NoError(t, s.SaveExtraction(context.Background(), "f-1", model.ExtractionResult{}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Stats(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT\s+\(SELECT count\(\*\) FROM facilities\)`).
		WillReturnRows(pgxmock.NewRows([]string{"a", "b", "c", "d", "e", "f", "g", "h"}).
			AddRow(10, 7, 6, 3, 8, 20, 15, 4))

	st, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, st.Facilities)
	assert.Equal(t, 7, st.WithWebsite)
	assert.Equal(t, 4, st.Testimonials)
	assert.NoError(t, mock.ExpectationsWereMet())
}
