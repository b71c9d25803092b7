package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galtpos/oasara-sub004/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func seedFacilities(t *testing.T, st *SQLiteStore) []model.Facility {
	t.Helper()
	site := "https://www.bumrungrad.com"
	phone := "+66 2 066 8888"
	in := []model.Facility{
		{ID: "f-1", Name: "Bumrungrad International", Country: "Thailand", City: "Bangkok", Website: &site, Phone: &phone,
			Specialties: []string{"General Medicine", "Cardiology"}, Languages: []string{"English", "Thai"}, JCIAccredited: true},
		{ID: "f-2", Name: "Apollo Hospitals", Country: "India", City: "Chennai",
			Specialties: []string{"General Medicine", "Orthopedics"}, Languages: []string{"English", "Hindi"}},
		{ID: "f-3", Name: "Samitivej Sukhumvit", Country: "Thailand", City: "Bangkok"},
	}
	n, err := st.InsertFacilities(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	return in
}

func TestSQLite_InsertAndGet(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedFacilities(t, st)

	f, err := st.GetFacility(context.Background(), "f-1")
	require.NoError(t, err)
	assert.Equal(t, "Bumrungrad International", f.Name)
	assert.Equal(t, "https://www.bumrungrad.com", model.Str(f.Website))
	assert.Nil(t, f.ContactEmail)
	assert.Equal(t, []string{"General Medicine", "Cardiology"}, f.Specialties)
	assert.True(t, f.JCIAccredited)
	assert.Empty(t, f.PopularProcedures)
	assert.False(t, f.CreatedAt.IsZero())
}

func TestSQLite_InsertAssignsIDs(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.InsertFacilities(ctx, []model.Facility{{Name: "Acibadem", Country: "Turkey"}})
	require.NoError(t, err)

	out, err := st.ListFacilities(ctx, FacilityFilter{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.NotEmpty(t, out[0].ID)
}

func TestSQLite_GetFacility_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetFacility(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSQLite_ListFacilities_Filters(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedFacilities(t, st)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter FacilityFilter
		want   []string
	}{
		{"all ordered by country then name", FacilityFilter{}, []string{"f-2", "f-1", "f-3"}},
		{"name contains is case-insensitive", FacilityFilter{NameContains: "apollo"}, []string{"f-2"}},
		{"country", FacilityFilter{Country: "Thailand"}, []string{"f-1", "f-3"}},
		{"specialty", FacilityFilter{Specialty: "Orthopedics"}, []string{"f-2"}},
		{"missing contact", FacilityFilter{MissingContact: true}, []string{"f-2", "f-3"}},
		{"has website", FacilityFilter{HasWebsite: true}, []string{"f-1"}},
		{"limit", FacilityFilter{Limit: 1}, []string{"f-2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := st.ListFacilities(ctx, tt.filter)
			require.NoError(t, err)
			var ids []string
			for _, f := range out {
				ids = append(ids, f.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestSQLite_ApplyContactUpdate_FillsOnlyNulls(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedFacilities(t, st)
	ctx := context.Background()

	r := model.PlaceResolution{
		Outcome:          model.OutcomeResolved,
		PlaceID:          "ChIJ-bumrungrad",
		Website:          "https://other.example",
		Phone:            "+66 0000",
		FormattedAddress: "33 Sukhumvit 3, Bangkok",
		MapsURL:          "https://maps.google.com/?cid=42",
		Latitude:         13.746,
		Longitude:        100.552,
		Rating:           4.4,
		RatingsTotal:     5000,
	}
	require.NoError(t, st.ApplyContactUpdate(ctx, "f-1", r.Update()))

	f, err := st.GetFacility(ctx, "f-1")
	require.NoError(t, err)
	assert.Equal(t, "https://www.bumrungrad.com", model.Str(f.Website))
	assert.Equal(t, "+66 2 066 8888", model.Str(f.Phone))
	assert.Equal(t, "33 Sukhumvit 3, Bangkok", model.Str(f.Address))
	assert.Equal(t, "ChIJ-bumrungrad", model.Str(f.GooglePlaceID))
	require.NotNil(t, f.ReviewCount)
	assert.Equal(t, 5000, *f.ReviewCount)
	require.NotNil(t, f.Latitude)
	assert.InDelta(t, 13.746, *f.Latitude, 1e-9)
}

func TestSQLite_ApplyContactUpdate_FillsBlankStrings(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	blank := ""
	_, err := st.InsertFacilities(ctx, []model.Facility{{ID: "f-9", Name: "Blank", Website: &blank}})
	require.NoError(t, err)

	site := "https://filled.example"
	require.NoError(t, st.ApplyContactUpdate(ctx, "f-9", model.ContactUpdate{Website: &site}))

	f, err := st.GetFacility(ctx, "f-9")
	require.NoError(t, err)
	assert.Equal(t, site, model.Str(f.Website))
}

func TestSQLite_ApplyContactUpdate_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)
	site := "https://x.example"

	err := st.ApplyContactUpdate(context.Background(), "missing", model.ContactUpdate{Website: &site})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSQLite_SetContactEmail_KeepsExisting(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedFacilities(t, st)
	ctx := context.Background()

	require.NoError(t, st.SetContactEmail(ctx, "f-2", "international@apollo.example"))
	require.NoError(t, st.SetContactEmail(ctx, "f-2", "info@apollo.example"))

	f, err := st.GetFacility(ctx, "f-2")
	require.NoError(t, err)
	assert.Equal(t, "international@apollo.example", model.Str(f.ContactEmail))

	out, err := st.ListFacilities(ctx, FacilityFilter{MissingEmail: true})
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestSQLite_UpdateClassification(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedFacilities(t, st)
	ctx := context.Background()

	procs := []model.PopularProcedure{{Name: "Heart Bypass", PriceRange: "Contact for pricing", WaitTime: "1-2 weeks"}}
	require.NoError(t, st.UpdateClassification(ctx, "f-3", []string{"General Medicine", "Cosmetic Surgery"}, procs))

	f, err := st.GetFacility(ctx, "f-3")
	require.NoError(t, err)
	assert.Equal(t, []string{"General Medicine", "Cosmetic Surgery"}, f.Specialties)
	assert.Equal(t, procs, f.PopularProcedures)

	out, err := st.ListFacilities(ctx, FacilityFilter{Specialty: "Cosmetic Surgery"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "f-3", out[0].ID)
}

func TestSQLite_SaveExtractionAndStats(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedFacilities(t, st)
	ctx := context.Background()
	years := 20
	rating := 5

	err := st.SaveExtraction(ctx, "f-1", model.ExtractionResult{
		Doctors: []model.Doctor{
			{Name: "Dr. Somchai", Specialty: "Cardiology", Qualifications: []string{"MD", "FACC"}, YearsExperience: &years},
			{Name: "Dr. Nattaya"},
		},
		Pricing:      []model.ProcedurePricing{{ProcedureName: "Knee Replacement", Price: 12000}},
		Testimonials: []model.Testimonial{{ReviewText: "Excellent care from arrival to discharge.", Rating: &rating}},
	})
	require.NoError(t, err)

	stats, err := st.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Facilities)
	assert.Equal(t, 1, stats.WithWebsite)
	assert.Equal(t, 1, stats.WithPhone)
	assert.Equal(t, 0, stats.WithEmail)
	assert.Equal(t, 2, stats.Doctors)
	assert.Equal(t, 1, stats.Prices)
	assert.Equal(t, 1, stats.Testimonials)

	var patient string
	require.NoError(t, st.db.QueryRowContext(ctx, "SELECT patient_name FROM testimonials").Scan(&patient))
	assert.Equal(t, "Anonymous", patient)
}
