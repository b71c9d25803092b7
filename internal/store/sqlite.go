package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/galtpos/oasara-sub004/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. String sets and
// popular procedures are stored as JSON text.
type SQLiteStore struct {
	db *sql.DB
	q  builder
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db, q: sqliteBuilder()}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS facilities (
	id                 TEXT PRIMARY KEY,
	name               TEXT NOT NULL,
	country            TEXT NOT NULL DEFAULT '',
	city               TEXT NOT NULL DEFAULT '',
	address            TEXT,
	latitude           REAL,
	longitude          REAL,
	website            TEXT,
	phone              TEXT,
	contact_email      TEXT,
	google_place_id    TEXT,
	google_maps_url    TEXT,
	google_rating      REAL,
	review_count       INTEGER,
	specialties        TEXT NOT NULL DEFAULT '[]',
	languages          TEXT NOT NULL DEFAULT '[]',
	jci_accredited     BOOLEAN NOT NULL DEFAULT 0,
	popular_procedures TEXT NOT NULL DEFAULT '[]',
	created_at         DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at         DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS doctors (
	id               TEXT PRIMARY KEY,
	facility_id      TEXT NOT NULL REFERENCES facilities(id),
	name             TEXT NOT NULL,
	specialty        TEXT NOT NULL DEFAULT '',
	bio              TEXT NOT NULL DEFAULT '',
	qualifications   TEXT NOT NULL DEFAULT '[]',
	languages        TEXT NOT NULL DEFAULT '[]',
	years_experience INTEGER,
	source           TEXT NOT NULL DEFAULT '',
	created_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS procedure_pricing (
	id             TEXT PRIMARY KEY,
	facility_id    TEXT NOT NULL REFERENCES facilities(id),
	procedure_name TEXT NOT NULL,
	price          REAL NOT NULL,
	currency       TEXT NOT NULL DEFAULT 'USD',
	price_type     TEXT NOT NULL DEFAULT 'starting_from',
	source         TEXT NOT NULL DEFAULT '',
	created_at     DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS testimonials (
	id           TEXT PRIMARY KEY,
	facility_id  TEXT NOT NULL REFERENCES facilities(id),
	patient_name TEXT NOT NULL DEFAULT 'Anonymous',
	review_text  TEXT NOT NULL,
	rating       INTEGER,
	source       TEXT NOT NULL DEFAULT '',
	created_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_facilities_country_name ON facilities(country, name);
CREATE INDEX IF NOT EXISTS idx_doctors_facility_id ON doctors(facility_id);
CREATE INDEX IF NOT EXISTS idx_procedure_pricing_facility_id ON procedure_pricing(facility_id);
CREATE INDEX IF NOT EXISTS idx_testimonials_facility_id ON testimonials(facility_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) InsertFacilities(ctx context.Context, facilities []model.Facility) (int, error) {
	if len(facilities) == 0 {
		return 0, nil
	}
	query, args, err := s.q.insertFacilities(stampFacilities(facilities, time.Now().UTC()))
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: build insert facilities")
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: insert facilities")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: rows affected")
	}
	return int(n), nil
}

func (s *SQLiteStore) GetFacility(ctx context.Context, id string) (*model.Facility, error) {
	query, args, err := s.q.selectFacility(id)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: build get facility")
	}
	f, err := scanSQLiteFacility(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "sqlite: get facility %s", id)
		}
		return nil, eris.Wrapf(err, "sqlite: get facility %s", id)
	}
	return f, nil
}

func (s *SQLiteStore) ListFacilities(ctx context.Context, filter FacilityFilter) ([]model.Facility, error) {
	query, args, err := s.q.selectFacilities(filter)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: build list facilities")
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list facilities")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.Facility
	for rows.Next() {
		f, err := scanSQLiteFacility(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan facility")
		}
		out = append(out, *f)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate facilities")
}

func (s *SQLiteStore) ApplyContactUpdate(ctx context.Context, id string, u model.ContactUpdate) error {
	if u.Empty() {
		return nil
	}
	query, args, err := s.q.contactUpdate(id, u, time.Now().UTC())
	if err != nil {
		return eris.Wrap(err, "sqlite: build contact update")
	}
	return s.execOne(ctx, "contact update", id, query, args)
}

func (s *SQLiteStore) SetContactEmail(ctx context.Context, id, email string) error {
	query, args, err := s.q.emailUpdate(id, email, time.Now().UTC())
	if err != nil {
		return eris.Wrap(err, "sqlite: build email update")
	}
	return s.execOne(ctx, "email update", id, query, args)
}

func (s *SQLiteStore) UpdateClassification(ctx context.Context, id string, specialties []string, procedures []model.PopularProcedure) error {
	query, args, err := s.q.classificationUpdate(id, specialties, procedures, time.Now().UTC())
	if err != nil {
		return eris.Wrap(err, "sqlite: build classification update")
	}
	return s.execOne(ctx, "classification update", id, query, args)
}

func (s *SQLiteStore) execOne(ctx context.Context, what, id, query string, args []any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return eris.Wrapf(err, "sqlite: %s %s", what, id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "sqlite: %s %s", what, id)
	}
	return nil
}

// SaveExtraction appends a facility's child records in one transaction.
func (s *SQLiteStore) SaveExtraction(ctx context.Context, facilityID string, result model.ExtractionResult) error {
	if result.Total() == 0 {
		return nil
	}
	doctors, prices, testimonials := extractionRows(facilityID, result, time.Now().UTC(), s.q.list)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save extraction")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, batch := range []struct {
		table   string
		columns []string
		rows    [][]any
	}{
		{tableDoctors, doctorColumns, doctors},
		{tablePricing, pricingColumns, prices},
		{tableTestimonials, testimonialColumns, testimonials},
	} {
		if len(batch.rows) == 0 {
			continue
		}
		query, args, err := s.q.insertRows(batch.table, batch.columns, batch.rows)
		if err != nil {
			return eris.Wrapf(err, "sqlite: build insert %s", batch.table)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return eris.Wrapf(err, "sqlite: insert %s for %s", batch.table, facilityID)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit save extraction")
}

func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, statsQuery).Scan(
		&st.Facilities, &st.WithWebsite, &st.WithPhone, &st.WithEmail,
		&st.WithPlaceID, &st.Doctors, &st.Prices, &st.Testimonials,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: stats")
	}
	return &st, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteFacility(row rowScanner) (*model.Facility, error) {
	var f model.Facility
	var specialties, languages, procs string
	err := row.Scan(
		&f.ID, &f.Name, &f.Country, &f.City, &f.Address, &f.Latitude, &f.Longitude,
		&f.Website, &f.Phone, &f.ContactEmail, &f.GooglePlaceID, &f.GoogleMapsURL,
		&f.GoogleRating, &f.ReviewCount, &specialties, &languages, &f.JCIAccredited,
		&procs, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(specialties), &f.Specialties); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal specialties")
	}
	if err := json.Unmarshal([]byte(languages), &f.Languages); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal languages")
	}
	if err := json.Unmarshal([]byte(procs), &f.PopularProcedures); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal popular procedures")
	}
	return &f, nil
}
