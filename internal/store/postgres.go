package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/galtpos/oasara-sub004/internal/db"
	"github.com/galtpos/oasara-sub004/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
	q       builder
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close, q: postgresBuilder()}, nil
}

// newPostgresWithPool wraps an existing pool, e.g. a pgxmock pool in tests.
func newPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, q: postgresBuilder()}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS facilities (
	id                 TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name               TEXT NOT NULL,
	country            TEXT NOT NULL DEFAULT '',
	city               TEXT NOT NULL DEFAULT '',
	address            TEXT,
	latitude           DOUBLE PRECISION,
	longitude          DOUBLE PRECISION,
	website            TEXT,
	phone              TEXT,
	contact_email      TEXT,
	google_place_id    TEXT,
	google_maps_url    TEXT,
	google_rating      DOUBLE PRECISION,
	review_count       INTEGER,
	specialties        TEXT[] NOT NULL DEFAULT '{}',
	languages          TEXT[] NOT NULL DEFAULT '{}',
	jci_accredited     BOOLEAN NOT NULL DEFAULT false,
	popular_procedures JSONB NOT NULL DEFAULT '[]',
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS doctors (
	id               TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	facility_id      TEXT NOT NULL REFERENCES facilities(id),
	name             TEXT NOT NULL,
	specialty        TEXT NOT NULL DEFAULT '',
	bio              TEXT NOT NULL DEFAULT '',
	qualifications   TEXT[] NOT NULL DEFAULT '{}',
	languages        TEXT[] NOT NULL DEFAULT '{}',
	years_experience INTEGER,
	source           TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS procedure_pricing (
	id             TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	facility_id    TEXT NOT NULL REFERENCES facilities(id),
	procedure_name TEXT NOT NULL,
	price          DOUBLE PRECISION NOT NULL,
	currency       TEXT NOT NULL DEFAULT 'USD',
	price_type     TEXT NOT NULL DEFAULT 'starting_from',
	source         TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS testimonials (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	facility_id  TEXT NOT NULL REFERENCES facilities(id),
	patient_name TEXT NOT NULL DEFAULT 'Anonymous',
	review_text  TEXT NOT NULL,
	rating       INTEGER,
	source       TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_facilities_country_name ON facilities(country, name);
CREATE INDEX IF NOT EXISTS idx_facilities_name ON facilities(name);
CREATE INDEX IF NOT EXISTS idx_facilities_specialties ON facilities USING GIN (specialties);
CREATE INDEX IF NOT EXISTS idx_doctors_facility_id ON doctors(facility_id);
CREATE INDEX IF NOT EXISTS idx_procedure_pricing_facility_id ON procedure_pricing(facility_id);
CREATE INDEX IF NOT EXISTS idx_testimonials_facility_id ON testimonials(facility_id);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) InsertFacilities(ctx context.Context, facilities []model.Facility) (int, error) {
	if len(facilities) == 0 {
		return 0, nil
	}
	query, args, err := s.q.insertFacilities(stampFacilities(facilities, time.Now().UTC()))
	if err != nil {
		return 0, eris.Wrap(err, "postgres: build insert facilities")
	}
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: insert facilities")
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) GetFacility(ctx context.Context, id string) (*model.Facility, error) {
	query, args, err := s.q.selectFacility(id)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: build get facility")
	}
	f, err := scanPostgresFacility(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "postgres: get facility %s", id)
		}
		return nil, eris.Wrapf(err, "postgres: get facility %s", id)
	}
	return f, nil
}

func (s *PostgresStore) ListFacilities(ctx context.Context, filter FacilityFilter) ([]model.Facility, error) {
	query, args, err := s.q.selectFacilities(filter)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: build list facilities")
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list facilities")
	}
	defer rows.Close()

	var out []model.Facility
	for rows.Next() {
		f, err := scanPostgresFacility(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan facility")
		}
		out = append(out, *f)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate facilities")
}

func (s *PostgresStore) ApplyContactUpdate(ctx context.Context, id string, u model.ContactUpdate) error {
	if u.Empty() {
		return nil
	}
	query, args, err := s.q.contactUpdate(id, u, time.Now().UTC())
	if err != nil {
		return eris.Wrap(err, "postgres: build contact update")
	}
	return s.execOne(ctx, "contact update", id, query, args)
}

func (s *PostgresStore) SetContactEmail(ctx context.Context, id, email string) error {
	query, args, err := s.q.emailUpdate(id, email, time.Now().UTC())
	if err != nil {
		return eris.Wrap(err, "postgres: build email update")
	}
	return s.execOne(ctx, "email update", id, query, args)
}

func (s *PostgresStore) UpdateClassification(ctx context.Context, id string, specialties []string, procedures []model.PopularProcedure) error {
	query, args, err := s.q.classificationUpdate(id, specialties, procedures, time.Now().UTC())
	if err != nil {
		return eris.Wrap(err, "postgres: build classification update")
	}
	return s.execOne(ctx, "classification update", id, query, args)
}

func (s *PostgresStore) execOne(ctx context.Context, what, id, query string, args []any) error {
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return eris.Wrapf(err, "postgres: %s %s", what, id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: %s %s", what, id)
	}
	return nil
}

// SaveExtraction appends a facility's child records in one transaction.
func (s *PostgresStore) SaveExtraction(ctx context.Context, facilityID string, result model.ExtractionResult) error {
	if result.Total() == 0 {
		return nil
	}

	doctors, prices, testimonials := extractionRows(facilityID, result, time.Now().UTC(), func(v []string) any {
		if v == nil {
			return []string{}
		}
		return v
	})

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin save extraction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := db.CopyFrom(ctx, tx, tableDoctors, doctorColumns, doctors); err != nil {
		return eris.Wrapf(err, "postgres: save doctors for %s", facilityID)
	}
	if _, err := db.CopyFrom(ctx, tx, tablePricing, pricingColumns, prices); err != nil {
		return eris.Wrapf(err, "postgres: save pricing for %s", facilityID)
	}
	if _, err := db.CopyFrom(ctx, tx, tableTestimonials, testimonialColumns, testimonials); err != nil {
		return eris.Wrapf(err, "postgres: save testimonials for %s", facilityID)
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit save extraction")
}

func (s *PostgresStore) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	err := s.pool.QueryRow(ctx, statsQuery).Scan(
		&st.Facilities, &st.WithWebsite, &st.WithPhone, &st.WithEmail,
		&st.WithPlaceID, &st.Doctors, &st.Prices, &st.Testimonials,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: stats")
	}
	return &st, nil
}

func scanPostgresFacility(row pgx.Row) (*model.Facility, error) {
	var f model.Facility
	var procs []byte
	err := row.Scan(
		&f.ID, &f.Name, &f.Country, &f.City, &f.Address, &f.Latitude, &f.Longitude,
		&f.Website, &f.Phone, &f.ContactEmail, &f.GooglePlaceID, &f.GoogleMapsURL,
		&f.GoogleRating, &f.ReviewCount, &f.Specialties, &f.Languages, &f.JCIAccredited,
		&procs, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(procs) > 0 {
		if err := json.Unmarshal(procs, &f.PopularProcedures); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal popular procedures")
		}
	}
	return &f, nil
}
