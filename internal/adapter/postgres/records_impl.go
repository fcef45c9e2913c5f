package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/pane-scraper/internal/repository"
)

// Schema creates the table the record sink writes to.
const Schema = `
CREATE TABLE IF NOT EXISTS scraped_records (
	id          BIGSERIAL PRIMARY KEY,
	run_id      TEXT        NOT NULL,
	profile     TEXT        NOT NULL,
	ordinal     INTEGER     NOT NULL,
	header      TEXT[]      NOT NULL,
	fields      JSONB       NOT NULL,
	scraped_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (run_id, ordinal)
);
CREATE INDEX IF NOT EXISTS scraped_records_profile_idx ON scraped_records (profile, scraped_at);
`

// RecordsRepoImpl writes a Result Set to PostgreSQL in a single transaction.
type RecordsRepoImpl struct {
	db *pgxpool.Pool
}

var _ repository.RecordSink = (*RecordsRepoImpl)(nil)

// NewRecordsRepo creates a new instance of RecordsRepoImpl.
func NewRecordsRepo(db *pgxpool.Pool) *RecordsRepoImpl {
	return &RecordsRepoImpl{db: db}
}

// Open connects to url and makes sure the schema exists.
func Open(ctx context.Context, url string) (*pgxpool.Pool, error) {
	db, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(ctx, Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}

func (r *RecordsRepoImpl) Name() string   { return "postgres" }
func (r *RecordsRepoImpl) Target() string { return "postgres:scraped_records" }

// Write inserts every record in one batch inside one transaction.
func (r *RecordsRepoImpl) Write(ctx context.Context, export repository.Export) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	batch := &pgx.Batch{}
	for i, rec := range export.Records {
		fieldsJSON, err := json.Marshal(rec.Map())
		if err != nil {
			return err
		}
		batch.Queue(`INSERT INTO scraped_records (run_id, profile, ordinal, header, fields, scraped_at)
		             VALUES ($1, $2, $3, $4, $5, $6)
		             ON CONFLICT (run_id, ordinal) DO UPDATE SET fields = EXCLUDED.fields`,
			export.RunID, export.Profile, i+1, export.Header, fieldsJSON, now)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
