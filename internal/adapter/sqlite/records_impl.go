package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/user/pane-scraper/internal/repository"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS scraped_records (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id     TEXT    NOT NULL,
	profile    TEXT    NOT NULL,
	ordinal    INTEGER NOT NULL,
	header     TEXT    NOT NULL,
	fields     TEXT    NOT NULL,
	scraped_at TEXT    NOT NULL,
	UNIQUE (run_id, ordinal)
);`

// RecordsRepoImpl writes a Result Set to a local SQLite file.
type RecordsRepoImpl struct {
	db   *sql.DB
	path string
}

var _ repository.RecordSink = (*RecordsRepoImpl)(nil)

// pathEscaper escapes the characters SQLite URI filenames treat as delimiters.
var pathEscaper = strings.NewReplacer("%", "%25", "?", "%3F", "#", "%23")

// dsn builds a modernc sqlite URI such as file:foo.db?_pragma=busy_timeout(5000).
func dsn(path string) string {
	return "file:" + pathEscaper.Replace(path) + "?_pragma=busy_timeout(5000)"
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*RecordsRepoImpl, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &RecordsRepoImpl{db: db, path: path}, nil
}

func (r *RecordsRepoImpl) Close() error { return r.db.Close() }

func (r *RecordsRepoImpl) Name() string   { return "sqlite" }
func (r *RecordsRepoImpl) Target() string { return r.path }

func (r *RecordsRepoImpl) Write(ctx context.Context, export repository.Export) error {
	header, err := json.Marshal(export.Header)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO scraped_records (run_id, profile, ordinal, header, fields, scraped_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id, ordinal) DO UPDATE SET fields = excluded.fields`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for i, rec := range export.Records {
		fields, err := json.Marshal(rec.Map())
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, export.RunID, export.Profile, i+1, string(header), string(fields), now); err != nil {
			return fmt.Errorf("insert record %d: %w", i+1, err)
		}
	}
	return tx.Commit()
}

// Count returns how many records a run stored.
func (r *RecordsRepoImpl) Count(ctx context.Context, runID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scraped_records WHERE run_id = ?`, runID).Scan(&n)
	return n, err
}
