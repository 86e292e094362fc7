package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/imgcrawl/internal/model"
)

// DBFileName is the name of the history database inside the data directory.
const DBFileName = "imgcrawl.db"

// ErrRunNotFound is returned when a run ID is not in the history.
var ErrRunNotFound = errors.New("run not found")

// HistoryDB stores finished crawl runs in SQLite.
// It keeps one row per run plus the run's image records and failures.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if _, err := db.ExecContext(context.Background(), "PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// Path returns the database file path.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- One row per finished crawl
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		seed_url TEXT NOT NULL,
		max_depth INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		pages_fetched INTEGER NOT NULL DEFAULT 0,
		image_count INTEGER NOT NULL DEFAULT 0,
		failure_count INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_runs_seed ON runs(seed_url);

	-- Image records in collection order
	CREATE TABLE IF NOT EXISTS images (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		image_url TEXT NOT NULL,
		source_url TEXT NOT NULL,
		depth INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_images_run ON images(run_id, seq);
	CREATE INDEX IF NOT EXISTS idx_images_url ON images(image_url);

	-- Pages skipped during a run
	CREATE TABLE IF NOT EXISTS failures (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		depth INTEGER NOT NULL,
		kind TEXT NOT NULL,
		status_code INTEGER,
		message TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_failures_run ON failures(run_id);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// RunSummary is one row of the runs table.
type RunSummary struct {
	RunID        string
	SeedURL      string
	MaxDepth     int
	StartedAt    time.Time
	FinishedAt   time.Time
	PagesFetched int
	ImageCount   int
	FailureCount int
}

// SaveCrawlReport stores a finished report, its images and its failures in
// a single transaction. Saving the same run twice fails on the primary key.
func (hdb *HistoryDB) SaveCrawlReport(ctx context.Context, report *model.CrawlReport) (err error) {
	records := report.Results.Records()
	failures := report.Failures()

	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO runs (run_id, seed_url, max_depth, started_at, finished_at, pages_fetched, image_count, failure_count)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		report.RunID,
		report.SeedURL,
		report.MaxDepth,
		formatTimestamp(report.StartedAt),
		formatTimestamp(report.FinishedAt),
		report.PagesFetched(),
		len(records),
		len(failures),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	imgStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO images (run_id, seq, image_url, source_url, depth)
	VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare image insert: %w", err)
	}
	defer imgStmt.Close()

	for i, rec := range records {
		if _, err = imgStmt.ExecContext(ctx, report.RunID, i, rec.ImageURL, rec.SourceURL, rec.Depth); err != nil {
			return fmt.Errorf("failed to insert image: %w", err)
		}
	}

	failStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO failures (run_id, url, depth, kind, status_code, message)
	VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare failure insert: %w", err)
	}
	defer failStmt.Close()

	for _, f := range failures {
		if _, err = failStmt.ExecContext(ctx, report.RunID, f.URL, f.Depth, string(f.Kind), f.StatusCode, f.Message); err != nil {
			return fmt.Errorf("failed to insert failure: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// ListRuns returns up to limit runs, most recent first.
// A limit of zero or less returns all runs.
func (hdb *HistoryDB) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `
	SELECT run_id, seed_url, max_depth, started_at, finished_at, pages_fetched, image_count, failure_count
	FROM runs
	ORDER BY started_at DESC, rowid DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	results := make([]RunSummary, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *run)
	}

	return results, rows.Err()
}

// GetRun returns a single run. It returns ErrRunNotFound for an unknown ID.
func (hdb *HistoryDB) GetRun(ctx context.Context, runID string) (*RunSummary, error) {
	row := hdb.db.QueryRowContext(ctx, `
	SELECT run_id, seed_url, max_depth, started_at, finished_at, pages_fetched, image_count, failure_count
	FROM runs
	WHERE run_id = ?
	`, runID)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// GetRunImages returns the image records of a run in collection order.
// An unknown run yields an empty slice.
func (hdb *HistoryDB) GetRunImages(ctx context.Context, runID string) ([]model.ImageRecord, error) {
	rows, err := hdb.db.QueryContext(ctx, `
	SELECT image_url, source_url, depth
	FROM images
	WHERE run_id = ?
	ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run images: %w", err)
	}
	defer rows.Close()

	results := make([]model.ImageRecord, 0)
	for rows.Next() {
		var rec model.ImageRecord
		if err := rows.Scan(&rec.ImageURL, &rec.SourceURL, &rec.Depth); err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		results = append(results, rec)
	}

	return results, rows.Err()
}

// GetRunFailures returns the failures recorded for a run.
func (hdb *HistoryDB) GetRunFailures(ctx context.Context, runID string) ([]model.CrawlFailure, error) {
	rows, err := hdb.db.QueryContext(ctx, `
	SELECT url, depth, kind, status_code, message
	FROM failures
	WHERE run_id = ?
	ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run failures: %w", err)
	}
	defer rows.Close()

	results := make([]model.CrawlFailure, 0)
	for rows.Next() {
		var (
			f       model.CrawlFailure
			kind    string
			status  sql.NullInt64
			message sql.NullString
		)
		if err := rows.Scan(&f.URL, &f.Depth, &kind, &status, &message); err != nil {
			return nil, fmt.Errorf("failed to scan failure: %w", err)
		}
		f.Kind = model.FailureKind(kind)
		f.StatusCode = int(status.Int64)
		f.Message = message.String
		results = append(results, f)
	}

	return results, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(s rowScanner) (*RunSummary, error) {
	var (
		run               RunSummary
		started, finished string
	)
	err := s.Scan(
		&run.RunID,
		&run.SeedURL,
		&run.MaxDepth,
		&started,
		&finished,
		&run.PagesFetched,
		&run.ImageCount,
		&run.FailureCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	run.StartedAt = parseTimestamp(started)
	run.FinishedAt = parseTimestamp(finished)
	return &run, nil
}

// timestampLayout is RFC 3339 with a fixed-width fraction, so stored UTC
// values sort lexically in time order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	timestampLayout,           // format written by formatTimestamp
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	time.RFC3339,              // Full RFC3339 format
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
