package persistence

import (
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ReportRecord is one cached outline report. Path and Nested together
// identify a record: the flat and the nested rendering of a file are
// distinct reports.
type ReportRecord struct {
	Path        string
	Nested      bool
	Language    string
	ContentHash string
	Report      string
	ErrorCount  int
	GeneratedAt time.Time
}

// StoreStats aggregates cache contents.
type StoreStats struct {
	TotalReports int
	ByLanguage   map[string]int
	WithErrors   int
	DatabaseSize int64
}

// ReportStore persists rendered reports keyed by file path and build mode.
type ReportStore interface {
	SaveReport(rec *ReportRecord) error
	GetReport(path string, nested bool) (*ReportRecord, error)
	DeleteReport(path string) error
	ListReports() ([]*ReportRecord, error)
	Clear() error
	Stats() (*StoreStats, error)
	Close() error
}

// SQLiteStore keeps reports in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens/creates the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// WAL lets scan workers read while one writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return nil, err
	}
	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		path TEXT NOT NULL,
		nested BOOLEAN NOT NULL,
		language TEXT,
		content_hash TEXT,
		report TEXT,
		error_count INTEGER,
		generated_at TIMESTAMP,
		PRIMARY KEY (path, nested)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveReport upserts one report.
func (s *SQLiteStore) SaveReport(rec *ReportRecord) error {
	if rec == nil {
		return errors.New("record required")
	}
	query := `
	INSERT INTO reports (
		path, nested, language, content_hash, report, error_count, generated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(path, nested) DO UPDATE SET
		language=excluded.language,
		content_hash=excluded.content_hash,
		report=excluded.report,
		error_count=excluded.error_count,
		generated_at=excluded.generated_at
	`
	_, err := s.db.Exec(query,
		rec.Path,
		rec.Nested,
		rec.Language,
		rec.ContentHash,
		rec.Report,
		rec.ErrorCount,
		rec.GeneratedAt,
	)
	return err
}

// GetReport looks a report up. A miss is not an error: both return values
// are nil when no record exists.
func (s *SQLiteStore) GetReport(path string, nested bool) (*ReportRecord, error) {
	row := s.db.QueryRow(`SELECT path, nested, language, content_hash, report,
		error_count, generated_at FROM reports WHERE path = ? AND nested = ?`, path, nested)
	rec, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

// DeleteReport removes both build modes of a path.
func (s *SQLiteStore) DeleteReport(path string) error {
	_, err := s.db.Exec(`DELETE FROM reports WHERE path = ?`, path)
	return err
}

// ListReports returns every cached report in path order.
func (s *SQLiteStore) ListReports() ([]*ReportRecord, error) {
	rows, err := s.db.Query(`SELECT path, nested, language, content_hash, report,
		error_count, generated_at FROM reports ORDER BY path, nested`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]*ReportRecord, 0)
	for rows.Next() {
		rec := &ReportRecord{}
		if err := rows.Scan(
			&rec.Path,
			&rec.Nested,
			&rec.Language,
			&rec.ContentHash,
			&rec.Report,
			&rec.ErrorCount,
			&rec.GeneratedAt,
		); err != nil {
			return nil, err
		}
		results = append(results, rec)
	}
	return results, rows.Err()
}

// Clear drops every cached report.
func (s *SQLiteStore) Clear() error {
	_, err := s.db.Exec(`DELETE FROM reports`)
	return err
}

// Stats aggregates counts.
func (s *SQLiteStore) Stats() (*StoreStats, error) {
	stats := &StoreStats{
		ByLanguage: make(map[string]int),
	}
	s.db.QueryRow(`SELECT COUNT(*) FROM reports`).Scan(&stats.TotalReports)
	s.db.QueryRow(`SELECT COUNT(*) FROM reports WHERE error_count > 0`).Scan(&stats.WithErrors)
	rows, err := s.db.Query(`SELECT language, COUNT(*) FROM reports GROUP BY language`)
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var lang string
			var count int
			rows.Scan(&lang, &count)
			stats.ByLanguage[lang] = count
		}
	}
	var pageCount, pageSize int
	s.db.QueryRow(`PRAGMA page_count`).Scan(&pageCount)
	s.db.QueryRow(`PRAGMA page_size`).Scan(&pageSize)
	stats.DatabaseSize = int64(pageCount * pageSize)
	return stats, nil
}

func scanReport(row *sql.Row) (*ReportRecord, error) {
	rec := &ReportRecord{}
	err := row.Scan(
		&rec.Path,
		&rec.Nested,
		&rec.Language,
		&rec.ContentHash,
		&rec.Report,
		&rec.ErrorCount,
		&rec.GeneratedAt,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}
