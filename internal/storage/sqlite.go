package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/marketscan/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist. ":memory:" opens a private in-memory database.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dbPath != ":memory:" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS market_scans (
		id TEXT PRIMARY KEY,
		client_name TEXT NOT NULL,
		client_email TEXT NOT NULL,
		company_domain TEXT NOT NULL,
		job_title TEXT NOT NULL,
		job_description TEXT NOT NULL,
		hiring_challenges TEXT,
		status TEXT NOT NULL,
		ai_analysis TEXT,
		salary_recommendations TEXT,
		similar_scans_count INTEGER DEFAULT 0,
		confidence_score REAL DEFAULT 0,
		processing_time_seconds REAL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_scans_created_at ON market_scans(created_at);
	CREATE INDEX IF NOT EXISTS idx_scans_status ON market_scans(status);

	CREATE TABLE IF NOT EXISTS salary_benchmarks (
		role_category TEXT NOT NULL,
		region TEXT NOT NULL,
		experience_level TEXT NOT NULL,
		salary_low INTEGER NOT NULL,
		salary_mid INTEGER NOT NULL,
		salary_high INTEGER NOT NULL,
		currency TEXT DEFAULT 'USD',
		period TEXT DEFAULT 'monthly',
		savings_vs_us INTEGER DEFAULT 0,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (role_category, region, experience_level)
	);
	`
	_, err := db.Exec(schema)
	return err
}

const scanColumns = `id, client_name, client_email, company_domain, job_title, job_description,
		hiring_challenges, status, ai_analysis, salary_recommendations, similar_scans_count,
		confidence_score, processing_time_seconds, created_at, updated_at`

// CreateScan inserts a scan. CreatedAt is set when zero; UpdatedAt is always set.
func (s *SQLiteStorage) CreateScan(ctx context.Context, scan *models.MarketScan) error {
	analysis, salary, err := encodeReports(scan)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if scan.CreatedAt.IsZero() {
		scan.CreatedAt = now
	}
	scan.UpdatedAt = now

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO market_scans (`+scanColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		scan.ID, scan.ClientName, scan.ClientEmail, scan.CompanyDomain, scan.JobTitle, scan.JobDescription,
		scan.HiringChallenges, string(scan.Status), nullString(analysis), nullString(salary), scan.SimilarScansCount,
		scan.ConfidenceScore, scan.ProcessingTimeSeconds, scan.CreatedAt, scan.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create scan: %w", err)
	}
	return nil
}

// GetScan returns a scan by ID.
func (s *SQLiteStorage) GetScan(ctx context.Context, id string) (*models.MarketScan, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+scanColumns+` FROM market_scans WHERE id = ?`, id)
	scan, err := scanSQLiteRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrScanNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return scan, nil
}

// UpdateScan replaces every mutable column of an existing scan.
func (s *SQLiteStorage) UpdateScan(ctx context.Context, scan *models.MarketScan) error {
	analysis, salary, err := encodeReports(scan)
	if err != nil {
		return err
	}

	scan.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx,
		`UPDATE market_scans SET client_name = ?, client_email = ?, company_domain = ?, job_title = ?,
		 job_description = ?, hiring_challenges = ?, status = ?, ai_analysis = ?, salary_recommendations = ?,
		 similar_scans_count = ?, confidence_score = ?, processing_time_seconds = ?, updated_at = ?
		 WHERE id = ?`,
		scan.ClientName, scan.ClientEmail, scan.CompanyDomain, scan.JobTitle,
		scan.JobDescription, scan.HiringChallenges, string(scan.Status), nullString(analysis), nullString(salary),
		scan.SimilarScansCount, scan.ConfidenceScore, scan.ProcessingTimeSeconds, scan.UpdatedAt,
		scan.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update scan: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrScanNotFound, scan.ID)
	}
	return nil
}

// DeleteScan removes a scan by ID.
func (s *SQLiteStorage) DeleteScan(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM market_scans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete scan: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrScanNotFound, id)
	}
	return nil
}

// ListScans returns scans newest first.
func (s *SQLiteStorage) ListScans(ctx context.Context, opts ListOptions) ([]*models.MarketScan, error) {
	query := `SELECT ` + scanColumns + ` FROM market_scans`
	var args []any
	if opts.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(opts.Status))
	}
	query += ` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	args = append(args, opts.limit(), opts.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	defer rows.Close()

	var scans []*models.MarketScan
	for rows.Next() {
		scan, err := scanSQLiteRow(rows)
		if err != nil {
			return nil, err
		}
		scans = append(scans, scan)
	}
	return scans, rows.Err()
}

// ListScanIDs returns scan ids newest first, in the same order as ListScans.
func (s *SQLiteStorage) ListScanIDs(ctx context.Context, status models.ScanStatus) ([]string, error) {
	query := `SELECT id FROM market_scans`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list scan ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountScans returns the total number of scans.
func (s *SQLiteStorage) CountScans(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM market_scans`).Scan(&count)
	return count, err
}

// PutSalaryBenchmark inserts or replaces a benchmark keyed by role, region and experience band.
func (s *SQLiteStorage) PutSalaryBenchmark(ctx context.Context, b *models.SalaryBenchmark) error {
	if err := validateBenchmark(b); err != nil {
		return err
	}
	r := benchmarkRange(b.Range.Low, b.Range.Mid, b.Range.High, b.Range.Currency, b.Range.Period, b.Range.SavingsVsUS)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO salary_benchmarks (role_category, region, experience_level, salary_low, salary_mid,
		 salary_high, currency, period, savings_vs_us, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (role_category, region, experience_level) DO UPDATE SET
		 salary_low = excluded.salary_low, salary_mid = excluded.salary_mid, salary_high = excluded.salary_high,
		 currency = excluded.currency, period = excluded.period, savings_vs_us = excluded.savings_vs_us,
		 updated_at = excluded.updated_at`,
		string(b.RoleCategory), string(b.Region), b.ExperienceBand, r.Low, r.Mid,
		r.High, r.Currency, r.Period, r.SavingsVsUS, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to store salary benchmark: %w", err)
	}
	return nil
}

// SalaryBenchmarks returns recorded ranges per region for the experience bands covering level.
// When several bands match a region the most recently updated row wins.
func (s *SQLiteStorage) SalaryBenchmarks(ctx context.Context, role models.RoleCategory, level models.ExperienceLevel) (map[models.Region]models.SalaryRange, error) {
	bands := models.ExperienceBands(level)
	args := []any{string(role)}
	for _, b := range bands {
		args = append(args, b)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(bands)), ", ")

	rows, err := s.db.QueryContext(ctx,
		`SELECT region, salary_low, salary_mid, salary_high, currency, period, savings_vs_us
		 FROM salary_benchmarks WHERE role_category = ? AND experience_level IN (`+placeholders+`)
		 ORDER BY updated_at`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query salary benchmarks: %w", err)
	}
	defer rows.Close()

	out := make(map[models.Region]models.SalaryRange)
	for rows.Next() {
		var (
			region           string
			low, mid, high   int
			currency, period sql.NullString
			savings          int
		)
		if err := rows.Scan(&region, &low, &mid, &high, &currency, &period, &savings); err != nil {
			return nil, err
		}
		if r, ok := models.ParseRegion(region); ok {
			out[r] = benchmarkRange(low, mid, high, currency.String, period.String, savings)
		}
	}
	return out, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteRow(row rowScanner) (*models.MarketScan, error) {
	var (
		scan             models.MarketScan
		status           string
		challenges       sql.NullString
		analysis, salary sql.NullString
	)
	err := row.Scan(&scan.ID, &scan.ClientName, &scan.ClientEmail, &scan.CompanyDomain, &scan.JobTitle,
		&scan.JobDescription, &challenges, &status, &analysis, &salary, &scan.SimilarScansCount,
		&scan.ConfidenceScore, &scan.ProcessingTimeSeconds, &scan.CreatedAt, &scan.UpdatedAt)
	if err != nil {
		return nil, err
	}
	scan.HiringChallenges = challenges.String
	scan.Status = models.ScanStatus(status)
	if err := decodeReports(&scan, []byte(analysis.String), []byte(salary.String)); err != nil {
		return nil, err
	}
	return &scan, nil
}

func nullString(b []byte) sql.NullString {
	if b == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}
