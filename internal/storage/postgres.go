package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hyperjump/marketscan/internal/models"
)

// PostgresStorage implements Storage on a pgx connection pool. It owns the pool.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

// Connect opens and pings a connection pool.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database url is empty")
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// NewPostgresStorage creates the schema if needed and returns the store.
func NewPostgresStorage(ctx context.Context, pool *pgxpool.Pool) (*PostgresStorage, error) {
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
		ai_analysis JSONB,
		salary_recommendations JSONB,
		similar_scans_count INTEGER NOT NULL DEFAULT 0,
		confidence_score DOUBLE PRECISION NOT NULL DEFAULT 0,
		processing_time_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
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
		currency TEXT NOT NULL DEFAULT 'USD',
		period TEXT NOT NULL DEFAULT 'monthly',
		savings_vs_us INTEGER NOT NULL DEFAULT 0,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (role_category, region, experience_level)
	);
	`
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &PostgresStorage{pool: pool}, nil
}

// Pool exposes the pool so the vector index can share it.
func (s *PostgresStorage) Pool() *pgxpool.Pool {
	return s.pool
}

// CreateScan inserts a scan. CreatedAt is set when zero; UpdatedAt is always set.
func (s *PostgresStorage) CreateScan(ctx context.Context, scan *models.MarketScan) error {
	analysis, salary, err := encodeReports(scan)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if scan.CreatedAt.IsZero() {
		scan.CreatedAt = now
	}
	scan.UpdatedAt = now

	_, err = s.pool.Exec(ctx,
		`INSERT INTO market_scans (`+scanColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		scan.ID, scan.ClientName, scan.ClientEmail, scan.CompanyDomain, scan.JobTitle, scan.JobDescription,
		scan.HiringChallenges, string(scan.Status), analysis, salary, scan.SimilarScansCount,
		scan.ConfidenceScore, scan.ProcessingTimeSeconds, scan.CreatedAt, scan.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create scan: %w", err)
	}
	return nil
}

// GetScan returns a scan by ID.
func (s *PostgresStorage) GetScan(ctx context.Context, id string) (*models.MarketScan, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+scanColumns+` FROM market_scans WHERE id = $1`, id)
	scan, err := scanPostgresRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrScanNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan: %w", err)
	}
	return scan, nil
}

// UpdateScan replaces every mutable column of an existing scan.
func (s *PostgresStorage) UpdateScan(ctx context.Context, scan *models.MarketScan) error {
	analysis, salary, err := encodeReports(scan)
	if err != nil {
		return err
	}

	scan.UpdatedAt = time.Now().UTC()

	tag, err := s.pool.Exec(ctx,
		`UPDATE market_scans SET client_name = $1, client_email = $2, company_domain = $3, job_title = $4,
		 job_description = $5, hiring_challenges = $6, status = $7, ai_analysis = $8, salary_recommendations = $9,
		 similar_scans_count = $10, confidence_score = $11, processing_time_seconds = $12, updated_at = $13
		 WHERE id = $14`,
		scan.ClientName, scan.ClientEmail, scan.CompanyDomain, scan.JobTitle,
		scan.JobDescription, scan.HiringChallenges, string(scan.Status), analysis, salary,
		scan.SimilarScansCount, scan.ConfidenceScore, scan.ProcessingTimeSeconds, scan.UpdatedAt,
		scan.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update scan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrScanNotFound, scan.ID)
	}
	return nil
}

// DeleteScan removes a scan by ID.
func (s *PostgresStorage) DeleteScan(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM market_scans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete scan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrScanNotFound, id)
	}
	return nil
}

// ListScans returns scans newest first.
func (s *PostgresStorage) ListScans(ctx context.Context, opts ListOptions) ([]*models.MarketScan, error) {
	query := `SELECT ` + scanColumns + ` FROM market_scans`
	args := []any{opts.limit(), opts.Offset}
	if opts.Status != "" {
		query += ` WHERE status = $3`
		args = append(args, string(opts.Status))
	}
	query += ` ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	defer rows.Close()

	var scans []*models.MarketScan
	for rows.Next() {
		scan, err := scanPostgresRow(rows)
		if err != nil {
			return nil, err
		}
		scans = append(scans, scan)
	}
	return scans, rows.Err()
}

// ListScanIDs returns scan ids newest first, in the same order as ListScans.
func (s *PostgresStorage) ListScanIDs(ctx context.Context, status models.ScanStatus) ([]string, error) {
	query := `SELECT id FROM market_scans`
	var args []any
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list scan ids: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// CountScans returns the total number of scans.
func (s *PostgresStorage) CountScans(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM market_scans`).Scan(&count)
	return count, err
}

// PutSalaryBenchmark inserts or replaces a benchmark keyed by role, region and experience band.
func (s *PostgresStorage) PutSalaryBenchmark(ctx context.Context, b *models.SalaryBenchmark) error {
	if err := validateBenchmark(b); err != nil {
		return err
	}
	r := benchmarkRange(b.Range.Low, b.Range.Mid, b.Range.High, b.Range.Currency, b.Range.Period, b.Range.SavingsVsUS)
	_, err := s.pool.Exec(ctx,
		`INSERT INTO salary_benchmarks (role_category, region, experience_level, salary_low, salary_mid,
		 salary_high, currency, period, savings_vs_us, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		 ON CONFLICT (role_category, region, experience_level) DO UPDATE SET
		 salary_low = $4, salary_mid = $5, salary_high = $6, currency = $7, period = $8,
		 savings_vs_us = $9, updated_at = NOW()`,
		string(b.RoleCategory), string(b.Region), b.ExperienceBand, r.Low, r.Mid,
		r.High, r.Currency, r.Period, r.SavingsVsUS,
	)
	if err != nil {
		return fmt.Errorf("failed to store salary benchmark: %w", err)
	}
	return nil
}

// SalaryBenchmarks returns recorded ranges per region for the experience bands covering level.
// When several bands match a region the most recently updated row wins.
func (s *PostgresStorage) SalaryBenchmarks(ctx context.Context, role models.RoleCategory, level models.ExperienceLevel) (map[models.Region]models.SalaryRange, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT region, salary_low, salary_mid, salary_high, currency, period, savings_vs_us
		 FROM salary_benchmarks WHERE role_category = $1 AND experience_level = ANY($2)
		 ORDER BY updated_at`,
		string(role), models.ExperienceBands(level),
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
			currency, period string
			savings          int
		)
		if err := rows.Scan(&region, &low, &mid, &high, &currency, &period, &savings); err != nil {
			return nil, err
		}
		if r, ok := models.ParseRegion(region); ok {
			out[r] = benchmarkRange(low, mid, high, currency, period, savings)
		}
	}
	return out, rows.Err()
}

// Close closes the connection pool.
func (s *PostgresStorage) Close() error {
	s.pool.Close()
	return nil
}

func scanPostgresRow(row pgx.Row) (*models.MarketScan, error) {
	var (
		scan             models.MarketScan
		status           string
		challenges       *string
		analysis, salary []byte
	)
	err := row.Scan(&scan.ID, &scan.ClientName, &scan.ClientEmail, &scan.CompanyDomain, &scan.JobTitle,
		&scan.JobDescription, &challenges, &status, &analysis, &salary, &scan.SimilarScansCount,
		&scan.ConfidenceScore, &scan.ProcessingTimeSeconds, &scan.CreatedAt, &scan.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if challenges != nil {
		scan.HiringChallenges = *challenges
	}
	scan.Status = models.ScanStatus(status)
	if err := decodeReports(&scan, analysis, salary); err != nil {
		return nil, err
	}
	return &scan, nil
}
