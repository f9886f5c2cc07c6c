// Package storage defines the persistence interface for market scans and salary benchmarks.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/marketscan/internal/models"
)

// ErrScanNotFound is returned when a scan id has no stored row.
var ErrScanNotFound = errors.New("scan not found")

// ListOptions pages and filters ListScans. A zero Limit means DefaultListLimit.
type ListOptions struct {
	Offset int
	Limit  int
	Status models.ScanStatus
}

// DefaultListLimit caps ListScans when no limit is given.
const DefaultListLimit = 50

func (o ListOptions) limit() int {
	if o.Limit <= 0 {
		return DefaultListLimit
	}
	return o.Limit
}

// Storage defines market scan and salary benchmark persistence operations.
type Storage interface {
	// Scan operations
	CreateScan(ctx context.Context, scan *models.MarketScan) error
	GetScan(ctx context.Context, id string) (*models.MarketScan, error)
	UpdateScan(ctx context.Context, scan *models.MarketScan) error
	DeleteScan(ctx context.Context, id string) error
	ListScans(ctx context.Context, opts ListOptions) ([]*models.MarketScan, error)
	// ListScanIDs returns the ids of every scan with status, newest first.
	// An empty status matches all scans.
	ListScanIDs(ctx context.Context, status models.ScanStatus) ([]string, error)

	// Salary benchmarks
	PutSalaryBenchmark(ctx context.Context, b *models.SalaryBenchmark) error
	SalaryBenchmarks(ctx context.Context, role models.RoleCategory, level models.ExperienceLevel) (map[models.Region]models.SalaryRange, error)

	// Stats
	CountScans(ctx context.Context) (int64, error)

	Close() error
}
