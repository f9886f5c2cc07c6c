package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hyperjump/marketscan/internal/analyzer"
	"github.com/hyperjump/marketscan/internal/config"
	"github.com/hyperjump/marketscan/internal/embedding"
	"github.com/hyperjump/marketscan/internal/keyword"
	"github.com/hyperjump/marketscan/internal/matching"
	"github.com/hyperjump/marketscan/internal/salary"
	"github.com/hyperjump/marketscan/internal/storage"
	"github.com/hyperjump/marketscan/internal/vector"
	"github.com/hyperjump/marketscan/internal/workflow"
)

// Components holds initialized services.
type Components struct {
	Storage      storage.Storage
	Embedder     embedding.Embedder
	VectorIndex  vector.VectorIndex
	KeywordIndex keyword.KeywordIndex
	Matching     *matching.Service
	Workflow     *workflow.Workflow
}

// Close releases components in reverse dependency order. The postgres pool,
// shared with the pgvector index, is closed last by the storage. Every
// component is closed even when an earlier one fails; the failures are joined.
func (c *Components) Close() error {
	var errs []error
	closeOne := func(name string, closer interface{ Close() error }) {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", name, err))
		}
	}
	if c.KeywordIndex != nil {
		closeOne("keyword index", c.KeywordIndex)
	}
	if c.VectorIndex != nil {
		closeOne("vector index", c.VectorIndex)
	}
	if c.Embedder != nil {
		closeOne("embedder", c.Embedder)
	}
	if c.Storage != nil {
		closeOne("storage", c.Storage)
	}
	return errors.Join(errs...)
}

// openStorage opens the configured scan store. The returned pool is non-nil only for postgres.
func openStorage(ctx context.Context, cfg *config.StorageConfig) (storage.Storage, *pgxpool.Pool, error) {
	switch cfg.Driver {
	case "sqlite", "":
		store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
		return store, nil, err
	case "postgres":
		pool, err := storage.Connect(ctx, cfg.DatabaseURL())
		if err != nil {
			return nil, nil, err
		}
		store, err := storage.NewPostgresStorage(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver: %s (supported: sqlite, postgres)", cfg.Driver)
	}
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	c := &Components{}
	fail := func(err error) (*Components, error) {
		if closeErr := c.Close(); closeErr != nil {
			logger.Warn("failed to release partially initialized components", zap.Error(closeErr))
		}
		return nil, err
	}

	store, pool, err := openStorage(ctx, &cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	c.Storage = store

	embedder, err := embedding.NewFromConfig(&cfg.Embedding)
	if err != nil {
		return fail(fmt.Errorf("failed to initialize embedder: %w", err))
	}
	c.Embedder = embedder

	vectorIndex, err := vector.NewVectorIndex(ctx, &cfg.Vector, embedder.Dimensions(), pool)
	if err != nil {
		return fail(fmt.Errorf("failed to initialize vector index: %w", err))
	}
	c.VectorIndex = vectorIndex
	logger.Info("vector index initialized",
		zap.String("type", vectorIndex.Type()),
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.Int("dimensions", embedder.Dimensions()))

	keywordIndex, err := keyword.NewBleveIndex(cfg.Storage.KeywordIndexPath)
	if err != nil {
		return fail(fmt.Errorf("failed to initialize keyword index: %w", err))
	}
	c.KeywordIndex = keywordIndex

	an, err := analyzer.NewFromConfig(ctx, &cfg.Analyzer, logger)
	if err != nil {
		return fail(fmt.Errorf("failed to initialize analyzer: %w", err))
	}

	c.Matching = matching.NewService(embedder, vectorIndex, &cfg.Matching, cfg.Embedding.MaxChars, matching.WithLogger(logger))
	c.Workflow = workflow.New(store, an, c.Matching, salary.NewCalculator(store, logger), &cfg.Matching,
		workflow.WithLogger(logger),
		workflow.WithKeywordIndex(keywordIndex),
		workflow.WithSearchConfig(&cfg.Search),
	)
	return c, nil
}

// dataPaths lists the on-disk locations used by cfg, for disk usage reporting.
func dataPaths(cfg *config.Config) map[string]string {
	paths := map[string]string{"keyword_index": cfg.Storage.KeywordIndexPath}
	if cfg.Storage.Driver == "sqlite" || cfg.Storage.Driver == "" {
		paths["database"] = cfg.Storage.DatabasePath
	}
	if cfg.Vector.IndexType != string(vector.IndexTypePgVector) {
		paths["vector_index"] = cfg.Vector.Path
	}
	return paths
}
