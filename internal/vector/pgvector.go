package vector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// PgVectorIndex stores records in a Postgres table with a pgvector column.
// Scores are computed by the database as 1 - cosine distance.
type PgVectorIndex struct {
	pool      *pgxpool.Pool
	table     string
	dimension int
}

// NewPgVectorIndex ensures the vector extension and the table exist.
// The pool is owned by the caller.
func NewPgVectorIndex(ctx context.Context, pool *pgxpool.Pool, table string, dimension int) (*PgVectorIndex, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	if table == "" {
		table = "scan_vectors"
	}
	idx := &PgVectorIndex{
		pool:      pool,
		table:     pgx.Identifier{table}.Sanitize(),
		dimension: dimension,
	}
	if err := idx.migrate(ctx); err != nil {
		return nil, err
	}
	return idx, nil
}

func (p *PgVectorIndex) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			embedding vector(%d) NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, p.table, p.dimension),
	}
	for _, stmt := range stmts {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate vector table: %w", err)
		}
	}
	return nil
}

// Type returns the index type identifier.
func (p *PgVectorIndex) Type() string {
	return string(IndexTypePgVector)
}

// Upsert writes records in a single batch, replacing existing ids.
func (p *PgVectorIndex) Upsert(ctx context.Context, records ...Record) error {
	if len(records) == 0 {
		return nil
	}
	query := fmt.Sprintf(`INSERT INTO %s (id, embedding, metadata, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			metadata = EXCLUDED.metadata,
			updated_at = now()`, p.table)

	batch := &pgx.Batch{}
	for _, r := range records {
		if err := checkRecord(r, p.dimension); err != nil {
			return err
		}
		meta, err := json.Marshal(r.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata for %s: %w", r.ID, err)
		}
		batch.Queue(query, r.ID, pgvector.NewVector(r.Vector), meta)
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback(ctx)
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert vectors: %w", err)
	}
	return tx.Commit(ctx)
}

// Query returns the topK nearest rows by cosine distance that satisfy filter.
func (p *PgVectorIndex) Query(ctx context.Context, vector []float32, topK int, filter Filter) ([]Match, error) {
	if len(vector) != p.dimension {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrDimensionMismatch, len(vector), p.dimension)
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if topK <= 0 {
		return nil, nil
	}

	args := []any{pgvector.NewVector(vector)}
	where, args := buildFilterSQL(filter, args)
	query := fmt.Sprintf(`SELECT id, 1 - (embedding <=> $1) AS score, metadata
		FROM %s%s
		ORDER BY embedding <=> $1, id
		LIMIT %d`, p.table, where, topK)

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query vectors: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var (
			m    Match
			meta []byte
		)
		if err := rows.Scan(&m.ID, &m.Score, &meta); err != nil {
			return nil, fmt.Errorf("scan vector row: %w", err)
		}
		m.Score = clampScore(m.Score)
		if err := json.Unmarshal(meta, &m.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata for %s: %w", m.ID, err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// Fetch returns the row with id.
func (p *PgVectorIndex) Fetch(ctx context.Context, id string) (*Record, error) {
	var (
		text string
		meta []byte
	)
	query := fmt.Sprintf(`SELECT embedding::text, metadata FROM %s WHERE id = $1`, p.table)
	err := p.pool.QueryRow(ctx, query, id).Scan(&text, &meta)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch vector: %w", err)
	}
	var vec pgvector.Vector
	if err := vec.Scan([]byte(text)); err != nil {
		return nil, fmt.Errorf("parse vector for %s: %w", id, err)
	}
	rec := &Record{ID: id, Vector: vec.Slice()}
	if err := json.Unmarshal(meta, &rec.Metadata); err != nil {
		return nil, fmt.Errorf("decode metadata for %s: %w", id, err)
	}
	return rec, nil
}

// Delete removes rows by id.
func (p *PgVectorIndex) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ANY($1)`, p.table)
	if _, err := p.pool.Exec(ctx, query, ids); err != nil {
		return fmt.Errorf("delete vectors: %w", err)
	}
	return nil
}

// Stats returns the row count and the configured dimension.
func (p *PgVectorIndex) Stats(ctx context.Context) (Stats, error) {
	var n int
	if err := p.pool.QueryRow(ctx, fmt.Sprintf(`SELECT count(*) FROM %s`, p.table)).Scan(&n); err != nil {
		return Stats{}, fmt.Errorf("count vectors: %w", err)
	}
	return Stats{TotalVectorCount: n, Dimension: p.dimension}, nil
}

// Close is a no-op; the pool belongs to the caller.
func (p *PgVectorIndex) Close() error {
	return nil
}

// buildFilterSQL translates f into a WHERE clause over the metadata column.
// Values are compared as text, matching the ->> operator. Placeholders continue
// after the existing args.
func buildFilterSQL(f Filter, args []any) (string, []any) {
	if len(f) == 0 {
		return "", args
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var clauses []string
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	for _, key := range keys {
		ops, ok := f[key].(map[string]any)
		if !ok {
			ops = map[string]any{"$eq": f[key]}
		}
		opNames := make([]string, 0, len(ops))
		for op := range ops {
			opNames = append(opNames, op)
		}
		sort.Strings(opNames)
		for _, op := range opNames {
			col := fmt.Sprintf("metadata->>%s", next(key))
			switch op {
			case "$eq":
				clauses = append(clauses, fmt.Sprintf("%s = %s", col, next(formatScalar(ops[op]))))
			case "$ne":
				clauses = append(clauses, fmt.Sprintf("%s IS DISTINCT FROM %s", col, next(formatScalar(ops[op]))))
			case "$in":
				clauses = append(clauses, fmt.Sprintf("%s = ANY(%s)", col, next(textList(ops[op]))))
			case "$nin":
				clauses = append(clauses, fmt.Sprintf("NOT COALESCE(%s = ANY(%s), false)", col, next(textList(ops[op]))))
			}
		}
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func textList(v any) []string {
	list, _ := toList(v)
	out := make([]string, len(list))
	for i, item := range list {
		out[i] = formatScalar(item)
	}
	return out
}
