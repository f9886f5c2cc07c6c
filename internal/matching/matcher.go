package matching

import (
	"context"
	"fmt"
	"sort"

	"github.com/hyperjump/marketscan/internal/embedding"
	"github.com/hyperjump/marketscan/internal/models"
	"github.com/hyperjump/marketscan/internal/vector"
	"go.uber.org/zap"
)

// FindOptions controls a similarity query.
type FindOptions struct {
	// ExcludeID keeps a scan from matching itself.
	ExcludeID string
	// Threshold is the minimum similarity score in [0,1].
	Threshold float64
	// MaxResults is the maximum number of matches returned; must be at least 1.
	MaxResults int
	// Criteria optionally narrows candidates by stored classification.
	Criteria Criteria
}

// Criteria restricts matches to scans with the given classification. Zero fields are ignored.
type Criteria struct {
	RoleCategory    string
	ExperienceLevel string
	MinComplexity   int
	MaxComplexity   int
}

func (o FindOptions) validate() error {
	if o.Threshold < 0 || o.Threshold > 1 {
		return fmt.Errorf("%w: threshold %v outside [0,1]", ErrInvalidOptions, o.Threshold)
	}
	if o.MaxResults < 1 {
		return fmt.Errorf("%w: max results %d", ErrInvalidOptions, o.MaxResults)
	}
	c := o.Criteria
	if c.MinComplexity != 0 && c.MaxComplexity != 0 && c.MinComplexity > c.MaxComplexity {
		return fmt.Errorf("%w: complexity range %d-%d", ErrInvalidOptions, c.MinComplexity, c.MaxComplexity)
	}
	return nil
}

// filter builds the index filter for the options, or nil when nothing is restricted.
func (o FindOptions) filter() vector.Filter {
	f := vector.Filter{}
	if o.ExcludeID != "" {
		f[KeyScanID] = map[string]any{"$ne": o.ExcludeID}
	}
	c := o.Criteria
	if c.RoleCategory != "" {
		f[KeyRoleCategory] = c.RoleCategory
	}
	if c.ExperienceLevel != "" {
		f[KeyExperienceLevel] = c.ExperienceLevel
	}
	if c.MinComplexity != 0 || c.MaxComplexity != 0 {
		lo, hi := c.MinComplexity, c.MaxComplexity
		if lo < models.MinComplexity {
			lo = models.MinComplexity
		}
		if hi == 0 || hi > models.MaxComplexity {
			hi = models.MaxComplexity
		}
		var allowed []any
		for n := lo; n <= hi; n++ {
			allowed = append(allowed, n)
		}
		f[KeyComplexityScore] = map[string]any{"$in": allowed}
	}
	if len(f) == 0 {
		return nil
	}
	return f
}

// Matcher embeds postings and retrieves their nearest historical scans.
type Matcher struct {
	embedder embedding.Embedder
	index    vector.VectorIndex
	text     *TextBuilder
	opts     options
}

// NewMatcher creates a matcher. text must be the same builder the ScanVectorStore uses.
func NewMatcher(embedder embedding.Embedder, index vector.VectorIndex, text *TextBuilder, opts ...Option) *Matcher {
	return &Matcher{embedder: embedder, index: index, text: text, opts: newOptions(opts)}
}

// FindSimilar returns matches at or above the threshold, best first, at most
// MaxResults of them, along with the query embedding. An empty index or no match
// above the threshold yields an empty list and no error. Embedding failures are
// returned as *ProviderError and index failures as *IndexError.
func (m *Matcher) FindSimilar(ctx context.Context, title, description string, opts FindOptions) ([]models.SimilarityMatch, []float32, error) {
	if err := opts.validate(); err != nil {
		return nil, nil, err
	}

	vec, err := m.embed(ctx, m.text.Build(title, description))
	if err != nil {
		return nil, nil, err
	}

	matches, err := m.query(ctx, vec, opts)
	if err != nil {
		return nil, vec, err
	}
	return matches, vec, nil
}

// FindSimilarToVector runs the query half of FindSimilar for an existing embedding.
func (m *Matcher) FindSimilarToVector(ctx context.Context, vec []float32, opts FindOptions) ([]models.SimilarityMatch, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return m.query(ctx, vec, opts)
}

func (m *Matcher) embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := withTimeout(ctx, m.opts.timeouts.Embed)
	defer cancel()
	vec, err := m.embedder.Embed(ctx, text)
	if err != nil {
		return nil, &ProviderError{Op: "embed", Err: err}
	}
	return vec, nil
}

func (m *Matcher) query(ctx context.Context, vec []float32, opts FindOptions) ([]models.SimilarityMatch, error) {
	topK := opts.MaxResults
	if opts.ExcludeID != "" {
		topK++
	}

	qctx, cancel := withTimeout(ctx, m.opts.timeouts.Query)
	defer cancel()
	hits, err := m.index.Query(qctx, vec, topK, opts.filter())
	if err != nil {
		return nil, &IndexError{Op: "query", Err: err}
	}

	matches := make([]models.SimilarityMatch, 0, len(hits))
	for _, hit := range hits {
		if hit.Score < opts.Threshold {
			continue
		}
		if opts.ExcludeID != "" && hit.ID == opts.ExcludeID {
			continue
		}
		match, warnings := decodeMatch(hit.ID, hit.Score, hit.Metadata)
		if opts.ExcludeID != "" && match.ScanID == opts.ExcludeID {
			continue
		}
		for _, w := range warnings {
			m.opts.logger.Warn("malformed match metadata",
				zap.String("scan_id", hit.ID),
				zap.String("field", w.Field),
				zap.Error(w.Err))
		}
		matches = append(matches, match)
	}

	sortByScore(matches)
	if len(matches) > opts.MaxResults {
		matches = matches[:opts.MaxResults]
	}
	m.opts.logger.Debug("similar scans found",
		zap.Int("candidates", len(hits)),
		zap.Int("matches", len(matches)),
		zap.Float64("threshold", opts.Threshold))
	return matches, nil
}

// sortByScore orders matches by descending similarity, keeping index order for ties.
func sortByScore(matches []models.SimilarityMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].SimilarityScore > matches[j].SimilarityScore
	})
}
