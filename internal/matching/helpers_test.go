package matching

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/hyperjump/marketscan/internal/models"
	"github.com/hyperjump/marketscan/internal/vector"
	"github.com/stretchr/testify/require"
)

// fakeEmbedder maps text to vectors through fn and records every text it sees.
type fakeEmbedder struct {
	fn  func(text string) []float32
	err error

	mu    sync.Mutex
	texts []string
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	v := f.fn(text)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return v, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := f.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int { return 2 }
func (f *fakeEmbedder) Close() error    { return nil }

func (f *fakeEmbedder) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}

// constEmbedder always returns the unit x axis.
func constEmbedder() *fakeEmbedder {
	return &fakeEmbedder{fn: func(string) []float32 { return []float32{1, 0} }}
}

// at returns a 2-d unit vector whose cosine with the x axis is s.
func at(s float64) []float32 {
	return []float32{float32(s), float32(math.Sqrt(1 - s*s))}
}

// failingIndex fails every call with err.
type failingIndex struct{ err error }

func (f failingIndex) Type() string                                   { return "failing" }
func (f failingIndex) Upsert(context.Context, ...vector.Record) error { return f.err }
func (f failingIndex) Query(context.Context, []float32, int, vector.Filter) ([]vector.Match, error) {
	return nil, f.err
}
func (f failingIndex) Fetch(context.Context, string) (*vector.Record, error) { return nil, f.err }
func (f failingIndex) Delete(context.Context, ...string) error               { return f.err }
func (f failingIndex) Stats(context.Context) (vector.Stats, error)           { return vector.Stats{}, f.err }
func (f failingIndex) Close() error                                          { return nil }

var errBoom = errors.New("boom")

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newIndex(t *testing.T) *vector.MemoryIndex {
	t.Helper()
	idx, err := vector.NewMemoryIndex(2)
	require.NoError(t, err)
	return idx
}

// seed stores a scan vector directly, bypassing the embedder.
func seed(t *testing.T, idx vector.VectorIndex, id string, vec []float32, a models.JobAnalysis) {
	t.Helper()
	meta := models.ScanVectorMetadata{CompanyDomain: id + ".com", ClientName: "Client " + id, CreatedAt: fixedNow.AddDate(0, -1, 0)}
	rec := vector.Record{ID: id, Vector: vec, Metadata: scanMetadata(id, "Title "+id, "text "+id, a, meta)}
	require.NoError(t, idx.Upsert(context.Background(), rec))
}

func analysis(complexity int, must ...string) models.JobAnalysis {
	return models.JobAnalysis{
		RoleCategory:          models.RoleDataAnalyst,
		ExperienceLevel:       models.LevelMid,
		MustHaveSkills:        must,
		NiceToHaveSkills:      []string{"Tableau"},
		RemoteWorkSuitability: models.RemoteHigh,
		ComplexityScore:       complexity,
		RecommendedRegions:    []models.Region{models.RegionPhilippines, models.RegionLatinAmerica},
	}
}

func matchWith(score float64, complexity int, skills ...string) models.SimilarityMatch {
	return models.SimilarityMatch{SimilarityScore: score, ComplexityScore: complexity, MustHaveSkills: skills}
}
