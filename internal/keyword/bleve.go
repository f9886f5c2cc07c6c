package keyword

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/hyperjump/marketscan/internal/models"
)

const (
	defaultTitleBoost = 3.0
	skillsBoost       = 2.0
	defaultFuzziness  = 1
)

// BleveIndex implements KeywordIndex using Bleve.
type BleveIndex struct {
	index bleve.Index
}

// NewBleveIndex creates or opens a Bleve index at path. An empty path creates an in-memory index.
// If you change the index mapping in code, remove the index directory to force a full re-index.
func NewBleveIndex(path string) (*BleveIndex, error) {
	im := newScanMapping()

	if path == "" {
		index, err := bleve.NewMemOnly(im)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory Bleve index: %w", err)
		}
		return &BleveIndex{index: index}, nil
	}

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

func newScanMapping() *mapping.IndexMappingImpl {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) keeps skill names like "SQL" or "Klaviyo" intact.
	text := bleve.NewTextFieldMapping()
	text.Analyzer = standard.Name
	for _, field := range []string{"title", "description", "skills", "company"} {
		docMapping.AddFieldMappingsAt(field, text)
	}
	exact := bleve.NewKeywordFieldMapping()
	docMapping.AddFieldMappingsAt("role", exact)
	docMapping.AddFieldMappingsAt("level", exact)

	im.AddDocumentMapping("scan", docMapping)
	im.DefaultType = "scan"
	im.DefaultMapping = docMapping
	return im
}

// Index adds or replaces the document for a scan.
func (b *BleveIndex) Index(ctx context.Context, scan *models.MarketScan) error {
	if scan.ID == "" {
		return fmt.Errorf("scan id is required")
	}
	if err := b.index.Index(scan.ID, NewScanDocument(scan)); err != nil {
		return fmt.Errorf("failed to index scan %s: %w", scan.ID, err)
	}
	return nil
}

// Search matches query against title, description, skills and company, and returns up to limit hits.
// Title hits are boosted by opts.TitleBoost, skill hits by a fixed factor.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*KeywordResult, error) {
	if strings.TrimSpace(query) == "" || limit <= 0 {
		return nil, nil
	}
	titleBoost := defaultTitleBoost
	fuzzy := false
	fuzziness := defaultFuzziness
	var role models.RoleCategory
	if opts != nil {
		if opts.TitleBoost > 0 {
			titleBoost = opts.TitleBoost
		}
		fuzzy = opts.FuzzyEnabled
		if opts.Fuzziness > 0 {
			fuzziness = opts.Fuzziness
		}
		role = opts.RoleCategory
	}

	fields := []struct {
		name  string
		boost float64
	}{
		{"title", titleBoost},
		{"description", 1},
		{"skills", skillsBoost},
		{"company", 1},
	}
	var should []blevequery.Query
	for _, f := range fields {
		should = append(should, fieldQuery(query, f.name, f.boost, fuzzy, fuzziness))
	}
	var q blevequery.Query = bleve.NewDisjunctionQuery(should...)
	if role != "" {
		rq := bleve.NewTermQuery(string(role))
		rq.SetField("role")
		q = bleve.NewConjunctionQuery(q, rq)
	}

	req := bleve.NewSearchRequest(q)
	req.Size = limit
	results, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]*KeywordResult, len(results.Hits))
	for i, hit := range results.Hits {
		out[i] = &KeywordResult{ID: hit.ID, Score: hit.Score}
	}
	return out, nil
}

// fieldQuery builds a match query for one field, or a disjunction of fuzzy term queries.
func fieldQuery(query, field string, boost float64, fuzzy bool, fuzziness int) blevequery.Query {
	terms := strings.Fields(strings.ToLower(query))
	if !fuzzy || len(terms) == 0 {
		mq := bleve.NewMatchQuery(query)
		mq.SetField(field)
		mq.SetBoost(boost)
		return mq
	}
	queries := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		fq := bleve.NewFuzzyQuery(term)
		fq.SetFuzziness(fuzziness)
		fq.SetField(field)
		fq.SetBoost(boost)
		queries = append(queries, fq)
	}
	return bleve.NewDisjunctionQuery(queries...)
}

// Delete removes a scan from the index.
func (b *BleveIndex) Delete(ctx context.Context, id string) error {
	return b.index.Delete(id)
}

// DocCount returns the total number of scans in the index.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}
