package search

import (
	"sort"

	"github.com/hyperjump/marketscan/internal/keyword"
	"github.com/hyperjump/marketscan/internal/models"
)

// FusedResult is a scan scored by both backends.
type FusedResult struct {
	ScanID        string
	Score         float64
	KeywordScore  float64
	SemanticScore float64
}

// NormalizeKeywordScores scales BM25 scores into [0,1] by the best hit.
func NormalizeKeywordScores(results []*keyword.KeywordResult) map[string]float64 {
	scores := make(map[string]float64, len(results))
	if len(results) == 0 {
		return scores
	}
	maxScore := 0.0
	for _, r := range results {
		if r.Score > maxScore {
			maxScore = r.Score
		}
	}
	for _, r := range results {
		if maxScore > 0 {
			scores[r.ID] = r.Score / maxScore
		} else {
			scores[r.ID] = 0
		}
	}
	return scores
}

// SemanticScores maps similarity matches by scan id. Cosine scores are already in [0,1];
// a scan matched more than once keeps its best score.
func SemanticScores(matches []models.SimilarityMatch) map[string]float64 {
	scores := make(map[string]float64, len(matches))
	for _, m := range matches {
		if cur, ok := scores[m.ScanID]; !ok || m.SimilarityScore > cur {
			scores[m.ScanID] = m.SimilarityScore
		}
	}
	return scores
}

// Fuse combines the two score maps with a weighted sum, best first.
// Equal scores are ordered by scan id so pages are stable.
func Fuse(keywordScores, semanticScores map[string]float64, keywordWeight, semanticWeight float64) []*FusedResult {
	byID := make(map[string]*FusedResult, len(keywordScores)+len(semanticScores))
	for id, score := range keywordScores {
		byID[id] = &FusedResult{ScanID: id, KeywordScore: score}
	}
	for id, score := range semanticScores {
		if r, ok := byID[id]; ok {
			r.SemanticScore = score
		} else {
			byID[id] = &FusedResult{ScanID: id, SemanticScore: score}
		}
	}
	results := make([]*FusedResult, 0, len(byID))
	for _, r := range byID {
		r.Score = keywordWeight*r.KeywordScore + semanticWeight*r.SemanticScore
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ScanID < results[j].ScanID
	})
	return results
}

// weights returns the backend weights renormalized over the enabled backends.
func weights(keywordWeight, semanticWeight float64, keywordOn, semanticOn bool) (float64, float64) {
	if !keywordOn {
		keywordWeight = 0
	}
	if !semanticOn {
		semanticWeight = 0
	}
	sum := keywordWeight + semanticWeight
	if sum <= 0 {
		switch {
		case keywordOn && semanticOn:
			return 0.5, 0.5
		case keywordOn:
			return 1, 0
		case semanticOn:
			return 0, 1
		}
		return 0, 0
	}
	return keywordWeight / sum, semanticWeight / sum
}
