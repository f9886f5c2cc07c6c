package vector

import (
	"math"
	"sort"
)

// InnerProduct returns the inner product of two vectors (for normalized vectors equals cosine similarity).
func InnerProduct(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

// L2Norm returns the L2 norm of a vector.
func L2Norm(x []float32) float64 {
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

// CosineSimilarity returns the cosine of the angle between a and b clamped to [0,1].
// Vectors need not be normalized.
func CosineSimilarity(a, b []float32) float64 {
	na, nb := L2Norm(a), L2Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return clampScore(InnerProduct(a, b) / (na * nb))
}

func clampScore(s float64) float64 {
	return math.Max(0, math.Min(1, s))
}

// sortMatches orders by score descending, then id ascending for stable ties.
func sortMatches(m []Match) {
	sort.SliceStable(m, func(i, j int) bool {
		if m[i].Score != m[j].Score {
			return m[i].Score > m[j].Score
		}
		return m[i].ID < m[j].ID
	})
}

// bruteForce scores every record against query and returns the top-k that pass filter.
func bruteForce(query []float32, records map[string]Record, topK int, filter Filter) []Match {
	matches := make([]Match, 0, len(records))
	for id, r := range records {
		if len(filter) > 0 && !filter.Matches(r.Metadata) {
			continue
		}
		matches = append(matches, Match{ID: id, Score: CosineSimilarity(query, r.Vector), Metadata: r.Metadata})
	}
	sortMatches(matches)
	if topK < len(matches) {
		matches = matches[:topK]
	}
	for i := range matches {
		matches[i].Metadata = copyMetadata(matches[i].Metadata)
	}
	return matches
}
