package matching

import "github.com/hyperjump/marketscan/internal/models"

// confidenceDepth is how many of the best matches contribute to confidence.
const confidenceDepth = 3

// Confidence scores how strongly a ranked match list supports an analysis.
// matches must be sorted best first, as FindSimilar returns them.
func Confidence(matches []models.SimilarityMatch) float64 {
	scores := make([]float64, 0, confidenceDepth)
	for i := 0; i < len(matches) && i < confidenceDepth; i++ {
		scores = append(scores, matches[i].SimilarityScore)
	}
	return ConfidenceFromScores(scores)
}

// ConfidenceFromScores is the weighted mean of the first three scores with
// weight 1/(rank+1), capped at 1. An empty list scores 0.
func ConfidenceFromScores(scores []float64) float64 {
	var weighted, total float64
	for i, s := range scores {
		if i == confidenceDepth {
			break
		}
		w := 1.0 / float64(i+1)
		weighted += s * w
		total += w
	}
	if total == 0 {
		return 0
	}
	c := weighted / total
	if c > 1 {
		return 1
	}
	if c < 0 {
		return 0
	}
	return c
}
