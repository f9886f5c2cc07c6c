package matching

import (
	"testing"

	"github.com/hyperjump/marketscan/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestConfidence_TopThreeWeighted(t *testing.T) {
	matches := []models.SimilarityMatch{matchWith(0.9, 5), matchWith(0.8, 5), matchWith(0.7, 5)}
	want := (0.9*1 + 0.8*0.5 + 0.7/3) / (1 + 0.5 + 1.0/3)
	assert.InDelta(t, want, Confidence(matches), 1e-9)
	assert.InDelta(t, 0.836, Confidence(matches), 0.001)
}

func TestConfidence_IgnoresBeyondThird(t *testing.T) {
	three := []float64{0.9, 0.8, 0.7}
	five := []float64{0.9, 0.8, 0.7, 0.1, 0.0}
	assert.Equal(t, ConfidenceFromScores(three), ConfidenceFromScores(five))
}

func TestConfidence_Empty(t *testing.T) {
	assert.Equal(t, 0.0, Confidence(nil))
	assert.Equal(t, 0.0, Confidence([]models.SimilarityMatch{}))
}

func TestConfidence_SingleMatch(t *testing.T) {
	assert.InDelta(t, 0.77, ConfidenceFromScores([]float64{0.77}), 1e-12)
}

func TestConfidence_Bounds(t *testing.T) {
	cases := [][]float64{
		{0.01},
		{1, 1, 1},
		{0.75, 0.75},
		{1.0000001, 1.0000002},
		{0.99, 0.5, 0.2, 0.9},
	}
	for _, scores := range cases {
		c := ConfidenceFromScores(scores)
		assert.Greater(t, c, 0.0, "scores %v", scores)
		assert.LessOrEqual(t, c, 1.0, "scores %v", scores)
	}
}

func TestConfidence_Monotonic(t *testing.T) {
	base := []float64{0.8, 0.75, 0.72}
	before := ConfidenceFromScores(base)
	for rank := range base {
		raised := append([]float64(nil), base...)
		raised[rank] += 0.1
		assert.GreaterOrEqual(t, ConfidenceFromScores(raised), before, "raising rank %d", rank)
	}
}
