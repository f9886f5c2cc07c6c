package matching

import (
	"fmt"
	"math"
	"strings"

	"github.com/hyperjump/marketscan/internal/models"
	"github.com/hyperjump/marketscan/pkg/utils"
	"go.uber.org/zap"
)

const (
	// minCorroborating is the number of matches needed before their signal is used.
	minCorroborating = 2
	// maxSuggestedSkills caps the skills appended to nice-to-have.
	maxSuggestedSkills = 2
	// Complexity blend weights for the baseline and the neighbors' mean.
	baselineWeight = 0.7
	similarWeight  = 0.3
)

// Enhancer blends signal from similar scans into a baseline analysis. Only
// NiceToHaveSkills and ComplexityScore may change.
type Enhancer struct {
	logger *zap.Logger
}

// NewEnhancer creates an enhancer. logger may be nil.
func NewEnhancer(logger *zap.Logger) *Enhancer {
	return &Enhancer{logger: utils.OrNop(logger)}
}

// Enhance returns a new analysis derived from baseline and matches. With fewer
// than two matches, or if the match data cannot be used, it returns a copy of
// baseline. baseline is never modified.
func (e *Enhancer) Enhance(baseline models.JobAnalysis, matches []models.SimilarityMatch) (result models.JobAnalysis) {
	if len(matches) < minCorroborating {
		return baseline.Clone()
	}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("analysis enhancement failed", zap.Any("panic", r))
			result = baseline.Clone()
		}
	}()

	result, err := enhance(baseline, matches)
	if err != nil {
		e.logger.Warn("analysis enhancement skipped", zap.Error(err))
		return baseline.Clone()
	}
	e.logger.Debug("analysis enhanced",
		zap.Int("matches", len(matches)),
		zap.Int("baseline_complexity", baseline.ComplexityScore),
		zap.Int("complexity", result.ComplexityScore),
		zap.Int("skills_added", len(result.NiceToHaveSkills)-len(baseline.NiceToHaveSkills)))
	return result
}

func enhance(baseline models.JobAnalysis, matches []models.SimilarityMatch) (models.JobAnalysis, error) {
	sum := 0
	for i, m := range matches {
		if m.ComplexityScore < models.MinComplexity || m.ComplexityScore > models.MaxComplexity {
			return baseline, fmt.Errorf("match %d (%s): complexity %d out of range", i, m.ScanID, m.ComplexityScore)
		}
		sum += m.ComplexityScore
	}
	avg := float64(sum) / float64(len(matches))

	out := baseline.Clone()
	out.NiceToHaveSkills = append(out.NiceToHaveSkills, SuggestSkills(baseline, matches)...)
	out.ComplexityScore = BlendComplexity(baseline.ComplexityScore, avg)
	return out, nil
}

// SuggestSkills returns up to two must-have skills shared by at least two matches
// that the baseline does not already list, in first-seen order. Skills compare
// case-insensitively after trimming.
func SuggestSkills(baseline models.JobAnalysis, matches []models.SimilarityMatch) []string {
	known := make(map[string]bool)
	for _, s := range baseline.MustHaveSkills {
		known[skillKey(s)] = true
	}
	for _, s := range baseline.NiceToHaveSkills {
		known[skillKey(s)] = true
	}

	counts := make(map[string]int)
	display := make(map[string]string)
	var order []string
	for _, m := range matches {
		seen := make(map[string]bool)
		for _, s := range m.MustHaveSkills {
			key := skillKey(s)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			if _, ok := display[key]; !ok {
				display[key] = strings.TrimSpace(s)
				order = append(order, key)
			}
			counts[key]++
		}
	}

	var out []string
	for _, key := range order {
		if len(out) == maxSuggestedSkills {
			break
		}
		if counts[key] >= minCorroborating && !known[key] {
			out = append(out, display[key])
		}
	}
	return out
}

// BlendComplexity mixes the baseline score with the neighbors' mean, 70/30,
// rounded half away from zero and clamped to [1,10].
func BlendComplexity(baseline int, similarAvg float64) int {
	blended := math.Round(float64(baseline)*baselineWeight + similarAvg*similarWeight)
	return utils.Clamp(int(blended), models.MinComplexity, models.MaxComplexity)
}

func skillKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
