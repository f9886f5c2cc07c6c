package analyzer

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hyperjump/marketscan/internal/models"
	"github.com/hyperjump/marketscan/pkg/utils"
	"go.uber.org/zap"
)

//go:embed prompt.md
var promptTemplate string

// ErrNoJSON is returned when a model reply contains no JSON object.
var ErrNoJSON = errors.New("no JSON object in model reply")

const maxLogLength = 200

// LLMAnalyzer asks a language model to classify postings.
type LLMAnalyzer struct {
	generator ContentGenerator
	timeout   time.Duration
	logger    *zap.Logger
}

// NewLLMAnalyzer creates an analyzer over generator. timeout <= 0 means no extra deadline.
func NewLLMAnalyzer(generator ContentGenerator, timeout time.Duration, logger *zap.Logger) *LLMAnalyzer {
	return &LLMAnalyzer{generator: generator, timeout: timeout, logger: utils.OrNop(logger)}
}

// Analyze sends the posting to the model and parses its reply.
func (a *LLMAnalyzer) Analyze(ctx context.Context, posting models.JobPosting) (models.JobAnalysis, error) {
	prompt := buildPrompt(posting)
	a.logger.Debug("requesting job analysis",
		zap.String("job_title", posting.Title),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)))

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	reply, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return models.JobAnalysis{}, fmt.Errorf("job analysis request: %w", err)
	}

	analysis, err := ParseReply(reply)
	if err != nil {
		a.logger.Warn("unusable job analysis reply",
			zap.String("reply_preview", utils.Truncate(reply, maxLogLength)),
			zap.Error(err))
		return models.JobAnalysis{}, err
	}
	return analysis, nil
}

func buildPrompt(p models.JobPosting) string {
	challenges := ""
	if c := strings.TrimSpace(p.HiringChallenges); c != "" {
		challenges = "\nHiring Challenges: " + c
	}
	return strings.NewReplacer(
		"{{JOB_TITLE}}", p.Title,
		"{{JOB_DESCRIPTION}}", p.Description,
		"{{HIRING_CHALLENGES}}", challenges,
	).Replace(promptTemplate)
}

// extractJSON returns the text from the first '{' to the last '}'.
func extractJSON(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return "", ErrNoJSON
	}
	return raw[start : end+1], nil
}

type reply struct {
	RoleCategory            string      `json:"role_category"`
	ExperienceLevel         string      `json:"experience_level"`
	YearsExperienceRequired string      `json:"years_experience_required"`
	MustHaveSkills          []string    `json:"must_have_skills"`
	NiceToHaveSkills        []string    `json:"nice_to_have_skills"`
	KeyResponsibilities     []string    `json:"key_responsibilities"`
	RemoteWorkSuitability   string      `json:"remote_work_suitability"`
	ComplexityScore         json.Number `json:"complexity_score"`
	RecommendedRegions      []string    `json:"recommended_regions"`
	UniqueChallenges        string      `json:"unique_challenges"`
	SalaryFactors           []string    `json:"salary_factors"`
}

// ParseReply extracts, schema-checks, and converts a model reply into a validated JobAnalysis.
// Enum values match case-insensitively.
func ParseReply(raw string) (models.JobAnalysis, error) {
	text, err := extractJSON(raw)
	if err != nil {
		return models.JobAnalysis{}, err
	}
	if err := validateReply([]byte(text)); err != nil {
		return models.JobAnalysis{}, err
	}

	var r reply
	if err := json.Unmarshal([]byte(text), &r); err != nil {
		return models.JobAnalysis{}, fmt.Errorf("decode analysis: %w", err)
	}

	role, ok := models.ParseRoleCategory(r.RoleCategory)
	if !ok {
		return models.JobAnalysis{}, fmt.Errorf("unknown role category %q", r.RoleCategory)
	}
	f, err := r.ComplexityScore.Float64()
	if err != nil || f != math.Trunc(f) {
		return models.JobAnalysis{}, fmt.Errorf("complexity score %q is not an integer", r.ComplexityScore)
	}
	complexity := int(f)
	regions := make([]models.Region, 0, len(r.RecommendedRegions))
	for _, name := range r.RecommendedRegions {
		region, ok := models.ParseRegion(name)
		if !ok {
			return models.JobAnalysis{}, fmt.Errorf("unknown region %q", name)
		}
		regions = append(regions, region)
	}

	a := models.JobAnalysis{
		RoleCategory:            role,
		ExperienceLevel:         models.ExperienceLevel(strings.ToLower(strings.TrimSpace(r.ExperienceLevel))),
		YearsExperienceRequired: r.YearsExperienceRequired,
		MustHaveSkills:          r.MustHaveSkills,
		NiceToHaveSkills:        r.NiceToHaveSkills,
		KeyResponsibilities:     r.KeyResponsibilities,
		RemoteWorkSuitability:   models.RemoteSuitability(strings.ToLower(strings.TrimSpace(r.RemoteWorkSuitability))),
		ComplexityScore:         complexity,
		RecommendedRegions:      regions,
		UniqueChallenges:        r.UniqueChallenges,
		SalaryFactors:           r.SalaryFactors,
	}
	if err := a.Validate(); err != nil {
		return models.JobAnalysis{}, err
	}
	return a, nil
}
