package analyzer

import (
	"context"
	"strings"

	"github.com/hyperjump/marketscan/internal/models"
)

// RuleBasedAnalyzer classifies postings by keywords. It never fails and is used
// when no model is configured or the model call fails.
type RuleBasedAnalyzer struct{}

// NewRuleBasedAnalyzer returns the keyword analyzer.
func NewRuleBasedAnalyzer() *RuleBasedAnalyzer {
	return &RuleBasedAnalyzer{}
}

type roleRule struct {
	keywords []string
	role     models.RoleCategory
}

// roleRules are checked against the title in order; the first hit wins.
var roleRules = []roleRule{
	{[]string{"brand", "marketing", "creative"}, models.RoleBrandMarketingManager},
	{[]string{"ecommerce", "shopify", "e-commerce"}, models.RoleEcommerceManager},
	{[]string{"data", "analyst", "analytics"}, models.RoleDataAnalyst},
	{[]string{"content", "social"}, models.RoleContentMarketer},
}

var (
	seniorMarkers = []string{"senior", "5+", "7+", "lead"}
	juniorMarkers = []string{"junior", "entry", "1-2"}
)

// Analyze returns a generic analysis whose role comes from the title and whose
// experience level comes from the description.
func (r *RuleBasedAnalyzer) Analyze(ctx context.Context, posting models.JobPosting) (models.JobAnalysis, error) {
	return models.JobAnalysis{
		RoleCategory:            classifyRole(posting.Title),
		ExperienceLevel:         classifyLevel(posting.Description),
		YearsExperienceRequired: "3-5 years",
		MustHaveSkills:          []string{"Communication", "Project Management", "Analytical Thinking"},
		NiceToHaveSkills:        []string{"Remote Work Experience", "Industry Knowledge"},
		KeyResponsibilities:     []string{"Manage daily operations", "Coordinate with teams", "Analyze performance"},
		RemoteWorkSuitability:   models.RemoteHigh,
		ComplexityScore:         models.DefaultComplexity,
		RecommendedRegions:      []models.Region{models.RegionPhilippines, models.RegionLatinAmerica},
		UniqueChallenges:        "Standard remote role requirements",
		SalaryFactors:           []string{"Experience level", "Technical skills", "Industry knowledge"},
	}, nil
}

func classifyRole(title string) models.RoleCategory {
	t := strings.ToLower(title)
	for _, rule := range roleRules {
		if containsAny(t, rule.keywords) {
			return rule.role
		}
	}
	return models.RoleOperationsManager
}

func classifyLevel(description string) models.ExperienceLevel {
	d := strings.ToLower(description)
	switch {
	case containsAny(d, seniorMarkers):
		return models.LevelSenior
	case containsAny(d, juniorMarkers):
		return models.LevelJunior
	default:
		return models.LevelMid
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
