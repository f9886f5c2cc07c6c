// Package models defines the market scan domain types shared across packages.
package models

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// RoleCategory is the classified role family of a job posting.
type RoleCategory string

const (
	RoleBrandMarketingManager  RoleCategory = "Brand Marketing Manager"
	RoleCommunityManager       RoleCategory = "Community Manager"
	RoleContentMarketer        RoleCategory = "Content Marketer"
	RoleRetentionManager       RoleCategory = "Retention Manager"
	RoleEcommerceManager       RoleCategory = "Ecommerce Manager"
	RoleSalesOperationsManager RoleCategory = "Sales Operations Manager"
	RoleDataAnalyst            RoleCategory = "Data Analyst"
	RoleLogisticsManager       RoleCategory = "Logistics Manager"
	RoleOperationsManager      RoleCategory = "Operations Manager"
)

// RoleCategories lists every allowed role category.
var RoleCategories = []RoleCategory{
	RoleBrandMarketingManager,
	RoleCommunityManager,
	RoleContentMarketer,
	RoleRetentionManager,
	RoleEcommerceManager,
	RoleSalesOperationsManager,
	RoleDataAnalyst,
	RoleLogisticsManager,
	RoleOperationsManager,
}

// ExperienceLevel is the seniority band of a role.
type ExperienceLevel string

const (
	LevelJunior ExperienceLevel = "junior"
	LevelMid    ExperienceLevel = "mid"
	LevelSenior ExperienceLevel = "senior"
	LevelExpert ExperienceLevel = "expert"
)

// Region is a hiring region used for salary recommendations.
type Region string

const (
	RegionUnitedStates Region = "United States"
	RegionPhilippines  Region = "Philippines"
	RegionLatinAmerica Region = "Latin America"
	RegionSouthAfrica  Region = "South Africa"
)

// Regions lists every supported region.
var Regions = []Region{RegionUnitedStates, RegionPhilippines, RegionLatinAmerica, RegionSouthAfrica}

// RemoteSuitability rates how well a role works remotely.
type RemoteSuitability string

const (
	RemoteHigh   RemoteSuitability = "high"
	RemoteMedium RemoteSuitability = "medium"
	RemoteLow    RemoteSuitability = "low"
)

// Complexity bounds for JobAnalysis.ComplexityScore.
const (
	MinComplexity     = 1
	MaxComplexity     = 10
	DefaultComplexity = 5
)

// JobPosting is the raw input for a market scan.
type JobPosting struct {
	Title            string `json:"title" validate:"required,max=500"`
	Description      string `json:"description" validate:"required"`
	HiringChallenges string `json:"hiring_challenges,omitempty"`
}

// JobAnalysis is the structured classification of a job posting.
type JobAnalysis struct {
	RoleCategory            RoleCategory      `json:"role_category" validate:"required,role_category"`
	ExperienceLevel         ExperienceLevel   `json:"experience_level" validate:"required,oneof=junior mid senior expert"`
	YearsExperienceRequired string            `json:"years_experience_required"`
	MustHaveSkills          []string          `json:"must_have_skills"`
	NiceToHaveSkills        []string          `json:"nice_to_have_skills"`
	KeyResponsibilities     []string          `json:"key_responsibilities"`
	RemoteWorkSuitability   RemoteSuitability `json:"remote_work_suitability" validate:"omitempty,oneof=high medium low"`
	ComplexityScore         int               `json:"complexity_score" validate:"min=1,max=10"`
	RecommendedRegions      []Region          `json:"recommended_regions" validate:"dive,region"`
	UniqueChallenges        string            `json:"unique_challenges"`
	SalaryFactors           []string          `json:"salary_factors"`
}

// Clone returns a deep copy of a, so callers can derive a new analysis without aliasing slices.
func (a JobAnalysis) Clone() JobAnalysis {
	out := a
	out.MustHaveSkills = cloneStrings(a.MustHaveSkills)
	out.NiceToHaveSkills = cloneStrings(a.NiceToHaveSkills)
	out.KeyResponsibilities = cloneStrings(a.KeyResponsibilities)
	out.SalaryFactors = cloneStrings(a.SalaryFactors)
	if a.RecommendedRegions != nil {
		out.RecommendedRegions = append([]Region(nil), a.RecommendedRegions...)
	}
	return out
}

// RegionNames returns the recommended regions as plain strings.
func (a JobAnalysis) RegionNames() []string {
	out := make([]string, len(a.RecommendedRegions))
	for i, r := range a.RecommendedRegions {
		out[i] = string(r)
	}
	return out
}

// Validate checks the analysis against the allowed enum values and bounds.
func (a *JobAnalysis) Validate() error {
	if err := validate().Struct(a); err != nil {
		return fmt.Errorf("invalid job analysis: %w", err)
	}
	return nil
}

// ParseRoleCategory matches s against the allowed role categories, ignoring case.
func ParseRoleCategory(s string) (RoleCategory, bool) {
	s = strings.TrimSpace(s)
	for _, rc := range RoleCategories {
		if strings.EqualFold(string(rc), s) {
			return rc, true
		}
	}
	return "", false
}

// ParseRegion matches s against the supported regions, ignoring case.
func ParseRegion(s string) (Region, bool) {
	s = strings.TrimSpace(s)
	for _, r := range Regions {
		if strings.EqualFold(string(r), s) {
			return r, true
		}
	}
	return "", false
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

var (
	validateOnce sync.Once
	validateInst *validator.Validate
)

// validate returns the shared validator with the domain enum rules registered.
func validate() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		_ = v.RegisterValidation("role_category", func(fl validator.FieldLevel) bool {
			_, ok := ParseRoleCategory(fl.Field().String())
			return ok
		})
		_ = v.RegisterValidation("region", func(fl validator.FieldLevel) bool {
			_, ok := ParseRegion(fl.Field().String())
			return ok
		})
		validateInst = v
	})
	return validateInst
}
