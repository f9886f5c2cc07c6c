// Package salary estimates regional monthly salary ranges for an analyzed role.
package salary

import (
	"context"
	"sort"
	"strings"

	"github.com/hyperjump/marketscan/internal/models"
	"github.com/hyperjump/marketscan/pkg/utils"
	"go.uber.org/zap"
)

const (
	defaultBaseSalary = 5000
	defaultSavings    = 50
	currencyUSD       = "USD"
	periodMonthly     = "monthly"
)

// usBaseSalaries are monthly US salaries by role and experience level.
var usBaseSalaries = map[models.RoleCategory]map[models.ExperienceLevel]int{
	models.RoleBrandMarketingManager:  {models.LevelJunior: 5000, models.LevelMid: 6000, models.LevelSenior: 7500, models.LevelExpert: 9000},
	models.RoleEcommerceManager:       {models.LevelJunior: 4500, models.LevelMid: 5500, models.LevelSenior: 7000, models.LevelExpert: 8500},
	models.RoleDataAnalyst:            {models.LevelJunior: 4000, models.LevelMid: 5000, models.LevelSenior: 6500, models.LevelExpert: 8000},
	models.RoleContentMarketer:        {models.LevelJunior: 3500, models.LevelMid: 4500, models.LevelSenior: 6000, models.LevelExpert: 7500},
	models.RoleCommunityManager:       {models.LevelJunior: 3000, models.LevelMid: 4000, models.LevelSenior: 5500, models.LevelExpert: 7000},
	models.RoleRetentionManager:       {models.LevelJunior: 4000, models.LevelMid: 5000, models.LevelSenior: 6500, models.LevelExpert: 8000},
	models.RoleSalesOperationsManager: {models.LevelJunior: 4500, models.LevelMid: 5500, models.LevelSenior: 7000, models.LevelExpert: 8500},
	models.RoleLogisticsManager:       {models.LevelJunior: 4000, models.LevelMid: 5000, models.LevelSenior: 6500, models.LevelExpert: 8000},
	models.RoleOperationsManager:      {models.LevelJunior: 4200, models.LevelMid: 5200, models.LevelSenior: 6700, models.LevelExpert: 8200},
}

// regionalSavings is the percentage saved against a US hire.
var regionalSavings = map[models.Region]int{
	models.RegionUnitedStates: 0,
	models.RegionPhilippines:  71,
	models.RegionLatinAmerica: 58,
	models.RegionSouthAfrica:  48,
}

var experienceScore = map[models.ExperienceLevel]int{
	models.LevelJunior: 1,
	models.LevelMid:    2,
	models.LevelSenior: 3,
	models.LevelExpert: 4,
}

// BenchmarkSource supplies recorded salary ranges that take precedence over estimates.
type BenchmarkSource interface {
	SalaryBenchmarks(ctx context.Context, role models.RoleCategory, level models.ExperienceLevel) (map[models.Region]models.SalaryRange, error)
}

// Calculator produces salary recommendations.
type Calculator struct {
	benchmarks BenchmarkSource
	logger     *zap.Logger
}

// NewCalculator creates a calculator. benchmarks and logger may be nil.
func NewCalculator(benchmarks BenchmarkSource, logger *zap.Logger) *Calculator {
	return &Calculator{benchmarks: benchmarks, logger: utils.OrNop(logger)}
}

// Recommend computes a salary range for each recommended region, the pay band,
// and market insights. Benchmark lookup failures fall back to estimates.
func (c *Calculator) Recommend(ctx context.Context, a models.JobAnalysis) models.SalaryRecommendations {
	var recorded map[models.Region]models.SalaryRange
	if c.benchmarks != nil {
		var err error
		recorded, err = c.benchmarks.SalaryBenchmarks(ctx, a.RoleCategory, a.ExperienceLevel)
		if err != nil {
			c.logger.Warn("salary benchmark lookup failed, estimating",
				zap.String("role_category", string(a.RoleCategory)),
				zap.Error(err))
		}
	}

	byRegion := make(map[string]models.SalaryRange, len(a.RecommendedRegions))
	for _, region := range a.RecommendedRegions {
		if r, ok := recorded[region]; ok {
			byRegion[string(region)] = r
			continue
		}
		byRegion[string(region)] = Estimate(a.RoleCategory, a.ExperienceLevel, region, a.ComplexityScore)
	}

	return models.SalaryRecommendations{
		ByRegion:           byRegion,
		RecommendedPayBand: PayBand(a.ComplexityScore, a.ExperienceLevel),
		FactorsConsidered:  append([]string(nil), a.SalaryFactors...),
		MarketInsights:     insights(a, byRegion),
	}
}

// Estimate derives a range from the US base salary, scaled 0.8x to 1.16x by
// complexity and reduced by the region's savings. The range is mid ±15%.
func Estimate(role models.RoleCategory, level models.ExperienceLevel, region models.Region, complexity int) models.SalaryRange {
	usBase, ok := usBaseSalaries[role][level]
	if !ok {
		usBase = defaultBaseSalary
	}
	multiplier := 0.8 + float64(complexity-1)*0.04
	usAdjusted := int(float64(usBase) * multiplier)

	base := usAdjusted
	savings, known := regionalSavings[region]
	if region != models.RegionUnitedStates {
		pct := savings
		if !known {
			pct = defaultSavings
		}
		base = int(float64(usAdjusted*(100-pct)) / 100)
	}

	return models.SalaryRange{
		Low:         int(float64(base) * 0.85),
		Mid:         base,
		High:        int(float64(base) * 1.15),
		Currency:    currencyUSD,
		Period:      periodMonthly,
		SavingsVsUS: savings,
	}
}

// PayBand maps complexity plus experience score to a tier.
func PayBand(complexity int, level models.ExperienceLevel) models.PayBand {
	exp, ok := experienceScore[level]
	if !ok {
		exp = 2
	}
	switch total := complexity + exp; {
	case total <= 6:
		return models.PayBandLow
	case total <= 10:
		return models.PayBandMid
	default:
		return models.PayBandHigh
	}
}

func insights(a models.JobAnalysis, byRegion map[string]models.SalaryRange) models.MarketInsights {
	type regionSavings struct {
		name    string
		savings int
	}
	var ranked []regionSavings
	seen := make(map[string]bool)
	for _, region := range a.RecommendedRegions {
		name := string(region)
		if r, ok := byRegion[name]; ok && !seen[name] {
			seen[name] = true
			ranked = append(ranked, regionSavings{name, r.SavingsVsUS})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].savings > ranked[j].savings })

	var highDemand []string
	for i := 0; i < len(ranked) && i < 2; i++ {
		highDemand = append(highDemand, ranked[i].name)
	}
	if len(highDemand) == 0 {
		highDemand = []string{string(models.RegionPhilippines), string(models.RegionLatinAmerica)}
	}

	var factors []string
	if a.ComplexityScore >= 7 {
		factors = append(factors, "High complexity role requires experienced candidates")
	}
	for _, s := range a.MustHaveSkills {
		if strings.ToLower(s) == "technical" {
			factors = append(factors, "Technical skills increase market competition")
			break
		}
	}
	if len(a.MustHaveSkills) >= 5 {
		factors = append(factors, "Multiple required skills narrow candidate pool")
	}
	if len(factors) == 0 {
		factors = []string{"Standard market competition"}
	}

	efficiency := "Moderate cost optimization possible with current regional focus"
	_, ph := byRegion[string(models.RegionPhilippines)]
	_, latam := byRegion[string(models.RegionLatinAmerica)]
	if ph || latam {
		efficiency = "High cost savings available through strategic regional hiring"
	}

	return models.MarketInsights{
		HighDemandRegions:  highDemand,
		CompetitiveFactors: factors,
		CostEfficiency:     efficiency,
	}
}
