package models

// SalaryRange is a monthly compensation band for one region.
type SalaryRange struct {
	Low         int    `json:"low"`
	Mid         int    `json:"mid"`
	High        int    `json:"high"`
	Currency    string `json:"currency"`
	Period      string `json:"period"`
	SavingsVsUS int    `json:"savings_vs_us"`
}

// PayBand is the coarse compensation tier recommended for a role.
type PayBand string

const (
	PayBandLow  PayBand = "low"
	PayBandMid  PayBand = "mid"
	PayBandHigh PayBand = "high"
)

// MarketInsights summarizes regional hiring conditions for a role.
type MarketInsights struct {
	HighDemandRegions  []string `json:"high_demand_regions"`
	CompetitiveFactors []string `json:"competitive_factors"`
	CostEfficiency     string   `json:"cost_efficiency"`
}

// SalaryRecommendations are the per-region compensation results of a scan.
type SalaryRecommendations struct {
	// ByRegion is keyed by region name.
	ByRegion           map[string]SalaryRange `json:"salary_recommendations"`
	RecommendedPayBand PayBand                `json:"recommended_pay_band"`
	FactorsConsidered  []string               `json:"factors_considered"`
	MarketInsights     MarketInsights         `json:"market_insights"`
}

// SalaryBenchmark is a recorded salary range for a role in one region.
// ExperienceBand is a years-of-experience label such as "2-4 years".
type SalaryBenchmark struct {
	RoleCategory   RoleCategory `json:"role_category"`
	Region         Region       `json:"region"`
	ExperienceBand string       `json:"experience_level"`
	Range          SalaryRange  `json:"range"`
}

var experienceBands = map[ExperienceLevel][]string{
	LevelJunior: {"1-2 years", "2-4 years"},
	LevelMid:    {"2-4 years", "3-6 years"},
	LevelSenior: {"5-8 years", "7-10 years"},
	LevelExpert: {"9+ years", "10+ years"},
}

// ExperienceBands returns the benchmark experience labels that cover level.
func ExperienceBands(level ExperienceLevel) []string {
	if bands, ok := experienceBands[level]; ok {
		return append([]string(nil), bands...)
	}
	return []string{"2-4 years"}
}
