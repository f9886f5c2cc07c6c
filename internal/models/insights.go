package models

// RegionDemand counts how often a region was recommended.
type RegionDemand struct {
	Region      string `json:"region"`
	DemandScore int    `json:"demand_score"`
}

// RoleMarketInsights aggregates recent completed scans of one role category.
// Sufficient is false when too few scans exist; the aggregate fields are then zero.
type RoleMarketInsights struct {
	RoleCategory          RoleCategory    `json:"role_category"`
	DataPoints            int             `json:"data_points"`
	Sufficient            bool            `json:"sufficient"`
	AverageComplexity     float64         `json:"average_complexity_score"`
	MostInDemandRegions   []RegionDemand  `json:"most_in_demand_regions"`
	SalaryDistribution    map[PayBand]int `json:"salary_distribution"`
	MarketCompetitiveness string          `json:"market_competitiveness"`
	HiringDifficulty      string          `json:"hiring_difficulty"`
	AnalysisPeriod        string          `json:"analysis_period"`
}

// CategoryCount is a value and how many scans carried it.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// MarketTrends summarizes completed scans created within a lookback window.
type MarketTrends struct {
	TotalScans        int               `json:"total_scans"`
	IndexedScans      int               `json:"indexed_scans"`
	AnalysisPeriod    string            `json:"analysis_period"`
	MostCommonRoles   []CategoryCount   `json:"most_common_roles"`
	PopularRegions    []CategoryCount   `json:"popular_regions"`
	AverageComplexity float64           `json:"average_complexity"`
	RemoteSuitability RemoteSuitability `json:"remote_suitability,omitempty"`
}
