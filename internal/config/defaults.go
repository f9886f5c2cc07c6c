package config

import "time"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "sqlite"
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/marketscan/data/db/scans.db"
	}
	if cfg.Storage.DatabaseURLEnv == "" {
		cfg.Storage.DatabaseURLEnv = "DATABASE_URL"
	}
	if cfg.Storage.KeywordIndexPath == "" {
		cfg.Storage.KeywordIndexPath = "/usr/local/var/marketscan/data/indices/bleve"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "openai"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-3-small"
	}
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Embedding.APIKeyEnv == "" {
		cfg.Embedding.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 1536
	}
	if cfg.Embedding.MaxChars == 0 {
		cfg.Embedding.MaxChars = 8000
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 1000
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Vector.IndexType == "" {
		cfg.Vector.IndexType = "bolt"
	}
	if cfg.Vector.Path == "" {
		cfg.Vector.Path = "/usr/local/var/marketscan/data/indices/vectors.db"
	}
	if cfg.Vector.Table == "" {
		cfg.Vector.Table = "scan_vectors"
	}
	if cfg.Matching.SimilarThreshold == 0 {
		cfg.Matching.SimilarThreshold = 0.75
	}
	if cfg.Matching.AnalysisThreshold == 0 {
		cfg.Matching.AnalysisThreshold = 0.70
	}
	if cfg.Matching.MaxResults == 0 {
		cfg.Matching.MaxResults = 5
	}
	if cfg.Matching.EmbedTimeout == 0 {
		cfg.Matching.EmbedTimeout = 15 * time.Second
	}
	if cfg.Matching.QueryTimeout == 0 {
		cfg.Matching.QueryTimeout = 10 * time.Second
	}
	if cfg.Matching.UpsertTimeout == 0 {
		cfg.Matching.UpsertTimeout = 10 * time.Second
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 10
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 100
	}
	if cfg.Search.Candidates == 0 {
		cfg.Search.Candidates = 50
	}
	if cfg.Search.KeywordWeight == 0 && cfg.Search.SemanticWeight == 0 {
		cfg.Search.KeywordWeight = 0.5
		cfg.Search.SemanticWeight = 0.5
	}
	if cfg.Search.SemanticThreshold == 0 {
		cfg.Search.SemanticThreshold = 0.3
	}
	if cfg.Analyzer.Provider == "" {
		cfg.Analyzer.Provider = "gemini"
	}
	if cfg.Analyzer.Model == "" {
		cfg.Analyzer.Model = "gemini-2.5-flash"
	}
	if cfg.Analyzer.APIKeyEnv == "" {
		cfg.Analyzer.APIKeyEnv = "GEMINI_API_KEY"
	}
	if cfg.Analyzer.Timeout == 0 {
		cfg.Analyzer.Timeout = 60 * time.Second
	}
	if cfg.Intake.Extensions == nil {
		cfg.Intake.Extensions = []string{".txt", ".md", ".pdf", ".docx", ".xlsx", ".rtf", ".odt"}
	}
}
