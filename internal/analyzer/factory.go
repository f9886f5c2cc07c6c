package analyzer

import (
	"context"
	"fmt"

	"github.com/hyperjump/marketscan/internal/config"
	"github.com/hyperjump/marketscan/pkg/utils"
	"go.uber.org/zap"
)

// NewFromConfig builds the configured analyzer. Provider "rules" (or a Gemini
// provider without an API key) uses keyword rules only. With fallback enabled,
// model failures are answered by the rules.
func NewFromConfig(ctx context.Context, cfg *config.AnalyzerConfig, logger *zap.Logger) (Analyzer, error) {
	logger = utils.OrNop(logger)
	rules := NewRuleBasedAnalyzer()
	switch cfg.Provider {
	case "rules":
		return rules, nil
	case "gemini", "":
		key := cfg.APIKey()
		if key == "" {
			logger.Warn("no analyzer API key set, using keyword rules", zap.String("env", cfg.APIKeyEnv))
			return rules, nil
		}
		gen, err := NewGeminiGenerator(ctx, key, cfg.Model)
		if err != nil {
			return nil, err
		}
		llm := NewLLMAnalyzer(gen, cfg.Timeout, logger)
		if cfg.FallbackOrDefault() {
			return NewFallbackAnalyzer(llm, rules, logger), nil
		}
		return llm, nil
	default:
		return nil, fmt.Errorf("unknown analyzer provider: %s (supported: gemini, rules)", cfg.Provider)
	}
}
