package embedding

import (
	"fmt"

	"github.com/hyperjump/marketscan/internal/config"
)

// Provider names accepted by NewFromConfig.
const (
	ProviderOpenAI = "openai"
	ProviderONNX   = "onnx"
	ProviderMock   = "mock"
)

// NewFromConfig builds the configured embedding provider wrapped in an LRU cache.
func NewFromConfig(cfg *config.EmbeddingConfig) (Embedder, error) {
	var inner Embedder
	switch cfg.Provider {
	case ProviderOpenAI, "":
		e, err := NewOpenAIEmbedder(cfg.APIKey(), cfg.Model, cfg.BaseURL, cfg.Dimensions)
		if err != nil {
			return nil, fmt.Errorf("openai embedder: %w", err)
		}
		inner = e
	case ProviderONNX:
		e, err := newONNXEmbedder(ONNXConfig{ModelPath: cfg.ModelPath, Dimensions: cfg.Dimensions, MaxTokens: cfg.MaxTokens})
		if err != nil {
			return nil, fmt.Errorf("onnx embedder: %w", err)
		}
		inner = e
	case ProviderMock:
		inner = NewMockEmbedder(cfg.Dimensions)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: openai, onnx, mock)", cfg.Provider)
	}
	if cfg.CacheSize > 0 {
		return NewCachedEmbedder(inner, cfg.CacheSize), nil
	}
	return inner, nil
}
