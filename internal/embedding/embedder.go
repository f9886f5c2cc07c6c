// Package embedding provides text embedding providers (OpenAI-compatible HTTP, ONNX, mock) and caching.
package embedding

import "context"

// Embedder produces vector embeddings for text.
// Implementations are deterministic for identical input and model version.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}
