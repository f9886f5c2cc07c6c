package matching

import (
	"github.com/hyperjump/marketscan/pkg/utils"
	"go.uber.org/zap"
)

// DefaultMaxChars is the embedding text ceiling used when none is configured.
const DefaultMaxChars = 8000

// previewChars is the length of the embedding text preview stored as metadata.
const previewChars = 200

// TextBuilder produces the embedding text for a posting. The matcher and the
// store share one builder so query text and stored text are identical.
type TextBuilder struct {
	maxChars int
	logger   *zap.Logger
}

// NewTextBuilder returns a builder that truncates to maxChars characters.
// maxChars <= 0 uses DefaultMaxChars.
func NewTextBuilder(maxChars int, logger *zap.Logger) *TextBuilder {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &TextBuilder{maxChars: maxChars, logger: utils.OrNop(logger)}
}

// MaxChars returns the truncation ceiling.
func (b *TextBuilder) MaxChars() int {
	return b.maxChars
}

// Build joins title and description, collapses whitespace, and truncates to the
// ceiling with "..." appended. The result depends only on its inputs.
func (b *TextBuilder) Build(title, description string) string {
	text := utils.CollapseWhitespace("Job Title: " + title + "\n\nJob Description: " + description)
	if n := utils.RuneLen(text); n > b.maxChars {
		b.logger.Warn("embedding text truncated",
			zap.Int("original_chars", n),
			zap.Int("max_chars", b.maxChars))
		text = utils.Truncate(text, b.maxChars)
	}
	return text
}

// Preview returns the short form of an embedding text kept in metadata.
func Preview(text string) string {
	return utils.Truncate(text, previewChars)
}
