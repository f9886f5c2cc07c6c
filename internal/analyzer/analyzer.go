// Package analyzer turns a job posting into a structured JobAnalysis, either by
// asking a language model or by keyword rules.
package analyzer

import (
	"context"

	"github.com/hyperjump/marketscan/internal/models"
)

// Analyzer classifies a job posting. The result always satisfies JobAnalysis.Validate.
type Analyzer interface {
	Analyze(ctx context.Context, posting models.JobPosting) (models.JobAnalysis, error)
}

// ContentGenerator sends a prompt to a language model and returns its text reply.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}
