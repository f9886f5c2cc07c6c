package matching

import (
	"context"
	"time"

	"github.com/hyperjump/marketscan/internal/config"
	"github.com/hyperjump/marketscan/pkg/utils"
	"go.uber.org/zap"
)

// Timeouts bound each external call. Zero means no extra deadline.
type Timeouts struct {
	Embed  time.Duration
	Query  time.Duration
	Upsert time.Duration
}

// TimeoutsFromConfig reads the per-call timeouts from the matching section.
func TimeoutsFromConfig(cfg *config.MatchingConfig) Timeouts {
	return Timeouts{Embed: cfg.EmbedTimeout, Query: cfg.QueryTimeout, Upsert: cfg.UpsertTimeout}
}

type options struct {
	logger   *zap.Logger
	timeouts Timeouts
	now      func() time.Time
}

// Option configures a Matcher, ScanVectorStore, or Service.
type Option func(*options)

// WithLogger sets the logger. Nil keeps the no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = utils.OrNop(l) }
}

// WithTimeouts sets the per-call timeouts.
func WithTimeouts(t Timeouts) Option {
	return func(o *options) { o.timeouts = t }
}

// WithClock overrides time.Now, used for created_at defaults and recency.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func newOptions(opts []Option) options {
	o := options{logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
