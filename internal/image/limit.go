package image

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limited paces calls to the wrapped Generator.
type Limited struct {
	Generator
	limiter *rate.Limiter
}

// NewLimited allows one request per interval. A zero interval disables pacing.
func NewLimited(g Generator, interval time.Duration) *Limited {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Limited{Generator: g, limiter: rate.NewLimiter(limit, 1)}
}

func (l *Limited) Generate(ctx context.Context, params Params) (*Result, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return l.Generator.Generate(ctx, params)
}
