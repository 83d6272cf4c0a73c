package genai

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"
)

// RateLimitedGenerator throttles calls to an underlying generator. It blocks until a token
// is available or the context is done.
type RateLimitedGenerator struct {
	next    Generator
	limiter *rate.Limiter
}

// NewRateLimitedGenerator wraps next with a limiter allowing rps requests per second.
func NewRateLimitedGenerator(next Generator, rps float64) *RateLimitedGenerator {
	return &RateLimitedGenerator{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Generate waits for the limiter and then delegates.
func (r *RateLimitedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		slog.Warn("genai.RateLimitedGenerator.Generate: limiter wait aborted", "error", err)
		return "", fmt.Errorf("rate limiter: %w", err)
	}
	return r.next.Generate(ctx, prompt)
}
