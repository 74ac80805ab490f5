package service

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/api/googleapi"

	"github.com/deckwise/analyzer-be/types"
)

// RetryPolicy bounds the Model Client retry loop.
type RetryPolicy struct {
	MaxAttempts int           // total attempts, including the first
	BackoffBase time.Duration // wait before attempt n is BackoffBase << (n-1)
}

// RetryingGenerator wraps a Generator with exponential backoff on transient
// failures. Non-transient failures (auth, malformed request) surface
// immediately as ErrModelRequestRejected; exhausting all attempts surfaces
// ErrModelUnavailable with the last cause attached.
type RetryingGenerator struct {
	inner  Generator
	policy RetryPolicy
}

func NewRetryingGenerator(inner Generator, policy RetryPolicy) (*RetryingGenerator, error) {
	if policy.MaxAttempts <= 0 {
		return nil, types.NewPipelineError(types.ErrInvalidConfiguration,
			errors.New("max attempts must be positive"))
	}
	if policy.BackoffBase < 0 {
		return nil, types.NewPipelineError(types.ErrInvalidConfiguration,
			errors.New("backoff base must not be negative"))
	}
	return &RetryingGenerator{inner: inner, policy: policy}, nil
}

func (g *RetryingGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < g.policy.MaxAttempts; attempt++ {
		if attempt > 0 {
			wait := g.policy.BackoffBase << (attempt - 1)
			select {
			case <-ctx.Done():
				return "", types.NewPipelineError(types.ErrModelUnavailable, ctx.Err())
			case <-time.After(wait):
			}
		}

		out, err := g.inner.Generate(ctx, prompt)
		if err == nil {
			return out, nil
		}
		if ctx.Err() != nil {
			return "", types.NewPipelineError(types.ErrModelUnavailable, ctx.Err())
		}
		if !isTransient(err) {
			return "", types.NewPipelineError(types.ErrModelRequestRejected, err)
		}
		lastErr = err
	}
	return "", types.NewPipelineError(types.ErrModelUnavailable, lastErr)
}

// isTransient reports whether the failure is worth retrying. Rate limits,
// server errors and timeouts are transient; client-side rejections are not.
func isTransient(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return retryableStatus(gErr.Code)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	// Unclassified transport failures get the benefit of the doubt.
	var pipeErr *types.PipelineError
	if errors.As(err, &pipeErr) {
		return false
	}
	return true
}

func retryableStatus(code int) bool {
	return code == 408 || code == 429 || code >= 500
}

// classifyModelError tags a raw provider failure with its pipeline kind, so
// model calls outside the retry loop (embedding, for one) surface the same
// taxonomy. Errors already tagged pass through unchanged.
func classifyModelError(err error) error {
	var pipeErr *types.PipelineError
	if errors.As(err, &pipeErr) {
		return err
	}
	if isTransient(err) {
		return types.NewPipelineError(types.ErrModelUnavailable, err)
	}
	return types.NewPipelineError(types.ErrModelRequestRejected, err)
}
