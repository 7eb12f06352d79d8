package llm

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// DefaultCallTimeout bounds a single provider call
const DefaultCallTimeout = 20 * time.Second

// RetryConfig controls exponential backoff for transient provider failures
type RetryConfig struct {
	MaxRetries  int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
	// CallTimeout bounds each attempt; zero disables the per-attempt deadline
	CallTimeout time.Duration
}

// DefaultRetryConfig returns two retries starting at one second.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:  2,
		InitialWait: time.Second,
		MaxWait:     8 * time.Second,
		Multiplier:  2,
		CallTimeout: DefaultCallTimeout,
	}
}

// newBackOff builds a jitter-free exponential schedule from the config.
func (c RetryConfig) newBackOff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cmp.Or(c.InitialWait, backoff.DefaultInitialInterval)
	bo.MaxInterval = cmp.Or(c.MaxWait, backoff.DefaultMaxInterval)
	bo.Multiplier = cmp.Or(c.Multiplier, backoff.DefaultMultiplier)
	bo.RandomizationFactor = 0
	bo.Reset()
	return bo
}

// RetryDo runs fn until it succeeds, fails with a non-transient error, or the
// retry budget is spent. Quota failures are returned as *QuotaError without
// retrying. Cancelling ctx aborts any pending wait.
func RetryDo[T any](ctx context.Context, cfg RetryConfig, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	attempt := 0
	exhausted := true

	operation := func() (T, error) {
		attempt++
		result, err := callOnce(ctx, cfg.CallTimeout, fn)
		if err == nil {
			return result, nil
		}
		if isQuotaCause(err) {
			exhausted = false
			if IsQuota(err) {
				return result, backoff.Permanent(err)
			}
			return result, backoff.Permanent(&QuotaError{Message: op, Cause: err})
		}
		if ctx.Err() != nil {
			exhausted = false
			return result, backoff.Permanent(ctx.Err())
		}
		if !isTransient(err) {
			exhausted = false
			return result, backoff.Permanent(err)
		}
		return result, err
	}

	notify := func(err error, wait time.Duration) {
		slog.Warn("retrying llm call",
			slog.String("op", op),
			slog.Int("attempt", attempt+1),
			slog.Duration("wait", wait),
			slog.Any("error", err))
	}

	result, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(cfg.newBackOff()),
		backoff.WithMaxTries(uint(max(cfg.MaxRetries, 0)+1)),
		backoff.WithNotify(notify))
	if err == nil {
		return result, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, ctxErr
	}
	if exhausted {
		return result, fmt.Errorf("%s failed after %d retries: %w", op, attempt-1, err)
	}
	return result, err
}

func callOnce[T any](ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(callCtx)
}

// RetryingClient decorates a Client with per-attempt timeouts and transient
// retries. Close is forwarded to the wrapped client.
type RetryingClient struct {
	Client
	cfg RetryConfig
}

// WithRetry wraps client with the given retry policy.
func WithRetry(client Client, cfg RetryConfig) *RetryingClient {
	return &RetryingClient{Client: client, cfg: cfg}
}

// GenerateContent generates text content, retrying transient failures
func (c *RetryingClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return RetryDo(ctx, c.cfg, "generate content", func(ctx context.Context) (string, error) {
		return c.Client.GenerateContent(ctx, prompt, tier)
	})
}

// GenerateJSON generates JSON content, retrying transient failures
func (c *RetryingClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return RetryDo(ctx, c.cfg, "generate json", func(ctx context.Context) (string, error) {
		return c.Client.GenerateJSON(ctx, prompt, tier)
	})
}
