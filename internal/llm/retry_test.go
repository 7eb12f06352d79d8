package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func fastRetry() RetryConfig {
	return RetryConfig{MaxRetries: 2, InitialWait: time.Millisecond, MaxWait: 4 * time.Millisecond, Multiplier: 2}
}

type scriptedClient struct {
	errs  []error
	calls int
	reply string
}

func (c *scriptedClient) next(ctx context.Context) (string, error) {
	c.calls++
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(c.errs) > 0 {
		err := c.errs[0]
		c.errs = c.errs[1:]
		if err != nil {
			return "", err
		}
	}
	return c.reply, nil
}

func (c *scriptedClient) GenerateContent(ctx context.Context, _ string, _ ModelTier) (string, error) {
	return c.next(ctx)
}

func (c *scriptedClient) GenerateJSON(ctx context.Context, _ string, _ ModelTier) (string, error) {
	return c.next(ctx)
}

func (c *scriptedClient) GetModel(ModelTier) string { return "scripted" }
func (c *scriptedClient) Close() error              { return nil }

func TestRetryingClient_RecoversFromTransient(t *testing.T) {
	base := &scriptedClient{
		errs:  []error{status.Error(codes.Unavailable, "busy"), &googleapi.Error{Code: http.StatusBadGateway}},
		reply: "ok",
	}
	client := WithRetry(base, fastRetry())

	out, err := client.GenerateContent(context.Background(), "p", TierLite)

	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 3, base.calls)
	assert.Equal(t, "scripted", client.GetModel(TierLite))
}

func TestRetryingClient_BudgetExhausted(t *testing.T) {
	transient := status.Error(codes.Internal, "boom")
	base := &scriptedClient{errs: []error{transient, transient, transient, transient}}

	_, err := WithRetry(base, fastRetry()).GenerateJSON(context.Background(), "p", TierStandard)

	require.Error(t, err)
	assert.Equal(t, 3, base.calls)
	assert.Contains(t, err.Error(), "after 2 retries")
	assert.False(t, IsQuota(err))
}

func TestRetryingClient_QuotaNotRetried(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"grpc resource exhausted", status.Error(codes.ResourceExhausted, "slow down")},
		{"googleapi 429", &googleapi.Error{Code: http.StatusTooManyRequests}},
		{"message mentions quota", errors.New("daily quota reached")},
		{"already classified", &QuotaError{Message: "upstream"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := &scriptedClient{errs: []error{tt.err}}

			_, err := WithRetry(base, fastRetry()).GenerateContent(context.Background(), "p", TierLite)

			require.Error(t, err)
			assert.True(t, IsQuota(err))
			assert.Equal(t, 1, base.calls)
		})
	}
}

func TestRetryingClient_PermanentErrorNotRetried(t *testing.T) {
	base := &scriptedClient{errs: []error{&googleapi.Error{Code: http.StatusBadRequest, Message: "bad prompt"}}}

	_, err := WithRetry(base, fastRetry()).GenerateContent(context.Background(), "p", TierLite)

	var apiErr *googleapi.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Code)
	assert.NotContains(t, err.Error(), "retries")
	assert.Equal(t, 1, base.calls)
}

func TestRetryDo_PerAttemptTimeout(t *testing.T) {
	cfg := fastRetry()
	cfg.CallTimeout = 5 * time.Millisecond
	calls := 0

	out, err := RetryDo(context.Background(), cfg, "slow", func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			<-ctx.Done()
			return "", ctx.Err()
		}
		return "done", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "done", out)
	assert.Equal(t, 2, calls)
}

func TestRetryDo_ParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastRetry()
	cfg.InitialWait = time.Hour
	cfg.MaxWait = time.Hour

	calls := 0
	_, err := RetryDo(ctx, cfg, "cancelled", func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, status.Error(codes.Unavailable, "down")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRetryConfig_BackOffSchedule(t *testing.T) {
	bo := DefaultRetryConfig().newBackOff()

	var waits []time.Duration
	for range 5 {
		waits = append(waits, bo.NextBackOff())
	}

	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 8 * time.Second}, waits)
}

func TestRetryConfig_BackOffZeroValues(t *testing.T) {
	bo := RetryConfig{}.newBackOff()

	assert.Positive(t, bo.InitialInterval)
	assert.Positive(t, bo.MaxInterval)
	assert.Positive(t, bo.NextBackOff())
}

func TestRetryDo_NoRetriesConfigured(t *testing.T) {
	calls := 0
	_, err := RetryDo(context.Background(), RetryConfig{InitialWait: time.Millisecond}, "once", func(context.Context) (string, error) {
		calls++
		return "", status.Error(codes.Unavailable, "down")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Contains(t, err.Error(), "once failed after 0 retries")
	assert.Equal(t, codes.Unavailable, status.Code(errors.Unwrap(err)))
}

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(fmt.Errorf("wrapped: %w", context.DeadlineExceeded)))
	assert.True(t, isTransient(&googleapi.Error{Code: http.StatusRequestTimeout}))
	assert.True(t, isTransient(errors.New("read: connection reset by peer")))
	assert.False(t, isTransient(errors.New("invalid argument")))
	assert.False(t, isTransient(nil))
	assert.False(t, isTransient(status.Error(codes.ResourceExhausted, "quota")))
}

func TestQuotaError(t *testing.T) {
	cause := errors.New("429 Too Many Requests")
	err := fmt.Errorf("rewrite: %w", &QuotaError{Message: "generate content", Cause: cause})

	assert.True(t, IsQuota(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "quota exceeded")
}
