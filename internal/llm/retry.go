package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"resume-insight/internal/shared/telemetry"
)

const retryBaseDelay = 300 * time.Millisecond

type retryingClient struct {
	base       Client
	maxRetries int
}

// NewRetrying wraps a client with transient-failure retries. maxRetries is
// the number of additional attempts after the first call; backoff doubles
// per attempt. Provider-level (non-2xx) errors are never retried. When the
// budget is exhausted the error wraps ErrProviderUnavailable.
func NewRetrying(base Client, maxRetries int) Client {
	if base == nil {
		return nil
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &retryingClient{base: base, maxRetries: maxRetries}
}

func (r *retryingClient) Complete(ctx context.Context, prompt string, opts Options) (Response, error) {
	delay := retryBaseDelay
	var lastErr error

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			telemetry.Warn("llm.retry", map[string]any{
				"attempt":    attempt,
				"backoff_ms": delay.Milliseconds(),
				"error":      lastErr.Error(),
			})
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return Response{}, ctx.Err()
			case <-timer.C:
			}
			delay *= 2
		}

		resp, err := r.base.Complete(ctx, prompt, opts)
		if err == nil {
			return resp, nil
		}
		if !isTransient(err) {
			return Response{}, err
		}
		lastErr = err
	}

	return Response{}, fmt.Errorf("%w: %d attempts failed: %v", ErrProviderUnavailable, r.maxRetries+1, lastErr)
}

// isTransient reports whether an error is a transport-level failure worth
// retrying. Provider replies (ProviderError) and caller cancellation are not.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	var perr *ProviderError
	if errors.As(err, &perr) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection closed"),
		strings.Contains(msg, "broken pipe"),
		strings.Contains(msg, "tls handshake"),
		strings.Contains(msg, "eof"):
		return true
	}
	return false
}
