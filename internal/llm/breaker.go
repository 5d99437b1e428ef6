package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	"resume-insight/internal/shared/telemetry"
)

type breakingClient struct {
	base    Client
	breaker *gobreaker.CircuitBreaker[Response]
}

// NewBreaking wraps a client with a circuit breaker so a flapping provider
// fails fast instead of burning the retry budget on every request. Only
// transport-level failures count against the breaker; ProviderError replies
// are request problems and do not trip it.
func NewBreaking(base Client) Client {
	if base == nil {
		return nil
	}
	settings := gobreaker.Settings{
		Name:        "llm",
		MaxRequests: 2,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			return !isTransient(err) && !errors.Is(err, ErrProviderUnavailable)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			telemetry.Warn("llm.breaker_state", map[string]any{
				"name": name,
				"from": from.String(),
				"to":   to.String(),
			})
		},
	}
	return &breakingClient{
		base:    base,
		breaker: gobreaker.NewCircuitBreaker[Response](settings),
	}
}

func (b *breakingClient) Complete(ctx context.Context, prompt string, opts Options) (Response, error) {
	resp, err := b.breaker.Execute(func() (Response, error) {
		return b.base.Complete(ctx, prompt, opts)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return Response{}, fmt.Errorf("%w: circuit open", ErrProviderUnavailable)
	}
	return resp, err
}
