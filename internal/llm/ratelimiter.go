package llm

import (
	"context"
	"sync"
	"time"
)

// DelayGatedProvider wraps a Provider with a single-threaded cooperative
// queue: callers serialize on mu, and each Complete waits out whatever is
// left of delay since the previous call returned. Unlike a token bucket,
// this never permits bursts — every pair of consecutive calls is at least
// delay apart, regardless of how many goroutines are calling concurrently.
type DelayGatedProvider struct {
	provider Provider
	delay    time.Duration

	mu       sync.Mutex
	lastCall time.Time
}

// NewDelayGatedProvider wraps provider so every Complete call across the
// whole process is separated from the last by at least delay. delay <= 0
// disables gating entirely.
func NewDelayGatedProvider(provider Provider, delay time.Duration) Provider {
	return &DelayGatedProvider{provider: provider, delay: delay}
}

func (r *DelayGatedProvider) Name() string {
	return r.provider.Name()
}

func (r *DelayGatedProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	resp, err := r.provider.Complete(ctx, req)
	r.lastCall = time.Now()
	return resp, err
}

// wait sleeps out whatever is left of delay since lastCall. Complete holds
// mu across wait and the provider call, so calls run one at a time.
func (r *DelayGatedProvider) wait(ctx context.Context) error {
	if r.delay > 0 && !r.lastCall.IsZero() {
		if remaining := r.delay - time.Since(r.lastCall); remaining > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(remaining):
			}
		}
	}
	return nil
}
