package orchestrator

import (
	"context"
	"time"

	"mediagen/internal/domain"
)

// RetryPolicy retries side-effect-free provider calls that failed before any
// response arrived. Delay grows linearly: attempt × BaseDelay.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
	Sleep     func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy is three attempts at 500ms steps.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, BaseDelay: 500 * time.Millisecond}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// withRetry calls fn until it succeeds, fails with a non-transient error or
// the policy runs out of attempts.
func withRetry[T any](ctx context.Context, p RetryPolicy, fn func(context.Context) (T, error)) (T, error) {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	var (
		out T
		err error
	)
	for attempt := 1; attempt <= attempts; attempt++ {
		out, err = fn(ctx)
		if err == nil || !domain.IsTransient(err) || attempt == attempts {
			return out, err
		}
		if serr := sleep(ctx, time.Duration(attempt)*p.BaseDelay); serr != nil {
			return out, err
		}
	}
	return out, err
}
