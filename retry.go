package aptnotice

import (
	"context"
	"math/rand/v2"
	"time"
)

// RetryPolicy retries an operation with exponential backoff and jitter.
// The delay before retry n (0-indexed) is BaseDelay*2^n plus a random
// duration in [0, Jitter), unless Hint supplies a provider-requested delay.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	BaseDelay time.Duration
	Jitter    time.Duration

	// Retryable classifies errors. Errors it rejects are returned at once.
	Retryable func(error) bool

	// Hint extracts a provider-supplied retry delay from an error.
	Hint func(error) (time.Duration, bool)

	// OnRetry is called before each wait.
	OnRetry func(attempt int, delay time.Duration, err error)

	// Sleep waits for d. Defaults to a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// QuotaRetryPolicy retries quota errors three times in total with delays of
// about 2s and 4s plus up to 1s of jitter.
func QuotaRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		Jitter:      time.Second,
		Retryable:   IsQuotaExceeded,
	}
}

// Do calls fn until it succeeds, returns a non-retryable error, or the
// attempt budget is spent. The last error is returned.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := max(p.MaxAttempts, 1)

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		if attempt == attempts-1 {
			break
		}

		delay := p.Delay(attempt, err)
		if p.OnRetry != nil {
			p.OnRetry(attempt+1, delay, err)
		}
		if serr := p.sleep(ctx, delay); serr != nil {
			return serr
		}
	}
	return err
}

// Delay returns the wait before the retry following attempt.
func (p RetryPolicy) Delay(attempt int, err error) time.Duration {
	if p.Hint != nil {
		if d, ok := p.Hint(err); ok {
			return d
		}
	}
	d := p.BaseDelay << uint(attempt)
	if p.Jitter > 0 {
		d += time.Duration(rand.Int64N(int64(p.Jitter)))
	}
	return d
}

func (p RetryPolicy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
