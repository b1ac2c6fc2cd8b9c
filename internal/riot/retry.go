package riot

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultCooldown is how long to wait after a 429 before retrying.
const DefaultCooldown = 5 * time.Second

// SleepFunc blocks for d or until ctx is done, whichever comes first.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the wall-clock SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
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

// Backoff retries calls that fail with ErrRateLimited after a fixed cooldown.
// Any other error is returned immediately.
type Backoff struct {
	Cooldown time.Duration
	// MaxRetries caps the number of retries; 0 retries forever.
	MaxRetries int
	Sleep      SleepFunc
	// OnWait is called before each cooldown with the 1-based retry number.
	OnWait func(retry int, err error)
}

// Do calls fn until it succeeds, fails with a non rate-limit error, the retry
// ceiling is hit, or ctx is cancelled.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	sleep := b.Sleep
	if sleep == nil {
		sleep = Sleep
	}
	cooldown := b.Cooldown
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}

	for retry := 1; ; retry++ {
		err := fn()
		if err == nil || !errors.Is(err, ErrRateLimited) {
			return err
		}
		if b.MaxRetries > 0 && retry > b.MaxRetries {
			return fmt.Errorf("gave up after %d retries: %w", b.MaxRetries, err)
		}
		if b.OnWait != nil {
			b.OnWait(retry, err)
		}
		if serr := sleep(ctx, cooldown); serr != nil {
			return serr
		}
	}
}
