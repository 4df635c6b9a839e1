package retry

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
)

// Policy bounds how often an operation is retried and how long to wait
// between attempts. The same policy drives request-scoped retry loops and
// event-driven restarts (voice sessions count attempts across events).
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

func DefaultPolicy() Policy {
	return Policy{MaxAttempts: DefaultMaxAttempts, BaseDelay: DefaultBaseDelay}
}

func NewPolicy(maxAttempts int, baseDelay time.Duration) Policy {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}
	return Policy{MaxAttempts: maxAttempts, BaseDelay: baseDelay}
}

// Delay returns the wait before retrying after a failed attempt, doubling
// per attempt: base, 2*base, 4*base. Attempts are 1-based.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(math.Pow(2, float64(attempt-1))) * p.BaseDelay
}

// Exhausted reports whether another attempt is allowed after the given
// number of failures.
func (p Policy) Exhausted(failures int) bool {
	return failures >= p.MaxAttempts
}

// Do runs fn up to MaxAttempts times, sleeping Delay(attempt) between
// failures. The context cancels both the wait and further attempts.
func (p Policy) Do(ctx context.Context, op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return errors.WithStack(err)
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if attempt == p.MaxAttempts {
			break
		}

		delay := p.Delay(attempt)
		log.Warnf("%s failed (attempt %d/%d), retrying in %v: %v", op, attempt, p.MaxAttempts, delay, lastErr)

		select {
		case <-ctx.Done():
			return errors.WithStack(ctx.Err())
		case <-time.After(delay):
		}
	}
	return errors.Wrapf(lastErr, "%s failed after %d attempts", op, p.MaxAttempts)
}
