package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/VaitaR/chainscan/pkg/common/types"
)

const (
	DefaultMaxAttempts     = 4
	DefaultInitialInterval = 500 * time.Millisecond
)

// Outcome tells the policy whether a failed attempt is worth repeating.
type Outcome int

const (
	Retry Outcome = iota
	Fail
)

// Classifier maps an attempt error to an Outcome.
type Classifier func(error) Outcome

// DefaultClassifier retries transport failures and rate-limit signals
// (HTTP 429 and 5xx surface as those kinds); everything else fails fast.
func DefaultClassifier(err error) Outcome {
	switch types.KindOf(err) {
	case types.KindTransport, types.KindRateLimited:
		return Retry
	default:
		return Fail
	}
}

// Policy retries an operation with exponential backoff plus jitter.
// The zero value is usable and applies the defaults above.
type Policy struct {
	InitialInterval time.Duration
	MaxElapsedTime  time.Duration
	MaxAttempts     uint64
	OnRetry         func(err error, next time.Duration)
}

// Execute runs fn, retrying per classify until success, a Fail outcome, the
// attempts cap, or context cancellation.
func (p Policy) Execute(ctx context.Context, fn func() error, classify Classifier) error {
	if classify == nil {
		classify = DefaultClassifier
	}
	initial := p.InitialInterval
	if initial <= 0 {
		initial = DefaultInitialInterval
	}
	attempts := p.MaxAttempts
	if attempts == 0 {
		attempts = DefaultMaxAttempts
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initial
	if p.MaxElapsedTime > 0 {
		bo.MaxElapsedTime = p.MaxElapsedTime
	}

	op := func() error {
		err := fn()
		if err == nil {
			return nil
		}
		if classify(err) == Fail {
			return backoff.Permanent(err)
		}
		return err
	}

	wrapped := backoff.WithContext(backoff.WithMaxRetries(bo, attempts-1), ctx)
	err := backoff.RetryNotify(op, wrapped, func(err error, next time.Duration) {
		if p.OnRetry != nil {
			p.OnRetry(err, next)
		}
	})
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return perm.Err
	}
	return err
}
