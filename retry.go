package tdasync

import (
	"context"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds the retries of a fetch.
type RetryPolicy struct {
	MaxAttempts     int           // total attempts, including the first one.
	InitialInterval time.Duration // delay before the first retry.
	MaxInterval     time.Duration // cap on the delay between two attempts.
}

// DefaultRetryPolicy is used for zero fields of a RetryPolicy.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts:     5,
	InitialInterval: 500 * time.Millisecond,
	MaxInterval:     30 * time.Second,
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultRetryPolicy.MaxAttempts
	}
	if p.InitialInterval <= 0 {
		p.InitialInterval = DefaultRetryPolicy.InitialInterval
	}
	if p.MaxInterval <= 0 {
		p.MaxInterval = DefaultRetryPolicy.MaxInterval
	}
	return p
}

// Retry returns a Fetcher that retries f with exponential backoff on
// retryable errors (see IsRetryable). Other errors are returned at once.
func Retry(f Fetcher, policy RetryPolicy) Fetcher {
	return &retryFetcher{base: f, policy: policy.withDefaults()}
}

type retryFetcher struct {
	base   Fetcher
	policy RetryPolicy
}

func (r *retryFetcher) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.policy.InitialInterval
	b.MaxInterval = r.policy.MaxInterval
	b.MaxElapsedTime = 0 // bounded by attempts only.
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(r.policy.MaxAttempts-1)), ctx)
}

func (r *retryFetcher) FetchTransactions(ctx context.Context, q Query, w Window) (Batch, error) {
	var batch Batch
	op := func() error {
		var err error
		batch, err = r.base.FetchTransactions(ctx, q, w)
		if err != nil && !IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, d time.Duration) {
		log.Printf("fetching %s failed, retrying in %v: %v", w, d, err)
	}
	if err := backoff.RetryNotify(op, r.backOff(ctx), notify); err != nil {
		return nil, err
	}
	return batch, nil
}
