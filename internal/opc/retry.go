package opc

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// RetryPolicy is a fixed attempt budget with a fixed inter-attempt delay.
// No exponential backoff, no jitter: the remote system is a local or
// industrial network peer, not a public service. The goal is to absorb
// brief unavailability, not to load-shed.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

// DefaultRetryPolicy matches the engine's defaults: 3 attempts, 2s apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, Delay: 2 * time.Second}
}

// RetryNotify is called once per failed attempt before the retry sleep.
type RetryNotify func(ref NodeRef, attempt int, err error)

type retryingBrowser struct {
	inner  Browser
	policy RetryPolicy
	notify RetryNotify
	sleep  func(ctx context.Context, d time.Duration) error
}

// WithRetry wraps a Browser so every Browse call is attempted up to
// policy.Attempts times. Persistent failure is converted into a single
// typed *RemoteCallError; callers never see the intermediate failures
// except through notify.
func WithRetry(b Browser, policy RetryPolicy, notify RetryNotify) Browser {
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}
	if policy.Delay < 0 {
		policy.Delay = 0
	}
	return &retryingBrowser{
		inner:  b,
		policy: policy,
		notify: notify,
		sleep:  sleepCtx,
	}
}

func (r *retryingBrowser) Browse(ctx context.Context, ref NodeRef) ([]BrowseItem, error) {
	var lastErr error
	for attempt := 1; attempt <= r.policy.Attempts; attempt++ {
		items, err := r.inner.Browse(ctx, ref)
		if err == nil {
			return items, nil
		}
		lastErr = err

		logrus.Debugf("browse %s attempt %d/%d failed: %v", ref, attempt, r.policy.Attempts, err)
		if r.notify != nil {
			r.notify(ref, attempt, err)
		}

		if attempt == r.policy.Attempts {
			break
		}
		if err := r.sleep(ctx, r.policy.Delay); err != nil {
			lastErr = err
			break
		}
	}
	return nil, &RemoteCallError{Ref: ref, Attempts: r.policy.Attempts, Err: lastErr}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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
