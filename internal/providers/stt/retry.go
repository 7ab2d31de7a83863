package stt

import (
	"context"
	"errors"
	"strings"
	"time"
)

const (
	// MaxAttempts is the total attempt budget per segment.
	MaxAttempts = 3

	// retryDelay is the fixed wait between ordinary retries. Rate
	// limits instead back off exponentially.
	retryDelay = time.Second
)

// Retrying wraps a Provider with the per-segment retry policy. Retries
// are local to one segment and never cross segment boundaries; each
// segment gets its own fresh attempt budget.
type Retrying struct {
	Provider Provider
	Attempts int

	// sleep is swapped out in tests
	sleep func(ctx context.Context, d time.Duration) error
}

func NewRetrying(p Provider) *Retrying {
	return &Retrying{Provider: p, Attempts: MaxAttempts, sleep: sleepCtx}
}

func (r *Retrying) Close() error { return r.Provider.Close() }

// Transcribe runs up to Attempts attempts and returns the trimmed text
// of the first success. An empty string after trimming is success: the
// service heard no speech. The error returned after exhaustion is the
// last classified failure.
func (r *Retrying) Transcribe(ctx context.Context, wav []byte) (string, error) {
	attempts := r.Attempts
	if attempts <= 0 {
		attempts = MaxAttempts
	}
	sleep := r.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var last error
	for attempt := 1; attempt <= attempts; attempt++ {
		text, err := r.Provider.Transcribe(ctx, wav)
		if err == nil {
			return strings.TrimSpace(text), nil
		}
		last = err

		if attempt == attempts {
			break
		}

		delay := retryDelay
		var f *Failure
		if errors.As(err, &f) && f.Kind == FailureRateLimited {
			// 2^attempt seconds: 2s after the first attempt, 4s
			// after the second
			delay = time.Duration(1<<attempt) * time.Second
		}
		if err := sleep(ctx, delay); err != nil {
			return "", &Failure{Kind: FailureTransport, Message: "canceled while waiting to retry", Err: err}
		}
	}

	var f *Failure
	if !errors.As(last, &f) {
		last = &Failure{Kind: FailureTransport, Err: last}
	}
	return "", last
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
