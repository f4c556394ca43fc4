package core

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/saturnines/blogql/pkg/errors"
)

// RetryPolicy describes the wait between direct attempts:
// min(InitialDelay * Multiplier^attempt, MaxDelay), without jitter.
type RetryPolicy struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultRetryPolicy waits 1s, 2s, 4s, then 5s for every later retry.
var DefaultRetryPolicy = RetryPolicy{
	InitialDelay: time.Second,
	MaxDelay:     5 * time.Second,
	Multiplier:   2,
}

func (p RetryPolicy) newBackOff() *backoff.ExponentialBackOff {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     p.InitialDelay,
		RandomizationFactor: 0,
		Multiplier:          p.Multiplier,
		MaxInterval:         p.MaxDelay,
	}
	b.Reset()
	return b
}

// Delays returns the waits taken before each of n retries.
func (p RetryPolicy) Delays(n int) []time.Duration {
	b := p.newBackOff()
	out := make([]time.Duration, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, p.next(b))
	}
	return out
}

func (p RetryPolicy) next(b *backoff.ExponentialBackOff) time.Duration {
	d := b.NextBackOff()
	if d > p.MaxDelay || d < 0 {
		d = p.MaxDelay
	}
	return d
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Retryable reports whether a failed direct attempt may be repeated.
// Authentication, GraphQL, API and not-found failures are answers from the
// server and are never retried. HTTP failures are retried only for 5xx and
// 429.
func Retryable(err error) bool {
	if err == nil || isContextErr(err) {
		return false
	}
	switch errors.KindOf(err) {
	case errors.KindAuthentication, errors.KindGraphQL, errors.KindAPI, errors.KindNotFound,
		errors.KindValidation, errors.KindConfiguration:
		return false
	case errors.KindHTTP:
		return transientStatus(err)
	}
	return true
}

func transientStatus(err error) bool {
	var e *errors.Error
	if !errors.As(err, &e) {
		return true
	}
	return e.Status >= 500 || e.Status == http.StatusTooManyRequests
}

// networkMarkers identify transport failures reported as plain text.
var networkMarkers = []string{
	"fetch",
	"NetworkError",
	"Network request failed",
	"ERR_NETWORK",
	"CORS",
	"connection refused",
}

// NetworkShaped reports whether err looks like a connectivity or
// cross-origin failure, which the relay may get around.
func NetworkShaped(err error) bool {
	if err == nil {
		return false
	}
	switch errors.KindOf(err) {
	case errors.KindNetwork:
		return true
	case errors.KindUnknown:
		msg := err.Error()
		for _, m := range networkMarkers {
			if strings.Contains(msg, m) {
				return true
			}
		}
	}
	return false
}

// isContextErr reports whether err is a bare context error. Classified
// errors that merely wrap a deadline, such as client timeouts, are not.
func isContextErr(err error) bool {
	if errors.KindOf(err) != errors.KindUnknown {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
