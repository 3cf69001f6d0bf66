// Package ratelimit bounds how often verification codes can be issued for a
// single account, using a rolling window counted from persisted records.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/lbriand/otpgate/internal/pkg/clock"
)

// RecentCounter counts records created for a user since a given instant.
type RecentCounter interface {
	CountRecent(ctx context.Context, userID int64, since time.Time) (int64, error)
}

// Limiter permits issuance while the trailing-window count stays under a
// fixed cap. The count-then-issue sequence is not atomic with respect to the
// cap: concurrent issuance for the same account can exceed it by one. That is
// accepted for an abuse-mitigation control.
type Limiter struct {
	counter RecentCounter
	window  time.Duration
	cap     int64
	clock   clock.Clocker
}

// New builds a Limiter over the given counter.
func New(counter RecentCounter, window time.Duration, cap int64, clk clock.Clocker) *Limiter {
	return &Limiter{
		counter: counter,
		window:  window,
		cap:     cap,
		clock:   clk,
	}
}

// CanIssue reports whether a new code may be issued for the user. A storage
// failure denies issuance and returns the error so the caller can log it;
// the limiter never fails open.
func (l *Limiter) CanIssue(ctx context.Context, userID int64) (bool, error) {
	since := l.clock.Now().Add(-l.window)

	n, err := l.counter.CountRecent(ctx, userID, since)
	if err != nil {
		return false, fmt.Errorf("ratelimit: count recent: %w", err)
	}

	return n < l.cap, nil
}

// Window returns the rolling window duration.
func (l *Limiter) Window() time.Duration {
	return l.window
}
