// Package retry runs browser operations under a classified exponential
// backoff policy. Only failures that look transient are retried;
// authentication, structural, and policy failures surface immediately
// because repeating them cannot help.
package retry

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/sumukeio/niche-miner/models"
)

// Policy describes a backoff schedule. Attempt n (0-based retry count)
// sleeps BaseDelay * BackoffFactor^n before running again.
type Policy struct {
	// MaxRetries is the number of re-attempts after the first try.
	MaxRetries int

	BaseDelay     time.Duration
	BackoffFactor float64

	// Label appears in log lines so overlapping runs can be told apart.
	Label string
}

// Mining is the schedule for result-page operations: patient, because a
// marketplace page that timed out usually loads on the next try.
func Mining() Policy {
	return Policy{MaxRetries: 5, BaseDelay: 2 * time.Second, BackoffFactor: 1.5, Label: "mining"}
}

// Validation is the schedule for ad-presence checks: fewer, steeper
// retries, since a search page that fails twice tends to keep failing.
func Validation() Policy {
	return Policy{MaxRetries: 3, BaseDelay: 1 * time.Second, BackoffFactor: 2, Label: "validation"}
}

// retryableFragments are matched case-insensitively against the error
// text of failures that carry no class. They cover the infrastructure
// flakes a controlled browser produces.
var retryableFragments = []string{
	"timeout",
	"network",
	"connection",
	"navigation",
	"page load",
	"load state",
}

// Retryable reports whether err is worth another attempt. Classified
// errors are decided by class; raw errors by message inspection.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	var me *models.MineError
	if errors.As(err, &me) {
		return me.Class == models.ClassTransient
	}
	s := strings.ToLower(err.Error())
	for _, frag := range retryableFragments {
		if strings.Contains(s, frag) {
			return true
		}
	}
	return false
}

// Executor runs operations under a Policy. The zero sleep uses real
// time; tests substitute a recorder.
type Executor struct {
	policy Policy
	sleep  func(ctx context.Context, d time.Duration)
}

// New returns an executor for the given policy.
func New(p Policy) *Executor {
	return &Executor{policy: p, sleep: sleepCtx}
}

// Do runs op until it succeeds, exhausts the retry budget, or fails in
// a non-retryable way. The returned error is the last one observed.
func (e *Executor) Do(ctx context.Context, name string, op func(ctx context.Context) error) error {
	var lastErr error
	delay := e.policy.BaseDelay

	for attempt := 0; attempt <= e.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			slog.Warn("retrying operation",
				"policy", e.policy.Label,
				"op", name,
				"attempt", attempt,
				"max", e.policy.MaxRetries,
				"delay", delay,
				"error", lastErr,
			)
			e.sleep(ctx, delay)
			delay = time.Duration(float64(delay) * e.policy.BackoffFactor)
		}
		if err := ctx.Err(); err != nil {
			return models.Categorize(err, name+" canceled")
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if !Retryable(lastErr) {
			slog.Debug("non-retryable failure, giving up",
				"policy", e.policy.Label, "op", name, "error", lastErr)
			return lastErr
		}
	}

	slog.Error("retry budget exhausted",
		"policy", e.policy.Label, "op", name, "error", lastErr)
	return lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
