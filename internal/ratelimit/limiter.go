// Package ratelimit admits or rejects generation attempts per subject and
// window.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

type Window string

const (
	Daily   Window = "daily"
	Monthly Window = "monthly"
)

// DefaultWindowDuration applies to both windows. Monthly is a rolling 24h
// window, not a calendar month.
const DefaultWindowDuration = 24 * time.Hour

var ErrInvalidLimit = errors.New("ratelimit: limit must be positive")

// Limiter admits a request when the subject's count for window is below limit.
// A rejected call does not change state.
type Limiter interface {
	Admit(ctx context.Context, subjectID string, window Window, limit int) (bool, error)
	Reset(ctx context.Context, subjectID string, window Window) error
}

// SubjectKey identifies one (subject, window) counter.
func SubjectKey(subjectID string, window Window) string {
	return subjectID + ":" + string(window)
}

// RetryReporter reports how long until a (subject, window) counter resets.
// Zero means the next Admit starts a fresh window.
type RetryReporter interface {
	RetryAfter(ctx context.Context, subjectID string, window Window) (time.Duration, error)
}
