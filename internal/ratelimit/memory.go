package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Record is one counter of the in-process table.
type Record struct {
	SubjectKey    string
	Count         int
	WindowResetAt time.Time
}

// MemoryLimiter keeps counters in process memory. State is lost on restart
// and is not shared between instances.
type MemoryLimiter struct {
	mu       sync.Mutex
	records  map[string]*Record
	duration time.Duration
	now      func() time.Time
}

// NewMemoryLimiter creates a limiter whose windows last duration. A nil now
// uses time.Now.
func NewMemoryLimiter(duration time.Duration, now func() time.Time) *MemoryLimiter {
	if duration <= 0 {
		duration = DefaultWindowDuration
	}
	if now == nil {
		now = time.Now
	}
	return &MemoryLimiter{
		records:  make(map[string]*Record),
		duration: duration,
		now:      now,
	}
}

func (l *MemoryLimiter) Admit(_ context.Context, subjectID string, window Window, limit int) (bool, error) {
	if limit <= 0 {
		return false, ErrInvalidLimit
	}

	key := SubjectKey(subjectID, window)

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	record, exists := l.records[key]
	if !exists || now.After(record.WindowResetAt) {
		l.records[key] = &Record{
			SubjectKey:    key,
			Count:         1,
			WindowResetAt: now.Add(l.duration),
		}
		return true, nil
	}

	if record.Count >= limit {
		return false, nil
	}

	record.Count++
	return true, nil
}

func (l *MemoryLimiter) Reset(_ context.Context, subjectID string, window Window) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.records, SubjectKey(subjectID, window))
	return nil
}

func (l *MemoryLimiter) RetryAfter(_ context.Context, subjectID string, window Window) (time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	record, ok := l.records[SubjectKey(subjectID, window)]
	if !ok {
		return 0, nil
	}
	if remaining := record.WindowResetAt.Sub(l.now()); remaining > 0 {
		return remaining, nil
	}
	return 0, nil
}

// Snapshot returns a copy of the record for (subjectID, window).
func (l *MemoryLimiter) Snapshot(subjectID string, window Window) (Record, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	record, ok := l.records[SubjectKey(subjectID, window)]
	if !ok {
		return Record{}, false
	}
	return *record, true
}

// Sweep drops expired records and returns how many were removed.
func (l *MemoryLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, record := range l.records {
		if now.After(record.WindowResetAt) {
			delete(l.records, key)
			removed++
		}
	}
	return removed
}

// RunJanitor sweeps every interval until ctx is done.
func (l *MemoryLimiter) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := l.Sweep(); removed > 0 {
				logrus.WithField("removed", removed).Debug("ratelimit_sweep")
			}
		}
	}
}

var (
	_ Limiter       = (*MemoryLimiter)(nil)
	_ RetryReporter = (*MemoryLimiter)(nil)
)
