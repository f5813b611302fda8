package entity

import (
	"testing"
	"time"
)

func TestApplyGenerationRollsOver(t *testing.T) {
	tests := []struct {
		name  string
		last  time.Time
		now   time.Time
		today int
		month int
	}{
		{
			name:  "same day",
			last:  time.Date(2024, 3, 31, 9, 0, 0, 0, time.UTC),
			now:   time.Date(2024, 3, 31, 23, 0, 0, 0, time.UTC),
			today: 6,
			month: 11,
		},
		{
			name:  "next day same month",
			last:  time.Date(2024, 3, 30, 12, 0, 0, 0, time.UTC),
			now:   time.Date(2024, 3, 31, 1, 0, 0, 0, time.UTC),
			today: 1,
			month: 11,
		},
		{
			name:  "next month",
			last:  time.Date(2024, 3, 31, 23, 0, 0, 0, time.UTC),
			now:   time.Date(2024, 4, 1, 1, 0, 0, 0, time.UTC),
			today: 1,
			month: 1,
		},
		{
			name:  "zero reset time",
			now:   time.Date(2024, 4, 1, 1, 0, 0, 0, time.UTC),
			today: 1,
			month: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := DbUser{GenerationCountToday: 5, GenerationCountMonth: 10, LastGenerationReset: tt.last}
			user.ApplyGeneration(tt.now)
			if user.GenerationCountToday != tt.today || user.GenerationCountMonth != tt.month {
				t.Fatalf("expected %d/%d, got %d/%d", tt.today, tt.month, user.GenerationCountToday, user.GenerationCountMonth)
			}
			if !user.LastGenerationReset.Equal(tt.now) {
				t.Fatalf("expected reset time %v, got %v", tt.now, user.LastGenerationReset)
			}
		})
	}
}

func TestResetCounters(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	user := DbUser{GenerationCountToday: 3, GenerationCountMonth: 9, LastGenerationReset: now}
	if err := user.ResetCounters(LimitWindowDaily, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.GenerationCountToday != 0 || user.GenerationCountMonth != 9 {
		t.Fatalf("daily reset should keep monthly count, got %+v", user)
	}

	// a stale monthly count must not survive a daily reset in a new month
	stale := DbUser{GenerationCountToday: 3, GenerationCountMonth: 9, LastGenerationReset: now.AddDate(0, -1, 0)}
	if err := stale.ResetCounters(LimitWindowDaily, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stale.GenerationCountMonth != 0 {
		t.Fatalf("expected stale monthly count to roll over, got %d", stale.GenerationCountMonth)
	}

	if err := user.ResetCounters("weekly", now); err == nil {
		t.Fatal("expected invalid window error")
	}
}
