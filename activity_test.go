package accounts_test

import (
	"testing"
	"time"

	accounts "github.com/klsrv/go-accounts"
	"github.com/stretchr/testify/assert"
)

const inactiveDays = 182

func profileActiveAt(last *time.Time) *accounts.Profile {
	return &accounts.Profile{LastActivityAt: last}
}

func TestActivityEngineIsActiveAt(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	engine := accounts.NewActivityEngine(inactiveDays)

	ts := func(t time.Time) *time.Time { return &t }

	tests := []struct {
		name     string
		last     *time.Time
		expected bool
	}{
		{
			name:     "No recorded activity",
			last:     nil,
			expected: false,
		},
		{
			name:     "Activity just now",
			last:     ts(now),
			expected: true,
		},
		{
			name:     "One day ago",
			last:     ts(now.Add(-24 * time.Hour)),
			expected: true,
		},
		{
			name:     "One hour inside the threshold",
			last:     ts(now.Add(-inactiveDays*24*time.Hour + time.Hour)),
			expected: true,
		},
		{
			name:     "Exactly the threshold",
			last:     ts(now.Add(-inactiveDays * 24 * time.Hour)),
			expected: false,
		},
		{
			name:     "Well past the threshold",
			last:     ts(now.Add(-400 * 24 * time.Hour)),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := profileActiveAt(tt.last)
			assert.Equal(t, tt.expected, engine.IsActiveAt(p, now))
		})
	}
}

func TestActivityEngineIsActiveNilProfile(t *testing.T) {
	engine := accounts.NewActivityEngine(inactiveDays)
	assert.False(t, engine.IsActiveAt(nil, time.Now()))
}

// The classification is evaluated against the reference instant, so the
// same profile flips to inactive as the clock crosses the day boundary.
func TestActivityEngineFlipsAcrossBoundary(t *testing.T) {
	last := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	p := profileActiveAt(&last)

	engine := accounts.NewActivityEngine(30)

	justInside := last.Add(30*24*time.Hour - time.Minute)
	assert.True(t, engine.IsActiveAt(p, justInside))

	atBoundary := last.Add(30 * 24 * time.Hour)
	assert.False(t, engine.IsActiveAt(p, atBoundary))
}

func TestActivityEngineUsesInjectedClock(t *testing.T) {
	last := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	frozen := last.Add(10 * 24 * time.Hour)

	engine := accounts.NewActivityEngine(30).
		WithClock(accounts.ClockFunc(func() time.Time { return frozen }))

	assert.True(t, engine.IsActive(profileActiveAt(&last)))
	assert.Equal(t, 30, engine.InactiveDays())
}

func TestActivityEnginePartitionAt(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	engine := accounts.NewActivityEngine(inactiveDays)

	ts := func(t time.Time) *time.Time { return &t }

	profiles := []*accounts.Profile{
		profileActiveAt(ts(now.Add(-time.Hour))),
		profileActiveAt(nil),
		profileActiveAt(ts(now.Add(-inactiveDays * 24 * time.Hour))),
		profileActiveAt(ts(now.Add(-24 * time.Hour))),
		profileActiveAt(ts(now.Add(-500 * 24 * time.Hour))),
	}

	active, notActive := engine.PartitionAt(profiles, now)

	assert.Len(t, active, 2)
	assert.Len(t, notActive, 3)
	assert.Equal(t, len(profiles), len(active)+len(notActive))

	// every profile lands on exactly one side, consistent with IsActiveAt
	for _, p := range active {
		assert.True(t, engine.IsActiveAt(p, now))
	}
	for _, p := range notActive {
		assert.False(t, engine.IsActiveAt(p, now))
	}
}

func TestActivityEngineWindow(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	engine := accounts.NewActivityEngine(10)

	start, end := engine.Window(now)
	assert.Equal(t, now.Add(-10*24*time.Hour), start)
	assert.Equal(t, now, end)
}
