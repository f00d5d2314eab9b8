package accounts_test

import (
	"testing"
	"time"

	accounts "github.com/klsrv/go-accounts"
	"github.com/stretchr/testify/assert"
)

func TestDaysBetween(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		earlier  time.Time
		expected int
	}{
		{
			name:     "Same instant",
			earlier:  now,
			expected: 0,
		},
		{
			name:     "Under a day",
			earlier:  now.Add(-23 * time.Hour),
			expected: 0,
		},
		{
			name:     "Exactly one day",
			earlier:  now.Add(-24 * time.Hour),
			expected: 1,
		},
		{
			name:     "Partial days truncate",
			earlier:  now.Add(-(24*7 + 13) * time.Hour),
			expected: 7,
		},
		{
			name:     "Future timestamp clamps to zero",
			earlier:  now.Add(48 * time.Hour),
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, accounts.DaysBetween(now, tt.earlier))
		})
	}
}

func TestClockFunc(t *testing.T) {
	ref := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	clock := accounts.ClockFunc(func() time.Time { return ref })
	assert.Equal(t, ref, clock.Now())
}
