package accounts

import "time"

// ActivityEngine classifies profiles as active or inactive from their most
// recent activity event. Status is always computed against the reference
// instant, never stored, so the classification can flip across a day
// boundary as time advances.
type ActivityEngine struct {
	inactiveDays int
	clock        Clock
}

// NewActivityEngine creates an engine with the configured inactivity
// threshold in whole days.
func NewActivityEngine(inactiveDays int) *ActivityEngine {
	return &ActivityEngine{
		inactiveDays: inactiveDays,
		clock:        SystemClock(),
	}
}

// WithClock overrides the clock used when no explicit reference instant is
// given.
func (e *ActivityEngine) WithClock(clock Clock) *ActivityEngine {
	if clock != nil {
		e.clock = clock
	}
	return e
}

// InactiveDays returns the configured threshold.
func (e *ActivityEngine) InactiveDays() int {
	return e.inactiveDays
}

// IsActiveAt reports whether the profile counts as active at the given
// instant: strictly fewer than the threshold's whole days have elapsed
// since its last activity. A profile with no recorded activity is never
// active.
func (e *ActivityEngine) IsActiveAt(profile *Profile, now time.Time) bool {
	if profile == nil || profile.LastActivityAt == nil {
		return false
	}
	return DaysBetween(now, *profile.LastActivityAt) < e.inactiveDays
}

// IsActive evaluates IsActiveAt against the engine's clock.
func (e *ActivityEngine) IsActive(profile *Profile) bool {
	return e.IsActiveAt(profile, e.clock.Now())
}

// PartitionAt splits profiles into (active, notActive) at the given
// instant. Every profile lands on exactly one side, consistent with
// IsActiveAt for the same instant.
func (e *ActivityEngine) PartitionAt(profiles []*Profile, now time.Time) (active, notActive []*Profile) {
	for _, p := range profiles {
		if e.IsActiveAt(p, now) {
			active = append(active, p)
		} else {
			notActive = append(notActive, p)
		}
	}
	return active, notActive
}

// Partition evaluates PartitionAt against the engine's clock.
func (e *ActivityEngine) Partition(profiles []*Profile) (active, notActive []*Profile) {
	return e.PartitionAt(profiles, e.clock.Now())
}

// Window returns the activity window [now − threshold, now] used by the
// repository-side active/not-active queries.
func (e *ActivityEngine) Window(now time.Time) (start, end time.Time) {
	return now.Add(-time.Duration(e.inactiveDays) * 24 * time.Hour), now
}
