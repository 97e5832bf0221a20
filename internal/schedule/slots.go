package schedule

import (
	"context"
	"time"
)

// slotLength is the service duration: one customer per hour, one chair.
const slotLength = time.Hour

// ConflictFinder reports whether any active booking starts inside
// [from, to). Implemented by the booking store.
type ConflictFinder interface {
	AnyActiveInWindow(ctx context.Context, from, to time.Time) (bool, error)
}

// NextAvailable returns the earliest instant at or after requested whose
// 1-hour window holds no active booking. Past candidates are first snapped
// forward to the next half-hour or whole-hour boundary.
//
// The scan advances one whole hour per occupied window, so it terminates as
// long as the active booking set is finite. The result is free at call time
// only; the caller is responsible for reserving the slot before persisting.
func NextAvailable(ctx context.Context, requested, now time.Time, finder ConflictFinder) (time.Time, error) {
	candidate := requested
	if !candidate.After(now) {
		if candidate.Minute() < 30 {
			candidate = atMinute(candidate, 30)
		} else {
			candidate = atMinute(candidate, 0).Add(time.Hour)
		}
	}

	for {
		windowEnd := candidate.Add(slotLength - time.Minute)
		busy, err := finder.AnyActiveInWindow(ctx, candidate, windowEnd)
		if err != nil {
			return time.Time{}, err
		}
		if !busy {
			return candidate, nil
		}
		// Occupied: move to the next whole hour.
		candidate = atMinute(candidate, 0).Add(time.Hour)
	}
}

// HourBucket truncates an instant to its whole-hour slot anchor.
func HourBucket(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

func atMinute(t time.Time, minute int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), minute, 0, 0, t.Location())
}
