package schedule

import (
	"context"
	"testing"
	"time"
)

type stubFinder struct {
	booked  []time.Time
	queries int
	err     error
}

func (s *stubFinder) AnyActiveInWindow(_ context.Context, from, to time.Time) (bool, error) {
	s.queries++
	if s.err != nil {
		return false, s.err
	}
	for _, b := range s.booked {
		if !b.Before(from) && b.Before(to) {
			return true, nil
		}
	}
	return false, nil
}

func TestNextAvailableReturnsFreeSlotUnchanged(t *testing.T) {
	now := time.Date(2024, time.July, 1, 9, 0, 0, 0, time.UTC)
	requested := time.Date(2024, time.July, 1, 14, 0, 0, 0, time.UTC)
	finder := &stubFinder{}

	got, err := NextAvailable(context.Background(), requested, now, finder)
	if err != nil {
		t.Fatalf("NextAvailable returned error: %v", err)
	}
	if !got.Equal(requested) {
		t.Fatalf("got %s, want unchanged %s", got, requested)
	}
	if finder.queries != 1 {
		t.Fatalf("expected a single window query, got %d", finder.queries)
	}
}

func TestNextAvailableSkipsOccupiedWindows(t *testing.T) {
	now := time.Date(2024, time.July, 1, 9, 0, 0, 0, time.UTC)
	requested := time.Date(2024, time.July, 1, 10, 30, 0, 0, time.UTC)
	finder := &stubFinder{booked: []time.Time{
		time.Date(2024, time.July, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2024, time.July, 1, 11, 0, 0, 0, time.UTC),
	}}

	got, err := NextAvailable(context.Background(), requested, now, finder)
	if err != nil {
		t.Fatalf("NextAvailable returned error: %v", err)
	}
	// 10:30 collides with the 11:00 booking, 11:00 is taken, 12:00 is free.
	want := time.Date(2024, time.July, 1, 12, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestNextAvailableSnapsPastRequestForward(t *testing.T) {
	now := time.Date(2024, time.July, 1, 14, 10, 0, 0, time.UTC)
	finder := &stubFinder{}

	// Minute under 30 snaps to :30 of the same hour.
	got, err := NextAvailable(context.Background(), now.Add(-2*time.Hour), now, finder)
	if err != nil {
		t.Fatalf("NextAvailable returned error: %v", err)
	}
	want := time.Date(2024, time.July, 1, 12, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %s, want %s", got, want)
	}

	// Minute 30 or later snaps to the next whole hour.
	past := time.Date(2024, time.July, 1, 12, 45, 0, 0, time.UTC)
	got, err = NextAvailable(context.Background(), past, now, finder)
	if err != nil {
		t.Fatalf("NextAvailable returned error: %v", err)
	}
	want = time.Date(2024, time.July, 1, 13, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestNextAvailablePropagatesStoreErrors(t *testing.T) {
	now := time.Date(2024, time.July, 1, 9, 0, 0, 0, time.UTC)
	requested := now.Add(2 * time.Hour)
	finder := &stubFinder{err: context.DeadlineExceeded}

	if _, err := NextAvailable(context.Background(), requested, now, finder); err == nil {
		t.Fatalf("expected store error to propagate")
	}
}

func TestHourBucket(t *testing.T) {
	at := time.Date(2024, time.July, 1, 10, 30, 12, 99, time.UTC)
	want := time.Date(2024, time.July, 1, 10, 0, 0, 0, time.UTC)
	if got := HourBucket(at); !got.Equal(want) {
		t.Fatalf("got %s, want %s", got, want)
	}
}
