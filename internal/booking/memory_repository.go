package booking

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory Repository used for tests and for running
// the bot without a database.
type MemoryRepository struct {
	mu       sync.RWMutex
	bookings map[uuid.UUID]*Booking
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{bookings: make(map[uuid.UUID]*Booking)}
}

var _ Repository = (*MemoryRepository)(nil)

// Insert stores a new pending booking.
func (r *MemoryRepository) Insert(_ context.Context, draft Draft) (*Booking, error) {
	b := &Booking{
		ID:             uuid.New(),
		CustomerName:   draft.CustomerName,
		CustomerHandle: draft.CustomerHandle,
		ScheduledAt:    draft.ScheduledAt,
		Status:         StatusPending,
		CreatedAt:      time.Now().UTC(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.bookings {
		if existing.Status.active() && sameHourBucket(existing.ScheduledAt, draft.ScheduledAt) {
			return nil, ErrSlotTaken
		}
	}
	r.bookings[b.ID] = b
	copied := *b
	return &copied, nil
}

func (r *MemoryRepository) ListActiveBetween(_ context.Context, from, to time.Time) ([]Booking, error) {
	return r.collect(func(b *Booking) bool {
		return b.Status.active() && !b.ScheduledAt.Before(from) && b.ScheduledAt.Before(to)
	}), nil
}

func (r *MemoryRepository) ListActiveFrom(_ context.Context, from time.Time) ([]Booking, error) {
	return r.collect(func(b *Booking) bool {
		return b.Status.active() && !b.ScheduledAt.Before(from)
	}), nil
}

func (r *MemoryRepository) ListActiveByHandle(_ context.Context, handle string) ([]Booking, error) {
	return r.collect(func(b *Booking) bool {
		return b.Status.active() && b.CustomerHandle == handle
	}), nil
}

func (r *MemoryRepository) FirstPendingByHandle(_ context.Context, handle string) (*Booking, error) {
	return r.pick(func(b *Booking) bool {
		return b.Status == StatusPending && b.CustomerHandle == handle
	}, false)
}

func (r *MemoryRepository) FirstActiveByHandle(_ context.Context, handle string) (*Booking, error) {
	return r.pick(func(b *Booking) bool {
		return b.Status.active() && b.CustomerHandle == handle
	}, false)
}

func (r *MemoryRepository) LatestPendingByHandle(_ context.Context, handle string) (*Booking, error) {
	return r.pick(func(b *Booking) bool {
		return b.Status == StatusPending && b.CustomerHandle == handle
	}, true)
}

func (r *MemoryRepository) FindActiveByShortID(_ context.Context, shortID string) (*Booking, error) {
	shortID = strings.ToLower(shortID)
	return r.pick(func(b *Booking) bool {
		return b.Status.active() && strings.HasPrefix(b.ID.String(), shortID)
	}, false)
}

func (r *MemoryRepository) AnyActiveInWindow(_ context.Context, from, to time.Time) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.bookings {
		if b.Status.active() && !b.ScheduledAt.Before(from) && b.ScheduledAt.Before(to) {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepository) UpdateStatus(_ context.Context, id uuid.UUID, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return ErrNotFound
	}
	b.Status = status
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[id]; !ok {
		return ErrNotFound
	}
	delete(r.bookings, id)
	return nil
}

func (r *MemoryRepository) DueReminders(_ context.Context, from, to time.Time) ([]Booking, error) {
	return r.collect(func(b *Booking) bool {
		return b.Status == StatusConfirmed && !b.ReminderSent &&
			!b.ScheduledAt.Before(from) && b.ScheduledAt.Before(to)
	}), nil
}

func (r *MemoryRepository) MarkReminderSent(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return ErrNotFound
	}
	b.ReminderSent = true
	return nil
}

func (r *MemoryRepository) collect(keep func(*Booking) bool) []Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Booking
	for _, b := range r.bookings {
		if keep(b) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out
}

func (r *MemoryRepository) pick(keep func(*Booking) bool, latest bool) (*Booking, error) {
	matches := r.collect(keep)
	if len(matches) == 0 {
		return nil, ErrNotFound
	}
	if latest {
		return &matches[len(matches)-1], nil
	}
	return &matches[0], nil
}

func (s Status) active() bool {
	return s == StatusPending || s == StatusConfirmed
}

func sameHourBucket(a, b time.Time) bool {
	return a.Truncate(time.Hour).Equal(b.Truncate(time.Hour))
}
