package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no booking matches a lookup.
var ErrNotFound = errors.New("booking: not found")

// ErrSlotTaken is returned when an insert collides with an active booking
// already occupying the hour bucket.
var ErrSlotTaken = errors.New("booking: slot already taken")

// Repository is the store surface consumed by the scheduling core. Lists are
// ordered by scheduled_at ascending; "first" lookups return the earliest
// scheduled match and "latest" the most recent.
type Repository interface {
	Insert(ctx context.Context, draft Draft) (*Booking, error)

	ListActiveBetween(ctx context.Context, from, to time.Time) ([]Booking, error)
	ListActiveFrom(ctx context.Context, from time.Time) ([]Booking, error)
	ListActiveByHandle(ctx context.Context, handle string) ([]Booking, error)

	FirstPendingByHandle(ctx context.Context, handle string) (*Booking, error)
	FirstActiveByHandle(ctx context.Context, handle string) (*Booking, error)
	LatestPendingByHandle(ctx context.Context, handle string) (*Booking, error)
	FindActiveByShortID(ctx context.Context, shortID string) (*Booking, error)

	AnyActiveInWindow(ctx context.Context, from, to time.Time) (bool, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	Delete(ctx context.Context, id uuid.UUID) error

	DueReminders(ctx context.Context, from, to time.Time) ([]Booking, error)
	MarkReminderSent(ctx context.Context, id uuid.UUID) error
}
