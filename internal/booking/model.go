package booking

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusNoShow    Status = "no_show"
)

// ActiveStatuses are the states that occupy a slot and show up in listings.
var ActiveStatuses = []Status{StatusPending, StatusConfirmed}

// Booking is a single requested or confirmed appointment. Cancellation
// deletes the row; callers must not expect cancelled history to be queryable.
type Booking struct {
	ID             uuid.UUID `json:"id"`
	CustomerName   string    `json:"customer_name"`
	CustomerHandle string    `json:"customer_handle"`
	ScheduledAt    time.Time `json:"scheduled_at"`
	Status         Status    `json:"status"`
	ReminderSent   bool      `json:"reminder_sent"`
	CreatedAt      time.Time `json:"created_at"`
}

// ShortID is the 4-character booking identifier shown in admin listings.
func (b *Booking) ShortID() string {
	s := b.ID.String()
	if len(s) < 4 {
		return s
	}
	return s[:4]
}

// Draft holds the fields a caller supplies when creating a booking.
type Draft struct {
	CustomerName   string
	CustomerHandle string
	ScheduledAt    time.Time
}
