package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jotabarber/barberbot/internal/booking"
	"github.com/jotabarber/barberbot/internal/messaging"
	"github.com/jotabarber/barberbot/pkg/logging"
)

// Store is the subset of the booking repository the scheduler needs.
type Store interface {
	DueReminders(ctx context.Context, from, to time.Time) ([]booking.Booking, error)
	MarkReminderSent(ctx context.Context, id uuid.UUID) error
}

// Scheduler sends same-day reminders to customers with an active booking.
// Once per day, at the configured local hour, it walks today's bookings that
// have not been reminded yet and messages each customer.
type Scheduler struct {
	store     Store
	messenger messaging.Messenger
	hour      int
	loc       *time.Location
	logger    *logging.Logger
	now       func() time.Time
}

// NewScheduler creates a reminder scheduler firing at the given local hour.
func NewScheduler(store Store, messenger messaging.Messenger, hour int, loc *time.Location, logger *logging.Logger) *Scheduler {
	if store == nil {
		panic("reminder: store cannot be nil")
	}
	if messenger == nil {
		panic("reminder: messenger cannot be nil")
	}
	if hour < 0 || hour > 23 {
		hour = 9
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Scheduler{
		store:     store,
		messenger: messenger,
		hour:      hour,
		loc:       loc,
		logger:    logger,
		now:       time.Now,
	}
}

// Run blocks, firing ProcessDue at the configured hour every day until ctx is
// cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		next := s.nextFire(s.now().In(s.loc))
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if _, err := s.ProcessDue(ctx); err != nil {
			s.logger.Error("reminder run failed", "error", err)
		}
	}
}

// ProcessDue sends reminders for today's unreminded bookings. Returns the
// number of reminders sent. One failed send does not stop the rest; the
// failed booking is left unmarked so the next run retries it.
func (s *Scheduler) ProcessDue(ctx context.Context) (int, error) {
	now := s.now().In(s.loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	due, err := s.store.DueReminders(ctx, dayStart, dayEnd)
	if err != nil {
		return 0, fmt.Errorf("reminder: list due: %w", err)
	}
	if len(due) == 0 {
		return 0, nil
	}

	s.logger.Info("processing due reminders", "count", len(due))

	sent := 0
	for i := range due {
		b := &due[i]
		if err := s.remindOne(ctx, b); err != nil {
			s.logger.Error("failed to send reminder",
				"error", err,
				"booking_id", b.ID,
				"handle", b.CustomerHandle,
			)
			continue
		}
		sent++
	}
	return sent, nil
}

func (s *Scheduler) remindOne(ctx context.Context, b *booking.Booking) error {
	body := fmt.Sprintf("⏰ Lembrete: você tem horário marcado hoje às *%s*! 💈",
		b.ScheduledAt.In(s.loc).Format("15:04"))

	if err := s.messenger.Send(ctx, b.CustomerHandle, body); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	if err := s.store.MarkReminderSent(ctx, b.ID); err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}
	return nil
}

// nextFire returns the next occurrence of the configured hour after now.
func (s *Scheduler) nextFire(now time.Time) time.Time {
	fire := time.Date(now.Year(), now.Month(), now.Day(), s.hour, 0, 0, 0, s.loc)
	if !fire.After(now) {
		fire = fire.AddDate(0, 0, 1)
	}
	return fire
}
