package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jotabarber/barberbot/internal/schedule"
	"github.com/jotabarber/barberbot/pkg/logging"
)

var bookingTracer = otel.Tracer("barberbot.internal.booking")

// CreateOutcome tags the result of a CreateBooking call.
type CreateOutcome int

const (
	// CreateParseFailed: the phrase carried no recognizable date/time.
	CreateParseFailed CreateOutcome = iota
	// CreateSlotUnavailable: the phrase parsed but the slot is taken; no
	// record was created and Suggested carries the alternative.
	CreateSlotUnavailable
	// CreateCreated: a pending booking was stored.
	CreateCreated
)

// CreateResult is the variant result of CreateBooking.
type CreateResult struct {
	Outcome   CreateOutcome
	Booking   *Booking
	Requested time.Time
	Suggested time.Time
}

// SlotReserver serializes the check-then-create sequence per hour bucket.
// A nil reserver keeps the original best-effort behavior.
type SlotReserver interface {
	Reserve(ctx context.Context, slot time.Time) (bool, error)
	Release(ctx context.Context, slot time.Time)
}

// Service orchestrates phrase parsing, slot resolution and the booking store.
type Service struct {
	repo   Repository
	parser *schedule.Parser
	locker SlotReserver
	logger *logging.Logger
}

// NewService constructs a booking service. locker may be nil.
func NewService(repo Repository, parser *schedule.Parser, locker SlotReserver, logger *logging.Logger) *Service {
	if repo == nil {
		panic("booking: repository required")
	}
	if parser == nil {
		panic("booking: parser required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, parser: parser, locker: locker, logger: logger}
}

// CreateBooking parses the requested phrase, resolves the next free slot and,
// when the request matches its resolution, stores a pending booking.
func (s *Service) CreateBooking(ctx context.Context, handle, name, phrase string, now time.Time) (CreateResult, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.create")
	defer span.End()
	span.SetAttributes(attribute.String("barberbot.customer_handle", handle))

	requested, err := s.parser.Parse(phrase, now)
	if err != nil {
		if errors.Is(err, schedule.ErrNotUnderstood) {
			return CreateResult{Outcome: CreateParseFailed}, nil
		}
		span.RecordError(err)
		return CreateResult{}, err
	}

	resolved, err := schedule.NextAvailable(ctx, requested, now, s.repo)
	if err != nil {
		span.RecordError(err)
		return CreateResult{}, fmt.Errorf("booking: resolve slot: %w", err)
	}
	if !resolved.Equal(requested) {
		return CreateResult{Outcome: CreateSlotUnavailable, Requested: requested, Suggested: resolved}, nil
	}

	if s.locker != nil {
		ok, err := s.locker.Reserve(ctx, requested)
		if err != nil {
			span.RecordError(err)
			return CreateResult{}, err
		}
		if !ok {
			return s.suggestAfter(ctx, requested, now)
		}
	}

	b, err := s.repo.Insert(ctx, Draft{CustomerName: name, CustomerHandle: handle, ScheduledAt: requested})
	if err != nil {
		if s.locker != nil {
			s.locker.Release(ctx, requested)
		}
		if errors.Is(err, ErrSlotTaken) {
			// Lost the race to a concurrent insert.
			return s.suggestAfter(ctx, requested, now)
		}
		span.RecordError(err)
		return CreateResult{}, err
	}

	s.logger.Info("booking created",
		"booking_id", b.ID,
		"customer_handle", handle,
		"scheduled_at", b.ScheduledAt,
	)
	return CreateResult{Outcome: CreateCreated, Booking: b, Requested: requested}, nil
}

// suggestAfter builds a SlotUnavailable result whose suggestion starts at the
// hour after the contested slot.
func (s *Service) suggestAfter(ctx context.Context, requested, now time.Time) (CreateResult, error) {
	next := schedule.HourBucket(requested).Add(time.Hour)
	suggested, err := schedule.NextAvailable(ctx, next, now, s.repo)
	if err != nil {
		return CreateResult{}, fmt.Errorf("booking: resolve fallback slot: %w", err)
	}
	return CreateResult{Outcome: CreateSlotUnavailable, Requested: requested, Suggested: suggested}, nil
}

// ListToday returns today's active bookings in scheduled order.
func (s *Service) ListToday(ctx context.Context, now time.Time) ([]Booking, error) {
	start := startOfDay(now)
	return s.repo.ListActiveBetween(ctx, start, start.AddDate(0, 0, 1))
}

// ListUpcoming returns active bookings from the start of today onward.
func (s *Service) ListUpcoming(ctx context.Context, now time.Time) ([]Booking, error) {
	return s.repo.ListActiveFrom(ctx, startOfDay(now))
}

// ListForCustomer returns the customer's active bookings in scheduled order.
func (s *Service) ListForCustomer(ctx context.Context, handle string) ([]Booking, error) {
	return s.repo.ListActiveByHandle(ctx, handle)
}

// Confirm marks the earliest pending booking for the given admin token as
// confirmed. The token is a full customer handle or the short booking id
// shown in listings.
func (s *Service) Confirm(ctx context.Context, token string) (*Booking, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.confirm")
	defer span.End()

	b, err := s.resolveAdminTarget(ctx, token, true)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, b.ID, StatusConfirmed); err != nil {
		span.RecordError(err)
		return nil, err
	}
	b.Status = StatusConfirmed
	s.logger.Info("booking confirmed", "booking_id", b.ID, "customer_handle", b.CustomerHandle)
	return b, nil
}

// CancelByHandle deletes the earliest active booking for the given admin
// token. The record is removed, not archived.
func (s *Service) CancelByHandle(ctx context.Context, token string) (*Booking, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.cancel_by_handle")
	defer span.End()

	b, err := s.resolveAdminTarget(ctx, token, false)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, b.ID); err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.logger.Info("booking cancelled by admin", "booking_id", b.ID, "customer_handle", b.CustomerHandle)
	return b, nil
}

// CancelOwnLatestPending deletes the customer's most recently scheduled
// pending booking.
func (s *Service) CancelOwnLatestPending(ctx context.Context, handle string) (*Booking, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.cancel_own")
	defer span.End()

	b, err := s.repo.LatestPendingByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, b.ID); err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.logger.Info("booking cancelled by customer", "booking_id", b.ID, "customer_handle", handle)
	return b, nil
}

// resolveAdminTarget looks the token up first as a full handle, then as a
// short booking id prefix. Listings truncate ids to four characters, so both
// spellings of an admin command must resolve.
func (s *Service) resolveAdminTarget(ctx context.Context, token string, pendingOnly bool) (*Booking, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	var (
		b   *Booking
		err error
	)
	if pendingOnly {
		b, err = s.repo.FirstPendingByHandle(ctx, token)
	} else {
		b, err = s.repo.FirstActiveByHandle(ctx, token)
	}
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	b, err = s.repo.FindActiveByShortID(ctx, token)
	if err != nil {
		return nil, err
	}
	if pendingOnly && b.Status != StatusPending {
		return nil, ErrNotFound
	}
	return b, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
