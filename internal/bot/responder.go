package bot

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jotabarber/barberbot/internal/booking"
	"github.com/jotabarber/barberbot/internal/messaging"
	"github.com/jotabarber/barberbot/internal/observability/metrics"
	"github.com/jotabarber/barberbot/pkg/logging"
)

var botTracer = otel.Tracer("barberbot.internal.bot")

// Responder routes inbound messages to booking operations and sends the
// replies. One responder handles both roles; the owner number unlocks the
// admin command set.
type Responder struct {
	svc       *booking.Service
	messenger messaging.Messenger
	owner     string
	loc       *time.Location
	metrics   *metrics.BotMetrics
	logger    *logging.Logger
	now       func() time.Time
}

// ResponderOption customizes responder behavior.
type ResponderOption func(*Responder)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) ResponderOption {
	return func(r *Responder) {
		r.now = now
	}
}

// NewResponder builds the message responder. owner is the owner's WhatsApp
// handle; loc is the shop timezone used for all display formatting.
func NewResponder(svc *booking.Service, messenger messaging.Messenger, owner string, loc *time.Location, m *metrics.BotMetrics, logger *logging.Logger, opts ...ResponderOption) *Responder {
	if svc == nil {
		panic("bot: booking service required")
	}
	if messenger == nil {
		panic("bot: messenger required")
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}
	r := &Responder{
		svc:       svc,
		messenger: messenger,
		owner:     owner,
		loc:       loc,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle processes one inbound message end to end. Unhandled messages
// produce no reply. Storage failures reply with a generic error so the
// sender is never left without an answer.
func (r *Responder) Handle(ctx context.Context, msg messaging.InboundMessage) error {
	ctx, span := botTracer.Start(ctx, "bot.handle")
	defer span.End()

	isOwner := r.owner != "" && msg.From == r.owner
	intent := Classify(msg.Body, isOwner)
	span.SetAttributes(
		attribute.String("barberbot.intent", intent.Kind.String()),
		attribute.Bool("barberbot.is_owner", isOwner),
	)
	r.metrics.ObserveIntent(intent.Kind.String())

	if intent.Kind == IntentUnhandled {
		return nil
	}

	reply, err := r.execute(ctx, msg, intent)
	if err != nil {
		span.RecordError(err)
		r.logger.Error("intent execution failed",
			"error", err,
			"intent", intent.Kind.String(),
			"from", msg.From,
		)
		reply = replyInternalError
	}
	if reply == "" {
		return nil
	}
	return r.send(ctx, msg.From, reply)
}

func (r *Responder) execute(ctx context.Context, msg messaging.InboundMessage, intent Intent) (string, error) {
	now := r.now()
	switch intent.Kind {
	case IntentShowAdminMenu:
		return replyAdminMenu, nil

	case IntentListToday:
		bookings, err := r.svc.ListToday(ctx, now.In(r.loc))
		if err != nil {
			return "", err
		}
		return renderAdminList(listTitleToday, bookings, r.loc), nil

	case IntentListUpcoming:
		bookings, err := r.svc.ListUpcoming(ctx, now.In(r.loc))
		if err != nil {
			return "", err
		}
		return renderAdminList(listTitleUpcoming, bookings, r.loc), nil

	case IntentConfirmBooking:
		b, err := r.svc.Confirm(ctx, intent.Arg)
		if errors.Is(err, booking.ErrNotFound) {
			return replyNoPendingForHandle, nil
		}
		if err != nil {
			return "", err
		}
		r.notify(ctx, b.CustomerHandle, replyConfirmedNotice)
		return renderAdminConfirmed(b), nil

	case IntentCancelBookingByHandle:
		b, err := r.svc.CancelByHandle(ctx, intent.Arg)
		if errors.Is(err, booking.ErrNotFound) {
			return replyNoActiveForHandle, nil
		}
		if err != nil {
			return "", err
		}
		r.notify(ctx, b.CustomerHandle, replyCancelledNotice)
		return renderAdminCancelled(b), nil

	case IntentShowMainMenu:
		return replyMainMenu, nil

	case IntentShowBookingPrompt:
		return replyBookingPrompt, nil

	case IntentListOwnBookings:
		bookings, err := r.svc.ListForCustomer(ctx, msg.From)
		if err != nil {
			return "", err
		}
		return renderOwnList(bookings, r.loc), nil

	case IntentHandoffToHuman:
		return replyHandoff, nil

	case IntentCancelOwnLatestPending:
		_, err := r.svc.CancelOwnLatestPending(ctx, msg.From)
		if errors.Is(err, booking.ErrNotFound) {
			return replyNoPendingToCancel, nil
		}
		if err != nil {
			return "", err
		}
		return replyOwnCancelled, nil

	case IntentAttemptBooking:
		return r.attemptBooking(ctx, msg, intent.Arg, now)
	}
	return "", nil
}

func (r *Responder) attemptBooking(ctx context.Context, msg messaging.InboundMessage, phrase string, now time.Time) (string, error) {
	res, err := r.svc.CreateBooking(ctx, msg.From, msg.PushName, phrase, now.In(r.loc))
	if err != nil {
		return "", err
	}
	switch res.Outcome {
	case booking.CreateParseFailed:
		return replyParseFailed, nil
	case booking.CreateSlotUnavailable:
		return renderSlotUnavailable(res.Requested, res.Suggested, r.loc), nil
	}

	r.metrics.ObserveBookingCreated()
	if r.owner != "" {
		r.notify(ctx, r.owner, renderOwnerNewBookingAlert(res.Booking, phrase, r.loc))
	}
	return renderPendingCreated(res.Booking.ScheduledAt, r.loc), nil
}

// NotifyOnline tells the owner the bot is up. Called once at startup; a send
// failure is not fatal.
func (r *Responder) NotifyOnline(ctx context.Context) {
	if r.owner == "" {
		return
	}
	r.notify(ctx, r.owner, replyOnline)
}

// notify sends an out-of-band message; failures are logged, not propagated,
// so the primary reply still goes out.
func (r *Responder) notify(ctx context.Context, to, body string) {
	if err := r.send(ctx, to, body); err != nil {
		r.logger.Error("notification failed", "error", err, "to", to)
	}
}

func (r *Responder) send(ctx context.Context, to, body string) error {
	if err := r.messenger.Send(ctx, to, body); err != nil {
		r.metrics.ObserveReply("failed")
		return err
	}
	r.metrics.ObserveReply("sent")
	return nil
}
