package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jotabarber/barberbot/internal/booking"
	"github.com/jotabarber/barberbot/internal/messaging"
	"github.com/jotabarber/barberbot/internal/schedule"
)

const (
	ownerHandle    = "5511988880000"
	customerHandle = "5511999990000"
)

type sentMessage struct {
	To   string
	Body string
}

type fakeMessenger struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (f *fakeMessenger) Send(_ context.Context, to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{To: to, Body: body})
	return nil
}

func (f *fakeMessenger) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

func (f *fakeMessenger) to(handle string) []sentMessage {
	var out []sentMessage
	for _, m := range f.messages() {
		if m.To == handle {
			out = append(out, m)
		}
	}
	return out
}

// Monday, so "amanhã" lands on Tuesday July 2nd.
var respNow = time.Date(2024, time.July, 1, 9, 0, 0, 0, time.UTC)

func newTestResponder(t *testing.T) (*Responder, *booking.MemoryRepository, *fakeMessenger) {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	repo := booking.NewMemoryRepository()
	svc := booking.NewService(repo, schedule.NewParser(loc), nil, nil)
	messenger := &fakeMessenger{}
	r := NewResponder(svc, messenger, ownerHandle, loc, nil, nil,
		WithClock(func() time.Time { return respNow }))
	return r, repo, messenger
}

func inbound(from, body string) messaging.InboundMessage {
	return messaging.InboundMessage{From: from, To: "business", Body: body, PushName: "João"}
}

func TestHandleGreetingSendsMainMenu(t *testing.T) {
	r, _, messenger := newTestResponder(t)

	require.NoError(t, r.Handle(context.Background(), inbound(customerHandle, "oi")))

	sent := messenger.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, customerHandle, sent[0].To)
	assert.Equal(t, replyMainMenu, sent[0].Body)
}

func TestHandleUnhandledSendsNothing(t *testing.T) {
	r, _, messenger := newTestResponder(t)

	require.NoError(t, r.Handle(context.Background(), inbound(customerHandle, "tudo bem?")))

	assert.Empty(t, messenger.messages())
}

func TestHandleBookingCreatesAndNotifiesOwner(t *testing.T) {
	r, repo, messenger := newTestResponder(t)

	require.NoError(t, r.Handle(context.Background(), inbound(customerHandle, "amanhã às 14:00")))

	own, err := repo.ListActiveByHandle(context.Background(), customerHandle)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, booking.StatusPending, own[0].Status)

	customerMsgs := messenger.to(customerHandle)
	require.Len(t, customerMsgs, 1)
	assert.Contains(t, customerMsgs[0].Body, "02/07/2024 14:00")

	ownerMsgs := messenger.to(ownerHandle)
	require.Len(t, ownerMsgs, 1)
	assert.Contains(t, ownerMsgs[0].Body, customerHandle)
	assert.Contains(t, ownerMsgs[0].Body, "confirmar "+customerHandle)
}

func TestHandleBookingParseFailure(t *testing.T) {
	r, repo, messenger := newTestResponder(t)

	require.NoError(t, r.Handle(context.Background(), inbound(customerHandle, "quinta às 99h")))

	own, err := repo.ListActiveByHandle(context.Background(), customerHandle)
	require.NoError(t, err)
	assert.Empty(t, own)

	sent := messenger.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, replyParseFailed, sent[0].Body)
}

func TestHandleBookingSuggestsAlternative(t *testing.T) {
	r, _, messenger := newTestResponder(t)

	require.NoError(t, r.Handle(context.Background(), inbound("5511911110000", "amanhã às 14:00")))
	messenger.sent = nil

	require.NoError(t, r.Handle(context.Background(), inbound(customerHandle, "amanhã às 14:30")))

	sent := messenger.to(customerHandle)
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Body, "15:00")
	// Owner is only alerted for bookings that were actually created.
	assert.Empty(t, messenger.to(ownerHandle))
}

func TestHandleOwnerConfirmNotifiesCustomer(t *testing.T) {
	r, repo, messenger := newTestResponder(t)

	require.NoError(t, r.Handle(context.Background(), inbound(customerHandle, "amanhã às 14:00")))
	messenger.sent = nil

	require.NoError(t, r.Handle(context.Background(), inbound(ownerHandle, "confirmar "+customerHandle)))

	own, err := repo.ListActiveByHandle(context.Background(), customerHandle)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, booking.StatusConfirmed, own[0].Status)

	customerMsgs := messenger.to(customerHandle)
	require.Len(t, customerMsgs, 1)
	assert.Equal(t, replyConfirmedNotice, customerMsgs[0].Body)

	ownerMsgs := messenger.to(ownerHandle)
	require.Len(t, ownerMsgs, 1)
	assert.Contains(t, ownerMsgs[0].Body, "confirmado")
}

func TestHandleOwnerConfirmUnknownHandle(t *testing.T) {
	r, _, messenger := newTestResponder(t)

	require.NoError(t, r.Handle(context.Background(), inbound(ownerHandle, "confirmar 5500000000000")))

	sent := messenger.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, ownerHandle, sent[0].To)
	assert.Equal(t, replyNoPendingForHandle, sent[0].Body)
}

func TestHandleOwnerCancelRemovesBooking(t *testing.T) {
	r, repo, messenger := newTestResponder(t)

	require.NoError(t, r.Handle(context.Background(), inbound(customerHandle, "amanhã às 14:00")))
	messenger.sent = nil

	require.NoError(t, r.Handle(context.Background(), inbound(ownerHandle, "cancelar "+customerHandle)))

	own, err := repo.ListActiveByHandle(context.Background(), customerHandle)
	require.NoError(t, err)
	assert.Empty(t, own)

	customerMsgs := messenger.to(customerHandle)
	require.Len(t, customerMsgs, 1)
	assert.Equal(t, replyCancelledNotice, customerMsgs[0].Body)
}

func TestHandleOwnerListToday(t *testing.T) {
	r, _, messenger := newTestResponder(t)

	// "15:00" today is still in the future relative to the fixed clock.
	require.NoError(t, r.Handle(context.Background(), inbound(customerHandle, "15:00")))
	messenger.sent = nil

	require.NoError(t, r.Handle(context.Background(), inbound(ownerHandle, "listar hoje")))

	sent := messenger.to(ownerHandle)
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Body, listTitleToday)
	assert.Contains(t, sent[0].Body, customerHandle)
}

func TestHandleCustomerCancelLatestPending(t *testing.T) {
	r, repo, messenger := newTestResponder(t)

	require.NoError(t, r.Handle(context.Background(), inbound(customerHandle, "amanhã às 14:00")))
	messenger.sent = nil

	require.NoError(t, r.Handle(context.Background(), inbound(customerHandle, "cancelar")))

	own, err := repo.ListActiveByHandle(context.Background(), customerHandle)
	require.NoError(t, err)
	assert.Empty(t, own)

	sent := messenger.to(customerHandle)
	require.Len(t, sent, 1)
	assert.Equal(t, replyOwnCancelled, sent[0].Body)
}

func TestHandleCustomerCancelWithoutPending(t *testing.T) {
	r, _, messenger := newTestResponder(t)

	require.NoError(t, r.Handle(context.Background(), inbound(customerHandle, "cancelar")))

	sent := messenger.to(customerHandle)
	require.Len(t, sent, 1)
	assert.Equal(t, replyNoPendingToCancel, sent[0].Body)
}

func TestHandleCustomerListOwnBookingsEmpty(t *testing.T) {
	r, _, messenger := newTestResponder(t)

	require.NoError(t, r.Handle(context.Background(), inbound(customerHandle, "2")))

	sent := messenger.to(customerHandle)
	require.Len(t, sent, 1)
	assert.Equal(t, replyNoOwnBookings, sent[0].Body)
}
