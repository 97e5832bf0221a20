package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestBotMetricsRegisterAndCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBotMetrics(reg)

	m.ObserveInbound("message", "accepted")
	m.ObserveIntent("attempt_booking")
	m.ObserveReply("sent")
	m.ObserveBookingCreated()
	m.ObserveWebhookLatency("message", 0.02)

	if got := testutil.ToFloat64(m.inboundTotal.WithLabelValues("message", "accepted")); got != 1 {
		t.Fatalf("inbound counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.bookingsCreated); got != 1 {
		t.Fatalf("bookings created counter = %v, want 1", got)
	}
}

func TestBotMetricsNilReceiverIsSafe(t *testing.T) {
	var m *BotMetrics
	m.ObserveInbound("message", "accepted")
	m.ObserveIntent("unhandled")
	m.ObserveReply("failed")
	m.ObserveBookingCreated()
	m.ObserveWebhookLatency("message", 0.01)
}
