package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyOwnerCommands(t *testing.T) {
	cases := []struct {
		name string
		text string
		want Intent
	}{
		{"admin menu", "admin", Intent{Kind: IntentShowAdminMenu}},
		{"admin menu trimmed", "  ADMIN  ", Intent{Kind: IntentShowAdminMenu}},
		{"list today", "listar hoje", Intent{Kind: IntentListToday}},
		{"list upcoming", "listar futuros", Intent{Kind: IntentListUpcoming}},
		{"bare list defaults to upcoming", "listar", Intent{Kind: IntentListUpcoming}},
		{"confirm with handle", "confirmar 5511999990000", Intent{Kind: IntentConfirmBooking, Arg: "5511999990000"}},
		{"confirm with short id", "Confirmar a1b2", Intent{Kind: IntentConfirmBooking, Arg: "a1b2"}},
		{"cancel with handle", "cancelar 5511999990000", Intent{Kind: IntentCancelBookingByHandle, Arg: "5511999990000"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.text, true))
		})
	}
}

func TestClassifyOwnerBareCancelFallsThrough(t *testing.T) {
	got := Classify("cancelar", true)
	assert.Equal(t, IntentCancelOwnLatestPending, got.Kind)
}

func TestClassifyOwnerCommandsIgnoredForCustomers(t *testing.T) {
	assert.Equal(t, IntentUnhandled, Classify("admin", false).Kind)
	assert.Equal(t, IntentUnhandled, Classify("confirmar 5511999990000", false).Kind)
	// "listar hoje" contains no time token so it stays unhandled too.
	assert.Equal(t, IntentUnhandled, Classify("listar futuros", false).Kind)
}

func TestClassifyCustomerMenu(t *testing.T) {
	cases := []struct {
		name string
		text string
		want IntentKind
	}{
		{"oi", "oi", IntentShowMainMenu},
		{"menu", "menu", IntentShowMainMenu},
		{"ola accented", "Olá", IntentShowMainMenu},
		{"option 1", "1", IntentShowBookingPrompt},
		{"option 2", "2", IntentListOwnBookings},
		{"option 3", "3", IntentHandoffToHuman},
		{"cancel own", "cancelar", IntentCancelOwnLatestPending},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.text, false).Kind)
		})
	}
}

func TestClassifyBookingAttempt(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"tomorrow with time", "amanhã às 14:00"},
		{"bare time colon", "15:30"},
		{"bare time h", "14h"},
		{"weekday with time", "sexta 10h30"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.text, false)
			assert.Equal(t, IntentAttemptBooking, got.Kind)
			assert.Equal(t, tc.text, got.Arg, "original text preserved for the parser")
		})
	}
}

func TestClassifyUnhandled(t *testing.T) {
	for _, text := range []string{"", "tudo bem?", "4", "obrigado"} {
		assert.Equal(t, IntentUnhandled, Classify(text, false).Kind, "text %q", text)
	}
}
