package bot

import "strings"

// IntentKind is the classified purpose of an inbound message.
type IntentKind int

const (
	IntentUnhandled IntentKind = iota

	// Owner-only intents.
	IntentShowAdminMenu
	IntentListToday
	IntentListUpcoming
	IntentConfirmBooking
	IntentCancelBookingByHandle

	// Customer intents.
	IntentShowMainMenu
	IntentShowBookingPrompt
	IntentListOwnBookings
	IntentHandoffToHuman
	IntentCancelOwnLatestPending
	IntentAttemptBooking
)

// String names the intent for logs and metrics.
func (k IntentKind) String() string {
	switch k {
	case IntentShowAdminMenu:
		return "show_admin_menu"
	case IntentListToday:
		return "list_today"
	case IntentListUpcoming:
		return "list_upcoming"
	case IntentConfirmBooking:
		return "confirm_booking"
	case IntentCancelBookingByHandle:
		return "cancel_booking_by_handle"
	case IntentShowMainMenu:
		return "show_main_menu"
	case IntentShowBookingPrompt:
		return "show_booking_prompt"
	case IntentListOwnBookings:
		return "list_own_bookings"
	case IntentHandoffToHuman:
		return "handoff_to_human"
	case IntentCancelOwnLatestPending:
		return "cancel_own_latest_pending"
	case IntentAttemptBooking:
		return "attempt_booking"
	default:
		return "unhandled"
	}
}

// Intent pairs the kind with its argument: the admin target token for
// confirm/cancel, or the raw message text for booking attempts.
type Intent struct {
	Kind IntentKind
	Arg  string
}

var greetings = []string{"oi", "menu", "olá"}

// Classify maps (role, text) to an Intent. The owner branch is evaluated
// first; when nothing there matches, the owner falls through to the customer
// branch like any other sender.
func Classify(raw string, isOwner bool) Intent {
	text := strings.ToLower(strings.TrimSpace(raw))

	if isOwner {
		switch {
		case text == "admin":
			return Intent{Kind: IntentShowAdminMenu}
		case strings.HasPrefix(text, "listar hoje"):
			return Intent{Kind: IntentListToday}
		case strings.HasPrefix(text, "listar futuros"):
			return Intent{Kind: IntentListUpcoming}
		case strings.HasPrefix(text, "listar"):
			return Intent{Kind: IntentListUpcoming}
		}
		if token, ok := commandToken(text, "confirmar"); ok {
			return Intent{Kind: IntentConfirmBooking, Arg: token}
		}
		if token, ok := commandToken(text, "cancelar"); ok {
			return Intent{Kind: IntentCancelBookingByHandle, Arg: token}
		}
	}

	for _, g := range greetings {
		if text == g {
			return Intent{Kind: IntentShowMainMenu}
		}
	}
	switch text {
	case "1":
		return Intent{Kind: IntentShowBookingPrompt}
	case "2":
		return Intent{Kind: IntentListOwnBookings}
	case "3":
		return Intent{Kind: IntentHandoffToHuman}
	case "cancelar":
		return Intent{Kind: IntentCancelOwnLatestPending}
	}

	if strings.Contains(text, "às") || strings.Contains(text, ":") || strings.Contains(text, "h") {
		// Keep the original text: the parser is case-insensitive but the
		// phrase is echoed back to the owner verbatim.
		return Intent{Kind: IntentAttemptBooking, Arg: raw}
	}

	return Intent{Kind: IntentUnhandled}
}

// commandToken extracts the argument of "<command> <token>". Returns false
// when the command has no argument, letting bare "cancelar" fall through to
// the customer branch.
func commandToken(text, command string) (string, bool) {
	if !strings.HasPrefix(text, command+" ") {
		return "", false
	}
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return "", false
	}
	return fields[1], true
}
