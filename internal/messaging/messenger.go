package messaging

import "context"

// InboundMessage is a single text message received from the WhatsApp channel.
type InboundMessage struct {
	// From is the sender's WhatsApp handle (phone number), the stable
	// customer key.
	From string `json:"from"`
	// To is the business number that received the message.
	To string `json:"to"`
	// Body is the raw message text.
	Body string `json:"body"`
	// PushName is the sender's display name as reported by the channel.
	PushName string `json:"push_name"`
	// ProviderMessageID identifies the message at the provider.
	ProviderMessageID string `json:"provider_message_id"`
}

// Messenger delivers outbound text messages. Replies and out-of-band
// notifications (owner alerts, confirmation notices) go through the same
// interface.
type Messenger interface {
	Send(ctx context.Context, to, body string) error
}
