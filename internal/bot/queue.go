package bot

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jotabarber/barberbot/internal/messaging"
)

type queueClient interface {
	Send(ctx context.Context, body string) error
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]queueMessage, error)
	Delete(ctx context.Context, receiptHandle string) error
}

type queueMessage struct {
	ID            string
	Body          string
	ReceiptHandle string
}

type queuePayload struct {
	ID      string                   `json:"id"`
	Message messaging.InboundMessage `json:"message"`
}

func encodePayload(msg messaging.InboundMessage) (queuePayload, string, error) {
	payload := queuePayload{
		ID:      uuid.NewString(),
		Message: msg,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return queuePayload{}, "", fmt.Errorf("bot: failed to encode payload: %w", err)
	}

	return payload, string(body), nil
}
