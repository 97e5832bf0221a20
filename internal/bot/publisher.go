package bot

import (
	"context"
	"fmt"

	"github.com/jotabarber/barberbot/internal/messaging"
	"github.com/jotabarber/barberbot/pkg/logging"
)

// Publisher enqueues inbound messages for asynchronous processing. It
// satisfies the webhook handler's publisher dependency.
type Publisher struct {
	queue  queueClient
	logger *logging.Logger
}

// NewPublisher creates a queue-backed publisher.
func NewPublisher(queue queueClient, logger *logging.Logger) *Publisher {
	if queue == nil {
		panic("bot: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{
		queue:  queue,
		logger: logger,
	}
}

// Enqueue publishes one inbound message.
func (p *Publisher) Enqueue(ctx context.Context, msg messaging.InboundMessage) error {
	if ctx == nil {
		ctx = context.Background()
	}

	payload, body, err := encodePayload(msg)
	if err != nil {
		return err
	}

	if err := p.queue.Send(ctx, body); err != nil {
		return fmt.Errorf("bot: failed to enqueue inbound message: %w", err)
	}

	p.logger.Debug("inbound message enqueued", "job_id", payload.ID, "from", msg.From)
	return nil
}
