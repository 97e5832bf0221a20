package messaging

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jotabarber/barberbot/internal/observability/metrics"
	"github.com/jotabarber/barberbot/pkg/logging"
)

// InboundPublisher hands parsed inbound messages to the processing pipeline.
type InboundPublisher interface {
	Enqueue(ctx context.Context, msg InboundMessage) error
}

// WebhookHandler receives WhatsApp Cloud API webhooks: GET for endpoint
// verification, POST for inbound message notifications.
type WebhookHandler struct {
	verifyToken string
	appSecret   string
	publisher   InboundPublisher
	metrics     *metrics.BotMetrics
	logger      *logging.Logger
}

// NewWebhookHandler creates a webhook handler. appSecret may be empty to
// skip signature validation (local development only).
func NewWebhookHandler(verifyToken, appSecret string, publisher InboundPublisher, m *metrics.BotMetrics, logger *logging.Logger) *WebhookHandler {
	if publisher == nil {
		panic("messaging: publisher cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &WebhookHandler{
		verifyToken: verifyToken,
		appSecret:   appSecret,
		publisher:   publisher,
		metrics:     m,
		logger:      logger,
	}
}

// Verify handles the GET subscription handshake.
func (h *WebhookHandler) Verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("hub.mode") == "subscribe" && q.Get("hub.verify_token") == h.verifyToken {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(q.Get("hub.challenge")))
		return
	}
	h.logger.Warn("webhook verification failed", "mode", q.Get("hub.mode"))
	http.Error(w, "Forbidden", http.StatusForbidden)
}

// Receive handles POSTed message notifications. Events are enqueued and the
// request is acknowledged immediately; processing happens on the worker.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if h.appSecret != "" {
		if !ValidateSignature(body, r.Header.Get("X-Hub-Signature-256"), h.appSecret) {
			h.logger.Warn("invalid webhook signature")
			h.metrics.ObserveInbound("message", "unauthorized")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
	}

	events, err := ParseWebhookPayload(body)
	if err != nil {
		h.logger.Error("failed to parse webhook payload", "error", err)
		h.metrics.ObserveInbound("message", "bad_payload")
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	for _, ev := range events {
		if err := h.publisher.Enqueue(r.Context(), ev); err != nil {
			h.logger.Error("failed to enqueue inbound message", "error", err, "from", ev.From)
			h.metrics.ObserveInbound("message", "enqueue_failed")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		h.metrics.ObserveInbound("message", "accepted")
	}

	h.metrics.ObserveWebhookLatency("message", time.Since(start).Seconds())
	w.WriteHeader(http.StatusOK)
}

// ValidateSignature checks the X-Hub-Signature-256 header against the HMAC of
// the raw body.
func ValidateSignature(body []byte, header, appSecret string) bool {
	signature := strings.TrimPrefix(header, "sha256=")
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}

// webhookPayload mirrors the slice of the Cloud API notification format the
// bot consumes: text messages plus the sender's profile name.
type webhookPayload struct {
	Entry []struct {
		Changes []struct {
			Field string `json:"field"`
			Value struct {
				Metadata struct {
					DisplayPhoneNumber string `json:"display_phone_number"`
				} `json:"metadata"`
				Contacts []struct {
					WaID    string `json:"wa_id"`
					Profile struct {
						Name string `json:"name"`
					} `json:"profile"`
				} `json:"contacts"`
				Messages []struct {
					ID   string `json:"id"`
					From string `json:"from"`
					Type string `json:"type"`
					Text struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// ParseWebhookPayload extracts inbound text messages from a notification
// body. Non-text messages and status updates are skipped.
func ParseWebhookPayload(body []byte) ([]InboundMessage, error) {
	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("messaging: decode webhook payload: %w", err)
	}

	var out []InboundMessage
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}
			names := make(map[string]string, len(change.Value.Contacts))
			for _, c := range change.Value.Contacts {
				names[c.WaID] = c.Profile.Name
			}
			for _, m := range change.Value.Messages {
				if m.Type != "text" || m.From == "" || m.Text.Body == "" {
					continue
				}
				out = append(out, InboundMessage{
					From:              m.From,
					To:                change.Value.Metadata.DisplayPhoneNumber,
					Body:              m.Text.Body,
					PushName:          names[m.From],
					ProviderMessageID: m.ID,
				})
			}
		}
	}
	return out, nil
}
