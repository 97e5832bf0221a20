package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jotabarber/barberbot/pkg/logging"
)

var cloudAPITracer = otel.Tracer("barberbot.internal.messaging.cloudapi")

const defaultGraphBaseURL = "https://graph.facebook.com/v21.0"

// CloudAPISender posts text messages through the WhatsApp Business Cloud API.
type CloudAPISender struct {
	accessToken   string
	phoneNumberID string
	baseURL       string
	httpClient    *http.Client
	logger        *logging.Logger
}

// NewCloudAPISender builds a sender for the Cloud API messages endpoint.
func NewCloudAPISender(accessToken, phoneNumberID string, logger *logging.Logger) *CloudAPISender {
	if logger == nil {
		logger = logging.Default()
	}
	return &CloudAPISender{
		accessToken:   accessToken,
		phoneNumberID: phoneNumberID,
		baseURL:       defaultGraphBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

var _ Messenger = (*CloudAPISender)(nil)

// Send dispatches a single text message, retrying transient failures.
func (s *CloudAPISender) Send(ctx context.Context, to, body string) error {
	if s.accessToken == "" {
		return errors.New("messaging: whatsapp access token missing")
	}
	if to == "" {
		return errors.New("messaging: to required")
	}
	if strings.TrimSpace(body) == "" {
		return errors.New("messaging: body required")
	}

	ctx, span := cloudAPITracer.Start(ctx, "messaging.cloudapi.send")
	defer span.End()
	span.SetAttributes(attribute.String("barberbot.to", to))

	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "text",
		"text":              map[string]string{"body": body},
	}
	endpoint := fmt.Sprintf("%s/%s/messages", s.baseURL, s.phoneNumberID)

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		bodyBytes, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("messaging: failed to marshal cloud api payload: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
		if err != nil {
			lastErr = err
			break
		}
		req.Header.Set("Authorization", "Bearer "+s.accessToken)
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			lastErr = err
		} else {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
			_ = resp.Body.Close()
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				s.logger.Info("whatsapp message sent", "to", to)
				return nil
			}
			var errorBody map[string]interface{}
			if len(respBody) > 0 && json.Unmarshal(respBody, &errorBody) == nil {
				lastErr = fmt.Errorf("cloud api send failed: status %d, body: %v", resp.StatusCode, errorBody)
			} else {
				lastErr = fmt.Errorf("cloud api send failed: status %d", resp.StatusCode)
			}
		}

		if attempt < 3 {
			sleep := time.Duration(200+rand.Intn(300)) * time.Millisecond
			time.Sleep(sleep)
		}
	}

	if lastErr != nil {
		span.RecordError(lastErr)
		s.logger.Error("failed to send whatsapp message", "error", lastErr, "to", to)
	}
	return lastErr
}

// LogSender is a Messenger that only logs. Used when no WhatsApp credentials
// are configured (local development).
type LogSender struct {
	logger *logging.Logger
}

// NewLogSender builds a log-only messenger.
func NewLogSender(logger *logging.Logger) *LogSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogSender{logger: logger}
}

var _ Messenger = (*LogSender)(nil)

// Send logs the outbound message instead of delivering it.
func (s *LogSender) Send(_ context.Context, to, body string) error {
	s.logger.Info("outbound message (dry run)", "to", to, "body", body)
	return nil
}
