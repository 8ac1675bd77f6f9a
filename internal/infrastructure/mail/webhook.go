// Package mail hands notification requests to the external mailer service,
// which owns template rendering and SMTP delivery. The core never renders
// HTML: it ships the template identifier and the variable bag, nothing else.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/merelformation/reservation-system/internal/core/domain"
)

const requestTimeout = 10 * time.Second

// WebhookSender POSTs each notification request as JSON to the mailer
// endpoint.
type WebhookSender struct {
	url    string
	client *http.Client
	log    zerolog.Logger
}

func NewWebhookSender(url string, log zerolog.Logger) *WebhookSender {
	return &WebhookSender{
		url:    url,
		client: &http.Client{Timeout: requestTimeout},
		log:    log,
	}
}

// Send implements ports.NotificationSender.
func (s *WebhookSender) Send(ctx context.Context, req domain.NotificationRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("mailer: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("mailer: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("mailer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("mailer: unexpected status %d", resp.StatusCode)
	}

	s.log.Debug().
		Str("template", req.TemplateIdentifier).
		Str("recipient", req.RecipientEmail).
		Msg("notification handed to mailer")
	return nil
}
