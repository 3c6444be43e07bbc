package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Leganyst/therapy-booking/internal/booking"
	"github.com/Leganyst/therapy-booking/internal/config"
)

// BrevoMailer отправляет транзакционные письма через Brevo (POST /smtp/email).
type BrevoMailer struct {
	cfg  config.BrevoConfig
	http *http.Client
}

var _ booking.Notifier = (*BrevoMailer)(nil)

func NewBrevoMailer(cfg config.BrevoConfig) *BrevoMailer {
	return &BrevoMailer{cfg: cfg, http: &http.Client{Timeout: 10 * time.Second}}
}

type brevoContact struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoEmail struct {
	Sender      brevoContact   `json:"sender"`
	To          []brevoContact `json:"to"`
	Subject     string         `json:"subject"`
	TextContent string         `json:"textContent"`
}

func (m *BrevoMailer) Send(ctx context.Context, recipients []string, subject, body string) error {
	if len(recipients) == 0 {
		return nil
	}

	msg := brevoEmail{
		Sender:      brevoContact{Email: m.cfg.SenderEmail, Name: m.cfg.SenderName},
		Subject:     subject,
		TextContent: body,
	}
	for _, r := range recipients {
		msg.To = append(msg.To, brevoContact{Email: r})
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.APIURL+"/smtp/email", bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", m.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := m.http.Do(req)
	if err != nil {
		return fmt.Errorf("brevo send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("brevo send: status %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}
	return nil
}
