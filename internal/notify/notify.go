// Package notify delivers one-time codes to phones and mailboxes.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"planportal/internal/config"
	"planportal/internal/model"
)

// Sender delivers a code to a contact on a channel.
type Sender interface {
	Send(ctx context.Context, channel model.OTPChannel, contact, code string) error
}

// New picks the gateway sender when a gateway URL is configured and the
// log sender otherwise.
func New(cfg config.OTPConfig, logger *slog.Logger) Sender {
	if cfg.GatewayURL == "" {
		return NewLogSender(logger)
	}
	return NewGatewaySender(cfg.GatewayURL, cfg.GatewayToken, &http.Client{
		Timeout:   cfg.GatewayTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	})
}

type gatewayRequest struct {
	Channel string `json:"channel"`
	To      string `json:"to"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// GatewaySender posts codes to an SMS/e-mail gateway as JSON.
type GatewaySender struct {
	URL    string
	Token  string
	Client *http.Client
}

func NewGatewaySender(url, token string, client *http.Client) *GatewaySender {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &GatewaySender{URL: url, Token: token, Client: client}
}

func (g *GatewaySender) Send(ctx context.Context, channel model.OTPChannel, contact, code string) error {
	body, err := json.Marshal(gatewayRequest{
		Channel: string(channel),
		To:      contact,
		Code:    code,
		Message: Message(code),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.Token != "" {
		req.Header.Set("Authorization", "Bearer "+g.Token)
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return fmt.Errorf("otp gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("otp gateway returned status %d", resp.StatusCode)
	}
	return nil
}

// LogSender writes codes to the log. Development only.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (l *LogSender) Send(ctx context.Context, channel model.OTPChannel, contact, code string) error {
	l.logger.InfoContext(ctx, "otp_issued", "channel", channel, "contact", contact, "code", code)
	return nil
}

// Message is the text delivered alongside the code.
func Message(code string) string {
	return fmt.Sprintf("%s is your Building Plan Approval verification code. It expires in 10 minutes. Do not share it.", code)
}
