// Package notify tells a salesperson that one of their clients received a delivery.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"p9e.in/choferes/config"
)

// Completion describes a finished delivery for the salesperson.
type Completion struct {
	SalespersonPhone string
	ClientID         uint
	ClientName       string
	InvoiceID        string
	CompletedAt      time.Time
}

type Notifier interface {
	NotifyDeliveryCompleted(ctx context.Context, c Completion) error
}

// New returns the notifier selected by cfg.Notifier.
func New(cfg *config.Config) Notifier {
	client := &http.Client{Timeout: 10 * time.Second}
	switch cfg.Notifier {
	case "whatsapp":
		return NewWhatsAppNotifier(cfg.WhatsApp, client)
	case "log":
		return LogNotifier{}
	default:
		return NewSMSNotifier(cfg.SMS, client)
	}
}

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

// providerReply is the SMSMASIVOS response envelope.
type providerReply struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// postForm sends a form-encoded request with the apikey header and checks
// the provider's success flag.
func postForm(ctx context.Context, client *http.Client, endpoint, apiKey string, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode >= 400 {
		return &httpStatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var reply providerReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return fmt.Errorf("decode provider reply: %w", err)
	}
	if !reply.Success {
		return fmt.Errorf("provider rejected message: %s", strings.TrimSpace(string(body)))
	}
	return nil
}

// LogNotifier only logs; used in development.
type LogNotifier struct{}

func (LogNotifier) NotifyDeliveryCompleted(_ context.Context, c Completion) error {
	log.Printf("📨 Delivery completed: client %d invoice %s -> %s", c.ClientID, c.InvoiceID, c.SalespersonPhone)
	return nil
}
