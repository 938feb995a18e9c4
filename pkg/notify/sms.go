package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"

	"p9e.in/choferes/config"
)

type SMSNotifier struct {
	cfg    config.SMSConfig
	client *http.Client
}

func NewSMSNotifier(cfg config.SMSConfig, client *http.Client) *SMSNotifier {
	return &SMSNotifier{cfg: cfg, client: client}
}

func (n *SMSNotifier) NotifyDeliveryCompleted(ctx context.Context, c Completion) error {
	if n.cfg.APIKey == "" {
		return errors.New("SMS_API_KEY is not set, SMS not sent")
	}

	form := url.Values{}
	form.Set("message", SMSMessage(c))
	form.Set("numbers", c.SalespersonPhone)
	form.Set("country_code", n.cfg.CountryCode)
	if n.cfg.Sandbox {
		form.Set("sandbox", "1")
	}

	if err := postForm(ctx, n.client, n.cfg.APIURL, n.cfg.APIKey, form); err != nil {
		return fmt.Errorf("sms to %s: %w", c.SalespersonPhone, err)
	}
	log.Printf("✅ Completion SMS sent to %s for invoice %s", c.SalespersonPhone, c.InvoiceID)
	return nil
}

// SMSMessage is the plain text body sent to the salesperson.
func SMSMessage(c Completion) string {
	return fmt.Sprintf("Entrega Completada\nCliente: %d\nFactura: %s\nHora: %s (UTC)",
		c.ClientID, c.InvoiceID, c.CompletedAt.UTC().Format("03:04 PM"))
}
