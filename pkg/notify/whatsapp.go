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

type WhatsAppNotifier struct {
	cfg    config.WhatsAppConfig
	client *http.Client
}

func NewWhatsAppNotifier(cfg config.WhatsAppConfig, client *http.Client) *WhatsAppNotifier {
	return &WhatsAppNotifier{cfg: cfg, client: client}
}

func (n *WhatsAppNotifier) NotifyDeliveryCompleted(ctx context.Context, c Completion) error {
	if n.cfg.APIKey == "" || n.cfg.InstanceID == "" {
		return errors.New("WhatsApp API key or instance id is not set, message not sent")
	}

	form := url.Values{}
	form.Set("instance_id", n.cfg.InstanceID)
	form.Set("type", "text")
	form.Set("number", c.SalespersonPhone)
	form.Set("country_code", n.cfg.CountryCode)
	form.Set("message", WhatsAppMessage(c))

	if err := postForm(ctx, n.client, n.cfg.APIURL, n.cfg.APIKey, form); err != nil {
		return fmt.Errorf("whatsapp to %s: %w", c.SalespersonPhone, err)
	}
	log.Printf("✅ Completion WhatsApp sent to %s for invoice %s", c.SalespersonPhone, c.InvoiceID)
	return nil
}

// WhatsAppMessage uses WhatsApp bold markup.
func WhatsAppMessage(c Completion) string {
	return fmt.Sprintf("✅ *Pedido Entregado*\n\n🔢 *Cliente #:* %d\n👤 *Nombre:* %s\n🧾 *Factura #:* %s\n🕒 *Hora:* %s",
		c.ClientID, c.ClientName, c.InvoiceID, c.CompletedAt.UTC().Format("03:04 PM"))
}
