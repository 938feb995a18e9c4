package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"p9e.in/choferes/config"
)

var completion = Completion{
	SalespersonPhone: "5599988877",
	ClientID:         42,
	ClientName:       "Abarrotes La Esperanza",
	InvoiceID:        "F-1001-001",
	CompletedAt:      time.Date(2025, 6, 2, 21, 5, 0, 0, time.UTC),
}

type captured struct {
	apiKey string
	form   map[string]string
}

func provider(t *testing.T, status int, reply string, got *captured) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		got.apiKey = r.Header.Get("apikey")
		got.form = map[string]string{}
		for k := range r.PostForm {
			got.form[k] = r.PostForm.Get(k)
		}
		w.WriteHeader(status)
		w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSMSNotifierSendsForm(t *testing.T) {
	var got captured
	srv := provider(t, http.StatusOK, `{"success":true,"message":"ok"}`, &got)
	n := NewSMSNotifier(config.SMSConfig{APIKey: "k1", APIURL: srv.URL, CountryCode: "52", Sandbox: true}, srv.Client())

	require.NoError(t, n.NotifyDeliveryCompleted(context.Background(), completion))
	assert.Equal(t, "k1", got.apiKey)
	assert.Equal(t, "5599988877", got.form["numbers"])
	assert.Equal(t, "52", got.form["country_code"])
	assert.Equal(t, "1", got.form["sandbox"])
	assert.Equal(t, "Entrega Completada\nCliente: 42\nFactura: F-1001-001\nHora: 09:05 PM (UTC)", got.form["message"])
}

func TestSMSNotifierFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		reply  string
	}{
		{"provider rejects", http.StatusOK, `{"success":false,"message":"no credits"}`},
		{"server error", http.StatusInternalServerError, `oops`},
		{"not json", http.StatusOK, `<html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got captured
			srv := provider(t, tt.status, tt.reply, &got)
			n := NewSMSNotifier(config.SMSConfig{APIKey: "k1", APIURL: srv.URL}, srv.Client())
			assert.Error(t, n.NotifyDeliveryCompleted(context.Background(), completion))
		})
	}

	n := NewSMSNotifier(config.SMSConfig{APIURL: "http://127.0.0.1:1"}, http.DefaultClient)
	err := n.NotifyDeliveryCompleted(context.Background(), completion)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMS_API_KEY")
}

func TestWhatsAppNotifierSendsForm(t *testing.T) {
	var got captured
	srv := provider(t, http.StatusOK, `{"success":true}`, &got)
	n := NewWhatsAppNotifier(config.WhatsAppConfig{APIKey: "k2", InstanceID: "inst", APIURL: srv.URL, CountryCode: "52"}, srv.Client())

	require.NoError(t, n.NotifyDeliveryCompleted(context.Background(), completion))
	assert.Equal(t, "k2", got.apiKey)
	assert.Equal(t, "inst", got.form["instance_id"])
	assert.Equal(t, "text", got.form["type"])
	assert.Equal(t, "5599988877", got.form["number"])
	assert.True(t, strings.Contains(got.form["message"], "Abarrotes La Esperanza"))

	missing := NewWhatsAppNotifier(config.WhatsAppConfig{APIKey: "k2"}, srv.Client())
	assert.Error(t, missing.NotifyDeliveryCompleted(context.Background(), completion))
}

func TestNewSelectsNotifier(t *testing.T) {
	assert.IsType(t, &SMSNotifier{}, New(&config.Config{Notifier: "sms"}))
	assert.IsType(t, &WhatsAppNotifier{}, New(&config.Config{Notifier: "whatsapp"}))
	assert.IsType(t, LogNotifier{}, New(&config.Config{Notifier: "log"}))
	assert.NoError(t, LogNotifier{}.NotifyDeliveryCompleted(context.Background(), completion))
}
