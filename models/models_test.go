package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		expected bool
	}{
		{"pending to in_progress", DeliveryStatusPending, DeliveryStatusInProgress, true},
		{"pending to completed", DeliveryStatusPending, DeliveryStatusCompleted, true},
		{"pending to cancelled", DeliveryStatusPending, DeliveryStatusCancelled, true},
		{"in_progress restart", DeliveryStatusInProgress, DeliveryStatusInProgress, true},
		{"in_progress to completed", DeliveryStatusInProgress, DeliveryStatusCompleted, true},
		{"in_progress to cancelled", DeliveryStatusInProgress, DeliveryStatusCancelled, true},
		{"in_progress back to pending", DeliveryStatusInProgress, DeliveryStatusPending, false},
		{"completed is absorbing", DeliveryStatusCompleted, DeliveryStatusInProgress, false},
		{"completed to cancelled", DeliveryStatusCompleted, DeliveryStatusCancelled, false},
		{"cancelled is absorbing", DeliveryStatusCancelled, DeliveryStatusCompleted, false},
		{"unknown status", "lost", DeliveryStatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CanTransition(tt.from, tt.to))
		})
	}
}

func TestRouteAllDeliveriesTerminal(t *testing.T) {
	r := Route{}
	assert.True(t, r.AllDeliveriesTerminal(), "empty route is finished")

	r.Deliveries = []Delivery{{Status: DeliveryStatusCompleted}, {Status: DeliveryStatusPending}}
	assert.False(t, r.AllDeliveriesTerminal())

	r.Deliveries[1].Status = DeliveryStatusCancelled
	assert.True(t, r.AllDeliveriesTerminal())
}

func TestJSONTimeNormalizesToUTC(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"offset", `"2025-05-16T10:00:00-06:00"`, time.Date(2025, 5, 16, 16, 0, 0, 0, time.UTC)},
		{"zulu with nanos", `"2025-05-16T16:00:00.5Z"`, time.Date(2025, 5, 16, 16, 0, 0, 500000000, time.UTC)},
		{"naive micro", `"2025-05-16T16:00:00.181226"`, time.Date(2025, 5, 16, 16, 0, 0, 181226000, time.UTC)},
		{"naive", `"2025-05-16T16:00:00"`, time.Date(2025, 5, 16, 16, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var jt JSONTime
			require.NoError(t, json.Unmarshal([]byte(tt.input), &jt))
			assert.True(t, tt.want.Equal(jt.Time()))
			assert.Equal(t, time.UTC, jt.Time().Location())
		})
	}

	var jt JSONTime
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &jt))

	require.NoError(t, json.Unmarshal([]byte(`null`), &jt))
	assert.True(t, jt.IsZero())

	out, err := json.Marshal(JSONTime(time.Date(2025, 5, 16, 10, 0, 0, 0, time.FixedZone("CST", -6*3600))))
	require.NoError(t, err)
	assert.Equal(t, `"2025-05-16T16:00:00Z"`, string(out))
}

func TestTrackingPointReportDecode(t *testing.T) {
	body := `{"latitude":19.43,"longitude":-99.13,"timestamp":"2025-05-16T16:00:00Z","eventType":"start_delivery","deliveryId":7,"estimatedDuration":"600"}`

	var report TrackingPointReport
	require.NoError(t, json.Unmarshal([]byte(body), &report))
	require.NotNil(t, report.DeliveryID)
	assert.Equal(t, uint(7), *report.DeliveryID)
	assert.Equal(t, EventStartDelivery, report.EventType)
	require.NotNil(t, report.Location())
	assert.Equal(t, -99.13, report.Location().Longitude)

	report.Longitude = nil
	assert.Nil(t, report.Location())
}

func TestAppErrorMatching(t *testing.T) {
	err := fmt.Errorf("load route: %w", NewAppError(ErrNotFound, "route 12 not found"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrForbidden))
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(errors.New("boom")))
}

func TestClientNotifiablePhone(t *testing.T) {
	phone := "5512345678"
	empty := ""

	var nilClient *Client
	_, ok := nilClient.NotifiablePhone()
	assert.False(t, ok)

	_, ok = (&Client{}).NotifiablePhone()
	assert.False(t, ok)

	_, ok = (&Client{Salesperson: &Salesperson{Phone: &empty}}).NotifiablePhone()
	assert.False(t, ok)

	got, ok := (&Client{Salesperson: &Salesperson{Phone: &phone}}).NotifiablePhone()
	assert.True(t, ok)
	assert.Equal(t, phone, got)
}
