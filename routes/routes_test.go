package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"p9e.in/choferes/handlers"
	"p9e.in/choferes/middleware"
	"p9e.in/choferes/models"
	"p9e.in/choferes/pkg/fec"
	"p9e.in/choferes/pkg/ingest"
	"p9e.in/choferes/pkg/lifecycle"
	"p9e.in/choferes/pkg/notify"
	"p9e.in/choferes/pkg/testdb"
	"p9e.in/choferes/pkg/tracking"
)

type recordingNotifier struct {
	mu    sync.Mutex
	calls []notify.Completion
}

func (n *recordingNotifier) NotifyDeliveryCompleted(_ context.Context, c notify.Completion) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, c)
	return nil
}

type server struct {
	*httptest.Server
	fx       *testdb.Fixture
	notifier *recordingNotifier
}

func newServer(t *testing.T) *server {
	t.Helper()
	db := testdb.Open(t)
	fx := testdb.NewFixture(t, db, "chofer1", 1001)

	hash, err := bcrypt.GenerateFromPassword([]byte("entrega123"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Model(&fx.Driver).Update("password_hash", string(hash)).Error)

	notifier := &recordingNotifier{}
	auth := middleware.NewAuth(db, "test-secret", 8*time.Hour)
	engine := lifecycle.NewEngine(db)
	agg := fec.NewAggregator(db)
	h := handlers.New(auth, agg, engine, ingest.NewPipeline(db, engine, agg, notifier), tracking.NewStore(db))

	srv := httptest.NewServer(middleware.EnableCORS(RegisterRoutes(h, auth)))
	t.Cleanup(srv.Close)
	return &server{Server: srv, fx: fx, notifier: notifier}
}

func (s *server) do(t *testing.T, method, path, token, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, s.URL+path, r)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (s *server) login(t *testing.T) string {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/login", "", `{"username":"chofer1","password":"entrega123"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tok models.Token
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tok))
	return tok.AccessToken
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newServer(t)

	for _, path := range []string{"/routes/1001", "/fec/1001", "/deliveries/1/track"} {
		resp := s.do(t, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
	resp := s.do(t, http.MethodPost, "/events", "not-a-token", "[]")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestDeliveryDayEndToEnd(t *testing.T) {
	s := newServer(t)
	d1 := s.fx.AddDelivery(t, "F-1001-001")
	d2 := s.fx.AddDelivery(t, "F-1001-002")
	token := s.login(t)

	resp := s.do(t, http.MethodGet, "/fec/1001", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var route models.Route
	decode(t, resp, &route)
	assert.Equal(t, models.RouteStatusInProgress, route.Status)
	require.Len(t, route.Deliveries, 2)

	resp = s.do(t, http.MethodPatch, fmt.Sprintf("/fec/%d/route", route.ID), token,
		fmt.Sprintf(`{"optimized_order_list_json":"[%d,%d]","suggested_journey_polyline":"_p~iF~ps|U"}`, d2.ID, d1.ID))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	events := fmt.Sprintf(`[
		{"latitude":19.4326,"longitude":-99.1332,"timestamp":"2025-06-02T15:00:00Z","eventType":"start_delivery","deliveryId":%[1]d,"estimatedDuration":"12 min"},
		{"latitude":19.4400,"longitude":-99.1400,"timestamp":"2025-06-02T15:05:00Z","eventType":"gps_update","deliveryId":%[1]d},
		{"latitude":19.4500,"longitude":-99.1500,"timestamp":"2025-06-02T15:10:00Z","eventType":"end_delivery","deliveryId":%[1]d},
		{"latitude":19.4500,"longitude":-99.1500,"timestamp":"2025-06-02T15:10:30Z","eventType":"end_delivery","deliveryId":%[1]d}
	]`, d1.ID)
	resp = s.do(t, http.MethodPost, "/deliveries/events/log/batch", token, events)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	var report ingest.BatchReport
	decode(t, resp, &report)
	assert.Equal(t, 2, report.Applied)
	assert.Equal(t, 1, report.Duplicates)
	assert.Equal(t, 1, report.Notified)
	assert.Empty(t, report.CompletedRoutes)

	done := testdb.Reload(t, s.fx.DB, d1.ID)
	assert.Equal(t, models.DeliveryStatusCompleted, done.Status)
	require.NotNil(t, done.ActualDuration)
	assert.Equal(t, "600", *done.ActualDuration)

	resp = s.do(t, http.MethodPost, fmt.Sprintf("/deliveries/%d/incident", d2.ID), token, `{"reason":"client closed"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.RouteStatusInProgress, testdb.RouteStatus(t, s.fx.DB, s.fx.Route.ID))

	resp = s.do(t, http.MethodGet, "/routes/1001", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &route)
	assert.Equal(t, models.RouteStatusCompleted, route.Status)

	resp = s.do(t, http.MethodGet, "/fec/1001", token, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/routes/1001/export", token, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.Len(t, s.notifier.calls, 1)
	assert.Equal(t, "F-1001-001", s.notifier.calls[0].InvoiceID)
	assert.Equal(t, "5599988877", s.notifier.calls[0].SalespersonPhone)
}

func TestSingleEventEndpoint(t *testing.T) {
	s := newServer(t)
	d := s.fx.AddDelivery(t, "F-1")
	token := s.login(t)

	resp := s.do(t, http.MethodPost, "/deliveries/events/log", token,
		fmt.Sprintf(`{"latitude":19.4,"longitude":-99.1,"timestamp":"2025-06-02T15:00:00","eventType":"start_delivery","deliveryId":%d}`, d.ID))
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, models.DeliveryStatusInProgress, testdb.Reload(t, s.fx.DB, d.ID).Status)
}

func TestNonNumericIDIsNotRouted(t *testing.T) {
	s := newServer(t)
	token := s.login(t)

	resp := s.do(t, http.MethodGet, "/routes/abc", token, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
