package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"p9e.in/choferes/models"
	"p9e.in/choferes/pkg/testdb"
)

func newAuth(t *testing.T) (*Auth, models.Driver) {
	t.Helper()
	db := testdb.Open(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("entrega123"), bcrypt.MinCost)
	require.NoError(t, err)
	driver := models.Driver{Username: "chofer1", PasswordHash: string(hash)}
	require.NoError(t, db.Create(&driver).Error)
	return NewAuth(db, "test-secret", 8*time.Hour), driver
}

func echoDriver() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte(strconv.FormatUint(uint64(DriverID(r)), 10)))
	})
}

func TestAuthenticate(t *testing.T) {
	auth, driver := newAuth(t)
	ctx := context.Background()

	got, err := auth.Authenticate(ctx, "chofer1", "entrega123")
	require.NoError(t, err)
	assert.Equal(t, driver.ID, got.ID)

	_, err = auth.Authenticate(ctx, "chofer1", "wrong")
	assert.True(t, errors.Is(err, models.ErrUnauthorized))

	_, err = auth.Authenticate(ctx, "nobody", "entrega123")
	assert.True(t, errors.Is(err, models.ErrUnauthorized))
}

func TestTokenRoundTripAndExpiry(t *testing.T) {
	auth, driver := newAuth(t)
	issuedAt := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	auth.SetClock(func() time.Time { return issuedAt })

	token, err := auth.IssueToken(&driver)
	require.NoError(t, err)

	id, err := auth.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, driver.ID, id)

	auth.SetClock(func() time.Time { return issuedAt.Add(8*time.Hour + time.Minute) })
	_, err = auth.ParseToken(token)
	assert.True(t, errors.Is(err, models.ErrUnauthorized), "expired after 8h")

	other := NewAuth(nil, "another-secret", time.Hour)
	other.SetClock(func() time.Time { return issuedAt })
	_, err = other.ParseToken(token)
	assert.Error(t, err, "signature from a different secret")
}

func TestParseTokenRejectsOtherAlgorithms(t *testing.T) {
	auth, _ := newAuth(t)
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = auth.ParseToken(unsigned)
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	auth, driver := newAuth(t)
	token, err := auth.IssueToken(&driver)
	require.NoError(t, err)

	ghost := models.Driver{ID: driver.ID + 100, Username: "ghost"}
	ghostToken, err := auth.IssueToken(&ghost)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid token", "Bearer " + token, http.StatusTeapot},
		{"lowercase scheme", "bearer " + token, http.StatusTeapot},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"driver no longer exists", "Bearer " + ghostToken, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/routes/1", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			auth.Middleware(echoDriver()).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusTeapot {
				assert.Equal(t, strconv.FormatUint(uint64(driver.ID), 10), rec.Body.String())
			} else {
				assert.Contains(t, rec.Body.String(), "detail")
			}
		})
	}
}

func TestRequestLogger(t *testing.T) {
	var seen string
	h := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
}

func TestEnableCORSPreflight(t *testing.T) {
	called := false
	h := EnableCORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/events", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, called)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestWithDriverID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/routes/1", nil)
	assert.Equal(t, uint(0), DriverID(req))

	req = req.WithContext(WithDriverID(req.Context(), 42))
	assert.Equal(t, uint(42), DriverID(req))
}
