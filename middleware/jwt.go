package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"p9e.in/choferes/models"
)

// Claims are the custom payload in the driver's JWT. Subject holds the driver id.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// unexported type prevents collisions in context
type ctxKey int

const (
	driverIDKey ctxKey = iota
	requestIDKey
)

// Auth issues and verifies driver tokens.
type Auth struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewAuth(db *gorm.DB, secret string, ttl time.Duration) *Auth {
	return &Auth{db: db, secret: []byte(secret), ttl: ttl, now: time.Now}
}

// SetClock replaces the time source for issuing and validating tokens.
func (a *Auth) SetClock(now func() time.Time) {
	a.now = now
}

// Authenticate checks a username and password against the stored bcrypt hash.
func (a *Auth) Authenticate(ctx context.Context, username, password string) (*models.Driver, error) {
	var driver models.Driver
	err := a.db.WithContext(ctx).Where("username = ?", username).First(&driver).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewAppError(models.ErrUnauthorized, "incorrect username or password")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load driver: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(driver.PasswordHash), []byte(password)); err != nil {
		return nil, models.NewAppError(models.ErrUnauthorized, "incorrect username or password")
	}
	return &driver, nil
}

// IssueToken creates a signed HS256 JWT valid for the configured TTL.
func (a *Auth) IssueToken(driver *models.Driver) (string, error) {
	now := a.now()
	claims := Claims{
		Username: driver.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(driver.ID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// ParseToken verifies signature and expiry and returns the driver id.
func (a *Auth) ParseToken(tokenStr string) (uint, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !token.Valid {
		return 0, models.NewAppError(models.ErrUnauthorized, "could not validate credentials")
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return 0, models.NewAppError(models.ErrUnauthorized, "invalid token claims")
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, models.NewAppError(models.ErrUnauthorized, "invalid token subject")
	}
	return uint(id), nil
}

// Middleware validates the bearer token, checks the driver still exists and
// stores the driver id in the request context.
func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
			writeUnauthorized(w, "missing or invalid Authorization header")
			return
		}

		driverID, err := a.ParseToken(parts[1])
		if err != nil {
			writeUnauthorized(w, err.Error())
			return
		}

		var count int64
		if err := a.db.WithContext(r.Context()).Model(&models.Driver{}).Where("id = ?", driverID).Count(&count).Error; err != nil || count == 0 {
			writeUnauthorized(w, "could not validate credentials")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithDriverID(r.Context(), driverID)))
	})
}

// DriverID returns the authenticated driver id, or 0 outside the middleware.
func DriverID(r *http.Request) uint {
	if id, ok := r.Context().Value(driverIDKey).(uint); ok {
		return id
	}
	return 0
}

// WithDriverID returns a copy of ctx carrying the authenticated driver id,
// read back by DriverID.
func WithDriverID(ctx context.Context, driverID uint) context.Context {
	return context.WithValue(ctx, driverIDKey, driverID)
}

func writeUnauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
