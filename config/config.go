package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is built once in main and passed to every collaborator that needs it.
type Config struct {
	Port     string
	DBDriver string
	DBDSN    string

	JWTSecret string
	TokenTTL  time.Duration

	// Notifier selects the completion channel: "sms", "whatsapp" or "log".
	Notifier string
	SMS      SMSConfig
	WhatsApp WhatsAppConfig

	SeedDemo bool
}

type SMSConfig struct {
	APIKey      string
	APIURL      string
	CountryCode string
	Sandbox     bool
}

type WhatsAppConfig struct {
	APIKey      string
	InstanceID  string
	APIURL      string
	CountryCode string
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Load reads .env if present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, fallback string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return fallback
	}

	cfg := &Config{
		Port:      get("PORT", "8080"),
		DBDriver:  get("DB_DRIVER", DriverPostgres),
		DBDSN:     getenv("DB_DSN"),
		JWTSecret: getenv("JWT_SECRET"),
		Notifier:  get("NOTIFIER", "sms"),
		SMS: SMSConfig{
			APIKey:      getenv("SMS_API_KEY"),
			APIURL:      get("SMS_API_URL", "https://api.smsmasivos.com.mx/sms/send"),
			CountryCode: get("SMS_COUNTRY_CODE", "52"),
		},
		WhatsApp: WhatsAppConfig{
			APIKey:      get("WHATSAPP_API_KEY", getenv("SMS_API_KEY")),
			InstanceID:  getenv("WHATSAPP_INSTANCE_ID"),
			APIURL:      get("WHATSAPP_API_URL", "https://api.smsmasivos.com.mx/whatsapp/send"),
			CountryCode: get("SMS_COUNTRY_CODE", "52"),
		},
	}

	var err error
	if cfg.TokenTTL, err = time.ParseDuration(get("TOKEN_TTL", "8h")); err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	if cfg.SMS.Sandbox, err = strconv.ParseBool(get("SMS_SANDBOX", "true")); err != nil {
		return nil, fmt.Errorf("invalid SMS_SANDBOX: %w", err)
	}
	if cfg.SeedDemo, err = strconv.ParseBool(get("SEED_DEMO", "false")); err != nil {
		return nil, fmt.Errorf("invalid SEED_DEMO: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.DBDriver {
	case DriverPostgres:
		if c.DBDSN == "" {
			return errors.New("DB_DSN is required for postgres")
		}
	case DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.Notifier {
	case "sms", "whatsapp", "log":
	default:
		return fmt.Errorf("unsupported NOTIFIER %q", c.Notifier)
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	return nil
}
