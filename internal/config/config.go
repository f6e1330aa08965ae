package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server   ServerConfig
	Currency CurrencyConfig
	Stock    StockConfig
	Alerts   AlertConfig
	Digest   DigestConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// CurrencyConfig controls amount formatting and derived fee computation.
type CurrencyConfig struct {
	Code            string
	DeliveryFeeRate float64
}

// StockConfig controls stock indicator classification.
type StockConfig struct {
	DefaultReorderLevel int
}

// AlertConfig controls the attributes stamped onto outgoing page fragments.
type AlertConfig struct {
	DismissAfterMS int
	ConfirmText    string
}

// DigestConfig holds settings for the scheduled low-stock digest. The digest
// is disabled when either URL is empty.
type DigestConfig struct {
	SnapshotURL  string
	WebhookURL   string
	CronSchedule string
	Timezone     string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	feeRate, err := getenvFloat("DELIVERY_FEE_RATE", 0.05)
	if err != nil {
		return nil, err
	}
	reorderLevel, err := getenvInt("DEFAULT_REORDER_LEVEL", 10)
	if err != nil {
		return nil, err
	}
	dismissMS, err := getenvInt("ALERT_DISMISS_MS", 5000)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Currency: CurrencyConfig{
			Code:            getenvWithDefault("CURRENCY_CODE", "UGX"),
			DeliveryFeeRate: feeRate,
		},
		Stock: StockConfig{
			DefaultReorderLevel: reorderLevel,
		},
		Alerts: AlertConfig{
			DismissAfterMS: dismissMS,
			ConfirmText:    getenvWithDefault("DELETE_CONFIRM_TEXT", "Are you sure you want to delete this?"),
		},
		Digest: DigestConfig{
			SnapshotURL:  os.Getenv("STOCK_SNAPSHOT_URL"),
			WebhookURL:   os.Getenv("STOCK_ALERT_WEBHOOK_URL"),
			CronSchedule: getenvWithDefault("STOCK_DIGEST_CRON", "0 8 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "Africa/Kampala"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated and sane.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Currency.Code == "" {
		return errors.New("CURRENCY_CODE must not be empty")
	}

	if c.Currency.DeliveryFeeRate <= 0 || c.Currency.DeliveryFeeRate >= 1 {
		return errors.New("DELIVERY_FEE_RATE must be a fraction between 0 and 1")
	}

	if c.Stock.DefaultReorderLevel <= 0 {
		return errors.New("DEFAULT_REORDER_LEVEL must be positive")
	}

	if c.Alerts.DismissAfterMS <= 0 {
		return errors.New("ALERT_DISMISS_MS must be positive")
	}

	if c.Digest.Enabled() {
		if c.Digest.CronSchedule == "" {
			return errors.New("STOCK_DIGEST_CRON must be provided when the digest is enabled")
		}
		if c.Digest.Timezone == "" {
			return errors.New("TIMEZONE must be provided when the digest is enabled")
		}
	}

	return nil
}

// Enabled reports whether the low-stock digest has both endpoints configured.
func (d DigestConfig) Enabled() bool {
	return d.SnapshotURL != "" && d.WebhookURL != ""
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return value, nil
}

func getenvFloat(key string, fallback float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return value, nil
}
