package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds every tunable of the API server. Values come from the
// environment (after main has loaded .env via godotenv).
type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" env-default:":8080"`

	// Database
	DSNPrimary  string `env:"DB_DSN_PRIMARY"`
	DSNReadOnly string `env:"DB_DSN_READONLY"`

	// Auth
	JWTSecret string `env:"JWT_SECRET" env-default:"dev-only-secret-change-me"`

	// Pricing knobs. Whole rupees.
	PlatformFee           float64 `env:"PLATFORM_FEE" env-default:"20"`
	ShippingFee           float64 `env:"SHIPPING_FEE" env-default:"40"`
	FreeShippingThreshold float64 `env:"FREE_SHIPPING_THRESHOLD" env-default:"500"`
	TaxRate               float64 `env:"TAX_RATE" env-default:"0"`

	// Razorpay gateway
	RazorpayKeyID     string `env:"RAZORPAY_KEY_ID"`
	RazorpayKeySecret string `env:"RAZORPAY_KEY_SECRET"`

	// Shiprocket carrier
	ShiprocketBaseURL  string `env:"SHIPROCKET_BASE_URL" env-default:"https://apiv2.shiprocket.in/v1/external"`
	ShiprocketEmail    string `env:"SHIPROCKET_EMAIL"`
	ShiprocketPassword string `env:"SHIPROCKET_PASSWORD"`

	// SMTP. When SMTPHost is empty the server falls back to the
	// console mailer (emails are printed, not sent).
	SMTPHost string `env:"SMTP_HOST"`
	SMTPPort int    `env:"SMTP_PORT" env-default:"587"`
	SMTPUser string `env:"SMTP_USER"`
	SMTPPass string `env:"SMTP_PASS"`
	FromAddr string `env:"EMAIL_FROM" env-default:"no-reply@bazario.in"`

	// Gemini (insights chat)
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" env-default:"gemini-1.5-flash"`

	// Background worker: unpaid pending orders older than this many
	// minutes are auto-cancelled.
	UnpaidOrderTTLMinutes int `env:"UNPAID_ORDER_TTL_MINUTES" env-default:"1440"`

	CORSOrigin string `env:"CORS_ORIGIN" env-default:"http://localhost:3000"`
}

// TryRead parses the environment into a Config.
func TryRead() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read env variables: %w", err)
	}
	return cfg, nil
}
