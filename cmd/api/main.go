package main

import (
	"log"
	"time"

	"github.com/bazario/bazario-golang/internal/config"
	"github.com/bazario/bazario-golang/internal/database"
	"github.com/bazario/bazario-golang/internal/email"
	"github.com/bazario/bazario-golang/internal/handlers"
	"github.com/bazario/bazario-golang/internal/insights"
	"github.com/bazario/bazario-golang/internal/logger"
	"github.com/bazario/bazario-golang/internal/payments"
	"github.com/bazario/bazario-golang/internal/routes"
	"github.com/bazario/bazario-golang/internal/shipping"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 0. --- Load Environment Variables (.env) ---
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}

	cfg, err := config.TryRead()
	if err != nil {
		log.Fatalf("Failed to read configuration: %v", err)
	}

	zl, err := logger.New()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync()

	// 1. --- Main Database Connection (Read/Write) ---
	db, err := database.Open(cfg.DSNPrimary)
	if err != nil {
		zl.Fatal("failed to connect to primary database", zap.Error(err))
	}
	defer db.Close()

	// 2. --- Insights Database Connection (Read-Only) ---
	dbReadOnly, err := database.Open(cfg.DSNReadOnly)
	if err != nil {
		zl.Fatal("failed to connect to read-only database", zap.Error(err))
	}
	defer dbReadOnly.Close()

	// 3. --- Insights Service (optional) ---
	var insightsService *insights.Service
	if cfg.GeminiAPIKey != "" {
		insightsService, err = insights.NewService(cfg.GeminiAPIKey, cfg.GeminiModel, dbReadOnly)
		if err != nil {
			zl.Fatal("failed to initialize insights service", zap.Error(err))
		}
		defer insightsService.Client.Close()
	} else {
		zl.Warn("GEMINI_API_KEY not set; insights chat disabled")
	}

	// 4. --- Mailer: SMTP when configured, console otherwise ---
	var mailer email.Mailer
	if cfg.SMTPHost != "" {
		mailer = email.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.FromAddr)
	} else {
		zl.Warn("SMTP_HOST not set; emails will be logged, not sent")
		mailer = &email.ConsoleMailer{Log: zl}
	}

	// --- Application Setup ---
	app := &handlers.Handlers{
		DB:         db,
		DBReadOnly: dbReadOnly,
		Cfg:        cfg,
		Log:        zl,
		Mailer:     mailer,
		Gateway:    payments.NewClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret),
		Carrier:    shipping.NewClient(cfg.ShiprocketBaseURL, cfg.ShiprocketEmail, cfg.ShiprocketPassword),
		Insights:   insightsService,
	}

	// 5. --- Background Worker ---
	// Hourly sweep that cancels pending razorpay orders whose payment
	// never arrived within the TTL.
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		zl.Info("background worker started: monitoring for overdue orders")
		for range ticker.C {
			app.ProcessOverdueOrders()
		}
	}()

	// --- Router Setup ---
	router := routes.Setup(app)

	// --- Start Server ---
	zl.Info("starting Bazario API server", zap.String("addr", cfg.HTTPAddr))
	if err := router.Run(cfg.HTTPAddr); err != nil {
		zl.Fatal("server exited", zap.Error(err))
	}
}
