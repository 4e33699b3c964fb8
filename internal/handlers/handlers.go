package handlers

import (
	"database/sql"
	"time"

	"github.com/bazario/bazario-golang/internal/config"
	"github.com/bazario/bazario-golang/internal/email"
	"github.com/bazario/bazario-golang/internal/insights"
	"github.com/bazario/bazario-golang/internal/payments"
	"github.com/bazario/bazario-golang/internal/pricing"
	"github.com/bazario/bazario-golang/internal/shipping"
	"go.uber.org/zap"
)

// Handlers holds every dependency the HTTP handlers need. One instance is
// built in main and shared across requests.
type Handlers struct {
	DB         *sql.DB // Primary read/write pool
	DBReadOnly *sql.DB // Read-only pool (insights)
	Cfg        config.Config
	Log        *zap.Logger
	Mailer     email.Mailer
	Gateway    payments.Gateway
	Carrier    shipping.Carrier
	Insights   *insights.Service
}

// pricingRules builds the pricing schedule from config. Every total in the
// system flows through pricing.Quote with these rules.
func (h *Handlers) pricingRules() pricing.Rules {
	return pricing.Rules{
		PlatformFee:           h.Cfg.PlatformFee,
		ShippingFee:           h.Cfg.ShippingFee,
		FreeShippingThreshold: h.Cfg.FreeShippingThreshold,
		TaxRate:               h.Cfg.TaxRate,
	}
}

// addNotification inserts an in-app notification inside the caller's
// transaction (or pool, via the execer interface).
func (h *Handlers) addNotification(db execer, userID int64, notifType, message string) error {
	query := `
		INSERT INTO notifications (user_id, type, message, is_read, created_at)
		VALUES (?, ?, ?, 0, ?)`
	_, err := db.Exec(query, userID, notifType, message, time.Now())
	return err
}

// appendOrderEvent writes one row of the append-only order timeline.
func (h *Handlers) appendOrderEvent(db execer, orderID int64, status, description string) error {
	query := `
		INSERT INTO order_events (order_id, status, description, created_at)
		VALUES (?, ?, ?, ?)`
	_, err := db.Exec(query, orderID, status, description, time.Now())
	return err
}

// sendMail dispatches an email and logs failures. Mail problems never fail
// the request that triggered them.
func (h *Handlers) sendMail(to, subject, body string) {
	if err := h.Mailer.Send(to, subject, body); err != nil {
		h.Log.Warn("email dispatch failed",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err),
		)
	}
}

// execer is satisfied by both *sql.DB and *sql.Tx, so helpers can run
// inside or outside a transaction.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}
