package handlers

import (
	"fmt"
	"time"

	"github.com/bazario/bazario-golang/internal/models"
	"github.com/bazario/bazario-golang/internal/status"
	"go.uber.org/zap"
)

//
// --- Background Worker: Overdue Unpaid Orders ---
//

// ProcessOverdueOrders cancels pending razorpay orders whose payment never
// arrived within the configured TTL. Called from a ticker goroutine in
// main; each run handles every overdue order it finds.
func (h *Handlers) ProcessOverdueOrders() {
	cutoff := time.Now().Add(-time.Duration(h.Cfg.UnpaidOrderTTLMinutes) * time.Minute)

	rows, err := h.DB.Query(`
		SELECT id, order_number FROM orders
		WHERE status = ? AND payment_method = ? AND payment_status = ? AND created_at < ?`,
		status.OrderPending, models.PaymentMethodRazorpay, models.PaymentStatusUnpaid, cutoff)
	if err != nil {
		h.Log.Error("overdue order scan failed", zap.Error(err))
		return
	}

	type overdue struct {
		id          int64
		orderNumber string
	}
	var batch []overdue
	for rows.Next() {
		var o overdue
		if err := rows.Scan(&o.id, &o.orderNumber); err != nil {
			rows.Close()
			h.Log.Error("overdue order scan failed", zap.Error(err))
			return
		}
		batch = append(batch, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		h.Log.Error("overdue order scan failed", zap.Error(err))
		return
	}

	for _, o := range batch {
		// transitionOrder re-checks the status under lock, so an order
		// paid between the scan and here is left alone.
		if err := h.transitionOrder(o.id, status.OrderCancelled, nil); err != nil {
			h.Log.Warn("overdue order cancel failed",
				zap.Int64("orderId", o.id), zap.Error(err))
			continue
		}
		h.Log.Info("cancelled overdue unpaid order",
			zap.Int64("orderId", o.id), zap.String("orderNumber", o.orderNumber))
		h.sendOrderStatusMail(o.id, status.OrderCancelled,
			fmt.Sprintf("Order %s was cancelled because payment was not completed.", o.orderNumber))
	}
}
