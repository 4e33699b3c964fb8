package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/bazario/bazario-golang/internal/models"
	"github.com/bazario/bazario-golang/internal/status"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//
// --- Customer: Razorpay Payments ---
//

// CreatePaymentOrderInput defines the JSON for starting a gateway payment.
type CreatePaymentOrderInput struct {
	OrderID int64 `json:"orderId" binding:"required"`
}

// CreatePaymentOrder is the handler for POST /v1/customer/payments/create-order
// Registers the order total with Razorpay and stores the gateway order id
// so the verify step can bind the callback to our order.
func (h *Handlers) CreatePaymentOrder(c *gin.Context) {
	userID := c.GetInt64("userID")

	var input CreatePaymentOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var orderNumber, orderStatus, paymentMethod, paymentStatus string
	var gatewayOrderID sql.NullString
	var total float64
	query := `
		SELECT order_number, status, payment_method, payment_status, gateway_order_id, total
		FROM orders WHERE id = ? AND user_id = ?`
	err := h.DB.QueryRow(query, input.OrderID, userID).Scan(
		&orderNumber, &orderStatus, &paymentMethod, &paymentStatus, &gatewayOrderID, &total)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}

	if paymentMethod != models.PaymentMethodRazorpay {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "This order is not payable online"})
		return
	}
	if paymentStatus != models.PaymentStatusUnpaid || orderStatus != status.OrderPending {
		c.JSON(http.StatusConflict, gin.H{"error": "Order is not awaiting payment"})
		return
	}

	// Idempotent: re-requesting returns the same gateway order.
	if !gatewayOrderID.Valid {
		id, err := h.Gateway.CreateOrder(total, orderNumber)
		if err != nil {
			h.Log.Error("gateway order create failed", zap.Int64("orderId", input.OrderID), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Payment gateway unavailable"})
			return
		}
		gatewayOrderID = sql.NullString{String: id, Valid: true}

		_, err = h.DB.Exec("UPDATE orders SET gateway_order_id = ?, updated_at = ? WHERE id = ?",
			gatewayOrderID, time.Now(), input.OrderID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save gateway order"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"gatewayOrderId": gatewayOrderID.String,
		"amount":         total,
		"currency":       "INR",
		"keyId":          h.Cfg.RazorpayKeyID,
	})
}

// VerifyPaymentInput defines the JSON of the Razorpay checkout callback.
type VerifyPaymentInput struct {
	GatewayOrderID string `json:"razorpayOrderId" binding:"required"`
	PaymentID      string `json:"razorpayPaymentId" binding:"required"`
	Signature      string `json:"razorpaySignature" binding:"required"`
}

// VerifyPayment is the handler for POST /v1/customer/payments/verify
// Checks the gateway signature, marks the order paid and confirms it.
func (h *Handlers) VerifyPayment(c *gin.Context) {
	userID := c.GetInt64("userID")

	var input VerifyPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.Gateway.VerifySignature(input.GatewayOrderID, input.PaymentID, input.Signature) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Payment signature verification failed"})
		return
	}

	var orderID int64
	err := h.DB.QueryRow(
		"SELECT id FROM orders WHERE gateway_order_id = ? AND user_id = ?",
		input.GatewayOrderID, userID).Scan(&orderID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "No order matches this payment"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}

	// Conditional update: a replayed callback affects zero rows.
	result, err := h.DB.Exec(`
		UPDATE orders
		SET payment_status = ?, transaction_id = ?, paid_at = ?, updated_at = ?
		WHERE id = ? AND payment_status = ?`,
		models.PaymentStatusPaid, input.PaymentID, time.Now(), time.Now(),
		orderID, models.PaymentStatusUnpaid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record payment"})
		return
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check affected rows"})
		return
	}
	if rowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Order is already paid"})
		return
	}

	// Payment confirms the order. The machine allows pending -> confirmed,
	// so this only fails if the worker cancelled the order first.
	if err := h.transitionOrder(orderID, status.OrderConfirmed, nil); err != nil {
		h.Log.Warn("post-payment confirm failed", zap.Int64("orderId", orderID), zap.Error(err))
	} else {
		h.notifyOrderTransition(orderID, status.OrderConfirmed)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Payment verified", "orderId": orderID})
}
