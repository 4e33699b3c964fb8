package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/bazario/bazario-golang/internal/email"
	"github.com/bazario/bazario-golang/internal/models"
	"github.com/bazario/bazario-golang/internal/status"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//
// --- Customer: Return Requests ---
//

// CreateReturnInput defines the JSON for opening a return.
type CreateReturnInput struct {
	OrderID     int64  `json:"orderId" binding:"required"`
	Reason      string `json:"reason" binding:"required"`
	Description string `json:"description"`
	Images      string `json:"images"` // JSON array of URLs
}

// CreateReturnRequest is the handler for POST /v1/customer/returns
// Only delivered orders can be returned, and an order carries at most one
// open return at a time.
func (h *Handlers) CreateReturnRequest(c *gin.Context) {
	userID := c.GetInt64("userID")

	var input CreateReturnInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Images == "" {
		input.Images = "[]"
	}

	var orderStatus string
	err := h.DB.QueryRow("SELECT status FROM orders WHERE id = ? AND user_id = ?",
		input.OrderID, userID).Scan(&orderStatus)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	if orderStatus != status.OrderDelivered {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Only delivered orders can be returned"})
		return
	}

	var open int
	err = h.DB.QueryRow(
		"SELECT COUNT(*) FROM return_requests WHERE order_id = ? AND status NOT IN (?, ?)",
		input.OrderID, status.ReturnRefunded, status.ReturnRejected).Scan(&open)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	if open > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "A return is already open for this order"})
		return
	}

	result, err := h.DB.Exec(`
		INSERT INTO return_requests (order_id, status, reason, description, images, requested_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		input.OrderID, status.ReturnRequested, input.Reason, input.Description, input.Images, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create return request"})
		return
	}
	returnID, _ := result.LastInsertId()

	h.notifyReturnUpdate(returnID, status.ReturnRequested, "", 0)

	c.JSON(http.StatusCreated, gin.H{"message": "Return request created", "returnId": returnID})
}

//
// --- Seller: Returns Workflow ---
//

// GetSellerReturns is the handler for GET /v1/seller/returns
// Lists return requests on orders containing this seller's items. Optional
// ?status= filter.
func (h *Handlers) GetSellerReturns(c *gin.Context) {
	sellerID := c.GetInt64("sellerID")

	query := `
		SELECT DISTINCT r.id, r.order_id, r.status, r.reason, r.description, r.images,
		       r.qc_condition, r.qc_comments, r.resolution_reason, r.refund_amount, r.refund_id,
		       r.requested_at, r.resolved_at, o.order_number
		FROM return_requests r
		JOIN orders o ON r.order_id = o.id
		JOIN order_items oi ON oi.order_id = o.id
		WHERE oi.seller_id = ?`
	args := []any{sellerID}
	if s := c.Query("status"); s != "" {
		query += " AND r.status = ?"
		args = append(args, s)
	}
	query += " ORDER BY r.requested_at DESC"

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	type sellerReturn struct {
		models.ReturnRequest
		OrderNumber string `json:"orderNumber"`
	}

	returns := []sellerReturn{}
	for rows.Next() {
		var r sellerReturn
		if err := rows.Scan(
			&r.ID, &r.OrderID, &r.Status, &r.Reason, &r.Description, &r.Images,
			&r.QCCondition, &r.QCComments, &r.ResolutionReason, &r.RefundAmount, &r.RefundID,
			&r.RequestedAt, &r.ResolvedAt, &r.OrderNumber,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan return row"})
			return
		}
		returns = append(returns, r)
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating return rows"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"returns": returns})
}

// UpdateReturnStatusInput defines the JSON for PUT /v1/seller/returns/:id.
// Which fields matter depends on the target status: rejection needs a
// reason, the quality steps need QC fields, refunded takes an optional
// amount that defaults to the order total.
type UpdateReturnStatusInput struct {
	Status           string   `json:"status" binding:"required"`
	ResolutionReason string   `json:"resolutionReason"`
	QCCondition      string   `json:"qcCondition"`
	QCComments       string   `json:"qcComments"`
	RefundAmount     *float64 `json:"refundAmount"`
}

// UpdateReturnStatus is the handler for PUT /v1/seller/returns/:id
// Each transition is checked against the returns machine; jumping straight
// from requested to refunded is a 422, no matter what the client sends.
func (h *Handlers) UpdateReturnStatus(c *gin.Context) {
	sellerID := c.GetInt64("sellerID")
	returnIDStr := c.Param("id")

	var input UpdateReturnStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Per-status payload contract, checked before touching the row.
	switch input.Status {
	case status.ReturnRejected:
		if input.ResolutionReason == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "resolutionReason is required when rejecting"})
			return
		}
	case status.ReturnQualityPassed, status.ReturnQualityFailed:
		if input.QCCondition == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "qcCondition is required for a quality decision"})
			return
		}
	}
	if input.RefundAmount != nil && *input.RefundAmount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refundAmount must be positive"})
		return
	}

	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	// Lock the return row and make sure this seller is involved.
	var returnID, orderID int64
	var from string
	err = tx.QueryRow(`
		SELECT r.id, r.order_id, r.status
		FROM return_requests r
		WHERE r.id = ? AND EXISTS (
			SELECT 1 FROM order_items oi WHERE oi.order_id = r.order_id AND oi.seller_id = ?
		)
		FOR UPDATE`, returnIDStr, sellerID).Scan(&returnID, &orderID, &from)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Return request not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}

	if err := status.CanTransitionReturn(from, input.Status); err != nil {
		if err == status.ErrUnknownStatus {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	var refundAmount float64
	var refundID sql.NullString

	switch input.Status {
	case status.ReturnRejected:
		_, err = tx.Exec(`
			UPDATE return_requests
			SET status = ?, resolution_reason = ?, resolved_at = ?
			WHERE id = ?`,
			input.Status, input.ResolutionReason, now, returnID)

	case status.ReturnReceived:
		// QC fields are optional here; the inspection proper happens at
		// the quality step.
		_, err = tx.Exec(`
			UPDATE return_requests
			SET status = ?, qc_condition = COALESCE(NULLIF(?, ''), qc_condition), qc_comments = COALESCE(NULLIF(?, ''), qc_comments)
			WHERE id = ?`,
			input.Status, input.QCCondition, input.QCComments, returnID)

	case status.ReturnQualityPassed, status.ReturnQualityFailed:
		_, err = tx.Exec(`
			UPDATE return_requests
			SET status = ?, qc_condition = ?, qc_comments = ?
			WHERE id = ?`,
			input.Status, input.QCCondition, input.QCComments, returnID)

	case status.ReturnRefunded:
		var paymentMethod, paymentStatus string
		var transactionID sql.NullString
		var orderTotal float64
		err = tx.QueryRow(`
			SELECT payment_method, payment_status, transaction_id, total
			FROM orders WHERE id = ? FOR UPDATE`, orderID).
			Scan(&paymentMethod, &paymentStatus, &transactionID, &orderTotal)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
			return
		}

		refundAmount = orderTotal
		if input.RefundAmount != nil {
			refundAmount = *input.RefundAmount
		}
		if refundAmount > orderTotal {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Refund cannot exceed the order total"})
			return
		}

		// Razorpay-paid orders get a gateway refund; COD refunds are
		// settled out of band, the record still carries the amount.
		if paymentMethod == models.PaymentMethodRazorpay && paymentStatus == models.PaymentStatusPaid && transactionID.Valid {
			id, gwErr := h.Gateway.Refund(transactionID.String, refundAmount, "Return for order")
			if gwErr != nil {
				h.Log.Error("gateway refund failed", zap.Int64("orderId", orderID), zap.Error(gwErr))
				c.JSON(http.StatusBadGateway, gin.H{"error": "Payment gateway refused the refund"})
				return
			}
			refundID = sql.NullString{String: id, Valid: true}
		}

		_, err = tx.Exec(`
			UPDATE return_requests
			SET status = ?, refund_amount = ?, refund_id = ?, resolved_at = ?
			WHERE id = ?`,
			input.Status, refundAmount, refundID, now, returnID)
		if err == nil {
			// Close the loop on the order itself.
			_, err = tx.Exec(`
				UPDATE orders SET status = ?, payment_status = ?, updated_at = ?
				WHERE id = ?`,
				status.OrderReturned, models.PaymentStatusRefunded, now, orderID)
		}
		if err == nil {
			err = h.appendOrderEvent(tx, orderID, status.OrderReturned, statusLines[status.OrderReturned])
		}

	default: // approved
		_, err = tx.Exec("UPDATE return_requests SET status = ? WHERE id = ?", input.Status, returnID)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update return request"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	h.notifyReturnUpdate(returnID, input.Status, input.ResolutionReason, refundAmount)

	c.JSON(http.StatusOK, gin.H{"message": "Return status updated", "status": input.Status})
}

// notifyReturnUpdate emails the customer and writes an in-app notification
// after a return transition. Failures are logged and swallowed.
func (h *Handlers) notifyReturnUpdate(returnID int64, newStatus, reason string, refundAmount float64) {
	var userID int64
	var orderNumber, customerName, customerEmail string
	query := `
		SELECT u.id, o.order_number, u.full_name, u.email
		FROM return_requests r
		JOIN orders o ON r.order_id = o.id
		JOIN users u ON o.user_id = u.id
		WHERE r.id = ?`
	if err := h.DB.QueryRow(query, returnID).Scan(&userID, &orderNumber, &customerName, &customerEmail); err != nil {
		h.Log.Warn("return notify lookup failed", zap.Int64("returnId", returnID), zap.Error(err))
		return
	}

	if err := h.addNotification(h.DB, userID, "return", "Return for order "+orderNumber+" is now "+newStatus); err != nil {
		h.Log.Warn("return notification insert failed", zap.Error(err))
	}

	subject, body, err := email.RenderReturnMail(email.ReturnMail{
		CustomerName: customerName,
		OrderNumber:  orderNumber,
		Status:       newStatus,
		Reason:       reason,
		RefundAmount: refundAmount,
	})
	if err != nil {
		h.Log.Error("render return mail", zap.Error(err))
		return
	}
	h.sendMail(customerEmail, subject, body)
}
