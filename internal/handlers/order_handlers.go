package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/bazario/bazario-golang/internal/models"
	"github.com/bazario/bazario-golang/internal/shipping"
	"github.com/bazario/bazario-golang/internal/status"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusLines are the customer-facing descriptions written to the order
// timeline and the status emails.
var statusLines = map[string]string{
	status.OrderConfirmed:      "Your order has been confirmed.",
	status.OrderProcessing:     "The seller is preparing your order.",
	status.OrderReadyForPickup: "Your order is packed and ready for courier pickup.",
	status.OrderPickup:         "The courier has picked up your order.",
	status.OrderShipped:        "Your order is on its way.",
	status.OrderOutForDelivery: "Your order is out for delivery.",
	status.OrderDelivered:      "Your order has been delivered.",
	status.OrderCancelled:      "Your order has been cancelled.",
	status.OrderReturned:       "Your return has been processed.",
}

// shipmentInfo carries the tracking data a shipped transition must have.
type shipmentInfo struct {
	TrackingID string
	Carrier    string
	LabelURL   string
	PickupAt   time.Time
}

// transitionOrder moves one order through the state machine inside a
// transaction. It locks the row, checks the adjacency table, applies the
// side effects a transition implies (restock on cancel, COD settlement on
// delivery, carrier fields on ship) and appends the timeline event.
//
// Returned errors: sql.ErrNoRows when the order does not exist,
// status.ErrIllegalTransition / ErrUnknownStatus / ErrShipmentDataNeeded
// from the machine, anything else is a database failure.
func (h *Handlers) transitionOrder(orderID int64, to string, ship *shipmentInfo) error {
	tx, err := h.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var from, paymentMethod, paymentStatus string
	err = tx.QueryRow(
		"SELECT status, payment_method, payment_status FROM orders WHERE id = ? FOR UPDATE",
		orderID).Scan(&from, &paymentMethod, &paymentStatus)
	if err != nil {
		return err
	}

	if err := status.CanTransitionOrder(from, to); err != nil {
		return err
	}

	now := time.Now()
	switch to {
	case status.OrderShipped:
		if ship == nil {
			return status.ErrShipmentDataNeeded
		}
		if err := status.ValidateShipment(ship.TrackingID, ship.Carrier); err != nil {
			return err
		}
		var labelURL sql.NullString
		if ship.LabelURL != "" {
			labelURL = sql.NullString{String: ship.LabelURL, Valid: true}
		}
		var pickupAt sql.NullTime
		if !ship.PickupAt.IsZero() {
			pickupAt = sql.NullTime{Time: ship.PickupAt, Valid: true}
		}
		_, err = tx.Exec(`
			UPDATE orders
			SET status = ?, awb_code = ?, courier_name = ?, label_url = ?, pickup_scheduled_at = ?, updated_at = ?
			WHERE id = ?`,
			to, ship.TrackingID, ship.Carrier, labelURL, pickupAt, now, orderID)

	case status.OrderCancelled:
		// Put the reserved stock back on the shelf.
		_, err = tx.Exec(`
			UPDATE products p
			JOIN order_items oi ON oi.product_id = p.id
			SET p.stock_quantity = p.stock_quantity + oi.quantity
			WHERE oi.order_id = ?`, orderID)
		if err == nil {
			_, err = tx.Exec("UPDATE orders SET status = ?, updated_at = ? WHERE id = ?", to, now, orderID)
		}

	case status.OrderDelivered:
		if paymentMethod == models.PaymentMethodCOD && paymentStatus == models.PaymentStatusUnpaid {
			// Cash changes hands at the door.
			_, err = tx.Exec(`
				UPDATE orders SET status = ?, payment_status = ?, paid_at = ?, updated_at = ?
				WHERE id = ?`,
				to, models.PaymentStatusPaid, now, now, orderID)
		} else {
			_, err = tx.Exec("UPDATE orders SET status = ?, updated_at = ? WHERE id = ?", to, now, orderID)
		}

	default:
		_, err = tx.Exec("UPDATE orders SET status = ?, updated_at = ? WHERE id = ?", to, now, orderID)
	}
	if err != nil {
		return err
	}

	if err := h.appendOrderEvent(tx, orderID, to, statusLines[to]); err != nil {
		return err
	}

	return tx.Commit()
}

// respondTransitionError maps state machine errors onto HTTP statuses.
func respondTransitionError(c *gin.Context, err error) {
	switch err {
	case sql.ErrNoRows:
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	case status.ErrIllegalTransition:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case status.ErrShipmentDataNeeded:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case status.ErrUnknownStatus:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order status"})
	}
}

// notifyOrderTransition sends the status email and the in-app notification
// after a committed transition.
func (h *Handlers) notifyOrderTransition(orderID int64, to string) {
	h.sendOrderStatusMail(orderID, to, statusLines[to])

	var userID int64
	var orderNumber string
	err := h.DB.QueryRow("SELECT user_id, order_number FROM orders WHERE id = ?", orderID).Scan(&userID, &orderNumber)
	if err != nil {
		h.Log.Warn("order transition notify lookup failed", zap.Int64("orderId", orderID), zap.Error(err))
		return
	}
	if err := h.addNotification(h.DB, userID, "order", "Order "+orderNumber+" is now "+to); err != nil {
		h.Log.Warn("order transition notification failed", zap.Error(err))
	}
}

//
// --- Customer: Order History ---
//

// GetMyOrders is the handler for GET /v1/customer/orders
func (h *Handlers) GetMyOrders(c *gin.Context) {
	userID := c.GetInt64("userID")

	query := `
		SELECT id, order_number, user_id, status,
		       ship_name, ship_phone, ship_address, ship_city, ship_state, ship_pincode,
		       payment_method, payment_status, gateway_order_id, transaction_id, paid_at,
		       subtotal, platform_fee, shipping_fee, tax, discount, total, coupon_code,
		       awb_code, courier_name, label_url, pickup_scheduled_at,
		       created_at, updated_at
		FROM orders
		WHERE user_id = ?
		ORDER BY created_at DESC`

	rows, err := h.DB.Query(query, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	orders, err := scanOrders(rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan order row"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetOrderDetails is the handler for GET /v1/customer/orders/:id
// Returns the order with its items, the append-only timeline and the return
// request, if one exists.
func (h *Handlers) GetOrderDetails(c *gin.Context) {
	userID := c.GetInt64("userID")
	orderID := c.Param("id")

	var o models.Order
	query := `
		SELECT id, order_number, user_id, status,
		       ship_name, ship_phone, ship_address, ship_city, ship_state, ship_pincode,
		       payment_method, payment_status, gateway_order_id, transaction_id, paid_at,
		       subtotal, platform_fee, shipping_fee, tax, discount, total, coupon_code,
		       awb_code, courier_name, label_url, pickup_scheduled_at,
		       created_at, updated_at
		FROM orders
		WHERE id = ? AND user_id = ?`
	err := h.DB.QueryRow(query, orderID, userID).Scan(orderScanDest(&o)...)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}

	items, err := h.fetchOrderItems(o.ID, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order items"})
		return
	}

	timeline, err := h.fetchOrderTimeline(o.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order timeline"})
		return
	}

	response := gin.H{"order": o, "items": items, "timeline": timeline}

	var ret models.ReturnRequest
	retQuery := `
		SELECT id, order_id, status, reason, description, images,
		       qc_condition, qc_comments, resolution_reason, refund_amount, refund_id,
		       requested_at, resolved_at
		FROM return_requests WHERE order_id = ?
		ORDER BY requested_at DESC LIMIT 1`
	err = h.DB.QueryRow(retQuery, o.ID).Scan(
		&ret.ID, &ret.OrderID, &ret.Status, &ret.Reason, &ret.Description, &ret.Images,
		&ret.QCCondition, &ret.QCComments, &ret.ResolutionReason, &ret.RefundAmount, &ret.RefundID,
		&ret.RequestedAt, &ret.ResolvedAt,
	)
	if err == nil {
		response["returnRequest"] = ret
	} else if err != sql.ErrNoRows {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch return request"})
		return
	}

	c.JSON(http.StatusOK, response)
}

//
// --- Seller: Order Fulfilment ---
//

// GetSellerOrders is the handler for GET /v1/seller/orders
// Lists orders that contain at least one of this seller's items. Optional
// ?status= filter.
func (h *Handlers) GetSellerOrders(c *gin.Context) {
	sellerID := c.GetInt64("sellerID")

	query := `
		SELECT DISTINCT o.id, o.order_number, o.user_id, o.status,
		       o.ship_name, o.ship_phone, o.ship_address, o.ship_city, o.ship_state, o.ship_pincode,
		       o.payment_method, o.payment_status, o.gateway_order_id, o.transaction_id, o.paid_at,
		       o.subtotal, o.platform_fee, o.shipping_fee, o.tax, o.discount, o.total, o.coupon_code,
		       o.awb_code, o.courier_name, o.label_url, o.pickup_scheduled_at,
		       o.created_at, o.updated_at
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		WHERE oi.seller_id = ?`
	args := []any{sellerID}
	if s := c.Query("status"); s != "" {
		query += " AND o.status = ?"
		args = append(args, s)
	}
	query += " ORDER BY o.created_at DESC"

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	orders, err := scanOrders(rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan order row"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// sellerOwnsOrder checks that an order carries at least one item belonging
// to the seller.
func (h *Handlers) sellerOwnsOrder(orderID string, sellerID int64) (int64, bool, error) {
	var id int64
	err := h.DB.QueryRow(`
		SELECT o.id FROM orders o
		WHERE o.id = ? AND EXISTS (
			SELECT 1 FROM order_items oi WHERE oi.order_id = o.id AND oi.seller_id = ?
		)`, orderID, sellerID).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// UpdateOrderStatusInput defines the JSON for a seller status update.
// Tracking fields are required only for the 'shipped' transition.
type UpdateOrderStatusInput struct {
	Status     string `json:"status" binding:"required"`
	TrackingID string `json:"trackingId"`
	Carrier    string `json:"carrier"`
}

// UpdateOrderStatus is the handler for PATCH /v1/seller/orders/:id/status
// The transition is validated against the state machine server-side; the
// client cannot jump states or skip the tracking data for 'shipped'.
func (h *Handlers) UpdateOrderStatus(c *gin.Context) {
	sellerID := c.GetInt64("sellerID")

	var input UpdateOrderStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	orderID, owns, err := h.sellerOwnsOrder(c.Param("id"), sellerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	if !owns {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	var ship *shipmentInfo
	if input.Status == status.OrderShipped {
		ship = &shipmentInfo{TrackingID: input.TrackingID, Carrier: input.Carrier}
	}

	if err := h.transitionOrder(orderID, input.Status, ship); err != nil {
		respondTransitionError(c, err)
		return
	}

	h.notifyOrderTransition(orderID, input.Status)

	c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "status": input.Status})
}

// ShipOrder is the handler for POST /v1/seller/orders/:id/ship
// Books a Shiprocket shipment for the order and applies the 'shipped'
// transition with the AWB the carrier assigned.
func (h *Handlers) ShipOrder(c *gin.Context) {
	sellerID := c.GetInt64("sellerID")

	orderID, owns, err := h.sellerOwnsOrder(c.Param("id"), sellerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	if !owns {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	var o models.Order
	query := `
		SELECT order_number, status, ship_name, ship_phone, ship_address, ship_city, ship_state, ship_pincode,
		       payment_method, subtotal
		FROM orders WHERE id = ?`
	err = h.DB.QueryRow(query, orderID).Scan(
		&o.OrderNumber, &o.Status, &o.ShipName, &o.ShipPhone, &o.ShipAddress,
		&o.ShipCity, &o.ShipState, &o.ShipPincode, &o.PaymentMethod, &o.Subtotal)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}

	// Fail fast before calling the carrier.
	if err := status.CanTransitionOrder(o.Status, status.OrderShipped); err != nil {
		respondTransitionError(c, err)
		return
	}

	var storeName string
	if err := h.DB.QueryRow("SELECT store_name FROM sellers WHERE id = ?", sellerID).Scan(&storeName); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch seller"})
		return
	}

	shipment, err := h.Carrier.CreateShipment(c, shipping.ShipmentRequest{
		OrderNumber:   o.OrderNumber,
		PickupName:    storeName,
		Name:          o.ShipName,
		Phone:         o.ShipPhone,
		Address:       o.ShipAddress,
		City:          o.ShipCity,
		State:         o.ShipState,
		Pincode:       o.ShipPincode,
		PaymentMethod: shipping.PaymentMethodFor(o.PaymentMethod),
		SubTotal:      o.Subtotal,
		WeightKg:      0.5,
	})
	if err != nil {
		h.Log.Error("carrier shipment failed", zap.Int64("orderId", orderID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Carrier refused the shipment"})
		return
	}

	err = h.transitionOrder(orderID, status.OrderShipped, &shipmentInfo{
		TrackingID: shipment.AWBCode,
		Carrier:    shipment.CourierName,
		LabelURL:   shipment.LabelURL,
		PickupAt:   shipment.PickupDate,
	})
	if err != nil {
		respondTransitionError(c, err)
		return
	}

	h.notifyOrderTransition(orderID, status.OrderShipped)

	c.JSON(http.StatusOK, gin.H{
		"message":     "Shipment created",
		"awbCode":     shipment.AWBCode,
		"courierName": shipment.CourierName,
		"labelUrl":    shipment.LabelURL,
	})
}

//
// --- Admin: Order Oversight ---
//

// ForceUpdateOrderStatusInput defines the JSON for the admin override.
type ForceUpdateOrderStatusInput struct {
	Status     string `json:"status" binding:"required"`
	TrackingID string `json:"trackingId"`
	Carrier    string `json:"carrier"`
}

// ForceUpdateOrderStatus is the handler for PATCH /v1/admin/orders/:id/update-status
// Admins skip the ownership check but not the state machine; an illegal
// transition is rejected for them too.
func (h *Handlers) ForceUpdateOrderStatus(c *gin.Context) {
	var input ForceUpdateOrderStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var orderID int64
	if err := h.DB.QueryRow("SELECT id FROM orders WHERE id = ?", c.Param("id")).Scan(&orderID); err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}

	var ship *shipmentInfo
	if input.Status == status.OrderShipped {
		ship = &shipmentInfo{TrackingID: input.TrackingID, Carrier: input.Carrier}
	}

	if err := h.transitionOrder(orderID, input.Status, ship); err != nil {
		respondTransitionError(c, err)
		return
	}

	h.notifyOrderTransition(orderID, input.Status)

	c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "status": input.Status})
}

//
// --- Shared scan helpers ---
//

// orderScanDest returns the scan targets matching the canonical orders
// column list used by every order SELECT in this package.
func orderScanDest(o *models.Order) []any {
	return []any{
		&o.ID, &o.OrderNumber, &o.UserID, &o.Status,
		&o.ShipName, &o.ShipPhone, &o.ShipAddress, &o.ShipCity, &o.ShipState, &o.ShipPincode,
		&o.PaymentMethod, &o.PaymentStatus, &o.GatewayOrderID, &o.TransactionID, &o.PaidAt,
		&o.Subtotal, &o.PlatformFee, &o.ShippingFee, &o.Tax, &o.Discount, &o.Total, &o.CouponCode,
		&o.AWBCode, &o.CourierName, &o.LabelURL, &o.PickupScheduledAt,
		&o.CreatedAt, &o.UpdatedAt,
	}
}

// scanOrders drains an order query into a slice.
func scanOrders(rows *sql.Rows) ([]models.Order, error) {
	orders := []models.Order{}
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(orderScanDest(&o)...); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// fetchOrderItems loads an order's items, optionally restricted to one
// seller (sellerID 0 means all).
func (h *Handlers) fetchOrderItems(orderID, sellerID int64) ([]models.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, seller_id, name, sku, unit_price, quantity, image, created_at
		FROM order_items WHERE order_id = ?`
	args := []any{orderID}
	if sellerID != 0 {
		query += " AND seller_id = ?"
		args = append(args, sellerID)
	}

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(
			&it.ID, &it.OrderID, &it.ProductID, &it.SellerID, &it.Name,
			&it.SKU, &it.UnitPrice, &it.Quantity, &it.Image, &it.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// fetchOrderTimeline loads the append-only event history, oldest first.
func (h *Handlers) fetchOrderTimeline(orderID int64) ([]models.OrderEvent, error) {
	rows, err := h.DB.Query(`
		SELECT id, order_id, status, description, created_at
		FROM order_events WHERE order_id = ?
		ORDER BY created_at ASC, id ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.OrderEvent{}
	for rows.Next() {
		var ev models.OrderEvent
		if err := rows.Scan(&ev.ID, &ev.OrderID, &ev.Status, &ev.Description, &ev.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
