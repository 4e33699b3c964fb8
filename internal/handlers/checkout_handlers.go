package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bazario/bazario-golang/internal/coupons"
	"github.com/bazario/bazario-golang/internal/email"
	"github.com/bazario/bazario-golang/internal/models"
	"github.com/bazario/bazario-golang/internal/pricing"
	"github.com/bazario/bazario-golang/internal/status"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

//
// --- Checkout (Customer-Only) ---
//

// CheckoutInput defines the JSON for POST /v1/customer/orders
type CheckoutInput struct {
	ShipName    string `json:"shipName" binding:"required"`
	ShipPhone   string `json:"shipPhone" binding:"required"`
	ShipAddress string `json:"shipAddress" binding:"required"`
	ShipCity    string `json:"shipCity" binding:"required"`
	ShipState   string `json:"shipState" binding:"required"`
	ShipPincode string `json:"shipPincode" binding:"required,len=6"`

	PaymentMethod string `json:"paymentMethod" binding:"required,oneof=razorpay cod"`
	CouponCode    string `json:"couponCode"`
}

// checkoutLine is a helper struct for cart rows fetched during checkout.
type checkoutLine struct {
	ProductID int64
	SellerID  int64
	Name      string
	SKU       sql.NullString
	Image     sql.NullString
	Price     float64
	Quantity  int
	Stock     int
}

// Checkout is the handler for POST /v1/customer/orders
// Stock check, coupon redemption, pricing and the order snapshot all happen
// in one serializable transaction, with the product rows locked so
// concurrent checkouts cannot oversell.
func (h *Handlers) Checkout(c *gin.Context) {
	userID := c.GetInt64("userID")

	var input CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.DB.BeginTx(c, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	// 1. --- Find the cart ---
	var cartID int64
	err = tx.QueryRow("SELECT id FROM carts WHERE user_id = ?", userID).Scan(&cartID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Your cart is empty"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find cart"})
		return
	}

	// 2. --- Load cart lines and lock the product rows ---
	query := `
		SELECT ci.product_id, p.seller_id, p.name, p.sku, p.images, p.price, ci.quantity, p.stock_quantity
		FROM cart_items ci
		JOIN products p ON ci.product_id = p.id
		WHERE ci.cart_id = ? AND p.status = ?
		FOR UPDATE`
	rows, err := tx.Query(query, cartID, models.ProductStatusActive)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get cart items"})
		return
	}

	var lines []checkoutLine
	var quoteLines []pricing.Line
	for rows.Next() {
		var l checkoutLine
		if err := rows.Scan(&l.ProductID, &l.SellerID, &l.Name, &l.SKU, &l.Image, &l.Price, &l.Quantity, &l.Stock); err != nil {
			rows.Close()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan cart item"})
			return
		}
		lines = append(lines, l)
		quoteLines = append(quoteLines, pricing.Line{UnitPrice: l.Price, Quantity: l.Quantity})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating cart items"})
		return
	}
	if len(lines) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Your cart contains no active products"})
		return
	}

	// 3. --- Stock check ---
	for _, l := range lines {
		if l.Stock < l.Quantity {
			c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("Not enough stock for %q", l.Name)})
			return
		}
	}

	// 4. --- Coupon: validate then atomically redeem ---
	var discount float64
	var couponCode sql.NullString
	if input.CouponCode != "" {
		code := strings.ToUpper(strings.TrimSpace(input.CouponCode))

		coupon, err := h.fetchCoupon(code)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Coupon not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up coupon"})
			return
		}

		subtotal := pricing.Quote(h.pricingRules(), quoteLines, 0).Subtotal
		if err := coupons.CheckEligibility(coupon, subtotal, time.Now()); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}

		redeemed, err := redeemCoupon(tx, code)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to redeem coupon"})
			return
		}
		if !redeemed {
			c.JSON(http.StatusConflict, gin.H{"error": "Coupon usage limit reached"})
			return
		}

		discount = coupons.Discount(coupon, subtotal)
		couponCode = sql.NullString{String: code, Valid: true}
	}

	// 5. --- Price the order ---
	quote := pricing.Quote(h.pricingRules(), quoteLines, discount)

	// 6. --- Insert the order snapshot ---
	now := time.Now()
	orderNumber := newOrderNumber()
	orderQuery := `
		INSERT INTO orders
		(order_number, user_id, status,
		 ship_name, ship_phone, ship_address, ship_city, ship_state, ship_pincode,
		 payment_method, payment_status,
		 subtotal, platform_fee, shipping_fee, tax, discount, total, coupon_code,
		 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.Exec(orderQuery,
		orderNumber, userID, status.OrderPending,
		input.ShipName, input.ShipPhone, input.ShipAddress, input.ShipCity, input.ShipState, input.ShipPincode,
		input.PaymentMethod, models.PaymentStatusUnpaid,
		quote.Subtotal, quote.PlatformFee, quote.ShippingFee, quote.Tax, quote.Discount, quote.Total, couponCode,
		now, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}
	orderID, err := result.LastInsertId()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get new order ID"})
		return
	}

	// 7. --- Order items + stock decrement ---
	itemQuery := `
		INSERT INTO order_items (order_id, product_id, seller_id, name, sku, unit_price, quantity, image, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stockQuery := "UPDATE products SET stock_quantity = stock_quantity - ? WHERE id = ?"
	for _, l := range lines {
		if _, err := tx.Exec(itemQuery, orderID, l.ProductID, l.SellerID, l.Name, l.SKU, l.Price, l.Quantity, l.Image, now); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save order item"})
			return
		}
		if _, err := tx.Exec(stockQuery, l.Quantity, l.ProductID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deduct stock"})
			return
		}
	}

	// 8. --- Seed the timeline ---
	if err := h.appendOrderEvent(tx, orderID, status.OrderPending, "Order placed"); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record order event"})
		return
	}

	// 9. --- Clear the cart ---
	if _, err := tx.Exec("DELETE FROM cart_items WHERE cart_id = ?", cartID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
		return
	}

	// 10. --- Commit, then notify ---
	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	h.sendOrderStatusMail(orderID, status.OrderPending,
		fmt.Sprintf("We received your order %s. We'll confirm it shortly.", orderNumber))
	if err := h.addNotification(h.DB, userID, "order", "Order "+orderNumber+" placed"); err != nil {
		h.Log.Warn("checkout notification failed", zap.Error(err))
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"orderNumber": orderNumber,
		"orderId":     orderID,
		"pricing":     quote,
	})
}

// newOrderNumber builds a customer-facing order identifier.
func newOrderNumber() string {
	return "ORD-" + strings.ToUpper(uuid.NewString()[:8])
}

// sendOrderStatusMail emails the order's customer about a status change.
// Lookup and dispatch failures are logged and swallowed.
func (h *Handlers) sendOrderStatusMail(orderID int64, newStatus, line string) {
	var orderNumber, customerName, customerEmail string
	var total float64
	var awb, courier sql.NullString
	query := `
		SELECT o.order_number, o.total, o.awb_code, o.courier_name, u.full_name, u.email
		FROM orders o JOIN users u ON o.user_id = u.id
		WHERE o.id = ?`
	err := h.DB.QueryRow(query, orderID).Scan(&orderNumber, &total, &awb, &courier, &customerName, &customerEmail)
	if err != nil {
		h.Log.Warn("order mail lookup failed", zap.Int64("orderId", orderID), zap.Error(err))
		return
	}

	subject, body, err := email.RenderOrderMail(email.OrderMail{
		CustomerName: customerName,
		OrderNumber:  orderNumber,
		Status:       newStatus,
		StatusLine:   line,
		Total:        total,
		TrackingID:   awb.String,
		Carrier:      courier.String,
	})
	if err != nil {
		h.Log.Error("render order mail", zap.Error(err))
		return
	}
	h.sendMail(customerEmail, subject, body)
}
