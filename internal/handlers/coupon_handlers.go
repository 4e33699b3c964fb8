package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/bazario/bazario-golang/internal/coupons"
	"github.com/bazario/bazario-golang/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Coupon Validation (Customer) ---
//

// ValidateCouponInput defines the JSON for POST /v1/coupons/validate
type ValidateCouponInput struct {
	Code     string  `json:"code" binding:"required"`
	Subtotal float64 `json:"subtotal" binding:"required,gt=0"`
}

// ValidateCoupon is the handler for POST /v1/coupons/validate
// It answers with the discount the coupon would grant right now. The
// authoritative redemption happens inside the checkout transaction.
func (h *Handlers) ValidateCoupon(c *gin.Context) {
	var input ValidateCouponInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	coupon, err := h.fetchCoupon(input.Code)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Coupon not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to look up coupon"})
		return
	}

	if err := coupons.CheckEligibility(coupon, input.Subtotal, time.Now()); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"coupon":   coupon,
		"discount": coupons.Discount(coupon, input.Subtotal),
	})
}

// fetchCoupon loads one coupon by code.
func (h *Handlers) fetchCoupon(code string) (models.Coupon, error) {
	var cp models.Coupon
	query := `
		SELECT id, code, type, value, max_discount, min_order_value, usage_limit, used_count, valid_from, valid_until, active, created_at
		FROM coupons WHERE code = ?`
	err := h.DB.QueryRow(query, code).Scan(
		&cp.ID, &cp.Code, &cp.Type, &cp.Value, &cp.MaxDiscount, &cp.MinOrderValue,
		&cp.UsageLimit, &cp.UsedCount, &cp.ValidFrom, &cp.ValidUntil, &cp.Active, &cp.CreatedAt,
	)
	return cp, err
}

// redeemCoupon burns one use of a limited coupon inside the checkout
// transaction. The conditional UPDATE makes over-redemption impossible:
// two concurrent checkouts race on the row and the loser gets zero
// affected rows.
func redeemCoupon(tx *sql.Tx, code string) (bool, error) {
	result, err := tx.Exec(`
		UPDATE coupons
		SET used_count = used_count + 1
		WHERE code = ? AND active = 1 AND (usage_limit = 0 OR used_count < usage_limit)`,
		code)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

//
// --- Coupon Management (Admin) ---
//

// CouponInput defines the JSON for creating a coupon.
type CouponInput struct {
	Code          string  `json:"code" binding:"required,alphanum,uppercase"`
	Type          string  `json:"type" binding:"required,oneof=percent flat"`
	Value         float64 `json:"value" binding:"required,gt=0"`
	MaxDiscount   float64 `json:"maxDiscount" binding:"gte=0"`
	MinOrderValue float64 `json:"minOrderValue" binding:"gte=0"`
	UsageLimit    int     `json:"usageLimit" binding:"gte=0"`
	ValidFrom     string  `json:"validFrom" binding:"required"`  // RFC 3339
	ValidUntil    string  `json:"validUntil" binding:"required"` // RFC 3339
}

// CreateCoupon is the handler for POST /v1/admin/coupons
func (h *Handlers) CreateCoupon(c *gin.Context) {
	var input CouponInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	validFrom, err1 := time.Parse(time.RFC3339, input.ValidFrom)
	validUntil, err2 := time.Parse(time.RFC3339, input.ValidUntil)
	if err1 != nil || err2 != nil || !validUntil.After(validFrom) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validFrom/validUntil must be RFC 3339 and in order"})
		return
	}
	if input.Type == models.CouponTypePercent && input.Value > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Percent value cannot exceed 100"})
		return
	}

	query := `
		INSERT INTO coupons
		(code, type, value, max_discount, min_order_value, usage_limit, used_count, valid_from, valid_until, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?, 1, ?)`
	result, err := h.DB.Exec(query,
		input.Code, input.Type, input.Value, input.MaxDiscount, input.MinOrderValue,
		input.UsageLimit, validFrom, validUntil, time.Now())
	if err != nil {
		if isDuplicateEntry(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Coupon code already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create coupon"})
		return
	}
	couponID, _ := result.LastInsertId()

	c.JSON(http.StatusCreated, gin.H{"message": "Coupon created", "couponId": couponID})
}

// ListCoupons is the handler for GET /v1/admin/coupons
// Filters: ?active=1, ?type=percent|flat, ?code=SAVE (prefix).
func (h *Handlers) ListCoupons(c *gin.Context) {
	builder := sq.Select(
		"id", "code", "type", "value", "max_discount", "min_order_value",
		"usage_limit", "used_count", "valid_from", "valid_until", "active", "created_at").
		From("coupons").
		OrderBy("created_at DESC")

	if active := c.Query("active"); active != "" {
		if v, err := strconv.Atoi(active); err == nil {
			builder = builder.Where(sq.Eq{"active": v})
		}
	}
	if t := c.Query("type"); t != "" {
		builder = builder.Where(sq.Eq{"type": t})
	}
	if code := c.Query("code"); code != "" {
		builder = builder.Where(sq.Like{"code": code + "%"})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build query"})
		return
	}

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	couponList := []models.Coupon{}
	for rows.Next() {
		var cp models.Coupon
		if err := rows.Scan(
			&cp.ID, &cp.Code, &cp.Type, &cp.Value, &cp.MaxDiscount, &cp.MinOrderValue,
			&cp.UsageLimit, &cp.UsedCount, &cp.ValidFrom, &cp.ValidUntil, &cp.Active, &cp.CreatedAt,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan coupon row"})
			return
		}
		couponList = append(couponList, cp)
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating coupon rows"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"coupons": couponList})
}

// DeactivateCoupon is the handler for PATCH /v1/admin/coupons/:id/deactivate
func (h *Handlers) DeactivateCoupon(c *gin.Context) {
	couponID := c.Param("id")

	result, err := h.DB.Exec("UPDATE coupons SET active = 0 WHERE id = ? AND active = 1", couponID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate coupon"})
		return
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check affected rows"})
		return
	}
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Coupon not found or already inactive"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Coupon deactivated"})
}
