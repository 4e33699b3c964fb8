package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/bazario/bazario-golang/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Public: Subscription Plans ---
//

// GetSubscriptionPlans is the handler for GET /v1/plans
func (h *Handlers) GetSubscriptionPlans(c *gin.Context) {
	query := `
		SELECT id, name, price, commission_rate, features, active, created_at
		FROM subscription_plans
		WHERE active = 1
		ORDER BY price ASC`

	rows, err := h.DB.Query(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	plans := []models.SubscriptionPlan{}
	for rows.Next() {
		var p models.SubscriptionPlan
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.CommissionRate, &p.Features, &p.Active, &p.CreatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan plan row"})
			return
		}
		plans = append(plans, p)
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating plan rows"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

//
// --- Admin: Plan Management ---
//

// PlanInput defines the JSON for creating/updating a plan.
type PlanInput struct {
	Name           string  `json:"name" binding:"required"`
	Price          float64 `json:"price" binding:"gte=0"`
	CommissionRate float64 `json:"commissionRate" binding:"gte=0,lte=100"`
	Features       string  `json:"features"` // JSON array of strings
}

// CreatePlan is the handler for POST /v1/admin/plans
func (h *Handlers) CreatePlan(c *gin.Context) {
	var input PlanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Features == "" {
		input.Features = "[]"
	}

	result, err := h.DB.Exec(`
		INSERT INTO subscription_plans (name, price, commission_rate, features, active, created_at)
		VALUES (?, ?, ?, ?, 1, ?)`,
		input.Name, input.Price, input.CommissionRate, input.Features, time.Now())
	if err != nil {
		if isDuplicateEntry(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "A plan with this name already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create plan"})
		return
	}
	planID, _ := result.LastInsertId()

	c.JSON(http.StatusCreated, gin.H{"message": "Plan created", "planId": planID})
}

// UpdatePlan is the handler for PUT /v1/admin/plans/:id
func (h *Handlers) UpdatePlan(c *gin.Context) {
	planID := c.Param("id")

	var input PlanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Features == "" {
		input.Features = "[]"
	}

	result, err := h.DB.Exec(`
		UPDATE subscription_plans
		SET name = ?, price = ?, commission_rate = ?, features = ?
		WHERE id = ?`,
		input.Name, input.Price, input.CommissionRate, input.Features, planID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update plan"})
		return
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check affected rows"})
		return
	}
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Plan updated"})
}

// DeactivatePlan is the handler for PATCH /v1/admin/plans/:id/deactivate
// Existing subscriptions run to their expiry; the plan just stops being
// offered.
func (h *Handlers) DeactivatePlan(c *gin.Context) {
	planID := c.Param("id")

	result, err := h.DB.Exec("UPDATE subscription_plans SET active = 0 WHERE id = ? AND active = 1", planID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate plan"})
		return
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check affected rows"})
		return
	}
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found or already inactive"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Plan deactivated"})
}

//
// --- Seller: Subscription ---
//

// SubscribeInput defines the JSON for subscribing to a plan.
type SubscribeInput struct {
	PlanID int64 `json:"planId" binding:"required"`
}

// SubscribeToPlan is the handler for POST /v1/seller/subscribe
// Starts a 30-day subscription and points the seller profile at the plan.
func (h *Handlers) SubscribeToPlan(c *gin.Context) {
	sellerID := c.GetInt64("sellerID")

	var input SubscribeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var active bool
	err := h.DB.QueryRow("SELECT active FROM subscription_plans WHERE id = ?", input.PlanID).Scan(&active)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	if !active {
		c.JSON(http.StatusConflict, gin.H{"error": "Plan is no longer offered"})
		return
	}

	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	now := time.Now()
	expiresAt := now.AddDate(0, 0, 30)
	_, err = tx.Exec(`
		INSERT INTO seller_subscriptions (seller_id, plan_id, started_at, expires_at)
		VALUES (?, ?, ?, ?)`,
		sellerID, input.PlanID, now, expiresAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subscription"})
		return
	}

	_, err = tx.Exec("UPDATE sellers SET plan_id = ?, updated_at = ? WHERE id = ?", input.PlanID, now, sellerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update seller plan"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Subscribed",
		"planId":    input.PlanID,
		"expiresAt": expiresAt,
	})
}
