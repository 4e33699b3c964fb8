package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/bazario/bazario-golang/internal/email"
	"github.com/bazario/bazario-golang/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

//
// --- Seller Onboarding ---
//

// RegisterSellerInput defines the JSON for seller registration: the user
// account fields plus the store profile.
type RegisterSellerInput struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Phone    string `json:"phone" binding:"required"`

	StoreName     string `json:"storeName" binding:"required"`
	GSTIN         string `json:"gstin"`
	PickupAddress string `json:"pickupAddress" binding:"required"`
	PickupCity    string `json:"pickupCity" binding:"required"`
	PickupState   string `json:"pickupState" binding:"required"`
	PickupPincode string `json:"pickupPincode" binding:"required,len=6"`
}

// RegisterSeller is the handler for POST /v1/register/seller
// It creates the user account and a pending seller profile in one
// transaction; an admin must approve the profile before selling starts.
func (h *Handlers) RegisterSeller(c *gin.Context) {
	var input RegisterSellerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var password models.Password
	if err := password.Set(input.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	code, err := generateVerificationCode()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate verification code"})
		return
	}

	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	now := time.Now()
	userQuery := `
		INSERT INTO users
		(role, status, email, password_hash, full_name, phone, verification_code, verification_expiry, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.Exec(userQuery,
		models.RoleSeller, models.UserStatusUnverified, input.Email, password.Hash,
		input.FullName, input.Phone, code, now.Add(15*time.Minute), now, now)
	if err != nil {
		if isDuplicateEntry(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
			return
		}
		h.Log.Error("seller registration failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}
	userID, err := result.LastInsertId()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	var gstin sql.NullString
	if input.GSTIN != "" {
		gstin = sql.NullString{String: input.GSTIN, Valid: true}
	}

	sellerQuery := `
		INSERT INTO sellers
		(user_id, store_name, store_slug, status, gstin, pickup_address, pickup_city, pickup_state, pickup_pincode, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.Exec(sellerQuery,
		userID, input.StoreName, slug.Make(input.StoreName), models.SellerStatusPending,
		gstin, input.PickupAddress, input.PickupCity, input.PickupState, input.PickupPincode, now, now)
	if err != nil {
		if isDuplicateEntry(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Store name already taken"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create seller profile"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	h.sendVerificationCode(input.Email, code)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Seller account created. Verify your email; your store will go live once an admin approves it.",
		"userId":  userID,
	})
}

// GetSellerProfile is the handler for GET /v1/seller/profile
func (h *Handlers) GetSellerProfile(c *gin.Context) {
	sellerID := c.GetInt64("sellerID")

	var s models.Seller
	query := `
		SELECT id, user_id, store_name, store_slug, status, gstin,
		       pickup_address, pickup_city, pickup_state, pickup_pincode,
		       plan_id, created_at, updated_at
		FROM sellers WHERE id = ?`
	err := h.DB.QueryRow(query, sellerID).Scan(
		&s.ID, &s.UserID, &s.StoreName, &s.StoreSlug, &s.Status, &s.GSTIN,
		&s.PickupAddress, &s.PickupCity, &s.PickupState, &s.PickupPincode,
		&s.PlanID, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Seller profile not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"seller": s})
}

//
// --- Admin: Seller Approval ---
//

// GetPendingSellers is the handler for GET /v1/admin/sellers/pending
func (h *Handlers) GetPendingSellers(c *gin.Context) {
	query := `
		SELECT s.id, s.user_id, s.store_name, s.store_slug, s.status,
		       s.pickup_city, s.pickup_state, s.created_at, u.email, u.full_name
		FROM sellers s
		JOIN users u ON s.user_id = u.id
		WHERE s.status = ?
		ORDER BY s.created_at ASC`

	rows, err := h.DB.Query(query, models.SellerStatusPending)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	type pendingSeller struct {
		models.Seller
		Email    string `json:"email"`
		FullName string `json:"fullName"`
	}

	var sellers []pendingSeller
	for rows.Next() {
		var s pendingSeller
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.StoreName, &s.StoreSlug, &s.Status,
			&s.PickupCity, &s.PickupState, &s.CreatedAt, &s.Email, &s.FullName,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan seller row"})
			return
		}
		sellers = append(sellers, s)
	}
	if sellers == nil {
		sellers = []pendingSeller{}
	}

	c.JSON(http.StatusOK, gin.H{"sellers": sellers})
}

// ApproveSeller is the handler for PATCH /v1/admin/sellers/:id/approve
func (h *Handlers) ApproveSeller(c *gin.Context) {
	sellerIDStr := c.Param("id")

	result, err := h.DB.Exec(
		`UPDATE sellers SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		models.SellerStatusApproved, time.Now(), sellerIDStr, models.SellerStatusPending)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve seller"})
		return
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check affected rows"})
		return
	}
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Seller not found or not pending approval"})
		return
	}

	h.notifySellerDecision(sellerIDStr, "Your store has been approved. You can start listing products now!",
		"Your Bazario store is live")

	c.JSON(http.StatusOK, gin.H{"message": "Seller approved"})
}

// RejectSellerInput defines the JSON for seller rejection.
type RejectSellerInput struct {
	Reason string `json:"reason" binding:"required"`
}

// RejectSeller is the handler for PATCH /v1/admin/sellers/:id/reject
func (h *Handlers) RejectSeller(c *gin.Context) {
	sellerIDStr := c.Param("id")

	var input RejectSellerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.DB.Exec(
		`UPDATE sellers SET status = ?, rejection_reason = ?, updated_at = ? WHERE id = ? AND status = ?`,
		models.SellerStatusRejected, input.Reason, time.Now(), sellerIDStr, models.SellerStatusPending)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject seller"})
		return
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check affected rows"})
		return
	}
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Seller not found or not pending approval"})
		return
	}

	h.notifySellerDecision(sellerIDStr, "Your store application was rejected: "+input.Reason,
		"Update on your Bazario application")

	c.JSON(http.StatusOK, gin.H{"message": "Seller rejected"})
}

// notifySellerDecision emails the seller and writes an in-app notification
// after an onboarding decision.
func (h *Handlers) notifySellerDecision(sellerID, line, subject string) {
	var userID int64
	var storeName, userEmail string
	query := `
		SELECT s.user_id, s.store_name, u.email
		FROM sellers s JOIN users u ON s.user_id = u.id
		WHERE s.id = ?`
	if err := h.DB.QueryRow(query, sellerID).Scan(&userID, &storeName, &userEmail); err != nil {
		h.Log.Warn("seller decision notify lookup failed", zap.String("sellerId", sellerID), zap.Error(err))
		return
	}

	if err := h.addNotification(h.DB, userID, "seller_status", line); err != nil {
		h.Log.Warn("seller decision notification insert failed", zap.Error(err))
	}

	mailSubject, body, err := email.RenderSellerMail(storeName, line, subject)
	if err != nil {
		h.Log.Error("render seller mail", zap.Error(err))
		return
	}
	h.sendMail(userEmail, mailSubject, body)
}
