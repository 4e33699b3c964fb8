package handlers

import (
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/bazario/bazario-golang/internal/auth"
	"github.com/bazario/bazario-golang/internal/email"
	"github.com/bazario/bazario-golang/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//
// --- Registration & Login ---
//

// RegisterInput defines the JSON for customer registration.
type RegisterInput struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Phone    string `json:"phone" binding:"required"`
}

// RegisterCustomer is the handler for POST /v1/register
func (h *Handlers) RegisterCustomer(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, code, err := h.createUser(input, models.RoleCustomer)
	if err != nil {
		if isDuplicateEntry(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
			return
		}
		h.Log.Error("customer registration failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	h.sendVerificationCode(input.Email, code)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created. Check your email for the verification code.",
		"userId":  userID,
	})
}

// createUser inserts a user row with a fresh verification code and returns
// the new id plus the code.
func (h *Handlers) createUser(input RegisterInput, role string) (int64, string, error) {
	var password models.Password
	if err := password.Set(input.Password); err != nil {
		return 0, "", err
	}

	code, err := generateVerificationCode()
	if err != nil {
		return 0, "", err
	}
	expiry := time.Now().Add(15 * time.Minute)

	now := time.Now()
	query := `
		INSERT INTO users
		(role, status, email, password_hash, full_name, phone, verification_code, verification_expiry, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := h.DB.Exec(query,
		role, models.UserStatusUnverified, input.Email, password.Hash,
		input.FullName, input.Phone, code, expiry, now, now)
	if err != nil {
		return 0, "", err
	}
	userID, err := result.LastInsertId()
	if err != nil {
		return 0, "", err
	}
	return userID, code, nil
}

func (h *Handlers) sendVerificationCode(to, code string) {
	subject, body, err := email.RenderVerificationMail(code)
	if err != nil {
		h.Log.Error("render verification mail", zap.Error(err))
		return
	}
	h.sendMail(to, subject, body)
}

// generateVerificationCode returns a 6-digit numeric code.
func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// LoginInput defines the JSON for login.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login is the handler for POST /v1/login
func (h *Handlers) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	query := `SELECT id, role, status, email, password_hash, full_name FROM users WHERE email = ?`
	err := h.DB.QueryRow(query, input.Email).Scan(
		&user.ID, &user.Role, &user.Status, &user.Email, &user.PasswordHash, &user.FullName,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	password := models.Password{Hash: user.PasswordHash}
	matches, err := password.Matches(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}
	if !matches {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if user.Status == models.UserStatusUnverified {
		c.JSON(http.StatusForbidden, gin.H{"error": "Please verify your email first"})
		return
	}
	if user.Status == models.UserStatusSuspended {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account suspended"})
		return
	}

	token, err := auth.GenerateToken([]byte(h.Cfg.JWTSecret), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"role":     user.Role,
			"email":    user.Email,
			"fullName": user.FullName,
		},
	})
}

//
// --- Email Verification ---
//

// VerifyEmailInput defines the JSON for email verification.
type VerifyEmailInput struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}

// VerifyEmail is the handler for POST /v1/verify-email
func (h *Handlers) VerifyEmail(c *gin.Context) {
	var input VerifyEmailInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// The update only lands when the code matches, hasn't expired, and the
	// account is still unverified.
	query := `
		UPDATE users
		SET status = ?, verification_code = NULL, verification_expiry = NULL, updated_at = ?
		WHERE email = ? AND status = ? AND verification_code = ? AND verification_expiry > ?`
	result, err := h.DB.Exec(query,
		models.UserStatusActive, time.Now(),
		input.Email, models.UserStatusUnverified, input.Code, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed"})
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed"})
		return
	}
	if rowsAffected == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired verification code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email verified. You can log in now."})
}

// ResendCodeInput defines the JSON for resending a verification code.
type ResendCodeInput struct {
	Email string `json:"email" binding:"required,email"`
}

// ResendVerificationCode is the handler for POST /v1/resend-code
func (h *Handlers) ResendVerificationCode(c *gin.Context) {
	var input ResendCodeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	code, err := generateVerificationCode()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate code"})
		return
	}

	query := `
		UPDATE users
		SET verification_code = ?, verification_expiry = ?, updated_at = ?
		WHERE email = ? AND status = ?`
	result, err := h.DB.Exec(query,
		code, time.Now().Add(15*time.Minute), time.Now(),
		input.Email, models.UserStatusUnverified)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh code"})
		return
	}

	// Whether or not the account exists, answer the same way so the
	// endpoint can't be used to probe for registered emails.
	if n, _ := result.RowsAffected(); n > 0 {
		h.sendVerificationCode(input.Email, code)
	}
	c.JSON(http.StatusOK, gin.H{"message": "If the account exists, a new code has been sent."})
}

// GetProfile is the handler for GET /v1/profile
func (h *Handlers) GetProfile(c *gin.Context) {
	userID := c.GetInt64("userID")

	var user models.User
	query := `SELECT id, role, status, email, full_name, phone, created_at FROM users WHERE id = ?`
	err := h.DB.QueryRow(query, userID).Scan(
		&user.ID, &user.Role, &user.Status, &user.Email, &user.FullName, &user.Phone, &user.CreatedAt,
	)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// isDuplicateEntry reports whether a MySQL error is a unique-key violation
// (error 1062).
func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
