package middleware

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/bazario/bazario-golang/internal/auth"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the bearer token and loads the caller's role
// and account status. It sets "userID" and "userRole" on the context for
// the handlers and role gates downstream.
func AuthMiddleware(secret []byte, db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format (must be Bearer)"})
			c.Abort()
			return
		}

		userID, err := auth.ValidateToken(secret, parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		var role, status string
		err = db.QueryRow("SELECT role, status FROM users WHERE id = ?", userID).Scan(&role, &status)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Account not found"})
			c.Abort()
			return
		}
		if status == "suspended" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Account suspended"})
			c.Abort()
			return
		}

		c.Set("userID", userID)
		c.Set("userRole", role)
		c.Next()
	}
}
