package middleware

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CustomerMiddleware allows only customer accounts through.
func CustomerMiddleware() gin.HandlerFunc {
	return requireRole("customer")
}

// AdminMiddleware allows only admin accounts through.
func AdminMiddleware() gin.HandlerFunc {
	return requireRole("admin")
}

func requireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("userRole") != role {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied: " + role + " role required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// SellerMiddleware allows only approved sellers through, and sets
// "sellerID" (the sellers.id, not the user id) for the handlers.
func SellerMiddleware(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("userRole") != "seller" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied: seller role required"})
			c.Abort()
			return
		}

		userID := c.GetInt64("userID")

		var sellerID int64
		var sellerStatus string
		err := db.QueryRow("SELECT id, status FROM sellers WHERE user_id = ?", userID).Scan(&sellerID, &sellerStatus)
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "No seller profile found"})
			c.Abort()
			return
		}
		if sellerStatus != "approved" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Seller account is " + sellerStatus})
			c.Abort()
			return
		}

		c.Set("sellerID", sellerID)
		c.Next()
	}
}
