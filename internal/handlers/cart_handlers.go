package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/bazario/bazario-golang/internal/models"
	"github.com/bazario/bazario-golang/internal/pricing"
	"github.com/gin-gonic/gin"
)

//
// --- Cart Handlers (Customer-Only) ---
//

// getOrCreateCartID finds a user's cart or creates one. Must run inside
// the caller's transaction.
func (h *Handlers) getOrCreateCartID(tx *sql.Tx, userID int64) (int64, error) {
	var cartID int64
	err := tx.QueryRow("SELECT id FROM carts WHERE user_id = ?", userID).Scan(&cartID)
	if err == nil {
		return cartID, nil
	}
	if err == sql.ErrNoRows {
		now := time.Now()
		result, err := tx.Exec("INSERT INTO carts (user_id, created_at, updated_at) VALUES (?, ?, ?)", userID, now, now)
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	}
	return 0, err
}

// AddToCartInput defines the JSON for adding an item to the cart.
type AddToCartInput struct {
	ProductID int64 `json:"productId" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

// AddToCart is the handler for POST /v1/customer/cart/items
func (h *Handlers) AddToCart(c *gin.Context) {
	userID := c.GetInt64("userID")

	var input AddToCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction failed"})
		return
	}
	defer tx.Rollback()

	cartID, err := h.getOrCreateCartID(tx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cart initialization failed"})
		return
	}

	var stock int
	err = tx.QueryRow("SELECT stock_quantity FROM products WHERE id = ? AND status = ?",
		input.ProductID, models.ProductStatusActive).Scan(&stock)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found or not active"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if stock < input.Quantity {
		c.JSON(http.StatusConflict, gin.H{"error": "Insufficient stock"})
		return
	}

	// Upsert: adding the same product again bumps the quantity.
	_, err = tx.Exec(`
		INSERT INTO cart_items (cart_id, product_id, quantity, created_at, updated_at)
		VALUES (?, ?, ?, NOW(), NOW())
		ON DUPLICATE KEY UPDATE
			quantity = quantity + VALUES(quantity),
			updated_at = NOW()`,
		cartID, input.ProductID, input.Quantity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Commit failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Item added to cart"})
}

// CartItemResponse is one priced line in the cart view.
type CartItemResponse struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	Slug      string  `json:"slug"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	LineTotal float64 `json:"lineTotal"`
	Stock     int     `json:"stock"`
	Image     string  `json:"image"`
}

// GetCart is the handler for GET /v1/customer/cart
// The totals come from pricing.Quote, the same function checkout uses,
// so what the cart shows is what checkout charges.
func (h *Handlers) GetCart(c *gin.Context) {
	userID := c.GetInt64("userID")

	var cartID int64
	err := h.DB.QueryRow("SELECT id FROM carts WHERE user_id = ?", userID).Scan(&cartID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusOK, gin.H{
				"items":   []CartItemResponse{},
				"pricing": pricing.Quote(h.pricingRules(), nil, 0),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find cart"})
		return
	}

	query := `
		SELECT ci.product_id, p.name, p.slug, p.price, ci.quantity, p.stock_quantity, p.images
		FROM cart_items ci
		JOIN products p ON ci.product_id = p.id
		WHERE ci.cart_id = ? AND p.status = ?`
	rows, err := h.DB.Query(query, cartID, models.ProductStatusActive)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query cart items"})
		return
	}
	defer rows.Close()

	items := []CartItemResponse{}
	var lines []pricing.Line
	for rows.Next() {
		var item CartItemResponse
		if err := rows.Scan(
			&item.ProductID, &item.Name, &item.Slug, &item.Price,
			&item.Quantity, &item.Stock, &item.Image,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan cart item"})
			return
		}
		item.LineTotal = item.Price * float64(item.Quantity)
		items = append(items, item)
		lines = append(lines, pricing.Line{UnitPrice: item.Price, Quantity: item.Quantity})
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating cart items"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":   items,
		"pricing": pricing.Quote(h.pricingRules(), lines, 0),
	})
}

// UpdateCartItemInput defines the JSON for changing a line quantity.
type UpdateCartItemInput struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

// UpdateCartItem is the handler for PUT /v1/customer/cart/items/:product_id
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	userID := c.GetInt64("userID")
	productID := c.Param("product_id")

	var input UpdateCartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	query := `
		UPDATE cart_items ci
		JOIN carts ct ON ci.cart_id = ct.id
		SET ci.quantity = ?, ci.updated_at = NOW()
		WHERE ct.user_id = ? AND ci.product_id = ?`
	result, err := h.DB.Exec(query, input.Quantity, userID, productID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart item"})
		return
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check affected rows"})
		return
	}
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not in cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart item updated"})
}

// DeleteCartItem is the handler for DELETE /v1/customer/cart/items/:product_id
func (h *Handlers) DeleteCartItem(c *gin.Context) {
	userID := c.GetInt64("userID")
	productID := c.Param("product_id")

	query := `
		DELETE ci FROM cart_items ci
		JOIN carts ct ON ci.cart_id = ct.id
		WHERE ct.user_id = ? AND ci.product_id = ?`
	result, err := h.DB.Exec(query, userID, productID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove cart item"})
		return
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check affected rows"})
		return
	}
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not in cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart item removed"})
}
