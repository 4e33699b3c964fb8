package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/bazario/bazario-golang/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
)

//
// --- Public Catalog ---
//

// ListProducts is the handler for GET /v1/products
// Supports ?q= name search and simple pagination.
func (h *Handlers) ListProducts(c *gin.Context) {
	search := c.Query("q")
	limit := 24
	offset := 0
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 1 {
		offset = (page - 1) * limit
	}

	query := `
		SELECT id, seller_id, sku, slug, name, description, price, mrp, stock_quantity, images, status, created_at, updated_at
		FROM products
		WHERE status = ? AND name LIKE ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`

	rows, err := h.DB.Query(query, models.ProductStatusActive, "%"+search+"%", limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan product row"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetProduct is the handler for GET /v1/products/:slug
func (h *Handlers) GetProduct(c *gin.Context) {
	productSlug := c.Param("slug")

	var p models.Product
	query := `
		SELECT id, seller_id, sku, slug, name, description, price, mrp, stock_quantity, images, status, created_at, updated_at
		FROM products
		WHERE slug = ? AND status = ?`
	err := h.DB.QueryRow(query, productSlug, models.ProductStatusActive).Scan(
		&p.ID, &p.SellerID, &p.SKU, &p.Slug, &p.Name, &p.Description,
		&p.Price, &p.MRP, &p.StockQuantity, &p.Images, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": p})
}

//
// --- Seller: Product Management ---
//

// ProductInput defines the JSON for creating/updating a product.
type ProductInput struct {
	SKU           string  `json:"sku"`
	Name          string  `json:"name" binding:"required"`
	Description   string  `json:"description"`
	Price         float64 `json:"price" binding:"required,gt=0"`
	MRP           float64 `json:"mrp" binding:"required,gt=0"`
	StockQuantity int     `json:"stockQuantity" binding:"gte=0"`
	Images        string  `json:"images"` // JSON array of URLs
	Status        string  `json:"status" binding:"omitempty,oneof=draft active archived"`
}

// CreateProduct is the handler for POST /v1/seller/products
func (h *Handlers) CreateProduct(c *gin.Context) {
	sellerID := c.GetInt64("sellerID")

	var input ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Price > input.MRP {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price cannot exceed MRP"})
		return
	}
	if input.Status == "" {
		input.Status = models.ProductStatusDraft
	}
	if input.Images == "" {
		input.Images = "[]"
	}

	var sku sql.NullString
	if input.SKU != "" {
		sku = sql.NullString{String: input.SKU, Valid: true}
	}

	now := time.Now()
	// Slug gets a per-seller suffix so two stores can list the same name.
	productSlug := slug.Make(input.Name)

	query := `
		INSERT INTO products
		(seller_id, sku, slug, name, description, price, mrp, stock_quantity, images, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := h.DB.Exec(query,
		sellerID, sku, productSlug, input.Name, input.Description,
		input.Price, input.MRP, input.StockQuantity, input.Images, input.Status, now, now)
	if err != nil {
		if isDuplicateEntry(err) {
			// Retry once with a disambiguated slug.
			productSlug = slug.Make(input.Name) + "-" + now.Format("060102150405")
			result, err = h.DB.Exec(query,
				sellerID, sku, productSlug, input.Name, input.Description,
				input.Price, input.MRP, input.StockQuantity, input.Images, input.Status, now, now)
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
			return
		}
	}
	productID, _ := result.LastInsertId()

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Product created",
		"productId": productID,
		"slug":      productSlug,
	})
}

// GetMyProducts is the handler for GET /v1/seller/products
func (h *Handlers) GetMyProducts(c *gin.Context) {
	sellerID := c.GetInt64("sellerID")

	query := `
		SELECT id, seller_id, sku, slug, name, description, price, mrp, stock_quantity, images, status, created_at, updated_at
		FROM products
		WHERE seller_id = ?
		ORDER BY created_at DESC`

	rows, err := h.DB.Query(query, sellerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan product row"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// UpdateProduct is the handler for PUT /v1/seller/products/:id
func (h *Handlers) UpdateProduct(c *gin.Context) {
	sellerID := c.GetInt64("sellerID")
	productID := c.Param("id")

	var input ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Price > input.MRP {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price cannot exceed MRP"})
		return
	}
	if input.Status == "" {
		input.Status = models.ProductStatusActive
	}

	var sku sql.NullString
	if input.SKU != "" {
		sku = sql.NullString{String: input.SKU, Valid: true}
	}

	// Ownership enforced in the WHERE clause.
	query := `
		UPDATE products
		SET sku = ?, name = ?, description = ?, price = ?, mrp = ?, stock_quantity = ?, images = ?, status = ?, updated_at = ?
		WHERE id = ? AND seller_id = ?`
	result, err := h.DB.Exec(query,
		sku, input.Name, input.Description, input.Price, input.MRP,
		input.StockQuantity, input.Images, input.Status, time.Now(), productID, sellerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check affected rows"})
		return
	}
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found or not yours"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product updated"})
}

// DeleteProduct is the handler for DELETE /v1/seller/products/:id
// Products referenced by a live steal-deal campaign cannot be removed
// until the campaign ends.
func (h *Handlers) DeleteProduct(c *gin.Context) {
	sellerID := c.GetInt64("sellerID")
	productID := c.Param("id")

	var liveCampaigns int
	guard := `
		SELECT COUNT(*) FROM campaigns
		WHERE product_id = ? AND active = 1 AND ends_at > ?`
	if err := h.DB.QueryRow(guard, productID, time.Now()).Scan(&liveCampaigns); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check campaigns"})
		return
	}
	if liveCampaigns > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Product is part of a live steal deal and cannot be deleted"})
		return
	}

	// Soft delete: archive, keep order history intact.
	result, err := h.DB.Exec(
		`UPDATE products SET status = ?, updated_at = ? WHERE id = ? AND seller_id = ?`,
		models.ProductStatusArchived, time.Now(), productID, sellerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check affected rows"})
		return
	}
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found or not yours"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product archived"})
}

// scanProducts drains a product query into a slice.
func scanProducts(rows *sql.Rows) ([]models.Product, error) {
	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(
			&p.ID, &p.SellerID, &p.SKU, &p.Slug, &p.Name, &p.Description,
			&p.Price, &p.MRP, &p.StockQuantity, &p.Images, &p.Status, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
