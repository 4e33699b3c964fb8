package handlers

import (
	"database/sql"
	"math"
	"net/http"
	"time"

	"github.com/bazario/bazario-golang/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
)

//
// --- Public: Steal Deals ---
//

// StealDeal is one live campaign joined with its product, with the deal
// price already computed.
type StealDeal struct {
	models.Campaign
	ProductName  string  `json:"productName"`
	ProductSlug  string  `json:"productSlug"`
	ProductImage string  `json:"productImage"`
	Price        float64 `json:"price"`
	DealPrice    float64 `json:"dealPrice"`
	Stock        int     `json:"stock"`
}

// ListStealDeals is the handler for GET /v1/steal-deals
// Only campaigns that are active and inside their window appear, and only
// while the product itself is live.
func (h *Handlers) ListStealDeals(c *gin.Context) {
	now := time.Now()
	query := `
		SELECT cp.id, cp.slug, cp.title, cp.product_id, cp.discount_percent,
		       cp.starts_at, cp.ends_at, cp.active, cp.created_at, cp.updated_at,
		       p.name, p.slug, p.images, p.price, p.stock_quantity
		FROM campaigns cp
		JOIN products p ON cp.product_id = p.id
		WHERE cp.active = 1 AND cp.starts_at <= ? AND cp.ends_at > ? AND p.status = ?
		ORDER BY cp.ends_at ASC`

	rows, err := h.DB.Query(query, now, now, models.ProductStatusActive)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	deals := []StealDeal{}
	for rows.Next() {
		var d StealDeal
		if err := rows.Scan(
			&d.ID, &d.Slug, &d.Title, &d.ProductID, &d.DiscountPercent,
			&d.StartsAt, &d.EndsAt, &d.Active, &d.CreatedAt, &d.UpdatedAt,
			&d.ProductName, &d.ProductSlug, &d.ProductImage, &d.Price, &d.Stock,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan deal row"})
			return
		}
		d.DealPrice = math.Round(d.Price * (100 - d.DiscountPercent) / 100)
		deals = append(deals, d)
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating deal rows"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deals": deals})
}

//
// --- Admin: Campaign Management ---
//

// CampaignInput defines the JSON for creating/updating a campaign.
type CampaignInput struct {
	Title           string  `json:"title" binding:"required"`
	ProductID       int64   `json:"productId" binding:"required"`
	DiscountPercent float64 `json:"discountPercent" binding:"required,gt=0,lt=100"`
	StartsAt        string  `json:"startsAt" binding:"required"` // RFC 3339
	EndsAt          string  `json:"endsAt" binding:"required"`   // RFC 3339
}

// CreateCampaign is the handler for POST /v1/admin/campaigns
func (h *Handlers) CreateCampaign(c *gin.Context) {
	var input CampaignInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	startsAt, err1 := time.Parse(time.RFC3339, input.StartsAt)
	endsAt, err2 := time.Parse(time.RFC3339, input.EndsAt)
	if err1 != nil || err2 != nil || !endsAt.After(startsAt) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "startsAt/endsAt must be RFC 3339 and in order"})
		return
	}

	// The deal must point at a live product.
	var productStatus string
	err := h.DB.QueryRow("SELECT status FROM products WHERE id = ?", input.ProductID).Scan(&productStatus)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	if productStatus != models.ProductStatusActive {
		c.JSON(http.StatusConflict, gin.H{"error": "Product is not active"})
		return
	}

	now := time.Now()
	campaignSlug := slug.Make(input.Title)
	query := `
		INSERT INTO campaigns (slug, title, product_id, discount_percent, starts_at, ends_at, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?)`
	result, err := h.DB.Exec(query,
		campaignSlug, input.Title, input.ProductID, input.DiscountPercent, startsAt, endsAt, now, now)
	if err != nil {
		if isDuplicateEntry(err) {
			campaignSlug = campaignSlug + "-" + now.Format("060102150405")
			result, err = h.DB.Exec(query,
				campaignSlug, input.Title, input.ProductID, input.DiscountPercent, startsAt, endsAt, now, now)
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create campaign"})
			return
		}
	}
	campaignID, _ := result.LastInsertId()

	c.JSON(http.StatusCreated, gin.H{"message": "Campaign created", "campaignId": campaignID, "slug": campaignSlug})
}

// ListCampaigns is the handler for GET /v1/admin/campaigns
func (h *Handlers) ListCampaigns(c *gin.Context) {
	query := `
		SELECT id, slug, title, product_id, discount_percent, starts_at, ends_at, active, created_at, updated_at
		FROM campaigns
		ORDER BY starts_at DESC`

	rows, err := h.DB.Query(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	campaigns := []models.Campaign{}
	for rows.Next() {
		var cp models.Campaign
		if err := rows.Scan(
			&cp.ID, &cp.Slug, &cp.Title, &cp.ProductID, &cp.DiscountPercent,
			&cp.StartsAt, &cp.EndsAt, &cp.Active, &cp.CreatedAt, &cp.UpdatedAt,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan campaign row"})
			return
		}
		campaigns = append(campaigns, cp)
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating campaign rows"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"campaigns": campaigns})
}

// UpdateCampaign is the handler for PUT /v1/admin/campaigns/:id
func (h *Handlers) UpdateCampaign(c *gin.Context) {
	campaignID := c.Param("id")

	var input CampaignInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	startsAt, err1 := time.Parse(time.RFC3339, input.StartsAt)
	endsAt, err2 := time.Parse(time.RFC3339, input.EndsAt)
	if err1 != nil || err2 != nil || !endsAt.After(startsAt) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "startsAt/endsAt must be RFC 3339 and in order"})
		return
	}

	result, err := h.DB.Exec(`
		UPDATE campaigns
		SET title = ?, product_id = ?, discount_percent = ?, starts_at = ?, ends_at = ?, updated_at = ?
		WHERE id = ?`,
		input.Title, input.ProductID, input.DiscountPercent, startsAt, endsAt, time.Now(), campaignID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update campaign"})
		return
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check affected rows"})
		return
	}
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Campaign updated"})
}

// DeactivateCampaign is the handler for PATCH /v1/admin/campaigns/:id/deactivate
func (h *Handlers) DeactivateCampaign(c *gin.Context) {
	campaignID := c.Param("id")

	result, err := h.DB.Exec(
		"UPDATE campaigns SET active = 0, updated_at = ? WHERE id = ? AND active = 1",
		time.Now(), campaignID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate campaign"})
		return
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check affected rows"})
		return
	}
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found or already inactive"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Campaign deactivated"})
}
