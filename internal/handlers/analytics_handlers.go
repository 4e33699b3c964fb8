package handlers

import (
	"net/http"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/bazario/bazario-golang/internal/models"
	"github.com/bazario/bazario-golang/internal/status"
	"github.com/gin-gonic/gin"
)

//
// --- Seller Analytics ---
//

// GetSellerAnalytics is the handler for GET /v1/seller/analytics
// Revenue counts only delivered orders; cancelled and returned money never
// shows up as earnings.
func (h *Handlers) GetSellerAnalytics(c *gin.Context) {
	sellerID := c.GetInt64("sellerID")

	// 1. --- Lifetime revenue and units from delivered orders ---
	revenueSQL, revenueArgs, err := sq.
		Select("COALESCE(SUM(oi.unit_price * oi.quantity), 0)", "COALESCE(SUM(oi.quantity), 0)").
		From("order_items oi").
		Join("orders o ON oi.order_id = o.id").
		Where(sq.Eq{"oi.seller_id": sellerID, "o.status": status.OrderDelivered}).
		ToSql()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build query"})
		return
	}

	var revenue float64
	var unitsSold int64
	if err := h.DB.QueryRow(revenueSQL, revenueArgs...).Scan(&revenue, &unitsSold); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute revenue"})
		return
	}

	// 2. --- Orders by status ---
	countSQL, countArgs, err := sq.
		Select("o.status", "COUNT(DISTINCT o.id)").
		From("orders o").
		Join("order_items oi ON oi.order_id = o.id").
		Where(sq.Eq{"oi.seller_id": sellerID}).
		GroupBy("o.status").
		ToSql()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build query"})
		return
	}

	ordersByStatus, err := h.queryStatusCounts(countSQL, countArgs...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count orders"})
		return
	}

	// 3. --- Open returns awaiting this seller ---
	var pendingReturns int64
	returnsSQL, returnsArgs, err := sq.
		Select("COUNT(DISTINCT r.id)").
		From("return_requests r").
		Join("order_items oi ON oi.order_id = r.order_id").
		Where(sq.Eq{"oi.seller_id": sellerID}).
		Where(sq.NotEq{"r.status": []string{status.ReturnRefunded, status.ReturnRejected}}).
		ToSql()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build query"})
		return
	}
	if err := h.DB.QueryRow(returnsSQL, returnsArgs...).Scan(&pendingReturns); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count returns"})
		return
	}

	// 4. --- Low stock products (fewer than 5 left) ---
	lowStockSQL, lowStockArgs, err := sq.
		Select("id", "name", "sku", "stock_quantity").
		From("products").
		Where(sq.Eq{"seller_id": sellerID, "status": models.ProductStatusActive}).
		Where(sq.Lt{"stock_quantity": 5}).
		OrderBy("stock_quantity ASC").
		ToSql()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build query"})
		return
	}

	type lowStockProduct struct {
		ID    int64   `json:"id"`
		Name  string  `json:"name"`
		SKU   *string `json:"sku"`
		Stock int     `json:"stock"`
	}
	lowStock := []lowStockProduct{}
	rows, err := h.DB.Query(lowStockSQL, lowStockArgs...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list low stock"})
		return
	}
	defer rows.Close()
	for rows.Next() {
		var p lowStockProduct
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.Stock); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan product row"})
			return
		}
		lowStock = append(lowStock, p)
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating product rows"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"revenue":        revenue,
		"unitsSold":      unitsSold,
		"ordersByStatus": ordersByStatus,
		"pendingReturns": pendingReturns,
		"lowStock":       lowStock,
	})
}

//
// --- Admin Analytics ---
//

// GetAdminAnalytics is the handler for GET /v1/admin/analytics
func (h *Handlers) GetAdminAnalytics(c *gin.Context) {
	since := time.Now().AddDate(0, 0, -30)

	// 1. --- Daily revenue, last 30 days, paid orders only ---
	dailySQL, dailyArgs, err := sq.
		Select("DATE(created_at) AS day", "COALESCE(SUM(total), 0)", "COUNT(*)").
		From("orders").
		Where(sq.Eq{"payment_status": models.PaymentStatusPaid}).
		Where(sq.GtOrEq{"created_at": since}).
		GroupBy("day").
		OrderBy("day ASC").
		ToSql()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build query"})
		return
	}

	type dailyRevenue struct {
		Day     string  `json:"day"`
		Revenue float64 `json:"revenue"`
		Orders  int64   `json:"orders"`
	}
	daily := []dailyRevenue{}
	rows, err := h.DB.Query(dailySQL, dailyArgs...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute daily revenue"})
		return
	}
	defer rows.Close()
	for rows.Next() {
		var d dailyRevenue
		if err := rows.Scan(&d.Day, &d.Revenue, &d.Orders); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan revenue row"})
			return
		}
		daily = append(daily, d)
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating revenue rows"})
		return
	}

	// 2. --- Orders by status, all time ---
	countSQL, countArgs, err := sq.
		Select("status", "COUNT(*)").From("orders").GroupBy("status").ToSql()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build query"})
		return
	}
	ordersByStatus, err := h.queryStatusCounts(countSQL, countArgs...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count orders"})
		return
	}

	// 3. --- Top products by units, last 30 days ---
	topProductsSQL, topProductsArgs, err := sq.
		Select("oi.product_id", "oi.name", "SUM(oi.quantity) AS units", "SUM(oi.unit_price * oi.quantity) AS revenue").
		From("order_items oi").
		Join("orders o ON oi.order_id = o.id").
		Where(sq.GtOrEq{"o.created_at": since}).
		Where(sq.NotEq{"o.status": status.OrderCancelled}).
		GroupBy("oi.product_id", "oi.name").
		OrderBy("units DESC").
		Limit(10).
		ToSql()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build query"})
		return
	}

	type topProduct struct {
		ProductID int64   `json:"productId"`
		Name      string  `json:"name"`
		Units     int64   `json:"units"`
		Revenue   float64 `json:"revenue"`
	}
	topProducts := []topProduct{}
	rows, err = h.DB.Query(topProductsSQL, topProductsArgs...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list top products"})
		return
	}
	defer rows.Close()
	for rows.Next() {
		var p topProduct
		if err := rows.Scan(&p.ProductID, &p.Name, &p.Units, &p.Revenue); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan product row"})
			return
		}
		topProducts = append(topProducts, p)
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating product rows"})
		return
	}

	// 4. --- Top sellers by revenue, last 30 days ---
	topSellersSQL, topSellersArgs, err := sq.
		Select("s.id", "s.store_name", "SUM(oi.unit_price * oi.quantity) AS revenue").
		From("order_items oi").
		Join("orders o ON oi.order_id = o.id").
		Join("sellers s ON oi.seller_id = s.id").
		Where(sq.GtOrEq{"o.created_at": since}).
		Where(sq.NotEq{"o.status": status.OrderCancelled}).
		GroupBy("s.id", "s.store_name").
		OrderBy("revenue DESC").
		Limit(10).
		ToSql()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build query"})
		return
	}

	type topSeller struct {
		SellerID  int64   `json:"sellerId"`
		StoreName string  `json:"storeName"`
		Revenue   float64 `json:"revenue"`
	}
	topSellers := []topSeller{}
	rows, err = h.DB.Query(topSellersSQL, topSellersArgs...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list top sellers"})
		return
	}
	defer rows.Close()
	for rows.Next() {
		var s topSeller
		if err := rows.Scan(&s.SellerID, &s.StoreName, &s.Revenue); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan seller row"})
			return
		}
		topSellers = append(topSellers, s)
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating seller rows"})
		return
	}

	// 5. --- Return rate: returns opened vs orders delivered, last 30 days ---
	var delivered, returned int64
	if err := h.DB.QueryRow(
		"SELECT COUNT(*) FROM orders WHERE status IN (?, ?) AND created_at >= ?",
		status.OrderDelivered, status.OrderReturned, since).Scan(&delivered); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count delivered orders"})
		return
	}
	if err := h.DB.QueryRow(
		"SELECT COUNT(*) FROM return_requests WHERE requested_at >= ?", since).Scan(&returned); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count returns"})
		return
	}
	var returnRate float64
	if delivered > 0 {
		returnRate = float64(returned) / float64(delivered)
	}

	c.JSON(http.StatusOK, gin.H{
		"dailyRevenue":   daily,
		"ordersByStatus": ordersByStatus,
		"topProducts":    topProducts,
		"topSellers":     topSellers,
		"returnRate":     returnRate,
	})
}

// queryStatusCounts runs a (status, count) aggregation into a map.
func (h *Handlers) queryStatusCounts(query string, args ...any) (map[string]int64, error) {
	rows, err := h.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int64{}
	for rows.Next() {
		var s string
		var n int64
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		counts[s] = n
	}
	return counts, rows.Err()
}
