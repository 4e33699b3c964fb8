// Package routes wires the HTTP route table onto the shared handler set.
package routes

import (
	"net/http"

	"github.com/bazario/bazario-golang/internal/handlers"
	"github.com/bazario/bazario-golang/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Setup builds the router: public endpoints, then the customer, seller and
// admin groups behind their middleware chains.
func Setup(h *handlers.Handlers) *gin.Engine {
	router := gin.Default()
	router.Use(middleware.CORSMiddleware(h.Cfg.CORSOrigin))
	router.Use(middleware.MetricsMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	secret := []byte(h.Cfg.JWTSecret)

	v1 := router.Group("/v1")
	{
		// --- Public ---
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong"})
		})
		v1.POST("/register", h.RegisterCustomer)
		v1.POST("/register/seller", h.RegisterSeller)
		v1.POST("/login", h.Login)
		v1.POST("/verify-email", h.VerifyEmail)
		v1.POST("/resend-code", h.ResendVerificationCode)
		v1.GET("/products", h.ListProducts)
		v1.GET("/products/:slug", h.GetProduct)
		v1.GET("/steal-deals", h.ListStealDeals)
		v1.GET("/plans", h.GetSubscriptionPlans)

		// --- Any authenticated user ---
		authed := v1.Group("/")
		authed.Use(middleware.AuthMiddleware(secret, h.DB))
		{
			authed.GET("/profile", h.GetProfile)
			authed.GET("/notifications", h.GetMyNotifications)
			authed.PATCH("/notifications/:id/read", h.MarkNotificationAsRead)
			authed.POST("/coupons/validate", h.ValidateCoupon)
		}

		// --- Customer ---
		customer := v1.Group("/customer")
		customer.Use(middleware.AuthMiddleware(secret, h.DB), middleware.CustomerMiddleware())
		{
			customer.GET("/cart", h.GetCart)
			customer.POST("/cart/items", h.AddToCart)
			customer.PUT("/cart/items/:product_id", h.UpdateCartItem)
			customer.DELETE("/cart/items/:product_id", h.DeleteCartItem)

			customer.POST("/orders", h.Checkout)
			customer.GET("/orders", h.GetMyOrders)
			customer.GET("/orders/:id", h.GetOrderDetails)

			customer.POST("/payments/create-order", h.CreatePaymentOrder)
			customer.POST("/payments/verify", h.VerifyPayment)

			customer.POST("/returns", h.CreateReturnRequest)
		}

		// --- Seller (approved stores only) ---
		seller := v1.Group("/seller")
		seller.Use(middleware.AuthMiddleware(secret, h.DB), middleware.SellerMiddleware(h.DB))
		{
			seller.GET("/profile", h.GetSellerProfile)

			seller.GET("/products", h.GetMyProducts)
			seller.POST("/products", h.CreateProduct)
			seller.PUT("/products/:id", h.UpdateProduct)
			seller.DELETE("/products/:id", h.DeleteProduct)

			seller.GET("/orders", h.GetSellerOrders)
			seller.PATCH("/orders/:id/status", h.UpdateOrderStatus)
			seller.POST("/orders/:id/ship", h.ShipOrder)

			seller.GET("/returns", h.GetSellerReturns)
			seller.PUT("/returns/:id", h.UpdateReturnStatus)

			seller.GET("/analytics", h.GetSellerAnalytics)
			seller.POST("/insights/chat", h.SellerInsightsChat)
			seller.POST("/subscribe", h.SubscribeToPlan)
		}

		// --- Admin ---
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(secret, h.DB), middleware.AdminMiddleware())
		{
			admin.GET("/sellers/pending", h.GetPendingSellers)
			admin.PATCH("/sellers/:id/approve", h.ApproveSeller)
			admin.PATCH("/sellers/:id/reject", h.RejectSeller)

			admin.PATCH("/orders/:id/update-status", h.ForceUpdateOrderStatus)

			admin.GET("/campaigns", h.ListCampaigns)
			admin.POST("/campaigns", h.CreateCampaign)
			admin.PUT("/campaigns/:id", h.UpdateCampaign)
			admin.PATCH("/campaigns/:id/deactivate", h.DeactivateCampaign)

			admin.POST("/plans", h.CreatePlan)
			admin.PUT("/plans/:id", h.UpdatePlan)
			admin.PATCH("/plans/:id/deactivate", h.DeactivatePlan)

			admin.GET("/coupons", h.ListCoupons)
			admin.POST("/coupons", h.CreateCoupon)
			admin.PATCH("/coupons/:id/deactivate", h.DeactivateCoupon)

			admin.GET("/analytics", h.GetAdminAnalytics)
			admin.POST("/insights/chat", h.AdminInsightsChat)
		}
	}

	return router
}
