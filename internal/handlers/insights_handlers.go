package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//
// --- Insights Chat (Gemini) ---
//

// InsightsChatInput defines the JSON for an insights question.
type InsightsChatInput struct {
	Question string `json:"question" binding:"required"`
}

// SellerInsightsChat is the handler for POST /v1/seller/insights/chat
// The model is scoped to the calling seller's rows.
func (h *Handlers) SellerInsightsChat(c *gin.Context) {
	h.insightsChat(c, "seller", c.GetInt64("sellerID"))
}

// AdminInsightsChat is the handler for POST /v1/admin/insights/chat
func (h *Handlers) AdminInsightsChat(c *gin.Context) {
	h.insightsChat(c, "admin", 0)
}

func (h *Handlers) insightsChat(c *gin.Context, actorRole string, sellerID int64) {
	if h.Insights == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Insights are not configured"})
		return
	}

	var input InsightsChatInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer, tokens, err := h.Insights.Ask(c, input.Question, actorRole, sellerID)
	if err != nil {
		h.Log.Error("insights chat failed", zap.String("role", actorRole), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Insights are unavailable right now"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"answer": answer, "tokensUsed": tokens})
}
