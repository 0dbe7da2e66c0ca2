package handlers

import (
	"errors"
	"net/http"

	"nido/internal/services"

	"github.com/gin-gonic/gin"
)

// AskRequest carries a question for the parenting assistant
type AskRequest struct {
	Question string `json:"question" binding:"required,min=1,max=2000"`
}

// BlogDraftRequest carries a topic for blog-draft generation
type BlogDraftRequest struct {
	Topic string `json:"topic" binding:"required,min=1,max=200"`
}

// AskAssistant answers a child-care question through the assistant
func AskAssistant(c *gin.Context) {
	if _, ok := currentAccount(c); !ok {
		return
	}

	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	answer, err := services.NewContentService().Chat(c.Request.Context(), req.Question)
	if err != nil {
		if errors.Is(err, services.ErrAssistantNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Assistant is not configured"})
			return
		}
		handleError(c, http.StatusInternalServerError, "Assistant request failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"answer": answer})
}

// GenerateBlogDraft produces a blog post draft on a parenting topic
func GenerateBlogDraft(c *gin.Context) {
	if _, ok := currentAccount(c); !ok {
		return
	}

	var req BlogDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	draft, err := services.NewContentService().BlogDraft(c.Request.Context(), req.Topic)
	if err != nil {
		if errors.Is(err, services.ErrAssistantNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Assistant is not configured"})
			return
		}
		handleError(c, http.StatusInternalServerError, "Assistant request failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"draft": draft})
}
