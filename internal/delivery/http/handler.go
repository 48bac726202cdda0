package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/listwise/backend/internal/domain"
	"github.com/listwise/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	engine    *usecase.Engine
	startTime time.Time
}

// NewHandler creates a new HTTP handler
func NewHandler(engine *usecase.Engine) *Handler {
	return &Handler{engine: engine, startTime: time.Now()}
}

type matchRequest struct {
	Query string `json:"query" binding:"required"`
}

type batchMatchRequest struct {
	Items []string `json:"items" binding:"required"`
}

type feedbackRequest struct {
	Query        string `json:"query" binding:"required"`
	SuggestedID  string `json:"suggestedProductId" binding:"required"`
	CorrectionID string `json:"correctionProductId"`
	Accepted     bool   `json:"accepted"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"service":  "listwise-backend",
		"version":  "1.0.0",
		"products": h.engine.CatalogSize(),
		"uptime":   time.Since(h.startTime).Round(time.Second).String(),
	})
}

// MatchItem resolves a single free-text list entry
func (h *Handler) MatchItem(c *gin.Context) {
	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	result := h.engine.FindBestMatch(req.Query)
	c.JSON(http.StatusOK, result)
}

// MatchBatch resolves a whole grocery list in one call
func (h *Handler) MatchBatch(c *gin.Context) {
	var req batchMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "items is required"})
		return
	}

	result, err := h.engine.MatchList(req.Items)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SubmitFeedback records a user verdict on a suggested match
func (h *Handler) SubmitFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query and suggestedProductId are required"})
		return
	}

	rec, err := h.engine.RecordFeedback(c.Request.Context(), req.Query, req.SuggestedID, req.CorrectionID, req.Accepted)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// ListAliases exposes the learned alias table
func (h *Handler) ListAliases(c *gin.Context) {
	aliases, err := h.engine.ListAliases(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	if aliases == nil {
		aliases = []*domain.LearnedAlias{}
	}
	c.JSON(http.StatusOK, gin.H{
		"aliases": aliases,
		"count":   len(aliases),
	})
}

// GetAlias looks up the learned alias for a single term
func (h *Handler) GetAlias(c *gin.Context) {
	alias, err := h.engine.GetAlias(c.Param("term"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, alias)
}

// respondError maps domain errors onto HTTP status codes
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrAliasNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrFeedbackStore):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
