package transaction

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fraudwatch/fraudwatch/internal/logging"
	"github.com/fraudwatch/fraudwatch/internal/pagination"
)

// Handler provides HTTP handlers for the fraud decision API.
type Handler struct {
	service           *Service
	highRiskThreshold float64
}

// NewHandler creates a new transaction handler. highRiskThreshold is the
// default cutoff for the high-risk listing endpoint.
func NewHandler(service *Service, highRiskThreshold float64) *Handler {
	return &Handler{service: service, highRiskThreshold: highRiskThreshold}
}

// RegisterRoutes sets up the transaction routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/fraud-check", h.FraudCheck)
	r.GET("", h.ListTransactions)
	r.GET("/stats", h.GetStats)
	r.GET("/high-risk", h.ListHighRisk)
	r.GET("/:id", h.GetTransaction)
	r.PATCH("/:id/status", h.OverrideStatus)
}

// FraudCheck handles POST /fraud-check.
// Runs the full assess-and-persist pipeline for one raw transaction.
func (h *Handler) FraudCheck(c *gin.Context) {
	ctx := c.Request.Context()
	logger := logging.L(ctx)

	var input Input
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body",
		})
		return
	}

	txn, err := h.service.Assess(ctx, input)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "validation_failed",
				"message": err.Error(),
			})
			return
		}
		logger.Error("failed to assess transaction", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to assess transaction",
		})
		return
	}

	c.JSON(http.StatusCreated, txn)
}

// ListTransactions handles GET "" with cursor pagination.
func (h *Handler) ListTransactions(c *gin.Context) {
	ctx := c.Request.Context()

	limit := parseIntQuery(c, "limit", 50)
	if limit > 200 {
		limit = 200
	}

	filter := Filter{Limit: limit + 1}

	if levelStr := c.Query("riskLevel"); levelStr != "" {
		level := RiskLevel(levelStr)
		switch level {
		case RiskLow, RiskMedium, RiskHigh, RiskCritical:
			filter.RiskLevel = &level
		default:
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_request",
				"message": "Unknown risk level: " + levelStr,
			})
			return
		}
	}

	cursor, err := pagination.Decode(c.Query("cursor"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_cursor",
			"message": "Malformed pagination cursor",
		})
		return
	}
	if cursor != nil {
		filter.CursorCreatedAt = &cursor.CreatedAt
		filter.CursorID = cursor.ID
	}

	txns, err := h.service.List(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to list transactions",
		})
		return
	}

	page, next, hasMore := pagination.ComputePage(txns, limit, func(t *Transaction) (time.Time, string) {
		return t.CreatedAt, t.ID
	})

	c.JSON(http.StatusOK, gin.H{
		"transactions": page,
		"count":        len(page),
		"next_cursor":  next,
		"has_more":     hasMore,
	})
}

// GetTransaction handles GET /:id.
func (h *Handler) GetTransaction(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	txn, err := h.service.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Transaction not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to get transaction",
		})
		return
	}

	c.JSON(http.StatusOK, txn)
}

// ListHighRisk handles GET /high-risk.
func (h *Handler) ListHighRisk(c *gin.Context) {
	ctx := c.Request.Context()

	minScore := h.highRiskThreshold
	if s := c.Query("minScore"); s != "" {
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil || parsed < 0 || parsed > 1 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_request",
				"message": "minScore must be a number between 0 and 1",
			})
			return
		}
		minScore = parsed
	}

	limit := parseIntQuery(c, "limit", 50)
	if limit > 200 {
		limit = 200
	}

	txns, err := h.service.HighRisk(ctx, minScore, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to list high-risk transactions",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": txns,
		"count":        len(txns),
		"min_score":    minScore,
	})
}

// GetStats handles GET /stats.
func (h *Handler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := h.service.Stats(ctx)
	if err != nil {
		logging.L(ctx).Error("failed to compute stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to compute stats",
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// OverrideStatusRequest is the payload for a manual verdict override.
type OverrideStatusRequest struct {
	Status Status `json:"status" binding:"required"`
}

// OverrideStatus handles PATCH /:id/status.
// Manual review outcome; does not re-score or touch derived fields.
func (h *Handler) OverrideStatus(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	var req OverrideStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body",
		})
		return
	}

	txn, err := h.service.OverrideStatus(ctx, id, req.Status)
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_status",
				"message": err.Error(),
			})
			return
		}
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Transaction not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to update status",
		})
		return
	}

	c.JSON(http.StatusOK, txn)
}

func parseIntQuery(c *gin.Context, key string, defaultVal int) int {
	if val := c.Query(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil && i > 0 {
			return i
		}
	}
	return defaultVal
}
