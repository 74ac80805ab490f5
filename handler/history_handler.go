package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/deckwise/analyzer-be/database"
	"github.com/deckwise/analyzer-be/types"
)

type HistoryHandler struct {
	history database.HistoryStore
}

func NewHistoryHandler(history database.HistoryStore) *HistoryHandler {
	return &HistoryHandler{
		history: history,
	}
}

// HistoryHandler lists recent analyses, newest first. Accepts an optional
// limit query parameter (default 10).
func (h *HistoryHandler) HistoryHandler(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, types.DataResponse{
				Status:  "error",
				Message: "Invalid limit",
			})
			return
		}
		limit = parsed
	}

	records, err := h.history.RecentAnalyses(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: "Failed to load history: " + err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   records,
	})
}

// AnalyticsHandler reports total and recent run counts plus the per-type
// distribution.
func (h *HistoryHandler) AnalyticsHandler(c *gin.Context) {
	analytics, err := h.history.Analytics(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: "Failed to load analytics: " + err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   analytics,
	})
}
