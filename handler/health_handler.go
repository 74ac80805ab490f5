package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deckwise/analyzer-be/database"
	"github.com/deckwise/analyzer-be/types"
)

type HealthHandler struct {
	history database.HistoryStore
}

func NewHealthHandler(history database.HistoryStore) *HealthHandler {
	return &HealthHandler{
		history: history,
	}
}

// HealthHandler reports process liveness and history store reachability.
func (h *HealthHandler) HealthHandler(c *gin.Context) {
	status := gin.H{
		"status":  "ok",
		"service": "analyzer-be",
	}
	if h.history != nil {
		if err := h.history.Ping(c.Request.Context()); err != nil {
			status["status"] = "degraded"
			status["database"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}
		status["database"] = "ok"
	}
	c.JSON(http.StatusOK, status)
}

// RootHandler is the service card at /.
func (h *HealthHandler) RootHandler(c *gin.Context) {
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data: gin.H{
			"service": "analyzer-be",
			"endpoints": []string{
				"POST /api/v1/upload-pdf",
				"GET /api/v1/history",
				"GET /api/v1/analytics",
				"POST /api/v1/documents/search",
				"GET /api/v1/progress",
				"GET /health",
			},
		},
	})
}
