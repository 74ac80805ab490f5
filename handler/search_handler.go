package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deckwise/analyzer-be/database"
	"github.com/deckwise/analyzer-be/types"
)

type SearchHandler struct {
	index database.ChunkIndex
}

func NewSearchHandler(index database.ChunkIndex) *SearchHandler {
	return &SearchHandler{
		index: index,
	}
}

// SearchHandler queries the analyzed-chunk index across documents.
func (h *SearchHandler) SearchHandler(c *gin.Context) {
	if h.index == nil {
		c.JSON(http.StatusServiceUnavailable, types.DataResponse{
			Status:  "error",
			Message: "Document search is not configured",
		})
		return
	}

	var req types.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Invalid request body",
		})
		return
	}
	if len(req.Queries) == 0 {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "At least one query is required",
		})
		return
	}
	if req.Limit == 0 {
		req.Limit = 5
	}

	chunks, err := h.index.Search(c.Request.Context(), req.Queries, req.DocumentType, req.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: "Search failed: " + err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   chunks,
	})
}
